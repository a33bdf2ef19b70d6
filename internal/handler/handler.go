package handler

import (
	"gameo/backend/internal/enrichment"
	"gameo/backend/internal/library"
	"gameo/backend/internal/psn"
	"gameo/backend/internal/steam"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Package-level collaborators, wired once from main before routes are
// served.
var (
	Library  *library.Service
	Enricher *enrichment.Coordinator
	Steam    *steam.Client
	PSN      *psn.Client
)

// Init wires the handler package's collaborators.
func Init(lib *library.Service, enricher *enrichment.Coordinator, steamClient *steam.Client, psnClient *psn.Client) {
	Library = lib
	Enricher = enricher
	Steam = steamClient
	PSN = psnClient
}

// ErrorResponse represents a generic error response.
type ErrorResponse struct {
	Error string `json:"error" example:"An error message"`
}

func currentUserID(c *gin.Context) uuid.UUID {
	userID, _ := c.Get("userID")
	return userID.(uuid.UUID)
}
