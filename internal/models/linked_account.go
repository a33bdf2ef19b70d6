package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Providers for linked third-party accounts.
const (
	ProviderSteam = "steam"
	ProviderPSN   = "psn"
)

// LinkedAccount binds a user to a third-party identity (SteamID64 or PSN
// account id) used by the library sync endpoints. One account per provider
// per user.
type LinkedAccount struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:ux_linked_user_provider,priority:1"`

	Provider    string `gorm:"size:16;not null;uniqueIndex:ux_linked_user_provider,priority:2"`
	ExternalID  string `gorm:"size:64;not null"`
	DisplayName string `gorm:"size:255"`

	// Provider refresh token, when the provider issues one (PSN).
	RefreshToken string `gorm:"size:1024"`

	LastSyncedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (a *LinkedAccount) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
