package auth

import (
	"fmt"
	"net/http"
	"strings"

	"gameo/backend/internal/config"

	"github.com/gin-gonic/gin"
	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AuthMiddleware requires a valid bearer token and sets the userID in the
// request context.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := userIDFromHeader(c.GetHeader("Authorization"))
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or missing token"})
			return
		}
		c.Set("userID", userID)
		c.Next()
	}
}

// userIDFromHeader parses and validates a bearer token, returning the
// subject user id.
func userIDFromHeader(authHeader string) (uuid.UUID, bool) {
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return uuid.Nil, false
	}

	token, err := gojwt.Parse(parts[1], func(token *gojwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*gojwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(config.AppConfig.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, false
	}

	claims, ok := token.Claims.(gojwt.MapClaims)
	if !ok {
		return uuid.Nil, false
	}
	sub, ok := claims["sub"].(string)
	if !ok {
		return uuid.Nil, false
	}
	userID, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, false
	}
	return userID, true
}
