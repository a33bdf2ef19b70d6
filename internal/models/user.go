package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents a registered Gameo user.
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Nickname     string    `gorm:"size:255;unique;not null"`
	Email        string    `gorm:"size:255;unique;not null"`
	PasswordHash string    `gorm:"size:255;not null"`
	AvatarURL    string    `gorm:"size:512"`

	// Store-locale defaults used when enriching game metadata.
	Country  string `gorm:"size:8;not null;default:'us'"`
	Language string `gorm:"size:8;not null;default:'en'"`
	AgeGroup string `gorm:"size:8;not null;default:'999'"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
