package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BudgetEntry tracks a single gaming-related purchase for the budget view.
type BudgetEntry struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index"`

	Title    string    `gorm:"size:255;not null"`
	Amount   float64   `gorm:"not null"`
	Category string    `gorm:"size:64;not null;default:'games';index"`
	SpentAt  time.Time `gorm:"not null"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (b *BudgetEntry) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
