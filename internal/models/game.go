package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Game represents one entry in a user's library. A game may originate from
// manual entry, a Steam import, or a PSN import; the source-id slots are
// sparse and a merged record can hold both.
//
// The composite unique indexes guarantee at most one record per
// (owner, steam_app_id) and per (owner, psn_id). NULL slots do not collide,
// so manual entries without any source id are unconstrained.
type Game struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey"`
	OwnerID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:ux_games_owner_steam,priority:1;uniqueIndex:ux_games_owner_psn,priority:1"`

	Name       string  `gorm:"size:512;not null"`
	SteamAppID *string `gorm:"size:32;uniqueIndex:ux_games_owner_steam,priority:2"`
	PSNID      *string `gorm:"column:psn_id;size:64;uniqueIndex:ux_games_owner_psn,priority:2"`

	// Comma-separated platform labels, e.g. "PC" or "PS4, PS5". The set only
	// ever grows through merges.
	Platforms string `gorm:"size:255"`

	Studio      string `gorm:"size:255"`
	ReleaseDate string `gorm:"size:64"`

	// User-editable attributes. Never touched by the merge or enrichment
	// logic, only by direct edits.
	DateStarted *time.Time
	DateBought  *time.Time
	Price       float64
	TimePlayed  int `gorm:"not null;default:0"` // minutes
	LastPlayed  *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (g *Game) BeforeCreate(tx *gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return nil
}
