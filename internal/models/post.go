package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Post is a social feed entry, optionally attached to a game.
type Post struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	AuthorID uuid.UUID `gorm:"type:uuid;not null;index"`
	Author   User      `gorm:"foreignKey:AuthorID"`

	Content  string `gorm:"type:text;not null"`
	ImageURL string `gorm:"size:512"`

	GameID *uuid.UUID `gorm:"type:uuid;index"`

	Comments []Comment `gorm:"constraint:OnDelete:CASCADE"`
	Likes    []Like    `gorm:"constraint:OnDelete:CASCADE"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// Comment is a reply on a post.
type Comment struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	PostID   uuid.UUID `gorm:"type:uuid;not null;index"`
	AuthorID uuid.UUID `gorm:"type:uuid;not null;index"`
	Author   User      `gorm:"foreignKey:AuthorID"`

	Content string `gorm:"type:text;not null"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// Like marks a post as liked by a user, at most once per (post, user).
type Like struct {
	ID     uint      `gorm:"primaryKey"`
	PostID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:ux_likes_post_user,priority:1"`
	UserID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:ux_likes_post_user,priority:2"`

	CreatedAt time.Time
}
