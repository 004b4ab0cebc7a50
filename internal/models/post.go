package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Post struct {
	ID           string    `gorm:"type:uuid;primaryKey" json:"id"`
	AuthorID     string    `gorm:"type:uuid;not null;index" json:"authorId"`
	Author       User      `gorm:"foreignKey:AuthorID" json:"-"`
	Title        string    `gorm:"size:56;not null" json:"title"`
	Body         string    `gorm:"type:text;not null" json:"body"`
	Hidden       bool      `gorm:"default:false;not null;index" json:"hidden"`
	LastModified time.Time `json:"dateUpdated"`
	CreatedAt    time.Time `gorm:"index" json:"dateCreated"`
	UpdatedAt    time.Time `json:"-"`
}

func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.LastModified.IsZero() {
		p.LastModified = time.Now()
	}
	return nil
}

// PostView records that a user has opened a post. The composite key makes
// the viewer set hold each user at most once.
type PostView struct {
	PostID    string    `gorm:"type:uuid;primaryKey"`
	UserID    string    `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time
}
