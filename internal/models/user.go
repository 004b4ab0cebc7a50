package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleAuthor = "author"
	RoleReader = "reader"
)

type User struct {
	ID           string    `gorm:"type:uuid;primaryKey" json:"id"`
	Name         string    `gorm:"size:64;uniqueIndex;not null" json:"name"`
	PasswordHash string    `gorm:"not null" json:"-"`
	Role         string    `gorm:"size:20;default:'reader';not null" json:"role"`
	TokenVersion int       `gorm:"default:0;not null" json:"-"` // bumped on logout
	CreatedAt    time.Time `json:"dateCreated"`
	UpdatedAt    time.Time `json:"dateUpdated"`
	// No DeletedAt: accounts are hard deleted and nothing cascades
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Role == "" {
		u.Role = RoleReader
	}
	return nil
}

// IsValidRole reports whether role is one a user may hold.
func IsValidRole(role string) bool {
	return role == RoleAuthor || role == RoleReader
}
