package models

import (
	"time"
)

type ReactionKind string

const (
	ReactionLike    ReactionKind = "like"
	ReactionDislike ReactionKind = "dislike"
)

// Opposite returns the kind that is mutually exclusive with k.
func (k ReactionKind) Opposite() ReactionKind {
	if k == ReactionLike {
		return ReactionDislike
	}
	return ReactionLike
}

type TargetType string

const (
	TargetPost    TargetType = "post"
	TargetComment TargetType = "comment"
)

// Reaction is one user's like or dislike of a post or comment. The unique
// index over (user, target) lets a user hold at most one reaction per target,
// which keeps the like and dislike ledgers disjoint.
type Reaction struct {
	ID         uint         `gorm:"primaryKey"`
	UserID     string       `gorm:"type:uuid;not null;uniqueIndex:idx_reaction_user_target"`
	TargetType TargetType   `gorm:"size:16;not null;uniqueIndex:idx_reaction_user_target;index:idx_reaction_target"`
	TargetID   string       `gorm:"type:uuid;not null;uniqueIndex:idx_reaction_user_target;index:idx_reaction_target"`
	Kind       ReactionKind `gorm:"size:16;not null;index:idx_reaction_target"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
