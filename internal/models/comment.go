package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DeletedCommentBody replaces the body of a soft-deleted comment.
const DeletedCommentBody = "this comment has been deleted."

type Comment struct {
	ID           string        `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       string        `gorm:"type:uuid;not null;index" json:"userId"`
	User         User          `gorm:"foreignKey:UserID" json:"-"`
	PostID       string        `gorm:"type:uuid;not null;index;index:idx_comment_thread" json:"post"`
	ParentID     *string       `gorm:"type:uuid;index:idx_comment_thread" json:"parentComment"` // nil for top-level comments
	Deleted      bool          `gorm:"default:false;not null" json:"deleted"`
	RemovedAt    *time.Time    `json:"-"`
	Body         string        `gorm:"type:text;not null" json:"body"`
	TLDR         string        `gorm:"size:64" json:"tldr"`
	LastModified time.Time     `json:"dateUpdated"`
	CreatedAt    time.Time     `json:"dateCreated"`
	UpdatedAt    time.Time     `json:"-"`
	Links        []CommentLink `gorm:"foreignKey:ParentID" json:"-"`
}

// CommentLink is one entry of a comment's child list. Live entries make up
// childComments; detached entries are the former children of a deleted comment.
type CommentLink struct {
	ParentID  string `gorm:"type:uuid;primaryKey"`
	ChildID   string `gorm:"type:uuid;primaryKey"`
	Position  int    `gorm:"not null"`
	Detached  bool   `gorm:"default:false;not null;index"`
	CreatedAt time.Time
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.LastModified.IsZero() {
		c.LastModified = time.Now()
	}
	return nil
}

// CommentState is either Active or Deleted.
type CommentState interface {
	isCommentState()
}

type Active struct {
	Children []string
}

type Deleted struct {
	FormerChildren []string
}

func (Active) isCommentState()  {}
func (Deleted) isCommentState() {}

// State derives the lifecycle state from the deleted flag and the loaded links.
// Links must be preloaded in position order.
func (c *Comment) State() CommentState {
	if c.Deleted {
		return Deleted{FormerChildren: c.linkIDs(true)}
	}
	return Active{Children: c.linkIDs(false)}
}

// ChildComments lists the live children; empty once the comment is deleted.
func (c *Comment) ChildComments() []string {
	if s, ok := c.State().(Active); ok {
		return s.Children
	}
	return []string{}
}

// DetachedChildComments lists the children evicted by a soft delete.
func (c *Comment) DetachedChildComments() []string {
	if s, ok := c.State().(Deleted); ok {
		return s.FormerChildren
	}
	return []string{}
}

func (c *Comment) linkIDs(detached bool) []string {
	ids := make([]string, 0, len(c.Links))
	for _, l := range c.Links {
		if l.Detached == detached {
			ids = append(ids, l.ChildID)
		}
	}
	return ids
}

// Redact applies the content side of a soft delete. Moving the child links
// is the caller's job since it touches other rows.
func (c *Comment) Redact(now time.Time) {
	c.Deleted = true
	c.RemovedAt = &now
	c.Body = DeletedCommentBody
	c.TLDR = ""
	c.LastModified = now
	for i := range c.Links {
		c.Links[i].Detached = true
	}
}
