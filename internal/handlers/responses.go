package handlers

import (
	"time"

	"quill/internal/models"
	"quill/internal/services"
	"quill/internal/utils"
)

type userResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Role        string    `json:"role"`
	DateCreated time.Time `json:"dateCreated"`
	DateUpdated time.Time `json:"dateUpdated"`
}

type postResponse struct {
	ID            string    `json:"id"`
	Author        *string   `json:"author"`
	Title         string    `json:"title"`
	Body          string    `json:"body"`
	BodyHTML      string    `json:"bodyHtml"`
	Hidden        bool      `json:"hidden"`
	DateCreated   time.Time `json:"dateCreated"`
	DateUpdated   time.Time `json:"dateUpdated"`
	NumOfViewers  int64     `json:"numOfViewers"`
	NumOfLikes    int64     `json:"numOfLikes"`
	NumOfDislikes int64     `json:"numOfDislikes"`
}

type commentResponse struct {
	ID                    string    `json:"id"`
	User                  *string   `json:"user"`
	Post                  string    `json:"post"`
	ParentComment         *string   `json:"parentComment"`
	ChildComments         []string  `json:"childComments"`
	DetachedChildComments []string  `json:"detachedchildComments"`
	Deleted               bool      `json:"deleted"`
	Body                  string    `json:"body"`
	BodyHTML              string    `json:"bodyHtml"`
	TLDR                  string    `json:"tldr"`
	DateCreated           time.Time `json:"dateCreated"`
	DateUpdated           time.Time `json:"dateUpdated"`
	NumOfLikes            int64     `json:"numOfLikes"`
	NumOfDislikes         int64     `json:"numOfDislikes"`
}

func toUser(u *models.User) userResponse {
	return userResponse{
		ID:          u.ID,
		Name:        u.Name,
		Role:        u.Role,
		DateCreated: u.CreatedAt,
		DateUpdated: u.UpdatedAt,
	}
}

// nameOf is nil when the referenced user has been deleted.
func nameOf(u models.User) *string {
	if u.ID == "" {
		return nil
	}
	name := u.Name
	return &name
}

func toPost(d services.PostDetail) postResponse {
	p := d.Post
	return postResponse{
		ID:            p.ID,
		Author:        nameOf(p.Author),
		Title:         p.Title,
		Body:          p.Body,
		BodyHTML:      utils.RenderMarkdown(p.Body),
		Hidden:        p.Hidden,
		DateCreated:   p.CreatedAt,
		DateUpdated:   p.LastModified,
		NumOfViewers:  d.Viewers,
		NumOfLikes:    d.Tally.Likes,
		NumOfDislikes: d.Tally.Dislikes,
	}
}

func toPosts(ds []services.PostDetail) []postResponse {
	out := make([]postResponse, 0, len(ds))
	for _, d := range ds {
		out = append(out, toPost(d))
	}
	return out
}

func toComment(d services.CommentDetail) commentResponse {
	c := d.Comment
	resp := commentResponse{
		ID:                    c.ID,
		User:                  nameOf(c.User),
		Post:                  c.PostID,
		ParentComment:         c.ParentID,
		ChildComments:         c.ChildComments(),
		DetachedChildComments: c.DetachedChildComments(),
		Deleted:               c.Deleted,
		Body:                  c.Body,
		TLDR:                  c.TLDR,
		DateCreated:           c.CreatedAt,
		DateUpdated:           c.LastModified,
		NumOfLikes:            d.Tally.Likes,
		NumOfDislikes:         d.Tally.Dislikes,
	}
	if !c.Deleted {
		resp.BodyHTML = utils.RenderMarkdown(c.Body)
	}
	return resp
}

func toComments(ds []services.CommentDetail) []commentResponse {
	out := make([]commentResponse, 0, len(ds))
	for _, d := range ds {
		out = append(out, toComment(d))
	}
	return out
}
