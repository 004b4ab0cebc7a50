package handlers

import (
	"net/http"

	"quill/internal/middleware"
	"quill/internal/models"
	"quill/internal/services"

	"github.com/gin-gonic/gin"
)

type PostHandler struct {
	Responder
	posts *services.PostService
}

func NewPostHandler(posts *services.PostService, r Responder) *PostHandler {
	return &PostHandler{Responder: r, posts: posts}
}

type createPostRequest struct {
	Title  string `json:"title" validate:"required,min=4,max=56"`
	Body   string `json:"body" validate:"required"`
	Hidden bool   `json:"hidden"`
}

type updatePostRequest struct {
	Title  *string `json:"title" validate:"omitnil,min=4,max=56"`
	Body   *string `json:"body" validate:"omitnil,min=1"`
	Hidden *bool   `json:"hidden"`
}

func (h *PostHandler) List(c *gin.Context) {
	posts, err := h.posts.List(c.Request.Context(), page(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, http.StatusOK, "posts fetched.", "posts", toPosts(posts))
}

func (h *PostHandler) Create(c *gin.Context) {
	req, err := bind(c, func(r *createPostRequest) {
		cleanText(&r.Title)
		cleanBody(&r.Body)
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	user := middleware.CurrentUser(c)
	post, err := h.posts.Create(c.Request.Context(), user.ID, req.Title, req.Body, req.Hidden)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, http.StatusCreated, "post created.", "post", toPost(*post))
}

// Detail counts the caller as a viewer when signed in.
func (h *PostHandler) Detail(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		h.fail(c, err)
		return
	}

	post, viewed, err := h.posts.Get(c.Request.Context(), id, callerID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	message := "post fetched."
	if viewed {
		message = "post fetched, view recorded."
	}
	h.ok(c, http.StatusOK, message, "post", toPost(*post))
}

func (h *PostHandler) Update(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		h.fail(c, err)
		return
	}
	req, err := bind(c, func(r *updatePostRequest) {
		cleanText(r.Title)
		cleanBody(r.Body)
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	user := middleware.CurrentUser(c)
	post, err := h.posts.Update(c.Request.Context(), id, user.ID, services.PostUpdate{
		Title:  req.Title,
		Body:   req.Body,
		Hidden: req.Hidden,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, http.StatusOK, "post updated.", "post", toPost(*post))
}

func (h *PostHandler) Delete(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		h.fail(c, err)
		return
	}

	user := middleware.CurrentUser(c)
	if err := h.posts.Delete(c.Request.Context(), id, user.ID); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *PostHandler) Like(c *gin.Context)      { h.react(c, models.ReactionLike, true) }
func (h *PostHandler) Unlike(c *gin.Context)    { h.react(c, models.ReactionLike, false) }
func (h *PostHandler) Dislike(c *gin.Context)   { h.react(c, models.ReactionDislike, true) }
func (h *PostHandler) Undislike(c *gin.Context) { h.react(c, models.ReactionDislike, false) }

func (h *PostHandler) react(c *gin.Context, kind models.ReactionKind, add bool) {
	id, err := pathID(c, "id")
	if err != nil {
		h.fail(c, err)
		return
	}

	user := middleware.CurrentUser(c)
	apply := h.posts.Unreact
	if add {
		apply = h.posts.React
	}
	outcome, post, err := apply(c.Request.Context(), id, user.ID, kind)
	if err != nil {
		h.fail(c, err)
		return
	}

	status, message := reactionStatus("post", kind, outcome)
	h.ok(c, status, message, "post", toPost(*post))
}

// Liked lists the posts the caller likes.
func (h *PostHandler) Liked(c *gin.Context) {
	user := middleware.CurrentUser(c)
	posts, err := h.posts.LikedBy(c.Request.Context(), user.ID, page(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, http.StatusOK, "liked posts fetched.", "posts", toPosts(posts))
}
