package handlers

import (
	"net/http"

	"quill/internal/middleware"
	"quill/internal/models"
	"quill/internal/services"

	"github.com/gin-gonic/gin"
)

type CommentHandler struct {
	Responder
	comments *services.CommentService
}

func NewCommentHandler(comments *services.CommentService, r Responder) *CommentHandler {
	return &CommentHandler{Responder: r, comments: comments}
}

type createCommentRequest struct {
	Body string `json:"body" validate:"required"`
	TLDR string `json:"tldr" validate:"max=64"`
}

type updateCommentRequest struct {
	Body *string `json:"body" validate:"omitnil,min=1"`
	TLDR *string `json:"tldr" validate:"omitnil,max=64"`
}

func cleanComment(r *createCommentRequest) {
	cleanBody(&r.Body)
	cleanText(&r.TLDR)
}

// ids reads :postId and, when withComment is set, :id.
func ids(c *gin.Context, withComment bool) (postID, commentID string, err error) {
	if postID, err = pathID(c, "postId"); err != nil {
		return "", "", err
	}
	if withComment {
		if commentID, err = pathID(c, "id"); err != nil {
			return "", "", err
		}
	}
	return postID, commentID, nil
}

func (h *CommentHandler) List(c *gin.Context) {
	postID, _, err := ids(c, false)
	if err != nil {
		h.fail(c, err)
		return
	}

	comments, err := h.comments.List(c.Request.Context(), postID, callerID(c), page(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, http.StatusOK, "comments fetched.", "comments", toComments(comments))
}

func (h *CommentHandler) Create(c *gin.Context) {
	postID, _, err := ids(c, false)
	if err != nil {
		h.fail(c, err)
		return
	}
	req, err := bind(c, cleanComment)
	if err != nil {
		h.fail(c, err)
		return
	}

	user := middleware.CurrentUser(c)
	comment, err := h.comments.Create(c.Request.Context(), postID, user.ID, req.Body, req.TLDR)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, http.StatusCreated, "comment created.", "comment", toComment(*comment))
}

func (h *CommentHandler) Detail(c *gin.Context) {
	postID, commentID, err := ids(c, true)
	if err != nil {
		h.fail(c, err)
		return
	}

	comment, err := h.comments.Get(c.Request.Context(), postID, commentID, callerID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, http.StatusOK, "comment fetched.", "comment", toComment(*comment))
}

func (h *CommentHandler) Update(c *gin.Context) {
	postID, commentID, err := ids(c, true)
	if err != nil {
		h.fail(c, err)
		return
	}
	req, err := bind(c, func(r *updateCommentRequest) {
		cleanBody(r.Body)
		cleanText(r.TLDR)
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	user := middleware.CurrentUser(c)
	comment, err := h.comments.Update(c.Request.Context(), postID, commentID, user.ID, services.CommentUpdate{
		Body: req.Body,
		TLDR: req.TLDR,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, http.StatusOK, "comment updated.", "comment", toComment(*comment))
}

// Delete soft-deletes the comment; its replies stay reachable via Replies.
func (h *CommentHandler) Delete(c *gin.Context) {
	postID, commentID, err := ids(c, true)
	if err != nil {
		h.fail(c, err)
		return
	}

	user := middleware.CurrentUser(c)
	if err := h.comments.Delete(c.Request.Context(), postID, commentID, user.ID); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CommentHandler) Reply(c *gin.Context) {
	postID, parentID, err := ids(c, true)
	if err != nil {
		h.fail(c, err)
		return
	}
	req, err := bind(c, cleanComment)
	if err != nil {
		h.fail(c, err)
		return
	}

	user := middleware.CurrentUser(c)
	reply, err := h.comments.Reply(c.Request.Context(), postID, parentID, user.ID, req.Body, req.TLDR)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, http.StatusCreated, "reply created.", "comment", toComment(*reply))
}

func (h *CommentHandler) Replies(c *gin.Context) {
	postID, parentID, err := ids(c, true)
	if err != nil {
		h.fail(c, err)
		return
	}

	replies, err := h.comments.FindReplies(c.Request.Context(), postID, parentID, callerID(c), page(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, http.StatusOK, "replies fetched.", "replies", toComments(replies))
}

func (h *CommentHandler) DeleteReply(c *gin.Context) {
	postID, parentID, err := ids(c, true)
	if err != nil {
		h.fail(c, err)
		return
	}
	replyID, err := pathID(c, "replyId")
	if err != nil {
		h.fail(c, err)
		return
	}

	user := middleware.CurrentUser(c)
	if err := h.comments.DeleteReply(c.Request.Context(), postID, parentID, replyID, user.ID); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CommentHandler) Like(c *gin.Context)      { h.react(c, models.ReactionLike, true) }
func (h *CommentHandler) Unlike(c *gin.Context)    { h.react(c, models.ReactionLike, false) }
func (h *CommentHandler) Dislike(c *gin.Context)   { h.react(c, models.ReactionDislike, true) }
func (h *CommentHandler) Undislike(c *gin.Context) { h.react(c, models.ReactionDislike, false) }

func (h *CommentHandler) react(c *gin.Context, kind models.ReactionKind, add bool) {
	postID, commentID, err := ids(c, true)
	if err != nil {
		h.fail(c, err)
		return
	}

	user := middleware.CurrentUser(c)
	apply := h.comments.Unreact
	if add {
		apply = h.comments.React
	}
	outcome, comment, err := apply(c.Request.Context(), postID, commentID, user.ID, kind)
	if err != nil {
		h.fail(c, err)
		return
	}

	status, message := reactionStatus("comment", kind, outcome)
	h.ok(c, status, message, "comment", toComment(*comment))
}

// Liked lists the comments the caller likes.
func (h *CommentHandler) Liked(c *gin.Context) {
	user := middleware.CurrentUser(c)
	comments, err := h.comments.LikedBy(c.Request.Context(), user.ID, page(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, http.StatusOK, "liked comments fetched.", "comments", toComments(comments))
}
