package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"quill/internal/logging"
	"quill/internal/models"
	"quill/internal/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var commentLog = logging.New("comments")

type CommentService struct {
	db *gorm.DB
}

func NewCommentService(db *gorm.DB) *CommentService {
	return &CommentService{db: db}
}

// CommentDetail is a comment with its reaction counts.
type CommentDetail struct {
	Comment models.Comment
	Tally   Tally
}

type CommentUpdate struct {
	Body *string
	TLDR *string
}

// List returns one page of the post's top-level comments, oldest first.
// Comments of a hidden post are only listed for the post's author.
func (s *CommentService) List(ctx context.Context, postID, callerID string, page utils.Page) ([]CommentDetail, error) {
	db := s.db.WithContext(ctx)
	if _, err := visiblePost(db, postID, callerID); err != nil {
		return nil, err
	}

	var comments []models.Comment
	err := withThread(db).
		Where("post_id = ? AND parent_id IS NULL", postID).
		Order("created_at ASC").
		Offset(page.Offset()).
		Limit(page.Size).
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return s.details(db, comments)
}

func (s *CommentService) Get(ctx context.Context, postID, commentID, callerID string) (*CommentDetail, error) {
	db := s.db.WithContext(ctx)
	if _, err := visiblePost(db, postID, callerID); err != nil {
		return nil, err
	}
	comment, err := findComment(withThread(db), postID, commentID)
	if err != nil {
		return nil, err
	}
	return s.detail(db, comment)
}

// Create adds a top-level comment to a post.
func (s *CommentService) Create(ctx context.Context, postID, userID, body, tldr string) (*CommentDetail, error) {
	comment := models.Comment{UserID: userID, PostID: postID, Body: body, TLDR: tldr}
	err := RunInTransaction(ctx, s.db, func(tx *gorm.DB) error {
		if _, err := visiblePost(tx, postID, userID); err != nil {
			return err
		}
		return tx.Omit(clause.Associations).Create(&comment).Error
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, postID, comment.ID, userID)
}

// Reply creates a comment under parentID and appends it to the parent's
// child list in the same transaction. The reply always lands on the
// parent's post.
func (s *CommentService) Reply(ctx context.Context, postID, parentID, userID, body, tldr string) (*CommentDetail, error) {
	var reply models.Comment
	err := RunInTransaction(ctx, s.db, func(tx *gorm.DB) error {
		if _, err := visiblePost(tx, postID, userID); err != nil {
			return err
		}
		parent, err := findComment(forUpdate(tx), postID, parentID)
		if err != nil {
			return err
		}
		if parent.Deleted {
			return BadRequest("cannot reply to a deleted comment.")
		}

		reply = models.Comment{
			UserID:   userID,
			PostID:   parent.PostID,
			ParentID: &parent.ID,
			Body:     body,
			TLDR:     tldr,
		}
		if err := tx.Omit(clause.Associations).Create(&reply).Error; err != nil {
			return err
		}

		var last int
		err = tx.Model(&models.CommentLink{}).
			Where("parent_id = ?", parent.ID).
			Select("COALESCE(MAX(position), 0)").
			Scan(&last).Error
		if err != nil {
			return err
		}
		return tx.Create(&models.CommentLink{ParentID: parent.ID, ChildID: reply.ID, Position: last + 1}).Error
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, reply.PostID, reply.ID, userID)
}

func (s *CommentService) Update(ctx context.Context, postID, commentID, callerID string, in CommentUpdate) (*CommentDetail, error) {
	err := RunInTransaction(ctx, s.db, func(tx *gorm.DB) error {
		if _, err := visiblePost(tx, postID, callerID); err != nil {
			return err
		}
		comment, err := findComment(forUpdate(tx), postID, commentID)
		if err != nil {
			return err
		}
		if !isOwner(comment.UserID, callerID) {
			return Forbidden("you are not the author of this comment.")
		}
		if comment.Deleted {
			return BadRequest("cannot edit a deleted comment.")
		}

		updates := map[string]any{"last_modified": time.Now()}
		if in.Body != nil {
			updates["body"] = *in.Body
		}
		if in.TLDR != nil {
			updates["tldr"] = *in.TLDR
		}
		return tx.Model(&models.Comment{}).Where("id = ?", comment.ID).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, postID, commentID, callerID)
}

// Delete soft-deletes a comment. Its replies stay where they are and keep
// pointing at it.
func (s *CommentService) Delete(ctx context.Context, postID, commentID, callerID string) error {
	err := RunInTransaction(ctx, s.db, func(tx *gorm.DB) error {
		if _, err := visiblePost(tx, postID, callerID); err != nil {
			return err
		}
		comment, err := findComment(withThread(forUpdate(tx)), postID, commentID)
		if err != nil {
			return err
		}
		if !isOwner(comment.UserID, callerID) {
			return Forbidden("you are not the author of this comment.")
		}
		if comment.Deleted {
			return BadRequest("comment has already been deleted.")
		}
		return softDelete(tx, comment)
	})
	if err != nil {
		return err
	}
	commentLog.Info("comment deleted", slog.String("comment", commentID))
	return nil
}

// DeleteReply unlinks replyID from parentID's live children and soft-deletes
// it. Only the reply's author may do this.
func (s *CommentService) DeleteReply(ctx context.Context, postID, parentID, replyID, callerID string) error {
	err := RunInTransaction(ctx, s.db, func(tx *gorm.DB) error {
		if _, err := visiblePost(tx, postID, callerID); err != nil {
			return err
		}
		parent, err := findComment(forUpdate(tx), postID, parentID)
		if err != nil {
			return err
		}

		var link models.CommentLink
		err = forUpdate(tx).Where("parent_id = ? AND child_id = ? AND detached = ?", parent.ID, replyID, false).
			Take(&link).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NotFound("reply not found under this comment.")
		}
		if err != nil {
			return err
		}

		reply, err := findComment(withThread(forUpdate(tx)), parent.PostID, replyID)
		if err != nil {
			return err
		}
		if !isOwner(reply.UserID, callerID) {
			return Forbidden("you are not the author of this reply.")
		}

		if err := tx.Where("parent_id = ? AND child_id = ?", parent.ID, replyID).Delete(&models.CommentLink{}).Error; err != nil {
			return err
		}
		if reply.Deleted {
			return nil
		}
		return softDelete(tx, reply)
	})
	if err != nil {
		return err
	}
	commentLog.Info("reply deleted", slog.String("parent", parentID), slog.String("reply", replyID))
	return nil
}

// FindReplies lists the live children of an active comment, or the former
// children of a deleted one, in insertion order. A page past the last
// reply is reported like an empty list.
func (s *CommentService) FindReplies(ctx context.Context, postID, parentID, callerID string, page utils.Page) ([]CommentDetail, error) {
	db := s.db.WithContext(ctx)
	if _, err := visiblePost(db, postID, callerID); err != nil {
		return nil, err
	}
	parent, err := findComment(withThread(db), postID, parentID)
	if err != nil {
		return nil, err
	}

	var ids []string
	switch st := parent.State().(type) {
	case models.Active:
		ids = st.Children
	case models.Deleted:
		ids = st.FormerChildren
	}
	ids = page.Slice(ids)
	if len(ids) == 0 {
		return nil, NotFound("no replies found for this comment.")
	}

	var found []models.Comment
	if err := withThread(db).Where("id IN ?", ids).Find(&found).Error; err != nil {
		return nil, err
	}
	byID := make(map[string]models.Comment, len(found))
	for _, c := range found {
		byID[c.ID] = c
	}
	ordered := make([]models.Comment, 0, len(ids))
	for _, id := range ids {
		if c, ok := byID[id]; ok {
			ordered = append(ordered, c)
		}
	}
	return s.details(db, ordered)
}

// React adds userID to the kind ledger of a live comment.
func (s *CommentService) React(ctx context.Context, postID, commentID, userID string, kind models.ReactionKind) (Outcome, *CommentDetail, error) {
	return s.applyReaction(ctx, postID, commentID, userID, func(tx *gorm.DB, c *models.Comment) (Outcome, error) {
		if c.Deleted {
			return 0, BadRequest("cannot react to a deleted comment.")
		}
		return commentLedger.Add(tx, c.ID, userID, kind)
	})
}

// Unreact removes userID from the kind ledger of a comment.
func (s *CommentService) Unreact(ctx context.Context, postID, commentID, userID string, kind models.ReactionKind) (Outcome, *CommentDetail, error) {
	return s.applyReaction(ctx, postID, commentID, userID, func(tx *gorm.DB, c *models.Comment) (Outcome, error) {
		return commentLedger.Remove(tx, c.ID, userID, kind)
	})
}

func (s *CommentService) applyReaction(ctx context.Context, postID, commentID, userID string, op func(tx *gorm.DB, c *models.Comment) (Outcome, error)) (Outcome, *CommentDetail, error) {
	var outcome Outcome
	err := RunInTransaction(ctx, s.db, func(tx *gorm.DB) error {
		if _, err := visiblePost(tx, postID, userID); err != nil {
			return err
		}
		comment, err := findComment(tx, postID, commentID)
		if err != nil {
			return err
		}
		outcome, err = op(tx, comment)
		return err
	})
	if err != nil {
		return 0, nil, err
	}

	detail, err := s.Get(ctx, postID, commentID, userID)
	return outcome, detail, err
}

// LikedBy lists the comments userID currently likes, most recent like first.
func (s *CommentService) LikedBy(ctx context.Context, userID string, page utils.Page) ([]CommentDetail, error) {
	db := s.db.WithContext(ctx)
	var comments []models.Comment
	err := commentLedger.ReactedBy(withThread(db.Model(&models.Comment{})), "comments", userID, models.ReactionLike).
		Joins("JOIN posts ON posts.id = comments.post_id").
		Where("posts.hidden = ? OR posts.author_id = ?", false, userID).
		Order("reactions.created_at DESC").
		Offset(page.Offset()).
		Limit(page.Size).
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return s.details(db, comments)
}

// softDelete redacts the comment and detaches its live children. Links must
// be preloaded.
func softDelete(tx *gorm.DB, c *models.Comment) error {
	now := time.Now()
	c.Redact(now)

	err := tx.Model(&models.CommentLink{}).
		Where("parent_id = ? AND detached = ?", c.ID, false).
		Update("detached", true).Error
	if err != nil {
		return err
	}
	return tx.Model(&models.Comment{}).Where("id = ?", c.ID).Updates(map[string]any{
		"deleted":       true,
		"removed_at":    now,
		"body":          c.Body,
		"tldr":          "",
		"last_modified": now,
	}).Error
}

func withThread(db *gorm.DB) *gorm.DB {
	return db.Preload("User").Preload("Links", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	})
}

func findComment(db *gorm.DB, postID, commentID string) (*models.Comment, error) {
	var c models.Comment
	err := db.Where("comments.id = ? AND comments.post_id = ?", commentID, postID).Take(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NotFound("comment not found.")
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *CommentService) detail(db *gorm.DB, c *models.Comment) (*CommentDetail, error) {
	details, err := s.details(db, []models.Comment{*c})
	if err != nil {
		return nil, err
	}
	return &details[0], nil
}

func (s *CommentService) details(db *gorm.DB, comments []models.Comment) ([]CommentDetail, error) {
	out := make([]CommentDetail, 0, len(comments))
	if len(comments) == 0 {
		return out, nil
	}

	ids := make([]string, len(comments))
	for i, c := range comments {
		ids[i] = c.ID
	}
	tallies, err := commentLedger.Tallies(db, ids)
	if err != nil {
		return nil, err
	}
	for _, c := range comments {
		out = append(out, CommentDetail{Comment: c, Tally: tallies[c.ID]})
	}
	return out, nil
}
