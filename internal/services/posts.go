package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"quill/internal/logging"
	"quill/internal/models"
	"quill/internal/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	postListPrefix = "posts:list:"
	postListTTL    = time.Minute
)

var postLog = logging.New("posts")

type PostService struct {
	db    *gorm.DB
	cache *utils.Cache
}

// NewPostService wires the service. cache may be nil to disable list caching.
func NewPostService(db *gorm.DB, cache *utils.Cache) *PostService {
	return &PostService{db: db, cache: cache}
}

// PostDetail is a post with its derived counters.
type PostDetail struct {
	Post    models.Post
	Viewers int64
	Tally   Tally
}

type PostUpdate struct {
	Title  *string
	Body   *string
	Hidden *bool
}

// List returns one page of visible posts, newest first.
func (s *PostService) List(ctx context.Context, page utils.Page) ([]PostDetail, error) {
	key := fmt.Sprintf("%s%d:%d", postListPrefix, page.Number, page.Size)
	if s.cache != nil {
		if cached, ok := s.cache.Get(key).([]PostDetail); ok {
			return cached, nil
		}
	}

	var posts []models.Post
	err := s.db.WithContext(ctx).
		Preload("Author").
		Where("hidden = ?", false).
		Order("created_at DESC").
		Offset(page.Offset()).
		Limit(page.Size).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}

	details, err := s.details(ctx, posts)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Set(key, details, postListTTL)
	}
	return details, nil
}

func (s *PostService) Create(ctx context.Context, authorID, title, body string, hidden bool) (*PostDetail, error) {
	post := models.Post{AuthorID: authorID, Title: title, Body: body, Hidden: hidden}
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(&post).Error; err != nil {
		return nil, err
	}
	s.invalidate()
	postLog.Info("post created", slog.String("post", post.ID), slog.String("author", authorID))
	return s.detail(ctx, post.ID)
}

// Get returns a post and records callerID as a viewer. viewed is false when
// the caller had already been counted or is anonymous.
func (s *PostService) Get(ctx context.Context, postID, callerID string) (detail *PostDetail, viewed bool, err error) {
	post, err := s.visible(s.db.WithContext(ctx), postID, callerID)
	if err != nil {
		return nil, false, err
	}

	if callerID != "" {
		res := s.db.WithContext(ctx).
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.PostView{PostID: post.ID, UserID: callerID})
		if res.Error != nil {
			return nil, false, res.Error
		}
		viewed = res.RowsAffected > 0
	}
	if viewed {
		s.invalidate()
	}

	detail, err = s.detail(ctx, post.ID)
	return detail, viewed, err
}

func (s *PostService) Update(ctx context.Context, postID, callerID string, in PostUpdate) (*PostDetail, error) {
	err := RunInTransaction(ctx, s.db, func(tx *gorm.DB) error {
		post, err := lockPost(tx, postID)
		if err != nil {
			return err
		}
		if !isOwner(post.AuthorID, callerID) {
			return Forbidden("you are not the author of this post.")
		}

		updates := map[string]any{"last_modified": time.Now()}
		if in.Title != nil {
			updates["title"] = *in.Title
		}
		if in.Body != nil {
			updates["body"] = *in.Body
		}
		if in.Hidden != nil {
			updates["hidden"] = *in.Hidden
		}
		return tx.Model(&models.Post{}).Where("id = ?", post.ID).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}
	s.invalidate()
	return s.detail(ctx, postID)
}

// Delete removes the post with its viewer and reaction rows. Comments on it
// are kept.
func (s *PostService) Delete(ctx context.Context, postID, callerID string) error {
	err := RunInTransaction(ctx, s.db, func(tx *gorm.DB) error {
		post, err := lockPost(tx, postID)
		if err != nil {
			return err
		}
		if !isOwner(post.AuthorID, callerID) {
			return Forbidden("you are not the author of this post.")
		}

		if err := tx.Where("post_id = ?", post.ID).Delete(&models.PostView{}).Error; err != nil {
			return err
		}
		if err := postLedger.deleteAll(tx, post.ID); err != nil {
			return err
		}
		return tx.Delete(&models.Post{}, "id = ?", post.ID).Error
	})
	if err != nil {
		return err
	}
	s.invalidate()
	postLog.Info("post deleted", slog.String("post", postID))
	return nil
}

// React adds userID to the kind ledger of the post.
func (s *PostService) React(ctx context.Context, postID, userID string, kind models.ReactionKind) (Outcome, *PostDetail, error) {
	return s.applyReaction(ctx, postID, userID, func(tx *gorm.DB) (Outcome, error) {
		return postLedger.Add(tx, postID, userID, kind)
	})
}

// Unreact removes userID from the kind ledger of the post.
func (s *PostService) Unreact(ctx context.Context, postID, userID string, kind models.ReactionKind) (Outcome, *PostDetail, error) {
	return s.applyReaction(ctx, postID, userID, func(tx *gorm.DB) (Outcome, error) {
		return postLedger.Remove(tx, postID, userID, kind)
	})
}

func (s *PostService) applyReaction(ctx context.Context, postID, userID string, op func(tx *gorm.DB) (Outcome, error)) (Outcome, *PostDetail, error) {
	var outcome Outcome
	err := RunInTransaction(ctx, s.db, func(tx *gorm.DB) error {
		if _, err := s.visible(tx, postID, userID); err != nil {
			return err
		}
		var err error
		outcome, err = op(tx)
		return err
	})
	if err != nil {
		return 0, nil, err
	}
	if outcome.Mutated() {
		s.invalidate()
	}

	detail, err := s.detail(ctx, postID)
	return outcome, detail, err
}

// LikedBy lists the posts userID currently likes, most recent like first.
func (s *PostService) LikedBy(ctx context.Context, userID string, page utils.Page) ([]PostDetail, error) {
	var posts []models.Post
	q := s.db.WithContext(ctx).Model(&models.Post{}).Preload("Author")
	err := postLedger.ReactedBy(q, "posts", userID, models.ReactionLike).
		Where("posts.hidden = ? OR posts.author_id = ?", false, userID).
		Order("reactions.created_at DESC").
		Offset(page.Offset()).
		Limit(page.Size).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return s.details(ctx, posts)
}

// visible loads a post the caller may see. Hidden posts look missing to
// everyone but their author.
func (s *PostService) visible(db *gorm.DB, postID, callerID string) (*models.Post, error) {
	return visiblePost(db, postID, callerID)
}

func visiblePost(db *gorm.DB, postID, callerID string) (*models.Post, error) {
	var post models.Post
	err := db.Where("id = ?", postID).Take(&post).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NotFound("post not found.")
	}
	if err != nil {
		return nil, err
	}
	if post.Hidden && post.AuthorID != callerID {
		return nil, NotFound("post not found.")
	}
	return &post, nil
}

func lockPost(tx *gorm.DB, postID string) (*models.Post, error) {
	var post models.Post
	err := forUpdate(tx).Where("id = ?", postID).Take(&post).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NotFound("post not found.")
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (s *PostService) detail(ctx context.Context, postID string) (*PostDetail, error) {
	var post models.Post
	if err := s.db.WithContext(ctx).Preload("Author").Where("id = ?", postID).Take(&post).Error; err != nil {
		return nil, err
	}
	details, err := s.details(ctx, []models.Post{post})
	if err != nil {
		return nil, err
	}
	return &details[0], nil
}

func (s *PostService) details(ctx context.Context, posts []models.Post) ([]PostDetail, error) {
	out := make([]PostDetail, 0, len(posts))
	if len(posts) == 0 {
		return out, nil
	}

	ids := make([]string, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}

	db := s.db.WithContext(ctx)
	tallies, err := postLedger.Tallies(db, ids)
	if err != nil {
		return nil, err
	}

	type viewRow struct {
		PostID string
		Count  int64
	}
	var rows []viewRow
	err = db.Model(&models.PostView{}).
		Select("post_id, COUNT(*) AS count").
		Where("post_id IN ?", ids).
		Group("post_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	views := make(map[string]int64, len(rows))
	for _, r := range rows {
		views[r.PostID] = r.Count
	}

	for _, p := range posts {
		out = append(out, PostDetail{Post: p, Viewers: views[p.ID], Tally: tallies[p.ID]})
	}
	return out, nil
}

func (s *PostService) invalidate() {
	if s.cache != nil {
		s.cache.DeletePrefix(postListPrefix)
	}
}
