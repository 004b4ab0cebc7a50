package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"quill/internal/auth"
	"quill/internal/logging"
	"quill/internal/models"
	"quill/internal/utils"

	"gorm.io/gorm"
)

var userLog = logging.New("users")

type UserService struct {
	db        *gorm.DB
	secret    []byte
	ttl       time.Duration
	// post listings embed author names
	postCache *utils.Cache
}

func NewUserService(db *gorm.DB, secret string, ttl time.Duration) *UserService {
	return &UserService{db: db, secret: []byte(secret), ttl: ttl}
}

// WithPostCache lets renames and deletions drop the cached post listings.
func (s *UserService) WithPostCache(cache *utils.Cache) *UserService {
	s.postCache = cache
	return s
}

// UserUpdate carries the profile fields a user may change. Nil means unchanged.
type UserUpdate struct {
	Name *string
	Pass *string
	Role *string
}

// SignUp creates an account and returns it with a fresh token.
func (s *UserService) SignUp(ctx context.Context, name, pass, role string) (*models.User, string, error) {
	if role == "" {
		role = models.RoleReader
	}
	if !models.IsValidRole(role) {
		return nil, "", BadRequest("role should be one of: author,reader")
	}

	hash, err := utils.HashPassword(pass)
	if err != nil {
		return nil, "", err
	}

	user := models.User{Name: name, PasswordHash: hash, Role: role}
	err = RunInTransaction(ctx, s.db, func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("name = ?", name).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return Conflict("User with name already exists. Try using a different name.")
		}
		return tx.Create(&user).Error
	})
	if err != nil {
		return nil, "", err
	}

	token, err := s.issue(&user)
	if err != nil {
		return nil, "", err
	}
	userLog.Info("user signed up", slog.String("user", user.ID))
	return &user, token, nil
}

// SignIn checks the credentials and returns a token carrying the current version.
func (s *UserService) SignIn(ctx context.Context, name, pass string) (*models.User, string, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("name = ?", name).Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", NotFound(fmt.Sprintf("user with username: %s was not found.", name))
	}
	if err != nil {
		return nil, "", err
	}

	if !utils.CheckPasswordHash(pass, user.PasswordHash) {
		return nil, "", Unauthorized("Invalid password")
	}

	token, err := s.issue(&user)
	if err != nil {
		return nil, "", err
	}
	return &user, token, nil
}

// Authenticate resolves a bearer token to its user. Tokens of deleted users
// and tokens minted before the last logout are rejected.
func (s *UserService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	data, err := auth.ParseToken(s.secret, token)
	if errors.Is(err, auth.ErrExpiredToken) {
		return nil, Unauthorized("token expired, please sign in again.")
	}
	if err != nil {
		return nil, Unauthorized("invalid token.")
	}

	var user models.User
	err = s.db.WithContext(ctx).Where("id = ?", data.Sub).Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, Unauthorized("user no longer exists.")
	}
	if err != nil {
		return nil, err
	}

	if user.TokenVersion != data.Version {
		return nil, Unauthorized("token is outdated, please sign in again.")
	}
	return &user, nil
}

func (s *UserService) Update(ctx context.Context, userID string, in UserUpdate) (*models.User, error) {
	if in.Role != nil && !models.IsValidRole(*in.Role) {
		return nil, BadRequest("role should be one of: author,reader")
	}

	updates := map[string]any{}
	if in.Pass != nil {
		hash, err := utils.HashPassword(*in.Pass)
		if err != nil {
			return nil, err
		}
		updates["password_hash"] = hash
	}
	if in.Role != nil {
		updates["role"] = *in.Role
	}

	var (
		user    models.User
		renamed bool
	)
	err := RunInTransaction(ctx, s.db, func(tx *gorm.DB) error {
		renamed = false
		err := forUpdate(tx).Where("id = ?", userID).Take(&user).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NotFound("user not found.")
		}
		if err != nil {
			return err
		}

		if in.Name != nil && *in.Name != user.Name {
			var count int64
			if err := tx.Model(&models.User{}).Where("name = ? AND id <> ?", *in.Name, userID).Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return Conflict("User with name already exists. Try using a different name.")
			}
			updates["name"] = *in.Name
			renamed = true
		}

		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&user).Updates(updates).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", userID).Take(&user).Error
	})
	if err != nil {
		return nil, err
	}
	if renamed {
		s.invalidatePosts()
	}
	return &user, nil
}

// Delete removes the account only. Posts, comments and reactions that
// reference it are left in place.
func (s *UserService) Delete(ctx context.Context, userID string) error {
	res := s.db.WithContext(ctx).Where("id = ?", userID).Delete(&models.User{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return NotFound("user not found.")
	}
	s.invalidatePosts()
	userLog.Info("user deleted", slog.String("user", userID))
	return nil
}

// Logout invalidates every token issued so far.
func (s *UserService) Logout(ctx context.Context, userID string) error {
	res := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).
		UpdateColumn("token_version", gorm.Expr("token_version + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return NotFound("user not found.")
	}
	return nil
}

func (s *UserService) issue(u *models.User) (string, error) {
	return auth.IssueToken(s.secret, auth.Data{Sub: u.ID, Role: u.Role, Version: u.TokenVersion}, s.ttl)
}

func (s *UserService) invalidatePosts() {
	if s.postCache != nil {
		s.postCache.DeletePrefix(postListPrefix)
	}
}
