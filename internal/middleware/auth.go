package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"quill/internal/models"
	"quill/internal/services"

	"github.com/gin-gonic/gin"
)

const (
	CheckUserKey = "user"
	authErrorKey = "auth_error"
)

// Authenticator resolves a bearer token to a user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

// LoadUser attaches the caller when a valid bearer token is present. A bad
// token leaves the request anonymous; AuthRequired reports why.
func LoadUser(a Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.Next()
			return
		}

		user, err := a.Authenticate(c.Request.Context(), token)
		if err != nil {
			c.Set(authErrorKey, err)
		} else {
			c.Set(CheckUserKey, user)
		}
		c.Next()
	}
}

// AuthRequired rejects requests LoadUser could not attach a user to.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) != nil {
			c.Next()
			return
		}

		message := "you are not logged in, please sign in to get access."
		if v, ok := c.Get(authErrorKey); ok {
			var domainErr *services.Error
			if err, _ := v.(error); errors.As(err, &domainErr) {
				message = domainErr.Message
			}
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": message})
	}
}

// RequireRole must run after AuthRequired.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil || user.Role != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"message": "only " + role + "s can access this resource",
			})
			return
		}
		c.Next()
	}
}

// CurrentUser returns the authenticated caller or nil.
func CurrentUser(c *gin.Context) *models.User {
	if v, ok := c.Get(CheckUserKey); ok {
		if u, ok := v.(*models.User); ok {
			return u
		}
	}
	return nil
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
