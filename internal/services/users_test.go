package services

import (
	"context"
	"net/http"
	"testing"
	"time"

	"quill/internal/models"
	"quill/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignUpAndSignIn(t *testing.T) {
	ctx := context.Background()
	svc := NewUserService(newTestDB(t), testSecret, time.Hour)

	u, token, err := svc.SignUp(ctx, "alice", "password123", models.RoleAuthor)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, models.RoleAuthor, u.Role)
	assert.NotEqual(t, "password123", u.PasswordHash)

	_, token, err = svc.SignIn(ctx, "alice", "password123")
	require.NoError(t, err)

	got, err := svc.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
}

func TestSignUpDefaultsToReader(t *testing.T) {
	u, _, err := NewUserService(newTestDB(t), testSecret, time.Hour).SignUp(context.Background(), "bob", "password123", "")
	require.NoError(t, err)
	assert.Equal(t, models.RoleReader, u.Role)
}

func TestSignUpDuplicateName(t *testing.T) {
	ctx := context.Background()
	svc := NewUserService(newTestDB(t), testSecret, time.Hour)

	_, _, err := svc.SignUp(ctx, "alice", "password123", "")
	require.NoError(t, err)
	_, _, err = svc.SignUp(ctx, "alice", "another-pass", "")
	requireStatus(t, err, http.StatusConflict)
}

func TestSignInFailures(t *testing.T) {
	ctx := context.Background()
	svc := NewUserService(newTestDB(t), testSecret, time.Hour)
	_, _, err := svc.SignUp(ctx, "alice", "password123", "")
	require.NoError(t, err)

	_, _, err = svc.SignIn(ctx, "nobody", "password123")
	requireStatus(t, err, http.StatusNotFound)

	_, _, err = svc.SignIn(ctx, "alice", "wrong-password")
	requireStatus(t, err, http.StatusUnauthorized)
}

func TestLogoutInvalidatesTokens(t *testing.T) {
	ctx := context.Background()
	svc := NewUserService(newTestDB(t), testSecret, time.Hour)
	u, token, err := svc.SignUp(ctx, "alice", "password123", "")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, u.ID))

	_, err = svc.Authenticate(ctx, token)
	requireStatus(t, err, http.StatusUnauthorized)

	_, fresh, err := svc.SignIn(ctx, "alice", "password123")
	require.NoError(t, err)
	_, err = svc.Authenticate(ctx, fresh)
	assert.NoError(t, err)
}

func TestAuthenticateRejectsGarbage(t *testing.T) {
	svc := NewUserService(newTestDB(t), testSecret, time.Hour)
	_, err := svc.Authenticate(context.Background(), "not-a-token")
	requireStatus(t, err, http.StatusUnauthorized)
}

func TestUpdateUser(t *testing.T) {
	ctx := context.Background()
	conn := newTestDB(t)
	svc := NewUserService(conn, testSecret, time.Hour)
	u := newUser(t, conn, "alice", "")
	newUser(t, conn, "bob", "")

	taken := "bob"
	_, err := svc.Update(ctx, u.ID, UserUpdate{Name: &taken})
	requireStatus(t, err, http.StatusConflict)

	name, pass, role := "alicia", "new-password", models.RoleAuthor
	updated, err := svc.Update(ctx, u.ID, UserUpdate{Name: &name, Pass: &pass, Role: &role})
	require.NoError(t, err)
	assert.Equal(t, "alicia", updated.Name)
	assert.Equal(t, models.RoleAuthor, updated.Role)

	_, _, err = svc.SignIn(ctx, "alicia", "new-password")
	assert.NoError(t, err)

	bad := "admin"
	_, err = svc.Update(ctx, u.ID, UserUpdate{Role: &bad})
	requireStatus(t, err, http.StatusBadRequest)
}

func TestDeleteUserLeavesContent(t *testing.T) {
	ctx := context.Background()
	conn := newTestDB(t)
	svc := NewUserService(conn, testSecret, time.Hour)
	u := newUser(t, conn, "alice", models.RoleAuthor)
	p := newPost(t, conn, u)

	require.NoError(t, svc.Delete(ctx, u.ID))
	requireStatus(t, svc.Delete(ctx, u.ID), http.StatusNotFound)

	var count int64
	require.NoError(t, conn.Model(&models.Post{}).Where("id = ?", p.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestRenameAndDeleteDropCachedPostListings(t *testing.T) {
	ctx := context.Background()
	conn := newTestDB(t)
	cache, err := utils.NewCache(16)
	require.NoError(t, err)
	users := NewUserService(conn, testSecret, time.Hour).WithPostCache(cache)
	posts := NewPostService(conn, cache)
	alice := newUser(t, conn, "alice", models.RoleAuthor)
	newPost(t, conn, alice)
	page := utils.ParsePage("", "")

	_, err = posts.List(ctx, page)
	require.NoError(t, err)
	require.Equal(t, 1, cache.Len())

	role := models.RoleAuthor
	_, err = users.Update(ctx, alice.ID, UserUpdate{Role: &role})
	require.NoError(t, err)
	assert.Equal(t, 1, cache.Len(), "only a rename touches listings")

	name := "alicia"
	_, err = users.Update(ctx, alice.ID, UserUpdate{Name: &name})
	require.NoError(t, err)
	assert.Zero(t, cache.Len())

	list, err := posts.List(ctx, page)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "alicia", list[0].Post.Author.Name)

	require.NoError(t, users.Delete(ctx, alice.ID))
	assert.Zero(t, cache.Len())

	list, err = posts.List(ctx, page)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Empty(t, list[0].Post.Author.ID)
}
