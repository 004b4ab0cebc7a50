package services

import (
	"context"
	"testing"
	"time"

	"quill/internal/db"
	"quill/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSecret = "test-secret"

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := db.Open("sqlite", "file:"+uuid.NewString()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return conn
}

func newUser(t *testing.T, conn *gorm.DB, name, role string) *models.User {
	t.Helper()
	u, _, err := NewUserService(conn, testSecret, time.Hour).SignUp(context.Background(), name, "password123", role)
	require.NoError(t, err)
	return u
}

func newPost(t *testing.T, conn *gorm.DB, author *models.User) *models.Post {
	t.Helper()
	d, err := NewPostService(conn, nil).Create(context.Background(), author.ID, "Hello world", "first body", false)
	require.NoError(t, err)
	return &d.Post
}

func requireStatus(t *testing.T, err error, status int) {
	t.Helper()
	var domainErr *Error
	require.ErrorAs(t, err, &domainErr)
	require.Equal(t, status, domainErr.Status, domainErr.Message)
}
