// Package testutil provides shared test doubles and fixtures for backend tests.
package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"sapp/internal/database"
	"sapp/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var seq atomic.Uint64

// NewSQLiteDB returns a migrated in-memory SQLite database with foreign keys enforced.
// The pool is pinned to one connection so every query sees the same database.
func NewSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=on"), &gorm.Config{
		Logger: logger.Discard,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(database.PersistentModels()...))
	return db
}

// CreateUser inserts an enabled user with a unique username derived from name.
func CreateUser(t *testing.T, db *gorm.DB, name string) *models.User {
	t.Helper()
	n := seq.Add(1)
	user := &models.User{
		Username: fmt.Sprintf("%s%d", name, n),
		Email:    fmt.Sprintf("%s%d@example.test", name, n),
		Password: "x",
		Enabled:  true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreatePost inserts a post owned by userID.
func CreatePost(t *testing.T, db *gorm.DB, userID uint) *models.Post {
	t.Helper()
	post := &models.Post{Title: "post", Content: "body", UserID: userID}
	require.NoError(t, db.Omit("User").Create(post).Error)
	return post
}

// CreateComment inserts a comment with an explicit creation time.
func CreateComment(t *testing.T, db *gorm.DB, userID, postID uint, parentID *uint, content string, at time.Time) *models.Comment {
	t.Helper()
	c := &models.Comment{
		Content:         content,
		UserID:          userID,
		PostID:          postID,
		ParentCommentID: parentID,
		CreatedAt:       at,
	}
	require.NoError(t, db.Omit("User", "Post", "ParentComment").Create(c).Error)
	return c
}

// CreateMessage inserts a direct message with an explicit creation time.
func CreateMessage(t *testing.T, db *gorm.DB, senderID, receiverID uint, content string, at time.Time) *models.Message {
	t.Helper()
	m := &models.Message{SenderID: senderID, ReceiverID: receiverID, Content: content, CreatedAt: at}
	require.NoError(t, db.Omit("Sender", "Receiver").Create(m).Error)
	return m
}
