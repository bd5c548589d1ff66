package database

import (
	"testing"

	"sapp/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestPersistentModels_IncludesLearningPathAggregate(t *testing.T) {
	var hasPath, hasContent bool
	for _, model := range PersistentModels() {
		switch model.(type) {
		case *models.LearningPath:
			hasPath = true
		case *models.LearningPathContent:
			hasContent = true
		}
	}
	require.True(t, hasPath, "PersistentModels should include LearningPath")
	require.True(t, hasContent, "PersistentModels should include LearningPathContent")
}

func TestPersistentModels_MessagesAfterUsers(t *testing.T) {
	userIdx, msgIdx := -1, -1
	for i, model := range PersistentModels() {
		switch model.(type) {
		case *models.User:
			userIdx = i
		case *models.Message:
			msgIdx = i
		}
	}
	require.GreaterOrEqual(t, userIdx, 0)
	require.Greater(t, msgIdx, userIdx, "messages reference users and must migrate after them")
}

func TestPersistentModels_AutoMigrate(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, runAutoMigrate(db))

	for _, table := range []string{"users", "posts", "comments", "likes", "learning_paths", "learning_path_contents", "messages"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
	// computed counters are read-only and never become columns
	assert.False(t, db.Migrator().HasColumn(&models.Post{}, "likes_count"))
	assert.True(t, db.Migrator().HasColumn(&models.Comment{}, "parent_comment_id"))
}
