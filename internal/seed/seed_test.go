package seed

import (
	"context"
	"testing"

	"sapp/internal/models"
	"sapp/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func smallOptions() Options {
	return Options{
		NumUsers:        3,
		PostsPerUser:    2,
		CommentsPerPost: 2,
		MaxReplyDepth:   2,
		LikesPerPost:    2,
		PathsPerUser:    1,
		MessagesPerUser: 2,
		SkipBcrypt:      true,
		BatchSize:       4,
		RandSeed:        42,
	}
}

func TestSeeder_Seed(t *testing.T) {
	db := testutil.NewSQLiteDB(t)

	report, err := NewSeeder(db, smallOptions()).Seed(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, report.Users)
	assert.Equal(t, 6, report.Posts)
	assert.Equal(t, 12, report.Likes)
	assert.Equal(t, 3, report.LearningPaths)
	assert.Equal(t, 6, report.Messages)
	assert.GreaterOrEqual(t, report.Comments, 12)

	var users, posts, comments, likes, paths int64
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	require.NoError(t, db.Model(&models.Post{}).Count(&posts).Error)
	require.NoError(t, db.Model(&models.Comment{}).Count(&comments).Error)
	require.NoError(t, db.Model(&models.Like{}).Count(&likes).Error)
	require.NoError(t, db.Model(&models.LearningPath{}).Count(&paths).Error)
	assert.EqualValues(t, report.Users, users)
	assert.EqualValues(t, report.Posts, posts)
	assert.EqualValues(t, report.Comments, comments)
	assert.EqualValues(t, report.Likes, likes)
	assert.EqualValues(t, report.LearningPaths, paths)

	var messages, selfMessages int64
	require.NoError(t, db.Model(&models.Message{}).Count(&messages).Error)
	require.NoError(t, db.Model(&models.Message{}).Where("sender_id = receiver_id").Count(&selfMessages).Error)
	assert.EqualValues(t, report.Messages, messages)
	assert.Zero(t, selfMessages)

	var orphans int64
	require.NoError(t, db.Raw(`SELECT COUNT(*) FROM comments c
		JOIN comments p ON p.id = c.parent_comment_id
		WHERE p.post_id <> c.post_id`).Scan(&orphans).Error)
	assert.Zero(t, orphans, "replies must share their parent's post")
}

func TestSeeder_CleanRemovesPreviousData(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	ctx := context.Background()

	_, err := NewSeeder(db, smallOptions()).Seed(ctx)
	require.NoError(t, err)

	opts := smallOptions()
	opts.ShouldClean = true
	opts.RandSeed = 43
	report, err := NewSeeder(db, opts).Seed(ctx)
	require.NoError(t, err)

	var users, posts int64
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	require.NoError(t, db.Model(&models.Post{}).Count(&posts).Error)
	assert.EqualValues(t, report.Users, users)
	assert.EqualValues(t, report.Posts, posts)
}

func TestSeeder_DryRunWritesNothing(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	opts := smallOptions()
	opts.DryRun = true

	report, err := NewSeeder(db, opts).Seed(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 6, report.Posts)

	var users int64
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	assert.Zero(t, users)
}
