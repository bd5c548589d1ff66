package repository

import (
	"context"

	"sapp/internal/models"
	"sapp/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	Exists(ctx context.Context, id uint) (bool, error)
	List(ctx context.Context, limit, offset int) ([]*models.Post, error)
	ListByUser(ctx context.Context, userID uint, limit, offset int) ([]*models.Post, error)
	Delete(ctx context.Context, id uint) error
	DeleteComments(ctx context.Context, postID uint) error
	DeleteLikes(ctx context.Context, postID uint) error
	Like(ctx context.Context, userID, postID uint) error
	Unlike(ctx context.Context, userID, postID uint) error
}

// postRepository implements PostRepository
type postRepository struct {
	db      *gorm.DB
	metrics *observability.DatabaseMetrics
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db, metrics: observability.NewDatabaseMetrics()}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	defer r.metrics.TrackQuery("create", "posts")()
	return conn(ctx, r.db).Omit(clause.Associations).Create(post).Error
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	defer r.metrics.TrackQuery("read", "posts")()
	var post models.Post
	if err := applyPostDetails(conn(ctx, r.db)).Preload("User").First(&post, id).Error; err != nil {
		return nil, notFoundOr(err, "Post", id)
	}
	return &post, nil
}

func (r *postRepository) Exists(ctx context.Context, id uint) (bool, error) {
	defer r.metrics.TrackQuery("count", "posts")()
	var count int64
	err := conn(ctx, r.db).Model(&models.Post{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// List returns all posts, newest id first.
func (r *postRepository) List(ctx context.Context, limit, offset int) ([]*models.Post, error) {
	defer r.metrics.TrackQuery("list", "posts")()
	var posts []*models.Post
	err := applyPostDetails(conn(ctx, r.db)).
		Preload("User").
		Order("posts.id DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	return posts, err
}

func (r *postRepository) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]*models.Post, error) {
	defer r.metrics.TrackQuery("list", "posts")()
	var posts []*models.Post
	err := applyPostDetails(conn(ctx, r.db)).
		Preload("User").
		Where("posts.user_id = ?", userID).
		Order("posts.id DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	return posts, err
}

func (r *postRepository) Delete(ctx context.Context, id uint) error {
	defer r.metrics.TrackQuery("delete", "posts")()
	return conn(ctx, r.db).Delete(&models.Post{}, id).Error
}

func (r *postRepository) DeleteComments(ctx context.Context, postID uint) error {
	defer r.metrics.TrackQuery("delete", "comments")()
	return conn(ctx, r.db).Where("post_id = ?", postID).Delete(&models.Comment{}).Error
}

func (r *postRepository) DeleteLikes(ctx context.Context, postID uint) error {
	defer r.metrics.TrackQuery("delete", "likes")()
	return conn(ctx, r.db).Where("post_id = ?", postID).Delete(&models.Like{}).Error
}

// Like records a like; liking twice is a no-op.
func (r *postRepository) Like(ctx context.Context, userID, postID uint) error {
	defer r.metrics.TrackQuery("create", "likes")()
	like := &models.Like{UserID: userID, PostID: postID}
	return conn(ctx, r.db).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}, {Name: "post_id"}}, DoNothing: true}).
		Create(like).Error
}

func (r *postRepository) Unlike(ctx context.Context, userID, postID uint) error {
	defer r.metrics.TrackQuery("delete", "likes")()
	return conn(ctx, r.db).Where("user_id = ? AND post_id = ?", userID, postID).Delete(&models.Like{}).Error
}

func applyPostDetails(db *gorm.DB) *gorm.DB {
	return db.Select("posts.*, " +
		"(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id) as comments_count, " +
		"(SELECT COUNT(*) FROM likes WHERE likes.post_id = posts.id) as likes_count")
}
