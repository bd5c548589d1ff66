package repository

import (
	"context"

	"sapp/internal/models"
	"sapp/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CommentRepository defines interface for comment operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	ListTopLevelByPost(ctx context.Context, postID uint) ([]*models.Comment, error)
	ListReplies(ctx context.Context, parentID uint) ([]*models.Comment, error)
	ListReplyIDs(ctx context.Context, parentIDs []uint) ([]uint, error)
	CountByPost(ctx context.Context, postID uint) (int, error)
	Update(ctx context.Context, comment *models.Comment) error
	DeleteByIDs(ctx context.Context, ids []uint) error
}

type commentRepository struct {
	db      *gorm.DB
	metrics *observability.DatabaseMetrics
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db, metrics: observability.NewDatabaseMetrics()}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	defer r.metrics.TrackQuery("create", "comments")()
	return conn(ctx, r.db).Omit(clause.Associations).Create(comment).Error
}

func (r *commentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	defer r.metrics.TrackQuery("read", "comments")()
	var comment models.Comment
	if err := conn(ctx, r.db).Preload("User").First(&comment, id).Error; err != nil {
		return nil, notFoundOr(err, "Comment", id)
	}
	return &comment, nil
}

// ListTopLevelByPost returns the post's comments without a parent, newest first.
func (r *commentRepository) ListTopLevelByPost(ctx context.Context, postID uint) ([]*models.Comment, error) {
	defer r.metrics.TrackQuery("list", "comments")()
	var comments []*models.Comment
	err := conn(ctx, r.db).Preload("User").
		Where("post_id = ? AND parent_comment_id IS NULL", postID).
		Order("created_at desc").Order("id desc").
		Find(&comments).Error
	return comments, err
}

// ListReplies returns the direct replies of a comment, oldest first.
func (r *commentRepository) ListReplies(ctx context.Context, parentID uint) ([]*models.Comment, error) {
	defer r.metrics.TrackQuery("list", "comments")()
	var comments []*models.Comment
	err := conn(ctx, r.db).Preload("User").
		Where("parent_comment_id = ?", parentID).
		Order("created_at asc").Order("id asc").
		Find(&comments).Error
	return comments, err
}

// ListReplyIDs returns the ids of the direct replies of any of parentIDs.
func (r *commentRepository) ListReplyIDs(ctx context.Context, parentIDs []uint) ([]uint, error) {
	var ids []uint
	if len(parentIDs) == 0 {
		return ids, nil
	}
	defer r.metrics.TrackQuery("list", "comments")()
	err := conn(ctx, r.db).Model(&models.Comment{}).
		Where("parent_comment_id IN ?", parentIDs).
		Pluck("id", &ids).Error
	return ids, err
}

func (r *commentRepository) CountByPost(ctx context.Context, postID uint) (int, error) {
	defer r.metrics.TrackQuery("count", "comments")()
	var count int64
	err := conn(ctx, r.db).Model(&models.Comment{}).Where("post_id = ?", postID).Count(&count).Error
	return int(count), err
}

func (r *commentRepository) Update(ctx context.Context, comment *models.Comment) error {
	defer r.metrics.TrackQuery("update", "comments")()
	return conn(ctx, r.db).Omit(clause.Associations).Save(comment).Error
}

func (r *commentRepository) DeleteByIDs(ctx context.Context, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	defer r.metrics.TrackQuery("delete", "comments")()
	return conn(ctx, r.db).Where("id IN ?", ids).Delete(&models.Comment{}).Error
}
