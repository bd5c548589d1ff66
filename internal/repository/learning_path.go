package repository

import (
	"context"

	"sapp/internal/models"
	"sapp/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LearningPathRepository defines persistence operations for learning paths.
type LearningPathRepository interface {
	Create(ctx context.Context, path *models.LearningPath) error
	GetByID(ctx context.Context, id uint) (*models.LearningPath, error)
	Exists(ctx context.Context, id uint) (bool, error)
	ListByUser(ctx context.Context, userID uint) ([]*models.LearningPath, error)
	Update(ctx context.Context, path *models.LearningPath) error
	Delete(ctx context.Context, id uint) error
}

type learningPathRepository struct {
	db      *gorm.DB
	metrics *observability.DatabaseMetrics
}

// NewLearningPathRepository returns a gorm-backed LearningPathRepository.
func NewLearningPathRepository(db *gorm.DB) LearningPathRepository {
	return &learningPathRepository{db: db, metrics: observability.NewDatabaseMetrics()}
}

func (r *learningPathRepository) Create(ctx context.Context, path *models.LearningPath) error {
	defer r.metrics.TrackQuery("create", "learning_paths")()
	return conn(ctx, r.db).Omit(clause.Associations).Create(path).Error
}

// GetByID loads the path with its owner. Contents are not loaded.
func (r *learningPathRepository) GetByID(ctx context.Context, id uint) (*models.LearningPath, error) {
	defer r.metrics.TrackQuery("read", "learning_paths")()
	var path models.LearningPath
	if err := conn(ctx, r.db).Preload("User").First(&path, id).Error; err != nil {
		return nil, notFoundOr(err, "Learning path", id)
	}
	return &path, nil
}

func (r *learningPathRepository) Exists(ctx context.Context, id uint) (bool, error) {
	defer r.metrics.TrackQuery("count", "learning_paths")()
	var count int64
	err := conn(ctx, r.db).Model(&models.LearningPath{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *learningPathRepository) ListByUser(ctx context.Context, userID uint) ([]*models.LearningPath, error) {
	defer r.metrics.TrackQuery("list", "learning_paths")()
	var paths []*models.LearningPath
	err := conn(ctx, r.db).Preload("User").Where("user_id = ?", userID).Order("id asc").Find(&paths).Error
	return paths, err
}

func (r *learningPathRepository) Update(ctx context.Context, path *models.LearningPath) error {
	defer r.metrics.TrackQuery("update", "learning_paths")()
	return conn(ctx, r.db).Omit(clause.Associations).Save(path).Error
}

func (r *learningPathRepository) Delete(ctx context.Context, id uint) error {
	defer r.metrics.TrackQuery("delete", "learning_paths")()
	return conn(ctx, r.db).Delete(&models.LearningPath{}, id).Error
}
