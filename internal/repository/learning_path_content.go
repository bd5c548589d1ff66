package repository

import (
	"context"

	"sapp/internal/models"
	"sapp/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LearningPathContentRepository defines persistence operations for the
// content items of learning paths.
type LearningPathContentRepository interface {
	Create(ctx context.Context, content *models.LearningPathContent) error
	GetByID(ctx context.Context, id uint) (*models.LearningPathContent, error)
	ListByPathOrdered(ctx context.Context, pathID uint) ([]models.LearningPathContent, error)
	CountByPath(ctx context.Context, pathID uint) (int, error)
	CountCompletedByPath(ctx context.Context, pathID uint) (int, error)
	Save(ctx context.Context, content *models.LearningPathContent) error
	SaveAll(ctx context.Context, contents []*models.LearningPathContent) error
	Delete(ctx context.Context, id uint) error
	DeleteByPath(ctx context.Context, pathID uint) (int64, error)
}

type learningPathContentRepository struct {
	db      *gorm.DB
	metrics *observability.DatabaseMetrics
}

// NewLearningPathContentRepository returns a gorm-backed LearningPathContentRepository.
func NewLearningPathContentRepository(db *gorm.DB) LearningPathContentRepository {
	return &learningPathContentRepository{db: db, metrics: observability.NewDatabaseMetrics()}
}

func (r *learningPathContentRepository) Create(ctx context.Context, content *models.LearningPathContent) error {
	defer r.metrics.TrackQuery("create", "learning_path_contents")()
	return conn(ctx, r.db).Omit(clause.Associations).Create(content).Error
}

// GetByID loads the content together with its parent path, which is needed
// for ownership checks.
func (r *learningPathContentRepository) GetByID(ctx context.Context, id uint) (*models.LearningPathContent, error) {
	defer r.metrics.TrackQuery("read", "learning_path_contents")()
	var content models.LearningPathContent
	if err := conn(ctx, r.db).Preload("LearningPath").First(&content, id).Error; err != nil {
		return nil, notFoundOr(err, "Learning path content", id)
	}
	return &content, nil
}

func (r *learningPathContentRepository) ListByPathOrdered(ctx context.Context, pathID uint) ([]models.LearningPathContent, error) {
	defer r.metrics.TrackQuery("list", "learning_path_contents")()
	var contents []models.LearningPathContent
	err := conn(ctx, r.db).Where("learning_path_id = ?", pathID).
		Order("ordinal asc").Order("id asc").
		Find(&contents).Error
	return contents, err
}

func (r *learningPathContentRepository) CountByPath(ctx context.Context, pathID uint) (int, error) {
	defer r.metrics.TrackQuery("count", "learning_path_contents")()
	var count int64
	err := conn(ctx, r.db).Model(&models.LearningPathContent{}).
		Where("learning_path_id = ?", pathID).Count(&count).Error
	return int(count), err
}

func (r *learningPathContentRepository) CountCompletedByPath(ctx context.Context, pathID uint) (int, error) {
	defer r.metrics.TrackQuery("count", "learning_path_contents")()
	var count int64
	err := conn(ctx, r.db).Model(&models.LearningPathContent{}).
		Where("learning_path_id = ? AND is_completed = ?", pathID, true).Count(&count).Error
	return int(count), err
}

func (r *learningPathContentRepository) Save(ctx context.Context, content *models.LearningPathContent) error {
	defer r.metrics.TrackQuery("update", "learning_path_contents")()
	return conn(ctx, r.db).Omit(clause.Associations).Save(content).Error
}

func (r *learningPathContentRepository) SaveAll(ctx context.Context, contents []*models.LearningPathContent) error {
	if len(contents) == 0 {
		return nil
	}
	defer r.metrics.TrackQuery("update", "learning_path_contents")()
	db := conn(ctx, r.db)
	for _, content := range contents {
		if err := db.Omit(clause.Associations).Save(content).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *learningPathContentRepository) Delete(ctx context.Context, id uint) error {
	defer r.metrics.TrackQuery("delete", "learning_path_contents")()
	return conn(ctx, r.db).Delete(&models.LearningPathContent{}, id).Error
}

// DeleteByPath removes every content row of the path with a single statement.
func (r *learningPathContentRepository) DeleteByPath(ctx context.Context, pathID uint) (int64, error) {
	defer r.metrics.TrackQuery("delete", "learning_path_contents")()
	res := conn(ctx, r.db).Where("learning_path_id = ?", pathID).Delete(&models.LearningPathContent{})
	return res.RowsAffected, res.Error
}
