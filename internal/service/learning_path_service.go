package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"sapp/internal/middleware"
	"sapp/internal/models"
	"sapp/internal/observability"
	"sapp/internal/repository"
	"sapp/internal/validation"

	"go.opentelemetry.io/otel/attribute"
)

// LearningPathService manages learning paths and their ordered content items.
type LearningPathService struct {
	tx          repository.Transactor
	pathRepo    repository.LearningPathRepository
	contentRepo repository.LearningPathContentRepository
	userRepo    repository.UserRepository
	logger      *slog.Logger
	now         func() time.Time
}

// ContentSpec describes a content item supplied by the caller.
type ContentSpec struct {
	ContentTitle       string
	ContentDescription string
	ContentURL         string
	Ordinal            int
}

type CreateLearningPathInput struct {
	UserID   uint
	Name     string
	Tag      int
	Contents []ContentSpec
}

type UpdateLearningPathInput struct {
	PathID uint
	Name   string
	Tag    int
}

type DeleteLearningPathInput struct {
	PathID uint
	UserID uint
}

type UpdateContentCompletionInput struct {
	ContentID   uint
	IsCompleted bool
	UserID      uint
}

type DeleteContentInput struct {
	ContentID uint
	UserID    uint
}

type BatchUpdateContentCompletionInput struct {
	ContentIDs  []uint
	IsCompleted bool
	UserID      uint
}

func NewLearningPathService(
	tx repository.Transactor,
	pathRepo repository.LearningPathRepository,
	contentRepo repository.LearningPathContentRepository,
	userRepo repository.UserRepository,
) *LearningPathService {
	return &LearningPathService{
		tx:          tx,
		pathRepo:    pathRepo,
		contentRepo: contentRepo,
		userRepo:    userRepo,
		logger:      middleware.Logger,
		now:         time.Now,
	}
}

func (s *LearningPathService) GetLearningPathsByUserID(ctx context.Context, userID uint) (summaries []models.LearningPathSummary, err error) {
	ctx, finish := observability.StartOperation(ctx, "learning_path.list",
		attribute.Int64("user.id", int64(userID)))
	defer func() { finish(err) }()

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		paths, err := s.pathRepo.ListByUser(ctx, userID)
		if err != nil {
			return fmt.Errorf("list learning paths of user %d: %w", userID, err)
		}
		summaries = make([]models.LearningPathSummary, 0, len(paths))
		for _, p := range paths {
			summary, err := s.summarize(ctx, p)
			if err != nil {
				return err
			}
			summaries = append(summaries, *summary)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return summaries, nil
}

func (s *LearningPathService) GetLearningPathByID(ctx context.Context, pathID uint) (summary *models.LearningPathSummary, err error) {
	ctx, finish := observability.StartOperation(ctx, "learning_path.get",
		attribute.Int64("learning_path.id", int64(pathID)))
	defer func() { finish(err) }()

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		path, err := s.pathRepo.GetByID(ctx, pathID)
		if err != nil {
			return err
		}
		summary, err = s.summarize(ctx, path)
		return err
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}

// CreateLearningPath inserts the path and then its initial contents, all in one transaction.
func (s *LearningPathService) CreateLearningPath(ctx context.Context, in CreateLearningPathInput) (summary *models.LearningPathSummary, err error) {
	ctx, finish := observability.StartOperation(ctx, "learning_path.create",
		attribute.Int64("user.id", int64(in.UserID)),
		attribute.Int("contents", len(in.Contents)))
	defer func() { finish(err) }()

	if verr := validation.ValidateRequired("Name", in.Name); verr != nil {
		return nil, models.NewValidationError(verr.Error())
	}
	for _, spec := range in.Contents {
		if verr := validation.ValidateRequired("Content title", spec.ContentTitle); verr != nil {
			return nil, models.NewValidationError(verr.Error())
		}
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		user, err := s.userRepo.GetByID(ctx, in.UserID)
		if err != nil {
			return err
		}

		path := &models.LearningPath{Name: in.Name, Tag: in.Tag, UserID: user.ID}
		if err := s.pathRepo.Create(ctx, path); err != nil {
			return fmt.Errorf("create learning path: %w", err)
		}
		path.User = *user

		for _, spec := range in.Contents {
			if _, err := s.insertContent(ctx, path.ID, spec); err != nil {
				return err
			}
		}

		summary, err = s.summarize(ctx, path)
		return err
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}

// UpdateLearningPath overwrites name and tag. Any caller holding the id may rename a path.
func (s *LearningPathService) UpdateLearningPath(ctx context.Context, in UpdateLearningPathInput) (summary *models.LearningPathSummary, err error) {
	ctx, finish := observability.StartOperation(ctx, "learning_path.update",
		attribute.Int64("learning_path.id", int64(in.PathID)))
	defer func() { finish(err) }()

	if verr := validation.ValidateRequired("Name", in.Name); verr != nil {
		return nil, models.NewValidationError(verr.Error())
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		path, err := s.pathRepo.GetByID(ctx, in.PathID)
		if err != nil {
			return err
		}
		path.Name = in.Name
		path.Tag = in.Tag
		if err := s.pathRepo.Update(ctx, path); err != nil {
			return fmt.Errorf("update learning path %d: %w", path.ID, err)
		}
		summary, err = s.summarize(ctx, path)
		return err
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}

// DeleteLearningPath removes the owner's path. Contents go first in one bulk statement,
// the loaded collection is dropped, then the path row is deleted.
func (s *LearningPathService) DeleteLearningPath(ctx context.Context, in DeleteLearningPathInput) (err error) {
	ctx, finish := observability.StartOperation(ctx, "learning_path.delete",
		attribute.Int64("learning_path.id", int64(in.PathID)))
	defer func() { finish(err) }()

	return s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		path, err := s.pathRepo.GetByID(ctx, in.PathID)
		if err != nil {
			return err
		}
		if !ownsPath(path, in.UserID) {
			return models.NewUnauthorizedError("You can only delete your own learning paths")
		}

		removed, err := s.contentRepo.DeleteByPath(ctx, path.ID)
		if err != nil {
			s.logger.ErrorContext(ctx, "failed to delete learning path contents",
				slog.Uint64("learning_path_id", uint64(path.ID)), slog.String("error", err.Error()))
			return fmt.Errorf("delete contents of learning path %d: %w", path.ID, err)
		}
		path.Contents = nil

		if err := s.pathRepo.Delete(ctx, path.ID); err != nil {
			s.logger.ErrorContext(ctx, "failed to delete learning path",
				slog.Uint64("learning_path_id", uint64(path.ID)), slog.String("error", err.Error()))
			return fmt.Errorf("delete learning path %d: %w", path.ID, err)
		}

		s.logger.InfoContext(ctx, "learning path deleted",
			slog.Uint64("learning_path_id", uint64(path.ID)), slog.Int64("contents_removed", removed))
		return nil
	})
}

// AddContent appends a content item to a path. No ownership check is applied.
func (s *LearningPathService) AddContent(ctx context.Context, pathID uint, spec ContentSpec) (summary *models.LearningPathContentSummary, err error) {
	ctx, finish := observability.StartOperation(ctx, "learning_path.add_content",
		attribute.Int64("learning_path.id", int64(pathID)))
	defer func() { finish(err) }()

	if verr := validation.ValidateRequired("Content title", spec.ContentTitle); verr != nil {
		return nil, models.NewValidationError(verr.Error())
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		exists, err := s.pathRepo.Exists(ctx, pathID)
		if err != nil {
			return fmt.Errorf("check learning path %d: %w", pathID, err)
		}
		if !exists {
			return models.NewNotFoundError("Learning path", pathID)
		}
		content, err := s.insertContent(ctx, pathID, spec)
		if err != nil {
			return err
		}
		out := content.Summary()
		summary = &out
		return nil
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}

// UpdateContentCompletion sets the completion flag of an item the caller owns through its path.
func (s *LearningPathService) UpdateContentCompletion(ctx context.Context, in UpdateContentCompletionInput) (summary *models.LearningPathContentSummary, err error) {
	ctx, finish := observability.StartOperation(ctx, "learning_path.complete_content",
		attribute.Int64("content.id", int64(in.ContentID)))
	defer func() { finish(err) }()

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		content, err := s.authorizedContent(ctx, in.ContentID, in.UserID, "You can only update your own learning path content")
		if err != nil {
			return err
		}
		content.IsCompleted = in.IsCompleted
		content.Date = s.now()
		if err := s.contentRepo.Save(ctx, content); err != nil {
			return fmt.Errorf("update learning path content %d: %w", content.ID, err)
		}
		out := content.Summary()
		summary = &out
		return nil
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}

func (s *LearningPathService) DeleteContent(ctx context.Context, in DeleteContentInput) (err error) {
	ctx, finish := observability.StartOperation(ctx, "learning_path.delete_content",
		attribute.Int64("content.id", int64(in.ContentID)))
	defer func() { finish(err) }()

	return s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		content, err := s.authorizedContent(ctx, in.ContentID, in.UserID, "You can only delete your own learning path content")
		if err != nil {
			return err
		}
		if err := s.contentRepo.Delete(ctx, content.ID); err != nil {
			return fmt.Errorf("delete learning path content %d: %w", content.ID, err)
		}
		return nil
	})
}

// CalculateCompletionPercentage returns completed*100/total truncated, or 0 for an empty path.
func (s *LearningPathService) CalculateCompletionPercentage(ctx context.Context, pathID uint) (pct int, err error) {
	ctx, finish := observability.StartOperation(ctx, "learning_path.completion",
		attribute.Int64("learning_path.id", int64(pathID)))
	defer func() { finish(err) }()

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		exists, err := s.pathRepo.Exists(ctx, pathID)
		if err != nil {
			return fmt.Errorf("check learning path %d: %w", pathID, err)
		}
		if !exists {
			return models.NewNotFoundError("Learning path", pathID)
		}

		total, err := s.contentRepo.CountByPath(ctx, pathID)
		if err != nil {
			return fmt.Errorf("count contents of learning path %d: %w", pathID, err)
		}
		completed, err := s.contentRepo.CountCompletedByPath(ctx, pathID)
		if err != nil {
			return fmt.Errorf("count completed contents of learning path %d: %w", pathID, err)
		}
		pct = completionPercentage(completed, total)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return pct, nil
}

func completionPercentage(completed, total int) int {
	if total == 0 {
		return 0
	}
	return completed * 100 / total
}

// BatchUpdateContentCompletion resolves every id, then authorizes every item, and only
// then mutates and saves them together. The first missing id or foreign item aborts the
// batch before anything is written.
func (s *LearningPathService) BatchUpdateContentCompletion(ctx context.Context, in BatchUpdateContentCompletionInput) (summaries []models.LearningPathContentSummary, err error) {
	ctx, finish := observability.StartOperation(ctx, "learning_path.batch_complete",
		attribute.Int("contents", len(in.ContentIDs)))
	defer func() { finish(err) }()

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		contents := make([]*models.LearningPathContent, 0, len(in.ContentIDs))
		for _, id := range in.ContentIDs {
			content, err := s.contentRepo.GetByID(ctx, id)
			if err != nil {
				return err
			}
			contents = append(contents, content)
		}

		for _, content := range contents {
			path, err := s.parentPath(ctx, content)
			if err != nil {
				return err
			}
			if !ownsContent(content, path, in.UserID) {
				return models.NewUnauthorizedError("You can only update your own learning path content")
			}
		}

		now := s.now()
		for _, content := range contents {
			content.IsCompleted = in.IsCompleted
			content.Date = now
		}
		if err := s.contentRepo.SaveAll(ctx, contents); err != nil {
			return fmt.Errorf("update learning path contents: %w", err)
		}

		summaries = make([]models.LearningPathContentSummary, 0, len(contents))
		for _, content := range contents {
			summaries = append(summaries, content.Summary())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return summaries, nil
}

func (s *LearningPathService) insertContent(ctx context.Context, pathID uint, spec ContentSpec) (*models.LearningPathContent, error) {
	content := &models.LearningPathContent{
		LearningPathID:     pathID,
		ContentTitle:       spec.ContentTitle,
		ContentDescription: spec.ContentDescription,
		ContentURL:         spec.ContentURL,
		Ordinal:            spec.Ordinal,
		IsCompleted:        false,
		Date:               s.now(),
	}
	if err := s.contentRepo.Create(ctx, content); err != nil {
		return nil, fmt.Errorf("create learning path content: %w", err)
	}
	return content, nil
}

// parentPath resolves the path a content item belongs to, reusing a preloaded one.
func (s *LearningPathService) parentPath(ctx context.Context, content *models.LearningPathContent) (*models.LearningPath, error) {
	if content.LearningPath != nil && content.LearningPath.ID == content.LearningPathID {
		return content.LearningPath, nil
	}
	path, err := s.pathRepo.GetByID(ctx, content.LearningPathID)
	if err != nil {
		return nil, err
	}
	content.LearningPath = path
	return path, nil
}

func (s *LearningPathService) authorizedContent(ctx context.Context, contentID, userID uint, denied string) (*models.LearningPathContent, error) {
	content, err := s.contentRepo.GetByID(ctx, contentID)
	if err != nil {
		return nil, err
	}
	path, err := s.parentPath(ctx, content)
	if err != nil {
		return nil, err
	}
	if !ownsContent(content, path, userID) {
		return nil, models.NewUnauthorizedError(denied)
	}
	return content, nil
}

// summarize builds the flattened view: two count queries plus contents by ordinal.
func (s *LearningPathService) summarize(ctx context.Context, path *models.LearningPath) (*models.LearningPathSummary, error) {
	total, err := s.contentRepo.CountByPath(ctx, path.ID)
	if err != nil {
		return nil, fmt.Errorf("count contents of learning path %d: %w", path.ID, err)
	}
	completed, err := s.contentRepo.CountCompletedByPath(ctx, path.ID)
	if err != nil {
		return nil, fmt.Errorf("count completed contents of learning path %d: %w", path.ID, err)
	}
	items, err := s.contentRepo.ListByPathOrdered(ctx, path.ID)
	if err != nil {
		return nil, fmt.Errorf("list contents of learning path %d: %w", path.ID, err)
	}

	contents := make([]models.LearningPathContentSummary, 0, len(items))
	for i := range items {
		contents = append(contents, items[i].Summary())
	}

	return &models.LearningPathSummary{
		ID:                path.ID,
		Name:              path.Name,
		Tag:               path.Tag,
		UserID:            path.UserID,
		UserName:          path.User.Username,
		TotalContentCount: total,
		CompletedCount:    completed,
		Contents:          contents,
	}, nil
}
