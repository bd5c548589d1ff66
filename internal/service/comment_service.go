// Package service implements the business rules of the application on top of the repositories.
package service

import (
	"context"
	"fmt"
	"time"

	"sapp/internal/models"
	"sapp/internal/observability"
	"sapp/internal/repository"
	"sapp/internal/validation"

	"go.opentelemetry.io/otel/attribute"
)

type CommentService struct {
	tx          repository.Transactor
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
	userRepo    repository.UserRepository
	now         func() time.Time
}

type AddCommentInput struct {
	UserID          uint
	PostID          uint
	Content         string
	ParentCommentID *uint
}

type UpdateCommentInput struct {
	UserID    uint
	CommentID uint
	Content   string
}

type DeleteCommentInput struct {
	UserID    uint
	CommentID uint
}

func NewCommentService(
	tx repository.Transactor,
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
) *CommentService {
	return &CommentService{
		tx:          tx,
		commentRepo: commentRepo,
		postRepo:    postRepo,
		userRepo:    userRepo,
		now:         time.Now,
	}
}

// AddComment creates a comment on a post, optionally as a reply. The parent must
// exist and belong to the same post.
func (s *CommentService) AddComment(ctx context.Context, in AddCommentInput) (comment *models.Comment, err error) {
	ctx, finish := observability.StartOperation(ctx, "comment.add",
		attribute.Int64("post.id", int64(in.PostID)))
	defer func() { finish(err) }()

	if verr := validation.ValidateContent(in.Content); verr != nil {
		return nil, models.NewValidationError(verr.Error())
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		user, err := s.userRepo.GetByID(ctx, in.UserID)
		if err != nil {
			return err
		}
		exists, err := s.postRepo.Exists(ctx, in.PostID)
		if err != nil {
			return fmt.Errorf("check post %d: %w", in.PostID, err)
		}
		if !exists {
			return models.NewNotFoundError("Post", in.PostID)
		}
		if in.ParentCommentID != nil {
			parent, err := s.commentRepo.GetByID(ctx, *in.ParentCommentID)
			if models.HasCode(err, models.CodeNotFound) || (err == nil && parent.PostID != in.PostID) {
				return models.NewNotFoundError("Parent comment", *in.ParentCommentID)
			}
			if err != nil {
				return err
			}
		}

		now := s.now()
		comment = &models.Comment{
			Content:         in.Content,
			UserID:          user.ID,
			PostID:          in.PostID,
			ParentCommentID: in.ParentCommentID,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := s.commentRepo.Create(ctx, comment); err != nil {
			return fmt.Errorf("create comment: %w", err)
		}
		comment.User = *user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return comment, nil
}

// GetPostComments assembles the comment tree of a post: top-level comments newest
// first, replies at every depth oldest first. Nodes are expanded breadth-first
// from a queue, one store round-trip per node.
func (s *CommentService) GetPostComments(ctx context.Context, postID uint) (roots []*models.CommentNode, err error) {
	ctx, finish := observability.StartOperation(ctx, "comment.thread",
		attribute.Int64("post.id", int64(postID)))
	defer func() { finish(err) }()

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		top, err := s.commentRepo.ListTopLevelByPost(ctx, postID)
		if err != nil {
			return fmt.Errorf("list comments of post %d: %w", postID, err)
		}

		roots = make([]*models.CommentNode, 0, len(top))
		queue := make([]*models.CommentNode, 0, len(top))
		for _, c := range top {
			node := models.NewCommentNode(c)
			roots = append(roots, node)
			queue = append(queue, node)
		}

		for len(queue) > 0 {
			parent := queue[0]
			queue = queue[1:]

			replies, err := s.commentRepo.ListReplies(ctx, parent.ID)
			if err != nil {
				return fmt.Errorf("list replies of comment %d: %w", parent.ID, err)
			}
			for _, r := range replies {
				child := models.NewCommentNode(r)
				parent.Replies = append(parent.Replies, child)
				queue = append(queue, child)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return roots, nil
}

// GetCommentByID returns found=false instead of an error when the comment does not exist.
func (s *CommentService) GetCommentByID(ctx context.Context, id uint) (*models.Comment, bool, error) {
	comment, err := s.commentRepo.GetByID(ctx, id)
	if models.HasCode(err, models.CodeNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return comment, true, nil
}

// UpdateComment replaces the content of the caller's own comment. CreatedAt is kept.
func (s *CommentService) UpdateComment(ctx context.Context, in UpdateCommentInput) (comment *models.Comment, err error) {
	ctx, finish := observability.StartOperation(ctx, "comment.update",
		attribute.Int64("comment.id", int64(in.CommentID)))
	defer func() { finish(err) }()

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		comment, err = s.commentRepo.GetByID(ctx, in.CommentID)
		if err != nil {
			return err
		}
		if !ownsComment(comment, in.UserID) {
			return models.NewUnauthorizedError("You can only update your own comments")
		}
		if verr := validation.ValidateContent(in.Content); verr != nil {
			return models.NewValidationError(verr.Error())
		}

		comment.Content = in.Content
		comment.UpdatedAt = s.now()
		if err := s.commentRepo.Update(ctx, comment); err != nil {
			return fmt.Errorf("update comment %d: %w", in.CommentID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return comment, nil
}

// DeleteComment removes the caller's own comment together with every reply beneath it.
func (s *CommentService) DeleteComment(ctx context.Context, in DeleteCommentInput) (err error) {
	ctx, finish := observability.StartOperation(ctx, "comment.delete",
		attribute.Int64("comment.id", int64(in.CommentID)))
	defer func() { finish(err) }()

	return s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		comment, err := s.commentRepo.GetByID(ctx, in.CommentID)
		if err != nil {
			return err
		}
		if !ownsComment(comment, in.UserID) {
			return models.NewUnauthorizedError("You can only delete your own comments")
		}

		ids := []uint{comment.ID}
		frontier := []uint{comment.ID}
		for len(frontier) > 0 {
			children, err := s.commentRepo.ListReplyIDs(ctx, frontier)
			if err != nil {
				return fmt.Errorf("collect replies of comment %d: %w", comment.ID, err)
			}
			ids = append(ids, children...)
			frontier = children
		}

		if err := s.commentRepo.DeleteByIDs(ctx, ids); err != nil {
			return fmt.Errorf("delete comment %d: %w", comment.ID, err)
		}
		return nil
	})
}

// GetCommentsCount counts every comment of the post, replies included.
func (s *CommentService) GetCommentsCount(ctx context.Context, postID uint) (int, error) {
	count, err := s.commentRepo.CountByPost(ctx, postID)
	if err != nil {
		return 0, fmt.Errorf("count comments of post %d: %w", postID, err)
	}
	return count, nil
}
