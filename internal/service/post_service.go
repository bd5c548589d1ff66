package service

import (
	"context"
	"fmt"
	"unicode/utf8"

	"sapp/internal/models"
	"sapp/internal/observability"
	"sapp/internal/repository"
	"sapp/internal/validation"

	"go.opentelemetry.io/otel/attribute"
)

const maxTitleLen = 300

type PostService struct {
	tx       repository.Transactor
	postRepo repository.PostRepository
	userRepo repository.UserRepository
}

type CreatePostInput struct {
	UserID   uint
	Title    string
	Content  string
	ImageURL string
}

type DeletePostInput struct {
	UserID uint
	PostID uint
}

func NewPostService(tx repository.Transactor, postRepo repository.PostRepository, userRepo repository.UserRepository) *PostService {
	return &PostService{tx: tx, postRepo: postRepo, userRepo: userRepo}
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (post *models.Post, err error) {
	ctx, finish := observability.StartOperation(ctx, "post.create",
		attribute.Int64("user.id", int64(in.UserID)))
	defer func() { finish(err) }()

	if utf8.RuneCountInString(in.Title) > maxTitleLen {
		return nil, models.NewValidationError("Title too long (max 300 characters)")
	}
	if verr := validation.ValidateContent(in.Content); verr != nil {
		return nil, models.NewValidationError(verr.Error())
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.userRepo.GetByID(ctx, in.UserID); err != nil {
			return err
		}
		created := &models.Post{
			Title:    in.Title,
			Content:  in.Content,
			ImageURL: in.ImageURL,
			UserID:   in.UserID,
		}
		if err := s.postRepo.Create(ctx, created); err != nil {
			return fmt.Errorf("create post: %w", err)
		}
		post, err = s.postRepo.GetByID(ctx, created.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return post, nil
}

func (s *PostService) GetPost(ctx context.Context, id uint) (*models.Post, error) {
	var post *models.Post
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		post, err = s.postRepo.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return post, nil
}

func (s *PostService) ListPosts(ctx context.Context, limit, offset int) ([]*models.Post, error) {
	var posts []*models.Post
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		posts, err = s.postRepo.List(ctx, limit, offset)
		if err != nil {
			return fmt.Errorf("list posts: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return posts, nil
}

func (s *PostService) ListUserPosts(ctx context.Context, userID uint, limit, offset int) ([]*models.Post, error) {
	var posts []*models.Post
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		posts, err = s.postRepo.ListByUser(ctx, userID, limit, offset)
		if err != nil {
			return fmt.Errorf("list posts of user %d: %w", userID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// DeletePost removes the caller's post together with its comments and likes.
func (s *PostService) DeletePost(ctx context.Context, in DeletePostInput) (err error) {
	ctx, finish := observability.StartOperation(ctx, "post.delete",
		attribute.Int64("post.id", int64(in.PostID)))
	defer func() { finish(err) }()

	return s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		post, err := s.postRepo.GetByID(ctx, in.PostID)
		if err != nil {
			return err
		}
		if !ownsPost(post, in.UserID) {
			return models.NewUnauthorizedError("You can only delete your own posts")
		}
		if err := s.postRepo.DeleteComments(ctx, post.ID); err != nil {
			return fmt.Errorf("delete comments of post %d: %w", post.ID, err)
		}
		if err := s.postRepo.DeleteLikes(ctx, post.ID); err != nil {
			return fmt.Errorf("delete likes of post %d: %w", post.ID, err)
		}
		if err := s.postRepo.Delete(ctx, post.ID); err != nil {
			return fmt.Errorf("delete post %d: %w", post.ID, err)
		}
		return nil
	})
}

// LikePost is idempotent and returns the post with refreshed counts.
func (s *PostService) LikePost(ctx context.Context, userID, postID uint) (*models.Post, error) {
	return s.toggleLike(ctx, userID, postID, true)
}

func (s *PostService) UnlikePost(ctx context.Context, userID, postID uint) (*models.Post, error) {
	return s.toggleLike(ctx, userID, postID, false)
}

func (s *PostService) toggleLike(ctx context.Context, userID, postID uint, like bool) (post *models.Post, err error) {
	verb := "unlike"
	if like {
		verb = "like"
	}
	ctx, finish := observability.StartOperation(ctx, "post."+verb, attribute.Int64("post.id", int64(postID)))
	defer func() { finish(err) }()

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		exists, err := s.postRepo.Exists(ctx, postID)
		if err != nil {
			return fmt.Errorf("check post %d: %w", postID, err)
		}
		if !exists {
			return models.NewNotFoundError("Post", postID)
		}
		if like {
			err = s.postRepo.Like(ctx, userID, postID)
		} else {
			err = s.postRepo.Unlike(ctx, userID, postID)
		}
		if err != nil {
			return fmt.Errorf("%s post %d: %w", verb, postID, err)
		}
		post, err = s.postRepo.GetByID(ctx, postID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return post, nil
}
