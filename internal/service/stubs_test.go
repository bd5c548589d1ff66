package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"sapp/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

// passthroughTx runs fn directly and counts how often a transaction was opened.
type passthroughTx struct {
	calls int
}

func (p *passthroughTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	p.calls++
	return fn(ctx)
}

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	getByIDFn func(context.Context, uint) (*models.User, error)
	createFn  func(context.Context, *models.User) error
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		getByIDFn: func(_ context.Context, id uint) (*models.User, error) {
			return &models.User{ID: id, Username: "user", Enabled: true}, nil
		},
		createFn: func(_ context.Context, _ *models.User) error { return nil },
	}
}

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	createFn         func(context.Context, *models.Post) error
	getByIDFn        func(context.Context, uint) (*models.Post, error)
	existsFn         func(context.Context, uint) (bool, error)
	listFn           func(context.Context, int, int) ([]*models.Post, error)
	listByUserFn     func(context.Context, uint, int, int) ([]*models.Post, error)
	deleteFn         func(context.Context, uint) error
	deleteCommentsFn func(context.Context, uint) error
	deleteLikesFn    func(context.Context, uint) error
	likeFn           func(context.Context, uint, uint) error
	unlikeFn         func(context.Context, uint, uint) error
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) Exists(ctx context.Context, id uint) (bool, error) {
	return s.existsFn(ctx, id)
}
func (s *postRepoStub) List(ctx context.Context, limit, offset int) ([]*models.Post, error) {
	return s.listFn(ctx, limit, offset)
}
func (s *postRepoStub) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]*models.Post, error) {
	return s.listByUserFn(ctx, userID, limit, offset)
}
func (s *postRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *postRepoStub) DeleteComments(ctx context.Context, postID uint) error {
	return s.deleteCommentsFn(ctx, postID)
}
func (s *postRepoStub) DeleteLikes(ctx context.Context, postID uint) error {
	return s.deleteLikesFn(ctx, postID)
}
func (s *postRepoStub) Like(ctx context.Context, userID, postID uint) error {
	return s.likeFn(ctx, userID, postID)
}
func (s *postRepoStub) Unlike(ctx context.Context, userID, postID uint) error {
	return s.unlikeFn(ctx, userID, postID)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn:         func(_ context.Context, _ *models.Post) error { return nil },
		getByIDFn:        func(_ context.Context, id uint) (*models.Post, error) { return &models.Post{ID: id}, nil },
		existsFn:         func(_ context.Context, _ uint) (bool, error) { return true, nil },
		listFn:           func(_ context.Context, _, _ int) ([]*models.Post, error) { return nil, nil },
		listByUserFn:     func(_ context.Context, _ uint, _, _ int) ([]*models.Post, error) { return nil, nil },
		deleteFn:         func(_ context.Context, _ uint) error { return nil },
		deleteCommentsFn: func(_ context.Context, _ uint) error { return nil },
		deleteLikesFn:    func(_ context.Context, _ uint) error { return nil },
		likeFn:           func(_ context.Context, _, _ uint) error { return nil },
		unlikeFn:         func(_ context.Context, _, _ uint) error { return nil },
	}
}

// commentRepoStub is a stub for repository.CommentRepository.
type commentRepoStub struct {
	createFn       func(context.Context, *models.Comment) error
	getByIDFn      func(context.Context, uint) (*models.Comment, error)
	listTopLevelFn func(context.Context, uint) ([]*models.Comment, error)
	listRepliesFn  func(context.Context, uint) ([]*models.Comment, error)
	listReplyIDsFn func(context.Context, []uint) ([]uint, error)
	countByPostFn  func(context.Context, uint) (int, error)
	updateFn       func(context.Context, *models.Comment) error
	deleteByIDsFn  func(context.Context, []uint) error
}

func (s *commentRepoStub) Create(ctx context.Context, comment *models.Comment) error {
	return s.createFn(ctx, comment)
}
func (s *commentRepoStub) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	return s.getByIDFn(ctx, id)
}
func (s *commentRepoStub) ListTopLevelByPost(ctx context.Context, postID uint) ([]*models.Comment, error) {
	return s.listTopLevelFn(ctx, postID)
}
func (s *commentRepoStub) ListReplies(ctx context.Context, parentID uint) ([]*models.Comment, error) {
	return s.listRepliesFn(ctx, parentID)
}
func (s *commentRepoStub) ListReplyIDs(ctx context.Context, parentIDs []uint) ([]uint, error) {
	return s.listReplyIDsFn(ctx, parentIDs)
}
func (s *commentRepoStub) CountByPost(ctx context.Context, postID uint) (int, error) {
	return s.countByPostFn(ctx, postID)
}
func (s *commentRepoStub) Update(ctx context.Context, comment *models.Comment) error {
	return s.updateFn(ctx, comment)
}
func (s *commentRepoStub) DeleteByIDs(ctx context.Context, ids []uint) error {
	return s.deleteByIDsFn(ctx, ids)
}

func noopCommentRepo() *commentRepoStub {
	return &commentRepoStub{
		createFn:       func(_ context.Context, _ *models.Comment) error { return nil },
		getByIDFn:      func(_ context.Context, id uint) (*models.Comment, error) { return &models.Comment{ID: id}, nil },
		listTopLevelFn: func(_ context.Context, _ uint) ([]*models.Comment, error) { return nil, nil },
		listRepliesFn:  func(_ context.Context, _ uint) ([]*models.Comment, error) { return nil, nil },
		listReplyIDsFn: func(_ context.Context, _ []uint) ([]uint, error) { return nil, nil },
		countByPostFn:  func(_ context.Context, _ uint) (int, error) { return 0, nil },
		updateFn:       func(_ context.Context, _ *models.Comment) error { return nil },
		deleteByIDsFn:  func(_ context.Context, _ []uint) error { return nil },
	}
}

// pathRepoStub is a stub for repository.LearningPathRepository.
type pathRepoStub struct {
	createFn     func(context.Context, *models.LearningPath) error
	getByIDFn    func(context.Context, uint) (*models.LearningPath, error)
	existsFn     func(context.Context, uint) (bool, error)
	listByUserFn func(context.Context, uint) ([]*models.LearningPath, error)
	updateFn     func(context.Context, *models.LearningPath) error
	deleteFn     func(context.Context, uint) error
}

func (s *pathRepoStub) Create(ctx context.Context, path *models.LearningPath) error {
	return s.createFn(ctx, path)
}
func (s *pathRepoStub) GetByID(ctx context.Context, id uint) (*models.LearningPath, error) {
	return s.getByIDFn(ctx, id)
}
func (s *pathRepoStub) Exists(ctx context.Context, id uint) (bool, error) {
	return s.existsFn(ctx, id)
}
func (s *pathRepoStub) ListByUser(ctx context.Context, userID uint) ([]*models.LearningPath, error) {
	return s.listByUserFn(ctx, userID)
}
func (s *pathRepoStub) Update(ctx context.Context, path *models.LearningPath) error {
	return s.updateFn(ctx, path)
}
func (s *pathRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

func noopPathRepo() *pathRepoStub {
	return &pathRepoStub{
		createFn:     func(_ context.Context, _ *models.LearningPath) error { return nil },
		getByIDFn:    func(_ context.Context, id uint) (*models.LearningPath, error) { return &models.LearningPath{ID: id}, nil },
		existsFn:     func(_ context.Context, _ uint) (bool, error) { return true, nil },
		listByUserFn: func(_ context.Context, _ uint) ([]*models.LearningPath, error) { return nil, nil },
		updateFn:     func(_ context.Context, _ *models.LearningPath) error { return nil },
		deleteFn:     func(_ context.Context, _ uint) error { return nil },
	}
}

// contentRepoStub is a stub for repository.LearningPathContentRepository.
type contentRepoStub struct {
	createFn         func(context.Context, *models.LearningPathContent) error
	getByIDFn        func(context.Context, uint) (*models.LearningPathContent, error)
	listOrderedFn    func(context.Context, uint) ([]models.LearningPathContent, error)
	countFn          func(context.Context, uint) (int, error)
	countCompletedFn func(context.Context, uint) (int, error)
	saveFn           func(context.Context, *models.LearningPathContent) error
	saveAllFn        func(context.Context, []*models.LearningPathContent) error
	deleteFn         func(context.Context, uint) error
	deleteByPathFn   func(context.Context, uint) (int64, error)
}

func (s *contentRepoStub) Create(ctx context.Context, content *models.LearningPathContent) error {
	return s.createFn(ctx, content)
}
func (s *contentRepoStub) GetByID(ctx context.Context, id uint) (*models.LearningPathContent, error) {
	return s.getByIDFn(ctx, id)
}
func (s *contentRepoStub) ListByPathOrdered(ctx context.Context, pathID uint) ([]models.LearningPathContent, error) {
	return s.listOrderedFn(ctx, pathID)
}
func (s *contentRepoStub) CountByPath(ctx context.Context, pathID uint) (int, error) {
	return s.countFn(ctx, pathID)
}
func (s *contentRepoStub) CountCompletedByPath(ctx context.Context, pathID uint) (int, error) {
	return s.countCompletedFn(ctx, pathID)
}
func (s *contentRepoStub) Save(ctx context.Context, content *models.LearningPathContent) error {
	return s.saveFn(ctx, content)
}
func (s *contentRepoStub) SaveAll(ctx context.Context, contents []*models.LearningPathContent) error {
	return s.saveAllFn(ctx, contents)
}
func (s *contentRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *contentRepoStub) DeleteByPath(ctx context.Context, pathID uint) (int64, error) {
	return s.deleteByPathFn(ctx, pathID)
}

func noopContentRepo() *contentRepoStub {
	return &contentRepoStub{
		createFn:         func(_ context.Context, _ *models.LearningPathContent) error { return nil },
		getByIDFn:        func(_ context.Context, id uint) (*models.LearningPathContent, error) { return &models.LearningPathContent{ID: id}, nil },
		listOrderedFn:    func(_ context.Context, _ uint) ([]models.LearningPathContent, error) { return nil, nil },
		countFn:          func(_ context.Context, _ uint) (int, error) { return 0, nil },
		countCompletedFn: func(_ context.Context, _ uint) (int, error) { return 0, nil },
		saveFn:           func(_ context.Context, _ *models.LearningPathContent) error { return nil },
		saveAllFn:        func(_ context.Context, _ []*models.LearningPathContent) error { return nil },
		deleteFn:         func(_ context.Context, _ uint) error { return nil },
		deleteByPathFn:   func(_ context.Context, _ uint) (int64, error) { return 0, nil },
	}
}

// messageRepoStub is a stub for repository.MessageRepository.
type messageRepoStub struct {
	createFn      func(context.Context, *models.Message) error
	listBetweenFn func(context.Context, uint, uint, int, int) ([]*models.Message, error)
}

func (s *messageRepoStub) Create(ctx context.Context, msg *models.Message) error {
	return s.createFn(ctx, msg)
}
func (s *messageRepoStub) ListBetween(ctx context.Context, userA, userB uint, limit, offset int) ([]*models.Message, error) {
	return s.listBetweenFn(ctx, userA, userB, limit, offset)
}

func noopMessageRepo() *messageRepoStub {
	return &messageRepoStub{
		createFn: func(_ context.Context, _ *models.Message) error { return nil },
		listBetweenFn: func(_ context.Context, _, _ uint, _, _ int) ([]*models.Message, error) {
			return nil, nil
		},
	}
}

// assertValidationError asserts that err is an AppError with code VALIDATION_ERROR.
func assertValidationError(t *testing.T, err error) {
	t.Helper()
	assertAppErrorCode(t, err, models.CodeValidation)
}

// assertUnauthorizedError asserts that err is an AppError with code UNAUTHORIZED.
func assertUnauthorizedError(t *testing.T, err error) {
	t.Helper()
	assertAppErrorCode(t, err, models.CodeUnauthorized)
}

func assertNotFoundError(t *testing.T, err error) {
	t.Helper()
	assertAppErrorCode(t, err, models.CodeNotFound)
}

func assertAppErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
}

func uintPtr(v uint) *uint { return &v }
