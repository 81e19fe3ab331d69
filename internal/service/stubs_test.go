package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"agora/internal/models"
	"agora/internal/paging"
	"agora/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	PasswordCost = bcrypt.MinCost
}

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	createFn           func(context.Context, *models.User) error
	getByIDFn          func(context.Context, uint) (*models.User, error)
	getByUsernameFn    func(context.Context, string) (*models.User, error)
	getByEmailFn       func(context.Context, string) (*models.User, error)
	existsByUsernameFn func(context.Context, string) (bool, error)
	existsByEmailFn    func(context.Context, string) (bool, error)
	listFn             func(context.Context, repository.UserFilter, paging.PageRequest) ([]*models.User, int64, error)
	updateFn           func(context.Context, *models.User) error
	updatePasswordFn   func(context.Context, uint, string) error
	updateLastLoginFn  func(context.Context, uint, time.Time) error
}

func (s *userRepoStub) Create(ctx context.Context, u *models.User) error { return s.createFn(ctx, u) }
func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return s.existsByUsernameFn(ctx, username)
}
func (s *userRepoStub) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return s.existsByEmailFn(ctx, email)
}
func (s *userRepoStub) List(ctx context.Context, f repository.UserFilter, req paging.PageRequest) ([]*models.User, int64, error) {
	return s.listFn(ctx, f, req)
}
func (s *userRepoStub) Update(ctx context.Context, u *models.User) error { return s.updateFn(ctx, u) }
func (s *userRepoStub) UpdatePassword(ctx context.Context, id uint, hashed string) error {
	return s.updatePasswordFn(ctx, id, hashed)
}
func (s *userRepoStub) UpdateLastLogin(ctx context.Context, id uint, at time.Time) error {
	return s.updateLastLoginFn(ctx, id, at)
}

// usersByID serves GetByID from a fixed set of users.
func usersByID(users ...*models.User) func(context.Context, uint) (*models.User, error) {
	return func(_ context.Context, id uint) (*models.User, error) {
		for _, u := range users {
			if u.ID == id {
				copied := *u
				return &copied, nil
			}
		}
		return nil, models.NewNotFoundError("User", id)
	}
}

func noopUserRepo() *userRepoStub {
	notFound := func(_ context.Context, s string) (*models.User, error) {
		return nil, models.NewNotFoundError("User", s)
	}
	return &userRepoStub{
		createFn:           func(_ context.Context, u *models.User) error { u.ID = 1; return nil },
		getByIDFn:          usersByID(),
		getByUsernameFn:    notFound,
		getByEmailFn:       notFound,
		existsByUsernameFn: func(_ context.Context, _ string) (bool, error) { return false, nil },
		existsByEmailFn:    func(_ context.Context, _ string) (bool, error) { return false, nil },
		listFn: func(_ context.Context, _ repository.UserFilter, _ paging.PageRequest) ([]*models.User, int64, error) {
			return nil, 0, nil
		},
		updateFn:          func(_ context.Context, _ *models.User) error { return nil },
		updatePasswordFn:  func(_ context.Context, _ uint, _ string) error { return nil },
		updateLastLoginFn: func(_ context.Context, _ uint, _ time.Time) error { return nil },
	}
}

// boardRepoStub is a stub for repository.BoardRepository.
type boardRepoStub struct {
	createFn            func(context.Context, *models.Board) error
	getByIDFn           func(context.Context, uint) (*models.Board, error)
	getAnyByIDFn        func(context.Context, uint) (*models.Board, error)
	listFn              func(context.Context, models.BoardCategory, paging.PageRequest) ([]*models.Board, int64, error)
	searchByTitleFn     func(context.Context, string, paging.PageRequest) ([]*models.Board, int64, error)
	listByAuthorFn      func(context.Context, uint, paging.PageRequest) ([]*models.Board, int64, error)
	updateFn            func(context.Context, *models.Board) error
	softDeleteFn        func(context.Context, uint, time.Time) error
	increaseViewCountFn func(context.Context, uint) error
}

func (s *boardRepoStub) Create(ctx context.Context, b *models.Board) error { return s.createFn(ctx, b) }
func (s *boardRepoStub) GetByID(ctx context.Context, id uint) (*models.Board, error) {
	return s.getByIDFn(ctx, id)
}
func (s *boardRepoStub) GetAnyByID(ctx context.Context, id uint) (*models.Board, error) {
	return s.getAnyByIDFn(ctx, id)
}
func (s *boardRepoStub) List(ctx context.Context, c models.BoardCategory, req paging.PageRequest) ([]*models.Board, int64, error) {
	return s.listFn(ctx, c, req)
}
func (s *boardRepoStub) SearchByTitle(ctx context.Context, kw string, req paging.PageRequest) ([]*models.Board, int64, error) {
	return s.searchByTitleFn(ctx, kw, req)
}
func (s *boardRepoStub) ListByAuthor(ctx context.Context, authorID uint, req paging.PageRequest) ([]*models.Board, int64, error) {
	return s.listByAuthorFn(ctx, authorID, req)
}
func (s *boardRepoStub) Update(ctx context.Context, b *models.Board) error { return s.updateFn(ctx, b) }
func (s *boardRepoStub) SoftDelete(ctx context.Context, id uint, at time.Time) error {
	return s.softDeleteFn(ctx, id, at)
}
func (s *boardRepoStub) IncreaseViewCount(ctx context.Context, id uint) error {
	return s.increaseViewCountFn(ctx, id)
}

func noopBoardRepo() *boardRepoStub {
	emptyList := func() ([]*models.Board, int64, error) { return nil, 0, nil }
	get := func(_ context.Context, id uint) (*models.Board, error) {
		return &models.Board{ID: id, AuthorID: 1, Status: models.BoardStatusPublic}, nil
	}
	return &boardRepoStub{
		createFn:     func(_ context.Context, b *models.Board) error { b.ID = 1; return nil },
		getByIDFn:    get,
		getAnyByIDFn: get,
		listFn: func(_ context.Context, _ models.BoardCategory, _ paging.PageRequest) ([]*models.Board, int64, error) {
			return emptyList()
		},
		searchByTitleFn: func(_ context.Context, _ string, _ paging.PageRequest) ([]*models.Board, int64, error) {
			return emptyList()
		},
		listByAuthorFn: func(_ context.Context, _ uint, _ paging.PageRequest) ([]*models.Board, int64, error) {
			return emptyList()
		},
		updateFn:            func(_ context.Context, _ *models.Board) error { return nil },
		softDeleteFn:        func(_ context.Context, _ uint, _ time.Time) error { return nil },
		increaseViewCountFn: func(_ context.Context, _ uint) error { return nil },
	}
}

// commentRepoStub is a stub for repository.CommentRepository.
type commentRepoStub struct {
	createFn       func(context.Context, *models.Comment) error
	getByIDFn      func(context.Context, uint) (*models.Comment, error)
	updateFn       func(context.Context, *models.Comment) error
	findRootPageFn func(context.Context, uint, paging.PageRequest) ([]*models.Comment, int64, error)
	findRepliesFn  func(context.Context, []uint) (*repository.ReplyGroups, error)
	countByBoardFn func(context.Context, uint) (int64, error)
	increaseLikeFn func(context.Context, uint) error
	decreaseLikeFn func(context.Context, uint) error
	readTxCalls    int
}

func (s *commentRepoStub) Create(ctx context.Context, c *models.Comment) error {
	return s.createFn(ctx, c)
}
func (s *commentRepoStub) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	return s.getByIDFn(ctx, id)
}
func (s *commentRepoStub) Update(ctx context.Context, c *models.Comment) error {
	return s.updateFn(ctx, c)
}
func (s *commentRepoStub) FindRootPage(ctx context.Context, boardID uint, req paging.PageRequest) ([]*models.Comment, int64, error) {
	return s.findRootPageFn(ctx, boardID, req)
}
func (s *commentRepoStub) FindRepliesGroupedByParentIDs(ctx context.Context, ids []uint) (*repository.ReplyGroups, error) {
	return s.findRepliesFn(ctx, ids)
}
func (s *commentRepoStub) CountByBoard(ctx context.Context, boardID uint) (int64, error) {
	return s.countByBoardFn(ctx, boardID)
}
func (s *commentRepoStub) IncreaseLike(ctx context.Context, id uint) error {
	return s.increaseLikeFn(ctx, id)
}
func (s *commentRepoStub) DecreaseLike(ctx context.Context, id uint) error {
	return s.decreaseLikeFn(ctx, id)
}
func (s *commentRepoStub) InReadTx(_ context.Context, fn func(repository.CommentRepository) error) error {
	s.readTxCalls++
	return fn(s)
}

func noopCommentRepo() *commentRepoStub {
	return &commentRepoStub{
		createFn: func(_ context.Context, c *models.Comment) error { c.ID = 1; return nil },
		getByIDFn: func(_ context.Context, id uint) (*models.Comment, error) {
			return nil, models.NewNotFoundError("Comment", id)
		},
		updateFn: func(_ context.Context, _ *models.Comment) error { return nil },
		findRootPageFn: func(_ context.Context, _ uint, _ paging.PageRequest) ([]*models.Comment, int64, error) {
			return []*models.Comment{}, 0, nil
		},
		findRepliesFn: func(_ context.Context, _ []uint) (*repository.ReplyGroups, error) {
			return repository.GroupReplies(nil), nil
		},
		countByBoardFn: func(_ context.Context, _ uint) (int64, error) { return 0, nil },
		increaseLikeFn: func(_ context.Context, _ uint) error { return nil },
		decreaseLikeFn: func(_ context.Context, _ uint) error { return nil },
	}
}

func assertCode(t *testing.T, err error, code models.ErrorCode) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code.Code, appErr.Code, "message: %s", appErr.Message)
}

func assertValidationError(t *testing.T, err error) {
	t.Helper()
	assertCode(t, err, models.ErrValidation)
}

var (
	alice = &models.User{ID: 1, Username: "alice", Name: "Alice", Email: "alice@example.com", Role: models.RoleUser, Status: models.UserStatusActive}
	bob   = &models.User{ID: 2, Username: "bob", Name: "Bob", Email: "bob@example.com", Role: models.RoleUser, Status: models.UserStatusActive}
	admin = &models.User{ID: 9, Username: "root", Name: "Root", Email: "root@example.com", Role: models.RoleAdmin, Status: models.UserStatusActive}
)
