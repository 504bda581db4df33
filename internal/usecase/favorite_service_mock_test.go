package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/acewatch/acewatch/internal/domain/favorite"
	"github.com/acewatch/acewatch/internal/platform/logging"
)

type favoriteRepositoryMock struct {
	mock.Mock
}

func (m *favoriteRepositoryMock) Create(ctx context.Context, f favorite.Favorite) (favorite.Favorite, error) {
	args := m.Called(ctx, f)
	return args.Get(0).(favorite.Favorite), args.Error(1)
}

func (m *favoriteRepositoryMock) ListByUser(ctx context.Context, userID string) ([]favorite.Favorite, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]favorite.Favorite), args.Error(1)
}

func (m *favoriteRepositoryMock) Delete(ctx context.Context, id, userID string) (bool, error) {
	args := m.Called(ctx, id, userID)
	return args.Bool(0), args.Error(1)
}

func TestFavoriteService_Add_PropagatesRepositoryError(t *testing.T) {
	t.Parallel()

	repo := &favoriteRepositoryMock{}
	repo.
		On("Create", mock.Anything, mock.MatchedBy(func(f favorite.Favorite) bool {
			return f.UserID == "user-1" && f.Type == favorite.TypePlayer && f.Target == "Jannik Sinner"
		})).
		Return(favorite.Favorite{}, errors.New("connection reset")).
		Once()

	svc := NewFavoriteService(repo, nil, logging.NewNop())
	_, err := svc.Add(t.Context(), "user-1", "player", "Jannik Sinner")
	if err == nil || !strings.Contains(err.Error(), "create favorite") {
		t.Fatalf("expected wrapped create error, got %v", err)
	}
	repo.AssertExpectations(t)
}

func TestFavoriteService_Remove_RepositoryErrorIsNotNotFound(t *testing.T) {
	t.Parallel()

	repo := &favoriteRepositoryMock{}
	repo.
		On("Delete", mock.Anything, "fav-1", "user-1").
		Return(false, errors.New("connection reset")).
		Once()

	svc := NewFavoriteService(repo, nil, logging.NewNop())
	err := svc.Remove(t.Context(), "fav-1", "user-1")
	if err == nil {
		t.Fatalf("expected error")
	}
	if errors.Is(err, ErrNotFound) {
		t.Fatalf("repository failure must not map to ErrNotFound, got %v", err)
	}
	repo.AssertExpectations(t)
}

func TestFavoriteService_Add_DoesNotTouchRepositoryOnInvalidInput(t *testing.T) {
	t.Parallel()

	repo := &favoriteRepositoryMock{}

	svc := NewFavoriteService(repo, nil, logging.NewNop())
	_, err := svc.Add(t.Context(), "user-1", "tournament", "ATP Finals")
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	repo.AssertExpectations(t)
}
