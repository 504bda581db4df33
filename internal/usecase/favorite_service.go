package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/acewatch/acewatch/internal/domain/favorite"
	"github.com/acewatch/acewatch/internal/platform/id"
	"github.com/acewatch/acewatch/internal/platform/logging"
)

// FavoriteService manages the players and matches a user follows.
type FavoriteService struct {
	favorites favorite.Repository
	ids       id.Generator
	logger    *logging.Logger
	now       func() time.Time
}

func NewFavoriteService(favorites favorite.Repository, ids id.Generator, logger *logging.Logger) *FavoriteService {
	if logger == nil {
		logger = logging.Default()
	}
	if ids == nil {
		ids = id.NewRandomGenerator()
	}

	return &FavoriteService{
		favorites: favorites,
		ids:       ids,
		logger:    logger,
		now:       time.Now,
	}
}

// Add is idempotent: following the same target twice returns the
// existing favorite.
func (s *FavoriteService) Add(ctx context.Context, userID, favType, target string) (favorite.Favorite, error) {
	ctx, span := startUsecaseSpan(ctx, "FavoriteService.Add")
	defer span.End()

	favType = strings.ToLower(strings.TrimSpace(favType))
	if !favorite.IsValidType(favType) {
		return favorite.Favorite{}, fmt.Errorf("%w: type must be %s or %s", ErrInvalidInput, favorite.TypePlayer, favorite.TypeMatch)
	}
	target = strings.TrimSpace(target)
	if target == "" {
		return favorite.Favorite{}, fmt.Errorf("%w: target is required", ErrInvalidInput)
	}

	favoriteID, err := s.ids.NewID()
	if err != nil {
		return favorite.Favorite{}, fmt.Errorf("generate favorite id: %w", err)
	}

	created, err := s.favorites.Create(ctx, favorite.Favorite{
		ID:        favoriteID,
		UserID:    userID,
		Type:      favType,
		Target:    target,
		CreatedAt: s.now().UTC(),
	})
	if err != nil {
		return favorite.Favorite{}, fmt.Errorf("create favorite: %w", err)
	}

	return created, nil
}

func (s *FavoriteService) List(ctx context.Context, userID string) ([]favorite.Favorite, error) {
	ctx, span := startUsecaseSpan(ctx, "FavoriteService.List")
	defer span.End()

	items, err := s.favorites.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	return items, nil
}

func (s *FavoriteService) Remove(ctx context.Context, favoriteID, userID string) error {
	ctx, span := startUsecaseSpan(ctx, "FavoriteService.Remove")
	defer span.End()

	deleted, err := s.favorites.Delete(ctx, favoriteID, userID)
	if err != nil {
		return fmt.Errorf("delete favorite: %w", err)
	}
	if !deleted {
		return fmt.Errorf("%w: favorite %s", ErrNotFound, favoriteID)
	}
	return nil
}
