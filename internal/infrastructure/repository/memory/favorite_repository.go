package memory

import (
	"context"
	"sync"

	"github.com/acewatch/acewatch/internal/domain/favorite"
)

type FavoriteRepository struct {
	mu      sync.RWMutex
	byID    map[string]favorite.Favorite
	ordered []string
}

func NewFavoriteRepository() *FavoriteRepository {
	return &FavoriteRepository{
		byID: make(map[string]favorite.Favorite),
	}
}

// Create returns the existing row when the same user already favors the
// same target, keeping the operation idempotent.
func (r *FavoriteRepository) Create(_ context.Context, f favorite.Favorite) (favorite.Favorite, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range r.ordered {
		existing := r.byID[id]
		if existing.UserID == f.UserID && existing.Type == f.Type && existing.Target == f.Target {
			return existing, nil
		}
	}

	r.byID[f.ID] = f
	r.ordered = append(r.ordered, f.ID)
	return f, nil
}

func (r *FavoriteRepository) ListByUser(_ context.Context, userID string) ([]favorite.Favorite, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]favorite.Favorite, 0)
	for _, id := range r.ordered {
		if f := r.byID[id]; f.UserID == userID {
			out = append(out, f)
		}
	}
	return out, nil
}

func (r *FavoriteRepository) Delete(_ context.Context, id, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, ok := r.byID[id]
	if !ok || f.UserID != userID {
		return false, nil
	}

	delete(r.byID, id)
	for i, existing := range r.ordered {
		if existing == id {
			r.ordered = append(r.ordered[:i], r.ordered[i+1:]...)
			break
		}
	}
	return true, nil
}
