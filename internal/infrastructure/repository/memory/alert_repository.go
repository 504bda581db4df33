package memory

import (
	"context"
	"sync"

	"github.com/acewatch/acewatch/internal/domain/alert"
)

type AlertRepository struct {
	mu      sync.RWMutex
	byID    map[string]alert.Alert
	ordered []string
}

func NewAlertRepository() *AlertRepository {
	return &AlertRepository{
		byID: make(map[string]alert.Alert),
	}
}

func (r *AlertRepository) Create(_ context.Context, a alert.Alert) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[a.ID]; !ok {
		r.ordered = append(r.ordered, a.ID)
	}
	r.byID[a.ID] = a
	return nil
}

func (r *AlertRepository) GetByID(_ context.Context, id string) (alert.Alert, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.byID[id]
	return a, ok, nil
}

func (r *AlertRepository) ListByUser(_ context.Context, userID string) ([]alert.Alert, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]alert.Alert, 0)
	for _, id := range r.ordered {
		if a := r.byID[id]; a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *AlertRepository) ListActive(_ context.Context) ([]alert.Alert, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]alert.Alert, 0)
	for _, id := range r.ordered {
		if a := r.byID[id]; a.Active {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *AlertRepository) Update(_ context.Context, a alert.Alert) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[a.ID]; !ok {
		return false, nil
	}
	r.byID[a.ID] = a
	return true, nil
}

func (r *AlertRepository) Delete(_ context.Context, id, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.byID[id]
	if !ok || a.UserID != userID {
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
