package alert

import "context"

// Repository persists alert subscriptions.
type Repository interface {
	Create(ctx context.Context, a Alert) error
	GetByID(ctx context.Context, id string) (Alert, bool, error)
	ListByUser(ctx context.Context, userID string) ([]Alert, error)
	ListActive(ctx context.Context) ([]Alert, error)
	Update(ctx context.Context, a Alert) (bool, error)
	Delete(ctx context.Context, id, userID string) (bool, error)
}
