package favorite

import "context"

// Repository persists user favorites. Create must be idempotent for the
// same user, type and target.
type Repository interface {
	Create(ctx context.Context, f Favorite) (Favorite, error)
	ListByUser(ctx context.Context, userID string) ([]Favorite, error)
	Delete(ctx context.Context, id, userID string) (bool, error)
}
