package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/acewatch/acewatch/internal/domain/favorite"
	qb "github.com/acewatch/acewatch/internal/platform/querybuilder"
)

type FavoriteRepository struct {
	db *sqlx.DB
}

func NewFavoriteRepository(db *sqlx.DB) *FavoriteRepository {
	return &FavoriteRepository{db: db}
}

// Create relies on the unique (user_id, favorite_type, target) index:
// a conflicting insert is dropped and the existing row is returned, so
// repeated follows stay idempotent.
func (r *FavoriteRepository) Create(ctx context.Context, f favorite.Favorite) (favorite.Favorite, error) {
	insertModel := favoriteInsertModel{
		ID:        f.ID,
		UserID:    f.UserID,
		Type:      f.Type,
		Target:    f.Target,
		CreatedAt: f.CreatedAt,
	}
	query, args, err := qb.InsertModel("favorites", insertModel, "ON CONFLICT (user_id, favorite_type, target) DO NOTHING")
	if err != nil {
		return favorite.Favorite{}, fmt.Errorf("build create favorite query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return favorite.Favorite{}, fmt.Errorf("create favorite: %w", err)
	}

	query, args, err = qb.Select("*").From("favorites").
		Where(
			qb.Eq("user_id", f.UserID),
			qb.Eq("favorite_type", f.Type),
			qb.Eq("target", f.Target),
		).
		ToSQL()
	if err != nil {
		return favorite.Favorite{}, fmt.Errorf("build get favorite query: %w", err)
	}

	var row favoriteTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		return favorite.Favorite{}, fmt.Errorf("get favorite after create: %w", err)
	}

	return favoriteFromRow(row), nil
}

func (r *FavoriteRepository) ListByUser(ctx context.Context, userID string) ([]favorite.Favorite, error) {
	query, args, err := qb.Select("*").From("favorites").
		Where(qb.Eq("user_id", userID)).
		OrderBy("created_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list favorites query: %w", err)
	}

	var rows []favoriteTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}

	out := make([]favorite.Favorite, 0, len(rows))
	for _, row := range rows {
		out = append(out, favoriteFromRow(row))
	}
	return out, nil
}

func (r *FavoriteRepository) Delete(ctx context.Context, id, userID string) (bool, error) {
	query, args, err := qb.DeleteFrom("favorites").
		Where(
			qb.Eq("id", id),
			qb.Eq("user_id", userID),
		).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build delete favorite query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("delete favorite: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected delete favorite: %w", err)
	}
	return affected > 0, nil
}

func favoriteFromRow(row favoriteTableModel) favorite.Favorite {
	return favorite.Favorite{
		ID:        row.ID,
		UserID:    row.UserID,
		Type:      row.Type,
		Target:    row.Target,
		CreatedAt: row.CreatedAt,
	}
}
