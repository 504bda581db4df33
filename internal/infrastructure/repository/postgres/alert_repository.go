package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/acewatch/acewatch/internal/domain/alert"
	qb "github.com/acewatch/acewatch/internal/platform/querybuilder"
)

type AlertRepository struct {
	db *sqlx.DB
}

func NewAlertRepository(db *sqlx.DB) *AlertRepository {
	return &AlertRepository{db: db}
}

func (r *AlertRepository) Create(ctx context.Context, a alert.Alert) error {
	insertModel := alertInsertModel{
		ID:        a.ID,
		UserID:    a.UserID,
		EventID:   a.EventID,
		Trigger:   a.Trigger,
		Active:    a.Active,
		CreatedAt: a.CreatedAt,
	}
	query, args, err := qb.InsertModel("alerts", insertModel, "")
	if err != nil {
		return fmt.Errorf("build create alert query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("create alert: %w", err)
	}

	return nil
}

func (r *AlertRepository) GetByID(ctx context.Context, id string) (alert.Alert, bool, error) {
	query, args, err := qb.Select("*").From("alerts").
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return alert.Alert{}, false, fmt.Errorf("build get alert query: %w", err)
	}

	var row alertTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return alert.Alert{}, false, nil
		}
		return alert.Alert{}, false, fmt.Errorf("get alert: %w", err)
	}

	return alertFromRow(row), true, nil
}

func (r *AlertRepository) ListByUser(ctx context.Context, userID string) ([]alert.Alert, error) {
	query, args, err := qb.Select("*").From("alerts").
		Where(qb.Eq("user_id", userID)).
		OrderBy("created_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list alerts query: %w", err)
	}

	var rows []alertTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}

	out := make([]alert.Alert, 0, len(rows))
	for _, row := range rows {
		out = append(out, alertFromRow(row))
	}
	return out, nil
}

func (r *AlertRepository) ListActive(ctx context.Context) ([]alert.Alert, error) {
	query, args, err := qb.Select("*").From("alerts").
		Where(qb.Eq("active", true)).
		OrderBy("created_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list active alerts query: %w", err)
	}

	var rows []alertTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list active alerts: %w", err)
	}

	out := make([]alert.Alert, 0, len(rows))
	for _, row := range rows {
		out = append(out, alertFromRow(row))
	}
	return out, nil
}

func (r *AlertRepository) Update(ctx context.Context, a alert.Alert) (bool, error) {
	query, args, err := qb.Update("alerts").
		Set("active", a.Active).
		Where(qb.Eq("id", a.ID)).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build update alert query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("update alert: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected update alert: %w", err)
	}
	return affected > 0, nil
}

func (r *AlertRepository) Delete(ctx context.Context, id, userID string) (bool, error) {
	query, args, err := qb.DeleteFrom("alerts").
		Where(
			qb.Eq("id", id),
			qb.Eq("user_id", userID),
		).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build delete alert query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("delete alert: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected delete alert: %w", err)
	}
	return affected > 0, nil
}

func alertFromRow(row alertTableModel) alert.Alert {
	return alert.Alert{
		ID:        row.ID,
		UserID:    row.UserID,
		EventID:   row.EventID,
		Trigger:   row.Trigger,
		Active:    row.Active,
		CreatedAt: row.CreatedAt,
	}
}
