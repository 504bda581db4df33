package postgres

import "time"

type alertTableModel struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	EventID   string    `db:"event_id"`
	Trigger   string    `db:"trigger_kind"`
	Active    bool      `db:"active"`
	CreatedAt time.Time `db:"created_at"`
}

type alertInsertModel struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	EventID   string    `db:"event_id"`
	Trigger   string    `db:"trigger_kind"`
	Active    bool      `db:"active"`
	CreatedAt time.Time `db:"created_at"`
}
