package postgres

import "time"

type favoriteTableModel struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	Type      string    `db:"favorite_type"`
	Target    string    `db:"target"`
	CreatedAt time.Time `db:"created_at"`
}

type favoriteInsertModel struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	Type      string    `db:"favorite_type"`
	Target    string    `db:"target"`
	CreatedAt time.Time `db:"created_at"`
}
