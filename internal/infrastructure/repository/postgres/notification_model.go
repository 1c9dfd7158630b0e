package postgres

import "time"

type notificationTableModel struct {
	ID        int64      `db:"id"`
	PublicID  string     `db:"public_id"`
	UserID    string     `db:"user_id"`
	Type      string     `db:"type"`
	Title     string     `db:"title"`
	Body      string     `db:"body"`
	Data      []byte     `db:"data"`
	ReadAt    *time.Time `db:"read_at"`
	CreatedAt time.Time  `db:"created_at"`
}

type notificationInsertModel struct {
	PublicID  string    `db:"public_id"`
	UserID    string    `db:"user_id"`
	Type      string    `db:"type"`
	Title     string    `db:"title"`
	Body      string    `db:"body"`
	Data      string    `db:"data"`
	CreatedAt time.Time `db:"created_at"`
}
