package postgres

import (
	"time"
)

type playerTableModel struct {
	ID         int64      `db:"id"`
	PublicID   string     `db:"public_id"`
	ExternalID int64      `db:"external_id"`
	TeamID     string     `db:"team_public_id"`
	Name       string     `db:"name"`
	Position   string     `db:"position"`
	IsActive   bool       `db:"is_active"`
	CreatedAt  time.Time  `db:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at"`
	DeletedAt  *time.Time `db:"deleted_at"`
}

type playerInsertModel struct {
	PublicID   string `db:"public_id"`
	ExternalID int64  `db:"external_id"`
	TeamID     string `db:"team_public_id"`
	Name       string `db:"name"`
	Position   string `db:"position"`
	IsActive   bool   `db:"is_active"`
}

type playerMatchTableModel struct {
	ID          int64     `db:"id"`
	PublicID    string    `db:"public_id"`
	PlayerID    string    `db:"player_public_id"`
	FixtureID   string    `db:"fixture_public_id"`
	IsCompleted bool      `db:"is_completed"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

type playerMatchInsertModel struct {
	PublicID    string `db:"public_id"`
	PlayerID    string `db:"player_public_id"`
	FixtureID   string `db:"fixture_public_id"`
	IsCompleted bool   `db:"is_completed"`
}
