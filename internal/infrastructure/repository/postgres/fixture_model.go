package postgres

import (
	"time"
)

type fixtureTableModel struct {
	ID         int64      `db:"id"`
	PublicID   string     `db:"public_id"`
	ExternalID int64      `db:"external_id"`
	LeagueName string     `db:"league_name"`
	HomeTeamID string     `db:"home_team_public_id"`
	AwayTeamID string     `db:"away_team_public_id"`
	StartsAt   time.Time  `db:"starts_at"`
	Status     string     `db:"status"`
	CreatedAt  time.Time  `db:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at"`
	DeletedAt  *time.Time `db:"deleted_at"`
}

type fixtureInsertModel struct {
	PublicID   string    `db:"public_id"`
	ExternalID int64     `db:"external_id"`
	LeagueName string    `db:"league_name"`
	HomeTeamID string    `db:"home_team_public_id"`
	AwayTeamID string    `db:"away_team_public_id"`
	StartsAt   time.Time `db:"starts_at"`
	Status     string    `db:"status"`
}
