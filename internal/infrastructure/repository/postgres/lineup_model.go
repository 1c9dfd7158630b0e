package postgres

import "time"

type lineupTableModel struct {
	ID             int64     `db:"id"`
	FixtureID      string    `db:"fixture_public_id"`
	TeamExternalID int64     `db:"team_external_id"`
	TeamName       string    `db:"team_name"`
	Formation      string    `db:"formation"`
	StartingXI     []byte    `db:"starting_xi"`
	Substitutes    []byte    `db:"substitutes"`
	FetchedAt      time.Time `db:"fetched_at"`
}

type lineupInsertModel struct {
	FixtureID      string    `db:"fixture_public_id"`
	TeamExternalID int64     `db:"team_external_id"`
	TeamName       string    `db:"team_name"`
	Formation      string    `db:"formation"`
	StartingXI     string    `db:"starting_xi"`
	Substitutes    string    `db:"substitutes"`
	FetchedAt      time.Time `db:"fetched_at"`
}

// lineupEntryDocument is the JSONB shape of one team sheet entry.
type lineupEntryDocument struct {
	PlayerExternalID int64  `json:"player_id"`
	Name             string `json:"name"`
	Number           int    `json:"number"`
	Position         string `json:"pos"`
}
