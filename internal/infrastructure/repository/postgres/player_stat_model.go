package postgres

import "time"

type playerStatTableModel struct {
	ID                int64     `db:"id"`
	PublicID          string    `db:"public_id"`
	PlayerID          string    `db:"player_public_id"`
	FixtureID         string    `db:"fixture_public_id"`
	PlayerExternalID  int64     `db:"player_external_id"`
	FixtureExternalID int64     `db:"fixture_external_id"`
	TeamExternalID    int64     `db:"team_external_id"`
	GoalsTotal        int       `db:"goals_total"`
	GoalsAssists      int       `db:"goals_assists"`
	ShotsTotal        int       `db:"shots_total"`
	ShotsOnTarget     int       `db:"shots_on_target"`
	ShotsOnGoal       int       `db:"shots_on_goal"`
	YellowCards       int       `db:"yellow_cards"`
	RedCards          int       `db:"red_cards"`
	Minutes           int       `db:"minutes"`
	GoalsConceded     int       `db:"goals_conceded"`
	GoalsSaves        int       `db:"goals_saves"`
	Position          string    `db:"position"`
	Captain           bool      `db:"captain"`
	Substitute        bool      `db:"substitute"`
	DidPlay           bool      `db:"did_play"`
	IsInjured         bool      `db:"is_injured"`
	CleanSheet        *bool     `db:"clean_sheet"`
	TotalPoint        *int      `db:"total_point"`
	CreatedAt         time.Time `db:"created_at"`
	UpdatedAt         time.Time `db:"updated_at"`
}

type playerStatInsertModel struct {
	PublicID          string `db:"public_id"`
	PlayerID          string `db:"player_public_id"`
	FixtureID         string `db:"fixture_public_id"`
	PlayerExternalID  int64  `db:"player_external_id"`
	FixtureExternalID int64  `db:"fixture_external_id"`
	TeamExternalID    int64  `db:"team_external_id"`
	GoalsTotal        int    `db:"goals_total"`
	GoalsAssists      int    `db:"goals_assists"`
	ShotsTotal        int    `db:"shots_total"`
	ShotsOnTarget     int    `db:"shots_on_target"`
	ShotsOnGoal       int    `db:"shots_on_goal"`
	YellowCards       int    `db:"yellow_cards"`
	RedCards          int    `db:"red_cards"`
	Minutes           int    `db:"minutes"`
	GoalsConceded     int    `db:"goals_conceded"`
	GoalsSaves        int    `db:"goals_saves"`
	Position          string `db:"position"`
	Captain           bool   `db:"captain"`
	Substitute        bool   `db:"substitute"`
	DidPlay           bool   `db:"did_play"`
	IsInjured         bool   `db:"is_injured"`
	CleanSheet        *bool  `db:"clean_sheet"`
	TotalPoint        *int   `db:"total_point"`
}
