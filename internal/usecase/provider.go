package usecase

import "context"

// StatsProvider is the live football data collaborator used by ingestion.
type StatsProvider interface {
	FetchPlayerMatchStats(ctx context.Context, fixtureExternalID int64) ([]ExternalPlayerStat, error)
	FetchFixtureStatuses(ctx context.Context, fixtureExternalIDs []int64) ([]ExternalFixtureStatus, error)
}

// LineupProvider fetches team sheets for availability checks.
type LineupProvider interface {
	FetchLineup(ctx context.Context, fixtureExternalID int64) ([]ExternalTeamLineup, error)
}

// ExternalPlayerStat is a provider-shaped row. Nil counters mean the
// provider sent null.
type ExternalPlayerStat struct {
	PlayerExternalID int64
	TeamExternalID   int64
	PlayerName       string
	Position         string
	Captain          bool
	Substitute       bool
	Injured          *bool

	Minutes       *int
	GoalsTotal    *int
	GoalsAssists  *int
	GoalsConceded *int
	GoalsSaves    *int
	ShotsTotal    *int
	ShotsOnTarget *int
	ShotsOnGoal   *int
	YellowCards   *int
	RedCards      *int
}

type ExternalFixtureStatus struct {
	ExternalID int64
	Status     string
	Elapsed    int
}

type ExternalTeamLineup struct {
	TeamExternalID int64
	TeamName       string
	Formation      string
	StartingXI     []ExternalLineupPlayer
	Substitutes    []ExternalLineupPlayer
}

type ExternalLineupPlayer struct {
	PlayerExternalID int64
	Name             string
	Number           int
	Position         string
}
