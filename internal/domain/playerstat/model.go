package playerstat

import "time"

// Position uses the provider's single-letter codes.
type Position string

const (
	PositionGoalkeeper Position = "G"
	PositionDefender   Position = "D"
	PositionMidfielder Position = "M"
	PositionForward    Position = "F"
)

// PlayerStatistic is one player's statistics for one fixture. CleanSheet and
// TotalPoint are derived caches written by the points engine.
type PlayerStatistic struct {
	ID                string
	PlayerID          string
	FixtureID         string
	PlayerExternalID  int64
	FixtureExternalID int64
	TeamExternalID    int64

	GoalsTotal    int
	GoalsAssists  int
	ShotsTotal    int
	ShotsOnTarget int
	ShotsOnGoal   int
	YellowCards   int
	RedCards      int
	Minutes       int
	GoalsConceded int
	GoalsSaves    int

	Position   Position
	Captain    bool
	Substitute bool
	DidPlay    bool
	IsInjured  bool

	CleanSheet *bool
	TotalPoint *int

	UpdatedAt time.Time
}

// Key identifies the single statistic row allowed per (player, fixture).
type Key struct {
	PlayerID  string
	FixtureID string
}

func (s PlayerStatistic) Key() Key {
	return Key{PlayerID: s.PlayerID, FixtureID: s.FixtureID}
}

// Played reports whether the player took part and was not injured.
func (s PlayerStatistic) Played() bool {
	return s.DidPlay && !s.IsInjured
}

func IndexByKey(items []PlayerStatistic) map[Key]PlayerStatistic {
	out := make(map[Key]PlayerStatistic, len(items))
	for _, item := range items {
		out[item.Key()] = item
	}
	return out
}
