package playermatch

import "time"

// PlayerMatch binds a player to a fixture so it can be picked into a squad.
// IsCompleted only ever moves from false to true.
type PlayerMatch struct {
	ID          string
	PlayerID    string
	FixtureID   string
	IsCompleted bool
	CreatedAt   time.Time
}

func IndexByID(items []PlayerMatch) map[string]PlayerMatch {
	out := make(map[string]PlayerMatch, len(items))
	for _, item := range items {
		out[item.ID] = item
	}
	return out
}
