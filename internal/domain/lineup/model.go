package lineup

import "time"

// Entry is one player listed on a team sheet.
type Entry struct {
	PlayerExternalID int64
	Name             string
	Number           int
	Position         string
}

// TeamLineup is the team sheet of one side of a fixture.
type TeamLineup struct {
	FixtureID      string
	TeamExternalID int64
	TeamName       string
	Formation      string
	StartingXI     []Entry
	Substitutes    []Entry
	FetchedAt      time.Time
}

// PlayerExternalIDs returns starters and substitutes of every given lineup.
func PlayerExternalIDs(items []TeamLineup) []int64 {
	out := make([]int64, 0, len(items)*22)
	seen := make(map[int64]struct{}, len(items)*22)
	for _, item := range items {
		for _, entries := range [][]Entry{item.StartingXI, item.Substitutes} {
			for _, entry := range entries {
				if entry.PlayerExternalID <= 0 {
					continue
				}
				if _, ok := seen[entry.PlayerExternalID]; ok {
					continue
				}
				seen[entry.PlayerExternalID] = struct{}{}
				out = append(out, entry.PlayerExternalID)
			}
		}
	}
	return out
}
