package competition

import (
	"fmt"
	"strings"
)

// AggregationMode selects how main and substitute points combine per slot.
type AggregationMode string

const (
	// AggregationBestOf counts the substitute only when the main player's
	// statistic confirms they did not play.
	AggregationBestOf AggregationMode = "best_of"
	// AggregationSum adds main and substitute points unconditionally.
	//
	// Deprecated: kept for parity with historic settlements; use AggregationBestOf.
	AggregationSum AggregationMode = "sum"
)

func ParseAggregationMode(value string) (AggregationMode, error) {
	switch AggregationMode(strings.ToLower(strings.TrimSpace(value))) {
	case "", AggregationBestOf:
		return AggregationBestOf, nil
	case AggregationSum:
		return AggregationSum, nil
	default:
		return "", fmt.Errorf("unknown aggregation mode %q", value)
	}
}

// PlayerScore is the resolved points of one player-match. Found is false when
// no statistic row exists yet.
type PlayerScore struct {
	Points int
	Played bool
	Found  bool
}

// ScoreLookup resolves a player-match id to the score of the given player.
type ScoreLookup func(playerMatchID, playerID string) PlayerScore

// AggregateSlots totals a squad. A missing statistic counts as zero points.
// In best-of mode a main player without a statistic row keeps the slot, so the
// substitute is not credited before the main player's fixture reports.
func AggregateSlots(slots []SquadSlot, lookup ScoreLookup, mode AggregationMode) int {
	total := 0
	for _, slot := range slots {
		main := lookup(slot.MainPlayerMatchID, slot.MainPlayerID)
		sub := lookup(slot.SubPlayerMatchID, slot.SubPlayerID)

		switch mode {
		case AggregationSum:
			total += main.Points + sub.Points
		default:
			if main.Found && !main.Played {
				total += sub.Points
			} else {
				total += main.Points
			}
		}
	}
	return total
}
