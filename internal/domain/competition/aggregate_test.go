package competition

import "testing"

func TestAggregateSlots(t *testing.T) {
	scores := map[string]PlayerScore{
		"pm-main-1": {Points: 12, Played: true, Found: true},
		"pm-sub-1":  {Points: 7, Played: true, Found: true},
		"pm-main-2": {Points: 0, Played: false, Found: true},
		"pm-sub-2":  {Points: 9, Played: true, Found: true},
		"pm-sub-3":  {Points: 4, Played: true, Found: true},
	}
	lookup := func(playerMatchID, _ string) PlayerScore {
		return scores[playerMatchID]
	}

	slots := []SquadSlot{
		{StarRating: 1, MainPlayerMatchID: "pm-main-1", SubPlayerMatchID: "pm-sub-1"},
		{StarRating: 2, MainPlayerMatchID: "pm-main-2", SubPlayerMatchID: "pm-sub-2"},
		// main has no statistic yet
		{StarRating: 3, MainPlayerMatchID: "pm-main-3", SubPlayerMatchID: "pm-sub-3"},
	}

	if got := AggregateSlots(slots, lookup, AggregationBestOf); got != 12+9 {
		t.Fatalf("best_of: got=%d want=21", got)
	}
	if got := AggregateSlots(slots, lookup, AggregationSum); got != 12+7+0+9+0+4 {
		t.Fatalf("sum: got=%d want=32", got)
	}
	if got := AggregateSlots(nil, lookup, AggregationBestOf); got != 0 {
		t.Fatalf("empty squad: got=%d want=0", got)
	}
}

func TestAggregateSlots_BestOfWaitsForMainStatistic(t *testing.T) {
	scores := map[string]PlayerScore{
		"pm-sub": {Points: 10, Played: true, Found: true},
	}
	lookup := func(playerMatchID, _ string) PlayerScore {
		return scores[playerMatchID]
	}
	slots := []SquadSlot{{StarRating: 1, MainPlayerMatchID: "pm-main", SubPlayerMatchID: "pm-sub"}}

	if got := AggregateSlots(slots, lookup, AggregationBestOf); got != 0 {
		t.Fatalf("main without statistic: got=%d want=0", got)
	}

	scores["pm-main"] = PlayerScore{Points: 0, Played: false, Found: true}
	if got := AggregateSlots(slots, lookup, AggregationBestOf); got != 10 {
		t.Fatalf("main confirmed absent: got=%d want=10", got)
	}

	scores["pm-main"] = PlayerScore{Points: 6, Played: true, Found: true}
	if got := AggregateSlots(slots, lookup, AggregationBestOf); got != 6 {
		t.Fatalf("main played: got=%d want=6", got)
	}
}

func TestParseAggregationMode(t *testing.T) {
	if mode, err := ParseAggregationMode(""); err != nil || mode != AggregationBestOf {
		t.Fatalf("expected default best_of, got %q err=%v", mode, err)
	}
	if mode, err := ParseAggregationMode("SUM"); err != nil || mode != AggregationSum {
		t.Fatalf("expected sum, got %q err=%v", mode, err)
	}
	if _, err := ParseAggregationMode("max"); err == nil {
		t.Fatalf("expected error for unknown mode")
	}
}
