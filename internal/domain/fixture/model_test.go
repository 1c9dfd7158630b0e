package fixture

import (
	"testing"
	"time"
)

func TestStatusClassification(t *testing.T) {
	tests := []struct {
		status     string
		inProgress bool
		terminal   bool
		settleable bool
	}{
		{status: StatusNotStarted},
		{status: StatusFirstHalf, inProgress: true},
		{status: StatusHalftime, inProgress: true},
		{status: StatusPenaltyInProgress, inProgress: true},
		{status: StatusSuspended, inProgress: true},
		{status: StatusFinished, terminal: true, settleable: true},
		{status: " Match Finished ", terminal: true, settleable: true},
		{status: StatusFinishedAET, terminal: true},
		{status: StatusAbandoned, terminal: true},
		{status: StatusPostponed},
	}

	for _, tc := range tests {
		t.Run(tc.status, func(t *testing.T) {
			if got := IsInProgressStatus(tc.status); got != tc.inProgress {
				t.Fatalf("in progress: got=%v want=%v", got, tc.inProgress)
			}
			if got := IsTerminalStatus(tc.status); got != tc.terminal {
				t.Fatalf("terminal: got=%v want=%v", got, tc.terminal)
			}
			if got := IsCompletedForSettlement(tc.status); got != tc.settleable {
				t.Fatalf("settleable: got=%v want=%v", got, tc.settleable)
			}
		})
	}
}

func TestFixture_InWindow(t *testing.T) {
	now := time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)
	item := Fixture{StartsAt: now.Add(-5 * time.Hour)}

	if !item.InWindow(now, 6*time.Hour, 3*time.Hour) {
		t.Fatalf("expected kickoff 5h ago inside now-6h..now+3h")
	}
	item.StartsAt = now.Add(4 * time.Hour)
	if item.InWindow(now, 6*time.Hour, 3*time.Hour) {
		t.Fatalf("expected kickoff in 4h outside window")
	}
	if (Fixture{}).InWindow(now, time.Hour, time.Hour) {
		t.Fatalf("zero kickoff must be outside any window")
	}
}

func TestFixture_HasStarted(t *testing.T) {
	now := time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)
	if (Fixture{Status: StatusNotStarted, StartsAt: now.Add(time.Hour)}).HasStarted(now) {
		t.Fatalf("future not-started fixture must not count as started")
	}
	if !(Fixture{Status: StatusFirstHalf, StartsAt: now.Add(time.Hour)}).HasStarted(now) {
		t.Fatalf("live status must count as started")
	}
	if !(Fixture{Status: StatusNotStarted, StartsAt: now}).HasStarted(now) {
		t.Fatalf("kickoff time reached must count as started")
	}
}
