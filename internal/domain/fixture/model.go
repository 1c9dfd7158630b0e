package fixture

import (
	"strings"
	"time"
)

// Provider long-form statuses. Comparisons are exact string matches after
// trimming; the provider is the source of truth for spelling.
const (
	StatusNotStarted        = "Not Started"
	StatusTimeToBeDefined   = "Time to be defined"
	StatusFirstHalf         = "First Half"
	StatusHalftime          = "Halftime"
	StatusSecondHalf        = "Second Half"
	StatusExtraTime         = "Extra Time"
	StatusBreakTime         = "Break Time"
	StatusPenaltyInProgress = "Penalty In Progress"
	StatusSuspended         = "Match Suspended"
	StatusInterrupted       = "Match Interrupted"
	StatusFinished          = "Match Finished"
	StatusFinishedAET       = "Match Finished After Extra Time"
	StatusFinishedPenalty   = "Match Finished After Penalty"
	StatusPostponed         = "Match Postponed"
	StatusCancelled         = "Match Cancelled"
	StatusAbandoned         = "Match Abandoned"
	StatusTechnicalLoss     = "Technical Loss"
	StatusWalkOver          = "WalkOver"
)

// Fixture is a real-world football match tracked for contests.
type Fixture struct {
	ID         string
	ExternalID int64
	LeagueName string
	HomeTeamID string
	AwayTeamID string
	StartsAt   time.Time
	Status     string
	UpdatedAt  time.Time
}

func NormalizeStatus(value string) string {
	status := strings.TrimSpace(value)
	if status == "" {
		return StatusNotStarted
	}
	return status
}

// IsInProgressStatus reports a match that is being played or paused mid-game.
func IsInProgressStatus(status string) bool {
	switch NormalizeStatus(status) {
	case StatusFirstHalf, StatusHalftime, StatusSecondHalf, StatusExtraTime, StatusBreakTime,
		StatusPenaltyInProgress, StatusSuspended, StatusInterrupted:
		return true
	default:
		return false
	}
}

// IsTerminalStatus reports a status after which no more stats arrive.
func IsTerminalStatus(status string) bool {
	switch NormalizeStatus(status) {
	case StatusFinished, StatusFinishedAET, StatusFinishedPenalty,
		StatusCancelled, StatusAbandoned, StatusTechnicalLoss, StatusWalkOver:
		return true
	default:
		return false
	}
}

// IsCompletedForSettlement is the only status that lets a contest settle.
// Abandoned or postponed matches need manual handling.
func IsCompletedForSettlement(status string) bool {
	return strings.TrimSpace(status) == StatusFinished
}

// IngestionStatuses lists statuses the live stats job polls.
func IngestionStatuses() []string {
	return []string{
		StatusNotStarted,
		StatusFirstHalf,
		StatusHalftime,
		StatusSecondHalf,
		StatusExtraTime,
		StatusBreakTime,
		StatusPenaltyInProgress,
		StatusSuspended,
		StatusInterrupted,
		StatusFinished,
		StatusFinishedAET,
		StatusFinishedPenalty,
	}
}

// HasStarted reports whether selections for the fixture must be locked.
func (f Fixture) HasStarted(now time.Time) bool {
	status := NormalizeStatus(f.Status)
	if status != StatusNotStarted && status != StatusTimeToBeDefined && status != StatusPostponed {
		return true
	}
	return !f.StartsAt.IsZero() && !now.Before(f.StartsAt)
}

// InWindow reports whether the kickoff falls within [now-before, now+after].
func (f Fixture) InWindow(now time.Time, before, after time.Duration) bool {
	if f.StartsAt.IsZero() {
		return false
	}
	return !f.StartsAt.Before(now.Add(-before)) && !f.StartsAt.After(now.Add(after))
}
