package fixture

import (
	"context"
	"time"
)

// StatusUpdate carries a provider status for one fixture.
type StatusUpdate struct {
	ExternalID int64
	Status     string
}

// Repository exposes fixture reads and status writes.
type Repository interface {
	GetByID(ctx context.Context, fixtureID string) (Fixture, bool, error)
	ListByIDs(ctx context.Context, fixtureIDs []string) ([]Fixture, error)
	// ListActiveForIngestion returns fixtures with a status in statuses, a
	// kickoff in [from, to], and at least one player-match referenced by a
	// tournament or peer squad slot.
	ListActiveForIngestion(ctx context.Context, statuses []string, from, to time.Time) ([]Fixture, error)
	UpdateStatuses(ctx context.Context, updates []StatusUpdate) error
}
