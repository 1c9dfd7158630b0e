package lineup

import "context"

// Repository exposes fixture lineup persistence operations.
type Repository interface {
	ListByFixture(ctx context.Context, fixtureID string) ([]TeamLineup, error)
	ReplaceForFixture(ctx context.Context, fixtureID string, items []TeamLineup) error
}
