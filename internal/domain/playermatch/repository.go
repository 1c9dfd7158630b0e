package playermatch

import "context"

type Repository interface {
	ListByIDs(ctx context.Context, ids []string) ([]PlayerMatch, error)
	ListByFixture(ctx context.Context, fixtureID string) ([]PlayerMatch, error)
	ListByPlayers(ctx context.Context, playerIDs []string) ([]PlayerMatch, error)
	// MarkCompletedByFixture flips is_completed for every row of the fixture
	// and returns how many rows changed.
	MarkCompletedByFixture(ctx context.Context, fixtureID string) (int64, error)
}
