package playerstat

import "context"

type Repository interface {
	// Upsert writes the latest snapshot per (player, fixture). A nil
	// CleanSheet keeps the stored value.
	Upsert(ctx context.Context, items []PlayerStatistic) error
	ListByKeys(ctx context.Context, keys []Key) ([]PlayerStatistic, error)
	ListByFixture(ctx context.Context, fixtureID string) ([]PlayerStatistic, error)
	// SaveDerived writes only the clean_sheet and total_point caches.
	SaveDerived(ctx context.Context, items []PlayerStatistic) error
}
