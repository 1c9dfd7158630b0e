package usecase

import (
	"context"

	"github.com/riskibarqy/fantasy-contest/internal/domain/playermatch"
	"github.com/riskibarqy/fantasy-contest/internal/domain/playerstat"
)

// ScoreSource is what the aggregator reads from. Both plain repositories and
// a settlement transaction satisfy it.
type ScoreSource interface {
	ListPlayerMatchesByIDs(ctx context.Context, ids []string) ([]playermatch.PlayerMatch, error)
	ListStatsByKeys(ctx context.Context, keys []playerstat.Key) ([]playerstat.PlayerStatistic, error)
	SaveDerivedStats(ctx context.Context, items []playerstat.PlayerStatistic) error
}

type repositoryScoreSource struct {
	playerMatches playermatch.Repository
	stats         playerstat.Repository
}

// NewRepositoryScoreSource reads scores outside of a transaction.
func NewRepositoryScoreSource(playerMatches playermatch.Repository, stats playerstat.Repository) ScoreSource {
	return repositoryScoreSource{playerMatches: playerMatches, stats: stats}
}

func (s repositoryScoreSource) ListPlayerMatchesByIDs(ctx context.Context, ids []string) ([]playermatch.PlayerMatch, error) {
	return s.playerMatches.ListByIDs(ctx, ids)
}

func (s repositoryScoreSource) ListStatsByKeys(ctx context.Context, keys []playerstat.Key) ([]playerstat.PlayerStatistic, error) {
	return s.stats.ListByKeys(ctx, keys)
}

func (s repositoryScoreSource) SaveDerivedStats(ctx context.Context, items []playerstat.PlayerStatistic) error {
	return s.stats.SaveDerived(ctx, items)
}
