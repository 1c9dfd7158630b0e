package usecase

import (
	"context"
	"fmt"

	"github.com/riskibarqy/fantasy-contest/internal/domain/competition"
	"github.com/riskibarqy/fantasy-contest/internal/domain/fixture"
	"github.com/riskibarqy/fantasy-contest/internal/domain/playermatch"
	"github.com/riskibarqy/fantasy-contest/internal/platform/logging"
	"github.com/sourcegraph/conc/pool"
)

// CompletionDetector decides when every fixture behind a competition is done.
type CompletionDetector struct {
	competitionRepo competition.Repository
	playerMatchRepo playermatch.Repository
	fixtureRepo     fixture.Repository
	maxConcurrency  int
	logger          *logging.Logger
}

func NewCompletionDetector(
	competitionRepo competition.Repository,
	playerMatchRepo playermatch.Repository,
	fixtureRepo fixture.Repository,
	maxConcurrency int,
	logger *logging.Logger,
) *CompletionDetector {
	if logger == nil {
		logger = logging.Default()
	}
	if maxConcurrency <= 0 {
		maxConcurrency = 4
	}
	return &CompletionDetector{
		competitionRepo: competitionRepo,
		playerMatchRepo: playerMatchRepo,
		fixtureRepo:     fixtureRepo,
		maxConcurrency:  maxConcurrency,
		logger:          logger,
	}
}

// IsComplete is true only when at least one player-match is referenced and
// every referenced fixture is exactly "Match Finished".
func (d *CompletionDetector) IsComplete(ctx context.Context, ref competition.Ref) (bool, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CompletionDetector.IsComplete")
	defer span.End()

	participants, err := d.competitionRepo.ListParticipants(ctx, ref)
	if err != nil {
		return false, fmt.Errorf("list participants competition=%s: %w", ref, err)
	}

	matchIDs := competition.PlayerMatchIDs(participants)
	if len(matchIDs) == 0 {
		return false, nil
	}

	matches, err := d.playerMatchRepo.ListByIDs(ctx, matchIDs)
	if err != nil {
		return false, fmt.Errorf("list player matches competition=%s: %w", ref, err)
	}
	if len(matches) != len(matchIDs) {
		d.logger.WarnContext(ctx, "competition references unknown player matches",
			"competition", ref.String(),
			"referenced", len(matchIDs),
			"found", len(matches),
		)
		return false, nil
	}

	fixtureIDs := make([]string, 0, len(matches))
	seen := make(map[string]struct{}, len(matches))
	for _, item := range matches {
		if _, ok := seen[item.FixtureID]; ok {
			continue
		}
		seen[item.FixtureID] = struct{}{}
		fixtureIDs = append(fixtureIDs, item.FixtureID)
	}

	fixtures, err := d.fixtureRepo.ListByIDs(ctx, fixtureIDs)
	if err != nil {
		return false, fmt.Errorf("list fixtures competition=%s: %w", ref, err)
	}
	if len(fixtures) != len(fixtureIDs) {
		return false, nil
	}
	for _, item := range fixtures {
		if !fixture.IsCompletedForSettlement(item.Status) {
			return false, nil
		}
	}

	return true, nil
}

// FilterComplete checks refs concurrently and returns the complete ones in
// input order. A failed check is logged and treated as not complete.
func (d *CompletionDetector) FilterComplete(ctx context.Context, refs []competition.Ref) []competition.Ref {
	if len(refs) == 0 {
		return nil
	}

	type check struct {
		index    int
		complete bool
	}

	p := pool.NewWithResults[check]().WithMaxGoroutines(d.maxConcurrency)
	for i, ref := range refs {
		p.Go(func() check {
			complete, err := d.IsComplete(ctx, ref)
			if err != nil {
				d.logger.WarnContext(ctx, "completion check failed", "competition", ref.String(), "error", err)
				return check{index: i}
			}
			return check{index: i, complete: complete}
		})
	}

	flags := make([]bool, len(refs))
	for _, item := range p.Wait() {
		flags[item.index] = item.complete
	}

	out := make([]competition.Ref, 0, len(refs))
	for i, ref := range refs {
		if flags[i] {
			out = append(out, ref)
		}
	}
	return out
}
