package usecase

import (
	"context"
	"fmt"

	"github.com/riskibarqy/fantasy-contest/internal/domain/competition"
	"github.com/riskibarqy/fantasy-contest/internal/domain/playermatch"
	"github.com/riskibarqy/fantasy-contest/internal/domain/playerstat"
	"github.com/riskibarqy/fantasy-contest/internal/domain/scoring"
	"github.com/riskibarqy/fantasy-contest/internal/platform/logging"
)

// SquadAggregator turns squads into participant totals.
type SquadAggregator struct {
	rules  scoring.Rules
	logger *logging.Logger
}

func NewSquadAggregator(rules scoring.Rules, logger *logging.Logger) *SquadAggregator {
	if logger == nil {
		logger = logging.Default()
	}
	return &SquadAggregator{rules: rules, logger: logger}
}

func (a *SquadAggregator) Rules() scoring.Rules {
	return a.rules
}

// AggregateParticipant totals a single squad.
func (a *SquadAggregator) AggregateParticipant(ctx context.Context, source ScoreSource, slots []competition.SquadSlot, mode competition.AggregationMode) (int, error) {
	totals, err := a.AggregateCompetition(ctx, source, []competition.Participant{{ID: "single", Slots: slots}}, mode)
	if err != nil {
		return 0, err
	}
	return totals["single"], nil
}

// AggregateCompetition totals every participant with two batched reads and
// refreshes the derived point caches that changed.
func (a *SquadAggregator) AggregateCompetition(ctx context.Context, source ScoreSource, participants []competition.Participant, mode competition.AggregationMode) (map[string]int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SquadAggregator.AggregateCompetition")
	defer span.End()

	totals := make(map[string]int, len(participants))
	matchIDs := competition.PlayerMatchIDs(participants)
	if len(matchIDs) == 0 {
		for _, participant := range participants {
			totals[participant.ID] = 0
		}
		return totals, nil
	}

	matches, err := source.ListPlayerMatchesByIDs(ctx, matchIDs)
	if err != nil {
		return nil, fmt.Errorf("list player matches: %w", err)
	}
	matchByID := playermatch.IndexByID(matches)

	keys := make([]playerstat.Key, 0, len(matches))
	for _, item := range matches {
		keys = append(keys, playerstat.Key{PlayerID: item.PlayerID, FixtureID: item.FixtureID})
	}
	stats, err := source.ListStatsByKeys(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("list player statistics: %w", err)
	}

	scores := make(map[playerstat.Key]competition.PlayerScore, len(stats))
	changed := make([]playerstat.PlayerStatistic, 0)
	for _, stat := range stats {
		if scoring.ApplyDerived(&stat, a.rules) {
			changed = append(changed, stat)
		}
		scores[stat.Key()] = competition.PlayerScore{
			Points: *stat.TotalPoint,
			Played: stat.Played(),
			Found:  true,
		}
	}
	if len(changed) > 0 {
		if err := source.SaveDerivedStats(ctx, changed); err != nil {
			return nil, fmt.Errorf("save derived points: %w", err)
		}
	}

	missing := 0
	lookup := func(playerMatchID, playerID string) competition.PlayerScore {
		item, ok := matchByID[playerMatchID]
		if !ok {
			missing++
			return competition.PlayerScore{}
		}
		if item.PlayerID == "" {
			item.PlayerID = playerID
		}
		score, ok := scores[playerstat.Key{PlayerID: item.PlayerID, FixtureID: item.FixtureID}]
		if !ok {
			missing++
		}
		return score
	}

	for _, participant := range participants {
		totals[participant.ID] = competition.AggregateSlots(participant.Slots, lookup, mode)
	}

	if missing > 0 {
		a.logger.DebugContext(ctx, "squad slots resolved without statistics",
			"missing", missing,
			"error", ErrDataIntegrity,
		)
	}

	return totals, nil
}
