package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/riskibarqy/fantasy-contest/internal/domain/competition"
	"github.com/riskibarqy/fantasy-contest/internal/domain/fixture"
	"github.com/riskibarqy/fantasy-contest/internal/domain/notification"
	"github.com/riskibarqy/fantasy-contest/internal/domain/player"
	"github.com/riskibarqy/fantasy-contest/internal/domain/playermatch"
	"github.com/riskibarqy/fantasy-contest/internal/domain/playerstat"
	"github.com/riskibarqy/fantasy-contest/internal/domain/scoring"
	"github.com/riskibarqy/fantasy-contest/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/fantasy-contest/internal/platform/id"
	"github.com/riskibarqy/fantasy-contest/internal/usecase"
	"github.com/shopspring/decimal"
)

var testKickoff = time.Date(2026, time.March, 7, 12, 0, 0, 0, time.UTC)

// contestSeed builds a finished fixture where participant i owns one slot
// whose main player scored goals[i] goals, i.e. goals[i]*10 points.
func contestSeed(competitionType competition.Type, competitionID, entryFee string, sharingRatio int, goals []int) memory.Seed {
	seed := memory.Seed{
		Fixtures: []fixture.Fixture{{
			ID:         "fx-1",
			ExternalID: 9001,
			LeagueName: "Liga 1",
			StartsAt:   testKickoff,
			Status:     fixture.StatusFinished,
		}},
		Competitions: []competition.Competition{{
			ID:           competitionID,
			Type:         competitionType,
			Name:         "Matchday " + competitionID,
			EntryFee:     decimal.RequireFromString(entryFee),
			Status:       competition.StatusOpen,
			SharingRatio: sharingRatio,
			StartsAt:     testKickoff,
		}},
	}

	for i, count := range goals {
		playerID := fmt.Sprintf("pl-%d", i)
		matchID := fmt.Sprintf("pm-%d", i)
		seed.Players = append(seed.Players, player.Player{
			ID:         playerID,
			ExternalID: int64(70000 + i),
			Name:       fmt.Sprintf("Striker %d", i),
			Position:   playerstat.PositionForward,
			IsActive:   true,
		})
		seed.PlayerMatches = append(seed.PlayerMatches, playermatch.PlayerMatch{
			ID:          matchID,
			PlayerID:    playerID,
			FixtureID:   "fx-1",
			IsCompleted: true,
		})
		seed.Stats = append(seed.Stats, playerstat.PlayerStatistic{
			PlayerID:   playerID,
			FixtureID:  "fx-1",
			GoalsTotal: count,
			Minutes:    90,
			Position:   playerstat.PositionForward,
			DidPlay:    true,
		})
		seed.Participants = append(seed.Participants, competition.Participant{
			ID:            fmt.Sprintf("part-%d", i),
			CompetitionID: competitionID,
			UserID:        fmt.Sprintf("user-%d", i),
			JoinedAt:      testKickoff.Add(-time.Duration(len(goals)-i) * time.Hour),
			Slots: []competition.SquadSlot{{
				ID:                fmt.Sprintf("slot-%d", i),
				StarRating:        1,
				MainPlayerID:      playerID,
				MainPlayerMatchID: matchID,
			}},
		})
	}
	return seed
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []notification.CompetitionCompleted
	err    error
}

func (n *recordingNotifier) NotifyCompetitionCompleted(_ context.Context, event notification.CompetitionCompleted) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
	return n.err
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.events)
}

func newSettlementEngine(store *memory.Store, notifier usecase.CompetitionNotifier) *usecase.SettlementEngine {
	aggregator := usecase.NewSquadAggregator(scoring.DefaultRules(), nil)
	return usecase.NewSettlementEngine(
		store,
		aggregator,
		notifier,
		id.NewSequenceGenerator("txn-"),
		usecase.DefaultSettlementConfig(),
		nil,
	)
}

func walletBalance(t *testing.T, store *memory.Store, userID string) decimal.Decimal {
	t.Helper()
	item, ok, err := store.Wallets().GetByUserID(context.Background(), userID)
	if err != nil {
		t.Fatalf("get wallet user=%s: %v", userID, err)
	}
	if !ok {
		return decimal.Zero
	}
	return item.Balance
}

var errNotifierDown = errors.New("push gateway down")
