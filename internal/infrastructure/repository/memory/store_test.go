package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/fantasy-contest/internal/domain/competition"
	"github.com/riskibarqy/fantasy-contest/internal/domain/fixture"
	"github.com/riskibarqy/fantasy-contest/internal/domain/playerstat"
	"github.com/riskibarqy/fantasy-contest/internal/domain/wallet"
	"github.com/riskibarqy/fantasy-contest/internal/usecase"
	"github.com/shopspring/decimal"
)

var _ usecase.SettlementStore = (*Store)(nil)

func TestWithinSettlement_RollbackDiscardsWrites(t *testing.T) {
	ctx := context.Background()
	store := NewStore(SeedDemo(time.Now()))
	ref := competition.Ref{Type: competition.TypeTournament, ID: TournamentIDDailyDerby}

	err := store.WithinSettlement(ctx, func(ctx context.Context, tx usecase.SettlementTx) error {
		if _, err := tx.CreditWallet(ctx, "user-andi", decimal.NewFromInt(100)); err != nil {
			return err
		}
		if err := tx.MarkSettled(ctx, ref, competition.StatusClose, "user-andi", time.Now()); err != nil {
			return err
		}
		return errors.New("boom")
	})
	if err == nil {
		t.Fatalf("expected callback error")
	}

	item, _, _ := store.Wallets().GetByUserID(ctx, "user-andi")
	if !item.Balance.Equal(decimal.NewFromInt(2500)) {
		t.Fatalf("balance must be unchanged after rollback, got %s", item.Balance)
	}
	comp, _, _ := store.Competitions().GetByID(ctx, ref)
	if !comp.Settleable() {
		t.Fatalf("competition must stay open after rollback: %+v", comp)
	}
}

func TestWithinSettlement_CommitAndLedgerGuard(t *testing.T) {
	ctx := context.Background()
	store := NewStore(SeedDemo(time.Now()))

	entry := wallet.Transaction{
		ID:            "txn-1",
		UserID:        "user-dewi",
		Amount:        decimal.NewFromInt(950),
		ActionType:    wallet.ActionCredit,
		Status:        wallet.TransactionCompleted,
		ReferenceType: wallet.ReferencePeerPrize,
		ReferenceID:   PeerIDWeekendShowdown,
		ParticipantID: "peer-entry-dewi",
	}
	err := store.WithinSettlement(ctx, func(ctx context.Context, tx usecase.SettlementTx) error {
		balance, err := tx.CreditWallet(ctx, "user-dewi", entry.Amount)
		if err != nil {
			return err
		}
		if !balance.Before.Equal(decimal.NewFromInt(500)) || !balance.After.Equal(decimal.NewFromInt(1450)) {
			t.Fatalf("unexpected balance move: %s -> %s", balance.Before, balance.After)
		}
		return tx.RecordTransaction(ctx, entry)
	})
	if err != nil {
		t.Fatalf("WithinSettlement error: %v", err)
	}

	err = store.WithinSettlement(ctx, func(ctx context.Context, tx usecase.SettlementTx) error {
		entry.ID = "txn-2"
		return tx.RecordTransaction(ctx, entry)
	})
	if err == nil {
		t.Fatalf("expected duplicate ledger reference to be rejected")
	}

	rows, _ := store.Wallets().ListTransactionsByUser(ctx, "user-dewi")
	if len(rows) != 1 {
		t.Fatalf("expected single ledger row, got %d", len(rows))
	}
}

func TestPlayerStatUpsert_KeepsCleanSheetWhenNil(t *testing.T) {
	ctx := context.Background()
	store := NewStore(Seed{})
	repo := store.PlayerStats()
	cleanSheet := true

	first := playerstat.PlayerStatistic{PlayerID: "p1", FixtureID: "f1", Minutes: 70, CleanSheet: &cleanSheet}
	if err := repo.Upsert(ctx, []playerstat.PlayerStatistic{first}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	second := playerstat.PlayerStatistic{PlayerID: "p1", FixtureID: "f1", Minutes: 80}
	if err := repo.Upsert(ctx, []playerstat.PlayerStatistic{second}); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	rows, _ := repo.ListByKeys(ctx, []playerstat.Key{{PlayerID: "p1", FixtureID: "f1"}})
	if len(rows) != 1 {
		t.Fatalf("expected one row per player and fixture, got %d", len(rows))
	}
	if rows[0].Minutes != 80 || rows[0].CleanSheet == nil || !*rows[0].CleanSheet {
		t.Fatalf("unexpected row after upsert: %+v", rows[0])
	}
}

func TestListActiveForIngestion_OnlyReferencedInWindow(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()
	seed := SeedDemo(now)
	seed.Fixtures = append(seed.Fixtures, fixture.Fixture{
		ID:         "fx-unreferenced",
		ExternalID: 99,
		StartsAt:   now,
		Status:     fixture.StatusFirstHalf,
	})
	store := NewStore(seed)

	items, err := store.Fixtures().ListActiveForIngestion(ctx, fixture.IngestionStatuses(), now.Add(-6*time.Hour), now.Add(3*time.Hour))
	if err != nil {
		t.Fatalf("ListActiveForIngestion error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected two referenced fixtures, got %d", len(items))
	}
	for _, item := range items {
		if item.ID == "fx-unreferenced" {
			t.Fatalf("unreferenced fixture must be skipped")
		}
	}
}
