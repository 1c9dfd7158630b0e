package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/fantasy-contest/internal/domain/competition"
	"github.com/riskibarqy/fantasy-contest/internal/domain/playermatch"
	"github.com/riskibarqy/fantasy-contest/internal/domain/playerstat"
	"github.com/riskibarqy/fantasy-contest/internal/domain/wallet"
	qb "github.com/riskibarqy/fantasy-contest/internal/platform/querybuilder"
	"github.com/riskibarqy/fantasy-contest/internal/usecase"
	"github.com/shopspring/decimal"
)

// SettlementStore runs each settlement in one read-committed transaction.
// The competition row lock taken by LockCompetition serializes concurrent
// settlements of the same competition.
type SettlementStore struct {
	db *sqlx.DB
}

func NewSettlementStore(db *sqlx.DB) *SettlementStore {
	return &SettlementStore{db: db}
}

func (s *SettlementStore) WithinSettlement(ctx context.Context, fn func(ctx context.Context, tx usecase.SettlementTx) error) error {
	tx, err := s.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return fmt.Errorf("begin settlement tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(ctx, &settlementTx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit settlement tx: %w", err)
	}
	return nil
}

type settlementTx struct {
	tx *sqlx.Tx
}

func (t *settlementTx) ListPlayerMatchesByIDs(ctx context.Context, ids []string) ([]playermatch.PlayerMatch, error) {
	return listPlayerMatchesByIDs(ctx, t.tx, ids)
}

func (t *settlementTx) ListStatsByKeys(ctx context.Context, keys []playerstat.Key) ([]playerstat.PlayerStatistic, error) {
	return listStatsByKeys(ctx, t.tx, keys)
}

func (t *settlementTx) SaveDerivedStats(ctx context.Context, items []playerstat.PlayerStatistic) error {
	return saveDerivedStats(ctx, t.tx, items)
}

func (t *settlementTx) LockCompetition(ctx context.Context, ref competition.Ref) (competition.Competition, bool, error) {
	return getCompetition(ctx, t.tx, ref, true)
}

func (t *settlementTx) ListParticipants(ctx context.Context, ref competition.Ref) ([]competition.Participant, error) {
	return listParticipants(ctx, t.tx, ref)
}

func (t *settlementTx) SaveParticipantResult(ctx context.Context, ref competition.Ref, participantID string, totalPoints int, isWinner bool) error {
	tables, err := tablesFor(ref.Type)
	if err != nil {
		return err
	}

	query, args, err := qb.Update(tables.participants).
		Set("total_points", totalPoints).
		SetExpr("is_winner", "is_winner OR ?", isWinner).
		Where(
			qb.Eq("public_id", participantID),
			qb.Eq("competition_public_id", ref.ID),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build save participant result query: %w", err)
	}

	res, err := t.tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("save participant result participant_id=%s: %w", participantID, err)
	}
	return expectOneRow(res, fmt.Sprintf("participant %s in %s", participantID, ref))
}

func (t *settlementTx) MarkSettled(ctx context.Context, ref competition.Ref, status competition.Status, winnerUserID string, settledAt time.Time) error {
	tables, err := tablesFor(ref.Type)
	if err != nil {
		return err
	}

	query, args, err := qb.Update(tables.competitions).
		Set("status", string(status)).
		Set("scoring_calculated", true).
		Set("winner_user_id", optionalString(winnerUserID)).
		Set("settled_at", settledAt.UTC()).
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("public_id", ref.ID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build mark settled query: %w", err)
	}

	res, err := t.tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("mark settled competition=%s: %w", ref, err)
	}
	return expectOneRow(res, fmt.Sprintf("competition %s", ref))
}

// CreditWallet adds amount in a single upsert so concurrent credits to the
// same wallet never lose an update.
func (t *settlementTx) CreditWallet(ctx context.Context, userID string, amount decimal.Decimal) (wallet.Balance, error) {
	if strings.TrimSpace(userID) == "" {
		return wallet.Balance{}, fmt.Errorf("user id is required")
	}
	if !amount.IsPositive() {
		return wallet.Balance{}, fmt.Errorf("credit amount must be positive, got %s", amount.String())
	}

	query, args, err := qb.InsertInto("wallets").
		Columns("user_id", "balance").
		Values(userID, amount).
		Suffix(`ON CONFLICT (user_id)
DO UPDATE SET
    balance = wallets.balance + EXCLUDED.balance,
    updated_at = NOW()
RETURNING balance`).
		ToSQL()
	if err != nil {
		return wallet.Balance{}, fmt.Errorf("build credit wallet query: %w", err)
	}

	var after decimal.Decimal
	if err := t.tx.QueryRowxContext(ctx, query, args...).Scan(&after); err != nil {
		return wallet.Balance{}, fmt.Errorf("credit wallet user_id=%s: %w", userID, err)
	}

	return wallet.Balance{
		UserID: userID,
		Before: after.Sub(amount),
		After:  after,
	}, nil
}

func (t *settlementTx) RecordTransaction(ctx context.Context, entry wallet.Transaction) error {
	publicID := strings.TrimSpace(entry.ID)
	if publicID == "" {
		publicID = uuid.NewString()
	}
	createdAt := entry.CreatedAt.UTC()
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	query, args, err := qb.InsertModel("transactions", transactionInsertModel{
		PublicID:      publicID,
		UserID:        entry.UserID,
		Amount:        entry.Amount,
		ActionType:    string(entry.ActionType),
		BalanceBefore: entry.BalanceBefore,
		BalanceAfter:  entry.BalanceAfter,
		Status:        string(entry.Status),
		Description:   entry.Description,
		ReferenceType: entry.ReferenceType,
		ReferenceID:   entry.ReferenceID,
		ParticipantID: entry.ParticipantID,
		CreatedAt:     createdAt,
	}, "")
	if err != nil {
		return fmt.Errorf("build insert transaction query: %w", err)
	}

	if _, err := t.tx.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("duplicate ledger entry reference=%s:%s participant=%s: %w", entry.ReferenceType, entry.ReferenceID, entry.ParticipantID, err)
		}
		return fmt.Errorf("insert transaction user_id=%s: %w", entry.UserID, err)
	}
	return nil
}

func expectOneRow(res sql.Result, target string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("read rows affected for %s: %w", target, err)
	}
	if affected != 1 {
		return fmt.Errorf("%s not found", target)
	}
	return nil
}
