package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/fantasy-contest/internal/domain/wallet"
	qb "github.com/riskibarqy/fantasy-contest/internal/platform/querybuilder"
)

type WalletRepository struct {
	db *sqlx.DB
}

func NewWalletRepository(db *sqlx.DB) *WalletRepository {
	return &WalletRepository{db: db}
}

func (r *WalletRepository) GetByUserID(ctx context.Context, userID string) (wallet.Wallet, bool, error) {
	query, args, err := qb.Select("*").From("wallets").
		Where(qb.Eq("user_id", userID)).
		Limit(1).
		ToSQL()
	if err != nil {
		return wallet.Wallet{}, false, fmt.Errorf("build get wallet query: %w", err)
	}

	var row walletTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return wallet.Wallet{}, false, nil
		}
		return wallet.Wallet{}, false, fmt.Errorf("get wallet user_id=%s: %w", userID, err)
	}
	return wallet.Wallet{UserID: row.UserID, Balance: row.Balance, UpdatedAt: row.UpdatedAt}, true, nil
}

func (r *WalletRepository) ListTransactionsByUser(ctx context.Context, userID string) ([]wallet.Transaction, error) {
	query, args, err := qb.Select("*").From("transactions").
		Where(qb.Eq("user_id", userID)).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list transactions by user query: %w", err)
	}

	var rows []transactionTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list transactions user_id=%s: %w", userID, err)
	}
	return transactionsFromRows(rows), nil
}

func (r *WalletRepository) ListTransactionsByReference(ctx context.Context, referenceType, referenceID string) ([]wallet.Transaction, error) {
	query, args, err := qb.Select("*").From("transactions").
		Where(
			qb.Eq("reference_type", referenceType),
			qb.Eq("reference_id", referenceID),
		).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list transactions by reference query: %w", err)
	}

	var rows []transactionTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list transactions reference=%s:%s: %w", referenceType, referenceID, err)
	}
	return transactionsFromRows(rows), nil
}

// Seed creates or overwrites a wallet balance without a ledger row; only the
// bootstrap seeder uses it.
func (r *WalletRepository) Seed(ctx context.Context, item wallet.Wallet) error {
	query, args, err := qb.InsertInto("wallets").
		Columns("user_id", "balance").
		Values(item.UserID, item.Balance.Round(2)).
		Suffix("ON CONFLICT (user_id) DO NOTHING").
		ToSQL()
	if err != nil {
		return fmt.Errorf("build seed wallet query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("seed wallet user_id=%s: %w", item.UserID, err)
	}
	return nil
}

func transactionsFromRows(rows []transactionTableModel) []wallet.Transaction {
	out := make([]wallet.Transaction, 0, len(rows))
	for _, row := range rows {
		out = append(out, wallet.Transaction{
			ID:            row.PublicID,
			UserID:        row.UserID,
			Amount:        row.Amount,
			ActionType:    wallet.ActionType(row.ActionType),
			BalanceBefore: row.BalanceBefore,
			BalanceAfter:  row.BalanceAfter,
			Status:        wallet.TransactionStatus(row.Status),
			Description:   row.Description,
			ReferenceType: row.ReferenceType,
			ReferenceID:   row.ReferenceID,
			ParticipantID: row.ParticipantID,
			CreatedAt:     row.CreatedAt,
		})
	}
	return out
}
