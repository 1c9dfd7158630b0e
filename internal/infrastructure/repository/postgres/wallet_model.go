package postgres

import (
	"time"

	"github.com/shopspring/decimal"
)

type walletTableModel struct {
	UserID    string          `db:"user_id"`
	Balance   decimal.Decimal `db:"balance"`
	CreatedAt time.Time       `db:"created_at"`
	UpdatedAt time.Time       `db:"updated_at"`
}

type transactionTableModel struct {
	ID            int64           `db:"id"`
	PublicID      string          `db:"public_id"`
	UserID        string          `db:"user_id"`
	Amount        decimal.Decimal `db:"amount"`
	ActionType    string          `db:"action_type"`
	BalanceBefore decimal.Decimal `db:"balance_before"`
	BalanceAfter  decimal.Decimal `db:"balance_after"`
	Status        string          `db:"status"`
	Description   string          `db:"description"`
	ReferenceType string          `db:"reference_type"`
	ReferenceID   string          `db:"reference_id"`
	ParticipantID string          `db:"participant_public_id"`
	CreatedAt     time.Time       `db:"created_at"`
}

type transactionInsertModel struct {
	PublicID      string          `db:"public_id"`
	UserID        string          `db:"user_id"`
	Amount        decimal.Decimal `db:"amount"`
	ActionType    string          `db:"action_type"`
	BalanceBefore decimal.Decimal `db:"balance_before"`
	BalanceAfter  decimal.Decimal `db:"balance_after"`
	Status        string          `db:"status"`
	Description   string          `db:"description"`
	ReferenceType string          `db:"reference_type"`
	ReferenceID   string          `db:"reference_id"`
	ParticipantID string          `db:"participant_public_id"`
	CreatedAt     time.Time       `db:"created_at"`
}
