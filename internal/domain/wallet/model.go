package wallet

import (
	"time"

	"github.com/shopspring/decimal"
)

type ActionType string

const (
	ActionCredit ActionType = "credit"
	ActionDebit  ActionType = "debit"
)

type TransactionStatus string

const (
	TransactionPending   TransactionStatus = "pending"
	TransactionCompleted TransactionStatus = "completed"
	TransactionFailed    TransactionStatus = "failed"
)

// Reference types used on ledger rows written by settlement.
const (
	ReferenceTournamentPrize = "tournament_prize"
	ReferencePeerPrize       = "peer_prize"
)

type Wallet struct {
	UserID    string
	Balance   decimal.Decimal
	UpdatedAt time.Time
}

// Balance is the result of one atomic wallet mutation.
type Balance struct {
	UserID string
	Before decimal.Decimal
	After  decimal.Decimal
}

// Transaction is an append-only ledger row. Every wallet mutation writes
// exactly one.
type Transaction struct {
	ID            string
	UserID        string
	Amount        decimal.Decimal
	ActionType    ActionType
	BalanceBefore decimal.Decimal
	BalanceAfter  decimal.Decimal
	Status        TransactionStatus
	Description   string
	ReferenceType string
	ReferenceID   string
	// ParticipantID is the competition entry a prize row pays out.
	ParticipantID string
	CreatedAt     time.Time
}
