package usecase

import (
	"context"
	"time"

	"github.com/riskibarqy/fantasy-contest/internal/domain/competition"
	"github.com/riskibarqy/fantasy-contest/internal/domain/wallet"
	"github.com/shopspring/decimal"
)

// SettlementTx is the view of storage inside one settlement transaction.
type SettlementTx interface {
	ScoreSource

	// LockCompetition reads the row with an exclusive lock held until the
	// transaction ends.
	LockCompetition(ctx context.Context, ref competition.Ref) (competition.Competition, bool, error)
	ListParticipants(ctx context.Context, ref competition.Ref) ([]competition.Participant, error)
	SaveParticipantResult(ctx context.Context, ref competition.Ref, participantID string, totalPoints int, isWinner bool) error
	MarkSettled(ctx context.Context, ref competition.Ref, status competition.Status, winnerUserID string, settledAt time.Time) error
	// CreditWallet adds amount atomically at the storage layer.
	CreditWallet(ctx context.Context, userID string, amount decimal.Decimal) (wallet.Balance, error)
	RecordTransaction(ctx context.Context, entry wallet.Transaction) error
}

// SettlementStore runs fn in one transaction; any error rolls everything back.
type SettlementStore interface {
	WithinSettlement(ctx context.Context, fn func(ctx context.Context, tx SettlementTx) error) error
}
