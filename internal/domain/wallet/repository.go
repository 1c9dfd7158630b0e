package wallet

import "context"

// Repository exposes read access; mutations happen inside settlement.
type Repository interface {
	GetByUserID(ctx context.Context, userID string) (Wallet, bool, error)
	ListTransactionsByUser(ctx context.Context, userID string) ([]Transaction, error)
	ListTransactionsByReference(ctx context.Context, referenceType, referenceID string) ([]Transaction, error)
}
