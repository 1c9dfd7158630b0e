package player

import "context"

// Repository describes player persistence needs from use cases.
type Repository interface {
	GetByIDs(ctx context.Context, playerIDs []string) ([]Player, error)
	ListByExternalIDs(ctx context.Context, externalIDs []int64) ([]Player, error)
}
