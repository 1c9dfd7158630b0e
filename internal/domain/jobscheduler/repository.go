package jobscheduler

import "context"

// Repository keeps the latest status of each dispatch, keyed by dispatch id.
type Repository interface {
	UpsertEvent(ctx context.Context, event DispatchEvent) error
	// GetByDispatchID lets a job handler recognise a redelivered job.
	GetByDispatchID(ctx context.Context, dispatchID string) (DispatchEvent, bool, error)
}
