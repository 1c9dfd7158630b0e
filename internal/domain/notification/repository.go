package notification

import "context"

type Repository interface {
	Insert(ctx context.Context, item Notification) error
	ListByUser(ctx context.Context, userID string, limit int) ([]Notification, error)
}
