package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	jsoniter "github.com/json-iterator/go"
	"github.com/riskibarqy/fantasy-contest/internal/domain/notification"
	qb "github.com/riskibarqy/fantasy-contest/internal/platform/querybuilder"
)

type NotificationRepository struct {
	db *sqlx.DB
}

func NewNotificationRepository(db *sqlx.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Insert(ctx context.Context, item notification.Notification) error {
	publicID := strings.TrimSpace(item.ID)
	if publicID == "" {
		publicID = uuid.NewString()
	}
	createdAt := item.CreatedAt.UTC()
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	data, err := marshalPayload(item.Data)
	if err != nil {
		return fmt.Errorf("marshal notification data: %w", err)
	}

	query, args, err := qb.InsertModel("notifications", notificationInsertModel{
		PublicID:  publicID,
		UserID:    item.UserID,
		Type:      item.Type,
		Title:     item.Title,
		Body:      item.Body,
		Data:      data,
		CreatedAt: createdAt,
	}, "ON CONFLICT (public_id) DO NOTHING")
	if err != nil {
		return fmt.Errorf("build insert notification query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert notification user_id=%s: %w", item.UserID, err)
	}
	return nil
}

func (r *NotificationRepository) ListByUser(ctx context.Context, userID string, limit int) ([]notification.Notification, error) {
	query, args, err := qb.Select("*").From("notifications").
		Where(qb.Eq("user_id", userID)).
		OrderBy("created_at DESC", "id DESC").
		Limit(limit).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list notifications query: %w", err)
	}

	var rows []notificationTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list notifications user_id=%s: %w", userID, err)
	}

	out := make([]notification.Notification, 0, len(rows))
	for _, row := range rows {
		data := map[string]any{}
		if len(row.Data) > 0 {
			if err := jsoniter.Unmarshal(row.Data, &data); err != nil {
				return nil, fmt.Errorf("decode notification data notification_id=%s: %w", row.PublicID, err)
			}
		}
		out = append(out, notification.Notification{
			ID:        row.PublicID,
			UserID:    row.UserID,
			Type:      row.Type,
			Title:     row.Title,
			Body:      row.Body,
			Data:      data,
			ReadAt:    row.ReadAt,
			CreatedAt: row.CreatedAt,
		})
	}
	return out, nil
}
