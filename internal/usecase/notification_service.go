package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/riskibarqy/fantasy-contest/internal/domain/notification"
	"github.com/riskibarqy/fantasy-contest/internal/platform/id"
	"github.com/riskibarqy/fantasy-contest/internal/platform/logging"
	"github.com/sourcegraph/conc"
)

// EventPublisher pushes completion events to an out-of-process channel.
type EventPublisher interface {
	Name() string
	PublishCompetitionCompleted(ctx context.Context, event notification.CompetitionCompleted) error
}

// NotificationService writes the in-app inbox entry and publishes to every
// configured channel concurrently. Each channel fails on its own.
type NotificationService struct {
	inbox      notification.Repository
	publishers []EventPublisher
	idGen      id.Generator
	logger     *logging.Logger
	now        func() time.Time
}

func NewNotificationService(inbox notification.Repository, publishers []EventPublisher, idGen id.Generator, logger *logging.Logger) *NotificationService {
	if logger == nil {
		logger = logging.Default()
	}
	if idGen == nil {
		idGen = id.NewUUIDGenerator("ntf-")
	}
	return &NotificationService{
		inbox:      inbox,
		publishers: publishers,
		idGen:      idGen,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *NotificationService) NotifyCompetitionCompleted(ctx context.Context, event notification.CompetitionCompleted) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.NotificationService.NotifyCompetitionCompleted")
	defer span.End()

	var (
		mu   sync.Mutex
		errs []error
	)
	record := func(channel string, err error) {
		if err == nil {
			return
		}
		mu.Lock()
		errs = append(errs, fmt.Errorf("%s: %w", channel, err))
		mu.Unlock()
	}

	var wg conc.WaitGroup
	if s.inbox != nil {
		wg.Go(func() {
			record("inbox", s.writeInbox(ctx, event))
		})
	}
	for _, publisher := range s.publishers {
		wg.Go(func() {
			record(publisher.Name(), publisher.PublishCompetitionCompleted(ctx, event))
		})
	}
	wg.Wait()

	return errors.Join(errs...)
}

func (s *NotificationService) writeInbox(ctx context.Context, event notification.CompetitionCompleted) error {
	notificationID, err := s.idGen.NewID()
	if err != nil {
		return fmt.Errorf("generate notification id: %w", err)
	}

	createdAt := event.OccurredAt
	if createdAt.IsZero() {
		createdAt = s.now().UTC()
	}
	return s.inbox.Insert(ctx, notification.Notification{
		ID:     notificationID,
		UserID: event.UserID,
		Type:   notification.TypeCompetitionCompleted,
		Title:  event.Title(),
		Body:   event.Body(),
		Data: map[string]any{
			"competition_type": string(event.CompetitionType),
			"competition_id":   event.CompetitionID,
			"is_winner":        event.IsWinner,
			"points":           event.Points,
			"prize_amount":     event.PrizeAmount.StringFixed(2),
		},
		CreatedAt: createdAt,
	})
}

func (s *NotificationService) ListInbox(ctx context.Context, userID string, limit int) ([]notification.Notification, error) {
	if s.inbox == nil {
		return nil, fmt.Errorf("%w: inbox is disabled", ErrDependencyUnavailable)
	}
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	items, err := s.inbox.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list notifications user=%s: %w", userID, err)
	}
	return items, nil
}
