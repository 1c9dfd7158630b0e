package usecase_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/riskibarqy/fantasy-contest/internal/domain/competition"
	"github.com/riskibarqy/fantasy-contest/internal/domain/notification"
	"github.com/riskibarqy/fantasy-contest/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/fantasy-contest/internal/platform/id"
	"github.com/riskibarqy/fantasy-contest/internal/usecase"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPublisher struct {
	name  string
	err   error
	calls atomic.Int32
}

func (p *stubPublisher) Name() string { return p.name }

func (p *stubPublisher) PublishCompetitionCompleted(_ context.Context, _ notification.CompetitionCompleted) error {
	p.calls.Add(1)
	return p.err
}

func TestNotificationService_FansOutAndKeepsInboxOnPublisherFailure(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := memory.NewStore(memory.Seed{})
	nats := &stubPublisher{name: "nats"}
	webhook := &stubPublisher{name: "webhook", err: errors.New("status 502")}
	service := usecase.NewNotificationService(store.Notifications(), []usecase.EventPublisher{nats, webhook}, id.NewSequenceGenerator("ntf-"), nil)

	err := service.NotifyCompetitionCompleted(ctx, notification.CompetitionCompleted{
		UserID:          "user-andi",
		CompetitionType: competition.TypeTournament,
		CompetitionID:   "trn-1",
		CompetitionName: "Daily Derby",
		IsWinner:        true,
		Points:          50,
		PrizeAmount:     decimal.NewFromInt(1350),
		OccurredAt:      time.Date(2026, 3, 7, 15, 0, 0, 0, time.UTC),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "webhook: status 502")
	assert.Equal(t, int32(1), nats.calls.Load())
	assert.Equal(t, int32(1), webhook.calls.Load())

	inbox, err := service.ListInbox(ctx, "user-andi", 0)
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	assert.Equal(t, notification.TypeCompetitionCompleted, inbox[0].Type)
	assert.Equal(t, "You won Daily Derby", inbox[0].Title)
	assert.Equal(t, "1350.00", inbox[0].Data["prize_amount"])
}

func TestNotificationService_ListInboxValidatesUser(t *testing.T) {
	t.Parallel()

	service := usecase.NewNotificationService(memory.NewStore(memory.Seed{}).Notifications(), nil, nil, nil)
	_, err := service.ListInbox(context.Background(), "", 10)
	assert.True(t, errors.Is(err, usecase.ErrInvalidInput))
}
