package notify

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/nats-io/nats.go"
	"github.com/riskibarqy/fantasy-contest/internal/domain/competition"
	"github.com/riskibarqy/fantasy-contest/internal/domain/notification"
	"github.com/riskibarqy/fantasy-contest/internal/platform/logging"
	"github.com/riskibarqy/fantasy-contest/internal/usecase"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	msgs       []*nats.Msg
	publishErr error
}

func (c *fakeConn) PublishMsg(msg *nats.Msg) error {
	if c.publishErr != nil {
		return c.publishErr
	}
	c.msgs = append(c.msgs, msg)
	return nil
}

func (c *fakeConn) FlushWithContext(context.Context) error {
	return nil
}

func winnerEvent() notification.CompetitionCompleted {
	return notification.CompetitionCompleted{
		UserID:          "user-andi",
		CompetitionType: competition.TypeTournament,
		CompetitionID:   "tour-derby",
		CompetitionName: "Daily Derby",
		IsWinner:        true,
		Points:          31,
		PrizeAmount:     decimal.RequireFromString("135.5"),
		OccurredAt:      time.Date(2026, 3, 8, 15, 0, 0, 0, time.UTC),
	}
}

func TestNATSPublisher_PublishesWithMessageID(t *testing.T) {
	conn := &fakeConn{}
	pub := newNATSPublisher(conn, "contest.", logging.NewNop())
	require.Equal(t, "contest.competition.completed", pub.Subject())

	require.NoError(t, pub.PublishCompetitionCompleted(context.Background(), winnerEvent()))
	require.Len(t, conn.msgs, 1)

	msg := conn.msgs[0]
	assert.Equal(t, "tournament:tour-derby:user-andi", msg.Header.Get(nats.MsgIdHdr))

	var doc eventDocument
	require.NoError(t, sonic.Unmarshal(msg.Data, &doc))
	assert.Equal(t, "135.50", doc.PrizeAmount)
	assert.Equal(t, notification.TypeCompetitionCompleted, doc.Type)
	assert.True(t, doc.IsWinner)
}

func TestNATSPublisher_FailureIsRetryable(t *testing.T) {
	pub := newNATSPublisher(&fakeConn{publishErr: nats.ErrConnectionClosed}, "", nil)
	err := pub.PublishCompetitionCompleted(context.Background(), winnerEvent())
	require.Error(t, err)
	assert.True(t, usecase.IsRetryable(err))
	assert.True(t, errors.Is(err, nats.ErrConnectionClosed))
}

func TestWebhookPublisher_PostsEvent(t *testing.T) {
	var (
		gotAuth string
		gotKey  string
		gotBody []byte
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotKey = r.Header.Get("Idempotency-Key")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	pub, err := NewWebhookPublisher(WebhookConfig{URL: srv.URL + "/push", Secret: "hook-secret"}, logging.NewNop())
	require.NoError(t, err)
	require.NoError(t, pub.PublishCompetitionCompleted(context.Background(), winnerEvent()))

	assert.Equal(t, "Bearer hook-secret", gotAuth)
	assert.Equal(t, "tournament:tour-derby:user-andi", gotKey)
	var doc eventDocument
	require.NoError(t, sonic.Unmarshal(gotBody, &doc))
	assert.Equal(t, "user-andi", doc.UserID)
	assert.Equal(t, "You won Daily Derby", doc.Title)
}

func TestWebhookPublisher_StatusClassification(t *testing.T) {
	cases := []struct {
		name      string
		status    int
		retryable bool
	}{
		{name: "server error", status: http.StatusBadGateway, retryable: true},
		{name: "throttled", status: http.StatusTooManyRequests, retryable: true},
		{name: "rejected", status: http.StatusUnprocessableEntity, retryable: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
			}))
			defer srv.Close()

			pub, err := NewWebhookPublisher(WebhookConfig{URL: srv.URL}, logging.NewNop())
			require.NoError(t, err)
			err = pub.PublishCompetitionCompleted(context.Background(), winnerEvent())
			require.Error(t, err)
			assert.Equal(t, tc.retryable, usecase.IsRetryable(err))
		})
	}
}

func TestNewWebhookPublisher_RejectsBadURL(t *testing.T) {
	_, err := NewWebhookPublisher(WebhookConfig{URL: "ftp://push.example.com"}, nil)
	require.Error(t, err)
}
