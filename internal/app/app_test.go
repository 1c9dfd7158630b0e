package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/fantasy-contest/internal/config"
	"github.com/riskibarqy/fantasy-contest/internal/domain/competition"
	"github.com/riskibarqy/fantasy-contest/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/fantasy-contest/internal/platform/logging"
	"github.com/riskibarqy/fantasy-contest/internal/usecase"
)

func memoryConfig(t *testing.T) config.Config {
	t.Helper()
	t.Setenv("APP_ENV", config.EnvDev)
	t.Setenv("STORAGE_DRIVER", config.StorageDriverMemory)
	t.Setenv("CACHE_ENABLED", "true")

	cfg, err := config.Load()
	require.NoError(t, err)
	return cfg
}

func TestBuild_MemoryStorage(t *testing.T) {
	cfg := memoryConfig(t)

	c, err := Build(context.Background(), cfg, logging.NewNop())
	require.NoError(t, err)
	t.Cleanup(c.Close)

	assert.Nil(t, c.Ingestion, "ingestion needs a provider")
	assert.NotNil(t, c.Sweep)
	assert.NotNil(t, c.SettleJobs)

	complete, err := c.Completion.IsComplete(context.Background(), competition.Ref{
		Type: competition.TypeTournament,
		ID:   memory.TournamentIDDailyDerby,
	})
	require.NoError(t, err)
	assert.False(t, complete)

	ref := competition.Ref{Type: competition.TypeTournament, ID: memory.TournamentIDDailyDerby}
	outcome, err := c.Settlement.Settle(context.Background(), ref)
	require.NoError(t, err)
	require.Equal(t, usecase.SettlementSettled, outcome.Status)
	require.NotEmpty(t, outcome.Winners)

	ledger, err := c.Wallets.ListTransactionsByUser(context.Background(), outcome.Winners[0].UserID)
	require.NoError(t, err)
	assert.NotEmpty(t, ledger)

	again, err := c.Settlement.Settle(context.Background(), ref)
	require.NoError(t, err)
	assert.Equal(t, usecase.SettlementSkipped, again.Status)
}

func TestNewHTTPServer(t *testing.T) {
	cfg := memoryConfig(t)

	c, err := Build(context.Background(), cfg, logging.NewNop())
	require.NoError(t, err)
	t.Cleanup(c.Close)

	srv, err := NewHTTPServer(c)
	require.NoError(t, err)
	assert.Equal(t, cfg.HTTPAddr, srv.Addr)

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	c.Config.HTTPAddr = ""
	_, err = NewHTTPServer(c)
	assert.Error(t, err)
}

func TestBuild_RejectsBadWebhook(t *testing.T) {
	cfg := memoryConfig(t)
	cfg.NotifierDrivers = []string{config.NotifierInbox, config.NotifierWebhook}
	cfg.PushWebhookURL = "ftp://push.example.com"

	_, err := Build(context.Background(), cfg, logging.NewNop())
	assert.Error(t, err)
}

func TestContainerClose_ReverseOrder(t *testing.T) {
	var order []int
	c := &Container{}
	c.addCloser(func() { order = append(order, 1) })
	c.addCloser(func() { order = append(order, 2) })

	c.Close()
	c.Close()

	assert.Equal(t, []int{2, 1}, order)
}
