package observability

import (
	"context"
	"testing"

	"github.com/riskibarqy/fantasy-contest/internal/config"
	"github.com/riskibarqy/fantasy-contest/internal/platform/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStart_AllDisabled(t *testing.T) {
	cfg := config.Config{
		ServiceName:    "fantasy-contest",
		ServiceVersion: "dev",
		AppEnv:         config.EnvDev,
		StorageDriver:  config.StorageDriverMemory,
	}

	stack, err := Start(cfg, logging.NewNop())
	require.NoError(t, err)
	assert.False(t, stack.uptrace)
	assert.Nil(t, stack.profiler)
	assert.Nil(t, stack.pprof)

	require.NoError(t, stack.Shutdown(context.Background()))
	require.NoError(t, stack.Shutdown(context.Background()))
}

func TestStart_UptraceNeedsDSN(t *testing.T) {
	cfg := config.Config{UptraceEnabled: true, UptraceLogsEnabled: true}

	stack, err := Start(cfg, logging.NewNop())
	require.NoError(t, err)
	assert.False(t, stack.uptrace)
	require.NoError(t, stack.Shutdown(context.Background()))
}

func TestStart_PprofListener(t *testing.T) {
	cfg := config.Config{PprofEnabled: true, PprofAddr: "127.0.0.1:0"}

	stack, err := Start(cfg, logging.NewNop())
	require.NoError(t, err)
	require.NotNil(t, stack.pprof)
	assert.Equal(t, "127.0.0.1:0", stack.pprof.Addr)
	require.NoError(t, stack.Shutdown(context.Background()))
	assert.Nil(t, stack.pprof)
}

func TestShutdown_NilStack(t *testing.T) {
	var stack *Stack
	assert.NoError(t, stack.Shutdown(context.Background()))
}
