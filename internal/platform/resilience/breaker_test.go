package resilience

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBreaker(cfg CircuitBreakerConfig) (*CircuitBreaker, *time.Time) {
	now := time.Date(2026, 5, 2, 18, 0, 0, 0, time.UTC)
	b := NewCircuitBreaker("apifootball", cfg)
	b.now = func() time.Time { return now }
	return b, &now
}

func TestCircuitBreaker_OpensAndRecovers(t *testing.T) {
	b, now := newTestBreaker(CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: 2,
		OpenTimeout:      5 * time.Second,
		HalfOpenMaxReq:   1,
	})

	require.NoError(t, b.Allow())
	b.RecordFailure()
	assert.Equal(t, CircuitStateClosed, b.State())

	b.RecordFailure()
	assert.Equal(t, CircuitStateOpen, b.State())
	assert.ErrorIs(t, b.Allow(), ErrCircuitOpen)

	*now = now.Add(6 * time.Second)
	require.NoError(t, b.Allow(), "half-open probe")
	assert.Equal(t, CircuitStateHalfOpen, b.State())
	assert.ErrorIs(t, b.Allow(), ErrCircuitOpen, "probe slots exhausted")

	b.RecordSuccess()
	assert.Equal(t, CircuitStateClosed, b.State())
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	b, now := newTestBreaker(CircuitBreakerConfig{Enabled: true, FailureThreshold: 1, OpenTimeout: time.Second})

	b.RecordFailure()
	*now = now.Add(2 * time.Second)
	require.NoError(t, b.Allow())

	b.RecordFailure()
	assert.Equal(t, CircuitStateOpen, b.State())
	assert.ErrorIs(t, b.Allow(), ErrCircuitOpen)
}

func TestCircuitBreaker_ExecuteCountsOnlyDependencyErrors(t *testing.T) {
	transient := errors.New("provider 503")
	notFound := errors.New("provider 404")
	isFailure := func(err error) bool { return errors.Is(err, transient) }

	b, _ := newTestBreaker(CircuitBreakerConfig{Enabled: true, FailureThreshold: 1})

	assert.ErrorIs(t, b.Execute(func() error { return notFound }, isFailure), notFound)
	assert.Equal(t, CircuitStateClosed, b.State())

	assert.ErrorIs(t, b.Execute(func() error { return transient }, isFailure), transient)
	assert.ErrorIs(t, b.Execute(func() error { return nil }, isFailure), ErrCircuitOpen)
}

func TestCircuitBreaker_Disabled(t *testing.T) {
	b, _ := newTestBreaker(CircuitBreakerConfig{FailureThreshold: 1})
	for range 3 {
		b.RecordFailure()
	}
	assert.NoError(t, b.Allow())
	assert.Equal(t, CircuitStateClosed, b.State())
}

func TestCircuitBreakerConfig_Defaults(t *testing.T) {
	cfg := CircuitBreakerConfig{Enabled: true}.withDefaults()
	assert.Equal(t, defaultFailureThreshold, cfg.FailureThreshold)
	assert.Equal(t, defaultOpenTimeout, cfg.OpenTimeout)
	assert.Equal(t, defaultHalfOpenMaxReq, cfg.HalfOpenMaxReq)
}
