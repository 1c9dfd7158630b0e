package resilience

import (
	"errors"
	"sync"
	"time"
)

var ErrCircuitOpen = errors.New("circuit breaker is open")

type CircuitState string

const (
	CircuitStateClosed   CircuitState = "closed"
	CircuitStateOpen     CircuitState = "open"
	CircuitStateHalfOpen CircuitState = "half_open"
)

// CircuitBreakerConfig configures a breaker. Zero numeric fields fall back to
// the defaults; Enabled=false disables tripping entirely.
type CircuitBreakerConfig struct {
	Enabled          bool
	FailureThreshold int
	OpenTimeout      time.Duration
	HalfOpenMaxReq   int
}

const (
	defaultFailureThreshold = 5
	defaultOpenTimeout      = 15 * time.Second
	defaultHalfOpenMaxReq   = 2
)

func (c CircuitBreakerConfig) withDefaults() CircuitBreakerConfig {
	if c.FailureThreshold < 1 {
		c.FailureThreshold = defaultFailureThreshold
	}
	if c.OpenTimeout <= 0 {
		c.OpenTimeout = defaultOpenTimeout
	}
	if c.HalfOpenMaxReq < 1 {
		c.HalfOpenMaxReq = defaultHalfOpenMaxReq
	}
	return c
}

// window counts outcomes since the last state change.
type window struct {
	failures  int
	successes int
	inFlight  int
}

// CircuitBreaker guards calls to one upstream dependency.
type CircuitBreaker struct {
	name string
	cfg  CircuitBreakerConfig
	now  func() time.Time

	mu      sync.Mutex
	state   CircuitState
	counts  window
	expires time.Time
}

func NewCircuitBreaker(name string, cfg CircuitBreakerConfig) *CircuitBreaker {
	return &CircuitBreaker{
		name:  name,
		cfg:   cfg.withDefaults(),
		now:   time.Now,
		state: CircuitStateClosed,
	}
}

func (b *CircuitBreaker) Name() string { return b.name }

// Execute runs fn if the breaker admits it. Only errors accepted by
// isFailure count against the dependency; a nil isFailure counts every error.
func (b *CircuitBreaker) Execute(fn func() error, isFailure func(error) bool) error {
	if err := b.Allow(); err != nil {
		return err
	}
	err := fn()
	if err != nil && (isFailure == nil || isFailure(err)) {
		b.RecordFailure()
	} else {
		b.RecordSuccess()
	}
	return err
}

// Allow reserves a slot for one call or returns ErrCircuitOpen.
func (b *CircuitBreaker) Allow() error {
	if !b.cfg.Enabled {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.current() {
	case CircuitStateOpen:
		return ErrCircuitOpen
	case CircuitStateHalfOpen:
		if b.counts.inFlight >= b.cfg.HalfOpenMaxReq {
			return ErrCircuitOpen
		}
		b.counts.inFlight++
	}
	return nil
}

func (b *CircuitBreaker) RecordSuccess() {
	if !b.cfg.Enabled {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.current() {
	case CircuitStateClosed:
		b.counts.failures = 0
	case CircuitStateHalfOpen:
		b.release()
		b.counts.successes++
		if b.counts.successes >= b.cfg.HalfOpenMaxReq && b.counts.inFlight == 0 {
			b.moveTo(CircuitStateClosed)
		}
	}
}

func (b *CircuitBreaker) RecordFailure() {
	if !b.cfg.Enabled {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.current() {
	case CircuitStateClosed:
		b.counts.failures++
		if b.counts.failures >= b.cfg.FailureThreshold {
			b.moveTo(CircuitStateOpen)
		}
	case CircuitStateHalfOpen:
		b.moveTo(CircuitStateOpen)
	case CircuitStateOpen:
		b.expires = b.now().Add(b.cfg.OpenTimeout)
	}
}

func (b *CircuitBreaker) State() CircuitState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current()
}

// current promotes an expired open breaker to half-open. Callers hold mu.
func (b *CircuitBreaker) current() CircuitState {
	if b.state == CircuitStateOpen && !b.now().Before(b.expires) {
		b.moveTo(CircuitStateHalfOpen)
	}
	return b.state
}

func (b *CircuitBreaker) release() {
	if b.counts.inFlight > 0 {
		b.counts.inFlight--
	}
}

func (b *CircuitBreaker) moveTo(state CircuitState) {
	b.state = state
	b.counts = window{}
	b.expires = time.Time{}
	if state == CircuitStateOpen {
		b.expires = b.now().Add(b.cfg.OpenTimeout)
	}
}
