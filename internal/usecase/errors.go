package usecase

import (
	"errors"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/fantasy-contest/internal/domain/competition"
)

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)

var (
	// ErrTransientFetch marks provider timeouts, network errors, 429 and 5xx.
	// Schedulers may retry these.
	ErrTransientFetch = crerr.New("transient fetch failure")
	// ErrDataIntegrity is only logged. Missing statistics score zero.
	ErrDataIntegrity = crerr.New("data integrity violation")
	// ErrSettlementPrecondition is reported through SettlementOutcome and
	// never returned from Settle.
	ErrSettlementPrecondition = crerr.New("settlement precondition not met")
	ErrNoParticipants         = competition.ErrNoParticipants
	ErrFinancialTransaction   = crerr.New("financial transaction failure")
)

// MarkTransient tags err so errors.Is(err, ErrTransientFetch) holds through
// later wrapping.
func MarkTransient(err error) error {
	if err == nil {
		return nil
	}
	return crerr.Mark(err, ErrTransientFetch)
}

// IsRetryable reports whether a scheduler should retry the failed job.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	return crerr.Is(err, ErrTransientFetch) || crerr.Is(err, ErrDependencyUnavailable)
}

func markFinancial(err error) error {
	if err == nil {
		return nil
	}
	return crerr.Mark(err, ErrFinancialTransaction)
}
