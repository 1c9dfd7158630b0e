package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestShouldRetryLiteral(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"bind mismatch text", errors.New(`pq: bind message supplies 2 parameters, but prepared statement "" requires 1`), true},
		{"unnamed statement missing", errors.New("pq: unnamed prepared statement does not exist"), true},
		{"26000 in text", errors.New("pq: prepared statement missing (26000)"), true},
		{"pq 26000", &pq.Error{Code: "26000"}, true},
		{"pq 08P01 wrapped", fmt.Errorf("get fixture: %w", &pq.Error{Code: "08P01"}), true},
		{"missing relation", errors.New("pq: relation lineups does not exist"), false},
		{"unique violation", &pq.Error{Code: "23505"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, shouldRetryLiteral(tt.err))
		})
	}
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(fmt.Errorf("insert ledger: %w", &pq.Error{Code: "23505"})))
	assert.False(t, isUniqueViolation(&pq.Error{Code: "23503"}))
	assert.False(t, isUniqueViolation(errors.New("duplicate key value")))
}

func TestOptionalString(t *testing.T) {
	assert.Nil(t, optionalString("  "))
	if got := optionalString(" boom "); assert.NotNil(t, got) {
		assert.Equal(t, "boom", *got)
	}
}

func TestStringArgs(t *testing.T) {
	assert.Equal(t, []any{"pm-1", "pm-2"}, stringArgs([]string{"pm-1", " pm-2 ", "", "pm-1"}))
}
