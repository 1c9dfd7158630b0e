package postgres

import (
	"database/sql"
	"errors"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/lib/pq"
)

const (
	codeUniqueViolation     = "23505"
	codeInvalidSQLStatement = "26000"
	codeProtocolViolation   = "08P01"
)

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

func pgCode(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}

func isUniqueViolation(err error) bool {
	return pgCode(err) == codeUniqueViolation
}

// shouldRetryLiteral matches the failures pgbouncer transaction pooling causes
// for unnamed prepared statements: the statement is gone (26000) or another
// client's statement with a different parameter count is bound (08P01).
// Callers retry such reads with literal, parameter-free SQL.
func shouldRetryLiteral(err error) bool {
	if err == nil {
		return false
	}
	switch pgCode(err) {
	case codeInvalidSQLStatement, codeProtocolViolation:
		return true
	}

	text := strings.ToLower(err.Error())
	if !strings.Contains(text, "prepared statement") {
		return false
	}
	return strings.Contains(text, "bind message supplies") ||
		strings.Contains(text, "does not exist") ||
		strings.Contains(text, codeInvalidSQLStatement)
}

func optionalString(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// stringArgs trims, drops blanks and dedupes ids in first-seen order.
func stringArgs(values []string) []any {
	out := make([]any, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	return out
}

// marshalPayload encodes a JSONB column value; empty maps become "{}".
func marshalPayload(payload map[string]any) (string, error) {
	if len(payload) == 0 {
		return "{}", nil
	}
	raw, err := jsoniter.Marshal(payload)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
