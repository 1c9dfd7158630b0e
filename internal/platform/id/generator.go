package id

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
)

// Generator creates opaque IDs suitable for external references.
type Generator interface {
	NewID() (string, error)
}

// UUIDGenerator issues random v4 UUIDs, optionally prefixed ("txn-", "ntf-").
type UUIDGenerator struct {
	prefix string
}

func NewUUIDGenerator(prefix string) *UUIDGenerator {
	return &UUIDGenerator{prefix: strings.TrimSpace(prefix)}
}

func (g *UUIDGenerator) NewID() (string, error) {
	value, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("generate uuid: %w", err)
	}
	return g.prefix + value.String(), nil
}

// SequenceGenerator returns deterministic IDs for tests and local tooling.
type SequenceGenerator struct {
	prefix string
	next   atomic.Int64
}

func NewSequenceGenerator(prefix string) *SequenceGenerator {
	return &SequenceGenerator{prefix: prefix}
}

func (g *SequenceGenerator) NewID() (string, error) {
	return fmt.Sprintf("%s%d", g.prefix, g.next.Add(1)), nil
}
