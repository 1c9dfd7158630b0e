package id

import (
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestUUIDGenerator_Prefix(t *testing.T) {
	got, err := NewUUIDGenerator("txn-").NewID()
	if err != nil {
		t.Fatalf("new id: %v", err)
	}
	if !strings.HasPrefix(got, "txn-") {
		t.Fatalf("expected txn- prefix, got %s", got)
	}
	if _, err := uuid.Parse(strings.TrimPrefix(got, "txn-")); err != nil {
		t.Fatalf("expected uuid body, got %s: %v", got, err)
	}
}

func TestSequenceGenerator(t *testing.T) {
	g := NewSequenceGenerator("ntf-")
	first, _ := g.NewID()
	second, _ := g.NewID()
	if first != "ntf-1" || second != "ntf-2" {
		t.Fatalf("unexpected sequence: %s %s", first, second)
	}
}
