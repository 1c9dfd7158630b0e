package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/fantasy-contest/internal/domain/competition"
)

func TestRefFlagsParse(t *testing.T) {
	ref, err := (&refFlags{competitionType: " Peer ", competitionID: " peer-1 "}).parse()
	require.NoError(t, err)
	assert.Equal(t, competition.Ref{Type: competition.TypePeer, ID: "peer-1"}, ref)

	_, err = (&refFlags{competitionType: "league", competitionID: "x"}).parse()
	assert.Error(t, err)

	_, err = (&refFlags{competitionType: "tournament", competitionID: "  "}).parse()
	assert.Error(t, err)
}

func TestSplitIDs(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitIDs(" a, ,b,"))
	assert.Empty(t, splitIDs(""))
}

func TestParseSteps(t *testing.T) {
	steps, err := parseSteps(nil)
	require.NoError(t, err)
	assert.Equal(t, 1, steps)

	steps, err = parseSteps([]string{"3"})
	require.NoError(t, err)
	assert.Equal(t, 3, steps)

	_, err = parseSteps([]string{"0"})
	assert.Error(t, err)
	_, err = parseSteps([]string{"two"})
	assert.Error(t, err)
}

func TestParseVersionAndTarget(t *testing.T) {
	version, err := parseVersion("1772841600")
	require.NoError(t, err)
	assert.Equal(t, 1772841600, version)

	_, err = parseVersion("-1")
	assert.Error(t, err)

	target, err := parseTarget("42")
	require.NoError(t, err)
	assert.Equal(t, uint(42), target)

	_, err = parseTarget("-3")
	assert.Error(t, err)
}

func TestResolveMigrationsDir(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("MIGRATIONS_DIR", "")

	got, err := resolveMigrationsDir(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, got)

	t.Setenv("MIGRATIONS_DIR", dir)
	got, err = resolveMigrationsDir(filepath.Join(dir, "missing"))
	require.NoError(t, err)
	assert.Equal(t, dir, got)

	t.Chdir(t.TempDir())
	t.Setenv("MIGRATIONS_DIR", "")
	_, err = resolveMigrationsDir("")
	if _, statErr := os.Stat("/app/db/migrations"); statErr != nil {
		assert.Error(t, err)
	}
}
