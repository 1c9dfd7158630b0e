package cache

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/fantasy-contest/internal/domain/fixture"
	"github.com/riskibarqy/fantasy-contest/internal/domain/lineup"
	"github.com/riskibarqy/fantasy-contest/internal/domain/player"
	basecache "github.com/riskibarqy/fantasy-contest/internal/platform/cache"
)

// FixtureRepository caches single fixture reads. Status writes and the
// ingestion listing always go to the underlying repository.
type FixtureRepository struct {
	next  fixture.Repository
	cache *basecache.Store
}

func NewFixtureRepository(next fixture.Repository, cache *basecache.Store) *FixtureRepository {
	return &FixtureRepository{next: next, cache: cache}
}

func (r *FixtureRepository) GetByID(ctx context.Context, fixtureID string) (fixture.Fixture, bool, error) {
	key := "fixture:id:" + fixtureID
	cached, err := basecache.Load(ctx, r.cache, key, func(ctx context.Context) (cachedFixtureByID, error) {
		item, exists, err := r.next.GetByID(ctx, fixtureID)
		return cachedFixtureByID{value: item, exists: exists}, err
	})
	if err != nil {
		return fixture.Fixture{}, false, err
	}
	return cached.value, cached.exists, nil
}

func (r *FixtureRepository) ListByIDs(ctx context.Context, fixtureIDs []string) ([]fixture.Fixture, error) {
	return r.next.ListByIDs(ctx, fixtureIDs)
}

func (r *FixtureRepository) ListActiveForIngestion(ctx context.Context, statuses []string, from, to time.Time) ([]fixture.Fixture, error) {
	return r.next.ListActiveForIngestion(ctx, statuses, from, to)
}

func (r *FixtureRepository) UpdateStatuses(ctx context.Context, updates []fixture.StatusUpdate) error {
	if err := r.next.UpdateStatuses(ctx, updates); err != nil {
		return err
	}
	r.cache.DeletePrefix(ctx, "fixture:id:")
	return nil
}

type cachedFixtureByID struct {
	value  fixture.Fixture
	exists bool
}

type PlayerRepository struct {
	next  player.Repository
	cache *basecache.Store
}

func NewPlayerRepository(next player.Repository, cache *basecache.Store) *PlayerRepository {
	return &PlayerRepository{next: next, cache: cache}
}

func (r *PlayerRepository) GetByIDs(ctx context.Context, playerIDs []string) ([]player.Player, error) {
	ids := normalizeIDs(playerIDs)
	key := "player:ids:" + strings.Join(ids, ",")
	items, err := basecache.Load(ctx, r.cache, key, func(ctx context.Context) ([]player.Player, error) {
		return r.next.GetByIDs(ctx, ids)
	})
	if err != nil {
		return nil, err
	}
	return append([]player.Player(nil), items...), nil
}

func (r *PlayerRepository) ListByExternalIDs(ctx context.Context, externalIDs []int64) ([]player.Player, error) {
	ids := append([]int64(nil), externalIDs...)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, strconv.FormatInt(id, 10))
	}

	key := "player:external:" + strings.Join(parts, ",")
	items, err := basecache.Load(ctx, r.cache, key, func(ctx context.Context) ([]player.Player, error) {
		return r.next.ListByExternalIDs(ctx, ids)
	})
	if err != nil {
		return nil, err
	}
	return append([]player.Player(nil), items...), nil
}

type LineupRepository struct {
	next  lineup.Repository
	cache *basecache.Store
}

func NewLineupRepository(next lineup.Repository, cache *basecache.Store) *LineupRepository {
	return &LineupRepository{next: next, cache: cache}
}

func (r *LineupRepository) ListByFixture(ctx context.Context, fixtureID string) ([]lineup.TeamLineup, error) {
	items, err := basecache.Load(ctx, r.cache, lineupKey(fixtureID), func(ctx context.Context) ([]lineup.TeamLineup, error) {
		return r.next.ListByFixture(ctx, fixtureID)
	})
	if err != nil {
		return nil, err
	}
	return append([]lineup.TeamLineup(nil), items...), nil
}

func (r *LineupRepository) ReplaceForFixture(ctx context.Context, fixtureID string, items []lineup.TeamLineup) error {
	if err := r.next.ReplaceForFixture(ctx, fixtureID, items); err != nil {
		return err
	}
	r.cache.Delete(ctx, lineupKey(fixtureID))
	return nil
}

func lineupKey(fixtureID string) string {
	return "lineup:fixture:" + fixtureID
}

func normalizeIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
