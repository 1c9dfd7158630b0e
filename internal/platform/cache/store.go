package cache

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/riskibarqy/fantasy-contest/internal/platform/resilience"
)

type item struct {
	value    any
	deadline time.Time
}

func (i item) live(now time.Time) bool {
	return i.deadline.IsZero() || now.Before(i.deadline)
}

// Store is an in-process TTL cache. Concurrent misses on one key share a
// single loader call. A zero ttl keeps entries until they are deleted.
type Store struct {
	ttl    time.Duration
	now    func() time.Time
	flight resilience.SingleFlight[any]

	mu    sync.RWMutex
	items map[string]item
}

func NewStore(ttl time.Duration) *Store {
	return &Store{
		ttl:   ttl,
		now:   time.Now,
		items: make(map[string]item),
	}
}

func (s *Store) Get(_ context.Context, key string) (any, bool) {
	if key == "" {
		return nil, false
	}
	s.mu.RLock()
	it, ok := s.items[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if !it.live(s.now()) {
		s.mu.Lock()
		if cur, still := s.items[key]; still && cur.deadline.Equal(it.deadline) {
			delete(s.items, key)
		}
		s.mu.Unlock()
		return nil, false
	}
	return it.value, true
}

func (s *Store) Set(_ context.Context, key string, value any) {
	if key == "" {
		return
	}
	it := item{value: value}
	if s.ttl > 0 {
		it.deadline = s.now().Add(s.ttl)
	}
	s.mu.Lock()
	s.items[key] = it
	s.mu.Unlock()
}

func (s *Store) Delete(_ context.Context, key string) {
	s.mu.Lock()
	delete(s.items, key)
	s.mu.Unlock()
}

// DeletePrefix drops every key starting with prefix. An empty prefix is a
// no-op rather than a flush.
func (s *Store) DeletePrefix(_ context.Context, prefix string) {
	if prefix == "" {
		return
	}
	s.mu.Lock()
	for key := range s.items {
		if strings.HasPrefix(key, prefix) {
			delete(s.items, key)
		}
	}
	s.mu.Unlock()
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// GetOrLoad returns the cached value for key or runs loader once across
// concurrent callers. Loader errors are not cached.
func (s *Store) GetOrLoad(ctx context.Context, key string, loader func(context.Context) (any, error)) (any, error) {
	if loader == nil {
		return nil, fmt.Errorf("cache: loader is required")
	}
	if key == "" {
		return loader(ctx)
	}
	if v, ok := s.Get(ctx, key); ok {
		return v, nil
	}

	v, err, _ := s.flight.DoContext(ctx, key, func() (any, error) {
		if v, ok := s.Get(ctx, key); ok {
			return v, nil
		}
		loaded, err := loader(ctx)
		if err != nil {
			return nil, err
		}
		s.Set(ctx, key, loaded)
		return loaded, nil
	})
	return v, err
}

// Load is GetOrLoad with a typed result. A cached value of another type is
// dropped and reloaded. A nil store calls loader directly.
func Load[T any](ctx context.Context, s *Store, key string, loader func(context.Context) (T, error)) (T, error) {
	var zero T
	if s == nil {
		return loader(ctx)
	}
	if v, ok := s.Get(ctx, key); ok {
		if typed, ok := v.(T); ok {
			return typed, nil
		}
		s.Delete(ctx, key)
	}

	v, err := s.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		return loader(ctx)
	})
	if err != nil {
		return zero, err
	}
	typed, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("cache: key %q holds %T", key, v)
	}
	return typed, nil
}
