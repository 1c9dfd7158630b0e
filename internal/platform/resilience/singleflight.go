package resilience

import (
	"context"

	"golang.org/x/sync/singleflight"
)

// SingleFlight is a typed singleflight.Group: concurrent calls for the same
// key share one execution.
type SingleFlight[T any] struct {
	group singleflight.Group
}

// Do reports shared=true when the result came from another caller's call.
func (g *SingleFlight[T]) Do(key string, fn func() (T, error)) (T, error, bool) {
	v, err, shared := g.group.Do(key, func() (any, error) {
		return fn()
	})
	val, _ := v.(T)
	return val, err, shared
}

// DoContext is Do, except the caller stops waiting when ctx is done. The
// shared execution keeps running for the other waiters.
func (g *SingleFlight[T]) DoContext(ctx context.Context, key string, fn func() (T, error)) (T, error, bool) {
	ch := g.group.DoChan(key, func() (any, error) {
		return fn()
	})
	select {
	case res := <-ch:
		val, _ := res.Val.(T)
		return val, res.Err, res.Shared
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err(), false
	}
}

// Forget drops key so the next call runs fn again.
func (g *SingleFlight[T]) Forget(key string) {
	g.group.Forget(key)
}
