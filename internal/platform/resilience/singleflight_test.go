package resilience

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestSingleFlight_DoSharesOneCall(t *testing.T) {
	var g SingleFlight[[]byte]
	var calls int32

	const workers = 20
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(workers)

	for range workers {
		go func() {
			defer wg.Done()
			<-start
			raw, err, _ := g.Do("/fixtures/players?fixture=1035037", func() ([]byte, error) {
				atomic.AddInt32(&calls, 1)
				time.Sleep(20 * time.Millisecond)
				return []byte(`{"response":[]}`), nil
			})
			if err != nil {
				t.Errorf("shared call failed: %v", err)
			}
			if string(raw) != `{"response":[]}` {
				t.Errorf("unexpected shared payload: %s", raw)
			}
		}()
	}

	close(start)
	wg.Wait()

	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("expected one upstream call, got %d", got)
	}
}

func TestSingleFlight_DoContextStopsWaiting(t *testing.T) {
	var g SingleFlight[int]
	release := make(chan struct{})
	defer close(release)

	go func() {
		_, _, _ = g.Do("lineup:fx-1", func() (int, error) {
			<-release
			return 1, nil
		})
	}()
	time.Sleep(10 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err, _ := g.DoContext(ctx, "lineup:fx-1", func() (int, error) { return 2, nil })
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestSingleFlight_ErrorIsShared(t *testing.T) {
	var g SingleFlight[string]
	boom := errors.New("provider 503")

	val, err, _ := g.Do("k", func() (string, error) { return "", boom })
	if !errors.Is(err, boom) || val != "" {
		t.Fatalf("unexpected result val=%q err=%v", val, err)
	}

	g.Forget("k")
	val, err, _ = g.Do("k", func() (string, error) { return "ok", nil })
	if err != nil || val != "ok" {
		t.Fatalf("expected fresh call after Forget, got val=%q err=%v", val, err)
	}
}
