package jobqueue

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/riskibarqy/fantasy-contest/internal/platform/logging"
	"github.com/riskibarqy/fantasy-contest/internal/platform/resilience"
	"github.com/riskibarqy/fantasy-contest/internal/usecase"
)

func newTestPublisher(serverURL string, breaker resilience.CircuitBreakerConfig) *QStashPublisher {
	return NewQStashPublisher(QStashPublisherConfig{
		BaseURL:          serverURL,
		Token:            "qstash-token",
		TargetBaseURL:    "https://contest.example.com",
		Retries:          3,
		InternalJobToken: "job-secret",
		CircuitBreaker:   breaker,
	}, logging.NewNop())
}

func TestQStashPublisher_EnqueueSetsHeaders(t *testing.T) {
	var (
		gotPath string
		gotHdr  http.Header
		gotBody string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotHdr = r.Header.Clone()
		raw, _ := io.ReadAll(r.Body)
		gotBody = string(raw)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	pub := newTestPublisher(srv.URL, resilience.CircuitBreakerConfig{})
	payload := usecase.SettleJobPayload{CompetitionType: "tournament", CompetitionID: "tour-1", DispatchID: "settle-tour-1"}
	if err := pub.Enqueue(context.Background(), usecase.SettleJobPath, payload, 90*time.Second, "settle-tour-1"); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	if gotPath != "/v2/publish/https://contest.example.com/v1/internal/jobs/settle" {
		t.Fatalf("unexpected publish path %q", gotPath)
	}
	if gotHdr.Get("Authorization") != "Bearer qstash-token" {
		t.Fatalf("unexpected authorization header %q", gotHdr.Get("Authorization"))
	}
	if gotHdr.Get("Upstash-Delay") != "90s" {
		t.Fatalf("unexpected delay header %q", gotHdr.Get("Upstash-Delay"))
	}
	if gotHdr.Get("Upstash-Deduplication-Id") != "settle-tour-1" {
		t.Fatalf("unexpected dedup header %q", gotHdr.Get("Upstash-Deduplication-Id"))
	}
	if gotHdr.Get("Upstash-Retries") != "3" {
		t.Fatalf("unexpected retries header %q", gotHdr.Get("Upstash-Retries"))
	}
	if gotHdr.Get("Upstash-Forward-X-Internal-Job-Token") != "job-secret" {
		t.Fatalf("expected forwarded job token")
	}
	if !strings.Contains(gotBody, `"competition_id":"tour-1"`) {
		t.Fatalf("unexpected body %s", gotBody)
	}
}

func TestQStashPublisher_ServerErrorIsRetryable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	pub := newTestPublisher(srv.URL, resilience.CircuitBreakerConfig{})
	err := pub.Enqueue(context.Background(), usecase.SettleJobPath, nil, 0, "")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !usecase.IsRetryable(err) {
		t.Fatalf("expected retryable error, got %v", err)
	}
}

func TestQStashPublisher_ClientErrorIsNotRetryable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"bad destination"}`))
	}))
	defer srv.Close()

	pub := newTestPublisher(srv.URL, resilience.CircuitBreakerConfig{})
	err := pub.Enqueue(context.Background(), usecase.SettleJobPath, nil, 0, "")
	if err == nil {
		t.Fatalf("expected error")
	}
	if usecase.IsRetryable(err) {
		t.Fatalf("expected non-retryable error, got %v", err)
	}
	if !strings.Contains(err.Error(), "bad destination") {
		t.Fatalf("expected body in error, got %v", err)
	}
}

func TestQStashPublisher_CircuitOpensAfterTransientFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	pub := newTestPublisher(srv.URL, resilience.CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: 2,
		OpenTimeout:      time.Minute,
		HalfOpenMaxReq:   1,
	})
	for i := 0; i < 2; i++ {
		_ = pub.Enqueue(context.Background(), usecase.SettleJobPath, nil, 0, "")
	}

	err := pub.Enqueue(context.Background(), usecase.SettleJobPath, nil, 0, "")
	if err == nil || !usecase.IsRetryable(err) {
		t.Fatalf("expected dependency unavailable error, got %v", err)
	}
	if got := calls.Load(); got != 2 {
		t.Fatalf("expected open circuit to skip the request, got %d calls", got)
	}
}

func TestQStashPublisher_RejectsEmptyPath(t *testing.T) {
	pub := newTestPublisher("https://qstash.example.com", resilience.CircuitBreakerConfig{})
	if err := pub.Enqueue(context.Background(), " / ", nil, 0, ""); err == nil {
		t.Fatalf("expected missing path error")
	}
}

func TestNormalizeDelay(t *testing.T) {
	cases := map[time.Duration]string{
		0:                       "0s",
		-time.Second:            "0s",
		1500 * time.Millisecond: "2s",
		2 * time.Minute:         "120s",
	}
	for in, want := range cases {
		if got := normalizeDelay(in); got != want {
			t.Fatalf("normalizeDelay(%s)=%q want %q", in, got, want)
		}
	}
}
