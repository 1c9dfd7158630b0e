package jobqueue

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/fantasy-contest/internal/platform/logging"
	"github.com/riskibarqy/fantasy-contest/internal/platform/resilience"
	"github.com/riskibarqy/fantasy-contest/internal/usecase"
	"github.com/valyala/bytebufferpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var errQStashTransient = crerr.New("qstash transient failure")

type QStashPublisherConfig struct {
	BaseURL          string
	Token            string
	TargetBaseURL    string
	Retries          int
	InternalJobToken string
	Timeout          time.Duration
	CircuitBreaker   resilience.CircuitBreakerConfig
	HTTPClient       *http.Client
}

// QStashPublisher enqueues settlement jobs that QStash later POSTs back to
// the internal job endpoints.
type QStashPublisher struct {
	client           *http.Client
	baseURL          string
	token            string
	targetBaseURL    string
	retries          int
	internalJobToken string
	logger           *logging.Logger
	breaker          *resilience.CircuitBreaker
}

var _ usecase.JobQueue = (*QStashPublisher)(nil)

func NewQStashPublisher(cfg QStashPublisherConfig, logger *logging.Logger) *QStashPublisher {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = logging.Default()
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}

	return &QStashPublisher{
		client:           client,
		baseURL:          strings.TrimRight(cfg.BaseURL, "/"),
		token:            strings.TrimSpace(cfg.Token),
		targetBaseURL:    strings.TrimRight(strings.TrimSpace(cfg.TargetBaseURL), "/"),
		retries:          cfg.Retries,
		internalJobToken: strings.TrimSpace(cfg.InternalJobToken),
		logger:           logger.Named("qstash"),
		breaker:          resilience.NewCircuitBreaker("qstash", cfg.CircuitBreaker),
	}
}

// Enqueue publishes payload for delivery to path on the target service.
// Network errors, 408, 429 and 5xx are marked transient.
func (p *QStashPublisher) Enqueue(ctx context.Context, path string, payload any, delay time.Duration, deduplicationID string) error {
	if err := p.breaker.Allow(); err != nil {
		p.logger.WarnContext(ctx, "qstash circuit breaker rejected request", "state", p.breaker.State())
		return fmt.Errorf("%w: qstash is temporarily unavailable: %v", usecase.ErrDependencyUnavailable, err)
	}

	path = "/" + strings.TrimLeft(strings.TrimSpace(path), "/")
	if path == "/" {
		p.breaker.RecordSuccess()
		return crerr.New("job path is required")
	}

	baseURL, err := validateHTTPBaseURL(p.baseURL)
	if err != nil {
		p.breaker.RecordSuccess()
		return crerr.Wrap(err, "invalid QSTASH_BASE_URL")
	}
	targetBaseURL, err := validateHTTPBaseURL(p.targetBaseURL)
	if err != nil {
		p.breaker.RecordSuccess()
		return crerr.Wrap(err, "invalid QSTASH_TARGET_BASE_URL")
	}

	targetURL := targetBaseURL + path
	publishURL := baseURL + "/v2/publish/" + targetURL
	if payload == nil {
		payload = map[string]any{}
	}

	body, err := sonic.Marshal(payload)
	if err != nil {
		p.breaker.RecordSuccess()
		return crerr.Wrap(err, "marshal job payload")
	}
	dedup := strings.TrimSpace(deduplicationID)
	curlPreview := buildQStashCurlPreview(publishURL, path, normalizeDelay(delay), p.retries, dedup, truncateForLog(string(body), 4096), p.internalJobToken != "")

	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.SetAttributes(
			attribute.String("qstash.target_url", targetURL),
			attribute.String("qstash.path", path),
			attribute.String("qstash.deduplication_id", dedup),
		)
	}
	p.logger.DebugContext(ctx, "qstash publish request", "path", path, "target_url", targetURL, "curl_preview", curlPreview)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, publishURL, strings.NewReader(string(body)))
	if err != nil {
		p.breaker.RecordSuccess()
		return crerr.Wrap(err, "create qstash request")
	}
	req.Header.Set("Authorization", "Bearer "+p.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Upstash-Method", http.MethodPost)
	if p.retries > 0 {
		req.Header.Set("Upstash-Retries", strconv.Itoa(p.retries))
	}
	if delay > 0 {
		req.Header.Set("Upstash-Delay", normalizeDelay(delay))
	}
	if dedup != "" {
		req.Header.Set("Upstash-Deduplication-Id", dedup)
	}
	if p.internalJobToken != "" {
		req.Header.Set("Upstash-Forward-X-Internal-Job-Token", p.internalJobToken)
	}

	callErr := p.send(req, targetURL)
	p.recordCircuitResult(callErr)
	if callErr != nil {
		p.logger.WarnContext(ctx, "qstash publish failed", "path", path, "deduplication_id", dedup, "error", callErr)
		if isQStashCircuitFailure(callErr) {
			return usecase.MarkTransient(callErr)
		}
		return callErr
	}

	p.logger.InfoContext(ctx, "qstash job published", "path", path, "delay", normalizeDelay(delay), "deduplication_id", dedup)
	return nil
}

func (p *QStashPublisher) send(req *http.Request, targetURL string) error {
	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: publish qstash job target_url=%s: %v", errQStashTransient, targetURL, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode/100 == 2 {
		return nil
	}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if isQStashRetryableStatus(resp.StatusCode) {
		return fmt.Errorf("%w: publish qstash job status=%d target_url=%s body=%s",
			errQStashTransient, resp.StatusCode, targetURL, strings.TrimSpace(string(raw)))
	}
	return fmt.Errorf("publish qstash job status=%d target_url=%s body=%s",
		resp.StatusCode, targetURL, strings.TrimSpace(string(raw)))
}

func normalizeDelay(delay time.Duration) string {
	if delay <= 0 {
		return "0s"
	}
	return fmt.Sprintf("%ds", int(delay.Round(time.Second).Seconds()))
}

func validateHTTPBaseURL(raw string) (string, error) {
	candidate := strings.TrimSpace(raw)
	if candidate == "" {
		return "", crerr.New("value is empty")
	}

	parsed, err := url.Parse(candidate)
	if err != nil {
		return "", crerr.Wrapf(err, "parse %q", candidate)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", crerr.Newf("%q uses unsupported scheme=%q; expected http or https", candidate, parsed.Scheme)
	}
	if strings.TrimSpace(parsed.Host) == "" {
		return "", crerr.Newf("%q has empty host", candidate)
	}

	return strings.TrimRight(candidate, "/"), nil
}

func buildQStashCurlPreview(
	publishURL string,
	path string,
	delay string,
	retries int,
	deduplicationID string,
	body string,
	withForwardToken bool,
) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	appendPart := func(part string) {
		if buf.Len() > 0 {
			_ = buf.WriteByte(' ')
		}
		_, _ = buf.WriteString(part)
	}
	appendFlagHeader := func(value string) {
		appendPart("-H")
		appendPart(shellQuote(value))
	}

	appendPart("curl -X POST")
	appendPart(shellQuote(publishURL))
	appendFlagHeader("Authorization: Bearer ***")
	appendFlagHeader("Content-Type: application/json")
	appendFlagHeader("Upstash-Method: POST")
	if retries > 0 {
		appendFlagHeader("Upstash-Retries: " + strconv.Itoa(retries))
	}
	if delay != "" && delay != "0s" {
		appendFlagHeader("Upstash-Delay: " + delay)
	}
	if deduplicationID != "" {
		appendFlagHeader("Upstash-Deduplication-Id: " + deduplicationID)
	}
	if withForwardToken {
		appendFlagHeader("Upstash-Forward-X-Internal-Job-Token: ***")
	}
	appendPart("-d")
	appendPart(shellQuote(body))
	appendPart("#")
	appendPart(shellQuote("path=" + path))

	return buf.String()
}

func shellQuote(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "'\"'\"'") + "'"
}

func truncateForLog(value string, max int) string {
	if max <= 0 || len(value) <= max {
		return value
	}
	return value[:max] + "...(truncated)"
}

func (p *QStashPublisher) recordCircuitResult(err error) {
	if err != nil && isQStashCircuitFailure(err) {
		p.breaker.RecordFailure()
		return
	}
	p.breaker.RecordSuccess()
}

func isQStashCircuitFailure(err error) bool {
	return err != nil && stderrors.Is(err, errQStashTransient)
}

func isQStashRetryableStatus(statusCode int) bool {
	return statusCode == http.StatusRequestTimeout ||
		statusCode == http.StatusTooManyRequests ||
		statusCode >= http.StatusInternalServerError
}
