package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/fantasy-contest/internal/domain/notification"
	"github.com/riskibarqy/fantasy-contest/internal/platform/logging"
	"github.com/riskibarqy/fantasy-contest/internal/usecase"
	"github.com/valyala/fasthttp"
)

type WebhookConfig struct {
	URL     string
	Secret  string
	Timeout time.Duration
}

// WebhookPublisher POSTs completion events to a push gateway.
type WebhookPublisher struct {
	client  *fasthttp.Client
	url     string
	secret  string
	timeout time.Duration
	logger  *logging.Logger
}

var _ usecase.EventPublisher = (*WebhookPublisher)(nil)

func NewWebhookPublisher(cfg WebhookConfig, logger *logging.Logger) (*WebhookPublisher, error) {
	target := strings.TrimSpace(cfg.URL)
	if !strings.HasPrefix(target, "http://") && !strings.HasPrefix(target, "https://") {
		return nil, fmt.Errorf("push webhook url must be http or https, got %q", target)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &WebhookPublisher{
		client: &fasthttp.Client{
			Name:                     "fantasy-contest-webhook",
			ReadTimeout:              timeout,
			WriteTimeout:             timeout,
			MaxIdleConnDuration:      time.Minute,
			NoDefaultUserAgentHeader: true,
		},
		url:     target,
		secret:  strings.TrimSpace(cfg.Secret),
		timeout: timeout,
		logger:  logger.Named("webhook"),
	}, nil
}

func (p *WebhookPublisher) Name() string {
	return "webhook"
}

func (p *WebhookPublisher) PublishCompetitionCompleted(ctx context.Context, event notification.CompetitionCompleted) error {
	body, err := encodeEvent(event)
	if err != nil {
		return fmt.Errorf("encode completion event: %w", err)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(p.url)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.Header.Set("Idempotency-Key", eventID(event))
	if p.secret != "" {
		req.Header.Set("Authorization", "Bearer "+p.secret)
	}
	req.SetBodyRaw(body)

	timeout := p.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	if timeout <= 0 {
		return usecase.MarkTransient(context.DeadlineExceeded)
	}

	if err := p.client.DoTimeout(req, resp, timeout); err != nil {
		return usecase.MarkTransient(fmt.Errorf("post push webhook: %w", err))
	}

	status := resp.StatusCode()
	switch {
	case status >= 200 && status < 300:
		p.logger.DebugContext(ctx, "push webhook delivered", "user_id", event.UserID, "competition_id", event.CompetitionID)
		return nil
	case status == fasthttp.StatusTooManyRequests || status >= 500:
		return usecase.MarkTransient(fmt.Errorf("push webhook status=%d body=%s", status, abbreviate(resp.Body())))
	default:
		return fmt.Errorf("push webhook status=%d body=%s", status, abbreviate(resp.Body()))
	}
}

func abbreviate(raw []byte) string {
	text := strings.TrimSpace(string(raw))
	if len(text) > 256 {
		return text[:256] + "..."
	}
	return text
}
