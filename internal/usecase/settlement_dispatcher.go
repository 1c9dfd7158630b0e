package usecase

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/fantasy-contest/internal/domain/competition"
	"github.com/riskibarqy/fantasy-contest/internal/domain/jobscheduler"
	"github.com/riskibarqy/fantasy-contest/internal/platform/logging"
	"go.opentelemetry.io/otel/trace"
)

const (
	SettleJobName = "settle-competition"
	SettleJobPath = "/v1/internal/jobs/settle"
)

type JobQueue interface {
	Enqueue(ctx context.Context, path string, payload any, delay time.Duration, deduplicationID string) error
}

type noopJobQueue struct{}

func (noopJobQueue) Enqueue(_ context.Context, _ string, _ any, _ time.Duration, _ string) error {
	return nil
}

func NewNoopJobQueue() JobQueue {
	return noopJobQueue{}
}

// SettlementDispatcher hands a complete competition to settlement without
// blocking the caller.
type SettlementDispatcher interface {
	Dispatch(ctx context.Context, ref competition.Ref) error
}

// SettlementRunner is satisfied by SettlementEngine.
type SettlementRunner interface {
	Settle(ctx context.Context, ref competition.Ref) (SettlementOutcome, error)
}

// SettleJobPayload is the body of a queued settlement job.
type SettleJobPayload struct {
	CompetitionType string `json:"competition_type" validate:"required,oneof=tournament peer"`
	CompetitionID   string `json:"competition_id" validate:"required"`
	DispatchID      string `json:"dispatch_id"`
}

var dedupUnsafeCharRegex = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

func dedupKey(prefix, resourceID string, at time.Time, bucket time.Duration) string {
	if bucket <= 0 {
		bucket = time.Minute
	}
	slot := at.UTC().Truncate(bucket).Format("20060102T150405Z")
	prefix = sanitizeDedupSegment(prefix)
	resourceID = sanitizeDedupSegment(resourceID)
	return prefix + "-" + resourceID + "-" + slot
}

func sanitizeDedupSegment(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "unknown"
	}
	return dedupUnsafeCharRegex.ReplaceAllString(value, "-")
}

// SettleDispatchID is the dedup id of a settlement dispatch for ref in the
// bucket containing at.
func SettleDispatchID(ref competition.Ref, at time.Time, bucket time.Duration) string {
	return dedupKey("settle", string(ref.Type)+"-"+ref.ID, at, bucket)
}

type dispatchRecorder struct {
	repo   jobscheduler.Repository
	logger *logging.Logger
	now    func() time.Time
}

func (r dispatchRecorder) record(ctx context.Context, event jobscheduler.DispatchEvent) {
	if r.repo == nil || strings.TrimSpace(event.DispatchID) == "" {
		return
	}
	traceID, spanID := traceMetaFromContext(ctx)
	event.TraceID = traceID
	event.SpanID = spanID
	if event.OccurredAt.IsZero() {
		event.OccurredAt = r.now().UTC()
	}
	if err := r.repo.UpsertEvent(ctx, event); err != nil {
		r.logger.WarnContext(ctx, "record job dispatch event failed",
			"dispatch_id", event.DispatchID,
			"status", event.Status,
			"error", err,
		)
	}
}

func settleEvent(dispatchID string, ref competition.Ref, status jobscheduler.DispatchStatus, err error) jobscheduler.DispatchEvent {
	event := jobscheduler.DispatchEvent{
		DispatchID:      dispatchID,
		JobName:         SettleJobName,
		JobPath:         SettleJobPath,
		CompetitionType: string(ref.Type),
		CompetitionID:   ref.ID,
		Status:          status,
		Payload: map[string]any{
			"competition_type": string(ref.Type),
			"competition_id":   ref.ID,
			"dispatch_id":      dispatchID,
		},
	}
	if err != nil {
		event.ErrorMessage = err.Error()
	}
	return event
}

func traceMetaFromContext(ctx context.Context) (string, string) {
	spanContext := trace.SpanFromContext(ctx).SpanContext()
	if !spanContext.IsValid() {
		return "", ""
	}
	return spanContext.TraceID().String(), spanContext.SpanID().String()
}

type PoolDispatcherConfig struct {
	Workers     int
	TaskTimeout time.Duration
	DedupBucket time.Duration
}

// PoolSettlementDispatcher runs settlements on an in-process ants pool. A
// competition already queued or running is not submitted again.
type PoolSettlementDispatcher struct {
	runner   SettlementRunner
	pool     *ants.Pool
	recorder dispatchRecorder
	cfg      PoolDispatcherConfig
	inflight sync.Map
	tasks    sync.WaitGroup
	logger   *logging.Logger
}

func NewPoolSettlementDispatcher(
	runner SettlementRunner,
	dispatchRepo jobscheduler.Repository,
	cfg PoolDispatcherConfig,
	logger *logging.Logger,
) (*PoolSettlementDispatcher, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.TaskTimeout <= 0 {
		cfg.TaskTimeout = 2 * time.Minute
	}
	if cfg.DedupBucket <= 0 {
		cfg.DedupBucket = time.Minute
	}

	pool, err := ants.NewPool(cfg.Workers)
	if err != nil {
		return nil, fmt.Errorf("create settlement worker pool: %w", err)
	}

	return &PoolSettlementDispatcher{
		runner:   runner,
		pool:     pool,
		recorder: dispatchRecorder{repo: dispatchRepo, logger: logger, now: time.Now},
		cfg:      cfg,
		logger:   logger,
	}, nil
}

func (d *PoolSettlementDispatcher) Dispatch(ctx context.Context, ref competition.Ref) error {
	key := ref.String()
	if _, loaded := d.inflight.LoadOrStore(key, struct{}{}); loaded {
		d.logger.DebugContext(ctx, "settlement already in flight", "competition", key)
		return nil
	}

	dispatchID := SettleDispatchID(ref, d.recorder.now(), d.cfg.DedupBucket)
	d.recorder.record(ctx, settleEvent(dispatchID, ref, jobscheduler.StatusSent, nil))

	taskCtx := context.WithoutCancel(ctx)
	d.tasks.Add(1)
	if err := d.pool.Submit(func() {
		defer d.tasks.Done()
		defer d.inflight.Delete(key)

		runCtx, cancel := context.WithTimeout(taskCtx, d.cfg.TaskTimeout)
		defer cancel()

		outcome, err := d.runner.Settle(runCtx, ref)
		if err != nil {
			d.recorder.record(runCtx, settleEvent(dispatchID, ref, jobscheduler.StatusFailed, err))
			return
		}
		d.recorder.record(runCtx, settleEvent(dispatchID, ref, jobscheduler.StatusCompleted, nil))
		d.logger.DebugContext(runCtx, "settlement task finished", "competition", key, "status", outcome.Status)
	}); err != nil {
		d.tasks.Done()
		d.inflight.Delete(key)
		d.recorder.record(ctx, settleEvent(dispatchID, ref, jobscheduler.StatusFailed, err))
		return fmt.Errorf("submit settlement competition=%s: %w", key, err)
	}

	return nil
}

// Wait blocks until every submitted settlement finished.
func (d *PoolSettlementDispatcher) Wait() {
	d.tasks.Wait()
}

func (d *PoolSettlementDispatcher) Close() {
	d.tasks.Wait()
	d.pool.Release()
}

// QueueSettlementDispatcher publishes a settlement job for another process
// to run through the internal settle endpoint.
type QueueSettlementDispatcher struct {
	queue    JobQueue
	recorder dispatchRecorder
	bucket   time.Duration
}

func NewQueueSettlementDispatcher(queue JobQueue, dispatchRepo jobscheduler.Repository, bucket time.Duration, logger *logging.Logger) *QueueSettlementDispatcher {
	if queue == nil {
		queue = NewNoopJobQueue()
	}
	if logger == nil {
		logger = logging.Default()
	}
	if bucket <= 0 {
		bucket = 5 * time.Minute
	}
	return &QueueSettlementDispatcher{
		queue:    queue,
		recorder: dispatchRecorder{repo: dispatchRepo, logger: logger, now: time.Now},
		bucket:   bucket,
	}
}

func (d *QueueSettlementDispatcher) Dispatch(ctx context.Context, ref competition.Ref) error {
	now := d.recorder.now().UTC()
	dispatchID := SettleDispatchID(ref, now, d.bucket)
	payload := SettleJobPayload{
		CompetitionType: string(ref.Type),
		CompetitionID:   ref.ID,
		DispatchID:      dispatchID,
	}
	if err := d.queue.Enqueue(ctx, SettleJobPath, payload, 0, dispatchID); err != nil {
		d.recorder.record(ctx, settleEvent(dispatchID, ref, jobscheduler.StatusFailed, err))
		return fmt.Errorf("enqueue settlement competition=%s: %w", ref, err)
	}
	d.recorder.record(ctx, settleEvent(dispatchID, ref, jobscheduler.StatusSent, nil))
	return nil
}

// SettleJobHandler runs a queued settlement and records its outcome against
// the dispatch id.
type SettleJobHandler struct {
	runner   SettlementRunner
	recorder dispatchRecorder
}

func NewSettleJobHandler(runner SettlementRunner, dispatchRepo jobscheduler.Repository, logger *logging.Logger) *SettleJobHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &SettleJobHandler{
		runner:   runner,
		recorder: dispatchRecorder{repo: dispatchRepo, logger: logger, now: time.Now},
	}
}

func (h *SettleJobHandler) Handle(ctx context.Context, payload SettleJobPayload) (SettlementOutcome, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SettleJobHandler.Handle")
	defer span.End()

	competitionType, err := competition.ParseType(payload.CompetitionType)
	if err != nil {
		return SettlementOutcome{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	competitionID := strings.TrimSpace(payload.CompetitionID)
	if competitionID == "" {
		return SettlementOutcome{}, fmt.Errorf("%w: competition id is required", ErrInvalidInput)
	}
	ref := competition.Ref{Type: competitionType, ID: competitionID}

	if h.alreadyCompleted(ctx, payload.DispatchID) {
		return SettlementOutcome{Competition: ref, Status: SettlementSkipped, SkipReason: "dispatch already completed"}, nil
	}

	outcome, err := h.runner.Settle(ctx, ref)
	if err != nil {
		h.recorder.record(ctx, settleEvent(payload.DispatchID, ref, jobscheduler.StatusFailed, err))
		return SettlementOutcome{}, err
	}
	h.recorder.record(ctx, settleEvent(payload.DispatchID, ref, jobscheduler.StatusCompleted, nil))
	return outcome, nil
}

// alreadyCompleted reports whether a redelivered job already finished. Lookup
// errors fall through to Settle, which is idempotent on its own.
func (h *SettleJobHandler) alreadyCompleted(ctx context.Context, dispatchID string) bool {
	if h.recorder.repo == nil || strings.TrimSpace(dispatchID) == "" {
		return false
	}
	event, ok, err := h.recorder.repo.GetByDispatchID(ctx, dispatchID)
	if err != nil {
		h.recorder.logger.WarnContext(ctx, "lookup job dispatch failed", "dispatch_id", dispatchID, "error", err)
		return false
	}
	return ok && event.Status == jobscheduler.StatusCompleted
}
