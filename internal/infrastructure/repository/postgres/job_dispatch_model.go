package postgres

import (
	"fmt"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/riskibarqy/fantasy-contest/internal/domain/jobscheduler"
)

var jobDispatchColumns = []string{
	"dispatch_id",
	"job_name",
	"job_path",
	"competition_type",
	"competition_public_id",
	"payload",
	"status",
	"last_error",
	"updated_at",
	"sent_trace_id",
	"sent_span_id",
}

type jobDispatchRow struct {
	DispatchID      string    `db:"dispatch_id"`
	JobName         string    `db:"job_name"`
	JobPath         string    `db:"job_path"`
	CompetitionType string    `db:"competition_type"`
	CompetitionID   string    `db:"competition_public_id"`
	Payload         []byte    `db:"payload"`
	Status          string    `db:"status"`
	LastError       *string   `db:"last_error"`
	UpdatedAt       time.Time `db:"updated_at"`
	SentTraceID     *string   `db:"sent_trace_id"`
	SentSpanID      *string   `db:"sent_span_id"`
}

func (row jobDispatchRow) toEvent() (jobscheduler.DispatchEvent, error) {
	payload := map[string]any{}
	if len(row.Payload) > 0 {
		if err := jsoniter.Unmarshal(row.Payload, &payload); err != nil {
			return jobscheduler.DispatchEvent{}, fmt.Errorf("decode job dispatch payload: %w", err)
		}
	}
	return jobscheduler.DispatchEvent{
		DispatchID:      row.DispatchID,
		JobName:         row.JobName,
		JobPath:         row.JobPath,
		CompetitionType: row.CompetitionType,
		CompetitionID:   row.CompetitionID,
		Status:          jobscheduler.DispatchStatus(row.Status),
		Payload:         payload,
		ErrorMessage:    deref(row.LastError),
		OccurredAt:      row.UpdatedAt,
		TraceID:         deref(row.SentTraceID),
		SpanID:          deref(row.SentSpanID),
	}, nil
}

// jobDispatchWrite carries one stage of a dispatch. Only the columns of the
// event's stage are set; the upsert keeps the other stages' values.
type jobDispatchWrite struct {
	DispatchID       string     `db:"dispatch_id"`
	JobName          string     `db:"job_name"`
	JobPath          string     `db:"job_path"`
	CompetitionType  string     `db:"competition_type"`
	CompetitionID    string     `db:"competition_public_id"`
	Payload          string     `db:"payload"`
	Status           string     `db:"status"`
	LastError        *string    `db:"last_error"`
	SentAt           *time.Time `db:"sent_at"`
	SentTraceID      *string    `db:"sent_trace_id"`
	SentSpanID       *string    `db:"sent_span_id"`
	CompletedAt      *time.Time `db:"completed_at"`
	CompletedTraceID *string    `db:"completed_trace_id"`
	CompletedSpanID  *string    `db:"completed_span_id"`
	FailedAt         *time.Time `db:"failed_at"`
	FailedTraceID    *string    `db:"failed_trace_id"`
	FailedSpanID     *string    `db:"failed_span_id"`
}

func newJobDispatchWrite(event jobscheduler.DispatchEvent, now time.Time) (jobDispatchWrite, error) {
	dispatchID := strings.TrimSpace(event.DispatchID)
	if dispatchID == "" {
		return jobDispatchWrite{}, fmt.Errorf("dispatch id is required")
	}
	payload, err := marshalPayload(event.Payload)
	if err != nil {
		return jobDispatchWrite{}, fmt.Errorf("marshal job dispatch payload: %w", err)
	}
	at := event.OccurredAt.UTC()
	if event.OccurredAt.IsZero() {
		at = now.UTC()
	}

	w := jobDispatchWrite{
		DispatchID:      dispatchID,
		JobName:         orUnknown(event.JobName),
		JobPath:         orUnknown(event.JobPath),
		CompetitionType: orUnknown(event.CompetitionType),
		CompetitionID:   orUnknown(event.CompetitionID),
		Payload:         payload,
		Status:          string(event.Status),
	}
	traceID, spanID := optionalString(event.TraceID), optionalString(event.SpanID)
	switch event.Status {
	case jobscheduler.StatusSent:
		w.SentAt, w.SentTraceID, w.SentSpanID = &at, traceID, spanID
	case jobscheduler.StatusCompleted:
		w.CompletedAt, w.CompletedTraceID, w.CompletedSpanID = &at, traceID, spanID
	case jobscheduler.StatusFailed:
		w.FailedAt, w.FailedTraceID, w.FailedSpanID = &at, traceID, spanID
		w.LastError = optionalString(event.ErrorMessage)
	default:
		return jobDispatchWrite{}, fmt.Errorf("unknown dispatch status %q", event.Status)
	}
	return w, nil
}

// jobDispatchUpsertSuffix overwrites the identity columns and only the stage
// columns matching the incoming status. A completed dispatch clears failed_at.
var jobDispatchUpsertSuffix = func() string {
	var b strings.Builder
	b.WriteString("ON CONFLICT (dispatch_id) WHERE deleted_at IS NULL\nDO UPDATE SET\n")
	for _, col := range []string{"job_name", "job_path", "competition_type", "competition_public_id", "payload", "status", "last_error"} {
		fmt.Fprintf(&b, "    %s = EXCLUDED.%s,\n", col, col)
	}
	for _, stage := range []string{"sent", "completed", "failed"} {
		for _, suffix := range []string{"at", "trace_id", "span_id"} {
			col := stage + "_" + suffix
			fmt.Fprintf(&b, "    %s = CASE WHEN EXCLUDED.status = '%s' THEN EXCLUDED.%s", col, stage, col)
			if col == "failed_at" {
				b.WriteString(" WHEN EXCLUDED.status = 'completed' THEN NULL")
			}
			fmt.Fprintf(&b, " ELSE job_dispatches.%s END,\n", col)
		}
	}
	b.WriteString("    updated_at = NOW(),\n    deleted_at = NULL")
	return b.String()
}()

func orUnknown(value string) string {
	if value = strings.TrimSpace(value); value == "" {
		return "unknown"
	}
	return value
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
