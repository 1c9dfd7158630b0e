package postgres

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/fantasy-contest/internal/domain/jobscheduler"
)

func TestNewJobDispatchWrite_SetsOnlyStageColumns(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	w, err := newJobDispatchWrite(jobscheduler.DispatchEvent{
		DispatchID:   " settle-peer-p1 ",
		JobName:      "settle-competition",
		Status:       jobscheduler.StatusFailed,
		ErrorMessage: "ledger conflict",
		TraceID:      "abc",
	}, now)
	require.NoError(t, err)

	assert.Equal(t, "settle-peer-p1", w.DispatchID)
	assert.Equal(t, "unknown", w.JobPath)
	assert.Equal(t, "{}", w.Payload)
	require.NotNil(t, w.FailedAt)
	assert.Equal(t, now, *w.FailedAt)
	assert.Equal(t, "abc", deref(w.FailedTraceID))
	assert.Equal(t, "ledger conflict", deref(w.LastError))
	assert.Nil(t, w.SentAt)
	assert.Nil(t, w.CompletedAt)
}

func TestNewJobDispatchWrite_Rejects(t *testing.T) {
	_, err := newJobDispatchWrite(jobscheduler.DispatchEvent{Status: jobscheduler.StatusSent}, time.Now())
	assert.Error(t, err)

	_, err = newJobDispatchWrite(jobscheduler.DispatchEvent{DispatchID: "d-1", Status: "queued"}, time.Now())
	assert.Error(t, err)
}

func TestJobDispatchUpsertSuffix(t *testing.T) {
	s := jobDispatchUpsertSuffix
	assert.True(t, strings.HasPrefix(s, "ON CONFLICT (dispatch_id) WHERE deleted_at IS NULL"))
	assert.Contains(t, s, "completed_span_id = CASE WHEN EXCLUDED.status = 'completed' THEN EXCLUDED.completed_span_id ELSE job_dispatches.completed_span_id END,")
	assert.Contains(t, s, "failed_at = CASE WHEN EXCLUDED.status = 'failed' THEN EXCLUDED.failed_at WHEN EXCLUDED.status = 'completed' THEN NULL ELSE job_dispatches.failed_at END,")
	assert.True(t, strings.HasSuffix(s, "deleted_at = NULL"))
}

func TestJobDispatchRow_ToEvent(t *testing.T) {
	msg := "boom"
	event, err := jobDispatchRow{
		DispatchID: "d-1",
		Status:     "failed",
		Payload:    []byte(`{"competition_id":"trn-1"}`),
		LastError:  &msg,
	}.toEvent()
	require.NoError(t, err)
	assert.Equal(t, jobscheduler.StatusFailed, event.Status)
	assert.Equal(t, "trn-1", event.Payload["competition_id"])
	assert.Equal(t, "boom", event.ErrorMessage)

	_, err = jobDispatchRow{Payload: []byte("{")}.toEvent()
	assert.Error(t, err)
}
