package jobscheduler

import "time"

type DispatchStatus string

const (
	StatusSent      DispatchStatus = "sent"
	StatusCompleted DispatchStatus = "completed"
	StatusFailed    DispatchStatus = "failed"
)

// DispatchEvent tracks one asynchronous job from enqueue to outcome.
type DispatchEvent struct {
	DispatchID      string
	JobName         string
	JobPath         string
	CompetitionType string
	CompetitionID   string
	Status          DispatchStatus
	Payload         map[string]any
	ErrorMessage    string
	OccurredAt      time.Time
	TraceID         string
	SpanID          string
}
