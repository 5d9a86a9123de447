package core

import (
	"context"
	"time"
)

// AuditStatus classifies the outcome of a service operation.
type AuditStatus string

const (
	// AuditStatusSuccess marks a completed operation.
	AuditStatusSuccess AuditStatus = "success"
	// AuditStatusError marks a failed operation.
	AuditStatusError AuditStatus = "error"
)

// AuditEntry captures one service operation with enough context to diagnose
// a failure: the person or catalog involved and the record or medication id.
type AuditEntry struct {
	Operation string      `json:"operation"`
	Status    AuditStatus `json:"status"`
	Entity    string      `json:"entity,omitempty"`
	SubjectID string      `json:"subject_id,omitempty"`
	Error     string      `json:"error,omitempty"`
	At        time.Time   `json:"at"`
}

// AuditRecorder receives an entry for every service operation outcome.
type AuditRecorder interface {
	Record(ctx context.Context, entry AuditEntry)
}

// MetricsRecorder observes operation outcomes for aggregation.
type MetricsRecorder interface {
	Observe(ctx context.Context, operation string, success bool, duration time.Duration)
}

// Tracer starts a span per service operation.
type Tracer interface {
	Start(ctx context.Context, operation string) (context.Context, TraceSpan)
}

// TraceSpan terminates a span, recording the operation error if any.
type TraceSpan interface {
	End(err error)
}
