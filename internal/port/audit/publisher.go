// Package audit defines the port interface for workflow audit events.
package audit

import (
	"context"
	"time"
)

// Subjects for workflow audit events.
const (
	SubjectWorkflowCompleted = "consult.workflow.completed"
	SubjectWorkflowFailed    = "consult.workflow.failed"
)

// Event is the audit record emitted once per workflow invocation.
type Event struct {
	InvocationID string    `json:"invocation_id"`
	Workflow     string    `json:"workflow"` // "chat" or "extract"
	ThreadID     string    `json:"thread_id,omitempty"`
	RunID        string    `json:"run_id,omitempty"`
	Kind         string    `json:"kind,omitempty"` // failure kind, empty on success
	DurationMS   int64     `json:"duration_ms"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// Publisher is the port interface for publishing audit events.
// Publishing is fire-and-forget; failures must not affect the workflow result.
type Publisher interface {
	Publish(ctx context.Context, subject string, data []byte) error
}
