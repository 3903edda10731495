package ws

import (
	"context"
	"encoding/json"
	"log/slog"
)

// Event type constants for WebSocket messages.
const (
	EventWorkflowStatus = "workflow.status"
	EventWorkflowResult = "workflow.result"
)

// WorkflowStatusEvent is broadcast on every observed run status transition.
type WorkflowStatusEvent struct {
	InvocationID string `json:"invocation_id"`
	Workflow     string `json:"workflow"`
	ThreadID     string `json:"thread_id"`
	RunID        string `json:"run_id"`
	Status       string `json:"status"`
}

// WorkflowResultEvent is broadcast once per finished invocation.
type WorkflowResultEvent struct {
	InvocationID string `json:"invocation_id,omitempty"`
	Workflow     string `json:"workflow"`
	ThreadID     string `json:"thread_id,omitempty"`
	RunID        string `json:"run_id,omitempty"`
	Success      bool   `json:"success"`
	Error        string `json:"error,omitempty"`
}

// BroadcastEvent is a convenience method that marshals a typed event and broadcasts it.
func (h *Hub) BroadcastEvent(ctx context.Context, eventType string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		slog.Error("marshal ws event payload", "type", eventType, "error", err)
		return
	}

	h.Broadcast(ctx, Message{
		Type:    eventType,
		Payload: json.RawMessage(data),
	})
}
