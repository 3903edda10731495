// Package agent defines the remote agent service's thread, message, and run
// entities as the orchestrator observes them. All of these are owned by the
// remote service; we only hold references and read state transitions.
package agent

import "time"

// RoleUser and RoleAgent are the message author roles we care about.
const (
	RoleUser  = "user"
	RoleAgent = "assistant"
)

// Status represents the lifecycle state of a run.
type Status string

const (
	StatusQueued     Status = "queued"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusCancelled  Status = "cancelled"
	StatusExpired    Status = "expired"
)

// Terminal reports whether no further status transition can occur.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCancelled, StatusExpired:
		return true
	}
	return false
}

// Thread is a server-side conversation container accumulating ordered messages.
type Thread struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
}

// ContentPart is one piece of a message body. Text parts carry the agent's
// reply; other types (file/image references) are passed through as opaque ids.
type ContentPart struct {
	Type   string `json:"type"` // "text", "image_file", ...
	Text   string `json:"text,omitempty"`
	FileID string `json:"file_id,omitempty"`
}

// Message is one entry on a thread. Immutable once created.
type Message struct {
	ID        string        `json:"id"`
	ThreadID  string        `json:"thread_id"`
	Role      string        `json:"role"`
	Content   []ContentPart `json:"content"`
	CreatedAt time.Time     `json:"created_at"`
}

// Run is one asynchronous execution of the agent against a thread's message
// history. Status is monotonic toward a terminal state.
type Run struct {
	ID        string    `json:"id"`
	ThreadID  string    `json:"thread_id"`
	AgentID   string    `json:"agent_id"`
	Status    Status    `json:"status"`
	LastError string    `json:"last_error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ListOrder controls message listing order on the remote service.
type ListOrder string

const (
	OrderAscending  ListOrder = "asc"
	OrderDescending ListOrder = "desc"
)

// FirstText returns the first text-typed content part of m, or "" and false
// when the message carries no text.
func (m Message) FirstText() (string, bool) {
	for _, p := range m.Content {
		if p.Type == "text" && p.Text != "" {
			return p.Text, true
		}
	}
	return "", false
}
