// Package agentservice defines the port interface for the remote
// conversational agent service (threads, messages, runs).
package agentservice

import (
	"context"

	"github.com/consultologist/consultd/internal/domain/agent"
)

// Client is the port interface for driving the remote agent service through
// its asynchronous run lifecycle. Implementations must honor the context
// deadline on every call.
type Client interface {
	// CreateThread creates a new empty conversation thread.
	CreateThread(ctx context.Context) (*agent.Thread, error)

	// CreateMessage appends a message with the given role and text content
	// to the thread.
	CreateMessage(ctx context.Context, threadID, role, content string) (*agent.Message, error)

	// CreateRun starts an asynchronous run of the agent against the thread.
	CreateRun(ctx context.Context, threadID, agentID string) (*agent.Run, error)

	// GetRun fetches the current state of a run.
	GetRun(ctx context.Context, threadID, runID string) (*agent.Run, error)

	// CancelRun requests cancellation of a non-terminal run. Best-effort;
	// the service may have already finished the run.
	CancelRun(ctx context.Context, threadID, runID string) error

	// ListMessages returns the thread's messages in the requested order.
	ListMessages(ctx context.Context, threadID string, order agent.ListOrder) ([]agent.Message, error)
}
