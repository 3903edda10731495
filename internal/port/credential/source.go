// Package credential defines the port interface for bearer token acquisition.
package credential

import "context"

// Source supplies bearer tokens for the remote agent service. Implementations
// may cache tokens; callers treat every returned token as read-only and valid
// for at least the duration of one workflow invocation.
type Source interface {
	// Token returns a bearer token, honoring the context deadline.
	Token(ctx context.Context) (string, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(ctx context.Context) (string, error)

func (f SourceFunc) Token(ctx context.Context) (string, error) { return f(ctx) }
