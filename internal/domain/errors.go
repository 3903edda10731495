// Package domain provides shared domain-level errors and the workflow
// failure taxonomy.
package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates the requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict indicates a concurrent modification conflict (optimistic locking).
var ErrConflict = errors.New("conflict: resource was modified by another request")

// Kind classifies where in the workflow a failure occurred.
type Kind string

const (
	KindValidation     Kind = "validation"
	KindConfiguration  Kind = "configuration"
	KindAuthentication Kind = "authentication"
	KindUpstream       Kind = "upstream"
	KindRun            Kind = "run"
	KindTimeout        Kind = "timeout"
	KindExtraction     Kind = "extraction"
	KindInternal       Kind = "internal"
)

// Error is the uniform failure shape produced by the workflow. Every error
// that crosses the orchestrator boundary is one of these; ThreadID and RunID
// are filled in as far as the workflow got before failing.
type Error struct {
	Kind     Kind
	Step     string // failing pipeline step, e.g. "create_thread", "poll_run"
	ThreadID string
	RunID    string
	Err      error
}

func (e *Error) Error() string {
	if e.Step != "" {
		return fmt.Sprintf("%s error at %s: %v", e.Kind, e.Step, e.Err)
	}
	return fmt.Sprintf("%s error: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// NewError builds a workflow error of the given kind and step.
func NewError(kind Kind, step string, err error) *Error {
	return &Error{Kind: kind, Step: step, Err: err}
}

// KindOf returns the Kind of err when it is (or wraps) a workflow *Error,
// and KindInternal otherwise.
func KindOf(err error) Kind {
	var we *Error
	if errors.As(err, &we) {
		return we.Kind
	}
	return KindInternal
}
