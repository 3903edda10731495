package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorMessageIncludesKindAndStep(t *testing.T) {
	err := NewError(KindUpstream, "create_thread", errors.New("status 503"))
	want := "upstream error at create_thread: status 503"
	if err.Error() != want {
		t.Fatalf("got %q, want %q", err.Error(), want)
	}
}

func TestKindOfUnwrapsNestedErrors(t *testing.T) {
	inner := NewError(KindTimeout, "poll_run", errors.New("attempts exhausted"))
	wrapped := fmt.Errorf("workflow: %w", inner)

	if got := KindOf(wrapped); got != KindTimeout {
		t.Fatalf("KindOf = %q, want %q", got, KindTimeout)
	}
}

func TestKindOfDefaultsToInternal(t *testing.T) {
	if got := KindOf(errors.New("boom")); got != KindInternal {
		t.Fatalf("KindOf = %q, want %q", got, KindInternal)
	}
}

func TestUnwrapExposesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewError(KindUpstream, "submit_message", cause)
	if !errors.Is(err, cause) {
		t.Fatal("expected errors.Is to find the cause")
	}
}
