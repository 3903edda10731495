package resilience

import (
	"errors"
	"testing"
	"time"
)

var errRemote = errors.New("remote failure")

func failing() error { return errRemote }
func ok() error      { return nil }

func TestBreakerOpensAfterMaxFailures(t *testing.T) {
	b := NewBreaker(3, time.Minute)

	for range 3 {
		if err := b.Execute(failing); !errors.Is(err, errRemote) {
			t.Fatalf("expected remote error, got %v", err)
		}
	}

	if err := b.Execute(ok); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected ErrCircuitOpen, got %v", err)
	}
}

func TestBreakerSuccessResetsFailureCount(t *testing.T) {
	b := NewBreaker(3, time.Minute)

	_ = b.Execute(failing)
	_ = b.Execute(failing)
	if err := b.Execute(ok); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	_ = b.Execute(failing)
	_ = b.Execute(failing)

	// Still closed: the success reset the streak.
	if err := b.Execute(ok); err != nil {
		t.Fatalf("expected circuit still closed, got %v", err)
	}
}

func TestBreakerHalfOpenProbe(t *testing.T) {
	clock := time.Now()
	b := NewBreaker(1, 30*time.Second)
	b.now = func() time.Time { return clock }

	_ = b.Execute(failing)
	if err := b.Execute(ok); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected open circuit, got %v", err)
	}

	// After the cooldown a single probe is allowed through.
	clock = clock.Add(31 * time.Second)
	if err := b.Execute(ok); err != nil {
		t.Fatalf("expected probe to pass, got %v", err)
	}

	// Probe success closed the circuit again.
	if err := b.Execute(ok); err != nil {
		t.Fatalf("expected closed circuit, got %v", err)
	}
}

func TestBreakerFailedProbeReopens(t *testing.T) {
	clock := time.Now()
	b := NewBreaker(1, 30*time.Second)
	b.now = func() time.Time { return clock }

	_ = b.Execute(failing)
	clock = clock.Add(31 * time.Second)
	if err := b.Execute(failing); !errors.Is(err, errRemote) {
		t.Fatalf("expected remote error from probe, got %v", err)
	}

	if err := b.Execute(ok); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected reopened circuit, got %v", err)
	}
}
