package nats

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/consultologist/consultd/internal/port/audit"
)

// testConnect connects to NATS or skips the test if NATS_URL is not set.
func testConnect(t *testing.T) *Publisher {
	t.Helper()

	url := os.Getenv("NATS_URL")
	if url == "" {
		t.Skip("requires NATS_URL")
	}

	p, err := Connect(context.Background(), url)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	t.Cleanup(func() {
		if err := p.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	return p
}

func TestPublishAuditEvent(t *testing.T) {
	p := testConnect(t)

	ev := audit.Event{
		InvocationID: uuid.NewString(),
		Workflow:     "chat",
		ThreadID:     "thread_test",
		DurationMS:   1200,
		OccurredAt:   time.Now().UTC(),
	}
	data, err := json.Marshal(ev)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := p.Publish(ctx, audit.SubjectWorkflowCompleted, data); err != nil {
		t.Fatalf("Publish: %v", err)
	}
}
