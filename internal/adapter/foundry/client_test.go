package foundry_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/consultologist/consultd/internal/adapter/foundry"
	"github.com/consultologist/consultd/internal/domain"
	"github.com/consultologist/consultd/internal/domain/agent"
	"github.com/consultologist/consultd/internal/port/credential"
	"github.com/consultologist/consultd/internal/resilience"
)

func staticToken(token string) credential.Source {
	return credential.SourceFunc(func(context.Context) (string, error) {
		return token, nil
	})
}

func TestCreateThread(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/threads" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Fatalf("unexpected method: %s", r.Method)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer tok-1" {
			t.Fatalf("unexpected auth: %q", auth)
		}
		if got := r.URL.Query().Get("api-version"); got != "2024-12-01-preview" {
			t.Fatalf("unexpected api-version: %q", got)
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(agent.Thread{ID: "thread_abc"})
	}))
	defer srv.Close()

	client := foundry.NewClient(srv.URL, "2024-12-01-preview", staticToken("tok-1"))
	thread, err := client.CreateThread(context.Background())
	if err != nil {
		t.Fatalf("CreateThread: %v", err)
	}
	if thread.ID != "thread_abc" {
		t.Fatalf("thread id = %q", thread.ID)
	}
}

func TestCreateMessageSendsRoleAndContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/threads/thread_1/messages" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body["role"] != "user" || body["content"] != "Hi" {
			t.Fatalf("unexpected body: %v", body)
		}
		_ = json.NewEncoder(w).Encode(agent.Message{ID: "msg_1", ThreadID: "thread_1", Role: "user"})
	}))
	defer srv.Close()

	client := foundry.NewClient(srv.URL, "", nil)
	msg, err := client.CreateMessage(context.Background(), "thread_1", "user", "Hi")
	if err != nil {
		t.Fatalf("CreateMessage: %v", err)
	}
	if msg.ID != "msg_1" {
		t.Fatalf("message id = %q", msg.ID)
	}
}

func TestListMessagesRequestsOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("order"); got != "desc" {
			t.Fatalf("order = %q, want desc", got)
		}
		_ = json.NewEncoder(w).Encode(map[string][]agent.Message{
			"data": {
				{ID: "msg_2", Role: agent.RoleAgent, Content: []agent.ContentPart{{Type: "text", Text: "Hello"}}},
				{ID: "msg_1", Role: agent.RoleUser},
			},
		})
	}))
	defer srv.Close()

	client := foundry.NewClient(srv.URL, "", nil)
	messages, err := client.ListMessages(context.Background(), "thread_1", agent.OrderDescending)
	if err != nil {
		t.Fatalf("ListMessages: %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("got %d messages", len(messages))
	}
	if text, ok := messages[0].FirstText(); !ok || text != "Hello" {
		t.Fatalf("first message text = %q, ok=%v", text, ok)
	}
}

func TestNonSuccessStatusIsUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":"thread not found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	client := foundry.NewClient(srv.URL, "", nil)
	_, err := client.GetRun(context.Background(), "thread_bad", "run_1")
	if err == nil {
		t.Fatal("expected error")
	}

	var we *domain.Error
	if !errors.As(err, &we) || we.Kind != domain.KindUpstream {
		t.Fatalf("expected upstream error, got %v", err)
	}
	if !strings.Contains(err.Error(), "404") || !strings.Contains(err.Error(), "thread not found") {
		t.Fatalf("error should preserve status and body: %v", err)
	}
}

func TestTokenFailureIsAuthenticationError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		t.Fatal("no request should reach the service")
	}))
	defer srv.Close()

	tokens := credential.SourceFunc(func(context.Context) (string, error) {
		return "", errors.New("token endpoint unreachable")
	})
	client := foundry.NewClient(srv.URL, "", tokens)

	_, err := client.CreateThread(context.Background())
	var we *domain.Error
	if !errors.As(err, &we) || we.Kind != domain.KindAuthentication {
		t.Fatalf("expected authentication error, got %v", err)
	}
}

func TestOpenBreakerShortCircuits(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := foundry.NewClient(srv.URL, "", nil)
	client.SetBreaker(resilience.NewBreaker(1, time.Minute))

	_, _ = client.CreateThread(context.Background())
	_, err := client.CreateThread(context.Background())
	if !errors.Is(err, resilience.ErrCircuitOpen) {
		t.Fatalf("expected ErrCircuitOpen, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 upstream call, got %d", calls)
	}
}

func TestCancelRun(t *testing.T) {
	var cancelled bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/threads/thread_1/runs/run_1/cancel" && r.Method == http.MethodPost {
			cancelled = true
			_ = json.NewEncoder(w).Encode(agent.Run{ID: "run_1", Status: agent.StatusCancelled})
			return
		}
		t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
	}))
	defer srv.Close()

	client := foundry.NewClient(srv.URL, "", nil)
	if err := client.CancelRun(context.Background(), "thread_1", "run_1"); err != nil {
		t.Fatalf("CancelRun: %v", err)
	}
	if !cancelled {
		t.Fatal("cancel endpoint was not called")
	}
}
