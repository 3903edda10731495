// Package foundry provides the HTTP client for the remote agent service's
// threads/messages/runs API.
package foundry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/consultologist/consultd/internal/domain"
	"github.com/consultologist/consultd/internal/domain/agent"
	"github.com/consultologist/consultd/internal/port/credential"
	"github.com/consultologist/consultd/internal/resilience"
)

// Client talks to the agent service REST API. Every call acquires a bearer
// token from the injected credential source and honors the caller's context
// deadline.
type Client struct {
	baseURL    string
	apiVersion string
	tokens     credential.Source
	httpClient *http.Client
	breaker    *resilience.Breaker
}

// NewClient creates an agent service client. tokens may be nil for services
// that do not require authentication.
func NewClient(baseURL, apiVersion string, tokens credential.Source) *Client {
	return &Client{
		baseURL:    baseURL,
		apiVersion: apiVersion,
		tokens:     tokens,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SetBreaker attaches a circuit breaker to all outgoing HTTP calls.
func (c *Client) SetBreaker(b *resilience.Breaker) {
	c.breaker = b
}

// CreateThread creates a new empty conversation thread.
func (c *Client) CreateThread(ctx context.Context) (*agent.Thread, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/threads", nil)
	if err != nil {
		return nil, err
	}

	var thread agent.Thread
	if err := json.Unmarshal(resp, &thread); err != nil {
		return nil, upstreamErr(fmt.Errorf("unmarshal thread: %w", err))
	}
	return &thread, nil
}

// CreateMessage appends a message to the thread.
func (c *Client) CreateMessage(ctx context.Context, threadID, role, content string) (*agent.Message, error) {
	body, err := json.Marshal(map[string]string{"role": role, "content": content})
	if err != nil {
		return nil, upstreamErr(fmt.Errorf("marshal message: %w", err))
	}

	resp, err := c.doRequest(ctx, http.MethodPost, "/threads/"+url.PathEscape(threadID)+"/messages", body)
	if err != nil {
		return nil, err
	}

	var msg agent.Message
	if err := json.Unmarshal(resp, &msg); err != nil {
		return nil, upstreamErr(fmt.Errorf("unmarshal message: %w", err))
	}
	return &msg, nil
}

// CreateRun starts an asynchronous run of the agent against the thread.
func (c *Client) CreateRun(ctx context.Context, threadID, agentID string) (*agent.Run, error) {
	body, err := json.Marshal(map[string]string{"agent_id": agentID})
	if err != nil {
		return nil, upstreamErr(fmt.Errorf("marshal run: %w", err))
	}

	resp, err := c.doRequest(ctx, http.MethodPost, "/threads/"+url.PathEscape(threadID)+"/runs", body)
	if err != nil {
		return nil, err
	}

	var run agent.Run
	if err := json.Unmarshal(resp, &run); err != nil {
		return nil, upstreamErr(fmt.Errorf("unmarshal run: %w", err))
	}
	return &run, nil
}

// GetRun fetches the current state of a run.
func (c *Client) GetRun(ctx context.Context, threadID, runID string) (*agent.Run, error) {
	path := "/threads/" + url.PathEscape(threadID) + "/runs/" + url.PathEscape(runID)
	resp, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var run agent.Run
	if err := json.Unmarshal(resp, &run); err != nil {
		return nil, upstreamErr(fmt.Errorf("unmarshal run: %w", err))
	}
	return &run, nil
}

// CancelRun requests cancellation of a non-terminal run.
func (c *Client) CancelRun(ctx context.Context, threadID, runID string) error {
	path := "/threads/" + url.PathEscape(threadID) + "/runs/" + url.PathEscape(runID) + "/cancel"
	_, err := c.doRequest(ctx, http.MethodPost, path, nil)
	return err
}

// ListMessages returns the thread's messages in the requested order.
func (c *Client) ListMessages(ctx context.Context, threadID string, order agent.ListOrder) ([]agent.Message, error) {
	path := "/threads/" + url.PathEscape(threadID) + "/messages?order=" + url.QueryEscape(string(order))
	resp, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var result struct {
		Data []agent.Message `json:"data"`
	}
	if err := json.Unmarshal(resp, &result); err != nil {
		return nil, upstreamErr(fmt.Errorf("unmarshal messages: %w", err))
	}
	return result.Data, nil
}

func (c *Client) doRequest(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	token := ""
	if c.tokens != nil {
		t, err := c.tokens.Token(ctx)
		if err != nil {
			return nil, &domain.Error{Kind: domain.KindAuthentication, Err: fmt.Errorf("acquire token: %w", err)}
		}
		token = t
	}

	var result []byte
	call := func() error {
		var bodyReader io.Reader
		if body != nil {
			bodyReader = bytes.NewReader(body)
		}

		req, err := http.NewRequestWithContext(ctx, method, c.requestURL(path), bodyReader)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}

		req.Header.Set("Content-Type", "application/json")
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("http request: %w", err)
		}
		defer func() { _ = resp.Body.Close() }()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read response: %w", err)
		}

		if resp.StatusCode >= 400 {
			// Status and body are preserved for diagnostics.
			return fmt.Errorf("agent service error %d: %s", resp.StatusCode, string(data))
		}

		result = data
		return nil
	}

	if c.breaker != nil {
		if err := c.breaker.Execute(call); err != nil {
			return nil, upstreamErr(err)
		}
		return result, nil
	}

	if err := call(); err != nil {
		return nil, upstreamErr(err)
	}
	return result, nil
}

// requestURL appends the configured api-version query parameter when set.
func (c *Client) requestURL(path string) string {
	full := c.baseURL + path
	if c.apiVersion == "" {
		return full
	}
	sep := "?"
	if u, err := url.Parse(full); err == nil && u.RawQuery != "" {
		sep = "&"
	}
	return full + sep + "api-version=" + url.QueryEscape(c.apiVersion)
}

func upstreamErr(err error) *domain.Error {
	return &domain.Error{Kind: domain.KindUpstream, Err: err}
}
