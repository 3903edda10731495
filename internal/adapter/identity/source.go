// Package identity implements the credential source port with an OAuth2
// client-credentials flow against the agent service's token endpoint.
package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/consultologist/consultd/internal/config"
	"github.com/consultologist/consultd/internal/port/cache"
)

const tokenCacheKey = "identity.bearer_token"

// Source acquires bearer tokens and caches them until shortly before expiry.
// Concurrent invocations share one in-flight token request.
type Source struct {
	cfg        config.Identity
	cache      cache.Cache
	httpClient *http.Client
	group      singleflight.Group
}

// New creates a token source. The cache may be nil, in which case every
// invocation fetches a fresh token.
func New(cfg config.Identity, c cache.Cache) *Source {
	return &Source{
		cfg:   cfg,
		cache: c,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Token returns a cached bearer token, fetching a new one when the cache
// misses. The context deadline bounds the fetch.
func (s *Source) Token(ctx context.Context) (string, error) {
	if s.cache != nil {
		if data, ok, err := s.cache.Get(ctx, tokenCacheKey); err == nil && ok {
			return string(data), nil
		}
	}

	v, err, _ := s.group.Do(tokenCacheKey, func() (any, error) {
		return s.fetch(ctx)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// fetch performs the client-credentials exchange and populates the cache.
func (s *Source) fetch(ctx context.Context) (string, error) {
	if s.cfg.TokenURL == "" {
		return "", fmt.Errorf("identity token_url is not configured")
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", s.cfg.ClientID)
	form.Set("client_secret", s.cfg.ClientSecret)
	if s.cfg.Scope != "" {
		form.Set("scope", s.cfg.Scope)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.TokenURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read token response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("token endpoint error %d: %s", resp.StatusCode, string(data))
	}

	var body struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return "", fmt.Errorf("unmarshal token response: %w", err)
	}
	if body.AccessToken == "" {
		return "", fmt.Errorf("token endpoint returned no access_token")
	}

	if s.cache != nil {
		ttl := time.Duration(body.ExpiresIn)*time.Second - s.cfg.RefreshSlack
		if ttl > 0 {
			_ = s.cache.Set(ctx, tokenCacheKey, []byte(body.AccessToken), ttl)
		}
	}
	return body.AccessToken, nil
}
