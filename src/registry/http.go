package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"
)

// httpClient wraps a standard http.Client with convenience helpers.
type httpClient struct {
	client  *http.Client
	authEnv string // env var holding a Bearer token ("" = anonymous)
}

// newHTTPClient creates a client with the given timeout in seconds.
func newHTTPClient(timeoutSecs int, authEnv string) *httpClient {
	if timeoutSecs <= 0 {
		timeoutSecs = 10
	}
	return &httpClient{
		client: &http.Client{
			Timeout: time.Duration(timeoutSecs) * time.Second,
		},
		authEnv: authEnv,
	}
}

// fetchJSON GETs a URL and decodes the response body into result.
// If the client has an auth env var, the resolved token is sent as a
// Bearer header.
func (h *httpClient) fetchJSON(ctx context.Context, url string, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("registry: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	h.applyAuth(req)

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("registry: GET %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("registry: GET %s: %w", url, ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("registry: GET %s: status %d", url, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("registry: decode %s: %w", url, err)
	}
	return nil
}

// applyAuth sets a Bearer token from the configured env var.
func (h *httpClient) applyAuth(req *http.Request) {
	if h.authEnv == "" {
		return
	}
	if token := os.Getenv(h.authEnv); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}
