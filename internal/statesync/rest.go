package statesync

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// RESTClient is a thin control-plane HTTP client. Every call is best-effort:
// callers are expected to log and continue on error rather than fail a run.
type RESTClient struct {
	baseURL string
	http    *http.Client
}

// NewRESTClient constructs a RESTClient against baseURL (e.g.
// "http://control-plane:8080").
func NewRESTClient(baseURL string) *RESTClient {
	return &RESTClient{baseURL: baseURL, http: &http.Client{}}
}

// Patch issues a PATCH with a JSON body, bounded by timeout.
func (c *RESTClient) Patch(ctx context.Context, path string, body map[string]any, timeout time.Duration) error {
	_, err := c.do(ctx, http.MethodPatch, path, body, timeout)
	return err
}

// PostForID issues a POST with a JSON body, bounded by timeout, and returns
// the "id" field of a 201 response body (empty string otherwise).
func (c *RESTClient) PostForID(ctx context.Context, path string, body map[string]any, timeout time.Duration) (string, error) {
	resp, err := c.do(ctx, http.MethodPost, path, body, timeout)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		return "", nil
	}

	var parsed struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", nil
	}
	return parsed.ID, nil
}

func (c *RESTClient) do(ctx context.Context, method, path string, body map[string]any, timeout time.Duration) (*http.Response, error) {
	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(encoded))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	return c.http.Do(req)
}
