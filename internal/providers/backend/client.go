// Package backend is the HTTP client for the generation backends: job
// submission, video retrieval, and the health probe used by the settings
// connection test.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"studio/internal/domain"
	"studio/internal/settings"
)

const defaultTimeout = 30 * time.Second

type Options struct {
	HTTPClient *http.Client
}

type Client struct {
	client *http.Client
	// stream has no overall timeout: a video download runs as long as the
	// artifact takes to pipe through.
	stream *http.Client
}

func New(opts Options) *Client {
	if opts.HTTPClient != nil {
		return &Client{client: opts.HTTPClient, stream: opts.HTTPClient}
	}
	return &Client{
		client: &http.Client{Timeout: defaultTimeout},
		stream: &http.Client{},
	}
}

type submitResponse struct {
	JobID string `json:"job_id"`
}

// Submit posts the job payload to the backend's generation endpoint and
// returns the issued job id. A response without a job id is a dispatch
// failure; nothing is retried.
func (c *Client) Submit(ctx context.Context, ep settings.Endpoint, job domain.Job) (string, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(job); err != nil {
		return "", fmt.Errorf("backend: encode payload: %w", err)
	}
	endpoint := ep.URL + "/generate?user_key=" + url.QueryEscape(ep.Token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return "", fmt.Errorf("backend: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("backend: submit job: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("backend: submit status %d: %w", resp.StatusCode, domain.ErrDispatchFailed)
	}

	var out submitResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("backend: decode response: %w", domain.ErrDispatchFailed)
	}
	if out.JobID == "" {
		return "", domain.ErrDispatchFailed
	}
	return out.JobID, nil
}

// FetchVideo streams a finished video artifact. The caller owns the returned
// body and must close it.
func (c *Client) FetchVideo(ctx context.Context, ep settings.Endpoint, jobID string) (io.ReadCloser, error) {
	endpoint := ep.URL + "/video/" + url.PathEscape(jobID) + "?user_key=" + url.QueryEscape(ep.Token)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("backend: build request: %w", err)
	}
	resp, err := c.stream.Do(req)
	if err != nil {
		return nil, fmt.Errorf("backend: fetch video: %w", err)
	}
	if resp.StatusCode >= 300 {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("backend: video status %d", resp.StatusCode)
	}
	return resp.Body, nil
}

// Health probes a backend's health endpoint.
func (c *Client) Health(ctx context.Context, ep settings.Endpoint) error {
	endpoint := ep.URL + "/health?user_key=" + url.QueryEscape(ep.Token)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("backend: build request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("backend: health check: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("backend: health status %d", resp.StatusCode)
	}
	return nil
}
