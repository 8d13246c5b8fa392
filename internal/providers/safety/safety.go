// Package safety calls an external classifier on a single generated frame.
package safety

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"studio/internal/settings"
)

const defaultTimeout = 15 * time.Second

type Options struct {
	HTTPClient *http.Client
}

// Checker is the image safety gate over a KServe v2 inference endpoint.
type Checker struct {
	client *http.Client
}

func New(opts Options) *Checker {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &Checker{client: client}
}

type inferRequest struct {
	Inputs []inferInput `json:"inputs"`
}

type inferInput struct {
	Name     string   `json:"name"`
	Shape    []int    `json:"shape"`
	Datatype string   `json:"datatype"`
	Data     []string `json:"data"`
}

type inferResponse struct {
	Outputs []struct {
		Data []bool `json:"data"`
	} `json:"outputs"`
}

// Classify reports whether the image is unsafe. The endpoint answers with a
// single boolean tensor; if that output is missing or malformed the result is
// unsafe=true. Failing closed here is deliberate: an ambiguous verdict must
// never let a frame through.
func (c *Checker) Classify(ctx context.Context, cfg settings.SafetyCheckConfig, image string) (bool, error) {
	payload := inferRequest{
		Inputs: []inferInput{
			{Name: "image", Shape: []int{1, 1}, Datatype: "String", Data: []string{image}},
		},
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		return false, fmt.Errorf("safety: encode request: %w", err)
	}
	endpoint := cfg.URL + "/v2/models/" + cfg.Model + "/infer"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return false, fmt.Errorf("safety: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+cfg.Token)

	resp, err := c.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("safety: call endpoint: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 300 {
		return false, fmt.Errorf("safety: endpoint status %d", resp.StatusCode)
	}

	var out inferResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return true, nil
	}
	if len(out.Outputs) == 0 || len(out.Outputs[0].Data) == 0 {
		return true, nil
	}
	return out.Outputs[0].Data[0], nil
}
