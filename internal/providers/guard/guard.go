// Package guard calls an external moderation model to approve or reject a
// prompt before it is dispatched to a generation backend.
package guard

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

// approvedContent is the only moderation answer that passes a prompt. The
// policy is an exact match: case variants, punctuation, or an explanation
// around an otherwise safe verdict all count as rejections.
const approvedContent = "No"

type Options struct {
	HTTPClient *http.Client
}

// Checker is the prompt moderation gate. Endpoint configuration is passed per
// call so every check sees the current settings.
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

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Check submits the prompt to the moderation endpoint and reports whether it
// was rejected. External call failures are returned to the caller; nothing is
// retried here.
func (c *Checker) Check(ctx context.Context, cfg settings.GuardConfig, prompt string) (bool, error) {
	payload := chatRequest{
		Model:       cfg.Model,
		Temperature: cfg.Temperature,
		Messages: []chatMessage{
			{Role: "user", Content: cfg.PromptPrefix + " " + prompt},
		},
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		return false, fmt.Errorf("guard: encode request: %w", err)
	}
	endpoint := cfg.URL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return false, fmt.Errorf("guard: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+cfg.Token)

	resp, err := c.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("guard: call endpoint: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 300 {
		return false, fmt.Errorf("guard: endpoint status %d", resp.StatusCode)
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return false, fmt.Errorf("guard: decode response: %w", err)
	}
	content := ""
	if len(out.Choices) > 0 {
		content = out.Choices[0].Message.Content
	}
	return content != approvedContent, nil
}
