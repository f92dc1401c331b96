// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package summarize

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

const (
	anthropicURL     = "https://api.anthropic.com/v1/messages"
	anthropicVersion = "2023-06-01"
)

// AnthropicBackend calls the Anthropic messages API.
type AnthropicBackend struct {
	APIKey    string
	Model     string
	BaseURL   string
	MaxTokens int
	UserAgent string
	Client    *http.Client
}

// anthropicRequest is the request body for the Messages API.
type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system,omitempty"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []anthropicContent `json:"content"`
}

type anthropicContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Summarize sends the abstract as the user message with the instruction as
// the system prompt.
func (b *AnthropicBackend) Summarize(ctx context.Context, abstract string) (string, error) {
	if strings.TrimSpace(abstract) == "" {
		return "", ErrEmptyAbstract
	}

	bodyBytes, err := json.Marshal(anthropicRequest{
		Model:     b.Model,
		MaxTokens: b.MaxTokens,
		System:    Instruction,
		Messages: []anthropicMessage{
			{Role: "user", Content: abstract},
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.BaseURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", b.APIKey)
	req.Header.Set("anthropic-version", anthropicVersion)
	if b.UserAgent != "" {
		req.Header.Set("User-Agent", b.UserAgent)
	}

	client := b.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling Anthropic API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", readAPIError("Anthropic", resp)
	}

	var aResp anthropicResponse
	if err := json.NewDecoder(resp.Body).Decode(&aResp); err != nil {
		return "", fmt.Errorf("decoding Anthropic response: %w", err)
	}

	var parts []string
	for _, block := range aResp.Content {
		if block.Type == "text" && strings.TrimSpace(block.Text) != "" {
			parts = append(parts, strings.TrimSpace(block.Text))
		}
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("no text content in Anthropic API response")
	}
	return strings.Join(parts, "\n"), nil
}
