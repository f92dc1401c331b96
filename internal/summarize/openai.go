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

const openAIURL = "https://api.openai.com/v1/chat/completions"

// OpenAIBackend calls the OpenAI chat completions API.
type OpenAIBackend struct {
	APIKey    string
	Model     string
	BaseURL   string
	MaxTokens int
	UserAgent string
	Client    *http.Client
}

type openAIRequest struct {
	Model     string          `json:"model"`
	Messages  []openAIMessage `json:"messages"`
	MaxTokens int             `json:"max_tokens,omitempty"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIResponse struct {
	Choices []struct {
		Message openAIMessage `json:"message"`
	} `json:"choices"`
}

// Summarize sends the abstract as user content under the fixed instruction.
func (b *OpenAIBackend) Summarize(ctx context.Context, abstract string) (string, error) {
	if strings.TrimSpace(abstract) == "" {
		return "", ErrEmptyAbstract
	}

	bodyBytes, err := json.Marshal(openAIRequest{
		Model: b.Model,
		Messages: []openAIMessage{
			{Role: "system", Content: Instruction},
			{Role: "user", Content: abstract},
		},
		MaxTokens: b.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.BaseURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+b.APIKey)
	if b.UserAgent != "" {
		req.Header.Set("User-Agent", b.UserAgent)
	}

	client := b.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling OpenAI API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", readAPIError("OpenAI", resp)
	}

	var oResp openAIResponse
	if err := json.NewDecoder(resp.Body).Decode(&oResp); err != nil {
		return "", fmt.Errorf("decoding OpenAI response: %w", err)
	}

	for _, c := range oResp.Choices {
		if text := strings.TrimSpace(c.Message.Content); text != "" {
			return text, nil
		}
	}
	return "", fmt.Errorf("OpenAI API returned no text")
}
