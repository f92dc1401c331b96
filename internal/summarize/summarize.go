// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package summarize calls a hosted language model to condense a paper
// abstract. Two backends are provided: OpenAI chat completions and the
// Anthropic messages API.
package summarize

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pdiddy/scholar-digest/internal/credential"
	"github.com/pdiddy/scholar-digest/internal/export"
	"github.com/pdiddy/scholar-digest/internal/httputil"
	"github.com/pdiddy/scholar-digest/pkg/types"
)

// Instruction is the fixed system instruction sent with every abstract.
const Instruction = "You are an assistant that summarizes academic papers. " +
	"Summarize the following abstract in three concise sentences for a literature review. " +
	"Reply with the summary text only."

// Default models per provider.
const (
	DefaultOpenAIModel    = "gpt-4o-mini"
	DefaultAnthropicModel = "claude-3-5-haiku-latest"
)

// ErrEmptyAbstract is returned when there is nothing to summarize.
var ErrEmptyAbstract = errors.New("abstract is empty")

// Source builds a summarizer for the configured provider after resolving
// and validating its API key.
type Source struct {
	Config      types.SummaryConfig
	Credentials credential.Provider
	HTTP        *http.Client
}

// Summarizer returns a backend ready to call. An API key set in the config
// takes precedence over the credential providers.
func (s *Source) Summarizer(ctx context.Context) (export.Summarizer, error) {
	providers := credential.Chain{s.Credentials}
	if s.Config.APIKey != "" {
		providers = credential.Chain{
			credential.Static{credential.KeyName(s.provider()): s.Config.APIKey},
			s.Credentials,
		}
	}

	key, err := credential.Resolve(ctx, providers, s.provider())
	if err != nil {
		return nil, err
	}
	return New(s.Config, key, s.HTTP)
}

func (s *Source) provider() types.SummaryProvider {
	if s.Config.Provider == "" {
		return types.ProviderOpenAI
	}
	return s.Config.Provider
}

// New returns the backend for cfg.Provider using key.
func New(cfg types.SummaryConfig, key string, client *http.Client) (export.Summarizer, error) {
	if client == nil {
		client = httputil.NewClient(cfg.Timeout)
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 300
	}

	switch cfg.Provider {
	case types.ProviderOpenAI, "":
		return &OpenAIBackend{
			APIKey:    key,
			Model:     firstNonEmpty(cfg.Model, DefaultOpenAIModel),
			BaseURL:   firstNonEmpty(cfg.BaseURL, openAIURL),
			MaxTokens: maxTokens,
			UserAgent: cfg.UserAgent,
			Client:    client,
		}, nil
	case types.ProviderAnthropic:
		return &AnthropicBackend{
			APIKey:    key,
			Model:     firstNonEmpty(cfg.Model, DefaultAnthropicModel),
			BaseURL:   firstNonEmpty(cfg.BaseURL, anthropicURL),
			MaxTokens: maxTokens,
			UserAgent: cfg.UserAgent,
			Client:    client,
		}, nil
	default:
		return nil, fmt.Errorf("unknown summary provider %q: use openai or anthropic", cfg.Provider)
	}
}

// APIError reports a non-200 response from a summarization endpoint.
type APIError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s API returned %d: %s", e.Provider, e.StatusCode, e.Body)
}

// readAPIError drains a failed response into an APIError.
func readAPIError(provider string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
	return &APIError{Provider: provider, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
