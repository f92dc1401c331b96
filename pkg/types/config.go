package types

import "time"

// HTTPConfig holds shared HTTP settings used by clients that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "scholar-digest/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// SearchConfig holds settings for the remote search client.
type SearchConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// BaseURL is the arXiv query endpoint.
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url"`

	// PageSize is the max_results value per page (default 200, capped at 2000).
	PageSize int `json:"page_size" yaml:"page_size" mapstructure:"page_size"`

	// MaxPages bounds the number of sequential page requests (default 5).
	MaxPages int `json:"max_pages" yaml:"max_pages" mapstructure:"max_pages"`

	// PageDelay is the pause between page requests (default 200ms).
	PageDelay time.Duration `json:"page_delay" yaml:"page_delay" mapstructure:"page_delay"`

	// MinYear and MaxYear bound the accepted publication years. When both
	// are zero no year filtering is applied.
	MinYear int `json:"min_year" yaml:"min_year" mapstructure:"min_year"`
	MaxYear int `json:"max_year" yaml:"max_year" mapstructure:"max_year"`

	// RateLimitRetries is the number of retries on HTTP 429 (default 0: none).
	RateLimitRetries int `json:"rate_limit_retries" yaml:"rate_limit_retries" mapstructure:"rate_limit_retries"`
}

// YearFiltered reports whether a year range is configured.
func (c SearchConfig) YearFiltered() bool {
	return c.MinYear != 0 || c.MaxYear != 0
}

// AcceptsYear reports whether a record year passes the configured range.
// Records without a year (0) are always accepted.
func (c SearchConfig) AcceptsYear(year int) bool {
	if year == 0 || !c.YearFiltered() {
		return true
	}
	if c.MinYear != 0 && year < c.MinYear {
		return false
	}
	if c.MaxYear != 0 && year > c.MaxYear {
		return false
	}
	return true
}

// SummaryProvider identifies the summarization API.
type SummaryProvider string

const (
	ProviderOpenAI    SummaryProvider = "openai"
	ProviderAnthropic SummaryProvider = "anthropic"
)

// SummaryConfig holds settings for the AI summarization collaborator.
type SummaryConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// Provider selects the API: openai or anthropic.
	Provider SummaryProvider `json:"provider" yaml:"provider" mapstructure:"provider"`

	// Model is the model identifier sent with each request. Empty selects
	// the provider's default model.
	Model string `json:"model" yaml:"model" mapstructure:"model"`

	// BaseURL overrides the provider endpoint.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty" mapstructure:"base_url"`

	// MaxTokens bounds the generated summary length.
	MaxTokens int `json:"max_tokens" yaml:"max_tokens" mapstructure:"max_tokens"`

	// APIKey is an explicit credential; empty means consult the credential providers.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`
}

// CredentialConfig locates the persisted credential sources.
type CredentialConfig struct {
	// StorePath is the sqlite file holding persisted credentials.
	StorePath string `json:"store_path" yaml:"store_path" mapstructure:"store_path"`

	// SecretsDir is a directory of one-file-per-key secrets.
	SecretsDir string `json:"secrets_dir" yaml:"secrets_dir" mapstructure:"secrets_dir"`
}

// ExportFormat selects the document builder.
type ExportFormat string

const (
	FormatDocx     ExportFormat = "docx"
	FormatMarkdown ExportFormat = "markdown"
)

// ExportConfig holds export pipeline settings.
type ExportConfig struct {
	// Format selects the document builder: docx or markdown.
	Format ExportFormat `json:"format" yaml:"format" mapstructure:"format"`
}

// SelectionConfig controls how selections react to the year filter.
type SelectionConfig struct {
	// PruneHidden drops selections hidden by a newly applied year filter.
	PruneHidden bool `json:"prune_hidden" yaml:"prune_hidden" mapstructure:"prune_hidden"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr        string        `json:"addr" yaml:"addr" mapstructure:"addr"`
	ReadTimeout time.Duration `json:"read_timeout" yaml:"read_timeout" mapstructure:"read_timeout"`

	// WriteTimeout bounds a response. A summarized export extends it by
	// summary.timeout per selected record.
	WriteTimeout    time.Duration `json:"write_timeout" yaml:"write_timeout" mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout" yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"`

	// SessionTTL expires idle sessions.
	SessionTTL time.Duration `json:"session_ttl" yaml:"session_ttl" mapstructure:"session_ttl"`

	// AllowedOrigins lists the browser origins allowed to call the API with
	// the session cookie. Entries may hold one wildcard ("http://localhost:*").
	// A bare "*" allows any origin but disables cookies; such pages carry
	// the session in the X-Session-ID header instead.
	AllowedOrigins []string `json:"allowed_origins" yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// Format is json or console.
	Format string `json:"format" yaml:"format" mapstructure:"format"`
}

// Config groups every section of the application configuration.
type Config struct {
	Search     SearchConfig     `json:"search" yaml:"search" mapstructure:"search"`
	Summary    SummaryConfig    `json:"summary" yaml:"summary" mapstructure:"summary"`
	Credential CredentialConfig `json:"credential" yaml:"credential" mapstructure:"credential"`
	Export     ExportConfig     `json:"export" yaml:"export" mapstructure:"export"`
	Selection  SelectionConfig  `json:"selection" yaml:"selection" mapstructure:"selection"`
	Server     ServerConfig     `json:"server" yaml:"server" mapstructure:"server"`
	Log        LogConfig        `json:"log" yaml:"log" mapstructure:"log"`
}

// DefaultUserAgent is sent with outbound requests unless configured otherwise.
const DefaultUserAgent = "scholar-digest/0.1"

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		Search: SearchConfig{
			HTTPConfig: HTTPConfig{Timeout: 30 * time.Second, UserAgent: DefaultUserAgent},
			BaseURL:    "https://export.arxiv.org/api/query",
			PageSize:   200,
			MaxPages:   5,
			PageDelay:  200 * time.Millisecond,
			MinYear:    2010,
			MaxYear:    2026,
		},
		Summary: SummaryConfig{
			HTTPConfig: HTTPConfig{Timeout: 60 * time.Second, UserAgent: DefaultUserAgent},
			Provider:   ProviderOpenAI,
			MaxTokens:  300,
		},
		Credential: CredentialConfig{
			StorePath:  "",
			SecretsDir: ".secrets",
		},
		Export: ExportConfig{Format: FormatDocx},
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    5 * time.Minute,
			ShutdownTimeout: 10 * time.Second,
			SessionTTL:      2 * time.Hour,
			AllowedOrigins:  []string{"http://localhost:*", "http://127.0.0.1:*"},
		},
		Log: LogConfig{Level: "info", Format: "console"},
	}
}
