package main

import (
	"fmt"
	"slices"

	"github.com/spf13/viper"

	"github.com/pdiddy/scholar-digest/pkg/types"
)

// setDefaults registers every config key so that environment variables
// resolve even when no config file is present.
func setDefaults(v *viper.Viper) {
	d := types.DefaultConfig()

	v.SetDefault("search.base_url", d.Search.BaseURL)
	v.SetDefault("search.page_size", d.Search.PageSize)
	v.SetDefault("search.max_pages", d.Search.MaxPages)
	v.SetDefault("search.page_delay", d.Search.PageDelay)
	v.SetDefault("search.min_year", d.Search.MinYear)
	v.SetDefault("search.max_year", d.Search.MaxYear)
	v.SetDefault("search.timeout", d.Search.Timeout)
	v.SetDefault("search.user_agent", d.Search.UserAgent)
	v.SetDefault("search.rate_limit_retries", d.Search.RateLimitRetries)

	v.SetDefault("summary.provider", string(d.Summary.Provider))
	v.SetDefault("summary.model", d.Summary.Model)
	v.SetDefault("summary.base_url", d.Summary.BaseURL)
	v.SetDefault("summary.max_tokens", d.Summary.MaxTokens)
	v.SetDefault("summary.api_key", d.Summary.APIKey)
	v.SetDefault("summary.timeout", d.Summary.Timeout)
	v.SetDefault("summary.user_agent", d.Summary.UserAgent)

	v.SetDefault("credential.store_path", d.Credential.StorePath)
	v.SetDefault("credential.secrets_dir", d.Credential.SecretsDir)

	v.SetDefault("export.format", string(d.Export.Format))
	v.SetDefault("selection.prune_hidden", d.Selection.PruneHidden)

	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.read_timeout", d.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", d.Server.WriteTimeout)
	v.SetDefault("server.shutdown_timeout", d.Server.ShutdownTimeout)
	v.SetDefault("server.session_ttl", d.Server.SessionTTL)
	v.SetDefault("server.allowed_origins", d.Server.AllowedOrigins)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
}

// loadConfig decodes the merged viper settings into a Config.
func loadConfig() (types.Config, error) {
	var c types.Config
	if err := viper.Unmarshal(&c); err != nil {
		return types.Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := validateConfig(c); err != nil {
		return types.Config{}, err
	}
	return c, nil
}

func validateConfig(c types.Config) error {
	if c.Search.MinYear != 0 && c.Search.MaxYear != 0 && c.Search.MinYear > c.Search.MaxYear {
		return fmt.Errorf("search.min_year %d is after search.max_year %d", c.Search.MinYear, c.Search.MaxYear)
	}
	switch c.Summary.Provider {
	case types.ProviderOpenAI, types.ProviderAnthropic:
	default:
		return fmt.Errorf("summary.provider %q: use openai or anthropic", c.Summary.Provider)
	}
	switch c.Export.Format {
	case types.FormatDocx, types.FormatMarkdown:
	default:
		return fmt.Errorf("export.format %q: use docx or markdown", c.Export.Format)
	}
	return nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
