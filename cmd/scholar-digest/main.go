// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the scholar-digest CLI. It searches
// arXiv, exports selected papers as a document with optional AI summaries,
// and serves the same flow as a JSON API for a browser page.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/scholar-digest/internal/credential"
	"github.com/pdiddy/scholar-digest/internal/observability"
	"github.com/pdiddy/scholar-digest/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// cfg and logger are populated before any subcommand runs.
var (
	cfg    types.Config
	logger zerolog.Logger
)

// rootCmd is the base command for the scholar-digest CLI.
var rootCmd = &cobra.Command{
	Use:   "scholar-digest",
	Short: "Search arXiv and export selected papers as a summarized document",
	Long: `scholar-digest queries the arXiv API, lets you pick results, and exports
the selection as a Word or Markdown document. Each entry carries the paper's
abstract or, with --summarize, a short AI-generated summary.

Use "search" to look at results, "export" to build a document in one step,
and "serve" to run the JSON API behind the browser page.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadConfig()
		if err != nil {
			return err
		}
		cfg = c
		logger = observability.NewLogger(cfg.Log, cmd.ErrOrStderr())

		s, err := credential.Load(cfg.Credential.SecretsDir, logger)
		if err != nil {
			return err
		}
		if len(s) > 0 {
			logger.Debug().Strs("secrets", sortedKeys(s)).Msg("loaded secrets")
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)
	setDefaults(viper.GetViper())

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./scholar-digest.yaml or ~/.config/scholar-digest/scholar-digest.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "", "log format: console or json")

	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("scholar-digest")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "scholar-digest"))
		}
	}

	viper.SetEnvPrefix("SCHOLAR_DIGEST")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
