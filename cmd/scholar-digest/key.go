package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/scholar-digest/internal/credential"
)

var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "Manage the summarization API key",
	Long: `Key stores, clears, or shows the API key used for AI summaries. The key is
checked against the provider's prefix (sk- for OpenAI, sk-ant- for Anthropic)
and kept in a local SQLite store. A file named <provider>-api-key in the
secrets directory takes precedence.`,
}

var keySetCmd = &cobra.Command{
	Use:   "set <key>",
	Short: "Store the API key for the configured provider",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := strings.TrimSpace(args[0])
		if err := credential.Validate(cfg.Summary.Provider, key); err != nil {
			return err
		}
		store, err := credential.OpenStore(storePath(cfg))
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.Set(cmd.Context(), credential.KeyName(cfg.Summary.Provider), key); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Stored %s key %s\n", cfg.Summary.Provider, credential.Mask(key))
		return nil
	},
}

var keyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the stored API key for the configured provider",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := credential.OpenStore(storePath(cfg))
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.Clear(cmd.Context(), credential.KeyName(cfg.Summary.Provider)); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Cleared %s key\n", cfg.Summary.Provider)
		return nil
	},
}

var keyShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show which API key would be used, masked",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		chain, store, err := openCredentials(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		providers := credential.Chain{chain}
		if cfg.Summary.APIKey != "" {
			providers = credential.Chain{credential.Static{credential.KeyName(cfg.Summary.Provider): cfg.Summary.APIKey}, chain}
		}
		key, err := credential.Resolve(cmd.Context(), providers, cfg.Summary.Provider)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", cfg.Summary.Provider, credential.Mask(key))
		if ts, ok, err := store.UpdatedAt(cmd.Context(), credential.KeyName(cfg.Summary.Provider)); err == nil && ok {
			fmt.Fprintf(cmd.OutOrStdout(), "stored: %s\n", ts.Local().Format("2006-01-02 15:04"))
		}
		return nil
	},
}

func init() {
	keyCmd.AddCommand(keySetCmd, keyClearCmd, keyShowCmd)
	rootCmd.AddCommand(keyCmd)
}
