package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/scholar-digest/internal/credential"
	"github.com/pdiddy/scholar-digest/internal/export"
	"github.com/pdiddy/scholar-digest/internal/search"
	"github.com/pdiddy/scholar-digest/pkg/types"
)

var exportCmd = &cobra.Command{
	Use:   "export [query...]",
	Short: "Search and export selected papers as a document",
	Long: `Export runs a search, selects the given result IDs (or every visible result
with --all), and writes the selection to a Word or Markdown document. With
--summarize each entry's abstract is replaced by an AI summary; a failed
summary marks that entry and the rest of the export continues.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExport,
}

func init() {
	addSearchFlags(exportCmd)
	exportCmd.Flags().StringSlice("select", nil, "result IDs to export (repeatable or comma-separated)")
	exportCmd.Flags().Bool("all", false, "export every result visible under --year")
	exportCmd.Flags().Bool("summarize", false, "replace abstracts with AI summaries")
	exportCmd.Flags().String("format", "", "output format: docx or markdown (default from config)")
	exportCmd.Flags().StringP("output", "o", "", "output path (default: ./Selected_Papers_Summary.<ext>)")

	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	c := cfg
	applySearchFlags(cmd, &c.Search)

	year, err := yearFlag(cmd)
	if err != nil {
		return err
	}
	ids, _ := cmd.Flags().GetStringSlice("select")
	all, _ := cmd.Flags().GetBool("all")
	if len(ids) == 0 && !all {
		return fmt.Errorf("%w: pass --select <id> or --all", export.ErrNoSelection)
	}

	format := c.Export.Format
	if f, _ := cmd.Flags().GetString("format"); f != "" {
		format = types.ExportFormat(strings.ToLower(f))
	}
	summarize, _ := cmd.Flags().GetBool("summarize")

	creds, closeCreds, err := exportCredentials(c, summarize)
	if err != nil {
		return err
	}
	defer closeCreds()

	m, _ := newMetrics()
	ctrl := newController(c, m)
	view, err := ctrl.Search(cmd.Context(), strings.Join(args, " "))
	if err != nil {
		if errors.Is(err, search.ErrEmptyQuery) || view.Total == 0 {
			fmt.Fprintln(cmd.ErrOrStderr(), view.Status)
			return err
		}
		logger.Warn().Err(err).Msg("exporting from partial results")
	}
	if year != 0 {
		if _, err := ctrl.SetYearFilter(year); err != nil {
			return err
		}
	}

	if all {
		for _, r := range ctrl.Visible() {
			ids = append(ids, r.ID)
		}
	}
	for _, id := range ids {
		res, err := ctrl.Toggle(strings.TrimSpace(id))
		if err != nil {
			return err
		}
		if !res.Selected {
			// Listed twice; keep it selected.
			_, _ = ctrl.Toggle(res.ID)
		}
	}

	pipeline := newPipeline(c, creds, m)
	art, err := pipeline.Run(cmd.Context(), ctrl.Selected(), export.Options{
		Format:    format,
		Summarize: summarize,
	})
	if err != nil {
		if errors.Is(err, credential.ErrMissingCredential) || errors.Is(err, credential.ErrInvalidCredential) {
			return fmt.Errorf("%w (set one with \"scholar-digest key set\")", err)
		}
		return err
	}

	path, _ := cmd.Flags().GetString("output")
	if path == "" {
		path = art.Filename
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, art.Data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	out := cmd.OutOrStdout()
	for _, e := range art.Entries {
		line := fmt.Sprintf("  %-9s %s  %s", e.Status, e.ID, e.Title)
		if e.Error != "" {
			line += "  (" + e.Error + ")"
		}
		fmt.Fprintln(out, line)
	}
	fmt.Fprintf(out, "Wrote %d entries to %s\n", len(art.Entries), path)
	if n := art.Failed(); n > 0 {
		fmt.Fprintf(out, "%d summaries failed; those entries keep the original abstract.\n", n)
	}
	return nil
}
