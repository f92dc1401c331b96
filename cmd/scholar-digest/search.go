package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/scholar-digest/internal/search"
	"github.com/pdiddy/scholar-digest/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search [query...]",
	Short: "Search arXiv for papers",
	Long: `Search pages through the arXiv API for papers matching a free-text query.
Results outside the configured year range are dropped. Each result gets an ID
that "export --select" accepts.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	addSearchFlags(searchCmd)
	searchCmd.Flags().Bool("json", false, "output results as JSON")
	searchCmd.Flags().Bool("csl", false, "output results as a CSL-YAML bibliography")

	rootCmd.AddCommand(searchCmd)
}

// addSearchFlags registers the flags shared by search and export.
func addSearchFlags(cmd *cobra.Command) {
	cmd.Flags().Int("max-pages", 0, "maximum result pages to fetch (default 5)")
	cmd.Flags().Int("page-size", 0, "results per page, at most 2000 (default 200)")
	cmd.Flags().Int("min-year", 0, "earliest accepted publication year")
	cmd.Flags().Int("max-year", 0, "latest accepted publication year")
	cmd.Flags().Bool("no-year-range", false, "keep results from every year")
	cmd.Flags().String("year", "", "show only results from this year (\"all\" for every year)")
}

// applySearchFlags overrides config values with flags the user set.
func applySearchFlags(cmd *cobra.Command, sc *types.SearchConfig) {
	if cmd.Flags().Changed("max-pages") {
		sc.MaxPages, _ = cmd.Flags().GetInt("max-pages")
	}
	if cmd.Flags().Changed("page-size") {
		sc.PageSize, _ = cmd.Flags().GetInt("page-size")
	}
	if cmd.Flags().Changed("min-year") {
		sc.MinYear, _ = cmd.Flags().GetInt("min-year")
	}
	if cmd.Flags().Changed("max-year") {
		sc.MaxYear, _ = cmd.Flags().GetInt("max-year")
	}
	if noRange, _ := cmd.Flags().GetBool("no-year-range"); noRange {
		sc.MinYear, sc.MaxYear = 0, 0
	}
}

// yearFlag parses --year; empty and "all" mean no filter.
func yearFlag(cmd *cobra.Command) (int, error) {
	raw, _ := cmd.Flags().GetString("year")
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, "all") {
		return 0, nil
	}
	var year int
	if _, err := fmt.Sscanf(raw, "%d", &year); err != nil || year <= 0 {
		return 0, fmt.Errorf("--year must be a year or \"all\", got %q", raw)
	}
	return year, nil
}

func runSearch(cmd *cobra.Command, args []string) error {
	c := cfg
	applySearchFlags(cmd, &c.Search)

	year, err := yearFlag(cmd)
	if err != nil {
		return err
	}

	m, _ := newMetrics()
	ctrl := newController(c, m)
	view, searchErr := ctrl.Search(cmd.Context(), strings.Join(args, " "))
	if errors.Is(searchErr, search.ErrEmptyQuery) {
		return searchErr
	}

	if year != 0 {
		if view, err = ctrl.SetYearFilter(year); err != nil {
			return err
		}
	}
	fmt.Fprintln(cmd.ErrOrStderr(), view.Status)
	if searchErr != nil && view.Total == 0 {
		return searchErr
	}

	records := ctrl.Visible()
	out := cmd.OutOrStdout()
	asJSON, _ := cmd.Flags().GetBool("json")
	asCSL, _ := cmd.Flags().GetBool("csl")
	switch {
	case asJSON:
		err = search.FormatJSON(records, out)
	case asCSL:
		err = search.FormatCSL(records, out)
	default:
		err = search.FormatTable(records, out)
		if err == nil && len(view.YearOptions) > 1 {
			labels := make([]string, 0, len(view.YearOptions))
			for _, o := range view.YearOptions {
				labels = append(labels, o.Label)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Years: %s\n", strings.Join(labels, ", "))
		}
	}
	if err != nil {
		return err
	}
	return searchErr
}
