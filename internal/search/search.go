// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search queries the arXiv API page by page and returns the parsed
// records in encounter order.
package search

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/pdiddy/scholar-digest/pkg/types"
)

var (
	// ErrEmptyQuery is returned for a blank query; no request is made.
	ErrEmptyQuery = errors.New("query is empty: provide a search phrase")

	// ErrMalformedResponse wraps decode failures of a page body.
	ErrMalformedResponse = errors.New("malformed arXiv response")
)

// StatusError reports a non-200 response from the API.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("arXiv API returned HTTP %d", e.StatusCode)
}

// Result holds the records gathered by one search.
type Result struct {
	// Records are the accepted records in encounter order.
	Records []types.Record

	// Pages is the number of pages fetched successfully.
	Pages int

	// Dropped counts records rejected by the year range.
	Dropped int

	// Elapsed is the wall time of the search.
	Elapsed time.Duration
}

// FormatTable writes records as a human-readable table to w.
func FormatTable(records []types.Record, w io.Writer) error {
	if len(records) == 0 {
		fmt.Fprintln(w, "No results found.")
		return nil
	}

	table := tablewriter.NewTable(w,
		tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoWrap: tw.WrapNone},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
			Header: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoFormat: tw.On},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
		}),
		tablewriter.WithRendition(tw.Rendition{Borders: tw.BorderNone}),
	)

	rows := make([][]string, 0, len(records))
	for i, r := range records {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			r.ID,
			truncate(r.Title, 60),
			formatAuthors(r.Authors),
			r.YearText(),
		})
	}

	table.Header([]string{"#", "ID", "Title", "Authors", "Year"})
	if err := table.Bulk(rows); err != nil {
		return fmt.Errorf("rendering table: %w", err)
	}
	return table.Render()
}

// FormatJSON writes records as indented JSON to w.
func FormatJSON(records []types.Record, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if records == nil {
		records = []types.Record{}
	}
	return enc.Encode(records)
}

func formatAuthors(authors []string) string {
	switch len(authors) {
	case 0:
		return ""
	case 1:
		return truncate(authors[0], 20)
	default:
		return truncate(authors[0], 14) + " et al."
	}
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
