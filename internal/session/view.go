// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package session

import (
	"html"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/pdiddy/scholar-digest/pkg/types"
)

// AllYears is the filter option label for "no filter".
const AllYears = "All"

// textPolicy strips every tag from upstream text before display.
var textPolicy = bluemonday.StrictPolicy()

// Card is the display form of one record.
type Card struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Meta     string `json:"meta"`
	Summary  string `json:"summary"`
	URL      string `json:"url"`
	Year     int    `json:"year,omitempty"`
	Selected bool   `json:"selected"`
}

// YearOption is one entry of the year filter dropdown. Value is "all" or
// the year as text.
type YearOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// View is the rendered projection of a session's state.
type View struct {
	Query      string `json:"query"`
	Generation uint64 `json:"generation"`
	Searching  bool   `json:"searching"`
	Status     string `json:"status"`
	Error      string `json:"error,omitempty"`

	// YearFilter is the active year, or 0 for all years.
	YearFilter  int          `json:"year_filter,omitempty"`
	YearOptions []YearOption `json:"year_options"`

	Cards []Card `json:"cards"`
	Total int    `json:"total"`

	Selected int `json:"selected"`

	// HiddenSelected counts selected records the year filter hides.
	HiddenSelected int `json:"hidden_selected"`

	// ExportVisible is true whenever the selection is non-empty.
	ExportVisible bool `json:"export_visible"`
}

// Render projects the cache through the year filter into cards.
func Render(cache *Cache, sel *Selection, year int) View {
	v := View{
		YearFilter:  year,
		YearOptions: YearOptions(cache.Years()),
		Cards:       []Card{},
		Total:       cache.Len(),
		Selected:    sel.Len(),
	}

	for _, r := range cache.Filter(year) {
		v.Cards = append(v.Cards, NewCard(r, sel.Has(r.ID)))
	}

	if year != 0 {
		for _, r := range cache.Records() {
			if r.Year != year && sel.Has(r.ID) {
				v.HiddenSelected++
			}
		}
	}

	v.ExportVisible = v.Selected > 0
	return v
}

// YearOptions returns the dropdown entries: All followed by years as given.
func YearOptions(years []int) []YearOption {
	opts := make([]YearOption, 0, len(years)+1)
	opts = append(opts, YearOption{Value: "all", Label: AllYears})
	for _, y := range years {
		s := strconv.Itoa(y)
		opts = append(opts, YearOption{Value: s, Label: s})
	}
	return opts
}

// NewCard builds the display form of r with markup stripped.
func NewCard(r types.Record, selected bool) Card {
	return Card{
		ID:       r.ID,
		Title:    plainText(r.Title),
		Meta:     MetaLine(r),
		Summary:  plainText(r.Summary),
		URL:      r.URL,
		Year:     r.Year,
		Selected: selected,
	}
}

// MetaLine formats "<authors> ・ <year> ・ <venue>", skipping empty parts.
func MetaLine(r types.Record) string {
	var parts []string
	for _, p := range []string{plainText(r.AuthorList()), r.YearText(), plainText(r.Venue)} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ・ ")
}

// CopyText is the clipboard form of a record: title, authors with year,
// then the summary, one per line.
func CopyText(r types.Record) string {
	byline := plainText(r.AuthorList())
	if r.HasYear() {
		byline += " (" + r.YearText() + ")"
	}
	return plainText(r.Title) + "\n" + strings.TrimSpace(byline) + "\n" + plainText(r.Summary)
}

func plainText(s string) string {
	if s == "" {
		return ""
	}
	return strings.Join(strings.Fields(html.UnescapeString(textPolicy.Sanitize(s))), " ")
}
