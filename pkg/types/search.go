// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the data structures shared by the search client,
// the session controller, the export pipeline and the command surfaces.
package types

import (
	"slices"
	"strconv"
	"strings"
)

// DefaultVenue is recorded for every arXiv result; the API carries no venue.
const DefaultVenue = "arXiv"

// Record is one parsed search result. Records are created while parsing a
// search response and are not modified afterwards.
type Record struct {
	// ID is the stable identifier assigned when the record enters the cache.
	// Selections refer to records by ID.
	ID string `json:"id" yaml:"id"`

	// ArxivID is the arXiv identifier without version suffix (e.g. "2301.07041").
	ArxivID string `json:"arxiv_id,omitempty" yaml:"arxiv_id,omitempty"`

	// Title is the paper title with whitespace collapsed.
	Title string `json:"title" yaml:"title"`

	// Summary is the paper abstract.
	Summary string `json:"summary" yaml:"summary"`

	// Authors lists author names in source order. Duplicates are kept.
	Authors []string `json:"authors" yaml:"authors"`

	// Year is the publication year, or 0 when the published date carried none.
	Year int `json:"year,omitempty" yaml:"year,omitempty"`

	// Published is the raw published-date text from the feed.
	Published string `json:"published,omitempty" yaml:"published,omitempty"`

	// URL is the source URL (the Atom entry id).
	URL string `json:"url" yaml:"url"`

	// Venue is optional metadata; arXiv results use DefaultVenue.
	Venue string `json:"venue,omitempty" yaml:"venue,omitempty"`
}

// Clone returns a copy of r that shares no slices with it.
func (r Record) Clone() Record {
	r.Authors = slices.Clone(r.Authors)
	return r
}

// HasYear reports whether the record carries a publication year.
func (r Record) HasYear() bool { return r.Year > 0 }

// YearText returns the year as text, or "" when absent.
func (r Record) YearText() string {
	if !r.HasYear() {
		return ""
	}
	return strconv.Itoa(r.Year)
}

// AuthorList joins author names with ", ".
func (r Record) AuthorList() string {
	return strings.Join(r.Authors, ", ")
}

// YearFromPublished derives the publication year from the first four
// characters of a published-date field. It returns 0 when they are not digits.
func YearFromPublished(published string) int {
	published = strings.TrimSpace(published)
	if len(published) < 4 {
		return 0
	}
	y, err := strconv.Atoi(published[:4])
	if err != nil || y <= 0 {
		return 0
	}
	return y
}
