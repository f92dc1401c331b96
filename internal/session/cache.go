// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package session owns the per-user application state: the result cache for
// the current query, the selection set, and the year filter. A Controller
// serializes access to that state and supersedes in-flight searches.
package session

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/pdiddy/scholar-digest/pkg/types"
)

// Cache is the ordered, unfiltered list of records for the current query.
// It is built once per search and not modified afterwards.
type Cache struct {
	records []types.Record
	index   map[string]int
}

// NewCache assigns each record a stable ID and returns the cache. The ID is
// the arXiv ID when present, else the source URL, else "#<index>". A
// colliding ID gets a "#<index>" suffix so IDs stay unique.
func NewCache(records []types.Record) *Cache {
	c := &Cache{
		records: make([]types.Record, len(records)),
		index:   make(map[string]int, len(records)),
	}
	for i, r := range records {
		id := baseID(r, i)
		for _, taken := c.index[id]; taken; _, taken = c.index[id] {
			id = fmt.Sprintf("%s#%d", id, i)
		}
		r = r.Clone()
		r.ID = id
		c.records[i] = r
		c.index[id] = i
	}
	return c
}

func baseID(r types.Record, i int) string {
	switch {
	case r.ArxivID != "":
		return r.ArxivID
	case r.URL != "":
		return r.URL
	default:
		return "#" + strconv.Itoa(i)
	}
}

// Len returns the number of cached records.
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	return len(c.records)
}

// Records returns copies of the cached records in encounter order.
func (c *Cache) Records() []types.Record {
	if c == nil {
		return nil
	}
	out := make([]types.Record, len(c.records))
	for i, r := range c.records {
		out[i] = r.Clone()
	}
	return out
}

// Get returns the record with the given ID.
func (c *Cache) Get(id string) (types.Record, bool) {
	if c == nil {
		return types.Record{}, false
	}
	i, ok := c.index[id]
	if !ok {
		return types.Record{}, false
	}
	return c.records[i].Clone(), true
}

// Has reports whether id names a cached record.
func (c *Cache) Has(id string) bool {
	_, ok := c.Get(id)
	return ok
}

// Years returns the distinct publication years present, most recent first.
// Records without a year contribute nothing.
func (c *Cache) Years() []int {
	if c == nil {
		return nil
	}
	seen := make(map[int]struct{})
	var years []int
	for _, r := range c.records {
		if !r.HasYear() {
			continue
		}
		if _, ok := seen[r.Year]; ok {
			continue
		}
		seen[r.Year] = struct{}{}
		years = append(years, r.Year)
	}
	slices.SortFunc(years, func(a, b int) int { return b - a })
	return years
}

// Filter returns the records published in year, in cache order. Year 0
// means no filter and returns every record.
func (c *Cache) Filter(year int) []types.Record {
	if year == 0 {
		return c.Records()
	}
	var out []types.Record
	for _, r := range c.records {
		if r.Year == year {
			out = append(out, r.Clone())
		}
	}
	return out
}

// StatusLine summarizes a finished search: "<n> results found (<year>)"
// with the most recent year, or without the year when none is known.
func StatusLine(n int, years []int) string {
	noun := "results"
	if n == 1 {
		noun = "result"
	}
	if n == 0 || len(years) == 0 {
		return fmt.Sprintf("%d %s found", n, noun)
	}
	return fmt.Sprintf("%d %s found (%d)", n, noun, years[0])
}

// FailureLine is the status shown when a search failed; partial results kept
// from earlier pages are counted.
func FailureLine(partial int) string {
	if partial == 0 {
		return "Failed to fetch results."
	}
	return fmt.Sprintf("Failed to fetch results. %d partial results kept.", partial)
}
