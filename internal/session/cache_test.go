// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/scholar-digest/pkg/types"
)

func rec(arxivID, title string, year int) types.Record {
	r := types.Record{ArxivID: arxivID, Title: title, Year: year, Venue: types.DefaultVenue}
	if arxivID != "" {
		r.URL = "http://arxiv.org/abs/" + arxivID + "v1"
	}
	return r
}

func TestNewCacheAssignsStableIDs(t *testing.T) {
	c := NewCache([]types.Record{
		rec("1810.00826", "GIN", 2018),
		{Title: "No arXiv ID", URL: "https://example.org/paper"},
		{Title: "Nothing"},
		rec("1810.00826", "Same ID again", 2018),
		{Title: "Same title"},
		{Title: "Same title"},
	})

	var ids []string
	for _, r := range c.Records() {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{
		"1810.00826",
		"https://example.org/paper",
		"#2",
		"1810.00826#3",
		"#4",
		"#5",
	}, ids)

	r, ok := c.Get("1810.00826#3")
	require.True(t, ok)
	assert.Equal(t, "Same ID again", r.Title)
	assert.False(t, c.Has("missing"))
}

func TestCacheRecordsAreCopies(t *testing.T) {
	c := NewCache([]types.Record{{Title: "A", Authors: []string{"X"}}})
	got := c.Records()
	got[0].Title = "changed"
	got[0].Authors[0] = "changed"

	r, _ := c.Get("#0")
	assert.Equal(t, "A", r.Title)
	assert.Equal(t, "X", r.Authors[0])
}

func TestCacheAccessorsDoNotShareAuthors(t *testing.T) {
	input := []types.Record{{Title: "A", Authors: []string{"X", "Y"}, Year: 2020}}
	c := NewCache(input)
	input[0].Authors[0] = "input changed"

	got, ok := c.Get("#0")
	require.True(t, ok)
	got.Authors[0] = "get changed"

	filtered := c.Filter(2020)
	require.Len(t, filtered, 1)
	filtered[0].Authors[1] = "filter changed"

	sel := NewSelection()
	require.True(t, sel.Toggle("#0"))
	resolved := sel.Resolve(c)
	require.Len(t, resolved, 1)
	resolved[0].Authors = append(resolved[0].Authors[:0], "resolve changed")

	r, _ := c.Get("#0")
	assert.Equal(t, []string{"X", "Y"}, r.Authors)
}

func TestYearsDistinctDescending(t *testing.T) {
	c := NewCache([]types.Record{
		rec("a", "A", 2018),
		rec("b", "B", 2021),
		rec("c", "C", 2015),
		rec("d", "D", 2018),
		rec("e", "E", 0),
	})
	assert.Equal(t, []int{2021, 2018, 2015}, c.Years())
}

func TestYearsEmpty(t *testing.T) {
	assert.Empty(t, NewCache(nil).Years())
	var c *Cache
	assert.Empty(t, c.Years())
	assert.Zero(t, c.Len())
}

func TestFilterKeepsCacheOrder(t *testing.T) {
	c := NewCache([]types.Record{
		rec("a", "A", 2018),
		rec("b", "B", 2021),
		rec("c", "C", 2018),
	})

	var titles []string
	for _, r := range c.Filter(2018) {
		titles = append(titles, r.Title)
	}
	assert.Equal(t, []string{"A", "C"}, titles)
	assert.Len(t, c.Filter(0), 3)
	assert.Empty(t, c.Filter(1999))
}

func TestStatusLine(t *testing.T) {
	assert.Equal(t, "3 results found (2021)", StatusLine(3, []int{2021, 2018}))
	assert.Equal(t, "1 result found (2020)", StatusLine(1, []int{2020}))
	assert.Equal(t, "0 results found", StatusLine(0, nil))
	assert.Equal(t, "2 results found", StatusLine(2, nil))
}

func TestFailureLine(t *testing.T) {
	assert.Equal(t, "Failed to fetch results.", FailureLine(0))
	assert.Equal(t, "Failed to fetch results. 4 partial results kept.", FailureLine(4))
}
