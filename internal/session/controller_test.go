// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/scholar-digest/internal/observability"
	"github.com/pdiddy/scholar-digest/internal/search"
	"github.com/pdiddy/scholar-digest/pkg/types"
)

// fakeSearcher returns canned results per query.
type fakeSearcher struct {
	mu      sync.Mutex
	results map[string]search.Result
	errs    map[string]error
	calls   []string
}

func (f *fakeSearcher) Search(_ context.Context, query string) (search.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, query)
	return f.results[query], f.errs[query]
}

// gnnRecords is the filtered result of a search whose entries carried the
// years 2018, 2021, 2015 and 2027.
func gnnRecords() []types.Record {
	return []types.Record{
		rec("1810.00826", "How Powerful are Graph Neural Networks?", 2018),
		rec("2101.00001", "Graph Neural Networks Survey", 2021),
		rec("1511.05493", "Gated Graph Sequence Neural Networks", 2015),
	}
}

func newGNNController(opts Options) (*Controller, *fakeSearcher) {
	fs := &fakeSearcher{
		results: map[string]search.Result{
			"graph neural networks": {Records: gnnRecords(), Pages: 1, Dropped: 1},
			"other":                 {Records: []types.Record{rec("9999.00001", "Other", 2020)}},
		},
	}
	return NewController(fs, opts), fs
}

func TestControllerSearchExample(t *testing.T) {
	c, _ := newGNNController(Options{})

	v, err := c.Search(context.Background(), "graph neural networks")
	require.NoError(t, err)

	assert.Equal(t, 3, v.Total)
	assert.Equal(t, "3 results found (2021)", v.Status)
	assert.False(t, v.Searching)

	var labels []string
	for _, o := range v.YearOptions {
		labels = append(labels, o.Label)
	}
	assert.Equal(t, []string{"All", "2021", "2018", "2015"}, labels)
}

func TestControllerEmptyQuery(t *testing.T) {
	c, fs := newGNNController(Options{})
	_, err := c.Search(context.Background(), "  ")
	assert.ErrorIs(t, err, search.ErrEmptyQuery)
	assert.Empty(t, fs.calls)
}

func TestControllerNewSearchClearsState(t *testing.T) {
	c, _ := newGNNController(Options{})
	ctx := context.Background()

	_, err := c.Search(ctx, "graph neural networks")
	require.NoError(t, err)
	_, err = c.Toggle("1810.00826")
	require.NoError(t, err)
	_, err = c.SetYearFilter(2018)
	require.NoError(t, err)

	v, err := c.Search(ctx, "other")
	require.NoError(t, err)
	assert.Zero(t, v.Selected)
	assert.Zero(t, v.YearFilter)
	assert.False(t, v.ExportVisible)
	assert.Equal(t, 1, v.Total)
	assert.Empty(t, c.Selected())
}

func TestControllerToggle(t *testing.T) {
	c, _ := newGNNController(Options{})
	_, err := c.Search(context.Background(), "graph neural networks")
	require.NoError(t, err)

	res, err := c.Toggle("2101.00001")
	require.NoError(t, err)
	assert.True(t, res.Selected)
	assert.True(t, res.ExportVisible)

	res, err = c.Toggle("2101.00001")
	require.NoError(t, err)
	assert.False(t, res.Selected)
	assert.False(t, res.ExportVisible)

	_, err = c.Toggle("nope")
	assert.ErrorIs(t, err, ErrUnknownRecord)
}

func TestControllerSelectedInCacheOrder(t *testing.T) {
	c, _ := newGNNController(Options{})
	_, err := c.Search(context.Background(), "graph neural networks")
	require.NoError(t, err)

	_, _ = c.Toggle("1511.05493")
	_, _ = c.Toggle("1810.00826")

	got := c.Selected()
	require.Len(t, got, 2)
	assert.Equal(t, "1810.00826", got[0].ID)
	assert.Equal(t, "1511.05493", got[1].ID)
}

func TestControllerFilterPreservesSelection(t *testing.T) {
	c, _ := newGNNController(Options{})
	_, err := c.Search(context.Background(), "graph neural networks")
	require.NoError(t, err)
	_, _ = c.Toggle("2101.00001")

	v, err := c.SetYearFilter(2018)
	require.NoError(t, err)
	assert.Len(t, v.Cards, 1)
	assert.Equal(t, 1, v.Selected)
	assert.Equal(t, 1, v.HiddenSelected)

	v, err = c.SetYearFilter(0)
	require.NoError(t, err)
	assert.Len(t, v.Cards, 3)
	assert.Zero(t, v.HiddenSelected)
	assert.Len(t, c.Selected(), 1)
}

func TestControllerFilterPrunesWhenConfigured(t *testing.T) {
	c, _ := newGNNController(Options{PruneHidden: true})
	_, err := c.Search(context.Background(), "graph neural networks")
	require.NoError(t, err)
	_, _ = c.Toggle("2101.00001")
	_, _ = c.Toggle("1810.00826")

	v, err := c.SetYearFilter(2018)
	require.NoError(t, err)
	assert.Equal(t, 1, v.Selected)
	assert.Zero(t, v.HiddenSelected)
	assert.Equal(t, "1810.00826", c.Selected()[0].ID)
}

func TestControllerRejectsNegativeYear(t *testing.T) {
	c, _ := newGNNController(Options{})
	_, err := c.SetYearFilter(-1)
	assert.Error(t, err)
}

func TestControllerFailureKeepsPartialRecords(t *testing.T) {
	upstream := &search.StatusError{StatusCode: 503}
	fs := &fakeSearcher{
		results: map[string]search.Result{"q": {Records: gnnRecords()[:2], Pages: 1}},
		errs:    map[string]error{"q": upstream},
	}
	c := NewController(fs, Options{})

	v, err := c.Search(context.Background(), "q")
	require.Error(t, err)
	assert.True(t, errors.Is(err, upstream))
	assert.Equal(t, 2, v.Total)
	assert.Equal(t, "Failed to fetch results. 2 partial results kept.", v.Status)
	assert.NotEmpty(t, v.Error)
}

// blockingSearcher holds each search until released, then returns records
// labelled with the query.
type blockingSearcher struct {
	started chan string
	release chan struct{}
}

func (b *blockingSearcher) Search(ctx context.Context, query string) (search.Result, error) {
	b.started <- query
	select {
	case <-b.release:
	case <-ctx.Done():
		return search.Result{Records: []types.Record{rec("stale", "stale", 2020)}}, ctx.Err()
	}
	return search.Result{Records: []types.Record{rec(query, query, 2020)}}, nil
}

func TestControllerNewerSearchSupersedes(t *testing.T) {
	bs := &blockingSearcher{started: make(chan string), release: make(chan struct{})}
	reg := prometheus.NewRegistry()
	m := observability.NewMetrics("test", reg)
	c := NewController(bs, Options{Metrics: m})

	firstErr := make(chan error, 1)
	go func() {
		_, err := c.Search(context.Background(), "first")
		firstErr <- err
	}()
	require.Equal(t, "first", <-bs.started)

	secondDone := make(chan View, 1)
	go func() {
		v, _ := c.Search(context.Background(), "second")
		secondDone <- v
	}()
	require.Equal(t, "second", <-bs.started)

	select {
	case err := <-firstErr:
		assert.ErrorIs(t, err, ErrSuperseded)
	case <-time.After(2 * time.Second):
		t.Fatal("first search was not cancelled")
	}

	close(bs.release)
	v := <-secondDone

	require.Len(t, v.Cards, 1)
	assert.Equal(t, "second", v.Cards[0].ID)
	assert.Equal(t, uint64(2), v.Generation)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Searches.WithLabelValues("superseded")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Searches.WithLabelValues("ok")))
}

func TestControllerLastActive(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c, _ := newGNNController(Options{Now: func() time.Time { return now }})
	assert.Equal(t, now, c.LastActive())

	now = now.Add(time.Minute)
	_, err := c.Search(context.Background(), "graph neural networks")
	require.NoError(t, err)
	assert.Equal(t, now, c.LastActive())
}

func TestControllerRecord(t *testing.T) {
	c, _ := newGNNController(Options{})
	_, err := c.Search(context.Background(), "graph neural networks")
	require.NoError(t, err)

	r, err := c.Record("1511.05493")
	require.NoError(t, err)
	assert.Equal(t, 2015, r.Year)

	_, err = c.Record("x")
	assert.ErrorIs(t, err, ErrUnknownRecord)
}
