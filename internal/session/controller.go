// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/scholar-digest/internal/observability"
	"github.com/pdiddy/scholar-digest/internal/search"
	"github.com/pdiddy/scholar-digest/pkg/types"
)

// ErrSuperseded is returned by Search when a newer search started before it
// finished. Its results are discarded.
var ErrSuperseded = errors.New("search superseded by a newer query")

// Searcher runs one paginated search.
type Searcher interface {
	Search(ctx context.Context, query string) (search.Result, error)
}

// Options configures a Controller.
type Options struct {
	// PruneHidden removes selections hidden by a newly applied year filter.
	PruneHidden bool

	Logger  zerolog.Logger
	Metrics *observability.Metrics

	// Now is the clock used for idle tracking. Nil means time.Now.
	Now func() time.Time
}

// Controller owns one session's cache, selection and year filter. All
// methods are safe for concurrent use.
type Controller struct {
	searcher Searcher
	opts     Options

	mu         sync.Mutex
	generation uint64
	cancel     context.CancelFunc
	searching  bool
	query      string
	cache      *Cache
	selection  *Selection
	yearFilter int
	failed     error
	touched    time.Time
}

// ToggleResult reports the outcome of a selection toggle.
type ToggleResult struct {
	ID            string `json:"id"`
	Selected      bool   `json:"selected"`
	ExportVisible bool   `json:"export_visible"`
}

// NewController creates a controller with an empty cache.
func NewController(s Searcher, opts Options) *Controller {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Controller{
		searcher:  s,
		opts:      opts,
		cache:     NewCache(nil),
		selection: NewSelection(),
		touched:   opts.Now(),
	}
}

// Search replaces the session state with the results for query. Starting a
// search cancels any in-flight search and clears the cache, the selection
// and the year filter together. If another search starts before this one
// returns, its results are discarded and ErrSuperseded is returned.
//
// On a search failure the records from pages fetched before the failure are
// kept and the error is returned alongside the view.
func (c *Controller) Search(ctx context.Context, query string) (View, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return c.View(), search.ErrEmptyQuery
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	c.generation++
	gen := c.generation
	c.cancel = cancel
	c.searching = true
	c.query = query
	c.cache = NewCache(nil)
	c.selection.Clear()
	c.yearFilter = 0
	c.failed = nil
	c.touched = c.opts.Now()
	c.mu.Unlock()

	log := c.opts.Logger.With().Uint64("generation", gen).Str("query", query).Logger()
	log.Info().Msg("search started")

	started := time.Now()
	res, err := c.searcher.Search(ctx, query)
	elapsed := time.Since(started).Seconds()

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation {
		c.opts.Metrics.RecordSearch("superseded", elapsed)
		log.Info().Msg("search superseded")
		return c.viewLocked(), ErrSuperseded
	}

	c.cancel = nil
	c.searching = false
	c.cache = NewCache(res.Records)
	c.touched = c.opts.Now()

	if err != nil {
		c.failed = err
		c.opts.Metrics.RecordSearch("failed", elapsed)
		log.Error().Err(err).Int("partial", c.cache.Len()).Msg("search failed")
		return c.viewLocked(), err
	}

	c.opts.Metrics.RecordSearch("ok", elapsed)
	log.Info().
		Int("results", c.cache.Len()).
		Int("pages", res.Pages).
		Int("dropped", res.Dropped).
		Msg("search finished")
	return c.viewLocked(), nil
}

// SetYearFilter changes the displayed subset. Year 0 clears the filter.
// Selections on records the filter hides are kept unless PruneHidden is set.
func (c *Controller) SetYearFilter(year int) (View, error) {
	if year < 0 {
		return View{}, fmt.Errorf("invalid year %d", year)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.yearFilter = year
	c.touched = c.opts.Now()

	if c.opts.PruneHidden && year != 0 {
		for _, id := range c.selection.IDs() {
			if r, ok := c.cache.Get(id); !ok || r.Year != year {
				c.selection.Remove(id)
			}
		}
	}
	return c.viewLocked(), nil
}

// Toggle flips the selection state of the record with the given ID.
func (c *Controller) Toggle(id string) (ToggleResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.cache.Has(id) {
		return ToggleResult{}, fmt.Errorf("%w: %q", ErrUnknownRecord, id)
	}
	c.touched = c.opts.Now()

	selected := c.selection.Toggle(id)
	return ToggleResult{
		ID:            id,
		Selected:      selected,
		ExportVisible: c.selection.Len() > 0,
	}, nil
}

// Record returns the cached record with the given ID.
func (c *Controller) Record(id string) (types.Record, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	r, ok := c.cache.Get(id)
	if !ok {
		return types.Record{}, fmt.Errorf("%w: %q", ErrUnknownRecord, id)
	}
	return r, nil
}

// Selected returns the selected records in cache order.
func (c *Controller) Selected() []types.Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selection.Resolve(c.cache)
}

// Records returns every cached record in encounter order.
func (c *Controller) Records() []types.Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cache.Records()
}

// Visible returns the records that pass the current year filter.
func (c *Controller) Visible() []types.Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cache.Filter(c.yearFilter)
}

// View renders the current state.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewLocked()
}

// LastActive returns the time of the last state change.
func (c *Controller) LastActive() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.touched
}

// Close cancels any in-flight search.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

func (c *Controller) viewLocked() View {
	v := Render(c.cache, c.selection, c.yearFilter)
	v.Query = c.query
	v.Generation = c.generation
	v.Searching = c.searching

	switch {
	case c.searching:
		v.Status = "Searching..."
	case c.failed != nil:
		v.Status = FailureLine(c.cache.Len())
		v.Error = c.failed.Error()
	case c.query == "":
		v.Status = ""
	default:
		v.Status = StatusLine(c.cache.Len(), c.cache.Years())
	}
	return v
}
