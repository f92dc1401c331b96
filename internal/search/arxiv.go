// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/pdiddy/scholar-digest/internal/httputil"
	"github.com/pdiddy/scholar-digest/internal/observability"
	"github.com/pdiddy/scholar-digest/pkg/types"
)

const (
	// MaxPageSize is the largest max_results value sent to the API.
	MaxPageSize = 2000

	defaultPageSize = 200
	defaultMaxPages = 5

	// maxBodyBytes bounds a single page response.
	maxBodyBytes = 64 << 20
)

// Client pages through the arXiv query API and parses entries into records.
type Client struct {
	HTTP    *http.Client
	Config  types.SearchConfig
	Logger  zerolog.Logger
	Metrics *observability.Metrics
}

// NewClient creates a client with defaults applied to unset settings.
// A nil httpClient gets one with the configured timeout.
func NewClient(cfg types.SearchConfig, httpClient *http.Client) *Client {
	cfg = withDefaults(cfg)
	if httpClient == nil {
		httpClient = httputil.NewClient(cfg.Timeout)
	}
	return &Client{
		HTTP:   httpClient,
		Config: cfg,
		Logger: zerolog.Nop(),
	}
}

func withDefaults(cfg types.SearchConfig) types.SearchConfig {
	if cfg.BaseURL == "" {
		cfg.BaseURL = types.DefaultConfig().Search.BaseURL
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = defaultPageSize
	}
	if cfg.PageSize > MaxPageSize {
		cfg.PageSize = MaxPageSize
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = defaultMaxPages
	}
	if cfg.PageDelay < 0 {
		cfg.PageDelay = 0
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = types.DefaultUserAgent
	}
	return cfg
}

// Search issues up to MaxPages sequential page requests for query, stopping
// early when a page has no entries. Records outside the configured year range
// are dropped. On failure the records gathered from earlier pages are
// returned together with the error.
func (c *Client) Search(ctx context.Context, query string) (Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Result{}, ErrEmptyQuery
	}

	cfg := withDefaults(c.Config)
	started := time.Now()

	// One token per pause interval: the first page goes out immediately and
	// each later page waits out the remainder of the delay.
	pacer := rate.NewLimiter(rate.Every(cfg.PageDelay), 1)

	var res Result
	for page := 0; page < cfg.MaxPages; page++ {
		if err := pacer.Wait(ctx); err != nil {
			return res, fmt.Errorf("waiting before page %d: %w", page+1, err)
		}

		entries, err := c.fetchPage(ctx, cfg, query, page*cfg.PageSize)
		if err != nil {
			res.Elapsed = time.Since(started)
			return res, fmt.Errorf("fetching page %d: %w", page+1, err)
		}
		res.Pages++

		if len(entries) == 0 {
			c.Metrics.RecordPage(0)
			break
		}

		dropped := 0
		for i := range entries {
			rec := entryToRecord(&entries[i])
			if !cfg.AcceptsYear(rec.Year) {
				dropped++
				continue
			}
			res.Records = append(res.Records, rec)
		}
		res.Dropped += dropped
		c.Metrics.RecordPage(dropped)

		c.Logger.Debug().
			Int("page", page+1).
			Int("entries", len(entries)).
			Int("dropped", dropped).
			Msg("fetched result page")
	}

	res.Elapsed = time.Since(started)
	return res, nil
}

// fetchPage requests one page starting at offset and decodes its entries.
func (c *Client) fetchPage(ctx context.Context, cfg types.SearchConfig, query string, offset int) ([]arxivEntry, error) {
	reqURL := buildPageURL(cfg.BaseURL, query, offset, cfg.PageSize)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, c.HTTP, req, cfg.RateLimitRetries)
	if err != nil {
		return nil, fmt.Errorf("arXiv API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{StatusCode: resp.StatusCode}
	}

	var feed arxivFeed
	if err := xml.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&feed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return feed.Entries, nil
}

// buildPageURL constructs the query URL for one page. The free-text query is
// URL-encoded and searched across all fields.
func buildPageURL(base, query string, start, maxResults int) string {
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%ssearch_query=all:%s&start=%d&max_results=%d",
		base, sep, url.QueryEscape(query), start, maxResults)
}

// entryToRecord converts a feed entry into a record. The record ID is left
// empty; the session cache assigns it.
func entryToRecord(e *arxivEntry) types.Record {
	published := strings.TrimSpace(e.Published)
	link := strings.TrimSpace(e.ID)

	r := types.Record{
		ArxivID:   extractArxivID(link),
		Title:     collapseSpace(e.Title),
		Summary:   collapseSpace(e.Summary),
		Published: published,
		Year:      types.YearFromPublished(published),
		URL:       link,
		Venue:     types.DefaultVenue,
	}
	for _, a := range e.Authors {
		if name := strings.TrimSpace(a.Name); name != "" {
			r.Authors = append(r.Authors, name)
		}
	}
	return r
}

// collapseSpace trims s and replaces internal runs of whitespace, including
// the line breaks arXiv inserts into titles, with single spaces.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// arXiv Atom feed XML structures.
type arxivFeed struct {
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	ID        string        `xml:"id"`
	Title     string        `xml:"title"`
	Summary   string        `xml:"summary"`
	Published string        `xml:"published"`
	Authors   []arxivAuthor `xml:"author"`
}

type arxivAuthor struct {
	Name string `xml:"name"`
}

// extractArxivID pulls the arXiv ID from the entry's <id> URL
// (e.g. "http://arxiv.org/abs/2301.07041v1" → "2301.07041").
func extractArxivID(idURL string) string {
	const prefix = "/abs/"
	idx := strings.Index(idURL, prefix)
	if idx < 0 {
		return ""
	}
	id := idURL[idx+len(prefix):]

	// Strip version suffix (e.g. "v1", "v2").
	if vIdx := strings.LastIndex(id, "v"); vIdx > 0 {
		if _, err := strconv.Atoi(id[vIdx+1:]); err == nil {
			id = id[:vIdx]
		}
	}
	return id
}
