// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/scholar-digest/internal/observability"
	"github.com/pdiddy/scholar-digest/pkg/types"
)

// captureBuilder records the document it was asked to build.
type captureBuilder struct {
	doc Document
	err error
}

func (b *captureBuilder) Build(doc Document) ([]byte, error) {
	b.doc = doc
	if b.err != nil {
		return nil, b.err
	}
	return []byte("built"), nil
}

func (b *captureBuilder) ContentType() string { return "application/test" }
func (b *captureBuilder) Extension() string   { return ".docx" }

// fakeSummarizer fails for abstracts listed in fail.
type fakeSummarizer struct {
	fail  map[string]bool
	calls []string
}

func (f *fakeSummarizer) Summarize(_ context.Context, abstract string) (string, error) {
	f.calls = append(f.calls, abstract)
	if f.fail[abstract] {
		return "", errors.New("upstream 500")
	}
	return "Short: " + abstract, nil
}

type fakeSource struct {
	s   Summarizer
	err error
}

func (f fakeSource) Summarizer(context.Context) (Summarizer, error) { return f.s, f.err }

func testRecords() []types.Record {
	return []types.Record{
		{ID: "a", Title: "Graph Attention Networks", Authors: []string{"Petar Veličković", "Guillem Cucurull"}, Year: 2018, Venue: "arXiv", Summary: "abstract A"},
		{ID: "b", Title: "Semi-Supervised Classification with GCNs", Authors: []string{"Thomas Kipf"}, Year: 2017, Venue: "arXiv", Summary: "abstract B"},
		{ID: "c", Title: "GraphSAGE", Authors: []string{"William Hamilton"}, Year: 2017, Venue: "arXiv", Summary: "abstract C"},
	}
}

func newTestPipeline(b Builder) *Pipeline {
	p := NewPipeline()
	p.Register(types.FormatDocx, b)
	return p
}

func TestRunEmptySelection(t *testing.T) {
	b := &captureBuilder{}
	p := newTestPipeline(b)

	art, err := p.Run(context.Background(), nil, Options{})
	assert.ErrorIs(t, err, ErrNoSelection)
	assert.Nil(t, art)
	assert.Empty(t, b.doc.Blocks, "nothing should be built")
}

func TestRunMissingBuilder(t *testing.T) {
	p := &Pipeline{}
	_, err := p.Run(context.Background(), testRecords(), Options{Format: types.FormatDocx})
	require.ErrorIs(t, err, ErrNoBuilder)
	assert.Contains(t, err.Error(), "none registered")

	p = NewPipeline()
	_, err = p.Run(context.Background(), testRecords(), Options{Format: "pdf"})
	require.ErrorIs(t, err, ErrNoBuilder)
	assert.Contains(t, err.Error(), "markdown")
}

func TestRunDocumentLayout(t *testing.T) {
	b := &captureBuilder{}
	p := newTestPipeline(b)

	art, err := p.Run(context.Background(), testRecords(), Options{Format: types.FormatDocx})
	require.NoError(t, err)

	assert.Equal(t, "Selected_Papers_Summary.docx", art.Filename)
	assert.Equal(t, "application/test", art.ContentType)
	assert.Equal(t, []byte("built"), art.Data)
	require.Len(t, art.Entries, 3)

	blocks := b.doc.Blocks
	require.Len(t, blocks, 1+2*3)

	assert.Equal(t, KindHeading, blocks[0].Kind)
	assert.Equal(t, 1, blocks[0].Level)
	assert.Equal(t, "Combined Summary of Selected Papers", blocks[0].Text())
	assert.Equal(t, Spacing{After: 400}, blocks[0].Spacing)

	h := blocks[1]
	assert.Equal(t, 2, h.Level)
	assert.Equal(t, "Petar Veličković, Guillem Cucurull (2018). Graph Attention Networks. arXiv.", h.Text())
	assert.Equal(t, Spacing{Before: 300, After: 150}, h.Spacing)

	body := blocks[2]
	assert.Equal(t, KindParagraph, body.Kind)
	require.Len(t, body.Runs, 1)
	assert.Equal(t, TextRun{Text: "abstract A", Font: "Times New Roman", Size: 24}, body.Runs[0])
	assert.Equal(t, Spacing{After: 300}, body.Spacing)

	for _, e := range art.Entries {
		assert.Equal(t, EntryOriginal, e.Status)
	}
}

func TestRunEntryCountMatchesSelection(t *testing.T) {
	b := &captureBuilder{}
	p := newTestPipeline(b)

	art, err := p.Run(context.Background(), testRecords()[1:], Options{})
	require.NoError(t, err)
	assert.Len(t, art.Entries, 2)
	assert.Equal(t, "b", art.Entries[0].ID)
	assert.Equal(t, "c", art.Entries[1].ID)
}

func TestRunSummaryFailureIsLocal(t *testing.T) {
	b := &captureBuilder{}
	sum := &fakeSummarizer{fail: map[string]bool{"abstract B": true}}
	p := newTestPipeline(b)
	p.Summaries = fakeSource{s: sum}
	reg := prometheus.NewRegistry()
	p.Metrics = observability.NewMetrics("test", reg)

	art, err := p.Run(context.Background(), testRecords(), Options{Summarize: true})
	require.NoError(t, err)

	assert.Equal(t, []string{"abstract A", "abstract B", "abstract C"}, sum.calls)
	require.Len(t, art.Entries, 3)
	assert.Equal(t, EntrySummarized, art.Entries[0].Status)
	assert.Equal(t, EntryFailed, art.Entries[1].Status)
	assert.Contains(t, art.Entries[1].Error, "upstream 500")
	assert.Equal(t, EntrySummarized, art.Entries[2].Status)
	assert.Equal(t, 1, art.Failed())

	assert.Equal(t, "Short: abstract A", b.doc.Blocks[2].Text())
	assert.True(t, strings.HasPrefix(b.doc.Blocks[4].Text(), "[Summary failed]"))
	assert.Equal(t, "Short: abstract C", b.doc.Blocks[6].Text())

	assert.Equal(t, float64(2), testutil.ToFloat64(p.Metrics.Summaries.WithLabelValues("ok")))
	assert.Equal(t, float64(1), testutil.ToFloat64(p.Metrics.Summaries.WithLabelValues("failed")))
	assert.Equal(t, float64(1), testutil.ToFloat64(p.Metrics.Exports.WithLabelValues("docx", "partial")))
}

func TestRunCredentialErrorAborts(t *testing.T) {
	b := &captureBuilder{}
	credErr := errors.New("missing credential")
	p := newTestPipeline(b)
	p.Summaries = fakeSource{err: credErr}

	_, err := p.Run(context.Background(), testRecords(), Options{Summarize: true})
	assert.ErrorIs(t, err, credErr)
	assert.Empty(t, b.doc.Blocks)
}

func TestRunSummariesWithoutSource(t *testing.T) {
	p := newTestPipeline(&captureBuilder{})
	_, err := p.Run(context.Background(), testRecords(), Options{Summarize: true})
	assert.ErrorIs(t, err, ErrNoSummarizer)
}

func TestRunBuilderError(t *testing.T) {
	p := newTestPipeline(&captureBuilder{err: errors.New("disk full")})
	_, err := p.Run(context.Background(), testRecords(), Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newTestPipeline(&captureBuilder{}).Run(ctx, testRecords(), Options{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEntryHeading(t *testing.T) {
	tests := []struct {
		name string
		rec  types.Record
		want string
	}{
		{"full", types.Record{Authors: []string{"A", "B"}, Year: 2020, Title: "T", Venue: "arXiv"}, "A, B (2020). T. arXiv."},
		{"no year", types.Record{Authors: []string{"A"}, Title: "T", Venue: "arXiv"}, "A. T. arXiv."},
		{"title ends with period", types.Record{Authors: []string{"A"}, Year: 2020, Title: "T.", Venue: "arXiv"}, "A (2020). T. arXiv."},
		{"no venue", types.Record{Authors: []string{"A"}, Year: 2020, Title: "T"}, "A (2020). T."},
		{"title only", types.Record{Title: "T"}, "T."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EntryHeading(tt.rec))
		})
	}
}

func TestMarkdownBuilder(t *testing.T) {
	doc := Document{Blocks: []Block{
		Heading(1, DocumentTitle, titleSpacing),
		Heading(2, "A (2020). T. arXiv.", headingSpacing),
		Paragraph(bodySpacing, TextRun{Text: "Body text.", Font: BodyFont, Size: BodySize}, TextRun{Text: " Note", Bold: true}),
	}}

	data, err := MarkdownBuilder{}.Build(doc)
	require.NoError(t, err)
	assert.Equal(t,
		"# Combined Summary of Selected Papers\n\n## A (2020). T. arXiv.\n\nBody text. **Note**\n",
		string(data))
	assert.Equal(t, ".md", MarkdownBuilder{}.Extension())
}
