// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package export turns selected records into a document and hands it to a
// document builder. Each entry's body is the record's abstract or, when
// requested, an AI summary of it.
package export

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/pdiddy/scholar-digest/internal/observability"
	"github.com/pdiddy/scholar-digest/pkg/types"
)

// Document layout constants. Sizes are half-points, spacing is twentieths
// of a point.
const (
	DocumentTitle = "Combined Summary of Selected Papers"
	BaseFilename  = "Selected_Papers_Summary"

	BodyFont = "Times New Roman"
	BodySize = 24
)

var (
	titleSpacing   = Spacing{After: 400}
	headingSpacing = Spacing{Before: 300, After: 150}
	bodySpacing    = Spacing{After: 300}
)

var (
	// ErrNoSelection is returned when no record is selected; nothing is built.
	ErrNoSelection = errors.New("no papers selected")

	// ErrNoBuilder is returned when no document builder is registered for
	// the requested format.
	ErrNoBuilder = errors.New("document builder not available")

	// ErrNoSummarizer is returned when summaries are requested but no
	// summarization backend is configured.
	ErrNoSummarizer = errors.New("no summarization backend configured")
)

// Builder converts a document tree into a binary artifact.
type Builder interface {
	Build(doc Document) ([]byte, error)
	ContentType() string
	Extension() string
}

// Summarizer produces a short summary of an abstract.
type Summarizer interface {
	Summarize(ctx context.Context, abstract string) (string, error)
}

// SummarizerSource yields a ready Summarizer, or an error when no usable
// credential is available.
type SummarizerSource interface {
	Summarizer(ctx context.Context) (Summarizer, error)
}

// Options selects the output format and whether to summarize.
type Options struct {
	Format    types.ExportFormat
	Summarize bool
}

// EntryStatus is the outcome for one exported record.
type EntryStatus string

const (
	EntryOriginal   EntryStatus = "original"
	EntrySummarized EntryStatus = "summarized"
	EntryFailed     EntryStatus = "failed"
)

// Entry reports how one record was rendered.
type Entry struct {
	ID     string      `json:"id"`
	Title  string      `json:"title"`
	Status EntryStatus `json:"status"`
	Error  string      `json:"error,omitempty"`
}

// Artifact is the built document ready for download.
type Artifact struct {
	Filename    string
	ContentType string
	Data        []byte
	Entries     []Entry
}

// Failed counts entries whose summarization failed.
func (a *Artifact) Failed() int {
	n := 0
	for _, e := range a.Entries {
		if e.Status == EntryFailed {
			n++
		}
	}
	return n
}

// Pipeline builds export artifacts.
type Pipeline struct {
	Builders  map[types.ExportFormat]Builder
	Summaries SummarizerSource
	Logger    zerolog.Logger
	Metrics   *observability.Metrics
}

// NewPipeline returns a pipeline with the Markdown builder registered.
// Callers register the docx builder and a summarizer source as needed.
func NewPipeline() *Pipeline {
	return &Pipeline{
		Builders: map[types.ExportFormat]Builder{
			types.FormatMarkdown: MarkdownBuilder{},
		},
		Logger: zerolog.Nop(),
	}
}

// Register adds or replaces the builder for format.
func (p *Pipeline) Register(format types.ExportFormat, b Builder) {
	if p.Builders == nil {
		p.Builders = make(map[types.ExportFormat]Builder)
	}
	p.Builders[format] = b
}

// Run exports records, which must already be in display order. The
// summarizer is called once per record, sequentially; a failed call marks
// that entry failed and the rest proceed. Credential errors abort the run
// before any call is made.
func (p *Pipeline) Run(ctx context.Context, records []types.Record, opts Options) (*Artifact, error) {
	format := opts.Format
	if format == "" {
		format = types.FormatDocx
	}

	art, err := p.run(ctx, records, format, opts.Summarize)
	status := "ok"
	switch {
	case err != nil:
		status = "failed"
	case art.Failed() > 0:
		status = "partial"
	}
	p.Metrics.RecordExport(string(format), status)
	return art, err
}

func (p *Pipeline) run(ctx context.Context, records []types.Record, format types.ExportFormat, summarize bool) (*Artifact, error) {
	if len(records) == 0 {
		return nil, ErrNoSelection
	}

	builder, ok := p.Builders[format]
	if !ok || builder == nil {
		return nil, fmt.Errorf("%w for format %q: use one of %s", ErrNoBuilder, format, p.formats())
	}

	var sum Summarizer
	if summarize {
		if p.Summaries == nil {
			return nil, fmt.Errorf("summaries requested: %w", ErrNoSummarizer)
		}
		s, err := p.Summaries.Summarizer(ctx)
		if err != nil {
			return nil, fmt.Errorf("preparing summarizer: %w", err)
		}
		sum = s
	}

	doc := Document{
		Title:  DocumentTitle,
		Blocks: []Block{Heading(1, DocumentTitle, titleSpacing)},
	}
	entries := make([]Entry, 0, len(records))

	for _, r := range records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		body := r.Summary
		entry := Entry{ID: r.ID, Title: r.Title, Status: EntryOriginal}

		if sum != nil {
			text, err := sum.Summarize(ctx, r.Summary)
			p.Metrics.RecordSummary(err == nil)
			if err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				p.Logger.Warn().Err(err).Str("record", r.ID).Msg("summarization failed")
				entry.Status = EntryFailed
				entry.Error = err.Error()
				body = FailedBody(r.Summary)
			} else {
				entry.Status = EntrySummarized
				body = text
			}
		}

		doc.Blocks = append(doc.Blocks,
			Heading(2, EntryHeading(r), headingSpacing),
			Paragraph(bodySpacing, TextRun{Text: body, Font: BodyFont, Size: BodySize}),
		)
		entries = append(entries, entry)
	}

	data, err := builder.Build(doc)
	if err != nil {
		return nil, fmt.Errorf("building %s document: %w", format, err)
	}

	p.Logger.Info().
		Str("format", string(format)).
		Int("entries", len(entries)).
		Int("bytes", len(data)).
		Msg("export built")

	return &Artifact{
		Filename:    BaseFilename + builder.Extension(),
		ContentType: builder.ContentType(),
		Data:        data,
		Entries:     entries,
	}, nil
}

func (p *Pipeline) formats() string {
	var names []string
	for _, f := range []types.ExportFormat{types.FormatDocx, types.FormatMarkdown} {
		if _, ok := p.Builders[f]; ok {
			names = append(names, string(f))
		}
	}
	if len(names) == 0 {
		return "none registered"
	}
	return strings.Join(names, ", ")
}

// EntryHeading formats "<authors> (<year>). <title>. <venue>." Missing parts
// are omitted along with their punctuation.
func EntryHeading(r types.Record) string {
	var sb strings.Builder
	sb.WriteString(r.AuthorList())
	if r.HasYear() {
		if sb.Len() > 0 {
			sb.WriteString(" ")
		}
		sb.WriteString("(" + r.YearText() + ")")
	}
	for _, part := range []string{r.Title, r.Venue} {
		part = strings.TrimSuffix(strings.TrimSpace(part), ".")
		if part == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString(". ")
		}
		sb.WriteString(part)
	}
	if sb.Len() > 0 {
		sb.WriteString(".")
	}
	return sb.String()
}

// FailedBody is the paragraph written for an entry whose summary failed.
// The original abstract follows the notice.
func FailedBody(abstract string) string {
	if strings.TrimSpace(abstract) == "" {
		return "[Summary failed]"
	}
	return "[Summary failed] " + abstract
}
