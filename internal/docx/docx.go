// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package docx renders export documents as Word (.docx) files using godocx.
// Headings use the template's HeadingN styles; paragraph spacing and run
// fonts are set directly on each paragraph and run.
package docx

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/gomutex/godocx"
	godocxdoc "github.com/gomutex/godocx/docx"

	"github.com/pdiddy/scholar-digest/internal/export"
)

// ContentType is the media type of a .docx file.
const ContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// maxHeadingLevel is the deepest heading style in the default template.
const maxHeadingLevel = 9

// Builder renders export documents into .docx bytes.
type Builder struct{}

// New returns a .docx builder.
func New() *Builder {
	return &Builder{}
}

// ContentType returns the .docx media type.
func (b *Builder) ContentType() string { return ContentType }

// Extension returns ".docx".
func (b *Builder) Extension() string { return ".docx" }

// Build writes doc as a .docx package.
func (b *Builder) Build(doc export.Document) ([]byte, error) {
	root, err := godocx.NewDocument()
	if err != nil {
		return nil, fmt.Errorf("creating docx document: %w", err)
	}

	for i, blk := range doc.Blocks {
		if err := addBlock(root, blk); err != nil {
			return nil, fmt.Errorf("block %d: %w", i+1, err)
		}
	}

	var buf bytes.Buffer
	if err := root.Write(&buf); err != nil {
		return nil, fmt.Errorf("writing docx package: %w", err)
	}
	return buf.Bytes(), nil
}

func addBlock(root *godocxdoc.RootDoc, blk export.Block) error {
	if blk.Kind == export.KindHeading {
		level := min(max(blk.Level, 1), maxHeadingLevel)
		p, err := root.AddHeading(blk.Text(), uint(level))
		if err != nil {
			return fmt.Errorf("adding heading: %w", err)
		}
		setSpacing(p, blk.Spacing)
		return nil
	}

	// A line break inside a run starts a new paragraph with the same
	// formatting. Before-spacing goes on the first, after-spacing on the last.
	lines := splitRuns(blk.Runs)
	for i, runs := range lines {
		p := root.AddEmptyParagraph()
		var sp export.Spacing
		if i == 0 {
			sp.Before = blk.Spacing.Before
		}
		if i == len(lines)-1 {
			sp.After = blk.Spacing.After
		}
		setSpacing(p, sp)
		for _, r := range runs {
			addRun(p, r)
		}
	}
	return nil
}

func setSpacing(p *godocxdoc.Paragraph, sp export.Spacing) {
	if sp.Before <= 0 && sp.After <= 0 {
		return
	}
	p.Spacing(uint64(max(sp.Before, 0)), uint64(max(sp.After, 0)))
}

func addRun(p *godocxdoc.Paragraph, r export.TextRun) {
	run := p.AddText(r.Text)
	if r.Font != "" {
		run.Font(r.Font)
	}
	if r.Size > 0 {
		// godocx takes points; TextRun sizes are half-points.
		run.Size(uint64(r.Size / 2))
	}
	if r.Bold {
		run.Bold(true)
	}
	if r.Italic {
		run.Italic(true)
	}
}

// splitRuns groups runs into lines, splitting any run whose text contains
// a newline. A paragraph with no runs yields a single empty line.
func splitRuns(runs []export.TextRun) [][]export.TextRun {
	lines := [][]export.TextRun{nil}
	for _, r := range runs {
		for i, part := range strings.Split(r.Text, "\n") {
			if i > 0 {
				lines = append(lines, nil)
			}
			if part == "" {
				continue
			}
			seg := r
			seg.Text = part
			lines[len(lines)-1] = append(lines[len(lines)-1], seg)
		}
	}
	return lines
}
