// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import "strings"

// BlockKind distinguishes headings from body paragraphs.
type BlockKind int

const (
	KindParagraph BlockKind = iota
	KindHeading
)

// TextRun is a span of text with optional font attributes. Size is in
// half-points, so 24 is 12pt. Zero values inherit the paragraph style.
type TextRun struct {
	Text   string
	Font   string
	Size   int
	Bold   bool
	Italic bool
}

// Spacing is paragraph spacing in twentieths of a point.
type Spacing struct {
	Before int
	After  int
}

// Block is one heading or paragraph of a document.
type Block struct {
	Kind    BlockKind
	Level   int
	Runs    []TextRun
	Spacing Spacing
}

// Text returns the concatenated run text.
func (b Block) Text() string {
	var sb strings.Builder
	for _, r := range b.Runs {
		sb.WriteString(r.Text)
	}
	return sb.String()
}

// Document is the tree handed to a Builder.
type Document struct {
	Title  string
	Blocks []Block
}

// Heading returns a heading block with a single plain run.
func Heading(level int, text string, spacing Spacing) Block {
	return Block{
		Kind:    KindHeading,
		Level:   level,
		Runs:    []TextRun{{Text: text}},
		Spacing: spacing,
	}
}

// Paragraph returns a body paragraph made of runs.
func Paragraph(spacing Spacing, runs ...TextRun) Block {
	return Block{Kind: KindParagraph, Runs: runs, Spacing: spacing}
}
