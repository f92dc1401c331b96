// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"bytes"
	"strings"
)

// MarkdownBuilder renders a document as Markdown. Font and spacing
// attributes have no Markdown form and are dropped; bold and italic runs
// keep their emphasis.
type MarkdownBuilder struct{}

// Build renders doc as Markdown text.
func (MarkdownBuilder) Build(doc Document) ([]byte, error) {
	var buf bytes.Buffer
	for i, b := range doc.Blocks {
		if i > 0 {
			buf.WriteString("\n")
		}
		switch b.Kind {
		case KindHeading:
			level := min(max(b.Level, 1), 6)
			buf.WriteString(strings.Repeat("#", level))
			buf.WriteString(" ")
			buf.WriteString(oneLine(b.Text()))
			buf.WriteString("\n")
		default:
			for _, r := range b.Runs {
				buf.WriteString(emphasize(r))
			}
			buf.WriteString("\n")
		}
	}
	return buf.Bytes(), nil
}

// ContentType returns the Markdown media type.
func (MarkdownBuilder) ContentType() string { return "text/markdown; charset=utf-8" }

// Extension returns the file extension including the dot.
func (MarkdownBuilder) Extension() string { return ".md" }

func emphasize(r TextRun) string {
	core := strings.TrimSpace(r.Text)
	if core == "" || (!r.Bold && !r.Italic) {
		return r.Text
	}
	lead := r.Text[:strings.Index(r.Text, core)]
	trail := r.Text[len(lead)+len(core):]

	mark := "*"
	switch {
	case r.Bold && r.Italic:
		mark = "***"
	case r.Bold:
		mark = "**"
	}
	return lead + mark + core + mark + trail
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
