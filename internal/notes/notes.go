// Package notes handles the rich-text project description that accompanies
// an estimate. Notes are stored as HTML; they are authored in Markdown on the
// terminal and flattened to plain text for documents.
package notes

import (
	"bytes"
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var (
	md = goldmark.New(goldmark.WithExtensions(extension.GFM))

	ugc    = bluemonday.UGCPolicy()
	strict = bluemonday.StrictPolicy()

	// Closing block tags and line breaks end a paragraph of plain text.
	blockEnd = regexp.MustCompile(`(?i)(</(p|div|h[1-6]|li|tr|blockquote|pre|table|ul|ol)>|<br\s*/?>)`)
	spaces   = regexp.MustCompile(`[ \t\r\f\v\x{00a0}]+`)
)

// FromMarkdown renders Markdown source into sanitized HTML.
func FromMarkdown(src []byte) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert(src, &buf); err != nil {
		return "", fmt.Errorf("rendering notes: %w", err)
	}
	return Sanitize(buf.String()), nil
}

// Sanitize drops scripts, event handlers and other unsafe markup while
// keeping ordinary formatting.
func Sanitize(content string) string {
	return ugc.Sanitize(content)
}

// PlainText flattens HTML notes into text: one line per block element, runs
// of whitespace collapsed, entities decoded.
func PlainText(content string) string {
	marked := blockEnd.ReplaceAllString(content, "$0\n")
	text := html.UnescapeString(strict.Sanitize(marked))

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(spaces.ReplaceAllString(line, " "))
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

// Buffer is an in-memory editor surface holding the current notes.
type Buffer struct {
	content string
}

// Content returns the current HTML.
func (b *Buffer) Content() string { return b.content }

// SetContent replaces the HTML.
func (b *Buffer) SetContent(content string) { b.content = content }
