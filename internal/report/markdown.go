package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/theirongolddev/quotekit/internal/notes"
)

// Markdown renders q as a Markdown summary.
func Markdown(q Quote) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", q.name())
	meta := []string{"**Date:** " + q.Date.Format("Jan 2, 2006")}
	if q.ID != "" {
		meta = append([]string{"**ID:** `" + q.ID + "`"}, meta...)
	}
	fmt.Fprintf(&b, "%s\n\n", strings.Join(meta, " · "))

	b.WriteString("| Category | Share | Amount |\n|---|---:|---:|\n")
	for _, row := range q.rows() {
		switch {
		case len(row) == 1:
			continue
		case row[0] == "FINAL PAYABLE":
			fmt.Fprintf(&b, "| **%s** | | **%s** |\n", row[0], row[2])
		default:
			fmt.Fprintf(&b, "| %s | %s | %s |\n", escapeCell(row[0]), row[1], row[2])
		}
	}

	if text := notes.PlainText(q.Notes); text != "" {
		b.WriteString("\n## Project Details\n\n")
		for _, line := range strings.Split(text, "\n") {
			b.WriteString(line)
			b.WriteString("\n\n")
		}
	}
	return b.String()
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// RenderTerminal renders Markdown for a terminal of the given width. Style is
// a glamour standard style name such as "dark" or "notty"; empty picks one
// from the terminal background.
func RenderTerminal(md, style string, width int) (string, error) {
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(width)}
	if style == "" {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle(style))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return "", fmt.Errorf("creating markdown renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	return out, nil
}
