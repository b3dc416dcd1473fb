package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/quotekit/internal/model"
)

// Theme colors (Flexoki Dark)
var (
	ColorBorder    = lipgloss.Color("#282726")
	ColorTextDim   = lipgloss.Color("#575653")
	ColorTextMuted = lipgloss.Color("#6F6E69")
	ColorText      = lipgloss.Color("#FFFCF0")
	ColorAccent    = lipgloss.Color("#3AA99F")
	ColorGreen     = lipgloss.Color("#879A39")
	ColorOrange    = lipgloss.Color("#DA702C")
	ColorRed       = lipgloss.Color("#D14D41")
	ColorBlue      = lipgloss.Color("#4385BE")
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorText).
			Align(lipgloss.Center)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorAccent)

	valueStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	mutedStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)

	finalStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorGreen)

	warnStyle = lipgloss.NewStyle().
			Foreground(ColorOrange)

	dimStyle = lipgloss.NewStyle().
			Foreground(ColorTextDim)
)

// Table represents a bordered text table for CLI output.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
	Widths  []int // optional column widths, auto-calculated if nil
}

// RenderTitle renders a centered title bar in a bordered box.
func RenderTitle(title string) string {
	width := 55
	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Width(width).
		Align(lipgloss.Center).
		Padding(0, 1)

	return border.Render(titleStyle.Render(title))
}

func rule(left, mid, right string, widths []int) string {
	var b strings.Builder
	b.WriteString(dimStyle.Render(left))
	for i, w := range widths {
		b.WriteString(dimStyle.Render(strings.Repeat("─", w+2)))
		if i < len(widths)-1 {
			b.WriteString(dimStyle.Render(mid))
		}
	}
	b.WriteString(dimStyle.Render(right))
	b.WriteString("\n")
	return b.String()
}

// RenderTable renders a bordered table with headers and rows. A row holding
// the single cell "---" draws a separator. Columns after the first are right
// aligned.
func RenderTable(t Table) string {
	if len(t.Rows) == 0 && len(t.Headers) == 0 {
		return ""
	}

	numCols := len(t.Headers)
	if numCols == 0 && len(t.Rows) > 0 {
		numCols = len(t.Rows[0])
	}

	widths := make([]int, numCols)
	if t.Widths != nil {
		copy(widths, t.Widths)
	} else {
		for i, h := range t.Headers {
			widths[i] = max(widths[i], lipgloss.Width(h))
		}
		for _, row := range t.Rows {
			for i, cell := range row {
				if i < numCols {
					widths[i] = max(widths[i], lipgloss.Width(cell))
				}
			}
		}
	}

	var b strings.Builder

	if t.Title != "" {
		b.WriteString("  ")
		b.WriteString(headerStyle.Render(t.Title))
		b.WriteString("\n")
	}

	b.WriteString(rule("╭", "┬", "╮", widths))

	if len(t.Headers) > 0 {
		b.WriteString(dimStyle.Render("│"))
		for i, h := range t.Headers {
			b.WriteString(headerStyle.Render(pad(h, widths[i], i > 0)))
			if i < numCols-1 {
				b.WriteString(dimStyle.Render("│"))
			}
		}
		b.WriteString(dimStyle.Render("│"))
		b.WriteString("\n")
		b.WriteString(rule("├", "┼", "┤", widths))
	}

	for _, row := range t.Rows {
		if len(row) == 1 && row[0] == "---" {
			b.WriteString(rule("├", "┼", "┤", widths))
			continue
		}

		b.WriteString(dimStyle.Render("│"))
		for i := 0; i < numCols; i++ {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			b.WriteString(valueStyle.Render(pad(cell, widths[i], i > 0)))
			if i < numCols-1 {
				b.WriteString(dimStyle.Render("│"))
			}
		}
		b.WriteString(dimStyle.Render("│"))
		b.WriteString("\n")
	}

	b.WriteString(rule("╰", "┴", "╯", widths))
	return b.String()
}

func pad(s string, w int, right bool) string {
	gap := w - lipgloss.Width(s)
	if gap < 0 {
		gap = 0
	}
	if right {
		return " " + strings.Repeat(" ", gap) + s + " "
	}
	return " " + s + strings.Repeat(" ", gap) + " "
}

// CalculationRows returns the category, percent and amount rows of a
// quotation, followed by the subtotal, withholding, optional discount and
// final lines. Categories follow the order of weights; breakdown keys not in
// weights come last in key order.
func CalculationRows(calc model.Calculation, weights []model.CategoryWeight, currency string) [][]string {
	rows := make([][]string, 0, len(calc.Breakdown)+6)
	seen := make(map[string]bool, len(weights))
	for _, w := range weights {
		amount, ok := calc.Breakdown[w.Key]
		if !ok {
			continue
		}
		seen[w.Key] = true
		rows = append(rows, []string{w.DisplayName, FormatPercent(w.Percent), FormatCurrency(amount, currency)})
	}
	for _, k := range calc.Breakdown.Keys() {
		if !seen[k] {
			rows = append(rows, []string{k, "", FormatCurrency(calc.Breakdown[k], currency)})
		}
	}

	rows = append(rows,
		[]string{"---"},
		[]string{"Subtotal", "", FormatCurrency(calc.Subtotal, currency)},
		[]string{"Withholding", FormatPercent(calc.WithholdingPercent), FormatCurrency(calc.WithholdingAmount, currency)},
	)
	if calc.DiscountPercent > 0 {
		rows = append(rows, []string{"Discount", FormatPercent(calc.DiscountPercent), FormatCurrency(-calc.DiscountAmount, currency)})
	}
	return rows
}

// RenderCalculation renders a reconciled calculation as a quotation table.
func RenderCalculation(calc model.Calculation, weights []model.CategoryWeight, currency string) string {
	if len(weights) == 0 {
		weights = calc.Weights
	}
	title := "Cost Breakdown"
	if calc.ProjectName != "" {
		title += " · " + calc.ProjectName
	}
	out := RenderTable(Table{
		Title:   title,
		Headers: []string{"Category", "Share", "Amount"},
		Rows:    CalculationRows(calc, weights, currency),
	})
	return out + fmt.Sprintf("  %s %s\n", headerStyle.Render("FINAL PAYABLE"), finalStyle.Render(FormatCurrency(calc.FinalAmount, currency)))
}

// RenderWeights renders an allocation table with its running total. A table
// that does not add up to 100 gets a persistent warning line.
func RenderWeights(weights []model.CategoryWeight, sum float64, valid bool) string {
	maxPct := 0.0
	for _, w := range weights {
		maxPct = max(maxPct, w.Percent)
	}

	rows := make([][]string, 0, len(weights)+2)
	for _, w := range weights {
		rows = append(rows, []string{w.Key, w.DisplayName, FormatPercent(w.Percent), RenderHorizontalBar(w.Percent, maxPct, 20)})
	}
	rows = append(rows, []string{"---"}, []string{"", "Total", FormatTotal(sum), ""})

	out := RenderTable(Table{
		Title:   "Allocation Table",
		Headers: []string{"Key", "Category", "Percent", ""},
		Rows:    rows,
	})
	if !valid {
		out += "  " + warnStyle.Render(fmt.Sprintf("Weights add up to %s, not 100%%. Estimates are disabled until this is fixed.", FormatTotal(sum))) + "\n"
	}
	return out
}

// RenderProjects renders a project listing.
func RenderProjects(projects []model.Project, currency string) string {
	if len(projects) == 0 {
		return mutedStyle.Render("  No projects saved yet.") + "\n"
	}
	rows := make([][]string, 0, len(projects))
	for _, p := range projects {
		rows = append(rows, []string{p.ID, p.Name, string(p.Status), FormatDate(p.CreatedAt), FormatCurrency(p.Calculation.FinalAmount, currency)})
	}
	return RenderTable(Table{
		Title:   fmt.Sprintf("Projects (%s)", FormatNumber(int64(len(projects)))),
		Headers: []string{"ID", "Name", "Status", "Created", "Final"},
		Rows:    rows,
	})
}

// RenderHorizontalBar renders a bar of at most maxWidth cells for value
// relative to maxValue.
func RenderHorizontalBar(value, maxValue float64, maxWidth int) string {
	if maxValue <= 0 {
		return ""
	}
	barLen := int(value / maxValue * float64(maxWidth))
	barLen = min(max(barLen, 0), maxWidth)
	return strings.Repeat("█", barLen)
}
