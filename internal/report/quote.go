// Package report renders a calculation as a client-facing quotation: PDF,
// spreadsheet, or Markdown.
package report

import (
	"regexp"
	"time"

	"github.com/theirongolddev/quotekit/internal/cli"
	"github.com/theirongolddev/quotekit/internal/model"
)

// Quote is everything a quotation document shows.
type Quote struct {
	ID          string
	Name        string
	Date        time.Time
	Calculation model.Calculation
	// Weights orders and labels the breakdown. Calculation.Weights is used
	// when empty.
	Weights  []model.CategoryWeight
	Notes    string // HTML
	Currency string
}

// Style holds the configurable look of generated documents.
type Style struct {
	Title     string
	HeaderRGB [3]uint8
}

// DefaultStyle returns the stock document style.
func DefaultStyle() Style {
	return Style{Title: "PROJECT ESTIMATE", HeaderRGB: [3]uint8{102, 126, 234}}
}

// FromProject builds a quote for a stored project.
func FromProject(p model.Project, currency string) Quote {
	return Quote{
		ID:          p.ID,
		Name:        p.Name,
		Date:        p.CreatedAt,
		Calculation: p.Calculation,
		Notes:       p.Notes,
		Currency:    currency,
	}
}

func (q Quote) weights() []model.CategoryWeight {
	if len(q.Weights) > 0 {
		return q.Weights
	}
	return q.Calculation.Weights
}

func (q Quote) name() string {
	if q.Name != "" {
		return q.Name
	}
	return q.Calculation.ProjectName
}

// rows returns the quotation table body followed by the final line.
func (q Quote) rows() [][]string {
	rows := cli.CalculationRows(q.Calculation, q.weights(), q.Currency)
	return append(rows, []string{"---"}, []string{"FINAL PAYABLE", "", cli.FormatCurrency(q.Calculation.FinalAmount, q.Currency)})
}

var unsafeName = regexp.MustCompile(`[^a-zA-Z0-9]`)

// FileName returns the download name for a quote document, e.g.
// "Coffee Shop" and ".pdf" give "Coffee_Shop_Estimate.pdf".
func FileName(projectName, ext string) string {
	if projectName == "" {
		projectName = "Untitled"
	}
	return unsafeName.ReplaceAllString(projectName, "_") + "_Estimate" + ext
}
