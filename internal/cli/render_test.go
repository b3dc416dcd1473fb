package cli

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/theirongolddev/quotekit/internal/model"
)

func init() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

var testWeights = []model.CategoryWeight{
	{Key: "development", DisplayName: "Development", Percent: 60},
	{Key: "design", DisplayName: "UI/UX Design", Percent: 40},
}

func TestCalculationRowsDiscountOnlyWhenPositive(t *testing.T) {
	calc := model.Calculation{
		Breakdown:          model.Breakdown{"development": 600, "design": 400},
		Subtotal:           1000,
		WithholdingPercent: -10,
		WithholdingAmount:  -100,
		FinalAmount:        900,
	}

	rows := CalculationRows(calc, testWeights, "BDT")
	for _, r := range rows {
		if r[0] == "Discount" {
			t.Fatal("zero discount produced a discount row")
		}
	}
	if rows[0][0] != "Development" || rows[0][2] != "BDT 600.00" {
		t.Fatalf("first row = %v, want development first", rows[0])
	}

	calc.DiscountPercent = 10
	calc.DiscountAmount = 90
	calc.FinalAmount = 810
	rows = CalculationRows(calc, testWeights, "BDT")
	last := rows[len(rows)-1]
	if last[0] != "Discount" || last[1] != "10%" || last[2] != "-BDT 90.00" {
		t.Fatalf("last row = %v, want discount line", last)
	}
}

func TestCalculationRowsKeepsUnknownKeys(t *testing.T) {
	calc := model.Calculation{Breakdown: model.Breakdown{"development": 1, "legacy": 2}}
	rows := CalculationRows(calc, testWeights, "USD")
	if rows[1][0] != "legacy" {
		t.Fatalf("rows = %v, want the unlisted key after listed ones", rows)
	}
}

func TestRenderCalculation(t *testing.T) {
	calc := model.Calculation{
		Breakdown:          model.Breakdown{"development": 600, "design": 400},
		Weights:            testWeights,
		Subtotal:           1000,
		WithholdingPercent: -10,
		WithholdingAmount:  -100,
		FinalAmount:        900,
		ProjectName:        "Shop",
	}
	out := RenderCalculation(calc, nil, "BDT")
	for _, want := range []string{"Cost Breakdown · Shop", "UI/UX Design", "BDT 400.00", "-BDT 100.00", "FINAL PAYABLE BDT 900.00"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderWeightsWarning(t *testing.T) {
	ok := RenderWeights(testWeights, 100, true)
	if strings.Contains(ok, "not 100%") {
		t.Fatalf("valid table rendered a warning:\n%s", ok)
	}
	bad := RenderWeights(testWeights, 95, false)
	if !strings.Contains(bad, "add up to 95.0%, not 100%") {
		t.Fatalf("invalid table missing warning:\n%s", bad)
	}
}

func TestRenderTableAlignsColumns(t *testing.T) {
	out := RenderTable(Table{
		Headers: []string{"A", "B"},
		Rows:    [][]string{{"x", "1"}, {"---"}, {"yy", "22"}},
	})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	width := lipgloss.Width(lines[0])
	for i, l := range lines {
		if w := lipgloss.Width(l); w != width {
			t.Fatalf("line %d width = %d, want %d:\n%s", i, w, width, out)
		}
	}
}

func TestRenderProjectsEmpty(t *testing.T) {
	if out := RenderProjects(nil, "BDT"); !strings.Contains(out, "No projects") {
		t.Fatalf("RenderProjects(nil) = %q", out)
	}
}

func TestRenderHorizontalBar(t *testing.T) {
	if got := RenderHorizontalBar(50, 100, 10); got != "█████" {
		t.Fatalf("bar = %q", got)
	}
	if got := RenderHorizontalBar(200, 100, 10); len([]rune(got)) != 10 {
		t.Fatalf("bar overflow = %q", got)
	}
	if got := RenderHorizontalBar(1, 0, 10); got != "" {
		t.Fatalf("bar with zero max = %q", got)
	}
}
