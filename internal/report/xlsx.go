package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/theirongolddev/quotekit/internal/model"
	"github.com/theirongolddev/quotekit/internal/notes"
)

// SheetName is the worksheet holding the quotation.
const SheetName = "Estimate"

// numFmtAmount is the built-in "#,##0.00" format; numFmtPercent is "0.00%".
const (
	numFmtAmount  = 4
	numFmtPercent = 10
)

type sheetStyles struct {
	title, meta, header, label, amount, percent, final, finalAmount, notes int
}

func newSheetStyles(f *excelize.File, st Style) (sheetStyles, error) {
	hex := fmt.Sprintf("#%02X%02X%02X", st.HeaderRGB[0], st.HeaderRGB[1], st.HeaderRGB[2])
	defs := []*excelize.Style{
		{
			Font:      &excelize.Font{Bold: true, Size: 18, Color: "#FFFFFF"},
			Fill:      excelize.Fill{Type: "pattern", Color: []string{hex}, Pattern: 1},
			Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
		},
		{Font: &excelize.Font{Size: 10, Color: "#6F6E69"}},
		{
			Font:   &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
			Fill:   excelize.Fill{Type: "pattern", Color: []string{hex}, Pattern: 1},
			Border: []excelize.Border{{Type: "bottom", Color: "#000000", Style: 1}},
		},
		{Font: &excelize.Font{Size: 10}},
		{Font: &excelize.Font{Size: 10}, NumFmt: numFmtAmount},
		{Font: &excelize.Font{Size: 10}, NumFmt: numFmtPercent},
		{
			Font: &excelize.Font{Bold: true, Size: 12},
			Fill: excelize.Fill{Type: "pattern", Color: []string{"#DCFCE7"}, Pattern: 1},
		},
		{
			Font:   &excelize.Font{Bold: true, Size: 12},
			Fill:   excelize.Fill{Type: "pattern", Color: []string{"#DCFCE7"}, Pattern: 1},
			NumFmt: numFmtAmount,
		},
		{
			Font:      &excelize.Font{Size: 10},
			Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
		},
	}
	ids := make([]int, len(defs))
	for i, def := range defs {
		id, err := f.NewStyle(def)
		if err != nil {
			return sheetStyles{}, fmt.Errorf("creating style: %w", err)
		}
		ids[i] = id
	}
	return sheetStyles{ids[0], ids[1], ids[2], ids[3], ids[4], ids[5], ids[6], ids[7], ids[8]}, nil
}

// sheetRow is one line of the quotation table with numeric cells.
type sheetRow struct {
	label   string
	percent *float64
	amount  float64
	final   bool
}

func quoteSheetRows(q Quote) []sheetRow {
	calc := q.Calculation
	pct := func(v float64) *float64 { v /= 100; return &v }

	var rows []sheetRow
	seen := map[string]bool{}
	for _, w := range q.weights() {
		if amount, ok := calc.Breakdown[w.Key]; ok {
			seen[w.Key] = true
			rows = append(rows, sheetRow{label: w.DisplayName, percent: pct(w.Percent), amount: amount})
		}
	}
	for _, k := range calc.Breakdown.Keys() {
		if !seen[k] {
			rows = append(rows, sheetRow{label: k, amount: calc.Breakdown[k]})
		}
	}
	rows = append(rows,
		sheetRow{label: "Subtotal", amount: calc.Subtotal},
		sheetRow{label: "Withholding", percent: pct(calc.WithholdingPercent), amount: calc.WithholdingAmount},
	)
	if calc.DiscountPercent > 0 {
		rows = append(rows, sheetRow{label: "Discount", percent: pct(calc.DiscountPercent), amount: -calc.DiscountAmount})
	}
	return append(rows, sheetRow{label: "FINAL PAYABLE", amount: calc.FinalAmount, final: true})
}

// sheetDoc writes cells to the quotation sheet and keeps the first error.
type sheetDoc struct {
	f   *excelize.File
	err error
}

func (d *sheetDoc) set(cell string, v any, style int) {
	if d.err == nil {
		d.err = d.f.SetCellValue(SheetName, cell, v)
	}
	d.style(cell, cell, style)
}

func (d *sheetDoc) style(from, to string, style int) {
	if d.err == nil {
		d.err = d.f.SetCellStyle(SheetName, from, to, style)
	}
}

func (d *sheetDoc) merge(from, to string) {
	if d.err == nil {
		d.err = d.f.MergeCell(SheetName, from, to)
	}
}

func (d *sheetDoc) rowHeight(row int, height float64) {
	if d.err == nil {
		d.err = d.f.SetRowHeight(SheetName, row, height)
	}
}

func (d *sheetDoc) colWidth(col string, width float64) {
	if d.err == nil {
		d.err = d.f.SetColWidth(SheetName, col, col, width)
	}
}

// WriteXLSX renders q as a single-sheet workbook.
func WriteXLSX(w io.Writer, q Quote, st Style) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}
	styles, err := newSheetStyles(f, st)
	if err != nil {
		return err
	}
	d := &sheetDoc{f: f}

	d.merge("A1", "C1")
	d.set("A1", st.Title, styles.title)
	d.style("A1", "C1", styles.title)
	d.rowHeight(1, 32)

	d.set("A2", "Project: "+q.name(), styles.meta)
	d.set("A3", "Date: "+q.Date.Format("Jan 2, 2006"), styles.meta)
	if q.ID != "" {
		d.set("C2", "ID: "+q.ID, styles.meta)
	}
	d.set("C3", "Currency: "+q.Currency, styles.meta)

	for i, h := range []string{"Category", "Share", "Amount"} {
		d.set(string(rune('A'+i))+"5", h, styles.header)
	}

	row := 6
	for _, r := range quoteSheetRows(q) {
		labelStyle, amountStyle := styles.label, styles.amount
		if r.final {
			labelStyle, amountStyle = styles.final, styles.finalAmount
			d.style(fmt.Sprintf("B%d", row), fmt.Sprintf("B%d", row), styles.final)
		}
		d.set(fmt.Sprintf("A%d", row), r.label, labelStyle)
		if r.percent != nil {
			d.set(fmt.Sprintf("B%d", row), model.Round2(*r.percent*100)/100, styles.percent)
		}
		d.set(fmt.Sprintf("C%d", row), model.Round2(r.amount), amountStyle)
		row++
	}

	if text := notes.PlainText(q.Notes); text != "" {
		row++
		d.set(fmt.Sprintf("A%d", row), "Project Details", styles.header)
		row++
		for _, line := range strings.Split(text, "\n") {
			start, end := fmt.Sprintf("A%d", row), fmt.Sprintf("C%d", row)
			d.merge(start, end)
			d.set(start, line, styles.notes)
			row++
		}
	}

	d.colWidth("A", 34)
	d.colWidth("B", 12)
	d.colWidth("C", 20)
	if d.err != nil {
		return fmt.Errorf("building xlsx: %w", d.err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing xlsx: %w", err)
	}
	return nil
}
