package report

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/signintech/gopdf"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/theirongolddev/quotekit/internal/notes"
)

// A4 portrait in points.
const (
	pageW      = 595.28
	pageH      = 841.89
	margin     = 57.0
	bottom     = pageH - 57
	headerH    = 113.0
	rowH       = 22.0
	noteLineH  = 14.0
	fontFamily = "go"
	fontBold   = "go-bold"
)

// pdfDoc wraps gopdf and keeps the first error so drawing code stays linear.
type pdfDoc struct {
	pdf   *gopdf.GoPdf
	y     float64
	pages int
	err   error
}

func (d *pdfDoc) font(family string, size float64) {
	if d.err == nil {
		d.err = d.pdf.SetFont(family, "", size)
	}
}

func (d *pdfDoc) text(x, y float64, s string) {
	if d.err != nil {
		return
	}
	d.pdf.SetXY(x, y)
	d.err = d.pdf.Cell(nil, s)
}

func (d *pdfDoc) width(s string) float64 {
	if d.err != nil {
		return 0
	}
	w, err := d.pdf.MeasureTextWidth(s)
	if err != nil {
		d.err = err
	}
	return w
}

func (d *pdfDoc) textRight(right, y float64, s string) {
	d.text(right-d.width(s), y, s)
}

// ensure starts a new page when h more points would cross the bottom margin.
func (d *pdfDoc) ensure(h float64) {
	if d.y+h <= bottom {
		return
	}
	d.pdf.AddPage()
	d.pages++
	d.y = margin
}

// WritePDF renders q as a PDF quotation, adding pages as the content needs.
func WritePDF(w io.Writer, q Quote, st Style) error {
	d, err := renderPDF(q, st)
	if err != nil {
		return err
	}
	if _, err := d.pdf.WriteTo(w); err != nil {
		return fmt.Errorf("writing pdf: %w", err)
	}
	return nil
}

func renderPDF(q Quote, st Style) (*pdfDoc, error) {
	pdf := &gopdf.GoPdf{}
	pdf.Start(gopdf.Config{PageSize: *gopdf.PageSizeA4})
	if err := pdf.AddTTFFontData(fontFamily, goregular.TTF); err != nil {
		return nil, fmt.Errorf("loading font: %w", err)
	}
	if err := pdf.AddTTFFontData(fontBold, gobold.TTF); err != nil {
		return nil, fmt.Errorf("loading font: %w", err)
	}
	pdf.AddPage()

	d := &pdfDoc{pdf: pdf, pages: 1}
	d.header(q, st)
	d.breakdown(q)
	d.details(q)
	if d.err != nil {
		return nil, fmt.Errorf("drawing pdf: %w", d.err)
	}
	return d, nil
}

func (d *pdfDoc) header(q Quote, st Style) {
	d.pdf.SetFillColor(st.HeaderRGB[0], st.HeaderRGB[1], st.HeaderRGB[2])
	d.pdf.RectFromUpperLeftWithStyle(0, 0, pageW, headerH, "F")

	d.pdf.SetTextColor(255, 255, 255)
	d.font(fontBold, 24)
	d.text(margin, 50, st.Title)

	d.font(fontFamily, 10)
	right := pageW - margin
	d.textRight(right, 30, "Date: "+q.Date.Format("Jan 2, 2006"))
	d.textRight(right, 48, "Project: "+q.name())
	if q.ID != "" {
		d.textRight(right, 66, "ID: "+q.ID)
	}
	d.pdf.SetTextColor(0, 0, 0)
	d.y = headerH + 50
}

func (d *pdfDoc) breakdown(q Quote) {
	d.font(fontBold, 16)
	d.text(margin, d.y, "Cost Breakdown")
	d.y += 34

	const pctRight = 400.0
	amtRight := pageW - margin

	d.font(fontFamily, 10)
	for _, row := range q.rows() {
		if len(row) == 1 {
			d.y += 6
			continue
		}
		d.ensure(rowH)
		if row[0] == "FINAL PAYABLE" {
			d.pdf.SetFillColor(220, 252, 231)
			d.pdf.RectFromUpperLeftWithStyle(margin-6, d.y-6, amtRight-margin+12, rowH+4, "F")
			d.font(fontBold, 14)
		}
		d.text(margin, d.y, row[0])
		if row[1] != "" {
			d.textRight(pctRight, d.y, row[1])
		}
		d.textRight(amtRight, d.y, row[2])
		d.y += rowH
	}
	d.font(fontFamily, 10)
}

func (d *pdfDoc) details(q Quote) {
	text := notes.PlainText(q.Notes)
	if text == "" {
		return
	}

	d.y += 24
	d.ensure(40)
	d.font(fontBold, 14)
	d.text(margin, d.y, "Project Details")
	d.y += 24

	d.font(fontFamily, 10)
	for _, para := range strings.Split(text, "\n") {
		for _, line := range d.wrap(para, pageW-2*margin) {
			d.ensure(noteLineH)
			d.text(margin, d.y, line)
			d.y += noteLineH
		}
	}
}

// wrap splits s into lines no wider than limit, breaking at spaces and, for
// words longer than a line, inside the word.
func (d *pdfDoc) wrap(s string, limit float64) []string {
	var lines []string
	line := ""
	for _, word := range strings.Fields(s) {
		candidate := word
		if line != "" {
			candidate = line + " " + word
		}
		if d.width(candidate) <= limit {
			line = candidate
			continue
		}
		if line != "" {
			lines = append(lines, line)
		}
		line = ""
		for d.width(word) > limit {
			cut := d.fit(word, limit)
			lines = append(lines, word[:cut])
			word = word[cut:]
		}
		line = word
	}
	if line != "" {
		lines = append(lines, line)
	}
	return lines
}

// fit returns the byte length of the longest prefix of word within limit,
// never less than one rune.
func (d *pdfDoc) fit(word string, limit float64) int {
	end := 0
	for i := range word {
		if i > 0 && d.width(word[:i]) > limit {
			break
		}
		end = i
	}
	if end == 0 {
		_, size := utf8.DecodeRuneInString(word)
		return size
	}
	return end
}
