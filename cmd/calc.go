package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/quotekit/internal/cli"
	"github.com/theirongolddev/quotekit/internal/model"
	"github.com/theirongolddev/quotekit/internal/notes"
	"github.com/theirongolddev/quotekit/internal/notify"
	"github.com/theirongolddev/quotekit/internal/report"
	"github.com/theirongolddev/quotekit/internal/session"
)

var (
	calcTotal       string
	calcCategory    string
	calcWithholding string
	calcDiscount    string
	calcName        string
	calcNotes       string
	calcSave        bool
	calcPDF         string
	calcXLSX        string
	calcJSON        bool
)

var calcCmd = &cobra.Command{
	Use:   "calc",
	Short: "Estimate a project from its price or one category cost",
	Example: `  quotekit calc --total 150000 --name "Coffee Shop"
  quotekit calc --category development=40500 --discount 5 --save
  quotekit calc --total 80000 --withholding 0 --pdf quote.pdf`,
	RunE: runCalc,
}

func init() {
	calcCmd.Flags().StringVar(&calcTotal, "total", "", "Base price of the project")
	calcCmd.Flags().StringVar(&calcCategory, "category", "", "Known cost of one category, as key=amount")
	calcCmd.Flags().StringVar(&calcWithholding, "withholding", "", "Tax withholding percent (default from config)")
	calcCmd.Flags().StringVar(&calcDiscount, "discount", "", "Discount percent, 0-100")
	calcCmd.Flags().StringVar(&calcName, "name", "", "Project name")
	calcCmd.Flags().StringVar(&calcNotes, "notes", "", "Markdown file with project details")
	calcCmd.Flags().BoolVar(&calcSave, "save", false, "Store the estimate as a project")
	calcCmd.Flags().StringVar(&calcPDF, "pdf", "", "Write a PDF quotation to this file")
	calcCmd.Flags().StringVar(&calcXLSX, "xlsx", "", "Write a spreadsheet quotation to this file")
	calcCmd.Flags().BoolVar(&calcJSON, "json", false, "Print the calculation as JSON")
	calcCmd.MarkFlagsMutuallyExclusive("total", "category")
	calcCmd.MarkFlagsOneRequired("total", "category")
	rootCmd.AddCommand(calcCmd)
}

// calcForm turns the command flags into calculator fields.
func calcForm() (session.Form, error) {
	form := session.Form{
		session.FieldProjectName: calcName,
		session.FieldWithholding: calcWithholding,
		session.FieldDiscount:    calcDiscount,
	}
	if calcTotal != "" {
		form[session.FieldTotal] = calcTotal
		return form, nil
	}
	key, amount, ok := strings.Cut(calcCategory, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" || strings.TrimSpace(amount) == "" {
		return nil, fmt.Errorf("--category wants key=amount, got %q", calcCategory)
	}
	form[key] = strings.TrimSpace(amount)
	return form, nil
}

func runCalc(_ *cobra.Command, _ []string) error {
	form, err := calcForm()
	if err != nil {
		return err
	}

	a, err := openApp(true)
	if err != nil {
		return err
	}
	defer a.Close()

	if calcCategory != "" {
		key, _, _ := strings.Cut(calcCategory, "=")
		if _, ok := lookupWeight(a.cfg.Allocation.Categories, strings.TrimSpace(key)); !ok {
			return fmt.Errorf("unknown category %q (see `quotekit weights`)", key)
		}
	}

	if calcNotes != "" {
		src, err := os.ReadFile(calcNotes)
		if err != nil {
			return fmt.Errorf("reading notes: %w", err)
		}
		html, err := notes.FromMarkdown(src)
		if err != nil {
			return err
		}
		a.editor.SetContent(html)
	}

	calc, err := a.sess.Recalculate(form)
	if err != nil {
		return shown(err)
	}

	q := report.Quote{
		Name:        calc.ProjectName,
		Date:        calc.CreatedAt,
		Calculation: calc,
		Notes:       a.sess.Notes(),
		Currency:    a.cfg.General.Currency,
	}
	if calcSave {
		p, err := a.sess.SaveProject(calcName)
		if err != nil {
			return shown(err)
		}
		q = report.FromProject(p, a.cfg.General.Currency)
	}

	if calcJSON {
		out, err := json.MarshalIndent(calc.Rounded(), "", "  ")
		if err != nil {
			return fmt.Errorf("encoding calculation: %w", err)
		}
		fmt.Println(string(out))
	} else {
		fmt.Println()
		fmt.Print(cli.RenderCalculation(calc, calc.Weights, a.cfg.General.Currency))
		fmt.Println()
	}

	st := documentStyle(a.cfg)
	if calcPDF != "" {
		if err := writeFile(calcPDF, func(w io.Writer) error { return report.WritePDF(w, q, st) }); err != nil {
			return err
		}
		a.notify.Notify("PDF written to "+calcPDF, notify.Success)
	}
	if calcXLSX != "" {
		if err := writeFile(calcXLSX, func(w io.Writer) error { return report.WriteXLSX(w, q, st) }); err != nil {
			return err
		}
		a.notify.Notify("Spreadsheet written to "+calcXLSX, notify.Success)
	}
	return nil
}

func lookupWeight(weights []model.CategoryWeight, key string) (model.CategoryWeight, bool) {
	if i := indexOfWeight(weights, key); i >= 0 {
		return weights[i], true
	}
	return model.CategoryWeight{}, false
}
