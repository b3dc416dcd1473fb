package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/quotekit/internal/cli"
	"github.com/theirongolddev/quotekit/internal/notes"
	"github.com/theirongolddev/quotekit/internal/notify"
	"github.com/theirongolddev/quotekit/internal/report"
	"github.com/theirongolddev/quotekit/internal/store"
)

var (
	projSearch   string
	projMarkdown bool
	projYes      bool
	projOutput   string
	projBare     bool
)

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "Manage saved projects",
}

var projectsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved projects, newest first",
	Args:  cobra.NoArgs,
	RunE:  runProjectsList,
}

var projectsShowCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show one project's breakdown and notes",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectsShow,
}

var projectsDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a project",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectsDelete,
}

var projectsDuplicateCmd = &cobra.Command{
	Use:   "duplicate ID",
	Short: "Copy a project as a new draft",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectsDuplicate,
}

var projectsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write every project as a JSON backup",
	Args:  cobra.NoArgs,
	RunE:  runProjectsExport,
}

var projectsImportCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Add the projects of an export file",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectsImport,
}

var projectsRestoreCmd = &cobra.Command{
	Use:   "restore FILE",
	Short: "Replace all projects with a backup",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectsRestore,
}

var projectsPDFCmd = &cobra.Command{
	Use:   "pdf ID",
	Short: "Write a project's PDF quotation",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectsDocument(".pdf", report.WritePDF),
}

var projectsXLSXCmd = &cobra.Command{
	Use:   "xlsx ID",
	Short: "Write a project's spreadsheet quotation",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectsDocument(".xlsx", report.WriteXLSX),
}

func init() {
	projectsListCmd.Flags().StringVarP(&projSearch, "search", "s", "", "Filter by name or id (case-insensitive)")
	projectsShowCmd.Flags().BoolVar(&projMarkdown, "markdown", false, "Render as a formatted Markdown summary")
	projectsDeleteCmd.Flags().BoolVarP(&projYes, "yes", "y", false, "Do not ask for confirmation")
	projectsRestoreCmd.Flags().BoolVarP(&projYes, "yes", "y", false, "Do not ask for confirmation")
	projectsExportCmd.Flags().StringVarP(&projOutput, "output", "o", "", "Output file (default stdout)")
	projectsExportCmd.Flags().BoolVar(&projBare, "bare", false, "Write a plain project array without the backup envelope")
	projectsPDFCmd.Flags().StringVarP(&projOutput, "output", "o", "", "Output file (default <name>_Estimate.pdf)")
	projectsXLSXCmd.Flags().StringVarP(&projOutput, "output", "o", "", "Output file (default <name>_Estimate.xlsx)")

	projectsCmd.AddCommand(
		projectsListCmd,
		projectsShowCmd,
		projectsDeleteCmd,
		projectsDuplicateCmd,
		projectsExportCmd,
		projectsImportCmd,
		projectsRestoreCmd,
		projectsPDFCmd,
		projectsXLSXCmd,
	)
	rootCmd.AddCommand(projectsCmd)
}

func runProjectsList(_ *cobra.Command, _ []string) error {
	a, err := openApp(true)
	if err != nil {
		return err
	}
	defer a.Close()

	projects := a.store.List()
	if projSearch != "" {
		projects = a.store.Search(projSearch)
	}
	if len(projects) == 0 {
		if projSearch != "" {
			fmt.Printf("\n  No projects match %q.\n", projSearch)
		} else {
			fmt.Println("\n  No saved projects. Create one with `quotekit calc --save`.")
		}
		return nil
	}

	fmt.Println()
	fmt.Print(cli.RenderProjects(projects, a.cfg.General.Currency))
	return nil
}

func runProjectsShow(_ *cobra.Command, args []string) error {
	a, err := openApp(true)
	if err != nil {
		return err
	}
	defer a.Close()

	p, err := a.store.Get(args[0])
	if err != nil {
		return err
	}
	cur := a.cfg.General.Currency

	if projMarkdown {
		out, err := report.RenderTerminal(report.Markdown(report.FromProject(p, cur)), "", 80)
		if err != nil {
			return err
		}
		fmt.Print(out)
		return nil
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(p.Name))
	fmt.Printf("  %s  ·  %s  ·  %s\n", p.ID, p.Status, cli.FormatDate(p.CreatedAt))
	fmt.Println()
	fmt.Print(cli.RenderCalculation(p.Calculation, p.Calculation.Weights, cur))
	if text := notes.PlainText(p.Notes); text != "" {
		fmt.Println()
		fmt.Println("  Project Details")
		for _, line := range strings.Split(text, "\n") {
			fmt.Println("    " + line)
		}
	}
	fmt.Println()
	return nil
}

// confirm asks a yes/no question unless --yes was given.
func confirm(title, description string) (bool, error) {
	if projYes {
		return true, nil
	}
	ok := false
	err := huh.NewConfirm().
		Title(title).
		Description(description).
		Affirmative("Yes").
		Negative("No").
		Value(&ok).
		Run()
	if err != nil {
		return false, err
	}
	return ok, nil
}

func runProjectsDelete(_ *cobra.Command, args []string) error {
	a, err := openApp(true)
	if err != nil {
		return err
	}
	defer a.Close()

	id := args[0]
	if p, err := a.store.Get(id); err == nil {
		ok, err := confirm(fmt.Sprintf("Delete %q (%s)?", p.Name, p.ID), "This cannot be undone.")
		if err != nil {
			return err
		}
		if !ok {
			a.notify.Notify("Nothing deleted", notify.Info)
			return nil
		}
	}
	if _, err := a.sess.DeleteProject(id); err != nil {
		return shown(err)
	}
	return nil
}

func runProjectsDuplicate(_ *cobra.Command, args []string) error {
	a, err := openApp(true)
	if err != nil {
		return err
	}
	defer a.Close()

	if _, err := a.sess.DuplicateProject(args[0]); err != nil {
		return shown(err)
	}
	return nil
}

func runProjectsExport(_ *cobra.Command, _ []string) error {
	a, err := openApp(true)
	if err != nil {
		return err
	}
	defer a.Close()

	var data []byte
	if projBare {
		data, err = store.ExportProjects(a.store.List())
	} else {
		data, err = a.store.ExportAll()
	}
	if err != nil {
		return err
	}

	if projOutput == "" {
		_, err = os.Stdout.Write(append(data, '\n'))
		return err
	}
	if err := os.WriteFile(projOutput, data, 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", projOutput, err)
	}
	a.notify.Notify(fmt.Sprintf("Exported %d project(s) to %s", a.store.Len(), projOutput), notify.Success)
	return nil
}

func runProjectsImport(_ *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}
	a, err := openApp(true)
	if err != nil {
		return err
	}
	defer a.Close()

	if _, err := a.sess.ImportProjects(data); err != nil {
		return shown(err)
	}
	return nil
}

func runProjectsRestore(_ *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}
	a, err := openApp(true)
	if err != nil {
		return err
	}
	defer a.Close()

	if a.store.Len() > 0 {
		ok, err := confirm(
			fmt.Sprintf("Replace all %d saved project(s)?", a.store.Len()),
			"Restoring a backup removes every project not in "+args[0]+".")
		if err != nil {
			return err
		}
		if !ok {
			a.notify.Notify("Nothing restored", notify.Info)
			return nil
		}
	}
	if _, err := a.sess.RestoreBackup(data); err != nil {
		return shown(err)
	}
	return nil
}

// runProjectsDocument writes a stored project through write, naming the file
// after the project unless -o is given.
func runProjectsDocument(ext string, write func(io.Writer, report.Quote, report.Style) error) func(*cobra.Command, []string) error {
	return func(_ *cobra.Command, args []string) error {
		a, err := openApp(true)
		if err != nil {
			return err
		}
		defer a.Close()

		p, err := a.store.Get(args[0])
		if err != nil {
			return err
		}
		path := projOutput
		if path == "" {
			path = report.FileName(p.Name, ext)
		}

		q := report.FromProject(p, a.cfg.General.Currency)
		st := documentStyle(a.cfg)
		if err := writeFile(path, func(w io.Writer) error { return write(w, q, st) }); err != nil {
			return err
		}
		a.notify.Notify(fmt.Sprintf("Wrote %s", path), notify.Success)
		return nil
	}
}
