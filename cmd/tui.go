package cmd

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/quotekit/internal/config"
	"github.com/theirongolddev/quotekit/internal/tui"
	"github.com/theirongolddev/quotekit/internal/tui/theme"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive calculator",
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(_ *cobra.Command, _ []string) error {
	// Notifications go to the log only; the status line shows them on screen.
	a, err := openApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	theme.SetActive(a.cfg.Appearance.Theme)
	lipgloss.SetColorProfile(termenv.TrueColor)

	path := configPathOrDefault()

	app := tui.NewApp(tui.Options{
		Config:     a.cfg,
		ConfigPath: path,
		Store:      a.store,
		Drafts:     a.drafts,
		Logger:     a.log,
		Notifier:   a.notify,
		FirstRun:   !config.Exists(path),
	})
	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
