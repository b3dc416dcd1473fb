package cmd

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/quotekit/internal/config"
	"github.com/theirongolddev/quotekit/internal/tui"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Interactive setup wizard",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	cfg, err = tui.RunSetup(cmd.Context(), cfg)
	if errors.Is(err, huh.ErrUserAborted) {
		fmt.Println("  Setup cancelled; nothing saved.")
		return nil
	}
	if err != nil {
		return err
	}

	path := configPathOrDefault()
	if err := config.Save(cfg, path); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Println()
	fmt.Printf("  Saved to %s\n", path)
	fmt.Println("  Run `quotekit setup` anytime to reconfigure.")
	fmt.Println()
	return nil
}
