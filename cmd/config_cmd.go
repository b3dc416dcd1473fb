package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/quotekit/internal/cli"
	"github.com/theirongolddev/quotekit/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	path := configPathOrDefault()
	fmt.Printf("  Config file: %s\n", path)
	if config.Exists(path) {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [General]")
	fmt.Printf("    Default project name: %s\n", cfg.General.ProjectNameDefault)
	fmt.Printf("    Currency:             %s\n", cfg.General.Currency)
	fmt.Println()

	fmt.Println("  [Allocation]")
	for _, w := range cfg.Allocation.Categories {
		fmt.Printf("    %-16s %-28s %s\n", w.Key, w.DisplayName, cli.FormatPercent(w.Percent))
	}
	fmt.Println()

	fmt.Println("  [Withholding]")
	fmt.Printf("    Percent: %s\n", cli.FormatPercent(cfg.Withholding.Percent))
	fmt.Println()

	fmt.Println("  [Storage]")
	db := cfg.DBPath()
	if flagDB != "" {
		db = flagDB
	}
	fmt.Printf("    Database: %s\n", db)
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  [PDF]")
	fmt.Printf("    Title:      %s\n", cfg.PDF.Title)
	fmt.Printf("    Header RGB: %v\n", cfg.PDF.HeaderRGB)
	fmt.Println()

	if err := cfg.Validate(); err != nil {
		fmt.Printf("  %v\n\n", err)
	}
	fmt.Printf("  Run `quotekit setup` to reconfigure. Environment: %s, %s, %s.\n",
		config.EnvConfig, config.EnvDB, config.EnvCurrency)
	return nil
}
