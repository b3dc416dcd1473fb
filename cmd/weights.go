package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/quotekit/internal/cli"
	"github.com/theirongolddev/quotekit/internal/config"
	"github.com/theirongolddev/quotekit/internal/estimate"
	"github.com/theirongolddev/quotekit/internal/model"
	"github.com/theirongolddev/quotekit/internal/notify"
	"github.com/theirongolddev/quotekit/internal/session"
)

var weightsCmd = &cobra.Command{
	Use:   "weights",
	Short: "Show the allocation table and its running total",
	Args:  cobra.NoArgs,
	RunE:  runWeights,
}

var weightsSetCmd = &cobra.Command{
	Use:   "set KEY=PERCENT...",
	Short: "Change category percentages and save them to the config file",
	Long: "Change one or more category percentages. The table is saved even when it\n" +
		"no longer adds up to 100%, so it can be balanced over several calls;\n" +
		"estimates stay disabled until it does.",
	Example: `  quotekit weights set development=45 overhead=5.5`,
	Args:    cobra.MinimumNArgs(1),
	RunE:    runWeightsSet,
}

var weightsResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore the stock allocation table in the config file",
	Args:  cobra.NoArgs,
	RunE:  runWeightsReset,
}

func init() {
	weightsCmd.AddCommand(weightsSetCmd, weightsResetCmd)
	rootCmd.AddCommand(weightsCmd)
}

func runWeights(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	printWeights(cfg.Allocation.Categories)
	return nil
}

// printWeights shows a table through a session so an unbalanced one is
// reported as a warning on stderr.
func printWeights(weights []model.CategoryWeight) {
	sess := session.New(session.Options{
		Weights:  weights,
		Notifier: notify.NewTerminal(os.Stderr, flagQuiet),
	})
	st := sess.TableStatus()

	fmt.Println()
	fmt.Print(cli.RenderWeights(st.Weights, st.Sum, st.Valid))
	fmt.Println()
	if st.Valid {
		fmt.Println("  Change it with `quotekit weights set key=percent`, or edit [[allocation.categories]] in " + configPathOrDefault() + ".")
	}
}

// applyWeightArgs returns a copy of weights with the key=percent edits applied.
func applyWeightArgs(weights []model.CategoryWeight, args []string) ([]model.CategoryWeight, error) {
	out := append([]model.CategoryWeight(nil), weights...)
	for _, arg := range args {
		key, raw, ok := strings.Cut(arg, "=")
		key = strings.TrimSpace(key)
		raw = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(raw), "%"))
		if !ok || key == "" || raw == "" {
			return nil, fmt.Errorf("want key=percent, got %q", arg)
		}
		pct, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("percent for %q: %w", key, err)
		}
		i := indexOfWeight(out, key)
		if i < 0 {
			return nil, fmt.Errorf("unknown category %q (see `quotekit weights`)", key)
		}
		out[i].Percent = pct
	}
	return out, nil
}

func indexOfWeight(weights []model.CategoryWeight, key string) int {
	for i, w := range weights {
		if w.Key == key {
			return i
		}
	}
	return -1
}

func runWeightsSet(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	weights, err := applyWeightArgs(cfg.Allocation.Categories, args)
	if err != nil {
		return err
	}
	return saveWeights(cfg, weights)
}

func runWeightsReset(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	return saveWeights(cfg, estimate.DefaultWeights())
}

func saveWeights(cfg config.Config, weights []model.CategoryWeight) error {
	cfg.Allocation.Categories = weights
	path := configPathOrDefault()
	if err := config.Save(cfg, path); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	printWeights(weights)
	notify.NewTerminal(os.Stderr, flagQuiet).Notify("Allocation weights saved to "+path, notify.Success)
	return nil
}
