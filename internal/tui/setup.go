package tui

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/charmbracelet/huh"

	"github.com/theirongolddev/quotekit/internal/config"
	"github.com/theirongolddev/quotekit/internal/estimate"
	"github.com/theirongolddev/quotekit/internal/tui/theme"
)

// setupValues holds the raw answers of the setup form.
type setupValues struct {
	currency    string
	defaultName string
	withholding string
	theme       string
}

func setupValuesFrom(cfg config.Config) *setupValues {
	return &setupValues{
		currency:    cfg.General.Currency,
		defaultName: cfg.General.ProjectNameDefault,
		withholding: strconv.FormatFloat(math.Abs(cfg.Withholding.Percent), 'f', -1, 64),
		theme:       cfg.Appearance.Theme,
	}
}

func validateCurrency(s string) error {
	if money.GetCurrency(strings.ToUpper(strings.TrimSpace(s))) == nil {
		return fmt.Errorf("unknown currency code %q", s)
	}
	return nil
}

func parseWithholding(s string) (float64, error) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	if s == "" {
		return 0, nil
	}
	p, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(p) || math.Abs(p) > 100 {
		return 0, errors.New("enter a percentage between 0 and 100")
	}
	return p, nil
}

func validateDefaultName(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("a default name is required")
	}
	return nil
}

func newSetupForm(vals *setupValues) *huh.Form {
	themes := make([]huh.Option[string], 0, len(theme.All))
	for _, name := range theme.Names() {
		themes = append(themes, huh.NewOption(name, name))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Currency").
				Description("ISO 4217 code used on quotations.").
				Placeholder("BDT").
				CharLimit(3).
				Value(&vals.currency).
				Validate(validateCurrency),
			huh.NewInput().
				Title("Default project name").
				Value(&vals.defaultName).
				Validate(validateDefaultName),
			huh.NewInput().
				Title("Tax withholding (%)").
				Description("Deducted from the subtotal on every estimate.").
				Placeholder("10").
				Value(&vals.withholding).
				Validate(func(s string) error {
					_, err := parseWithholding(s)
					return err
				}),
		).Title("quotekit setup"),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Color theme").
				Options(themes...).
				Value(&vals.theme),
		),
	)
}

// apply copies the answers onto cfg.
func (v *setupValues) apply(cfg config.Config) (config.Config, error) {
	if err := validateCurrency(v.currency); err != nil {
		return cfg, err
	}
	if err := validateDefaultName(v.defaultName); err != nil {
		return cfg, err
	}
	p, err := parseWithholding(v.withholding)
	if err != nil {
		return cfg, err
	}
	cfg.General.Currency = strings.ToUpper(strings.TrimSpace(v.currency))
	cfg.General.ProjectNameDefault = strings.TrimSpace(v.defaultName)
	cfg.Withholding.Percent = estimate.NormalizeWithholding(p)
	cfg.Appearance.Theme = theme.ByName(v.theme).Name
	return cfg, nil
}

// RunSetup asks for the main settings on the terminal and returns cfg with
// the answers applied. The caller saves the result.
func RunSetup(ctx context.Context, cfg config.Config) (config.Config, error) {
	vals := setupValuesFrom(cfg)
	if err := newSetupForm(vals).RunWithContext(ctx); err != nil {
		return cfg, err
	}
	return vals.apply(cfg)
}
