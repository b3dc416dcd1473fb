package cmd

import (
	"path/filepath"
	"testing"

	"github.com/theirongolddev/quotekit/internal/config"
	"github.com/theirongolddev/quotekit/internal/estimate"
)

func TestApplyWeightArgs(t *testing.T) {
	base := estimate.DefaultWeights()

	got, err := applyWeightArgs(base, []string{"development=45", " overhead = 5.5% "})
	if err != nil {
		t.Fatalf("applyWeightArgs: %v", err)
	}
	if got[0].Percent != 45 || got[4].Percent != 5.5 {
		t.Fatalf("weights = %+v", got)
	}
	if base[0].Percent != 40.5 {
		t.Fatal("input table was modified")
	}
	if !estimate.Validate(got) {
		t.Fatal("45 + 5.5 keeps the stock table balanced")
	}

	for _, bad := range []string{"development", "=10", "development=", "development=ten", "hosting=5"} {
		if _, err := applyWeightArgs(base, []string{bad}); err == nil {
			t.Errorf("applyWeightArgs(%q) succeeded, want error", bad)
		}
	}
}

func TestWeightsSetAndReset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	t.Setenv(config.EnvCurrency, "")
	flagConfig = path
	defer func() { flagConfig = "" }()

	if err := runWeightsSet(nil, []string{"development=40"}); err != nil {
		t.Fatalf("weights set: %v", err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Allocation.Categories[0].Percent != 40 {
		t.Fatalf("development = %v, want 40", cfg.Allocation.Categories[0].Percent)
	}
	if estimate.Validate(cfg.Allocation.Categories) {
		t.Fatal("a 99.5% table should have been saved as-is")
	}

	if err := runWeightsReset(nil, nil); err != nil {
		t.Fatalf("weights reset: %v", err)
	}
	cfg, err = config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !estimate.Validate(cfg.Allocation.Categories) || cfg.Allocation.Categories[0].Percent != 40.5 {
		t.Fatalf("after reset categories = %+v", cfg.Allocation.Categories)
	}
}
