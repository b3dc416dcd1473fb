// Package config loads quotekit settings from TOML and the environment.
package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/Rhymond/go-money"
	"github.com/joho/godotenv"

	"github.com/theirongolddev/quotekit/internal/estimate"
	"github.com/theirongolddev/quotekit/internal/model"
)

// Environment overrides.
const (
	EnvConfig   = "QUOTEKIT_CONFIG"
	EnvDB       = "QUOTEKIT_DB"
	EnvCurrency = "QUOTEKIT_CURRENCY"
)

const appName = "quotekit"

// Config holds all quotekit configuration.
type Config struct {
	General     GeneralConfig     `toml:"general"`
	Allocation  AllocationConfig  `toml:"allocation"`
	Withholding WithholdingConfig `toml:"withholding"`
	Storage     StorageConfig     `toml:"storage"`
	Appearance  AppearanceConfig  `toml:"appearance"`
	PDF         PDFConfig         `toml:"pdf"`
}

// GeneralConfig holds general preferences.
type GeneralConfig struct {
	ProjectNameDefault string `toml:"project_name_default"`
	Currency           string `toml:"currency"`
}

// AllocationConfig is the allocation table the calculator starts with.
type AllocationConfig struct {
	Categories []model.CategoryWeight `toml:"categories"`
}

// WithholdingConfig holds the default tax withholding. Negative means a
// deduction; a positive value is read as the same deduction.
type WithholdingConfig struct {
	Percent float64 `toml:"percent"`
}

// StorageConfig locates the record database.
type StorageConfig struct {
	Path string `toml:"path,omitempty"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// PDFConfig styles the quotation document.
type PDFConfig struct {
	HeaderRGB []int  `toml:"header_rgb"`
	Title     string `toml:"title"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			ProjectNameDefault: "Untitled Project",
			Currency:           "BDT",
		},
		Allocation: AllocationConfig{
			Categories: estimate.DefaultWeights(),
		},
		Withholding: WithholdingConfig{Percent: -10},
		Appearance:  AppearanceConfig{Theme: "flexoki-dark"},
		PDF: PDFConfig{
			HeaderRGB: []int{102, 126, 234},
			Title:     "PROJECT ESTIMATE",
		},
	}
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", appName)
}

// ConfigPath returns the config file path, honoring QUOTEKIT_CONFIG.
func ConfigPath() string {
	if p := os.Getenv(EnvConfig); p != "" {
		return p
	}
	return filepath.Join(ConfigDir(), "config.toml")
}

// DataDir returns the XDG-compliant data directory.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, appName)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", appName)
}

// DBPath returns the database location: QUOTEKIT_DB, then the config value,
// then the data directory.
func (c Config) DBPath() string {
	if p := os.Getenv(EnvDB); p != "" {
		return p
	}
	if c.Storage.Path != "" {
		return c.Storage.Path
	}
	return filepath.Join(DataDir(), appName+".db")
}

// LoadDotEnv reads a .env file from the working directory if one exists.
func LoadDotEnv() {
	_ = godotenv.Load()
}

// Load reads the config file at path, or ConfigPath when path is empty.
// A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		path = ConfigPath()
	}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err == nil {
		// A file that names categories replaces the default table wholesale.
		cfg.Allocation.Categories = nil
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return DefaultConfig(), fmt.Errorf("parsing config: %w", err)
		}
		if len(cfg.Allocation.Categories) == 0 {
			cfg.Allocation.Categories = estimate.DefaultWeights()
		}
	}

	if cur := os.Getenv(EnvCurrency); cur != "" {
		cfg.General.Currency = cur
	}
	cfg.General.Currency = strings.ToUpper(strings.TrimSpace(cfg.General.Currency))
	return cfg, nil
}

// Save writes cfg to path, or ConfigPath when path is empty.
func Save(cfg Config, path string) error {
	if path == "" {
		path = ConfigPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Exists reports whether a config file exists at path, or at ConfigPath
// when path is empty.
func Exists(path string) bool {
	if path == "" {
		path = ConfigPath()
	}
	_, err := os.Stat(path)
	return err == nil
}

// Validate checks the structure of the configuration. A table whose weights
// do not add up to 100 is accepted; the calculator warns about it instead.
func (c Config) Validate() error {
	var problems []string

	if money.GetCurrency(c.General.Currency) == nil {
		problems = append(problems, fmt.Sprintf("unknown currency code %q", c.General.Currency))
	}

	if len(c.Allocation.Categories) == 0 {
		problems = append(problems, "allocation table has no categories")
	}
	seen := make(map[string]bool, len(c.Allocation.Categories))
	for i, w := range c.Allocation.Categories {
		switch {
		case strings.TrimSpace(w.Key) == "":
			problems = append(problems, fmt.Sprintf("category %d has no key", i+1))
		case w.Key == estimate.TotalKey:
			problems = append(problems, fmt.Sprintf("category key %q is reserved", w.Key))
		case seen[w.Key]:
			problems = append(problems, fmt.Sprintf("category %q is listed twice", w.Key))
		}
		seen[w.Key] = true
		if math.IsNaN(w.Percent) || math.IsInf(w.Percent, 0) || w.Percent < 0 {
			problems = append(problems, fmt.Sprintf("category %q has invalid percent %v", w.Key, w.Percent))
		}
	}

	if p := c.Withholding.Percent; math.IsNaN(p) || math.Abs(p) > 100 {
		problems = append(problems, fmt.Sprintf("withholding %v must be within -100..100", p))
	}

	if len(c.PDF.HeaderRGB) != 3 {
		problems = append(problems, "pdf.header_rgb needs three components")
	} else {
		for _, v := range c.PDF.HeaderRGB {
			if v < 0 || v > 255 {
				problems = append(problems, fmt.Sprintf("pdf.header_rgb component %d outside 0..255", v))
			}
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}
