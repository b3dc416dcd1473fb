// Package cmd implements the quotekit CLI commands.
package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/quotekit/internal/config"
	"github.com/theirongolddev/quotekit/internal/logging"
	"github.com/theirongolddev/quotekit/internal/notes"
	"github.com/theirongolddev/quotekit/internal/notify"
	"github.com/theirongolddev/quotekit/internal/report"
	"github.com/theirongolddev/quotekit/internal/session"
	"github.com/theirongolddev/quotekit/internal/store"
)

var (
	flagConfig    string
	flagDB        string
	flagEphemeral bool
	flagQuiet     bool
	flagVerbose   bool
	flagCurrency  string
)

// errShown marks errors the user has already seen as a notification.
var errShown = errors.New("reported")

var rootCmd = &cobra.Command{
	Use:   "quotekit",
	Short: "Project cost estimator",
	Long: "Split a project price across cost categories, apply tax withholding and\n" +
		"discount, and keep the resulting quotations as local projects.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errShown) {
			fmt.Fprintf(os.Stderr, "  Error: %s\n", err)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file (default "+config.ConfigPath()+")")
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "Project database file")
	rootCmd.PersistentFlags().BoolVar(&flagEphemeral, "ephemeral", false, "Keep projects in memory only")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Only print warnings and errors")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Debug logging")
	rootCmd.PersistentFlags().StringVar(&flagCurrency, "currency", "", "ISO currency code for amounts")
	rootCmd.MarkFlagsMutuallyExclusive("quiet", "verbose")
	rootCmd.MarkFlagsMutuallyExclusive("db", "ephemeral")
}

// shown wraps an error the session already notified about.
func shown(err error) error {
	return fmt.Errorf("%w: %w", errShown, err)
}

func logLevel() slog.Level {
	switch {
	case flagVerbose:
		return slog.LevelDebug
	case flagQuiet:
		return slog.LevelError
	}
	return slog.LevelWarn
}

// loadConfig reads .env, the config file and the command-line overrides.
func loadConfig() (config.Config, error) {
	config.LoadDotEnv()
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return cfg, err
	}
	if flagCurrency != "" {
		cfg.General.Currency = strings.ToUpper(strings.TrimSpace(flagCurrency))
	}
	return cfg, nil
}

func configPathOrDefault() string {
	if flagConfig != "" {
		return flagConfig
	}
	return config.ConfigPath()
}

// app is the wiring shared by every command that touches projects.
type app struct {
	cfg    config.Config
	log    *logging.Logger
	store  *store.ProjectStore
	drafts *store.Drafts
	editor *notes.Buffer
	notify notify.Notifier
	sess   *session.Session
	closer []io.Closer
}

// openApp loads configuration and opens the project store. With terminal
// set, notifications and logs print to stderr. Otherwise the screen belongs
// to the caller: notifications only go to the log, and the log goes to a
// file in the data directory.
func openApp(terminal bool) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, editor: &notes.Buffer{}}

	var logOut io.Writer = os.Stderr
	if !terminal {
		logOut = io.Discard
		if f, err := openLogFile(); err == nil {
			logOut = f
			a.closer = append(a.closer, f)
		}
	}
	log := logging.New(logging.Config{Level: logLevel(), Component: logging.ComponentApp, Writer: logOut})
	a.log = log
	if err := cfg.Validate(); err != nil {
		log.WithComponent(logging.ComponentConfig).Warn("config has problems", logging.FieldError, err)
	}

	var backend store.Backend
	if flagEphemeral {
		backend = store.NewMemoryBackend()
	} else {
		path := flagDB
		if path == "" {
			path = cfg.DBPath()
		}
		db, err := store.OpenSQLite(path)
		if err != nil {
			a.Close()
			return nil, err
		}
		log.Debug("record store opened", logging.FieldPath, path)
		backend = db
		a.closer = append(a.closer, db)
	}

	a.store, err = store.NewProjectStore(backend, log)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.drafts = store.NewDrafts(backend)

	if terminal {
		a.notify = notify.NewTerminal(os.Stderr, flagQuiet)
	} else {
		a.notify = notify.NewLog(log)
	}
	a.sess = session.New(session.Options{
		Weights:            cfg.Allocation.Categories,
		WithholdingPercent: cfg.Withholding.Percent,
		DefaultName:        cfg.General.ProjectNameDefault,
		Store:              a.store,
		Drafts:             a.drafts,
		Editor:             a.editor,
		Notifier:           a.notify,
		Logger:             log,
	})
	return a, nil
}

func openLogFile() (*os.File, error) {
	dir := config.DataDir()
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, err
	}
	return os.OpenFile(filepath.Join(dir, "quotekit.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
}

// Close releases the record store and the log file, newest first.
func (a *app) Close() {
	for i := len(a.closer) - 1; i >= 0; i-- {
		if err := a.closer[i].Close(); err != nil && a.log != nil {
			a.log.Warn("closing resource", logging.FieldError, err)
		}
	}
	a.closer = nil
}

// documentStyle maps the [pdf] config section onto a report style.
func documentStyle(cfg config.Config) report.Style {
	st := report.DefaultStyle()
	if cfg.PDF.Title != "" {
		st.Title = cfg.PDF.Title
	}
	if len(cfg.PDF.HeaderRGB) == 3 {
		for i, v := range cfg.PDF.HeaderRGB {
			st.HeaderRGB[i] = uint8(min(max(v, 0), 255))
		}
	}
	return st
}

// writeFile creates path and hands it to write.
func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
