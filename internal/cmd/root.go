package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/splitlease/parity/internal/config"
	"github.com/splitlease/parity/internal/logging"
	"github.com/splitlease/parity/internal/store"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// ErrChecksFailed is returned when a run completed but did not pass, so the exit code is nonzero
var ErrChecksFailed = errors.New("checks failed")

// globalFlags are the persistent flags shared by every subcommand
type globalFlags struct {
	configPath string
	verbose    bool
}

// NewRootCommand creates and returns the root cobra command for parity
func NewRootCommand() *cobra.Command {
	flags := &globalFlags{}

	cmd := &cobra.Command{
		Use:   "parity",
		Short: "Search page filter parity checks",
		Long: `Parity checks that the rebuilt search page filter section matches
the production site.

It validates the filter markup of a static page, drives a scripted
click-through against the local build and production in Chrome, and
compares computed styles and screenshots of both.`,
		Version: Version,
		// main prints the error; silence usage and cobra's own copy of it
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file (default is the user config dir)")
	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "development logging at debug level")

	// Add subcommands
	cmd.AddCommand(NewValidateCommand(flags))
	cmd.AddCommand(NewE2ECommand(flags))
	cmd.AddCommand(NewAnalyzeCommand(flags))
	cmd.AddCommand(NewCaptureCommand(flags))
	cmd.AddCommand(NewDesignCommand(flags))
	cmd.AddCommand(NewWatchCommand(flags))
	cmd.AddCommand(NewHistoryCommand(flags))
	cmd.AddCommand(NewOpenCommand(flags))

	return cmd
}

// app is the configuration and logger a command runs with
type app struct {
	cfg *config.Config
	log *zap.Logger
}

// setup loads config and builds the logger
func (f *globalFlags) setup() (*app, error) {
	var (
		cfg *config.Config
		err error
	)
	var noUserDir error
	if f.configPath != "" {
		cfg, err = config.LoadFrom(f.configPath)
	} else {
		cfg, err = config.Load()
		if errors.Is(err, config.ErrNoUserDir) {
			noUserDir = err
			cfg, err = config.FromEnv()
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logCfg := logging.DefaultConfig()
	logCfg.Level = cfg.Logging.Level
	logCfg.Development = cfg.Logging.Development
	if f.verbose {
		logCfg.Level = "debug"
		logCfg.Development = true
	}

	log, err := logging.New(logCfg)
	if err != nil {
		log = logging.NewDefault()
		log.Warn("invalid logging config, using defaults", zap.String("level", logCfg.Level), zap.Error(err))
	}
	if noUserDir != nil {
		log.Warn("config file unavailable, using defaults", zap.Error(noUserDir))
	}

	return &app{cfg: cfg, log: log}, nil
}

func (a *app) close() {
	_ = a.log.Sync()
}

// openStore opens the run history database at its default location
func openStore() (*store.Store, error) {
	dbPath, err := store.DefaultPath()
	if err != nil {
		return nil, fmt.Errorf("failed to get store path: %w", err)
	}
	st, err := store.New(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	return st, nil
}

// finishRun closes a recorded run. Store failures are logged, not returned.
// A nil store or run means history is not being recorded.
func (a *app) finishRun(st *store.Store, run *store.Run, passed bool, runErr error) {
	if st == nil || run == nil {
		return
	}
	status := store.StatusPassed
	if !passed {
		status = store.StatusFailed
	}
	if err := st.FinishRun(run.ID, status, runErr); err != nil {
		a.log.Warn("failed to record run", zap.String("run", run.ID), zap.Error(err))
	}
}

// addArtifacts attaches files to a recorded run. Store failures are logged, not returned.
func (a *app) addArtifacts(st *store.Store, run *store.Run, kind store.ArtifactKind, paths ...string) {
	if st == nil || run == nil {
		return
	}
	for _, p := range paths {
		if err := st.AddArtifact(run.ID, kind, p); err != nil {
			a.log.Warn("failed to record artifact", zap.String("path", p), zap.Error(err))
		}
	}
}
