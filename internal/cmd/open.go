package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"

	"github.com/splitlease/parity/internal/config"
	"github.com/splitlease/parity/internal/store"
)

// Summaries written into every e2e run directory
const (
	summaryFile     = "summary.html"
	summaryTextFile = "summary.txt"
)

// NewOpenCommand creates the 'parity open' command
func NewOpenCommand(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:       "open <config|artifacts|summary>",
		Short:     "Open the config file, the artifacts directory or the latest e2e summary",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"config", "artifacts", "summary"},
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := flags.setup()
			if err != nil {
				return err
			}
			defer a.close()

			path, err := resolveOpenTarget(a.cfg, flags.configPath, args[0])
			if err != nil {
				return err
			}

			if err := browser.OpenFile(path); err != nil {
				return fmt.Errorf("failed to open %s: %w", path, err)
			}
			return nil
		},
	}

	return cmd
}

// resolveOpenTarget maps an open target name to the path it refers to
func resolveOpenTarget(cfg *config.Config, configPath, target string) (string, error) {
	switch target {
	case "config":
		if configPath != "" {
			return configPath, nil
		}
		return config.ConfigPath()

	case "artifacts":
		dir, err := cfg.ArtifactsDir()
		if err != nil {
			return "", err
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create artifacts dir: %w", err)
		}
		return dir, nil

	case "summary":
		root, err := cfg.ArtifactsDir()
		if err != nil {
			return "", err
		}
		dir, err := store.LatestRunDir(root, store.KindE2E)
		if err != nil {
			return "", err
		}
		path := filepath.Join(dir, summaryFile)
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("no summary in %s: %w", dir, err)
		}
		return path, nil

	default:
		return "", fmt.Errorf("unknown target %q: want config, artifacts or summary", target)
	}
}
