package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/splitlease/parity/internal/browser"
	"github.com/splitlease/parity/internal/capture"
	"github.com/splitlease/parity/internal/store"
)

// NewCaptureCommand creates the 'parity capture' command
func NewCaptureCommand(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "capture [url]",
		Short: "Capture desktop and mobile screenshots of a page",
		Long: `Take the review screenshots of a page:
  - desktop full page (1280x1024)
  - #property-header detail
  - .main-content
  - mobile full page (375x812)

The url defaults to pages.local_url from the config. Page console
output is forwarded to the log.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := flags.setup()
			if err != nil {
				return err
			}
			defer a.close()

			st, err := openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			url := a.cfg.Pages.LocalURL
			if len(args) == 1 {
				url = args[0]
			}

			return captureWithOutput(cmd.Context(), a, st, url, cmd.OutOrStdout())
		},
	}

	return cmd
}

func captureWithOutput(ctx context.Context, a *app, st *store.Store, url string, output io.Writer) error {
	root, err := a.cfg.ArtifactsDir()
	if err != nil {
		return err
	}
	dir, err := store.RunDir(root, store.KindCapture, time.Now())
	if err != nil {
		return err
	}

	run, err := st.StartRun(store.KindCapture, url)
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}

	browserCtx, cancel := browser.NewContext(ctx, a.cfg.Browser)
	defer cancel()
	capture.ListenConsole(browserCtx, a.log)

	paths, err := capture.Run(browserCtx, a.log, url, dir,
		a.cfg.Browser.NavigateTimeout.Duration, a.cfg.Browser.LocalSettle.Duration, capture.DefaultSession)
	a.addArtifacts(st, run, store.ArtifactScreenshot, paths...)
	if err != nil {
		a.finishRun(st, run, false, err)
		return fmt.Errorf("failed to capture %s: %w", url, err)
	}
	a.finishRun(st, run, true, nil)

	for _, p := range paths {
		fmt.Fprintln(output, p)
	}
	return nil
}
