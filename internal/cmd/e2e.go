package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/splitlease/parity/internal/browser"
	"github.com/splitlease/parity/internal/capture"
	"github.com/splitlease/parity/internal/e2e"
	"github.com/splitlease/parity/internal/store"
	"github.com/splitlease/parity/internal/summary"
)

// NewE2ECommand creates the 'parity e2e' command
func NewE2ECommand(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "e2e",
		Short: "Run the scripted filter click-through against local and production",
		Long: `Drive Chrome through the search page filter section of the local build,
capture screenshots of it and of production, check the computed theme
and exercise the filter controls.

The JSON result is printed to stdout. Screenshots, the result and an
HTML summary are written to a timestamped artifact directory.

Exit code: 0 if the run passed, 1 otherwise`,
		Args: cobra.NoArgs,
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

			res, err := runE2E(cmd.Context(), a, st, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			if !res.Passed() {
				return ErrChecksFailed
			}
			return nil
		},
	}

	return cmd
}

// runE2E runs one click-through, writes its artifacts and records it
func runE2E(ctx context.Context, a *app, st *store.Store, output io.Writer) (*e2e.Result, error) {
	root, err := a.cfg.ArtifactsDir()
	if err != nil {
		return nil, err
	}
	dir, err := store.RunDir(root, store.KindE2E, time.Now())
	if err != nil {
		return nil, err
	}

	v, err := loadValidator(a.cfg.Catalog.Path)
	if err != nil {
		return nil, err
	}

	run, err := st.StartRun(store.KindE2E, a.cfg.Pages.LocalURL)
	if err != nil {
		return nil, fmt.Errorf("failed to record run: %w", err)
	}

	browserCtx, cancel := browser.NewContext(ctx, a.cfg.Browser)
	defer cancel()
	capture.ListenConsole(browserCtx, a.log)

	a.log.Info("starting e2e run", zap.String("dir", dir))
	res := e2e.New(a.cfg, a.log, v).Run(browserCtx, dir)
	a.addArtifacts(st, run, store.ArtifactScreenshot, res.Screenshots...)

	if err := res.WriteJSON(output); err != nil {
		return nil, fmt.Errorf("failed to write result: %w", err)
	}

	if err := writeE2EArtifacts(a, st, run, res, dir); err != nil {
		a.log.Warn("failed to write run artifacts", zap.Error(err))
	}

	var runErr error
	if res.Error != nil {
		runErr = fmt.Errorf("%s", *res.Error)
	}
	a.finishRun(st, run, res.Passed(), runErr)

	return res, nil
}

func writeE2EArtifacts(a *app, st *store.Store, run *store.Run, res *e2e.Result, dir string) error {
	resultPath, err := store.SaveJSON(dir, "result.json", res)
	if err != nil {
		return err
	}
	a.addArtifacts(st, run, store.ArtifactResult, resultPath)

	builder, err := summary.New()
	if err != nil {
		return err
	}
	sum, err := builder.Build(res, dir)
	if err != nil {
		return err
	}

	summaryPath, err := store.SaveText(dir, summaryFile, sum.HTMLBody)
	if err != nil {
		return err
	}
	textPath, err := store.SaveText(dir, summaryTextFile, sum.PlainBody)
	if err != nil {
		return err
	}
	a.addArtifacts(st, run, store.ArtifactSummary, summaryPath, textPath)
	a.log.Info("wrote summary", zap.String("path", summaryPath))

	return nil
}
