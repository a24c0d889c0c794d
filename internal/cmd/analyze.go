package cmd

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/splitlease/parity/internal/browser"
	"github.com/splitlease/parity/internal/store"
	"github.com/splitlease/parity/internal/styles"
)

// NewAnalyzeCommand creates the 'parity analyze' command
func NewAnalyzeCommand(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Compare filter section styles of the local build and production",
		Long: `Open the local and production search pages side by side, locate the
filter section on each and save for both:
  - a full page screenshot
  - a filter section screenshot
  - the filter section markup
  - computed styles of the section and its interactive elements`,
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

			return analyzeWithOutput(cmd.Context(), a, st, cmd.OutOrStdout())
		},
	}

	return cmd
}

func analyzeWithOutput(ctx context.Context, a *app, st *store.Store, output io.Writer) error {
	root, err := a.cfg.ArtifactsDir()
	if err != nil {
		return err
	}
	dir, err := store.RunDir(root, store.KindAnalyze, time.Now())
	if err != nil {
		return err
	}

	run, err := st.StartRun(store.KindAnalyze, a.cfg.Pages.LocalURL)
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}

	browserCtx, cancel := browser.NewContext(ctx, a.cfg.Browser)
	defer cancel()

	outputs, err := styles.AnalyzePair(browserCtx, a.log, dir,
		styles.Target{
			Side:    styles.Local,
			URL:     a.cfg.Pages.LocalURL,
			Timeout: a.cfg.Browser.NavigateTimeout.Duration,
			Settle:  a.cfg.Browser.LocalSettle.Duration,
		},
		styles.Target{
			Side:    styles.Production,
			URL:     a.cfg.Pages.ProductionURL,
			Timeout: a.cfg.Browser.NavigateTimeout.Duration,
			Settle:  a.cfg.Browser.ProductionSettle.Duration,
		},
	)
	if err != nil {
		a.finishRun(st, run, false, err)
		return fmt.Errorf("failed to analyze pages: %w", err)
	}

	found := true
	for _, side := range []styles.Side{styles.Local, styles.Production} {
		out := outputs[side]
		for kind, paths := range out.Files {
			a.addArtifacts(st, run, kind, paths...)
		}
		found = found && out.Analysis.Found()
		printAnalysis(output, side, out)
	}

	fmt.Fprintf(output, "\nArtifacts: %s\n", dir)

	if !found {
		a.finishRun(st, run, false, fmt.Errorf("filter section not found"))
		return ErrChecksFailed
	}
	a.finishRun(st, run, true, nil)
	return nil
}

func printAnalysis(w io.Writer, side styles.Side, out *styles.Output) {
	bold := color.New(color.Bold)
	bold.Fprintf(w, "%s: %s\n", side, out.Analysis.URL)

	if !out.Analysis.Found() {
		color.New(color.FgYellow).Fprintln(w, "  filter section not found")
		return
	}
	fmt.Fprintf(w, "  selector: %s\n", out.Analysis.Selector)

	counts := out.Analysis.Elements.Counts()
	kinds := make([]string, 0, len(counts))
	for k := range counts {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		fmt.Fprintf(w, "  %-10s %d\n", k, counts[k])
	}
}
