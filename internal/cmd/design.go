package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/splitlease/parity/internal/browser"
	"github.com/splitlease/parity/internal/store"
	"github.com/splitlease/parity/internal/styles"
)

// NewDesignCommand creates the 'parity design' command
func NewDesignCommand(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "design [url]",
		Short: "Extract the design system of a page",
		Long: `Sample computed styles across a page and save its design system:
  - background, text and border colors
  - font families, sizes and weights
  - padding, margin, gap, border radius and width
  - every button, input and label
  - each select with the label before it (filter_controls.json)

The url defaults to pages.production_url from the config.`,
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

			url := a.cfg.Pages.ProductionURL
			if len(args) == 1 {
				url = args[0]
			}

			return designWithOutput(cmd.Context(), a, st, url, cmd.OutOrStdout())
		},
	}

	return cmd
}

func designWithOutput(ctx context.Context, a *app, st *store.Store, url string, output io.Writer) error {
	root, err := a.cfg.ArtifactsDir()
	if err != nil {
		return err
	}
	dir, err := store.RunDir(root, store.KindDesign, time.Now())
	if err != nil {
		return err
	}

	run, err := st.StartRun(store.KindDesign, url)
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}

	browserCtx, cancel := browser.NewContext(ctx, a.cfg.Browser)
	defer cancel()

	ds, err := styles.ExtractDesignSystem(browserCtx, url,
		a.cfg.Browser.NavigateTimeout.Duration, a.cfg.Browser.ProductionSettle.Duration)
	if err != nil {
		a.finishRun(st, run, false, err)
		return err
	}

	paths, err := ds.Save(dir)
	a.addArtifacts(st, run, store.ArtifactStyles, paths...)
	if err != nil {
		a.finishRun(st, run, false, err)
		return fmt.Errorf("failed to save design system: %w", err)
	}
	a.finishRun(st, run, true, nil)

	printDesign(output, ds)
	fmt.Fprintf(output, "\nArtifacts: %s\n", dir)
	return nil
}

func printDesign(w io.Writer, ds *styles.DesignSystem) {
	color.New(color.Bold).Fprintf(w, "Design system: %s\n", ds.URL)
	for _, c := range ds.Counts() {
		fmt.Fprintf(w, "  - %d %s\n", c.N, c.What)
	}
}
