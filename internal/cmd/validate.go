package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/chromedp/chromedp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/splitlease/parity/internal/browser"
	"github.com/splitlease/parity/internal/document"
	"github.com/splitlease/parity/internal/store"
	"github.com/splitlease/parity/internal/validator"
)

type validateOptions struct {
	catalog string
	json    bool
}

// NewValidateCommand creates the 'parity validate' command
func NewValidateCommand(flags *globalFlags) *cobra.Command {
	opts := &validateOptions{}

	cmd := &cobra.Command{
		Use:   "validate [html-file|url]",
		Short: "Validate the filter section markup of a static search page",
		Long: `Parse a static HTML page and check that its filter section has every
required element:
  - filter section, title, clear and apply buttons
  - location and price inputs
  - schedule, property type, amenities, bedroom and bathroom options

The page defaults to pages.search_page from the config. An http(s) URL
is loaded in Chrome and its rendered DOM is validated instead.

Exit code: 0 if every check passes, 1 otherwise`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := flags.setup()
			if err != nil {
				return err
			}
			defer a.close()

			// History is optional for validate
			st, err := openStore()
			if err != nil {
				a.log.Warn("run history unavailable", zap.Error(err))
				st = nil
			} else {
				defer st.Close()
			}

			path := a.cfg.Pages.SearchPage
			if len(args) == 1 {
				path = args[0]
			}
			if opts.catalog == "" {
				opts.catalog = a.cfg.Catalog.Path
			}

			return validateWithOutput(cmd.Context(), a, st, path, opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&opts.catalog, "catalog", "", "YAML check catalog (default is the built-in catalog)")
	cmd.Flags().BoolVar(&opts.json, "json", false, "print the report as JSON")

	return cmd
}

// loadValidator builds a validator for the catalog at path, or the built-in one when path is empty
func loadValidator(path string) (*validator.Validator, error) {
	if path == "" {
		return validator.New(nil), nil
	}
	catalog, err := validator.LoadCatalog(path)
	if err != nil {
		return nil, err
	}
	return validator.New(catalog), nil
}

func isURL(path string) bool {
	return strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://")
}

// validateWithOutput validates path and writes the report to output (for testing).
// st may be nil, in which case the run is not recorded.
func validateWithOutput(ctx context.Context, a *app, st *store.Store, path string, opts *validateOptions, output io.Writer) error {
	v, err := loadValidator(opts.catalog)
	if err != nil {
		return err
	}

	var run *store.Run
	if st != nil {
		if run, err = st.StartRun(store.KindValidate, path); err != nil {
			return fmt.Errorf("failed to record run: %w", err)
		}
	}

	var report *validator.Report
	if isURL(path) {
		report, err = validateLive(ctx, a, v, path)
	} else {
		report, err = v.ValidateFile(path)
	}
	if err != nil {
		a.finishRun(st, run, false, err)
		return err
	}

	if opts.json {
		enc := json.NewEncoder(output)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	} else {
		report.Print(output)
	}

	if !report.Passed() {
		a.log.Debug("validation failed", zap.Strings("checks", report.Failed()))
		a.finishRun(st, run, false, fmt.Errorf("failed checks: %v", report.Failed()))
		return ErrChecksFailed
	}

	a.finishRun(st, run, true, nil)
	return nil
}

func validateLive(ctx context.Context, a *app, v *validator.Validator, url string) (*validator.Report, error) {
	browserCtx, cancel := browser.NewContext(ctx, a.cfg.Browser)
	defer cancel()

	// Start the browser before bounding the page load
	if err := chromedp.Run(browserCtx); err != nil {
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	loadCtx, cancelLoad := context.WithTimeout(browserCtx, a.cfg.Browser.NavigateTimeout.Duration+a.cfg.Browser.LocalSettle.Duration)
	defer cancelLoad()

	a.log.Info("validating live page", zap.String("url", url))
	snap, err := document.Load(loadCtx, url, a.cfg.Browser.LocalSettle.Duration)
	if err != nil {
		return nil, err
	}
	return v.Validate(snap), nil
}
