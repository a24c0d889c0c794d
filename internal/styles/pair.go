package styles

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/splitlease/parity/internal/browser"
	"github.com/splitlease/parity/internal/capture"
	"github.com/splitlease/parity/internal/store"
)

// Side names which page of a comparison an artifact belongs to
type Side string

const (
	Local      Side = "local"
	Production Side = "production"
)

// Target is one page to analyze
type Target struct {
	Side    Side
	URL     string
	Timeout time.Duration // per browser step; zero means capture.DefaultTimeout
	Settle  time.Duration
}

// Output is what a side of a pair analysis wrote
type Output struct {
	Analysis *Analysis
	Files    map[store.ArtifactKind][]string
}

func (o *Output) add(kind store.ArtifactKind, path string) {
	o.Files[kind] = append(o.Files[kind], path)
}

// AnalyzePair analyzes every target concurrently, one tab each, in the browser owning ctx,
// and writes screenshots, markup and styles into dir.
func AnalyzePair(ctx context.Context, log *zap.Logger, dir string, targets ...Target) (map[Side]*Output, error) {
	// The first tab must exist before siblings can be opened from it
	if err := chromedp.Run(ctx); err != nil {
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	outputs := make([]*Output, len(targets))
	g, gctx := errgroup.WithContext(ctx)

	for i, target := range targets {
		i, target := i, target
		g.Go(func() error {
			tabCtx, cancel := browser.NewTab(gctx)
			defer cancel()

			out, err := analyzeSide(tabCtx, log.With(zap.String("side", string(target.Side))), dir, target)
			if err != nil {
				return fmt.Errorf("%s: %w", target.Side, err)
			}
			outputs[i] = out
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := make(map[Side]*Output, len(targets))
	for i, target := range targets {
		result[target.Side] = outputs[i]
	}
	return result, nil
}

func analyzeSide(ctx context.Context, log *zap.Logger, dir string, target Target) (*Output, error) {
	out := &Output{Files: make(map[store.ArtifactKind][]string)}
	prefix := string(target.Side)

	log.Info("analyzing page", zap.String("url", target.URL))
	a, err := Analyze(ctx, target.URL, target.Timeout, target.Settle)
	if err != nil {
		return nil, err
	}
	out.Analysis = a

	fullPath := filepath.Join(dir, prefix+"_full_page.png")
	if err := capture.RunWithin(ctx, target.Timeout, capture.FullPage(fullPath)); err != nil {
		return nil, err
	}
	out.add(store.ArtifactScreenshot, fullPath)

	if !a.Found() {
		log.Warn("filter section not found, keeping full page for inspection")
		return out, nil
	}
	log.Info("found filter section", zap.String("selector", a.Selector))

	sectionPath := filepath.Join(dir, prefix+"_filter_section.png")
	// Generic fallbacks like form can match hidden nodes that never become visible
	if err := capture.RunWithin(ctx, target.Timeout, capture.Element(a.Selector, sectionPath)); err != nil {
		log.Warn("filter section screenshot failed", zap.Error(err))
	} else {
		out.add(store.ArtifactScreenshot, sectionPath)
	}

	htmlPath, err := store.SaveText(dir, prefix+"_filter_html.html", a.HTML)
	if err != nil {
		return nil, err
	}
	out.add(store.ArtifactHTML, htmlPath)
	log.Info("saved filter markup", zap.Int("chars", len(a.HTML)))

	stylesPath, err := store.SaveJSON(dir, prefix+"_styles.json", a)
	if err != nil {
		return nil, err
	}
	out.add(store.ArtifactStyles, stylesPath)

	counts := a.Elements.Counts()
	log.Info("saved computed styles",
		zap.Int("headings", counts["headings"]),
		zap.Int("inputs", counts["inputs"]),
		zap.Int("buttons", counts["buttons"]),
		zap.Int("checkboxes", counts["checkboxes"]),
		zap.Int("labels", counts["labels"]),
	)

	return out, nil
}
