// Package browser provides the shared chromedp configuration for page comparison runs.
package browser

import (
	"context"

	"github.com/chromedp/chromedp"

	"github.com/splitlease/parity/internal/config"
)

// Options returns chromedp allocator options for cfg.
// All browser instances should use this so local and production pages render alike.
func Options(cfg config.BrowserConfig) []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),

		// Keep navigator.webdriver false so production serves the normal page
		chromedp.Flag("disable-blink-features", "AutomationControlled"),

		chromedp.WindowSize(cfg.Width, cfg.Height),

		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-default-apps", true),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("no-default-browser-check", true),
	)

	if cfg.Headless {
		opts = append(opts, chromedp.Flag("disable-gpu", true))
	}

	return opts
}

// NewContext starts a browser for cfg and returns a context bound to its first tab.
// The returned cancel closes the tab and the browser.
func NewContext(parent context.Context, cfg config.BrowserConfig) (context.Context, context.CancelFunc) {
	allocCtx, allocCancel := chromedp.NewExecAllocator(parent, Options(cfg)...)
	ctx, cancel := chromedp.NewContext(allocCtx)

	return ctx, func() {
		cancel()
		allocCancel()
	}
}

// NewTab opens another tab in the browser that owns ctx.
func NewTab(ctx context.Context) (context.Context, context.CancelFunc) {
	return chromedp.NewContext(ctx)
}
