// Package capture takes screenshots of pages and elements with chromedp.
package capture

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// DefaultTimeout bounds a browser step when the caller sets no timeout
const DefaultTimeout = 30 * time.Second

// RunWithin runs actions in the tab owning ctx and gives up after timeout.
// The tab must already be started: a timeout on its first Run would close it.
func RunWithin(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := runCtx.Err(); err != nil {
		return err
	}
	return chromedp.Run(runCtx, actions...)
}

// Navigate starts the tab in ctx if needed, loads url within timeout and then waits settle.
func Navigate(ctx context.Context, url string, timeout, settle time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := chromedp.Run(ctx); err != nil {
		return fmt.Errorf("failed to start tab: %w", err)
	}
	if err := RunWithin(ctx, timeout, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("failed to load %s: %w", url, err)
	}
	return chromedp.Run(ctx, chromedp.Sleep(settle))
}

// FullPage captures the whole scrollable page as PNG into path.
func FullPage(path string) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		var buf []byte
		if err := chromedp.FullScreenshot(&buf, 100).Do(ctx); err != nil {
			return fmt.Errorf("failed to capture full page: %w", err)
		}
		return writeFile(path, buf)
	})
}

// Element captures the first element matching sel as PNG into path.
// It waits for the element to become visible, so run it with RunWithin.
func Element(sel, path string) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		var buf []byte
		if err := chromedp.Screenshot(sel, &buf, chromedp.ByQuery).Do(ctx); err != nil {
			return fmt.Errorf("failed to capture %s: %w", sel, err)
		}
		return writeFile(path, buf)
	})
}

// Clip captures a fixed rectangle of the page as PNG into path.
func Clip(x, y, width, height float64, path string) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		buf, err := page.CaptureScreenshot().
			WithFormat(page.CaptureScreenshotFormatPng).
			WithClip(&page.Viewport{X: x, Y: y, Width: width, Height: height, Scale: 1}).
			Do(ctx)
		if err != nil {
			return fmt.Errorf("failed to capture clip: %w", err)
		}
		return writeFile(path, buf)
	})
}

// Viewport resizes the emulated viewport.
func Viewport(width, height int64) chromedp.Action {
	return chromedp.EmulateViewport(width, height)
}

// ListenConsole forwards console messages and uncaught exceptions of the tab in ctx to log.
func ListenConsole(ctx context.Context, log *zap.Logger) {
	chromedp.ListenTarget(ctx, func(ev interface{}) {
		switch ev := ev.(type) {
		case *runtime.EventConsoleAPICalled:
			args := make([]string, 0, len(ev.Args))
			for _, arg := range ev.Args {
				if len(arg.Value) > 0 {
					args = append(args, string(arg.Value))
				} else {
					args = append(args, arg.Description)
				}
			}
			log.Info("page log", zap.String("type", string(ev.Type)), zap.String("text", strings.Join(args, " ")))
		case *runtime.EventExceptionThrown:
			log.Error("page error", zap.String("text", ev.ExceptionDetails.Error()))
		}
	})
}

// Shot is one screenshot of a capture session.
type Shot struct {
	Name     string
	Selector string // empty for full page
	Width    int64
	Height   int64
}

// DefaultSession mirrors the component review captures: desktop page, header and
// main content detail, then the mobile page.
var DefaultSession = []Shot{
	{Name: "01_desktop_full_page.png", Width: 1280, Height: 1024},
	{Name: "02_property_header_detail.png", Selector: "#property-header"},
	{Name: "03_main_content.png", Selector: ".main-content"},
	{Name: "04_mobile_full_page.png", Width: 375, Height: 812},
}

// elementTimeout bounds how long an element shot waits for visibility
const elementTimeout = 5 * time.Second

// Run navigates the tab in ctx to url and takes shots into dir. Navigation and page
// shots are bounded by timeout and fatal; missing elements are logged and skipped.
func Run(ctx context.Context, log *zap.Logger, url, dir string, timeout, settle time.Duration, shots []Shot) ([]string, error) {
	log.Info("navigating", zap.String("url", url))
	if err := Navigate(ctx, url, timeout, settle); err != nil {
		return nil, err
	}

	var written []string
	for _, shot := range shots {
		path := filepath.Join(dir, shot.Name)

		if shot.Selector == "" {
			if err := RunWithin(ctx, timeout,
				Viewport(shot.Width, shot.Height),
				chromedp.Sleep(500*time.Millisecond),
				FullPage(path),
			); err != nil {
				return written, err
			}
			log.Info("captured page", zap.String("path", path))
			written = append(written, path)
			continue
		}

		if err := RunWithin(ctx, elementTimeout, Element(shot.Selector, path)); err != nil {
			log.Warn("element not captured", zap.String("selector", shot.Selector), zap.Error(err))
			continue
		}
		log.Info("captured element", zap.String("selector", shot.Selector), zap.String("path", path))
		written = append(written, path)
	}

	return written, nil
}

func writeFile(path string, buf []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create screenshot dir: %w", err)
	}
	if err := os.WriteFile(path, buf, 0644); err != nil {
		return fmt.Errorf("failed to write screenshot: %w", err)
	}
	return nil
}
