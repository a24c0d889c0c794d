// Package styles extracts the filter section's markup and computed styles from a live page.
package styles

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/splitlease/parity/internal/capture"
)

// FilterSelectors are tried in order to locate the filter container on a page
var FilterSelectors = []string{
	".filters",
	".filter-section",
	".search-filters",
	"aside",
	`[class*="filter"]`,
	`[class*="sidebar"]`,
	"form",
}

// Analysis is what one page exposes about its filter section
type Analysis struct {
	URL       string            `json:"url"`
	Selector  string            `json:"selector,omitempty"` // empty when no container was found
	HTML      string            `json:"-"`
	Container map[string]string `json:"container,omitempty"`
	Elements  *Elements         `json:"interactive_elements,omitempty"`
}

// Found reports whether a filter container was located
func (a *Analysis) Found() bool {
	return a.Selector != ""
}

// Elements groups the container's interactive descendants
type Elements struct {
	Headings   []map[string]string `json:"headings"`
	Inputs     []map[string]string `json:"inputs"`
	Buttons    []map[string]string `json:"buttons"`
	Checkboxes []map[string]string `json:"checkboxes"`
	Labels     []map[string]string `json:"labels"`
}

// Counts summarizes how many of each element kind were found
func (e *Elements) Counts() map[string]int {
	if e == nil {
		return nil
	}
	return map[string]int{
		"headings":   len(e.Headings),
		"inputs":     len(e.Inputs),
		"buttons":    len(e.Buttons),
		"checkboxes": len(e.Checkboxes),
		"labels":     len(e.Labels),
	}
}

// FindContainer returns the first of selectors present in the current tab.
func FindContainer(ctx context.Context, selectors []string) (string, error) {
	for _, sel := range selectors {
		var present bool
		js := fmt.Sprintf(`document.querySelector(%q) !== null`, sel)
		if err := chromedp.Run(ctx, chromedp.Evaluate(js, &present)); err != nil {
			// Invalid selectors on exotic pages are treated as misses
			continue
		}
		if present {
			return sel, nil
		}
	}
	return "", nil
}

// Analyze navigates the tab in ctx to url, waits settle, and extracts the filter section.
// Every browser step is bounded by timeout.
// A page without a recognizable container yields an Analysis with Found() == false.
func Analyze(ctx context.Context, url string, timeout, settle time.Duration) (*Analysis, error) {
	if err := capture.Navigate(ctx, url, timeout, settle); err != nil {
		return nil, err
	}

	a := &Analysis{URL: url}

	sel, err := FindContainer(ctx, FilterSelectors)
	if err != nil {
		return nil, err
	}
	if sel == "" {
		return a, nil
	}
	a.Selector = sel

	var elements Elements
	err = capture.RunWithin(ctx, timeout,
		chromedp.OuterHTML(sel, &a.HTML, chromedp.ByQuery),
		chromedp.Evaluate(fmt.Sprintf(containerJS, sel), &a.Container),
		chromedp.Evaluate(fmt.Sprintf(elementsJS, sel), &elements),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to extract styles from %s: %w", sel, err)
	}
	a.Elements = &elements

	return a, nil
}

// Probe evaluates a computed style property for each selector in the current tab.
// Selectors that match nothing map to the empty string.
func Probe(ctx context.Context, props map[string]Property) (map[string]string, error) {
	out := make(map[string]string, len(props))
	for name, p := range props {
		var v string
		js := fmt.Sprintf(`(() => {
			const el = document.querySelector(%q);
			return el ? window.getComputedStyle(el)[%q] : '';
		})()`, p.Selector, p.Name)
		if err := chromedp.Run(ctx, chromedp.Evaluate(js, &v)); err != nil {
			return nil, fmt.Errorf("failed to read %s of %s: %w", p.Name, p.Selector, err)
		}
		out[name] = v
	}
	return out, nil
}

// Property names one computed style value of one element
type Property struct {
	Selector string
	Name     string // camelCase CSSStyleDeclaration key
}

// containerJS returns the box, color, border and type styles of the container
const containerJS = `(() => {
	const el = document.querySelector(%q);
	if (!el) return {};
	const c = window.getComputedStyle(el);
	return {
		display: c.display,
		position: c.position,
		width: c.width,
		height: c.height,
		padding: c.padding,
		margin: c.margin,
		backgroundColor: c.backgroundColor,
		color: c.color,
		border: c.border,
		borderRadius: c.borderRadius,
		borderColor: c.borderColor,
		borderWidth: c.borderWidth,
		boxShadow: c.boxShadow,
		fontFamily: c.fontFamily,
		fontSize: c.fontSize,
		fontWeight: c.fontWeight,
		lineHeight: c.lineHeight,
		gap: c.gap,
		rowGap: c.rowGap,
		columnGap: c.columnGap
	};
})()`

// elementsJS collects styles of interactive descendants, grouped by kind
const elementsJS = `(() => {
	const container = document.querySelector(%q);
	const out = {headings: [], inputs: [], buttons: [], checkboxes: [], labels: []};
	if (!container) return out;
	const text = (el, n) => el.textContent.trim().substring(0, n);

	container.querySelectorAll('h1, h2, h3, h4, h5, h6').forEach(el => {
		const c = window.getComputedStyle(el);
		out.headings.push({
			tag: el.tagName, text: text(el, 50),
			fontFamily: c.fontFamily, fontSize: c.fontSize, fontWeight: c.fontWeight,
			color: c.color, lineHeight: c.lineHeight, marginBottom: c.marginBottom
		});
	});

	container.querySelectorAll('input[type="text"], input[type="number"], input[type="search"]').forEach(el => {
		const c = window.getComputedStyle(el);
		out.inputs.push({
			type: el.type, placeholder: el.placeholder,
			border: c.border, borderRadius: c.borderRadius, padding: c.padding,
			fontSize: c.fontSize, backgroundColor: c.backgroundColor, color: c.color, height: c.height
		});
	});

	container.querySelectorAll('button, input[type="submit"]').forEach(el => {
		const c = window.getComputedStyle(el);
		out.buttons.push({
			text: text(el, 30),
			backgroundColor: c.backgroundColor, color: c.color, border: c.border,
			borderRadius: c.borderRadius, padding: c.padding, fontSize: c.fontSize, fontWeight: c.fontWeight
		});
	});

	container.querySelectorAll('input[type="checkbox"]').forEach(el => {
		const c = window.getComputedStyle(el);
		out.checkboxes.push({
			width: c.width, height: c.height, border: c.border, borderRadius: c.borderRadius
		});
	});

	container.querySelectorAll('label').forEach(el => {
		const c = window.getComputedStyle(el);
		out.labels.push({
			text: text(el, 50), fontSize: c.fontSize, fontWeight: c.fontWeight, color: c.color
		});
	});

	return out;
})()`
