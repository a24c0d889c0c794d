package document

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
)

// rawElement is the shape returned by the DOM walk script
type rawElement struct {
	Tag   string   `json:"tag"`
	ID    string   `json:"id"`
	Class string   `json:"className"`
	Type  string   `json:"type"`
	Text  []string `json:"text"`
}

// walkJS flattens the live DOM. querySelectorAll('*') returns elements in
// document order, which matches the static adapter's traversal.
const walkJS = `
	(function() {
		const results = [];
		document.querySelectorAll('*').forEach(el => {
			const text = [];
			el.childNodes.forEach(n => {
				if (n.nodeType === Node.TEXT_NODE && n.nodeValue) {
					text.push(n.nodeValue);
				}
			});
			results.push({
				tag: el.tagName,
				id: el.getAttribute('id') || '',
				className: el.getAttribute('class') || '',
				type: el.getAttribute('type') || '',
				text: text
			});
		});
		return results;
	})()
`

// Capture returns an action that snapshots the DOM of the current tab into snap.
func Capture(snap *Snapshot) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		var raw []rawElement
		if err := chromedp.Evaluate(walkJS, &raw).Do(ctx); err != nil {
			return fmt.Errorf("%w: failed to walk live DOM: %v", ErrUnavailable, err)
		}

		*snap = fromRaw(raw)
		return nil
	})
}

// Load navigates the tab in ctx to url, waits settle for scripts to render
// and snapshots the resulting DOM.
func Load(ctx context.Context, url string, settle time.Duration) (Snapshot, error) {
	var snap Snapshot
	err := chromedp.Run(ctx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(settle),
		Capture(&snap),
	)
	if err != nil {
		if errors.Is(err, ErrUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: failed to load %s: %v", ErrUnavailable, url, err)
	}
	return snap, nil
}

func fromRaw(raw []rawElement) Snapshot {
	snap := make(Snapshot, 0, len(raw))
	for _, r := range raw {
		snap = append(snap, Element{
			Tag:   strings.ToLower(r.Tag),
			ID:    r.ID,
			Class: r.Class,
			Type:  r.Type,
			Text:  r.Text,
		})
	}
	return snap
}
