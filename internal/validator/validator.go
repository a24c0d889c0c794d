// Package validator checks a page's element tree against a catalog of
// required filter-section elements and produces a pass/fail Report.
package validator

import (
	"strings"

	"github.com/splitlease/parity/internal/document"
)

// ErrDocumentUnavailable means no document could be obtained, so no Report exists.
// It is the document package's sentinel, so adapter errors match it directly.
var ErrDocumentUnavailable = document.ErrUnavailable

// Validator evaluates a catalog against documents.
type Validator struct {
	catalog *Catalog
}

// New creates a validator for catalog. A nil catalog means DefaultCatalog.
func New(catalog *Catalog) *Validator {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	return &Validator{catalog: catalog}
}

// tally is the per-traversal state: what was seen, and the current group context
type tally struct {
	ids     map[string]bool
	texts   map[string]bool
	counts  map[string]int
	current *Group
}

// Validate walks doc once and evaluates every check.
func (v *Validator) Validate(doc document.Document) *Report {
	t := &tally{
		ids:    make(map[string]bool),
		texts:  make(map[string]bool),
		counts: make(map[string]int),
	}

	doc.Walk(func(el document.Element) {
		v.visit(t, el)
	})

	results := make([]CheckResult, 0, len(v.catalog.Checks))
	for _, ch := range v.catalog.Checks {
		results = append(results, CheckResult{Label: ch.Label, Passed: t.satisfies(ch)})
	}

	return newReport(results)
}

// ValidateFile parses the HTML file at path and validates it.
func (v *Validator) ValidateFile(path string) (*Report, error) {
	snap, err := document.ParseFile(path)
	if err != nil {
		return nil, err
	}
	return v.Validate(snap), nil
}

func (v *Validator) visit(t *tally, el document.Element) {
	if el.ID != "" {
		t.ids[el.ID] = true
	}

	for _, ch := range v.catalog.Checks {
		if ch.Kind != KindText || t.texts[ch.Text] {
			continue
		}
		for _, chunk := range el.Text {
			if strings.Contains(chunk, ch.Text) {
				t.texts[ch.Text] = true
				break
			}
		}
	}

	// Contexts replace each other; they never nest.
	for i := range v.catalog.Groups {
		if strings.Contains(el.Class, v.catalog.Groups[i].Marker) {
			t.current = &v.catalog.Groups[i]
			break
		}
	}

	if t.current != nil && counts(t.current.Counts, el) {
		t.counts[t.current.Name]++
	}
}

func counts(kind Counted, el document.Element) bool {
	switch kind {
	case CountCheckbox:
		return el.Tag == "input" && el.Type == "checkbox"
	case CountOptionButton:
		return el.Tag == "button" && strings.Contains(el.Class, optionButtonMarker)
	}
	return false
}

func (t *tally) satisfies(ch Check) bool {
	switch ch.Kind {
	case KindID:
		return t.ids[ch.ID]
	case KindText:
		return t.texts[ch.Text]
	case KindCount:
		return t.counts[ch.Group] >= ch.Min
	}
	return false
}
