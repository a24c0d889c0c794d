// Package document defines the element tree view the structure validator walks,
// with adapters for static HTML files and live browser tabs.
package document

import "errors"

// ErrUnavailable is returned when a document cannot be located or read.
var ErrUnavailable = errors.New("document unavailable")

// Element is a single element as seen during traversal
type Element struct {
	Tag   string   `json:"tag"` // lowercase
	ID    string   `json:"id"`
	Class string   `json:"class"` // raw class attribute
	Type  string   `json:"type"`  // raw type attribute
	Text  []string `json:"text"`  // immediate text chunks, in source order
}

// Document is anything that can enumerate its elements depth-first in source order.
type Document interface {
	Walk(fn func(Element))
}

// Snapshot is a flattened, already ordered element list.
type Snapshot []Element

// Walk calls fn for every element in order.
func (s Snapshot) Walk(fn func(Element)) {
	for _, el := range s {
		fn(el)
	}
}
