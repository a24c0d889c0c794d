package document

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Parse reads HTML from r and flattens it into a Snapshot.
// Malformed markup is repaired by the HTML5 parser rather than rejected.
func Parse(r io.Reader) (Snapshot, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var snap Snapshot
	// "*" matches in pre-order, which is source order for a parsed tree
	doc.Find("*").Each(func(_ int, s *goquery.Selection) {
		snap = append(snap, elementOf(s))
	})

	return snap, nil
}

// ParseFile opens path and parses it as HTML.
func ParseFile(path string) (Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer f.Close()

	return Parse(f)
}

func elementOf(s *goquery.Selection) Element {
	el := Element{
		Tag:   strings.ToLower(goquery.NodeName(s)),
		ID:    s.AttrOr("id", ""),
		Class: s.AttrOr("class", ""),
		Type:  s.AttrOr("type", ""),
	}

	for _, n := range s.Nodes {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.TextNode && c.Data != "" {
				el.Text = append(el.Text, c.Data)
			}
		}
	}

	return el
}
