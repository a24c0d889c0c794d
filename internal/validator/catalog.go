package validator

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrInvalidCatalog is returned when a catalog fails validation.
var ErrInvalidCatalog = errors.New("invalid catalog")

// Kind is the satisfaction rule of a check.
type Kind string

const (
	KindID    Kind = "id"    // some element has this id
	KindText  Kind = "text"  // some text chunk contains this substring
	KindCount Kind = "count" // at least Min elements attributed to a group
)

// Counted names the element shape a group counts.
type Counted string

const (
	CountCheckbox     Counted = "checkbox"      // <input type="checkbox">
	CountOptionButton Counted = "option-button" // <button class="...option-button...">
)

// optionButtonMarker is the class substring that makes a button countable
const optionButtonMarker = "option-button"

// Group is a context-bearing container, recognised by a class substring.
type Group struct {
	Name   string  `yaml:"name"`
	Marker string  `yaml:"marker"`
	Counts Counted `yaml:"counts"`
}

// Check is one entry of the requirement catalog.
type Check struct {
	Label string `yaml:"label"`
	Kind  Kind   `yaml:"kind"`
	ID    string `yaml:"id,omitempty"`
	Text  string `yaml:"text,omitempty"`
	Group string `yaml:"group,omitempty"`
	Min   int    `yaml:"min,omitempty"`
}

// Catalog is the fixed list of structural requirements plus the groups they count in.
// Groups are matched in order; the first marker found in a class attribute wins.
type Catalog struct {
	Groups []Group `yaml:"groups"`
	Checks []Check `yaml:"checks"`
}

// DefaultCatalog returns the filter-section requirements of the search page.
func DefaultCatalog() *Catalog {
	return &Catalog{
		Groups: []Group{
			{Name: "schedule", Marker: "schedule-options", Counts: CountCheckbox},
			{Name: "property_type", Marker: "property-type-options", Counts: CountCheckbox},
			{Name: "amenity", Marker: "amenities-options", Counts: CountCheckbox},
			{Name: "bedroom", Marker: "bedroom-options", Counts: CountOptionButton},
			{Name: "bathroom", Marker: "bathroom-options", Counts: CountOptionButton},
		},
		Checks: []Check{
			{Label: "Filter Section", Kind: KindID, ID: "filter-section"},
			{Label: "Filter Title", Kind: KindText, Text: "Filters"},
			{Label: "Clear Button", Kind: KindID, ID: "clear-filters"},
			{Label: "Location Input", Kind: KindID, ID: "location-input"},
			{Label: "Min Price Input", Kind: KindID, ID: "min-price"},
			{Label: "Max Price Input", Kind: KindID, ID: "max-price"},
			{Label: "Schedule Checkboxes (>=3)", Kind: KindCount, Group: "schedule", Min: 3},
			{Label: "Property Type Checkboxes (>=4)", Kind: KindCount, Group: "property_type", Min: 4},
			{Label: "Bedroom Buttons (>=5)", Kind: KindCount, Group: "bedroom", Min: 5},
			{Label: "Bathroom Buttons (>=5)", Kind: KindCount, Group: "bathroom", Min: 5},
			{Label: "Amenity Checkboxes (>=6)", Kind: KindCount, Group: "amenity", Min: 6},
			{Label: "Apply Button", Kind: KindID, ID: "apply-filters"},
		},
	}
}

// LoadCatalog reads a YAML catalog from path and validates it.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}

	return &c, nil
}

// Validate checks that every check is well-formed and refers to a known group.
func (c *Catalog) Validate() error {
	if len(c.Checks) == 0 {
		return fmt.Errorf("%w: no checks", ErrInvalidCatalog)
	}

	groups := make(map[string]bool, len(c.Groups))
	for _, g := range c.Groups {
		if g.Name == "" || g.Marker == "" {
			return fmt.Errorf("%w: group needs name and marker", ErrInvalidCatalog)
		}
		if g.Counts != CountCheckbox && g.Counts != CountOptionButton {
			return fmt.Errorf("%w: group %s counts unknown element %q", ErrInvalidCatalog, g.Name, g.Counts)
		}
		if groups[g.Name] {
			return fmt.Errorf("%w: duplicate group %s", ErrInvalidCatalog, g.Name)
		}
		groups[g.Name] = true
	}

	for _, ch := range c.Checks {
		if ch.Label == "" {
			return fmt.Errorf("%w: check without label", ErrInvalidCatalog)
		}
		switch ch.Kind {
		case KindID:
			if ch.ID == "" {
				return fmt.Errorf("%w: %s: id check needs id", ErrInvalidCatalog, ch.Label)
			}
		case KindText:
			if ch.Text == "" {
				return fmt.Errorf("%w: %s: text check needs text", ErrInvalidCatalog, ch.Label)
			}
		case KindCount:
			if !groups[ch.Group] {
				return fmt.Errorf("%w: %s: unknown group %q", ErrInvalidCatalog, ch.Label, ch.Group)
			}
			if ch.Min < 1 {
				return fmt.Errorf("%w: %s: min must be at least 1", ErrInvalidCatalog, ch.Label)
			}
		default:
			return fmt.Errorf("%w: %s: unknown kind %q", ErrInvalidCatalog, ch.Label, ch.Kind)
		}
	}

	return nil
}
