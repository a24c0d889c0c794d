package e2e

import (
	"fmt"
	"strings"

	"github.com/splitlease/parity/internal/styles"
)

// ThemeProbes are the computed styles read from the local filter section
var ThemeProbes = map[string]styles.Property{
	"filterSectionBorderRight": {Selector: FilterSection, Name: "borderRightColor"},
	"filterTitleColor":         {Selector: FilterTitle, Name: "color"},
	"clearBtnColor":            {Selector: FilterClear, Name: "color"},
	"inputBorderColor":         {Selector: FilterInput, Name: "borderColor"},
	"inputColor":               {Selector: FilterInput, Name: "color"},
	"applyBtnBg":               {Selector: ApplyButton, Name: "backgroundColor"},
	"fontFamily":               {Selector: FilterSection, Name: "fontFamily"},
}

// Production palette
const (
	Purple     = "rgb(97, 53, 205)" // #6135cd
	DarkPurple = "rgb(49, 19, 93)"  // #31135d
	Border     = "rgb(196, 198, 208)"
	Text       = "rgb(79, 82, 76)"
)

// Expectation is a computed style value the production theme uses
type Expectation struct {
	Probe string
	Want  string // substring of the computed value
	What  string
}

// ThemeExpectations are checked against ThemeProbes results. Mismatches are warnings.
var ThemeExpectations = []Expectation{
	{Probe: "applyBtnBg", Want: Purple, What: "Apply button background"},
	{Probe: "filterTitleColor", Want: DarkPurple, What: "Filter title color"},
	{Probe: "inputBorderColor", Want: Border, What: "Filter input border"},
	{Probe: "inputColor", Want: Text, What: "Filter input text color"},
}

// CheckTheme returns a warning for every expectation the observed styles miss.
func CheckTheme(observed map[string]string, expectations []Expectation) []string {
	var warnings []string
	for _, exp := range expectations {
		if !strings.Contains(observed[exp.Probe], exp.Want) {
			warnings = append(warnings, fmt.Sprintf("%s may not match production (%s)", exp.What, exp.Want))
		}
	}
	return warnings
}
