package validator

import (
	"bytes"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/splitlease/parity/internal/document"
)

func checkbox() document.Element {
	return document.Element{Tag: "input", Type: "checkbox"}
}

func optionButton() document.Element {
	return document.Element{Tag: "button", Class: "option-button"}
}

func group(class string) document.Element {
	return document.Element{Tag: "div", Class: class}
}

func repeat(el document.Element, n int) []document.Element {
	out := make([]document.Element, n)
	for i := range out {
		out[i] = el
	}
	return out
}

// completeSnapshot satisfies every default check exactly at threshold.
func completeSnapshot() document.Snapshot {
	var s document.Snapshot
	s = append(s,
		document.Element{Tag: "aside", ID: "filter-section"},
		document.Element{Tag: "h2", Text: []string{"Search Filters"}},
		document.Element{Tag: "button", ID: "clear-filters"},
		document.Element{Tag: "input", ID: "location-input", Type: "text"},
		document.Element{Tag: "input", ID: "min-price"},
		document.Element{Tag: "input", ID: "max-price"},
	)
	s = append(s, group("schedule-options"))
	s = append(s, repeat(checkbox(), 3)...)
	s = append(s, group("property-type-options"))
	s = append(s, repeat(checkbox(), 4)...)
	s = append(s, group("bedroom-options"))
	s = append(s, repeat(optionButton(), 5)...)
	s = append(s, group("bathroom-options"))
	s = append(s, repeat(optionButton(), 5)...)
	s = append(s, group("amenities-options"))
	s = append(s, repeat(checkbox(), 6)...)
	s = append(s, document.Element{Tag: "button", ID: "apply-filters"})
	return s
}

func without(s document.Snapshot, drop func(document.Element) bool) document.Snapshot {
	var out document.Snapshot
	for _, el := range s {
		if !drop(el) {
			out = append(out, el)
		}
	}
	return out
}

func TestValidate_CompleteDocumentPasses(t *testing.T) {
	report := New(nil).Validate(completeSnapshot())

	assert.True(t, report.Passed())
	assert.Empty(t, report.Failed())
	assert.Len(t, report.Results(), 12)
	for _, r := range report.Results() {
		assert.True(t, r.Passed, r.Label)
	}
}

func TestValidateFile_SearchPage(t *testing.T) {
	report, err := New(nil).ValidateFile(filepath.Join("testdata", "search.html"))
	require.NoError(t, err)

	assert.True(t, report.Passed(), "failed: %v", report.Failed())
	assert.Len(t, report.Results(), 12)
}

func TestValidateFile_Missing(t *testing.T) {
	report, err := New(nil).ValidateFile(filepath.Join("testdata", "missing.html"))

	assert.Nil(t, report)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDocumentUnavailable))
	assert.True(t, errors.Is(err, document.ErrUnavailable))
	assert.Equal(t, 1, strings.Count(err.Error(), "document unavailable"), err.Error())
	assert.Contains(t, err.Error(), "missing.html")
}

func TestValidate_MissingFilterSection(t *testing.T) {
	snap := without(completeSnapshot(), func(el document.Element) bool {
		return el.ID == "filter-section"
	})

	report := New(nil).Validate(snap)

	assert.False(t, report.Passed())
	assert.Equal(t, []string{"Filter Section"}, report.Failed())
}

func TestValidate_ScheduleBelowThreshold(t *testing.T) {
	var snap document.Snapshot
	dropped := false
	inSchedule := false
	for _, el := range completeSnapshot() {
		if el.Class == "schedule-options" {
			inSchedule = true
		} else if el.Class != "" && el.Tag == "div" {
			inSchedule = false
		}
		if inSchedule && el.Type == "checkbox" && !dropped {
			dropped = true
			continue
		}
		snap = append(snap, el)
	}

	report := New(nil).Validate(snap)

	assert.False(t, report.Passed())
	assert.Equal(t, []string{"Schedule Checkboxes (>=3)"}, report.Failed())
}

func TestValidate_ContextAttribution(t *testing.T) {
	tests := []struct {
		name string
		snap document.Snapshot
		want int
	}{
		{
			name: "checkbox before any marker is not counted",
			snap: append(repeat(checkbox(), 3), group("schedule-options")),
			want: 0,
		},
		{
			name: "nested checkboxes count toward the open group",
			snap: document.Snapshot{
				group("schedule-options"),
				{Tag: "div", Class: "row"},
				{Tag: "label"},
				{Tag: "span"},
				checkbox(), checkbox(), checkbox(),
			},
			want: 3,
		},
		{
			name: "a later marker replaces the context",
			snap: document.Snapshot{
				group("schedule-options"),
				checkbox(),
				group("bedroom-options"),
				checkbox(), checkbox(),
			},
			want: 1,
		},
		{
			name: "a nested group keeps the context after it closes",
			snap: document.Snapshot{
				group("schedule-options"),
				checkbox(),
				group("bedroom-options"), // nested in the schedule markup
				optionButton(),
				checkbox(), checkbox(), // back in the schedule group, attributed to bedroom
			},
			want: 1,
		},
		{
			name: "marker match is a substring of the class attribute",
			snap: document.Snapshot{
				group("panel schedule-options-v2 wide"),
				checkbox(), checkbox(),
			},
			want: 2,
		},
		{
			name: "only checkbox inputs count",
			snap: document.Snapshot{
				group("schedule-options"),
				{Tag: "input", Type: "radio"},
				{Tag: "input", Type: "Checkbox"},
				optionButton(),
				checkbox(),
			},
			want: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			catalog := &Catalog{
				Groups: DefaultCatalog().Groups,
				Checks: []Check{{Label: "schedule", Kind: KindCount, Group: "schedule", Min: 1}},
			}
			v := New(catalog)
			tl := &tally{ids: map[string]bool{}, texts: map[string]bool{}, counts: map[string]int{}}
			tt.snap.Walk(func(el document.Element) { v.visit(tl, el) })

			assert.Equal(t, tt.want, tl.counts["schedule"])
		})
	}
}

func TestValidate_ButtonsNeedOptionButtonClass(t *testing.T) {
	snap := document.Snapshot{group("bedroom-options")}
	snap = append(snap, repeat(document.Element{Tag: "button", Class: "btn"}, 5)...)
	snap = append(snap, repeat(document.Element{Tag: "a", Class: "option-button"}, 5)...)

	report := New(nil).Validate(snap)

	res, ok := report.Result("Bedroom Buttons (>=5)")
	require.True(t, ok)
	assert.False(t, res.Passed)
}

func TestValidate_FilterTitle(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"Search Filters", true},
		{"Filters", true},
		{"Filter", false},
		{"filters", false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			snap := document.Snapshot{{Tag: "h2", Text: []string{tt.text}}}
			res, ok := New(nil).Validate(snap).Result("Filter Title")
			require.True(t, ok)
			assert.Equal(t, tt.want, res.Passed)
		})
	}
}

func TestValidate_FilterTitleChunksAreSeparate(t *testing.T) {
	snap := document.Snapshot{{Tag: "h2", Text: []string{"Filt", "ers"}}}
	res, ok := New(nil).Validate(snap).Result("Filter Title")
	require.True(t, ok)
	assert.False(t, res.Passed)
}

func TestValidate_Deterministic(t *testing.T) {
	v := New(nil)
	snap := completeSnapshot()[:20]

	first, err := json.Marshal(v.Validate(snap))
	require.NoError(t, err)
	second, err := json.Marshal(v.Validate(snap))
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestReport_ResultsIsACopy(t *testing.T) {
	report := New(nil).Validate(completeSnapshot())

	results := report.Results()
	results[0].Passed = false

	assert.True(t, report.Results()[0].Passed)
	assert.True(t, report.Passed())
}

func TestReport_Print(t *testing.T) {
	color.NoColor = true

	snap := without(completeSnapshot(), func(el document.Element) bool {
		return el.ID == "apply-filters"
	})

	var out bytes.Buffer
	New(nil).Validate(snap).Print(&out)

	text := out.String()
	assert.True(t, strings.HasPrefix(text, "Filter Section Structure Validation\n"))
	assert.Contains(t, text, "[PASS]: Filter Section\n")
	assert.Contains(t, text, "[FAIL]: Apply Button\n")
	assert.Contains(t, text, "Some validation checks failed!")
	assert.Equal(t, 2, strings.Count(text, strings.Repeat("=", 50)))
}

func TestLoadCatalog(t *testing.T) {
	c, err := LoadCatalog(filepath.Join("testdata", "catalog.yaml"))
	require.NoError(t, err)

	assert.Len(t, c.Groups, 2)
	require.Len(t, c.Checks, 4)
	assert.Equal(t, KindCount, c.Checks[2].Kind)
	assert.Equal(t, 2, c.Checks[2].Min)

	report, err := New(c).ValidateFile(filepath.Join("testdata", "search.html"))
	require.NoError(t, err)
	assert.True(t, report.Passed())
	assert.Len(t, report.Results(), 4)
}

func TestLoadCatalog_UnknownGroup(t *testing.T) {
	_, err := LoadCatalog(filepath.Join("testdata", "bad_catalog.yaml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidCatalog))
}

func TestCatalogValidate(t *testing.T) {
	assert.NoError(t, DefaultCatalog().Validate())

	bad := []*Catalog{
		{},
		{Checks: []Check{{Label: "x", Kind: "css"}}},
		{Checks: []Check{{Label: "x", Kind: KindID}}},
		{Checks: []Check{{Label: "x", Kind: KindText}}},
		{
			Groups: []Group{{Name: "g", Marker: "m", Counts: CountCheckbox}},
			Checks: []Check{{Label: "x", Kind: KindCount, Group: "g", Min: 0}},
		},
		{
			Groups: []Group{{Name: "g", Marker: "m", Counts: "radio"}},
			Checks: []Check{{Label: "x", Kind: KindID, ID: "a"}},
		},
	}
	for i, c := range bad {
		err := c.Validate()
		assert.ErrorIs(t, err, ErrInvalidCatalog, "catalog %d", i)
	}
}

func TestReport_JSONRoundTrip(t *testing.T) {
	snap := without(completeSnapshot(), func(el document.Element) bool { return el.ID == "apply-filters" })
	report := New(nil).Validate(snap)

	data, err := json.Marshal(report)
	require.NoError(t, err)

	var decoded Report
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, report.Results(), decoded.Results())
	assert.False(t, decoded.Passed())
	assert.Equal(t, []string{"Apply Button"}, decoded.Failed())
}

func TestReport_UnmarshalRecomputesAggregate(t *testing.T) {
	var decoded Report
	require.NoError(t, json.Unmarshal([]byte(`{"passed":true,"checks":[{"label":"Filter Section","passed":false}]}`), &decoded))
	assert.False(t, decoded.Passed())
}
