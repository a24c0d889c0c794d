package e2e

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckTheme(t *testing.T) {
	observed := map[string]string{
		"applyBtnBg":       Purple,
		"filterTitleColor": "rgb(0, 0, 0)",
		"inputBorderColor": Border,
		"inputColor":       Text,
	}

	warnings := CheckTheme(observed, ThemeExpectations)
	require.Len(t, warnings, 1)
	assert.Equal(t, "Filter title color may not match production (rgb(49, 19, 93))", warnings[0])
}

func TestCheckThemeMissingProbe(t *testing.T) {
	warnings := CheckTheme(map[string]string{}, ThemeExpectations)
	assert.Len(t, warnings, len(ThemeExpectations))
}

func TestCheckThemeAllMatch(t *testing.T) {
	observed := map[string]string{
		"applyBtnBg":       Purple,
		"filterTitleColor": DarkPurple,
		"inputBorderColor": Border,
		"inputColor":       Text,
	}
	assert.Empty(t, CheckTheme(observed, ThemeExpectations))
}

func TestCheckThemeInputPalette(t *testing.T) {
	observed := map[string]string{
		"applyBtnBg":       Purple,
		"filterTitleColor": DarkPurple,
		"inputBorderColor": "rgb(118, 118, 118)",
		"inputColor":       Text,
	}

	warnings := CheckTheme(observed, ThemeExpectations)
	assert.Equal(t, []string{"Filter input border may not match production (rgb(196, 198, 208))"}, warnings)
}

func TestThemeExpectationsHaveProbes(t *testing.T) {
	for _, exp := range ThemeExpectations {
		_, ok := ThemeProbes[exp.Probe]
		assert.True(t, ok, "no probe for %s", exp.Probe)
	}
}

func TestResultFinishTooFewScreenshots(t *testing.T) {
	res := newResult()
	for _, p := range []string{"a.png", "b.png", "c.png"} {
		res.screenshot(p)
	}

	res.finish()

	assert.False(t, res.Passed())
	require.NotNil(t, res.Error)
	assert.Equal(t, "Only 3 screenshots captured, expected at least 5", *res.Error)
}

func TestResultFinishEnoughScreenshots(t *testing.T) {
	res := newResult()
	for i := 0; i < MinScreenshots; i++ {
		res.screenshot("shot.png")
	}

	res.finish()

	assert.True(t, res.Passed())
	assert.Nil(t, res.Error)
}

func TestResultFinishKeepsFirstError(t *testing.T) {
	res := newResult()
	res.fail(stepError("Filter section not found!"))

	res.finish()

	require.NotNil(t, res.Error)
	assert.Contains(t, *res.Error, "Filter section not found!")
}

func TestResultJSON(t *testing.T) {
	res := newResult()
	res.step("Step 1-2: Initial page loaded and captured")
	res.screenshot("01_local_initial_page.png")

	var buf bytes.Buffer
	require.NoError(t, res.WriteJSON(&buf))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))

	assert.Equal(t, TestName, got["test_name"])
	assert.Equal(t, StatusPassed, got["status"])
	assert.Nil(t, got["error"])
	assert.Equal(t, []any{"01_local_initial_page.png"}, got["screenshots"])
	assert.Equal(t, []any{"Step 1-2: Initial page loaded and captured"}, got["steps_completed"])
	assert.NotContains(t, got, "warnings")
	assert.NotContains(t, got, "structure")
}

func TestStepError(t *testing.T) {
	err := stepError("Missing element: %s (selector: %s)", "Filters title", FilterTitle)

	assert.True(t, errors.Is(err, ErrStepFailed))
	assert.Contains(t, err.Error(), "Missing element: Filters title (selector: .filter-title)")
}

func TestCoreElements(t *testing.T) {
	require.Len(t, CoreElements, 8)
	seen := map[string]bool{}
	for _, el := range CoreElements {
		assert.NotEmpty(t, el.Name)
		assert.False(t, seen[el.Selector], "duplicate selector %s", el.Selector)
		seen[el.Selector] = true
	}
	assert.Equal(t, FilterSection, ProductionSectionSelectors[0])
}
