package summary

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/splitlease/parity/internal/document"
	"github.com/splitlease/parity/internal/e2e"
	"github.com/splitlease/parity/internal/validator"
)

func newBuilder(t *testing.T) *Builder {
	t.Helper()
	b, err := New()
	require.NoError(t, err)
	b.now = func() time.Time { return time.Date(2025, 3, 4, 9, 30, 0, 0, time.UTC) }
	return b
}

func TestBuildPassed(t *testing.T) {
	dir := filepath.Join("runs", "e2e")
	res := &e2e.Result{
		TestName:       e2e.TestName,
		Status:         e2e.StatusPassed,
		Screenshots:    []string{filepath.Join(dir, "01_local_initial_page.png")},
		StepsCompleted: []string{"Step 1-2: Initial page loaded and captured"},
		Warnings:       []string{"Apply button background may not match production (rgb(97, 53, 205))"},
		Styles:         map[string]string{"applyBtnBg": "rgb(0, 0, 0)"},
	}

	s, err := newBuilder(t).Build(res, dir)
	require.NoError(t, err)

	assert.Equal(t, "Search Filter Section Visual Alignment - PASSED", s.Title)
	assert.Contains(t, s.HTMLBody, `src="01_local_initial_page.png"`)
	assert.Contains(t, s.HTMLBody, "Step 1-2: Initial page loaded and captured")
	assert.Contains(t, s.HTMLBody, "status passed")
	assert.Contains(t, s.HTMLBody, "applyBtnBg")
	assert.Contains(t, s.PlainBody, "Tuesday, March 4 09:30")
	assert.Contains(t, s.PlainBody, "Warnings:")
}

func TestBuildFailedWithStructure(t *testing.T) {
	msg := "e2e step failed: Filter section not found!"
	report := validator.New(nil).Validate(document.Snapshot{})
	res := &e2e.Result{
		TestName:  e2e.TestName,
		Status:    e2e.StatusFailed,
		Error:     &msg,
		Structure: report,
	}

	s, err := newBuilder(t).Build(res, ".")
	require.NoError(t, err)

	assert.Contains(t, s.Title, "FAILED")
	assert.Contains(t, s.HTMLBody, "Filter section not found!")
	assert.Contains(t, s.HTMLBody, "[FAIL] Filter Section")
	assert.Contains(t, s.PlainBody, "Error: "+msg)
}

func TestBuildEscapesHTML(t *testing.T) {
	res := &e2e.Result{
		TestName:       e2e.TestName,
		Status:         e2e.StatusPassed,
		StepsCompleted: []string{"<script>alert(1)</script>"},
	}

	s, err := newBuilder(t).Build(res, ".")
	require.NoError(t, err)
	assert.NotContains(t, s.HTMLBody, "<script>alert(1)</script>")
}

func TestBuildNil(t *testing.T) {
	_, err := newBuilder(t).Build(nil, ".")
	assert.Error(t, err)
}
