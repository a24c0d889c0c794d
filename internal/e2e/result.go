package e2e

import (
	"encoding/json"
	"io"

	"github.com/splitlease/parity/internal/validator"
)

// TestName labels every result of this suite
const TestName = "Search Filter Section Visual Alignment"

// MinScreenshots is how many screenshots a passing run must have produced
const MinScreenshots = 5

// Status of a run
const (
	StatusPassed = "passed"
	StatusFailed = "failed"
)

// Result is the outcome of one click-through
type Result struct {
	TestName       string            `json:"test_name"`
	Status         string            `json:"status"`
	Screenshots    []string          `json:"screenshots"`
	Error          *string           `json:"error"`
	StepsCompleted []string          `json:"steps_completed"`
	Warnings       []string          `json:"warnings,omitempty"`
	Styles         map[string]string `json:"styles,omitempty"`
	Structure      *validator.Report `json:"structure,omitempty"`
}

func newResult() *Result {
	return &Result{
		TestName:       TestName,
		Status:         StatusPassed,
		Screenshots:    []string{},
		StepsCompleted: []string{},
	}
}

// Passed reports whether the run passed
func (r *Result) Passed() bool {
	return r.Status == StatusPassed
}

func (r *Result) step(s string) {
	r.StepsCompleted = append(r.StepsCompleted, s)
}

func (r *Result) screenshot(path string) {
	r.Screenshots = append(r.Screenshots, path)
}

func (r *Result) warn(w string) {
	r.Warnings = append(r.Warnings, w)
}

func (r *Result) fail(err error) {
	msg := err.Error()
	r.Status = StatusFailed
	r.Error = &msg
}

// finish applies the screenshot criterion to a run that has not failed yet
func (r *Result) finish() {
	if !r.Passed() {
		return
	}
	if len(r.Screenshots) < MinScreenshots {
		r.fail(&screenshotShortfall{got: len(r.Screenshots)})
	}
}

// WriteJSON writes the indented result
func (r *Result) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}
