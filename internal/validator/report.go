package validator

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// CheckResult is the outcome of one catalog check.
type CheckResult struct {
	Label  string `json:"label"`
	Passed bool   `json:"passed"`
}

// Report is the ordered, read-only result of one validation run.
type Report struct {
	results []CheckResult
	passed  bool
}

func newReport(results []CheckResult) *Report {
	passed := true
	for _, r := range results {
		if !r.Passed {
			passed = false
		}
	}
	return &Report{results: results, passed: passed}
}

// Results returns a copy of the per-check outcomes in catalog order.
func (r *Report) Results() []CheckResult {
	out := make([]CheckResult, len(r.results))
	copy(out, r.results)
	return out
}

// Passed reports whether every check passed.
func (r *Report) Passed() bool {
	return r.passed
}

// Failed returns the labels of failing checks.
func (r *Report) Failed() []string {
	var labels []string
	for _, res := range r.results {
		if !res.Passed {
			labels = append(labels, res.Label)
		}
	}
	return labels
}

// Result looks up a check by label.
func (r *Report) Result(label string) (CheckResult, bool) {
	for _, res := range r.results {
		if res.Label == label {
			return res, true
		}
	}
	return CheckResult{}, false
}

// MarshalJSON encodes the report as {"passed": ..., "checks": [...]}.
func (r *Report) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Passed bool          `json:"passed"`
		Checks []CheckResult `json:"checks"`
	}{r.passed, r.results})
}

// UnmarshalJSON decodes a report written by MarshalJSON. The aggregate is
// recomputed from the checks rather than trusted.
func (r *Report) UnmarshalJSON(data []byte) error {
	var raw struct {
		Checks []CheckResult `json:"checks"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = *newReport(raw.Checks)
	return nil
}

var rule = strings.Repeat("=", 50)

// Print writes the human-readable report. Colors follow fatih/color's TTY detection.
func (r *Report) Print(w io.Writer) {
	pass := color.New(color.FgGreen)
	fail := color.New(color.FgRed)

	fmt.Fprintln(w, "Filter Section Structure Validation")
	fmt.Fprintln(w, rule)

	for _, res := range r.results {
		if res.Passed {
			pass.Fprint(w, "[PASS]")
		} else {
			fail.Fprint(w, "[FAIL]")
		}
		fmt.Fprintf(w, ": %s\n", res.Label)
	}

	fmt.Fprintln(w, rule)

	if r.passed {
		pass.Fprintln(w, "All validation checks passed!")
	} else {
		fail.Fprintln(w, "Some validation checks failed!")
	}
}
