package store

import "time"

// RunKind identifies which command produced a run
type RunKind string

const (
	KindValidate RunKind = "validate"
	KindE2E      RunKind = "e2e"
	KindAnalyze  RunKind = "analyze"
	KindCapture  RunKind = "capture"
	KindDesign   RunKind = "design"
)

// Status is the lifecycle state of a run
type Status string

const (
	StatusRunning Status = "running"
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
)

// ArtifactKind classifies files written by a run
type ArtifactKind string

const (
	ArtifactScreenshot ArtifactKind = "screenshot"
	ArtifactStyles     ArtifactKind = "styles"
	ArtifactHTML       ArtifactKind = "html"
	ArtifactResult     ArtifactKind = "result"
	ArtifactSummary    ArtifactKind = "summary"
)

// Run is one recorded invocation
type Run struct {
	ID         string     `json:"id"`
	Kind       RunKind    `json:"kind"`
	Target     string     `json:"target"` // URL or file the run looked at
	Status     Status     `json:"status"`
	Error      string     `json:"error,omitempty"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// Artifact is a file attached to a run
type Artifact struct {
	RunID string       `json:"run_id"`
	Kind  ArtifactKind `json:"kind"`
	Path  string       `json:"path"`
}
