// Package report provides JSON-based run reporting with real-time updates.
//
// Architecture:
//   - report.json: Main index file (small, frequently updated, mutex-protected)
//   - flows/flow-XXX.json: Per-flow detail files (no lock needed)
//   - assets/flow-XXX/: Per-flow artifacts (screenshots, page text, logs)
//   - assets/failures/: Failure diagnostics keyed by flow name and timestamp
//
// The index file serves as single source of truth for status and change
// tracking. Consumers poll report.json and only fetch changed flow details
// as needed.
package report

import (
	"time"

	"github.com/storelab-dev/checkout-runner/pkg/core"
)

// Version is the report schema version.
const Version = "1.0.0"

// Status represents the execution status.
type Status string

// Status values.
const (
	StatusPending Status = "pending"
	StatusRunning Status = "running"
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// IsTerminal returns true if the status is a final state.
func (s Status) IsTerminal() bool {
	return s == StatusPassed || s == StatusFailed || s == StatusSkipped
}

// FromStepStatus maps an execution status onto the report schema.
// Errored collapses into failed; the distinction lives in Error.Type.
func FromStepStatus(s core.StepStatus) Status {
	switch s {
	case core.StatusPending:
		return StatusPending
	case core.StatusRunning:
		return StatusRunning
	case core.StatusPassed:
		return StatusPassed
	case core.StatusFailed, core.StatusErrored:
		return StatusFailed
	case core.StatusSkipped:
		return StatusSkipped
	default:
		return StatusPending
	}
}

// ============================================================================
// INDEX (report.json)
// ============================================================================

// Index is the main report file that binds everything together.
// It contains minimal info for efficient polling and change detection.
type Index struct {
	Version     string      `json:"version"`
	RunID       string      `json:"runId"`
	UpdateSeq   uint64      `json:"updateSeq"`
	Status      Status      `json:"status"`
	StartTime   time.Time   `json:"startTime"`
	EndTime     *time.Time  `json:"endTime,omitempty"`
	LastUpdated time.Time   `json:"lastUpdated"`
	Browser     Browser     `json:"browser"`
	Target      Target      `json:"target"`
	Runner      RunnerInfo  `json:"runner"`
	Summary     Summary     `json:"summary"`
	Flows       []FlowEntry `json:"flows"`
}

// Browser describes the browser session the run used.
type Browser struct {
	Driver         string `json:"driver"` // playwright, selenium, mock
	Name           string `json:"name"`
	Version        string `json:"version,omitempty"`
	Headless       bool   `json:"headless"`
	ViewportWidth  int    `json:"viewportWidth,omitempty"`
	ViewportHeight int    `json:"viewportHeight,omitempty"`
}

// Target describes the storefront under test.
type Target struct {
	BaseURL string `json:"baseUrl"`
}

// RunnerInfo contains checkout-runner information.
type RunnerInfo struct {
	Version string `json:"version"`
	Driver  string `json:"driver"`
}

// Summary contains aggregated counts.
type Summary struct {
	Total   int `json:"total"`
	Passed  int `json:"passed"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
	Running int `json:"running"`
	Pending int `json:"pending"`
}

// FlowEntry is the index entry for a flow (minimal info).
type FlowEntry struct {
	Index          int         `json:"index"`    // Original position
	ID             string      `json:"id"`       // Unique flow ID
	Name           string      `json:"name"`     // Display name
	DataFile       string      `json:"dataFile"` // Path to flow detail JSON
	AssetsDir      string      `json:"assetsDir"`
	Status         Status      `json:"status"`
	UpdateSeq      uint64      `json:"updateSeq"`
	StartTime      *time.Time  `json:"startTime,omitempty"`
	EndTime        *time.Time  `json:"endTime,omitempty"`
	Duration       *int64      `json:"duration,omitempty"` // milliseconds
	LastUpdated    *time.Time  `json:"lastUpdated,omitempty"`
	Steps          StepSummary `json:"steps"`
	FinalState     string      `json:"finalState,omitempty"`
	DiagnosticsDir string      `json:"diagnosticsDir,omitempty"`
	Error          *string     `json:"error,omitempty"`
}

// StepSummary contains step counts for a flow.
type StepSummary struct {
	Total   int  `json:"total"`
	Passed  int  `json:"passed"`
	Failed  int  `json:"failed"`
	Skipped int  `json:"skipped"`
	Running int  `json:"running"`
	Pending int  `json:"pending"`
	Current *int `json:"current,omitempty"` // Currently running step index
}

// ============================================================================
// FLOW DETAIL (flows/flow-XXX.json)
// ============================================================================

// FlowDetail contains full flow execution details.
type FlowDetail struct {
	ID         string        `json:"id"`
	Name       string        `json:"name"`
	Browser    *Browser      `json:"browser,omitempty"`
	StartTime  time.Time     `json:"startTime"`
	EndTime    *time.Time    `json:"endTime,omitempty"`
	Duration   *int64        `json:"duration,omitempty"` // milliseconds
	FinalState string        `json:"finalState,omitempty"`
	Steps      []Step        `json:"steps"`
	Artifacts  FlowArtifacts `json:"artifacts"`
}

// Step represents a single orchestrator transition.
type Step struct {
	ID        string        `json:"id"`
	Index     int           `json:"index"`
	Name      string        `json:"name"`
	From      string        `json:"from,omitempty"` // state before the transition
	To        string        `json:"to,omitempty"`   // state it commits on success
	Status    Status        `json:"status"`
	StartTime *time.Time    `json:"startTime,omitempty"`
	EndTime   *time.Time    `json:"endTime,omitempty"`
	Duration  *int64        `json:"duration,omitempty"` // milliseconds
	Error     *Error        `json:"error,omitempty"`
	Artifacts StepArtifacts `json:"artifacts"`
}

// Error contains error details.
type Error struct {
	Type    string `json:"type"` // verification, timeout, session, driver, config, locator
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// ============================================================================
// ARTIFACTS (paths only, never inline data)
// ============================================================================

// FlowArtifacts contains flow-level artifact paths.
type FlowArtifacts struct {
	RunLog         string `json:"runLog,omitempty"`
	DiagnosticsDir string `json:"diagnosticsDir,omitempty"`
}

// StepArtifacts contains step-level artifact paths.
type StepArtifacts struct {
	Screenshot string `json:"screenshot,omitempty"`
	PageText   string `json:"pageText,omitempty"`
}

// ============================================================================
// UPDATE TYPES
// ============================================================================

// FlowUpdate contains the fields to update in index for a flow.
type FlowUpdate struct {
	Status         Status
	StartTime      *time.Time
	EndTime        *time.Time
	Duration       *int64
	Steps          StepSummary
	FinalState     string
	DiagnosticsDir string
	Error          *string
}
