package core

import (
	"time"
)

// StepResult captures the complete outcome of executing a single flow step
type StepResult struct {
	// Identity
	Name  string `json:"name"`  // Transition name: log_in, select_product, etc.
	Index int    `json:"index"` // 0-based position in flow

	// State machine edge this step executed
	From FlowState `json:"from"`
	To   FlowState `json:"to"`

	// Status
	Status   StepStatus    `json:"status"`
	Category ErrorCategory `json:"errorCategory,omitempty"`

	// Timing
	StartTime time.Time     `json:"startTime"`
	Duration  time.Duration `json:"duration"`

	// Output
	Message string `json:"message,omitempty"` // Human-readable explanation

	// Error Details
	Error string `json:"error,omitempty"` // Technical error message

	// Debug Artifacts
	Attachments []Attachment `json:"attachments,omitempty"` // Screenshots, page text
}

// FlowOutcome captures the complete outcome of executing one flow
type FlowOutcome struct {
	// Identity
	FlowName string `json:"flowName"`

	// Browser info (captured once per flow)
	DriverInfo *DriverInfo `json:"driverInfo,omitempty"`

	// Final state machine position and aggregated status
	State  FlowState  `json:"state"`
	Status StepStatus `json:"status"`

	// Timing
	StartTime time.Time     `json:"startTime"`
	Duration  time.Duration `json:"duration"`

	// Results
	Steps []StepResult `json:"steps"`

	// Summary (computed)
	TotalSteps   int `json:"totalSteps"`
	PassedSteps  int `json:"passedSteps"`
	FailedSteps  int `json:"failedSteps"`
	SkippedSteps int `json:"skippedSteps"`

	// Failure info (set only when the flow failed)
	FailedStep      string `json:"failedStep,omitempty"`      // Name of the step that failed
	DiagnosticsPath string `json:"diagnosticsPath,omitempty"` // Where failure artifacts were written
	Error           string `json:"error,omitempty"`

	// Err holds the failing step's error for callers; not serialized
	Err error `json:"-"`
}

// ComputeSummary calculates step counts from the Steps slice
func (f *FlowOutcome) ComputeSummary() {
	f.TotalSteps = len(f.Steps)
	f.PassedSteps = 0
	f.FailedSteps = 0
	f.SkippedSteps = 0

	for _, step := range f.Steps {
		switch step.Status {
		case StatusPassed:
			f.PassedSteps++
		case StatusFailed, StatusErrored:
			f.FailedSteps++
		case StatusSkipped:
			f.SkippedSteps++
		}
	}
}

// hasFailure checks if any step in the slice has failed or errored
func hasFailure(steps []StepResult) bool {
	for _, step := range steps {
		if step.Status == StatusFailed || step.Status == StatusErrored {
			return true
		}
	}
	return false
}

// AggregateStatus determines the flow status from step results.
// Any failed or errored step fails the flow; there are no optional steps.
func (f *FlowOutcome) AggregateStatus() StepStatus {
	if hasFailure(f.Steps) {
		return StatusFailed
	}
	return StatusPassed
}

// Succeeded returns true if the flow ran all its steps without failure
func (f *FlowOutcome) Succeeded() bool {
	return f.State != StateFailed && f.Status.IsSuccess()
}

// SuiteResult captures the complete outcome of executing multiple flows
type SuiteResult struct {
	// Identity
	Name  string `json:"name"`
	RunID string `json:"runId"` // Unique execution ID

	// Timing
	StartTime time.Time     `json:"startTime"`
	Duration  time.Duration `json:"duration"`

	// Results
	Flows []FlowOutcome `json:"flows"`

	// Summary
	TotalFlows   int `json:"totalFlows"`
	PassedFlows  int `json:"passedFlows"`
	FailedFlows  int `json:"failedFlows"`
	SkippedFlows int `json:"skippedFlows"`
}

// ComputeSummary calculates flow counts from the Flows slice
func (s *SuiteResult) ComputeSummary() {
	s.TotalFlows = len(s.Flows)
	s.PassedFlows = 0
	s.FailedFlows = 0
	s.SkippedFlows = 0

	for _, flow := range s.Flows {
		switch flow.Status {
		case StatusPassed:
			s.PassedFlows++
		case StatusFailed, StatusErrored:
			s.FailedFlows++
		case StatusSkipped:
			s.SkippedFlows++
		}
	}
}

// Success returns true if all flows passed
func (s *SuiteResult) Success() bool {
	for _, flow := range s.Flows {
		if !flow.Status.IsSuccess() {
			return false
		}
	}
	return len(s.Flows) > 0
}
