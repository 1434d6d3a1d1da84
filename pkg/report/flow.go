package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// FlowWriter writes updates for a single flow.
// Each flow goroutine has its own FlowWriter - no locking needed.
type FlowWriter struct {
	flow      *FlowDetail
	path      string
	assetsDir string
	index     *IndexWriter
}

// NewFlowWriter creates a new FlowWriter for a flow.
func NewFlowWriter(flowDetail *FlowDetail, outputDir string, index *IndexWriter) *FlowWriter {
	flowPath := filepath.Join(outputDir, "flows", flowDetail.ID+".json")
	assetsDir := filepath.Join(outputDir, "assets", flowDetail.ID)

	// Ensure assets directory exists
	ensureDir(assetsDir)

	return &FlowWriter{
		flow:      flowDetail,
		path:      flowPath,
		assetsDir: assetsDir,
		index:     index,
	}
}

// Start marks the flow as started.
func (w *FlowWriter) Start() {
	now := time.Now()
	w.flow.StartTime = now

	w.flush()
	w.updateIndex(StatusRunning, &now, nil, nil)
}

// SetBrowser records the browser session this flow ran on.
func (w *FlowWriter) SetBrowser(b *Browser) {
	w.flow.Browser = b
	w.flush()
}

// StepStart marks a step as started.
func (w *FlowWriter) StepStart(stepIndex int) {
	if stepIndex < 0 || stepIndex >= len(w.flow.Steps) {
		return
	}

	now := time.Now()
	step := &w.flow.Steps[stepIndex]
	step.Status = StatusRunning
	step.StartTime = &now

	w.flush()
	w.updateIndexProgress()
}

// StepEnd marks a step as complete.
func (w *FlowWriter) StepEnd(stepIndex int, status Status, stepErr *Error, artifacts StepArtifacts) {
	if stepIndex < 0 || stepIndex >= len(w.flow.Steps) {
		return
	}

	now := time.Now()
	step := &w.flow.Steps[stepIndex]
	step.Status = status
	step.EndTime = &now

	if step.StartTime != nil {
		duration := now.Sub(*step.StartTime).Milliseconds()
		step.Duration = &duration
	}

	step.Error = stepErr
	step.Artifacts = artifacts

	w.flush()
	w.updateIndexProgress()
}

// SetFinalState records the orchestrator state the flow ended in.
func (w *FlowWriter) SetFinalState(state string) {
	w.flow.FinalState = state
	w.flush()
}

// SetDiagnosticsDir records where failure diagnostics were written.
func (w *FlowWriter) SetDiagnosticsDir(dir string) {
	w.flow.Artifacts.DiagnosticsDir = dir
	w.flush()
}

// End marks the flow as complete. The index entry's error is taken
// from the first failed step, if any.
func (w *FlowWriter) End(status Status) {
	var errMsg string
	if status == StatusFailed {
		for _, step := range w.flow.Steps {
			if step.Error != nil {
				errMsg = step.Error.Message
				break
			}
		}
	}
	w.EndWithError(status, errMsg)
}

// EndWithError marks the flow as complete with an explicit error
// message, for failures that happen outside any step (a session that
// never started).
func (w *FlowWriter) EndWithError(status Status, msg string) {
	now := time.Now()
	w.flow.EndTime = &now

	var duration int64
	if !w.flow.StartTime.IsZero() {
		duration = now.Sub(w.flow.StartTime).Milliseconds()
		w.flow.Duration = &duration
	}

	w.flush()

	var errMsg *string
	if msg != "" {
		errMsg = &msg
	}

	w.index.UpdateFlow(w.flow.ID, &FlowUpdate{
		Status:         status,
		EndTime:        &now,
		Duration:       &duration,
		Steps:          w.stepSummary(),
		FinalState:     w.flow.FinalState,
		DiagnosticsDir: w.flow.Artifacts.DiagnosticsDir,
		Error:          errMsg,
	})
}

// SkipRemainingSteps marks all pending steps as skipped.
// Called when a step fails and the rest of the flow cannot run.
func (w *FlowWriter) SkipRemainingSteps(fromIndex int) {
	for i := fromIndex; i < len(w.flow.Steps); i++ {
		if w.flow.Steps[i].Status == StatusPending {
			w.flow.Steps[i].Status = StatusSkipped
		}
	}
	w.flush()
}

// SaveScreenshot saves a screenshot and returns the relative path.
func (w *FlowWriter) SaveScreenshot(stepIndex int, data []byte) (string, error) {
	filename := fmt.Sprintf("step-%03d.png", stepIndex)
	absPath := filepath.Join(w.assetsDir, filename)

	if err := os.WriteFile(absPath, data, 0o644); err != nil {
		return "", err
	}

	// Return relative path for JSON
	return filepath.Join("assets", w.flow.ID, filename), nil
}

// SavePageText saves the page's rendered text and returns the relative path.
func (w *FlowWriter) SavePageText(stepIndex int, text string) (string, error) {
	filename := fmt.Sprintf("step-%03d.txt", stepIndex)
	absPath := filepath.Join(w.assetsDir, filename)

	if err := os.WriteFile(absPath, []byte(text), 0o644); err != nil {
		return "", err
	}

	return filepath.Join("assets", w.flow.ID, filename), nil
}

// SaveRunLog saves the flow's log slice and returns the relative path.
func (w *FlowWriter) SaveRunLog(data []byte) (string, error) {
	filename := "run.log"
	absPath := filepath.Join(w.assetsDir, filename)

	if err := os.WriteFile(absPath, data, 0o644); err != nil {
		return "", err
	}

	rel := filepath.Join("assets", w.flow.ID, filename)
	w.flow.Artifacts.RunLog = rel
	w.flush()
	return rel, nil
}

// GetFlowDetail returns the current flow detail (for reading).
func (w *FlowWriter) GetFlowDetail() *FlowDetail {
	return w.flow
}

// flush writes the flow detail to disk.
func (w *FlowWriter) flush() {
	atomicWriteJSON(w.path, w.flow)
}

// updateIndex updates the index with current flow state.
func (w *FlowWriter) updateIndex(status Status, startTime, endTime *time.Time, duration *int64) {
	w.index.UpdateFlow(w.flow.ID, &FlowUpdate{
		Status:    status,
		StartTime: startTime,
		EndTime:   endTime,
		Duration:  duration,
		Steps:     w.stepSummary(),
	})
}

// updateIndexProgress updates the index with progress only.
func (w *FlowWriter) updateIndexProgress() {
	w.index.UpdateFlow(w.flow.ID, &FlowUpdate{
		Status: StatusRunning,
		Steps:  w.stepSummary(),
	})
}

// stepSummary computes step counts.
func (w *FlowWriter) stepSummary() StepSummary {
	var s StepSummary
	s.Total = len(w.flow.Steps)

	for i, step := range w.flow.Steps {
		switch step.Status {
		case StatusPassed:
			s.Passed++
		case StatusFailed:
			s.Failed++
		case StatusSkipped:
			s.Skipped++
		case StatusRunning:
			s.Running++
			idx := i
			s.Current = &idx
		case StatusPending:
			s.Pending++
		}
	}

	return s
}
