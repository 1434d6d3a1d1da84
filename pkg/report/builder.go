package report

import (
	"fmt"
	"path/filepath"
	"time"
)

// FlowPlan names a flow and its transitions, in execution order. The
// executor converts its catalog into plans so this package stays free
// of execution types.
type FlowPlan struct {
	Name  string
	Steps []StepPlan
}

// StepPlan names one transition of a planned flow.
type StepPlan struct {
	Name string
	From string
	To   string
}

// BuilderConfig contains configuration for building the report skeleton.
type BuilderConfig struct {
	OutputDir     string  // Base output directory for reports
	RunID         string  // Unique run identifier
	Browser       Browser // Browser session information
	BaseURL       string  // Storefront under test
	RunnerVersion string  // checkout-runner version
	DriverName    string  // playwright, selenium, mock
}

// BuildSkeleton creates the initial report structure from planned flows.
// All flows and steps are set to "pending" status. This should be called
// after validation, before execution starts.
func BuildSkeleton(plans []FlowPlan, cfg BuilderConfig) (*Index, []FlowDetail) {
	now := time.Now()

	index := &Index{
		Version:     Version,
		RunID:       cfg.RunID,
		UpdateSeq:   0,
		Status:      StatusPending,
		StartTime:   now,
		LastUpdated: now,
		Browser:     cfg.Browser,
		Target:      Target{BaseURL: cfg.BaseURL},
		Runner: RunnerInfo{
			Version: cfg.RunnerVersion,
			Driver:  cfg.DriverName,
		},
		Summary: Summary{
			Total:   len(plans),
			Pending: len(plans),
		},
		Flows: make([]FlowEntry, len(plans)),
	}

	flowDetails := make([]FlowDetail, len(plans))

	for i, plan := range plans {
		flowID := fmt.Sprintf("flow-%03d", i)
		steps := buildSteps(plan.Steps)

		index.Flows[i] = FlowEntry{
			Index:     i,
			ID:        flowID,
			Name:      plan.Name,
			DataFile:  filepath.Join("flows", flowID+".json"),
			AssetsDir: filepath.Join("assets", flowID),
			Status:    StatusPending,
			UpdateSeq: 0,
			Steps: StepSummary{
				Total:   len(steps),
				Pending: len(steps),
			},
		}

		flowDetails[i] = FlowDetail{
			ID:        flowID,
			Name:      plan.Name,
			Steps:     steps,
			Artifacts: FlowArtifacts{},
		}
	}

	return index, flowDetails
}

// buildSteps creates Step entries from the plan.
func buildSteps(plans []StepPlan) []Step {
	steps := make([]Step, len(plans))
	for i, p := range plans {
		steps[i] = Step{
			ID:        fmt.Sprintf("step-%03d", i),
			Index:     i,
			Name:      p.Name,
			From:      p.From,
			To:        p.To,
			Status:    StatusPending,
			Artifacts: StepArtifacts{},
		}
	}
	return steps
}

// WriteSkeleton writes the initial skeleton to disk.
// Creates report.json, all flow detail files, and report.html with
// pending status.
func WriteSkeleton(outputDir string, index *Index, flowDetails []FlowDetail) error {
	if err := ensureDir(filepath.Join(outputDir, "flows")); err != nil {
		return fmt.Errorf("create flows dir: %w", err)
	}
	if err := ensureDir(filepath.Join(outputDir, "assets")); err != nil {
		return fmt.Errorf("create assets dir: %w", err)
	}

	for _, fd := range flowDetails {
		flowPath := filepath.Join(outputDir, "flows", fd.ID+".json")
		if err := atomicWriteJSON(flowPath, fd); err != nil {
			return fmt.Errorf("write flow %s: %w", fd.ID, err)
		}

		assetsPath := filepath.Join(outputDir, "assets", fd.ID)
		if err := ensureDir(assetsPath); err != nil {
			return fmt.Errorf("create assets dir for %s: %w", fd.ID, err)
		}
	}

	indexPath := filepath.Join(outputDir, "report.json")
	if err := atomicWriteJSON(indexPath, index); err != nil {
		return fmt.Errorf("write index: %w", err)
	}

	if err := GenerateHTML(outputDir, HTMLConfig{
		Title:     "Checkout Report",
		ReportDir: outputDir,
	}); err != nil {
		return fmt.Errorf("generate html: %w", err)
	}

	return nil
}
