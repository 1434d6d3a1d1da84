// Package executor orchestrates flow execution, connecting sessions,
// page modules, and reports.
package executor

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/storelab-dev/checkout-runner/pkg/config"
	"github.com/storelab-dev/checkout-runner/pkg/core"
	"github.com/storelab-dev/checkout-runner/pkg/report"
	"github.com/storelab-dev/checkout-runner/pkg/session"
)

// ArtifactMode determines when per-step screenshots are captured.
type ArtifactMode int

const (
	// ArtifactOnFailure captures artifacts only when a step fails.
	ArtifactOnFailure ArtifactMode = iota
	// ArtifactAlways captures artifacts after every step.
	ArtifactAlways
	// ArtifactNever disables per-step artifact capture.
	ArtifactNever
)

// ArtifactModeFromString maps a config artifacts value onto a mode.
// Unknown values fall back to on-failure, the config default.
func ArtifactModeFromString(s string) ArtifactMode {
	switch s {
	case config.ArtifactsAlways:
		return ArtifactAlways
	case config.ArtifactsNever:
		return ArtifactNever
	default:
		return ArtifactOnFailure
	}
}

// RunnerConfig configures the suite runner.
type RunnerConfig struct {
	Config      *config.Config // Run configuration: target, credentials, timing
	OutputDir   string         // Report output directory
	RunID       string         // Unique run identifier (generated when empty)
	Parallelism int            // Max concurrent flows (0 = sequential)
	StopOnFail  bool           // Stop scheduling flows after the first failure
	Artifacts   ArtifactMode   // When to capture per-step artifacts

	// Runner metadata for reports
	RunnerVersion string
	DriverName    string

	// Live progress callbacks
	OnFlowStart    func(flowIdx, totalFlows int, name string)
	OnStepComplete func(idx int, name string, passed bool, durationMs int64, errMsg string)
	OnFlowEnd      func(name string, passed bool, durationMs int64)
}

// Runner executes a suite of flows. Every flow gets its own fresh
// browser session from the manager; nothing is shared between flows
// except the report writers.
type Runner struct {
	config   RunnerConfig
	manager  *session.Manager
	reporter *report.FailureReporter
}

// New creates a Runner over a session manager.
func New(manager *session.Manager, cfg RunnerConfig) *Runner {
	if cfg.RunID == "" {
		cfg.RunID = uuid.NewString()[:8]
	}
	if cfg.OutputDir == "" && cfg.Config != nil {
		cfg.OutputDir = cfg.Config.OutputDir
	}
	return &Runner{
		config:   cfg,
		manager:  manager,
		reporter: report.NewFailureReporter(cfg.OutputDir),
	}
}

// Run executes the flows and generates reports.
func (r *Runner) Run(ctx context.Context, flows []Flow) (*core.SuiteResult, error) {
	builderCfg := report.BuilderConfig{
		OutputDir:     r.config.OutputDir,
		RunID:         r.config.RunID,
		BaseURL:       r.config.Config.BaseURL,
		RunnerVersion: r.config.RunnerVersion,
		DriverName:    r.config.DriverName,
		Browser: report.Browser{
			Driver:   r.config.DriverName,
			Name:     r.config.Config.Browser,
			Headless: r.config.Config.IsHeadless(),
		},
	}

	index, flowDetails := report.BuildSkeleton(flowPlans(flows), builderCfg)

	// Write initial skeleton to disk
	if err := report.WriteSkeleton(r.config.OutputDir, index, flowDetails); err != nil {
		return nil, err
	}

	// Create index writer for coordinated updates
	indexWriter := report.NewIndexWriter(r.config.OutputDir, index)
	defer indexWriter.Close()

	indexWriter.Start()
	startTime := time.Now()

	var outcomes []core.FlowOutcome
	if r.config.Parallelism <= 0 {
		outcomes = r.runSequential(ctx, flows, flowDetails, indexWriter)
	} else {
		outcomes = r.runParallel(ctx, flows, flowDetails, indexWriter)
	}

	indexWriter.End()

	suite := &core.SuiteResult{
		Name:      "checkout-runner",
		RunID:     r.config.RunID,
		StartTime: startTime,
		Duration:  time.Since(startTime),
		Flows:     outcomes,
	}
	suite.ComputeSummary()
	return suite, nil
}

// runSequential executes flows one after another.
func (r *Runner) runSequential(ctx context.Context, flows []Flow, flowDetails []report.FlowDetail, indexWriter *report.IndexWriter) []core.FlowOutcome {
	outcomes := make([]core.FlowOutcome, len(flows))
	totalFlows := len(flows)
	stopped := false

	for i := range flows {
		if ctx.Err() != nil {
			outcomes[i] = r.skipFlow(flows[i], &flowDetails[i], indexWriter, "run cancelled")
			continue
		}
		if stopped {
			outcomes[i] = r.skipFlow(flows[i], &flowDetails[i], indexWriter, "run stopped")
			continue
		}

		outcomes[i] = r.executeFlow(ctx, flows[i], &flowDetails[i], indexWriter, i, totalFlows)

		if r.config.StopOnFail && !outcomes[i].Succeeded() {
			stopped = true
		}
	}

	return outcomes
}

// executeFlow runs a single flow over its own session.
func (r *Runner) executeFlow(ctx context.Context, f Flow, detail *report.FlowDetail, indexWriter *report.IndexWriter, flowIdx, totalFlows int) core.FlowOutcome {
	fr := &FlowRunner{
		ctx:         ctx,
		flow:        f,
		detail:      detail,
		manager:     r.manager,
		config:      r.config,
		indexWriter: indexWriter,
		reporter:    r.reporter,
		flowIdx:     flowIdx,
		totalFlows:  totalFlows,
	}
	return fr.Run()
}

// skipFlow records a flow that never ran.
func (r *Runner) skipFlow(f Flow, detail *report.FlowDetail, indexWriter *report.IndexWriter, reason string) core.FlowOutcome {
	fw := report.NewFlowWriter(detail, r.config.OutputDir, indexWriter)
	fw.SkipRemainingSteps(0)
	fw.SetFinalState(core.StateNotStarted.String())
	fw.EndWithError(report.StatusSkipped, reason)

	steps := make([]core.StepResult, len(f.Transitions))
	for i, tr := range f.Transitions {
		steps[i] = core.StepResult{
			Name:   tr.Name,
			Index:  i,
			From:   tr.From,
			To:     tr.To,
			Status: core.StatusSkipped,
		}
	}

	outcome := core.FlowOutcome{
		FlowName: f.Name,
		State:    core.StateNotStarted,
		Status:   core.StatusSkipped,
		Steps:    steps,
		Error:    reason,
	}
	outcome.ComputeSummary()
	return outcome
}
