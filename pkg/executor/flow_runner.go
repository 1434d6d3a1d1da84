package executor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/storelab-dev/checkout-runner/pkg/core"
	"github.com/storelab-dev/checkout-runner/pkg/logger"
	"github.com/storelab-dev/checkout-runner/pkg/report"
	"github.com/storelab-dev/checkout-runner/pkg/session"
	"github.com/storelab-dev/checkout-runner/pkg/wait"
)

// FlowRunner executes a single flow over its own browser session.
type FlowRunner struct {
	ctx         context.Context
	flow        Flow
	detail      *report.FlowDetail
	manager     *session.Manager
	config      RunnerConfig
	indexWriter *report.IndexWriter
	flowWriter  *report.FlowWriter
	reporter    *report.FailureReporter
	flowIdx     int // Current flow index (0-based)
	totalFlows  int // Total number of flows in the run
}

// Run acquires a session, walks the flow's transitions in order, and
// reports the outcome. The first transition error sends the flow to
// Failed, skips the rest, and captures diagnostics; the session is
// released exactly once on every path.
func (fr *FlowRunner) Run() core.FlowOutcome {
	flowStart := time.Now()

	fr.flowWriter = report.NewFlowWriter(fr.detail, fr.config.OutputDir, fr.indexWriter)

	if fr.config.OnFlowStart != nil {
		fr.config.OnFlowStart(fr.flowIdx, fr.totalFlows, fr.flow.Name)
	}
	fr.flowWriter.Start()

	outcome := core.FlowOutcome{
		FlowName:  fr.flow.Name,
		State:     core.StateNotStarted,
		StartTime: flowStart,
	}

	sess, err := fr.manager.Acquire(fr.ctx)
	if err != nil {
		// No session means no step ran; the flow fails before its
		// first transition.
		outcome.State = core.StateFailed
		outcome.Status = core.StatusErrored
		outcome.Error = err.Error()
		outcome.Err = err
		outcome.Steps = fr.skippedStepsFrom(0)
		return fr.finish(outcome, flowStart, report.StatusFailed, err.Error())
	}
	defer fr.manager.Release(sess)

	info := sess.Driver.Info()
	outcome.DriverInfo = info
	browser := browserInfo(*info)
	fr.flowWriter.SetBrowser(&browser)

	waiter := wait.NewWithInterval(sess.Driver, fr.config.Config.PollInterval())
	bindings := &Bindings{
		Driver: sess.Driver,
		Pages:  NewPages(sess.Driver, waiter, fr.config.Config.Timeout()),
		Config: fr.config.Config,
	}

	fc := core.NewFlowContext()
	state := core.StateNotStarted
	flowStatus := report.StatusPassed
	endMsg := ""

	for i, tr := range fr.flow.Transitions {
		if ctxErr := fr.ctx.Err(); ctxErr != nil {
			state = core.StateFailed
			flowStatus = report.StatusFailed
			outcome.Status = core.StatusErrored
			outcome.Error = "execution cancelled: " + ctxErr.Error()
			outcome.Err = ctxErr
			outcome.Steps = append(outcome.Steps, fr.skippedStepsFrom(i)...)
			fr.flowWriter.SkipRemainingSteps(i)
			endMsg = outcome.Error
			break
		}

		step, stepErr := fr.executeTransition(i, tr, bindings, fc, sess.Driver)
		outcome.Steps = append(outcome.Steps, step)

		if fr.config.OnStepComplete != nil {
			fr.config.OnStepComplete(i, tr.Name, stepErr == nil, step.Duration.Milliseconds(), step.Error)
		}

		if stepErr != nil {
			state = core.StateFailed
			flowStatus = report.StatusFailed
			outcome.Status = step.Status
			outcome.FailedStep = tr.Name
			outcome.Error = step.Error
			outcome.Err = stepErr

			if capture := fr.reporter.Capture(sess.Driver, fr.flow.Name); capture != nil {
				outcome.DiagnosticsPath = capture.Dir
				fr.flowWriter.SetDiagnosticsDir(capture.Dir)
			}

			outcome.Steps = append(outcome.Steps, fr.skippedStepsFrom(i+1)...)
			fr.flowWriter.SkipRemainingSteps(i + 1)
			break
		}

		state = tr.To
	}

	outcome.State = state
	if state != core.StateFailed {
		outcome.Status = core.StatusPassed
	}

	return fr.finish(outcome, flowStart, flowStatus, endMsg)
}

// finish closes out the flow's report entry and completes the outcome.
func (fr *FlowRunner) finish(outcome core.FlowOutcome, flowStart time.Time, status report.Status, errMsg string) core.FlowOutcome {
	fr.flowWriter.SetFinalState(outcome.State.String())

	if _, err := fr.flowWriter.SaveRunLog(flowTranscript(outcome)); err != nil {
		logger.Warn("flow %s: run log not saved: %v", outcome.FlowName, err)
	}

	if errMsg != "" {
		fr.flowWriter.EndWithError(status, errMsg)
	} else {
		fr.flowWriter.End(status)
	}

	outcome.Duration = time.Since(flowStart)
	outcome.ComputeSummary()

	if fr.config.OnFlowEnd != nil {
		fr.config.OnFlowEnd(fr.flow.Name, status == report.StatusPassed, outcome.Duration.Milliseconds())
	}

	return outcome
}

// flowTranscript renders the flow's step results as the plain text log
// saved with the report assets.
func flowTranscript(outcome core.FlowOutcome) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "flow %s ended in %s\n", outcome.FlowName, outcome.State)
	for _, s := range outcome.Steps {
		fmt.Fprintf(&b, "[%s] %s", s.Status, s.Name)
		if s.Status != core.StatusSkipped {
			fmt.Fprintf(&b, " (%dms) %s -> %s", s.Duration.Milliseconds(), s.From, s.To)
		}
		if s.Error != "" {
			fmt.Fprintf(&b, ": %s", s.Error)
		}
		b.WriteByte('\n')
	}
	return []byte(b.String())
}

// executeTransition runs one transition and records it in the report.
func (fr *FlowRunner) executeTransition(idx int, tr Transition, b *Bindings, fc *core.FlowContext, drv core.Driver) (core.StepResult, error) {
	stepStart := time.Now()
	fr.flowWriter.StepStart(idx)

	err := tr.Run(b, fc)
	duration := time.Since(stepStart)

	step := core.StepResult{
		Name:      tr.Name,
		Index:     idx,
		From:      tr.From,
		To:        tr.To,
		Status:    core.StatusPassed,
		StartTime: stepStart,
		Duration:  duration,
	}
	if err != nil {
		status, category := classify(err)
		step.Status = status
		step.Category = category
		step.Error = err.Error()
	}

	var artifacts report.StepArtifacts
	capture := fr.config.Artifacts == ArtifactAlways ||
		(fr.config.Artifacts == ArtifactOnFailure && err != nil)
	if capture {
		artifacts = fr.captureStepArtifacts(idx, drv)
		if artifacts.Screenshot != "" {
			step.Attachments = append(step.Attachments, core.NewScreenshotAttachment(artifacts.Screenshot, nil))
		}
		if artifacts.PageText != "" {
			step.Attachments = append(step.Attachments, core.NewPageTextAttachment(artifacts.PageText, nil))
		}
	}

	fr.flowWriter.StepEnd(idx, report.FromStepStatus(step.Status), stepReportError(err), artifacts)

	return step, err
}

// captureStepArtifacts grabs a screenshot and the page text for one
// step. Capture problems are ignored; artifacts are best effort.
func (fr *FlowRunner) captureStepArtifacts(idx int, drv core.Driver) report.StepArtifacts {
	var artifacts report.StepArtifacts

	if data, err := drv.Screenshot(); err == nil && len(data) > 0 {
		if path, saveErr := fr.flowWriter.SaveScreenshot(idx, data); saveErr == nil {
			artifacts.Screenshot = path
		}
	}

	if text, err := drv.PageText(); err == nil && text != "" {
		if path, saveErr := fr.flowWriter.SavePageText(idx, text); saveErr == nil {
			artifacts.PageText = path
		}
	}

	return artifacts
}

// skippedStepsFrom builds skipped results for the transitions from the
// given index to the end of the flow.
func (fr *FlowRunner) skippedStepsFrom(from int) []core.StepResult {
	var steps []core.StepResult
	for i := from; i < len(fr.flow.Transitions); i++ {
		tr := fr.flow.Transitions[i]
		steps = append(steps, core.StepResult{
			Name:   tr.Name,
			Index:  i,
			From:   tr.From,
			To:     tr.To,
			Status: core.StatusSkipped,
		})
	}
	return steps
}
