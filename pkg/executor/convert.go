package executor

import (
	"errors"
	"fmt"

	"github.com/storelab-dev/checkout-runner/pkg/core"
	"github.com/storelab-dev/checkout-runner/pkg/locator"
	"github.com/storelab-dev/checkout-runner/pkg/report"
)

// classify maps a transition error onto a step status and category.
// A verification mismatch is a test failure; everything else errored
// on the way to the verdict.
func classify(err error) (core.StepStatus, core.ErrorCategory) {
	var unknown *locator.UnknownError
	if errors.As(err, &unknown) {
		return core.StatusErrored, core.ErrCategoryLocator
	}

	var fe *core.FlowError
	if errors.As(err, &fe) {
		if fe.Category == core.ErrCategoryVerification {
			return core.StatusFailed, fe.Category
		}
		return core.StatusErrored, fe.Category
	}

	return core.StatusErrored, core.ErrCategoryDriver
}

// stepReportError converts a transition error to the report error shape.
func stepReportError(err error) *report.Error {
	if err == nil {
		return nil
	}

	_, category := classify(err)
	re := &report.Error{
		Type:    category.String(),
		Message: err.Error(),
	}

	var fe *core.FlowError
	if errors.As(err, &fe) {
		re.Details = formatDetails(fe.Details)
	}
	return re
}

// formatDetails renders error details for the report. The
// expected/observed pair from verification failures gets first-class
// treatment; anything else is appended key=value.
func formatDetails(details map[string]interface{}) string {
	if len(details) == 0 {
		return ""
	}

	expected, hasExpected := details["expected"]
	observed, hasObserved := details["observed"]
	if hasExpected && hasObserved {
		s := fmt.Sprintf("expected %v, observed %v", expected, observed)
		for k, v := range details {
			if k == "expected" || k == "observed" {
				continue
			}
			s += fmt.Sprintf(", %s=%v", k, v)
		}
		return s
	}

	s := ""
	for k, v := range details {
		if s != "" {
			s += ", "
		}
		s += fmt.Sprintf("%s=%v", k, v)
	}
	return s
}

// flowPlans converts catalog flows into the report skeleton shape.
func flowPlans(flows []Flow) []report.FlowPlan {
	plans := make([]report.FlowPlan, len(flows))
	for i, f := range flows {
		steps := make([]report.StepPlan, len(f.Transitions))
		for j, tr := range f.Transitions {
			steps[j] = report.StepPlan{
				Name: tr.Name,
				From: tr.From.String(),
				To:   tr.To.String(),
			}
		}
		plans[i] = report.FlowPlan{Name: f.Name, Steps: steps}
	}
	return plans
}

// browserInfo converts driver metadata to the report shape.
func browserInfo(info core.DriverInfo) report.Browser {
	return report.Browser{
		Driver:         info.Name,
		Name:           info.Browser,
		Version:        info.BrowserVersion,
		Headless:       info.Headless,
		ViewportWidth:  info.ViewportWidth,
		ViewportHeight: info.ViewportHeight,
	}
}
