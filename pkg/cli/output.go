package cli

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/storelab-dev/checkout-runner/pkg/core"
)

// slowThresholdMs marks steps slower than this for attention in output.
const slowThresholdMs = 5000

var (
	bold   = color.New(color.Bold).SprintFunc()
	gray   = color.New(color.FgHiBlack).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
)

func printBanner() {
	fmt.Println()
	fmt.Printf("%s %s\n", bold("checkout-runner"), Version)
	fmt.Println(gray("Storefront checkout flows, end to end"))
	fmt.Println()
}

func printSection(title string) {
	fmt.Println()
	fmt.Println(bold(title))
	fmt.Println(strings.Repeat("─", 40))
}

func printSetupSuccess(format string, v ...interface{}) {
	fmt.Printf("  %s %s\n", green("✓"), fmt.Sprintf(format, v...))
}

func onFlowStart(flowIdx, totalFlows int, name string) {
	fmt.Printf("\n  %s %s\n", cyan(fmt.Sprintf("[%d/%d]", flowIdx+1, totalFlows)), bold(name))
	fmt.Println("  " + gray(strings.Repeat("─", 60)))
}

func onStepComplete(idx int, name string, passed bool, durationMs int64, errMsg string) {
	dur := gray(formatDuration(durationMs))
	if passed {
		mark := green("✓")
		if durationMs >= slowThresholdMs {
			mark = yellow("⚠")
			dur = yellow(formatDuration(durationMs))
		}
		fmt.Printf("    %s %s (%s)\n", mark, name, dur)
		return
	}
	fmt.Printf("    %s %s (%s)\n", red("✗"), name, dur)
	if errMsg != "" {
		fmt.Printf("      %s %s\n", gray("╰─"), errMsg)
	}
}

func onFlowEnd(name string, passed bool, durationMs int64) {
	mark := green("✓")
	if !passed {
		mark = red("✗")
	}
	fmt.Printf("  %s %s %s\n", mark, name, gray(formatDuration(durationMs)))
}

// printSummary renders the per-flow results table after a run.
func printSummary(suite *core.SuiteResult) {
	var stepsPassed, stepsFailed, stepsSkipped int
	for _, f := range suite.Flows {
		stepsPassed += f.PassedSteps
		stepsFailed += f.FailedSteps
		stepsSkipped += f.SkippedSteps
	}

	fmt.Println()
	fmt.Println(green(fmt.Sprintf("%d steps passing (%s)", stepsPassed, formatDuration(suite.Duration.Milliseconds()))))
	if stepsFailed > 0 {
		fmt.Println(red(fmt.Sprintf("%d steps failing", stepsFailed)))
	}
	if stepsSkipped > 0 {
		fmt.Println(cyan(fmt.Sprintf("%d steps skipped", stepsSkipped)))
	}
	fmt.Println()

	line := strings.Repeat("─", 100)
	fmt.Println(line)
	fmt.Printf("%-24s %-6s %-22s %6s %6s %6s %6s %12s\n",
		"Flow", "Status", "Final State", "Steps", "Pass", "Fail", "Skip", "Duration")
	fmt.Println(line)

	for _, f := range suite.Flows {
		name := f.FlowName
		if len(name) > 24 {
			name = name[:21] + "..."
		}

		var status string
		switch f.Status {
		case core.StatusPassed:
			status = green("✓ PASS")
		case core.StatusFailed, core.StatusErrored:
			status = red("✗ FAIL")
		default:
			status = cyan("- SKIP")
		}

		fmt.Printf("%-24s %-15s %-22s %6d %6d %6d %6d %12s\n",
			name, status, f.State.String(),
			f.TotalSteps, f.PassedSteps, f.FailedSteps, f.SkippedSteps,
			formatDuration(f.Duration.Milliseconds()))
	}

	fmt.Println(line)
	total := fmt.Sprintf("%d/%d flows passed", suite.PassedFlows, suite.TotalFlows)
	if suite.Success() {
		total = green(total)
	} else {
		total = red(total)
	}
	fmt.Printf("%-24s %s %38s %12s\n", "TOTAL", total, "", formatDuration(suite.Duration.Milliseconds()))
	fmt.Println(line)

	for _, f := range suite.Flows {
		if f.DiagnosticsPath != "" {
			fmt.Printf("%s %s: %s\n", yellow("⚑"), f.FlowName, f.DiagnosticsPath)
		}
	}
}

func formatDuration(ms int64) string {
	if ms < 1000 {
		return fmt.Sprintf("%dms", ms)
	}
	seconds := float64(ms) / 1000.0
	if seconds < 60 {
		return fmt.Sprintf("%.1fs", seconds)
	}
	minutes := int(seconds) / 60
	remainder := int(seconds) % 60
	return fmt.Sprintf("%dm %ds", minutes, remainder)
}
