package wait

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/storelab-dev/checkout-runner/pkg/core"
	"github.com/storelab-dev/checkout-runner/pkg/locator"
)

// stubElement implements core.Element with canned values
type stubElement struct {
	text    string
	visible bool
	enabled bool
	err     error
}

func (e *stubElement) Click() error           { return e.err }
func (e *stubElement) Type(text string) error { return e.err }
func (e *stubElement) Clear() error           { return e.err }
func (e *stubElement) Text() (string, error)  { return e.text, e.err }
func (e *stubElement) Visible() (bool, error) { return e.visible, e.err }
func (e *stubElement) Enabled() (bool, error) { return e.enabled, e.err }

// stubDriver implements core.Driver with injectable functions
type stubDriver struct {
	findFn func(loc locator.Locator) (core.Element, error)
	urlFn  func() (string, error)
}

func (d *stubDriver) Open(url string) error { return nil }
func (d *stubDriver) Find(loc locator.Locator) (core.Element, error) {
	if d.findFn != nil {
		return d.findFn(loc)
	}
	return nil, core.ErrElementNotFound
}
func (d *stubDriver) URL() (string, error) {
	if d.urlFn != nil {
		return d.urlFn()
	}
	return "", nil
}
func (d *stubDriver) Title() (string, error)      { return "", nil }
func (d *stubDriver) PageText() (string, error)   { return "", nil }
func (d *stubDriver) Screenshot() ([]byte, error) { return nil, nil }
func (d *stubDriver) DismissDialog() error        { return nil }
func (d *stubDriver) SetTimeout(_ time.Duration)  {}
func (d *stubDriver) Info() *core.DriverInfo      { return &core.DriverInfo{Name: "stub"} }
func (d *stubDriver) Quit() error                 { return nil }

// countingCondition returns a condition that becomes true on the nth probe
func countingCondition(trueOnProbe int, probes *int) Condition {
	return Condition{
		Description: "test condition",
		Probe: func(core.Driver) (bool, error) {
			*probes++
			return *probes >= trueOnProbe, nil
		},
	}
}

func TestWaiter_AwaitImmediateSuccess(t *testing.T) {
	probes := 0
	w := NewWithInterval(&stubDriver{}, 5*time.Millisecond)

	start := time.Now()
	err := w.Await(context.Background(), countingCondition(1, &probes), time.Second)
	if err != nil {
		t.Fatalf("Await() error = %v", err)
	}
	if probes != 1 {
		t.Errorf("probes = %d, want 1", probes)
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("Await() took %s for an already-true condition", elapsed)
	}
}

func TestWaiter_AwaitSucceedsAfterPolling(t *testing.T) {
	probes := 0
	w := NewWithInterval(&stubDriver{}, 5*time.Millisecond)

	start := time.Now()
	err := w.Await(context.Background(), countingCondition(3, &probes), time.Second)
	if err != nil {
		t.Fatalf("Await() error = %v", err)
	}
	if probes < 3 {
		t.Errorf("probes = %d, want >= 3", probes)
	}
	// Probes 2 and 3 each sit behind one tick, so success cannot
	// arrive before two intervals have passed
	if elapsed := time.Since(start); elapsed < 10*time.Millisecond {
		t.Errorf("Await() returned after %s, before the condition could be true", elapsed)
	}
}

func TestWaiter_AwaitTimeout(t *testing.T) {
	alwaysFalse := Condition{
		Description: "element #never visible",
		Probe:       func(core.Driver) (bool, error) { return false, nil },
	}
	w := NewWithInterval(&stubDriver{}, 5*time.Millisecond)

	start := time.Now()
	err := w.Await(context.Background(), alwaysFalse, 30*time.Millisecond)
	wall := time.Since(start)

	if err == nil {
		t.Fatal("Await() should time out")
	}
	if !errors.Is(err, core.ErrWaitTimeout) {
		t.Fatalf("error = %v, want wait timeout", err)
	}

	var flowErr *core.FlowError
	if !errors.As(err, &flowErr) {
		t.Fatalf("error type = %T, want *FlowError", err)
	}
	if flowErr.Details["condition"] != "element #never visible" {
		t.Errorf("Details[condition] = %v", flowErr.Details["condition"])
	}
	elapsed, ok := flowErr.Details["elapsed"].(time.Duration)
	if !ok {
		t.Fatalf("Details[elapsed] = %T, want time.Duration", flowErr.Details["elapsed"])
	}
	if elapsed < 30*time.Millisecond {
		t.Errorf("elapsed = %s, want >= 30ms (never early)", elapsed)
	}
	if wall > time.Second {
		t.Errorf("Await() took %s, should return close to its 30ms deadline", wall)
	}
}

func TestWaiter_AwaitZeroTimeout(t *testing.T) {
	probes := 0
	cond := Condition{
		Description: "zero timeout condition",
		Probe: func(core.Driver) (bool, error) {
			probes++
			return false, nil
		},
	}
	w := New(&stubDriver{})

	err := w.Await(context.Background(), cond, 0)
	if err == nil {
		t.Fatal("Await() with zero timeout should fail for an untrue condition")
	}
	if !errors.Is(err, core.ErrWaitTimeout) {
		t.Fatalf("error = %v, want wait timeout", err)
	}
	if probes != 1 {
		t.Errorf("probes = %d, want exactly 1", probes)
	}

	var flowErr *core.FlowError
	if !errors.As(err, &flowErr) {
		t.Fatalf("error type = %T, want *FlowError", err)
	}
	elapsed := flowErr.Details["elapsed"].(time.Duration)
	if elapsed > 50*time.Millisecond {
		t.Errorf("elapsed = %s, want near zero", elapsed)
	}
}

func TestWaiter_AwaitZeroTimeoutTrueCondition(t *testing.T) {
	probes := 0
	w := New(&stubDriver{})

	err := w.Await(context.Background(), countingCondition(1, &probes), 0)
	if err != nil {
		t.Fatalf("Await() error = %v, an already-true condition passes even with zero timeout", err)
	}
}

func TestWaiter_AwaitParentCancellation(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Millisecond)
	defer cancel()

	alwaysFalse := Condition{
		Description: "never true",
		Probe:       func(core.Driver) (bool, error) { return false, nil },
	}
	w := NewWithInterval(&stubDriver{}, 5*time.Millisecond)

	err := w.Await(ctx, alwaysFalse, 5*time.Second)
	if err == nil {
		t.Fatal("Await() should fail when the parent context ends")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("error = %v, want the parent deadline as cause", err)
	}
	if errors.Is(err, core.ErrWaitTimeout) {
		t.Error("parent cancellation should not report as a condition timeout")
	}
}

func TestWaiter_AwaitAttachesLastProbeError(t *testing.T) {
	probeErr := errors.New("connection refused")
	cond := Condition{
		Description: "flaky probe",
		Probe:       func(core.Driver) (bool, error) { return false, probeErr },
	}
	w := NewWithInterval(&stubDriver{}, 5*time.Millisecond)

	err := w.Await(context.Background(), cond, 20*time.Millisecond)
	if err == nil {
		t.Fatal("Await() should time out")
	}
	if !errors.Is(err, probeErr) {
		t.Errorf("error = %v, want the last probe error as cause", err)
	}
}

func TestNewWithInterval_FloorsTinyIntervals(t *testing.T) {
	w := NewWithInterval(&stubDriver{}, 0)
	if w.Interval() != DefaultPollInterval {
		t.Errorf("Interval() = %s, want %s", w.Interval(), DefaultPollInterval)
	}
}
