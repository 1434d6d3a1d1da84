package executor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/storelab-dev/checkout-runner/pkg/config"
	"github.com/storelab-dev/checkout-runner/pkg/core"
	"github.com/storelab-dev/checkout-runner/pkg/driver/mock"
	"github.com/storelab-dev/checkout-runner/pkg/report"
	"github.com/storelab-dev/checkout-runner/pkg/session"
)

// driverTracker records every driver the session factory hands out so
// tests can assert on session lifecycle.
type driverTracker struct {
	mu      sync.Mutex
	drivers []*mock.Driver
}

func (dt *driverTracker) factory(cfg mock.Config) session.Factory {
	return func() (core.Driver, error) {
		d := mock.New(cfg)
		dt.mu.Lock()
		dt.drivers = append(dt.drivers, d)
		dt.mu.Unlock()
		return d, nil
	}
}

func (dt *driverTracker) created() int {
	dt.mu.Lock()
	defer dt.mu.Unlock()
	return len(dt.drivers)
}

func (dt *driverTracker) driver(i int) *mock.Driver {
	dt.mu.Lock()
	defer dt.mu.Unlock()
	return dt.drivers[i]
}

func testConfig() *config.Config {
	return &config.Config{
		BaseURL:        "https://shop.example.com",
		TimeoutMs:      500,
		PollIntervalMs: 5,
		Credentials:    config.Credentials{Username: "standard_user", Password: "secret_sauce"},
		Customer:       config.Customer{FirstName: "John", LastName: "Doe", PostalCode: "12345"},
	}
}

func newTestRunner(t *testing.T, cfg *config.Config, mockCfg mock.Config) (*Runner, *driverTracker) {
	t.Helper()

	tracker := &driverTracker{}
	runner := New(session.NewManager(tracker.factory(mockCfg)), RunnerConfig{
		Config:        cfg,
		OutputDir:     t.TempDir(),
		Artifacts:     ArtifactNever,
		RunnerVersion: "test",
		DriverName:    "mock",
	})
	return runner, tracker
}

func TestRunner_CheckoutFlowCompletes(t *testing.T) {
	runner, tracker := newTestRunner(t, testConfig(), mock.Config{LeakDialog: true})

	suite, err := runner.Run(context.Background(), []Flow{CheckoutFlow()})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if !suite.Success() {
		t.Fatalf("suite failed: %+v", suite.Flows[0])
	}

	outcome := suite.Flows[0]
	if outcome.State != core.StateCompleted {
		t.Errorf("State = %v, want %v", outcome.State, core.StateCompleted)
	}
	if outcome.PassedSteps != 6 {
		t.Errorf("PassedSteps = %d, want 6", outcome.PassedSteps)
	}
	if outcome.DiagnosticsPath != "" {
		t.Errorf("DiagnosticsPath = %q, want empty on success", outcome.DiagnosticsPath)
	}

	if tracker.created() != 1 {
		t.Fatalf("sessions created = %d, want 1", tracker.created())
	}
	if quits := tracker.driver(0).Quits(); quits != 1 {
		t.Errorf("driver quit %d times, want exactly 1", quits)
	}

	index, readErr := report.ReadIndex(runner.config.OutputDir)
	if readErr != nil {
		t.Fatalf("ReadIndex() error = %v", readErr)
	}
	if index.Status != report.StatusPassed {
		t.Errorf("index status = %q, want %q", index.Status, report.StatusPassed)
	}
	if index.Flows[0].FinalState != "completed" {
		t.Errorf("index final state = %q, want %q", index.Flows[0].FinalState, "completed")
	}
}

func TestRunner_ReleaseExactlyOnceUnderFailureInjection(t *testing.T) {
	// The mock storefront counts every type and click; the full
	// checkout performs eleven. Injecting a failure at each one must
	// leave the flow failed and the session released exactly once.
	for i := 1; i <= 11; i++ {
		runner, tracker := newTestRunner(t, testConfig(), mock.Config{
			LeakDialog:        true,
			FailOnInteraction: i,
		})

		suite, err := runner.Run(context.Background(), []Flow{CheckoutFlow()})
		if err != nil {
			t.Fatalf("injection %d: Run() error = %v", i, err)
		}

		outcome := suite.Flows[0]
		if outcome.State != core.StateFailed {
			t.Errorf("injection %d: State = %v, want %v", i, outcome.State, core.StateFailed)
		}
		if outcome.FailedStep == "" {
			t.Errorf("injection %d: FailedStep not recorded", i)
		}
		if outcome.DiagnosticsPath == "" {
			t.Errorf("injection %d: no diagnostics captured", i)
		}

		if tracker.created() != 1 {
			t.Fatalf("injection %d: sessions created = %d, want 1", i, tracker.created())
		}
		if quits := tracker.driver(0).Quits(); quits != 1 {
			t.Errorf("injection %d: driver quit %d times, want exactly 1", i, quits)
		}
	}
}

func TestRunner_SessionAcquireFailure(t *testing.T) {
	boom := errors.New("browser refused to start")
	manager := session.NewManager(func() (core.Driver, error) {
		return nil, boom
	})

	runner := New(manager, RunnerConfig{
		Config:     testConfig(),
		OutputDir:  t.TempDir(),
		Artifacts:  ArtifactNever,
		DriverName: "mock",
	})

	suite, err := runner.Run(context.Background(), []Flow{LoginFlow()})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	outcome := suite.Flows[0]
	if outcome.State != core.StateFailed {
		t.Errorf("State = %v, want %v", outcome.State, core.StateFailed)
	}
	if !errors.Is(outcome.Err, core.ErrSessionAcquire) {
		t.Errorf("Err = %v, want ErrSessionAcquire", outcome.Err)
	}
	if outcome.SkippedSteps != 1 {
		t.Errorf("SkippedSteps = %d, want 1", outcome.SkippedSteps)
	}

	index, readErr := report.ReadIndex(runner.config.OutputDir)
	if readErr != nil {
		t.Fatalf("ReadIndex() error = %v", readErr)
	}
	if index.Flows[0].Status != report.StatusFailed {
		t.Errorf("index flow status = %q, want %q", index.Flows[0].Status, report.StatusFailed)
	}
	if index.Flows[0].Error == nil {
		t.Error("index flow error not recorded")
	}
}

func TestRunner_ProductNameThreadsThroughCheckout(t *testing.T) {
	// A storefront with a different catalog must still pass: the
	// product asserted in the cart and on the review page is the one
	// captured at selection, never a hardcoded name.
	runner, _ := newTestRunner(t, testConfig(), mock.Config{
		Products: []string{"Fleece Jacket", "Onesie"},
	})

	suite, err := runner.Run(context.Background(), []Flow{CheckoutFlow()})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !suite.Success() {
		t.Fatalf("checkout with custom catalog failed: %s", suite.Flows[0].Error)
	}
}

func TestRunner_InvalidPasswordFailsAtLogin(t *testing.T) {
	cfg := testConfig()
	cfg.Credentials.Password = "wrong_sauce"

	runner, tracker := newTestRunner(t, cfg, mock.Config{})

	suite, err := runner.Run(context.Background(), []Flow{LoginFlow()})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	outcome := suite.Flows[0]
	if outcome.State != core.StateFailed {
		t.Errorf("State = %v, want %v", outcome.State, core.StateFailed)
	}
	if outcome.FailedStep != "log_in" {
		t.Errorf("FailedStep = %q, want %q", outcome.FailedStep, "log_in")
	}
	if !errors.Is(outcome.Err, core.ErrVerificationFailed) {
		t.Errorf("Err = %v, want ErrVerificationFailed", outcome.Err)
	}
	if outcome.Status != core.StatusFailed {
		t.Errorf("Status = %v, want %v", outcome.Status, core.StatusFailed)
	}

	// Exactly one diagnostics capture for the failed flow.
	if outcome.DiagnosticsPath == "" {
		t.Fatal("no diagnostics captured")
	}
	entries, readErr := os.ReadDir(filepath.Join(runner.config.OutputDir, "assets", "failures"))
	if readErr != nil {
		t.Fatalf("reading failures dir: %v", readErr)
	}
	if len(entries) != 1 {
		t.Errorf("failures dir has %d entries, want 1", len(entries))
	}

	if quits := tracker.driver(0).Quits(); quits != 1 {
		t.Errorf("driver quit %d times, want exactly 1", quits)
	}
}

func TestRunner_InvalidLoginFlowExpectsRejection(t *testing.T) {
	// The invalid-login flow submits a known-bad password on purpose;
	// seeing the rejection banner is its passing outcome.
	runner, _ := newTestRunner(t, testConfig(), mock.Config{})

	suite, err := runner.Run(context.Background(), []Flow{InvalidLoginFlow()})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !suite.Success() {
		t.Fatalf("invalid-login flow failed: %s", suite.Flows[0].Error)
	}
	if suite.Flows[0].State != core.StateCompleted {
		t.Errorf("State = %v, want %v", suite.Flows[0].State, core.StateCompleted)
	}
}

func TestRunner_StopOnFail(t *testing.T) {
	runner, tracker := newTestRunner(t, testConfig(), mock.Config{FailOnInteraction: 1})
	runner.config.StopOnFail = true

	suite, err := runner.Run(context.Background(), []Flow{CheckoutFlow(), LoginFlow()})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if suite.Flows[0].State != core.StateFailed {
		t.Errorf("Flows[0].State = %v, want %v", suite.Flows[0].State, core.StateFailed)
	}
	if suite.Flows[1].Status != core.StatusSkipped {
		t.Errorf("Flows[1].Status = %v, want %v", suite.Flows[1].Status, core.StatusSkipped)
	}
	if tracker.created() != 1 {
		t.Errorf("sessions created = %d, want 1 (second flow never ran)", tracker.created())
	}
}

func TestRunner_Parallel(t *testing.T) {
	runner, tracker := newTestRunner(t, testConfig(), mock.Config{})
	runner.config.Parallelism = 2

	flows := []Flow{LoginFlow(), AddToCartFlow(), InvalidLoginFlow()}
	suite, err := runner.Run(context.Background(), flows)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if !suite.Success() {
		t.Fatalf("parallel run failed: %d/%d passed", suite.PassedFlows, suite.TotalFlows)
	}
	if tracker.created() != len(flows) {
		t.Fatalf("sessions created = %d, want %d (one per flow)", tracker.created(), len(flows))
	}
	for i := 0; i < tracker.created(); i++ {
		if quits := tracker.driver(i).Quits(); quits != 1 {
			t.Errorf("driver %d quit %d times, want exactly 1", i, quits)
		}
	}
}

func TestRunner_ContextCancelled(t *testing.T) {
	runner, tracker := newTestRunner(t, testConfig(), mock.Config{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	suite, err := runner.Run(ctx, []Flow{LoginFlow(), CheckoutFlow()})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if suite.SkippedFlows != 2 {
		t.Errorf("SkippedFlows = %d, want 2", suite.SkippedFlows)
	}
	if tracker.created() != 0 {
		t.Errorf("sessions created = %d, want 0", tracker.created())
	}
}

func TestRunner_ArtifactsOnFailure(t *testing.T) {
	// Injection 4 is the add-to-cart click, so log_in passes and
	// select_product fails.
	runner, _ := newTestRunner(t, testConfig(), mock.Config{FailOnInteraction: 4})
	runner.config.Artifacts = ArtifactOnFailure

	if _, err := runner.Run(context.Background(), []Flow{CheckoutFlow()}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	detail, err := report.ReadFlowDetail(runner.config.OutputDir, "flows/flow-000.json")
	if err != nil {
		t.Fatalf("ReadFlowDetail() error = %v", err)
	}

	if detail.Steps[0].Artifacts.Screenshot != "" {
		t.Errorf("passed step has screenshot %q, want none in on-failure mode", detail.Steps[0].Artifacts.Screenshot)
	}

	failed := detail.Steps[1]
	if failed.Status != report.StatusFailed {
		t.Fatalf("Steps[1].Status = %q, want %q", failed.Status, report.StatusFailed)
	}
	if failed.Artifacts.Screenshot == "" {
		t.Error("failed step has no screenshot")
	} else if _, statErr := os.Stat(filepath.Join(runner.config.OutputDir, failed.Artifacts.Screenshot)); statErr != nil {
		t.Errorf("screenshot file missing: %v", statErr)
	}
	if failed.Artifacts.PageText == "" {
		t.Error("failed step has no page text")
	}

	if detail.Artifacts.RunLog == "" {
		t.Error("flow has no run log")
	} else {
		data, readErr := os.ReadFile(filepath.Join(runner.config.OutputDir, detail.Artifacts.RunLog))
		if readErr != nil {
			t.Fatalf("run log missing: %v", readErr)
		}
		if !strings.Contains(string(data), "[errored] select_product") {
			t.Errorf("run log does not record the failed step:\n%s", data)
		}
	}
}

func TestRunner_Callbacks(t *testing.T) {
	runner, _ := newTestRunner(t, testConfig(), mock.Config{})

	var flowStarts, stepCompletes, flowEnds int
	var mu sync.Mutex

	runner.config.OnFlowStart = func(flowIdx, totalFlows int, name string) {
		mu.Lock()
		flowStarts++
		mu.Unlock()
	}
	runner.config.OnStepComplete = func(idx int, name string, passed bool, durationMs int64, errMsg string) {
		mu.Lock()
		stepCompletes++
		mu.Unlock()
		if !passed {
			t.Errorf("step %s reported failed: %s", name, errMsg)
		}
	}
	runner.config.OnFlowEnd = func(name string, passed bool, durationMs int64) {
		mu.Lock()
		flowEnds++
		mu.Unlock()
	}

	if _, err := runner.Run(context.Background(), []Flow{AddToCartFlow()}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if flowStarts != 1 {
		t.Errorf("flowStarts = %d, want 1", flowStarts)
	}
	if stepCompletes != 3 {
		t.Errorf("stepCompletes = %d, want 3", stepCompletes)
	}
	if flowEnds != 1 {
		t.Errorf("flowEnds = %d, want 1", flowEnds)
	}
}

func TestCatalog_TransitionsChain(t *testing.T) {
	for _, f := range Catalog() {
		if len(f.Transitions) == 0 {
			t.Errorf("flow %q has no transitions", f.Name)
			continue
		}

		prev := core.StateNotStarted
		for _, tr := range f.Transitions {
			if tr.From != prev {
				t.Errorf("flow %q: transition %q starts at %v, want %v", f.Name, tr.Name, tr.From, prev)
			}
			prev = tr.To
		}
		if f.FinalState() != prev {
			t.Errorf("flow %q: FinalState() = %v, want %v", f.Name, f.FinalState(), prev)
		}
	}

	if got := CheckoutFlow().FinalState(); got != core.StateCompleted {
		t.Errorf("checkout FinalState() = %v, want %v", got, core.StateCompleted)
	}
}

func TestFlowsByName(t *testing.T) {
	flows, err := FlowsByName([]string{"login", "checkout"})
	if err != nil {
		t.Fatalf("FlowsByName() error = %v", err)
	}
	if len(flows) != 2 || flows[0].Name != "login" || flows[1].Name != "checkout" {
		t.Errorf("FlowsByName() = %v", flows)
	}

	all, err := FlowsByName(nil)
	if err != nil {
		t.Fatalf("FlowsByName(nil) error = %v", err)
	}
	if len(all) != len(Catalog()) {
		t.Errorf("len = %d, want the whole catalog", len(all))
	}

	if _, err := FlowsByName([]string{"teleport"}); !errors.Is(err, core.ErrInvalidConfig) {
		t.Errorf("unknown flow error = %v, want ErrInvalidConfig", err)
	}
}

func TestClassify(t *testing.T) {
	status, category := classify(core.NewVerificationFailed("a", "b"))
	if status != core.StatusFailed || category != core.ErrCategoryVerification {
		t.Errorf("verification: status = %v, category = %v", status, category)
	}

	status, category = classify(core.NewWaitTimeout("element visible", 0))
	if status != core.StatusErrored || category != core.ErrCategoryTimeout {
		t.Errorf("timeout: status = %v, category = %v", status, category)
	}

	status, category = classify(errors.New("socket closed"))
	if status != core.StatusErrored || category != core.ErrCategoryDriver {
		t.Errorf("plain error: status = %v, category = %v", status, category)
	}
}

func TestFormatDetails(t *testing.T) {
	got := formatDetails(map[string]interface{}{"expected": "Backpack", "observed": "Bike Light"})
	if got != "expected Backpack, observed Bike Light" {
		t.Errorf("formatDetails() = %q", got)
	}

	if got := formatDetails(nil); got != "" {
		t.Errorf("formatDetails(nil) = %q, want empty", got)
	}
}

func TestFlowPlans(t *testing.T) {
	plans := flowPlans([]Flow{LoginFlow()})
	if len(plans) != 1 {
		t.Fatalf("len(plans) = %d, want 1", len(plans))
	}
	if plans[0].Name != "login" {
		t.Errorf("Name = %q, want %q", plans[0].Name, "login")
	}
	if len(plans[0].Steps) != 1 {
		t.Fatalf("len(Steps) = %d, want 1", len(plans[0].Steps))
	}
	step := plans[0].Steps[0]
	if step.Name != "log_in" || step.From != "not_started" || step.To != "logged_in" {
		t.Errorf("step = %+v", step)
	}
}
