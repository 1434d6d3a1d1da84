package report

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func createTestFlowWriter(t *testing.T) (*FlowWriter, *IndexWriter, string) {
	tmpDir := t.TempDir()

	index := &Index{
		Version: Version,
		RunID:   "run-test",
		Status:  StatusRunning,
		Flows: []FlowEntry{
			{ID: "flow-000", Name: "checkout", Status: StatusPending},
		},
	}

	indexWriter := NewIndexWriter(tmpDir, index)

	flowDetail := &FlowDetail{
		ID:   "flow-000",
		Name: "checkout",
		Steps: []Step{
			{Index: 0, Name: "login", From: "not_started", To: "logged_in", Status: StatusPending},
			{Index: 1, Name: "select_product", From: "logged_in", To: "product_selected", Status: StatusPending},
			{Index: 2, Name: "verify_cart", From: "product_selected", To: "cart_verified", Status: StatusPending},
		},
	}

	// Create flows directory
	if err := os.MkdirAll(filepath.Join(tmpDir, "flows"), 0o755); err != nil {
		t.Fatalf("failed to create flows directory: %v", err)
	}

	flowWriter := NewFlowWriter(flowDetail, tmpDir, indexWriter)

	return flowWriter, indexWriter, tmpDir
}

func TestNewFlowWriter(t *testing.T) {
	fw, iw, tmpDir := createTestFlowWriter(t)
	defer iw.Close()

	if fw.flow.ID != "flow-000" {
		t.Errorf("flow.ID = %q, want %q", fw.flow.ID, "flow-000")
	}

	expectedPath := filepath.Join(tmpDir, "flows", "flow-000.json")
	if fw.path != expectedPath {
		t.Errorf("path = %q, want %q", fw.path, expectedPath)
	}

	expectedAssetsDir := filepath.Join(tmpDir, "assets", "flow-000")
	if fw.assetsDir != expectedAssetsDir {
		t.Errorf("assetsDir = %q, want %q", fw.assetsDir, expectedAssetsDir)
	}

	// Check assets directory was created
	if _, err := os.Stat(expectedAssetsDir); err != nil {
		t.Errorf("assets directory not created: %v", err)
	}
}

func TestFlowWriter_Start(t *testing.T) {
	fw, iw, _ := createTestFlowWriter(t)
	defer iw.Close()

	before := time.Now()
	fw.Start()
	after := time.Now()

	if fw.flow.StartTime.Before(before) || fw.flow.StartTime.After(after) {
		t.Error("StartTime not set correctly")
	}
}

func TestFlowWriter_StepStart(t *testing.T) {
	fw, iw, _ := createTestFlowWriter(t)
	defer iw.Close()

	fw.Start()

	before := time.Now()
	fw.StepStart(0)
	after := time.Now()

	step := fw.flow.Steps[0]
	if step.Status != StatusRunning {
		t.Errorf("step.Status = %q, want %q", step.Status, StatusRunning)
	}
	if step.StartTime == nil {
		t.Error("StartTime not set")
	} else if step.StartTime.Before(before) || step.StartTime.After(after) {
		t.Error("StartTime not in expected range")
	}
}

func TestFlowWriter_StepStart_InvalidIndex(t *testing.T) {
	fw, iw, _ := createTestFlowWriter(t)
	defer iw.Close()

	// Should not panic with invalid index
	fw.StepStart(-1)
	fw.StepStart(100)
}

func TestFlowWriter_StepEnd(t *testing.T) {
	fw, iw, _ := createTestFlowWriter(t)
	defer iw.Close()

	fw.Start()
	fw.StepStart(0)

	time.Sleep(10 * time.Millisecond)

	artifacts := StepArtifacts{
		Screenshot: "assets/flow-000/step-000.png",
	}

	fw.StepEnd(0, StatusPassed, nil, artifacts)

	step := fw.flow.Steps[0]
	if step.Status != StatusPassed {
		t.Errorf("step.Status = %q, want %q", step.Status, StatusPassed)
	}
	if step.EndTime == nil {
		t.Error("EndTime not set")
	}
	if step.Duration == nil || *step.Duration < 10 {
		t.Error("Duration not calculated correctly")
	}
	if step.Artifacts.Screenshot != "assets/flow-000/step-000.png" {
		t.Errorf("Artifacts not set correctly")
	}
}

func TestFlowWriter_StepEnd_WithError(t *testing.T) {
	fw, iw, _ := createTestFlowWriter(t)
	defer iw.Close()

	fw.Start()
	fw.StepStart(0)

	stepErr := &Error{
		Type:    "verification",
		Message: "expected Sauce Labs Backpack, observed Sauce Labs Bike Light",
	}

	fw.StepEnd(0, StatusFailed, stepErr, StepArtifacts{})

	step := fw.flow.Steps[0]
	if step.Status != StatusFailed {
		t.Errorf("step.Status = %q, want %q", step.Status, StatusFailed)
	}
	if step.Error == nil {
		t.Error("Error not set")
	} else if step.Error.Type != "verification" {
		t.Errorf("Error.Type = %q, want %q", step.Error.Type, "verification")
	}
}

func TestFlowWriter_End(t *testing.T) {
	fw, iw, _ := createTestFlowWriter(t)
	defer iw.Close()

	fw.Start()
	for i := 0; i < 3; i++ {
		fw.StepStart(i)
		fw.StepEnd(i, StatusPassed, nil, StepArtifacts{})
	}

	fw.End(StatusPassed)

	if fw.flow.EndTime == nil {
		t.Error("EndTime not set")
	}
	if fw.flow.Duration == nil {
		t.Error("Duration not set")
	}
}

func TestFlowWriter_End_WithFailure(t *testing.T) {
	fw, iw, _ := createTestFlowWriter(t)
	defer iw.Close()

	fw.Start()
	fw.StepStart(0)
	fw.StepEnd(0, StatusFailed, &Error{Message: "login rejected"}, StepArtifacts{})
	fw.SetFinalState("failed")

	fw.End(StatusFailed)

	index := iw.GetIndex()
	if index.Flows[0].Status != StatusFailed {
		t.Errorf("index flow status = %q, want %q", index.Flows[0].Status, StatusFailed)
	}
	if index.Flows[0].Error == nil || *index.Flows[0].Error != "login rejected" {
		t.Errorf("index flow error = %v, want %q", index.Flows[0].Error, "login rejected")
	}
	if index.Flows[0].FinalState != "failed" {
		t.Errorf("index final state = %q, want %q", index.Flows[0].FinalState, "failed")
	}
}

func TestFlowWriter_SkipRemainingSteps(t *testing.T) {
	fw, iw, _ := createTestFlowWriter(t)
	defer iw.Close()

	fw.Start()
	fw.StepStart(0)
	fw.StepEnd(0, StatusFailed, &Error{Message: "failed"}, StepArtifacts{})

	fw.SkipRemainingSteps(1)

	if fw.flow.Steps[1].Status != StatusSkipped {
		t.Errorf("Steps[1].Status = %q, want %q", fw.flow.Steps[1].Status, StatusSkipped)
	}
	if fw.flow.Steps[2].Status != StatusSkipped {
		t.Errorf("Steps[2].Status = %q, want %q", fw.flow.Steps[2].Status, StatusSkipped)
	}
}

func TestFlowWriter_SaveScreenshot(t *testing.T) {
	fw, iw, _ := createTestFlowWriter(t)
	defer iw.Close()

	// Fake PNG data
	data := []byte{0x89, 0x50, 0x4E, 0x47}

	path, err := fw.SaveScreenshot(0, data)
	if err != nil {
		t.Fatalf("SaveScreenshot() error = %v", err)
	}

	expected := filepath.Join("assets", "flow-000", "step-000.png")
	if path != expected {
		t.Errorf("path = %q, want %q", path, expected)
	}

	absPath := filepath.Join(fw.assetsDir, "step-000.png")
	if _, err := os.Stat(absPath); err != nil {
		t.Errorf("screenshot file not created: %v", err)
	}
}

func TestFlowWriter_SavePageText(t *testing.T) {
	fw, iw, _ := createTestFlowWriter(t)
	defer iw.Close()

	path, err := fw.SavePageText(1, "Swag Labs\nProducts\n")
	if err != nil {
		t.Fatalf("SavePageText() error = %v", err)
	}

	expected := filepath.Join("assets", "flow-000", "step-001.txt")
	if path != expected {
		t.Errorf("path = %q, want %q", path, expected)
	}

	content, err := os.ReadFile(filepath.Join(fw.assetsDir, "step-001.txt"))
	if err != nil {
		t.Fatalf("page text file not created: %v", err)
	}
	if string(content) != "Swag Labs\nProducts\n" {
		t.Errorf("page text = %q", content)
	}
}

func TestFlowWriter_SaveRunLog(t *testing.T) {
	fw, iw, _ := createTestFlowWriter(t)
	defer iw.Close()

	data := []byte("log line 1\nlog line 2\n")

	path, err := fw.SaveRunLog(data)
	if err != nil {
		t.Fatalf("SaveRunLog() error = %v", err)
	}

	expected := filepath.Join("assets", "flow-000", "run.log")
	if path != expected {
		t.Errorf("path = %q, want %q", path, expected)
	}

	if fw.flow.Artifacts.RunLog != expected {
		t.Errorf("Artifacts.RunLog = %q, want %q", fw.flow.Artifacts.RunLog, expected)
	}
}

func TestFlowWriter_SetDiagnosticsDir(t *testing.T) {
	fw, iw, _ := createTestFlowWriter(t)
	defer iw.Close()

	fw.SetDiagnosticsDir("assets/failures/checkout_20260821-120000")
	fw.End(StatusFailed)

	index := iw.GetIndex()
	if index.Flows[0].DiagnosticsDir != "assets/failures/checkout_20260821-120000" {
		t.Errorf("DiagnosticsDir = %q", index.Flows[0].DiagnosticsDir)
	}
}

func TestFlowWriter_GetFlowDetail(t *testing.T) {
	fw, iw, _ := createTestFlowWriter(t)
	defer iw.Close()

	detail := fw.GetFlowDetail()
	if detail.ID != "flow-000" {
		t.Errorf("ID = %q, want %q", detail.ID, "flow-000")
	}
}

func TestFlowWriter_stepSummary(t *testing.T) {
	fw, iw, _ := createTestFlowWriter(t)
	defer iw.Close()

	fw.flow.Steps[0].Status = StatusPassed
	fw.flow.Steps[1].Status = StatusRunning
	fw.flow.Steps[2].Status = StatusPending

	summary := fw.stepSummary()

	if summary.Total != 3 {
		t.Errorf("Total = %d, want 3", summary.Total)
	}
	if summary.Passed != 1 {
		t.Errorf("Passed = %d, want 1", summary.Passed)
	}
	if summary.Running != 1 {
		t.Errorf("Running = %d, want 1", summary.Running)
	}
	if summary.Pending != 1 {
		t.Errorf("Pending = %d, want 1", summary.Pending)
	}
	if summary.Current == nil || *summary.Current != 1 {
		t.Errorf("Current = %v, want 1", summary.Current)
	}
}
