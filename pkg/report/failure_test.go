package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/storelab-dev/checkout-runner/pkg/driver/mock"
)

func TestFailureReporter_Capture(t *testing.T) {
	tmpDir := t.TempDir()

	drv := mock.New(mock.Config{})
	if err := drv.Open("https://shop.example.com"); err != nil {
		t.Fatalf("setup: %v", err)
	}

	r := NewFailureReporter(tmpDir)
	fc := r.Capture(drv, "checkout")
	if fc == nil {
		t.Fatal("Capture() = nil, want capture")
	}

	if !strings.HasPrefix(fc.Dir, filepath.Join("assets", "failures", "checkout_")) {
		t.Errorf("Dir = %q, want assets/failures/checkout_* prefix", fc.Dir)
	}
	if fc.URL != "https://shop.example.com" {
		t.Errorf("URL = %q", fc.URL)
	}

	shot, err := os.ReadFile(filepath.Join(tmpDir, fc.Screenshot))
	if err != nil {
		t.Fatalf("screenshot not written: %v", err)
	}
	if len(shot) == 0 || shot[1] != 'P' {
		t.Error("screenshot is not PNG data")
	}

	text, err := os.ReadFile(filepath.Join(tmpDir, fc.PageText))
	if err != nil {
		t.Fatalf("page text not written: %v", err)
	}
	if !strings.HasPrefix(string(text), "URL: https://shop.example.com") {
		t.Errorf("page text missing URL header: %q", text)
	}
	if !strings.Contains(string(text), "Swag Labs") {
		t.Errorf("page text missing page content: %q", text)
	}
}

func TestFailureReporter_CaptureOncePerFlow(t *testing.T) {
	tmpDir := t.TempDir()

	drv := mock.New(mock.Config{})
	if err := drv.Open("https://shop.example.com"); err != nil {
		t.Fatalf("setup: %v", err)
	}

	r := NewFailureReporter(tmpDir)
	if fc := r.Capture(drv, "checkout"); fc == nil {
		t.Fatal("first Capture() = nil")
	}
	if fc := r.Capture(drv, "checkout"); fc != nil {
		t.Errorf("second Capture() = %+v, want nil", fc)
	}

	entries, err := os.ReadDir(filepath.Join(tmpDir, "assets", "failures"))
	if err != nil {
		t.Fatalf("reading failures dir: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("failures dir has %d entries, want 1", len(entries))
	}

	// A different flow still gets its own capture.
	if fc := r.Capture(drv, "invalid login"); fc == nil {
		t.Fatal("Capture() for second flow = nil")
	} else if !strings.HasPrefix(fc.Dir, filepath.Join("assets", "failures", "invalid-login_")) {
		t.Errorf("Dir = %q, want invalid-login_* prefix", fc.Dir)
	}
}

func TestFailureReporter_DriverErrorsTolerated(t *testing.T) {
	tmpDir := t.TempDir()

	drv := mock.New(mock.Config{})
	if err := drv.Open("https://shop.example.com"); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if err := drv.Quit(); err != nil {
		t.Fatalf("setup: %v", err)
	}

	// Every driver call now fails; capture still returns without escalating.
	r := NewFailureReporter(tmpDir)
	fc := r.Capture(drv, "checkout")
	if fc == nil {
		t.Fatal("Capture() = nil, want capture with empty artifact paths")
	}
	if fc.Screenshot != "" {
		t.Errorf("Screenshot = %q, want empty", fc.Screenshot)
	}
	if fc.PageText != "" {
		t.Errorf("PageText = %q, want empty", fc.PageText)
	}
}

func TestSlug(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"checkout", "checkout"},
		{"Invalid Login", "invalid-login"},
		{"standard_user happy path", "standard_user-happy-path"},
		{"!!!", "flow"},
		{"", "flow"},
	}

	for _, tt := range tests {
		if got := slug(tt.in); got != tt.want {
			t.Errorf("slug(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
