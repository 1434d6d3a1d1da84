package report

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/storelab-dev/checkout-runner/pkg/core"
	"github.com/storelab-dev/checkout-runner/pkg/logger"
)

// FailureCapture names the diagnostics written for one failed flow.
// Paths are relative to the report output directory.
type FailureCapture struct {
	Dir        string
	Screenshot string
	PageText   string
	URL        string
}

// FailureReporter writes failure diagnostics at most once per flow.
// Diagnostics are best effort: a write error is logged and the run
// carries on, because the flow's failure is the news, not ours.
type FailureReporter struct {
	outputDir string

	mu       sync.Mutex
	captured map[string]struct{}
}

// NewFailureReporter creates a reporter writing under
// <outputDir>/assets/failures.
func NewFailureReporter(outputDir string) *FailureReporter {
	return &FailureReporter{
		outputDir: outputDir,
		captured:  make(map[string]struct{}),
	}
}

// Capture grabs a screenshot, the page URL, and the page text for the
// failed flow. The first call per flow wins; later calls return the
// nil capture so a flow that fails in its step and again in teardown
// is documented exactly once.
func (r *FailureReporter) Capture(drv core.Driver, flowName string) *FailureCapture {
	r.mu.Lock()
	if _, done := r.captured[flowName]; done {
		r.mu.Unlock()
		logger.Debug("diagnostics for flow %q already captured", flowName)
		return nil
	}
	r.captured[flowName] = struct{}{}
	r.mu.Unlock()

	stamp := time.Now().UTC().Format("20060102-150405")
	relDir := filepath.Join("assets", "failures", slug(flowName)+"_"+stamp)
	absDir := filepath.Join(r.outputDir, relDir)
	if err := ensureDir(absDir); err != nil {
		logger.Warn("create diagnostics dir for %q: %v", flowName, err)
		return nil
	}

	fc := &FailureCapture{Dir: relDir}

	if png, err := drv.Screenshot(); err != nil {
		logger.Warn("capture screenshot for %q: %v", flowName, err)
	} else if err := os.WriteFile(filepath.Join(absDir, "failure.png"), png, 0o644); err != nil {
		logger.Warn("write screenshot for %q: %v", flowName, err)
	} else {
		fc.Screenshot = filepath.Join(relDir, "failure.png")
	}

	url, err := drv.URL()
	if err != nil {
		logger.Warn("read url for %q: %v", flowName, err)
	} else {
		fc.URL = url
	}

	text, err := drv.PageText()
	if err != nil {
		logger.Warn("read page text for %q: %v", flowName, err)
	}
	if url != "" || text != "" {
		body := "URL: " + url + "\n\n" + text
		if err := os.WriteFile(filepath.Join(absDir, "page.txt"), []byte(body), 0o644); err != nil {
			logger.Warn("write page text for %q: %v", flowName, err)
		} else {
			fc.PageText = filepath.Join(relDir, "page.txt")
		}
	}

	logger.Info("diagnostics for flow %q written to %s", flowName, relDir)
	return fc
}

// slug normalizes a flow name into a directory-safe token.
func slug(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteByte('-')
		}
	}
	if b.Len() == 0 {
		return "flow"
	}
	return b.String()
}
