package report

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"time"
)

// HTMLConfig contains configuration for HTML report generation.
type HTMLConfig struct {
	OutputPath  string // Path to write the HTML file
	EmbedAssets bool   // Embed screenshots as base64 (makes file larger but portable)
	Title       string // Report title (default: "Checkout Report")
	ReportDir   string // Directory containing report.json (needed for asset paths)
}

// GenerateHTML generates an HTML report from the report directory.
func GenerateHTML(reportDir string, cfg HTMLConfig) error {
	index, flows, err := ReadReport(reportDir)
	if err != nil {
		return fmt.Errorf("read report: %w", err)
	}

	if cfg.Title == "" {
		cfg.Title = "Checkout Report"
	}
	if cfg.ReportDir == "" {
		cfg.ReportDir = reportDir
	}
	if cfg.OutputPath == "" {
		cfg.OutputPath = filepath.Join(reportDir, "report.html")
	}

	data := buildHTMLData(index, flows, cfg)

	html, err := renderHTML(data)
	if err != nil {
		return fmt.Errorf("render html: %w", err)
	}

	if err := os.WriteFile(cfg.OutputPath, []byte(html), 0o644); err != nil {
		return fmt.Errorf("write html: %w", err)
	}

	return nil
}

// HTMLData contains all data needed for the HTML template.
type HTMLData struct {
	Title         string
	GeneratedAt   string
	Index         *Index
	Flows         []FlowHTMLData
	TotalDuration string
	PassRate      float64
	Refresh       bool // auto-reload while the run is still going
}

// FlowHTMLData contains flow data formatted for HTML.
type FlowHTMLData struct {
	FlowDetail
	StatusClass    string
	Status         Status
	DurationStr    string
	DiagnosticsDir string
	Error          string
	Steps          []StepHTMLData
}

// StepHTMLData contains step data formatted for HTML.
type StepHTMLData struct {
	Step
	StatusClass string
	DurationStr string
	Screenshot  string // base64 or path
	ErrorText   string
}

var statusClasses = map[Status]string{
	StatusPassed:  "passed",
	StatusFailed:  "failed",
	StatusSkipped: "skipped",
	StatusRunning: "running",
	StatusPending: "pending",
}

func buildHTMLData(index *Index, flows []FlowDetail, cfg HTMLConfig) HTMLData {
	entryByID := make(map[string]*FlowEntry, len(index.Flows))
	for i := range index.Flows {
		entryByID[index.Flows[i].ID] = &index.Flows[i]
	}

	flowsData := make([]FlowHTMLData, len(flows))
	for i, f := range flows {
		steps := make([]StepHTMLData, len(f.Steps))
		for j, s := range f.Steps {
			row := StepHTMLData{
				Step:        s,
				StatusClass: statusClasses[s.Status],
				DurationStr: formatDuration(s.Duration),
			}
			if s.Error != nil {
				row.ErrorText = s.Error.Message
			}
			if s.Artifacts.Screenshot != "" {
				if cfg.EmbedAssets {
					row.Screenshot = loadAsBase64(filepath.Join(cfg.ReportDir, s.Artifacts.Screenshot))
				} else {
					row.Screenshot = s.Artifacts.Screenshot
				}
			}
			steps[j] = row
		}

		fd := FlowHTMLData{
			FlowDetail:  f,
			Status:      StatusPending,
			StatusClass: statusClasses[StatusPending],
			Steps:       steps,
		}
		if entry, ok := entryByID[f.ID]; ok {
			fd.Status = entry.Status
			fd.StatusClass = statusClasses[entry.Status]
			fd.DurationStr = formatDuration(entry.Duration)
			fd.DiagnosticsDir = entry.DiagnosticsDir
			if entry.Error != nil {
				fd.Error = *entry.Error
			}
		}
		flowsData[i] = fd
	}

	var passRate float64
	if index.Summary.Total > 0 {
		passRate = float64(index.Summary.Passed) / float64(index.Summary.Total) * 100
	}

	var totalDuration string
	if index.EndTime != nil {
		ms := index.EndTime.Sub(index.StartTime).Milliseconds()
		totalDuration = formatDuration(&ms)
	}

	return HTMLData{
		Title:         cfg.Title,
		GeneratedAt:   time.Now().Format("2006-01-02 15:04:05"),
		Index:         index,
		Flows:         flowsData,
		TotalDuration: totalDuration,
		PassRate:      passRate,
		Refresh:       !index.Status.IsTerminal(),
	}
}

// formatDuration renders milliseconds for humans.
func formatDuration(ms *int64) string {
	if ms == nil {
		return "-"
	}
	d := time.Duration(*ms) * time.Millisecond
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}

// loadAsBase64 reads a PNG and returns it as a data URI, or empty on error.
func loadAsBase64(path string) string {
	data, err := os.ReadFile(path) //#nosec G304 -- path comes from the report we wrote
	if err != nil {
		return ""
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(data)
}

// renderHTML executes the report template.
func renderHTML(data HTMLData) (string, error) {
	tmpl, err := template.New("report").Parse(htmlTemplate)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

const htmlTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
{{if .Refresh}}<meta http-equiv="refresh" content="2">{{end}}
<title>{{.Title}}</title>
<style>
body { font-family: -apple-system, "Segoe UI", Roboto, sans-serif; margin: 0; background: #f5f6f8; color: #1f2430; }
header { background: #1f2430; color: #fff; padding: 16px 24px; }
header h1 { margin: 0 0 4px; font-size: 20px; }
header .meta { font-size: 12px; color: #aab2c0; }
.summary { display: flex; gap: 16px; padding: 16px 24px; }
.summary .card { background: #fff; border-radius: 8px; padding: 12px 18px; box-shadow: 0 1px 2px rgba(0,0,0,.08); }
.summary .card .num { font-size: 22px; font-weight: 600; }
.summary .card .label { font-size: 11px; text-transform: uppercase; color: #6b7280; }
.flow { background: #fff; margin: 0 24px 16px; border-radius: 8px; box-shadow: 0 1px 2px rgba(0,0,0,.08); overflow: hidden; }
.flow-header { display: flex; justify-content: space-between; align-items: center; padding: 12px 18px; border-bottom: 1px solid #e5e7eb; }
.flow-header h2 { margin: 0; font-size: 15px; }
.flow-header .state { font-size: 12px; color: #6b7280; }
.pill { display: inline-block; padding: 2px 10px; border-radius: 10px; font-size: 11px; font-weight: 600; text-transform: uppercase; }
.pill.passed { background: #def7e4; color: #11753c; }
.pill.failed { background: #fde2e2; color: #b42318; }
.pill.skipped { background: #eef0f3; color: #6b7280; }
.pill.running { background: #dbeafe; color: #1d4ed8; }
.pill.pending { background: #f3f4f6; color: #9ca3af; }
table { width: 100%; border-collapse: collapse; font-size: 13px; }
th, td { text-align: left; padding: 8px 18px; border-bottom: 1px solid #f0f1f3; }
th { font-size: 11px; text-transform: uppercase; color: #9ca3af; }
td.err { color: #b42318; }
.diag { padding: 10px 18px; font-size: 12px; }
.diag a { color: #1d4ed8; }
footer { padding: 12px 24px; font-size: 11px; color: #9ca3af; }
img.shot { max-width: 320px; border: 1px solid #e5e7eb; border-radius: 4px; }
</style>
</head>
<body>
<header>
<h1>{{.Title}} <span class="pill {{.Index.Status}}">{{.Index.Status}}</span></h1>
<div class="meta">run {{.Index.RunID}} &middot; {{.Index.Target.BaseURL}} &middot; {{.Index.Browser.Driver}}/{{.Index.Browser.Name}}{{if .TotalDuration}} &middot; {{.TotalDuration}}{{end}}</div>
</header>
<div class="summary">
<div class="card"><div class="num">{{.Index.Summary.Total}}</div><div class="label">Flows</div></div>
<div class="card"><div class="num">{{.Index.Summary.Passed}}</div><div class="label">Passed</div></div>
<div class="card"><div class="num">{{.Index.Summary.Failed}}</div><div class="label">Failed</div></div>
<div class="card"><div class="num">{{printf "%.0f%%" .PassRate}}</div><div class="label">Pass rate</div></div>
</div>
{{range .Flows}}
<div class="flow">
<div class="flow-header">
<h2>{{.Name}} <span class="pill {{.StatusClass}}">{{.Status}}</span></h2>
<div class="state">{{if .FinalState}}ended in {{.FinalState}} &middot; {{end}}{{.DurationStr}}</div>
</div>
<table>
<tr><th>#</th><th>Step</th><th>Transition</th><th>Status</th><th>Duration</th><th>Error</th></tr>
{{range .Steps}}
<tr>
<td>{{.Index}}</td>
<td>{{.Name}}</td>
<td>{{if .From}}{{.From}} &rarr; {{.To}}{{end}}</td>
<td><span class="pill {{.StatusClass}}">{{.Status}}</span></td>
<td>{{.DurationStr}}</td>
<td class="err">{{.ErrorText}}{{if .Screenshot}}<br><img class="shot" src="{{.Screenshot}}" alt="failure screenshot">{{end}}</td>
</tr>
{{end}}
</table>
{{if .DiagnosticsDir}}<div class="diag">diagnostics: <a href="{{.DiagnosticsDir}}">{{.DiagnosticsDir}}</a></div>{{end}}
</div>
{{end}}
<footer>generated {{.GeneratedAt}} &middot; checkout-runner report {{.Index.Version}}</footer>
</body>
</html>
`
