package output

import (
	"fmt"
	"html/template"
	"io"
	"os"
	"time"

	"github.com/uispec/uispec/packages/core/runner"
)

// HTMLOutput represents the complete HTML report structure
type HTMLOutput struct {
	Version        string
	Summary        HTMLSummary
	Scenarios      []HTMLScenario
	Timings        []HTMLTiming
	Duration       float64
	Time           string
	PassedPercent  float64
	FailedPercent  float64
	SkippedPercent float64
}

// HTMLSummary represents the run summary for HTML output
type HTMLSummary struct {
	Total   int
	Passed  int
	Failed  int
	Skipped int
}

// HTMLScenario represents a single scenario result for HTML output
type HTMLScenario struct {
	Name        string
	File        string
	Passed      bool
	Skipped     bool
	SkipReason  string
	Duration    float64
	Error       string
	Screenshot  string
	StatusClass string
	Steps       []HTMLStep
}

// HTMLStep represents one executed step for HTML output
type HTMLStep struct {
	Action      string
	Target      string
	Passed      bool
	Duration    float64
	Message     string
	Error       string
	StatusClass string
}

// HTMLTiming is one per-action latency row
type HTMLTiming struct {
	Action string
	Count  int64
	MeanMs float64
	P95Ms  float64
	MaxMs  float64
}

// HTMLFormatter formats run results as a self-contained HTML report
type HTMLFormatter struct {
	writer    io.Writer
	scenarios []HTMLScenario
	timings   *runner.Timings
	version   string
}

// HTMLOption is a functional option for HTMLFormatter
type HTMLOption func(*HTMLFormatter)

// NewHTMLFormatter creates a new HTML formatter
func NewHTMLFormatter(opts ...HTMLOption) *HTMLFormatter {
	f := &HTMLFormatter{
		writer:    os.Stdout,
		scenarios: make([]HTMLScenario, 0),
		timings:   runner.NewTimings(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// HTMLWithWriter sets the output writer
func HTMLWithWriter(w io.Writer) HTMLOption {
	return func(f *HTMLFormatter) {
		f.writer = w
	}
}

// FormatResult accumulates a run result
func (f *HTMLFormatter) FormatResult(result *runner.RunResult) {
	f.timings.Merge(result.Timings)

	for _, r := range result.Results {
		sc := HTMLScenario{
			Name:       r.Name,
			File:       result.File,
			Passed:     r.Passed,
			Skipped:    r.Skipped,
			Duration:   float64(r.Duration.Milliseconds()),
			Screenshot: r.Screenshot,
		}

		switch {
		case r.Skipped:
			sc.StatusClass = "skipped"
		case r.Passed:
			sc.StatusClass = "passed"
		default:
			sc.StatusClass = "failed"
		}

		if r.SkipReason != "" && r.SkipReason != "filtered out" {
			sc.SkipReason = r.SkipReason
		}
		if r.Error != nil {
			sc.Error = r.Error.Error()
		}

		for _, step := range r.Steps {
			hs := HTMLStep{
				Action:      step.Action,
				Target:      step.Target,
				Passed:      step.Passed,
				Duration:    float64(step.Duration.Milliseconds()),
				Message:     step.Message,
				StatusClass: "passed",
			}
			if !step.Passed {
				hs.StatusClass = "failed"
			}
			if step.Error != nil {
				hs.Error = step.Error.Error()
			}
			sc.Steps = append(sc.Steps, hs)
		}

		f.scenarios = append(f.scenarios, sc)
	}
}

// FormatError handles errors (no-op for HTML, errors are in results)
func (f *HTMLFormatter) FormatError(err error) {
}

// FormatHeader captures the version for the HTML report
func (f *HTMLFormatter) FormatHeader(version string) {
	f.version = version
}

// Flush writes the accumulated HTML report
func (f *HTMLFormatter) Flush(totalDuration time.Duration) error {
	var passed, failed, skipped int
	for _, sc := range f.scenarios {
		switch {
		case sc.Skipped:
			skipped++
		case sc.Passed:
			passed++
		default:
			failed++
		}
	}

	total := len(f.scenarios)
	var passedPct, failedPct, skippedPct float64
	if total > 0 {
		passedPct = float64(passed) / float64(total) * 100
		failedPct = float64(failed) / float64(total) * 100
		skippedPct = float64(skipped) / float64(total) * 100
	}

	summary := f.timings.Summary()
	timings := make([]HTMLTiming, 0, len(summary.ByAction))
	for _, at := range summary.ByAction {
		timings = append(timings, HTMLTiming{
			Action: at.Action,
			Count:  at.Count,
			MeanMs: float64(at.Mean.Microseconds()) / 1000,
			P95Ms:  float64(at.P95.Microseconds()) / 1000,
			MaxMs:  float64(at.Max.Microseconds()) / 1000,
		})
	}

	output := HTMLOutput{
		Version: f.version,
		Summary: HTMLSummary{
			Total:   total,
			Passed:  passed,
			Failed:  failed,
			Skipped: skipped,
		},
		Scenarios:      f.scenarios,
		Timings:        timings,
		Duration:       float64(totalDuration.Milliseconds()),
		Time:           time.Now().Format("2006-01-02 15:04:05"),
		PassedPercent:  passedPct,
		FailedPercent:  failedPct,
		SkippedPercent: skippedPct,
	}

	tmpl, err := template.New("report").Parse(htmlTemplate)
	if err != nil {
		return fmt.Errorf("failed to parse HTML template: %w", err)
	}

	return tmpl.Execute(f.writer, output)
}

const htmlTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>uispec report</title>
<style>
  body { font-family: -apple-system, "Segoe UI", Roboto, sans-serif; margin: 0; background: #f5f6f8; color: #24292f; }
  .container { max-width: 960px; margin: 0 auto; padding: 24px; }
  header { display: flex; justify-content: space-between; align-items: baseline; }
  header h1 { font-size: 20px; margin: 0; }
  header .meta { color: #6e7781; font-size: 13px; }
  .bar { display: flex; height: 8px; border-radius: 4px; overflow: hidden; margin: 16px 0; background: #d0d7de; }
  .bar .passed { background: #2da44e; }
  .bar .failed { background: #cf222e; }
  .bar .skipped { background: #bf8700; }
  .summary { display: flex; gap: 24px; font-size: 14px; margin-bottom: 24px; }
  .summary .count { font-weight: 600; }
  .scenario { background: #fff; border: 1px solid #d0d7de; border-radius: 6px; margin-bottom: 12px; }
  .scenario > summary { padding: 10px 14px; cursor: pointer; display: flex; justify-content: space-between; }
  .scenario .duration { color: #6e7781; font-size: 13px; }
  .scenario.passed > summary { border-left: 4px solid #2da44e; }
  .scenario.failed > summary { border-left: 4px solid #cf222e; }
  .scenario.skipped > summary { border-left: 4px solid #bf8700; }
  table { width: 100%; border-collapse: collapse; font-size: 13px; }
  th, td { text-align: left; padding: 6px 14px; border-top: 1px solid #d0d7de; }
  tr.failed td { color: #cf222e; }
  .error { padding: 8px 14px; color: #cf222e; font-family: monospace; font-size: 13px; }
  .file { color: #6e7781; font-size: 12px; padding: 0 14px 8px; }
  h2 { font-size: 16px; margin: 32px 0 8px; }
</style>
</head>
<body>
<div class="container">
  <header>
    <h1>uispec {{.Version}}</h1>
    <span class="meta">{{.Time}} &middot; {{.Duration}}ms</span>
  </header>

  <div class="bar">
    <div class="passed" style="width: {{.PassedPercent}}%"></div>
    <div class="failed" style="width: {{.FailedPercent}}%"></div>
    <div class="skipped" style="width: {{.SkippedPercent}}%"></div>
  </div>

  <div class="summary">
    <span><span class="count">{{.Summary.Total}}</span> total</span>
    <span><span class="count">{{.Summary.Passed}}</span> passed</span>
    <span><span class="count">{{.Summary.Failed}}</span> failed</span>
    <span><span class="count">{{.Summary.Skipped}}</span> skipped</span>
  </div>

  {{range .Scenarios}}
  <details class="scenario {{.StatusClass}}"{{if not .Passed}} open{{end}}>
    <summary>
      <span>{{.Name}}</span>
      <span class="duration">{{.Duration}}ms</span>
    </summary>
    <div class="file">{{.File}}</div>
    {{if .SkipReason}}<div class="error">skipped: {{.SkipReason}}</div>{{end}}
    {{if .Error}}<div class="error">{{.Error}}</div>{{end}}
    {{if .Screenshot}}<div class="file">screenshot: {{.Screenshot}}</div>{{end}}
    {{if .Steps}}
    <table>
      <tr><th>Action</th><th>Target</th><th>Duration</th><th>Detail</th></tr>
      {{range .Steps}}
      <tr class="{{.StatusClass}}">
        <td>{{.Action}}</td>
        <td>{{.Target}}</td>
        <td>{{.Duration}}ms</td>
        <td>{{if .Message}}{{.Message}}{{else if .Error}}{{.Error}}{{end}}</td>
      </tr>
      {{end}}
    </table>
    {{end}}
  </details>
  {{end}}

  {{if .Timings}}
  <h2>Step latency</h2>
  <table style="background:#fff;border:1px solid #d0d7de;border-radius:6px">
    <tr><th>Action</th><th>Count</th><th>Mean</th><th>p95</th><th>Max</th></tr>
    {{range .Timings}}
    <tr>
      <td>{{.Action}}</td>
      <td>{{.Count}}</td>
      <td>{{printf "%.1f" .MeanMs}}ms</td>
      <td>{{printf "%.1f" .P95Ms}}ms</td>
      <td>{{printf "%.1f" .MaxMs}}ms</td>
    </tr>
    {{end}}
  </table>
  {{end}}
</div>
</body>
</html>
`
