package output

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/uispec/uispec/packages/core/runner"
)

// JSONOutput represents the complete JSON output structure
type JSONOutput struct {
	Summary  JSONSummary    `json:"summary"`
	Tests    []JSONScenario `json:"tests"`
	Duration float64        `json:"duration"`
	Time     string         `json:"time"`
}

// JSONSummary represents the run summary
type JSONSummary struct {
	Total   int `json:"total"`
	Passed  int `json:"passed"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
}

// JSONScenario represents a single scenario result
type JSONScenario struct {
	Name       string     `json:"name"`
	File       string     `json:"file"`
	Row        int        `json:"row,omitempty"`
	Passed     bool       `json:"passed"`
	Skipped    bool       `json:"skipped,omitempty"`
	SkipReason string     `json:"skipReason,omitempty"`
	Duration   float64    `json:"duration"`
	Error      string     `json:"error,omitempty"`
	Screenshot string     `json:"screenshot,omitempty"`
	Steps      []JSONStep `json:"steps,omitempty"`
}

// JSONStep represents one executed step
type JSONStep struct {
	Action   string  `json:"action"`
	Target   string  `json:"target,omitempty"`
	Passed   bool    `json:"passed"`
	Duration float64 `json:"duration"`
	Message  string  `json:"message,omitempty"`
	Error    string  `json:"error,omitempty"`
}

// JSONFormatter formats run results as JSON
type JSONFormatter struct {
	writer  io.Writer
	results []JSONScenario
}

type JSONOption func(*JSONFormatter)

func NewJSONFormatter(opts ...JSONOption) *JSONFormatter {
	f := &JSONFormatter{
		writer:  os.Stdout,
		results: make([]JSONScenario, 0),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func JSONWithWriter(w io.Writer) JSONOption {
	return func(f *JSONFormatter) {
		f.writer = w
	}
}

// FormatResult accumulates a run result
func (f *JSONFormatter) FormatResult(result *runner.RunResult) {
	for _, r := range result.Results {
		sc := JSONScenario{
			Name:       r.Name,
			File:       result.File,
			Row:        r.Row,
			Passed:     r.Passed,
			Skipped:    r.Skipped,
			Duration:   float64(r.Duration.Milliseconds()),
			Screenshot: r.Screenshot,
		}

		if r.SkipReason != "" && r.SkipReason != "filtered out" {
			sc.SkipReason = r.SkipReason
		}

		if r.Error != nil {
			sc.Error = r.Error.Error()
		}

		for _, step := range r.Steps {
			js := JSONStep{
				Action:   step.Action,
				Target:   step.Target,
				Passed:   step.Passed,
				Duration: float64(step.Duration.Milliseconds()),
				Message:  step.Message,
			}
			if step.Error != nil {
				js.Error = step.Error.Error()
			}
			sc.Steps = append(sc.Steps, js)
		}

		f.results = append(f.results, sc)
	}
}

// FormatError handles errors (no-op for JSON, errors are in results)
func (f *JSONFormatter) FormatError(err error) {
}

// FormatHeader is a no-op for JSON output
func (f *JSONFormatter) FormatHeader(version string) {
}

// Flush writes the accumulated JSON output
func (f *JSONFormatter) Flush(totalDuration time.Duration) error {
	var passed, failed, skipped int
	for _, t := range f.results {
		switch {
		case t.Skipped:
			skipped++
		case t.Passed:
			passed++
		default:
			failed++
		}
	}

	output := JSONOutput{
		Summary: JSONSummary{
			Total:   len(f.results),
			Passed:  passed,
			Failed:  failed,
			Skipped: skipped,
		},
		Tests:    f.results,
		Duration: float64(totalDuration.Milliseconds()),
		Time:     time.Now().Format(time.RFC3339),
	}

	enc := json.NewEncoder(f.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(output)
}
