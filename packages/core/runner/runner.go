package runner

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/uispec/uispec/packages/browser"
	"github.com/uispec/uispec/packages/core/env"
	"github.com/uispec/uispec/packages/core/scenario"
	"github.com/uispec/uispec/packages/core/testdata"
	"github.com/uispec/uispec/packages/page"
	"github.com/uispec/uispec/packages/screenshot"
)

// SessionFactory opens one browser session per scenario run.
type SessionFactory func(ctx context.Context) (browser.Session, error)

// Config carries the run-wide settings.
type Config struct {
	Environment         string
	BaseURL             string
	Timeout             time.Duration
	PollInterval        time.Duration
	Bail                bool
	NameFilter          string
	TagsFilter          []string
	ScreenshotDir       string
	ScreenshotOnFailure bool
	DryRun              bool
	Variables           map[string]any
	Logger              *slog.Logger
}

// StepResult records one executed step.
type StepResult struct {
	Action   string
	Target   string
	Duration time.Duration
	Passed   bool
	Message  string // assertion detail on failure
	Error    error
}

// ScenarioResult records one scenario run (one data row).
type ScenarioResult struct {
	Name       string
	Row        int // 1-based data row, 0 when not data-driven
	Passed     bool
	Skipped    bool
	SkipReason string
	Duration   time.Duration
	Steps      []StepResult
	Error      error
	Screenshot string
}

// RunResult aggregates one scenario file.
type RunResult struct {
	File     string
	Results  []ScenarioResult
	Duration time.Duration
	Passed   int
	Failed   int
	Skipped  int
	Timings  *Timings
}

// Runner executes scenario files.
type Runner struct {
	cfg     Config
	factory SessionFactory
	loader  *testdata.Loader
	logger  *slog.Logger
}

// New builds a runner. The loader may be nil when no scenario
// references a data file.
func New(cfg Config, factory SessionFactory, loader *testdata.Loader) *Runner {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = browser.DefaultWaitTimeout
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = browser.DefaultPollInterval
	}
	return &Runner{cfg: cfg, factory: factory, loader: loader, logger: cfg.Logger}
}

// RunFile parses and executes every scenario in a file.
func (r *Runner) RunFile(ctx context.Context, path string) (*RunResult, error) {
	scenarios, err := scenario.ParseFile(path)
	if err != nil {
		return nil, err
	}

	result := &RunResult{File: path, Timings: NewTimings()}
	start := time.Now()

	for _, sc := range scenarios {
		if r.skip(sc) {
			result.Results = append(result.Results, ScenarioResult{
				Name:       sc.Name,
				Skipped:    true,
				SkipReason: "filtered out",
			})
			result.Skipped++
			continue
		}

		rows, err := r.expand(sc)
		if err != nil {
			result.Results = append(result.Results, ScenarioResult{
				Name:   sc.Name,
				Passed: false,
				Error:  err,
			})
			result.Failed++
			if r.cfg.Bail {
				break
			}
			continue
		}

		bailed := false
		for _, row := range rows {
			sr := r.runScenario(ctx, sc, row)
			result.Results = append(result.Results, sr)
			for _, st := range sr.Steps {
				result.Timings.Record(st.Action, st.Duration)
			}
			switch {
			case sr.Skipped:
				result.Skipped++
			case sr.Passed:
				result.Passed++
			default:
				result.Failed++
				if r.cfg.Bail {
					bailed = true
				}
			}
			if bailed {
				break
			}
		}
		if bailed {
			break
		}
	}

	result.Duration = time.Since(start)
	return result, nil
}

func (r *Runner) skip(sc *scenario.Scenario) bool {
	if r.cfg.NameFilter != "" && !strings.Contains(sc.Name, r.cfg.NameFilter) {
		return true
	}
	return !sc.HasTag(r.cfg.TagsFilter)
}

// dataRow binds one data tuple's values by column name. A nil row means
// the scenario is not data-driven.
type dataRow struct {
	index     int // 1-based
	variables map[string]any
}

// expand resolves a scenario's data reference into one row per tuple.
func (r *Runner) expand(sc *scenario.Scenario) ([]*dataRow, error) {
	if sc.Data == "" {
		return []*dataRow{nil}, nil
	}
	if r.loader == nil {
		return nil, fmt.Errorf("scenario %q references data %q but no data directory is configured", sc.Name, sc.Data)
	}

	table, err := r.loader.LoadTable(sc.Data)
	if err != nil {
		return nil, fmt.Errorf("scenario %q: %w", sc.Name, err)
	}

	rows := make([]*dataRow, 0, len(table.Tuples))
	for i, tuple := range table.Tuples {
		vars := make(map[string]any, len(table.Columns))
		for c, column := range table.Columns {
			vars[column] = tuple[c]
		}
		rows = append(rows, &dataRow{index: i + 1, variables: vars})
	}
	return rows, nil
}

func (r *Runner) runScenario(ctx context.Context, sc *scenario.Scenario, row *dataRow) ScenarioResult {
	name := sc.Name
	result := ScenarioResult{Name: name, Passed: true}
	if row != nil {
		result.Name = fmt.Sprintf("%s [row %d]", name, row.index)
		result.Row = row.index
	}

	if r.cfg.DryRun {
		result.Skipped = true
		result.Passed = false
		result.SkipReason = "dry run"
		return result
	}

	resolver := env.NewResolver()
	resolver.SetWarnFunc(func(format string, args ...any) {
		r.logger.Warn(fmt.Sprintf(format, args...), "scenario", result.Name)
	})
	resolver.SetVariables(r.cfg.Variables)
	if r.cfg.BaseURL != "" {
		resolver.SetVariable("base_url", r.cfg.BaseURL)
	}
	resolver.SetVariable("environment", r.cfg.Environment)
	if row != nil {
		resolver.SetVariables(row.variables)
	}

	start := time.Now()
	session, err := r.factory(ctx)
	if err != nil {
		result.Passed = false
		result.Error = fmt.Errorf("open session: %w", err)
		result.Duration = time.Since(start)
		return result
	}
	defer func() {
		if err := session.Close(context.WithoutCancel(ctx)); err != nil {
			r.logger.Warn("closing session", "scenario", result.Name, "error", err)
		}
	}()

	pg := page.New(session,
		page.WithTimeout(r.cfg.Timeout),
		page.WithPollInterval(r.cfg.PollInterval),
		page.WithLogger(r.logger))
	capturer := screenshot.NewCapturer(session, r.cfg.ScreenshotDir, r.logger)

	for _, step := range sc.Steps {
		sr := r.executeStep(ctx, pg, capturer, resolver, step)
		result.Steps = append(result.Steps, sr)
		if !sr.Passed {
			result.Passed = false
			result.Error = sr.Error
			if result.Error == nil && sr.Message != "" {
				result.Error = fmt.Errorf("%s: %s", sr.Action, sr.Message)
			}
			break
		}
	}

	if !result.Passed && r.cfg.ScreenshotOnFailure && r.cfg.ScreenshotDir != "" {
		path, err := capturer.CaptureOnFailure(context.WithoutCancel(ctx), result.Name)
		if err != nil {
			r.logger.Warn("failure screenshot", "scenario", result.Name, "error", err)
		} else {
			result.Screenshot = path
		}
	}

	result.Duration = time.Since(start)
	r.logger.Info("scenario finished",
		"scenario", result.Name,
		"passed", result.Passed,
		"steps", len(result.Steps),
		"duration", result.Duration)
	return result
}
