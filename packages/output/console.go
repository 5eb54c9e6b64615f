package output

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"

	"github.com/uispec/uispec/packages/core/runner"
)

type ConsoleFormatter struct {
	writer  io.Writer
	verbose bool
	noColor bool
}

type ConsoleOption func(*ConsoleFormatter)

func NewConsoleFormatter(opts ...ConsoleOption) *ConsoleFormatter {
	f := &ConsoleFormatter{
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.noColor {
		color.NoColor = true
	}
	return f
}

func WithWriter(w io.Writer) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.writer = w
	}
}

func WithVerbose(v bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.verbose = v
	}
}

func WithNoColor(nc bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.noColor = nc
	}
}

func (f *ConsoleFormatter) FormatResult(result *runner.RunResult) {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()
	bold := color.New(color.Bold).SprintFunc()

	fmt.Fprintf(f.writer, "\n%s\n", bold("Running: "+result.File))
	fmt.Fprintf(f.writer, "\n")

	for _, r := range result.Results {
		if r.Skipped {
			fmt.Fprintf(f.writer, "  %s %s", yellow("-"), r.Name)
			if r.SkipReason != "" && r.SkipReason != "filtered out" {
				fmt.Fprintf(f.writer, " (%s)", r.SkipReason)
			}
			fmt.Fprintf(f.writer, "\n")
			continue
		}

		symbol := green("✓")
		if !r.Passed {
			symbol = red("✗")
		}

		fmt.Fprintf(f.writer, "  %s %s %s\n", symbol, r.Name, cyan(fmt.Sprintf("(%dms)", r.Duration.Milliseconds())))

		if !r.Passed {
			for _, step := range r.Steps {
				if step.Passed {
					continue
				}
				fmt.Fprintf(f.writer, "    %s %s %s\n", red("→"), step.Action, step.Target)
				if step.Message != "" {
					fmt.Fprintf(f.writer, "      %s\n", step.Message)
				}
				if step.Error != nil {
					fmt.Fprintf(f.writer, "      %v\n", step.Error)
				}
			}
			if len(r.Steps) == 0 && r.Error != nil {
				fmt.Fprintf(f.writer, "    %s %v\n", red("→"), r.Error)
			}
			if r.Screenshot != "" {
				fmt.Fprintf(f.writer, "      Screenshot: %s\n", r.Screenshot)
			}
		}

		if f.verbose && r.Passed {
			for _, step := range r.Steps {
				fmt.Fprintf(f.writer, "    %s %s %s %s\n",
					green("·"), step.Action, step.Target,
					cyan(fmt.Sprintf("(%dms)", step.Duration.Milliseconds())))
			}
		}
	}

	fmt.Fprintf(f.writer, "\n")
	fmt.Fprintf(f.writer, "Scenarios: ")
	if result.Passed > 0 {
		fmt.Fprintf(f.writer, "%s, ", green(fmt.Sprintf("%d passed", result.Passed)))
	}
	if result.Failed > 0 {
		fmt.Fprintf(f.writer, "%s, ", red(fmt.Sprintf("%d failed", result.Failed)))
	}
	if result.Skipped > 0 {
		fmt.Fprintf(f.writer, "%s, ", yellow(fmt.Sprintf("%d skipped", result.Skipped)))
	}
	total := result.Passed + result.Failed + result.Skipped
	fmt.Fprintf(f.writer, "%d total\n", total)
	fmt.Fprintf(f.writer, "Time:  %dms\n", result.Duration.Milliseconds())

	if f.verbose && result.Timings != nil {
		s := result.Timings.Summary()
		if s.Steps > 0 {
			fmt.Fprintf(f.writer, "Steps: %d, mean %dms, p95 %dms, max %dms\n",
				s.Steps, s.Mean.Milliseconds(), s.P95.Milliseconds(), s.Max.Milliseconds())
		}
	}
	fmt.Fprintf(f.writer, "\n")
}

func (f *ConsoleFormatter) FormatError(err error) {
	red := color.New(color.FgRed).SprintFunc()
	fmt.Fprintf(f.writer, "%s %v\n", red("Error:"), err)
}

func (f *ConsoleFormatter) FormatHeader(version string) {
	bold := color.New(color.Bold).SprintFunc()
	fmt.Fprintf(f.writer, "%s %s\n", bold("uispec"), version)
}
