package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/uispec/uispec/packages/core/config"
	"github.com/uispec/uispec/packages/core/runner"
	"github.com/uispec/uispec/packages/core/testdata"
	"github.com/uispec/uispec/packages/history"
	"github.com/uispec/uispec/packages/output"
	"github.com/uispec/uispec/packages/webdriver"
)

var runCmd = &cobra.Command{
	Use:   "run <file|directory>",
	Short: "Run browser scenarios from uispec files",
	Long: `Run browser scenarios defined in .uispec.yaml files.

Examples:
  uispec run login.uispec.yaml
  uispec run login.uispec.yaml --env staging
  uispec run ./scenarios/ --tags smoke
  uispec run ./scenarios/ --browser firefox --headless=false
  uispec run login.uispec.yaml --name "login" --output html --output-file report.html`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCommand,
}

const (
	// WatchDebounceDelay is the debounce delay for file watch events
	WatchDebounceDelay = 300 * time.Millisecond
)

var (
	envFlag           string
	browserFlag       string
	headlessFlag      bool
	remoteFlag        string
	windowSizeFlag    string
	baseURLFlag       string
	configDirFlag     string
	dataDirFlag       string
	screenshotDirFlag string
	failShotFlag      bool
	nameFlag          string
	tagsFlag          string
	verboseFlag       int // 0=off, 1=-v, 2=-vv for more detail
	quietFlag         bool
	bailFlag          bool
	timeoutFlag       string
	pollIntervalFlag  string
	noColorFlag       bool
	dryRunFlag        bool
	outputFlag        string
	outputFileFlag    string
	watchFlag         bool
	historyDBFlag     string
	logLevelFlag      string
	logFileFlag       string
	strictDataFlag    bool
)

func init() {
	// Core flags
	runCmd.Flags().StringVarP(&envFlag, "env", "e", getEnvString("UISPEC_ENV", config.DefaultEnvironment), "Environment to use (env: UISPEC_ENV)")
	runCmd.Flags().StringVarP(&browserFlag, "browser", "b", getEnvString("UISPEC_BROWSER", ""), "Browser: chrome, firefox, edge, safari (env: UISPEC_BROWSER)")
	runCmd.Flags().BoolVar(&headlessFlag, "headless", getEnvBool("UISPEC_HEADLESS", true), "Run the browser headless (env: UISPEC_HEADLESS)")
	runCmd.Flags().StringVar(&remoteFlag, "remote", getEnvString("UISPEC_REMOTE", "http://localhost:9515"), "WebDriver remote end URL (env: UISPEC_REMOTE)")
	runCmd.Flags().StringVar(&windowSizeFlag, "window-size", getEnvString("UISPEC_WINDOW_SIZE", ""), "Browser window size, e.g. 1920x1080 (env: UISPEC_WINDOW_SIZE)")
	runCmd.Flags().StringVar(&baseURLFlag, "base-url", getEnvString("UISPEC_BASE_URL", ""), "Base URL override for relative navigation (env: UISPEC_BASE_URL)")
	runCmd.Flags().StringVar(&configDirFlag, "config-dir", getEnvString("UISPEC_CONFIG_DIR", "config"), "Directory with named configurations (env: UISPEC_CONFIG_DIR)")
	runCmd.Flags().StringVar(&dataDirFlag, "data-dir", getEnvString("UISPEC_DATA_DIR", "data"), "Directory with test data files (env: UISPEC_DATA_DIR)")
	runCmd.Flags().StringVarP(&nameFlag, "name", "n", "", "Run only scenarios matching name pattern")
	runCmd.Flags().StringVarP(&tagsFlag, "tags", "t", getEnvString("UISPEC_TAGS", ""), "Run only scenarios with specified tags (comma-separated) (env: UISPEC_TAGS)")
	runCmd.Flags().BoolVar(&strictDataFlag, "strict-data", getEnvBool("UISPEC_STRICT_DATA", false), "Fail data loading when any record misses a column (env: UISPEC_STRICT_DATA)")

	// Screenshot flags
	runCmd.Flags().StringVar(&screenshotDirFlag, "screenshot-dir", getEnvString("UISPEC_SCREENSHOT_DIR", "screenshots"), "Directory for screenshots (env: UISPEC_SCREENSHOT_DIR)")
	runCmd.Flags().BoolVar(&failShotFlag, "screenshot-on-failure", getEnvBool("UISPEC_SCREENSHOT_ON_FAILURE", true), "Capture a screenshot when a scenario fails (env: UISPEC_SCREENSHOT_ON_FAILURE)")

	// Output flags
	runCmd.Flags().CountVarP(&verboseFlag, "verbose", "v", "Verbose output (-v, -vv for more detail)")
	runCmd.Flags().BoolVarP(&quietFlag, "quiet", "q", getEnvBool("UISPEC_QUIET", false), "Suppress all output except errors (env: UISPEC_QUIET)")
	runCmd.Flags().BoolVar(&noColorFlag, "no-color", getEnvBool("UISPEC_NO_COLOR", false), "Disable colored output (env: UISPEC_NO_COLOR)")
	runCmd.Flags().StringVarP(&outputFlag, "output", "o", getEnvString("UISPEC_OUTPUT", "console"), "Output format: console, json, html (env: UISPEC_OUTPUT)")
	runCmd.Flags().StringVar(&outputFileFlag, "output-file", getEnvString("UISPEC_OUTPUT_FILE", ""), "Write output to file (default: stdout) (env: UISPEC_OUTPUT_FILE)")
	runCmd.Flags().StringVar(&logLevelFlag, "log-level", getEnvString("UISPEC_LOG_LEVEL", "info"), "Log level: debug, info, warn, error (env: UISPEC_LOG_LEVEL)")
	runCmd.Flags().StringVar(&logFileFlag, "log-file", getEnvString("UISPEC_LOG_FILE", ""), "Also write logs to file (env: UISPEC_LOG_FILE)")

	// Execution flags
	runCmd.Flags().BoolVar(&bailFlag, "bail", getEnvBool("UISPEC_BAIL", false), "Stop on first failure (env: UISPEC_BAIL)")
	runCmd.Flags().StringVar(&timeoutFlag, "timeout", getEnvString("UISPEC_TIMEOUT", "10s"), "Element wait timeout (e.g., 10s, 1m) (env: UISPEC_TIMEOUT)")
	runCmd.Flags().StringVar(&pollIntervalFlag, "poll-interval", getEnvString("UISPEC_POLL_INTERVAL", "250ms"), "Wait poll interval (env: UISPEC_POLL_INTERVAL)")
	runCmd.Flags().BoolVar(&dryRunFlag, "dry-run", false, "Parse and show what would run without executing")
	runCmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "Watch files for changes and re-run scenarios")

	// History flags
	runCmd.Flags().StringVar(&historyDBFlag, "history-db", getEnvString("UISPEC_HISTORY_DB", ""), "SQLite database to record run history (env: UISPEC_HISTORY_DB)")
}

// Environment variable helpers
func getEnvString(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		return val == "true" || val == "1" || val == "yes"
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

// Formatter interface for all output formatters
type Formatter interface {
	FormatResult(result *runner.RunResult)
	FormatError(err error)
	FormatHeader(version string)
}

// Flushable interface for formatters that need to flush output
type Flushable interface {
	Flush(totalDuration time.Duration) error
}

func newFormatter(outWriter *os.File) Formatter {
	switch strings.ToLower(outputFlag) {
	case "json":
		opts := []output.JSONOption{}
		if outWriter != nil {
			opts = append(opts, output.JSONWithWriter(outWriter))
		}
		return output.NewJSONFormatter(opts...)
	case "html":
		opts := []output.HTMLOption{}
		if outWriter != nil {
			opts = append(opts, output.HTMLWithWriter(outWriter))
		}
		return output.NewHTMLFormatter(opts...)
	default: // "console"
		consoleOpts := []output.ConsoleOption{
			output.WithVerbose(verboseFlag > 0),
			output.WithNoColor(noColorFlag || quietFlag),
		}
		if outWriter != nil {
			consoleOpts = append(consoleOpts, output.WithWriter(outWriter))
		}
		return output.NewConsoleFormatter(consoleOpts...)
	}
}

func runCommand(cmd *cobra.Command, args []string) error {
	logger, cleanup, err := setupLogger(logLevelFlag, logFileFlag)
	if err != nil {
		return err
	}
	defer cleanup()

	// Setup output writer
	var outWriter *os.File
	if outputFileFlag != "" {
		outWriter, err = os.Create(outputFileFlag)
		if err != nil {
			return fmt.Errorf("cannot create output file: %w", err)
		}
		defer outWriter.Close()
	}

	formatter := newFormatter(outWriter)
	formatter.FormatHeader(version)

	files, err := collectFiles(args)
	if err != nil {
		formatter.FormatError(err)
		return err
	}
	if len(files) == 0 {
		formatter.FormatError(fmt.Errorf("no .uispec.yaml files found"))
		return fmt.Errorf("no files found")
	}

	var tagsFilter []string
	if tagsFlag != "" {
		for _, t := range strings.Split(tagsFlag, ",") {
			t = strings.TrimSpace(t)
			if t != "" {
				tagsFilter = append(tagsFilter, t)
			}
		}
	}

	timeout, err := time.ParseDuration(timeoutFlag)
	if err != nil {
		return fmt.Errorf("invalid timeout value %q: %w (use format like 10s, 1m, 500ms)", timeoutFlag, err)
	}
	pollInterval, err := time.ParseDuration(pollIntervalFlag)
	if err != nil {
		return fmt.Errorf("invalid poll interval %q: %w", pollIntervalFlag, err)
	}

	// Named configurations: browser settings and environment base URL.
	// CLI flags override whatever the files provide.
	resolver := config.NewResolver(configDirFlag, config.WithLogger(logger))

	browserType := browserFlag
	windowSize := windowSizeFlag
	remoteURL := remoteFlag
	var browserArgs []string
	browserCfg, err := resolver.Browser(envFlag)
	switch {
	case err == nil:
		if browserType == "" {
			browserType = browserCfg.GetString("browser")
		}
		if windowSize == "" {
			windowSize = browserCfg.GetString("window_size")
		}
		if res, ok := browserCfg.Lookup("args"); ok {
			for _, arg := range res.Array() {
				browserArgs = append(browserArgs, arg.String())
			}
		}
		if !cmd.Flags().Changed("remote") && os.Getenv("UISPEC_REMOTE") == "" {
			if url := browserCfg.GetString("remote"); url != "" {
				remoteURL = url
			}
		}
		if !cmd.Flags().Changed("headless") && os.Getenv("UISPEC_HEADLESS") == "" {
			if _, ok := browserCfg.Lookup("headless"); ok {
				headlessFlag = browserCfg.GetBool("headless")
			}
		}
	case errors.Is(err, config.ErrNotFound):
		logger.Debug("no browser configuration", "environment", envFlag)
	default:
		return fmt.Errorf("browser configuration: %w", err)
	}
	if browserType == "" {
		browserType = webdriver.BrowserChrome
	}

	// Environment config values are exposed as scenario variables; data
	// rows override them at run time.
	variables := map[string]any{}
	baseURL := baseURLFlag
	envCfg, err := resolver.Load("environment", envFlag)
	switch {
	case err == nil:
		for k, v := range envCfg {
			variables[k] = v
		}
		if baseURL == "" {
			baseURL = envCfg.GetString("base_url")
		}
	case errors.Is(err, config.ErrNotFound):
		logger.Debug("no environment configuration", "environment", envFlag)
	default:
		return fmt.Errorf("environment configuration: %w", err)
	}

	if testCfg, err := resolver.Test(envFlag); err == nil {
		if vars, ok := testCfg["variables"].(map[string]any); ok {
			for k, v := range vars {
				variables[k] = v
			}
		}
	} else if !errors.Is(err, config.ErrNotFound) {
		return fmt.Errorf("test configuration: %w", err)
	}

	factory, err := webdriver.NewFactory(remoteURL, webdriver.BrowserOptions{
		Type:       browserType,
		Headless:   headlessFlag,
		WindowSize: windowSize,
		Args:       browserArgs,
	}, webdriver.WithFactoryLogger(logger))
	if err != nil {
		return err
	}

	loaderOpts := []testdata.Option{testdata.WithLogger(logger)}
	if strictDataFlag {
		loaderOpts = append(loaderOpts, testdata.WithStrictColumns())
	}
	loader := testdata.NewLoader(dataDirFlag, loaderOpts...)

	cfg := runner.Config{
		Environment:         envFlag,
		BaseURL:             baseURL,
		Timeout:             timeout,
		PollInterval:        pollInterval,
		Bail:                bailFlag,
		NameFilter:          nameFlag,
		TagsFilter:          tagsFilter,
		ScreenshotDir:       screenshotDirFlag,
		ScreenshotOnFailure: failShotFlag,
		DryRun:              dryRunFlag,
		Variables:           variables,
		Logger:              logger,
	}
	r := runner.New(cfg, factory.NewSession, loader)

	var store *history.Store
	if historyDBFlag != "" {
		store, err = history.Open(cmd.Context(), historyDBFlag)
		if err != nil {
			return err
		}
		defer store.Close()
	}

	// Run all files once; reused by watch mode.
	runTests := func(ctx context.Context, formatter Formatter) (int, int, int, time.Duration) {
		totalPassed := 0
		totalFailed := 0
		totalSkipped := 0
		startTime := time.Now()
		var results []*runner.RunResult

		for _, file := range files {
			result, err := r.RunFile(ctx, file)
			if err != nil {
				formatter.FormatError(err)
				totalFailed++
				if bailFlag {
					break
				}
				continue
			}

			formatter.FormatResult(result)
			results = append(results, result)
			totalPassed += result.Passed
			totalFailed += result.Failed
			totalSkipped += result.Skipped

			if bailFlag && result.Failed > 0 {
				break
			}
		}

		duration := time.Since(startTime)

		if store != nil && !dryRunFlag {
			run := history.Run{
				ID:          uuid.NewString(),
				StartedAt:   startTime.UTC(),
				Environment: envFlag,
				Browser:     browserType,
				Passed:      totalPassed,
				Failed:      totalFailed,
				Skipped:     totalSkipped,
				Duration:    duration,
			}
			if err := store.Record(ctx, run, results); err != nil {
				logger.Warn("recording run history", "error", err)
			}
		}

		return totalPassed, totalFailed, totalSkipped, duration
	}

	_, totalFailed, _, totalDuration := runTests(cmd.Context(), formatter)

	// Flush output for formatters that accumulate results
	if flushable, ok := formatter.(Flushable); ok {
		if err := flushable.Flush(totalDuration); err != nil {
			return fmt.Errorf("error writing output: %w", err)
		}
	}

	// If watch mode is not enabled, exit normally
	if !watchFlag {
		if totalFailed > 0 {
			os.Exit(ExitScenarioFailure)
		}
		return nil
	}

	// Watch mode: set up file watcher
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	watchedDirs := make(map[string]bool)
	for _, file := range files {
		dir := filepath.Dir(file)
		if !watchedDirs[dir] {
			if err := watcher.Add(dir); err != nil {
				formatter.FormatError(fmt.Errorf("failed to watch %s: %w", dir, err))
			}
			watchedDirs[dir] = true
		}
	}

	// Also watch the original args if they're directories
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err == nil && info.IsDir() {
			_ = filepath.Walk(arg, func(path string, info os.FileInfo, err error) error {
				if err != nil {
					return err
				}
				if info.IsDir() && !watchedDirs[path] {
					_ = watcher.Add(path)
					watchedDirs[path] = true
				}
				return nil
			})
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "\nWatching for changes... (press Ctrl+C to stop)\n\n")

	// Debounce timer for rapid file changes
	var debounceTimer *time.Timer

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if event.Has(fsnotify.Write) && isScenarioFile(event.Name) {
				if debounceTimer != nil {
					debounceTimer.Stop()
				}
				debounceTimer = time.AfterFunc(WatchDebounceDelay, func() {
					fmt.Fprintf(cmd.OutOrStdout(), "\n\nFile changed: %s\nRe-running scenarios...\n\n", event.Name)

					// Fresh formatter so accumulating formats start clean
					watchFormatter := newFormatter(nil)
					_, _, _, duration := runTests(cmd.Context(), watchFormatter)
					if flushable, ok := watchFormatter.(Flushable); ok {
						_ = flushable.Flush(duration)
					}

					fmt.Fprintf(cmd.OutOrStdout(), "\nWatching for changes... (press Ctrl+C to stop)\n")
				})
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			formatter.FormatError(fmt.Errorf("watcher error: %w", err))
		}
	}
}

func collectFiles(args []string) ([]string, error) {
	var files []string

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("cannot access %s: %w", arg, err)
		}

		if info.IsDir() {
			err := filepath.Walk(arg, func(path string, info os.FileInfo, err error) error {
				if err != nil {
					return err
				}
				if !info.IsDir() && isScenarioFile(path) {
					files = append(files, path)
				}
				return nil
			})
			if err != nil {
				return nil, err
			}
		} else {
			if isScenarioFile(arg) {
				files = append(files, arg)
			}
		}
	}

	return files, nil
}

func isScenarioFile(path string) bool {
	return strings.HasSuffix(path, ".uispec.yaml") || strings.HasSuffix(path, ".uispec.yml")
}
