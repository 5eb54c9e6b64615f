package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
)

var forceInit bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new uispec project",
	Long: `Initialize a new uispec project in the current directory.

This creates:
  - config/browser.yaml              - Browser configuration (named environments)
  - config/browser_default.yaml      - Browser configuration (--env default)
  - config/environment.yaml          - Base URL (named environments)
  - config/environment_default.yaml  - Base URL (--env default)
  - config/environment_dev.yaml      - Dev environment override
  - config/test.yaml                 - Scenario variables (named environments)
  - config/test_default.yaml         - Scenario variables (--env default)
  - data/logins.csv                  - Example data file
  - scenarios/login.uispec.yaml      - Example scenario

The default environment resolves only environment-qualified files, so
the _default variants serve a plain "uispec run"; the unqualified files
are the shared fallback for every named environment.

Examples:
  uispec init
  uispec init --force`,
	RunE: initCommand,
}

func init() {
	initCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "Overwrite existing files")
}

const initBrowserConfig = `browser: chrome
headless: true
window_size: 1920x1080
`

const initEnvironmentConfig = `base_url: http://localhost:3000
`

const initEnvironmentDevConfig = `base_url: http://localhost:3000
`

const initTestConfig = `variables:
  site_name: Example
`

const initLoginsData = `username,password
alice,secret1
bob,secret2
`

const initExampleScenario = `name: login
tags: [smoke]
data: logins.csv
steps:
  - navigate: /login
  - type: {selector: "#username", text: "{{username}}"}
  - type: {selector: "#password", text: "{{password}}"}
  - click: "button[type=submit]"
  - wait_visible: {selector: ".dashboard", timeout: 5s}
  - assert_title: {contains: "Dashboard"}
`

func initCommand(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}

	files := map[string]string{
		filepath.Join(cwd, "config", "browser.yaml"):             initBrowserConfig,
		filepath.Join(cwd, "config", "browser_default.yaml"):     initBrowserConfig,
		filepath.Join(cwd, "config", "environment.yaml"):         initEnvironmentConfig,
		filepath.Join(cwd, "config", "environment_default.yaml"): initEnvironmentConfig,
		filepath.Join(cwd, "config", "environment_dev.yaml"):     initEnvironmentDevConfig,
		filepath.Join(cwd, "config", "test.yaml"):                initTestConfig,
		filepath.Join(cwd, "config", "test_default.yaml"):        initTestConfig,
		filepath.Join(cwd, "data", "logins.csv"):                 initLoginsData,
		filepath.Join(cwd, "scenarios", "login.uispec.yaml"):     initExampleScenario,
	}

	paths := make([]string, 0, len(files))
	for path := range files {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	if !forceInit {
		for _, path := range paths {
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("file already exists: %s (use --force to overwrite)", path)
			}
		}
	}

	for _, path := range paths {
		content := files[path]
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return fmt.Errorf("failed to create %s: %w", path, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", path)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "\nRun the example with:\n  uispec run scenarios/login.uispec.yaml\n")
	return nil
}
