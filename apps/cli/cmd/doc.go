// Package cmd implements the uispec CLI commands using Cobra.
//
// Available commands:
//   - run: Execute browser scenarios from uispec files
//   - validate: Check scenario syntax and data references without executing
//   - list: Display all scenarios defined in files
//   - init: Create a new uispec project with example files
//   - history: Show recorded runs from the history database
//   - version: Show uispec version information
//
// The CLI supports various flags for filtering, output formatting,
// screenshot capture, and watch mode for development workflows.
package cmd
