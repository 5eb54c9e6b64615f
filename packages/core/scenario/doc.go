// Package scenario parses .uispec.yaml scenario files.
//
// A scenario file holds one or more YAML documents, each describing a
// named browser scenario: optional tags, an optional test-data file
// reference for data-driven runs, and an ordered list of steps. Step
// arguments may contain {{variable}} placeholders resolved at run time.
package scenario
