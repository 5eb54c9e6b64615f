// Package runner executes scenario files against live browser
// sessions. Each scenario gets a fresh session; data-driven scenarios
// run once per data row with the row's values bound as variables. Step
// latencies are recorded into HDR histograms for the output formatters.
package runner
