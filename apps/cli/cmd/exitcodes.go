package cmd

// Exit codes for the uispec CLI
const (
	// ExitSuccess indicates all scenarios passed
	ExitSuccess = 0

	// ExitScenarioFailure indicates one or more scenarios failed
	ExitScenarioFailure = 1

	// ExitParseError indicates a scenario file parsing error
	ExitParseError = 2

	// ExitConfigError indicates a configuration error
	ExitConfigError = 3

	// ExitSessionError indicates the remote end could not be reached
	ExitSessionError = 4

	// ExitUsageError indicates invalid CLI usage
	ExitUsageError = 64
)
