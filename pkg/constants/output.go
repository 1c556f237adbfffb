package constants

// Process Exit Codes.
const (
	// ExitSuccess is returned after a complete transfer.
	ExitSuccess = 0

	// ExitFailure is returned on any fatal condition (usage, open, allocation,
	// read, write or close failure).
	ExitFailure = 1
)

// CLI Output Formatting
//
// These constants control the visual formatting of CLI output.
const (
	// SeparatorWidth is the character width of console separators/dividers.
	// Used for the benchmark report table.
	SeparatorWidth = 60

	// ProgressLogIntervalSeconds is the minimum delay between two progress
	// log lines emitted while copying.
	ProgressLogIntervalSeconds = 1
)
