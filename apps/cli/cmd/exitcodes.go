package cmd

// Exit codes for the req CLI
const (
	// ExitSuccess indicates the request completed with a success status
	ExitSuccess = 0

	// ExitHTTPError indicates a non-2xx response without --ignore-status
	ExitHTTPError = 1

	// ExitInputError indicates malformed command-line input
	ExitInputError = 2

	// ExitIOError indicates a local file read or write failure
	ExitIOError = 3

	// ExitNetworkError indicates a network/connection error
	ExitNetworkError = 4

	// ExitUsageError indicates invalid CLI usage
	ExitUsageError = 64
)
