package main

// Exit codes returned by every snapkit command.
const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError = 2 // Configuration error (unreadable config, invalid log level)
	ExitDataError   = 3 // Data error (validation failure, malformed bundle)
	ExitNotFound    = 4 // Referenced row does not exist
)
