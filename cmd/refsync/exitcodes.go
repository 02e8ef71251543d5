package main

// Exit codes shared across commands
const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError = 2 // Configuration error (missing config, invalid paths)
	ExitNotFound    = 3 // Paper, shelf, or tag not found
	ExitAuthError   = 4 // Missing or rejected ADS API key
	ExitRateLimited = 5 // ADS rate limit exhausted
)
