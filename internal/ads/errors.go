package ads

import (
	"errors"
	"fmt"
)

// Common errors returned by the ADS client and sync engine.
var (
	// ErrNoAPIKey indicates no ADS API key was configured. This is a
	// construction-time failure, not a per-call one.
	ErrNoAPIKey = errors.New("ADS API key not configured")

	// ErrUnauthorized indicates the ADS API rejected the key.
	ErrUnauthorized = errors.New("invalid ADS API key")

	// ErrRateLimited indicates the ADS rate limit has been exceeded.
	ErrRateLimited = errors.New("ADS rate limit exceeded")

	// ErrAPIError indicates an unexpected response from the ADS API.
	ErrAPIError = errors.New("ADS API error")
)

// APIError carries the HTTP status of a failed ADS call.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("ADS API error (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("ADS API error (status %d)", e.StatusCode)
}

// IsAuthError returns true if the error indicates an authentication problem.
func IsAuthError(err error) bool {
	if errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrNoAPIKey) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 401 || apiErr.StatusCode == 403
	}
	return false
}

// IsRateLimited returns true if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429
	}
	return false
}
