package common

import "errors"

// Error taxonomy shared by repositories, services and handlers.
// Wrap with fmt.Errorf("%w: ...: %w", ErrX, cause) and match with errors.Is.
var (
	// ErrValidation malformed or missing request fields (400)
	ErrValidation = errors.New("validation error")
	// ErrUpstream user profile service unreachable or non-2xx (500)
	ErrUpstream = errors.New("upstream error")
	// ErrStore persistence failure (500)
	ErrStore = errors.New("store error")

	ErrUnauthorized = errors.New("unauthorized")
)
