package streamable

import "errors"

// Sentinel errors for common failure modes.
var (
	// ErrValidation indicates a request or render configuration failed
	// validation.
	ErrValidation = errors.New("validation error")

	// ErrStreamClosed indicates a mutating operation on a closed stream.
	// The wrapping error names the attempted method.
	ErrStreamClosed = errors.New("stream closed")
)
