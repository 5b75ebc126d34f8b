package publisher

import "errors"

// Sentinel errors for publisher operations.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrConfiguration is returned when connection properties are missing or unreadable.
	ErrConfiguration = errors.New("publisher: configuration error")

	// ErrNaming is returned when the connection factory cannot be resolved.
	ErrNaming = errors.New("publisher: connection factory lookup failed")

	// ErrConnection is returned when the broker is unreachable or rejects the connection.
	ErrConnection = errors.New("publisher: connection failed")

	// ErrPublish is returned when a send on an open session fails.
	ErrPublish = errors.New("publisher: publish failed")

	// ErrUnsupportedPayload is returned when a value has no wire encoding.
	ErrUnsupportedPayload = errors.New("publisher: unsupported payload")

	// ErrState is returned when an operation is invoked in the wrong lifecycle state.
	ErrState = errors.New("publisher: invalid state")
)
