package nats

import "errors"

// Domain-specific errors for NATS operations.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrConnectionFailed is returned when the server cannot be reached.
	ErrConnectionFailed = errors.New("nats: connection failed")

	// ErrNotConnected is returned when publishing while the connection is down.
	ErrNotConnected = errors.New("nats: not connected")

	// ErrPublishFailed is returned when a publish or its flush fails.
	ErrPublishFailed = errors.New("nats: publish failed")
)
