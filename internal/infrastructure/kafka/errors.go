package kafka

import "errors"

// Domain-specific errors for Kafka operations.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrConnectionFailed is returned when no bootstrap broker can be dialled.
	ErrConnectionFailed = errors.New("kafka: connection failed")

	// ErrPublishFailed is returned when a record is not acknowledged.
	ErrPublishFailed = errors.New("kafka: publish failed")
)
