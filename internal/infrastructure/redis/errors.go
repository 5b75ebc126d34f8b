package redis

import "errors"

// Domain-specific errors for Redis operations.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrConnectionFailed is returned when the server does not answer PING.
	ErrConnectionFailed = errors.New("redis: connection failed")

	// ErrPublishFailed is returned when PUBLISH fails.
	ErrPublishFailed = errors.New("redis: publish failed")
)
