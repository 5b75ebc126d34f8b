package broker

import "errors"

// Sentinel errors shared by every transport adapter.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrFactoryNotFound is returned when no factory is registered under a name.
	ErrFactoryNotFound = errors.New("broker: connection factory not found")

	// ErrInvalidProperty is returned when a connection property is missing or malformed.
	ErrInvalidProperty = errors.New("broker: invalid connection property")

	// ErrInvalidTopic is returned when a topic name is not valid for the transport.
	ErrInvalidTopic = errors.New("broker: invalid topic name")

	// ErrNotStarted is returned when publishing on a connection that was never started.
	ErrNotStarted = errors.New("broker: connection not started")

	// ErrClosed is returned when using a closed connection or session.
	ErrClosed = errors.New("broker: closed")
)
