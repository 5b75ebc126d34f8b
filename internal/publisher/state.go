package publisher

// State is the lifecycle state of a connection.
type State int

const (
	// StateUnconnected is the initial state and the state after a failed connect.
	StateUnconnected State = iota

	// StateConnected means a session and topic handle are held.
	StateConnected

	// StateClosed is terminal. A closed connection cannot be reopened.
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUnconnected:
		return "unconnected"
	case StateConnected:
		return "connected"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Logger is the logging surface used by the publisher.
// Compatible with logging.Logger and slog.Logger.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}
