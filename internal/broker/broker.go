package broker

import (
	"context"
	"time"
)

// MessageKind tells consumers how a message body is framed.
type MessageKind int

const (
	// KindText carries a plain character sequence (typically JSON).
	KindText MessageKind = iota + 1

	// KindStructured carries an object serialised to bytes.
	KindStructured
)

// String returns the lower-case kind name used in logs, headers and metrics.
func (k MessageKind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindStructured:
		return "structured"
	default:
		return "unknown"
	}
}

// Content types set by the publisher.
const (
	ContentTypeText     = "text/plain; charset=utf-8"
	ContentTypeBinary   = "application/octet-stream"
	ContentTypeProtobuf = "application/x-protobuf"
)

// Message is the transport-native unit handed to a Session.
type Message struct {
	ID          string
	Kind        MessageKind
	ContentType string
	Body        []byte
	Timestamp   time.Time
}

// Topic identifies a publish destination. It is only meaningful for the
// Session that resolved it.
type Topic struct {
	name string
}

// NewTopic returns a Topic handle. Adapters call this after validating name.
func NewTopic(name string) Topic {
	return Topic{name: name}
}

// Name returns the destination name.
func (t Topic) Name() string {
	return t.name
}

// IsZero reports whether the handle was never resolved.
func (t Topic) IsZero() bool {
	return t.name == ""
}

// ConnectionFactory creates connections to one kind of broker.
type ConnectionFactory interface {
	// CreateConnection opens a network connection using props.
	// Missing or malformed properties are reported wrapping ErrInvalidProperty.
	CreateConnection(ctx context.Context, props Properties) (Connection, error)
}

// Connection is an open link to a broker.
type Connection interface {
	// Start enables message flow. Sessions of a connection that was never
	// started refuse to publish.
	Start(ctx context.Context) error

	// CreateSession opens an auto-acknowledge session on the connection.
	CreateSession(ctx context.Context) (Session, error)

	// Close releases the connection. Calling it twice is harmless.
	Close() error
}

// Session publishes messages to topics it resolved.
type Session interface {
	// CreateTopic validates name for this transport and returns its handle.
	// Invalid names are reported wrapping ErrInvalidTopic.
	CreateTopic(name string) (Topic, error)

	// Publish sends msg to topic once. It blocks until the transport accepts
	// the message or ctx ends.
	Publish(ctx context.Context, topic Topic, msg *Message) error

	// Close releases the session. Calling it twice is harmless.
	Close() error
}
