package nats

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/nats-io/nats.go"

	"github.com/nerrad567/topology-publisher/internal/broker"
)

// FactoryName is the conventional registry name for this factory.
const FactoryName = "nats"

// Header names set on every published message.
const (
	HeaderContentType = "Content-Type"
	HeaderKind        = "Message-Kind"
	HeaderID          = "Message-Id"
	HeaderTimestamp   = "Message-Timestamp"
)

const defaultConnectTimeout = 10 * time.Second

// conn is the subset of *nats.Conn used by sessions.
type conn interface {
	PublishMsg(m *nats.Msg) error
	Flush() error
	FlushWithContext(ctx context.Context) error
	IsConnected() bool
	Close()
}

// Factory creates NATS connections.
type Factory struct {
	// dial is swapped in tests.
	dial func(url string, opts ...nats.Option) (conn, error)
}

// NewFactory returns a Factory.
func NewFactory() *Factory {
	return &Factory{
		dial: func(url string, opts ...nats.Option) (conn, error) {
			return nats.Connect(url, opts...)
		},
	}
}

// CreateConnection connects to the servers listed in broker.url.
// Reconnection is disabled; a dropped connection fails the next publish.
func (f *Factory) CreateConnection(ctx context.Context, props broker.Properties) (broker.Connection, error) {
	url, err := broker.Require(props, broker.PropURL)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	timeout := defaultConnectTimeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
	}

	nc, err := f.dial(url, connectOptions(props, timeout)...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrConnectionFailed, url, err)
	}
	return &Connection{nc: nc}, nil
}

func connectOptions(props broker.Properties, timeout time.Duration) []nats.Option {
	opts := []nats.Option{
		nats.Timeout(timeout),
		nats.NoReconnect(),
	}
	if name := broker.String(props, broker.PropClientID, ""); name != "" {
		opts = append(opts, nats.Name(name))
	}
	if user := broker.String(props, broker.PropUsername, ""); user != "" {
		opts = append(opts, nats.UserInfo(user, broker.String(props, broker.PropPassword, "")))
	}
	return opts
}

// Connection is one NATS client connection.
type Connection struct {
	nc      conn
	started bool
	closed  bool
}

// Start enables publishing.
func (c *Connection) Start(context.Context) error {
	if c.closed {
		return broker.ErrClosed
	}
	c.started = true
	return nil
}

// CreateSession returns a session on this connection.
func (c *Connection) CreateSession(context.Context) (broker.Session, error) {
	if c.closed {
		return nil, broker.ErrClosed
	}
	return &Session{conn: c}, nil
}

// Close closes the client connection.
func (c *Connection) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	c.nc.Close()
	return nil
}

// Session publishes on one NATS connection.
type Session struct {
	conn   *Connection
	closed bool
}

// CreateTopic validates name as a NATS publish subject.
func (s *Session) CreateTopic(name string) (broker.Topic, error) {
	if err := validateSubject(name); err != nil {
		return broker.Topic{}, err
	}
	return broker.NewTopic(name), nil
}

// Publish sends msg with its metadata headers and flushes, so a nil error
// means the server has the message.
func (s *Session) Publish(ctx context.Context, topic broker.Topic, msg *broker.Message) error {
	switch {
	case s.closed || s.conn.closed:
		return broker.ErrClosed
	case !s.conn.started:
		return broker.ErrNotStarted
	case !s.conn.nc.IsConnected():
		return ErrNotConnected
	}

	if err := s.conn.nc.PublishMsg(newMsg(topic.Name(), msg)); err != nil {
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}

	var err error
	if _, ok := ctx.Deadline(); ok {
		err = s.conn.nc.FlushWithContext(ctx)
	} else {
		err = s.conn.nc.Flush()
	}
	if err != nil {
		return fmt.Errorf("%w: flush: %w", ErrPublishFailed, err)
	}
	return nil
}

// Close marks the session closed.
func (s *Session) Close() error {
	s.closed = true
	return nil
}

func newMsg(subject string, msg *broker.Message) *nats.Msg {
	m := nats.NewMsg(subject)
	m.Data = msg.Body
	m.Header.Set(HeaderKind, msg.Kind.String())
	if msg.ContentType != "" {
		m.Header.Set(HeaderContentType, msg.ContentType)
	}
	if msg.ID != "" {
		m.Header.Set(HeaderID, msg.ID)
	}
	if !msg.Timestamp.IsZero() {
		m.Header.Set(HeaderTimestamp, msg.Timestamp.Format(time.RFC3339Nano))
	}
	return m
}

// validateSubject rejects subjects a publisher may not use: empty tokens,
// whitespace, and the * and > wildcards.
func validateSubject(name string) error {
	if name == "" {
		return fmt.Errorf("%w: subject cannot be empty", broker.ErrInvalidTopic)
	}
	if strings.IndexFunc(name, unicode.IsSpace) >= 0 {
		return fmt.Errorf("%w: subject %q contains whitespace", broker.ErrInvalidTopic, name)
	}
	for _, token := range strings.Split(name, ".") {
		switch token {
		case "":
			return fmt.Errorf("%w: subject %q has an empty token", broker.ErrInvalidTopic, name)
		case "*", ">":
			return fmt.Errorf("%w: wildcards not allowed in publish subject %q", broker.ErrInvalidTopic, name)
		}
	}
	return nil
}
