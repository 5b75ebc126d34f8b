package kafka

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/nerrad567/topology-publisher/internal/broker"
)

// FactoryName is the conventional registry name for this factory.
const FactoryName = "kafka"

// Record header keys.
const (
	HeaderContentType = "content-type"
	HeaderKind        = "message-kind"
	HeaderID          = "message-id"
)

// messageWriter is the subset of *kafka.Writer used by sessions.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Factory creates Kafka connections.
type Factory struct {
	// dial and newWriter are swapped in tests.
	dial      func(ctx context.Context, s settings, addr string) (io.Closer, error)
	newWriter func(s settings) messageWriter
}

// NewFactory returns a Factory.
func NewFactory() *Factory {
	return &Factory{
		dial: func(ctx context.Context, s settings, addr string) (io.Closer, error) {
			d := &kafka.Dialer{
				ClientID:      s.clientID,
				Timeout:       defaultDialTimeout,
				DualStack:     true,
				SASLMechanism: s.sasl,
			}
			return d.DialContext(ctx, "tcp", addr)
		},
		newWriter: func(s settings) messageWriter {
			return newWriter(s)
		},
	}
}

// CreateConnection dials the bootstrap brokers in order and succeeds as soon
// as one accepts, authenticating with SASL when configured.
func (f *Factory) CreateConnection(ctx context.Context, props broker.Properties) (broker.Connection, error) {
	s, err := parseSettings(props)
	if err != nil {
		return nil, err
	}

	var errs []error
	for _, addr := range s.brokers {
		c, err := f.dial(ctx, s, addr)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", addr, err))
			if ctx.Err() != nil {
				break
			}
			continue
		}
		_ = c.Close()
		return &Connection{settings: s, newWriter: f.newWriter}, nil
	}
	return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, errors.Join(errs...))
}

// Connection holds the validated broker settings. Kafka clients are
// connectionless between requests, so the writer in each session manages
// its own broker connections.
type Connection struct {
	settings  settings
	newWriter func(s settings) messageWriter

	started  bool
	closed   bool
	sessions []*Session
}

// Start enables publishing.
func (c *Connection) Start(context.Context) error {
	if c.closed {
		return broker.ErrClosed
	}
	c.started = true
	return nil
}

// CreateSession returns a session with its own writer.
func (c *Connection) CreateSession(context.Context) (broker.Session, error) {
	if c.closed {
		return nil, broker.ErrClosed
	}
	s := &Session{conn: c, writer: c.newWriter(c.settings)}
	c.sessions = append(c.sessions, s)
	return s, nil
}

// Close closes any session still open.
func (c *Connection) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true

	var errs []error
	for _, s := range c.sessions {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	c.sessions = nil
	return errors.Join(errs...)
}

// Session publishes records with one writer.
type Session struct {
	conn   *Connection
	writer messageWriter
	closed bool
}

// CreateTopic validates name as a Kafka topic.
func (s *Session) CreateTopic(name string) (broker.Topic, error) {
	if err := validateTopic(name); err != nil {
		return broker.Topic{}, err
	}
	return broker.NewTopic(name), nil
}

// Publish writes one record and waits for the required acknowledgments.
func (s *Session) Publish(ctx context.Context, topic broker.Topic, msg *broker.Message) error {
	switch {
	case s.closed || s.conn.closed:
		return broker.ErrClosed
	case !s.conn.started:
		return broker.ErrNotStarted
	}

	if err := s.writer.WriteMessages(ctx, newRecord(topic.Name(), msg)); err != nil {
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}
	return nil
}

// Close flushes and closes the writer.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if err := s.writer.Close(); err != nil {
		return fmt.Errorf("kafka: closing writer: %w", err)
	}
	return nil
}

func newRecord(topic string, msg *broker.Message) kafka.Message {
	headers := []kafka.Header{
		{Key: HeaderKind, Value: []byte(msg.Kind.String())},
	}
	if msg.ContentType != "" {
		headers = append(headers, kafka.Header{Key: HeaderContentType, Value: []byte(msg.ContentType)})
	}
	if msg.ID != "" {
		headers = append(headers, kafka.Header{Key: HeaderID, Value: []byte(msg.ID)})
	}

	ts := msg.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	return kafka.Message{
		Topic:   topic,
		Key:     []byte(msg.ID),
		Value:   msg.Body,
		Headers: headers,
		Time:    ts,
	}
}
