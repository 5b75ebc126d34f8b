package redis

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/nerrad567/topology-publisher/internal/broker"
)

// FactoryName is the conventional registry name for this factory.
const FactoryName = "redis"

// client is the subset of *redis.Client used here.
type client interface {
	Ping(ctx context.Context) *redis.StatusCmd
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
	Close() error
}

// Factory creates Redis connections.
type Factory struct {
	// newClient is swapped in tests.
	newClient func(opts *redis.Options) client
}

// NewFactory returns a Factory.
func NewFactory() *Factory {
	return &Factory{
		newClient: func(opts *redis.Options) client {
			return redis.NewClient(opts)
		},
	}
}

// parseOptions builds client options from the connection properties.
func parseOptions(props broker.Properties) (*redis.Options, error) {
	raw, err := broker.Require(props, broker.PropURL)
	if err != nil {
		return nil, err
	}
	opts, err := redis.ParseURL(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", broker.ErrInvalidProperty, broker.PropURL, err)
	}

	if user := broker.String(props, broker.PropUsername, ""); user != "" {
		opts.Username = user
	}
	if pass := broker.String(props, broker.PropPassword, ""); pass != "" {
		opts.Password = pass
	}
	opts.ClientName = broker.String(props, broker.PropClientID, "topology-publisher")
	return opts, nil
}

// CreateConnection opens a client and checks the server with PING.
func (f *Factory) CreateConnection(ctx context.Context, props broker.Properties) (broker.Connection, error) {
	opts, err := parseOptions(props)
	if err != nil {
		return nil, err
	}

	rdb := f.newClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("%w: %s: %w", ErrConnectionFailed, opts.Addr, err)
	}
	return &Connection{rdb: rdb}, nil
}

// Connection is one pinged Redis client.
type Connection struct {
	rdb     client
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

// CreateSession returns a session on this client.
func (c *Connection) CreateSession(context.Context) (broker.Session, error) {
	if c.closed {
		return nil, broker.ErrClosed
	}
	return &Session{conn: c}, nil
}

// Close closes the client and its pool.
func (c *Connection) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	if err := c.rdb.Close(); err != nil {
		return fmt.Errorf("redis: close: %w", err)
	}
	return nil
}

// Session publishes to channels on one client.
type Session struct {
	conn   *Connection
	closed bool
}

// CreateTopic accepts any non-blank channel name.
func (s *Session) CreateTopic(name string) (broker.Topic, error) {
	if strings.TrimSpace(name) == "" {
		return broker.Topic{}, fmt.Errorf("%w: channel cannot be empty", broker.ErrInvalidTopic)
	}
	return broker.NewTopic(name), nil
}

// Publish sends the message body with PUBLISH.
func (s *Session) Publish(ctx context.Context, topic broker.Topic, msg *broker.Message) error {
	switch {
	case s.closed || s.conn.closed:
		return broker.ErrClosed
	case !s.conn.started:
		return broker.ErrNotStarted
	}

	if err := s.conn.rdb.Publish(ctx, topic.Name(), msg.Body).Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}
	return nil
}

// Close marks the session closed.
func (s *Session) Close() error {
	s.closed = true
	return nil
}
