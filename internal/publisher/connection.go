package publisher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/nerrad567/topology-publisher/internal/broker"
)

// Default timeouts, overridable with the connect.timeout and publish.timeout
// properties. A value of 0 leaves the operation bounded only by the caller's
// context.
const (
	DefaultConnectTimeout = 10 * time.Second
	DefaultPublishTimeout = 5 * time.Second
)

// ConnectionManager owns one broker connection bound to one topic.
//
// All resources it acquires are released by Close, which is safe from any
// state. A failed Connect releases whatever it had acquired before returning.
// Only State may be called from goroutines other than the owner.
type ConnectionManager struct {
	registry *broker.Registry
	logger   Logger

	state   atomic.Int32
	conn    broker.Connection
	session broker.Session
	topic   broker.Topic

	connectTimeout time.Duration
	publishTimeout time.Duration
}

// NewConnectionManager returns an unconnected manager that resolves
// connection factories in registry. A nil logger discards output.
func NewConnectionManager(registry *broker.Registry, logger Logger) *ConnectionManager {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &ConnectionManager{
		registry:       registry,
		logger:         logger,
		connectTimeout: DefaultConnectTimeout,
		publishTimeout: DefaultPublishTimeout,
	}
}

// State returns the current lifecycle state.
func (m *ConnectionManager) State() State {
	return State(m.state.Load())
}

func (m *ConnectionManager) setState(s State) {
	m.state.Store(int32(s))
}

// Topic returns the bound topic handle. It is the zero Topic unless connected.
func (m *ConnectionManager) Topic() broker.Topic {
	return m.topic
}

// PublishTimeout returns the send timeout read from the connection properties.
func (m *ConnectionManager) PublishTimeout() time.Duration {
	return m.publishTimeout
}

// Connect binds the manager to topicName on the broker described by props.
//
// It performs the following steps, in order:
//  1. Reads connectionfactory.name and the connect/publish timeouts
//  2. Resolves the named factory in the registry
//  3. Creates and starts a connection
//  4. Opens an auto-acknowledge session
//  5. Resolves topicName on that session
//
// Parameters:
//   - ctx: Bounds the whole sequence together with connect.timeout
//   - topicName: Destination name, validated by the transport
//   - props: Connection properties, read once
//
// Returns:
//   - broker.Topic: The bound topic handle
//   - error: Wraps ErrConfiguration, ErrNaming or ErrConnection, or ErrState
//     when not unconnected. On failure the manager stays unconnected and
//     holds no resources.
func (m *ConnectionManager) Connect(ctx context.Context, topicName string, props broker.Properties) (broker.Topic, error) {
	if state := m.State(); state != StateUnconnected {
		return broker.Topic{}, fmt.Errorf("%w: connect while %s", ErrState, state)
	}
	if strings.TrimSpace(topicName) == "" {
		return broker.Topic{}, fmt.Errorf("%w: topic name is empty", ErrConfiguration)
	}

	factoryName, err := broker.Require(props, broker.PropConnectionFactory)
	if err != nil {
		return broker.Topic{}, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	connectTimeout, err := broker.Duration(props, broker.PropConnectTimeout, DefaultConnectTimeout)
	if err != nil {
		return broker.Topic{}, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	publishTimeout, err := broker.Duration(props, broker.PropPublishTimeout, DefaultPublishTimeout)
	if err != nil {
		return broker.Topic{}, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}

	if m.registry == nil {
		return broker.Topic{}, fmt.Errorf("%w: no registry", ErrNaming)
	}
	factory, err := m.registry.Lookup(factoryName)
	if err != nil {
		return broker.Topic{}, fmt.Errorf("%w: %w", ErrNaming, err)
	}

	ctx, cancel := withTimeout(ctx, connectTimeout)
	defer cancel()

	conn, err := factory.CreateConnection(ctx, props)
	if err != nil {
		return broker.Topic{}, classifyConnectError(err)
	}

	var session broker.Session
	ok := false
	defer func() {
		if !ok {
			m.release(session, conn)
		}
	}()

	if err := conn.Start(ctx); err != nil {
		return broker.Topic{}, classifyConnectError(err)
	}
	session, err = conn.CreateSession(ctx)
	if err != nil {
		return broker.Topic{}, classifyConnectError(err)
	}
	topic, err := session.CreateTopic(topicName)
	if err != nil {
		return broker.Topic{}, classifyConnectError(err)
	}

	ok = true
	m.conn = conn
	m.session = session
	m.topic = topic
	m.connectTimeout = connectTimeout
	m.publishTimeout = publishTimeout
	m.setState(StateConnected)

	m.logger.Info("connected to broker",
		"factory", factoryName,
		"topic", topic.Name(),
	)
	return topic, nil
}

// Close releases the session and then the connection. Release failures are
// logged and suppressed. Close never fails and may be called repeatedly,
// before Connect, or after a failed Connect.
func (m *ConnectionManager) Close() {
	prev := m.State()
	if prev == StateClosed {
		return
	}

	m.release(m.session, m.conn)
	m.session = nil
	m.conn = nil
	m.topic = broker.Topic{}
	m.setState(StateClosed)

	if prev == StateConnected {
		m.logger.Info("disconnected from broker")
	}
}

// send publishes msg on the bound topic, bounded by the publish timeout.
func (m *ConnectionManager) send(ctx context.Context, msg *broker.Message) error {
	if state := m.State(); state != StateConnected || m.session == nil {
		return fmt.Errorf("%w: publish while %s", ErrState, state)
	}
	ctx, cancel := withTimeout(ctx, m.publishTimeout)
	defer cancel()
	return m.session.Publish(ctx, m.topic, msg)
}

// release closes session then conn. Either may be nil.
func (m *ConnectionManager) release(session broker.Session, conn broker.Connection) {
	if session != nil {
		m.closeQuietly("session", session.Close)
	}
	if conn != nil {
		m.closeQuietly("connection", conn.Close)
	}
}

func (m *ConnectionManager) closeQuietly(what string, closeFn func() error) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("panic closing broker "+what, "panic", r)
		}
	}()
	if err := closeFn(); err != nil {
		m.logger.Warn("closing broker "+what, "error", err)
	}
}

func classifyConnectError(err error) error {
	switch {
	case errors.Is(err, broker.ErrInvalidProperty), errors.Is(err, broker.ErrInvalidTopic):
		return fmt.Errorf("%w: %w", ErrConfiguration, err)
	default:
		return fmt.Errorf("%w: %w", ErrConnection, err)
	}
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
