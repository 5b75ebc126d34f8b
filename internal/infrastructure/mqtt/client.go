package mqtt

import (
	"context"
	"fmt"
	"sync"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/nerrad567/topology-publisher/internal/broker"
)

// FactoryName is the conventional registry name for this factory.
const FactoryName = "mqtt"

// Logger interface for optional logging support.
// Compatible with logging.Logger and slog.Logger.
type Logger interface {
	Error(msg string, args ...any)
	Warn(msg string, args ...any)
}

// Factory creates MQTT connections.
type Factory struct {
	logger Logger

	// newClient is swapped in tests.
	newClient func(*pahomqtt.ClientOptions) pahomqtt.Client
}

// NewFactory returns a Factory. logger may be nil.
func NewFactory(logger Logger) *Factory {
	return &Factory{
		logger:    logger,
		newClient: pahomqtt.NewClient,
	}
}

// CreateConnection connects a paho client to the broker named by broker.url.
//
// It performs the following setup:
//  1. Reads broker.url, credentials, client id and QoS from props
//  2. Builds client options with a clean session and auto-reconnect off
//  3. Waits for the broker to acknowledge the connection, bounded by ctx
//
// Parameters:
//   - ctx: Bounds the connect handshake; its deadline becomes the paho connect timeout
//   - props: Connection properties (broker.url is required)
//
// Returns:
//   - broker.Connection: Connected, not yet started
//   - error: Wraps broker.ErrInvalidProperty for bad properties, or
//     ErrConnectionFailed if the broker cannot be reached
func (f *Factory) CreateConnection(ctx context.Context, props broker.Properties) (broker.Connection, error) {
	s, err := parseSettings(props)
	if err != nil {
		return nil, err
	}

	timeout := defaultConnectTimeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
	}

	c := &Connection{settings: s, logger: f.logger}
	opts := buildClientOptions(s, timeout)
	opts.SetConnectionLostHandler(func(_ pahomqtt.Client, err error) {
		c.handleConnectionLost(err)
	})

	c.client = f.newClient(opts)
	if err := waitToken(ctx, c.client.Connect()); err != nil {
		c.client.Disconnect(0)
		return nil, fmt.Errorf("%w: %s: %w", ErrConnectionFailed, s.brokerURL, err)
	}

	return c, nil
}

// Connection is one connected paho client.
//
// Thread Safety:
//   - paho invokes the connection-lost handler from its own goroutine, so the
//     lost error is guarded by a mutex.
type Connection struct {
	client   pahomqtt.Client
	settings settings
	logger   Logger

	started bool
	closed  bool

	mu   sync.Mutex
	lost error
}

// Start enables publishing. paho starts message flow on connect, so this
// only flips the started flag.
func (c *Connection) Start(context.Context) error {
	if c.closed {
		return broker.ErrClosed
	}
	c.started = true
	return nil
}

// CreateSession returns a session publishing with the configured QoS and
// retain flag.
func (c *Connection) CreateSession(context.Context) (broker.Session, error) {
	if c.closed {
		return nil, broker.ErrClosed
	}
	return &Session{conn: c, qos: c.settings.qos, retained: c.settings.retained}, nil
}

// Close disconnects from the broker, waiting briefly for in-flight publishes.
func (c *Connection) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	if c.client.IsConnectionOpen() {
		c.client.Disconnect(defaultDisconnectQuiesce)
	}
	return nil
}

// ClientID returns the client identifier presented to the broker.
func (c *Connection) ClientID() string {
	return c.settings.clientID
}

func (c *Connection) handleConnectionLost(err error) {
	c.mu.Lock()
	c.lost = err
	c.mu.Unlock()

	if c.logger != nil {
		c.logger.Warn("MQTT connection lost",
			"broker", c.settings.brokerURL,
			"error", err,
		)
	}
}

// usable reports why the connection cannot publish, or nil.
func (c *Connection) usable() error {
	if c.closed {
		return broker.ErrClosed
	}
	if !c.started {
		return broker.ErrNotStarted
	}
	if !c.client.IsConnectionOpen() {
		c.mu.Lock()
		lost := c.lost
		c.mu.Unlock()
		if lost != nil {
			return fmt.Errorf("%w: %w", ErrNotConnected, lost)
		}
		return ErrNotConnected
	}
	return nil
}

// waitToken blocks until token completes or ctx ends.
func waitToken(ctx context.Context, token pahomqtt.Token) error {
	select {
	case <-token.Done():
		return token.Error()
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", ErrTimeout, ctx.Err())
	}
}
