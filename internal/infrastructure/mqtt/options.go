package mqtt

import (
	"crypto/tls"
	"fmt"
	"net/url"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/nerrad567/topology-publisher/internal/broker"
)

// Property keys read by this package in addition to the broker.Prop* keys.
const (
	PropQoS      = "mqtt.qos"
	PropRetained = "mqtt.retained"
)

// Connection constants.
const (
	// defaultConnectTimeout bounds the paho connect handshake when the caller
	// supplies no deadline.
	defaultConnectTimeout = 10 * time.Second

	// defaultDisconnectQuiesce is the time to wait for pending operations on disconnect.
	defaultDisconnectQuiesce = 250 // milliseconds

	// defaultKeepAlive is the keepalive interval for the connection.
	defaultKeepAlive = 60 * time.Second

	// defaultQoS is used when mqtt.qos is not set.
	defaultQoS = 1

	// maxQoS is the maximum QoS level supported.
	maxQoS = 2

	// tlsMinVersion is the minimum TLS version for secure connections.
	tlsMinVersion = tls.VersionTLS12

	clientIDPrefix = "topology-publisher-"
)

// settings is the parsed form of the connection properties.
type settings struct {
	brokerURL string
	tls       bool
	clientID  string
	username  string
	password  string
	qos       byte
	retained  bool
}

// parseSettings reads and validates the MQTT connection properties.
func parseSettings(props broker.Properties) (settings, error) {
	raw, err := broker.Require(props, broker.PropURL)
	if err != nil {
		return settings{}, err
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return settings{}, fmt.Errorf("%w: %s %q is not a broker URL", broker.ErrInvalidProperty, broker.PropURL, raw)
	}

	s := settings{brokerURL: raw}
	switch u.Scheme {
	case "tcp", "mqtt", "ws":
	case "ssl", "tls", "mqtts", "wss":
		s.tls = true
	default:
		return settings{}, fmt.Errorf("%w: %s scheme %q not supported", broker.ErrInvalidProperty, broker.PropURL, u.Scheme)
	}

	qos, err := broker.Int(props, PropQoS, defaultQoS)
	if err != nil {
		return settings{}, err
	}
	if qos < 0 || qos > maxQoS {
		return settings{}, fmt.Errorf("%w: %w", broker.ErrInvalidProperty, ErrInvalidQoS)
	}
	s.qos = byte(qos)

	if s.retained, err = broker.Bool(props, PropRetained, false); err != nil {
		return settings{}, err
	}

	s.clientID = broker.String(props, broker.PropClientID, clientIDPrefix+uuid.NewString()[:8])
	s.username = broker.String(props, broker.PropUsername, "")
	s.password = broker.String(props, broker.PropPassword, "")
	return s, nil
}

// buildClientOptions creates paho MQTT options.
//
// Auto-reconnect is off: a publisher session that loses its broker fails the
// next publish and the caller decides whether to build a new session.
func buildClientOptions(s settings, connectTimeout time.Duration) *pahomqtt.ClientOptions {
	opts := pahomqtt.NewClientOptions()

	opts.AddBroker(s.brokerURL)
	opts.SetClientID(s.clientID)

	if s.username != "" {
		opts.SetUsername(s.username)
		opts.SetPassword(s.password)
	}

	// Clean session - no persistent state on the broker
	opts.SetCleanSession(true)

	opts.SetAutoReconnect(false)
	opts.SetConnectRetry(false)
	opts.SetConnectTimeout(connectTimeout)
	opts.SetKeepAlive(defaultKeepAlive)

	if s.tls {
		opts.SetTLSConfig(&tls.Config{
			MinVersion: tlsMinVersion,
		})
	}

	return opts
}
