package mqtt

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/nerrad567/topology-publisher/internal/broker"
)

// Maximum payload size for MQTT messages (1MB).
// This prevents resource exhaustion and aligns with typical broker limits.
const maxPayloadSize = 1 << 20 // 1MB

// maxTopicLength is the MQTT limit on topic name length in bytes.
const maxTopicLength = 65535

// Session publishes on one MQTT connection.
type Session struct {
	conn     *Connection
	qos      byte
	retained bool
	closed   bool
}

// CreateTopic validates name as an MQTT publish topic.
func (s *Session) CreateTopic(name string) (broker.Topic, error) {
	if err := validateTopic(name); err != nil {
		return broker.Topic{}, err
	}
	return broker.NewTopic(name), nil
}

// Publish sends the message body to topic and waits for the broker's
// acknowledgment at the session QoS (QoS 0 returns once written).
func (s *Session) Publish(ctx context.Context, topic broker.Topic, msg *broker.Message) error {
	if s.closed {
		return broker.ErrClosed
	}
	if err := s.conn.usable(); err != nil {
		return err
	}
	if len(msg.Body) > maxPayloadSize {
		return fmt.Errorf("%w: payload size %d exceeds maximum %d bytes", ErrPublishFailed, len(msg.Body), maxPayloadSize)
	}

	token := s.conn.client.Publish(topic.Name(), s.qos, s.retained, msg.Body)
	if err := waitToken(ctx, token); err != nil {
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}
	return nil
}

// Close marks the session closed. The underlying client belongs to the
// connection.
func (s *Session) Close() error {
	s.closed = true
	return nil
}

func validateTopic(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: topic cannot be empty", broker.ErrInvalidTopic)
	case len(name) > maxTopicLength:
		return fmt.Errorf("%w: topic longer than %d bytes", broker.ErrInvalidTopic, maxTopicLength)
	case !utf8.ValidString(name):
		return fmt.Errorf("%w: topic is not valid UTF-8", broker.ErrInvalidTopic)
	case strings.ContainsAny(name, "+#"):
		return fmt.Errorf("%w: wildcards not allowed in publish topic %q", broker.ErrInvalidTopic, name)
	case strings.ContainsRune(name, 0):
		return fmt.Errorf("%w: topic contains NUL", broker.ErrInvalidTopic)
	}
	return nil
}
