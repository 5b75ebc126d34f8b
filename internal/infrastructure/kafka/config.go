package kafka

import (
	"fmt"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl"
	"github.com/segmentio/kafka-go/sasl/plain"
	"github.com/segmentio/kafka-go/sasl/scram"

	"github.com/nerrad567/topology-publisher/internal/broker"
)

// Property keys read by this package in addition to the broker.Prop* keys.
const (
	PropSASLMechanism = "kafka.sasl.mechanism"
	PropRequiredAcks  = "kafka.required_acks"
)

// SASL mechanism names accepted by kafka.sasl.mechanism.
const (
	MechanismPlain       = "PLAIN"
	MechanismSCRAMSHA256 = "SCRAM-SHA-256"
	MechanismSCRAMSHA512 = "SCRAM-SHA-512"
)

const (
	defaultDialTimeout = 10 * time.Second

	// batchTimeout is the writer's linger; with a batch size of one it only
	// bounds how long a lone record waits before being flushed.
	batchTimeout = 10 * time.Millisecond

	// maxTopicLength is Kafka's limit on topic name length.
	maxTopicLength = 249
)

// settings is the parsed form of the connection properties.
type settings struct {
	brokers  []string
	clientID string
	sasl     sasl.Mechanism
	acks     kafka.RequiredAcks
}

func parseSettings(props broker.Properties) (settings, error) {
	raw, err := broker.Require(props, broker.PropURL)
	if err != nil {
		return settings{}, err
	}

	var s settings
	for _, addr := range strings.Split(raw, ",") {
		addr = strings.TrimPrefix(strings.TrimSpace(addr), "kafka://")
		if addr == "" {
			continue
		}
		if !strings.Contains(addr, ":") {
			return settings{}, fmt.Errorf("%w: %s address %q has no port", broker.ErrInvalidProperty, broker.PropURL, addr)
		}
		s.brokers = append(s.brokers, addr)
	}
	if len(s.brokers) == 0 {
		return settings{}, fmt.Errorf("%w: %s lists no brokers", broker.ErrInvalidProperty, broker.PropURL)
	}

	s.clientID = broker.String(props, broker.PropClientID, "topology-publisher")

	if s.sasl, err = saslMechanism(props); err != nil {
		return settings{}, err
	}
	if s.acks, err = requiredAcks(props); err != nil {
		return settings{}, err
	}
	return s, nil
}

func saslMechanism(props broker.Properties) (sasl.Mechanism, error) {
	name := strings.ToUpper(broker.String(props, PropSASLMechanism, ""))
	if name == "" {
		return nil, nil
	}

	user, err := broker.Require(props, broker.PropUsername)
	if err != nil {
		return nil, err
	}
	pass := broker.String(props, broker.PropPassword, "")

	switch name {
	case MechanismPlain:
		return plain.Mechanism{Username: user, Password: pass}, nil
	case MechanismSCRAMSHA256:
		return scramMechanism(scram.SHA256, user, pass)
	case MechanismSCRAMSHA512:
		return scramMechanism(scram.SHA512, user, pass)
	default:
		return nil, fmt.Errorf("%w: %s %q not supported", broker.ErrInvalidProperty, PropSASLMechanism, name)
	}
}

func scramMechanism(algo scram.Algorithm, user, pass string) (sasl.Mechanism, error) {
	m, err := scram.Mechanism(algo, user, pass)
	if err != nil {
		return nil, fmt.Errorf("%w: SASL mechanism: %w", broker.ErrInvalidProperty, err)
	}
	return m, nil
}

func requiredAcks(props broker.Properties) (kafka.RequiredAcks, error) {
	switch v := strings.ToLower(broker.String(props, PropRequiredAcks, "all")); v {
	case "all", "-1":
		return kafka.RequireAll, nil
	case "one", "1":
		return kafka.RequireOne, nil
	case "none", "0":
		return kafka.RequireNone, nil
	default:
		return 0, fmt.Errorf("%w: %s %q must be all, one or none", broker.ErrInvalidProperty, PropRequiredAcks, v)
	}
}

// newWriter builds the synchronous writer used by a session.
func newWriter(s settings) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(s.brokers...),
		Balancer:               &kafka.Hash{},
		BatchSize:              1,
		BatchTimeout:           batchTimeout,
		RequiredAcks:           s.acks,
		AllowAutoTopicCreation: true,
		Transport: &kafka.Transport{
			ClientID: s.clientID,
			SASL:     s.sasl,
		},
	}
}

// validateTopic applies Kafka's topic naming rules.
func validateTopic(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: topic cannot be empty", broker.ErrInvalidTopic)
	case name == "." || name == "..":
		return fmt.Errorf("%w: topic %q is reserved", broker.ErrInvalidTopic, name)
	case len(name) > maxTopicLength:
		return fmt.Errorf("%w: topic longer than %d characters", broker.ErrInvalidTopic, maxTopicLength)
	}
	for _, r := range name {
		legal := r == '.' || r == '_' || r == '-' ||
			(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
		if !legal {
			return fmt.Errorf("%w: topic %q contains %q", broker.ErrInvalidTopic, name, r)
		}
	}
	return nil
}
