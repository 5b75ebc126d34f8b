// Package kafka is the Kafka connection factory for the topic publisher.
//
// It adapts github.com/segmentio/kafka-go to the broker.ConnectionFactory
// contract. Creating a connection dials the bootstrap brokers to prove one is
// reachable; each session owns a synchronous kafka.Writer that sends one
// record per publish and waits for the configured acknowledgments.
//
// # Properties
//
//   - broker.url (required): comma separated bootstrap addresses, host:port
//   - broker.client_id: client id presented to the brokers
//   - broker.username / broker.password: SASL credentials
//   - kafka.sasl.mechanism: PLAIN, SCRAM-SHA-256 or SCRAM-SHA-512
//   - kafka.required_acks: all (default), one or none
//
// Records are keyed by message id. Kind, content type and message id are
// carried as record headers.
package kafka
