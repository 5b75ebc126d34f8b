// Package nats is the NATS connection factory for the topic publisher.
//
// It adapts github.com/nats-io/nats.go core publish to the
// broker.ConnectionFactory contract. Each publish is followed by a flush so
// that a returned nil means the server has received the message.
//
// # Properties
//
//   - broker.url (required): nats://host:4222, comma separated for a cluster
//   - broker.client_id: connection name shown in server monitoring
//   - broker.username / broker.password
//
// Message kind, content type, id and timestamp travel as NATS headers.
package nats
