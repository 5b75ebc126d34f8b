// Package broker defines the transport contract the publisher core drives.
//
// The contract mirrors the classic topic-messaging shape:
//
//	Registry ──lookup──▶ ConnectionFactory ──▶ Connection ──▶ Session ──▶ Topic
//
// A ConnectionFactory is resolved by name from a Registry, creates a
// Connection from an opaque Properties set, and the Connection hands out an
// auto-acknowledge Session that can resolve topics and publish messages.
//
// Concrete factories live in internal/infrastructure (mqtt, nats, kafka,
// redis) and in internal/broker/inmem for in-process use.
//
// # Usage
//
//	reg := broker.NewRegistry()
//	reg.Register("mqtt", mqtt.Factory{})
//
//	factory, err := reg.Lookup("mqtt")
//	conn, err := factory.CreateConnection(ctx, broker.Map{"broker.url": "tcp://localhost:1883"})
//	defer conn.Close()
package broker
