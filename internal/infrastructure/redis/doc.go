// Package redis is the Redis pub/sub connection factory for the topic
// publisher.
//
// It adapts github.com/redis/go-redis/v9 to the broker.ConnectionFactory
// contract: a connection is a pinged client, a topic is a channel and a
// publish is one PUBLISH command.
//
// # Properties
//
//   - broker.url (required): redis://[user:pass@]host:6379/db or rediss://
//   - broker.username / broker.password: override URL credentials
//   - broker.client_id: CLIENT SETNAME value
//
// Redis pub/sub has no message metadata; only the body travels and a message
// published while nobody is subscribed is dropped by the server.
package redis
