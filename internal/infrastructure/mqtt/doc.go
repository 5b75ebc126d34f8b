// Package mqtt is the MQTT connection factory for the topic publisher.
//
// It adapts github.com/eclipse/paho.mqtt.golang to the broker.ConnectionFactory
// contract. A connection is one paho client with a clean session; a session
// publishes with the QoS and retain flag read from the connection properties.
//
// # Properties
//
//   - broker.url (required): tcp://host:1883, ssl://host:8883, ws://host/mqtt
//   - broker.client_id: defaults to "topology-publisher-<random>"
//   - broker.username / broker.password
//   - mqtt.qos: 0, 1 or 2 (default 1)
//   - mqtt.retained: default false
//
// # Wire format
//
// MQTT 3.1.1 has no per-message headers, so only the message body travels.
// Consumers tell text from structured payloads by the topic they subscribe to.
//
// # Usage
//
//	registry.Register(mqtt.FactoryName, mqtt.NewFactory(logger))
//
// Topics are published verbatim and must not contain the + or # wildcards.
package mqtt
