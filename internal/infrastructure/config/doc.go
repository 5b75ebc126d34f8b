// Package config loads and validates the topology publisher configuration.
//
// Values come from, in increasing precedence: built-in defaults, the YAML
// file, and TOPOPUB_* environment variables. Broker credentials should be
// supplied through the environment rather than the file.
//
// The broker section is passed through untouched as the property set for
// the connection manager, so broker-specific keys (mqtt.qos, kafka.acks, ...)
// are checked by the selected connection factory at connect time, not here.
//
// Usage:
//
//	cfg, err := config.Load(config.Path())
//	if err != nil {
//	    return err
//	}
//	fmt.Println(cfg.Publisher.Topic)
package config
