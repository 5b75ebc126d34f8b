package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/nerrad567/topology-publisher/internal/broker"
)

// DefaultPath is used when TOPOPUB_CONFIG is not set.
const DefaultPath = "configs/config.yaml"

// Config is the root configuration structure for the topology publisher.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Publisher PublisherConfig `yaml:"publisher"`
	Broker    BrokerConfig    `yaml:"broker"`
	Logging   LoggingConfig   `yaml:"logging"`
	Audit     AuditConfig     `yaml:"audit"`
	InfluxDB  InfluxDBConfig  `yaml:"influxdb"`
	HTTP      HTTPConfig      `yaml:"http"`
}

// PublisherConfig controls what is published and how often.
type PublisherConfig struct {
	Topic string `yaml:"topic"`

	// Interval is the pause after each event, in milliseconds. 0 disables it.
	Interval int `yaml:"interval"`

	// Encoding is "text" or "structured".
	Encoding string `yaml:"encoding"`
}

// BrokerConfig is the property set handed to the connection manager.
// Keys are not interpreted here; the selected connection factory reads them.
type BrokerConfig map[string]string

// Properties returns the section as broker properties.
func (b BrokerConfig) Properties() broker.Map {
	return broker.Map(b)
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// AuditConfig contains the SQLite publish audit settings.
type AuditConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"` // seconds
}

// InfluxDBConfig contains InfluxDB connection settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"` // seconds
}

// HTTPConfig contains the health and metrics endpoint settings.
type HTTPConfig struct {
	Enabled bool   `yaml:"enabled"`
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern TOPOPUB_SECTION_KEY, for example
// TOPOPUB_BROKER_URL or TOPOPUB_TOPIC.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// Path returns the config file location, honouring TOPOPUB_CONFIG.
func Path() string {
	if v := os.Getenv("TOPOPUB_CONFIG"); v != "" {
		return v
	}
	return DefaultPath
}

func defaultConfig() *Config {
	return &Config{
		Publisher: PublisherConfig{
			Topic:    "topology",
			Interval: 4000,
			Encoding: "text",
		},
		Broker: BrokerConfig{},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Audit: AuditConfig{
			Path:        "./data/publish-audit.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		InfluxDB: InfluxDBConfig{
			BatchSize:     100,
			FlushInterval: 10,
		},
		HTTP: HTTPConfig{
			Host: "127.0.0.1",
			Port: 9464,
		},
	}
}

// envBrokerKeys maps environment variables onto broker property keys.
var envBrokerKeys = []struct{ env, key string }{
	{"TOPOPUB_BROKER_URL", broker.PropURL},
	{"TOPOPUB_BROKER_USERNAME", broker.PropUsername},
	{"TOPOPUB_BROKER_PASSWORD", broker.PropPassword},
	{"TOPOPUB_CONNECTION_FACTORY", broker.PropConnectionFactory},
}

func applyEnvOverrides(cfg *Config) {
	if cfg.Broker == nil {
		cfg.Broker = BrokerConfig{}
	}
	for _, o := range envBrokerKeys {
		if v := os.Getenv(o.env); v != "" {
			cfg.Broker[o.key] = v
		}
	}

	if v := os.Getenv("TOPOPUB_TOPIC"); v != "" {
		cfg.Publisher.Topic = v
	}
	if v := os.Getenv("TOPOPUB_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}
}

// Validate checks the configuration and reports every problem found.
func (c *Config) Validate() error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if strings.TrimSpace(c.Publisher.Topic) == "" {
		add("publisher.topic is required")
	}
	if c.Publisher.Interval < 0 {
		add("publisher.interval must not be negative")
	}
	switch strings.ToLower(strings.TrimSpace(c.Publisher.Encoding)) {
	case "", "text", "structured":
	default:
		add("publisher.encoding must be text or structured, got %q", c.Publisher.Encoding)
	}

	if c.Audit.Enabled && c.Audit.Path == "" {
		add("audit.path is required when audit is enabled")
	}

	if c.InfluxDB.Enabled {
		if c.InfluxDB.URL == "" {
			add("influxdb.url is required when influxdb is enabled")
		}
		if c.InfluxDB.Bucket == "" {
			add("influxdb.bucket is required when influxdb is enabled")
		}
	}

	if c.HTTP.Enabled && (c.HTTP.Port < 1 || c.HTTP.Port > 65535) {
		add("http.port must be between 1 and 65535")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %w", errors.Join(errs...))
	}
	return nil
}

// GetInterval returns the publisher pause as a Duration.
func (c *Config) GetInterval() time.Duration {
	return time.Duration(c.Publisher.Interval) * time.Millisecond
}

// GetBusyTimeout returns the audit database busy timeout as a Duration.
func (c *Config) GetBusyTimeout() time.Duration {
	return time.Duration(c.Audit.BusyTimeout) * time.Second
}

// GetHTTPAddr returns the listen address for the HTTP endpoint.
func (c *Config) GetHTTPAddr() string {
	return fmt.Sprintf("%s:%d", c.HTTP.Host, c.HTTP.Port)
}
