package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nerrad567/topology-publisher/internal/broker"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	path := writeConfig(t, `
publisher:
  topic: "topology"
  interval: 250
  encoding: "structured"
broker:
  connectionfactory.name: "mqtt"
  broker.url: "tcp://localhost:1883"
  mqtt.qos: "1"
  connect.timeout: "3s"
audit:
  enabled: true
  path: "/tmp/audit.db"
http:
  enabled: true
  port: 9000
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Publisher.Encoding != "structured" {
		t.Errorf("Publisher.Encoding = %q, want structured", cfg.Publisher.Encoding)
	}
	if got := cfg.GetInterval(); got != 250*time.Millisecond {
		t.Errorf("GetInterval() = %v, want 250ms", got)
	}
	props := cfg.Broker.Properties()
	if v, _ := props.Get(broker.PropConnectionFactory); v != "mqtt" {
		t.Errorf("connection factory = %q, want mqtt", v)
	}
	if v, _ := props.Get("mqtt.qos"); v != "1" {
		t.Errorf("mqtt.qos = %q, want 1", v)
	}
	if cfg.GetHTTPAddr() != "127.0.0.1:9000" {
		t.Errorf("GetHTTPAddr() = %q", cfg.GetHTTPAddr())
	}
	// Defaults survive for unset fields
	if cfg.Logging.Format != "json" || cfg.GetBusyTimeout() != 5*time.Second {
		t.Errorf("defaults lost: logging=%+v busy=%v", cfg.Logging, cfg.GetBusyTimeout())
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/path/config.yaml"); err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	if _, err := Load(writeConfig(t, "invalid: [yaml: content")); err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, `
publisher:
  topic: "from-file"
broker:
  connectionfactory.name: "mqtt"
  broker.url: "tcp://file:1883"
`)
	t.Setenv("TOPOPUB_TOPIC", "from-env")
	t.Setenv("TOPOPUB_BROKER_URL", "tcp://env:1883")
	t.Setenv("TOPOPUB_BROKER_USERNAME", "svc")
	t.Setenv("TOPOPUB_BROKER_PASSWORD", "secret")
	t.Setenv("TOPOPUB_CONNECTION_FACTORY", "nats")
	t.Setenv("TOPOPUB_INFLUXDB_TOKEN", "tok")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Publisher.Topic != "from-env" {
		t.Errorf("Topic = %q, want from-env", cfg.Publisher.Topic)
	}
	want := map[string]string{
		broker.PropURL:               "tcp://env:1883",
		broker.PropUsername:          "svc",
		broker.PropPassword:          "secret",
		broker.PropConnectionFactory: "nats",
	}
	for k, v := range want {
		if cfg.Broker[k] != v {
			t.Errorf("Broker[%s] = %q, want %q", k, cfg.Broker[k], v)
		}
	}
	if cfg.InfluxDB.Token != "tok" {
		t.Errorf("InfluxDB.Token = %q, want tok", cfg.InfluxDB.Token)
	}
}

func TestLoad_EmptyBrokerSectionWithEnv(t *testing.T) {
	path := writeConfig(t, "broker:\n")
	t.Setenv("TOPOPUB_CONNECTION_FACTORY", "memory")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Broker[broker.PropConnectionFactory] != "memory" {
		t.Errorf("Broker = %v", cfg.Broker)
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := defaultConfig()
	cfg.Publisher.Topic = " "
	cfg.Publisher.Interval = -1
	cfg.Publisher.Encoding = "xml"
	cfg.Audit = AuditConfig{Enabled: true}
	cfg.InfluxDB = InfluxDBConfig{Enabled: true}
	cfg.HTTP = HTTPConfig{Enabled: true, Port: 70000}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() error = nil")
	}
	for _, want := range []string{
		"publisher.topic", "publisher.interval", "publisher.encoding",
		"audit.path", "influxdb.url", "influxdb.bucket", "http.port",
	} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
}

func TestValidate_Defaults(t *testing.T) {
	if err := defaultConfig().Validate(); err != nil {
		t.Errorf("defaultConfig().Validate() error = %v", err)
	}
}

func TestValidate_IgnoresBrokerKeys(t *testing.T) {
	cfg := defaultConfig()
	cfg.Broker = BrokerConfig{"anything": "goes"}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestPath(t *testing.T) {
	t.Setenv("TOPOPUB_CONFIG", "")
	if Path() != DefaultPath {
		t.Errorf("Path() = %q, want %q", Path(), DefaultPath)
	}
	t.Setenv("TOPOPUB_CONFIG", "/etc/topopub.yaml")
	if Path() != "/etc/topopub.yaml" {
		t.Errorf("Path() = %q", Path())
	}
}
