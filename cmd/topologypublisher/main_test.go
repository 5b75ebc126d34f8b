package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nerrad567/topology-publisher/internal/audit"
	"github.com/nerrad567/topology-publisher/internal/infrastructure/database"
	"github.com/nerrad567/topology-publisher/internal/publisher"
)

func writeTestConfig(t *testing.T, content string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	t.Setenv("TOPOPUB_CONFIG", path)
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// TestRun_InvalidConfig verifies run fails with an invalid config path.
func TestRun_InvalidConfig(t *testing.T) {
	t.Setenv("TOPOPUB_CONFIG", "/nonexistent/path/config.yaml")

	if err := run(testContext(t)); err == nil {
		t.Fatal("run() should fail with invalid config path")
	}
}

// TestRun_MemoryBroker publishes the default script through the in-process
// broker and checks every attempt reached the audit trail.
func TestRun_MemoryBroker(t *testing.T) {
	auditPath := filepath.Join(t.TempDir(), "audit.db")
	writeTestConfig(t, `
publisher:
  topic: "topology"
  interval: 0
  encoding: "text"
broker:
  connectionfactory.name: "memory"
audit:
  enabled: true
  path: "`+auditPath+`"
logging:
  level: "error"
`)

	if err := run(testContext(t)); err != nil {
		t.Fatalf("run() error = %v", err)
	}

	ctx := context.Background()
	db, err := database.Open(ctx, database.Config{Path: auditPath})
	if err != nil {
		t.Fatalf("reopening audit database: %v", err)
	}
	defer db.Close()

	res, err := audit.NewSQLiteRepository(db.DB).List(ctx, audit.Filter{Topic: "topology"})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if res.Total != 6 {
		t.Errorf("audited publishes = %d, want 6", res.Total)
	}
	for _, e := range res.Entries {
		if e.Status != "ok" || e.Kind != "text" {
			t.Errorf("entry = %+v", e)
		}
	}
}

func TestRun_Structured(t *testing.T) {
	writeTestConfig(t, `
publisher:
  topic: "topology"
  interval: 0
  encoding: "structured"
broker:
  connectionfactory.name: "memory"
logging:
  level: "error"
`)

	if err := run(testContext(t)); err != nil {
		t.Fatalf("run() error = %v", err)
	}
}

func TestRun_HTTPPortInvalid(t *testing.T) {
	writeTestConfig(t, `
broker:
  connectionfactory.name: "memory"
http:
  enabled: true
  port: 0
`)

	if err := run(testContext(t)); err == nil {
		t.Fatal("run() with http.port 0 should fail validation")
	}
}

func TestRun_UnknownFactory(t *testing.T) {
	writeTestConfig(t, `
publisher:
  topic: "topology"
  interval: 0
broker:
  connectionfactory.name: "jms"
logging:
  level: "error"
`)

	err := run(testContext(t))
	if !errors.Is(err, publisher.ErrNaming) {
		t.Errorf("run() error = %v, want ErrNaming", err)
	}
}

func TestRun_MissingFactoryProperty(t *testing.T) {
	writeTestConfig(t, `
publisher:
  topic: "topology"
logging:
  level: "error"
`)

	err := run(testContext(t))
	if !errors.Is(err, publisher.ErrConfiguration) {
		t.Errorf("run() error = %v, want ErrConfiguration", err)
	}
}

func TestRun_Cancelled(t *testing.T) {
	writeTestConfig(t, `
publisher:
  topic: "topology"
  interval: 60000
broker:
  connectionfactory.name: "memory"
logging:
  level: "error"
`)
	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)

	if err := run(ctx); err != nil {
		t.Errorf("run() after interrupt error = %v, want nil", err)
	}
}
