// Topology Publisher
//
// Connects to a pub/sub broker, publishes a scripted sequence of topology
// lifecycle events to one topic, and exits. The broker is selected by the
// connectionfactory.name property in the broker section of the config.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/nerrad567/topology-publisher/migrations"

	"github.com/nerrad567/topology-publisher/internal/api"
	"github.com/nerrad567/topology-publisher/internal/audit"
	"github.com/nerrad567/topology-publisher/internal/broker"
	"github.com/nerrad567/topology-publisher/internal/broker/inmem"
	"github.com/nerrad567/topology-publisher/internal/infrastructure/config"
	"github.com/nerrad567/topology-publisher/internal/infrastructure/database"
	"github.com/nerrad567/topology-publisher/internal/infrastructure/influxdb"
	"github.com/nerrad567/topology-publisher/internal/infrastructure/kafka"
	"github.com/nerrad567/topology-publisher/internal/infrastructure/logging"
	"github.com/nerrad567/topology-publisher/internal/infrastructure/mqtt"
	"github.com/nerrad567/topology-publisher/internal/infrastructure/nats"
	"github.com/nerrad567/topology-publisher/internal/infrastructure/redis"
	"github.com/nerrad567/topology-publisher/internal/metrics"
	"github.com/nerrad567/topology-publisher/internal/publisher"
	"github.com/nerrad567/topology-publisher/internal/sequencer"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// memoryFactoryName selects the in-process broker, for dry runs.
const memoryFactoryName = "memory"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the application logic, separated from main for testability.
// Every resource acquired is released before it returns, on success or error.
func run(ctx context.Context) error {
	log := logging.Default()
	log.Info("starting topology publisher",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := config.Path()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log = logging.New(cfg.Logging, version)
	log.Info("configuration loaded", "path", configPath)

	mode, err := sequencer.ParseMode(cfg.Publisher.Encoding)
	if err != nil {
		return err
	}

	recorders, closeRecorders, err := openRecorders(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeRecorders()

	session := publisher.NewSession(
		cfg.Publisher.Topic,
		cfg.Broker.Properties(),
		newRegistry(log),
		publisher.WithLogger(log),
		publisher.WithRecorder(recorders.list()...),
	)
	defer session.Close()

	if cfg.HTTP.Enabled {
		srv, err := api.New(api.Deps{
			Config:  cfg.HTTP,
			Logger:  log.With("component", "http"),
			Session: session,
			Metrics: recorders.metrics.Handler(),
			Audit:   recorders.auditRepo,
			Version: version,
		})
		if err != nil {
			return fmt.Errorf("creating http server: %w", err)
		}
		if err := srv.Start(ctx); err != nil {
			return fmt.Errorf("starting http server: %w", err)
		}
		defer func() {
			if closeErr := srv.Close(); closeErr != nil {
				log.Error("error closing http server", "error", closeErr)
			}
		}()
	}

	if err := session.Connect(ctx); err != nil {
		return fmt.Errorf("connecting publisher: %w", err)
	}

	seq := sequencer.New(session,
		sequencer.WithInterval(cfg.GetInterval()),
		sequencer.WithMode(mode),
		sequencer.WithLogger(log),
	)
	events := sequencer.DefaultScript()
	if err := seq.Run(ctx, events); err != nil {
		if errors.Is(err, context.Canceled) {
			log.Info("interrupted, shutting down")
			return nil
		}
		return fmt.Errorf("publishing events: %w", err)
	}

	log.Info("all events published", "count", len(events), "topic", session.TopicName())
	return nil
}

// newRegistry registers every available connection factory.
func newRegistry(log *logging.Logger) *broker.Registry {
	reg := broker.NewRegistry()
	reg.Register(mqtt.FactoryName, mqtt.NewFactory(log.With("component", "mqtt")))
	reg.Register(nats.FactoryName, nats.NewFactory())
	reg.Register(kafka.FactoryName, kafka.NewFactory())
	reg.Register(redis.FactoryName, redis.NewFactory())
	reg.Register(memoryFactoryName, inmem.New().Factory())
	return reg
}

// recorderSet holds the optional publish observers.
type recorderSet struct {
	metrics   *metrics.Metrics
	auditRepo audit.Repository
	audit     *audit.Recorder
	influx    *influxdb.Client
}

func (r *recorderSet) list() []publisher.Recorder {
	recs := []publisher.Recorder{r.metrics}
	if r.audit != nil {
		recs = append(recs, r.audit)
	}
	if r.influx != nil {
		recs = append(recs, r.influx)
	}
	return recs
}

// openRecorders opens the audit database and InfluxDB client when enabled.
// The returned func closes whatever was opened.
func openRecorders(ctx context.Context, cfg *config.Config, log *logging.Logger) (*recorderSet, func(), error) {
	set := &recorderSet{metrics: metrics.New()}
	var closers []func()
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if cfg.Audit.Enabled {
		db, err := database.Open(ctx, database.Config{
			Path:        cfg.Audit.Path,
			WALMode:     cfg.Audit.WALMode,
			BusyTimeout: cfg.GetBusyTimeout(),
		})
		if err != nil {
			return nil, nil, fmt.Errorf("opening audit database: %w", err)
		}
		closers = append(closers, func() {
			if closeErr := db.Close(); closeErr != nil {
				log.Error("error closing audit database", "error", closeErr)
			}
		})
		if err := db.Migrate(ctx); err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("running migrations: %w", err)
		}
		repo := audit.NewSQLiteRepository(db.DB)
		set.auditRepo = repo
		set.audit = audit.NewRecorder(repo, log)
		log.Info("publish audit enabled", "path", cfg.Audit.Path)
	}

	if cfg.InfluxDB.Enabled {
		client, err := influxdb.Connect(ctx, cfg.InfluxDB)
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		client.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		closers = append(closers, func() {
			if closeErr := client.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		})
		set.influx = client
		log.Info("InfluxDB connected", "url", cfg.InfluxDB.URL, "bucket", cfg.InfluxDB.Bucket)
	}

	return set, closeAll, nil
}
