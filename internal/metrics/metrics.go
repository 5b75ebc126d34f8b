// Package metrics exposes publish counters and latencies to Prometheus.
//
// Metrics, all labelled by topic and kind, with status on the counters:
//   - topology_publisher_messages_published_total  {topic, kind, status}
//   - topology_publisher_published_bytes_total     {topic, kind}
//   - topology_publisher_publish_duration_seconds  {topic, kind}
//
// Collectors live on a private registry so tests and embedding programs do
// not collide with the global default registry.
package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nerrad567/topology-publisher/internal/publisher"
)

// Namespace prefixes every metric name.
const Namespace = "topology_publisher"

// Metrics records publish attempts. It implements publisher.Recorder.
type Metrics struct {
	registry *prometheus.Registry

	published *prometheus.CounterVec
	bytes     *prometheus.CounterVec
	duration  *prometheus.HistogramVec
}

// New registers the publish collectors, plus Go runtime and process
// collectors, on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		published: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "messages_published_total",
				Help:      "Publish attempts by outcome.",
			},
			// status label has values: ok, error
			[]string{"topic", "kind", "status"},
		),
		bytes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "published_bytes_total",
				Help:      "Body bytes accepted by the transport.",
			},
			[]string{"topic", "kind"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Name:      "publish_duration_seconds",
				Help:      "Time spent handing a message to the transport.",
				Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
			},
			[]string{"topic", "kind"},
		),
	}
}

// RecordPublish implements publisher.Recorder.
func (m *Metrics) RecordPublish(_ context.Context, rec publisher.Record) {
	kind := rec.Kind.String()
	m.published.WithLabelValues(rec.Topic, kind, rec.Status()).Inc()
	m.duration.WithLabelValues(rec.Topic, kind).Observe(rec.Duration.Seconds())
	if rec.Err == nil {
		m.bytes.WithLabelValues(rec.Topic, kind).Add(float64(rec.Bytes))
	}
}

// Registry returns the registry backing the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
