package influxdb

import (
	"context"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/nerrad567/topology-publisher/internal/publisher"
)

// MeasurementPublish is the measurement name for publish attempts.
const MeasurementPublish = "publish"

// WritePublish queues one point for a publish attempt.
func (c *Client) WritePublish(rec publisher.Record) {
	if !c.IsConnected() {
		return
	}
	c.writer.WritePoint(publishPoint(rec))
}

// RecordPublish implements publisher.Recorder.
func (c *Client) RecordPublish(_ context.Context, rec publisher.Record) {
	c.WritePublish(rec)
}

func publishPoint(rec publisher.Record) *write.Point {
	ts := rec.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	return write.NewPoint(
		MeasurementPublish,
		map[string]string{
			"topic":  rec.Topic,
			"kind":   rec.Kind.String(),
			"status": rec.Status(),
		},
		map[string]any{
			"bytes":       int64(rec.Bytes),
			"duration_ms": float64(rec.Duration) / float64(time.Millisecond),
		},
		ts,
	)
}
