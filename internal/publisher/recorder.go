package publisher

import (
	"context"
	"time"

	"github.com/nerrad567/topology-publisher/internal/broker"
)

// Record describes one send attempt.
type Record struct {
	Topic     string
	MessageID string
	Kind      broker.MessageKind
	Summary   string
	Bytes     int
	Duration  time.Duration
	Timestamp time.Time

	// Err is nil when the transport accepted the message.
	Err error
}

// Status returns "ok" or "error".
func (r Record) Status() string {
	if r.Err != nil {
		return "error"
	}
	return "ok"
}

// Recorder observes send attempts. Implementations must not block for long
// and cannot affect the outcome of Publish.
type Recorder interface {
	RecordPublish(ctx context.Context, r Record)
}

// RecorderFunc adapts a function to Recorder.
type RecorderFunc func(ctx context.Context, r Record)

// RecordPublish implements Recorder.
func (f RecorderFunc) RecordPublish(ctx context.Context, r Record) {
	f(ctx, r)
}

// LogRecorder writes each record to a Logger.
type LogRecorder struct {
	Logger Logger
}

// RecordPublish implements Recorder.
func (l LogRecorder) RecordPublish(_ context.Context, r Record) {
	if l.Logger == nil {
		return
	}
	if r.Err != nil {
		l.Logger.Warn(r.Kind.String()+" message not sent",
			"topic", r.Topic,
			"message_id", r.MessageID,
			"error", r.Err,
		)
		return
	}
	l.Logger.Info(r.Kind.String()+" message sent",
		"topic", r.Topic,
		"message_id", r.MessageID,
		"summary", r.Summary,
		"bytes", r.Bytes,
	)
}
