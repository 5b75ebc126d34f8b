package audit

import (
	"context"
	"time"

	"github.com/nerrad567/topology-publisher/internal/publisher"
)

// writeTimeout bounds a single insert so a slow disk cannot stall publishing.
const writeTimeout = 2 * time.Second

// Logger is the subset of logging used by Recorder.
type Logger interface {
	Warn(msg string, args ...any)
}

// Recorder writes every publish attempt to a Repository. Write failures are
// logged and otherwise ignored.
type Recorder struct {
	repo   Repository
	logger Logger
}

// NewRecorder returns a Recorder over repo. logger may be nil.
func NewRecorder(repo Repository, logger Logger) *Recorder {
	return &Recorder{repo: repo, logger: logger}
}

// RecordPublish implements publisher.Recorder.
func (r *Recorder) RecordPublish(ctx context.Context, rec publisher.Record) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), writeTimeout)
	defer cancel()

	if err := r.repo.Create(ctx, EntryFromRecord(rec)); err != nil && r.logger != nil {
		r.logger.Warn("publish audit write failed", "topic", rec.Topic, "error", err)
	}
}

// EntryFromRecord converts a publish record to an audit entry.
func EntryFromRecord(rec publisher.Record) *Entry {
	e := &Entry{
		Topic:     rec.Topic,
		MessageID: rec.MessageID,
		Kind:      rec.Kind.String(),
		Status:    rec.Status(),
		Summary:   rec.Summary,
		Bytes:     rec.Bytes,
		Duration:  rec.Duration,
		CreatedAt: rec.Timestamp,
	}
	if rec.Err != nil {
		e.Error = rec.Err.Error()
	}
	return e
}
