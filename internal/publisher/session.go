package publisher

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nerrad567/topology-publisher/internal/broker"
)

// Session publishes events to one named topic.
//
// Thread Safety:
//   - A Session has a single owner. Connect, Publish and Close must not be
//     called concurrently.
//   - State and TopicName may be read from any goroutine.
type Session struct {
	topicName string
	props     broker.Properties

	manager   *ConnectionManager
	encoder   *Encoder
	logger    Logger
	recorders []Recorder
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger used for lifecycle and diagnostic output.
func WithLogger(l Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithRecorder adds recorders that receive a Record for every send attempt.
func WithRecorder(r ...Recorder) Option {
	return func(s *Session) {
		for _, rec := range r {
			if rec != nil {
				s.recorders = append(s.recorders, rec)
			}
		}
	}
}

// WithEncoder replaces the default Encoder.
func WithEncoder(e *Encoder) Option {
	return func(s *Session) {
		if e != nil {
			s.encoder = e
		}
	}
}

// NewSession creates an unconnected session for topicName.
//
// The default LogRecorder always runs first; recorders added with
// WithRecorder follow in order.
//
// Parameters:
//   - topicName: Topic to bind at Connect
//   - props: Connection properties, read once at Connect
//   - registry: Resolves the connection factory named in props
//   - opts: Logger, recorders or a replacement Encoder
//
// Returns:
//   - *Session: Ready for Connect; Close is safe to defer immediately
func NewSession(topicName string, props broker.Properties, registry *broker.Registry, opts ...Option) *Session {
	s := &Session{
		topicName: topicName,
		props:     props,
		encoder:   NewEncoder(),
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.manager = NewConnectionManager(registry, s.logger)
	s.recorders = append([]Recorder{LogRecorder{Logger: s.logger}}, s.recorders...)
	return s
}

// Connect opens the broker connection and binds the topic.
// See ConnectionManager.Connect for the error contract.
func (s *Session) Connect(ctx context.Context) error {
	_, err := s.manager.Connect(ctx, s.topicName, s.props)
	return err
}

// Publish encodes ev and sends it to the bound topic exactly once.
//
// It fails with ErrState unless connected, without touching the network.
// Encoding failures wrap ErrUnsupportedPayload; send failures wrap ErrPublish
// and the transport error. There is no retry.
func (s *Session) Publish(ctx context.Context, ev Event) error {
	if state := s.manager.State(); state != StateConnected {
		return fmt.Errorf("%w: publish while %s", ErrState, state)
	}
	if ev == nil {
		return fmt.Errorf("%w: nil event", ErrUnsupportedPayload)
	}

	msg, err := s.encoder.Encode(ev.Payload())
	if err != nil {
		return err
	}

	start := time.Now()
	err = s.manager.send(ctx, msg)
	rec := Record{
		Topic:     s.manager.Topic().Name(),
		MessageID: msg.ID,
		Kind:      msg.Kind,
		Summary:   Summarize(msg),
		Bytes:     len(msg.Body),
		Duration:  time.Since(start),
		Timestamp: msg.Timestamp,
		Err:       err,
	}
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrPublish, err)
		rec.Err = err
	}

	for _, r := range s.recorders {
		s.record(ctx, r, rec)
	}
	return err
}

// record hands rec to r. A panicking recorder is logged and skipped.
func (s *Session) record(ctx context.Context, r Recorder, rec Record) {
	defer func() {
		if p := recover(); p != nil {
			s.logger.Error("panic in publish recorder", "recorder", fmt.Sprintf("%T", r), "panic", p)
		}
	}()
	r.RecordPublish(ctx, rec)
}

// Close releases all broker resources. It never fails and is safe to defer
// immediately after NewSession.
func (s *Session) Close() {
	s.manager.Close()
}

// State returns the lifecycle state.
func (s *Session) State() State {
	return s.manager.State()
}

// TopicName returns the topic the session was created for.
func (s *Session) TopicName() string {
	return s.topicName
}
