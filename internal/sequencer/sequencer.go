// Package sequencer publishes a scripted sequence of topology events with
// fixed pacing. It drives a publisher session for demos and smoke tests.
package sequencer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nerrad567/topology-publisher/internal/publisher"
	"github.com/nerrad567/topology-publisher/internal/topology"
)

// DefaultInterval is the pause after each published event.
const DefaultInterval = 4 * time.Second

// Mode selects the wire form of published events.
type Mode string

const (
	// ModeText publishes the canonical JSON text of each event.
	ModeText Mode = "text"

	// ModeStructured publishes the protobuf Struct form of each event.
	ModeStructured Mode = "structured"
)

// ParseMode parses a mode name. The empty string selects ModeText.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeText:
		return ModeText, nil
	case ModeStructured:
		return ModeStructured, nil
	default:
		return "", fmt.Errorf("sequencer: unknown encoding mode %q (want text or structured)", s)
	}
}

// Publisher is the session the sequencer publishes through.
type Publisher interface {
	Publish(ctx context.Context, ev publisher.Event) error
}

// Sequencer publishes events in order.
type Sequencer struct {
	pub      Publisher
	interval time.Duration
	mode     Mode
	logger   publisher.Logger
	sleep    func(ctx context.Context, d time.Duration) error
}

// Option configures a Sequencer.
type Option func(*Sequencer)

// WithInterval sets the pause after each event. Zero disables pacing.
func WithInterval(d time.Duration) Option {
	return func(s *Sequencer) {
		if d >= 0 {
			s.interval = d
		}
	}
}

// WithMode sets the wire form.
func WithMode(m Mode) Option {
	return func(s *Sequencer) {
		s.mode = m
	}
}

// WithLogger sets the progress logger.
func WithLogger(l publisher.Logger) Option {
	return func(s *Sequencer) {
		if l != nil {
			s.logger = l
		}
	}
}

// New returns a Sequencer publishing through pub.
func New(pub Publisher, opts ...Option) *Sequencer {
	s := &Sequencer{
		pub:      pub,
		interval: DefaultInterval,
		mode:     ModeText,
		logger:   slog.New(slog.DiscardHandler),
		sleep:    sleepContext,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run publishes events in order, pausing after each one. It stops at the
// first failure or when ctx is cancelled.
func (s *Sequencer) Run(ctx context.Context, events []topology.Event) error {
	for i, ev := range events {
		payload, err := s.payload(ev)
		if err != nil {
			return fmt.Errorf("sequencer: event %d (%s): %w", i+1, ev.Type(), err)
		}
		if err := s.pub.Publish(ctx, payload); err != nil {
			return fmt.Errorf("sequencer: event %d (%s): %w", i+1, ev.Type(), err)
		}
		s.logger.Debug("topology event published",
			"seq", i+1,
			"event_type", ev.Type(),
			"mode", s.mode,
		)

		if s.interval > 0 {
			if err := s.sleep(ctx, s.interval); err != nil {
				return fmt.Errorf("sequencer: stopped after event %d: %w", i+1, err)
			}
		}
	}
	return nil
}

// payload normalises ev to the configured wire form.
func (s *Sequencer) payload(ev topology.Event) (publisher.Payload, error) {
	switch s.mode {
	case ModeStructured:
		st, err := topology.ToStruct(ev)
		if err != nil {
			return publisher.Payload{}, err
		}
		return publisher.Proto(st), nil
	case ModeText:
		data, err := topology.Marshal(ev)
		if err != nil {
			return publisher.Payload{}, err
		}
		return publisher.Text(string(data)), nil
	default:
		return publisher.Payload{}, fmt.Errorf("unknown encoding mode %q", s.mode)
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
