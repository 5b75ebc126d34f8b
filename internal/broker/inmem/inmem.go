// Package inmem provides an in-process topic broker.
//
// Messages published to a topic are delivered, in publish order, to every
// subscription that exists at publish time. Publishing blocks while a
// subscriber's buffer is full, so nothing is dropped silently.
//
// The broker counts open connections and sessions, which makes it useful for
// checking that publishers release everything they acquire.
package inmem

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/nerrad567/topology-publisher/internal/broker"
)

// defaultBuffer is the subscription channel capacity used when none is given.
const defaultBuffer = 64

// Broker is an in-process topic broker. The zero value is not usable; call New.
type Broker struct {
	mu   sync.RWMutex
	subs map[string][]*Subscription

	openConns    atomic.Int64
	openSessions atomic.Int64
}

// New returns an empty broker.
func New() *Broker {
	return &Broker{subs: make(map[string][]*Subscription)}
}

// Subscription receives the messages published to one topic.
type Subscription struct {
	topic string
	ch    chan broker.Message
	done  chan struct{}
	once  sync.Once
	b     *Broker
}

// Subscribe registers a subscription on topic. buffer <= 0 selects a default.
func (b *Broker) Subscribe(topic string, buffer int) *Subscription {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	s := &Subscription{
		topic: topic,
		ch:    make(chan broker.Message, buffer),
		done:  make(chan struct{}),
		b:     b,
	}

	b.mu.Lock()
	b.subs[topic] = append(b.subs[topic], s)
	b.mu.Unlock()

	return s
}

// C returns the delivery channel. It is never closed; select on Done as well
// when waiting after Cancel.
func (s *Subscription) C() <-chan broker.Message {
	return s.ch
}

// Done is closed once the subscription is cancelled.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Cancel removes the subscription. Safe to call more than once.
func (s *Subscription) Cancel() {
	s.once.Do(func() {
		close(s.done)

		s.b.mu.Lock()
		defer s.b.mu.Unlock()
		subs := s.b.subs[s.topic]
		for i, other := range subs {
			if other == s {
				s.b.subs[s.topic] = append(subs[:i:i], subs[i+1:]...)
				break
			}
		}
	})
}

// OpenConnections reports connections created and not yet closed.
func (b *Broker) OpenConnections() int {
	return int(b.openConns.Load())
}

// OpenSessions reports sessions created and not yet closed.
func (b *Broker) OpenSessions() int {
	return int(b.openSessions.Load())
}

// Factory returns a ConnectionFactory whose connections publish into b.
func (b *Broker) Factory() broker.ConnectionFactory {
	return factory{b: b}
}

// deliver fans msg out to the current subscribers of topic.
func (b *Broker) deliver(ctx context.Context, topic string, msg broker.Message) error {
	b.mu.RLock()
	subs := append([]*Subscription(nil), b.subs[topic]...)
	b.mu.RUnlock()

	for _, s := range subs {
		m := msg
		m.Body = append([]byte(nil), msg.Body...)
		select {
		case s.ch <- m:
		case <-s.done:
		case <-ctx.Done():
			return fmt.Errorf("inmem: delivering to %s: %w", topic, ctx.Err())
		}
	}
	return nil
}

type factory struct {
	b *Broker
}

func (f factory) CreateConnection(ctx context.Context, _ broker.Properties) (broker.Connection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.b.openConns.Add(1)
	return &connection{b: f.b}, nil
}

type connection struct {
	b       *Broker
	started atomic.Bool
	closed  atomic.Bool
}

func (c *connection) Start(context.Context) error {
	if c.closed.Load() {
		return broker.ErrClosed
	}
	c.started.Store(true)
	return nil
}

func (c *connection) CreateSession(context.Context) (broker.Session, error) {
	if c.closed.Load() {
		return nil, broker.ErrClosed
	}
	c.b.openSessions.Add(1)
	return &session{conn: c}, nil
}

func (c *connection) Close() error {
	if c.closed.CompareAndSwap(false, true) {
		c.b.openConns.Add(-1)
	}
	return nil
}

type session struct {
	conn   *connection
	closed atomic.Bool
}

func (s *session) CreateTopic(name string) (broker.Topic, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return broker.Topic{}, fmt.Errorf("%w: empty name", broker.ErrInvalidTopic)
	}
	return broker.NewTopic(name), nil
}

func (s *session) Publish(ctx context.Context, topic broker.Topic, msg *broker.Message) error {
	if s.closed.Load() || s.conn.closed.Load() {
		return broker.ErrClosed
	}
	if !s.conn.started.Load() {
		return broker.ErrNotStarted
	}
	return s.conn.b.deliver(ctx, topic.Name(), *msg)
}

func (s *session) Close() error {
	if s.closed.CompareAndSwap(false, true) {
		s.conn.b.openSessions.Add(-1)
	}
	return nil
}
