package publisher

import (
	"context"
	"errors"
	"fmt"

	"github.com/nerrad567/topology-publisher/internal/broker"
)

// fakeBroker is a scriptable broker that counts what is open and what was
// sent. Each fail* field makes the matching step return that error.
type fakeBroker struct {
	failCreate  error
	failStart   error
	failSession error
	failTopic   error
	failPublish error

	failSessionClose error
	failConnClose    error
	panicConnClose   bool

	openConns    int
	openSessions int
	creates      int
	publishes    int
	closeOrder   []string
	sent         []*broker.Message
}

func (f *fakeBroker) CreateConnection(ctx context.Context, _ broker.Properties) (broker.Connection, error) {
	f.creates++
	if f.failCreate != nil {
		return nil, f.failCreate
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.openConns++
	return &fakeConn{b: f}, nil
}

type fakeConn struct {
	b      *fakeBroker
	closed bool
}

func (c *fakeConn) Start(context.Context) error {
	return c.b.failStart
}

func (c *fakeConn) CreateSession(context.Context) (broker.Session, error) {
	if c.b.failSession != nil {
		return nil, c.b.failSession
	}
	c.b.openSessions++
	return &fakeSession{b: c.b}, nil
}

func (c *fakeConn) Close() error {
	c.b.closeOrder = append(c.b.closeOrder, "connection")
	if !c.closed {
		c.closed = true
		c.b.openConns--
	}
	if c.b.panicConnClose {
		panic("boom")
	}
	return c.b.failConnClose
}

type fakeSession struct {
	b      *fakeBroker
	closed bool
}

func (s *fakeSession) CreateTopic(name string) (broker.Topic, error) {
	if s.b.failTopic != nil {
		return broker.Topic{}, s.b.failTopic
	}
	return broker.NewTopic(name), nil
}

func (s *fakeSession) Publish(_ context.Context, _ broker.Topic, msg *broker.Message) error {
	s.b.publishes++
	if s.b.failPublish != nil {
		return s.b.failPublish
	}
	s.b.sent = append(s.b.sent, msg)
	return nil
}

func (s *fakeSession) Close() error {
	s.b.closeOrder = append(s.b.closeOrder, "session")
	if !s.closed {
		s.closed = true
		s.b.openSessions--
	}
	return s.b.failSessionClose
}

func newFakeRegistry(f *fakeBroker) *broker.Registry {
	reg := broker.NewRegistry()
	reg.Register("fake", f)
	return reg
}

func fakeProps() broker.Map {
	return broker.Map{broker.PropConnectionFactory: "fake"}
}

// binaryValue is a structured payload with a fixed serialisation.
type binaryValue struct {
	data []byte
	err  error
}

func (b binaryValue) MarshalBinary() ([]byte, error) {
	return b.data, b.err
}

// pointerValue dereferences its receiver, so a nil *pointerValue panics.
type pointerValue struct {
	data []byte
}

func (p *pointerValue) MarshalBinary() ([]byte, error) {
	return p.data, nil
}

var errTransport = errors.New("transport down")

func wrapTransport(step string) error {
	return fmt.Errorf("%s: %w", step, errTransport)
}
