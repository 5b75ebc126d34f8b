package publisher

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/nerrad567/topology-publisher/internal/broker"
)

func TestConnect_ThenClose_ReleasesEverything(t *testing.T) {
	f := &fakeBroker{}
	m := NewConnectionManager(newFakeRegistry(f), nil)

	topic, err := m.Connect(context.Background(), "topology", fakeProps())
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	if topic.Name() != "topology" {
		t.Errorf("topic = %q, want topology", topic.Name())
	}
	if m.State() != StateConnected {
		t.Errorf("State() = %s, want connected", m.State())
	}

	m.Close()

	if f.openConns != 0 || f.openSessions != 0 {
		t.Errorf("open after Close = %d conns, %d sessions; want 0, 0", f.openConns, f.openSessions)
	}
	if want := []string{"session", "connection"}; !reflect.DeepEqual(f.closeOrder, want) {
		t.Errorf("close order = %v, want %v", f.closeOrder, want)
	}
	if m.State() != StateClosed {
		t.Errorf("State() = %s, want closed", m.State())
	}
	if !m.Topic().IsZero() {
		t.Errorf("Topic() after Close = %q, want zero", m.Topic().Name())
	}
}

func TestClose_AnyState(t *testing.T) {
	t.Run("before connect", func(t *testing.T) {
		m := NewConnectionManager(broker.NewRegistry(), nil)
		m.Close()
		if m.State() != StateClosed {
			t.Errorf("State() = %s, want closed", m.State())
		}
	})

	t.Run("twice", func(t *testing.T) {
		f := &fakeBroker{}
		m := NewConnectionManager(newFakeRegistry(f), nil)
		if _, err := m.Connect(context.Background(), "t", fakeProps()); err != nil {
			t.Fatalf("Connect() error = %v", err)
		}
		m.Close()
		m.Close()
		if len(f.closeOrder) != 2 {
			t.Errorf("close calls = %v, want one of each", f.closeOrder)
		}
	})

	t.Run("after failed connect", func(t *testing.T) {
		f := &fakeBroker{failStart: wrapTransport("start")}
		m := NewConnectionManager(newFakeRegistry(f), nil)
		if _, err := m.Connect(context.Background(), "t", fakeProps()); err == nil {
			t.Fatal("Connect() error = nil, want failure")
		}
		m.Close()
		if m.State() != StateClosed {
			t.Errorf("State() = %s, want closed", m.State())
		}
	})
}

func TestClose_SuppressesReleaseFailures(t *testing.T) {
	f := &fakeBroker{
		failSessionClose: wrapTransport("session close"),
		failConnClose:    wrapTransport("connection close"),
	}
	m := NewConnectionManager(newFakeRegistry(f), nil)
	if _, err := m.Connect(context.Background(), "t", fakeProps()); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}

	m.Close()

	if want := []string{"session", "connection"}; !reflect.DeepEqual(f.closeOrder, want) {
		t.Errorf("close order = %v, want %v", f.closeOrder, want)
	}
	if f.openConns != 0 {
		t.Errorf("openConns = %d, want 0", f.openConns)
	}
}

func TestClose_SurvivesPanickingRelease(t *testing.T) {
	f := &fakeBroker{panicConnClose: true}
	m := NewConnectionManager(newFakeRegistry(f), nil)
	if _, err := m.Connect(context.Background(), "t", fakeProps()); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}

	m.Close()

	if m.State() != StateClosed {
		t.Errorf("State() = %s, want closed", m.State())
	}
}

func TestConnect_Errors(t *testing.T) {
	tests := []struct {
		name      string
		broker    *fakeBroker
		props     broker.Properties
		topic     string
		wantErr   error
		wantCause error
	}{
		{
			name:    "missing factory name",
			broker:  &fakeBroker{},
			props:   broker.Map{},
			topic:   "t",
			wantErr: ErrConfiguration,
		},
		{
			name:    "nil properties",
			broker:  &fakeBroker{},
			props:   nil,
			topic:   "t",
			wantErr: ErrConfiguration,
		},
		{
			name:    "unreadable timeout",
			broker:  &fakeBroker{},
			props:   broker.Map{broker.PropConnectionFactory: "fake", broker.PropConnectTimeout: "forever"},
			topic:   "t",
			wantErr: ErrConfiguration,
		},
		{
			name:    "empty topic",
			broker:  &fakeBroker{},
			props:   fakeProps(),
			topic:   " ",
			wantErr: ErrConfiguration,
		},
		{
			name:      "unknown factory",
			broker:    &fakeBroker{},
			props:     broker.Map{broker.PropConnectionFactory: "amqp"},
			topic:     "t",
			wantErr:   ErrNaming,
			wantCause: broker.ErrFactoryNotFound,
		},
		{
			name:      "adapter rejects properties",
			broker:    &fakeBroker{failCreate: broker.ErrInvalidProperty},
			props:     fakeProps(),
			topic:     "t",
			wantErr:   ErrConfiguration,
			wantCause: broker.ErrInvalidProperty,
		},
		{
			name:      "broker unreachable",
			broker:    &fakeBroker{failCreate: wrapTransport("dial")},
			props:     fakeProps(),
			topic:     "t",
			wantErr:   ErrConnection,
			wantCause: errTransport,
		},
		{
			name:    "start rejected",
			broker:  &fakeBroker{failStart: wrapTransport("start")},
			props:   fakeProps(),
			topic:   "t",
			wantErr: ErrConnection,
		},
		{
			name:    "session rejected",
			broker:  &fakeBroker{failSession: wrapTransport("session")},
			props:   fakeProps(),
			topic:   "t",
			wantErr: ErrConnection,
		},
		{
			name:      "topic rejected",
			broker:    &fakeBroker{failTopic: broker.ErrInvalidTopic},
			props:     fakeProps(),
			topic:     "a/#",
			wantErr:   ErrConfiguration,
			wantCause: broker.ErrInvalidTopic,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewConnectionManager(newFakeRegistry(tt.broker), nil)

			_, err := m.Connect(context.Background(), tt.topic, tt.props)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Connect() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantCause != nil && !errors.Is(err, tt.wantCause) {
				t.Errorf("Connect() error = %v, want cause %v", err, tt.wantCause)
			}
			if m.State() != StateUnconnected {
				t.Errorf("State() = %s, want unconnected", m.State())
			}
			if tt.broker.openConns != 0 || tt.broker.openSessions != 0 {
				t.Errorf("leaked %d conns, %d sessions", tt.broker.openConns, tt.broker.openSessions)
			}
		})
	}
}

func TestConnect_RollbackOrder(t *testing.T) {
	f := &fakeBroker{failTopic: wrapTransport("topic")}
	m := NewConnectionManager(newFakeRegistry(f), nil)

	if _, err := m.Connect(context.Background(), "t", fakeProps()); !errors.Is(err, ErrConnection) {
		t.Fatalf("Connect() error = %v, want ErrConnection", err)
	}
	if want := []string{"session", "connection"}; !reflect.DeepEqual(f.closeOrder, want) {
		t.Errorf("rollback order = %v, want %v", f.closeOrder, want)
	}
}

func TestConnect_RetryAfterFailure(t *testing.T) {
	f := &fakeBroker{failStart: wrapTransport("start")}
	m := NewConnectionManager(newFakeRegistry(f), nil)

	if _, err := m.Connect(context.Background(), "t", fakeProps()); err == nil {
		t.Fatal("first Connect() error = nil")
	}

	f.failStart = nil
	if _, err := m.Connect(context.Background(), "t", fakeProps()); err != nil {
		t.Fatalf("second Connect() error = %v", err)
	}
	m.Close()
}

func TestConnect_WrongState(t *testing.T) {
	f := &fakeBroker{}
	m := NewConnectionManager(newFakeRegistry(f), nil)

	if _, err := m.Connect(context.Background(), "t", fakeProps()); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	if _, err := m.Connect(context.Background(), "t", fakeProps()); !errors.Is(err, ErrState) {
		t.Errorf("Connect() while connected error = %v, want ErrState", err)
	}

	m.Close()
	if _, err := m.Connect(context.Background(), "t", fakeProps()); !errors.Is(err, ErrState) {
		t.Errorf("Connect() after Close error = %v, want ErrState", err)
	}
	if f.creates != 1 {
		t.Errorf("CreateConnection calls = %d, want 1", f.creates)
	}
}

func TestConnect_Timeouts(t *testing.T) {
	f := &fakeBroker{}
	m := NewConnectionManager(newFakeRegistry(f), nil)
	if m.PublishTimeout() != DefaultPublishTimeout {
		t.Errorf("default PublishTimeout() = %v", m.PublishTimeout())
	}

	props := fakeProps()
	props[broker.PropPublishTimeout] = "750ms"
	if _, err := m.Connect(context.Background(), "t", props); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer m.Close()

	if m.PublishTimeout() != 750*time.Millisecond {
		t.Errorf("PublishTimeout() = %v, want 750ms", m.PublishTimeout())
	}
}

func TestConnect_CancelledContext(t *testing.T) {
	f := &fakeBroker{}
	m := NewConnectionManager(newFakeRegistry(f), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.Connect(ctx, "t", fakeProps())
	if !errors.Is(err, ErrConnection) || !errors.Is(err, context.Canceled) {
		t.Errorf("Connect() error = %v, want ErrConnection wrapping context.Canceled", err)
	}
}

func TestState_String(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateUnconnected, "unconnected"},
		{StateConnected, "connected"},
		{StateClosed, "closed"},
		{State(42), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}
