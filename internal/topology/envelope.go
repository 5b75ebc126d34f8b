package topology

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"google.golang.org/protobuf/types/known/structpb"
)

// Envelope wraps an event with its identity and time.
type Envelope struct {
	EventID    string    `json:"event_id"`
	EventType  EventType `json:"event_type"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    Event     `json:"payload"`
}

// Wrap returns an envelope for ev with a random id and the current UTC time.
func Wrap(ev Event) Envelope {
	return Envelope{
		EventID:    uuid.NewString(),
		EventType:  ev.Type(),
		OccurredAt: time.Now().UTC(),
		Payload:    ev,
	}
}

// Marshal returns the canonical JSON text form of ev.
func Marshal(ev Event) ([]byte, error) {
	return Wrap(ev).JSON()
}

// ToStruct returns the structured form of ev.
func ToStruct(ev Event) (*structpb.Struct, error) {
	return Wrap(ev).Struct()
}

// JSON encodes the envelope.
func (e Envelope) JSON() ([]byte, error) {
	if e.Payload == nil {
		return nil, fmt.Errorf("topology: envelope %s has no payload", e.EventID)
	}
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("topology: marshal %s: %w", e.EventType, err)
	}
	return data, nil
}

// Struct converts the envelope to a protobuf Struct with the same fields as
// the JSON form.
func (e Envelope) Struct() (*structpb.Struct, error) {
	data, err := e.JSON()
	if err != nil {
		return nil, err
	}
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("topology: decode %s: %w", e.EventType, err)
	}
	st, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("topology: struct %s: %w", e.EventType, err)
	}
	return st, nil
}
