package publisher

import (
	"encoding"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"google.golang.org/protobuf/proto"

	"github.com/nerrad567/topology-publisher/internal/broker"
)

// PayloadKind declares how a payload travels on the wire.
type PayloadKind int

const (
	// PayloadUnsupported is the zero kind. Encoding it fails.
	PayloadUnsupported PayloadKind = iota

	// PayloadText is a plain character sequence sent verbatim.
	PayloadText

	// PayloadStructured is an object that serialises itself to bytes.
	PayloadStructured
)

// summaryLimit caps the content summary carried by diagnostic records.
const summaryLimit = 96

// Payload is a value tagged with its wire encoding. Build one with Text,
// Object or Proto; the zero Payload is unsupported.
type Payload struct {
	kind        PayloadKind
	text        string
	object      encoding.BinaryMarshaler
	contentType string
}

// Text returns a payload sent as a text message carrying exactly s.
func Text(s string) Payload {
	return Payload{kind: PayloadText, text: s}
}

// Object returns a structured payload serialised with v.MarshalBinary.
// A nil v yields an unsupported payload. A typed nil pointer whose
// MarshalBinary panics fails at Encode with ErrUnsupportedPayload.
func Object(v encoding.BinaryMarshaler) Payload {
	if v == nil {
		return Payload{}
	}
	return Payload{kind: PayloadStructured, object: v, contentType: broker.ContentTypeBinary}
}

// Proto returns a structured payload carrying the deterministic protobuf
// encoding of m. A nil m yields an unsupported payload.
func Proto(m proto.Message) Payload {
	if m == nil {
		return Payload{}
	}
	return Payload{kind: PayloadStructured, object: protoMarshaler{m: m}, contentType: broker.ContentTypeProtobuf}
}

// Kind returns the declared encoding.
func (p Payload) Kind() PayloadKind {
	return p.kind
}

// Payload lets a bare Payload be published as an Event.
func (p Payload) Payload() Payload {
	return p
}

// Event is any value that can be published. It declares its own payload, so
// domain types with a canonical text form return Text of that form.
type Event interface {
	Payload() Payload
}

type protoMarshaler struct {
	m proto.Message
}

func (p protoMarshaler) MarshalBinary() ([]byte, error) {
	return proto.MarshalOptions{Deterministic: true}.Marshal(p.m)
}

// Encoder builds broker messages from payloads.
type Encoder struct {
	newID func() string
	now   func() time.Time
}

// NewEncoder returns an Encoder that stamps messages with a random UUID and
// the current UTC time.
func NewEncoder() *Encoder {
	return &Encoder{
		newID: func() string { return uuid.NewString() },
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Encode constructs the message for p. Text payloads become text messages
// with the exact text; structured payloads become structured messages with
// their serialised bytes. Anything else, including a structured value that
// fails to serialise, returns an error wrapping ErrUnsupportedPayload.
func (e *Encoder) Encode(p Payload) (*broker.Message, error) {
	msg := &broker.Message{
		ID:        e.newID(),
		Timestamp: e.now(),
	}

	switch p.kind {
	case PayloadText:
		msg.Kind = broker.KindText
		msg.ContentType = broker.ContentTypeText
		msg.Body = []byte(p.text)
	case PayloadStructured:
		body, err := marshalObject(p.object)
		if err != nil {
			return nil, fmt.Errorf("%w: marshal %T: %w", ErrUnsupportedPayload, p.object, err)
		}
		msg.Kind = broker.KindStructured
		msg.ContentType = p.contentType
		msg.Body = body
	default:
		return nil, fmt.Errorf("%w: no text or structured form", ErrUnsupportedPayload)
	}

	return msg, nil
}

// marshalObject serialises v, turning a panic (typically a nil pointer
// receiver) into an error.
func marshalObject(v encoding.BinaryMarshaler) (body []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return v.MarshalBinary()
}

// Summarize returns a short description of msg for diagnostics: the leading
// text of a text message, or the size of a structured one.
func Summarize(msg *broker.Message) string {
	if msg == nil {
		return ""
	}
	if msg.Kind != broker.KindText {
		return fmt.Sprintf("%d bytes %s", len(msg.Body), msg.ContentType)
	}
	if utf8.RuneCount(msg.Body) <= summaryLimit {
		return string(msg.Body)
	}
	runes := []rune(string(msg.Body))
	return string(runes[:summaryLimit]) + "..."
}
