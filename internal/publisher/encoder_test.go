package publisher

import (
	"errors"
	"strings"
	"testing"
	"time"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/nerrad567/topology-publisher/internal/broker"
)

func fixedEncoder() *Encoder {
	return &Encoder{
		newID: func() string { return "msg-1" },
		now:   func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) },
	}
}

func TestEncode_Text(t *testing.T) {
	msg, err := fixedEncoder().Encode(Text("hello"))
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if msg.Kind != broker.KindText {
		t.Errorf("Kind = %s, want text", msg.Kind)
	}
	if string(msg.Body) != "hello" {
		t.Errorf("Body = %q, want %q", msg.Body, "hello")
	}
	if msg.ContentType != broker.ContentTypeText {
		t.Errorf("ContentType = %q", msg.ContentType)
	}
	if msg.ID != "msg-1" || !msg.Timestamp.Equal(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)) {
		t.Errorf("ID/Timestamp = %q/%v", msg.ID, msg.Timestamp)
	}
}

func TestEncode_TextIsNeverStructured(t *testing.T) {
	// JSON text stays text framed.
	msg, err := fixedEncoder().Encode(Text(`{"type":"ServiceCreated","name":"ESB"}`))
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if msg.Kind != broker.KindText {
		t.Errorf("Kind = %s, want text", msg.Kind)
	}
}

func TestEncode_Structured(t *testing.T) {
	msg, err := fixedEncoder().Encode(Object(binaryValue{data: []byte{0x01, 0x02}}))
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if msg.Kind != broker.KindStructured {
		t.Errorf("Kind = %s, want structured", msg.Kind)
	}
	if string(msg.Body) != "\x01\x02" {
		t.Errorf("Body = %x", msg.Body)
	}
	if msg.ContentType != broker.ContentTypeBinary {
		t.Errorf("ContentType = %q", msg.ContentType)
	}
}

func TestEncode_Proto(t *testing.T) {
	st, err := structpb.NewStruct(map[string]any{"type": "ClusterCreated", "name": "esb-cluster"})
	if err != nil {
		t.Fatalf("NewStruct() error = %v", err)
	}

	msg, err := fixedEncoder().Encode(Proto(st))
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if msg.Kind != broker.KindStructured || msg.ContentType != broker.ContentTypeProtobuf {
		t.Errorf("Kind/ContentType = %s/%q", msg.Kind, msg.ContentType)
	}

	var got structpb.Struct
	if err := proto.Unmarshal(msg.Body, &got); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if got.Fields["name"].GetStringValue() != "esb-cluster" {
		t.Errorf("name = %v", got.Fields["name"])
	}
}

func TestEncode_Unsupported(t *testing.T) {
	tests := []struct {
		name    string
		payload Payload
	}{
		{name: "zero payload", payload: Payload{}},
		{name: "nil object", payload: Object(nil)},
		{name: "nil proto", payload: Proto(nil)},
		{name: "marshal failure", payload: Object(binaryValue{err: errors.New("cyclic")})},
		{name: "typed nil pointer", payload: Object((*pointerValue)(nil))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := fixedEncoder().Encode(tt.payload)
			if !errors.Is(err, ErrUnsupportedPayload) {
				t.Fatalf("Encode() error = %v, want ErrUnsupportedPayload", err)
			}
			if msg != nil {
				t.Errorf("Encode() msg = %+v, want nil", msg)
			}
		})
	}
}

func TestNewEncoder_UniqueIDs(t *testing.T) {
	e := NewEncoder()
	a, _ := e.Encode(Text("a"))
	b, _ := e.Encode(Text("b"))
	if a.ID == "" || a.ID == b.ID {
		t.Errorf("IDs = %q, %q; want distinct non-empty", a.ID, b.ID)
	}
	if a.Timestamp.Location() != time.UTC {
		t.Errorf("Timestamp location = %v, want UTC", a.Timestamp.Location())
	}
}

func TestSummarize(t *testing.T) {
	if got := Summarize(&broker.Message{Kind: broker.KindText, Body: []byte("short")}); got != "short" {
		t.Errorf("Summarize(short) = %q", got)
	}

	long := strings.Repeat("é", summaryLimit+10)
	got := Summarize(&broker.Message{Kind: broker.KindText, Body: []byte(long)})
	if !strings.HasSuffix(got, "...") || len([]rune(got)) != summaryLimit+3 {
		t.Errorf("Summarize(long) = %q", got)
	}

	got = Summarize(&broker.Message{Kind: broker.KindStructured, ContentType: broker.ContentTypeBinary, Body: make([]byte, 12)})
	if got != "12 bytes application/octet-stream" {
		t.Errorf("Summarize(structured) = %q", got)
	}

	if Summarize(nil) != "" {
		t.Error("Summarize(nil) should be empty")
	}
}
