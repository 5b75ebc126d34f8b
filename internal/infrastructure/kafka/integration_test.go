//go:build integration

package kafka

import (
	"context"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/nerrad567/topology-publisher/internal/broker"
)

// Integration tests against a real cluster.
// These tests require a Kafka broker at 127.0.0.1:9092 with topic
// auto-creation enabled.
//
// Run with:
//   go test -tags=integration -v ./internal/infrastructure/kafka/...

func TestIntegration_MessageRoundtrip(t *testing.T) {
	const topicName = "topology-int-roundtrip"
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	c, err := NewFactory().CreateConnection(ctx, broker.Map{broker.PropURL: "127.0.0.1:9092"})
	if err != nil {
		t.Fatalf("CreateConnection() error = %v", err)
	}
	defer c.Close()
	_ = c.Start(ctx)
	s, err := c.CreateSession(ctx)
	if err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}

	topic, _ := s.CreateTopic(topicName)
	msg := &broker.Message{ID: "int-1", Kind: broker.KindText, Body: []byte(`{"type":"ServiceCreated","name":"ESB"}`)}
	if err := s.Publish(ctx, topic, msg); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:   []string{"127.0.0.1:9092"},
		Topic:     topicName,
		Partition: 0,
	})
	defer r.Close()
	if err := r.SetOffset(kafka.FirstOffset); err != nil {
		t.Fatalf("SetOffset: %v", err)
	}

	for {
		rec, err := r.ReadMessage(ctx)
		if err != nil {
			t.Fatalf("ReadMessage: %v", err)
		}
		if string(rec.Key) == "int-1" {
			if string(rec.Value) != string(msg.Body) {
				t.Errorf("value = %q", rec.Value)
			}
			return
		}
	}
}
