package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestPublishEncodesJSON(t *testing.T) {
	w := &fakeWriter{}
	p := NewProducerWithWriter(w, "gzip")

	err := p.Publish(context.Background(), "forecasts", []byte("AAPL"), map[string]float64{"price": 231.25})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(w.msgs) != 1 {
		t.Fatalf("expected one message, got %d", len(w.msgs))
	}
	m := w.msgs[0]
	if m.Topic != "forecasts" || string(m.Key) != "AAPL" {
		t.Fatalf("unexpected message %+v", m)
	}
	var got map[string]float64
	if err := json.Unmarshal(m.Value, &got); err != nil || got["price"] != 231.25 {
		t.Fatalf("unexpected payload %s", m.Value)
	}

	if err := p.Close(); err != nil || !w.closed {
		t.Fatalf("expected writer closed")
	}
}

func TestPublishWrapsWriterError(t *testing.T) {
	boom := errors.New("broker down")
	p := NewProducerWithWriter(&fakeWriter{err: boom}, "gzip")
	if err := p.Publish(context.Background(), "t", nil, []byte("x")); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}

func TestNewProducerRequiresBrokers(t *testing.T) {
	if _, err := NewProducer(); err == nil {
		t.Fatalf("expected error without brokers")
	}
}
