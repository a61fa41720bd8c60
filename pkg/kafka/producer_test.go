package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/segmentio/kafka-go"
)

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return w.err
}

func (w *fakeWriter) Close() error { return nil }

func TestNewProducerRequiresBrokers(t *testing.T) {
	if _, err := NewProducer(); err == nil {
		t.Fatalf("expected error without brokers")
	}
}

func TestPublishMessageEncodesJSON(t *testing.T) {
	reg := prometheus.NewRegistry()
	w := &fakeWriter{}
	p := &Producer{writer: w, comp: "gzip", metrics: newProducerMetrics(reg)}

	payload := []map[string]int{{"count": 2}}
	if err := p.PublishMessage(context.Background(), "logs", payload); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if len(w.msgs) != 1 || w.msgs[0].Topic != "logs" {
		t.Fatalf("unexpected messages: %+v", w.msgs)
	}
	var got []map[string]int
	if err := json.Unmarshal(w.msgs[0].Value, &got); err != nil || got[0]["count"] != 2 {
		t.Fatalf("value = %s (%v)", w.msgs[0].Value, err)
	}
	if v := testutil.ToFloat64(p.metrics.msgs.WithLabelValues("logs", "gzip", "ok")); v != 1 {
		t.Fatalf("ok counter = %v", v)
	}
}

func TestPublishWrapsWriterError(t *testing.T) {
	boom := errors.New("no leader")
	p := &Producer{writer: &fakeWriter{err: boom}, comp: "gzip"}

	err := p.Publish(context.Background(), "logs", nil, "x")
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped %v", err, boom)
	}
}
