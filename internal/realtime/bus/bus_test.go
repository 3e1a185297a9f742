package bus

import (
	"context"
	"testing"
	"time"

	"github.com/yungbote/batchcatalog-backend/internal/platform/logger"
	"github.com/yungbote/batchcatalog-backend/internal/realtime"
)

func TestLocalBusDelivers(t *testing.T) {
	b := NewLocalBus()
	ctx, cancel := context.WithCancel(context.Background())

	var got []realtime.SSEMessage
	if err := b.StartForwarder(ctx, func(m realtime.SSEMessage) { got = append(got, m) }); err != nil {
		t.Fatalf("StartForwarder: %v", err)
	}
	msg := realtime.SSEMessage{Channel: realtime.ChannelBatches, Event: realtime.SSEEventBatchesChanged}
	if err := b.Publish(context.Background(), msg); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if len(got) != 1 || got[0].Event != realtime.SSEEventBatchesChanged {
		t.Fatalf("delivered: want=1 BatchesChanged got=%v", got)
	}

	cancel()
	_ = b.Publish(context.Background(), msg)
	if len(got) != 1 {
		t.Fatalf("delivered after cancel: want=1 got=%d", len(got))
	}

	_ = b.Close()
	if err := b.Publish(context.Background(), msg); err == nil {
		t.Fatalf("Publish after Close: want error")
	}
	if err := b.StartForwarder(context.Background(), func(realtime.SSEMessage) {}); err == nil {
		t.Fatalf("StartForwarder after Close: want error")
	}
}

func TestLocalBusRequiresCallback(t *testing.T) {
	if err := NewLocalBus().StartForwarder(context.Background(), nil); err == nil {
		t.Fatalf("StartForwarder(nil): want error")
	}
}

func TestEnvelopeRoundTrip(t *testing.T) {
	sent := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	raw, err := encodeEnvelope(envelope{
		Origin: "node-a",
		SentAt: sent,
		Message: realtime.SSEMessage{
			Channel: realtime.ChannelBatches,
			Event:   realtime.SSEEventBatchesChanged,
			Data:    realtime.ChangeNotice{Op: "update", BatchID: "b1"},
		},
	})
	if err != nil {
		t.Fatalf("encodeEnvelope: %v", err)
	}
	env, err := decodeEnvelope(string(raw))
	if err != nil {
		t.Fatalf("decodeEnvelope: %v", err)
	}
	if env.Origin != "node-a" || !env.SentAt.Equal(sent) {
		t.Fatalf("envelope header: got=%+v", env)
	}
	if env.Message.Channel != realtime.ChannelBatches || env.Message.Event != realtime.SSEEventBatchesChanged {
		t.Fatalf("envelope message: got=%+v", env.Message)
	}
}

func TestEnvelopeRejectsMissingChannel(t *testing.T) {
	if _, err := encodeEnvelope(envelope{Message: realtime.SSEMessage{Event: realtime.SSEEventBatchesChanged}}); err == nil {
		t.Fatalf("encodeEnvelope without channel: want error")
	}
	if _, err := decodeEnvelope(`{"origin":"x","message":{"event":"BatchesChanged"}}`); err == nil {
		t.Fatalf("decodeEnvelope without channel: want error")
	}
	if _, err := decodeEnvelope(`not json`); err == nil {
		t.Fatalf("decodeEnvelope garbage: want error")
	}
}

func TestNewRedisBusValidatesConfig(t *testing.T) {
	if _, err := NewRedisBus(nil, RedisConfig{Addr: "localhost:6379"}); err == nil {
		t.Fatalf("NewRedisBus(nil logger): want error")
	}
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	if _, err := NewRedisBus(log, RedisConfig{Addr: "  "}); err == nil {
		t.Fatalf("NewRedisBus(blank addr): want error")
	}
}
