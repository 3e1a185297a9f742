package realtime

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/yungbote/batchcatalog-backend/internal/platform/logger"
)

func mustTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return log
}

func recvMessage(t *testing.T, ch <-chan SSEMessage, timeout time.Duration) SSEMessage {
	t.Helper()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(timeout):
		t.Fatalf("timed out waiting for SSE message")
	}
	return SSEMessage{}
}

func TestSSEHubOrderingAndReconnect(t *testing.T) {
	hub := NewSSEHub(mustTestLogger(t))

	clientA := hub.NewSSEClient()
	hub.AddChannel(clientA, ChannelBatches)

	hub.Send(clientA, SSEMessage{Channel: ChannelBatches, Event: SSEEventBatchesSnapshot, Data: map[string]any{"seq": 1}})
	hub.Send(clientA, SSEMessage{Channel: ChannelBatches, Event: SSEEventBatchesError, Data: map[string]any{"seq": 2}})

	if got := recvMessage(t, clientA.Outbound, time.Second); got.Event != SSEEventBatchesSnapshot {
		t.Fatalf("first event: want=%s got=%s", SSEEventBatchesSnapshot, got.Event)
	}
	if got := recvMessage(t, clientA.Outbound, time.Second); got.Event != SSEEventBatchesError {
		t.Fatalf("second event: want=%s got=%s", SSEEventBatchesError, got.Event)
	}

	hub.CloseClient(clientA)
	hub.CloseClient(clientA)
	select {
	case _, ok := <-clientA.Outbound:
		if ok {
			t.Fatalf("clientA outbound should be closed after disconnect")
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatalf("timed out waiting for clientA channel close")
	}
	if n := hub.Subscribers(ChannelBatches); n != 0 {
		t.Fatalf("Subscribers after close: want=0 got=%d", n)
	}
	if hub.Send(clientA, SSEMessage{Channel: ChannelBatches}) {
		t.Fatalf("Send to closed client: want=false")
	}

	clientB := hub.NewSSEClient()
	hub.AddChannel(clientB, ChannelBatches)
	hub.Send(clientB, SSEMessage{Channel: ChannelBatches, Event: SSEEventBatchesSnapshot})
	if got := recvMessage(t, clientB.Outbound, time.Second); got.Event != SSEEventBatchesSnapshot {
		t.Fatalf("reconnect event: want=%s got=%s", SSEEventBatchesSnapshot, got.Event)
	}
}

func TestSSEHubSendDropsWhenFull(t *testing.T) {
	hub := NewSSEHub(mustTestLogger(t))
	client := hub.NewSSEClient()
	hub.AddChannel(client, ChannelBatches)

	for i := 0; i < outboundBuffer+5; i++ {
		sent := hub.Send(client, SSEMessage{Channel: ChannelBatches, Event: SSEEventBatchesSnapshot, Data: i})
		if want := i < outboundBuffer; sent != want {
			t.Fatalf("Send #%d: want=%v got=%v", i, want, sent)
		}
	}
	if got := len(client.Outbound); got != outboundBuffer {
		t.Fatalf("buffered: want=%d got=%d", outboundBuffer, got)
	}
	first := recvMessage(t, client.Outbound, time.Second)
	if first.Data != 0 {
		t.Fatalf("first retained message: want=0 got=%v", first.Data)
	}
}

func TestSSEHubServeHTTPWritesEvents(t *testing.T) {
	hub := NewSSEHub(mustTestLogger(t))
	client := hub.NewSSEClient()
	hub.AddChannel(client, ChannelBatches)
	hub.Send(client, SSEMessage{Channel: ChannelBatches, Event: SSEEventBatchesSnapshot, Data: []string{"b1"}})

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/api/batches/stream", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		hub.ServeHTTP(rec, req, client)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("ServeHTTP did not return after cancel")
	}
	hub.CloseClient(client)

	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("Content-Type: want=text/event-stream got=%s", ct)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "event: BatchesSnapshot\n") || !strings.Contains(body, `"data":["b1"]`) {
		t.Fatalf("body: got=%q", body)
	}
}

func TestSSEHubShutdownEndsStreams(t *testing.T) {
	hub := NewSSEHub(mustTestLogger(t))
	client := hub.NewSSEClient()
	hub.AddChannel(client, ChannelBatches)

	req := httptest.NewRequest(http.MethodGet, "/api/batches/stream", nil)
	rec := httptest.NewRecorder()
	done := make(chan struct{})
	go func() {
		hub.ServeHTTP(rec, req, client)
		close(done)
	}()

	hub.Shutdown()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("ServeHTTP did not return after Shutdown")
	}
	if n := hub.Subscribers(ChannelBatches); n != 0 {
		t.Fatalf("Subscribers after Shutdown: want=0 got=%d", n)
	}
}
