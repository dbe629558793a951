package realtime

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/spacekeeper-backend/internal/platform/logger"
)

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

func TestSSEHubReconnectAndOrdering(t *testing.T) {
	hub := NewSSEHub(logger.Nop())
	channel := uuid.New().String()

	clientA := hub.NewSSEClient(uuid.New())
	hub.AddChannel(clientA, channel)

	hub.Broadcast(SSEMessage{Channel: channel, Event: SSEEventSpaceChanged, Data: map[string]any{"seq": 1}})
	hub.Broadcast(SSEMessage{Channel: channel, Event: SSEEventItemChanged, Data: map[string]any{"seq": 2}})

	if got := recvMessage(t, clientA.Outbound, time.Second); got.Event != SSEEventSpaceChanged {
		t.Fatalf("first event: want=%s got=%s", SSEEventSpaceChanged, got.Event)
	}
	if got := recvMessage(t, clientA.Outbound, time.Second); got.Event != SSEEventItemChanged {
		t.Fatalf("second event: want=%s got=%s", SSEEventItemChanged, got.Event)
	}

	hub.CloseClient(clientA)
	hub.CloseClient(clientA)
	if _, ok := <-clientA.Outbound; ok {
		t.Fatalf("clientA outbound should be closed after disconnect")
	}
	if n := hub.Subscribers(channel); n != 0 {
		t.Fatalf("subscribers after close: want=0 got=%d", n)
	}

	clientB := hub.NewSSEClient(uuid.New())
	hub.AddChannel(clientB, channel)
	hub.Broadcast(SSEMessage{Channel: channel, Event: SSEEventGridChanged})
	if got := recvMessage(t, clientB.Outbound, time.Second); got.Event != SSEEventGridChanged {
		t.Fatalf("reconnect event: want=%s got=%s", SSEEventGridChanged, got.Event)
	}
}

func TestSSEHubIsolatesChannels(t *testing.T) {
	hub := NewSSEHub(logger.Nop())
	alice := hub.NewSSEClient(uuid.New())
	bob := hub.NewSSEClient(uuid.New())
	hub.AddChannel(alice, alice.UserID.String())
	hub.AddChannel(bob, bob.UserID.String())
	hub.AddChannel(bob, "  ")

	hub.Broadcast(SSEMessage{Channel: alice.UserID.String(), Event: SSEEventItemReminderDue})
	recvMessage(t, alice.Outbound, time.Second)
	select {
	case msg := <-bob.Outbound:
		t.Fatalf("bob should not receive alice's message: %+v", msg)
	default:
	}
	if len(bob.Channels) != 1 {
		t.Fatalf("blank channel should be ignored, got %v", bob.Channels)
	}
}

func TestSSEHubDropsWhenBufferFull(t *testing.T) {
	hub := NewSSEHub(logger.Nop())
	c := hub.NewSSEClient(uuid.New())
	hub.AddChannel(c, "ch")
	for i := 0; i < outboundBuffer+5; i++ {
		hub.Broadcast(SSEMessage{Channel: "ch", Event: SSEEventItemChanged})
	}
	if len(c.Outbound) != outboundBuffer {
		t.Fatalf("buffer: want=%d got=%d", outboundBuffer, len(c.Outbound))
	}
}

func TestSSEHubServeHTTPWritesEvents(t *testing.T) {
	hub := NewSSEHub(logger.Nop())
	c := hub.NewSSEClient(uuid.New())
	hub.AddChannel(c, "ch")
	hub.Broadcast(SSEMessage{Channel: "ch", Event: SSEEventSpaceChanged, Data: map[string]any{"action": "created"}})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/sse/stream", nil)
	done := make(chan struct{})
	go func() {
		hub.ServeHTTP(rec, req, c)
		close(done)
	}()

	deadline := time.After(time.Second)
	for len(c.Outbound) > 0 {
		select {
		case <-deadline:
			t.Fatalf("message was never consumed")
		default:
			time.Sleep(5 * time.Millisecond)
		}
	}
	hub.CloseClient(c)
	<-done

	body := rec.Body.String()
	if rec.Header().Get("Content-Type") != "text/event-stream" {
		t.Fatalf("content type: got=%q", rec.Header().Get("Content-Type"))
	}
	if !strings.Contains(body, "event: SpaceChanged\n") || !strings.Contains(body, `"action":"created"`) {
		t.Fatalf("unexpected stream body: %q", body)
	}
}

func TestSSEHubCloseAll(t *testing.T) {
	hub := NewSSEHub(logger.Nop())
	a := hub.NewSSEClient(uuid.New())
	b := hub.NewSSEClient(uuid.New())
	hub.AddChannel(a, a.UserID.String())
	hub.AddChannel(b, b.UserID.String())
	hub.AddChannel(b, "shared")

	hub.CloseAll()

	for _, c := range []*SSEClient{a, b} {
		if _, ok := <-c.Outbound; ok {
			t.Fatalf("client %s outbound should be closed", c.ID)
		}
	}
	if n := hub.Subscribers("shared"); n != 0 {
		t.Fatalf("subscribers after CloseAll: want=0 got=%d", n)
	}
}

func TestWriteEventFraming(t *testing.T) {
	var buf bytes.Buffer
	msg := SSEMessage{Channel: "u1", Event: SSEEventGridChanged, Data: map[string]any{"id": "g1"}}
	if err := writeEvent(&buf, msg); err != nil {
		t.Fatalf("writeEvent: %v", err)
	}
	want := `event: GridChanged` + "\n" + `data: {"channel":"u1","event":"GridChanged","data":{"id":"g1"}}` + "\n\n"
	if buf.String() != want {
		t.Fatalf("framing: want=%q got=%q", want, buf.String())
	}
}
