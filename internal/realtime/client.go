package realtime

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"

	"github.com/yungbote/spacekeeper-backend/internal/platform/logger"
)

// SSEClient is one open event stream. A user with several tabs or devices
// holds several clients on the same channel.
type SSEClient struct {
	ID       uuid.UUID
	UserID   uuid.UUID
	Channels map[string]bool
	Outbound chan SSEMessage
	Logger   *logger.Logger

	done      chan struct{}
	closeOnce sync.Once
}

// offer queues msg without blocking and reports whether it fit.
func (c *SSEClient) offer(msg SSEMessage) bool {
	select {
	case c.Outbound <- msg:
		return true
	default:
		return false
	}
}

// Done is closed once the hub has closed the client.
func (c *SSEClient) Done() <-chan struct{} { return c.done }

// writeEvent renders msg in text/event-stream framing; the data line carries
// the whole message so browsers see the channel alongside the event.
func writeEvent(w io.Writer, msg SSEMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", msg.Event, payload)
	return err
}
