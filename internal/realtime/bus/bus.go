package bus

import (
	"context"
	"fmt"
	"sync"

	"github.com/yungbote/spacekeeper-backend/internal/realtime"
)

// Bus carries realtime messages between API replicas so every node can
// deliver to its locally connected clients.
type Bus interface {
	Publish(ctx context.Context, msg realtime.SSEMessage) error
	StartForwarder(ctx context.Context, onMsg func(m realtime.SSEMessage)) error
	Close() error
}

// localBus delivers in-process. Used when no redis is configured.
type localBus struct {
	mu     sync.RWMutex
	onMsg  func(m realtime.SSEMessage)
	closed bool
}

func NewLocalBus() Bus { return &localBus{} }

func (b *localBus) Publish(_ context.Context, msg realtime.SSEMessage) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return fmt.Errorf("local SSE bus closed")
	}
	if b.onMsg != nil {
		b.onMsg(msg)
	}
	return nil
}

func (b *localBus) StartForwarder(ctx context.Context, onMsg func(m realtime.SSEMessage)) error {
	if onMsg == nil {
		return fmt.Errorf("onMsg callback required")
	}
	b.mu.Lock()
	b.onMsg = onMsg
	b.mu.Unlock()
	go func() {
		<-ctx.Done()
		b.mu.Lock()
		b.onMsg = nil
		b.mu.Unlock()
	}()
	return nil
}

func (b *localBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.onMsg = nil
	return nil
}
