package bus

import (
	"context"
	"fmt"
	"sync"

	"github.com/yungbote/batchcatalog-backend/internal/realtime"
)

// localBus delivers in-process, synchronously, to every forwarder whose
// context is still live. Used when no Redis is configured.
type localBus struct {
	mu         sync.RWMutex
	forwarders []localForwarder
	closed     bool
}

type localForwarder struct {
	ctx   context.Context
	onMsg func(realtime.SSEMessage)
}

func NewLocalBus() Bus {
	return &localBus{}
}

func (b *localBus) Publish(ctx context.Context, msg realtime.SSEMessage) error {
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return fmt.Errorf("local bus closed")
	}
	targets := make([]localForwarder, len(b.forwarders))
	copy(targets, b.forwarders)
	b.mu.RUnlock()

	for _, f := range targets {
		if f.ctx.Err() != nil {
			continue
		}
		f.onMsg(msg)
	}
	return nil
}

func (b *localBus) StartForwarder(ctx context.Context, onMsg func(m realtime.SSEMessage)) error {
	if onMsg == nil {
		return fmt.Errorf("onMsg callback required")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return fmt.Errorf("local bus closed")
	}
	b.forwarders = append(b.forwarders, localForwarder{ctx: ctx, onMsg: onMsg})
	return nil
}

func (b *localBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.forwarders = nil
	return nil
}
