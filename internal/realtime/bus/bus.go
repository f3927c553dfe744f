package bus

import (
	"context"
	"sync"

	types "github.com/yungbote/neurobridge-governor/internal/domain/tutoring"
)

// Bus carries semaphore transitions to the response-generation side. It
// satisfies governor.Notifier.
type Bus interface {
	PublishGovernance(ctx context.Context, ev types.GovernanceEvent) error
	StartForwarder(ctx context.Context, onEvent func(ev types.GovernanceEvent)) error
	Close() error
}

// memoryBus delivers events in-process, synchronously and in publish order.
type memoryBus struct {
	mu   sync.RWMutex
	subs []func(types.GovernanceEvent)
}

func NewMemoryBus() Bus { return &memoryBus{} }

func (b *memoryBus) PublishGovernance(ctx context.Context, ev types.GovernanceEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.RLock()
	subs := append(([]func(types.GovernanceEvent))(nil), b.subs...)
	b.mu.RUnlock()
	for _, fn := range subs {
		fn(ev)
	}
	return nil
}

func (b *memoryBus) StartForwarder(_ context.Context, onEvent func(ev types.GovernanceEvent)) error {
	if onEvent == nil {
		return errNoCallback
	}
	b.mu.Lock()
	b.subs = append(b.subs, onEvent)
	b.mu.Unlock()
	return nil
}

func (b *memoryBus) Close() error {
	b.mu.Lock()
	b.subs = nil
	b.mu.Unlock()
	return nil
}
