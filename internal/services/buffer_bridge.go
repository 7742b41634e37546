package services

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/todo/domain"
	"github.com/fastygo/todo/internal/infrastructure/buffer"
	"github.com/fastygo/todo/usecase"
)

// entity write order within one flush
var snapshotOrder = []string{buffer.EntityCategories, buffer.EntityTasks, buffer.EntityTheme}

// BufferBridge is the asynchronous persister behind the task store. Callers
// hand it snapshots and return immediately; a single goroutine writes them
// through the BufferProcessor. Pending snapshots are coalesced per entity, so
// only the latest state of each entity is written.
type BufferBridge struct {
	processor *BufferProcessor
	logger    *zap.Logger
	timeout   time.Duration

	mu      sync.Mutex
	pending map[string]json.RawMessage
	wake    chan struct{}
	done    chan struct{}
	started bool
	flushMu sync.Mutex
}

func NewBufferBridge(processor *BufferProcessor, logger *zap.Logger, timeout time.Duration) *BufferBridge {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &BufferBridge{
		processor: processor,
		logger:    logger,
		timeout:   timeout,
		pending:   make(map[string]json.RawMessage),
		wake:      make(chan struct{}, 1),
		done:      make(chan struct{}),
	}
}

// Run writes pending snapshots until ctx is cancelled, then flushes what is left.
func (b *BufferBridge) Run(ctx context.Context) {
	b.mu.Lock()
	if b.started {
		b.mu.Unlock()
		return
	}
	b.started = true
	b.mu.Unlock()

	defer close(b.done)
	for {
		select {
		case <-b.wake:
			b.Flush(context.Background())
		case <-ctx.Done():
			flushCtx, cancel := context.WithTimeout(context.Background(), b.timeout)
			b.Flush(flushCtx)
			cancel()
			return
		}
	}
}

// Done is closed when Run has returned.
func (b *BufferBridge) Done() <-chan struct{} {
	return b.done
}

func (b *BufferBridge) PersistTasks(tasks []domain.Task) {
	if tasks == nil {
		tasks = []domain.Task{}
	}
	b.enqueue(buffer.EntityTasks, tasks)
}

func (b *BufferBridge) PersistDarkMode(dark bool) {
	b.enqueue(buffer.EntityTheme, dark)
}

func (b *BufferBridge) PersistCategories(labels []string) {
	if labels == nil {
		labels = []string{}
	}
	b.enqueue(buffer.EntityCategories, labels)
}

// Pending reports how many entities await a write.
func (b *BufferBridge) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending)
}

// Flush writes every pending snapshot synchronously.
func (b *BufferBridge) Flush(ctx context.Context) {
	b.flushMu.Lock()
	defer b.flushMu.Unlock()

	b.mu.Lock()
	batch := b.pending
	b.pending = make(map[string]json.RawMessage)
	b.mu.Unlock()

	for _, entity := range snapshotOrder {
		data, ok := batch[entity]
		if !ok {
			continue
		}
		writeCtx, cancel := context.WithTimeout(ctx, b.timeout)
		err := b.processor.BufferOperation(writeCtx, buffer.Item{
			ID:       entity,
			Entity:   entity,
			Data:     data,
			Priority: priorityFor(entity),
		})
		cancel()
		if err != nil {
			b.logger.Error("failed to persist snapshot", zap.String("entity", entity), zap.Error(err))
		}
	}
}

func (b *BufferBridge) enqueue(entity string, v interface{}) {
	payload, err := json.Marshal(v)
	if err != nil {
		b.logger.Error("failed to encode snapshot", zap.String("entity", entity), zap.Error(err))
		return
	}
	b.mu.Lock()
	b.pending[entity] = payload
	b.mu.Unlock()

	select {
	case b.wake <- struct{}{}:
	default:
	}
}

func priorityFor(entity string) int {
	switch entity {
	case buffer.EntityTasks:
		return 1
	case buffer.EntityCategories:
		return 2
	default:
		return 3
	}
}

var _ usecase.Persister = (*BufferBridge)(nil)
