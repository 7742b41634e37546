package monitor

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/todo/internal/infrastructure/buffer"
)

// Pinger is the reachability probe of the preference backend.
type Pinger interface {
	Ping(ctx context.Context) error
}

// WriteHealth exposes the persistence writer's last-write-failed signal.
type WriteHealth interface {
	LastWriteFailed() bool
}

type Monitor struct {
	backendName string
	backend     Pinger
	buffer      *buffer.Store
	writes      WriteHealth

	status   Status
	mu       sync.RWMutex
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
	logger   *zap.Logger
}

func New(backendName string, backend Pinger, buf *buffer.Store, interval time.Duration, logger *zap.Logger) *Monitor {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		backendName: backendName,
		backend:     backend,
		buffer:      buf,
		interval:    interval,
		stopCh:      make(chan struct{}),
		logger:      logger,
		// optimistic until the first probe so early writes are attempted
		status: Status{Backend: backendName, BackendOnline: true},
	}
}

// WatchWrites attaches the writer whose failure signal is reported in Status.
func (m *Monitor) WatchWrites(w WriteHealth) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes = w
}

func (m *Monitor) Start() {
	m.Refresh()
	go m.loop()
}

func (m *Monitor) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
}

func (m *Monitor) IsOnline() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status.BackendOnline
}

func (m *Monitor) GetStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	status := m.status
	if m.writes != nil {
		status.LastWriteFailed = m.writes.LastWriteFailed()
	}
	return status
}

func (m *Monitor) loop() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.Refresh()
		case <-m.stopCh:
			return
		}
	}
}

// Refresh probes the backend and the buffer once.
func (m *Monitor) Refresh() {
	bufferOK, bufferSize := m.checkBuffer()
	online := m.checkBackend()
	status := Status{
		Backend:       m.backendName,
		BackendOnline: online,
		Buffer:        bufferOK,
		BufferSize:    bufferSize,
		LastCheck:     time.Now(),
	}

	m.mu.Lock()
	if m.status.BackendOnline != online {
		m.logger.Info("preference backend state changed",
			zap.String("backend", m.backendName),
			zap.Bool("online", online))
	}
	m.status = status
	m.mu.Unlock()
}

func (m *Monitor) checkBackend() bool {
	if m.backend == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	return m.backend.Ping(ctx) == nil
}

func (m *Monitor) checkBuffer() (bool, int) {
	if m.buffer == nil {
		return false, 0
	}
	size, err := m.buffer.Size()
	if err != nil {
		m.logger.Warn("buffer size check failed", zap.Error(err))
		return false, size
	}
	return true, size
}
