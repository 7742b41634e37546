package lifecycle

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// ShutdownFunc describes a graceful shutdown callback.
type ShutdownFunc func(ctx context.Context) error

// WorkerFunc is a background loop that returns once ctx is cancelled.
type WorkerFunc func(ctx context.Context)

type hook struct {
	name string
	fn   ShutdownFunc
}

// Manager owns background workers and the shutdown hooks of the process.
// On Shutdown workers are cancelled and awaited first, then hooks run in
// reverse registration order.
type Manager struct {
	timeout time.Duration
	logger  *zap.Logger

	workerCtx    context.Context
	cancelWorker context.CancelFunc
	workers      sync.WaitGroup

	mu       sync.Mutex
	hooks    []hook
	shutdown bool
}

// New creates a lifecycle manager with the desired timeout.
func New(timeout time.Duration, logger *zap.Logger) *Manager {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		timeout:      timeout,
		logger:       logger,
		workerCtx:    ctx,
		cancelWorker: cancel,
	}
}

// Register adds a shutdown hook.
func (m *Manager) Register(name string, fn ShutdownFunc) {
	if fn == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hooks = append(m.hooks, hook{name: name, fn: fn})
}

// Go starts a background worker tied to the manager's lifetime.
func (m *Manager) Go(name string, fn WorkerFunc) {
	if fn == nil {
		return
	}
	m.workers.Add(1)
	go func() {
		defer m.workers.Done()
		fn(m.workerCtx)
		m.logger.Debug("worker exited", zap.String("worker", name))
	}()
}

// Shutdown stops workers and executes all registered hooks once,
// respecting the configured timeout.
func (m *Manager) Shutdown(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	m.mu.Lock()
	if m.shutdown {
		m.mu.Unlock()
		return nil
	}
	m.shutdown = true
	hooks := append([]hook(nil), m.hooks...)
	m.mu.Unlock()

	var result error

	m.cancelWorker()
	if err := m.waitWorkers(ctx); err != nil {
		m.logger.Error("workers did not stop in time", zap.Error(err))
		result = errors.Join(result, err)
	}

	for i := len(hooks) - 1; i >= 0; i-- {
		h := hooks[i]
		if err := h.fn(ctx); err != nil {
			m.logger.Error("shutdown hook failed", zap.String("component", h.name), zap.Error(err))
			result = errors.Join(result, err)
			continue
		}
		m.logger.Info("component stopped", zap.String("component", h.name))
	}
	return result
}

func (m *Manager) waitWorkers(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		m.workers.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Listen invokes cancel when the process receives SIGINT or SIGTERM.
func (m *Manager) Listen(cancel context.CancelFunc) {
	if cancel == nil {
		return
	}
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		defer signal.Stop(sigCh)
		sig := <-sigCh
		m.logger.Info("shutdown signal received", zap.String("signal", sig.String()))
		cancel()
	}()
}
