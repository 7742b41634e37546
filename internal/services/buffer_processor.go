package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/fastygo/todo/domain"
	"github.com/fastygo/todo/internal/infrastructure/buffer"
	"github.com/fastygo/todo/internal/metrics"
	"github.com/fastygo/todo/repository"
)

// ConnectionHealth abstracts the connection monitor functionality.
type ConnectionHealth interface {
	IsOnline() bool
}

// ProcessorConfig controls how frequently the buffer is drained.
type ProcessorConfig struct {
	Interval   time.Duration
	BatchSize  int
	MaxRetries int
	Retention  time.Duration
}

// BufferProcessor writes snapshots to the task repository and keeps failed
// ones in the bolt buffer until a later drain succeeds.
//
// Direct writes and drains share writeMu and a successful direct write purges
// the buffered item of the same entity, so an older buffered snapshot never
// lands after a newer one.
type BufferProcessor struct {
	store   *buffer.Store
	monitor ConnectionHealth
	repo    repository.TaskRepository
	metrics *metrics.Metrics
	logger  *zap.Logger
	cron    *cron.Cron
	cfg     ProcessorConfig

	writeMu    sync.Mutex
	lastFailed atomic.Bool
}

func NewBufferProcessor(
	store *buffer.Store,
	monitor ConnectionHealth,
	repo repository.TaskRepository,
	m *metrics.Metrics,
	logger *zap.Logger,
	cfg ProcessorConfig,
) *BufferProcessor {
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 10
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	bp := &BufferProcessor{
		store:   store,
		monitor: monitor,
		repo:    repo,
		metrics: m,
		logger:  logger,
		cfg:     cfg,
		cron:    cron.New(cron.WithSeconds()),
	}

	schedule := fmt.Sprintf("@every %ds", max(1, int(cfg.Interval.Seconds())))
	_, _ = bp.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Interval)
		defer cancel()
		if err := bp.Drain(ctx); err != nil {
			bp.logger.Error("buffer drain failed", zap.Error(err))
		}
	})

	return bp
}

// Start launches the cron scheduler.
func (bp *BufferProcessor) Start() {
	if bp == nil || bp.cron == nil {
		return
	}
	bp.cron.Start()
	bp.logger.Info("buffer processor started")
}

// Stop gracefully stops the scheduler.
func (bp *BufferProcessor) Stop(ctx context.Context) {
	if bp == nil || bp.cron == nil {
		return
	}
	stopCtx := bp.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	bp.logger.Info("buffer processor stopped")
}

// Drain retries buffered snapshots synchronously.
func (bp *BufferProcessor) Drain(ctx context.Context) error {
	if bp == nil || bp.store == nil {
		return nil
	}
	if bp.monitor != nil && !bp.monitor.IsOnline() {
		bp.logger.Debug("skipping buffer drain (offline)")
		return nil
	}

	bp.writeMu.Lock()
	defer bp.writeMu.Unlock()

	if bp.cfg.Retention > 0 {
		if err := bp.store.Cleanup(time.Now().Add(-bp.cfg.Retention)); err != nil {
			bp.logger.Warn("buffer cleanup failed", zap.Error(err))
		}
	}

	items, err := bp.store.GetBatch(bp.cfg.BatchSize)
	if err != nil {
		return err
	}

	for _, item := range items {
		if err := bp.processItem(ctx, item); err != nil {
			bp.logger.Error("failed to process buffer item",
				zap.String("item_id", item.ID),
				zap.String("entity", item.Entity),
				zap.Error(err))

			item.Retries++
			if item.Retries >= bp.cfg.MaxRetries {
				bp.logger.Warn("dropping buffer item (max retries reached)", zap.String("item_id", item.ID))
				_ = bp.store.Remove(item)
				continue
			}

			if err := bp.store.Requeue(item); err != nil {
				bp.logger.Error("failed to requeue buffer item", zap.Error(err))
			}
			continue
		}

		if err := bp.store.Remove(item); err != nil {
			bp.logger.Warn("failed to purge processed buffer item", zap.Error(err))
		}
	}
	return nil
}

// BufferOperation attempts to write the snapshot immediately and falls back to buffering it.
func (bp *BufferProcessor) BufferOperation(ctx context.Context, item buffer.Item) error {
	if bp == nil {
		return fmt.Errorf("buffer processor not configured")
	}

	bp.writeMu.Lock()
	defer bp.writeMu.Unlock()

	if bp.monitor == nil || bp.monitor.IsOnline() {
		err := bp.processItem(ctx, item)
		if err == nil {
			if bp.store != nil {
				if err := bp.store.RemoveByID(item.Entity); err != nil {
					bp.logger.Warn("failed to purge superseded buffer item", zap.Error(err))
				}
			}
			return nil
		}
		bp.logger.Warn("immediate write failed, buffering",
			zap.String("entity", item.Entity),
			zap.Error(err))
	}

	if bp.store == nil {
		return fmt.Errorf("no buffer configured for %s snapshot", item.Entity)
	}
	bp.metrics.ObserveBuffered(item.Entity)
	return bp.store.Enqueue(item)
}

// LastWriteFailed reports whether the most recent write attempt failed.
func (bp *BufferProcessor) LastWriteFailed() bool {
	if bp == nil {
		return false
	}
	return bp.lastFailed.Load()
}

// Size returns the number of buffered items.
func (bp *BufferProcessor) Size() int {
	if bp == nil || bp.store == nil {
		return 0
	}
	size, err := bp.store.Size()
	if err != nil {
		return 0
	}
	return size
}

func (bp *BufferProcessor) processItem(ctx context.Context, item buffer.Item) error {
	if ctx == nil {
		ctx = context.Background()
	}
	err := bp.apply(ctx, item)
	bp.lastFailed.Store(err != nil)
	bp.metrics.ObserveWrite(item.Entity, err)
	return err
}

func (bp *BufferProcessor) apply(ctx context.Context, item buffer.Item) error {
	switch item.Entity {
	case buffer.EntityTasks:
		var tasks []domain.Task
		if err := json.Unmarshal(item.Data, &tasks); err != nil {
			return err
		}
		return bp.repo.SaveTasks(ctx, tasks)

	case buffer.EntityTheme:
		var dark bool
		if err := json.Unmarshal(item.Data, &dark); err != nil {
			return err
		}
		return bp.repo.SaveDarkMode(ctx, dark)

	case buffer.EntityCategories:
		var labels []string
		if err := json.Unmarshal(item.Data, &labels); err != nil {
			return err
		}
		return bp.repo.SaveCategories(ctx, labels)

	default:
		return fmt.Errorf("unsupported entity %s", item.Entity)
	}
}
