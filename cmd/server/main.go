package main

import (
	"context"
	"fmt"
	"log"
	"time"

	goRedis "github.com/redis/go-redis/v9"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/fastygo/todo/api/handler"
	"github.com/fastygo/todo/internal/config"
	"github.com/fastygo/todo/internal/infrastructure/buffer"
	"github.com/fastygo/todo/internal/infrastructure/monitor"
	pgInfra "github.com/fastygo/todo/internal/infrastructure/postgres"
	redisInfra "github.com/fastygo/todo/internal/infrastructure/redis"
	"github.com/fastygo/todo/internal/metrics"
	"github.com/fastygo/todo/internal/middleware"
	"github.com/fastygo/todo/internal/notify"
	"github.com/fastygo/todo/internal/router"
	"github.com/fastygo/todo/internal/services"
	"github.com/fastygo/todo/internal/services/lifecycle"
	"github.com/fastygo/todo/pkg/httpcontext"
	"github.com/fastygo/todo/pkg/logger"
	"github.com/fastygo/todo/repository"
	"github.com/fastygo/todo/repository/boltdb"
	"github.com/fastygo/todo/repository/memory"
	pgRepo "github.com/fastygo/todo/repository/postgres"
	"github.com/fastygo/todo/repository/prefs"
	redisRepo "github.com/fastygo/todo/repository/redis"
	"github.com/fastygo/todo/usecase"
	taskUC "github.com/fastygo/todo/usecase/task"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
		App:      cfg.AppName,
		Env:      cfg.Environment,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen(cancel)

	// Redis is optional unless it is the preference backend; it also feeds
	// notifications and the change channel.
	var redisClient *goRedis.Client
	if cfg.Redis.URL != "" {
		redisClient, err = redisInfra.NewClient(appCtx, cfg.Redis, zapLogger)
		if err != nil {
			zapLogger.Fatal("redis connection failed", zap.Error(err))
		}
		manager.Register("redis", func(ctx context.Context) error {
			return redisClient.Close()
		})
	}

	prefStore, err := openPreferenceStore(appCtx, cfg, redisClient, manager, zapLogger)
	if err != nil {
		zapLogger.Fatal("preference store unavailable",
			zap.String("backend", cfg.Storage.Backend),
			zap.Error(err))
	}
	manager.Register("preferences", func(ctx context.Context) error {
		return prefStore.Close()
	})
	taskRepo := prefs.NewTaskRepository(prefStore, zapLogger)

	bufferStore, err := buffer.Open(cfg.Buffer.Path, "buffer")
	if err != nil {
		zapLogger.Fatal("failed to open buffer store", zap.Error(err))
	}
	manager.Register("buffer", func(ctx context.Context) error {
		return bufferStore.Close()
	})

	var scheduler *notify.Scheduler
	appMetrics := metrics.New(func() float64 {
		if scheduler == nil {
			return 0
		}
		return float64(scheduler.Pending())
	})

	mon := monitor.New(cfg.Storage.Backend, prefStore, bufferStore, cfg.Buffer.MonitorEvery, zapLogger)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	bufferProcessor := services.NewBufferProcessor(
		bufferStore,
		mon,
		taskRepo,
		appMetrics,
		zapLogger,
		services.ProcessorConfig{
			Interval:   cfg.Buffer.SyncInterval,
			BatchSize:  50,
			MaxRetries: cfg.Buffer.MaxRetry,
			Retention:  hours(cfg.Buffer.RetentionHours),
		},
	)
	bufferProcessor.Start()
	manager.Register("buffer_processor", func(ctx context.Context) error {
		bufferProcessor.Stop(ctx)
		return nil
	})
	mon.WatchWrites(bufferProcessor)

	bufferBridge := services.NewBufferBridge(bufferProcessor, zapLogger, cfg.Context.WriteTimeout)
	manager.Go("buffer_bridge", bufferBridge.Run)

	var notificationScheduler usecase.NotificationScheduler
	if cfg.Notifications.Enabled {
		notifiers := notify.Multi{notify.NewLogNotifier(zapLogger)}
		if redisClient != nil {
			notifiers = append(notifiers, notify.NewRedisNotifier(redisClient, cfg.Notifications.RedisChannel))
		}
		scheduler = notify.NewScheduler(notifiers, zapLogger)
		scheduler.OnFire(func(notify.Notification) {
			appMetrics.NotificationsFired.Inc()
		})
		scheduler.Start()
		manager.Register("notifications", func(ctx context.Context) error {
			scheduler.Stop(ctx)
			return nil
		})
		notificationScheduler = scheduler
	}

	store := taskUC.New(taskRepo, bufferBridge, notificationScheduler, zapLogger, taskUC.Options{
		Categories:      cfg.Tasks.Categories,
		DefaultCategory: cfg.Tasks.DefaultCategory,
	})
	manager.Go("store_load", func(ctx context.Context) {
		if err := store.LoadWithRetry(ctx, cfg.Tasks.LoadRetry, cfg.Tasks.LoadRetryMax); err != nil {
			zapLogger.Warn("task store never loaded, unsaved changes were held in memory", zap.Error(err))
		}
	})

	if redisClient != nil {
		publisher := services.NewChangePublisher(redisClient, cfg.Notifications.ChangesChannel, zapLogger)
		unsubscribe := publisher.Attach(store)
		manager.Go("change_publisher", publisher.Run)
		manager.Register("change_subscription", func(ctx context.Context) error {
			unsubscribe()
			return nil
		})
	}

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Task:      apiHandler.NewTaskHandler(store, ctxAdapter, zapLogger),
		Selection: apiHandler.NewSelectionHandler(store, ctxAdapter, zapLogger),
		Category:  apiHandler.NewCategoryHandler(store, ctxAdapter, zapLogger),
		Theme:     apiHandler.NewThemeHandler(store, ctxAdapter, zapLogger),
		Health:    apiHandler.NewHealthHandler(mon, store, ctxAdapter, zapLogger),
	}
	if cfg.HTTP.EnableMetrics {
		handlers.Metrics = appMetrics.Handler()
	}

	var auth middleware.Middleware
	if cfg.JWT.Secret != "" {
		auth = middleware.JWTAuth(cfg.JWT.Secret, cfg.JWT.Issuer, zapLogger)
	} else {
		zapLogger.Warn("JWT_SECRET not set, API is unauthenticated")
	}
	r := router.New(handlers, auth)

	server := &fasthttp.Server{
		Handler:      r.Handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started",
			zap.String("address", cfg.Address()),
			zap.String("backend", cfg.Storage.Backend))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Error("server stopped", zap.Error(err))
			cancel()
		}
	}()

	<-appCtx.Done()

	// Stop accepting mutations before the bridge flushes its last snapshots.
	if err := server.Shutdown(); err != nil {
		zapLogger.Error("http shutdown error", zap.Error(err))
	}
	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}

// openPreferenceStore builds the configured key-value backend.
func openPreferenceStore(
	ctx context.Context,
	cfg *config.Config,
	redisClient *goRedis.Client,
	manager *lifecycle.Manager,
	zapLogger *zap.Logger,
) (repository.PreferenceStore, error) {
	switch cfg.Storage.Backend {
	case config.BackendMemory:
		zapLogger.Warn("memory backend selected, state is lost on restart")
		return memory.New(), nil
	case config.BackendRedis:
		if redisClient == nil {
			return nil, fmt.Errorf("redis client not configured")
		}
		return redisRepo.NewPreferenceRepository(redisClient, cfg.Storage.RedisPrefix), nil
	case config.BackendPostgres:
		if err := pgInfra.RunMigrations(cfg, zapLogger); err != nil {
			return nil, fmt.Errorf("migrations: %w", err)
		}
		pool, err := pgInfra.NewPool(ctx, cfg.Database, zapLogger)
		if err != nil {
			return nil, err
		}
		manager.Register("postgres", func(ctx context.Context) error {
			pool.Close()
			return nil
		})
		return pgRepo.NewPreferenceRepository(pool), nil
	default:
		return boltdb.Open(cfg.Storage.BoltPath, "")
	}
}

func hours(n int) time.Duration {
	return time.Duration(n) * time.Hour
}
