package main

import (
	"context"
	"log"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/taskmaster/core/api/handler"
	"github.com/taskmaster/core/domain"
	"github.com/taskmaster/core/internal/config"
	"github.com/taskmaster/core/internal/infrastructure/monitor"
	"github.com/taskmaster/core/internal/router"
	"github.com/taskmaster/core/internal/services"
	"github.com/taskmaster/core/internal/services/lifecycle"
	"github.com/taskmaster/core/pkg/httpcontext"
	"github.com/taskmaster/core/pkg/logger"
	"github.com/taskmaster/core/storage"
	boltStorage "github.com/taskmaster/core/storage/bolt"
	memoryStorage "github.com/taskmaster/core/storage/memory"
	sessionStore "github.com/taskmaster/core/store/session"
	taskStore "github.com/taskmaster/core/store/task"
	themeStore "github.com/taskmaster/core/store/theme"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		App:         cfg.AppName,
		Environment: cfg.Environment,
		Level:       cfg.Logger.Level,
		Encoding:    cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	appCtx, stop := lifecycle.SignalContext(context.Background())
	defer stop()

	hooks := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)

	kv, err := openStorage(cfg.Storage)
	if err != nil {
		zapLogger.Fatal("failed to open storage", zap.Error(err))
	}
	hooks.Defer("storage", func(ctx context.Context) error {
		return kv.Close()
	})

	queue := services.NewWriteQueue(kv, zapLogger, services.QueueConfig{
		Depth:         cfg.Queue.Depth,
		WriteTimeout:  cfg.Queue.WriteTimeout,
		RetryInterval: cfg.Queue.RetryInterval,
	})
	queue.Start()
	hooks.Defer("write_queue", func(ctx context.Context) error {
		queue.Stop(ctx)
		return nil
	})

	mon := monitor.New(kv, queue, 10*time.Second, zapLogger)
	mon.Start()
	hooks.Defer("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	sessions := sessionStore.New(kv, zapLogger)
	tasks := taskStore.New(kv, queue, zapLogger)
	themes := themeStore.New(kv, queue, domain.ColorScheme(cfg.Theme.SystemDefault), zapLogger)

	// Session restore must finish before the task store loads its scoped
	// data, else scoping silently resolves to "no user."
	if err := sessions.Restore(appCtx); err != nil {
		zapLogger.Fatal("session restore failed", zap.Error(err))
	}
	if err := themes.Restore(appCtx); err != nil {
		zapLogger.Fatal("theme restore failed", zap.Error(err))
	}
	if err := tasks.Load(appCtx, sessions.Current()); err != nil {
		zapLogger.Fatal("task load failed", zap.Error(err))
	}

	// Explicit session-changed transition: sign-in and sign-out reload the
	// task set for the new identity.
	sessions.OnChange(func(username string) {
		ctx, loadCancel := context.WithTimeout(context.Background(), cfg.Context.RequestTimeout)
		defer loadCancel()
		if err := tasks.Load(ctx, username); err != nil {
			zapLogger.Error("task reload failed",
				zap.String("username", username),
				zap.Error(err))
		}
	})

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Session: apiHandler.NewSessionHandler(sessions, ctxAdapter, zapLogger),
		Task:    apiHandler.NewTaskHandler(tasks, ctxAdapter, zapLogger),
		Theme:   apiHandler.NewThemeHandler(themes, ctxAdapter, zapLogger),
		Health:  apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	r := router.New(handlers)

	server := &fasthttp.Server{
		Handler:      r.Handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started", zap.String("address", cfg.Address()))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	hooks.Defer("http_server", func(ctx context.Context) error {
		return server.Shutdown()
	})

	<-appCtx.Done()

	if err := hooks.Close(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}

func openStorage(cfg config.StorageConfig) (storage.KV, error) {
	if cfg.Driver == "memory" {
		return memoryStorage.New(), nil
	}
	return boltStorage.Open(cfg.Path, cfg.Bucket)
}
