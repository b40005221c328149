package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/iudanet/marketsync/internal/agent/handlers"
	"github.com/iudanet/marketsync/internal/agent/router"
	"github.com/iudanet/marketsync/internal/agent/storage/boltdb"
	"github.com/iudanet/marketsync/internal/agent/worker"
	"github.com/iudanet/marketsync/internal/config"
)

// RunServe запускает локальный API агента и, при настроенном интервале,
// фоновую периодическую синхронизацию. Останавливается по SIGINT/SIGTERM.
func RunServe(ctx context.Context, cfg *config.AgentConfig, store *boltdb.Storage, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	service := newSyncService(cfg, store, logger)

	syncHandler := handlers.NewSyncHandler(logger, service, store, store)

	server := &http.Server{
		Addr:         cfg.Listen,
		Handler:      router.New(syncHandler),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 5 * time.Minute, // цикл синхронизации может быть долгим
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.NewSyncWorker(logger, service, time.Duration(cfg.Sync.Interval)).Run(ctx)
	}()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("agent listener started", "addr", cfg.Listen)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		stop()
		wg.Wait()
		return fmt.Errorf("agent listener failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down agent")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("agent listener shutdown failed", "error", err)
	}

	wg.Wait()
	return nil
}
