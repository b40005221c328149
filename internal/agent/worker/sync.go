// Package worker содержит фоновые задачи агента.
package worker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	agentsync "github.com/iudanet/marketsync/internal/agent/sync"
)

// SyncWorker периодически запускает цикл синхронизации
type SyncWorker struct {
	logger   *slog.Logger
	service  agentsync.Service
	interval time.Duration
}

// NewSyncWorker создает воркер периодической синхронизации
func NewSyncWorker(logger *slog.Logger, service agentsync.Service, interval time.Duration) *SyncWorker {
	return &SyncWorker{
		logger:   logger,
		service:  service,
		interval: interval,
	}
}

// Run запускает цикл воркера: первая синхронизация сразу при старте,
// дальше по тикеру. Останавливается по отмене контекста
func (w *SyncWorker) Run(ctx context.Context) {
	if w.interval <= 0 {
		w.logger.Info("periodic sync disabled")
		return
	}

	w.logger.Info("sync worker started", "interval", w.interval.String())

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.runCycle(ctx)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("sync worker stopped")
			return
		case <-ticker.C:
			w.runCycle(ctx)
		}
	}
}

// runCycle выполняет одну синхронизацию; ошибки логируются,
// воркер продолжает работу до следующего тика
func (w *SyncWorker) runCycle(ctx context.Context) {
	start := time.Now()
	result, err := w.service.Sync(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		if errors.Is(err, agentsync.ErrSyncInProgress) {
			w.logger.Debug("sync cycle skipped, previous cycle still running")
			return
		}
		w.logger.Warn("sync cycle failed", "error", err)
		return
	}

	w.logger.Info("sync cycle completed",
		"cloud_applied", result.CloudChangesApplied,
		"pushed", result.LocalChangesPushed,
		"conflicts", result.Conflicts,
		"duration_ms", time.Since(start).Milliseconds())
}
