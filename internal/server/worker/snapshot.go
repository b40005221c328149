// Package worker содержит фоновые задачи сервера.
package worker

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/iudanet/marketsync/internal/server/snapshot"
	"github.com/iudanet/marketsync/internal/server/storage"
)

// SnapshotWorker периодически снимает консистентную копию каталога
// и выгружает её во внешнее хранилище
type SnapshotWorker struct {
	logger   *slog.Logger
	storage  storage.SnapshotStorage
	uploader snapshot.Uploader
	dir      string
	interval time.Duration
}

// NewSnapshotWorker создает воркер снапшотов
func NewSnapshotWorker(logger *slog.Logger, snapshotStorage storage.SnapshotStorage, uploader snapshot.Uploader, dir string, interval time.Duration) *SnapshotWorker {
	return &SnapshotWorker{
		logger:   logger,
		storage:  snapshotStorage,
		uploader: uploader,
		dir:      dir,
		interval: interval,
	}
}

// Run запускает цикл воркера: первый снапшот сразу при старте,
// дальше по тикеру. Останавливается по отмене контекста
func (w *SnapshotWorker) Run(ctx context.Context) {
	if w.interval <= 0 {
		w.logger.Info("periodic snapshots disabled")
		return
	}

	w.logger.Info("snapshot worker started", "interval", w.interval.String())

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.makeSnapshot(ctx)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("snapshot worker stopped")
			return
		case <-ticker.C:
			w.makeSnapshot(ctx)
		}
	}
}

// makeSnapshot снимает копию и выгружает её; ошибки логируются,
// воркер продолжает работу до следующего тика
func (w *SnapshotWorker) makeSnapshot(ctx context.Context) {
	destPath := filepath.Join(w.dir, "catalog.db")

	start := time.Now()
	if err := w.storage.Snapshot(ctx, destPath); err != nil {
		if ctx.Err() != nil {
			return
		}
		w.logger.Warn("snapshot creation failed", "error", err)
		return
	}

	if err := w.uploader.Upload(ctx, destPath); err != nil {
		if ctx.Err() != nil {
			return
		}
		w.logger.Warn("snapshot upload failed", "error", err)
		return
	}

	w.logger.Info("snapshot completed",
		"path", destPath,
		"duration_ms", time.Since(start).Milliseconds())
}
