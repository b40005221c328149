package sqlite

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Snapshot пишет консистентную копию базы в файл destPath.
// VACUUM INTO делает копию без остановки записи (WAL mode).
func (s *Storage) Snapshot(ctx context.Context, destPath string) error {
	if err := os.MkdirAll(filepath.Dir(destPath), 0o750); err != nil {
		return fmt.Errorf("failed to create snapshot dir: %w", err)
	}

	// VACUUM INTO отказывается писать в существующий файл
	if err := os.Remove(destPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove stale snapshot: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, `VACUUM INTO ?`, destPath); err != nil {
		return fmt.Errorf("failed to vacuum into snapshot: %w", err)
	}

	return nil
}
