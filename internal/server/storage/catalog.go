package storage

import (
	"context"

	"github.com/iudanet/marketsync/internal/models"
)

// DecideFunc принимает текущую сохраненную версию сущности (nil если её нет)
// и возвращает версию для записи. Возврат (nil, nil) означает "ничего не менять".
// Вызывается внутри транзакции, которая выделяет ревизию.
type DecideFunc func(stored *models.Entity) (*models.Entity, error)

// CatalogStorage defines interface for catalog entity persistence
type CatalogStorage interface {
	// GetEntity retrieves a single entity by kind and id, tombstones included.
	// Returns ErrEntityNotFound if entity doesn't exist
	GetEntity(ctx context.Context, kind models.EntityKind, id string) (*models.Entity, error)

	// ListChangedSince retrieves up to limit entities with rev > sinceRev,
	// ordered by rev ascending. Tombstones are included.
	ListChangedSince(ctx context.Context, sinceRev int64, limit int) ([]*models.Entity, error)

	// ListByKind retrieves all non-deleted entities of the given kind
	ListByKind(ctx context.Context, kind models.EntityKind) ([]*models.Entity, error)

	// LatestRevision returns the highest revision ever assigned.
	// Returns 0 for an empty catalog
	LatestRevision(ctx context.Context) (int64, error)

	// ApplyRecord атомарно применяет одно изменение: читает текущую версию,
	// передает её в decide, и если decide вернул сущность — выделяет новую
	// ревизию из глобального счетчика и сохраняет результат.
	// Возвращает сохраненную версию (nil если decide отказался от записи).
	ApplyRecord(ctx context.Context, kind models.EntityKind, id string, decide DecideFunc) (*models.Entity, error)
}

// SnapshotStorage defines interface for catalog snapshot creation
type SnapshotStorage interface {
	// Snapshot пишет консистентную копию базы в файл destPath
	Snapshot(ctx context.Context, destPath string) error
}

// Pinger проверяет доступность хранилища, используется в health check
type Pinger interface {
	Ping(ctx context.Context) error
}
