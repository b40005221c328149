package storage

import (
	"context"

	"github.com/iudanet/marketsync/internal/models"
)

//go:generate moq -out catalog_mock.go . CatalogStorage
//go:generate moq -out conflicts_mock.go . ConflictStorage
//go:generate moq -out metadata_mock.go . MetadataStorage

// CatalogStorage defines interface for the local catalog replica
type CatalogStorage interface {
	// SaveEntity stores or overwrites an entity in the local replica
	SaveEntity(ctx context.Context, entity *models.Entity) error

	// GetEntity retrieves an entity by kind and id, tombstones included.
	// Returns ErrEntityNotFound if entity doesn't exist
	GetEntity(ctx context.Context, kind models.EntityKind, id string) (*models.Entity, error)

	// ListEntities returns all non-deleted entities of the given kind
	ListEntities(ctx context.Context, kind models.EntityKind) ([]*models.Entity, error)

	// ListDirty returns entities with unconfirmed local changes
	// (updated_by == local), excluding entities with an open conflict
	ListDirty(ctx context.Context) ([]*models.Entity, error)

	// LatestRevision returns the maximum revision in the local replica.
	// Returns 0 for an empty replica
	LatestRevision(ctx context.Context) (int64, error)
}

// ConflictStorage defines interface for locally quarantined conflicts
type ConflictStorage interface {
	// SaveConflict stores a conflict record
	SaveConflict(ctx context.Context, conflict *models.Conflict) error

	// GetConflict retrieves a conflict by kind and id.
	// Returns ErrConflictNotFound if it doesn't exist
	GetConflict(ctx context.Context, kind models.EntityKind, id string) (*models.Conflict, error)

	// ListConflicts returns all open conflicts
	ListConflicts(ctx context.Context) ([]*models.Conflict, error)

	// DeleteConflict removes a resolved conflict.
	// Returns ErrConflictNotFound if it doesn't exist
	DeleteConflict(ctx context.Context, kind models.EntityKind, id string) error
}

// MetadataStorage defines interface for agent sync metadata
type MetadataStorage interface {
	// SavePullCursor saves the revision up to which the agent has
	// fully consumed the cloud change stream
	SavePullCursor(ctx context.Context, rev int64) error

	// GetPullCursor retrieves the pull cursor.
	// Returns 0 if no sync has been performed yet
	GetPullCursor(ctx context.Context) (int64, error)

	// AgentID returns the stable agent identifier,
	// generating and persisting it on first call
	AgentID(ctx context.Context) (string, error)
}
