package boltdb

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/marketsync/internal/agent/storage"
	"github.com/iudanet/marketsync/internal/models"
)

func testConflict(id string) *models.Conflict {
	local := testProduct(id, 3, models.OriginLocal)
	remote := testProduct(id, 5, models.OriginCloud)
	remote.Name = "Молоко 2.5%"
	remote.Checksum = remote.ComputeChecksum()

	return &models.Conflict{
		DetectedAt: time.Now().UTC().Truncate(time.Second),
		Kind:       models.KindProduct,
		ID:         id,
		Reason:     "incoming revision is not newer than stored",
		Local:      local,
		Remote:     remote,
	}
}

func TestStorage_SaveAndGetConflict(t *testing.T) {
	ctx := context.Background()
	s := createTestStorage(t)

	conflict := testConflict("prod-1")
	require.NoError(t, s.SaveConflict(ctx, conflict))

	got, err := s.GetConflict(ctx, models.KindProduct, "prod-1")
	require.NoError(t, err)

	assert.Equal(t, conflict.Reason, got.Reason)
	require.NotNil(t, got.Local)
	require.NotNil(t, got.Remote)
	assert.Equal(t, "Молоко 3.2%", got.Local.Name)
	assert.Equal(t, "Молоко 2.5%", got.Remote.Name)
}

func TestStorage_GetConflict_NotFound(t *testing.T) {
	ctx := context.Background()
	s := createTestStorage(t)

	_, err := s.GetConflict(ctx, models.KindProduct, "missing")
	assert.ErrorIs(t, err, storage.ErrConflictNotFound)
}

func TestStorage_ListConflicts(t *testing.T) {
	ctx := context.Background()
	s := createTestStorage(t)

	list, err := s.ListConflicts(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	require.NoError(t, s.SaveConflict(ctx, testConflict("prod-1")))
	require.NoError(t, s.SaveConflict(ctx, testConflict("prod-2")))

	list, err = s.ListConflicts(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestStorage_DeleteConflict(t *testing.T) {
	ctx := context.Background()
	s := createTestStorage(t)

	require.NoError(t, s.SaveConflict(ctx, testConflict("prod-1")))
	require.NoError(t, s.DeleteConflict(ctx, models.KindProduct, "prod-1"))

	_, err := s.GetConflict(ctx, models.KindProduct, "prod-1")
	assert.ErrorIs(t, err, storage.ErrConflictNotFound)

	// Повторное удаление — ошибка
	err = s.DeleteConflict(ctx, models.KindProduct, "prod-1")
	assert.ErrorIs(t, err, storage.ErrConflictNotFound)
}
