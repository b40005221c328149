package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/marketsync/pkg/api"
)

func TestEntity_DeletedAndOp(t *testing.T) {
	e := baseProduct()
	assert.False(t, e.Deleted())
	assert.Equal(t, api.OpUpsert, e.Op())

	deletedAt := time.Date(2026, 8, 2, 10, 0, 0, 0, time.UTC)
	e.DeletedAt = &deletedAt
	assert.True(t, e.Deleted())
	assert.Equal(t, api.OpDelete, e.Op())
}

func TestEntity_CloneIsDeep(t *testing.T) {
	deletedAt := time.Date(2026, 8, 2, 10, 0, 0, 0, time.UTC)
	original := baseProduct()
	original.DeletedAt = &deletedAt

	clone := original.Clone()
	require.NotSame(t, original, clone)
	assert.Equal(t, original, clone)

	// Tombstone копируется по значению, не по указателю
	*clone.DeletedAt = deletedAt.Add(time.Hour)
	assert.Equal(t, deletedAt, *original.DeletedAt)

	clone2 := original.Clone()
	clone2.Name = "Renamed"
	assert.Equal(t, "Ceramic Mug", original.Name)
}

func TestEntity_WireRoundTrip(t *testing.T) {
	deletedAt := time.Date(2026, 8, 2, 10, 0, 0, 0, time.UTC)
	original := baseProduct()
	original.DeletedAt = &deletedAt
	original.Checksum = original.ComputeChecksum()

	restored := FromAPI(original.ToAPI())
	assert.Equal(t, original, restored)
}

func TestChangeRecordFor(t *testing.T) {
	live := baseProduct()
	rec := ChangeRecordFor(live)
	assert.Equal(t, "product", rec.Entity)
	assert.Equal(t, api.OpUpsert, rec.Op)
	assert.Equal(t, live.ID, rec.Data.ID)

	deletedAt := time.Date(2026, 8, 2, 10, 0, 0, 0, time.UTC)
	dead := baseProduct()
	dead.DeletedAt = &deletedAt
	assert.Equal(t, api.OpDelete, ChangeRecordFor(dead).Op)
}

func TestValidKind(t *testing.T) {
	assert.True(t, ValidKind(KindProduct))
	assert.True(t, ValidKind(KindCategory))
	assert.False(t, ValidKind("warehouse"))
	assert.False(t, ValidKind(""))
}

func TestConflictKey(t *testing.T) {
	c := &Conflict{Kind: KindProduct, ID: "p1"}
	assert.Equal(t, "product/p1", c.Key())
}
