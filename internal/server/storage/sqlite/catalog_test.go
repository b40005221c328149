package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/marketsync/internal/models"
	"github.com/iudanet/marketsync/internal/server/storage"
)

func setupTestStorage(t *testing.T) (*Storage, func()) {
	ctx := context.Background()

	// Используем in-memory database для тестов
	s, err := New(ctx, ":memory:")
	require.NoError(t, err)

	cleanup := func() {
		_ = s.Close()
	}

	return s, cleanup
}

// seedEntity сохраняет сущность через ApplyRecord и возвращает её с назначенной ревизией
func seedEntity(t *testing.T, ctx context.Context, s *Storage, e *models.Entity) *models.Entity {
	t.Helper()

	saved, err := s.ApplyRecord(ctx, e.Kind, e.ID, func(_ *models.Entity) (*models.Entity, error) {
		return e, nil
	})
	require.NoError(t, err)
	require.NotNil(t, saved)
	return saved
}

func testProduct(id string) *models.Entity {
	e := &models.Entity{
		ID:          id,
		Kind:        models.KindProduct,
		Name:        "Кофе зерновой",
		Description: "1 кг, средняя обжарка",
		PriceCents:  129900,
		CategoryID:  "cat-grocery",
		Active:      true,
		UpdatedAt:   time.Now().UTC().Truncate(time.Second),
		UpdatedBy:   models.OriginCloud,
	}
	e.Checksum = e.ComputeChecksum()
	return e
}

func TestCatalogStorage_ApplyRecord_Create(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	product := testProduct(uuid.New().String())
	saved := seedEntity(t, ctx, s, product)

	// Первая запись получает ревизию 1
	assert.Equal(t, int64(1), saved.Rev)

	got, err := s.GetEntity(ctx, models.KindProduct, product.ID)
	require.NoError(t, err)
	assert.Equal(t, product.Name, got.Name)
	assert.Equal(t, product.PriceCents, got.PriceCents)
	assert.Equal(t, int64(1), got.Rev)
	assert.Nil(t, got.DeletedAt)
}

func TestCatalogStorage_ApplyRecord_RevisionsAreGlobal(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	// Ревизии монотонно растут через продукты и категории
	p1 := seedEntity(t, ctx, s, testProduct(uuid.New().String()))

	category := &models.Entity{
		ID:        "cat-grocery",
		Kind:      models.KindCategory,
		Name:      "Бакалея",
		Active:    true,
		UpdatedAt: time.Now().UTC(),
		UpdatedBy: models.OriginCloud,
	}
	category.Checksum = category.ComputeChecksum()
	c1 := seedEntity(t, ctx, s, category)

	p2 := seedEntity(t, ctx, s, testProduct(uuid.New().String()))

	assert.Equal(t, int64(1), p1.Rev)
	assert.Equal(t, int64(2), c1.Rev)
	assert.Equal(t, int64(3), p2.Rev)

	latest, err := s.LatestRevision(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), latest)
}

func TestCatalogStorage_ApplyRecord_Update(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	product := testProduct(uuid.New().String())
	seedEntity(t, ctx, s, product)

	// Обновление видит сохраненную версию и получает новую ревизию
	updated, err := s.ApplyRecord(ctx, product.Kind, product.ID, func(stored *models.Entity) (*models.Entity, error) {
		require.NotNil(t, stored)
		require.Equal(t, int64(1), stored.Rev)

		next := stored.Clone()
		next.PriceCents = 149900
		next.Checksum = next.ComputeChecksum()
		return next, nil
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated.Rev)

	got, err := s.GetEntity(ctx, product.Kind, product.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(149900), got.PriceCents)
	assert.Equal(t, int64(2), got.Rev)
}

func TestCatalogStorage_ApplyRecord_DecideSkips(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	product := testProduct(uuid.New().String())
	seedEntity(t, ctx, s, product)

	// Отказ decide не тратит ревизию
	result, err := s.ApplyRecord(ctx, product.Kind, product.ID, func(_ *models.Entity) (*models.Entity, error) {
		return nil, nil
	})
	require.NoError(t, err)
	assert.Nil(t, result)

	latest, err := s.LatestRevision(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), latest)
}

func TestCatalogStorage_ApplyRecord_Tombstone(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	product := testProduct(uuid.New().String())
	seedEntity(t, ctx, s, product)

	deletedAt := time.Now().UTC().Truncate(time.Second)
	_, err := s.ApplyRecord(ctx, product.Kind, product.ID, func(stored *models.Entity) (*models.Entity, error) {
		next := stored.Clone()
		next.DeletedAt = &deletedAt
		next.Checksum = next.ComputeChecksum()
		return next, nil
	})
	require.NoError(t, err)

	// Tombstone остается читаемым через GetEntity
	got, err := s.GetEntity(ctx, product.Kind, product.ID)
	require.NoError(t, err)
	require.NotNil(t, got.DeletedAt)
	assert.Equal(t, deletedAt.Unix(), got.DeletedAt.Unix())

	// Но исчезает из списка живых
	live, err := s.ListByKind(ctx, models.KindProduct)
	require.NoError(t, err)
	assert.Empty(t, live)

	// И продолжает отдаваться в списке изменений
	changed, err := s.ListChangedSince(ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, changed, 1)
	assert.NotNil(t, changed[0].DeletedAt)
}

func TestCatalogStorage_GetEntity_NotFound(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	_, err := s.GetEntity(ctx, models.KindProduct, "does-not-exist")
	assert.ErrorIs(t, err, storage.ErrEntityNotFound)
}

func TestCatalogStorage_ListChangedSince(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	for i := 0; i < 5; i++ {
		seedEntity(t, ctx, s, testProduct(uuid.New().String()))
	}

	tests := []struct {
		name      string
		sinceRev  int64
		limit     int
		wantCount int
		wantFirst int64
	}{
		{
			name:      "all from zero",
			sinceRev:  0,
			limit:     10,
			wantCount: 5,
			wantFirst: 1,
		},
		{
			name:      "middle of the stream",
			sinceRev:  2,
			limit:     10,
			wantCount: 3,
			wantFirst: 3,
		},
		{
			name:      "limit truncates",
			sinceRev:  0,
			limit:     2,
			wantCount: 2,
			wantFirst: 1,
		},
		{
			name:      "past the end",
			sinceRev:  5,
			limit:     10,
			wantCount: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.ListChangedSince(ctx, tt.sinceRev, tt.limit)
			require.NoError(t, err)
			require.Len(t, got, tt.wantCount)

			if tt.wantCount > 0 {
				assert.Equal(t, tt.wantFirst, got[0].Rev)
				// Порядок строго по возрастанию ревизий
				for i := 1; i < len(got); i++ {
					assert.Greater(t, got[i].Rev, got[i-1].Rev)
				}
			}
		})
	}
}

func TestCatalogStorage_LatestRevision_Empty(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	latest, err := s.LatestRevision(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), latest)
}
