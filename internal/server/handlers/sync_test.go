package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/marketsync/internal/conflict"
	"github.com/iudanet/marketsync/internal/models"
	"github.com/iudanet/marketsync/internal/server/storage"
	"github.com/iudanet/marketsync/pkg/api"
)

// setupTestLogger creates a logger for testing
func setupTestLogger() *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: slog.LevelError, // Only show errors in tests
	}
	handler := slog.NewTextHandler(os.Stdout, opts)
	return slog.New(handler)
}

// mockCatalogStorage is an in-memory mock implementation of CatalogStorage
type mockCatalogStorage struct {
	entities map[string]*models.Entity // kind/id -> entity
	listErr  error
	applyErr error
	rev      int64
}

func newMockCatalogStorage() *mockCatalogStorage {
	return &mockCatalogStorage{entities: make(map[string]*models.Entity)}
}

func storageKey(kind models.EntityKind, id string) string {
	return string(kind) + "/" + id
}

func (m *mockCatalogStorage) ListChangedSince(ctx context.Context, sinceRev int64, limit int) ([]*models.Entity, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}

	var result []*models.Entity
	for _, e := range m.entities {
		if e.Rev > sinceRev {
			result = append(result, e.Clone())
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Rev < result[j].Rev })
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (m *mockCatalogStorage) LatestRevision(ctx context.Context) (int64, error) {
	return m.rev, nil
}

func (m *mockCatalogStorage) ApplyRecord(ctx context.Context, kind models.EntityKind, id string, decide storage.DecideFunc) (*models.Entity, error) {
	if m.applyErr != nil {
		return nil, m.applyErr
	}

	var stored *models.Entity
	if existing, ok := m.entities[storageKey(kind, id)]; ok {
		stored = existing.Clone()
	}

	result, err := decide(stored)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, nil
	}

	m.rev++
	result.Rev = m.rev
	m.entities[storageKey(kind, id)] = result.Clone()
	return result, nil
}

// seed сохраняет сущность напрямую, минуя резолвер
func (m *mockCatalogStorage) seed(e *models.Entity) *models.Entity {
	m.rev++
	stored := e.Clone()
	stored.Rev = m.rev
	m.entities[storageKey(e.Kind, e.ID)] = stored
	return stored.Clone()
}

func testEntity(id string, rev int64) *models.Entity {
	e := &models.Entity{
		ID:         id,
		Kind:       models.KindProduct,
		Name:       "Чай черный",
		PriceCents: 45000,
		CategoryID: "cat-grocery",
		Active:     true,
		Rev:        rev,
		UpdatedAt:  time.Now().UTC().Truncate(time.Second),
		UpdatedBy:  models.OriginCloud,
	}
	e.Checksum = e.ComputeChecksum()
	return e
}

func newTestSyncHandler(s CatalogStorage) *SyncHandler {
	return NewSyncHandler(setupTestLogger(), s, 100, 500)
}

func withAgent(req *http.Request) *http.Request {
	ctx := context.WithValue(req.Context(), AgentIDKey, "store-042")
	return req.WithContext(ctx)
}

func TestSyncHandler_HandlePull_Unauthorized(t *testing.T) {
	handler := newTestSyncHandler(newMockCatalogStorage())

	req := httptest.NewRequest(http.MethodGet, "/sync/pull", nil)
	// Агент не установлен в контексте

	w := httptest.NewRecorder()
	handler.HandlePull(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSyncHandler_HandlePull_Success(t *testing.T) {
	mock := newMockCatalogStorage()
	for i := 0; i < 5; i++ {
		mock.seed(testEntity("prod-"+string(rune('a'+i)), 0))
	}
	handler := newTestSyncHandler(mock)

	tests := []struct {
		name        string
		url         string
		wantCount   int
		wantHasMore bool
	}{
		{
			name:        "all from zero",
			url:         "/sync/pull?sinceRev=0",
			wantCount:   5,
			wantHasMore: false,
		},
		{
			name:        "no params uses defaults",
			url:         "/sync/pull",
			wantCount:   5,
			wantHasMore: false,
		},
		{
			name:        "middle of the stream",
			url:         "/sync/pull?sinceRev=3",
			wantCount:   2,
			wantHasMore: false,
		},
		{
			name:        "limit hit means hasMore",
			url:         "/sync/pull?sinceRev=0&limit=2",
			wantCount:   2,
			wantHasMore: true,
		},
		{
			name:        "exactly at the end",
			url:         "/sync/pull?sinceRev=5",
			wantCount:   0,
			wantHasMore: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := withAgent(httptest.NewRequest(http.MethodGet, tt.url, nil))
			w := httptest.NewRecorder()
			handler.HandlePull(w, req)

			require.Equal(t, http.StatusOK, w.Code)

			var resp api.PullResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))

			assert.Len(t, resp.Changes, tt.wantCount)
			assert.Equal(t, tt.wantHasMore, resp.HasMore)
			// latest_rev всегда глобальный максимум, даже при неполной выдаче
			assert.Equal(t, int64(5), resp.LatestRev)

			// Изменения упорядочены по возрастанию ревизий
			for i := 1; i < len(resp.Changes); i++ {
				assert.Greater(t, resp.Changes[i].Data.Rev, resp.Changes[i-1].Data.Rev)
			}
		})
	}
}

func TestSyncHandler_HandlePull_BadParams(t *testing.T) {
	handler := newTestSyncHandler(newMockCatalogStorage())

	tests := []struct {
		name string
		url  string
	}{
		{
			name: "non-numeric sinceRev",
			url:  "/sync/pull?sinceRev=abc",
		},
		{
			name: "negative sinceRev",
			url:  "/sync/pull?sinceRev=-1",
		},
		{
			name: "non-numeric limit",
			url:  "/sync/pull?limit=ten",
		},
		{
			name: "zero limit",
			url:  "/sync/pull?limit=0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := withAgent(httptest.NewRequest(http.MethodGet, tt.url, nil))
			w := httptest.NewRecorder()
			handler.HandlePull(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestSyncHandler_HandlePull_LimitClamped(t *testing.T) {
	mock := newMockCatalogStorage()
	for i := 0; i < 10; i++ {
		mock.seed(testEntity("prod-"+string(rune('a'+i)), 0))
	}
	// maxLimit ниже запрошенного
	handler := NewSyncHandler(setupTestLogger(), mock, 5, 7)

	req := withAgent(httptest.NewRequest(http.MethodGet, "/sync/pull?limit=100", nil))
	w := httptest.NewRecorder()
	handler.HandlePull(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp api.PullResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))

	assert.Len(t, resp.Changes, 7)
	assert.True(t, resp.HasMore)
}

func pushBatch(t *testing.T, handler *SyncHandler, batch api.ChangeBatch) (*httptest.ResponseRecorder, api.PushResponse) {
	t.Helper()

	body, err := json.Marshal(batch)
	require.NoError(t, err)

	req := withAgent(httptest.NewRequest(http.MethodPost, "/sync/push", bytes.NewReader(body)))
	w := httptest.NewRecorder()
	handler.HandlePush(w, req)

	var resp api.PushResponse
	if w.Code == http.StatusOK {
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	}
	return w, resp
}

func TestSyncHandler_HandlePush_InvalidBody(t *testing.T) {
	handler := newTestSyncHandler(newMockCatalogStorage())

	req := withAgent(httptest.NewRequest(http.MethodPost, "/sync/push", bytes.NewReader([]byte("invalid json"))))
	w := httptest.NewRecorder()
	handler.HandlePush(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSyncHandler_HandlePush_ValidationRejected(t *testing.T) {
	handler := newTestSyncHandler(newMockCatalogStorage())

	// Пустой client_id не проходит валидацию
	batch := api.ChangeBatch{
		ClientID: "",
		Changes:  []api.ChangeRecord{models.ChangeRecordFor(testEntity("prod-1", 1))},
	}

	w, _ := pushBatch(t, handler, batch)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSyncHandler_HandlePush_AppliesNewEntity(t *testing.T) {
	mock := newMockCatalogStorage()
	handler := newTestSyncHandler(mock)

	local := testEntity("prod-1", 1)
	local.UpdatedBy = models.OriginLocal

	batch := api.ChangeBatch{
		ClientID:  "store-042",
		ClientRev: 0,
		Changes:   []api.ChangeRecord{models.ChangeRecordFor(local)},
	}

	w, resp := pushBatch(t, handler, batch)
	require.Equal(t, http.StatusOK, w.Code)

	assert.True(t, resp.Success)
	assert.Equal(t, 1, resp.AppliedCount)
	assert.Empty(t, resp.Conflicts)
	assert.Equal(t, int64(1), resp.LatestRev)

	// Принятая версия принадлежит облаку, ревизия назначена сервером
	stored := mock.entities[storageKey(models.KindProduct, "prod-1")]
	require.NotNil(t, stored)
	assert.Equal(t, models.OriginCloud, stored.UpdatedBy)
	assert.Equal(t, int64(1), stored.Rev)
}

func TestSyncHandler_HandlePush_IdempotentReplay(t *testing.T) {
	mock := newMockCatalogStorage()
	handler := newTestSyncHandler(mock)

	local := testEntity("prod-1", 1)
	local.UpdatedBy = models.OriginLocal
	batch := api.ChangeBatch{
		ClientID: "store-042",
		Changes:  []api.ChangeRecord{models.ChangeRecordFor(local)},
	}

	_, first := pushBatch(t, handler, batch)
	require.Equal(t, 1, first.AppliedCount)

	// Повтор того же пакета: содержимое совпадает по checksum,
	// запись числится примененной, но новая ревизия не тратится
	_, second := pushBatch(t, handler, batch)
	assert.Equal(t, 1, second.AppliedCount)
	assert.Empty(t, second.Conflicts)
	assert.Equal(t, first.LatestRev, second.LatestRev)
}

func TestSyncHandler_HandlePush_StaleRevisionConflict(t *testing.T) {
	mock := newMockCatalogStorage()
	cloudVersion := testEntity("prod-1", 0)
	cloudVersion.Name = "Чай зеленый"
	cloudVersion.Checksum = cloudVersion.ComputeChecksum()
	stored := mock.seed(cloudVersion)

	handler := newTestSyncHandler(mock)

	// Агент редактировал на базе той же (или меньшей) ревизии
	local := testEntity("prod-1", stored.Rev)
	local.UpdatedBy = models.OriginLocal

	batch := api.ChangeBatch{
		ClientID: "store-042",
		Changes:  []api.ChangeRecord{models.ChangeRecordFor(local)},
	}

	w, resp := pushBatch(t, handler, batch)
	require.Equal(t, http.StatusOK, w.Code)

	assert.True(t, resp.Success)
	assert.Equal(t, 0, resp.AppliedCount)
	require.Len(t, resp.Conflicts, 1)

	rec := resp.Conflicts[0]
	assert.Equal(t, "prod-1", rec.ID)
	assert.Equal(t, conflict.ReasonStaleRevision, rec.Reason)
	// Обе версии возвращаются для ручного разбора
	assert.Equal(t, "Чай черный", rec.Incoming.Name)
	assert.Equal(t, "Чай зеленый", rec.Stored.Name)

	// Сохраненная версия не изменилась
	kept := mock.entities[storageKey(models.KindProduct, "prod-1")]
	assert.Equal(t, "Чай зеленый", kept.Name)
}

func TestSyncHandler_HandlePush_AgentDeletionWins(t *testing.T) {
	mock := newMockCatalogStorage()
	stored := mock.seed(testEntity("prod-1", 0))

	handler := newTestSyncHandler(mock)

	// Агент удалил запись на базе текущей ревизии
	deletedAt := time.Now().UTC().Truncate(time.Second)
	local := stored.Clone()
	local.UpdatedBy = models.OriginLocal
	local.DeletedAt = &deletedAt
	local.Checksum = local.ComputeChecksum()

	batch := api.ChangeBatch{
		ClientID: "store-042",
		Changes:  []api.ChangeRecord{models.ChangeRecordFor(local)},
	}

	w, resp := pushBatch(t, handler, batch)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, 1, resp.AppliedCount)
	assert.Empty(t, resp.Conflicts)

	kept := mock.entities[storageKey(models.KindProduct, "prod-1")]
	require.NotNil(t, kept.DeletedAt)
}

func TestSyncHandler_HandlePush_CloudTombstoneWins(t *testing.T) {
	mock := newMockCatalogStorage()

	// В облаке запись уже удалена
	deletedAt := time.Now().UTC().Truncate(time.Second)
	cloudVersion := testEntity("prod-1", 0)
	cloudVersion.DeletedAt = &deletedAt
	cloudVersion.Checksum = cloudVersion.ComputeChecksum()
	stored := mock.seed(cloudVersion)

	handler := newTestSyncHandler(mock)

	// Агент параллельно редактировал живую копию на базе старой ревизии
	local := testEntity("prod-1", stored.Rev)
	local.Name = "Чай улун"
	local.UpdatedBy = models.OriginLocal
	local.Checksum = local.ComputeChecksum()

	batch := api.ChangeBatch{
		ClientID: "store-042",
		Changes:  []api.ChangeRecord{models.ChangeRecordFor(local)},
	}

	w, resp := pushBatch(t, handler, batch)
	require.Equal(t, http.StatusOK, w.Code)

	// Удаление разрешается автоматически, без записи в conflicts
	assert.Equal(t, 1, resp.AppliedCount)
	assert.Empty(t, resp.Conflicts)

	// Tombstone сохранен поверх живого редактирования и перештампован
	kept := mock.entities[storageKey(models.KindProduct, "prod-1")]
	require.NotNil(t, kept.DeletedAt)
	assert.Equal(t, deletedAt, kept.DeletedAt.UTC())
	assert.Greater(t, kept.Rev, stored.Rev)
	assert.Equal(t, models.OriginCloud, kept.UpdatedBy)
	assert.Equal(t, kept.ComputeChecksum(), kept.Checksum)
}

func TestSyncHandler_HandlePush_MixedBatch(t *testing.T) {
	mock := newMockCatalogStorage()
	staleBase := mock.seed(testEntity("prod-stale", 0))

	handler := newTestSyncHandler(mock)

	fresh := testEntity("prod-fresh", 1)
	fresh.UpdatedBy = models.OriginLocal

	stale := testEntity("prod-stale", staleBase.Rev)
	stale.Name = "Другое имя"
	stale.UpdatedBy = models.OriginLocal
	stale.Checksum = stale.ComputeChecksum()

	batch := api.ChangeBatch{
		ClientID: "store-042",
		Changes: []api.ChangeRecord{
			models.ChangeRecordFor(fresh),
			models.ChangeRecordFor(stale),
		},
	}

	w, resp := pushBatch(t, handler, batch)
	require.Equal(t, http.StatusOK, w.Code)

	// Конфликт одной записи не мешает применению остальных
	assert.Equal(t, 1, resp.AppliedCount)
	assert.Len(t, resp.Conflicts, 1)
	assert.True(t, resp.Success)
}
