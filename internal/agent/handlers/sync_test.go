package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	agentsync "github.com/iudanet/marketsync/internal/agent/sync"
	"github.com/iudanet/marketsync/internal/agent/storage"
	"github.com/iudanet/marketsync/internal/models"
	"github.com/iudanet/marketsync/pkg/api"
)

func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

func newTestHandler(service agentsync.Service, conflicts storage.ConflictStorage, metadata storage.MetadataStorage) *SyncHandler {
	return NewSyncHandler(setupTestLogger(), service, conflicts, metadata)
}

func defaultMetadataMock() *storage.MetadataStorageMock {
	return &storage.MetadataStorageMock{
		AgentIDFunc: func(ctx context.Context) (string, error) {
			return "agent-test", nil
		},
		GetPullCursorFunc: func(ctx context.Context) (int64, error) {
			return 42, nil
		},
	}
}

func TestHandleInitiate_Success(t *testing.T) {
	service := &agentsync.ServiceMock{
		SyncFunc: func(ctx context.Context) (*agentsync.Result, error) {
			return &agentsync.Result{
				CloudChangesApplied: 3,
				LocalChangesPushed:  2,
				Conflicts:           1,
			}, nil
		},
	}
	handler := newTestHandler(service, &storage.ConflictStorageMock{}, defaultMetadataMock())

	req := httptest.NewRequest(http.MethodPost, "/sync/initiate", nil)
	w := httptest.NewRecorder()
	handler.HandleInitiate(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var summary api.SyncSummary
	require.NoError(t, json.NewDecoder(w.Body).Decode(&summary))
	assert.True(t, summary.Success)
	assert.Equal(t, 3, summary.CloudChangesApplied)
	assert.Equal(t, 2, summary.LocalChangesPushed)
	assert.Equal(t, 1, summary.Conflicts)
}

func TestHandleInitiate_AlreadyRunning(t *testing.T) {
	service := &agentsync.ServiceMock{
		SyncFunc: func(ctx context.Context) (*agentsync.Result, error) {
			return nil, agentsync.ErrSyncInProgress
		},
	}
	handler := newTestHandler(service, &storage.ConflictStorageMock{}, defaultMetadataMock())

	req := httptest.NewRequest(http.MethodPost, "/sync/initiate", nil)
	w := httptest.NewRecorder()
	handler.HandleInitiate(w, req)

	require.Equal(t, http.StatusConflict, w.Code)

	var errResp api.ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&errResp))
	assert.Equal(t, "sync_in_progress", errResp.Error)
}

func TestHandleInitiate_SyncFailed(t *testing.T) {
	service := &agentsync.ServiceMock{
		SyncFunc: func(ctx context.Context) (*agentsync.Result, error) {
			return nil, errors.New("connection refused")
		},
	}
	handler := newTestHandler(service, &storage.ConflictStorageMock{}, defaultMetadataMock())

	req := httptest.NewRequest(http.MethodPost, "/sync/initiate", nil)
	w := httptest.NewRecorder()
	handler.HandleInitiate(w, req)

	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestHandleStatus(t *testing.T) {
	service := &agentsync.ServiceMock{
		PendingCountFunc: func(ctx context.Context) (int, error) {
			return 5, nil
		},
		RunningFunc: func() bool {
			return false
		},
	}
	conflicts := &storage.ConflictStorageMock{
		ListConflictsFunc: func(ctx context.Context) ([]*models.Conflict, error) {
			return []*models.Conflict{{
				DetectedAt: time.Now(),
				Kind:       models.KindProduct,
				ID:         "p1",
			}}, nil
		},
	}
	handler := newTestHandler(service, conflicts, defaultMetadataMock())

	req := httptest.NewRequest(http.MethodGet, "/sync/status", nil)
	w := httptest.NewRecorder()
	handler.HandleStatus(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var status api.AgentStatus
	require.NoError(t, json.NewDecoder(w.Body).Decode(&status))
	assert.Equal(t, "agent-test", status.AgentID)
	assert.Equal(t, int64(42), status.PullCursor)
	assert.Equal(t, 5, status.PendingChanges)
	assert.Equal(t, 1, status.OpenConflicts)
	assert.False(t, status.SyncRunning)
}

func TestHandleStatus_StorageError(t *testing.T) {
	service := &agentsync.ServiceMock{
		PendingCountFunc: func(ctx context.Context) (int, error) {
			return 0, nil
		},
	}
	conflicts := &storage.ConflictStorageMock{
		ListConflictsFunc: func(ctx context.Context) ([]*models.Conflict, error) {
			return nil, errors.New("database closed")
		},
	}
	handler := newTestHandler(service, conflicts, defaultMetadataMock())

	req := httptest.NewRequest(http.MethodGet, "/sync/status", nil)
	w := httptest.NewRecorder()
	handler.HandleStatus(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
