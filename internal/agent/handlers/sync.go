// Package handlers содержит HTTP обработчики локального API агента.
// Слушатель привязывается к localhost и не требует аутентификации:
// им пользуются админка и инструменты на той же машине.
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	agentsync "github.com/iudanet/marketsync/internal/agent/sync"
	"github.com/iudanet/marketsync/internal/agent/storage"
	"github.com/iudanet/marketsync/pkg/api"
)

// SyncHandler обрабатывает запросы локального API синхронизации
type SyncHandler struct {
	logger    *slog.Logger
	service   agentsync.Service
	conflicts storage.ConflictStorage
	metadata  storage.MetadataStorage
}

// NewSyncHandler creates a new local sync handler
func NewSyncHandler(logger *slog.Logger, service agentsync.Service, conflicts storage.ConflictStorage, metadata storage.MetadataStorage) *SyncHandler {
	return &SyncHandler{
		logger:    logger,
		service:   service,
		conflicts: conflicts,
		metadata:  metadata,
	}
}

// HandleInitiate запускает цикл синхронизации.
// POST /sync/initiate
func (h *SyncHandler) HandleInitiate(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Sync(r.Context())
	if err != nil {
		if errors.Is(err, agentsync.ErrSyncInProgress) {
			h.writeError(w, http.StatusConflict, "sync_in_progress", err.Error())
			return
		}
		h.logger.Error("Sync cycle failed", "error", err)
		h.writeError(w, http.StatusBadGateway, "sync_failed", err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, result.Summary())
}

// HandleStatus возвращает текущее состояние агента.
// GET /sync/status
func (h *SyncHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	agentID, err := h.metadata.AgentID(ctx)
	if err != nil {
		h.logger.Error("Failed to get agent id", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal_error", "")
		return
	}

	cursor, err := h.metadata.GetPullCursor(ctx)
	if err != nil {
		h.logger.Error("Failed to get pull cursor", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal_error", "")
		return
	}

	pending, err := h.service.PendingCount(ctx)
	if err != nil {
		h.logger.Error("Failed to count pending changes", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal_error", "")
		return
	}

	conflicts, err := h.conflicts.ListConflicts(ctx)
	if err != nil {
		h.logger.Error("Failed to list conflicts", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal_error", "")
		return
	}

	h.writeJSON(w, http.StatusOK, api.AgentStatus{
		AgentID:        agentID,
		PullCursor:     cursor,
		PendingChanges: pending,
		OpenConflicts:  len(conflicts),
		SyncRunning:    h.service.Running(),
	})
}

// writeJSON пишет JSON ответ с указанным статусом
func (h *SyncHandler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("Failed to encode response", "error", err)
	}
}

// writeError пишет стандартный JSON ответ с ошибкой
func (h *SyncHandler) writeError(w http.ResponseWriter, status int, code, message string) {
	h.writeJSON(w, status, api.ErrorResponse{Error: code, Message: message})
}
