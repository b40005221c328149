package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/iudanet/marketsync/internal/conflict"
	"github.com/iudanet/marketsync/internal/models"
	"github.com/iudanet/marketsync/internal/server/storage"
	"github.com/iudanet/marketsync/internal/validation"
	"github.com/iudanet/marketsync/pkg/api"
)

// CatalogStorage определяет интерфейс для работы с каталогом
type CatalogStorage interface {
	ListChangedSince(ctx context.Context, sinceRev int64, limit int) ([]*models.Entity, error)
	LatestRevision(ctx context.Context) (int64, error)
	ApplyRecord(ctx context.Context, kind models.EntityKind, id string, decide storage.DecideFunc) (*models.Entity, error)
}

// SyncHandler handles synchronization requests
type SyncHandler struct {
	logger       *slog.Logger
	storage      CatalogStorage
	defaultLimit int
	maxLimit     int
}

// NewSyncHandler creates a new sync handler
func NewSyncHandler(logger *slog.Logger, catalogStorage CatalogStorage, defaultLimit, maxLimit int) *SyncHandler {
	return &SyncHandler{
		logger:       logger,
		storage:      catalogStorage,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
	}
}

// HandlePull обрабатывает GET /sync/pull?sinceRev=N&limit=M
// Возвращает до limit изменений с ревизией строго больше sinceRev,
// упорядоченных по возрастанию ревизии. Tombstones включены.
func (h *SyncHandler) HandlePull(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	agentID, ok := GetAgentID(ctx)
	if !ok {
		h.logger.Error("Agent ID not found in context")
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	sinceRev, err := parseQueryInt64(r, "sinceRev", 0)
	if err != nil || sinceRev < 0 {
		h.writeError(w, http.StatusBadRequest, "invalid_request", "invalid sinceRev parameter")
		return
	}

	limit64, err := parseQueryInt64(r, "limit", int64(h.defaultLimit))
	if err != nil || limit64 < 1 {
		h.writeError(w, http.StatusBadRequest, "invalid_request", "invalid limit parameter")
		return
	}
	limit := int(limit64)
	if limit > h.maxLimit {
		limit = h.maxLimit
	}

	entities, err := h.storage.ListChangedSince(ctx, sinceRev, limit)
	if err != nil {
		h.logger.Error("Failed to list changed entities", "error", err, "agent_id", agentID)
		h.writeError(w, http.StatusInternalServerError, "internal_error", "")
		return
	}

	latestRev, err := h.storage.LatestRevision(ctx)
	if err != nil {
		h.logger.Error("Failed to read latest revision", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal_error", "")
		return
	}

	changes := make([]api.ChangeRecord, 0, len(entities))
	for _, entity := range entities {
		changes = append(changes, models.ChangeRecordFor(entity))
	}

	// latest_rev всегда глобальный максимум, независимо от limit:
	// агент сравнивает его со своим курсором, чтобы понять, догнал ли облако
	response := api.PullResponse{
		Changes:   changes,
		SinceRev:  sinceRev,
		LatestRev: latestRev,
		HasMore:   len(changes) == limit,
	}

	h.writeJSON(w, http.StatusOK, response)

	h.logger.Info("Pull completed",
		"agent_id", agentID,
		"since_rev", sinceRev,
		"returned", len(changes),
		"has_more", response.HasMore)
}

// HandlePush обрабатывает POST /sync/push
// Применяет пакет изменений от агента. Каждая запись проходит через
// резолвер конфликтов; отклоненные записи возвращаются в conflicts.
// Конфликты — данные, не ошибка: статус остается 200
func (h *SyncHandler) HandlePush(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	agentID, ok := GetAgentID(ctx)
	if !ok {
		h.logger.Error("Agent ID not found in context")
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var batch api.ChangeBatch
	if err := json.NewDecoder(r.Body).Decode(&batch); err != nil {
		h.logger.Warn("Failed to decode change batch", "error", err, "agent_id", agentID)
		h.writeError(w, http.StatusBadRequest, "invalid_request", "invalid request body")
		return
	}

	if err := validation.ValidateBatch(batch); err != nil {
		h.logger.Warn("Change batch rejected", "error", err, "agent_id", agentID)
		h.writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	h.logger.Info("Push request",
		"agent_id", agentID,
		"client_id", batch.ClientID,
		"client_rev", batch.ClientRev,
		"changes", len(batch.Changes))

	applied := 0
	var conflicts []api.ConflictRecord

	for _, change := range batch.Changes {
		conflictRec, err := h.applyChange(ctx, change)
		if err != nil {
			h.logger.Error("Failed to apply change",
				"error", err,
				"entity", change.Entity,
				"id", change.Data.ID)
			h.writeError(w, http.StatusInternalServerError, "internal_error", "")
			return
		}
		if conflictRec != nil {
			conflicts = append(conflicts, *conflictRec)
			continue
		}
		applied++
	}

	latestRev, err := h.storage.LatestRevision(ctx)
	if err != nil {
		h.logger.Error("Failed to read latest revision", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal_error", "")
		return
	}

	response := api.PushResponse{
		Conflicts:    conflicts,
		AppliedCount: applied,
		LatestRev:    latestRev,
		Success:      true,
	}

	h.writeJSON(w, http.StatusOK, response)

	h.logger.Info("Push completed",
		"agent_id", agentID,
		"applied", applied,
		"conflicts", len(conflicts),
		"latest_rev", latestRev)
}

// applyChange применяет одну запись пакета. Возвращает ConflictRecord,
// если запись отклонена резолвером, и nil при успешном применении
func (h *SyncHandler) applyChange(ctx context.Context, change api.ChangeRecord) (*api.ConflictRecord, error) {
	incoming := models.FromAPI(change.Data)

	var conflictRec *api.ConflictRecord

	_, err := h.storage.ApplyRecord(ctx, incoming.Kind, incoming.ID, func(stored *models.Entity) (*models.Entity, error) {
		// Первая версия записи применяется без резолвера
		if stored == nil {
			return acceptIncoming(incoming), nil
		}

		verdict, reason := conflict.Resolve(stored, incoming)
		switch verdict {
		case conflict.VerdictApply:
			if stored.Checksum == incoming.Checksum {
				// Идемпотентный повтор: содержимое уже в облаке,
				// запись не трогаем и ревизию не тратим
				return nil, nil
			}
			return acceptIncoming(incoming), nil

		case conflict.VerdictTombstoneWins:
			// Удаление разрешается автоматически: deletedAt берется
			// с той стороны, где он есть, запись перештамповывается.
			// Агент увидит итоговый tombstone при следующем pull
			next := acceptIncoming(incoming)
			if !incoming.Deleted() {
				deletedAt := *stored.DeletedAt
				next.DeletedAt = &deletedAt
				next.Checksum = next.ComputeChecksum()
			}
			return next, nil

		default:
			conflictRec = &api.ConflictRecord{
				Entity:   string(stored.Kind),
				ID:       stored.ID,
				Reason:   reason,
				Incoming: incoming.ToAPI(),
				Stored:   stored.ToAPI(),
			}
			return nil, nil
		}
	})
	if err != nil {
		return nil, err
	}

	return conflictRec, nil
}

// acceptIncoming готовит принятую версию к записи: облако становится
// владельцем версии, checksum пересчитывается на случай расхождения.
// Новая ревизия назначается хранилищем
func acceptIncoming(incoming *models.Entity) *models.Entity {
	next := incoming.Clone()
	next.UpdatedBy = models.OriginCloud
	next.Checksum = next.ComputeChecksum()
	return next
}

// parseQueryInt64 парсит числовой query-параметр с значением по умолчанию
func parseQueryInt64(r *http.Request, name string, defaultValue int64) (int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return defaultValue, nil
	}
	return strconv.ParseInt(raw, 10, 64)
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
