// Package sync реализует цикл синхронизации агента: pull изменений
// облака в локальную реплику, затем push локальных изменений.
package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	gosync "sync"
	"sync/atomic"
	"time"

	httpClient "github.com/iudanet/marketsync/internal/agent/api"
	"github.com/iudanet/marketsync/internal/agent/storage"
	"github.com/iudanet/marketsync/internal/models"
	"github.com/iudanet/marketsync/pkg/api"
)

// ErrSyncInProgress возвращается, когда цикл синхронизации уже идет:
// перекрывающиеся циклы отклоняются, не выстраиваются в очередь
var ErrSyncInProgress = errors.New("synchronization cycle is already running")

//go:generate moq -out service_mock.go . Service

// Service определяет интерфейс сервиса синхронизации
type Service interface {
	// Sync выполняет полный цикл синхронизации: сперва pull, затем push.
	// Ошибка pull прерывает цикл до отправки локальных изменений.
	// Возвращает ErrSyncInProgress, если цикл уже выполняется
	Sync(ctx context.Context) (*Result, error)

	// PendingCount возвращает количество локальных изменений,
	// ожидающих отправки в облако
	PendingCount(ctx context.Context) (int, error)

	// Running сообщает, выполняется ли цикл синхронизации сейчас
	Running() bool
}

// service handles synchronization between the agent and the cloud
type service struct {
	apiClient httpClient.ClientAPI
	catalog   storage.CatalogStorage
	conflicts storage.ConflictStorage
	metadata  storage.MetadataStorage
	logger    *slog.Logger
	pullLimit int

	syncMu  gosync.Mutex
	running atomic.Bool
}

// NewService creates a new sync service
func NewService(apiClient httpClient.ClientAPI, catalog storage.CatalogStorage, conflicts storage.ConflictStorage, metadata storage.MetadataStorage, pullLimit int, logger *slog.Logger) Service {
	return &service{
		apiClient: apiClient,
		catalog:   catalog,
		conflicts: conflicts,
		metadata:  metadata,
		pullLimit: pullLimit,
		logger:    logger,
	}
}

// Result contains sync cycle results
type Result struct {
	CloudChangesApplied int // применено изменений облака
	LocalChangesPushed  int // принято облаком локальных изменений
	Conflicts           int // новых конфликтов за цикл
}

// Summary конвертирует результат в wire-формат локального API агента
func (r *Result) Summary() api.SyncSummary {
	return api.SyncSummary{
		CloudChangesApplied: r.CloudChangesApplied,
		LocalChangesPushed:  r.LocalChangesPushed,
		Conflicts:           r.Conflicts,
		Success:             true,
	}
}

// Sync выполняет полный цикл синхронизации.
// Порядок фиксирован: pull до push, чтобы локальные изменения
// отправлялись уже поверх максимально свежей реплики
func (s *service) Sync(ctx context.Context) (*Result, error) {
	if !s.syncMu.TryLock() {
		return nil, ErrSyncInProgress
	}
	defer s.syncMu.Unlock()

	s.running.Store(true)
	defer s.running.Store(false)

	s.logger.Info("Starting synchronization")

	result := &Result{}

	if err := s.pull(ctx, result); err != nil {
		return nil, fmt.Errorf("pull phase failed: %w", err)
	}

	if err := s.push(ctx, result); err != nil {
		return nil, fmt.Errorf("push phase failed: %w", err)
	}

	s.logger.Info("Synchronization completed",
		"cloud_applied", result.CloudChangesApplied,
		"pushed", result.LocalChangesPushed,
		"conflicts", result.Conflicts)

	return result, nil
}

// pull выкачивает изменения облака страницами, пока has_more, и
// продвигает персистентный курсор по фактически примененным ревизиям
func (s *service) pull(ctx context.Context, result *Result) error {
	cursor, err := s.metadata.GetPullCursor(ctx)
	if err != nil {
		return fmt.Errorf("failed to get pull cursor: %w", err)
	}

	for {
		resp, err := s.apiClient.Pull(ctx, cursor, s.pullLimit)
		if err != nil {
			return err
		}

		s.logger.Debug("Pull page received",
			"since_rev", cursor,
			"changes", len(resp.Changes),
			"latest_rev", resp.LatestRev,
			"has_more", resp.HasMore)

		for _, change := range resp.Changes {
			applied, err := s.mergeRemote(ctx, models.FromAPI(change.Data))
			if err != nil {
				return fmt.Errorf("failed to merge entity %s/%s: %w", change.Entity, change.Data.ID, err)
			}
			if applied {
				result.CloudChangesApplied++
			}
		}

		// Курсор продвигается только по реально полученным ревизиям:
		// пропуск ревизий означал бы потерю изменений навсегда
		if len(resp.Changes) > 0 {
			cursor = resp.Changes[len(resp.Changes)-1].Data.Rev
			if err := s.metadata.SavePullCursor(ctx, cursor); err != nil {
				return fmt.Errorf("failed to save pull cursor: %w", err)
			}
		}

		if !resp.HasMore {
			return nil
		}
	}
}

// mergeRemote применяет одну облачную запись к локальной реплике.
// Локальная грязная версия с отличающимся содержимым не затирается:
// она уйдет в push и будет разрешена облаком
func (s *service) mergeRemote(ctx context.Context, incoming *models.Entity) (bool, error) {
	stored, err := s.catalog.GetEntity(ctx, incoming.Kind, incoming.ID)
	if err != nil {
		if errors.Is(err, storage.ErrEntityNotFound) {
			return true, s.catalog.SaveEntity(ctx, incoming)
		}
		return false, fmt.Errorf("failed to get local entity: %w", err)
	}

	if stored.UpdatedBy == models.OriginLocal && stored.Checksum != incoming.Checksum {
		s.logger.Debug("Keeping dirty local version",
			"kind", incoming.Kind,
			"id", incoming.ID,
			"local_rev", stored.Rev,
			"cloud_rev", incoming.Rev)
		return false, nil
	}

	// Либо локальная копия чистая, либо содержимое совпало: облачная
	// версия авторитетна, принимаем её вместе с ревизией
	return true, s.catalog.SaveEntity(ctx, incoming)
}

// push отправляет локальные изменения и раскладывает ответ:
// принятые записи перестают быть грязными, конфликты уходят в карантин
func (s *service) push(ctx context.Context, result *Result) error {
	dirty, err := s.catalog.ListDirty(ctx)
	if err != nil {
		return fmt.Errorf("failed to list dirty entities: %w", err)
	}

	if len(dirty) == 0 {
		s.logger.Debug("No local changes to push")
		return nil
	}

	agentID, err := s.metadata.AgentID(ctx)
	if err != nil {
		return fmt.Errorf("failed to get agent id: %w", err)
	}

	clientRev, err := s.catalog.LatestRevision(ctx)
	if err != nil {
		return fmt.Errorf("failed to get latest local revision: %w", err)
	}

	changes := make([]api.ChangeRecord, 0, len(dirty))
	for _, entity := range dirty {
		changes = append(changes, models.ChangeRecordFor(entity))
	}

	resp, err := s.apiClient.Push(ctx, api.ChangeBatch{
		ClientID:  agentID,
		ClientRev: clientRev,
		Changes:   changes,
	})
	if err != nil {
		return err
	}

	result.LocalChangesPushed = resp.AppliedCount
	result.Conflicts = len(resp.Conflicts)

	// Конфликтные записи уходят в карантин до ручного разрешения
	conflicted := make(map[string]bool, len(resp.Conflicts))
	for i := range resp.Conflicts {
		rec := &resp.Conflicts[i]
		conflict := &models.Conflict{
			DetectedAt: time.Now().UTC(),
			Kind:       models.EntityKind(rec.Entity),
			ID:         rec.ID,
			Reason:     rec.Reason,
			Local:      models.FromAPI(rec.Incoming),
			Remote:     models.FromAPI(rec.Stored),
		}
		if err := s.conflicts.SaveConflict(ctx, conflict); err != nil {
			return fmt.Errorf("failed to save conflict: %w", err)
		}
		conflicted[conflict.Key()] = true
	}

	// Принятые записи помечаются подтвержденными; авторитетная версия
	// с назначенной облаком ревизией придет следующим pull
	for _, entity := range dirty {
		key := string(entity.Kind) + "/" + entity.ID
		if conflicted[key] {
			continue
		}

		confirmed := entity.Clone()
		confirmed.UpdatedBy = models.OriginCloud
		if err := s.catalog.SaveEntity(ctx, confirmed); err != nil {
			return fmt.Errorf("failed to mark entity synced: %w", err)
		}
	}

	return nil
}

// PendingCount возвращает количество локальных изменений,
// ожидающих отправки в облако
func (s *service) PendingCount(ctx context.Context) (int, error) {
	dirty, err := s.catalog.ListDirty(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list dirty entities: %w", err)
	}
	return len(dirty), nil
}

// Running сообщает, выполняется ли цикл синхронизации сейчас
func (s *service) Running() bool {
	return s.running.Load()
}
