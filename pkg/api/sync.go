// Package api содержит wire-типы протокола синхронизации между
// облачным каталогом и локальным агентом. Типы дублируют internal/models
// намеренно: формат на проводе фиксирован и не меняется вместе с
// внутренним представлением.
package api

import "time"

// Entity представляет одну сущность каталога на проводе.
// Доменные поля + метаданные синхронизации (rev, checksum, tombstone).
type Entity struct {
	UpdatedAt   time.Time  `json:"updated_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"` // tombstone: запись логически удалена
	ID          string     `json:"id"`
	Kind        string     `json:"kind"` // "product" | "category"
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	CategoryID  string     `json:"category_id,omitempty"` // для product: категория
	ParentID    string     `json:"parent_id,omitempty"`   // для category: родитель
	UpdatedBy   string     `json:"updated_by"`            // "cloud" | "local"
	Checksum    string     `json:"checksum"`
	PriceCents  int64      `json:"price_cents,omitempty"`
	Rev         int64      `json:"rev"`
	Active      bool       `json:"active"`
}

// Операции ChangeRecord. Op выводится из deleted_at, отдельного
// состояния у него нет — это сохраняет идемпотентность replay.
const (
	OpUpsert = "upsert"
	OpDelete = "delete"
)

// ChangeRecord представляет одну мутацию сущности
type ChangeRecord struct {
	Entity string `json:"entity"` // kind сущности
	Op     string `json:"op"`     // "upsert" | "delete"
	Data   Entity `json:"data"`
}

// ChangeBatch представляет пакет изменений от агента (тело /sync/push).
// ClientRev — ревизия, которую клиент считал последней перед формированием
// пакета; используется только для диагностики, не для разрешения конфликтов.
type ChangeBatch struct {
	ClientID  string         `json:"client_id"`
	Changes   []ChangeRecord `json:"changes"`
	ClientRev int64          `json:"client_rev"`
}

// PullResponse представляет ответ сервера на /sync/pull
type PullResponse struct {
	Changes   []ChangeRecord `json:"changes"`
	SinceRev  int64          `json:"since_rev"`
	LatestRev int64          `json:"latest_rev"` // глобальный максимум сервера, независимо от limit
	HasMore   bool           `json:"has_more"`   // true тогда и только тогда, когда вернулось ровно limit записей
}

// ConflictRecord описывает конфликт одной записи: входящее изменение
// отклонено, обе версии возвращаются вызывающему для ручного разбора.
type ConflictRecord struct {
	Entity   string `json:"entity"`
	ID       string `json:"id"`
	Reason   string `json:"reason"`
	Incoming Entity `json:"incoming"`
	Stored   Entity `json:"stored"`
}

// PushResponse представляет ответ сервера на /sync/push.
// Конфликты — данные, не ошибка: success остается true.
type PushResponse struct {
	Conflicts    []ConflictRecord `json:"conflicts"`
	AppliedCount int              `json:"applied_count"`
	LatestRev    int64            `json:"latest_rev"` // состояние после применения пакета
	Success      bool             `json:"success"`
}

// SyncSummary представляет итог одного цикла синхронизации агента
// (ответ локального POST /sync/initiate)
type SyncSummary struct {
	CloudChangesApplied int  `json:"cloud_changes_applied"`
	LocalChangesPushed  int  `json:"local_changes_pushed"`
	Conflicts           int  `json:"conflicts"`
	Success             bool `json:"success"`
}

// AgentStatus представляет текущее состояние агента
// (ответ локального GET /sync/status)
type AgentStatus struct {
	AgentID        string `json:"agent_id"`
	PullCursor     int64  `json:"pull_cursor"`      // последняя полностью полученная ревизия облака
	PendingChanges int    `json:"pending_changes"`  // локальные изменения, ожидающие push
	OpenConflicts  int    `json:"open_conflicts"`   // конфликты, ожидающие ручного разрешения
	SyncRunning    bool   `json:"sync_running"`
}

// ErrorResponse представляет ответ с ошибкой
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
