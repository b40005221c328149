// Package validation проверяет структуру входящих пакетов изменений.
// Схемная ошибка отклоняет весь запрос (400) до применения первой записи;
// по-записная обработка начинается только после успешной валидации.
package validation

import (
	"fmt"
	"regexp"

	"github.com/iudanet/marketsync/internal/models"
	"github.com/iudanet/marketsync/pkg/api"
)

// IDPattern определяет допустимый формат идентификатора сущности:
// латинские буквы, цифры, дефис, нижнее подчеркивание, 1-64 символа
var IDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`)

const (
	// MaxBatchChanges максимальное количество записей в одном пакете
	MaxBatchChanges = 1000
	// MaxNameLen максимальная длина названия сущности
	MaxNameLen = 256
)

// ValidateBatch проверяет пакет изменений целиком.
// Возвращает первую найденную ошибку с индексом записи.
func ValidateBatch(batch api.ChangeBatch) error {
	if batch.ClientID == "" {
		return fmt.Errorf("client_id is required")
	}
	if len(batch.Changes) == 0 {
		return fmt.Errorf("changes array is required")
	}
	if len(batch.Changes) > MaxBatchChanges {
		return fmt.Errorf("changes exceeds maximum of %d", MaxBatchChanges)
	}
	if batch.ClientRev < 0 {
		return fmt.Errorf("client_rev must be >= 0")
	}

	for i, change := range batch.Changes {
		if err := ValidateChange(change); err != nil {
			return fmt.Errorf("change %d: %w", i, err)
		}
	}

	return nil
}

// ValidateChange проверяет одну запись пакета
func ValidateChange(change api.ChangeRecord) error {
	if !models.ValidKind(models.EntityKind(change.Entity)) {
		return fmt.Errorf("unknown entity kind %q", change.Entity)
	}
	if change.Entity != change.Data.Kind {
		return fmt.Errorf("record kind %q does not match data kind %q", change.Entity, change.Data.Kind)
	}

	// Op — производное поле; он обязан согласовываться с deleted_at
	deleted := change.Data.DeletedAt != nil
	switch change.Op {
	case api.OpUpsert:
		if deleted {
			return fmt.Errorf("op %q with deleted_at set", change.Op)
		}
	case api.OpDelete:
		if !deleted {
			return fmt.Errorf("op %q without deleted_at", change.Op)
		}
	default:
		return fmt.Errorf("unknown op %q", change.Op)
	}

	return ValidateEntity(change.Data)
}

// ValidateEntity проверяет wire-представление сущности
func ValidateEntity(e api.Entity) error {
	if !IDPattern.MatchString(e.ID) {
		return fmt.Errorf("invalid entity id %q", e.ID)
	}
	if e.Name == "" {
		return fmt.Errorf("name cannot be empty")
	}
	if len(e.Name) > MaxNameLen {
		return fmt.Errorf("name must not exceed %d characters", MaxNameLen)
	}
	if e.PriceCents < 0 {
		return fmt.Errorf("price_cents must be >= 0")
	}
	if e.Rev < 0 {
		return fmt.Errorf("rev must be >= 0")
	}
	if e.Checksum == "" {
		return fmt.Errorf("checksum is required")
	}
	if e.UpdatedAt.IsZero() {
		return fmt.Errorf("updated_at is required")
	}
	switch models.Origin(e.UpdatedBy) {
	case models.OriginCloud, models.OriginLocal:
	default:
		return fmt.Errorf("unknown updated_by %q", e.UpdatedBy)
	}
	return nil
}
