package models

import (
	"time"

	"github.com/iudanet/marketsync/pkg/api"
)

// EntityKind тип синхронизируемой сущности каталога
type EntityKind string

// Поддерживаемые типы сущностей. Набор расширяемый: новый kind — это
// новый bucket у агента и новое значение колонки kind в облаке.
const (
	KindProduct  EntityKind = "product"
	KindCategory EntityKind = "category"
)

// Kinds возвращает все известные типы сущностей
func Kinds() []EntityKind {
	return []EntityKind{KindProduct, KindCategory}
}

// ValidKind проверяет, что kind известен системе
func ValidKind(kind EntityKind) bool {
	switch kind {
	case KindProduct, KindCategory:
		return true
	}
	return false
}

// Origin указывает, какая сторона произвела текущую версию записи
type Origin string

const (
	// OriginCloud версия произведена облаком (авторитетная)
	OriginCloud Origin = "cloud"
	// OriginLocal версия произведена агентом и еще не подтверждена облаком
	OriginLocal Origin = "local"
)

// Entity представляет сущность каталога вместе с метаданными синхронизации.
// Доменные поля создаются и меняются CRUD-коллабораторами (формы
// редактирования, админка); ядро синхронизации меняет только метаданные.
type Entity struct {
	// UpdatedAt wall-clock время последней мутации
	UpdatedAt time.Time `json:"updated_at"`
	// DeletedAt tombstone: ненулевое значение означает логическое удаление,
	// сама запись сохраняется для корректного replay
	DeletedAt *time.Time `json:"deleted_at,omitempty"`

	ID   string     `json:"id"` // уникален в пределах kind
	Kind EntityKind `json:"kind"`

	// Доменные поля
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	CategoryID  string `json:"category_id,omitempty"` // product: ссылка на категорию
	ParentID    string `json:"parent_id,omitempty"`   // category: родительская категория

	// UpdatedBy какая сторона произвела текущую версию
	UpdatedBy Origin `json:"updated_by"`
	// Checksum стабильный хеш доменных полей (см. checksum.go)
	Checksum string `json:"checksum"`

	PriceCents int64 `json:"price_cents,omitempty"`
	// Rev глобальная монотонно растущая ревизия, единый счетчик на все
	// типы сущностей; никакие две записи не делят одну ревизию
	Rev    int64 `json:"rev"`
	Active bool  `json:"active"`
}

// Deleted сообщает, является ли запись tombstone
func (e *Entity) Deleted() bool {
	return e.DeletedAt != nil
}

// Op возвращает операцию ChangeRecord, выводимую из tombstone-состояния
func (e *Entity) Op() string {
	if e.Deleted() {
		return api.OpDelete
	}
	return api.OpUpsert
}

// Clone создает глубокую копию сущности
func (e *Entity) Clone() *Entity {
	clone := *e
	if e.DeletedAt != nil {
		at := *e.DeletedAt
		clone.DeletedAt = &at
	}
	return &clone
}

// ToAPI конвертирует сущность в wire-формат
func (e *Entity) ToAPI() api.Entity {
	return api.Entity{
		ID:          e.ID,
		Kind:        string(e.Kind),
		Name:        e.Name,
		Description: e.Description,
		PriceCents:  e.PriceCents,
		CategoryID:  e.CategoryID,
		ParentID:    e.ParentID,
		Active:      e.Active,
		Rev:         e.Rev,
		UpdatedAt:   e.UpdatedAt,
		UpdatedBy:   string(e.UpdatedBy),
		Checksum:    e.Checksum,
		DeletedAt:   e.DeletedAt,
	}
}

// FromAPI конвертирует wire-формат во внутреннюю сущность
func FromAPI(w api.Entity) *Entity {
	return &Entity{
		ID:          w.ID,
		Kind:        EntityKind(w.Kind),
		Name:        w.Name,
		Description: w.Description,
		PriceCents:  w.PriceCents,
		CategoryID:  w.CategoryID,
		ParentID:    w.ParentID,
		Active:      w.Active,
		Rev:         w.Rev,
		UpdatedAt:   w.UpdatedAt,
		UpdatedBy:   Origin(w.UpdatedBy),
		Checksum:    w.Checksum,
		DeletedAt:   w.DeletedAt,
	}
}

// ChangeRecordFor строит ChangeRecord для сущности
func ChangeRecordFor(e *Entity) api.ChangeRecord {
	return api.ChangeRecord{
		Entity: string(e.Kind),
		Op:     e.Op(),
		Data:   e.ToAPI(),
	}
}
