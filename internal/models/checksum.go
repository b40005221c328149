package models

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// checksumPayload фиксирует состав и порядок полей, входящих в checksum.
// Только доменные поля плюс флаг удаления; rev/updatedAt/updatedBy
// исключены, чтобы две независимо полученные копии с одинаковым
// содержимым всегда совпадали по хешу.
//
// Флаг удаления входит в хеш (а его timestamp — нет): иначе живая копия
// с тем же содержимым прошла бы по ветке "checksum равен" и воскресила
// tombstone.
type checksumPayload struct {
	Kind        EntityKind `json:"kind"`
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	CategoryID  string     `json:"category_id"`
	ParentID    string     `json:"parent_id"`
	PriceCents  int64      `json:"price_cents"`
	Active      bool       `json:"active"`
	Deleted     bool       `json:"deleted"`
}

// ComputeChecksum вычисляет стабильный SHA-256 хеш доменных полей.
// Порядок полей фиксирован структурой checksumPayload, поэтому
// кодирование детерминировано.
func (e *Entity) ComputeChecksum() string {
	payload := checksumPayload{
		Kind:        e.Kind,
		ID:          e.ID,
		Name:        e.Name,
		Description: e.Description,
		CategoryID:  e.CategoryID,
		ParentID:    e.ParentID,
		PriceCents:  e.PriceCents,
		Active:      e.Active,
		Deleted:     e.Deleted(),
	}

	// json.Marshal структуры детерминирован: порядок полей задан типом
	data, _ := json.Marshal(payload)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
