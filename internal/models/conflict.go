package models

import "time"

// Conflict локальная запись о конфликте синхронизации: облако отклонило
// локальное изменение. Запись хранится у агента до ручного разрешения,
// конфликтная сущность в повторные push не попадает.
type Conflict struct {
	// DetectedAt когда агент получил отказ от облака
	DetectedAt time.Time `json:"detected_at"`

	Kind EntityKind `json:"kind"`
	ID   string     `json:"id"`
	// Reason причина отказа, как её сообщило облако
	Reason string `json:"reason"`

	// Local локальная версия, отклоненная облаком
	Local *Entity `json:"local"`
	// Remote облачная версия на момент конфликта
	Remote *Entity `json:"remote"`
}

// Key уникальный ключ конфликта в пределах агента
func (c *Conflict) Key() string {
	return string(c.Kind) + "/" + c.ID
}
