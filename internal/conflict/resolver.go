// Package conflict реализует политику разрешения конфликтов push-обработчика.
// Политика консервативная: неоднозначность всегда возвращается наружу как
// конфликт, а не разрешается молча в чью-то пользу.
package conflict

import "github.com/iudanet/marketsync/internal/models"

// Verdict решение резолвера по одной записи
type Verdict string

const (
	// VerdictApply входящее изменение можно применить
	VerdictApply Verdict = "apply"
	// VerdictConflict входящее изменение основано на устаревших данных,
	// применять нельзя; обе версии возвращаются вызывающему
	VerdictConflict Verdict = "conflict"
	// VerdictTombstoneWins удаление имеет приоритет над параллельным
	// устаревшим редактированием
	VerdictTombstoneWins Verdict = "tombstone-wins"
)

// Причины конфликтов, попадают в ConflictRecord.Reason
const (
	ReasonStaleRevision  = "incoming revision is not newer than stored"
	ReasonAmbiguousOrder = "ambiguous ordering between stored and incoming versions"
)

// Resolve — чистая функция решения: что делать с входящей версией записи
// при наличии сохраненной. Вызывается только когда stored существует;
// первая запись применяется без резолвера.
//
// Порядок проверок важен: совпадение checksum поглощает точные replay
// (идемпотентность), tombstone-правило срабатывает до сравнения ревизий.
func Resolve(stored, incoming *models.Entity) (Verdict, string) {
	// Одинаковое содержимое — реального изменения нет, это идемпотентный
	// повтор (например, retry запроса с потерянным ответом)
	if stored.Checksum == incoming.Checksum {
		return VerdictApply, ""
	}

	// Ровно одна сторона удалена: tombstone побеждает, если живая сторона
	// не унесла ревизию строго вперед
	if stored.Deleted() != incoming.Deleted() {
		live, dead := stored, incoming
		if stored.Deleted() {
			live, dead = incoming, stored
		}
		if live.Rev <= dead.Rev {
			return VerdictTombstoneWins, ""
		}
	}

	// Содержимое разошлось, а входящая ревизия не новее — изменение
	// основано на устаревших данных
	if incoming.Rev <= stored.Rev {
		return VerdictConflict, ReasonStaleRevision
	}

	// Чистое движение вперед: ревизия строго больше и время позже
	if incoming.Rev > stored.Rev && incoming.UpdatedAt.After(stored.UpdatedAt) {
		return VerdictApply, ""
	}

	// Ревизия ушла вперед, а время — нет. При соблюдении инварианта
	// глобального счетчика такого быть не должно; считаем конфликтом.
	return VerdictConflict, ReasonAmbiguousOrder
}
