// Package revision реализует агентскую часть Revision Ledger: выдачу
// условных (provisional) локальных ревизий. Облачная часть леджера —
// durable-последовательность в SQLite (internal/server/storage/sqlite).
package revision

import (
	"sync/atomic"
	"time"

	"github.com/iudanet/marketsync/internal/models"
)

// Clock выдает монотонно растущие локальные ревизии. Счетчик
// инициализируется максимумом наблюденных ревизий и продвигается вперед
// каждой облачной ревизией, которую агент видит (Observe), поэтому
// локальные ревизии всегда строго больше всего, что агент уже знает.
//
// Локальные ревизии условны: при успешном push облако перештамповывает
// запись авторитетной ревизией из своей последовательности.
type Clock struct {
	last atomic.Int64
}

// NewClock создает часы, начинающиеся с seed (обычно максимум ревизий
// локального хранилища)
func NewClock(seed int64) *Clock {
	c := &Clock{}
	c.last.Store(seed)
	return c
}

// Next атомарно выдает следующую ревизию. Уникальна и растет даже при
// конкурентных вызовах на одном узле.
func (c *Clock) Next() int64 {
	return c.last.Add(1)
}

// Observe продвигает часы вперед до rev, если rev больше текущего
// значения. Вызывается для каждой ревизии, полученной от облака.
func (c *Clock) Observe(rev int64) {
	for {
		cur := c.last.Load()
		if rev <= cur {
			return
		}
		if c.last.CompareAndSwap(cur, rev) {
			return
		}
	}
}

// Current возвращает последнюю выданную или наблюденную ревизию
func (c *Clock) Current() int64 {
	return c.last.Load()
}

// Stamp проставляет сущности метаданные синхронизации при локальной
// мутации: условную ревизию, wall-clock время, origin и checksum.
// Каждый локальный write-путь (CLI, будущие формы редактирования) обязан
// пройти через Stamp, иначе инварианты синхронизации молча ломаются.
func Stamp(c *Clock, e *models.Entity) {
	e.Rev = c.Next()
	e.UpdatedAt = time.Now().UTC()
	e.UpdatedBy = models.OriginLocal
	e.Checksum = e.ComputeChecksum()
}
