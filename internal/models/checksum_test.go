package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func baseProduct() *Entity {
	return &Entity{
		ID:          "p1",
		Kind:        KindProduct,
		Name:        "Ceramic Mug",
		Description: "350ml",
		CategoryID:  "kitchen",
		PriceCents:  1299,
		Active:      true,
		Rev:         7,
		UpdatedAt:   time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		UpdatedBy:   OriginCloud,
	}
}

func TestComputeChecksum_Deterministic(t *testing.T) {
	a := baseProduct()
	b := baseProduct()

	assert.Equal(t, a.ComputeChecksum(), b.ComputeChecksum())
	// Повторный вызов на той же сущности дает тот же результат
	assert.Equal(t, a.ComputeChecksum(), a.ComputeChecksum())
}

func TestComputeChecksum_IgnoresSyncMetadata(t *testing.T) {
	a := baseProduct()
	b := baseProduct()

	// Две независимо полученные копии одного содержимого: ревизия,
	// время и origin различаются, хеш обязан совпасть
	b.Rev = 99
	b.UpdatedAt = b.UpdatedAt.Add(48 * time.Hour)
	b.UpdatedBy = OriginLocal

	assert.Equal(t, a.ComputeChecksum(), b.ComputeChecksum())
}

func TestComputeChecksum_DomainFieldsChangeHash(t *testing.T) {
	base := baseProduct().ComputeChecksum()

	tests := []struct {
		name   string
		mutate func(e *Entity)
	}{
		{"name", func(e *Entity) { e.Name = "Steel Mug" }},
		{"description", func(e *Entity) { e.Description = "500ml" }},
		{"price", func(e *Entity) { e.PriceCents = 1399 }},
		{"category", func(e *Entity) { e.CategoryID = "tableware" }},
		{"active", func(e *Entity) { e.Active = false }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := baseProduct()
			tt.mutate(e)
			assert.NotEqual(t, base, e.ComputeChecksum())
		})
	}
}

func TestComputeChecksum_TombstoneFlagInHash(t *testing.T) {
	live := baseProduct()
	dead := baseProduct()
	deletedAt := time.Date(2026, 8, 2, 10, 0, 0, 0, time.UTC)
	dead.DeletedAt = &deletedAt

	// Факт удаления входит в хеш, иначе живая копия с тем же
	// содержимым выглядела бы как идемпотентный повтор tombstone
	assert.NotEqual(t, live.ComputeChecksum(), dead.ComputeChecksum())

	// А само время удаления — нет
	later := baseProduct()
	laterAt := deletedAt.Add(time.Hour)
	later.DeletedAt = &laterAt
	assert.Equal(t, dead.ComputeChecksum(), later.ComputeChecksum())
}
