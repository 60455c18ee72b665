package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// TrackedItem representa una referencia de stock controlada por el ledger
// (ingrediente, envase o producto intermedio).
// CurrentQuantity es una cache derivada: siempre debe coincidir con la suma
// de Remaining de los lotes vivos del item. Solo el orquestador la muta.
type TrackedItem struct {
	ID                string
	Name              string
	CanonicalUnit     string           // unidad en la que se almacena y compara la cantidad
	CurrentQuantity   decimal.Decimal  // cache, en CanonicalUnit
	Density           *decimal.Decimal // g/ml; nil = usar la densidad por defecto de la categoría
	CategoryID        string
	Perishable        bool
	ShelfLifeDays     int // vida útil por defecto para lotes nuevos (0 = sin vencimiento)
	LowStockThreshold decimal.Decimal
	ArchivedAt        *time.Time // soft-archive: nunca se borra mientras tenga historial
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// IsArchived indica si el item fue archivado (no acepta más ajustes).
func (t *TrackedItem) IsArchived() bool {
	return t.ArchivedAt != nil
}

// BelowThreshold indica si la cantidad cacheada está bajo el umbral de stock mínimo.
func (t *TrackedItem) BelowThreshold() bool {
	if t.LowStockThreshold.IsZero() {
		return false
	}
	return t.CurrentQuantity.LessThan(t.LowStockThreshold)
}
