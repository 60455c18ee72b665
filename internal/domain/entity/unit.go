package entity

import "github.com/shopspring/decimal"

// Dimensiones de medida soportadas por el catálogo de unidades.
const (
	DimensionWeight = "weight"
	DimensionVolume = "volume"
	DimensionCount  = "count"
	DimensionLength = "length"
	DimensionArea   = "area"
)

// UnitDefinition define una unidad de medida: dimensión + multiplicador a la
// unidad base de esa dimensión (g, ml, ud, mm, cm2). Inmutable una vez en uso.
type UnitDefinition struct {
	Code      string
	Dimension string
	ToBase    decimal.Decimal // 1 unidad = ToBase unidades base
}

// SameDimension indica si dos unidades comparten dimensión (conversión multiplicativa).
func (u UnitDefinition) SameDimension(other UnitDefinition) bool {
	return u.Dimension == other.Dimension
}
