package units

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/inventario-core/internal/domain"
	"github.com/tu-usuario/inventario-core/internal/domain/entity"
)

// Convert convierte amount de la unidad from a la unidad to usando el catálogo.
// Función pura: sin efectos, determinista, segura para llamadas concurrentes.
//
//   - from == to: identidad, sin consultar el catálogo.
//   - Misma dimensión: amount * from.ToBase / to.ToBase.
//   - Peso↔volumen: requiere densidad (masa por ml, en unidades base);
//     volumen→peso multiplica por densidad, peso→volumen divide.
//   - Cualquier otro par de dimensiones: ErrIncompatibleDimensions.
//
// Las fallas de conversión siempre se propagan como error tipado; no existe
// un fallback al valor crudo.
func Convert(c *Catalog, amount decimal.Decimal, from, to string, density *decimal.Decimal) (decimal.Decimal, error) {
	if from == to {
		return amount, nil
	}
	fromDef, err := c.Get(from)
	if err != nil {
		return decimal.Zero, err
	}
	toDef, err := c.Get(to)
	if err != nil {
		return decimal.Zero, err
	}

	if fromDef.SameDimension(toDef) {
		return amount.Mul(fromDef.ToBase).Div(toDef.ToBase), nil
	}

	// Único cruce de dimensiones permitido: peso↔volumen vía densidad.
	switch {
	case fromDef.Dimension == entity.DimensionVolume && toDef.Dimension == entity.DimensionWeight:
		d, err := requireDensity(density, from, to)
		if err != nil {
			return decimal.Zero, err
		}
		baseMl := amount.Mul(fromDef.ToBase)
		return baseMl.Mul(d).Div(toDef.ToBase), nil
	case fromDef.Dimension == entity.DimensionWeight && toDef.Dimension == entity.DimensionVolume:
		d, err := requireDensity(density, from, to)
		if err != nil {
			return decimal.Zero, err
		}
		baseG := amount.Mul(fromDef.ToBase)
		return baseG.Div(d).Div(toDef.ToBase), nil
	}
	return decimal.Zero, fmt.Errorf("%w: %s (%s) -> %s (%s)",
		domain.ErrIncompatibleDimensions, from, fromDef.Dimension, to, toDef.Dimension)
}

func requireDensity(density *decimal.Decimal, from, to string) (decimal.Decimal, error) {
	if density == nil || !density.GreaterThan(decimal.Zero) {
		return decimal.Zero, fmt.Errorf("%w: %s -> %s", domain.ErrMissingDensity, from, to)
	}
	return *density, nil
}
