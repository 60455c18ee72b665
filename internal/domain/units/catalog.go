package units

import (
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/inventario-core/internal/domain"
	"github.com/tu-usuario/inventario-core/internal/domain/entity"
)

// Catalog es el registro de unidades de medida. Es un objeto explícito que se
// inyecta al motor de conversión y al orquestador en construcción (nada de
// estado global de proceso). Seguro para lectura concurrente.
type Catalog struct {
	mu    sync.RWMutex
	units map[string]entity.UnitDefinition
}

// NewCatalog crea un catálogo vacío.
func NewCatalog() *Catalog {
	return &Catalog{units: make(map[string]entity.UnitDefinition)}
}

// Register agrega una unidad al catálogo. Falla si el código ya existe:
// una unidad en uso es inmutable y no se redefine en caliente.
func (c *Catalog) Register(def entity.UnitDefinition) error {
	if def.Code == "" || !def.ToBase.GreaterThan(decimal.Zero) {
		return fmt.Errorf("%w: unidad %q", domain.ErrInvalidInput, def.Code)
	}
	switch def.Dimension {
	case entity.DimensionWeight, entity.DimensionVolume, entity.DimensionCount,
		entity.DimensionLength, entity.DimensionArea:
	default:
		return fmt.Errorf("%w: dimensión %q", domain.ErrInvalidInput, def.Dimension)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.units[def.Code]; ok {
		return fmt.Errorf("%w: unidad %q", domain.ErrDuplicate, def.Code)
	}
	c.units[def.Code] = def
	return nil
}

// Get devuelve la definición de una unidad o ErrUnknownUnit.
func (c *Catalog) Get(code string) (entity.UnitDefinition, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	def, ok := c.units[code]
	if !ok {
		return entity.UnitDefinition{}, fmt.Errorf("%w: %q", domain.ErrUnknownUnit, code)
	}
	return def, nil
}

// Has indica si una unidad está registrada.
func (c *Catalog) Has(code string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.units[code]
	return ok
}

// DefaultCatalog arma el catálogo estándar de cocina/producción.
// Bases por dimensión: g (peso), ml (volumen), ud (conteo), mm (largo), cm2 (área).
func DefaultCatalog() *Catalog {
	c := NewCatalog()
	defs := []entity.UnitDefinition{
		{Code: "g", Dimension: entity.DimensionWeight, ToBase: decimal.NewFromInt(1)},
		{Code: "kg", Dimension: entity.DimensionWeight, ToBase: decimal.NewFromInt(1000)},
		{Code: "mg", Dimension: entity.DimensionWeight, ToBase: decimal.RequireFromString("0.001")},
		{Code: "lb", Dimension: entity.DimensionWeight, ToBase: decimal.RequireFromString("453.59237")},
		{Code: "oz", Dimension: entity.DimensionWeight, ToBase: decimal.RequireFromString("28.349523125")},
		{Code: "ml", Dimension: entity.DimensionVolume, ToBase: decimal.NewFromInt(1)},
		{Code: "l", Dimension: entity.DimensionVolume, ToBase: decimal.NewFromInt(1000)},
		{Code: "tsp", Dimension: entity.DimensionVolume, ToBase: decimal.RequireFromString("4.92892159375")},
		{Code: "tbsp", Dimension: entity.DimensionVolume, ToBase: decimal.RequireFromString("14.78676478125")},
		{Code: "cup", Dimension: entity.DimensionVolume, ToBase: decimal.RequireFromString("236.5882365")},
		{Code: "floz", Dimension: entity.DimensionVolume, ToBase: decimal.RequireFromString("29.5735295625")},
		{Code: "ud", Dimension: entity.DimensionCount, ToBase: decimal.NewFromInt(1)},
		{Code: "docena", Dimension: entity.DimensionCount, ToBase: decimal.NewFromInt(12)},
		{Code: "mm", Dimension: entity.DimensionLength, ToBase: decimal.NewFromInt(1)},
		{Code: "cm", Dimension: entity.DimensionLength, ToBase: decimal.NewFromInt(10)},
		{Code: "m", Dimension: entity.DimensionLength, ToBase: decimal.NewFromInt(1000)},
		{Code: "cm2", Dimension: entity.DimensionArea, ToBase: decimal.NewFromInt(1)},
		{Code: "m2", Dimension: entity.DimensionArea, ToBase: decimal.NewFromInt(10000)},
	}
	for _, d := range defs {
		// El catálogo por defecto no repite códigos; el error solo puede
		// venir de una edición manual de esta lista.
		if err := c.Register(d); err != nil {
			panic(err)
		}
	}
	return c
}
