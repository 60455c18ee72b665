package units_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tu-usuario/inventario-core/internal/domain"
	"github.com/tu-usuario/inventario-core/internal/domain/entity"
	"github.com/tu-usuario/inventario-core/internal/domain/units"
)

func TestCatalog_RegisterYGet(t *testing.T) {
	c := units.NewCatalog()

	err := c.Register(entity.UnitDefinition{
		Code:      "saco",
		Dimension: entity.DimensionWeight,
		ToBase:    dec("25000"), // saco de 25 kg
	})
	require.NoError(t, err)

	def, err := c.Get("saco")
	require.NoError(t, err)
	assert.Equal(t, entity.DimensionWeight, def.Dimension)

	// Una unidad en uso es inmutable: redefinirla es un duplicado.
	err = c.Register(entity.UnitDefinition{Code: "saco", Dimension: entity.DimensionWeight, ToBase: dec("1")})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestCatalog_RegisterInvalida(t *testing.T) {
	c := units.NewCatalog()

	err := c.Register(entity.UnitDefinition{Code: "x", Dimension: "temperatura", ToBase: dec("1")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "dimensión desconocida debe rechazarse")

	err = c.Register(entity.UnitDefinition{Code: "y", Dimension: entity.DimensionWeight, ToBase: decimal.Zero})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "multiplicador no positivo debe rechazarse")
}

func TestDefaultCatalog_UnidadesBase(t *testing.T) {
	c := units.DefaultCatalog()

	for _, code := range []string{"g", "ml", "ud", "mm", "cm2"} {
		def, err := c.Get(code)
		require.NoError(t, err)
		assert.True(t, def.ToBase.Equal(decimal.NewFromInt(1)),
			"%s es unidad base: multiplicador 1, fue %s", code, def.ToBase)
	}
}
