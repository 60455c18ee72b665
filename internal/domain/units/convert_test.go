package units_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tu-usuario/inventario-core/internal/domain"
	"github.com/tu-usuario/inventario-core/internal/domain/units"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

// ──────────────────────────────────────────────────────────────────────────────
// Conversión misma dimensión: multiplicativa vía unidad base, sin densidad.
// ──────────────────────────────────────────────────────────────────────────────

func TestConvert_MlALitrosExacto(t *testing.T) {
	c := units.DefaultCatalog()

	got, err := units.Convert(c, dec("1000"), "ml", "l", nil)

	require.NoError(t, err)
	assert.True(t, got.Equal(dec("1")), "1000 ml deben ser exactamente 1.0 l, fue %s", got)
}

func TestConvert_KgAGramos(t *testing.T) {
	c := units.DefaultCatalog()

	got, err := units.Convert(c, dec("2.5"), "kg", "g", nil)

	require.NoError(t, err)
	assert.True(t, got.Equal(dec("2500")), "2.5 kg deben ser 2500 g, fue %s", got)
}

func TestConvert_Identidad_SinCatalogo(t *testing.T) {
	// from == to no consulta el catálogo: funciona incluso con unidad no registrada.
	c := units.NewCatalog()

	got, err := units.Convert(c, dec("42"), "sacos", "sacos", nil)

	require.NoError(t, err)
	assert.True(t, got.Equal(dec("42")))
}

// TestConvert_IdaYVuelta verifica la propiedad de round-trip: convertir A→B→A
// devuelve el valor original dentro de la tolerancia decimal.
func TestConvert_IdaYVuelta(t *testing.T) {
	c := units.DefaultCatalog()
	pairs := [][2]string{
		{"g", "kg"}, {"kg", "lb"}, {"oz", "g"},
		{"ml", "l"}, {"cup", "ml"}, {"tsp", "tbsp"},
		{"ud", "docena"}, {"mm", "m"}, {"cm2", "m2"},
	}
	tolerance := dec("0.0000001")

	for _, p := range pairs {
		original := dec("123.456")
		there, err := units.Convert(c, original, p[0], p[1], nil)
		require.NoError(t, err, "%s -> %s", p[0], p[1])
		back, err := units.Convert(c, there, p[1], p[0], nil)
		require.NoError(t, err, "%s -> %s", p[1], p[0])
		assert.True(t, back.Sub(original).Abs().LessThan(tolerance),
			"round-trip %s<->%s: esperado %s, fue %s", p[0], p[1], original, back)
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Cruce peso↔volumen: requiere densidad (g/ml); cualquier otro cruce falla.
// ──────────────────────────────────────────────────────────────────────────────

func TestConvert_PesoAVolumenConDensidad(t *testing.T) {
	c := units.DefaultCatalog()

	// 500 g con densidad 0.9 g/ml -> 555.56 ml (dentro de tolerancia)
	got, err := units.Convert(c, dec("500"), "g", "ml", decPtr("0.9"))

	require.NoError(t, err)
	assert.True(t, got.Sub(dec("555.56")).Abs().LessThan(dec("0.01")),
		"500 g a 0.9 g/ml deben ser ~555.56 ml, fue %s", got)
}

func TestConvert_VolumenAPesoConDensidad(t *testing.T) {
	c := units.DefaultCatalog()

	// 2 l de un líquido a 1.03 g/ml -> 2.06 kg
	got, err := units.Convert(c, dec("2"), "l", "kg", decPtr("1.03"))

	require.NoError(t, err)
	assert.True(t, got.Equal(dec("2.06")), "2 l a 1.03 g/ml deben ser 2.06 kg, fue %s", got)
}

func TestConvert_PesoVolumen_SinDensidad(t *testing.T) {
	c := units.DefaultCatalog()

	_, err := units.Convert(c, dec("500"), "g", "ml", nil)

	assert.ErrorIs(t, err, domain.ErrMissingDensity)
}

func TestConvert_DensidadNoPositiva(t *testing.T) {
	c := units.DefaultCatalog()

	_, err := units.Convert(c, dec("500"), "g", "ml", decPtr("0"))

	assert.ErrorIs(t, err, domain.ErrMissingDensity)
}

func TestConvert_DimensionesIncompatibles(t *testing.T) {
	c := units.DefaultCatalog()

	// conteo↔peso no tiene conversión, con o sin densidad
	_, err := units.Convert(c, dec("3"), "ud", "kg", decPtr("0.9"))

	assert.ErrorIs(t, err, domain.ErrIncompatibleDimensions)
}

func TestConvert_UnidadDesconocida(t *testing.T) {
	c := units.DefaultCatalog()

	_, err := units.Convert(c, dec("1"), "fanega", "kg", nil)
	assert.ErrorIs(t, err, domain.ErrUnknownUnit)

	_, err = units.Convert(c, dec("1"), "kg", "fanega", nil)
	assert.ErrorIs(t, err, domain.ErrUnknownUnit)
}
