package ledger_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tu-usuario/inventario-core/internal/application/ledger"
	"github.com/tu-usuario/inventario-core/internal/domain"
)

func TestRegister_ItemNaceEnCero(t *testing.T) {
	e := newEnv(t)

	item, err := e.register.Register(context.Background(), ledger.RegisterItemInput{
		Name: "Harina", CanonicalUnit: "g", LowStockThreshold: dec("500"),
	})

	require.NoError(t, err)
	assert.NotEmpty(t, item.ID)
	assert.True(t, item.CurrentQuantity.IsZero())
	assert.False(t, item.IsArchived())
}

func TestRegister_UnidadCanonicaDesconocida(t *testing.T) {
	e := newEnv(t)

	_, err := e.register.Register(context.Background(), ledger.RegisterItemInput{
		Name: "Harina", CanonicalUnit: "sacos",
	})

	assert.ErrorIs(t, err, domain.ErrUnknownUnit)
}

func TestRegister_NombreVacio(t *testing.T) {
	e := newEnv(t)

	_, err := e.register.Register(context.Background(), ledger.RegisterItemInput{CanonicalUnit: "g"})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRegister_PerecederoSinVidaUtilTomaLaConfigurada(t *testing.T) {
	e := newEnv(t)

	item, err := e.register.Register(context.Background(), ledger.RegisterItemInput{
		Name: "Leche", CanonicalUnit: "ml", Perishable: true,
	})

	require.NoError(t, err)
	assert.Equal(t, 7, item.ShelfLifeDays, "sin vida útil propia aplica la del config")

	propio, err := e.register.Register(context.Background(), ledger.RegisterItemInput{
		Name: "Yogurt", CanonicalUnit: "ml", Perishable: true, ShelfLifeDays: 12,
	})
	require.NoError(t, err)
	assert.Equal(t, 12, propio.ShelfLifeDays, "la vida útil propia se respeta")
}

func TestRegister_DensidadInvalida(t *testing.T) {
	e := newEnv(t)

	_, err := e.register.Register(context.Background(), ledger.RegisterItemInput{
		Name: "Miel", CanonicalUnit: "g", Density: decPtr("0"),
	})

	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
}

func TestRegister_CategoriaInexistente(t *testing.T) {
	e := newEnv(t)

	_, err := e.register.Register(context.Background(), ledger.RegisterItemInput{
		Name: "Miel", CanonicalUnit: "g", CategoryID: "no-existe",
	})

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestArchive_EsIdempotenteYBloqueaAjustes(t *testing.T) {
	e := newEnv(t)
	item := e.newItem(t, ledger.RegisterItemInput{Name: "Harina", CanonicalUnit: "g"})

	require.NoError(t, e.register.Archive(context.Background(), item.ID))
	require.NoError(t, e.register.Archive(context.Background(), item.ID), "archivar dos veces no falla")

	stored, err := e.items.GetByID(item.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsArchived())
}
