package ledger_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tu-usuario/inventario-core/internal/application/ledger"
	"github.com/tu-usuario/inventario-core/internal/domain"
	"github.com/tu-usuario/inventario-core/internal/domain/entity"
)

func TestRecount_SobranteRellenaLotesParcialesYCreaElResto(t *testing.T) {
	e := newEnv(t)
	item := e.newItem(t, ledger.RegisterItemInput{Name: "Harina", CanonicalUnit: "ud"})
	lot1 := e.store.AddLot(item.ID, dec("100"), dec("2.5"), daysAgo(2))
	lot2 := e.store.AddLot(item.ID, dec("50"), dec("3.0"), daysAgo(1))
	_, err := e.adjust.Deduct(context.Background(), item.ID, dec("120"), entity.EventConsumption, "")
	require.NoError(t, err)

	// Quedan 30 (lote 1 agotado, lote 2 con 30). El conteo físico dice 80.
	res, err := e.adjust.Recount(context.Background(), item.ID, dec("80"), "inventario mensual")

	require.NoError(t, err)
	assert.True(t, res.Amount.Equal(dec("50")), "la diferencia conciliada es 50")
	assert.True(t, res.NewQuantity.Equal(dec("80")))

	stored1, _ := e.entries.GetByID(lot1)
	stored2, _ := e.entries.GetByID(lot2)
	assert.True(t, stored1.Remaining.IsZero(),
		"un lote ya agotado no se rellena: su consumo quedó costeado")
	assert.True(t, stored2.Remaining.Equal(dec("50")), "el lote parcial se rellena a su tamaño original")

	require.Len(t, res.Entries, 2)
	topUp, fresh := res.Entries[0], res.Entries[1]
	require.NotNil(t, topUp.FifoRef)
	assert.Equal(t, lot2, *topUp.FifoRef)
	assert.True(t, topUp.QuantityDelta.Equal(dec("20")))
	assert.Nil(t, fresh.FifoRef)
	assert.True(t, fresh.Remaining.Equal(dec("30")), "el resto entra como lote nuevo")
	assert.True(t, fresh.UnitCost.Equal(dec("3.0")), "al costo del lote más reciente")
	e.assertInvariant(t, item.ID)
}

func TestRecount_FaltanteSeDescuentaPorFIFO(t *testing.T) {
	e := newEnv(t)
	item := e.newItem(t, ledger.RegisterItemInput{Name: "Harina", CanonicalUnit: "ud"})
	lot1 := e.store.AddLot(item.ID, dec("100"), dec("2.5"), daysAgo(2))
	e.store.AddLot(item.ID, dec("50"), dec("3.0"), daysAgo(1))

	// Hay 150 en libros; el conteo dice 130: faltan 20.
	res, err := e.adjust.Recount(context.Background(), item.ID, dec("130"), "")

	require.NoError(t, err)
	require.Len(t, res.Consumptions, 1)
	assert.Equal(t, lot1, res.Consumptions[0].LotID, "el faltante sale del lote más antiguo")
	assert.True(t, res.Consumptions[0].Amount.Equal(dec("20")))
	require.Len(t, res.Entries, 1)
	assert.Equal(t, entity.EventRecount, res.Entries[0].Kind)
	assert.True(t, res.NewQuantity.Equal(dec("130")))
	e.assertInvariant(t, item.ID)
}

func TestRecount_DeclararElTotalVigenteEsIdempotente(t *testing.T) {
	e := newEnv(t)
	item := e.newItem(t, ledger.RegisterItemInput{Name: "Harina", CanonicalUnit: "ud"})
	e.store.AddLot(item.ID, dec("50"), dec("3.0"), daysAgo(1))

	first, err := e.adjust.Recount(context.Background(), item.ID, dec("80"), "")
	require.NoError(t, err)
	require.True(t, first.NewQuantity.Equal(dec("80")))

	// El mismo recuento aplicado de nuevo no debe producir filas ni cambios.
	second, err := e.adjust.Recount(context.Background(), item.ID, dec("80"), "")

	require.NoError(t, err)
	assert.Empty(t, second.Entries)
	assert.True(t, second.NewQuantity.Equal(dec("80")))
	e.assertInvariant(t, item.ID)
}

func TestRecount_SinLotesPrevios_TodoEntraComoLoteNuevo(t *testing.T) {
	e := newEnv(t)
	item := e.newItem(t, ledger.RegisterItemInput{Name: "Harina", CanonicalUnit: "ud"})

	res, err := e.adjust.Recount(context.Background(), item.ID, dec("25"), "")

	require.NoError(t, err)
	require.Len(t, res.Entries, 1)
	assert.True(t, res.Entries[0].Remaining.Equal(dec("25")))
	assert.True(t, res.Entries[0].UnitCost.IsZero(), "sin historial de costos el lote nace a cero")
	e.assertInvariant(t, item.ID)
}

func TestRecount_DeclaradoNegativo(t *testing.T) {
	e := newEnv(t)
	item := e.newItem(t, ledger.RegisterItemInput{Name: "Harina", CanonicalUnit: "ud"})

	_, err := e.adjust.Recount(context.Background(), item.ID, decimal.NewFromInt(-1), "")

	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
}
