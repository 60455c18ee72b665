package ledger_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tu-usuario/inventario-core/internal/application/ledger"
	"github.com/tu-usuario/inventario-core/internal/domain"
	"github.com/tu-usuario/inventario-core/internal/domain/entity"
)

func TestActiveLots_OrdenFIFOYCampos(t *testing.T) {
	e := newEnv(t)
	item := e.newItem(t, ledger.RegisterItemInput{Name: "Harina", CanonicalUnit: "ud"})
	e.store.AddLot(item.ID, dec("100"), dec("2.5"), daysAgo(3))
	lot2 := e.store.AddLot(item.ID, dec("50"), dec("3.0"), daysAgo(1))
	_, err := e.adjust.Deduct(context.Background(), item.ID, dec("100"), entity.EventConsumption, "")
	require.NoError(t, err)

	lots, err := e.queries.ActiveLots(context.Background(), item.ID)

	require.NoError(t, err)
	require.Len(t, lots, 1, "un lote agotado deja de ser lote vivo")
	assert.Equal(t, lot2, lots[0].EntryID)
	assert.True(t, lots[0].OriginalSize.Equal(dec("50")))
	assert.True(t, lots[0].Remaining.Equal(dec("50")))
	assert.True(t, lots[0].UnitCost.Equal(dec("3.0")))
	assert.Equal(t, 1, lots[0].AgeDays)
	assert.Nil(t, lots[0].DaysRemaining, "sin vencimiento no hay campos de expiración")
}

func TestActiveLots_CamposDeVencimiento(t *testing.T) {
	e := newEnv(t)
	item := e.newItem(t, ledger.RegisterItemInput{
		Name: "Leche", CanonicalUnit: "ml", Perishable: true, ShelfLifeDays: 10,
	})
	_, err := e.adjust.Adjust(context.Background(), ledger.AdjustmentInput{
		ItemID: item.ID, Amount: dec("1000"), Kind: entity.EventRestock, UnitCost: decPtr("0.002"),
	})
	require.NoError(t, err)

	lots, err := e.queries.ActiveLots(context.Background(), item.ID)

	require.NoError(t, err)
	require.Len(t, lots, 1)
	require.NotNil(t, lots[0].DaysRemaining)
	assert.Equal(t, 9, *lots[0].DaysRemaining, "faltan 9 días completos para el vencimiento")
	require.NotNil(t, lots[0].PercentLife)
	assert.GreaterOrEqual(t, *lots[0].PercentLife, 99, "lote recién creado con vida casi completa")
}

func TestActiveLots_ItemInexistente(t *testing.T) {
	e := newEnv(t)

	_, err := e.queries.ActiveLots(context.Background(), "no-existe")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSummary(t *testing.T) {
	e := newEnv(t)
	item := e.newItem(t, ledger.RegisterItemInput{
		Name: "Harina", CanonicalUnit: "g", LowStockThreshold: dec("500"),
	})
	e.store.AddLot(item.ID, dec("300"), dec("0.004"), daysAgo(1))

	summary, err := e.queries.Summary(context.Background(), item.ID)

	require.NoError(t, err)
	assert.Equal(t, "Harina", summary.Name)
	assert.Equal(t, "g", summary.CanonicalUnit)
	assert.True(t, summary.CurrentQuantity.Equal(dec("300")))
	assert.Equal(t, 1, summary.ActiveLots)
	assert.True(t, summary.LowStock, "300 g está bajo el umbral de 500 g")
}

func TestExpiringLots_FiltraPorVentana(t *testing.T) {
	e := newEnv(t)
	pronto := e.newItem(t, ledger.RegisterItemInput{
		Name: "Leche", CanonicalUnit: "ml", Perishable: true, ShelfLifeDays: 2,
	})
	lejano := e.newItem(t, ledger.RegisterItemInput{
		Name: "Yogurt", CanonicalUnit: "ml", Perishable: true, ShelfLifeDays: 30,
	})
	for _, it := range []string{pronto.ID, lejano.ID} {
		_, err := e.adjust.Adjust(context.Background(), ledger.AdjustmentInput{
			ItemID: it, Amount: dec("500"), Kind: entity.EventRestock, UnitCost: decPtr("0.002"),
		})
		require.NoError(t, err)
	}

	expiring, err := e.queries.ExpiringLots(context.Background(), "", 3)

	require.NoError(t, err)
	require.Len(t, expiring, 1, "solo el lote que vence dentro de la ventana")
	assert.Equal(t, pronto.ID, expiring[0].ItemID)
	assert.True(t, expiring[0].Remaining.Equal(dec("500")))
	assert.Equal(t, 1, expiring[0].DaysRemaining)
}

func TestExpiringLots_SinVentanaUsaLaConfigurada(t *testing.T) {
	e := newEnv(t)
	pronto := e.newItem(t, ledger.RegisterItemInput{
		Name: "Leche", CanonicalUnit: "ml", Perishable: true, ShelfLifeDays: 2,
	})
	lejano := e.newItem(t, ledger.RegisterItemInput{
		Name: "Yogurt", CanonicalUnit: "ml", Perishable: true, ShelfLifeDays: 30,
	})
	for _, it := range []string{pronto.ID, lejano.ID} {
		_, err := e.adjust.Adjust(context.Background(), ledger.AdjustmentInput{
			ItemID: it, Amount: dec("500"), Kind: entity.EventRestock, UnitCost: decPtr("0.002"),
		})
		require.NoError(t, err)
	}

	// withinDays 0: aplica la ventana de alerta del config (3 días).
	expiring, err := e.queries.ExpiringLots(context.Background(), "", 0)

	require.NoError(t, err)
	require.Len(t, expiring, 1)
	assert.Equal(t, pronto.ID, expiring[0].ItemID)
}

func TestExpiringLots_LoteAgotadoNoAparece(t *testing.T) {
	e := newEnv(t)
	item := e.newItem(t, ledger.RegisterItemInput{
		Name: "Leche", CanonicalUnit: "ml", Perishable: true, ShelfLifeDays: 2,
	})
	_, err := e.adjust.Adjust(context.Background(), ledger.AdjustmentInput{
		ItemID: item.ID, Amount: dec("500"), Kind: entity.EventRestock, UnitCost: decPtr("0.002"),
	})
	require.NoError(t, err)
	_, err = e.adjust.Deduct(context.Background(), item.ID, dec("500"), entity.EventConsumption, "")
	require.NoError(t, err)

	expiring, err := e.queries.ExpiringLots(context.Background(), item.ID, 3)

	require.NoError(t, err)
	assert.Empty(t, expiring)
}

func TestLowStockItems(t *testing.T) {
	e := newEnv(t)
	bajo := e.newItem(t, ledger.RegisterItemInput{
		Name: "Harina", CanonicalUnit: "g", LowStockThreshold: dec("500"),
	})
	e.store.AddLot(bajo.ID, dec("200"), dec("0.004"), daysAgo(1))
	sano := e.newItem(t, ledger.RegisterItemInput{
		Name: "Azúcar", CanonicalUnit: "g", LowStockThreshold: dec("500"),
	})
	e.store.AddLot(sano.ID, dec("900"), dec("0.003"), daysAgo(1))

	low, err := e.queries.LowStockItems(context.Background())

	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, bajo.ID, low[0].ItemID)
	assert.True(t, low[0].Deficit.Equal(dec("300")), "déficit = umbral - cantidad")
}

func TestHistory_MasRecientePrimeroYPaginado(t *testing.T) {
	e := newEnv(t)
	item := e.newItem(t, ledger.RegisterItemInput{Name: "Harina", CanonicalUnit: "ud"})
	lotID := e.store.AddLot(item.ID, dec("100"), dec("2.5"), daysAgo(2))
	_, err := e.adjust.Deduct(context.Background(), item.ID, dec("30"), entity.EventConsumption, "")
	require.NoError(t, err)

	history, err := e.queries.History(context.Background(), item.ID, 0, 0)

	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, entity.EventConsumption, history[0].Kind, "el movimiento más reciente va primero")
	assert.True(t, history[0].QuantityDelta.Equal(dec("-30")))
	require.NotNil(t, history[0].FifoRef)
	assert.Equal(t, lotID, *history[0].FifoRef)
	assert.Equal(t, entity.EventRestock, history[1].Kind)

	page, err := e.queries.History(context.Background(), item.ID, 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, lotID, page[0].EntryID)
}

func TestHistory_ItemInexistente(t *testing.T) {
	e := newEnv(t)

	_, err := e.queries.History(context.Background(), "no-existe", 10, 0)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCheckIntegrity_Consistente(t *testing.T) {
	e := newEnv(t)
	item := e.newItem(t, ledger.RegisterItemInput{Name: "Harina", CanonicalUnit: "ud"})
	e.store.AddLot(item.ID, dec("100"), dec("2.5"), daysAgo(1))
	_, err := e.adjust.Deduct(context.Background(), item.ID, dec("30"), entity.EventConsumption, "")
	require.NoError(t, err)

	report, err := e.queries.CheckIntegrity(context.Background(), item.ID)

	require.NoError(t, err)
	assert.True(t, report.Consistent)
	assert.True(t, report.Drift.IsZero())
	assert.True(t, report.LedgerTotal.Equal(dec("70")))
}

func TestCheckIntegrity_DetectaDeriva(t *testing.T) {
	e := newEnv(t)
	item := e.newItem(t, ledger.RegisterItemInput{Name: "Harina", CanonicalUnit: "ud"})
	e.store.AddLot(item.ID, dec("100"), dec("2.5"), daysAgo(1))
	// Corromper la cache a propósito, sin tocar el ledger.
	require.NoError(t, e.items.AdjustQuantity(item.ID, dec("-5"), daysAgo(0)))

	report, err := e.queries.CheckIntegrity(context.Background(), item.ID)

	require.NoError(t, err)
	assert.False(t, report.Consistent)
	assert.True(t, report.Drift.Equal(dec("-5")), "deriva = cache - ledger")
	assert.True(t, report.CachedQuantity.Equal(dec("95")))
	assert.True(t, report.LedgerTotal.Equal(dec("100")))
}
