package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de evento del ledger de inventario.
const (
	EventRestock        = "RESTOCK"         // entrada de stock (crea lote)
	EventConsumption    = "CONSUMPTION"     // salida por consumo (FIFO)
	EventSpoilage       = "SPOILAGE"        // merma por vencimiento
	EventWaste          = "WASTE"           // merma por desperdicio
	EventRecount        = "RECOUNT"         // ajuste por conteo físico
	EventCredit         = "CREDIT"          // reversa de un consumo previo
	EventCostCorrection = "COST_CORRECTION" // corrección de costo de un lote (delta 0)
)

// LedgerEntry es un registro append-only del ledger de movimientos.
// Una entrada con QuantityDelta positivo y Remaining > 0 es un "lote":
// conserva su propio saldo hasta consumirse por completo. Las entradas de
// deducción siempre se escriben con Remaining = 0 y FifoRef apuntando al
// lote consumido. Una vez escrita, la entrada es inmutable salvo Remaining
// (decrementa en deducciones; incrementa solo al rellenar por recuento o
// al acreditar una reversa) y UnitCost (corrección de costo).
type LedgerEntry struct {
	ID             int64
	ItemID         string
	Kind           string
	QuantityDelta  decimal.Decimal // firmado, en la unidad canónica del item
	Remaining      decimal.Decimal // >= 0; nunca supera el tamaño original del lote
	UnitCost       decimal.Decimal // costo unitario al momento del evento
	FifoRef        *int64          // lote del que dedujo / al que acreditó
	TransactionRef string          // transacción de negocio origen (ej. orden de producción)
	Note           string
	Anomaly        bool // crédito sobrante que no cupo en los lotes originales
	Perishable     bool
	ShelfLifeDays  int
	ExpiresAt      *time.Time // snapshot de vencimiento calculado al crear el lote
	CreatedAt      time.Time
}

// IsLot indica si la entrada agregó stock (puede tener saldo consumible).
func (e *LedgerEntry) IsLot() bool {
	return e.QuantityDelta.GreaterThan(decimal.Zero) && e.Kind != EventCostCorrection
}

// OriginalSize devuelve el tamaño original del lote (su delta positivo).
func (e *LedgerEntry) OriginalSize() decimal.Decimal {
	return e.QuantityDelta
}

// SpareCapacity devuelve cuánto le falta al lote para volver a su tamaño original.
func (e *LedgerEntry) SpareCapacity() decimal.Decimal {
	if !e.IsLot() {
		return decimal.Zero
	}
	return e.QuantityDelta.Sub(e.Remaining)
}

// TotalCost devuelve el costo total del movimiento (delta * costo unitario).
func (e *LedgerEntry) TotalCost() decimal.Decimal {
	return e.QuantityDelta.Mul(e.UnitCost)
}
