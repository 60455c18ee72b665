// Package ledger contiene los planificadores puros del ledger de inventario:
// deducción FIFO, relleno por recuento y crédito a lotes originales.
// Trabajan sobre lotes ya cargados y no persisten nada: si el plan falla,
// no hay estado a medio aplicar que revertir.
package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/inventario-core/internal/domain"
	"github.com/tu-usuario/inventario-core/internal/domain/entity"
)

// Consumption es una toma planificada contra un lote: cuánto se le quita y a
// qué costo unitario histórico (el del lote, no el precio vigente).
type Consumption struct {
	LotID    int64
	Amount   decimal.Decimal
	UnitCost decimal.Decimal
}

// TopUp es un relleno planificado de un lote parcialmente consumido, de
// vuelta hacia su tamaño original (recuento con sobrante).
type TopUp struct {
	LotID    int64
	Amount   decimal.Decimal
	UnitCost decimal.Decimal
}

// BuildDeductionPlan recorre los lotes vivos en orden FIFO ((created_at, id)
// ascendente, responsabilidad del caller) acumulando min(saldo, faltante) por
// lote hasta cubrir amount. Todo o nada: si la suma de saldos no alcanza,
// devuelve ErrInsufficientStock sin plan parcial. amount cero es un éxito
// vacío; negativo, ErrInvalidQuantity.
func BuildDeductionPlan(lots []*entity.LedgerEntry, amount decimal.Decimal) ([]Consumption, error) {
	if amount.IsNegative() {
		return nil, fmt.Errorf("%w: deducción de %s", domain.ErrInvalidQuantity, amount)
	}
	if amount.IsZero() {
		return []Consumption{}, nil
	}
	plan := make([]Consumption, 0, len(lots))
	left := amount
	for _, lot := range lots {
		if !lot.Remaining.GreaterThan(decimal.Zero) {
			continue
		}
		take := decimal.Min(lot.Remaining, left)
		plan = append(plan, Consumption{LotID: lot.ID, Amount: take, UnitCost: lot.UnitCost})
		left = left.Sub(take)
		if left.IsZero() {
			return plan, nil
		}
	}
	return nil, fmt.Errorf("%w: faltan %s para cubrir %s", domain.ErrInsufficientStock, left, amount)
}

// BuildTopUpPlan reparte surplus rellenando la capacidad libre
// (tamaño original - saldo) de los lotes dados, en el orden recibido
// (el recuento itera del lote más reciente al más antiguo). Solo rellena
// lotes parcialmente consumidos: un lote agotado ya salió de la cola FIFO y
// no se revive. Devuelve el plan y el sobrante que no cupo en ningún lote:
// ese resto se materializa como lote nuevo, para no adelantar stock
// corregido por delante de stock genuinamente más viejo en la cola.
func BuildTopUpPlan(lots []*entity.LedgerEntry, surplus decimal.Decimal) ([]TopUp, decimal.Decimal) {
	plan := []TopUp{}
	left := surplus
	for _, lot := range lots {
		if left.IsZero() {
			break
		}
		if !lot.Remaining.GreaterThan(decimal.Zero) {
			continue
		}
		spare := lot.SpareCapacity()
		if !spare.GreaterThan(decimal.Zero) {
			continue
		}
		fill := decimal.Min(spare, left)
		plan = append(plan, TopUp{LotID: lot.ID, Amount: fill, UnitCost: lot.UnitCost})
		left = left.Sub(fill)
	}
	return plan, left
}

// BuildCreditPlan reversa un consumo previo: recorre las deducciones de la
// transacción original (más reciente primero) y devuelve el monto de cada
// lote de origen. Por lote, la restauración acumulada nunca supera ni su
// tamaño original ni lo que la transacción le dedujo menos lo ya acreditado
// en reversas anteriores (priorCredits, por ID de lote): un segundo crédito
// no puede apropiarse de capacidad liberada por deducciones de otra
// transacción. Devuelve el plan y el sobrante que no cupo en ningún lote
// referenciado (se vuelve lote nuevo marcado como anomalía).
func BuildCreditPlan(deductions []*entity.LedgerEntry, lotsByID map[int64]*entity.LedgerEntry, amount decimal.Decimal, priorCredits map[int64]decimal.Decimal) ([]TopUp, decimal.Decimal) {
	deductedByLot := map[int64]decimal.Decimal{}
	for _, ded := range deductions {
		if ded.FifoRef != nil {
			deductedByLot[*ded.FifoRef] = deductedByLot[*ded.FifoRef].Add(ded.QuantityDelta.Neg())
		}
	}
	plan := []TopUp{}
	left := amount
	restored := map[int64]decimal.Decimal{}
	for _, ded := range deductions {
		if left.IsZero() {
			break
		}
		if ded.FifoRef == nil {
			continue
		}
		lot, ok := lotsByID[*ded.FifoRef]
		if !ok {
			continue
		}
		spare := lot.SpareCapacity().Sub(restored[lot.ID])
		cupo := deductedByLot[lot.ID].Sub(priorCredits[lot.ID]).Sub(restored[lot.ID])
		give := decimal.Min(left, decimal.Min(spare, cupo))
		if !give.GreaterThan(decimal.Zero) {
			continue
		}
		plan = append(plan, TopUp{LotID: lot.ID, Amount: give, UnitCost: lot.UnitCost})
		restored[lot.ID] = restored[lot.ID].Add(give)
		left = left.Sub(give)
	}
	return plan, left
}
