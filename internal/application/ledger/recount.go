package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/inventario-core/internal/domain/entity"
	"github.com/tu-usuario/inventario-core/internal/domain/ledger"
	"github.com/tu-usuario/inventario-core/internal/domain/repository"
)

// Recount concilia la cantidad absoluta declarada por un conteo físico
// contra el total del ledger. Declarar el total vigente es un no-op
// (idempotente); un faltante se descuenta vía FIFO; un sobrante primero
// rellena lotes por debajo de su tamaño original y solo el resto crea lote
// nuevo (política "rellenar antes de crear": una corrección de conteo no
// debe colarse al frente de la cola FIFO por delante de stock más viejo).
func (uc *AdjustUseCase) Recount(ctx context.Context, itemID string, declared decimal.Decimal, note string) (*AdjustmentResult, error) {
	return uc.Adjust(ctx, AdjustmentInput{
		ItemID: itemID,
		Amount: declared,
		Kind:   entity.EventRecount,
		Note:   note,
	})
}

func (uc *AdjustUseCase) doRecount(
	itemRepo repository.TrackedItemRepository,
	entryRepo repository.LedgerEntryRepository,
	item *entity.TrackedItem,
	declared decimal.Decimal,
	note string,
	now time.Time,
) (*AdjustmentResult, error) {
	difference := declared.Sub(item.CurrentQuantity)
	if difference.IsZero() {
		return &AdjustmentResult{
			ItemID:      item.ID,
			Kind:        entity.EventRecount,
			NewQuantity: item.CurrentQuantity,
		}, nil
	}
	if difference.IsNegative() {
		recountNote := note
		if recountNote == "" {
			recountNote = fmt.Sprintf("recuento: declarado %s", declared)
		}
		return uc.doDeduct(itemRepo, entryRepo, item, difference.Neg(), entity.EventRecount, recountNote, "", now)
	}

	// Sobrante: rellenar lotes con capacidad libre, del más reciente al más
	// antiguo (comportamiento documentado del recuento).
	lots, err := entryRepo.ListLotsNewestFirst(item.ID)
	if err != nil {
		return nil, err
	}
	plan, rest := ledger.BuildTopUpPlan(lots, difference)
	result := &AdjustmentResult{
		ItemID:      item.ID,
		Kind:        entity.EventRecount,
		Amount:      difference,
		NewQuantity: item.CurrentQuantity.Add(difference),
	}
	lotsByID := make(map[int64]*entity.LedgerEntry, len(lots))
	for _, lot := range lots {
		lotsByID[lot.ID] = lot
	}
	for _, fill := range plan {
		lot := lotsByID[fill.LotID]
		if err := entryRepo.SetRemaining(lot.ID, lot.Remaining.Add(fill.Amount)); err != nil {
			return nil, err
		}
		lotID := fill.LotID
		topUp := &entity.LedgerEntry{
			ItemID:        item.ID,
			Kind:          entity.EventRecount,
			QuantityDelta: fill.Amount,
			Remaining:     decimal.Zero, // el saldo vive en el lote rellenado
			UnitCost:      fill.UnitCost,
			FifoRef:       &lotID,
			Note:          note,
			CreatedAt:     now,
		}
		if err := entryRepo.Create(topUp); err != nil {
			return nil, err
		}
		result.Entries = append(result.Entries, topUp)
	}
	if rest.GreaterThan(decimal.Zero) {
		// Lote nuevo al costo del lote más reciente; sin historial, a cero.
		cost := decimal.Zero
		if len(lots) > 0 {
			cost = lots[0].UnitCost
		}
		lot := uc.newLot(item, rest, cost, entity.EventRecount, note, "", now)
		if err := entryRepo.Create(lot); err != nil {
			return nil, err
		}
		result.Entries = append(result.Entries, lot)
	}
	if err := itemRepo.AdjustQuantity(item.ID, difference, now); err != nil {
		return nil, err
	}
	return result, nil
}
