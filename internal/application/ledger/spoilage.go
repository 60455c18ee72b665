package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/inventario-core/internal/domain"
	"github.com/tu-usuario/inventario-core/internal/domain/entity"
	"github.com/tu-usuario/inventario-core/internal/domain/repository"
)

// MarkLotSpoiled da de baja el saldo completo de un lote como merma por
// vencimiento. Pasa por el mismo camino que cualquier deducción (decremento
// de saldo + entrada SPOILAGE + cantidad cacheada en una transacción), solo
// que apuntado a un lote concreto en vez de recorrer la cola FIFO.
func (uc *AdjustUseCase) MarkLotSpoiled(ctx context.Context, itemID string, lotID int64, note string) (*AdjustmentResult, error) {
	now := time.Now()
	var result *AdjustmentResult
	err := uc.txRunner.Run(ctx, func(
		itemRepo repository.TrackedItemRepository,
		entryRepo repository.LedgerEntryRepository,
	) error {
		item, lot, err := uc.lockItemAndLot(itemRepo, entryRepo, itemID, lotID)
		if err != nil {
			return err
		}
		if !lot.Remaining.GreaterThan(decimal.Zero) {
			return fmt.Errorf("%w: lote %d sin saldo", domain.ErrLotNotFound, lotID)
		}
		quantity := lot.Remaining
		if err := entryRepo.SetRemaining(lot.ID, decimal.Zero); err != nil {
			return err
		}
		spoilage := &entity.LedgerEntry{
			ItemID:        item.ID,
			Kind:          entity.EventSpoilage,
			QuantityDelta: quantity.Neg(),
			Remaining:     decimal.Zero,
			UnitCost:      lot.UnitCost,
			FifoRef:       &lot.ID,
			Note:          note,
			CreatedAt:     now,
		}
		if err := entryRepo.Create(spoilage); err != nil {
			return err
		}
		if err := itemRepo.AdjustQuantity(item.ID, quantity.Neg(), now); err != nil {
			return err
		}
		result = &AdjustmentResult{
			ItemID:      item.ID,
			Kind:        entity.EventSpoilage,
			Amount:      quantity,
			NewQuantity: item.CurrentQuantity.Sub(quantity),
			Entries:     []*entity.LedgerEntry{spoilage},
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// CorrectLotCost corrige el costo unitario de un lote: actualiza el costo en
// el lote (las deducciones futuras lo copian) y deja una entrada
// COST_CORRECTION con delta cero como rastro de auditoría. La cantidad
// cacheada no cambia.
func (uc *AdjustUseCase) CorrectLotCost(ctx context.Context, itemID string, lotID int64, unitCost decimal.Decimal, note string) (*AdjustmentResult, error) {
	if unitCost.IsNegative() {
		return nil, fmt.Errorf("%w: costo %s", domain.ErrInvalidQuantity, unitCost)
	}
	now := time.Now()
	var result *AdjustmentResult
	err := uc.txRunner.Run(ctx, func(
		itemRepo repository.TrackedItemRepository,
		entryRepo repository.LedgerEntryRepository,
	) error {
		item, lot, err := uc.lockItemAndLot(itemRepo, entryRepo, itemID, lotID)
		if err != nil {
			return err
		}
		if err := entryRepo.SetUnitCost(lot.ID, unitCost); err != nil {
			return err
		}
		correction := &entity.LedgerEntry{
			ItemID:        item.ID,
			Kind:          entity.EventCostCorrection,
			QuantityDelta: decimal.Zero,
			Remaining:     decimal.Zero,
			UnitCost:      unitCost,
			FifoRef:       &lot.ID,
			Note:          note,
			CreatedAt:     now,
		}
		if err := entryRepo.Create(correction); err != nil {
			return err
		}
		result = &AdjustmentResult{
			ItemID:      item.ID,
			Kind:        entity.EventCostCorrection,
			NewQuantity: item.CurrentQuantity,
			Entries:     []*entity.LedgerEntry{correction},
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// lockItemAndLot carga el item bajo lock y un lote suyo, validando pertenencia.
func (uc *AdjustUseCase) lockItemAndLot(
	itemRepo repository.TrackedItemRepository,
	entryRepo repository.LedgerEntryRepository,
	itemID string, lotID int64,
) (*entity.TrackedItem, *entity.LedgerEntry, error) {
	item, err := itemRepo.GetForUpdate(itemID)
	if err != nil {
		return nil, nil, err
	}
	if item == nil {
		return nil, nil, domain.ErrNotFound
	}
	if item.IsArchived() {
		return nil, nil, domain.ErrItemArchived
	}
	lot, err := entryRepo.GetByID(lotID)
	if err != nil {
		return nil, nil, err
	}
	if lot == nil || lot.ItemID != itemID || !lot.IsLot() {
		return nil, nil, fmt.Errorf("%w: lote %d", domain.ErrLotNotFound, lotID)
	}
	return item, lot, nil
}
