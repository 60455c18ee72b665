package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/inventario-core/internal/domain"
	"github.com/tu-usuario/inventario-core/internal/domain/entity"
	"github.com/tu-usuario/inventario-core/internal/domain/expiry"
	"github.com/tu-usuario/inventario-core/internal/domain/ledger"
	"github.com/tu-usuario/inventario-core/internal/domain/repository"
	"github.com/tu-usuario/inventario-core/internal/domain/units"
	"github.com/tu-usuario/inventario-core/pkg/logger"
)

// AdjustUseCase es el punto único de entrada para todo cambio de cantidad:
// normaliza unidades, clasifica el tipo de evento, enruta a deducción FIFO,
// crédito o recuento, y actualiza la cantidad cacheada en la misma
// transacción que escribe el ledger (fila del item bloqueada con
// SELECT FOR UPDATE: los ajustes concurrentes al mismo item se serializan).
type AdjustUseCase struct {
	txRunner     TxRunner
	itemRepo     repository.TrackedItemRepository
	categoryRepo repository.CategoryRepository
	catalog      *units.Catalog
	log          *logger.Logger
}

// NewAdjustUseCase construye el orquestador de ajustes.
func NewAdjustUseCase(
	txRunner TxRunner,
	itemRepo repository.TrackedItemRepository,
	categoryRepo repository.CategoryRepository,
	catalog *units.Catalog,
	log *logger.Logger,
) *AdjustUseCase {
	return &AdjustUseCase{
		txRunner:     txRunner,
		itemRepo:     itemRepo,
		categoryRepo: categoryRepo,
		catalog:      catalog,
		log:          log,
	}
}

// AdjustmentInput entrada para un ajuste de inventario.
// Amount es siempre una magnitud >= 0 en Unit (vacía = unidad canónica del
// item); el signo lo determina Kind. Para RECOUNT, Amount es la cantidad
// absoluta declarada por el conteo físico. UnitCost es obligatorio en RESTOCK.
type AdjustmentInput struct {
	ItemID         string
	Amount         decimal.Decimal
	Unit           string
	Kind           string
	Note           string
	TransactionRef string
	UnitCost       *decimal.Decimal
}

// AdjustmentResult resultado tipado de un ajuste aplicado.
type AdjustmentResult struct {
	ItemID       string
	Kind         string
	Amount       decimal.Decimal // ya normalizado a la unidad canónica
	NewQuantity  decimal.Decimal
	Entries      []*entity.LedgerEntry
	Consumptions []ledger.Consumption // tomas FIFO (solo eventos de salida)
}

// Adjust valida, normaliza la unidad, y aplica el ajuste de forma atómica.
// Cualquier falla de conversión o de stock se devuelve como error tipado sin
// tocar estado persistido.
func (uc *AdjustUseCase) Adjust(ctx context.Context, input AdjustmentInput) (*AdjustmentResult, error) {
	switch input.Kind {
	case entity.EventRestock, entity.EventConsumption, entity.EventSpoilage,
		entity.EventWaste, entity.EventRecount, entity.EventCredit:
	default:
		return nil, fmt.Errorf("%w: tipo de evento %q", domain.ErrInvalidInput, input.Kind)
	}
	if input.Amount.IsNegative() {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidQuantity, input.Amount)
	}

	item, err := uc.itemRepo.GetByID(input.ItemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	if item.IsArchived() {
		return nil, domain.ErrItemArchived
	}

	// Normalizar a la unidad canónica antes de tocar el ledger.
	amount, err := uc.normalize(item, input.Amount, input.Unit)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	var result *AdjustmentResult
	err = uc.txRunner.Run(ctx, func(
		itemRepo repository.TrackedItemRepository,
		entryRepo repository.LedgerEntryRepository,
	) error {
		// Releer bajo lock: la cantidad cacheada de afuera puede estar vieja.
		locked, err := itemRepo.GetForUpdate(input.ItemID)
		if err != nil {
			return err
		}
		if locked == nil {
			return domain.ErrNotFound
		}
		switch input.Kind {
		case entity.EventRestock:
			result, err = uc.doRestock(itemRepo, entryRepo, locked, amount, input, now)
		case entity.EventConsumption, entity.EventSpoilage, entity.EventWaste:
			result, err = uc.doDeduct(itemRepo, entryRepo, locked, amount, input.Kind, input.Note, input.TransactionRef, now)
		case entity.EventCredit:
			if input.TransactionRef == "" {
				// Crédito sin transacción de origen: entra como lote nuevo.
				result, err = uc.doRestock(itemRepo, entryRepo, locked, amount, input, now)
			} else {
				result, err = uc.doCredit(itemRepo, entryRepo, locked, amount, input, now)
			}
		case entity.EventRecount:
			result, err = uc.doRecount(itemRepo, entryRepo, locked, amount, input.Note, now)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Deduct descuenta amount (en la unidad canónica) con el tipo de evento dado.
// Atajo para los flujos de producción que ya trabajan en unidad canónica.
// Siempre deduce por FIFO, incluso con kind RECOUNT (baja por faltante de
// conteo): aquí amount es cuánto descontar, nunca la cantidad absoluta
// declarada. Para conciliar contra un conteo físico está Recount.
func (uc *AdjustUseCase) Deduct(ctx context.Context, itemID string, amount decimal.Decimal, kind, note string) (*AdjustmentResult, error) {
	switch kind {
	case entity.EventConsumption, entity.EventSpoilage, entity.EventWaste, entity.EventRecount:
	default:
		return nil, fmt.Errorf("%w: %q no es un evento de salida", domain.ErrInvalidInput, kind)
	}
	if amount.IsNegative() {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidQuantity, amount)
	}
	now := time.Now()
	var result *AdjustmentResult
	err := uc.txRunner.Run(ctx, func(
		itemRepo repository.TrackedItemRepository,
		entryRepo repository.LedgerEntryRepository,
	) error {
		locked, err := itemRepo.GetForUpdate(itemID)
		if err != nil {
			return err
		}
		if locked == nil {
			return domain.ErrNotFound
		}
		if locked.IsArchived() {
			return domain.ErrItemArchived
		}
		result, err = uc.doDeduct(itemRepo, entryRepo, locked, amount, kind, note, "", now)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// normalize convierte amount a la unidad canónica del item. La densidad sale
// del item o, en su defecto, de la categoría; si tampoco existe y la
// conversión la necesita, Convert devuelve ErrMissingDensity.
func (uc *AdjustUseCase) normalize(item *entity.TrackedItem, amount decimal.Decimal, unit string) (decimal.Decimal, error) {
	if unit == "" || unit == item.CanonicalUnit {
		return amount, nil
	}
	density := item.Density
	if density == nil && item.CategoryID != "" {
		category, err := uc.categoryRepo.GetByID(item.CategoryID)
		if err != nil {
			return decimal.Zero, err
		}
		if category != nil {
			density = category.DefaultDensity
		}
	}
	return units.Convert(uc.catalog, amount, unit, item.CanonicalUnit, density)
}

// doRestock crea un lote nuevo con snapshot de perecibilidad y suma la
// cantidad cacheada.
func (uc *AdjustUseCase) doRestock(
	itemRepo repository.TrackedItemRepository,
	entryRepo repository.LedgerEntryRepository,
	item *entity.TrackedItem,
	amount decimal.Decimal,
	input AdjustmentInput,
	now time.Time,
) (*AdjustmentResult, error) {
	if !amount.GreaterThan(decimal.Zero) {
		return nil, fmt.Errorf("%w: entrada de %s", domain.ErrInvalidQuantity, amount)
	}
	if input.Kind == entity.EventRestock && (input.UnitCost == nil || input.UnitCost.IsNegative()) {
		return nil, fmt.Errorf("%w: entrada sin costo unitario", domain.ErrInvalidInput)
	}
	cost := decimal.Zero
	if input.UnitCost != nil {
		cost = *input.UnitCost
	}
	lot := uc.newLot(item, amount, cost, input.Kind, input.Note, input.TransactionRef, now)
	if err := entryRepo.Create(lot); err != nil {
		return nil, err
	}
	if err := itemRepo.AdjustQuantity(item.ID, amount, now); err != nil {
		return nil, err
	}
	return &AdjustmentResult{
		ItemID:      item.ID,
		Kind:        input.Kind,
		Amount:      amount,
		NewQuantity: item.CurrentQuantity.Add(amount),
		Entries:     []*entity.LedgerEntry{lot},
	}, nil
}

// doDeduct arma el plan FIFO sobre los lotes vivos y lo aplica: decrementa
// el saldo de cada lote tocado, escribe una entrada de deducción por lote
// (costo copiado del lote: costeo histórico) y resta la cantidad cacheada
// exactamente por el monto pedido (sin re-sumar, para no acumular deriva).
// Todo o nada: un plan insuficiente falla antes de persistir nada.
func (uc *AdjustUseCase) doDeduct(
	itemRepo repository.TrackedItemRepository,
	entryRepo repository.LedgerEntryRepository,
	item *entity.TrackedItem,
	amount decimal.Decimal,
	kind, note, transactionRef string,
	now time.Time,
) (*AdjustmentResult, error) {
	lots, err := entryRepo.ListActiveLots(item.ID)
	if err != nil {
		return nil, err
	}
	plan, err := ledger.BuildDeductionPlan(lots, amount)
	if err != nil {
		return nil, err
	}
	result := &AdjustmentResult{
		ItemID:       item.ID,
		Kind:         kind,
		Amount:       amount,
		NewQuantity:  item.CurrentQuantity,
		Consumptions: plan,
	}
	if len(plan) == 0 {
		// Deducción de cero: éxito vacío, sin filas nuevas.
		return result, nil
	}

	remainingByLot := make(map[int64]decimal.Decimal, len(lots))
	for _, lot := range lots {
		remainingByLot[lot.ID] = lot.Remaining
	}
	for _, take := range plan {
		newRemaining := remainingByLot[take.LotID].Sub(take.Amount)
		if err := entryRepo.SetRemaining(take.LotID, newRemaining); err != nil {
			return nil, err
		}
		lotID := take.LotID
		deduction := &entity.LedgerEntry{
			ItemID:         item.ID,
			Kind:           kind,
			QuantityDelta:  take.Amount.Neg(),
			Remaining:      decimal.Zero,
			UnitCost:       take.UnitCost,
			FifoRef:        &lotID,
			TransactionRef: transactionRef,
			Note:           note,
			CreatedAt:      now,
		}
		if err := entryRepo.Create(deduction); err != nil {
			return nil, err
		}
		result.Entries = append(result.Entries, deduction)
	}
	if err := itemRepo.AdjustQuantity(item.ID, amount.Neg(), now); err != nil {
		return nil, err
	}
	result.NewQuantity = item.CurrentQuantity.Sub(amount)
	return result, nil
}

// doCredit reversa un consumo previo: restaura el saldo en los lotes
// originales de la transacción referenciada (deducción más reciente primero,
// sin superar el tamaño original de cada lote ni lo que la transacción dedujo
// menos sus reversas anteriores). Una transacción ya reversada por completo
// devuelve ErrLotNotFound. El sobrante que ya no cabe se vuelve lote nuevo
// marcado como anomalía para auditoría.
func (uc *AdjustUseCase) doCredit(
	itemRepo repository.TrackedItemRepository,
	entryRepo repository.LedgerEntryRepository,
	item *entity.TrackedItem,
	amount decimal.Decimal,
	input AdjustmentInput,
	now time.Time,
) (*AdjustmentResult, error) {
	if !amount.GreaterThan(decimal.Zero) {
		return nil, fmt.Errorf("%w: crédito de %s", domain.ErrInvalidQuantity, amount)
	}
	deductions, err := entryRepo.ListDeductionsByTransaction(item.ID, input.TransactionRef)
	if err != nil {
		return nil, err
	}
	if len(deductions) == 0 {
		return nil, fmt.Errorf("%w: transacción %q sin deducciones", domain.ErrLotNotFound, input.TransactionRef)
	}
	credits, err := entryRepo.ListCreditsByTransaction(item.ID, input.TransactionRef)
	if err != nil {
		return nil, err
	}
	priorCredits := make(map[int64]decimal.Decimal, len(credits))
	totalDeducted, totalCredited := decimal.Zero, decimal.Zero
	for _, ded := range deductions {
		totalDeducted = totalDeducted.Add(ded.QuantityDelta.Neg())
	}
	for _, credit := range credits {
		priorCredits[*credit.FifoRef] = priorCredits[*credit.FifoRef].Add(credit.QuantityDelta)
		totalCredited = totalCredited.Add(credit.QuantityDelta)
	}
	if !totalDeducted.GreaterThan(totalCredited) {
		return nil, fmt.Errorf("%w: transacción %q ya reversada por completo", domain.ErrLotNotFound, input.TransactionRef)
	}

	lotsByID := make(map[int64]*entity.LedgerEntry, len(deductions))
	for _, ded := range deductions {
		if ded.FifoRef == nil {
			continue
		}
		if _, ok := lotsByID[*ded.FifoRef]; ok {
			continue
		}
		lot, err := entryRepo.GetByID(*ded.FifoRef)
		if err != nil {
			return nil, err
		}
		if lot != nil {
			lotsByID[lot.ID] = lot
		}
	}

	plan, leftover := ledger.BuildCreditPlan(deductions, lotsByID, amount, priorCredits)
	result := &AdjustmentResult{
		ItemID:      item.ID,
		Kind:        entity.EventCredit,
		Amount:      amount,
		NewQuantity: item.CurrentQuantity.Add(amount),
	}
	for _, restore := range plan {
		lot := lotsByID[restore.LotID]
		if err := entryRepo.SetRemaining(lot.ID, lot.Remaining.Add(restore.Amount)); err != nil {
			return nil, err
		}
		lot.Remaining = lot.Remaining.Add(restore.Amount)
		lotID := restore.LotID
		credit := &entity.LedgerEntry{
			ItemID:         item.ID,
			Kind:           entity.EventCredit,
			QuantityDelta:  restore.Amount,
			Remaining:      decimal.Zero, // el saldo vive en el lote restaurado
			UnitCost:       restore.UnitCost,
			FifoRef:        &lotID,
			TransactionRef: input.TransactionRef,
			Note:           input.Note,
			CreatedAt:      now,
		}
		if err := entryRepo.Create(credit); err != nil {
			return nil, err
		}
		result.Entries = append(result.Entries, credit)
	}
	if leftover.GreaterThan(decimal.Zero) {
		uc.log.Warn().
			Str("item_id", item.ID).
			Str("transaction_ref", input.TransactionRef).
			Str("leftover", leftover.String()).
			Msg("crédito excede lo deducido: sobrante registrado como lote anómalo")
		lot := uc.newLot(item, leftover, deductions[0].UnitCost, entity.EventCredit, input.Note, input.TransactionRef, now)
		lot.Anomaly = true
		if err := entryRepo.Create(lot); err != nil {
			return nil, err
		}
		result.Entries = append(result.Entries, lot)
	}
	if err := itemRepo.AdjustQuantity(item.ID, amount, now); err != nil {
		return nil, err
	}
	return result, nil
}

// newLot arma una entrada-lote con el snapshot de perecibilidad del item
// congelado al momento de creación.
func (uc *AdjustUseCase) newLot(item *entity.TrackedItem, amount, unitCost decimal.Decimal, kind, note, transactionRef string, now time.Time) *entity.LedgerEntry {
	return &entity.LedgerEntry{
		ItemID:         item.ID,
		Kind:           kind,
		QuantityDelta:  amount,
		Remaining:      amount,
		UnitCost:       unitCost,
		TransactionRef: transactionRef,
		Note:           note,
		Perishable:     item.Perishable,
		ShelfLifeDays:  item.ShelfLifeDays,
		ExpiresAt:      expiry.ComputeExpiration(now, item.ShelfLifeDays, item.Perishable),
		CreatedAt:      now,
	}
}
