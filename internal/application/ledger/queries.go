package ledger

import (
	"context"
	"time"

	"github.com/tu-usuario/inventario-core/internal/application/dto"
	"github.com/tu-usuario/inventario-core/internal/domain"
	"github.com/tu-usuario/inventario-core/internal/domain/expiry"
	"github.com/tu-usuario/inventario-core/internal/domain/repository"
	"github.com/tu-usuario/inventario-core/pkg/config"
)

// StockQueryUseCase expone las lecturas del ledger para los colaboradores de
// reporte y chequeo de stock. Solo lee; nunca muta el ledger.
type StockQueryUseCase struct {
	itemRepo  repository.TrackedItemRepository
	entryRepo repository.LedgerEntryRepository
	defaults  config.LedgerConfig
}

// NewStockQueryUseCase construye el caso de uso de consultas.
func NewStockQueryUseCase(
	itemRepo repository.TrackedItemRepository,
	entryRepo repository.LedgerEntryRepository,
	defaults config.LedgerConfig,
) *StockQueryUseCase {
	return &StockQueryUseCase{itemRepo: itemRepo, entryRepo: entryRepo, defaults: defaults}
}

// ActiveLots devuelve los lotes vivos del item en orden FIFO con edad,
// costo unitario y campos de vencimiento.
func (uc *StockQueryUseCase) ActiveLots(ctx context.Context, itemID string) ([]dto.LotDTO, error) {
	item, err := uc.itemRepo.GetByID(itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	lots, err := uc.entryRepo.ListActiveLots(itemID)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	out := make([]dto.LotDTO, 0, len(lots))
	for _, lot := range lots {
		d := dto.LotDTO{
			EntryID:      lot.ID,
			Kind:         lot.Kind,
			OriginalSize: lot.OriginalSize(),
			Remaining:    lot.Remaining,
			UnitCost:     lot.UnitCost,
			AgeDays:      int(now.Sub(lot.CreatedAt).Hours() / 24),
			CreatedAt:    lot.CreatedAt,
			ExpiresAt:    lot.ExpiresAt,
		}
		if lot.ExpiresAt != nil {
			days := expiry.DaysRemaining(*lot.ExpiresAt, now)
			pct := expiry.PercentLifeRemaining(lot.CreatedAt, *lot.ExpiresAt, now)
			d.DaysRemaining = &days
			d.PercentLife = &pct
		}
		out = append(out, d)
	}
	return out, nil
}

// Summary devuelve la cantidad cacheada del item, su unidad y estado de stock.
func (uc *StockQueryUseCase) Summary(ctx context.Context, itemID string) (*dto.StockSummaryDTO, error) {
	item, err := uc.itemRepo.GetByID(itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	lots, err := uc.entryRepo.ListActiveLots(itemID)
	if err != nil {
		return nil, err
	}
	return &dto.StockSummaryDTO{
		ItemID:          item.ID,
		Name:            item.Name,
		CanonicalUnit:   item.CanonicalUnit,
		CurrentQuantity: item.CurrentQuantity,
		ActiveLots:      len(lots),
		LowStock:        item.BelowThreshold(),
		Perishable:      item.Perishable,
	}, nil
}

// ExpiringLots devuelve los lotes vivos que vencen dentro de withinDays
// (incluye los ya vencidos). itemID vacío consulta todos los items;
// withinDays <= 0 usa la ventana de alerta configurada.
func (uc *StockQueryUseCase) ExpiringLots(ctx context.Context, itemID string, withinDays int) ([]dto.ExpiringLotDTO, error) {
	if withinDays <= 0 {
		withinDays = uc.defaults.ExpiryWarningDays
	}
	now := time.Now()
	before := now.AddDate(0, 0, withinDays)
	lots, err := uc.entryRepo.ListExpiringLots(itemID, before)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ExpiringLotDTO, 0, len(lots))
	for _, lot := range lots {
		if lot.ExpiresAt == nil {
			continue
		}
		out = append(out, dto.ExpiringLotDTO{
			ItemID:        lot.ItemID,
			EntryID:       lot.ID,
			Remaining:     lot.Remaining,
			ExpiresAt:     *lot.ExpiresAt,
			DaysRemaining: expiry.DaysRemaining(*lot.ExpiresAt, now),
		})
	}
	return out, nil
}

// LowStockItems devuelve los items bajo su umbral de stock mínimo con el
// déficit a reponer.
func (uc *StockQueryUseCase) LowStockItems(ctx context.Context) ([]dto.LowStockItemDTO, error) {
	items, err := uc.itemRepo.ListBelowThreshold()
	if err != nil {
		return nil, err
	}
	out := make([]dto.LowStockItemDTO, 0, len(items))
	for _, item := range items {
		out = append(out, dto.LowStockItemDTO{
			ItemID:          item.ID,
			Name:            item.Name,
			CanonicalUnit:   item.CanonicalUnit,
			CurrentQuantity: item.CurrentQuantity,
			Threshold:       item.LowStockThreshold,
			Deficit:         item.LowStockThreshold.Sub(item.CurrentQuantity),
		})
	}
	return out, nil
}

// History devuelve el historial de movimientos del item, lo más reciente
// primero (lectura paginada para el colaborador de exportación). limit <= 0
// usa una página de 50.
func (uc *StockQueryUseCase) History(ctx context.Context, itemID string, limit, offset int) ([]dto.LedgerEntryDTO, error) {
	item, err := uc.itemRepo.GetByID(itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	if limit <= 0 {
		limit = 50
	}
	entries, err := uc.entryRepo.ListByItem(itemID, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.LedgerEntryDTO, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.LedgerEntryDTO{
			EntryID:        e.ID,
			Kind:           e.Kind,
			QuantityDelta:  e.QuantityDelta,
			Remaining:      e.Remaining,
			UnitCost:       e.UnitCost,
			FifoRef:        e.FifoRef,
			TransactionRef: e.TransactionRef,
			Note:           e.Note,
			Anomaly:        e.Anomaly,
			ExpiresAt:      e.ExpiresAt,
			CreatedAt:      e.CreatedAt,
		})
	}
	return out, nil
}

// CheckIntegrity compara la cantidad cacheada contra la suma de saldos del
// ledger (pasada periódica de conciliación: ambas deben coincidir siempre).
func (uc *StockQueryUseCase) CheckIntegrity(ctx context.Context, itemID string) (*dto.IntegrityReportDTO, error) {
	item, err := uc.itemRepo.GetByID(itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	total, err := uc.entryRepo.SumRemaining(itemID)
	if err != nil {
		return nil, err
	}
	return &dto.IntegrityReportDTO{
		ItemID:         item.ID,
		CachedQuantity: item.CurrentQuantity,
		LedgerTotal:    total,
		Consistent:     item.CurrentQuantity.Equal(total),
		Drift:          item.CurrentQuantity.Sub(total),
	}, nil
}
