package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// LotDTO representa un lote vivo en orden FIFO, con edad, costo y vencimiento.
type LotDTO struct {
	EntryID       int64           `json:"entry_id"`
	Kind          string          `json:"kind"`
	OriginalSize  decimal.Decimal `json:"original_size"`
	Remaining     decimal.Decimal `json:"remaining"`
	UnitCost      decimal.Decimal `json:"unit_cost"`
	AgeDays       int             `json:"age_days"`
	CreatedAt     time.Time       `json:"created_at"`
	ExpiresAt     *time.Time      `json:"expires_at,omitempty"`
	DaysRemaining *int            `json:"days_remaining,omitempty"` // negativo = vencido
	PercentLife   *int            `json:"percent_life,omitempty"`   // 0..100
}

// LedgerEntryDTO movimiento del historial de un item (lectura de exportación).
type LedgerEntryDTO struct {
	EntryID        int64           `json:"entry_id"`
	Kind           string          `json:"kind"`
	QuantityDelta  decimal.Decimal `json:"quantity_delta"`
	Remaining      decimal.Decimal `json:"remaining"`
	UnitCost       decimal.Decimal `json:"unit_cost"`
	FifoRef        *int64          `json:"fifo_ref,omitempty"`
	TransactionRef string          `json:"transaction_ref,omitempty"`
	Note           string          `json:"note,omitempty"`
	Anomaly        bool            `json:"anomaly"`
	ExpiresAt      *time.Time      `json:"expires_at,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// StockSummaryDTO resumen del item: cantidad cacheada, unidad y estado.
type StockSummaryDTO struct {
	ItemID          string          `json:"item_id"`
	Name            string          `json:"name"`
	CanonicalUnit   string          `json:"canonical_unit"`
	CurrentQuantity decimal.Decimal `json:"current_quantity"`
	ActiveLots      int             `json:"active_lots"`
	LowStock        bool            `json:"low_stock"`
	Perishable      bool            `json:"perishable"`
}

// ExpiringLotDTO lote por vencer o ya vencido.
type ExpiringLotDTO struct {
	ItemID        string          `json:"item_id"`
	EntryID       int64           `json:"entry_id"`
	Remaining     decimal.Decimal `json:"remaining"`
	ExpiresAt     time.Time       `json:"expires_at"`
	DaysRemaining int             `json:"days_remaining"` // negativo = vencido
}

// LowStockItemDTO item bajo su umbral de stock mínimo.
type LowStockItemDTO struct {
	ItemID          string          `json:"item_id"`
	Name            string          `json:"name"`
	CanonicalUnit   string          `json:"canonical_unit"`
	CurrentQuantity decimal.Decimal `json:"current_quantity"`
	Threshold       decimal.Decimal `json:"threshold"`
	Deficit         decimal.Decimal `json:"deficit"`
}

// IntegrityReportDTO resultado de la verificación cantidad cacheada vs ledger.
type IntegrityReportDTO struct {
	ItemID         string          `json:"item_id"`
	CachedQuantity decimal.Decimal `json:"cached_quantity"`
	LedgerTotal    decimal.Decimal `json:"ledger_total"`
	Consistent     bool            `json:"consistent"`
	Drift          decimal.Decimal `json:"drift"` // cache - ledger
}
