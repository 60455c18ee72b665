package repository

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/inventario-core/internal/domain/entity"
)

// LedgerEntryRepository define el puerto de persistencia para el ledger
// append-only. Las entradas nunca se actualizan salvo Remaining (SetRemaining)
// y el costo de un lote corregido (SetUnitCost); nunca se borran.
type LedgerEntryRepository interface {
	// Create persiste una entrada y asigna su ID autoincremental.
	Create(e *entity.LedgerEntry) error
	GetByID(id int64) (*entity.LedgerEntry, error)
	// ListActiveLots devuelve los lotes con Remaining > 0 de un item en orden
	// FIFO: (created_at, id) ascendente, orden total determinista.
	ListActiveLots(itemID string) ([]*entity.LedgerEntry, error)
	// ListLotsNewestFirst devuelve todos los lotes del item (consumidos o no)
	// del más reciente al más antiguo, para el relleno por recuento.
	ListLotsNewestFirst(itemID string) ([]*entity.LedgerEntry, error)
	// ListDeductionsByTransaction devuelve las deducciones ligadas a una
	// transacción de negocio, la más reciente primero (orden de reversa).
	ListDeductionsByTransaction(itemID, transactionRef string) ([]*entity.LedgerEntry, error)
	// ListCreditsByTransaction devuelve las reversas ya aplicadas a una
	// transacción (créditos con lote de destino), para acotar cuánto queda
	// por acreditar.
	ListCreditsByTransaction(itemID, transactionRef string) ([]*entity.LedgerEntry, error)
	SetRemaining(id int64, remaining decimal.Decimal) error
	SetUnitCost(id int64, unitCost decimal.Decimal) error
	// SumRemaining suma el saldo de todos los lotes vivos del item
	// (verificación de integridad contra la cantidad cacheada).
	SumRemaining(itemID string) (decimal.Decimal, error)
	// ListExpiringLots devuelve lotes vivos con vencimiento anterior a before
	// (itemID vacío = todos los items), ordenados por vencimiento.
	ListExpiringLots(itemID string, before time.Time) ([]*entity.LedgerEntry, error)
	ListByItem(itemID string, limit, offset int) ([]*entity.LedgerEntry, error)
}
