package repository

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/inventario-core/internal/domain/entity"
)

// TrackedItemRepository define el puerto de persistencia para items controlados.
// La cantidad cacheada solo se muta vía AdjustQuantity dentro de la misma
// transacción que escribe el ledger.
type TrackedItemRepository interface {
	Create(item *entity.TrackedItem) error
	GetByID(id string) (*entity.TrackedItem, error)
	// GetForUpdate bloquea la fila del item (SELECT FOR UPDATE): serializa
	// los ajustes concurrentes sobre el mismo item.
	GetForUpdate(id string) (*entity.TrackedItem, error)
	Save(item *entity.TrackedItem) error
	// AdjustQuantity suma delta a la cantidad cacheada (no re-suma lotes).
	AdjustQuantity(id string, delta decimal.Decimal, at time.Time) error
	// Archive marca el item como archivado; nunca se borra con historial.
	Archive(id string, at time.Time) error
	ListBelowThreshold() ([]*entity.TrackedItem, error)
}
