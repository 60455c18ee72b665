package ledger

import (
	"context"

	"github.com/tu-usuario/inventario-core/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza que las filas del ledger y la
// cantidad cacheada del item se escriben como una sola unidad atómica.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		itemRepo repository.TrackedItemRepository,
		entryRepo repository.LedgerEntryRepository,
	) error) error
}
