package memory

import (
	"context"

	appledger "github.com/tu-usuario/inventario-core/internal/application/ledger"
	"github.com/tu-usuario/inventario-core/internal/domain/repository"
)

var _ appledger.TxRunner = (*TxRunner)(nil)

// TxRunner da semántica transaccional al store en memoria: serializa las
// transacciones, toma un snapshot antes de ejecutar el callback y lo
// restaura si el callback falla (todo o nada, como Commit/Rollback).
type TxRunner struct {
	s *Store
}

// NewTxRunner construye el runner sobre el store.
func NewTxRunner(s *Store) *TxRunner {
	return &TxRunner{s: s}
}

// Run ejecuta fn con repos sobre el store; ante error revierte al snapshot.
func (r *TxRunner) Run(ctx context.Context, fn func(
	itemRepo repository.TrackedItemRepository,
	entryRepo repository.LedgerEntryRepository,
) error) error {
	r.s.txMu.Lock()
	defer r.s.txMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	snap := r.s.takeSnapshot()
	if err := fn(NewItemRepo(r.s), NewEntryRepo(r.s)); err != nil {
		r.s.restore(snap)
		return err
	}
	return nil
}
