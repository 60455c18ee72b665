package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/inventario-core/internal/domain/entity"
	"github.com/tu-usuario/inventario-core/internal/domain/repository"
)

var _ repository.LedgerEntryRepository = (*LedgerEntryRepo)(nil)

const ledgerEntryColumns = `id, item_id, kind, quantity_delta, remaining, unit_cost, fifo_ref,
		transaction_ref, note, anomaly, perishable, shelf_life_days, expires_at, created_at`

// LedgerEntryRepo implementación del ledger append-only sobre PostgreSQL
// (usable con pool o tx). El orden FIFO es (created_at, id) ascendente:
// el BIGSERIAL desempata timestamps iguales con un orden total determinista.
type LedgerEntryRepo struct {
	q Querier
}

// NewLedgerEntryRepository construye el adaptador. Pasar pool o tx (Querier).
func NewLedgerEntryRepository(q Querier) *LedgerEntryRepo {
	return &LedgerEntryRepo{q: q}
}

// Create persiste una entrada del ledger y asigna el ID autoincremental.
func (r *LedgerEntryRepo) Create(e *entity.LedgerEntry) error {
	query := `
		INSERT INTO ledger_entries (item_id, kind, quantity_delta, remaining, unit_cost, fifo_ref,
			transaction_ref, note, anomaly, perishable, shelf_life_days, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id`
	transactionRef := (*string)(nil)
	if e.TransactionRef != "" {
		transactionRef = &e.TransactionRef
	}
	err := r.q.QueryRow(context.Background(), query,
		e.ItemID, e.Kind, e.QuantityDelta, e.Remaining, e.UnitCost, e.FifoRef,
		transactionRef, e.Note, e.Anomaly, e.Perishable, e.ShelfLifeDays, e.ExpiresAt, e.CreatedAt,
	).Scan(&e.ID)
	if err != nil {
		return fmt.Errorf("create ledger entry: %w", err)
	}
	return nil
}

// GetByID obtiene una entrada por ID. Devuelve nil, nil si no existe.
func (r *LedgerEntryRepo) GetByID(id int64) (*entity.LedgerEntry, error) {
	query := `SELECT ` + ledgerEntryColumns + ` FROM ledger_entries WHERE id = $1`
	e, err := scanLedgerEntry(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get ledger entry: %w", err)
	}
	return e, nil
}

// ListActiveLots devuelve los lotes vivos del item en orden FIFO.
func (r *LedgerEntryRepo) ListActiveLots(itemID string) ([]*entity.LedgerEntry, error) {
	query := `
		SELECT ` + ledgerEntryColumns + `
		FROM ledger_entries
		WHERE item_id = $1 AND remaining > 0
		ORDER BY created_at ASC, id ASC`
	return r.list(query, itemID)
}

// ListLotsNewestFirst devuelve todos los lotes del item (entradas con delta
// positivo, consumidas o no), el más reciente primero. Orden del relleno por
// recuento.
func (r *LedgerEntryRepo) ListLotsNewestFirst(itemID string) ([]*entity.LedgerEntry, error) {
	query := `
		SELECT ` + ledgerEntryColumns + `
		FROM ledger_entries
		WHERE item_id = $1 AND quantity_delta > 0 AND kind <> $2
		ORDER BY created_at DESC, id DESC`
	return r.list(query, itemID, entity.EventCostCorrection)
}

// ListDeductionsByTransaction devuelve las deducciones de una transacción de
// negocio, la más reciente primero (orden en que se reversa un crédito).
func (r *LedgerEntryRepo) ListDeductionsByTransaction(itemID, transactionRef string) ([]*entity.LedgerEntry, error) {
	query := `
		SELECT ` + ledgerEntryColumns + `
		FROM ledger_entries
		WHERE item_id = $1 AND transaction_ref = $2 AND quantity_delta < 0
		ORDER BY created_at DESC, id DESC`
	return r.list(query, itemID, transactionRef)
}

// ListCreditsByTransaction devuelve los créditos ya aplicados a una
// transacción con lote de destino (las reversas sobrantes sin lote no cuentan).
func (r *LedgerEntryRepo) ListCreditsByTransaction(itemID, transactionRef string) ([]*entity.LedgerEntry, error) {
	query := `
		SELECT ` + ledgerEntryColumns + `
		FROM ledger_entries
		WHERE item_id = $1 AND transaction_ref = $2 AND kind = $3
		  AND quantity_delta > 0 AND fifo_ref IS NOT NULL
		ORDER BY created_at ASC, id ASC`
	return r.list(query, itemID, transactionRef, entity.EventCredit)
}

// SetRemaining fija el saldo de un lote (único campo mutable junto al costo).
func (r *LedgerEntryRepo) SetRemaining(id int64, remaining decimal.Decimal) error {
	query := `UPDATE ledger_entries SET remaining = $2 WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query, id, remaining)
	if err != nil {
		return fmt.Errorf("set remaining: %w", err)
	}
	return nil
}

// SetUnitCost fija el costo unitario de un lote (corrección de costo).
func (r *LedgerEntryRepo) SetUnitCost(id int64, unitCost decimal.Decimal) error {
	query := `UPDATE ledger_entries SET unit_cost = $2 WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query, id, unitCost)
	if err != nil {
		return fmt.Errorf("set unit cost: %w", err)
	}
	return nil
}

// SumRemaining suma los saldos vivos del item (conciliación contra la cache).
func (r *LedgerEntryRepo) SumRemaining(itemID string) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(remaining), 0)
		FROM ledger_entries
		WHERE item_id = $1 AND remaining > 0`
	var total decimal.Decimal
	if err := r.q.QueryRow(context.Background(), query, itemID).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("sum remaining: %w", err)
	}
	return total, nil
}

// ListExpiringLots devuelve lotes vivos con vencimiento anterior a before.
// itemID vacío consulta todos los items.
func (r *LedgerEntryRepo) ListExpiringLots(itemID string, before time.Time) ([]*entity.LedgerEntry, error) {
	query := `
		SELECT ` + ledgerEntryColumns + `
		FROM ledger_entries
		WHERE remaining > 0 AND expires_at IS NOT NULL AND expires_at <= $1`
	args := []any{before}
	if itemID != "" {
		query += ` AND item_id = $2`
		args = append(args, itemID)
	}
	query += ` ORDER BY expires_at ASC, id ASC`
	return r.list(query, args...)
}

// ListByItem lista el historial de un item, lo más reciente primero.
func (r *LedgerEntryRepo) ListByItem(itemID string, limit, offset int) ([]*entity.LedgerEntry, error) {
	query := `
		SELECT ` + ledgerEntryColumns + `
		FROM ledger_entries
		WHERE item_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`
	return r.list(query, itemID, limit, offset)
}

func (r *LedgerEntryRepo) list(query string, args ...any) ([]*entity.LedgerEntry, error) {
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list ledger entries: %w", err)
	}
	defer rows.Close()
	var list []*entity.LedgerEntry
	for rows.Next() {
		e, err := scanLedgerEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

func scanLedgerEntry(row pgx.Row) (*entity.LedgerEntry, error) {
	var e entity.LedgerEntry
	var transactionRef, note *string
	err := row.Scan(
		&e.ID, &e.ItemID, &e.Kind, &e.QuantityDelta, &e.Remaining, &e.UnitCost, &e.FifoRef,
		&transactionRef, &note, &e.Anomaly, &e.Perishable, &e.ShelfLifeDays, &e.ExpiresAt, &e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if transactionRef != nil {
		e.TransactionRef = *transactionRef
	}
	if note != nil {
		e.Note = *note
	}
	return &e, nil
}
