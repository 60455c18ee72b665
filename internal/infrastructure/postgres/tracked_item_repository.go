package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/inventario-core/internal/domain"
	"github.com/tu-usuario/inventario-core/internal/domain/entity"
	"github.com/tu-usuario/inventario-core/internal/domain/repository"
)

var _ repository.TrackedItemRepository = (*TrackedItemRepo)(nil)

const trackedItemColumns = `id, name, canonical_unit, current_quantity, density, category_id,
		perishable, shelf_life_days, low_stock_threshold, archived_at, created_at, updated_at`

// TrackedItemRepo implementación de TrackedItemRepository sobre PostgreSQL
// (usable con pool o tx).
type TrackedItemRepo struct {
	q Querier
}

// NewTrackedItemRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTrackedItemRepository(q Querier) *TrackedItemRepo {
	return &TrackedItemRepo{q: q}
}

// Create persiste un item nuevo.
func (r *TrackedItemRepo) Create(item *entity.TrackedItem) error {
	query := `
		INSERT INTO tracked_items (id, name, canonical_unit, current_quantity, density, category_id,
			perishable, shelf_life_days, low_stock_threshold, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	categoryID := (*string)(nil)
	if item.CategoryID != "" {
		categoryID = &item.CategoryID
	}
	_, err := r.q.Exec(context.Background(), query,
		item.ID, item.Name, item.CanonicalUnit, item.CurrentQuantity, item.Density, categoryID,
		item.Perishable, item.ShelfLifeDays, item.LowStockThreshold, item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create tracked item: %w", err)
	}
	return nil
}

// GetByID obtiene un item por ID. Devuelve nil, nil si no existe.
func (r *TrackedItemRepo) GetByID(id string) (*entity.TrackedItem, error) {
	query := `SELECT ` + trackedItemColumns + ` FROM tracked_items WHERE id = $1`
	return r.scanOne(r.q.QueryRow(context.Background(), query, id))
}

// GetForUpdate obtiene el item y bloquea la fila (SELECT FOR UPDATE):
// serializa los ajustes concurrentes al mismo item.
func (r *TrackedItemRepo) GetForUpdate(id string) (*entity.TrackedItem, error) {
	query := `SELECT ` + trackedItemColumns + ` FROM tracked_items WHERE id = $1 FOR UPDATE`
	return r.scanOne(r.q.QueryRow(context.Background(), query, id))
}

// Save actualiza los atributos editables del item (no la cantidad cacheada).
func (r *TrackedItemRepo) Save(item *entity.TrackedItem) error {
	query := `
		UPDATE tracked_items
		SET name = $2, canonical_unit = $3, density = $4, category_id = $5, perishable = $6,
			shelf_life_days = $7, low_stock_threshold = $8, updated_at = $9
		WHERE id = $1`
	categoryID := (*string)(nil)
	if item.CategoryID != "" {
		categoryID = &item.CategoryID
	}
	_, err := r.q.Exec(context.Background(), query,
		item.ID, item.Name, item.CanonicalUnit, item.Density, categoryID, item.Perishable,
		item.ShelfLifeDays, item.LowStockThreshold, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("save tracked item: %w", err)
	}
	return nil
}

// AdjustQuantity suma delta a la cantidad cacheada (no re-suma los lotes).
func (r *TrackedItemRepo) AdjustQuantity(id string, delta decimal.Decimal, at time.Time) error {
	query := `
		UPDATE tracked_items
		SET current_quantity = current_quantity + $2, updated_at = $3
		WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query, id, delta, at)
	if err != nil {
		return fmt.Errorf("adjust quantity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Archive marca el item como archivado (soft delete).
func (r *TrackedItemRepo) Archive(id string, at time.Time) error {
	query := `UPDATE tracked_items SET archived_at = $2, updated_at = $2 WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query, id, at)
	if err != nil {
		return fmt.Errorf("archive tracked item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListBelowThreshold lista items activos con cantidad bajo su umbral mínimo.
func (r *TrackedItemRepo) ListBelowThreshold() ([]*entity.TrackedItem, error) {
	query := `
		SELECT ` + trackedItemColumns + `
		FROM tracked_items
		WHERE archived_at IS NULL
		  AND low_stock_threshold > 0
		  AND current_quantity < low_stock_threshold
		ORDER BY name`
	rows, err := r.q.Query(context.Background(), query)
	if err != nil {
		return nil, fmt.Errorf("list below threshold: %w", err)
	}
	defer rows.Close()
	var list []*entity.TrackedItem
	for rows.Next() {
		item, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, item)
	}
	return list, rows.Err()
}

func (r *TrackedItemRepo) scanOne(row pgx.Row) (*entity.TrackedItem, error) {
	item, err := scanTrackedItem(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get tracked item: %w", err)
	}
	return item, nil
}

func (r *TrackedItemRepo) scanRow(rows pgx.Rows) (*entity.TrackedItem, error) {
	item, err := scanTrackedItem(rows)
	if err != nil {
		return nil, fmt.Errorf("scan tracked item: %w", err)
	}
	return item, nil
}

func scanTrackedItem(row pgx.Row) (*entity.TrackedItem, error) {
	var item entity.TrackedItem
	var categoryID *string
	err := row.Scan(
		&item.ID, &item.Name, &item.CanonicalUnit, &item.CurrentQuantity, &item.Density, &categoryID,
		&item.Perishable, &item.ShelfLifeDays, &item.LowStockThreshold, &item.ArchivedAt,
		&item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if categoryID != nil {
		item.CategoryID = *categoryID
	}
	return &item, nil
}
