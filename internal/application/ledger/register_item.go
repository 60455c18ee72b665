package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/inventario-core/internal/domain"
	"github.com/tu-usuario/inventario-core/internal/domain/entity"
	"github.com/tu-usuario/inventario-core/internal/domain/repository"
	"github.com/tu-usuario/inventario-core/internal/domain/units"
	"github.com/tu-usuario/inventario-core/pkg/config"
)

// RegisterItemUseCase da de alta y archiva items controlados por el ledger.
type RegisterItemUseCase struct {
	itemRepo     repository.TrackedItemRepository
	categoryRepo repository.CategoryRepository
	catalog      *units.Catalog
	defaults     config.LedgerConfig
}

// NewRegisterItemUseCase construye el caso de uso de registro de items.
func NewRegisterItemUseCase(
	itemRepo repository.TrackedItemRepository,
	categoryRepo repository.CategoryRepository,
	catalog *units.Catalog,
	defaults config.LedgerConfig,
) *RegisterItemUseCase {
	return &RegisterItemUseCase{
		itemRepo:     itemRepo,
		categoryRepo: categoryRepo,
		catalog:      catalog,
		defaults:     defaults,
	}
}

// RegisterItemInput entrada para dar de alta un item.
type RegisterItemInput struct {
	Name              string
	CanonicalUnit     string
	Density           *decimal.Decimal // g/ml; nil = heredar de la categoría
	CategoryID        string
	Perishable        bool
	ShelfLifeDays     int
	LowStockThreshold decimal.Decimal
}

// Register crea un TrackedItem en cero. La unidad canónica debe existir en el
// catálogo; la categoría, si se indica, debe existir. Un item perecedero sin
// vida útil propia toma la configurada por defecto.
func (uc *RegisterItemUseCase) Register(ctx context.Context, input RegisterItemInput) (*entity.TrackedItem, error) {
	if input.Name == "" {
		return nil, fmt.Errorf("%w: nombre vacío", domain.ErrInvalidInput)
	}
	if !uc.catalog.Has(input.CanonicalUnit) {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownUnit, input.CanonicalUnit)
	}
	if input.Density != nil && !input.Density.GreaterThan(decimal.Zero) {
		return nil, fmt.Errorf("%w: densidad %s", domain.ErrInvalidQuantity, input.Density)
	}
	if input.ShelfLifeDays < 0 || input.LowStockThreshold.IsNegative() {
		return nil, fmt.Errorf("%w", domain.ErrInvalidInput)
	}
	if input.CategoryID != "" {
		category, err := uc.categoryRepo.GetByID(input.CategoryID)
		if err != nil {
			return nil, err
		}
		if category == nil {
			return nil, fmt.Errorf("%w: categoría %q", domain.ErrNotFound, input.CategoryID)
		}
	}
	shelfLifeDays := input.ShelfLifeDays
	if input.Perishable && shelfLifeDays == 0 {
		shelfLifeDays = uc.defaults.DefaultShelfLifeDays
	}
	now := time.Now()
	item := &entity.TrackedItem{
		ID:                uuid.New().String(),
		Name:              input.Name,
		CanonicalUnit:     input.CanonicalUnit,
		CurrentQuantity:   decimal.Zero,
		Density:           input.Density,
		CategoryID:        input.CategoryID,
		Perishable:        input.Perishable,
		ShelfLifeDays:     shelfLifeDays,
		LowStockThreshold: input.LowStockThreshold,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := uc.itemRepo.Create(item); err != nil {
		return nil, err
	}
	return item, nil
}

// Archive marca el item como archivado (soft): conserva su historial en el
// ledger y deja de aceptar ajustes.
func (uc *RegisterItemUseCase) Archive(ctx context.Context, itemID string) error {
	item, err := uc.itemRepo.GetByID(itemID)
	if err != nil {
		return err
	}
	if item == nil {
		return domain.ErrNotFound
	}
	if item.IsArchived() {
		return nil
	}
	return uc.itemRepo.Archive(itemID, time.Now())
}
