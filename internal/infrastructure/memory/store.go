// Package memory implementa los repositorios del core sobre estructuras en
// memoria, con la misma semántica transaccional que el adaptador PostgreSQL
// (snapshot + rollback). Respalda los tests de los casos de uso y sirve como
// store de referencia para procesos únicos.
package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/inventario-core/internal/domain"
	"github.com/tu-usuario/inventario-core/internal/domain/entity"
)

// Store contiene el estado compartido por los repositorios en memoria.
type Store struct {
	mu         sync.RWMutex
	txMu       sync.Mutex // serializa transacciones (equivalente al FOR UPDATE)
	items      map[string]*entity.TrackedItem
	categories map[string]*entity.Category
	entries    []*entity.LedgerEntry
	nextID     int64
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{
		items:      make(map[string]*entity.TrackedItem),
		categories: make(map[string]*entity.Category),
		nextID:     1,
	}
}

// snapshot clona el estado completo para poder revertir una transacción fallida.
type snapshot struct {
	items   map[string]*entity.TrackedItem
	entries []*entity.LedgerEntry
	nextID  int64
}

func (s *Store) takeSnapshot() snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := snapshot{
		items:   make(map[string]*entity.TrackedItem, len(s.items)),
		entries: make([]*entity.LedgerEntry, len(s.entries)),
		nextID:  s.nextID,
	}
	for id, item := range s.items {
		cp := *item
		snap.items[id] = &cp
	}
	for i, e := range s.entries {
		cp := *e
		snap.entries[i] = &cp
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = snap.items
	s.entries = snap.entries
	s.nextID = snap.nextID
}

// AddLot inserta un lote directamente con timestamp arbitrario (solo tests:
// permite armar historiales con fechas pasadas). Devuelve el ID asignado.
func (s *Store) AddLot(itemID string, size, unitCost decimal.Decimal, createdAt time.Time) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := &entity.LedgerEntry{
		ID:            s.nextID,
		ItemID:        itemID,
		Kind:          entity.EventRestock,
		QuantityDelta: size,
		Remaining:     size,
		UnitCost:      unitCost,
		CreatedAt:     createdAt,
	}
	s.nextID++
	s.entries = append(s.entries, e)
	if item, ok := s.items[itemID]; ok {
		item.CurrentQuantity = item.CurrentQuantity.Add(size)
	}
	return e.ID
}

// ---- TrackedItemRepository ----

// ItemRepo repositorio de items sobre el Store.
type ItemRepo struct{ s *Store }

// NewItemRepo construye el repositorio de items.
func NewItemRepo(s *Store) *ItemRepo { return &ItemRepo{s: s} }

func (r *ItemRepo) Create(item *entity.TrackedItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.items[item.ID]; ok {
		return domain.ErrDuplicate
	}
	cp := *item
	r.s.items[item.ID] = &cp
	return nil
}

func (r *ItemRepo) GetByID(id string) (*entity.TrackedItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	item, ok := r.s.items[id]
	if !ok {
		return nil, nil
	}
	cp := *item
	return &cp, nil
}

// GetForUpdate en memoria equivale a GetByID: la serialización la da el txMu
// del TxRunner.
func (r *ItemRepo) GetForUpdate(id string) (*entity.TrackedItem, error) {
	return r.GetByID(id)
}

func (r *ItemRepo) Save(item *entity.TrackedItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.items[item.ID]
	if !ok {
		return domain.ErrNotFound
	}
	cp := *item
	cp.CurrentQuantity = stored.CurrentQuantity // la cache solo muta vía AdjustQuantity
	r.s.items[item.ID] = &cp
	return nil
}

func (r *ItemRepo) AdjustQuantity(id string, delta decimal.Decimal, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	item, ok := r.s.items[id]
	if !ok {
		return domain.ErrNotFound
	}
	item.CurrentQuantity = item.CurrentQuantity.Add(delta)
	item.UpdatedAt = at
	return nil
}

func (r *ItemRepo) Archive(id string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	item, ok := r.s.items[id]
	if !ok {
		return domain.ErrNotFound
	}
	item.ArchivedAt = &at
	item.UpdatedAt = at
	return nil
}

func (r *ItemRepo) ListBelowThreshold() ([]*entity.TrackedItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var list []*entity.TrackedItem
	for _, item := range r.s.items {
		if item.ArchivedAt == nil && item.BelowThreshold() {
			cp := *item
			list = append(list, &cp)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list, nil
}

// ---- CategoryRepository ----

// CategoryRepo repositorio de categorías sobre el Store.
type CategoryRepo struct{ s *Store }

// NewCategoryRepo construye el repositorio de categorías.
func NewCategoryRepo(s *Store) *CategoryRepo { return &CategoryRepo{s: s} }

func (r *CategoryRepo) Create(category *entity.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.categories[category.ID]; ok {
		return domain.ErrDuplicate
	}
	cp := *category
	r.s.categories[category.ID] = &cp
	return nil
}

func (r *CategoryRepo) GetByID(id string) (*entity.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	category, ok := r.s.categories[id]
	if !ok {
		return nil, nil
	}
	cp := *category
	return &cp, nil
}

func (r *CategoryRepo) List() ([]*entity.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	list := make([]*entity.Category, 0, len(r.s.categories))
	for _, c := range r.s.categories {
		cp := *c
		list = append(list, &cp)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list, nil
}
