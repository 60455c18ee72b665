package memory

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/inventario-core/internal/domain"
	"github.com/tu-usuario/inventario-core/internal/domain/entity"
)

// EntryRepo repositorio del ledger sobre el Store. El orden FIFO es
// (CreatedAt, ID) ascendente, igual que el índice compuesto en PostgreSQL.
type EntryRepo struct{ s *Store }

// NewEntryRepo construye el repositorio del ledger.
func NewEntryRepo(s *Store) *EntryRepo { return &EntryRepo{s: s} }

func (r *EntryRepo) Create(e *entity.LedgerEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *e
	cp.ID = r.s.nextID
	r.s.nextID++
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	r.s.entries = append(r.s.entries, &cp)
	e.ID = cp.ID
	return nil
}

func (r *EntryRepo) GetByID(id int64) (*entity.LedgerEntry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, e := range r.s.entries {
		if e.ID == id {
			cp := *e
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *EntryRepo) ListActiveLots(itemID string) ([]*entity.LedgerEntry, error) {
	list := r.filter(func(e *entity.LedgerEntry) bool {
		return e.ItemID == itemID && e.Remaining.GreaterThan(decimal.Zero)
	})
	sortFIFO(list, true)
	return list, nil
}

func (r *EntryRepo) ListLotsNewestFirst(itemID string) ([]*entity.LedgerEntry, error) {
	list := r.filter(func(e *entity.LedgerEntry) bool {
		return e.ItemID == itemID && e.IsLot()
	})
	sortFIFO(list, false)
	return list, nil
}

func (r *EntryRepo) ListDeductionsByTransaction(itemID, transactionRef string) ([]*entity.LedgerEntry, error) {
	list := r.filter(func(e *entity.LedgerEntry) bool {
		return e.ItemID == itemID && e.TransactionRef == transactionRef &&
			e.QuantityDelta.IsNegative()
	})
	sortFIFO(list, false)
	return list, nil
}

func (r *EntryRepo) ListCreditsByTransaction(itemID, transactionRef string) ([]*entity.LedgerEntry, error) {
	list := r.filter(func(e *entity.LedgerEntry) bool {
		return e.ItemID == itemID && e.TransactionRef == transactionRef &&
			e.Kind == entity.EventCredit && e.QuantityDelta.GreaterThan(decimal.Zero) &&
			e.FifoRef != nil
	})
	sortFIFO(list, true)
	return list, nil
}

func (r *EntryRepo) SetRemaining(id int64, remaining decimal.Decimal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, e := range r.s.entries {
		if e.ID == id {
			e.Remaining = remaining
			return nil
		}
	}
	return domain.ErrLotNotFound
}

func (r *EntryRepo) SetUnitCost(id int64, unitCost decimal.Decimal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, e := range r.s.entries {
		if e.ID == id {
			e.UnitCost = unitCost
			return nil
		}
	}
	return domain.ErrLotNotFound
}

func (r *EntryRepo) SumRemaining(itemID string) (decimal.Decimal, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	total := decimal.Zero
	for _, e := range r.s.entries {
		if e.ItemID == itemID {
			total = total.Add(e.Remaining)
		}
	}
	return total, nil
}

func (r *EntryRepo) ListExpiringLots(itemID string, before time.Time) ([]*entity.LedgerEntry, error) {
	list := r.filter(func(e *entity.LedgerEntry) bool {
		if itemID != "" && e.ItemID != itemID {
			return false
		}
		return e.Remaining.GreaterThan(decimal.Zero) &&
			e.ExpiresAt != nil && !e.ExpiresAt.After(before)
	})
	sort.Slice(list, func(i, j int) bool {
		if !list[i].ExpiresAt.Equal(*list[j].ExpiresAt) {
			return list[i].ExpiresAt.Before(*list[j].ExpiresAt)
		}
		return list[i].ID < list[j].ID
	})
	return list, nil
}

func (r *EntryRepo) ListByItem(itemID string, limit, offset int) ([]*entity.LedgerEntry, error) {
	list := r.filter(func(e *entity.LedgerEntry) bool { return e.ItemID == itemID })
	sortFIFO(list, false)
	if offset >= len(list) {
		return nil, nil
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list, nil
}

// filter devuelve copias: los callers no deben mutar el store directamente.
func (r *EntryRepo) filter(keep func(*entity.LedgerEntry) bool) []*entity.LedgerEntry {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var list []*entity.LedgerEntry
	for _, e := range r.s.entries {
		if keep(e) {
			cp := *e
			list = append(list, &cp)
		}
	}
	return list
}

func sortFIFO(list []*entity.LedgerEntry, asc bool) {
	sort.Slice(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if !asc {
			a, b = b, a
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}
