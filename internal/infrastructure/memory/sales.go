package memory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-inventario-api/internal/domain"
	"github.com/jhoicas/pos-inventario-api/internal/domain/entity"
	"github.com/jhoicas/pos-inventario-api/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

// SaleRepo implementación en memoria de SaleRepository.
type SaleRepo struct {
	s  *Store
	tx *state
}

func inRange(t time.Time, start, end *time.Time) bool {
	if start != nil && t.Before(*start) {
		return false
	}
	if end != nil && t.After(*end) {
		return false
	}
	return true
}

func (r *SaleRepo) withNames(st *state, s entity.Sale) *entity.Sale {
	items := make([]entity.SalesItem, len(s.Items))
	for i, it := range s.Items {
		it.ProductName = st.products[it.ProductID].Name
		items[i] = it
	}
	s.Items = items
	return &s
}

func (r *SaleRepo) Create(_ context.Context, s *entity.Sale) error {
	return r.s.with(r.tx, func(st *state) error {
		for _, other := range st.sales {
			if other.SaleNumber == s.SaleNumber {
				return domain.Duplicate("sale", "sale_number", s.SaleNumber)
			}
		}
		v := *s
		v.Items = nil
		st.sales[s.ID] = v
		return nil
	})
}

func (r *SaleRepo) CreateItem(_ context.Context, item *entity.SalesItem) error {
	return r.s.with(r.tx, func(st *state) error {
		s, ok := st.sales[item.SaleID]
		if !ok {
			return domain.NotFound("sale", item.SaleID)
		}
		v := *item
		v.ProductName = ""
		s.Items = append(s.Items, v)
		st.sales[s.ID] = s
		return nil
	})
}

func (r *SaleRepo) GetByID(_ context.Context, id string) (*entity.Sale, error) {
	var out *entity.Sale
	err := r.s.with(r.tx, func(st *state) error {
		if s, ok := st.sales[id]; ok {
			out = r.withNames(st, s)
		}
		return nil
	})
	return out, err
}

// GetForUpdate igual que GetByID: el store ya serializa las transacciones.
func (r *SaleRepo) GetForUpdate(ctx context.Context, id string) (*entity.Sale, error) {
	return r.GetByID(ctx, id)
}

func (r *SaleRepo) NumberExists(_ context.Context, saleNumber string) (bool, error) {
	found := false
	err := r.s.with(r.tx, func(st *state) error {
		for _, s := range st.sales {
			if s.SaleNumber == saleNumber {
				found = true
				break
			}
		}
		return nil
	})
	return found, err
}

func (r *SaleRepo) List(_ context.Context, f repository.SaleFilter) ([]*entity.Sale, int, error) {
	var out []*entity.Sale
	var total int
	err := r.s.with(r.tx, func(st *state) error {
		var all []*entity.Sale
		for _, s := range st.sales {
			if inRange(s.CreatedAt, f.Start, f.End) {
				all = append(all, r.withNames(st, s))
			}
		}
		sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
		total = len(all)
		out = page(all, f.Limit, f.Offset)
		return nil
	})
	return out, total, err
}

func (r *SaleRepo) Delete(_ context.Context, id string) error {
	return r.s.with(r.tx, func(st *state) error {
		if _, ok := st.sales[id]; !ok {
			return domain.NotFound("sale", id)
		}
		delete(st.sales, id)
		return nil
	})
}

func (r *SaleRepo) Summary(_ context.Context, from, to time.Time) (int, decimal.Decimal, error) {
	count, total := 0, decimal.Zero
	err := r.s.with(r.tx, func(st *state) error {
		for _, s := range st.sales {
			if !s.CreatedAt.Before(from) && s.CreatedAt.Before(to) {
				count++
				total = total.Add(s.FinalAmount)
			}
		}
		return nil
	})
	return count, total, err
}
