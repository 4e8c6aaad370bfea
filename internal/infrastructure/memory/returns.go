package memory

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/pos-inventario-api/internal/domain"
	"github.com/jhoicas/pos-inventario-api/internal/domain/entity"
	"github.com/jhoicas/pos-inventario-api/internal/domain/repository"
)

var _ repository.ReturnRepository = (*ReturnRepo)(nil)

// ReturnRepo implementación en memoria de ReturnRepository.
type ReturnRepo struct {
	s  *Store
	tx *state
}

func (r *ReturnRepo) withNames(st *state, ret entity.Return) *entity.Return {
	items := make([]entity.ReturnItem, len(ret.Items))
	for i, it := range ret.Items {
		it.ProductName = st.products[it.ProductID].Name
		items[i] = it
	}
	ret.Items = items
	return &ret
}

func (r *ReturnRepo) Create(_ context.Context, ret *entity.Return) error {
	return r.s.with(r.tx, func(st *state) error {
		for _, other := range st.returns {
			if other.ReturnNumber == ret.ReturnNumber {
				return domain.Duplicate("return", "return_number", ret.ReturnNumber)
			}
		}
		v := *ret
		v.Items = nil
		st.returns[ret.ID] = v
		return nil
	})
}

func (r *ReturnRepo) CreateItem(_ context.Context, item *entity.ReturnItem) error {
	return r.s.with(r.tx, func(st *state) error {
		ret, ok := st.returns[item.ReturnID]
		if !ok {
			return domain.NotFound("return", item.ReturnID)
		}
		v := *item
		v.ProductName = ""
		ret.Items = append(ret.Items, v)
		st.returns[ret.ID] = ret
		return nil
	})
}

func (r *ReturnRepo) GetByID(_ context.Context, id string) (*entity.Return, error) {
	var out *entity.Return
	err := r.s.with(r.tx, func(st *state) error {
		if ret, ok := st.returns[id]; ok {
			out = r.withNames(st, ret)
		}
		return nil
	})
	return out, err
}

func (r *ReturnRepo) GetForUpdate(ctx context.Context, id string) (*entity.Return, error) {
	return r.GetByID(ctx, id)
}

func (r *ReturnRepo) List(_ context.Context, f repository.ReturnFilter) ([]*entity.Return, int, error) {
	var out []*entity.Return
	var total int
	err := r.s.with(r.tx, func(st *state) error {
		var all []*entity.Return
		for _, ret := range st.returns {
			if f.Status == "" || ret.Status == f.Status {
				all = append(all, r.withNames(st, ret))
			}
		}
		sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
		total = len(all)
		out = page(all, f.Limit, f.Offset)
		return nil
	})
	return out, total, err
}

func (r *ReturnRepo) UpdateStatus(_ context.Context, id, status string, processedAt *time.Time) error {
	return r.s.with(r.tx, func(st *state) error {
		ret, ok := st.returns[id]
		if !ok {
			return domain.NotFound("return", id)
		}
		ret.Status = status
		ret.ProcessedAt = processedAt
		st.returns[id] = ret
		return nil
	})
}

func (r *ReturnRepo) Delete(_ context.Context, id string) error {
	return r.s.with(r.tx, func(st *state) error {
		delete(st.returns, id)
		return nil
	})
}
