package memory

import (
	"context"
	"slices"

	"github.com/jhoicas/pos-inventario-api/internal/domain/entity"
	"github.com/jhoicas/pos-inventario-api/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*MovementRepo)(nil)

// MovementRepo implementación en memoria del ledger (slice append-only). El
// orden del slice es el de inserción y desempata movimientos con el mismo created_at.
type MovementRepo struct {
	s  *Store
	tx *state
}

func (r *MovementRepo) Create(_ context.Context, m *entity.StockMovement) error {
	return r.s.with(r.tx, func(st *state) error {
		st.movements = append(st.movements, *m)
		return nil
	})
}

func (r *MovementRepo) ListByProduct(_ context.Context, productID string, limit, offset int) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	err := r.s.with(r.tx, func(st *state) error {
		var all []*entity.StockMovement
		for _, m := range st.movements {
			if m.ProductID == productID {
				m.ProductName = st.products[m.ProductID].Name
				mm := m
				all = append(all, &mm)
			}
		}
		slices.SortStableFunc(all, func(a, b *entity.StockMovement) int {
			return a.CreatedAt.Compare(b.CreatedAt)
		})
		out = page(all, limit, offset)
		return nil
	})
	return out, err
}

// List devuelve los movimientos más recientes primero.
func (r *MovementRepo) List(_ context.Context, f repository.MovementFilter) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	err := r.s.with(r.tx, func(st *state) error {
		var all []*entity.StockMovement
		for i := len(st.movements) - 1; i >= 0; i-- {
			m := st.movements[i]
			if f.ProductID != "" && m.ProductID != f.ProductID {
				continue
			}
			if f.MovementType != "" && m.MovementType != f.MovementType {
				continue
			}
			m.ProductName = st.products[m.ProductID].Name
			all = append(all, &m)
		}
		slices.SortStableFunc(all, func(a, b *entity.StockMovement) int {
			return b.CreatedAt.Compare(a.CreatedAt)
		})
		out = page(all, f.Limit, f.Offset)
		return nil
	})
	return out, err
}
