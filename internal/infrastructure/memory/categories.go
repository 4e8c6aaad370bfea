package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/pos-inventario-api/internal/domain"
	"github.com/jhoicas/pos-inventario-api/internal/domain/entity"
	"github.com/jhoicas/pos-inventario-api/internal/domain/repository"
)

var _ repository.CategoryRepository = (*CategoryRepo)(nil)

// CategoryRepo implementación en memoria de CategoryRepository.
type CategoryRepo struct {
	s  *Store
	tx *state
}

func countProducts(st *state, categoryID string) int {
	n := 0
	for _, p := range st.products {
		if p.CategoryID == categoryID {
			n++
		}
	}
	return n
}

func (r *CategoryRepo) Create(_ context.Context, c *entity.Category) error {
	return r.s.with(r.tx, func(st *state) error {
		for _, other := range st.categories {
			if other.Name == c.Name {
				return domain.Duplicate("category", "name", c.Name)
			}
		}
		st.categories[c.ID] = *c
		return nil
	})
}

func (r *CategoryRepo) GetByID(_ context.Context, id string) (*entity.Category, error) {
	var out *entity.Category
	err := r.s.with(r.tx, func(st *state) error {
		if c, ok := st.categories[id]; ok {
			c.ProductCount = countProducts(st, id)
			out = &c
		}
		return nil
	})
	return out, err
}

func (r *CategoryRepo) GetByName(_ context.Context, name string) (*entity.Category, error) {
	var out *entity.Category
	err := r.s.with(r.tx, func(st *state) error {
		for _, c := range st.categories {
			if c.Name == name {
				c.ProductCount = countProducts(st, c.ID)
				out = &c
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *CategoryRepo) Update(_ context.Context, c *entity.Category) error {
	return r.s.with(r.tx, func(st *state) error {
		for _, other := range st.categories {
			if other.ID != c.ID && other.Name == c.Name {
				return domain.Duplicate("category", "name", c.Name)
			}
		}
		if _, ok := st.categories[c.ID]; ok {
			st.categories[c.ID] = *c
		}
		return nil
	})
}

func (r *CategoryRepo) List(_ context.Context) ([]*entity.Category, error) {
	var out []*entity.Category
	err := r.s.with(r.tx, func(st *state) error {
		for _, c := range st.categories {
			c.ProductCount = countProducts(st, c.ID)
			cc := c
			out = append(out, &cc)
		}
		sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
		return nil
	})
	return out, err
}

func (r *CategoryRepo) Delete(_ context.Context, id string) error {
	return r.s.with(r.tx, func(st *state) error {
		delete(st.categories, id)
		return nil
	})
}
