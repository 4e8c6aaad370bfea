package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/jhoicas/pos-inventario-api/internal/domain"
	"github.com/jhoicas/pos-inventario-api/internal/domain/entity"
	"github.com/jhoicas/pos-inventario-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación en memoria de ProductRepository.
type ProductRepo struct {
	s  *Store
	tx *state
}

func (r *ProductRepo) withCategory(st *state, p entity.Product) *entity.Product {
	if c, ok := st.categories[p.CategoryID]; ok {
		p.CategoryName = c.Name
	}
	return &p
}

func checkProductUnique(st *state, p *entity.Product) error {
	for _, other := range st.products {
		if other.ID == p.ID {
			continue
		}
		if other.SKU == p.SKU {
			return domain.Duplicate("product", "sku", p.SKU)
		}
		if p.Barcode != nil && other.Barcode != nil && *p.Barcode == *other.Barcode {
			return domain.Duplicate("product", "barcode", *p.Barcode)
		}
	}
	return nil
}

func (r *ProductRepo) Create(_ context.Context, p *entity.Product) error {
	return r.s.with(r.tx, func(st *state) error {
		if err := checkProductUnique(st, p); err != nil {
			return err
		}
		v := *p
		v.CategoryName = ""
		st.products[p.ID] = v
		return nil
	})
}

func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	var out *entity.Product
	err := r.s.with(r.tx, func(st *state) error {
		if p, ok := st.products[id]; ok {
			out = r.withCategory(st, p)
		}
		return nil
	})
	return out, err
}

// GetForUpdate equivale a GetByID: la tx en memoria ya es exclusiva.
func (r *ProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.GetByID(ctx, id)
}

func (r *ProductRepo) find(match func(p entity.Product) bool) (*entity.Product, error) {
	var out *entity.Product
	err := r.s.with(r.tx, func(st *state) error {
		for _, p := range st.products {
			if match(p) {
				out = r.withCategory(st, p)
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *ProductRepo) GetBySKU(_ context.Context, sku string) (*entity.Product, error) {
	return r.find(func(p entity.Product) bool { return p.SKU == sku })
}

func (r *ProductRepo) GetByBarcode(_ context.Context, barcode string) (*entity.Product, error) {
	return r.find(func(p entity.Product) bool { return p.Barcode != nil && *p.Barcode == barcode })
}

func (r *ProductRepo) Update(_ context.Context, p *entity.Product) error {
	return r.s.with(r.tx, func(st *state) error {
		cur, ok := st.products[p.ID]
		if !ok {
			return nil
		}
		if err := checkProductUnique(st, p); err != nil {
			return err
		}
		v := *p
		v.StockQuantity = cur.StockQuantity
		v.CategoryName = ""
		st.products[p.ID] = v
		return nil
	})
}

func (r *ProductRepo) UpdateStock(_ context.Context, productID string, stock int) error {
	return r.s.with(r.tx, func(st *state) error {
		p, ok := st.products[productID]
		if !ok {
			return domain.NotFound("product", productID)
		}
		p.StockQuantity = stock
		p.UpdatedAt = time.Now()
		st.products[productID] = p
		return nil
	})
}

func (r *ProductRepo) List(_ context.Context, f repository.ProductFilter) ([]*entity.Product, int, error) {
	var out []*entity.Product
	var total int
	err := r.s.with(r.tx, func(st *state) error {
		search := strings.ToLower(f.Search)
		var all []*entity.Product
		for _, p := range st.products {
			if f.ActiveOnly && !p.IsActive {
				continue
			}
			if f.CategoryID != "" && p.CategoryID != f.CategoryID {
				continue
			}
			if search != "" {
				hay := strings.ToLower(p.Name + " " + p.SKU)
				if p.Barcode != nil {
					hay += " " + strings.ToLower(*p.Barcode)
				}
				if !strings.Contains(hay, search) {
					continue
				}
			}
			all = append(all, r.withCategory(st, p))
		}
		sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
		total = len(all)
		out = page(all, f.Limit, f.Offset)
		return nil
	})
	return out, total, err
}

func (r *ProductRepo) SoftDelete(_ context.Context, id string) error {
	return r.s.with(r.tx, func(st *state) error {
		p, ok := st.products[id]
		if !ok {
			return nil
		}
		p.IsActive = false
		p.UpdatedAt = time.Now()
		st.products[id] = p
		return nil
	})
}

func (r *ProductRepo) CountByCategory(_ context.Context, categoryID string) (int, error) {
	n := 0
	err := r.s.with(r.tx, func(st *state) error {
		for _, p := range st.products {
			if p.CategoryID == categoryID {
				n++
			}
		}
		return nil
	})
	return n, err
}
