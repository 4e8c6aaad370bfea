package memory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-inventario-api/internal/domain/entity"
	"github.com/jhoicas/pos-inventario-api/internal/domain/repository"
)

var _ repository.AnalyticsRepository = (*AnalyticsRepo)(nil)

// AnalyticsRepo consultas de lectura sobre el estado confirmado.
type AnalyticsRepo struct {
	s *Store
}

func (r *AnalyticsRepo) read(fn func(st *state)) {
	_ = r.s.with(nil, func(st *state) error {
		fn(st)
		return nil
	})
}

func (r *AnalyticsRepo) activeProducts(st *state, keep func(p *entity.Product) bool) []*entity.Product {
	var out []*entity.Product
	for _, p := range st.products {
		if !p.IsActive {
			continue
		}
		pp := p
		pp.CategoryName = st.categories[p.CategoryID].Name
		if keep == nil || keep(&pp) {
			out = append(out, &pp)
		}
	}
	return out
}

func between(t, from, to time.Time) bool {
	return !t.Before(from) && t.Before(to)
}

func (r *AnalyticsRepo) CountActiveProducts(_ context.Context) (int, error) {
	var n int
	r.read(func(st *state) { n = len(r.activeProducts(st, nil)) })
	return n, nil
}

func (r *AnalyticsRepo) CountLowStock(_ context.Context) (int, error) {
	var n int
	r.read(func(st *state) {
		n = len(r.activeProducts(st, func(p *entity.Product) bool { return p.StockQuantity <= p.MinStockLevel }))
	})
	return n, nil
}

func (r *AnalyticsRepo) SalesTotals(_ context.Context, from, to time.Time) (decimal.Decimal, int, error) {
	total, count := decimal.Zero, 0
	r.read(func(st *state) {
		for _, s := range st.sales {
			if between(s.CreatedAt, from, to) {
				total = total.Add(s.FinalAmount)
				count++
			}
		}
	})
	return total, count, nil
}

func (r *AnalyticsRepo) RefundTotals(_ context.Context, from, to time.Time) (decimal.Decimal, error) {
	total := decimal.Zero
	r.read(func(st *state) {
		for _, ret := range st.returns {
			if ret.Status == entity.ReturnStatusRefunded && ret.ProcessedAt != nil && between(*ret.ProcessedAt, from, to) {
				total = total.Add(ret.TotalAmount)
			}
		}
	})
	return total, nil
}

func (r *AnalyticsRepo) SalesPoints(_ context.Context, from, to time.Time) ([]repository.AmountPoint, error) {
	var out []repository.AmountPoint
	r.read(func(st *state) {
		for _, s := range st.sales {
			if between(s.CreatedAt, from, to) {
				out = append(out, repository.AmountPoint{At: s.CreatedAt, Amount: s.FinalAmount})
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].At.Before(out[j].At) })
	return out, nil
}

// ReturnPoints devoluciones por fecha de creación, cualquier estado.
func (r *AnalyticsRepo) ReturnPoints(_ context.Context, from, to time.Time) ([]repository.AmountPoint, error) {
	var out []repository.AmountPoint
	r.read(func(st *state) {
		for _, ret := range st.returns {
			if between(ret.CreatedAt, from, to) {
				out = append(out, repository.AmountPoint{At: ret.CreatedAt, Amount: ret.TotalAmount})
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].At.Before(out[j].At) })
	return out, nil
}

func (r *AnalyticsRepo) CategoryCounts(_ context.Context) ([]repository.CategoryCount, error) {
	counts := map[string]int{}
	r.read(func(st *state) {
		for _, p := range r.activeProducts(st, nil) {
			name := p.CategoryName
			if name == "" {
				name = "Uncategorized"
			}
			counts[name]++
		}
	})
	out := make([]repository.CategoryCount, 0, len(counts))
	for k, v := range counts {
		out = append(out, repository.CategoryCount{Category: k, Count: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Category < out[j].Category
	})
	return out, nil
}

func (r *AnalyticsRepo) LowStockProducts(_ context.Context, limit int) ([]*entity.Product, error) {
	var out []*entity.Product
	r.read(func(st *state) {
		out = r.activeProducts(st, func(p *entity.Product) bool { return p.StockQuantity <= p.MinStockLevel })
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].StockQuantity != out[j].StockQuantity {
			return out[i].StockQuantity < out[j].StockQuantity
		}
		return out[i].Name < out[j].Name
	})
	return page(out, limit, 0), nil
}

func (r *AnalyticsRepo) RecentSales(_ context.Context, limit int) ([]repository.RecentSaleResult, error) {
	var out []repository.RecentSaleResult
	r.read(func(st *state) {
		for _, s := range st.sales {
			out = append(out, repository.RecentSaleResult{
				ID: s.ID, SaleNumber: s.SaleNumber, FinalAmount: s.FinalAmount,
				ItemsCount: len(s.Items), CreatedAt: s.CreatedAt,
			})
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return page(out, limit, 0), nil
}

func (r *AnalyticsRepo) TopSellingProducts(_ context.Context, since time.Time, limit int) ([]repository.TopProductResult, error) {
	byID := map[string]*repository.TopProductResult{}
	r.read(func(st *state) {
		for _, s := range st.sales {
			if s.CreatedAt.Before(since) {
				continue
			}
			for _, it := range s.Items {
				p, ok := st.products[it.ProductID]
				if !ok || !p.IsActive {
					continue
				}
				row, ok := byID[p.ID]
				if !ok {
					row = &repository.TopProductResult{ID: p.ID, Name: p.Name, SKU: p.SKU, TotalRevenue: decimal.Zero}
					byID[p.ID] = row
				}
				row.TotalSold += it.Quantity
				row.TotalRevenue = row.TotalRevenue.Add(it.TotalPrice)
			}
		}
	})
	out := make([]repository.TopProductResult, 0, len(byID))
	for _, v := range byID {
		out = append(out, *v)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalSold != out[j].TotalSold {
			return out[i].TotalSold > out[j].TotalSold
		}
		return out[i].Name < out[j].Name
	})
	return page(out, limit, 0), nil
}

func (r *AnalyticsRepo) SalesForReport(_ context.Context, start, end *time.Time) ([]*entity.Sale, error) {
	var out []*entity.Sale
	r.read(func(st *state) {
		for _, s := range st.sales {
			if inRange(s.CreatedAt, start, end) {
				out = append(out, (&SaleRepo{s: r.s}).withNames(st, s))
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func sortByCategoryAndName(list []*entity.Product) {
	sort.Slice(list, func(i, j int) bool {
		if list[i].CategoryName != list[j].CategoryName {
			return list[i].CategoryName < list[j].CategoryName
		}
		return list[i].Name < list[j].Name
	})
}

func (r *AnalyticsRepo) InventoryForReport(_ context.Context) ([]*entity.Product, error) {
	var out []*entity.Product
	r.read(func(st *state) { out = r.activeProducts(st, nil) })
	sortByCategoryAndName(out)
	return out, nil
}

func (r *AnalyticsRepo) CategoriesForReport(_ context.Context) ([]repository.CategoryReportResult, error) {
	var out []repository.CategoryReportResult
	r.read(func(st *state) {
		for _, c := range st.categories {
			row := repository.CategoryReportResult{Name: c.Name, Description: c.Description, AvgPrice: decimal.Zero}
			sum := decimal.Zero
			for _, p := range st.products {
				if p.IsActive && p.CategoryID == c.ID {
					row.ProductCount++
					row.TotalStock += p.StockQuantity
					sum = sum.Add(p.Price)
				}
			}
			if row.ProductCount > 0 {
				row.AvgPrice = sum.Div(decimal.NewFromInt(int64(row.ProductCount))).Round(2)
			}
			out = append(out, row)
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *AnalyticsRepo) BelowMinimumForReport(_ context.Context) ([]*entity.Product, error) {
	var out []*entity.Product
	r.read(func(st *state) {
		out = r.activeProducts(st, func(p *entity.Product) bool { return p.StockQuantity < p.MinStockLevel })
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].StockQuantity != out[j].StockQuantity {
			return out[i].StockQuantity < out[j].StockQuantity
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}
