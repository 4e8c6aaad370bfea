package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-inventario-api/internal/domain/entity"
	"github.com/jhoicas/pos-inventario-api/internal/domain/repository"
)

var _ repository.AnalyticsRepository = (*AnalyticsRepo)(nil)

// AnalyticsRepo consultas de solo lectura para el dashboard y los reportes.
type AnalyticsRepo struct {
	q Querier
}

// NewAnalyticsRepository construye el adaptador de analítica.
func NewAnalyticsRepository(q Querier) *AnalyticsRepo {
	return &AnalyticsRepo{q: q}
}

func (r *AnalyticsRepo) count(ctx context.Context, op, query string) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("analytics.%s: %w", op, err)
	}
	return n, nil
}

func (r *AnalyticsRepo) CountActiveProducts(ctx context.Context) (int, error) {
	return r.count(ctx, "CountActiveProducts", `SELECT COUNT(*) FROM products WHERE is_active`)
}

func (r *AnalyticsRepo) CountLowStock(ctx context.Context) (int, error) {
	return r.count(ctx, "CountLowStock",
		`SELECT COUNT(*) FROM products WHERE is_active AND stock_quantity <= min_stock_level`)
}

// SalesTotals usa COALESCE para devolver cero si el período no tiene ventas.
func (r *AnalyticsRepo) SalesTotals(ctx context.Context, from, to time.Time) (decimal.Decimal, int, error) {
	const query = `
	SELECT
	    COALESCE(SUM(final_amount), 0) AS total,
	    COUNT(*)                       AS sales_count
	FROM sales
	WHERE created_at >= $1
	  AND created_at <  $2`
	var total decimal.Decimal
	var n int
	if err := r.q.QueryRow(ctx, query, from, to).Scan(&total, &n); err != nil {
		return decimal.Zero, 0, fmt.Errorf("analytics.SalesTotals: %w", err)
	}
	return total, n, nil
}

// RefundTotals solo cuenta devoluciones reembolsadas, por fecha de procesamiento.
func (r *AnalyticsRepo) RefundTotals(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	const query = `
	SELECT COALESCE(SUM(total_amount), 0)
	FROM returns
	WHERE status = 'refunded'
	  AND processed_at >= $1
	  AND processed_at <  $2`
	var total decimal.Decimal
	if err := r.q.QueryRow(ctx, query, from, to).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("analytics.RefundTotals: %w", err)
	}
	return total, nil
}

func (r *AnalyticsRepo) points(ctx context.Context, op, query string, from, to time.Time) ([]repository.AmountPoint, error) {
	rows, err := r.q.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("analytics.%s: %w", op, err)
	}
	defer rows.Close()
	var out []repository.AmountPoint
	for rows.Next() {
		var p repository.AmountPoint
		if err := rows.Scan(&p.At, &p.Amount); err != nil {
			return nil, fmt.Errorf("analytics.%s scan: %w", op, err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *AnalyticsRepo) SalesPoints(ctx context.Context, from, to time.Time) ([]repository.AmountPoint, error) {
	return r.points(ctx, "SalesPoints", `
	SELECT created_at, final_amount
	FROM sales
	WHERE created_at >= $1 AND created_at < $2
	ORDER BY created_at`, from, to)
}

// ReturnPoints devoluciones por fecha de creación, cualquier estado.
func (r *AnalyticsRepo) ReturnPoints(ctx context.Context, from, to time.Time) ([]repository.AmountPoint, error) {
	return r.points(ctx, "ReturnPoints", `
	SELECT created_at, total_amount
	FROM returns
	WHERE created_at >= $1 AND created_at < $2
	ORDER BY created_at`, from, to)
}

func (r *AnalyticsRepo) CategoryCounts(ctx context.Context) ([]repository.CategoryCount, error) {
	const query = `
	SELECT
	    COALESCE(c.name, 'Uncategorized') AS category,
	    COUNT(p.id)                       AS product_count
	FROM products p
	LEFT JOIN categories c ON c.id = p.category_id
	WHERE p.is_active
	GROUP BY COALESCE(c.name, 'Uncategorized')
	ORDER BY product_count DESC, category`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("analytics.CategoryCounts: %w", err)
	}
	defer rows.Close()
	var out []repository.CategoryCount
	for rows.Next() {
		var c repository.CategoryCount
		if err := rows.Scan(&c.Category, &c.Count); err != nil {
			return nil, fmt.Errorf("analytics.CategoryCounts scan: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *AnalyticsRepo) products(ctx context.Context, op, where, order string, args ...any) ([]*entity.Product, error) {
	rows, err := r.q.Query(ctx, "SELECT"+productColumns+productFrom+" WHERE "+where+" ORDER BY "+order, args...)
	if err != nil {
		return nil, fmt.Errorf("analytics.%s: %w", op, err)
	}
	defer rows.Close()
	list, err := collectProducts(rows)
	if err != nil {
		return nil, fmt.Errorf("analytics.%s: %w", op, err)
	}
	return list, nil
}

func (r *AnalyticsRepo) LowStockProducts(ctx context.Context, limit int) ([]*entity.Product, error) {
	return r.products(ctx, "LowStockProducts",
		"p.is_active AND p.stock_quantity <= p.min_stock_level",
		"p.stock_quantity, p.name LIMIT $1", limit)
}

func (r *AnalyticsRepo) RecentSales(ctx context.Context, limit int) ([]repository.RecentSaleResult, error) {
	const query = `
	SELECT
	    s.id,
	    s.sale_number,
	    s.final_amount,
	    (SELECT COUNT(*) FROM sales_items si WHERE si.sale_id = s.id) AS items_count,
	    s.created_at
	FROM sales s
	ORDER BY s.created_at DESC
	LIMIT $1`
	rows, err := r.q.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("analytics.RecentSales: %w", err)
	}
	defer rows.Close()
	var out []repository.RecentSaleResult
	for rows.Next() {
		var row repository.RecentSaleResult
		if err := rows.Scan(&row.ID, &row.SaleNumber, &row.FinalAmount, &row.ItemsCount, &row.CreatedAt); err != nil {
			return nil, fmt.Errorf("analytics.RecentSales scan: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// TopSellingProducts productos activos con más unidades vendidas desde since.
func (r *AnalyticsRepo) TopSellingProducts(ctx context.Context, since time.Time, limit int) ([]repository.TopProductResult, error) {
	const query = `
	SELECT
	    p.id,
	    p.name,
	    p.sku,
	    SUM(si.quantity)    AS total_sold,
	    SUM(si.total_price) AS total_revenue
	FROM sales_items si
	JOIN sales    s ON s.id = si.sale_id
	JOIN products p ON p.id = si.product_id
	WHERE s.created_at >= $1
	  AND p.is_active
	GROUP BY p.id, p.name, p.sku
	ORDER BY total_sold DESC, p.name
	LIMIT $2`
	rows, err := r.q.Query(ctx, query, since, limit)
	if err != nil {
		return nil, fmt.Errorf("analytics.TopSellingProducts: %w", err)
	}
	defer rows.Close()
	var out []repository.TopProductResult
	for rows.Next() {
		var row repository.TopProductResult
		if err := rows.Scan(&row.ID, &row.Name, &row.SKU, &row.TotalSold, &row.TotalRevenue); err != nil {
			return nil, fmt.Errorf("analytics.TopSellingProducts scan: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// ── Datasets de reportes ─────────────────────────────────────────────────────

func (r *AnalyticsRepo) SalesForReport(ctx context.Context, start, end *time.Time) ([]*entity.Sale, error) {
	where, args := saleRangeWhere(start, end)
	list, err := NewSaleRepository(r.q).querySales(ctx, saleSelect+where+" ORDER BY created_at DESC", args...)
	if err != nil {
		return nil, fmt.Errorf("analytics.SalesForReport: %w", err)
	}
	return list, nil
}

func (r *AnalyticsRepo) InventoryForReport(ctx context.Context) ([]*entity.Product, error) {
	return r.products(ctx, "InventoryForReport", "p.is_active", "COALESCE(c.name, ''), p.name")
}

func (r *AnalyticsRepo) CategoriesForReport(ctx context.Context) ([]repository.CategoryReportResult, error) {
	const query = `
	SELECT
	    c.name,
	    c.description,
	    COUNT(p.id)                          AS product_count,
	    COALESCE(SUM(p.stock_quantity), 0)   AS total_stock,
	    COALESCE(ROUND(AVG(p.price), 2), 0)  AS avg_price
	FROM categories c
	LEFT JOIN products p ON p.category_id = c.id AND p.is_active
	GROUP BY c.id, c.name, c.description
	ORDER BY c.name`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("analytics.CategoriesForReport: %w", err)
	}
	defer rows.Close()
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (repository.CategoryReportResult, error) {
		var c repository.CategoryReportResult
		err := row.Scan(&c.Name, &c.Description, &c.ProductCount, &c.TotalStock, &c.AvgPrice)
		return c, err
	})
}

func (r *AnalyticsRepo) BelowMinimumForReport(ctx context.Context) ([]*entity.Product, error) {
	return r.products(ctx, "BelowMinimumForReport",
		"p.is_active AND p.stock_quantity < p.min_stock_level", "p.stock_quantity, p.name")
}
