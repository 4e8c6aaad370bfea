package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-inventario-api/internal/domain/entity"
)

// AmountPoint monto fechado (una venta o una devolución). El caso de uso los
// agrupa en buckets de hora/día/mes en su propia zona horaria.
type AmountPoint struct {
	At     time.Time
	Amount decimal.Decimal
}

// CategoryCount cantidad de productos activos por categoría.
type CategoryCount struct {
	Category string
	Count    int
}

// RecentSaleResult fila del widget de ventas recientes.
type RecentSaleResult struct {
	ID          string
	SaleNumber  string
	FinalAmount decimal.Decimal
	ItemsCount  int
	CreatedAt   time.Time
}

// TopProductResult producto más vendido en una ventana de tiempo.
type TopProductResult struct {
	ID           string
	Name         string
	SKU          string
	TotalSold    int
	TotalRevenue decimal.Decimal
}

// CategoryReportResult fila del reporte de categorías.
type CategoryReportResult struct {
	Name         string
	Description  string
	ProductCount int
	TotalStock   int
	AvgPrice     decimal.Decimal
}

// AnalyticsRepository consultas de solo lectura sobre el ledger.
// Las implementaciones nunca modifican datos.
type AnalyticsRepository interface {
	CountActiveProducts(ctx context.Context) (int, error)
	// CountLowStock cuenta productos activos con stock <= mínimo.
	CountLowStock(ctx context.Context) (int, error)
	// SalesTotals suma final_amount y cuenta ventas con created_at en [from, to).
	SalesTotals(ctx context.Context, from, to time.Time) (total decimal.Decimal, count int, err error)
	// RefundTotals suma total_amount de devoluciones 'refunded' con processed_at en [from, to).
	RefundTotals(ctx context.Context, from, to time.Time) (decimal.Decimal, error)
	SalesPoints(ctx context.Context, from, to time.Time) ([]AmountPoint, error)
	ReturnPoints(ctx context.Context, from, to time.Time) ([]AmountPoint, error)
	// CategoryCounts productos activos por categoría, mayor cantidad primero.
	CategoryCounts(ctx context.Context) ([]CategoryCount, error)
	// LowStockProducts productos activos con stock <= mínimo, ordenados por stock.
	LowStockProducts(ctx context.Context, limit int) ([]*entity.Product, error)
	RecentSales(ctx context.Context, limit int) ([]RecentSaleResult, error)
	TopSellingProducts(ctx context.Context, since time.Time, limit int) ([]TopProductResult, error)

	// ── Datasets de reportes ─────────────────────────────────────────────────
	SalesForReport(ctx context.Context, start, end *time.Time) ([]*entity.Sale, error)
	// InventoryForReport productos activos ordenados por categoría y nombre.
	InventoryForReport(ctx context.Context) ([]*entity.Product, error)
	CategoriesForReport(ctx context.Context) ([]CategoryReportResult, error)
	// BelowMinimumForReport productos activos con stock estrictamente menor al mínimo.
	BelowMinimumForReport(ctx context.Context) ([]*entity.Product, error)
}
