package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// DashboardKPIsDTO respuesta de GET /api/dashboard/kpis.
type DashboardKPIsDTO struct {
	TotalProducts         int             `json:"total_products"`           // productos activos
	TotalSalesToday       decimal.Decimal `json:"total_sales_today"`        // neto de reembolsos, mínimo 0
	TotalSalesCountToday  int             `json:"total_sales_count_today"`
	LowStockCount         int             `json:"low_stock_count"`
	TotalRevenueThisMonth decimal.Decimal `json:"total_revenue_this_month"` // neto de reembolsos
}

// ChartPointDTO un bucket de la serie de ventas.
type ChartPointDTO struct {
	Date  string          `json:"date"`
	Sales decimal.Decimal `json:"sales"`
}

// SalesVsReturnsDTO un bucket de la comparación ventas / devoluciones.
type SalesVsReturnsDTO struct {
	Period  string          `json:"period"`
	Sales   decimal.Decimal `json:"sales"`
	Returns decimal.Decimal `json:"returns"`
}

// CategoryDistributionDTO participación de una categoría sobre los productos activos.
type CategoryDistributionDTO struct {
	Category   string  `json:"category"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// LowStockProductDTO alerta de stock bajo.
type LowStockProductDTO struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	SKU           string `json:"sku"`
	StockQuantity int    `json:"stock_quantity"`
	MinStockLevel int    `json:"min_stock_level"`
	CategoryName  string `json:"category_name"`
}

// RecentSaleDTO fila del widget de ventas recientes.
type RecentSaleDTO struct {
	ID          string          `json:"id"`
	SaleNumber  string          `json:"sale_number"`
	FinalAmount decimal.Decimal `json:"final_amount"`
	ItemsCount  int             `json:"items_count"`
	CreatedAt   time.Time       `json:"created_at"`
}

// TopProductDTO producto más vendido (últimos 30 días).
type TopProductDTO struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	SKU          string          `json:"sku"`
	TotalSold    int             `json:"total_sold"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
}
