package http

import (
	"github.com/gofiber/fiber/v2"

	appanalytics "github.com/jhoicas/pos-inventario-api/internal/application/analytics"
)

// DashboardHandler maneja los endpoints del módulo de Dashboard.
type DashboardHandler struct {
	uc *appanalytics.DashboardUseCase
}

// NewDashboardHandler construye el handler.
func NewDashboardHandler(uc *appanalytics.DashboardUseCase) *DashboardHandler {
	return &DashboardHandler{uc: uc}
}

// GetKPIs devuelve los indicadores del día y del mes en curso.
// GET /api/dashboard/kpis
func (h *DashboardHandler) GetKPIs(c *fiber.Ctx) error {
	out, err := h.uc.GetKPIs(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// SalesChart serie diaria de ventas.
// GET /api/dashboard/sales-chart?days=7
func (h *DashboardHandler) SalesChart(c *fiber.Ctx) error {
	out, err := h.uc.SalesChart(c.UserContext(), c.QueryInt("days", 7))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// SalesVsReturns comparación ventas/devoluciones.
// GET /api/dashboard/sales-vs-returns?period=1|7|30|12 (horas, días o meses)
func (h *DashboardHandler) SalesVsReturns(c *fiber.Ctx) error {
	out, err := h.uc.SalesVsReturns(c.UserContext(), c.Query("period", "7"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// CategoryDistribution GET /api/dashboard/category-distribution
func (h *DashboardHandler) CategoryDistribution(c *fiber.Ctx) error {
	out, err := h.uc.CategoryDistribution(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// LowStockProducts GET /api/dashboard/low-stock-products?limit=10
func (h *DashboardHandler) LowStockProducts(c *fiber.Ctx) error {
	out, err := h.uc.LowStockProducts(c.UserContext(), c.QueryInt("limit", 10))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// RecentSales GET /api/dashboard/recent-sales?limit=5
func (h *DashboardHandler) RecentSales(c *fiber.Ctx) error {
	out, err := h.uc.RecentSales(c.UserContext(), c.QueryInt("limit", 5))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// TopSellingProducts últimos 30 días.
// GET /api/dashboard/top-selling-products?limit=5
func (h *DashboardHandler) TopSellingProducts(c *fiber.Ctx) error {
	out, err := h.uc.TopSellingProducts(c.UserContext(), c.QueryInt("limit", 5))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
