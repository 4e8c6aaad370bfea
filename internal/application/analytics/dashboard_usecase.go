// Package analytics contiene los casos de uso de lectura sobre el ledger:
// KPIs y series del dashboard y generación de reportes.
package analytics

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-inventario-api/internal/application/dto"
	"github.com/jhoicas/pos-inventario-api/internal/domain"
	"github.com/jhoicas/pos-inventario-api/internal/domain/repository"
)

const (
	defaultLowStockLimit   = 10
	defaultRecentSales     = 5
	defaultTopSelling      = 5
	topSellingWindow       = 30 * 24 * time.Hour
	maxChartDays           = 366
	uncategorizedLabel     = "Uncategorized"
	chartLabelLayout       = "2006-01-02T15:04:05"
	kpiCacheKeyPrefix      = "dashboard:kpis:"
	defaultKPICacheTimeout = 30 * time.Second
)

// DashboardUseCase genera los widgets del dashboard.
//
// Fuente de datos: AnalyticsRepository (consultas read-only).
// Los buckets de tiempo se calculan aquí en la zona horaria configurada.
type DashboardUseCase struct {
	analyticsRepo repository.AnalyticsRepository
	cache         KPICache
	cacheTTL      time.Duration
	loc           *time.Location
	log           zerolog.Logger
	now           func() time.Time
}

// NewDashboardUseCase construye el caso de uso. cache puede ser nil (sin caché).
func NewDashboardUseCase(
	analyticsRepo repository.AnalyticsRepository,
	cache KPICache,
	cacheTTL time.Duration,
	log zerolog.Logger,
	loc *time.Location,
) *DashboardUseCase {
	if loc == nil {
		loc = time.Local
	}
	if cacheTTL <= 0 {
		cacheTTL = defaultKPICacheTimeout
	}
	return &DashboardUseCase{
		analyticsRepo: analyticsRepo,
		cache:         cache,
		cacheTTL:      cacheTTL,
		loc:           loc,
		log:           log,
		now:           time.Now,
	}
}

// SetClock reemplaza el reloj (tests).
func (uc *DashboardUseCase) SetClock(now func() time.Time) { uc.now = now }

// GetKPIs construye el resumen de KPIs.
//
// Seis consultas en paralelo:
//  1. CountActiveProducts       → TotalProducts
//  2. CountLowStock             → LowStockCount
//  3. SalesTotals(hoy)          → TotalSalesToday + TotalSalesCountToday
//  4. RefundTotals(hoy)         → se resta de TotalSalesToday
//  5. SalesTotals(mes)          → TotalRevenueThisMonth
//  6. RefundTotals(mes)         → se resta de TotalRevenueThisMonth
func (uc *DashboardUseCase) GetKPIs(ctx context.Context) (*dto.DashboardKPIsDTO, error) {
	now := uc.now().In(uc.loc)
	cacheKey := kpiCacheKeyPrefix + now.Format("2006-01-02T15:04")

	if uc.cache != nil {
		cached, ok, err := uc.cache.GetKPIs(ctx, cacheKey)
		if err != nil {
			uc.log.Warn().Err(err).Msg("caché de KPIs no disponible")
		} else if ok {
			return cached, nil
		}
	}

	// ── Rangos de fecha ────────────────────────────────────────────────────────
	todayStart := daily.truncate(now)
	tomorrow := todayStart.AddDate(0, 0, 1)
	monthStart := monthly.truncate(now)

	// ── Goroutines para paralelizar las consultas ──────────────────────────────
	type countResult struct {
		n   int
		err error
	}
	type amountResult struct {
		total decimal.Decimal
		count int
		err   error
	}

	productsCh := make(chan countResult, 1)
	lowStockCh := make(chan countResult, 1)
	todayCh := make(chan amountResult, 1)
	todayRefundCh := make(chan amountResult, 1)
	monthCh := make(chan amountResult, 1)
	monthRefundCh := make(chan amountResult, 1)

	go func() {
		n, err := uc.analyticsRepo.CountActiveProducts(ctx)
		productsCh <- countResult{n, err}
	}()
	go func() {
		n, err := uc.analyticsRepo.CountLowStock(ctx)
		lowStockCh <- countResult{n, err}
	}()
	go func() {
		total, count, err := uc.analyticsRepo.SalesTotals(ctx, todayStart, tomorrow)
		todayCh <- amountResult{total, count, err}
	}()
	go func() {
		total, err := uc.analyticsRepo.RefundTotals(ctx, todayStart, tomorrow)
		todayRefundCh <- amountResult{total: total, err: err}
	}()
	go func() {
		total, count, err := uc.analyticsRepo.SalesTotals(ctx, monthStart, tomorrow)
		monthCh <- amountResult{total, count, err}
	}()
	go func() {
		total, err := uc.analyticsRepo.RefundTotals(ctx, monthStart, tomorrow)
		monthRefundCh <- amountResult{total: total, err: err}
	}()

	products := <-productsCh
	lowStock := <-lowStockCh
	today := <-todayCh
	todayRefund := <-todayRefundCh
	month := <-monthCh
	monthRefund := <-monthRefundCh

	for _, err := range []error{products.err, lowStock.err, today.err, todayRefund.err, month.err, monthRefund.err} {
		if err != nil {
			return nil, fmt.Errorf("analytics.GetKPIs: %w", err)
		}
	}

	kpis := &dto.DashboardKPIsDTO{
		TotalProducts:         products.n,
		TotalSalesToday:       netOfRefunds(today.total, todayRefund.total),
		TotalSalesCountToday:  today.count,
		LowStockCount:         lowStock.n,
		TotalRevenueThisMonth: netOfRefunds(month.total, monthRefund.total),
	}

	if uc.cache != nil {
		if err := uc.cache.SetKPIs(ctx, cacheKey, kpis, uc.cacheTTL); err != nil {
			uc.log.Warn().Err(err).Msg("no se pudo guardar KPIs en caché")
		}
	}
	return kpis, nil
}

// InvalidateKPIs descarta los KPIs cacheados. Lo llaman los flujos de venta y
// devolución después de confirmar; un error de caché solo se registra.
func (uc *DashboardUseCase) InvalidateKPIs(ctx context.Context) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.DeleteKPIs(ctx, kpiCacheKeyPrefix); err != nil {
		uc.log.Warn().Err(err).Msg("no se pudo invalidar la caché de KPIs")
	}
}

// netOfRefunds ventas menos reembolsos, nunca negativo.
func netOfRefunds(sales, refunds decimal.Decimal) decimal.Decimal {
	net := sales.Sub(refunds)
	if net.IsNegative() {
		return decimal.Zero
	}
	return net.Round(2)
}

// SalesChart serie de ventas con buckets rellenados en cero:
// days == 1 → 24 horas, days == 12 → 12 meses, otro N → N días terminando hoy.
func (uc *DashboardUseCase) SalesChart(ctx context.Context, days int) ([]dto.ChartPointDTO, error) {
	if days < 1 || days > maxChartDays {
		return nil, domain.Invalid("days debe estar entre 1 y %d", maxChartDays)
	}
	g, n := daily, days
	switch days {
	case 1:
		g, n = hourly, 24
	case 12:
		g, n = monthly, 12
	}

	grid := g.grid(uc.now().In(uc.loc), n)
	points, err := uc.analyticsRepo.SalesPoints(ctx, grid[0], g.add(grid[n-1], 1))
	if err != nil {
		return nil, fmt.Errorf("analytics.SalesChart: %w", err)
	}
	sums := g.sumByBucket(points, uc.loc)

	out := make([]dto.ChartPointDTO, 0, n)
	for _, start := range grid {
		out = append(out, dto.ChartPointDTO{
			Date:  start.Format(chartLabelLayout),
			Sales: sums[start.Unix()].Round(2),
		})
	}
	return out, nil
}

// SalesVsReturns compara ventas y devoluciones por periodo:
// "1" → 24 horas, "12" → 12 meses, "30" → 30 días, cualquier otro → 7 días.
func (uc *DashboardUseCase) SalesVsReturns(ctx context.Context, period string) ([]dto.SalesVsReturnsDTO, error) {
	g, n, layout := daily, 7, "2006-01-02"
	switch period {
	case "1":
		g, n, layout = hourly, 24, "2006-01-02 15:00"
	case "12":
		g, n, layout = monthly, 12, "2006-01"
	case "30":
		n = 30
	}

	grid := g.grid(uc.now().In(uc.loc), n)
	from, to := grid[0], g.add(grid[n-1], 1)

	type pointsResult struct {
		points []repository.AmountPoint
		err    error
	}
	salesCh := make(chan pointsResult, 1)
	returnsCh := make(chan pointsResult, 1)
	go func() {
		p, err := uc.analyticsRepo.SalesPoints(ctx, from, to)
		salesCh <- pointsResult{p, err}
	}()
	go func() {
		p, err := uc.analyticsRepo.ReturnPoints(ctx, from, to)
		returnsCh <- pointsResult{p, err}
	}()
	sales, returns := <-salesCh, <-returnsCh
	if sales.err != nil {
		return nil, fmt.Errorf("analytics.SalesVsReturns: ventas: %w", sales.err)
	}
	if returns.err != nil {
		return nil, fmt.Errorf("analytics.SalesVsReturns: devoluciones: %w", returns.err)
	}

	salesSums := g.sumByBucket(sales.points, uc.loc)
	returnSums := g.sumByBucket(returns.points, uc.loc)
	out := make([]dto.SalesVsReturnsDTO, 0, n)
	for _, start := range grid {
		out = append(out, dto.SalesVsReturnsDTO{
			Period:  start.Format(layout),
			Sales:   salesSums[start.Unix()].Round(2),
			Returns: returnSums[start.Unix()].Round(2),
		})
	}
	return out, nil
}

// CategoryDistribution participación de cada categoría sobre los productos activos.
// Los productos sin categoría se agrupan como "Uncategorized".
func (uc *DashboardUseCase) CategoryDistribution(ctx context.Context) ([]dto.CategoryDistributionDTO, error) {
	counts, err := uc.analyticsRepo.CategoryCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("analytics.CategoryDistribution: %w", err)
	}
	total := 0
	for _, c := range counts {
		total += c.Count
	}
	out := make([]dto.CategoryDistributionDTO, 0, len(counts))
	if total == 0 {
		return out, nil
	}
	for _, c := range counts {
		name := c.Category
		if name == "" {
			name = uncategorizedLabel
		}
		out = append(out, dto.CategoryDistributionDTO{
			Category:   name,
			Count:      c.Count,
			Percentage: math.Round(float64(c.Count)/float64(total)*10000) / 100,
		})
	}
	return out, nil
}

// LowStockProducts productos activos con stock <= mínimo, menor stock primero.
func (uc *DashboardUseCase) LowStockProducts(ctx context.Context, limit int) ([]dto.LowStockProductDTO, error) {
	if limit <= 0 {
		limit = defaultLowStockLimit
	}
	list, err := uc.analyticsRepo.LowStockProducts(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("analytics.LowStockProducts: %w", err)
	}
	out := make([]dto.LowStockProductDTO, 0, len(list))
	for _, p := range list {
		out = append(out, dto.LowStockProductDTO{
			ID:            p.ID,
			Name:          p.Name,
			SKU:           p.SKU,
			StockQuantity: p.StockQuantity,
			MinStockLevel: p.MinStockLevel,
			CategoryName:  p.CategoryName,
		})
	}
	return out, nil
}

func (uc *DashboardUseCase) RecentSales(ctx context.Context, limit int) ([]dto.RecentSaleDTO, error) {
	if limit <= 0 {
		limit = defaultRecentSales
	}
	list, err := uc.analyticsRepo.RecentSales(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("analytics.RecentSales: %w", err)
	}
	out := make([]dto.RecentSaleDTO, 0, len(list))
	for _, s := range list {
		out = append(out, dto.RecentSaleDTO{
			ID:          s.ID,
			SaleNumber:  s.SaleNumber,
			FinalAmount: s.FinalAmount,
			ItemsCount:  s.ItemsCount,
			CreatedAt:   s.CreatedAt,
		})
	}
	return out, nil
}

// TopSellingProducts ranking por unidades vendidas en los últimos 30 días.
func (uc *DashboardUseCase) TopSellingProducts(ctx context.Context, limit int) ([]dto.TopProductDTO, error) {
	if limit <= 0 {
		limit = defaultTopSelling
	}
	list, err := uc.analyticsRepo.TopSellingProducts(ctx, uc.now().Add(-topSellingWindow), limit)
	if err != nil {
		return nil, fmt.Errorf("analytics.TopSellingProducts: %w", err)
	}
	out := make([]dto.TopProductDTO, 0, len(list))
	for _, p := range list {
		out = append(out, dto.TopProductDTO{
			ID:           p.ID,
			Name:         p.Name,
			SKU:          p.SKU,
			TotalSold:    p.TotalSold,
			TotalRevenue: p.TotalRevenue.Round(2),
		})
	}
	return out, nil
}
