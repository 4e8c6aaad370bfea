package analytics_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-inventario-api/internal/application/analytics"
	"github.com/jhoicas/pos-inventario-api/internal/application/dto"
	"github.com/jhoicas/pos-inventario-api/internal/domain"
)

type captureRenderer struct {
	last *dto.ReportTable
	ext  string
}

func (r *captureRenderer) Render(table *dto.ReportTable) ([]byte, error) {
	r.last = table
	return []byte("ok"), nil
}

func (r *captureRenderer) ContentType() string { return "text/plain" }
func (r *captureRenderer) Extension() string   { return r.ext }

type staticCompany struct{ info dto.CompanyInfo }

func (c staticCompany) CompanyInfo(context.Context) (dto.CompanyInfo, error) { return c.info, nil }

func newReports(f *fixture) (*analytics.ReportUseCase, *captureRenderer) {
	r := &captureRenderer{ext: "csv"}
	uc := analytics.NewReportUseCase(f.store.Analytics(),
		map[string]analytics.ReportRenderer{analytics.FormatCSV: r},
		staticCompany{dto.CompanyInfo{CurrencySymbol: "Tk"}},
		zerolog.Nop(), time.UTC)
	uc.SetClock(func() time.Time { return fixedNow })
	return uc, r
}

func TestGenerate_VentasConRango(t *testing.T) {
	f := newFixture(t)
	f.sale(t, time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC), "10.00")
	f.sale(t, time.Date(2026, 3, 10, 23, 59, 0, 0, time.UTC), "20.00")
	f.sale(t, time.Date(2026, 3, 11, 0, 1, 0, 0, time.UTC), "30.00")
	uc, r := newReports(f)

	file, err := uc.Generate(f.ctx, dto.GenerateReportRequest{
		ReportType: analytics.ReportSales, Format: analytics.FormatCSV,
		StartDate: "2026-03-01", EndDate: "2026-03-10",
	})
	require.NoError(t, err)
	assert.Equal(t, "sales_report_20260314_103000.csv", file.Filename)
	assert.Equal(t, "text/plain", file.ContentType)

	require.NotNil(t, r.last)
	assert.Equal(t, "Sales Report (2026-03-01 to 2026-03-10)", r.last.Title)
	assert.Equal(t, "Tk", r.last.CurrencySymbol)
	assert.Equal(t, fixedNow, r.last.GeneratedAt)
	require.Len(t, r.last.Rows, 2)
	assert.Equal(t, "2026-03-10 23:59", r.last.Rows[0][1], "más reciente primero")
	assert.True(t, decimal.NewFromInt(20).Equal(r.last.Rows[0][5].(decimal.Decimal)))
}

func TestGenerate_StockBajoConDeficit(t *testing.T) {
	f := newFixture(t)
	f.category(t, "c1", "Bebidas")
	f.product(t, "p1", "c1", 2, 10, true)
	f.product(t, "p2", "c1", 10, 10, true)
	f.product(t, "p3", "c1", 0, 10, false)
	uc, r := newReports(f)

	_, err := uc.Generate(f.ctx, dto.GenerateReportRequest{ReportType: analytics.ReportLowStock, Format: analytics.FormatCSV})
	require.NoError(t, err)
	require.Len(t, r.last.Rows, 1, "stock igual al mínimo no entra")
	row := r.last.Rows[0]
	assert.Equal(t, "Producto p1", row[0])
	assert.Equal(t, "Bebidas", row[2])
	assert.Equal(t, 8, row[5])
	assert.Equal(t, "Deficit", r.last.Headers[5])
}

func TestGenerate_InventarioYCategorias(t *testing.T) {
	f := newFixture(t)
	f.category(t, "c1", "Bebidas")
	f.category(t, "c2", "Vacía")
	f.product(t, "p1", "c1", 5, 1, true)
	f.product(t, "p2", "c1", 7, 1, true)
	f.product(t, "p3", "c1", 100, 1, false)
	uc, r := newReports(f)

	_, err := uc.Generate(f.ctx, dto.GenerateReportRequest{ReportType: analytics.ReportInventory, Format: analytics.FormatCSV})
	require.NoError(t, err)
	assert.Len(t, r.last.Rows, 2)
	assert.Len(t, r.last.Headers, 8)

	_, err = uc.Generate(f.ctx, dto.GenerateReportRequest{ReportType: analytics.ReportCategories, Format: analytics.FormatCSV})
	require.NoError(t, err)
	require.Len(t, r.last.Rows, 2)
	assert.Equal(t, []any{"Bebidas", "", 2, 12}, r.last.Rows[0][:4])
	assert.True(t, decimal.NewFromInt(10).Equal(r.last.Rows[0][4].(decimal.Decimal)))
	assert.Equal(t, 0, r.last.Rows[1][2])
}

func TestGenerate_Errores(t *testing.T) {
	f := newFixture(t)
	uc, _ := newReports(f)

	_, err := uc.Generate(f.ctx, dto.GenerateReportRequest{ReportType: "profit", Format: analytics.FormatCSV})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	_, err = uc.Generate(f.ctx, dto.GenerateReportRequest{ReportType: analytics.ReportSales, Format: "docx"})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	_, err = uc.Generate(f.ctx, dto.GenerateReportRequest{ReportType: analytics.ReportSales, Format: analytics.FormatCSV, StartDate: "14/03/2026"})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	_, err = uc.Generate(f.ctx, dto.GenerateReportRequest{
		ReportType: analytics.ReportSales, Format: analytics.FormatCSV, StartDate: "2026-03-10", EndDate: "2026-03-01",
	})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}
