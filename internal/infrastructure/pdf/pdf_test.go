package pdf_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-inventario-api/internal/application/dto"
	"github.com/jhoicas/pos-inventario-api/internal/domain/entity"
	"github.com/jhoicas/pos-inventario-api/internal/infrastructure/pdf"
)

func TestRender_Reporte(t *testing.T) {
	g := pdf.NewMarotoPDFGenerator()
	out, err := g.Render(&dto.ReportTable{
		Title:          "Inventory Report",
		Headers:        []string{"Product Name", "SKU", "Category", "Stock Qty", "Min Stock", "Price", "Cost", "Unit"},
		GeneratedAt:    time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC),
		CurrencySymbol: "Tk",
		Rows: [][]any{
			{"Arroz", "ARZ-1", "Granos", 12, 10, decimal.RequireFromString("2.50"), decimal.RequireFromString("1.90"), "kg"},
			{"Aceite", "ACE-1", "", 3, 10, decimal.RequireFromString("10"), decimal.RequireFromString("7"), "pcs"},
		},
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
	assert.Equal(t, "pdf", g.Extension())
	assert.Equal(t, "application/pdf", g.ContentType())
}

func TestRender_ReporteVacio(t *testing.T) {
	out, err := pdf.NewMarotoPDFGenerator().Render(&dto.ReportTable{Title: "Sales Report", Headers: []string{"Sale Number"}})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestGenerateSaleInvoice(t *testing.T) {
	sale := &entity.Sale{
		ID:            "s1",
		SaleNumber:    "SALE-20260314103000",
		TotalAmount:   decimal.RequireFromString("25.00"),
		Discount:      decimal.RequireFromString("5.00"),
		Tax:           decimal.RequireFromString("1.00"),
		FinalAmount:   decimal.RequireFromString("21.00"),
		PaymentMethod: "cash",
		CreatedAt:     time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC),
		Items: []entity.SalesItem{
			{ProductName: "Arroz", Quantity: 10, UnitPrice: decimal.RequireFromString("2.50"), TotalPrice: decimal.RequireFromString("25.00")},
		},
	}
	out, err := pdf.NewMarotoPDFGenerator().GenerateSaleInvoice(sale, dto.CompanyInfo{Name: "Almacén", CurrencySymbol: "Tk"})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))

	out, err = pdf.NewMarotoPDFGenerator().GenerateSaleInvoice(sale, dto.CompanyInfo{
		Name: "Almacén", CurrencySymbol: "Tk", TaxRate: decimal.RequireFromString("15"),
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}
