package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// GenerateReportRequest body para POST /api/reports/generate.
// Fechas en formato YYYY-MM-DD o RFC3339; solo aplican al reporte de ventas.
type GenerateReportRequest struct {
	ReportType string `json:"report_type"` // sales | inventory | categories | low_stock
	Format     string `json:"format"`      // pdf | excel | csv
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
}

// ReportTable dataset tabular que consumen los renderers (PDF, Excel, CSV).
// Rows contiene valores tipados: string, int o decimal.Decimal.
type ReportTable struct {
	Title          string
	Headers        []string
	Rows           [][]any
	GeneratedAt    time.Time
	CurrencySymbol string // prefijo de las celdas decimal en PDF
}

// ReportFile resultado listo para descargar.
type ReportFile struct {
	Filename    string
	ContentType string
	Content     []byte
}

// CompanyInfo datos de la empresa (settings) impresos en reportes y facturas.
type CompanyInfo struct {
	Name           string
	Address        string
	Phone          string
	Email          string
	TaxID          string
	Currency       string
	CurrencySymbol string
	FooterNotes    string
	TaxRate        decimal.Decimal // porcentaje por defecto, solo informativo en la factura
}
