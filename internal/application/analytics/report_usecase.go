package analytics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/pos-inventario-api/internal/application/dto"
	"github.com/jhoicas/pos-inventario-api/internal/domain"
	"github.com/jhoicas/pos-inventario-api/internal/domain/repository"
)

// Tipos de reporte soportados.
const (
	ReportSales      = "sales"
	ReportInventory  = "inventory"
	ReportCategories = "categories"
	ReportLowStock   = "low_stock"
)

// Formatos de salida.
const (
	FormatPDF   = "pdf"
	FormatExcel = "excel"
	FormatCSV   = "csv"
)

const dateOnly = "2006-01-02"

// ReportUseCase arma los datasets de reportes y los delega al renderer del formato pedido.
type ReportUseCase struct {
	analyticsRepo repository.AnalyticsRepository
	renderers     map[string]ReportRenderer
	company       CompanyInfoProvider
	loc           *time.Location
	log           zerolog.Logger
	now           func() time.Time
}

// NewReportUseCase construye el caso de uso. renderers se indexa por formato (pdf, excel, csv).
func NewReportUseCase(
	analyticsRepo repository.AnalyticsRepository,
	renderers map[string]ReportRenderer,
	company CompanyInfoProvider,
	log zerolog.Logger,
	loc *time.Location,
) *ReportUseCase {
	if loc == nil {
		loc = time.Local
	}
	return &ReportUseCase{
		analyticsRepo: analyticsRepo,
		renderers:     renderers,
		company:       company,
		loc:           loc,
		log:           log,
		now:           time.Now,
	}
}

// SetClock reemplaza el reloj (tests).
func (uc *ReportUseCase) SetClock(now func() time.Time) { uc.now = now }

// Generate produce el archivo del reporte. Tipo o formato desconocido → ErrInvalidInput.
func (uc *ReportUseCase) Generate(ctx context.Context, in dto.GenerateReportRequest) (*dto.ReportFile, error) {
	renderer, ok := uc.renderers[in.Format]
	if !ok {
		return nil, domain.Invalid("formato de reporte inválido: %q", in.Format)
	}

	var (
		table *dto.ReportTable
		err   error
	)
	switch in.ReportType {
	case ReportSales:
		var start, end *time.Time
		if start, err = uc.parseDate(in.StartDate, false); err != nil {
			return nil, err
		}
		if end, err = uc.parseDate(in.EndDate, true); err != nil {
			return nil, err
		}
		if start != nil && end != nil && end.Before(*start) {
			return nil, domain.Invalid("end_date anterior a start_date")
		}
		table, err = uc.salesTable(ctx, start, end)
	case ReportInventory:
		table, err = uc.inventoryTable(ctx)
	case ReportCategories:
		table, err = uc.categoriesTable(ctx)
	case ReportLowStock:
		table, err = uc.lowStockTable(ctx)
	default:
		return nil, domain.Invalid("tipo de reporte inválido: %q", in.ReportType)
	}
	if err != nil {
		return nil, fmt.Errorf("reports.Generate: %w", err)
	}

	now := uc.now().In(uc.loc)
	table.GeneratedAt = now
	if uc.company != nil {
		info, err := uc.company.CompanyInfo(ctx)
		if err != nil {
			return nil, fmt.Errorf("reports.Generate: %w", err)
		}
		table.CurrencySymbol = info.CurrencySymbol
	}

	content, err := renderer.Render(table)
	if err != nil {
		return nil, fmt.Errorf("reports.Generate: render %s: %w", in.Format, err)
	}
	uc.log.Info().
		Str("report_type", in.ReportType).
		Str("format", in.Format).
		Int("rows", len(table.Rows)).
		Msg("reporte generado")

	return &dto.ReportFile{
		Filename:    fmt.Sprintf("%s_report_%s.%s", in.ReportType, now.Format("20060102_150405"), renderer.Extension()),
		ContentType: renderer.ContentType(),
		Content:     content,
	}, nil
}

// parseDate acepta YYYY-MM-DD (inicio o fin del día) o RFC3339. Vacío → sin límite.
func (uc *ReportUseCase) parseDate(s string, endOfDay bool) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if t, err := time.ParseInLocation(dateOnly, s, uc.loc); err == nil {
		if endOfDay {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, domain.Invalid("fecha inválida %q (use YYYY-MM-DD)", s)
	}
	return &t, nil
}

// ── Datasets ──────────────────────────────────────────────────────────────────

func (uc *ReportUseCase) salesTable(ctx context.Context, start, end *time.Time) (*dto.ReportTable, error) {
	sales, err := uc.analyticsRepo.SalesForReport(ctx, start, end)
	if err != nil {
		return nil, err
	}
	title := "Sales Report"
	switch {
	case start != nil && end != nil:
		title += fmt.Sprintf(" (%s to %s)", start.In(uc.loc).Format(dateOnly), end.In(uc.loc).Format(dateOnly))
	case start != nil:
		title += fmt.Sprintf(" (From %s)", start.In(uc.loc).Format(dateOnly))
	case end != nil:
		title += fmt.Sprintf(" (Until %s)", end.In(uc.loc).Format(dateOnly))
	}

	rows := make([][]any, 0, len(sales))
	for _, s := range sales {
		rows = append(rows, []any{
			s.SaleNumber,
			s.CreatedAt.In(uc.loc).Format("2006-01-02 15:04"),
			s.TotalAmount,
			s.Discount,
			s.Tax,
			s.FinalAmount,
			s.PaymentMethod,
		})
	}
	return &dto.ReportTable{
		Title:   title,
		Headers: []string{"Sale Number", "Date", "Total Amount", "Discount", "Tax", "Final Amount", "Payment Method"},
		Rows:    rows,
	}, nil
}

func (uc *ReportUseCase) inventoryTable(ctx context.Context) (*dto.ReportTable, error) {
	products, err := uc.analyticsRepo.InventoryForReport(ctx)
	if err != nil {
		return nil, err
	}
	rows := make([][]any, 0, len(products))
	for _, p := range products {
		rows = append(rows, []any{
			p.Name, p.SKU, p.CategoryName, p.StockQuantity, p.MinStockLevel, p.Price, p.Cost, p.Unit,
		})
	}
	return &dto.ReportTable{
		Title:   "Inventory Report",
		Headers: []string{"Product Name", "SKU", "Category", "Stock Qty", "Min Stock", "Price", "Cost", "Unit"},
		Rows:    rows,
	}, nil
}

func (uc *ReportUseCase) categoriesTable(ctx context.Context) (*dto.ReportTable, error) {
	cats, err := uc.analyticsRepo.CategoriesForReport(ctx)
	if err != nil {
		return nil, err
	}
	rows := make([][]any, 0, len(cats))
	for _, c := range cats {
		rows = append(rows, []any{c.Name, c.Description, c.ProductCount, c.TotalStock, c.AvgPrice})
	}
	return &dto.ReportTable{
		Title:   "Categories Report",
		Headers: []string{"Category", "Description", "Product Count", "Total Stock", "Avg Price"},
		Rows:    rows,
	}, nil
}

func (uc *ReportUseCase) lowStockTable(ctx context.Context) (*dto.ReportTable, error) {
	products, err := uc.analyticsRepo.BelowMinimumForReport(ctx)
	if err != nil {
		return nil, err
	}
	rows := make([][]any, 0, len(products))
	for _, p := range products {
		rows = append(rows, []any{
			p.Name, p.SKU, p.CategoryName, p.StockQuantity, p.MinStockLevel,
			max(p.MinStockLevel-p.StockQuantity, 0), p.Price, p.Unit,
		})
	}
	return &dto.ReportTable{
		Title:   "Low Stock Report",
		Headers: []string{"Product Name", "SKU", "Category", "Stock Qty", "Min Stock", "Deficit", "Price", "Unit"},
		Rows:    rows,
	}, nil
}
