package export

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/pos-inventario-api/internal/application/analytics"
	"github.com/jhoicas/pos-inventario-api/internal/application/dto"
)

var _ analytics.ReportRenderer = ExcelRenderer{}

const (
	excelHeaderRow = 4
	numFmtMoney    = 4 // #,##0.00
	numFmtInteger  = 3 // #,##0
	maxSheetName   = 31
)

// ExcelRenderer genera un .xlsx con título, fecha de generación, encabezados y filas.
// Las celdas decimal se escriben como número con formato de moneda.
type ExcelRenderer struct{}

func (ExcelRenderer) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

func (ExcelRenderer) Extension() string { return "xlsx" }

func (ExcelRenderer) Render(table *dto.ReportTable) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := SheetName(table.Title)
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return nil, fmt.Errorf("excel: hoja: %w", err)
	}

	styles, err := newExcelStyles(f)
	if err != nil {
		return nil, err
	}

	// ── Título y fecha ──────────────────────────────────────────────────────────
	lastCol, err := excelize.ColumnNumberToName(max(len(table.Headers), 1))
	if err != nil {
		return nil, fmt.Errorf("excel: %w", err)
	}
	cells := []struct {
		cell  string
		value any
		style int
	}{
		{"A1", table.Title, styles.title},
		{"A2", "Generated on: " + table.GeneratedAt.Format("2006-01-02 15:04:05"), styles.subtitle},
	}
	for _, c := range cells {
		if err := f.SetCellValue(sheet, c.cell, c.value); err != nil {
			return nil, fmt.Errorf("excel: %w", err)
		}
		if err := f.SetCellStyle(sheet, c.cell, c.cell, c.style); err != nil {
			return nil, fmt.Errorf("excel: %w", err)
		}
	}
	if err := f.MergeCell(sheet, "A1", lastCol+"1"); err != nil {
		return nil, fmt.Errorf("excel: %w", err)
	}

	// ── Encabezados ─────────────────────────────────────────────────────────────
	for i, h := range table.Headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, excelHeaderRow)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, fmt.Errorf("excel: %w", err)
		}
	}
	if len(table.Headers) > 0 {
		if err := f.SetCellStyle(sheet, "A4", fmt.Sprintf("%s%d", lastCol, excelHeaderRow), styles.header); err != nil {
			return nil, fmt.Errorf("excel: %w", err)
		}
	}

	// ── Filas ───────────────────────────────────────────────────────────────────
	for r, row := range table.Rows {
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, excelHeaderRow+1+r)
			style := 0
			switch x := v.(type) {
			case decimal.Decimal:
				v = x.Round(2).InexactFloat64()
				style = styles.money
			case int:
				style = styles.integer
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, fmt.Errorf("excel: %w", err)
			}
			if style != 0 {
				if err := f.SetCellStyle(sheet, cell, cell, style); err != nil {
					return nil, fmt.Errorf("excel: %w", err)
				}
			}
		}
	}

	if err := f.SetColWidth(sheet, "A", lastCol, 18); err != nil {
		return nil, fmt.Errorf("excel: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("excel: escribir: %w", err)
	}
	return buf.Bytes(), nil
}

type excelStyles struct {
	title, subtitle, header, money, integer int
}

func newExcelStyles(f *excelize.File) (excelStyles, error) {
	var s excelStyles
	defs := []struct {
		dst   *int
		style *excelize.Style
	}{
		{&s.title, &excelize.Style{Font: &excelize.Font{Bold: true, Size: 14, Color: "00467F"}}},
		{&s.subtitle, &excelize.Style{Font: &excelize.Font{Italic: true, Size: 9, Color: "646464"}}},
		{&s.header, &excelize.Style{
			Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
			Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"00467F"}},
			Alignment: &excelize.Alignment{Horizontal: "center"},
		}},
		{&s.money, &excelize.Style{NumFmt: numFmtMoney}},
		{&s.integer, &excelize.Style{NumFmt: numFmtInteger}},
	}
	for _, d := range defs {
		id, err := f.NewStyle(d.style)
		if err != nil {
			return s, fmt.Errorf("excel: estilo: %w", err)
		}
		*d.dst = id
	}
	return s, nil
}

// SheetName nombre de hoja válido a partir del título: sin el rango entre
// paréntesis, sin caracteres prohibidos y con máximo 31 caracteres.
func SheetName(title string) string {
	base := strings.TrimSpace(strings.SplitN(title, "(", 2)[0])
	base = strings.Map(func(r rune) rune {
		if strings.ContainsRune(`[]:*?/\`, r) {
			return -1
		}
		return r
	}, base)
	if base == "" {
		base = "Report"
	}
	if len([]rune(base)) > maxSheetName {
		base = string([]rune(base)[:maxSheetName])
	}
	return base
}
