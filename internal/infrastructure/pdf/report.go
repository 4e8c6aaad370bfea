package pdf

import (
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-inventario-api/internal/application/dto"
	"github.com/jhoicas/pos-inventario-api/pkg/money"
)

func (g *MarotoPDFGenerator) ContentType() string { return "application/pdf" }
func (g *MarotoPDFGenerator) Extension() string   { return "pdf" }

// Render genera el reporte tabular: título, fecha de generación y tabla con
// filas alternadas. Las celdas decimal se imprimen con el símbolo de moneda.
func (g *MarotoPDFGenerator) Render(table *dto.ReportTable) ([]byte, error) {
	m := newDocument(table.Title, "Inventory POS", 8)

	m.AddRows(row.New(10).Add(col.New(12).Add(
		text.New(table.Title, props.Text{
			Style: fontstyle.Bold, Size: 14, Color: colorPrimary, Align: align.Center, Top: 1,
		}),
	)))
	m.AddRows(row.New(6).Add(col.New(12).Add(
		text.New("Generated on: "+table.GeneratedAt.Format("2006-01-02 15:04:05"), props.Text{
			Size: 8, Color: colorGray, Align: align.Center,
		}),
	)))
	m.AddRows(line.NewRow(2, props.Line{Color: colorPrimary, Thickness: 0.5}))

	sizes := columnSizes(len(table.Headers))
	m.AddRows(reportHeaderRow(table.Headers, sizes))
	for i, r := range table.Rows {
		m.AddRows(reportDataRow(r, sizes, table.CurrencySymbol, i%2 == 1))
	}
	if len(table.Rows) == 0 {
		m.AddRows(row.New(8).Add(col.New(12).Add(
			text.New("No data for the selected criteria", props.Text{Size: 8, Color: colorGray, Align: align.Center, Top: 2}),
		)))
	}
	return generate(m)
}

func reportHeaderRow(headers []string, sizes []int) core.Row {
	cols := make([]core.Col, 0, len(sizes))
	for i, size := range sizes {
		cols = append(cols, col.New(size).Add(text.New(headers[i], props.Text{
			Style: fontstyle.Bold, Size: 7, Align: align.Center,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		})))
	}
	return row.New(8).Add(cols...).WithStyle(&props.Cell{BackgroundColor: colorPrimary})
}

func reportDataRow(values []any, sizes []int, symbol string, striped bool) core.Row {
	cols := make([]core.Col, 0, len(sizes))
	for i, size := range sizes {
		var v any
		if i < len(values) {
			v = values[i]
		}
		s, a := pdfCell(v, symbol)
		cols = append(cols, col.New(size).Add(text.New(s, props.Text{
			Size: 7, Align: a, Top: 1, Left: 1, Right: 1,
		})))
	}
	r := row.New(6).Add(cols...)
	if striped {
		r = r.WithStyle(&props.Cell{BackgroundColor: colorStripe})
	}
	return r
}

// pdfCell texto y alineación de una celda: números a la derecha.
func pdfCell(v any, symbol string) (string, align.Type) {
	switch x := v.(type) {
	case decimal.Decimal:
		return money.Format(symbol, x), align.Right
	case int:
		return money.Integer(x), align.Right
	case string:
		return x, align.Left
	}
	return "", align.Left
}
