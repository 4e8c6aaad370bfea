package pdf

import (
	"fmt"
	"strconv"

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
	"github.com/jhoicas/pos-inventario-api/internal/domain/entity"
	"github.com/jhoicas/pos-inventario-api/pkg/money"
)

// GenerateSaleInvoice genera el comprobante de la venta y devuelve sus bytes.
func (g *MarotoPDFGenerator) GenerateSaleInvoice(sale *entity.Sale, company dto.CompanyInfo) ([]byte, error) {
	m := newDocument("Invoice "+sale.SaleNumber, nonEmpty(company.Name, "Inventory POS"), 9)
	sym := company.CurrencySymbol

	m.AddRows(invoiceHeaderRow(sale, company))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(issuerRow(company))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	// Tabla de ítems
	m.AddRows(itemsHeaderRow())
	for _, r := range itemRows(sale.Items, sym) {
		m.AddRows(r)
	}

	// Totales
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(saleTotalsRow(sale, sym, company.TaxRate))

	// Footer
	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	for _, r := range invoiceFooterRows(sale, company) {
		m.AddRows(r)
	}
	return generate(m)
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// invoiceHeaderRow: empresa + Tax ID (izq) y N° venta + fecha (der).
func invoiceHeaderRow(sale *entity.Sale, company dto.CompanyInfo) core.Row {
	left := []core.Component{
		text.New(nonEmpty(company.Name, "My Company"), props.Text{
			Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
		}),
	}
	if company.TaxID != "" {
		left = append(left, text.New("Tax ID: "+company.TaxID, props.Text{
			Size: 9, Top: 9, Color: colorGray,
		}))
	}
	return row.New(18).Add(
		col.New(7).Add(left...),
		col.New(5).Add(
			text.New("SALES INVOICE", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New(sale.SaleNumber, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Date: "+sale.CreatedAt.Format("2006-01-02 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

// issuerRow: datos de contacto de la empresa.
func issuerRow(company dto.CompanyInfo) core.Row {
	return row.New(12).Add(
		col.New(12).Add(
			text.New("ISSUED BY", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("Address: %s   |   Phone: %s   |   Email: %s",
				nonEmpty(company.Address, "-"),
				nonEmpty(company.Phone, "-"),
				nonEmpty(company.Email, "-"),
			), props.Text{Size: 8, Top: 7, Color: colorGray}),
		),
	)
}

func itemsHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Qty", 1, align.Center),
		h("Product", 6, align.Left),
		h("Unit Price", 2, align.Right),
		h("Total", 3, align.Right),
	).WithStyle(&props.Cell{BackgroundColor: colorPrimary})
}

// itemRows: una fila por línea de la venta.
func itemRows(items []entity.SalesItem, sym string) []core.Row {
	result := make([]core.Row, 0, len(items))
	for _, it := range items {
		result = append(result, row.New(7).Add(
			col.New(1).Add(text.New(strconv.Itoa(it.Quantity),
				props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(6).Add(text.New(nonEmpty(it.ProductName, it.ProductID),
				props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1})),
			col.New(2).Add(text.New(money.Format(sym, it.UnitPrice),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(3).Add(text.New(money.Format(sym, it.TotalPrice),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return result
}

// saleTotalsRow: bloque de totales alineado a la derecha.
func saleTotalsRow(sale *entity.Sale, sym string, taxRate decimal.Decimal) core.Row {
	label := func(s string, top float64) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2, Top: top})
	}
	value := func(s string, top float64) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1, Top: top})
	}
	grand := func(s string, top float64) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right,
			Color: colorPrimary, Right: 1, Top: top,
		})
	}

	taxLabel := "Tax:"
	if taxRate.IsPositive() {
		taxLabel = "Tax (" + taxRate.String() + "%):"
	}

	return row.New(26).Add(
		col.New(5),
		col.New(3).Add(
			label("Subtotal:", 1),
			label("Discount:", 6),
			label(taxLabel, 11),
			grand("TOTAL:", 17),
		),
		col.New(4).Add(
			value(money.Format(sym, sale.TotalAmount), 1),
			value("-"+money.Format(sym, sale.Discount), 6),
			value(money.Format(sym, sale.Tax), 11),
			grand(money.Format(sym, sale.FinalAmount), 17),
		),
	)
}

// invoiceFooterRows: método de pago, notas de la venta y notas de factura de settings.
func invoiceFooterRows(sale *entity.Sale, company dto.CompanyInfo) []core.Row {
	rows := []core.Row{
		row.New(6).Add(col.New(12).Add(
			text.New("Payment method: "+sale.PaymentMethod, props.Text{Size: 8, Top: 1}),
		)),
	}
	if sale.Notes != "" {
		rows = append(rows, row.New(6).Add(col.New(12).Add(
			text.New("Notes: "+sale.Notes, props.Text{Size: 8, Color: colorGray, Top: 1}),
		)))
	}
	rows = append(rows, row.New(10).Add(col.New(12).Add(
		text.New(nonEmpty(company.FooterNotes, "Thank you for your purchase!"), props.Text{
			Style: fontstyle.Bold, Size: 9, Align: align.Center, Color: colorPrimary, Top: 3,
		}),
	)))
	return rows
}
