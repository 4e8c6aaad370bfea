package sales

import (
	"context"

	"github.com/jhoicas/pos-inventario-api/internal/application/dto"
	"github.com/jhoicas/pos-inventario-api/internal/domain/entity"
)

// InvoiceGenerator renderiza el comprobante PDF de una venta.
type InvoiceGenerator interface {
	GenerateSaleInvoice(sale *entity.Sale, company dto.CompanyInfo) ([]byte, error)
}

// CompanyInfoProvider entrega los datos de la empresa guardados en settings.
type CompanyInfoProvider interface {
	CompanyInfo(ctx context.Context) (dto.CompanyInfo, error)
}
