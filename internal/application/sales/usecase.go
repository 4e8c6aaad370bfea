// Package sales contiene el flujo de ventas: crear (salida de stock) y
// cancelar (reingreso), más consultas y el comprobante PDF.
package sales

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-inventario-api/internal/application/dto"
	"github.com/jhoicas/pos-inventario-api/internal/application/inventory"
	"github.com/jhoicas/pos-inventario-api/internal/domain"
	"github.com/jhoicas/pos-inventario-api/internal/domain/entity"
	"github.com/jhoicas/pos-inventario-api/internal/domain/repository"
)

// UseCase orquesta ventas sobre el motor de ledger. Cada operación de escritura
// corre en una sola transacción: si una línea falla no queda nada persistido.
type UseCase struct {
	txRunner inventory.TxRunner
	engine   *inventory.Engine
	saleRepo repository.SaleRepository
	invoices InvoiceGenerator
	company  CompanyInfoProvider
	kpis     inventory.KPIInvalidator
	log      zerolog.Logger
	loc      *time.Location
	now      func() time.Time
}

// NewUseCase construye el caso de uso. loc es la zona usada para el número de
// venta y los resúmenes diarios/mensuales.
func NewUseCase(
	txRunner inventory.TxRunner,
	engine *inventory.Engine,
	saleRepo repository.SaleRepository,
	invoices InvoiceGenerator,
	company CompanyInfoProvider,
	log zerolog.Logger,
	loc *time.Location,
) *UseCase {
	if loc == nil {
		loc = time.Local
	}
	return &UseCase{
		txRunner: txRunner,
		engine:   engine,
		saleRepo: saleRepo,
		invoices: invoices,
		company:  company,
		log:      log,
		loc:      loc,
		now:      time.Now,
	}
}

// SetClock reemplaza el reloj (tests).
func (uc *UseCase) SetClock(now func() time.Time) { uc.now = now }

// SetKPIInvalidator registra quién descarta los KPIs cacheados tras cada venta.
func (uc *UseCase) SetKPIInvalidator(kpis inventory.KPIInvalidator) { uc.kpis = kpis }

func (uc *UseCase) invalidateKPIs(ctx context.Context) {
	if uc.kpis != nil {
		uc.kpis.InvalidateKPIs(ctx)
	}
}

// CreateSale valida las líneas, verifica stock de todas antes de escribir y
// registra la venta con una salida de ledger por línea.
func (uc *UseCase) CreateSale(ctx context.Context, in dto.CreateSaleRequest) (*dto.SaleResponse, error) {
	if len(in.Items) == 0 {
		return nil, domain.Invalid("la venta debe tener al menos un ítem")
	}
	for i, item := range in.Items {
		if item.ProductID == "" {
			return nil, domain.Invalid("items[%d]: product_id es requerido", i)
		}
		if item.Quantity <= 0 {
			return nil, domain.Invalid("items[%d]: quantity debe ser mayor a 0", i)
		}
		if item.UnitPrice.IsNegative() {
			return nil, domain.Invalid("items[%d]: unit_price no puede ser negativo", i)
		}
	}
	paymentMethod := in.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = entity.DefaultPaymentMethod
	}

	now := uc.now().In(uc.loc)
	var sale *entity.Sale

	err := uc.txRunner.Run(ctx, func(repos repository.Repositories) error {
		// 1) Resolver productos y pre-validar stock (cantidades repetidas se suman).
		products := make(map[string]*entity.Product, len(in.Items))
		requested := make(map[string]int, len(in.Items))
		for _, item := range in.Items {
			if _, ok := products[item.ProductID]; !ok {
				p, err := repos.Products.GetByID(ctx, item.ProductID)
				if err != nil {
					return err
				}
				if p == nil {
					return domain.NotFound("product", item.ProductID)
				}
				products[item.ProductID] = p
			}
			requested[item.ProductID] += item.Quantity
		}
		for id, qty := range requested {
			p := products[id]
			if p.StockQuantity < qty {
				return domain.InsufficientStock(p.ID, p.Name, p.StockQuantity, qty)
			}
		}

		// 2) Totales. Sin recorte: un descuento mayor al total deja final_amount negativo.
		total := decimal.Zero
		lines := make([]entity.SalesItem, 0, len(in.Items))
		for _, item := range in.Items {
			price := item.UnitPrice
			if price.IsZero() {
				price = products[item.ProductID].Price
			}
			lineTotal := price.Mul(decimal.NewFromInt(int64(item.Quantity)))
			total = total.Add(lineTotal)
			lines = append(lines, entity.SalesItem{
				ID:         uuid.New().String(),
				ProductID:  item.ProductID,
				Quantity:   item.Quantity,
				UnitPrice:  price,
				TotalPrice: lineTotal,
			})
		}

		number, err := uc.nextSaleNumber(ctx, repos.Sales, now)
		if err != nil {
			return err
		}
		sale = &entity.Sale{
			ID:            uuid.New().String(),
			SaleNumber:    number,
			TotalAmount:   total,
			Discount:      in.Discount,
			Tax:           in.Tax,
			FinalAmount:   total.Sub(in.Discount).Add(in.Tax),
			PaymentMethod: paymentMethod,
			Notes:         in.Notes,
			CreatedAt:     now,
		}
		if err := repos.Sales.Create(ctx, sale); err != nil {
			return err
		}

		// 3) Ítems + salida de stock referenciando la venta.
		for i := range lines {
			line := &lines[i]
			line.SaleID = sale.ID
			if err := repos.Sales.CreateItem(ctx, line); err != nil {
				return err
			}
			if _, _, err := uc.engine.ApplyMovement(ctx, repos, inventory.MovementInput{
				ProductID:   line.ProductID,
				Type:        entity.MovementTypeOut,
				Quantity:    line.Quantity,
				ReferenceID: &sale.ID,
				Notes:       "Sale: " + sale.SaleNumber,
			}); err != nil {
				return err
			}
			line.ProductName = products[line.ProductID].Name
		}
		sale.Items = lines
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("sales.CreateSale: %w", err)
	}

	uc.log.Info().
		Str("sale_id", sale.ID).
		Str("sale_number", sale.SaleNumber).
		Int("items", len(sale.Items)).
		Str("final_amount", sale.FinalAmount.StringFixed(2)).
		Msg("venta creada")
	uc.invalidateKPIs(ctx)
	return ToSaleResponse(sale), nil
}

// nextSaleNumber SALE-YYYYMMDDHHMMSS; si ya existe en ese segundo se agrega -2, -3...
func (uc *UseCase) nextSaleNumber(ctx context.Context, repo repository.SaleRepository, now time.Time) (string, error) {
	base := "SALE-" + now.Format("20060102150405")
	number := base
	for n := 2; ; n++ {
		exists, err := repo.NumberExists(ctx, number)
		if err != nil {
			return "", err
		}
		if !exists {
			return number, nil
		}
		number = fmt.Sprintf("%s-%d", base, n)
	}
}

// CancelSale reingresa el stock de cada línea y elimina la venta (los ítems caen en cascada).
func (uc *UseCase) CancelSale(ctx context.Context, saleID string) error {
	var sale *entity.Sale
	err := uc.txRunner.Run(ctx, func(repos repository.Repositories) error {
		var err error
		sale, err = repos.Sales.GetForUpdate(ctx, saleID)
		if err != nil {
			return err
		}
		if sale == nil {
			return domain.NotFound("sale", saleID)
		}
		// Borrar primero: una venta ya cancelada devuelve NotFound y no reingresa stock.
		if err := repos.Sales.Delete(ctx, sale.ID); err != nil {
			return err
		}
		for _, item := range sale.Items {
			if _, _, err := uc.engine.ApplyMovement(ctx, repos, inventory.MovementInput{
				ProductID:   item.ProductID,
				Type:        entity.MovementTypeIn,
				Quantity:    item.Quantity,
				ReferenceID: &sale.ID,
				Notes:       "Sale cancelled: " + sale.SaleNumber,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("sales.CancelSale: %w", err)
	}
	uc.log.Info().Str("sale_id", sale.ID).Str("sale_number", sale.SaleNumber).Msg("venta cancelada")
	uc.invalidateKPIs(ctx)
	return nil
}

// Get devuelve la venta con sus ítems.
func (uc *UseCase) Get(ctx context.Context, saleID string) (*dto.SaleResponse, error) {
	sale, err := uc.saleRepo.GetByID(ctx, saleID)
	if err != nil {
		return nil, fmt.Errorf("sales.Get: %w", err)
	}
	if sale == nil {
		return nil, domain.NotFound("sale", saleID)
	}
	return ToSaleResponse(sale), nil
}

// List ventas más recientes primero; start/end opcionales sobre created_at.
func (uc *UseCase) List(ctx context.Context, start, end *time.Time, page dto.PageRequest) (*dto.SaleListResponse, error) {
	page.DefaultPage()
	list, total, err := uc.saleRepo.List(ctx, repository.SaleFilter{Start: start, End: end, Limit: page.Limit, Offset: page.Offset})
	if err != nil {
		return nil, fmt.Errorf("sales.List: %w", err)
	}
	items := make([]dto.SaleResponse, 0, len(list))
	for _, s := range list {
		items = append(items, *ToSaleResponse(s))
	}
	return &dto.SaleListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	}, nil
}

// TodaySummary cantidad y monto de las ventas del día en curso.
func (uc *UseCase) TodaySummary(ctx context.Context) (*dto.SalesSummaryResponse, error) {
	now := uc.now().In(uc.loc)
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, uc.loc)
	return uc.summary(ctx, "today", start, start.AddDate(0, 0, 1))
}

// MonthlySummary cantidad y monto de las ventas del mes en curso.
func (uc *UseCase) MonthlySummary(ctx context.Context) (*dto.SalesSummaryResponse, error) {
	now := uc.now().In(uc.loc)
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, uc.loc)
	return uc.summary(ctx, "month", start, start.AddDate(0, 1, 0))
}

func (uc *UseCase) summary(ctx context.Context, period string, from, to time.Time) (*dto.SalesSummaryResponse, error) {
	count, total, err := uc.saleRepo.Summary(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("sales.summary(%s): %w", period, err)
	}
	return &dto.SalesSummaryResponse{
		Period:      period,
		Start:       from,
		End:         to,
		SalesCount:  count,
		TotalAmount: total.Round(2),
	}, nil
}

// InvoicePDF genera el comprobante de la venta con los datos de la empresa.
func (uc *UseCase) InvoicePDF(ctx context.Context, saleID string) ([]byte, string, error) {
	sale, err := uc.saleRepo.GetByID(ctx, saleID)
	if err != nil {
		return nil, "", fmt.Errorf("sales.InvoicePDF: %w", err)
	}
	if sale == nil {
		return nil, "", domain.NotFound("sale", saleID)
	}
	company, err := uc.company.CompanyInfo(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("sales.InvoicePDF: empresa: %w", err)
	}
	pdf, err := uc.invoices.GenerateSaleInvoice(sale, company)
	if err != nil {
		return nil, "", fmt.Errorf("sales.InvoicePDF: %w", err)
	}
	return pdf, fmt.Sprintf("invoice_%s.pdf", sale.SaleNumber), nil
}

// ToSaleResponse convierte la entidad al DTO de salida.
func ToSaleResponse(s *entity.Sale) *dto.SaleResponse {
	items := make([]dto.SaleItemResponse, 0, len(s.Items))
	for _, it := range s.Items {
		items = append(items, dto.SaleItemResponse{
			ID:          it.ID,
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			TotalPrice:  it.TotalPrice,
		})
	}
	return &dto.SaleResponse{
		ID:            s.ID,
		SaleNumber:    s.SaleNumber,
		TotalAmount:   s.TotalAmount,
		Discount:      s.Discount,
		Tax:           s.Tax,
		FinalAmount:   s.FinalAmount,
		PaymentMethod: s.PaymentMethod,
		Notes:         s.Notes,
		CreatedAt:     s.CreatedAt,
		Items:         items,
	}
}
