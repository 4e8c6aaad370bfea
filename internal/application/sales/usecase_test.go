package sales_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-inventario-api/internal/application/dto"
	"github.com/jhoicas/pos-inventario-api/internal/application/inventory"
	"github.com/jhoicas/pos-inventario-api/internal/application/sales"
	"github.com/jhoicas/pos-inventario-api/internal/domain"
	"github.com/jhoicas/pos-inventario-api/internal/domain/entity"
	"github.com/jhoicas/pos-inventario-api/internal/domain/repository"
	"github.com/jhoicas/pos-inventario-api/internal/infrastructure/memory"
)

type fakeInvoices struct {
	sale    *entity.Sale
	company dto.CompanyInfo
}

func (f *fakeInvoices) GenerateSaleInvoice(sale *entity.Sale, company dto.CompanyInfo) ([]byte, error) {
	f.sale, f.company = sale, company
	return []byte("%PDF-fake"), nil
}

type fixedCompany struct{}

func (fixedCompany) CompanyInfo(context.Context) (dto.CompanyInfo, error) {
	return dto.CompanyInfo{Name: "Tienda Uno", CurrencySymbol: "Tk"}, nil
}

type fixture struct {
	store    *memory.Store
	uc       *sales.UseCase
	invoices *fakeInvoices
	now      time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	f := &fixture{
		store:    store,
		invoices: &fakeInvoices{},
		now:      time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC),
	}
	f.uc = sales.NewUseCase(store, inventory.NewEngine(), store.Repositories().Sales,
		f.invoices, fixedCompany{}, zerolog.Nop(), time.UTC)
	f.uc.SetClock(func() time.Time { return f.now })
	return f
}

func (f *fixture) product(t *testing.T, id string, stock int, price string) {
	t.Helper()
	err := f.store.Repositories().Products.Create(context.Background(), &entity.Product{
		ID:            id,
		Name:          "Producto " + id,
		SKU:           "SKU-" + id,
		Price:         decimal.RequireFromString(price),
		StockQuantity: stock,
		MinStockLevel: entity.DefaultMinStockLevel,
		Unit:          entity.DefaultUnit,
		IsActive:      true,
	})
	require.NoError(t, err)
}

func (f *fixture) stock(t *testing.T, id string) int {
	t.Helper()
	p, err := f.store.Repositories().Products.GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p.StockQuantity
}

func (f *fixture) movements(t *testing.T, id string) []*entity.StockMovement {
	t.Helper()
	list, err := f.store.Repositories().Movements.ListByProduct(context.Background(), id, 100, 0)
	require.NoError(t, err)
	return list
}

func saleOf(productID string, qty int, price string) dto.CreateSaleRequest {
	return dto.CreateSaleRequest{Items: []dto.SaleItemRequest{
		{ProductID: productID, Quantity: qty, UnitPrice: decimal.RequireFromString(price)},
	}}
}

func TestCreateSale_DescuentaStockYRegistraMovimiento(t *testing.T) {
	f := newFixture(t)
	f.product(t, "p1", 10, "2.50")

	sale, err := f.uc.CreateSale(context.Background(), saleOf("p1", 4, "2.50"))
	require.NoError(t, err)

	assert.Equal(t, "SALE-20260314103000", sale.SaleNumber)
	assert.Equal(t, entity.DefaultPaymentMethod, sale.PaymentMethod)
	assert.True(t, decimal.RequireFromString("10").Equal(sale.TotalAmount))
	assert.True(t, sale.TotalAmount.Equal(sale.FinalAmount))
	require.Len(t, sale.Items, 1)
	assert.Equal(t, "Producto p1", sale.Items[0].ProductName)

	assert.Equal(t, 6, f.stock(t, "p1"))
	movs := f.movements(t, "p1")
	require.Len(t, movs, 1)
	assert.Equal(t, entity.MovementTypeOut, movs[0].MovementType)
	assert.Equal(t, 10, movs[0].PreviousStock)
	assert.Equal(t, 6, movs[0].NewStock)
	require.NotNil(t, movs[0].ReferenceID)
	assert.Equal(t, sale.ID, *movs[0].ReferenceID)
}

func TestCreateSale_StockInsuficienteNoPersisteNada(t *testing.T) {
	f := newFixture(t)
	f.product(t, "p1", 6, "1")

	_, err := f.uc.CreateSale(context.Background(), saleOf("p1", 7, "1"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))

	var ee *domain.EntityError
	require.True(t, errors.As(err, &ee))
	assert.Equal(t, "p1", ee.ID)

	assert.Equal(t, 6, f.stock(t, "p1"))
	assert.Empty(t, f.movements(t, "p1"))
	list, err := f.uc.List(context.Background(), nil, nil, dto.PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, 0, list.Page.Total)
}

func TestCreateSale_LineasRepetidasSeSumanEnLaValidacion(t *testing.T) {
	f := newFixture(t)
	f.product(t, "p1", 10, "1")

	req := dto.CreateSaleRequest{Items: []dto.SaleItemRequest{
		{ProductID: "p1", Quantity: 6, UnitPrice: decimal.NewFromInt(1)},
		{ProductID: "p1", Quantity: 6, UnitPrice: decimal.NewFromInt(1)},
	}}
	_, err := f.uc.CreateSale(context.Background(), req)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))
	assert.Equal(t, 10, f.stock(t, "p1"))
}

func TestCreateSale_FallaEnSegundaLineaHaceRollback(t *testing.T) {
	f := newFixture(t)
	f.product(t, "p1", 10, "1")

	req := dto.CreateSaleRequest{Items: []dto.SaleItemRequest{
		{ProductID: "p1", Quantity: 2, UnitPrice: decimal.NewFromInt(1)},
		{ProductID: "no-existe", Quantity: 1, UnitPrice: decimal.NewFromInt(1)},
	}}
	_, err := f.uc.CreateSale(context.Background(), req)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.Equal(t, 10, f.stock(t, "p1"))
	assert.Empty(t, f.movements(t, "p1"))
}

func TestCreateSale_Validaciones(t *testing.T) {
	f := newFixture(t)
	f.product(t, "p1", 10, "1")

	cases := map[string]dto.CreateSaleRequest{
		"sin ítems":         {},
		"cantidad cero":     saleOf("p1", 0, "1"),
		"cantidad negativa": saleOf("p1", -2, "1"),
		"precio negativo":   saleOf("p1", 1, "-1"),
		"sin producto":      saleOf("", 1, "1"),
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.uc.CreateSale(context.Background(), req)
			assert.True(t, errors.Is(err, domain.ErrInvalidInput))
		})
	}
	assert.Equal(t, 10, f.stock(t, "p1"))
}

func TestCreateSale_FinalAmountPuedeSerNegativo(t *testing.T) {
	f := newFixture(t)
	f.product(t, "p1", 10, "5")

	req := saleOf("p1", 1, "5")
	req.Discount = decimal.NewFromInt(8)
	req.Tax = decimal.NewFromInt(1)
	sale, err := f.uc.CreateSale(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(-2).Equal(sale.FinalAmount), sale.FinalAmount.String())
}

func TestCreateSale_PrecioCeroUsaPrecioDelProducto(t *testing.T) {
	f := newFixture(t)
	f.product(t, "p1", 10, "3.25")

	sale, err := f.uc.CreateSale(context.Background(), saleOf("p1", 2, "0"))
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("6.50").Equal(sale.TotalAmount))
}

func TestCreateSale_NumeroRepetidoEnElMismoSegundo(t *testing.T) {
	f := newFixture(t)
	f.product(t, "p1", 10, "1")

	first, err := f.uc.CreateSale(context.Background(), saleOf("p1", 1, "1"))
	require.NoError(t, err)
	second, err := f.uc.CreateSale(context.Background(), saleOf("p1", 1, "1"))
	require.NoError(t, err)

	assert.Equal(t, "SALE-20260314103000", first.SaleNumber)
	assert.Equal(t, "SALE-20260314103000-2", second.SaleNumber)
}

func TestCancelSale_ReingresaStock(t *testing.T) {
	f := newFixture(t)
	f.product(t, "p1", 10, "1")

	sale, err := f.uc.CreateSale(context.Background(), saleOf("p1", 4, "1"))
	require.NoError(t, err)
	require.Equal(t, 6, f.stock(t, "p1"))

	require.NoError(t, f.uc.CancelSale(context.Background(), sale.ID))
	assert.Equal(t, 10, f.stock(t, "p1"))

	movs := f.movements(t, "p1")
	require.Len(t, movs, 2)
	last := movs[1]
	assert.Equal(t, entity.MovementTypeIn, last.MovementType)
	assert.Equal(t, 6, last.PreviousStock)
	assert.Equal(t, 10, last.NewStock)
	assert.Equal(t, sale.ID, *last.ReferenceID)
	assert.Equal(t, "Sale cancelled: "+sale.SaleNumber, last.Notes)

	_, err = f.uc.Get(context.Background(), sale.ID)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestCancelSale_NoExiste(t *testing.T) {
	f := newFixture(t)
	err := f.uc.CancelSale(context.Background(), "nada")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

// staleSales devuelve siempre la venta leída antes de la primera cancelación,
// como la vería una segunda transacción concurrente.
type staleSales struct {
	repository.SaleRepository
	sale *entity.Sale
}

func (s staleSales) GetForUpdate(context.Context, string) (*entity.Sale, error) {
	v := *s.sale
	return &v, nil
}

type staleTx struct {
	store *memory.Store
	sale  *entity.Sale
}

func (s staleTx) Run(ctx context.Context, fn func(repository.Repositories) error) error {
	return s.store.Run(ctx, func(repos repository.Repositories) error {
		repos.Sales = staleSales{SaleRepository: repos.Sales, sale: s.sale}
		return fn(repos)
	})
}

func TestCancelSale_DobleCancelacionNoReingresaDosVeces(t *testing.T) {
	f := newFixture(t)
	f.product(t, "p1", 10, "1")
	ctx := context.Background()

	created, err := f.uc.CreateSale(ctx, saleOf("p1", 4, "1"))
	require.NoError(t, err)
	before, err := f.store.Repositories().Sales.GetByID(ctx, created.ID)
	require.NoError(t, err)

	require.NoError(t, f.uc.CancelSale(ctx, created.ID))
	require.Equal(t, 10, f.stock(t, "p1"))

	late := sales.NewUseCase(staleTx{store: f.store, sale: before}, inventory.NewEngine(),
		f.store.Repositories().Sales, f.invoices, fixedCompany{}, zerolog.Nop(), time.UTC)
	err = late.CancelSale(ctx, created.ID)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.Equal(t, 10, f.stock(t, "p1"))
	assert.Len(t, f.movements(t, "p1"), 2)
}

func TestCancelSale_SegundaCancelacionNoExiste(t *testing.T) {
	f := newFixture(t)
	f.product(t, "p1", 10, "1")
	sale, err := f.uc.CreateSale(context.Background(), saleOf("p1", 4, "1"))
	require.NoError(t, err)

	require.NoError(t, f.uc.CancelSale(context.Background(), sale.ID))
	err = f.uc.CancelSale(context.Background(), sale.ID)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.Equal(t, 10, f.stock(t, "p1"))
}

func TestSummaries(t *testing.T) {
	f := newFixture(t)
	f.product(t, "p1", 100, "10")

	f.now = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	_, err := f.uc.CreateSale(context.Background(), saleOf("p1", 1, "10"))
	require.NoError(t, err)
	f.now = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	_, err = f.uc.CreateSale(context.Background(), saleOf("p1", 2, "10"))
	require.NoError(t, err)

	today, err := f.uc.TodaySummary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, today.SalesCount)
	assert.True(t, decimal.NewFromInt(20).Equal(today.TotalAmount))

	month, err := f.uc.MonthlySummary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, month.SalesCount)
	assert.True(t, decimal.NewFromInt(30).Equal(month.TotalAmount))
}

func TestList_FiltraPorRangoYOrdenaDesc(t *testing.T) {
	f := newFixture(t)
	f.product(t, "p1", 100, "1")
	for day := 1; day <= 3; day++ {
		f.now = time.Date(2026, 3, day, 12, 0, 0, 0, time.UTC)
		_, err := f.uc.CreateSale(context.Background(), saleOf("p1", 1, "1"))
		require.NoError(t, err)
	}

	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	list, err := f.uc.List(context.Background(), &start, nil, dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, list.Items, 2)
	assert.Equal(t, "SALE-20260303120000", list.Items[0].SaleNumber)
	assert.Equal(t, 2, list.Page.Total)
}

func TestInvoicePDF(t *testing.T) {
	f := newFixture(t)
	f.product(t, "p1", 10, "1")
	sale, err := f.uc.CreateSale(context.Background(), saleOf("p1", 1, "1"))
	require.NoError(t, err)

	pdf, name, err := f.uc.InvoicePDF(context.Background(), sale.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-fake"), pdf)
	assert.Equal(t, "invoice_"+sale.SaleNumber+".pdf", name)
	assert.Equal(t, "Tienda Uno", f.invoices.company.Name)
	require.Len(t, f.invoices.sale.Items, 1)

	_, _, err = f.uc.InvoicePDF(context.Background(), "nada")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

type countingKPIs struct{ calls int }

func (c *countingKPIs) InvalidateKPIs(context.Context) { c.calls++ }

func TestKPIs_SeInvalidanTrasVentaYCancelacion(t *testing.T) {
	f := newFixture(t)
	f.product(t, "p1", 10, "1")
	kpis := &countingKPIs{}
	f.uc.SetKPIInvalidator(kpis)

	_, err := f.uc.CreateSale(context.Background(), saleOf("p1", 20, "1"))
	require.Error(t, err)
	assert.Equal(t, 0, kpis.calls, "una venta fallida no invalida")

	sale, err := f.uc.CreateSale(context.Background(), saleOf("p1", 2, "1"))
	require.NoError(t, err)
	assert.Equal(t, 1, kpis.calls)

	require.NoError(t, f.uc.CancelSale(context.Background(), sale.ID))
	assert.Equal(t, 2, kpis.calls)

	require.Error(t, f.uc.CancelSale(context.Background(), sale.ID))
	assert.Equal(t, 2, kpis.calls)
}
