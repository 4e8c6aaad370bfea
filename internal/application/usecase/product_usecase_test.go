package usecase_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-inventario-api/internal/application/dto"
	"github.com/jhoicas/pos-inventario-api/internal/application/inventory"
	"github.com/jhoicas/pos-inventario-api/internal/application/settings"
	"github.com/jhoicas/pos-inventario-api/internal/application/usecase"
	"github.com/jhoicas/pos-inventario-api/internal/domain"
	"github.com/jhoicas/pos-inventario-api/internal/infrastructure/memory"
)

func newProductUC(store *memory.Store) *usecase.ProductUseCase {
	repos := store.Repositories()
	return usecase.NewProductUseCase(store, inventory.NewEngine(), repos.Products, repos.Categories, nil, zerolog.Nop())
}

func strPtr(s string) *string { return &s }

func TestProductCreate_StockInicialGeneraMovimiento(t *testing.T) {
	store := memory.NewStore()
	uc := newProductUC(store)

	p, err := uc.Create(context.Background(), dto.CreateProductRequest{
		Name: "Arroz 1kg", SKU: "ARZ-1", Price: decimal.NewFromInt(2), StockQuantity: 15,
	})
	require.NoError(t, err)

	assert.Equal(t, 15, p.StockQuantity)
	assert.Equal(t, 10, p.MinStockLevel)
	assert.Equal(t, "pcs", p.Unit)
	assert.True(t, p.IsActive)
	assert.False(t, p.IsLowStock)

	movs, err := store.Repositories().Movements.ListByProduct(context.Background(), p.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.Equal(t, 0, movs[0].PreviousStock)
	assert.Equal(t, 15, movs[0].NewStock)
	assert.Equal(t, "Initial stock", movs[0].Notes)
}

func TestProductCreate_MinimoPorDefectoDesdeSettings(t *testing.T) {
	store := memory.NewStore()
	repos := store.Repositories()
	cfg := settings.NewUseCase(store, repos.Settings, zerolog.Nop())
	uc := usecase.NewProductUseCase(store, inventory.NewEngine(), repos.Products, repos.Categories, cfg, zerolog.Nop())
	ctx := context.Background()

	_, err := cfg.Update(ctx, settings.KeyLowStockThreshold, "25", "")
	require.NoError(t, err)

	p, err := uc.Create(ctx, dto.CreateProductRequest{Name: "Azúcar", SKU: "AZU-1", StockQuantity: 20})
	require.NoError(t, err)
	assert.Equal(t, 25, p.MinStockLevel)
	assert.True(t, p.IsLowStock)

	explicit := 3
	p, err = uc.Create(ctx, dto.CreateProductRequest{Name: "Café", SKU: "CAF-1", StockQuantity: 20, MinStockLevel: &explicit})
	require.NoError(t, err)
	assert.Equal(t, 3, p.MinStockLevel, "el valor explícito gana sobre el setting")
}

func TestProductCreate_SinStockNoRegistraMovimiento(t *testing.T) {
	store := memory.NewStore()
	uc := newProductUC(store)

	p, err := uc.Create(context.Background(), dto.CreateProductRequest{Name: "Sal", SKU: "SAL-1"})
	require.NoError(t, err)
	assert.True(t, p.IsLowStock)

	movs, err := store.Repositories().Movements.ListByProduct(context.Background(), p.ID, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, movs)
}

func TestProductCreate_Errores(t *testing.T) {
	store := memory.NewStore()
	uc := newProductUC(store)
	_, err := uc.Create(context.Background(), dto.CreateProductRequest{Name: "A", SKU: "DUP", Barcode: strPtr("779")})
	require.NoError(t, err)

	_, err = uc.Create(context.Background(), dto.CreateProductRequest{Name: "B", SKU: "DUP"})
	assert.True(t, errors.Is(err, domain.ErrDuplicate), "sku duplicado")

	_, err = uc.Create(context.Background(), dto.CreateProductRequest{Name: "C", SKU: "C-1", Barcode: strPtr("779")})
	assert.True(t, errors.Is(err, domain.ErrDuplicate), "barcode duplicado")

	_, err = uc.Create(context.Background(), dto.CreateProductRequest{Name: "", SKU: "X"})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	_, err = uc.Create(context.Background(), dto.CreateProductRequest{Name: "D", SKU: "D-1", StockQuantity: -1})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	_, err = uc.Create(context.Background(), dto.CreateProductRequest{Name: "E", SKU: "E-1", CategoryID: "nada"})
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestProductUpdate_NoTocaStock(t *testing.T) {
	store := memory.NewStore()
	uc := newProductUC(store)
	p, err := uc.Create(context.Background(), dto.CreateProductRequest{Name: "Aceite", SKU: "ACE-1", StockQuantity: 4})
	require.NoError(t, err)

	price := decimal.RequireFromString("9.90")
	minStock := 2
	updated, err := uc.Update(context.Background(), p.ID, dto.UpdateProductRequest{Price: &price, MinStockLevel: &minStock})
	require.NoError(t, err)
	assert.True(t, price.Equal(updated.Price))
	assert.Equal(t, 4, updated.StockQuantity)
	assert.False(t, updated.IsLowStock)

	_, err = uc.Update(context.Background(), "nada", dto.UpdateProductRequest{})
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestProductDelete_SoftDeleteYBarcode(t *testing.T) {
	store := memory.NewStore()
	uc := newProductUC(store)
	p, err := uc.Create(context.Background(), dto.CreateProductRequest{Name: "Café", SKU: "CAF-1", Barcode: strPtr(" 7791 ")})
	require.NoError(t, err)

	found, err := uc.GetByBarcode(context.Background(), "7791")
	require.NoError(t, err)
	assert.Equal(t, p.ID, found.ID)

	require.NoError(t, uc.Delete(context.Background(), p.ID))
	got, err := uc.GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	active, err := uc.List(context.Background(), dto.ProductListRequest{ActiveOnly: true})
	require.NoError(t, err)
	assert.Equal(t, 0, active.Page.Total)

	all, err := uc.List(context.Background(), dto.ProductListRequest{Search: "caf"})
	require.NoError(t, err)
	assert.Equal(t, 1, all.Page.Total)
}

func TestCategory_CRUDYBorradoBloqueado(t *testing.T) {
	store := memory.NewStore()
	repos := store.Repositories()
	cats := usecase.NewCategoryUseCase(repos.Categories, repos.Products)
	products := newProductUC(store)

	c, err := cats.Create(context.Background(), dto.CategoryRequest{Name: "Bebidas"})
	require.NoError(t, err)
	assert.False(t, c.IsActive)

	_, err = cats.Create(context.Background(), dto.CategoryRequest{Name: "Bebidas"})
	assert.True(t, errors.Is(err, domain.ErrDuplicate))

	_, err = products.Create(context.Background(), dto.CreateProductRequest{Name: "Agua", SKU: "AG-1", CategoryID: c.ID})
	require.NoError(t, err)

	got, err := cats.Get(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.ProductCount)
	assert.True(t, got.IsActive)

	err = cats.Delete(context.Background(), c.ID)
	assert.True(t, errors.Is(err, domain.ErrConflict))

	empty, err := cats.Create(context.Background(), dto.CategoryRequest{Name: "Limpieza"})
	require.NoError(t, err)
	require.NoError(t, cats.Delete(context.Background(), empty.ID))
	assert.True(t, errors.Is(cats.Delete(context.Background(), empty.ID), domain.ErrNotFound))
}

func TestImageUpload(t *testing.T) {
	dir := t.TempDir()
	uc := usecase.NewImageUploadUseCase(dir, 8)

	res, err := uc.Save(context.Background(), "foto.PNG", 4, bytes.NewReader([]byte("1234")))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(res.Filename, ".png"))
	assert.Equal(t, "/uploads/"+res.Filename, res.URL)
	data, err := os.ReadFile(filepath.Join(dir, res.Filename))
	require.NoError(t, err)
	assert.Equal(t, "1234", string(data))

	_, err = uc.Save(context.Background(), "script.exe", 4, bytes.NewReader([]byte("1234")))
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	_, err = uc.Save(context.Background(), "grande.jpg", 3, bytes.NewReader([]byte("123456789")))
	assert.True(t, errors.Is(err, domain.ErrInvalidInput), "tamaño real mayor al declarado")
}
