package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/pos-inventario-api/internal/application/dto"
	"github.com/jhoicas/pos-inventario-api/internal/application/inventory"
	"github.com/jhoicas/pos-inventario-api/internal/domain"
	"github.com/jhoicas/pos-inventario-api/internal/domain/entity"
	"github.com/jhoicas/pos-inventario-api/internal/domain/repository"
)

// StockDefaults provee el min_stock_level por defecto (setting low_stock_threshold).
type StockDefaults interface {
	LowStockThreshold(ctx context.Context) int
}

// ProductUseCase casos de uso CRUD para productos. El stock solo cambia vía movimientos.
type ProductUseCase struct {
	txRunner     inventory.TxRunner
	engine       *inventory.Engine
	repo         repository.ProductRepository
	categoryRepo repository.CategoryRepository
	defaults     StockDefaults
	log          zerolog.Logger
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(
	txRunner inventory.TxRunner,
	engine *inventory.Engine,
	repo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	defaults StockDefaults,
	log zerolog.Logger,
) *ProductUseCase {
	return &ProductUseCase{
		txRunner:     txRunner,
		engine:       engine,
		repo:         repo,
		categoryRepo: categoryRepo,
		defaults:     defaults,
		log:          log,
	}
}

// Create crea un producto. Si trae stock inicial se registra como movimiento "in"
// en la misma transacción, así el ledger explica el stock desde el primer día.
func (uc *ProductUseCase) Create(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.SKU = strings.TrimSpace(in.SKU)
	if in.Name == "" || in.SKU == "" {
		return nil, domain.Invalid("name y sku son requeridos")
	}
	if in.Price.IsNegative() || in.Cost.IsNegative() {
		return nil, domain.Invalid("price y cost no pueden ser negativos")
	}
	if in.StockQuantity < 0 {
		return nil, domain.Invalid("stock_quantity no puede ser negativo")
	}
	minStock := entity.DefaultMinStockLevel
	if uc.defaults != nil {
		minStock = uc.defaults.LowStockThreshold(ctx)
	}
	if in.MinStockLevel != nil {
		if *in.MinStockLevel < 0 {
			return nil, domain.Invalid("min_stock_level no puede ser negativo")
		}
		minStock = *in.MinStockLevel
	}
	unit := in.Unit
	if unit == "" {
		unit = entity.DefaultUnit
	}

	now := time.Now()
	product := &entity.Product{
		ID:            uuid.New().String(),
		Name:          in.Name,
		Description:   in.Description,
		SKU:           in.SKU,
		Barcode:       normalizeBarcode(in.Barcode),
		CategoryID:    in.CategoryID,
		Price:         in.Price,
		Cost:          in.Cost,
		MinStockLevel: minStock,
		Unit:          unit,
		ImageURL:      in.ImageURL,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err := uc.txRunner.Run(ctx, func(repos repository.Repositories) error {
		if err := checkCategory(ctx, repos.Categories, product.CategoryID); err != nil {
			return err
		}
		if err := repos.Products.Create(ctx, product); err != nil {
			return err
		}
		if in.StockQuantity > 0 {
			stock, _, err := uc.engine.ApplyMovement(ctx, repos, inventory.MovementInput{
				ProductID: product.ID,
				Type:      entity.MovementTypeIn,
				Quantity:  in.StockQuantity,
				Notes:     "Initial stock",
			})
			if err != nil {
				return err
			}
			product.StockQuantity = stock
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("products.Create: %w", err)
	}
	uc.log.Info().Str("product_id", product.ID).Str("sku", product.SKU).Int("stock", product.StockQuantity).Msg("producto creado")
	return uc.GetByID(ctx, product.ID)
}

func normalizeBarcode(b *string) *string {
	if b == nil {
		return nil
	}
	v := strings.TrimSpace(*b)
	if v == "" {
		return nil
	}
	return &v
}

func checkCategory(ctx context.Context, repo repository.CategoryRepository, id string) error {
	if id == "" {
		return nil
	}
	c, err := repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if c == nil {
		return domain.NotFound("category", id)
	}
	return nil
}

// GetByID obtiene un producto por ID.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.NotFound("product", id)
	}
	return toProductResponse(product), nil
}

// GetByBarcode búsqueda para el lector de código de barras del punto de venta.
func (uc *ProductUseCase) GetByBarcode(ctx context.Context, barcode string) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByBarcode(ctx, barcode)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.NotFound("product", barcode)
	}
	return toProductResponse(product), nil
}

// Update actualiza un producto. No permite modificar Stock (se maneja vía movimientos).
func (uc *ProductUseCase) Update(ctx context.Context, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.NotFound("product", id)
	}
	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return nil, domain.Invalid("name no puede estar vacío")
		}
		product.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		product.Description = *in.Description
	}
	if in.SKU != nil {
		if strings.TrimSpace(*in.SKU) == "" {
			return nil, domain.Invalid("sku no puede estar vacío")
		}
		product.SKU = strings.TrimSpace(*in.SKU)
	}
	if in.Barcode != nil {
		product.Barcode = normalizeBarcode(in.Barcode)
	}
	if in.CategoryID != nil {
		if err := checkCategory(ctx, uc.categoryRepo, *in.CategoryID); err != nil {
			return nil, err
		}
		product.CategoryID = *in.CategoryID
	}
	if in.Price != nil {
		if in.Price.IsNegative() {
			return nil, domain.Invalid("price no puede ser negativo")
		}
		product.Price = *in.Price
	}
	if in.Cost != nil {
		if in.Cost.IsNegative() {
			return nil, domain.Invalid("cost no puede ser negativo")
		}
		product.Cost = *in.Cost
	}
	if in.MinStockLevel != nil {
		if *in.MinStockLevel < 0 {
			return nil, domain.Invalid("min_stock_level no puede ser negativo")
		}
		product.MinStockLevel = *in.MinStockLevel
	}
	if in.Unit != nil && *in.Unit != "" {
		product.Unit = *in.Unit
	}
	if in.ImageURL != nil {
		product.ImageURL = *in.ImageURL
	}
	if in.IsActive != nil {
		product.IsActive = *in.IsActive
	}
	product.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("products.Update: %w", err)
	}
	return uc.GetByID(ctx, id)
}

// List lista productos con búsqueda, categoría y paginación.
func (uc *ProductUseCase) List(ctx context.Context, in dto.ProductListRequest) (*dto.ProductListResponse, error) {
	in.DefaultPage()
	list, total, err := uc.repo.List(ctx, repository.ProductFilter{
		Search:     strings.TrimSpace(in.Search),
		CategoryID: in.CategoryID,
		ActiveOnly: in.ActiveOnly,
		Limit:      in.Limit,
		Offset:     in.Offset,
	})
	if err != nil {
		return nil, fmt.Errorf("products.List: %w", err)
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *toProductResponse(p))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: in.Limit, Offset: in.Offset, Total: total},
	}, nil
}

// Delete desactiva el producto (soft delete); su historial de movimientos se conserva.
func (uc *ProductUseCase) Delete(ctx context.Context, id string) error {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if product == nil {
		return domain.NotFound("product", id)
	}
	if err := uc.repo.SoftDelete(ctx, id); err != nil {
		return fmt.Errorf("products.Delete: %w", err)
	}
	uc.log.Info().Str("product_id", id).Msg("producto desactivado")
	return nil
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	return &dto.ProductResponse{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		SKU:           p.SKU,
		Barcode:       p.Barcode,
		CategoryID:    p.CategoryID,
		CategoryName:  p.CategoryName,
		Price:         p.Price,
		Cost:          p.Cost,
		StockQuantity: p.StockQuantity,
		MinStockLevel: p.MinStockLevel,
		Unit:          p.Unit,
		ImageURL:      p.ImageURL,
		IsActive:      p.IsActive,
		IsLowStock:    p.IsLowStock(),
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}
