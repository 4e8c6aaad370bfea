package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/pos-inventario-api/internal/domain"
	"github.com/jhoicas/pos-inventario-api/internal/domain/entity"
	domaininv "github.com/jhoicas/pos-inventario-api/internal/domain/inventory"
	"github.com/jhoicas/pos-inventario-api/internal/domain/repository"
)

// MovementInput entrada del motor de ledger.
type MovementInput struct {
	ProductID   string
	Type        string // in, out, adjustment
	Quantity    int
	ReferenceID *string // venta o devolución
	Notes       string
}

// Engine aplica movimientos de stock. No abre ni confirma transacciones:
// opera siempre con los repositorios de la transacción del llamador.
type Engine struct {
	now func() time.Time
}

// NewEngine construye el motor con el reloj del sistema.
func NewEngine() *Engine {
	return &Engine{now: time.Now}
}

// ApplyMovement bloquea la fila del producto (GetForUpdate), calcula el nuevo stock,
// lo persiste y agrega exactamente un StockMovement con el snapshot anterior/nuevo.
func (e *Engine) ApplyMovement(
	ctx context.Context,
	repos repository.Repositories,
	in MovementInput,
) (int, *entity.StockMovement, error) {
	product, err := repos.Products.GetForUpdate(ctx, in.ProductID)
	if err != nil {
		return 0, nil, err
	}
	if product == nil {
		return 0, nil, domain.NotFound("product", in.ProductID)
	}

	previous := product.StockQuantity
	next, err := domaininv.NextStock(previous, in.Type, in.Quantity)
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientStock) {
			return previous, nil, domain.InsufficientStock(product.ID, product.Name, previous, in.Quantity)
		}
		return previous, nil, err
	}

	if err := repos.Products.UpdateStock(ctx, product.ID, next); err != nil {
		return previous, nil, err
	}
	product.StockQuantity = next

	mov := &entity.StockMovement{
		ID:            uuid.New().String(),
		ProductID:     product.ID,
		MovementType:  in.Type,
		Quantity:      in.Quantity,
		PreviousStock: previous,
		NewStock:      next,
		ReferenceID:   in.ReferenceID,
		Notes:         in.Notes,
		CreatedAt:     e.now(),
	}
	if err := repos.Movements.Create(ctx, mov); err != nil {
		return previous, nil, fmt.Errorf("ledger: registrar movimiento: %w", err)
	}
	return next, mov, nil
}
