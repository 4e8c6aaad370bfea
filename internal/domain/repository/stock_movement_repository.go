package repository

import (
	"context"

	"github.com/jhoicas/pos-inventario-api/internal/domain/entity"
)

// MovementFilter filtros del historial global de movimientos.
type MovementFilter struct {
	ProductID    string
	MovementType string
	Limit        int
	Offset       int
}

// StockMovementRepository puerto del ledger. Solo inserta y consulta: los
// movimientos nunca se actualizan ni se borran.
type StockMovementRepository interface {
	Create(ctx context.Context, movement *entity.StockMovement) error
	// ListByProduct devuelve el historial de un producto en orden cronológico.
	ListByProduct(ctx context.Context, productID string, limit, offset int) ([]*entity.StockMovement, error)
	// List devuelve movimientos (más recientes primero) según el filtro.
	List(ctx context.Context, f MovementFilter) ([]*entity.StockMovement, error)
}
