package repository

import (
	"context"
	"time"

	"github.com/jhoicas/pos-inventario-api/internal/domain/entity"
)

// ReturnFilter filtros del listado de devoluciones.
type ReturnFilter struct {
	Status string
	Limit  int
	Offset int
}

// ReturnRepository define el puerto de persistencia para Return y ReturnItem.
type ReturnRepository interface {
	Create(ctx context.Context, ret *entity.Return) error
	CreateItem(ctx context.Context, item *entity.ReturnItem) error
	// GetByID carga la devolución con sus ítems; (nil, nil) si no existe.
	GetByID(ctx context.Context, id string) (*entity.Return, error)
	// GetForUpdate igual que GetByID pero bloquea la fila de la devolución.
	GetForUpdate(ctx context.Context, id string) (*entity.Return, error)
	List(ctx context.Context, f ReturnFilter) ([]*entity.Return, int, error)
	UpdateStatus(ctx context.Context, id, status string, processedAt *time.Time) error
	Delete(ctx context.Context, id string) error
}
