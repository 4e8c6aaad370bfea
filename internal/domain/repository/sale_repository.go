package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-inventario-api/internal/domain/entity"
)

// SaleFilter filtros del listado de ventas (rango sobre created_at).
type SaleFilter struct {
	Start  *time.Time
	End    *time.Time
	Limit  int
	Offset int
}

// SaleRepository define el puerto de persistencia para Sale y SalesItem.
type SaleRepository interface {
	Create(ctx context.Context, sale *entity.Sale) error
	CreateItem(ctx context.Context, item *entity.SalesItem) error
	// GetByID carga la venta con sus ítems; (nil, nil) si no existe.
	GetByID(ctx context.Context, id string) (*entity.Sale, error)
	// GetForUpdate como GetByID pero bloquea la fila hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, id string) (*entity.Sale, error)
	// NumberExists indica si el número de venta ya fue usado.
	NumberExists(ctx context.Context, saleNumber string) (bool, error)
	List(ctx context.Context, f SaleFilter) ([]*entity.Sale, int, error)
	// Delete borra la venta; los ítems se eliminan en cascada. NotFound si ya no existe.
	Delete(ctx context.Context, id string) error
	// Summary devuelve cantidad de ventas y suma de final_amount en [from, to).
	Summary(ctx context.Context, from, to time.Time) (count int, total decimal.Decimal, err error)
}
