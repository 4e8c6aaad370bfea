package inventory

import (
	"context"

	"github.com/jhoicas/pos-inventario-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Garantiza atomicidad para el ledger: Commit si fn devuelve nil, Rollback en cualquier otro caso.
type TxRunner interface {
	Run(ctx context.Context, fn func(repos repository.Repositories) error) error
}

// KPIInvalidator descarta los agregados cacheados tras un cambio confirmado en ventas o devoluciones.
type KPIInvalidator interface {
	InvalidateKPIs(ctx context.Context)
}
