package repository

import (
	"context"

	"github.com/jhoicas/pos-inventario-api/internal/domain/entity"
)

// SettingRepository define el puerto de persistencia para la configuración clave/valor.
type SettingRepository interface {
	Get(ctx context.Context, key string) (*entity.Setting, error)
	List(ctx context.Context) ([]*entity.Setting, error)
	// Insert devuelve domain.ErrDuplicate si la clave ya existe.
	Insert(ctx context.Context, setting *entity.Setting) error
	// Upsert crea o actualiza; si Description viene vacía conserva la existente.
	Upsert(ctx context.Context, setting *entity.Setting) error
	Delete(ctx context.Context, key string) error
	DeleteAll(ctx context.Context) error
}
