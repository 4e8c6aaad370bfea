package settings

import (
	"context"
	"time"
)

// Snapshotter vuelca y restaura el estado completo de la base como un único archivo.
type Snapshotter interface {
	Dump(ctx context.Context) ([]byte, error)
	// Restore reemplaza todos los datos por los del snapshot en una sola transacción.
	Restore(ctx context.Context, data []byte) error
}

// BackupObject metadatos de un backup almacenado.
type BackupObject struct {
	Name       string
	Size       int64
	ModifiedAt time.Time
}

// BackupStore almacenamiento de archivos de backup (disco local o S3).
type BackupStore interface {
	Save(ctx context.Context, name string, data []byte) error
	// Load devuelve domain.ErrNotFound si el backup no existe.
	Load(ctx context.Context, name string) ([]byte, error)
	List(ctx context.Context) ([]BackupObject, error)
}
