// Package storage implementa los destinos de backup: directorio local y S3.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/jhoicas/pos-inventario-api/internal/application/settings"
	"github.com/jhoicas/pos-inventario-api/internal/domain"
)

var _ settings.BackupStore = (*LocalBackupStore)(nil)

// LocalBackupStore guarda backups como archivos en un directorio.
type LocalBackupStore struct {
	dir string
}

// NewLocalBackupStore crea el directorio si no existe.
func NewLocalBackupStore(dir string) (*LocalBackupStore, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("storage: crear %s: %w", dir, err)
	}
	return &LocalBackupStore{dir: dir}, nil
}

func (s *LocalBackupStore) path(name string) string {
	return filepath.Join(s.dir, filepath.Base(name))
}

// Save escribe a un temporal y renombra, así un backup a medias nunca queda listado.
func (s *LocalBackupStore) Save(_ context.Context, name string, data []byte) error {
	tmp, err := os.CreateTemp(s.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("storage: escribir %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("storage: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path(name)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("storage: %w", err)
	}
	return nil
}

func (s *LocalBackupStore) Load(_ context.Context, name string) ([]byte, error) {
	data, err := os.ReadFile(s.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, domain.NotFound("backup", name)
	}
	if err != nil {
		return nil, fmt.Errorf("storage: leer %s: %w", name, err)
	}
	return data, nil
}

func (s *LocalBackupStore) List(_ context.Context) ([]settings.BackupObject, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("storage: listar %s: %w", s.dir, err)
	}
	out := make([]settings.BackupObject, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".zip" {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("storage: %w", err)
		}
		out = append(out, settings.BackupObject{Name: e.Name(), Size: info.Size(), ModifiedAt: info.ModTime()})
	}
	return out, nil
}
