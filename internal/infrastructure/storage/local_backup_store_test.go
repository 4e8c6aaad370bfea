package storage_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-inventario-api/internal/domain"
	"github.com/jhoicas/pos-inventario-api/internal/infrastructure/storage"
)

func TestLocalBackupStore(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "backups")
	store, err := storage.NewLocalBackupStore(dir)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "inventory_backup_20260314_103000.zip", []byte("zipdata")))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notas.txt"), []byte("x"), 0o600))

	data, err := store.Load(ctx, "inventory_backup_20260314_103000.zip")
	require.NoError(t, err)
	assert.Equal(t, "zipdata", string(data))

	list, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "inventory_backup_20260314_103000.zip", list[0].Name)
	assert.Equal(t, int64(7), list[0].Size)

	_, err = store.Load(ctx, "no_existe.zip")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}
