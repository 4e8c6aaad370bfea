package settings_test

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-inventario-api/internal/application/settings"
	"github.com/jhoicas/pos-inventario-api/internal/domain"
	"github.com/jhoicas/pos-inventario-api/internal/domain/entity"
	"github.com/jhoicas/pos-inventario-api/internal/infrastructure/memory"
)

type mapBackupStore struct {
	files map[string][]byte
	times map[string]time.Time
	clock func() time.Time
}

func newMapBackupStore(clock func() time.Time) *mapBackupStore {
	return &mapBackupStore{files: map[string][]byte{}, times: map[string]time.Time{}, clock: clock}
}

func (s *mapBackupStore) Save(_ context.Context, name string, data []byte) error {
	s.files[name] = data
	s.times[name] = s.clock()
	return nil
}

func (s *mapBackupStore) Load(_ context.Context, name string) ([]byte, error) {
	data, ok := s.files[name]
	if !ok {
		return nil, domain.NotFound("backup", name)
	}
	return data, nil
}

func (s *mapBackupStore) List(context.Context) ([]settings.BackupObject, error) {
	var out []settings.BackupObject
	for name, data := range s.files {
		out = append(out, settings.BackupObject{Name: name, Size: int64(len(data)), ModifiedAt: s.times[name]})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func TestBackup_CrearListarRestaurar(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	now := time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	files := newMapBackupStore(clock)

	uc := settings.NewBackupUseCase(store, files, zerolog.Nop(), time.UTC)
	uc.SetClock(clock)

	repos := store.Repositories()
	require.NoError(t, repos.Categories.Create(ctx, &entity.Category{ID: "c1", Name: "Bebidas", CreatedAt: now, UpdatedAt: now}))

	first, err := uc.Create(ctx)
	require.NoError(t, err)
	assert.Equal(t, "inventory_backup_20260314_103000.zip", first.Filename)
	assert.Positive(t, first.Size)

	// Cambios posteriores al backup.
	now = now.Add(time.Hour)
	require.NoError(t, repos.Categories.Create(ctx, &entity.Category{ID: "c2", Name: "Snacks", CreatedAt: now, UpdatedAt: now}))

	res, err := uc.Restore(ctx, first.Filename)
	require.NoError(t, err)
	assert.Equal(t, first.Filename, res.RestoredFrom)
	assert.True(t, strings.HasPrefix(res.CurrentBackup, "pre_restore_backup_20260314_113000"))

	cats, err := repos.Categories.List(ctx)
	require.NoError(t, err)
	require.Len(t, cats, 1)
	assert.Equal(t, "Bebidas", cats[0].Name)

	list, err := uc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, res.CurrentBackup, list[0].Filename, "más reciente primero")

	// El backup previo permite deshacer la restauración.
	now = now.Add(time.Minute)
	_, err = uc.Restore(ctx, res.CurrentBackup)
	require.NoError(t, err)
	cats, err = repos.Categories.List(ctx)
	require.NoError(t, err)
	assert.Len(t, cats, 2)
}

func TestBackup_RestoreErrores(t *testing.T) {
	store := memory.NewStore()
	uc := settings.NewBackupUseCase(store, newMapBackupStore(time.Now), zerolog.Nop(), time.UTC)

	_, err := uc.Restore(context.Background(), "../etc/passwd.zip")
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	_, err = uc.Restore(context.Background(), "backup.tar")
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	_, err = uc.Restore(context.Background(), "inventory_backup_19990101_000000.zip")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestAutoBackupIfDue_RespetaFrecuencia(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	now := time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	files := newMapBackupStore(clock)

	cfg := settings.NewUseCase(store, store.Repositories().Settings, zerolog.Nop())
	uc := settings.NewBackupUseCase(store, files, zerolog.Nop(), time.UTC)
	uc.SetClock(clock)

	_, err := cfg.BulkUpdate(ctx, map[string]string{settings.KeyBackupFrequency: settings.FrequencyDaily})
	require.NoError(t, err)

	first, err := uc.AutoBackupIfDue(ctx, cfg)
	require.NoError(t, err)
	require.NotNil(t, first, "sin backups previos se crea uno")
	assert.Equal(t, "inventory_backup_20260314_103000.zip", first.Filename)

	now = now.Add(23 * time.Hour)
	skipped, err := uc.AutoBackupIfDue(ctx, cfg)
	require.NoError(t, err)
	assert.Nil(t, skipped, "todavía no pasó un día")

	now = now.Add(time.Hour)
	second, err := uc.AutoBackupIfDue(ctx, cfg)
	require.NoError(t, err)
	require.NotNil(t, second)
	assert.Equal(t, "inventory_backup_20260315_103000.zip", second.Filename)

	// Un pre_restore_backup_ no cuenta como backup periódico.
	_, err = cfg.Update(ctx, settings.KeyBackupFrequency, settings.FrequencyWeekly, "")
	require.NoError(t, err)
	now = now.AddDate(0, 0, 6)
	require.NoError(t, files.Save(ctx, "pre_restore_backup_20260321_103000.zip", []byte("x")))
	skipped, err = uc.AutoBackupIfDue(ctx, cfg)
	require.NoError(t, err)
	assert.Nil(t, skipped)
}

func TestAutoBackupIfDue_Desactivado(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	files := newMapBackupStore(time.Now)

	cfg := settings.NewUseCase(store, store.Repositories().Settings, zerolog.Nop())
	_, err := cfg.Update(ctx, settings.KeyAutoBackup, "false", "")
	require.NoError(t, err)

	res, err := settings.NewBackupUseCase(store, files, zerolog.Nop(), time.UTC).AutoBackupIfDue(ctx, cfg)
	require.NoError(t, err)
	assert.Nil(t, res)
	assert.Empty(t, files.files)
}
