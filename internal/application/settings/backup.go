package settings

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/pos-inventario-api/internal/application/dto"
	"github.com/jhoicas/pos-inventario-api/internal/domain"
)

const (
	backupPrefix     = "inventory_backup_"
	preRestorePrefix = "pre_restore_backup_"
	backupExt        = ".zip"
	backupTimeLayout = "20060102_150405"
)

// BackupUseCase crea, lista y restaura snapshots completos de la base.
type BackupUseCase struct {
	snapshotter Snapshotter
	store       BackupStore
	loc         *time.Location
	log         zerolog.Logger
	now         func() time.Time
}

// NewBackupUseCase construye el caso de uso.
func NewBackupUseCase(snapshotter Snapshotter, store BackupStore, log zerolog.Logger, loc *time.Location) *BackupUseCase {
	if loc == nil {
		loc = time.Local
	}
	return &BackupUseCase{snapshotter: snapshotter, store: store, loc: loc, log: log, now: time.Now}
}

// SetClock reemplaza el reloj (tests).
func (uc *BackupUseCase) SetClock(now func() time.Time) { uc.now = now }

// Create vuelca la base y guarda el archivo inventory_backup_YYYYMMDD_HHMMSS.zip.
func (uc *BackupUseCase) Create(ctx context.Context) (*dto.BackupResponse, error) {
	res, err := uc.snapshot(ctx, backupPrefix)
	if err != nil {
		return nil, fmt.Errorf("backup.Create: %w", err)
	}
	return res, nil
}

func (uc *BackupUseCase) snapshot(ctx context.Context, prefix string) (*dto.BackupResponse, error) {
	data, err := uc.snapshotter.Dump(ctx)
	if err != nil {
		return nil, fmt.Errorf("volcar base: %w", err)
	}
	now := uc.now().In(uc.loc)
	name := prefix + now.Format(backupTimeLayout) + backupExt
	if err := uc.store.Save(ctx, name, data); err != nil {
		return nil, fmt.Errorf("guardar %s: %w", name, err)
	}
	uc.log.Info().Str("backup", name).Int("bytes", len(data)).Msg("backup creado")
	return &dto.BackupResponse{
		Filename:   name,
		Size:       int64(len(data)),
		CreatedAt:  now,
		ModifiedAt: now,
	}, nil
}

// List devuelve los backups disponibles, más reciente primero.
func (uc *BackupUseCase) List(ctx context.Context) ([]dto.BackupResponse, error) {
	objects, err := uc.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("backup.List: %w", err)
	}
	sort.Slice(objects, func(i, j int) bool { return objects[i].ModifiedAt.After(objects[j].ModifiedAt) })
	out := make([]dto.BackupResponse, 0, len(objects))
	for _, o := range objects {
		if !strings.HasSuffix(o.Name, backupExt) {
			continue
		}
		out = append(out, dto.BackupResponse{
			Filename:   o.Name,
			Size:       o.Size,
			CreatedAt:  o.ModifiedAt,
			ModifiedAt: o.ModifiedAt,
		})
	}
	return out, nil
}

// Restore guarda primero un backup del estado actual (pre_restore_backup_*) y
// luego reemplaza todos los datos por los del backup indicado.
func (uc *BackupUseCase) Restore(ctx context.Context, name string) (*dto.RestoreResponse, error) {
	if name == "" || path.Base(name) != name || strings.Contains(name, "\\") || !strings.HasSuffix(name, backupExt) {
		return nil, domain.Invalid("nombre de backup inválido: %q", name)
	}
	data, err := uc.store.Load(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("backup.Restore: %w", err)
	}

	current, err := uc.snapshot(ctx, preRestorePrefix)
	if err != nil {
		return nil, fmt.Errorf("backup.Restore: backup previo: %w", err)
	}
	if err := uc.snapshotter.Restore(ctx, data); err != nil {
		return nil, fmt.Errorf("backup.Restore: %w", err)
	}
	uc.log.Warn().Str("backup", name).Str("pre_restore", current.Filename).Msg("base restaurada")
	return &dto.RestoreResponse{
		Message:       "Database restored successfully",
		RestoredFrom:  name,
		CurrentBackup: current.Filename,
		RestoredAt:    uc.now().In(uc.loc),
	}, nil
}

// ── Backup automático ─────────────────────────────────────────────────────────

// AutoBackupPolicy settings que controlan el backup automático.
type AutoBackupPolicy interface {
	AutoBackup(ctx context.Context) bool
	BackupFrequency(ctx context.Context) string
}

func nextBackupAt(last time.Time, frequency string) time.Time {
	switch frequency {
	case FrequencyDaily:
		return last.AddDate(0, 0, 1)
	case FrequencyMonthly:
		return last.AddDate(0, 1, 0)
	default:
		return last.AddDate(0, 0, 7)
	}
}

// lastBackupAt fecha del inventory_backup_* más reciente. La fecha sale del
// nombre del archivo; si no se puede leer se usa la del almacenamiento.
func (uc *BackupUseCase) lastBackupAt(objects []BackupObject) time.Time {
	var last time.Time
	for _, o := range objects {
		if !strings.HasPrefix(o.Name, backupPrefix) || !strings.HasSuffix(o.Name, backupExt) {
			continue
		}
		stamp := strings.TrimSuffix(strings.TrimPrefix(o.Name, backupPrefix), backupExt)
		at, err := time.ParseInLocation(backupTimeLayout, stamp, uc.loc)
		if err != nil {
			at = o.ModifiedAt
		}
		if at.After(last) {
			last = at
		}
	}
	return last
}

// AutoBackupIfDue crea un backup si auto_backup está activo y ya pasó el
// intervalo de backup_frequency desde el último. Devuelve nil si no tocaba.
func (uc *BackupUseCase) AutoBackupIfDue(ctx context.Context, policy AutoBackupPolicy) (*dto.BackupResponse, error) {
	if !policy.AutoBackup(ctx) {
		return nil, nil
	}
	objects, err := uc.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("backup.AutoBackupIfDue: %w", err)
	}
	last := uc.lastBackupAt(objects)
	if !last.IsZero() && uc.now().Before(nextBackupAt(last, policy.BackupFrequency(ctx))) {
		return nil, nil
	}
	res, err := uc.snapshot(ctx, backupPrefix)
	if err != nil {
		return nil, fmt.Errorf("backup.AutoBackupIfDue: %w", err)
	}
	return res, nil
}

// RunAutoBackups revisa la política cada interval hasta que ctx se cancele.
func (uc *BackupUseCase) RunAutoBackups(ctx context.Context, policy AutoBackupPolicy, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := uc.AutoBackupIfDue(ctx, policy); err != nil {
				uc.log.Error().Err(err).Msg("backup automático")
			}
		}
	}
}
