// Package settings administra la configuración clave/valor de la tienda y los
// backups completos de la base de datos.
package settings

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-inventario-api/internal/application/dto"
	"github.com/jhoicas/pos-inventario-api/internal/application/inventory"
	"github.com/jhoicas/pos-inventario-api/internal/domain"
	"github.com/jhoicas/pos-inventario-api/internal/domain/entity"
	"github.com/jhoicas/pos-inventario-api/internal/domain/repository"
)

// Claves conocidas.
const (
	KeyTheme              = "theme"
	KeyCurrency           = "currency"
	KeyCurrencySymbol     = "currency_symbol"
	KeyCompanyName        = "company_name"
	KeyCompanyAddress     = "company_address"
	KeyCompanyPhone       = "company_phone"
	KeyCompanyEmail       = "company_email"
	KeyCompanyTaxID       = "company_tax_id"
	KeyTaxRate            = "tax_rate"
	KeyLowStockThreshold  = "low_stock_threshold"
	KeyBackupFrequency    = "backup_frequency"
	KeyAutoBackup         = "auto_backup"
	KeyInvoiceFooterNotes = "invoice_footer_notes"
)

// Kind tipo del valor de una clave conocida. Las claves libres no tienen tipo.
type Kind string

const (
	KindString  Kind = "string"
	KindInt     Kind = "int"
	KindDecimal Kind = "decimal"
	KindBool    Kind = "bool"
)

// Frecuencias de backup automático.
const (
	FrequencyDaily   = "daily"
	FrequencyWeekly  = "weekly"
	FrequencyMonthly = "monthly"
)

type defaultSetting struct {
	key, value, description string
	kind                    Kind
	choices                 []string
}

var defaults = []defaultSetting{
	{KeyTheme, "light", "Application theme (light/dark)", KindString, []string{"light", "dark"}},
	{KeyCurrency, "BDT", "Currency code", KindString, nil},
	{KeyCurrencySymbol, "Tk", "Currency symbol", KindString, nil},
	{KeyCompanyName, "My Company", "Company name", KindString, nil},
	{KeyCompanyAddress, "", "Company address", KindString, nil},
	{KeyCompanyPhone, "", "Company phone number", KindString, nil},
	{KeyCompanyEmail, "", "Company email address", KindString, nil},
	{KeyCompanyTaxID, "", "Company tax identification number", KindString, nil},
	{KeyTaxRate, "0.0", "Default tax rate percentage", KindDecimal, nil},
	{KeyLowStockThreshold, "10", "Default low stock threshold", KindInt, nil},
	{KeyBackupFrequency, FrequencyWeekly, "Backup frequency (daily/weekly/monthly)", KindString,
		[]string{FrequencyDaily, FrequencyWeekly, FrequencyMonthly}},
	{KeyAutoBackup, "true", "Enable automatic backups", KindBool, nil},
	{KeyInvoiceFooterNotes, "", "Notes printed at the bottom of invoices", KindString, nil},
}

func defaultFor(key string) (defaultSetting, bool) {
	for _, d := range defaults {
		if d.key == key {
			return d, true
		}
	}
	return defaultSetting{}, false
}

// normalize valida el valor de una clave conocida y lo devuelve en forma canónica.
// Las claves libres se guardan tal cual.
func normalize(key, value string) (string, error) {
	d, ok := defaultFor(key)
	if !ok {
		return value, nil
	}
	v := strings.TrimSpace(value)
	switch d.kind {
	case KindInt:
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return "", domain.Invalid("%s debe ser un entero >= 0, recibido %q", key, value)
		}
		return strconv.Itoa(n), nil
	case KindDecimal:
		dec, err := decimal.NewFromString(v)
		if err != nil || dec.IsNegative() || dec.GreaterThan(maxPercent) {
			return "", domain.Invalid("%s debe ser un número entre 0 y 100, recibido %q", key, value)
		}
		return v, nil
	case KindBool:
		b, err := strconv.ParseBool(v)
		if err != nil {
			return "", domain.Invalid("%s debe ser true o false, recibido %q", key, value)
		}
		return strconv.FormatBool(b), nil
	}
	if len(d.choices) > 0 {
		if !slices.Contains(d.choices, v) {
			return "", domain.Invalid("%s debe ser uno de %s", key, strings.Join(d.choices, ", "))
		}
		return v, nil
	}
	return value, nil
}

var maxPercent = decimal.NewFromInt(100)

// UseCase casos de uso de configuración.
type UseCase struct {
	txRunner inventory.TxRunner
	repo     repository.SettingRepository
	log      zerolog.Logger
	now      func() time.Time
}

// NewUseCase construye el caso de uso.
func NewUseCase(txRunner inventory.TxRunner, repo repository.SettingRepository, log zerolog.Logger) *UseCase {
	return &UseCase{txRunner: txRunner, repo: repo, log: log, now: time.Now}
}

// SetClock reemplaza el reloj (tests).
func (uc *UseCase) SetClock(now func() time.Time) { uc.now = now }

// ensureDefaults inserta los defaults que falten sin tocar los existentes.
func (uc *UseCase) ensureDefaults(ctx context.Context, repo repository.SettingRepository) ([]*entity.Setting, error) {
	list, err := repo.List(ctx)
	if err != nil {
		return nil, err
	}
	present := make(map[string]bool, len(list))
	for _, s := range list {
		present[s.Key] = true
	}
	added := false
	for _, d := range defaults {
		if present[d.key] {
			continue
		}
		err := repo.Insert(ctx, &entity.Setting{Key: d.key, Value: d.value, Description: d.description})
		if err != nil && !errors.Is(err, domain.ErrDuplicate) {
			return nil, err
		}
		added = true
	}
	if !added {
		return list, nil
	}
	return repo.List(ctx)
}

// List devuelve todos los settings ordenados por clave, creando los defaults faltantes.
func (uc *UseCase) List(ctx context.Context) ([]dto.SettingResponse, error) {
	list, err := uc.ensureDefaults(ctx, uc.repo)
	if err != nil {
		return nil, fmt.Errorf("settings.List: %w", err)
	}
	out := make([]dto.SettingResponse, 0, len(list))
	for _, s := range list {
		out = append(out, *toResponse(s))
	}
	return out, nil
}

// Dict devuelve los settings como mapa clave → valor.
func (uc *UseCase) Dict(ctx context.Context) (map[string]string, error) {
	list, err := uc.ensureDefaults(ctx, uc.repo)
	if err != nil {
		return nil, fmt.Errorf("settings.Dict: %w", err)
	}
	out := make(map[string]string, len(list))
	for _, s := range list {
		out[s.Key] = s.Value
	}
	return out, nil
}

// Get devuelve un setting. Las claves por defecto se crean al primer acceso.
func (uc *UseCase) Get(ctx context.Context, key string) (*dto.SettingResponse, error) {
	s, err := uc.repo.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("settings.Get: %w", err)
	}
	if s != nil {
		return toResponse(s), nil
	}
	d, ok := defaultFor(key)
	if !ok {
		return nil, domain.NotFound("setting", key)
	}
	s = &entity.Setting{Key: d.key, Value: d.value, Description: d.description}
	if err := uc.repo.Insert(ctx, s); err != nil && !errors.Is(err, domain.ErrDuplicate) {
		return nil, fmt.Errorf("settings.Get: %w", err)
	}
	if s, err = uc.repo.Get(ctx, key); err != nil {
		return nil, fmt.Errorf("settings.Get: %w", err)
	}
	if s == nil {
		return nil, domain.NotFound("setting", key)
	}
	return toResponse(s), nil
}

// Create inserta un setting nuevo; Conflict si la clave ya existe.
func (uc *UseCase) Create(ctx context.Context, in dto.SettingRequest) (*dto.SettingResponse, error) {
	key := strings.TrimSpace(in.Key)
	if key == "" {
		return nil, domain.Invalid("key es requerida")
	}
	value, err := normalize(key, in.Value)
	if err != nil {
		return nil, err
	}
	s := &entity.Setting{Key: key, Value: value, Description: in.Description}
	if err := uc.repo.Insert(ctx, s); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, domain.Conflict("setting", key, "la clave ya existe")
		}
		return nil, fmt.Errorf("settings.Create: %w", err)
	}
	return uc.Get(ctx, key)
}

// Update crea o actualiza el valor; una descripción vacía conserva la anterior.
func (uc *UseCase) Update(ctx context.Context, key, value, description string) (*dto.SettingResponse, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, domain.Invalid("key es requerida")
	}
	value, err := normalize(key, value)
	if err != nil {
		return nil, err
	}
	if err := uc.repo.Upsert(ctx, &entity.Setting{Key: key, Value: value, Description: description}); err != nil {
		return nil, fmt.Errorf("settings.Update: %w", err)
	}
	uc.log.Info().Str("key", key).Msg("setting actualizado")
	return uc.Get(ctx, key)
}

// BulkUpdate aplica todos los valores en una sola transacción.
func (uc *UseCase) BulkUpdate(ctx context.Context, values map[string]string) ([]dto.BulkUpdateResult, error) {
	if len(values) == 0 {
		return nil, domain.Invalid("no hay settings para actualizar")
	}
	keys := make([]string, 0, len(values))
	normalized := make(map[string]string, len(values))
	for k, v := range values {
		if strings.TrimSpace(k) == "" {
			return nil, domain.Invalid("key vacía en actualización masiva")
		}
		nv, err := normalize(k, v)
		if err != nil {
			return nil, err
		}
		keys = append(keys, k)
		normalized[k] = nv
	}
	sort.Strings(keys)
	values = normalized

	err := uc.txRunner.Run(ctx, func(repos repository.Repositories) error {
		for _, k := range keys {
			if err := repos.Settings.Upsert(ctx, &entity.Setting{Key: k, Value: values[k]}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("settings.BulkUpdate: %w", err)
	}
	out := make([]dto.BulkUpdateResult, 0, len(keys))
	for _, k := range keys {
		out = append(out, dto.BulkUpdateResult{Key: k, Value: values[k], Updated: true})
	}
	uc.log.Info().Int("count", len(keys)).Msg("settings actualizados en bloque")
	return out, nil
}

// Delete elimina un setting propio. Las claves por defecto no se pueden borrar.
func (uc *UseCase) Delete(ctx context.Context, key string) error {
	if _, ok := defaultFor(key); ok {
		return domain.Invalid("no se puede eliminar el setting por defecto %q", key)
	}
	s, err := uc.repo.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("settings.Delete: %w", err)
	}
	if s == nil {
		return domain.NotFound("setting", key)
	}
	if err := uc.repo.Delete(ctx, key); err != nil {
		return fmt.Errorf("settings.Delete: %w", err)
	}
	return nil
}

// Reset borra todos los settings y vuelve a los valores por defecto.
func (uc *UseCase) Reset(ctx context.Context) error {
	err := uc.txRunner.Run(ctx, func(repos repository.Repositories) error {
		if err := repos.Settings.DeleteAll(ctx); err != nil {
			return err
		}
		_, err := uc.ensureDefaults(ctx, repos.Settings)
		return err
	})
	if err != nil {
		return fmt.Errorf("settings.Reset: %w", err)
	}
	uc.log.Warn().Msg("settings restablecidos a valores por defecto")
	return nil
}

// ExportJSON exporta todos los settings con su descripción y fecha.
func (uc *UseCase) ExportJSON(ctx context.Context) (*dto.SettingsExport, error) {
	list, err := uc.ensureDefaults(ctx, uc.repo)
	if err != nil {
		return nil, fmt.Errorf("settings.ExportJSON: %w", err)
	}
	out := &dto.SettingsExport{
		Settings:   make(map[string]dto.SettingExportEntry, len(list)),
		ExportedAt: uc.now(),
	}
	for _, s := range list {
		out.Settings[s.Key] = dto.SettingExportEntry{Value: s.Value, Description: s.Description, UpdatedAt: s.UpdatedAt}
	}
	return out, nil
}

// ── Lectura tipada ────────────────────────────────────────────────────────────

// typedValue valor canónico de una clave conocida. Si no se puede leer o el valor
// guardado no es válido (p. ej. tras restaurar un backup antiguo) se usa el default.
func (uc *UseCase) typedValue(ctx context.Context, key string) string {
	d, _ := defaultFor(key)
	s, err := uc.Get(ctx, key)
	if err != nil {
		uc.log.Warn().Err(err).Str("key", key).Msg("setting no disponible, se usa el valor por defecto")
		return d.value
	}
	v, err := normalize(key, s.Value)
	if err != nil {
		uc.log.Warn().Err(err).Str("key", key).Msg("setting inválido, se usa el valor por defecto")
		return d.value
	}
	return v
}

// LowStockThreshold min_stock_level por defecto de los productos nuevos.
func (uc *UseCase) LowStockThreshold(ctx context.Context) int {
	n, _ := strconv.Atoi(uc.typedValue(ctx, KeyLowStockThreshold))
	return n
}

// TaxRate porcentaje de impuesto por defecto.
func (uc *UseCase) TaxRate(ctx context.Context) decimal.Decimal {
	return decimal.RequireFromString(uc.typedValue(ctx, KeyTaxRate))
}

func (uc *UseCase) AutoBackup(ctx context.Context) bool {
	return uc.typedValue(ctx, KeyAutoBackup) == "true"
}

// BackupFrequency daily, weekly o monthly.
func (uc *UseCase) BackupFrequency(ctx context.Context) string {
	return uc.typedValue(ctx, KeyBackupFrequency)
}

// CompanyInfo datos de empresa para facturas y reportes.
func (uc *UseCase) CompanyInfo(ctx context.Context) (dto.CompanyInfo, error) {
	d, err := uc.Dict(ctx)
	if err != nil {
		return dto.CompanyInfo{}, err
	}
	return dto.CompanyInfo{
		Name:           d[KeyCompanyName],
		Address:        d[KeyCompanyAddress],
		Phone:          d[KeyCompanyPhone],
		Email:          d[KeyCompanyEmail],
		TaxID:          d[KeyCompanyTaxID],
		Currency:       d[KeyCurrency],
		CurrencySymbol: d[KeyCurrencySymbol],
		FooterNotes:    d[KeyInvoiceFooterNotes],
		TaxRate:        uc.TaxRate(ctx),
	}, nil
}

func toResponse(s *entity.Setting) *dto.SettingResponse {
	return &dto.SettingResponse{
		Key:         s.Key,
		Value:       s.Value,
		Type:        string(kindOf(s.Key)),
		Description: s.Description,
		UpdatedAt:   s.UpdatedAt,
	}
}

func kindOf(key string) Kind {
	if d, ok := defaultFor(key); ok {
		return d.kind
	}
	return KindString
}
