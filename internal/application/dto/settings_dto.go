package dto

import "time"

// SettingRequest body para crear o actualizar un setting.
type SettingRequest struct {
	Key         string `json:"key"`
	Value       string `json:"value"`
	Description string `json:"description"`
}

// SettingResponse salida de un setting.
type SettingResponse struct {
	Key         string     `json:"key"`
	Value       string     `json:"value"`
	Type        string     `json:"type" example:"int"`
	Description string     `json:"description"`
	UpdatedAt   *time.Time `json:"updated_at"`
}

// BulkUpdateResult resultado por clave de PUT /api/settings/bulk.
type BulkUpdateResult struct {
	Key     string `json:"key"`
	Value   string `json:"value"`
	Updated bool   `json:"updated"`
}

// SettingExportEntry valor exportado de un setting.
type SettingExportEntry struct {
	Value       string     `json:"value"`
	Description string     `json:"description"`
	UpdatedAt   *time.Time `json:"updated_at"`
}

// SettingsExport respuesta de GET /api/settings/export/json.
type SettingsExport struct {
	Settings   map[string]SettingExportEntry `json:"settings"`
	ExportedAt time.Time                     `json:"exported_at"`
}

// BackupResponse metadatos de un backup.
type BackupResponse struct {
	Filename   string    `json:"filename"`
	Size       int64     `json:"size"`
	CreatedAt  time.Time `json:"created_at"`
	ModifiedAt time.Time `json:"modified_at"`
}

// RestoreResponse resultado de restaurar un backup.
type RestoreResponse struct {
	Message       string    `json:"message"`
	RestoredFrom  string    `json:"restored_from"`
	CurrentBackup string    `json:"current_backup"`
	RestoredAt    time.Time `json:"restored_at"`
}
