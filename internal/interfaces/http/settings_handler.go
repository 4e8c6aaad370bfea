package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/pos-inventario-api/internal/application/dto"
	"github.com/jhoicas/pos-inventario-api/internal/application/settings"
)

// SettingsHandler configuración de la tienda y backups (protegido).
type SettingsHandler struct {
	uc      *settings.UseCase
	backups *settings.BackupUseCase
}

// NewSettingsHandler construye el handler.
func NewSettingsHandler(uc *settings.UseCase, backups *settings.BackupUseCase) *SettingsHandler {
	return &SettingsHandler{uc: uc, backups: backups}
}

// ── Settings ──────────────────────────────────────────────────────────────────

// List godoc
// @Summary      Listar settings
// @Description  Crea los valores por defecto que falten.
// @Tags         settings
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.SettingResponse
// @Router       /api/settings [get]
func (h *SettingsHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Dict godoc
// @Summary      Settings como mapa clave → valor
// @Tags         settings
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /api/settings/dict [get]
func (h *SettingsHandler) Dict(c *fiber.Ctx) error {
	out, err := h.uc.Dict(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Get godoc
// @Summary      Obtener setting
// @Tags         settings
// @Security     Bearer
// @Produce      json
// @Param        key  path  string  true  "Clave"
// @Success      200  {object}  dto.SettingResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/settings/{key} [get]
func (h *SettingsHandler) Get(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext(), c.Params("key"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Create godoc
// @Summary      Crear setting
// @Tags         settings
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SettingRequest  true  "key, value, description"
// @Success      201   {object}  dto.SettingResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/settings [post]
func (h *SettingsHandler) Create(c *fiber.Ctx) error {
	var in dto.SettingRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Update godoc
// @Summary      Actualizar setting
// @Tags         settings
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        key   path  string              true  "Clave"
// @Param        body  body  dto.SettingRequest  true  "value, description"
// @Success      200   {object}  dto.SettingResponse
// @Router       /api/settings/{key} [put]
func (h *SettingsHandler) Update(c *fiber.Ctx) error {
	var in dto.SettingRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Update(c.UserContext(), c.Params("key"), in.Value, in.Description)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// BulkUpdate godoc
// @Summary      Actualizar varios settings
// @Tags         settings
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  map[string]string  true  "clave → valor"
// @Success      200   {array}  dto.BulkUpdateResult
// @Router       /api/settings/bulk [put]
func (h *SettingsHandler) BulkUpdate(c *fiber.Ctx) error {
	var in map[string]string
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.BulkUpdate(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar setting
// @Description  Las claves por defecto no se pueden eliminar (400).
// @Tags         settings
// @Security     Bearer
// @Param        key  path  string  true  "Clave"
// @Success      200  {object}  dto.MessageResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/settings/{key} [delete]
func (h *SettingsHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), c.Params("key")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "setting eliminado"})
}

// Reset godoc
// @Summary      Restaurar settings por defecto
// @Tags         settings
// @Security     Bearer
// @Success      200  {object}  dto.MessageResponse
// @Router       /api/settings/reset [post]
func (h *SettingsHandler) Reset(c *fiber.Ctx) error {
	if err := h.uc.Reset(c.UserContext()); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "settings restaurados a los valores por defecto"})
}

// Export godoc
// @Summary      Exportar settings en JSON
// @Tags         settings
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.SettingsExport
// @Router       /api/settings/export/json [get]
func (h *SettingsHandler) Export(c *fiber.Ctx) error {
	out, err := h.uc.ExportJSON(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ── Backups (admin) ───────────────────────────────────────────────────────────

// CreateBackup godoc
// @Summary      Crear backup completo
// @Tags         settings
// @Security     Bearer
// @Produce      json
// @Success      201  {object}  dto.BackupResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/settings/backup [post]
func (h *SettingsHandler) CreateBackup(c *fiber.Ctx) error {
	out, err := h.backups.Create(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListBackups godoc
// @Summary      Listar backups
// @Tags         settings
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.BackupResponse
// @Router       /api/settings/backups [get]
func (h *SettingsHandler) ListBackups(c *fiber.Ctx) error {
	out, err := h.backups.List(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// RestoreBackup godoc
// @Summary      Restaurar backup
// @Description  Antes de restaurar guarda un backup pre_restore del estado actual.
// @Tags         settings
// @Security     Bearer
// @Produce      json
// @Param        name  path  string  true  "Nombre del archivo .zip"
// @Success      200   {object}  dto.RestoreResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/settings/restore/{name} [post]
func (h *SettingsHandler) RestoreBackup(c *fiber.Ctx) error {
	out, err := h.backups.Restore(c.UserContext(), c.Params("name"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
