package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	appanalytics "github.com/jhoicas/pos-inventario-api/internal/application/analytics"
	"github.com/jhoicas/pos-inventario-api/internal/application/dto"
)

// ReportHandler genera reportes descargables (PDF, Excel, CSV).
type ReportHandler struct {
	uc *appanalytics.ReportUseCase
}

// NewReportHandler construye el handler.
func NewReportHandler(uc *appanalytics.ReportUseCase) *ReportHandler {
	return &ReportHandler{uc: uc}
}

// Generate godoc
// @Summary      Generar reporte
// @Description  report_type: sales | inventory | categories | low_stock. format: pdf | excel | csv.
//               Las fechas (YYYY-MM-DD) solo aplican al reporte de ventas.
// @Tags         reports
// @Security     Bearer
// @Accept       json
// @Produce      application/pdf
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Produce      text/csv
// @Param        body  body  dto.GenerateReportRequest  true  "report_type, format, start_date, end_date"
// @Success      200   {file}    binary
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/reports/generate [post]
func (h *ReportHandler) Generate(c *fiber.Ctx) error {
	var in dto.GenerateReportRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	file, err := h.uc.Generate(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, file.ContentType)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+file.Filename+`"`)
	c.Set(fiber.HeaderContentLength, strconv.Itoa(len(file.Content)))
	return c.Send(file.Content)
}
