package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/erp-api/internal/application/dto"
	"github.com/jhoicas/erp-api/internal/application/quality"
)

// QualityHandler inspecciones de lotes en cuarentena.
type QualityHandler struct {
	uc *quality.InspectionUseCase
}

// NewQualityHandler construye el handler.
func NewQualityHandler(uc *quality.InspectionUseCase) *QualityHandler {
	return &QualityHandler{uc: uc}
}

// Inspect godoc
// @Summary      Inspeccionar lote en cuarentena
// @Description  passed_qty + failed_qty debe igualar la cantidad disponible del lote.
// @Tags         quality
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.InspectionRequest  true  "Resultado de la inspección"
// @Success      201   {object}  dto.InspectionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/quality/inspections [post]
func (h *QualityHandler) Inspect(c *fiber.Ctx) error {
	var in dto.InspectionRequest
	if err := parseBody(c, &in); err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.Inspect(c.UserContext(), GetCompanyID(c), GetUserID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListByBatch GET /api/quality/batches/:id/inspections
func (h *QualityHandler) ListByBatch(c *fiber.Ctx) error {
	out, err := h.uc.ListByBatch(c.UserContext(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
