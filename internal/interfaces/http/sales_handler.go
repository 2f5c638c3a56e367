package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/erp-api/internal/application/dto"
	"github.com/jhoicas/erp-api/internal/application/sales"
)

// EstimationHandler cotizaciones.
type EstimationHandler struct {
	uc *sales.EstimationUseCase
}

// NewEstimationHandler construye el handler.
func NewEstimationHandler(uc *sales.EstimationUseCase) *EstimationHandler {
	return &EstimationHandler{uc: uc}
}

// Create godoc
// @Summary      Crear cotización (DRAFT)
// @Tags         estimations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateEstimationRequest  true  "Cliente, bodega, vigencia y líneas"
// @Success      201   {object}  dto.EstimationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/estimations [post]
func (h *EstimationHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateEstimationRequest
	if err := parseBody(c, &in); err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.Create(c.UserContext(), GetCompanyID(c), GetUserID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID GET /api/estimations/:id
func (h *EstimationHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	if out == nil {
		return notFound(c, "cotización")
	}
	return c.JSON(out)
}

// List GET /api/estimations?status=
func (h *EstimationHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.UserContext(), GetCompanyID(c), c.Query("status"), page(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ChangeStatus godoc
// @Summary      Cambiar estado de la cotización
// @Description  DRAFT → SENT → ACCEPTED | REJECTED. Una cotización vencida no puede aceptarse.
// @Tags         estimations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string             true  "ID de la cotización"
// @Param        body  body  dto.StatusRequest  true  "Nuevo estado"
// @Success      200   {object}  dto.EstimationResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/estimations/{id}/status [put]
func (h *EstimationHandler) ChangeStatus(c *fiber.Ctx) error {
	var in dto.StatusRequest
	if err := parseBody(c, &in); err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.ChangeStatus(c.UserContext(), GetCompanyID(c), GetUserID(c), c.Params("id"), in.Status)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Convert godoc
// @Summary      Convertir cotización aceptada en factura
// @Tags         estimations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                        true   "ID de la cotización"
// @Param        body  body  dto.ConvertEstimationRequest  false  "Estrategia de asignación"
// @Success      201   {object}  dto.InvoiceResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/estimations/{id}/convert [post]
func (h *EstimationHandler) Convert(c *fiber.Ctx) error {
	var in dto.ConvertEstimationRequest
	if err := parseOptionalBody(c, &in); err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.Convert(c.UserContext(), GetCompanyID(c), GetUserID(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// InvoiceHandler maneja las peticiones HTTP de facturación (protegido).
type InvoiceHandler struct {
	uc *sales.InvoiceUseCase
}

// NewInvoiceHandler construye el handler.
func NewInvoiceHandler(uc *sales.InvoiceUseCase) *InvoiceHandler {
	return &InvoiceHandler{uc: uc}
}

// Create crea una factura y descuenta inventario por lotes.
// POST /api/invoices (admite Idempotency-Key)
func (h *InvoiceHandler) Create(c *fiber.Ctx) error {
	companyID, userID := GetCompanyID(c), GetUserID(c)
	if companyID == "" || userID == "" {
		return unauthorized(c)
	}
	var in dto.CreateInvoiceRequest
	if err := parseBody(c, &in); err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.Create(c.UserContext(), companyID, userID, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID obtiene el detalle completo de una factura con sus lotes.
// GET /api/invoices/:id
func (h *InvoiceHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	if out == nil {
		return notFound(c, "factura")
	}
	return c.JSON(out)
}

// List GET /api/invoices
func (h *InvoiceHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.UserContext(), GetCompanyID(c), page(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// PDF GET /api/invoices/:id/pdf
func (h *InvoiceHandler) PDF(c *fiber.Ctx) error {
	body, name, err := h.uc.PDF(c.UserContext(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return sendAttachment(c, "application/pdf", name, body)
}
