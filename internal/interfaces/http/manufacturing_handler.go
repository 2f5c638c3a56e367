package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/erp-api/internal/application/dto"
	"github.com/jhoicas/erp-api/internal/application/manufacturing"
)

// ManufacturingHandler listas de materiales y órdenes de producción.
type ManufacturingHandler struct {
	uc *manufacturing.UseCase
}

// NewManufacturingHandler construye el handler.
func NewManufacturingHandler(uc *manufacturing.UseCase) *ManufacturingHandler {
	return &ManufacturingHandler{uc: uc}
}

// CreateBOM godoc
// @Summary      Crear lista de materiales
// @Tags         manufacturing
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateBOMRequest  true  "Producto terminado, cantidad de salida y componentes"
// @Success      201   {object}  dto.BOMResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/boms [post]
func (h *ManufacturingHandler) CreateBOM(c *fiber.Ctx) error {
	var in dto.CreateBOMRequest
	if err := parseBody(c, &in); err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.CreateBOM(c.UserContext(), GetCompanyID(c), GetUserID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetBOM GET /api/boms/:id
func (h *ManufacturingHandler) GetBOM(c *fiber.Ctx) error {
	out, err := h.uc.GetBOM(c.UserContext(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	if out == nil {
		return notFound(c, "lista de materiales")
	}
	return c.JSON(out)
}

// ListBOMs GET /api/boms
func (h *ManufacturingHandler) ListBOMs(c *fiber.Ctx) error {
	out, err := h.uc.ListBOMs(c.UserContext(), GetCompanyID(c), page(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// CreateWorkOrder godoc
// @Summary      Planear orden de producción
// @Tags         manufacturing
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateWorkOrderRequest  true  "BOM, bodega y cantidad planeada"
// @Success      201   {object}  dto.WorkOrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/work-orders [post]
func (h *ManufacturingHandler) CreateWorkOrder(c *fiber.Ctx) error {
	var in dto.CreateWorkOrderRequest
	if err := parseBody(c, &in); err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.CreateWorkOrder(c.UserContext(), GetCompanyID(c), GetUserID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Start godoc
// @Summary      Iniciar orden: consume materiales por lotes
// @Tags         manufacturing
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                     true   "ID de la orden"
// @Param        body  body  dto.StartWorkOrderRequest  false  "Estrategia de asignación"
// @Success      200   {object}  dto.WorkOrderResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/work-orders/{id}/start [post]
func (h *ManufacturingHandler) Start(c *fiber.Ctx) error {
	var in dto.StartWorkOrderRequest
	if err := parseOptionalBody(c, &in); err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.Start(c.UserContext(), GetCompanyID(c), GetUserID(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Complete godoc
// @Summary      Completar orden: crea el lote de producto terminado
// @Description  Costo unitario = (materiales + mano de obra + indirectos) / cantidad producida. Admite Idempotency-Key.
// @Tags         manufacturing
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header  string                        false  "Llave de idempotencia"
// @Param        id               path    string                        true   "ID de la orden"
// @Param        body             body    dto.CompleteWorkOrderRequest  true   "Cantidad producida y costos"
// @Success      200   {object}  dto.WorkOrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/work-orders/{id}/complete [post]
func (h *ManufacturingHandler) Complete(c *fiber.Ctx) error {
	var in dto.CompleteWorkOrderRequest
	if err := parseBody(c, &in); err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.Complete(c.UserContext(), GetCompanyID(c), GetUserID(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Cancel POST /api/work-orders/:id/cancel (solo PLANNED)
func (h *ManufacturingHandler) Cancel(c *fiber.Ctx) error {
	out, err := h.uc.Cancel(c.UserContext(), GetCompanyID(c), GetUserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// GetWorkOrder GET /api/work-orders/:id
func (h *ManufacturingHandler) GetWorkOrder(c *fiber.Ctx) error {
	out, err := h.uc.GetWorkOrder(c.UserContext(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	if out == nil {
		return notFound(c, "orden de producción")
	}
	return c.JSON(out)
}

// ListWorkOrders GET /api/work-orders?status=
func (h *ManufacturingHandler) ListWorkOrders(c *fiber.Ctx) error {
	out, err := h.uc.ListWorkOrders(c.UserContext(), GetCompanyID(c), c.Query("status"), page(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
