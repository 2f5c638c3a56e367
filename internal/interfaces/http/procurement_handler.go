package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/erp-api/internal/application/dto"
	"github.com/jhoicas/erp-api/internal/application/procurement"
)

// PurchaseOrderHandler órdenes de compra y conciliación.
type PurchaseOrderHandler struct {
	uc *procurement.PurchaseOrderUseCase
}

// NewPurchaseOrderHandler construye el handler.
func NewPurchaseOrderHandler(uc *procurement.PurchaseOrderUseCase) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{uc: uc}
}

// Create godoc
// @Summary      Crear orden de compra (DRAFT)
// @Tags         purchase-orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreatePurchaseOrderRequest  true  "Proveedor, bodega y líneas"
// @Success      201   {object}  dto.PurchaseOrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/purchase-orders [post]
func (h *PurchaseOrderHandler) Create(c *fiber.Ctx) error {
	var in dto.CreatePurchaseOrderRequest
	if err := parseBody(c, &in); err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.Create(c.UserContext(), GetCompanyID(c), GetUserID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// CreateFromReplenishment godoc
// @Summary      Crear orden de compra desde la lista de reposición
// @Tags         purchase-orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.POFromReplenishmentRequest  true  "Proveedor, bodega y productos opcionales"
// @Success      201   {object}  dto.PurchaseOrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/purchase-orders/from-replenishment [post]
func (h *PurchaseOrderHandler) CreateFromReplenishment(c *fiber.Ctx) error {
	var in dto.POFromReplenishmentRequest
	if err := parseBody(c, &in); err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.CreateFromReplenishment(c.UserContext(), GetCompanyID(c), GetUserID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Confirm POST /api/purchase-orders/:id/confirm
func (h *PurchaseOrderHandler) Confirm(c *fiber.Ctx) error {
	out, err := h.uc.Confirm(c.UserContext(), GetCompanyID(c), GetUserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Cancel POST /api/purchase-orders/:id/cancel
func (h *PurchaseOrderHandler) Cancel(c *fiber.Ctx) error {
	out, err := h.uc.Cancel(c.UserContext(), GetCompanyID(c), GetUserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener orden de compra con cantidades recibidas
// @Tags         purchase-orders
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la orden"
// @Success      200  {object}  dto.PurchaseOrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/purchase-orders/{id} [get]
func (h *PurchaseOrderHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	if out == nil {
		return notFound(c, "orden de compra")
	}
	return c.JSON(out)
}

// List GET /api/purchase-orders?status=&limit=&offset=
func (h *PurchaseOrderHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.UserContext(), GetCompanyID(c), c.Query("status"), page(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Reconciliation godoc
// @Summary      Conciliación OC vs recepciones
// @Description  Por línea: pedido, recibido, aceptado, rechazado, pendiente, exceso y variación de precio.
// @Tags         purchase-orders
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la orden"
// @Success      200  {object}  procurement.Reconciliation
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/purchase-orders/{id}/reconciliation [get]
func (h *PurchaseOrderHandler) Reconciliation(c *fiber.Ctx) error {
	out, err := h.uc.Reconcile(c.UserContext(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ReceiptHandler recepciones de mercancía (GRN).
type ReceiptHandler struct {
	uc *procurement.ReceiptUseCase
}

// NewReceiptHandler construye el handler.
func NewReceiptHandler(uc *procurement.ReceiptUseCase) *ReceiptHandler {
	return &ReceiptHandler{uc: uc}
}

// Validate godoc
// @Summary      Validar recepción sin registrarla
// @Description  Devuelve errores, advertencias y costo en destino por línea.
// @Tags         grns
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateGRNRequest  true  "Recepción"
// @Success      200   {object}  dto.GRNValidationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/grns/validate [post]
func (h *ReceiptHandler) Validate(c *fiber.Ctx) error {
	var in dto.CreateGRNRequest
	if err := parseBody(c, &in); err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.Validate(c.UserContext(), GetCompanyID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Post godoc
// @Summary      Registrar recepción de mercancía
// @Description  Crea lotes, movimientos RECEIPT a costo en destino y actualiza la OC. Admite Idempotency-Key.
// @Tags         grns
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header  string                false  "Llave de idempotencia"
// @Param        body             body    dto.CreateGRNRequest  true   "Recepción"
// @Success      201   {object}  dto.GRNResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/grns [post]
func (h *ReceiptHandler) Post(c *fiber.Ctx) error {
	var in dto.CreateGRNRequest
	if err := parseBody(c, &in); err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.Post(c.UserContext(), GetCompanyID(c), GetUserID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID GET /api/grns/:id
func (h *ReceiptHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	if out == nil {
		return notFound(c, "recepción")
	}
	return c.JSON(out)
}

// List GET /api/grns
func (h *ReceiptHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.UserContext(), GetCompanyID(c), page(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ListByPurchaseOrder GET /api/purchase-orders/:id/grns
func (h *ReceiptHandler) ListByPurchaseOrder(c *fiber.Ctx) error {
	out, err := h.uc.ListByPurchaseOrder(c.UserContext(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// PDF godoc
// @Summary      PDF de la recepción
// @Tags         grns
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID de la recepción"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/grns/{id}/pdf [get]
func (h *ReceiptHandler) PDF(c *fiber.Ctx) error {
	body, name, err := h.uc.PDF(c.UserContext(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return sendAttachment(c, "application/pdf", name, body)
}

// sendAttachment responde un archivo descargable.
func sendAttachment(c *fiber.Ctx, contentType, name string, body []byte) error {
	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+name+`"`)
	return c.Send(body)
}
