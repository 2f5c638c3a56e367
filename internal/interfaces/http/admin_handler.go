package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/erp-api/internal/application/backup"
	"github.com/jhoicas/erp-api/internal/application/dto"
	"github.com/jhoicas/erp-api/internal/application/reports"
	"github.com/jhoicas/erp-api/internal/application/usecase"
)

// AuditHandler consulta de la bitácora de auditoría (admin).
type AuditHandler struct {
	uc *usecase.AuditUseCase
}

// NewAuditHandler construye el handler.
func NewAuditHandler(uc *usecase.AuditUseCase) *AuditHandler {
	return &AuditHandler{uc: uc}
}

// List godoc
// @Summary      Bitácora de auditoría
// @Tags         audit
// @Security     Bearer
// @Produce      json
// @Param        entity_type  query  string  false  "Tipo de entidad (purchase_order, grn, invoice…)"
// @Param        entity_id    query  string  false  "ID de la entidad"
// @Param        from         query  string  false  "Desde (YYYY-MM-DD)"
// @Param        to           query  string  false  "Hasta (YYYY-MM-DD, inclusive)"
// @Param        limit        query  int     false  "Límite"  default(20)
// @Param        offset       query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.AuditLogListResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/audit-logs [get]
func (h *AuditHandler) List(c *fiber.Ctx) error {
	var q dto.AuditQuery
	if err := parseQuery(c, &q); err != nil {
		return respondError(c, err)
	}
	q.PageRequest = page(c)
	out, err := h.uc.List(c.UserContext(), GetCompanyID(c), q)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ExportHandler descarga de reportes en CSV o XLSX.
type ExportHandler struct {
	uc *reports.ExportUseCase
}

// NewExportHandler construye el handler.
func NewExportHandler(uc *reports.ExportUseCase) *ExportHandler {
	return &ExportHandler{uc: uc}
}

// Export godoc
// @Summary      Exportar dataset
// @Description  stock_batches, po_reconciliation (requiere po_id) o audit_logs.
// @Tags         exports
// @Security     Bearer
// @Produce      text/csv
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        dataset       path   string  true   "stock_batches | po_reconciliation | audit_logs"
// @Param        format        query  string  false  "csv | xlsx"  default(csv)
// @Param        po_id         query  string  false  "Orden de compra (po_reconciliation)"
// @Param        warehouse_id  query  string  false  "Bodega (stock_batches)"
// @Param        status        query  string  false  "Estado del lote (stock_batches)"
// @Param        entity_type   query  string  false  "Tipo de entidad (audit_logs)"
// @Param        from          query  string  false  "Desde YYYY-MM-DD (audit_logs)"
// @Param        to            query  string  false  "Hasta YYYY-MM-DD (audit_logs)"
// @Success      200  {file}    binary
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/exports/{dataset} [get]
func (h *ExportHandler) Export(c *fiber.Ctx) error {
	var q dto.ExportQuery
	if err := parseQuery(c, &q); err != nil {
		return respondError(c, err)
	}
	f, err := h.uc.Export(c.UserContext(), GetCompanyID(c), c.Params("dataset"), q)
	if err != nil {
		return respondError(c, err)
	}
	c.Set("X-Row-Count", strconv.Itoa(f.Rows))
	return sendAttachment(c, f.ContentType, f.Name, f.Body)
}

// DumpHandler volcados lógicos de la empresa (admin).
type DumpHandler struct {
	uc *backup.UseCase
}

// NewDumpHandler construye el handler.
func NewDumpHandler(uc *backup.UseCase) *DumpHandler {
	return &DumpHandler{uc: uc}
}

// Export POST /api/admin/dumps: genera el volcado zstd de la empresa y lo guarda en el blob store.
func (h *DumpHandler) Export(c *fiber.Ctx) error {
	out, err := h.uc.Export(c.UserContext(), GetCompanyID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Import POST /api/admin/dumps/import: solo volcados de la propia empresa.
func (h *DumpHandler) Import(c *fiber.Ctx) error {
	var in dto.DumpImportRequest
	if err := parseBody(c, &in); err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.Import(c.UserContext(), GetCompanyID(c), in.Key)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// List GET /api/admin/dumps
func (h *DumpHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.UserContext(), GetCompanyID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
