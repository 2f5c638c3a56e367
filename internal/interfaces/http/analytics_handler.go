package http

import (
	"github.com/gofiber/fiber/v2"
	appanalytics "github.com/jhoicas/erp-api/internal/application/analytics"
	"github.com/jhoicas/erp-api/internal/application/dto"
	"github.com/jhoicas/erp-api/internal/application/usecase"
)

// AnalyticsHandler rentabilidad por SKU y tablero diario.
type AnalyticsHandler struct {
	margins   *usecase.AnalyticsUseCase
	dashboard *appanalytics.DashboardUseCase
}

func NewAnalyticsHandler(margins *usecase.AnalyticsUseCase, dashboard *appanalytics.DashboardUseCase) *AnalyticsHandler {
	return &AnalyticsHandler{margins: margins, dashboard: dashboard}
}

// Margins godoc
// @Summary      Márgenes por SKU y ranking Pareto 80/20
// @Description  Costo de ventas tomado de los lotes efectivamente consumidos.
// @Tags         analytics
// @Security     Bearer
// @Produce      json
// @Param        start_date  query  string  false  "YYYY-MM-DD, por defecto el día 1 del mes"
// @Param        end_date    query  string  false  "YYYY-MM-DD, por defecto hoy"
// @Param        top_n       query  int     false  "SKUs en el ranking (20 por defecto, hasta 200)"
// @Success      200  {object}  dto.MarginsReportDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/analytics/margins [get]
func (h *AnalyticsHandler) Margins(c *fiber.Ctx) error {
	var req dto.MarginsReportRequest
	if err := parseQuery(c, &req); err != nil {
		return respondError(c, err)
	}
	report, err := h.margins.GetMarginsReport(c.UserContext(), GetCompanyID(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(report)
}

// Dashboard godoc
// @Summary      Ventas y margen de hoy y del mes, top SKUs y lotes por vencer
// @Tags         analytics
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.DashboardSummaryDTO
// @Router       /api/dashboard/summary [get]
func (h *AnalyticsHandler) Dashboard(c *fiber.Ctx) error {
	summary, err := h.dashboard.GetSummary(c.UserContext(), GetCompanyID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(summary)
}
