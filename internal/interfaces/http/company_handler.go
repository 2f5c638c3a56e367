package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/erp-api/internal/application/dto"
	"github.com/jhoicas/erp-api/internal/application/usecase"
)

// CompanyHandler alta de empresas (pública) y administración de la propia empresa.
type CompanyHandler struct {
	uc      *usecase.CompanyUseCase
	modules moduleCacheInvalidator
}

// NewCompanyHandler modules puede ser nil si el verificador no tiene caché.
func NewCompanyHandler(uc *usecase.CompanyUseCase, modules moduleCacheInvalidator) *CompanyHandler {
	return &CompanyHandler{uc: uc, modules: modules}
}

// Create godoc
// @Summary      Crear empresa
// @Tags         companies
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateCompanyRequest  true  "Datos de la empresa"
// @Success      201   {object}  dto.CompanyResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/companies [post]
func (h *CompanyHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateCompanyRequest
	if err := parseBody(c, &in); err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.Create(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener empresa por ID
// @Tags         companies
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID de la empresa"
// @Success      200  {object}  dto.CompanyResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/companies/{id} [get]
func (h *CompanyHandler) GetByID(c *fiber.Ctx) error {
	id := c.Params("id")
	if id != GetCompanyID(c) {
		return notFound(c, "empresa")
	}
	out, err := h.uc.GetByID(c.UserContext(), id)
	return foundOr404(c, out, err, "empresa")
}

// List godoc
// @Summary      Listar empresas (solo la del usuario)
// @Tags         companies
// @Security     Bearer
// @Produce      json
// @Param        limit   query     int  false  "Límite"  default(20)
// @Param        offset  query     int  false  "Offset"  default(0)
// @Success      200     {object}  dto.CompanyListResponse
// @Router       /api/companies [get]
func (h *CompanyHandler) List(c *fiber.Ctx) error {
	p := page(c)
	out, err := h.uc.List(c.UserContext(), GetCompanyID(c), p.Limit, p.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ActivateModules godoc
// @Summary      Activar o renovar módulos de la propia empresa
// @Tags         companies
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                      true  "ID de la empresa"
// @Param        body  body  dto.ActivateModulesRequest  true  "Módulos y vencimiento opcional"
// @Success      200   {object}  dto.CompanyResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/companies/{id}/modules [put]
func (h *CompanyHandler) ActivateModules(c *fiber.Ctx) error {
	companyID, ok := h.ownCompany(c)
	if !ok {
		return nil
	}
	var in dto.ActivateModulesRequest
	if err := parseBody(c, &in); err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.ActivateModules(c.UserContext(), companyID, GetUserID(c), in)
	return h.afterModuleChange(c, companyID, out, err)
}

// DeactivateModule godoc
// @Summary      Desactivar un módulo de la propia empresa
// @Tags         companies
// @Security     Bearer
// @Produce      json
// @Param        id      path  string  true  "ID de la empresa"
// @Param        module  path  string  true  "inventory, sales, purchasing, manufacturing o quality"
// @Success      200   {object}  dto.CompanyResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/companies/{id}/modules/{module} [delete]
func (h *CompanyHandler) DeactivateModule(c *fiber.Ctx) error {
	companyID, ok := h.ownCompany(c)
	if !ok {
		return nil
	}
	out, err := h.uc.DeactivateModule(c.UserContext(), companyID, GetUserID(c), c.Params("module"))
	return h.afterModuleChange(c, companyID, out, err)
}

// ownCompany responde 403 y false si :id no es la empresa del token.
func (h *CompanyHandler) ownCompany(c *fiber.Ctx) (string, bool) {
	companyID := GetCompanyID(c)
	if c.Params("id") != companyID {
		_ = c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "solo puede modificar su propia empresa"})
		return "", false
	}
	return companyID, true
}

func (h *CompanyHandler) afterModuleChange(c *fiber.Ctx, companyID string, out *dto.CompanyResponse, err error) error {
	if err != nil {
		return respondError(c, err)
	}
	if h.modules != nil {
		h.modules.Forget(companyID)
	}
	return c.JSON(out)
}
