package http

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/erp-api/internal/application/dto"
	"github.com/rs/zerolog"
)

// moduleChecker lo satisface *usecase.ModuleService.
type moduleChecker interface {
	HasActiveModule(ctx context.Context, companyID, moduleName string) (bool, error)
}

// moduleCacheInvalidator checkers con caché que deben olvidar una empresa al cambiar sus módulos.
type moduleCacheInvalidator interface {
	Forget(companyID string)
}

// RequireModule corta la petición si la empresa del token no tiene el módulo vigente.
// Va después de AuthMiddleware. Sin empresa → 401, módulo inactivo o vencido → 403,
// falla al consultar → 503.
func RequireModule(moduleName string, checker moduleChecker) fiber.Handler {
	disabled := dto.ErrorResponse{
		Code:    "MODULE_DISABLED",
		Message: fmt.Sprintf("el módulo %q no está activo para esta empresa", moduleName),
	}
	return func(c *fiber.Ctx) error {
		companyID := GetCompanyID(c)
		if companyID == "" {
			return unauthorized(c)
		}
		active, err := checker.HasActiveModule(c.UserContext(), companyID, moduleName)
		switch {
		case err != nil:
			zerolog.Ctx(c.UserContext()).Error().Err(err).Str("company_id", companyID).Str("module", moduleName).Msg("verificar módulo")
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
				Code: "MODULE_CHECK_FAILED", Message: "no se pudo verificar el módulo, intente más tarde",
			})
		case !active:
			return c.Status(fiber.StatusForbidden).JSON(disabled)
		}
		return c.Next()
	}
}
