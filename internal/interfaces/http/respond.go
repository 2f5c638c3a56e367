package http

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/erp-api/internal/application/dto"
	"github.com/jhoicas/erp-api/internal/domain"
	"github.com/rs/zerolog/log"
)

var validate = newValidator()

// newValidator usa el nombre JSON/query del campo en los issues.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "query"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})
	return v
}

// statusFor mapea errores de dominio a estado HTTP y código estable.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrReceiptRejected):
		return fiber.StatusUnprocessableEntity, "RECEIPT_REJECTED"
	case errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusBadRequest, "VALIDATION"
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrUserNotFound):
		return fiber.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, domain.ErrUnauthorized):
		return fiber.StatusUnauthorized, "UNAUTHORIZED"
	case errors.Is(err, domain.ErrForbidden):
		return fiber.StatusForbidden, "FORBIDDEN"
	case errors.Is(err, domain.ErrDuplicate), errors.Is(err, domain.ErrEmailAlreadyExists):
		return fiber.StatusConflict, "DUPLICATE"
	case errors.Is(err, domain.ErrInsufficientStock):
		return fiber.StatusConflict, "INSUFFICIENT_STOCK"
	case errors.Is(err, domain.ErrInvalidState):
		return fiber.StatusConflict, "INVALID_STATE"
	case errors.Is(err, domain.ErrConflict):
		return fiber.StatusConflict, "CONFLICT"
	}
	return fiber.StatusInternalServerError, "INTERNAL"
}

// respondError responde dto.ErrorResponse; los issues de validación van en details.
func respondError(c *fiber.Ctx, err error) error {
	status, code := statusFor(err)
	body := dto.ErrorResponse{Code: code, Message: err.Error()}
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		body.Details = ve.Issues
	}
	if status == fiber.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Path()).Str("company_id", GetCompanyID(c)).Msg("error interno")
		body.Message = "error interno"
	}
	return c.Status(status).JSON(body)
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
}

func notFound(c *fiber.Ctx, what string) error {
	return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: what + " no encontrado"})
}

// foundOr404 responde out como JSON; nil se traduce en 404.
func foundOr404[T any](c *fiber.Ctx, out *T, err error, what string) error {
	if err != nil {
		return respondError(c, err)
	}
	if out == nil {
		return notFound(c, what)
	}
	return c.JSON(out)
}

// parseBody decodifica el JSON y valida las etiquetas validate del DTO.
func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return domain.NewValidationError(domain.Issue{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	return check(out)
}

// parseOptionalBody como parseBody pero acepta cuerpo vacío.
func parseOptionalBody(c *fiber.Ctx, out any) error {
	if len(c.Body()) == 0 {
		return check(out)
	}
	return parseBody(c, out)
}

// parseQuery igual que parseBody para parámetros de consulta.
func parseQuery(c *fiber.Ctx, out any) error {
	if err := c.QueryParser(out); err != nil {
		return domain.NewValidationError(domain.Issue{Code: "INVALID_PARAMS", Message: "parámetros de consulta inválidos"})
	}
	return check(out)
}

func check(out any) error {
	err := validate.Struct(out)
	if err == nil {
		return nil
	}
	var fe validator.ValidationErrors
	if !errors.As(err, &fe) {
		return domain.NewValidationError(domain.Issue{Code: "VALIDATION", Message: err.Error()})
	}
	issues := make([]domain.Issue, 0, len(fe))
	for _, e := range fe {
		issues = append(issues, domain.Issue{Code: "VALIDATION", Field: fieldPath(e.Namespace()), Message: validationMessage(e)})
	}
	return domain.NewValidationError(issues...)
}

// fieldPath quita el nombre del struct raíz: CreateGRNRequest.lines[0].batch_number -> lines[0].batch_number.
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func validationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "campo requerido"
	case "email":
		return "email inválido"
	case "min":
		return "mínimo " + e.Param()
	case "max":
		return "máximo " + e.Param()
	case "oneof":
		return "debe ser uno de: " + e.Param()
	case "uuid":
		return "UUID inválido"
	}
	return "valor inválido"
}

// page paginación desde query (limit ≤ 100).
func page(c *fiber.Ctx) dto.PageRequest {
	p := dto.PageRequest{Limit: c.QueryInt("limit", dto.DefaultPageLimit), Offset: c.QueryInt("offset")}
	p.DefaultPage()
	return p
}
