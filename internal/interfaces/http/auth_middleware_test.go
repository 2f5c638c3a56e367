package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/erp-api/internal/domain/entity"
	apphttp "github.com/jhoicas/erp-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/erp-api/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testUserID    = "00000000-0000-0000-0000-000000000001"
	testCompanyID = "00000000-0000-0000-0000-000000000002"
	testIssuer    = "erp-api-test"
	testExpMin    = 60
)

// buildTestApp construye una aplicación Fiber mínima con:
//   - AuthMiddleware para parsear el JWT y cargar locals
//   - RequireRole para autorizar el acceso
//   - Un handler dummy que devuelve 200 si pasa los middlewares
func buildTestApp(allowedRoles ...string) *fiber.App {
	app := fiber.New(fiber.Config{
		// Silenciar errores internos en los tests
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})
	// Ruta protegida: JWT + RBAC
	app.Get("/protected",
		apphttp.AuthMiddleware(testJWTSecret),
		apphttp.RequireRole(allowedRoles...),
		func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusOK).JSON(fiber.Map{
				"ok":   true,
				"role": apphttp.GetRole(c),
			})
		},
	)
	return app
}

// tokenForRole genera un JWT con el rol indicado.
func tokenForRole(t *testing.T, role string) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, testCompanyID, role, testIssuer, testExpMin)
	require.NoError(t, err, "debe generarse un token JWT válido")
	return "Bearer " + tok
}

// doRequest lanza una petición GET /protected y devuelve la respuesta.
func doRequest(t *testing.T, app *fiber.App, authHeader string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests RequireRole
// ──────────────────────────────────────────────────────────────────────────────

func TestRequireRole(t *testing.T) {
	cases := []struct {
		name     string
		allowed  []string
		header   func(t *testing.T) string
		wantCode int
		wantBody string
	}{
		{"admin en ruta admin", []string{entity.RoleAdmin}, bearer(entity.RoleAdmin), http.StatusOK, `"role":"admin"`},
		{"bodeguero en ruta admin o bodeguero", []string{entity.RoleAdmin, entity.RoleBodeguero}, bearer(entity.RoleBodeguero), http.StatusOK, ""},
		{"comprador en ruta de compras", []string{entity.RoleAdmin, entity.RoleComprador}, bearer(entity.RoleComprador), http.StatusOK, ""},
		{"vendedor en ruta admin", []string{entity.RoleAdmin}, bearer(entity.RoleVendedor), http.StatusForbidden, "FORBIDDEN"},
		{"calidad en ruta de producción", []string{entity.RoleProduccion}, bearer(entity.RoleCalidad), http.StatusForbidden, "FORBIDDEN"},
		{"token sin rol", []string{entity.RoleAdmin}, bearer(""), http.StatusUnauthorized, "MISSING_ROLE"},
		{"sin header", []string{entity.RoleAdmin}, func(*testing.T) string { return "" }, http.StatusUnauthorized, "MISSING_TOKEN"},
		{"token malformado", []string{entity.RoleAdmin}, func(*testing.T) string { return "Bearer token.invalido.aqui" }, http.StatusUnauthorized, "INVALID_TOKEN"},
		{"esquema distinto de Bearer", []string{entity.RoleAdmin}, func(*testing.T) string { return "Basic abc" }, http.StatusUnauthorized, "INVALID_TOKEN"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := doRequest(t, buildTestApp(tc.allowed...), tc.header(t))
			defer resp.Body.Close()
			assert.Equal(t, tc.wantCode, resp.StatusCode)
			if tc.wantBody != "" {
				body, _ := io.ReadAll(resp.Body)
				assert.Contains(t, string(body), tc.wantBody)
			}
		})
	}
}

func bearer(role string) func(t *testing.T) string {
	return func(t *testing.T) string { return tokenForRole(t, role) }
}

func TestRequireModule(t *testing.T) {
	checker := moduleCheckerFunc(func(_ context.Context, companyID, module string) (bool, error) {
		if module == "roto" {
			return false, errors.New("db caída")
		}
		return module == entity.ModuleInventory, nil
	})
	app := fiber.New()
	app.Get("/:module", apphttp.AuthMiddleware(testJWTSecret), func(c *fiber.Ctx) error {
		return apphttp.RequireModule(c.Params("module"), checker)(c)
	}, func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	for module, want := range map[string]int{
		entity.ModuleInventory:     http.StatusOK,
		entity.ModuleManufacturing: http.StatusForbidden,
		"roto":                     http.StatusServiceUnavailable,
	} {
		req := httptest.NewRequest(http.MethodGet, "/"+module, nil)
		req.Header.Set("Authorization", tokenForRole(t, entity.RoleAdmin))
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, want, resp.StatusCode, module)
	}
}

type moduleCheckerFunc func(ctx context.Context, companyID, module string) (bool, error)

func (f moduleCheckerFunc) HasActiveModule(ctx context.Context, companyID, module string) (bool, error) {
	return f(ctx, companyID, module)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests AuthMiddleware — extracción de claims del token
// ──────────────────────────────────────────────────────────────────────────────

func TestAuthMiddleware_ExtractaClaims(t *testing.T) {
	app := fiber.New()
	app.Get("/me", apphttp.AuthMiddleware(testJWTSecret), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"user_id":    apphttp.GetUserID(c),
			"company_id": apphttp.GetCompanyID(c),
			"role":       apphttp.GetRole(c),
		})
	})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", tokenForRole(t, "admin"))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, testUserID, body["user_id"])
	assert.Equal(t, testCompanyID, body["company_id"])
	assert.Equal(t, "admin", body["role"])
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests JWT pkg — integridad del generate/parse con role
// ──────────────────────────────────────────────────────────────────────────────

func TestJWT_GenerateAndParse_ConRole(t *testing.T) {
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, testCompanyID, "bodeguero", testIssuer, testExpMin)
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	userID, companyID, role, err := pkgjwt.Parse(testJWTSecret, tok)
	require.NoError(t, err)

	assert.Equal(t, testUserID, userID)
	assert.Equal(t, testCompanyID, companyID)
	assert.Equal(t, "bodeguero", role)
}

func TestJWT_TokenExpirado_RetornaError(t *testing.T) {
	// Token con expiración -1 minuto (ya expirado)
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, testCompanyID, "admin", testIssuer, -1)
	require.NoError(t, err)

	_, _, _, err = pkgjwt.Parse(testJWTSecret, tok)
	assert.Error(t, err, "token expirado debe retornar error")
}

func TestJWT_SecretIncorrecto_RetornaError(t *testing.T) {
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, testCompanyID, "admin", testIssuer, testExpMin)
	require.NoError(t, err)

	_, _, _, err = pkgjwt.Parse("otro-secret-completamente-distinto", tok)
	assert.Error(t, err, "secret incorrecto debe invalidar el token")
}
