package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	appanalytics "github.com/jhoicas/erp-api/internal/application/analytics"
	"github.com/jhoicas/erp-api/internal/application/auth"
	"github.com/jhoicas/erp-api/internal/application/backup"
	"github.com/jhoicas/erp-api/internal/application/dto"
	"github.com/jhoicas/erp-api/internal/application/inventory"
	"github.com/jhoicas/erp-api/internal/application/manufacturing"
	"github.com/jhoicas/erp-api/internal/application/procurement"
	"github.com/jhoicas/erp-api/internal/application/quality"
	"github.com/jhoicas/erp-api/internal/application/reports"
	"github.com/jhoicas/erp-api/internal/application/sales"
	"github.com/jhoicas/erp-api/internal/application/usecase"
	domainproc "github.com/jhoicas/erp-api/internal/domain/procurement"
	"github.com/jhoicas/erp-api/internal/infrastructure/cache"
	"github.com/jhoicas/erp-api/internal/infrastructure/export"
	"github.com/jhoicas/erp-api/internal/infrastructure/pdf"
	"github.com/jhoicas/erp-api/internal/infrastructure/storage"
	apphttp "github.com/jhoicas/erp-api/internal/interfaces/http"
	"github.com/jhoicas/erp-api/internal/testutil/memstore"
)

// apiClient app completa sobre memstore más el token de la sesión actual.
type apiClient struct {
	t     *testing.T
	app   *fiber.App
	token string
}

func newAPI(t *testing.T) *apiClient {
	t.Helper()
	s := memstore.New()
	blobs, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	engine := inventory.NewEngine(inventory.DefaultAllocationSettings(), nil)
	replenishment := inventory.NewReplenishmentUseCase(s)
	poUC := procurement.NewPurchaseOrderUseCase(s, s, replenishment)
	invoiceUC := sales.NewInvoiceUseCase(s, s, engine, pdf.NewMarotoPDFGenerator())
	authUC := auth.NewAuthUseCase(s.Users(), s.Companies(), auth.JWTConfig{
		Secret: testJWTSecret, ExpMinutes: testExpMin, Issuer: testIssuer,
	}).WithHashCost(bcrypt.MinCost)

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		CompanyUC:        usecase.NewCompanyUseCase(s, s),
		WarehouseUC:      usecase.NewWarehouseUseCase(s, s),
		ProductUC:        usecase.NewProductUseCase(s, s),
		ClientUC:         usecase.NewClientUseCase(s, s),
		SupplierUC:       usecase.NewSupplierUseCase(s, s),
		AuditUC:          usecase.NewAuditUseCase(s.Audit()),
		AnalyticsUC:      usecase.NewAnalyticsUseCase(s.Analytics()),
		ModuleService:    usecase.NewModuleService(s.Companies()),
		DashboardUC:      appanalytics.NewDashboardUseCase(s.Analytics(), s.Batches()),
		RegisterMovement: inventory.NewRegisterMovementUseCase(s, s, engine),
		InventoryQuery:   inventory.NewQueryUseCase(s, engine),
		Replenishment:    replenishment,
		PurchaseOrderUC:  poUC,
		ReceiptUC:        procurement.NewReceiptUseCase(s, s, engine, domainproc.DefaultPolicy(), nil, pdf.NewMarotoPDFGenerator()),
		InspectionUC:     quality.NewInspectionUseCase(s, s, engine),
		EstimationUC:     sales.NewEstimationUseCase(s, s, invoiceUC),
		InvoiceUC:        invoiceUC,
		ManufacturingUC:  manufacturing.NewUseCase(s, s, engine),
		ExportUC:         reports.NewExportUseCase(s, poUC, export.Writers()),
		BackupUC:         backup.NewUseCase(s, blobs),
		AuthUC:           authUC,
		UserUC:           usecase.NewUserUseCase(s, s, authUC),
		Idempotency:      cache.NewInMemoryIdempotencyStore(),
		IdempotencyTTL:   time.Minute,
		Logger:           zerolog.Nop(),
		JWTSecret:        testJWTSecret,
	})
	return &apiClient{t: t, app: app}
}

func (a *apiClient) do(method, path string, body any, headers ...string) (*http.Response, []byte) {
	a.t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if a.token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+a.token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := a.app.Test(req, -1)
	require.NoError(a.t, err)
	out, err := io.ReadAll(resp.Body)
	require.NoError(a.t, err)
	resp.Body.Close()
	return resp, out
}

// call exige el estado esperado y decodifica la respuesta en out (si no es nil).
func (a *apiClient) call(method, path string, body any, want int, out any, headers ...string) []byte {
	a.t.Helper()
	resp, raw := a.do(method, path, body, headers...)
	require.Equal(a.t, want, resp.StatusCode, "%s %s: %s", method, path, raw)
	if out != nil {
		require.NoError(a.t, json.Unmarshal(raw, out))
	}
	return raw
}

// login crea la empresa y un usuario con el rol indicado y deja su token en el cliente.
func (a *apiClient) login(companyID, email, role string) {
	a.t.Helper()
	a.token = ""
	a.call(http.MethodPost, "/api/auth/register", fiber.Map{
		"email": email, "password": "secreto-123", "company_id": companyID, "role": role,
	}, http.StatusCreated, nil)
	var out dto.LoginResponse
	a.call(http.MethodPost, "/api/auth/login", fiber.Map{"email": email, "password": "secreto-123"}, http.StatusOK, &out)
	require.NotEmpty(a.t, out.Token)
	a.token = out.Token
}

func TestAPI_CompraRecepcionYReportes(t *testing.T) {
	api := newAPI(t)

	var company dto.CompanyResponse
	api.call(http.MethodPost, "/api/companies", fiber.Map{"name": "Lácteos del Valle", "nit": "900123456"}, http.StatusCreated, &company)
	api.login(company.ID, "admin@lacteos.co", "admin")

	var clerk dto.UserResponse
	api.call(http.MethodPost, "/api/users", fiber.Map{
		"email": "bodega@lacteos.co", "password": "secreto-123", "role": "bodeguero",
	}, http.StatusCreated, &clerk)
	api.call(http.MethodPatch, "/api/users/"+clerk.ID+"/status", fiber.Map{"status": "suspended"}, http.StatusOK, &clerk)
	assert.Equal(t, "suspended", clerk.Status)
	var users dto.UserListResponse
	api.call(http.MethodGet, "/api/users", nil, http.StatusOK, &users)
	assert.Len(t, users.Items, 2)
	var me dto.UserResponse
	api.call(http.MethodGet, "/api/users/me", nil, http.StatusOK, &me)
	api.call(http.MethodPatch, "/api/users/"+me.ID+"/status", fiber.Map{"status": "inactive"}, http.StatusForbidden, nil)
	api.call(http.MethodPost, "/api/auth/login", fiber.Map{"email": "bodega@lacteos.co", "password": "secreto-123"}, http.StatusForbidden, nil)

	var wh dto.WarehouseResponse
	api.call(http.MethodPost, "/api/warehouses", fiber.Map{"code": "PPAL", "name": "Principal"}, http.StatusCreated, &wh)
	var prod dto.ProductResponse
	api.call(http.MethodPost, "/api/products", fiber.Map{
		"sku": "QUESO-500", "name": "Queso 500g", "price": "9000", "track_batches": true, "shelf_life_days": 60,
	}, http.StatusCreated, &prod)
	var sup dto.SupplierResponse
	api.call(http.MethodPost, "/api/suppliers", fiber.Map{"name": "Finca La Esperanza", "tax_id": "800111"}, http.StatusCreated, &sup)

	var po dto.PurchaseOrderResponse
	api.call(http.MethodPost, "/api/purchase-orders", fiber.Map{
		"supplier_id": sup.ID, "warehouse_id": wh.ID,
		"lines": []fiber.Map{{"product_id": prod.ID, "quantity": "10", "unit_cost": "1000"}},
	}, http.StatusCreated, &po)
	assert.Equal(t, "PO-000001", po.Number)
	require.Len(t, po.Lines, 1)
	api.call(http.MethodPost, "/api/purchase-orders/"+po.ID+"/confirm", nil, http.StatusOK, &po)
	assert.Equal(t, "CONFIRMED", po.Status)

	grn := fiber.Map{
		"purchase_order_id": po.ID,
		"supplier_ref":      "FAC-77",
		"lines": []fiber.Map{{
			"po_line_id": po.Lines[0].ID, "received_qty": "10", "accepted_qty": "10", "rejected_qty": "0",
			"batch_number": "L-0715", "expires_at": "2099-01-01T00:00:00Z",
		}},
		"charges": []fiber.Map{{"type": "FREIGHT", "basis": "QUANTITY", "amount": "500"}},
	}

	var check dto.GRNValidationResponse
	api.call(http.MethodPost, "/api/grns/validate", grn, http.StatusOK, &check)
	assert.True(t, check.Valid)

	var posted dto.GRNResponse
	first := api.call(http.MethodPost, "/api/grns", grn, http.StatusCreated, &posted, apphttp.IdempotencyHeader, "grn-1")
	require.Len(t, posted.Lines, 1)
	assert.True(t, posted.Lines[0].LandedUnitCost.Equal(decimal.NewFromInt(1050)), posted.Lines[0].LandedUnitCost.String())

	resp, replay := api.do(http.MethodPost, "/api/grns", grn, apphttp.IdempotencyHeader, "grn-1")
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "true", resp.Header.Get("Idempotent-Replayed"))
	assert.Equal(t, first, replay)

	var batches dto.BatchListResponse
	api.call(http.MethodGet, "/api/inventory/batches?product_id="+prod.ID, nil, http.StatusOK, &batches)
	assert.Len(t, batches.Items, 1)

	var bySKU dto.ProductResponse
	api.call(http.MethodGet, "/api/products/sku/QUESO-500", nil, http.StatusOK, &bySKU)
	assert.Equal(t, prod.ID, bySKU.ID)
	api.call(http.MethodGet, "/api/products/sku/NO-EXISTE", nil, http.StatusNotFound, nil)

	var summary dto.WarehouseSummaryResponse
	api.call(http.MethodGet, "/api/warehouses/"+wh.ID+"/summary", nil, http.StatusOK, &summary)
	assert.Equal(t, 1, summary.SKUCount)
	assert.True(t, summary.OnHandQty.Equal(decimal.NewFromInt(10)), summary.OnHandQty.String())
	assert.True(t, summary.AvailableQty.Equal(decimal.NewFromInt(10)))
	assert.True(t, summary.Valuation.Equal(decimal.NewFromInt(10500)), summary.Valuation.String())

	api.call(http.MethodGet, "/api/purchase-orders/"+po.ID, nil, http.StatusOK, &po)
	assert.Equal(t, "RECEIVED", po.Status)

	// una segunda recepción sobre la OC cerrada se rechaza con sus issues
	resp, body := api.do(http.MethodPost, "/api/grns", grn)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, string(body), "PO_NOT_RECEIVABLE")

	var rec domainproc.Reconciliation
	api.call(http.MethodGet, "/api/purchase-orders/"+po.ID+"/reconciliation", nil, http.StatusOK, &rec)

	resp, csv := api.do(http.MethodGet, "/api/exports/stock_batches?format=csv", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), "stock_batches_")
	assert.Contains(t, string(csv), "L-0715")

	var audit dto.AuditLogListResponse
	api.call(http.MethodGet, "/api/audit-logs?entity_type=goods_receipt", nil, http.StatusOK, &audit)
	assert.Len(t, audit.Items, 1)

	var margins dto.MarginsReportDTO
	api.call(http.MethodGet, "/api/analytics/margins", nil, http.StatusOK, &margins)
	assert.True(t, margins.TotalRevenue.IsZero())
	api.call(http.MethodGet, "/api/analytics/margins?start_date=2026-13-01", nil, http.StatusBadRequest, nil)
	api.call(http.MethodGet, "/api/dashboard/summary", nil, http.StatusOK, nil)

	api.call(http.MethodGet, "/api/invoices", nil, http.StatusOK, nil)
	api.call(http.MethodDelete, "/api/companies/"+company.ID+"/modules/sales", nil, http.StatusOK, &company)
	assert.NotContains(t, company.Modules, "sales")
	_, body = api.do(http.MethodGet, "/api/invoices", nil)
	assert.Contains(t, string(body), "MODULE_DISABLED")
	api.call(http.MethodPut, "/api/companies/"+company.ID+"/modules", fiber.Map{"modules": []string{"sales"}}, http.StatusOK, &company)
	api.call(http.MethodGet, "/api/invoices", nil, http.StatusOK, nil)
}

func TestAPI_ErroresYPermisos(t *testing.T) {
	api := newAPI(t)

	var company dto.CompanyResponse
	api.call(http.MethodPost, "/api/companies", fiber.Map{"name": "Panadería", "nit": "901000"}, http.StatusCreated, &company)
	api.call(http.MethodPost, "/api/companies", fiber.Map{"name": "Otra", "nit": "901000"}, http.StatusConflict, nil)

	api.login(company.ID, "ventas@pan.co", "vendedor")

	var me dto.UserResponse
	api.call(http.MethodGet, "/api/users/me", nil, http.StatusOK, &me)
	assert.Equal(t, "ventas@pan.co", me.Email)
	assert.Equal(t, "vendedor", me.Role)

	var errResp dto.ErrorResponse
	api.call(http.MethodPost, "/api/auth/register", fiber.Map{
		"email": "intruso@pan.co", "password": "secreto-123", "company_id": company.ID, "role": "admin",
	}, http.StatusForbidden, &errResp)
	api.call(http.MethodGet, "/api/users", nil, http.StatusForbidden, nil)

	api.call(http.MethodGet, "/api/audit-logs", nil, http.StatusForbidden, &errResp)
	assert.Equal(t, "FORBIDDEN", errResp.Code)

	api.call(http.MethodPost, "/api/clients", fiber.Map{"name": ""}, http.StatusBadRequest, &errResp)
	assert.Equal(t, "VALIDATION", errResp.Code)
	assert.NotNil(t, errResp.Details)

	api.call(http.MethodGet, "/api/invoices/no-existe", nil, http.StatusNotFound, nil)

	var client dto.ClientResponse
	api.call(http.MethodPost, "/api/clients", fiber.Map{"name": "Tienda Don José", "tax_id": "1020"}, http.StatusCreated, &client)
	api.call(http.MethodDelete, "/api/clients/"+client.ID, nil, http.StatusNoContent, nil)
	api.call(http.MethodGet, "/api/clients/"+client.ID, nil, http.StatusNotFound, nil)
	var list dto.ClientListResponse
	api.call(http.MethodGet, "/api/clients", nil, http.StatusOK, &list)
	assert.Empty(t, list.Items)

	api.token = ""
	api.call(http.MethodGet, "/api/products", nil, http.StatusUnauthorized, nil)
}

func TestAPI_ListadoDeEmpresasSoloLaPropia(t *testing.T) {
	api := newAPI(t)

	var own, other dto.CompanyResponse
	api.call(http.MethodPost, "/api/companies", fiber.Map{"name": "Quesera Norte", "nit": "902000"}, http.StatusCreated, &own)
	api.call(http.MethodPost, "/api/companies", fiber.Map{"name": "Competencia SAS", "nit": "902001"}, http.StatusCreated, &other)
	api.login(own.ID, "admin@quesera.co", "admin")

	var list dto.CompanyListResponse
	api.call(http.MethodGet, "/api/companies", nil, http.StatusOK, &list)
	require.Len(t, list.Items, 1)
	assert.Equal(t, own.ID, list.Items[0].ID)

	api.call(http.MethodGet, "/api/companies?offset=20", nil, http.StatusOK, &list)
	assert.Empty(t, list.Items)

	api.call(http.MethodGet, "/api/companies/"+other.ID, nil, http.StatusNotFound, nil)
}
