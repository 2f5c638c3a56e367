package http

import (
	nethttp "net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	appanalytics "github.com/jhoicas/erp-api/internal/application/analytics"
	"github.com/jhoicas/erp-api/internal/application/auth"
	"github.com/jhoicas/erp-api/internal/application/backup"
	"github.com/jhoicas/erp-api/internal/application/inventory"
	"github.com/jhoicas/erp-api/internal/application/manufacturing"
	"github.com/jhoicas/erp-api/internal/application/ports"
	"github.com/jhoicas/erp-api/internal/application/procurement"
	"github.com/jhoicas/erp-api/internal/application/quality"
	"github.com/jhoicas/erp-api/internal/application/reports"
	"github.com/jhoicas/erp-api/internal/application/sales"
	"github.com/jhoicas/erp-api/internal/application/usecase"
	"github.com/jhoicas/erp-api/internal/domain/entity"
	"github.com/rs/zerolog"
)

// metricsExporter lo implementa *telemetry.Metrics.
type metricsExporter interface {
	httpObserver
	Handler() nethttp.Handler
}

// RouterDeps dependencias para el router.
type RouterDeps struct {
	CompanyUC        *usecase.CompanyUseCase
	WarehouseUC      *usecase.WarehouseUseCase
	ProductUC        *usecase.ProductUseCase
	ClientUC         *usecase.ClientUseCase
	SupplierUC       *usecase.SupplierUseCase
	AuditUC          *usecase.AuditUseCase
	AnalyticsUC      *usecase.AnalyticsUseCase
	ModuleService    moduleChecker
	DashboardUC      *appanalytics.DashboardUseCase
	RegisterMovement *inventory.RegisterMovementUseCase
	InventoryQuery   *inventory.QueryUseCase
	Replenishment    *inventory.ReplenishmentUseCase
	PurchaseOrderUC  *procurement.PurchaseOrderUseCase
	ReceiptUC        *procurement.ReceiptUseCase
	InspectionUC     *quality.InspectionUseCase
	EstimationUC     *sales.EstimationUseCase
	InvoiceUC        *sales.InvoiceUseCase
	ManufacturingUC  *manufacturing.UseCase
	ExportUC         *reports.ExportUseCase
	BackupUC         *backup.UseCase
	AuthUC           *auth.AuthUseCase
	UserUC           *usecase.UserUseCase

	Idempotency    ports.IdempotencyStore
	IdempotencyTTL time.Duration
	Metrics        metricsExporter // nil deshabilita /metrics
	Logger         zerolog.Logger
	JWTSecret      string
}

// Router registra middleware transversal y las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Use(Tracing())
	if deps.Metrics != nil {
		app.Use(Metrics(deps.Metrics))
		app.Get("/metrics", adaptor.HTTPHandler(deps.Metrics.Handler()))
	}
	app.Use(RequestLogger(deps.Logger))

	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	invalidator, _ := deps.ModuleService.(moduleCacheInvalidator)
	companyHandler := NewCompanyHandler(deps.CompanyUC, invalidator)
	api.Post("/companies", companyHandler.Create)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	admin := RequireRole(entity.RoleAdmin)
	idem := Idempotency(deps.Idempotency, deps.IdempotencyTTL)

	companies := protected.Group("/companies")
	companies.Get("/", admin, companyHandler.List)
	companies.Get("/:id", companyHandler.GetByID)
	companies.Put("/:id/modules", admin, companyHandler.ActivateModules)
	companies.Delete("/:id/modules/:module", admin, companyHandler.DeactivateModule)

	userHandler := NewUserHandler(deps.UserUC)
	protected.Get("/users/me", userHandler.Me)
	users := protected.Group("/users", admin)
	users.Get("/", userHandler.List)
	users.Post("/", userHandler.Create)
	users.Get("/:id", userHandler.GetByID)
	users.Patch("/:id/status", userHandler.UpdateStatus)

	// Catálogo
	warehouseHandler := NewWarehouseHandler(deps.WarehouseUC)
	warehouses := protected.Group("/warehouses")
	warehouses.Post("/", RequireRole(entity.RoleAdmin, entity.RoleBodeguero), warehouseHandler.Create)
	warehouses.Get("/", warehouseHandler.List)
	warehouses.Get("/:id", warehouseHandler.GetByID)
	warehouses.Get("/:id/summary", warehouseHandler.Summary)

	productHandler := NewProductHandler(deps.ProductUC)
	catalogWrite := RequireRole(entity.RoleAdmin, entity.RoleBodeguero, entity.RoleComprador)
	products := protected.Group("/products")
	products.Post("/", catalogWrite, productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/sku/:sku", productHandler.GetBySKU)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", catalogWrite, productHandler.Update)

	clientHandler := NewClientHandler(deps.ClientUC)
	clientWrite := RequireRole(entity.RoleAdmin, entity.RoleVendedor)
	clients := protected.Group("/clients")
	clients.Post("/", clientWrite, clientHandler.Create)
	clients.Get("/", clientHandler.List)
	clients.Get("/:id", clientHandler.GetByID)
	clients.Put("/:id", clientWrite, clientHandler.Update)
	clients.Delete("/:id", clientWrite, clientHandler.Delete)

	supplierHandler := NewSupplierHandler(deps.SupplierUC)
	supplierWrite := RequireRole(entity.RoleAdmin, entity.RoleComprador)
	suppliers := protected.Group("/suppliers")
	suppliers.Post("/", supplierWrite, supplierHandler.Create)
	suppliers.Get("/", supplierHandler.List)
	suppliers.Get("/:id", supplierHandler.GetByID)
	suppliers.Put("/:id", supplierWrite, supplierHandler.Update)
	suppliers.Delete("/:id", supplierWrite, supplierHandler.Delete)

	// Inventario
	inventoryHandler := NewInventoryHandler(deps.RegisterMovement, deps.InventoryQuery, deps.Replenishment)
	inv := protected.Group("/inventory", RequireModule(entity.ModuleInventory, deps.ModuleService))
	inv.Post("/movements", RequireRole(entity.RoleAdmin, entity.RoleBodeguero), inventoryHandler.RegisterMovement)
	inv.Get("/movements", inventoryHandler.ListMovements)
	inv.Get("/stock", inventoryHandler.StockLevels)
	inv.Get("/batches", inventoryHandler.ListBatches)
	inv.Get("/batches/expiring", inventoryHandler.ExpiringBatches)
	inv.Post("/allocations/preview", inventoryHandler.PreviewAllocation)
	inv.Get("/replenishment-list", inventoryHandler.GetReplenishmentList)

	// Compras
	purchasing := RequireModule(entity.ModulePurchasing, deps.ModuleService)
	buyer := RequireRole(entity.RoleAdmin, entity.RoleComprador)
	poHandler := NewPurchaseOrderHandler(deps.PurchaseOrderUC)
	grnHandler := NewReceiptHandler(deps.ReceiptUC)
	pos := protected.Group("/purchase-orders", purchasing)
	pos.Post("/", buyer, poHandler.Create)
	pos.Post("/from-replenishment", buyer, poHandler.CreateFromReplenishment)
	pos.Get("/", poHandler.List)
	pos.Get("/:id", poHandler.GetByID)
	pos.Post("/:id/confirm", buyer, poHandler.Confirm)
	pos.Post("/:id/cancel", buyer, poHandler.Cancel)
	pos.Get("/:id/reconciliation", poHandler.Reconciliation)
	pos.Get("/:id/grns", grnHandler.ListByPurchaseOrder)

	receiver := RequireRole(entity.RoleAdmin, entity.RoleBodeguero, entity.RoleComprador)
	grns := protected.Group("/grns", purchasing)
	grns.Post("/validate", receiver, grnHandler.Validate)
	grns.Post("/", receiver, idem, grnHandler.Post)
	grns.Get("/", grnHandler.List)
	grns.Get("/:id", grnHandler.GetByID)
	grns.Get("/:id/pdf", grnHandler.PDF)

	// Calidad
	qualityHandler := NewQualityHandler(deps.InspectionUC)
	qc := protected.Group("/quality", RequireModule(entity.ModuleQuality, deps.ModuleService))
	qc.Post("/inspections", RequireRole(entity.RoleAdmin, entity.RoleCalidad), qualityHandler.Inspect)
	qc.Get("/batches/:id/inspections", qualityHandler.ListByBatch)

	// Ventas
	salesModule := RequireModule(entity.ModuleSales, deps.ModuleService)
	seller := RequireRole(entity.RoleAdmin, entity.RoleVendedor)
	estimationHandler := NewEstimationHandler(deps.EstimationUC)
	estimations := protected.Group("/estimations", salesModule)
	estimations.Post("/", seller, estimationHandler.Create)
	estimations.Get("/", estimationHandler.List)
	estimations.Get("/:id", estimationHandler.GetByID)
	estimations.Put("/:id/status", seller, estimationHandler.ChangeStatus)
	estimations.Post("/:id/convert", seller, idem, estimationHandler.Convert)

	invoiceHandler := NewInvoiceHandler(deps.InvoiceUC)
	invoices := protected.Group("/invoices", salesModule)
	invoices.Post("/", seller, idem, invoiceHandler.Create)
	invoices.Get("/", invoiceHandler.List)
	invoices.Get("/:id", invoiceHandler.GetByID)
	invoices.Get("/:id/pdf", invoiceHandler.PDF)

	// Producción
	manufacturingModule := RequireModule(entity.ModuleManufacturing, deps.ModuleService)
	producer := RequireRole(entity.RoleAdmin, entity.RoleProduccion)
	mfgHandler := NewManufacturingHandler(deps.ManufacturingUC)
	boms := protected.Group("/boms", manufacturingModule)
	boms.Post("/", producer, mfgHandler.CreateBOM)
	boms.Get("/", mfgHandler.ListBOMs)
	boms.Get("/:id", mfgHandler.GetBOM)

	workOrders := protected.Group("/work-orders", manufacturingModule)
	workOrders.Post("/", producer, mfgHandler.CreateWorkOrder)
	workOrders.Get("/", mfgHandler.ListWorkOrders)
	workOrders.Get("/:id", mfgHandler.GetWorkOrder)
	workOrders.Post("/:id/start", producer, mfgHandler.Start)
	workOrders.Post("/:id/complete", producer, idem, mfgHandler.Complete)
	workOrders.Post("/:id/cancel", producer, mfgHandler.Cancel)

	// Reportes y administración
	analyticsHandler := NewAnalyticsHandler(deps.AnalyticsUC, deps.DashboardUC)
	protected.Get("/dashboard/summary", analyticsHandler.Dashboard)
	protected.Get("/analytics/margins", analyticsHandler.Margins)
	protected.Get("/exports/:dataset", RequireRole(entity.RoleAdmin, entity.RoleComprador, entity.RoleBodeguero),
		NewExportHandler(deps.ExportUC).Export)
	protected.Get("/audit-logs", admin, NewAuditHandler(deps.AuditUC).List)

	dumpHandler := NewDumpHandler(deps.BackupUC)
	dumps := protected.Group("/admin/dumps", admin)
	dumps.Post("/", dumpHandler.Export)
	dumps.Post("/import", dumpHandler.Import)
	dumps.Get("/", dumpHandler.List)
}
