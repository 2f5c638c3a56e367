// @title           ERP API
// @version         1.0
// @description     Compras, recepción con costo de internación, inventario por lotes, calidad, ventas y producción.
// @BasePath        /
// @securityDefinitions.apikey Bearer
// @in              header
// @name            Authorization
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
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
	domaininv "github.com/jhoicas/erp-api/internal/domain/inventory"
	domainproc "github.com/jhoicas/erp-api/internal/domain/procurement"
	"github.com/jhoicas/erp-api/internal/infrastructure/cache"
	"github.com/jhoicas/erp-api/internal/infrastructure/export"
	infrapdf "github.com/jhoicas/erp-api/internal/infrastructure/pdf"
	"github.com/jhoicas/erp-api/internal/infrastructure/postgres"
	"github.com/jhoicas/erp-api/internal/infrastructure/storage"
	"github.com/jhoicas/erp-api/internal/infrastructure/telemetry"
	httpRouter "github.com/jhoicas/erp-api/internal/interfaces/http"
	"github.com/jhoicas/erp-api/pkg/config"
	"github.com/jhoicas/erp-api/pkg/logger"
	"github.com/shopspring/decimal"
)

const swaggerFile = "./docs/swagger.json"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()

	shutdownTracer, err := telemetry.InitTracer(ctx, cfg.Telemetry.OTLPEndpoint, cfg.App.Name, log.Component("telemetry").Zerolog())
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar trazas")
	}

	pool, err := postgres.Connect(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if cfg.DB.AutoMigrate {
		if err := migrate(ctx, cfg.DB, log); err != nil {
			log.Fatal().Err(err).Msg("aplicar migraciones")
		}
	}

	var metrics *telemetry.Metrics
	var recorder ports.Recorder = ports.NopRecorder{}
	if cfg.Telemetry.MetricsEnabled {
		metrics = telemetry.NewMetrics()
		recorder = metrics
	}

	idempotency, closeIdempotency := idempotencyStore(ctx, cfg.Redis, log)
	defer closeIdempotency()

	blobs, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		log.Fatal().Err(err).Msg("almacenamiento de respaldos")
	}

	store := postgres.NewStore(pool)
	txRunner := postgres.NewTxRunner(pool).WithRetries(cfg.DB.TxRetries)
	engine := inventory.NewEngine(allocationSettings(cfg.Allocation), recorder)
	pdfGenerator := infrapdf.NewMarotoPDFGenerator()

	replenishmentUC := inventory.NewReplenishmentUseCase(store)
	purchaseOrderUC := procurement.NewPurchaseOrderUseCase(store, txRunner, replenishmentUC)
	invoiceUC := sales.NewInvoiceUseCase(store, txRunner, engine, pdfGenerator)
	authUC := auth.NewAuthUseCase(store.Users(), store.Companies(), auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	deps := httpRouter.RouterDeps{
		CompanyUC:        usecase.NewCompanyUseCase(store, txRunner),
		WarehouseUC:      usecase.NewWarehouseUseCase(store, txRunner),
		ProductUC:        usecase.NewProductUseCase(store, txRunner),
		ClientUC:         usecase.NewClientUseCase(store, txRunner),
		SupplierUC:       usecase.NewSupplierUseCase(store, txRunner),
		AuditUC:          usecase.NewAuditUseCase(store.Audit()),
		AnalyticsUC:      usecase.NewAnalyticsUseCase(store.Analytics()),
		ModuleService:    usecase.NewModuleService(store.Companies()),
		DashboardUC:      appanalytics.NewDashboardUseCase(store.Analytics(), store.Batches()),
		RegisterMovement: inventory.NewRegisterMovementUseCase(store, txRunner, engine),
		InventoryQuery:   inventory.NewQueryUseCase(store, engine),
		Replenishment:    replenishmentUC,
		PurchaseOrderUC:  purchaseOrderUC,
		ReceiptUC:        procurement.NewReceiptUseCase(store, txRunner, engine, receiptPolicy(cfg.Receipt), recorder, pdfGenerator),
		InspectionUC:     quality.NewInspectionUseCase(store, txRunner, engine),
		EstimationUC:     sales.NewEstimationUseCase(store, txRunner, invoiceUC),
		InvoiceUC:        invoiceUC,
		ManufacturingUC:  manufacturing.NewUseCase(store, txRunner, engine),
		ExportUC:         reports.NewExportUseCase(store, purchaseOrderUC, export.Writers()),
		BackupUC:         backup.NewUseCase(txRunner, blobs),
		AuthUC:           authUC,
		UserUC:           usecase.NewUserUseCase(store, txRunner, authUC),
		Idempotency:      idempotency,
		IdempotencyTTL:   time.Duration(cfg.Redis.IdempotencyTTLMinutes) * time.Minute,
		Logger:           log.Component("http").Zerolog(),
		JWTSecret:        cfg.JWT.Secret,
	}
	if metrics != nil {
		deps.Metrics = metrics
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
		BodyLimit:    16 * 1024 * 1024,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs (requiere `swag init`)
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "ERP API",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		if err := pool.Ping(c.UserContext()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "service": cfg.App.Name})
		}
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, deps)

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	if err := shutdownTracer(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado de trazas")
	}

	log.Info().Msg("aplicación detenida")
}

func migrate(ctx context.Context, cfg config.DBConfig, log *logger.Logger) (err error) {
	_, span := telemetry.StartSpan(ctx, "startup.migrate")
	defer span.End()
	migrator, err := postgres.NewMigrator(cfg.ConnectionString(), log.Component("migrate").Zerolog())
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, migrator.Close()) }()
	return migrator.Up()
}

// idempotencyStore Redis si REDIS_ADDR está definido; si no, memoria del proceso.
func idempotencyStore(ctx context.Context, cfg config.RedisConfig, log *logger.Logger) (ports.IdempotencyStore, func()) {
	if cfg.Addr == "" {
		log.Warn().Msg("REDIS_ADDR vacío: llaves de idempotencia en memoria (una sola instancia)")
		return cache.NewInMemoryIdempotencyStore(), func() {}
	}
	store, err := cache.NewRedisIdempotencyStore(ctx, cfg.Addr, cfg.Password, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Str("addr", cfg.Addr).Msg("conexión a Redis")
	}
	return store, func() {
		if err := store.Close(); err != nil {
			log.Warn().Err(err).Msg("cerrar Redis")
		}
	}
}

func allocationSettings(cfg config.AllocationConfig) inventory.AllocationSettings {
	settings := inventory.DefaultAllocationSettings()
	if st, err := domaininv.ParseStrategy(cfg.DefaultStrategy, settings.DefaultStrategy); err == nil {
		settings.DefaultStrategy = st
	}
	if cfg.ExpiryHorizonDays > 0 {
		settings.HorizonDays = cfg.ExpiryHorizonDays
	}
	settings.Weights = domaininv.Weights{Expiry: cfg.WeightExpiry, Age: cfg.WeightAge, Fit: cfg.WeightFit}
	return settings
}

func receiptPolicy(cfg config.ReceiptConfig) domainproc.Policy {
	return domainproc.Policy{
		OverTolerancePct:  decimal.NewFromFloat(cfg.OverTolerancePct),
		PriceTolerancePct: decimal.NewFromFloat(cfg.PriceTolerancePct),
		StrictPrice:       cfg.StrictPrice,
	}
}
