package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/erp-api/internal/application/ports"
	"github.com/jhoicas/erp-api/internal/domain"
	"github.com/jhoicas/erp-api/internal/domain/entity"
	"github.com/jhoicas/erp-api/internal/domain/inventory"
	"github.com/jhoicas/erp-api/internal/domain/repository"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

const tracerName = "github.com/jhoicas/erp-api/internal/application/inventory"

// AllocationSettings valores por defecto de la asignación de lotes.
type AllocationSettings struct {
	DefaultStrategy inventory.Strategy
	HorizonDays     int
	Weights         inventory.Weights
}

// DefaultAllocationSettings SMART con horizonte de 90 días y pesos 0.5/0.3/0.2.
func DefaultAllocationSettings() AllocationSettings {
	return AllocationSettings{
		DefaultStrategy: inventory.StrategySmart,
		HorizonDays:     90,
		Weights:         inventory.DefaultWeights(),
	}
}

// Engine aplica entradas y salidas por lote usando los repositorios de la transacción del caller.
// Mantiene juntos stock por bodega, saldo de lotes, kardex y costo promedio.
type Engine struct {
	settings AllocationSettings
	metrics  ports.Recorder
}

// NewEngine construye el motor. metrics nil no registra nada.
func NewEngine(settings AllocationSettings, metrics ports.Recorder) *Engine {
	if metrics == nil {
		metrics = ports.NopRecorder{}
	}
	if settings.DefaultStrategy == "" {
		settings.DefaultStrategy = inventory.StrategySmart
	}
	return &Engine{settings: settings, metrics: metrics}
}

// Strategy resuelve la estrategia pedida; vacía usa la configurada.
func (e *Engine) Strategy(s string) (inventory.Strategy, error) {
	return inventory.ParseStrategy(s, e.settings.DefaultStrategy)
}

// ReceiveInput entrada de mercancía a una bodega.
type ReceiveInput struct {
	CompanyID     string
	UserID        string
	TransactionID string
	Product       *entity.Product
	WarehouseID   string
	Quantity      decimal.Decimal
	UnitCost      decimal.Decimal
	MovementType  string
	// Batch datos del lote a crear; nil crea uno RELEASED con número generado.
	Batch *entity.Batch
	// KeepCost no recalcula el costo promedio del producto (transferencias).
	KeepCost bool
	Now      time.Time
}

// Receive bloquea el stock, actualiza el costo promedio, crea el lote y escribe el movimiento.
// Product.Cost queda con el nuevo promedio para siguientes entradas de la misma transacción.
func (e *Engine) Receive(ctx context.Context, s repository.Store, in ReceiveInput) (*entity.Batch, error) {
	if !in.Quantity.GreaterThan(decimal.Zero) || in.UnitCost.IsNegative() {
		return nil, fmt.Errorf("%w: cantidad y costo de entrada", domain.ErrInvalidInput)
	}
	stock, err := s.Stock().GetForUpdate(ctx, in.Product.ID, in.WarehouseID)
	if err != nil {
		return nil, err
	}
	if !in.KeepCost {
		newCost := inventory.MovingAverage(stock.Quantity, in.Product.Cost, in.Quantity, in.UnitCost)
		if err := s.Products().UpdateCost(ctx, in.Product.ID, newCost); err != nil {
			return nil, err
		}
		in.Product.Cost = newCost
	}
	stock.Add(in.Quantity, in.Now)
	if err := s.Stock().Upsert(ctx, stock); err != nil {
		return nil, err
	}

	b := in.Batch
	if b == nil {
		b = &entity.Batch{Status: entity.BatchStatusReleased, SourceType: "ADJUSTMENT", SourceID: in.TransactionID}
	}
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	if b.BatchNumber == "" {
		b.BatchNumber = fmt.Sprintf("LOT-%s-%s", in.Now.Format("20060102"), strings.ToUpper(b.ID[:6]))
	}
	if b.Status == "" {
		b.Status = entity.BatchStatusReleased
	}
	if b.ExpiresAt == nil && in.Product.ShelfLifeDays > 0 {
		base := in.Now
		if b.ManufacturedAt != nil {
			base = *b.ManufacturedAt
		}
		exp := base.AddDate(0, 0, in.Product.ShelfLifeDays)
		b.ExpiresAt = &exp
	}
	if b.ReceivedAt.IsZero() {
		b.ReceivedAt = in.Now
	}
	b.CompanyID = in.CompanyID
	b.ProductID = in.Product.ID
	b.WarehouseID = in.WarehouseID
	b.QtyReceived = in.Quantity
	b.QtyAvailable = in.Quantity
	b.UnitCost = in.UnitCost
	b.CreatedAt, b.UpdatedAt = in.Now, in.Now
	if err := s.Batches().Create(ctx, b); err != nil {
		return nil, err
	}

	mov := entity.NewMovement(entity.MovementRef{
		CompanyID:     in.CompanyID,
		TransactionID: in.TransactionID,
		ProductID:     in.Product.ID,
		WarehouseID:   in.WarehouseID,
		Type:          in.MovementType,
		UserID:        in.UserID,
	}, b.ID, in.Quantity, in.UnitCost, in.Now)
	if err := s.Movements().Create(ctx, mov); err != nil {
		return nil, err
	}
	return b, nil
}

// IssueInput salida de mercancía asignada por lotes.
type IssueInput struct {
	CompanyID             string
	UserID                string
	TransactionID         string
	ProductID             string
	WarehouseID           string
	Quantity              decimal.Decimal
	Strategy              inventory.Strategy
	Specified             []inventory.SpecifiedBatch
	MinRemainingShelfDays int
	MovementType          string
	Now                   time.Time
}

// Issue bloquea stock y lotes candidatos, asigna según la estrategia y descuenta cada lote con
// su propio movimiento al costo del lote. Sin cantidad suficiente devuelve ErrInsufficientStock.
func (e *Engine) Issue(ctx context.Context, s repository.Store, in IssueInput) (*inventory.AllocationResult, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "inventory.Issue")
	defer span.End()
	span.SetAttributes(
		attribute.String("product_id", in.ProductID),
		attribute.String("strategy", string(in.Strategy)),
	)

	stock, err := s.Stock().GetForUpdate(ctx, in.ProductID, in.WarehouseID)
	if err != nil {
		return nil, err
	}
	batches, err := s.Batches().ListCandidates(ctx, in.ProductID, in.WarehouseID, true)
	if err != nil {
		return nil, err
	}
	req := e.request(in.Quantity, in.Strategy, in.Specified, false, in.MinRemainingShelfDays, in.Now)
	res, err := inventory.Allocate(batches, req)
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientStock) {
			e.metrics.AllocationDone(string(req.Strategy), true)
		}
		return nil, err
	}
	e.metrics.AllocationDone(string(res.Strategy), false)
	if !stock.Withdraw(res.TotalAllocated, in.Now) {
		return nil, fmt.Errorf("%w: stock de bodega %s menor a lo asignado %s", domain.ErrInsufficientStock, stock.Quantity, res.TotalAllocated)
	}

	byID := make(map[string]*entity.Batch, len(batches))
	for _, b := range batches {
		byID[b.ID] = b
	}
	for _, d := range res.Deductions {
		b := byID[d.BatchID]
		b.Deduct(d.Quantity, in.Now)
		if err := s.Batches().Update(ctx, b); err != nil {
			return nil, err
		}
		if err := e.writeOut(ctx, s, in, b.ID, d.Quantity, d.UnitCost); err != nil {
			return nil, err
		}
	}
	if err := s.Stock().Upsert(ctx, stock); err != nil {
		return nil, err
	}
	return res, nil
}

// WriteOff retira cantidad de un lote puntual (rechazo de calidad) sin pasar por la asignación.
func (e *Engine) WriteOff(ctx context.Context, s repository.Store, b *entity.Batch, qty decimal.Decimal, in IssueInput) error {
	if !qty.GreaterThan(decimal.Zero) {
		return nil
	}
	if qty.GreaterThan(b.QtyAvailable) {
		return fmt.Errorf("%w: lote %s tiene %s", domain.ErrInsufficientStock, b.BatchNumber, b.QtyAvailable)
	}
	stock, err := s.Stock().GetForUpdate(ctx, b.ProductID, b.WarehouseID)
	if err != nil {
		return err
	}
	if !stock.Withdraw(qty, in.Now) {
		return fmt.Errorf("%w: stock de bodega %s menor a %s", domain.ErrInsufficientStock, stock.Quantity, qty)
	}
	b.QtyAvailable = b.QtyAvailable.Sub(qty)
	b.UpdatedAt = in.Now
	if err := s.Batches().Update(ctx, b); err != nil {
		return err
	}
	in.ProductID, in.WarehouseID = b.ProductID, b.WarehouseID
	if err := e.writeOut(ctx, s, in, b.ID, qty, b.UnitCost); err != nil {
		return err
	}
	return s.Stock().Upsert(ctx, stock)
}

// Preview asignación sin bloquear ni modificar nada.
func (e *Engine) Preview(ctx context.Context, s repository.Store, productID, warehouseID string, qty decimal.Decimal,
	strategy inventory.Strategy, specified []inventory.SpecifiedBatch, allowPartial bool, minShelfDays int, now time.Time,
) (*inventory.AllocationResult, error) {
	batches, err := s.Batches().ListCandidates(ctx, productID, warehouseID, false)
	if err != nil {
		return nil, err
	}
	return inventory.Allocate(batches, e.request(qty, strategy, specified, allowPartial, minShelfDays, now))
}

func (e *Engine) request(qty decimal.Decimal, strategy inventory.Strategy, specified []inventory.SpecifiedBatch,
	allowPartial bool, minShelfDays int, now time.Time,
) inventory.AllocationRequest {
	if strategy == "" {
		strategy = e.settings.DefaultStrategy
	}
	return inventory.AllocationRequest{
		Quantity:              qty,
		Strategy:              strategy,
		Specified:             specified,
		AllowPartial:          allowPartial,
		MinRemainingShelfDays: minShelfDays,
		HorizonDays:           e.settings.HorizonDays,
		Weights:               e.settings.Weights,
		Now:                   now,
	}
}

func (e *Engine) writeOut(ctx context.Context, s repository.Store, in IssueInput, batchID string, qty, unitCost decimal.Decimal) error {
	return s.Movements().Create(ctx, entity.NewMovement(entity.MovementRef{
		CompanyID:     in.CompanyID,
		TransactionID: in.TransactionID,
		ProductID:     in.ProductID,
		WarehouseID:   in.WarehouseID,
		Type:          in.MovementType,
		UserID:        in.UserID,
	}, batchID, qty.Neg(), unitCost, in.Now))
}
