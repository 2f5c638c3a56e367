package inventory

import (
	"context"
	"math"
	"time"

	"github.com/jhoicas/erp-api/internal/application/dto"
	"github.com/jhoicas/erp-api/internal/domain"
	"github.com/jhoicas/erp-api/internal/domain/entity"
	"github.com/jhoicas/erp-api/internal/domain/inventory"
	"github.com/jhoicas/erp-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// QueryUseCase consultas de inventario: kardex, existencias, lotes y simulación de asignación.
type QueryUseCase struct {
	store  repository.Store
	engine *Engine
	now    func() time.Time
}

// NewQueryUseCase construye el caso de uso.
func NewQueryUseCase(store repository.Store, engine *Engine) *QueryUseCase {
	return &QueryUseCase{store: store, engine: engine, now: time.Now}
}

// ListMovements kardex de un producto, más recientes primero.
func (uc *QueryUseCase) ListMovements(ctx context.Context, companyID, productID string, page dto.PageRequest) (*dto.MovementListResponse, error) {
	p, err := uc.store.Products().GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p == nil || p.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	page.DefaultPage()
	list, err := uc.store.Movements().ListByProduct(ctx, productID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.MovementResponse, 0, len(list))
	for _, m := range list {
		items = append(items, toMovementResponse(m))
	}
	return &dto.MovementListResponse{Items: items, Page: dto.PageResponse{Limit: page.Limit, Offset: page.Offset}}, nil
}

// StockLevels existencias valorizadas de una bodega.
func (uc *QueryUseCase) StockLevels(ctx context.Context, companyID, warehouseID string, page dto.PageRequest) ([]dto.StockLevelResponse, error) {
	wh, err := uc.store.Warehouses().GetByID(ctx, warehouseID)
	if err != nil {
		return nil, err
	}
	if wh == nil || wh.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	page.DefaultPage()
	levels, err := uc.store.Levels().ListByWarehouse(ctx, companyID, warehouseID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.StockLevelResponse, 0, len(levels))
	for _, l := range levels {
		out = append(out, dto.StockLevelResponse{
			WarehouseID:   l.WarehouseID,
			ProductID:     l.ProductID,
			SKU:           l.SKU,
			ProductName:   l.ProductName,
			Quantity:      l.Quantity,
			QuarantineQty: l.QuarantineQty,
			AvailableQty:  l.AvailableQty(),
			UnitCost:      l.UnitCost,
			TotalValue:    l.Quantity.Mul(l.UnitCost).Round(2),
			UpdatedAt:     l.UpdatedAt,
		})
	}
	return out, nil
}

// ListBatches lotes filtrados por producto, bodega y estado.
func (uc *QueryUseCase) ListBatches(ctx context.Context, companyID string, q dto.BatchQuery) (*dto.BatchListResponse, error) {
	q.DefaultPage()
	list, err := uc.store.Batches().List(ctx, repository.BatchFilter{
		CompanyID:   companyID,
		ProductID:   q.ProductID,
		WarehouseID: q.WarehouseID,
		Status:      q.Status,
		Limit:       q.Limit,
		Offset:      q.Offset,
	})
	if err != nil {
		return nil, err
	}
	now := uc.now()
	items := make([]dto.BatchResponse, 0, len(list))
	for _, b := range list {
		items = append(items, ToBatchResponse(b, now))
	}
	return &dto.BatchListResponse{Items: items, Page: dto.PageResponse{Limit: q.Limit, Offset: q.Offset}}, nil
}

// ExpiringBatches lotes liberados que vencen dentro de los próximos days días (incluye vencidos con saldo).
func (uc *QueryUseCase) ExpiringBatches(ctx context.Context, companyID string, days int) ([]dto.BatchResponse, error) {
	if days < 0 {
		return nil, domain.ErrInvalidInput
	}
	if days == 0 {
		days = 30
	}
	now := uc.now()
	list, err := uc.store.Batches().ListExpiring(ctx, companyID, time.Time{}, now.AddDate(0, 0, days))
	if err != nil {
		return nil, err
	}
	out := make([]dto.BatchResponse, 0, len(list))
	for _, b := range list {
		out = append(out, ToBatchResponse(b, now))
	}
	return out, nil
}

// PreviewAllocation simula la salida de lotes sin bloquear ni descontar.
func (uc *QueryUseCase) PreviewAllocation(ctx context.Context, companyID string, req dto.AllocationPreviewRequest) (*inventory.AllocationResult, error) {
	if !req.Quantity.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	p, err := uc.store.Products().GetByID(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	if p == nil || p.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	strategy, err := uc.engine.Strategy(req.Strategy)
	if err != nil {
		return nil, err
	}
	return uc.engine.Preview(ctx, uc.store, req.ProductID, req.WarehouseID, req.Quantity, strategy,
		SpecifiedBatches(req.Batches), req.AllowPartial, req.MinRemainingShelfDays, uc.now())
}

// SpecifiedBatches convierte la selección manual del request.
func SpecifiedBatches(in []dto.SpecifiedBatchRequest) []inventory.SpecifiedBatch {
	if len(in) == 0 {
		return nil
	}
	out := make([]inventory.SpecifiedBatch, 0, len(in))
	for _, b := range in {
		out = append(out, inventory.SpecifiedBatch{BatchID: b.BatchID, Quantity: b.Quantity})
	}
	return out
}

// ToBatchResponse mapea el lote; DaysToExpiry se redondea hacia abajo.
func ToBatchResponse(b *entity.Batch, now time.Time) dto.BatchResponse {
	r := dto.BatchResponse{
		ID:             b.ID,
		ProductID:      b.ProductID,
		WarehouseID:    b.WarehouseID,
		BatchNumber:    b.BatchNumber,
		ManufacturedAt: b.ManufacturedAt,
		ExpiresAt:      b.ExpiresAt,
		ReceivedAt:     b.ReceivedAt,
		QtyReceived:    b.QtyReceived,
		QtyAvailable:   b.QtyAvailable,
		UnitCost:       b.UnitCost,
		Status:         b.Status,
		SourceType:     b.SourceType,
		SourceID:       b.SourceID,
	}
	if d, ok := b.DaysToExpiry(now); ok {
		days := int(math.Floor(d))
		r.DaysToExpiry = &days
	}
	return r
}

func toMovementResponse(m *entity.InventoryMovement) dto.MovementResponse {
	return dto.MovementResponse{
		ID:            m.ID,
		TransactionID: m.TransactionID,
		ProductID:     m.ProductID,
		WarehouseID:   m.WarehouseID,
		BatchID:       m.BatchID,
		Type:          m.Type,
		Quantity:      m.Quantity,
		UnitCost:      m.UnitCost,
		TotalCost:     m.TotalCost,
		Date:          m.Date,
		CreatedBy:     m.CreatedBy,
	}
}
