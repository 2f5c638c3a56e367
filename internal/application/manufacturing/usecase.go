// Package manufacturing listas de materiales y órdenes de producción.
package manufacturing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/erp-api/internal/application/dto"
	appinventory "github.com/jhoicas/erp-api/internal/application/inventory"
	"github.com/jhoicas/erp-api/internal/application/shared"
	"github.com/jhoicas/erp-api/internal/domain"
	"github.com/jhoicas/erp-api/internal/domain/entity"
	"github.com/jhoicas/erp-api/internal/domain/manufacturing"
	"github.com/jhoicas/erp-api/internal/domain/repository"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const tracerName = "github.com/jhoicas/erp-api/internal/application/manufacturing"

// UseCase BOMs y órdenes de producción con consumo y entrada de inventario.
type UseCase struct {
	store  repository.Store
	tx     repository.TxRunner
	engine *appinventory.Engine
	now    func() time.Time
}

// NewUseCase construye el caso de uso.
func NewUseCase(store repository.Store, tx repository.TxRunner, engine *appinventory.Engine) *UseCase {
	return &UseCase{store: store, tx: tx, engine: engine, now: time.Now}
}

// CreateBOM valida producto terminado y componentes de la empresa.
func (uc *UseCase) CreateBOM(ctx context.Context, companyID, userID string, req dto.CreateBOMRequest) (*dto.BOMResponse, error) {
	now := uc.now()
	bom := &entity.BOM{
		ID:        uuid.New().String(),
		CompanyID: companyID,
		ProductID: req.ProductID,
		Name:      req.Name,
		OutputQty: req.OutputQty,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, c := range req.Components {
		bom.Components = append(bom.Components, entity.BOMComponent{
			ID:        uuid.New().String(),
			BOMID:     bom.ID,
			ProductID: c.ProductID,
			Quantity:  c.Quantity,
			ScrapPct:  c.ScrapPct,
		})
	}
	if err := manufacturing.ValidateBOM(bom); err != nil {
		return nil, err
	}

	var issues []domain.Issue
	if ok, err := ownedProduct(ctx, uc.store, companyID, bom.ProductID); err != nil {
		return nil, err
	} else if !ok {
		issues = append(issues, domain.Issue{Code: "PRODUCT_NOT_FOUND", Field: "product_id", Message: "producto terminado no encontrado"})
	}
	for i, c := range bom.Components {
		ok, err := ownedProduct(ctx, uc.store, companyID, c.ProductID)
		if err != nil {
			return nil, err
		}
		if !ok {
			issues = append(issues, domain.Issue{Code: "PRODUCT_NOT_FOUND", Field: fmt.Sprintf("components[%d].product_id", i), Message: "componente no encontrado"})
		}
	}
	if len(issues) > 0 {
		return nil, domain.NewValidationError(issues...)
	}

	resp := toBOMResponse(bom)
	err := uc.tx.Run(ctx, func(s repository.Store) error {
		if err := s.BOMs().Create(ctx, bom); err != nil {
			return err
		}
		return shared.Record(ctx, s, shared.AuditEntry{
			CompanyID: companyID, UserID: userID, EntityType: "bom", EntityID: bom.ID,
			Action: entity.AuditCreate, After: resp, At: now,
		})
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// GetBOM nil si no existe o es de otra empresa.
func (uc *UseCase) GetBOM(ctx context.Context, companyID, id string) (*dto.BOMResponse, error) {
	bom, err := uc.store.BOMs().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if bom == nil || bom.CompanyID != companyID {
		return nil, nil
	}
	return toBOMResponse(bom), nil
}

func (uc *UseCase) ListBOMs(ctx context.Context, companyID string, page dto.PageRequest) (*dto.BOMListResponse, error) {
	page.DefaultPage()
	list, err := uc.store.BOMs().ListByCompany(ctx, companyID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.BOMResponse, 0, len(list))
	for _, b := range list {
		items = append(items, *toBOMResponse(b))
	}
	return &dto.BOMListResponse{Items: items, Page: dto.PageResponse{Limit: page.Limit, Offset: page.Offset}}, nil
}

// CreateWorkOrder orden PLANNED para la BOM en la bodega indicada.
func (uc *UseCase) CreateWorkOrder(ctx context.Context, companyID, userID string, req dto.CreateWorkOrderRequest) (*dto.WorkOrderResponse, error) {
	var issues []domain.Issue
	if !req.PlannedQty.GreaterThan(decimal.Zero) {
		issues = append(issues, domain.Issue{Code: "INVALID_QUANTITY", Field: "planned_qty", Message: "debe ser mayor a cero"})
	}
	bom, err := uc.store.BOMs().GetByID(ctx, req.BOMID)
	if err != nil {
		return nil, err
	}
	if bom == nil || bom.CompanyID != companyID {
		issues = append(issues, domain.Issue{Code: "BOM_NOT_FOUND", Field: "bom_id", Message: "lista de materiales no encontrada"})
	}
	wh, err := uc.store.Warehouses().GetByID(ctx, req.WarehouseID)
	if err != nil {
		return nil, err
	}
	if wh == nil || wh.CompanyID != companyID {
		issues = append(issues, domain.Issue{Code: "WAREHOUSE_NOT_FOUND", Field: "warehouse_id", Message: "bodega no encontrada"})
	}
	if len(issues) > 0 {
		return nil, domain.NewValidationError(issues...)
	}

	now := uc.now()
	var resp *dto.WorkOrderResponse
	err = uc.tx.Run(ctx, func(s repository.Store) error {
		number, err := shared.NextNumber(ctx, s, companyID, shared.DocWorkOrder)
		if err != nil {
			return err
		}
		wo := &entity.WorkOrder{
			ID:           uuid.New().String(),
			CompanyID:    companyID,
			BOMID:        bom.ID,
			ProductID:    bom.ProductID,
			WarehouseID:  req.WarehouseID,
			Number:       number,
			Status:       entity.WorkOrderPlanned,
			PlannedQty:   req.PlannedQty,
			ProducedQty:  decimal.Zero,
			MaterialCost: decimal.Zero,
			LaborCost:    decimal.Zero,
			OverheadCost: decimal.Zero,
			UnitCost:     decimal.Zero,
			PlannedStart: req.PlannedStart,
			CreatedBy:    userID,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := s.WorkOrders().Create(ctx, wo); err != nil {
			return err
		}
		resp = ToWorkOrderResponse(wo, nil)
		return shared.Record(ctx, s, shared.AuditEntry{
			CompanyID: companyID, UserID: userID, EntityType: "work_order", EntityID: wo.ID,
			Action: entity.AuditCreate, After: resp, At: now,
		})
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// Start consume los materiales de la BOM con movimientos PRODUCTION_ISSUE y acumula su costo.
// Si algún componente no alcanza no se consume nada (ErrInsufficientStock).
func (uc *UseCase) Start(ctx context.Context, companyID, userID, id string, req dto.StartWorkOrderRequest) (*dto.WorkOrderResponse, error) {
	strategy, err := uc.engine.Strategy(req.Strategy)
	if err != nil {
		return nil, err
	}
	ctx, span := otel.Tracer(tracerName).Start(ctx, "manufacturing.StartWorkOrder")
	defer span.End()
	span.SetAttributes(attribute.String("work_order_id", id))

	now := uc.now()
	var resp *dto.WorkOrderResponse
	err = uc.tx.Run(ctx, func(s repository.Store) error {
		wo, err := lockWorkOrder(ctx, s, companyID, id, entity.WorkOrderInProgress)
		if err != nil {
			return err
		}
		before := ToWorkOrderResponse(wo, nil)
		bom, err := s.BOMs().GetByID(ctx, wo.BOMID)
		if err != nil {
			return err
		}
		if bom == nil {
			return fmt.Errorf("%w: lista de materiales %s", domain.ErrNotFound, wo.BOMID)
		}
		reqs, err := manufacturing.MaterialRequirements(bom, wo.PlannedQty)
		if err != nil {
			return err
		}

		materials := make([]dto.MaterialIssueResponse, 0, len(reqs))
		total := decimal.Zero
		for _, r := range reqs {
			res, err := uc.engine.Issue(ctx, s, appinventory.IssueInput{
				CompanyID:     companyID,
				UserID:        userID,
				TransactionID: wo.ID,
				ProductID:     r.ProductID,
				WarehouseID:   wo.WarehouseID,
				Quantity:      r.Quantity,
				Strategy:      strategy,
				MovementType:  entity.MovementProductionIssue,
				Now:           now,
			})
			if err != nil {
				if errors.Is(err, domain.ErrInsufficientStock) {
					return fmt.Errorf("%w: componente %s", err, r.ProductID)
				}
				return err
			}
			cost := res.TotalCost.Round(4)
			total = total.Add(cost)
			materials = append(materials, dto.MaterialIssueResponse{ProductID: r.ProductID, Quantity: r.Quantity, Cost: cost})
		}

		wo.Status = entity.WorkOrderInProgress
		wo.MaterialCost = total
		wo.StartedAt = &now
		wo.UpdatedAt = now
		if err := s.WorkOrders().Update(ctx, wo); err != nil {
			return err
		}
		resp = ToWorkOrderResponse(wo, materials)
		return shared.Record(ctx, s, shared.AuditEntry{
			CompanyID: companyID, UserID: userID, EntityType: "work_order", EntityID: wo.ID,
			Action: entity.AuditStatus, Before: before, After: resp, At: now,
		})
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return resp, nil
}

// Complete registra la producción: lote RELEASED del producto terminado al costo unitario
// (material + mano de obra + indirectos) / producido, movimiento PRODUCTION_OUTPUT y costo promedio.
func (uc *UseCase) Complete(ctx context.Context, companyID, userID, id string, req dto.CompleteWorkOrderRequest) (*dto.WorkOrderResponse, error) {
	if req.LaborCost.IsNegative() || req.OverheadCost.IsNegative() {
		return nil, domain.NewValidationError(domain.Issue{Code: "INVALID_COST", Field: "labor_cost", Message: "los costos no pueden ser negativos"})
	}
	ctx, span := otel.Tracer(tracerName).Start(ctx, "manufacturing.CompleteWorkOrder")
	defer span.End()
	span.SetAttributes(attribute.String("work_order_id", id), attribute.String("produced_qty", req.ProducedQty.String()))

	now := uc.now()
	var resp *dto.WorkOrderResponse
	err := uc.tx.Run(ctx, func(s repository.Store) error {
		wo, err := lockWorkOrder(ctx, s, companyID, id, entity.WorkOrderCompleted)
		if err != nil {
			return err
		}
		if err := manufacturing.ValidateProducedQty(wo.PlannedQty, req.ProducedQty); err != nil {
			return err
		}
		before := ToWorkOrderResponse(wo, nil)
		product, err := s.Products().GetByID(ctx, wo.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return fmt.Errorf("%w: producto %s", domain.ErrNotFound, wo.ProductID)
		}

		unitCost := manufacturing.UnitCost(wo.MaterialCost, req.LaborCost, req.OverheadCost, req.ProducedQty)
		batch, err := uc.engine.Receive(ctx, s, appinventory.ReceiveInput{
			CompanyID:     companyID,
			UserID:        userID,
			TransactionID: wo.ID,
			Product:       product,
			WarehouseID:   wo.WarehouseID,
			Quantity:      req.ProducedQty,
			UnitCost:      unitCost,
			MovementType:  entity.MovementProductionOutput,
			Batch: &entity.Batch{
				BatchNumber:    req.BatchNumber,
				ManufacturedAt: &now,
				ExpiresAt:      req.ExpiresAt,
				Status:         entity.BatchStatusReleased,
				SourceType:     "WORK_ORDER",
				SourceID:       wo.ID,
			},
			Now: now,
		})
		if err != nil {
			return err
		}

		batchID := batch.ID
		wo.Status = entity.WorkOrderCompleted
		wo.ProducedQty = req.ProducedQty
		wo.LaborCost = req.LaborCost
		wo.OverheadCost = req.OverheadCost
		wo.UnitCost = unitCost
		wo.OutputBatchID = &batchID
		wo.CompletedAt = &now
		wo.UpdatedAt = now
		if err := s.WorkOrders().Update(ctx, wo); err != nil {
			return err
		}
		resp = ToWorkOrderResponse(wo, nil)
		return shared.Record(ctx, s, shared.AuditEntry{
			CompanyID: companyID, UserID: userID, EntityType: "work_order", EntityID: wo.ID,
			Action: entity.AuditStatus, Before: before, After: resp, At: now,
		})
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return resp, nil
}

// Cancel solo desde PLANNED; no hay consumo que revertir.
func (uc *UseCase) Cancel(ctx context.Context, companyID, userID, id string) (*dto.WorkOrderResponse, error) {
	now := uc.now()
	var resp *dto.WorkOrderResponse
	err := uc.tx.Run(ctx, func(s repository.Store) error {
		wo, err := lockWorkOrder(ctx, s, companyID, id, entity.WorkOrderCancelled)
		if err != nil {
			return err
		}
		before := ToWorkOrderResponse(wo, nil)
		wo.Status = entity.WorkOrderCancelled
		wo.UpdatedAt = now
		if err := s.WorkOrders().Update(ctx, wo); err != nil {
			return err
		}
		resp = ToWorkOrderResponse(wo, nil)
		return shared.Record(ctx, s, shared.AuditEntry{
			CompanyID: companyID, UserID: userID, EntityType: "work_order", EntityID: wo.ID,
			Action: entity.AuditStatus, Before: before, After: resp, At: now,
		})
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// GetWorkOrder incluye los materiales consumidos; nil si no existe o es de otra empresa.
func (uc *UseCase) GetWorkOrder(ctx context.Context, companyID, id string) (*dto.WorkOrderResponse, error) {
	wo, err := uc.store.WorkOrders().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if wo == nil || wo.CompanyID != companyID {
		return nil, nil
	}
	movs, err := uc.store.Movements().ListByTransaction(ctx, wo.ID)
	if err != nil {
		return nil, err
	}
	var materials []dto.MaterialIssueResponse
	index := map[string]int{}
	for _, m := range movs {
		if m.Type != entity.MovementProductionIssue {
			continue
		}
		i, ok := index[m.ProductID]
		if !ok {
			i = len(materials)
			index[m.ProductID] = i
			materials = append(materials, dto.MaterialIssueResponse{ProductID: m.ProductID})
		}
		materials[i].Quantity = materials[i].Quantity.Add(m.Quantity.Neg())
		materials[i].Cost = materials[i].Cost.Add(m.TotalCost.Neg())
	}
	return ToWorkOrderResponse(wo, materials), nil
}

func (uc *UseCase) ListWorkOrders(ctx context.Context, companyID, status string, page dto.PageRequest) (*dto.WorkOrderListResponse, error) {
	page.DefaultPage()
	list, err := uc.store.WorkOrders().List(ctx, companyID, status, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.WorkOrderResponse, 0, len(list))
	for _, wo := range list {
		items = append(items, *ToWorkOrderResponse(wo, nil))
	}
	return &dto.WorkOrderListResponse{Items: items, Page: dto.PageResponse{Limit: page.Limit, Offset: page.Offset}}, nil
}

// lockWorkOrder bloquea la orden y verifica que pueda pasar al estado to.
func lockWorkOrder(ctx context.Context, s repository.Store, companyID, id, to string) (*entity.WorkOrder, error) {
	wo, err := s.WorkOrders().GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if wo == nil || wo.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	if !wo.CanTransition(to) {
		return nil, fmt.Errorf("%w: orden %s en estado %s no puede pasar a %s", domain.ErrInvalidState, wo.Number, wo.Status, to)
	}
	return wo, nil
}

func ownedProduct(ctx context.Context, s repository.Store, companyID, id string) (bool, error) {
	p, err := s.Products().GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	return p != nil && p.CompanyID == companyID, nil
}

func toBOMResponse(b *entity.BOM) *dto.BOMResponse {
	resp := &dto.BOMResponse{
		ID:         b.ID,
		ProductID:  b.ProductID,
		Name:       b.Name,
		OutputQty:  b.OutputQty,
		Components: make([]dto.BOMComponentRequest, 0, len(b.Components)),
		CreatedAt:  b.CreatedAt,
	}
	for _, c := range b.Components {
		resp.Components = append(resp.Components, dto.BOMComponentRequest{ProductID: c.ProductID, Quantity: c.Quantity, ScrapPct: c.ScrapPct})
	}
	return resp
}

// ToWorkOrderResponse convierte la entidad; materials puede ser nil.
func ToWorkOrderResponse(wo *entity.WorkOrder, materials []dto.MaterialIssueResponse) *dto.WorkOrderResponse {
	return &dto.WorkOrderResponse{
		ID:            wo.ID,
		BOMID:         wo.BOMID,
		ProductID:     wo.ProductID,
		WarehouseID:   wo.WarehouseID,
		Number:        wo.Number,
		Status:        wo.Status,
		PlannedQty:    wo.PlannedQty,
		ProducedQty:   wo.ProducedQty,
		MaterialCost:  wo.MaterialCost,
		LaborCost:     wo.LaborCost,
		OverheadCost:  wo.OverheadCost,
		UnitCost:      wo.UnitCost,
		OutputBatchID: wo.OutputBatchID,
		PlannedStart:  wo.PlannedStart,
		StartedAt:     wo.StartedAt,
		CompletedAt:   wo.CompletedAt,
		Materials:     materials,
		CreatedAt:     wo.CreatedAt,
	}
}
