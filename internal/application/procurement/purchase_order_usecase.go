// Package procurement casos de uso de compras: órdenes de compra, recepciones (GRN) y conciliación.
package procurement

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/erp-api/internal/application/dto"
	appinventory "github.com/jhoicas/erp-api/internal/application/inventory"
	"github.com/jhoicas/erp-api/internal/application/shared"
	"github.com/jhoicas/erp-api/internal/domain"
	"github.com/jhoicas/erp-api/internal/domain/entity"
	"github.com/jhoicas/erp-api/internal/domain/procurement"
	"github.com/jhoicas/erp-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// PurchaseOrderUseCase ciclo de vida de la orden de compra.
type PurchaseOrderUseCase struct {
	store         repository.Store
	tx            repository.TxRunner
	replenishment *appinventory.ReplenishmentUseCase
	now           func() time.Time
}

// NewPurchaseOrderUseCase construye el caso de uso.
func NewPurchaseOrderUseCase(store repository.Store, tx repository.TxRunner, replenishment *appinventory.ReplenishmentUseCase) *PurchaseOrderUseCase {
	return &PurchaseOrderUseCase{store: store, tx: tx, replenishment: replenishment, now: time.Now}
}

// Create registra la OC en borrador. Un producto aparece una sola vez; el proveedor debe estar activo.
func (uc *PurchaseOrderUseCase) Create(ctx context.Context, companyID, userID string, req dto.CreatePurchaseOrderRequest) (*dto.PurchaseOrderResponse, error) {
	if len(req.Lines) == 0 {
		return nil, domain.NewValidationError(domain.Issue{Code: "EMPTY_ORDER", Field: "lines", Message: "la orden no tiene líneas"})
	}
	if err := uc.checkParties(ctx, companyID, req.SupplierID, req.WarehouseID); err != nil {
		return nil, err
	}

	now := uc.now()
	po := &entity.PurchaseOrder{
		ID:           uuid.New().String(),
		CompanyID:    companyID,
		SupplierID:   req.SupplierID,
		WarehouseID:  req.WarehouseID,
		Status:       entity.POStatusDraft,
		OrderDate:    now,
		ExpectedDate: req.ExpectedDate,
		Notes:        strings.TrimSpace(req.Notes),
		CreatedBy:    userID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if req.OrderDate != nil {
		po.OrderDate = *req.OrderDate
	}
	if po.ExpectedDate != nil && po.ExpectedDate.Before(truncateDay(po.OrderDate)) {
		return nil, domain.NewValidationError(domain.Issue{Code: "INVALID_DATES", Field: "expected_date", Message: "fecha esperada anterior a la orden"})
	}

	var issues []domain.Issue
	seen := make(map[string]bool, len(req.Lines))
	for i, l := range req.Lines {
		field := fmt.Sprintf("lines[%d]", i)
		if seen[l.ProductID] {
			issues = append(issues, domain.Issue{Code: "DUPLICATE_PRODUCT", Field: field, Message: "el producto ya está en la orden"})
			continue
		}
		seen[l.ProductID] = true
		if !l.Quantity.GreaterThan(decimal.Zero) || l.UnitCost.IsNegative() {
			issues = append(issues, domain.Issue{Code: "INVALID_QUANTITY", Field: field, Message: "cantidad debe ser > 0 y costo >= 0"})
			continue
		}
		p, err := uc.store.Products().GetByID(ctx, l.ProductID)
		if err != nil {
			return nil, err
		}
		if p == nil || p.CompanyID != companyID {
			issues = append(issues, domain.Issue{Code: "PRODUCT_NOT_FOUND", Field: field, Message: "producto no encontrado"})
			continue
		}
		po.Lines = append(po.Lines, entity.PurchaseOrderLine{
			ID:              uuid.New().String(),
			PurchaseOrderID: po.ID,
			LineNo:          i + 1,
			ProductID:       p.ID,
			Quantity:        l.Quantity,
			UnitCost:        l.UnitCost,
			TaxRate:         p.TaxRate,
			ReceivedQty:     decimal.Zero,
			AcceptedQty:     decimal.Zero,
			RejectedQty:     decimal.Zero,
		})
	}
	if len(issues) > 0 {
		return nil, domain.NewValidationError(issues...)
	}
	computeTotals(po)

	err := uc.tx.Run(ctx, func(s repository.Store) error {
		number, err := shared.NextNumber(ctx, s, companyID, shared.DocPurchaseOrder)
		if err != nil {
			return err
		}
		po.Number = number
		if err := s.PurchaseOrders().Create(ctx, po); err != nil {
			return err
		}
		return shared.Record(ctx, s, shared.AuditEntry{
			CompanyID: companyID, UserID: userID, EntityType: "purchase_order", EntityID: po.ID,
			Action: entity.AuditCreate, After: ToPurchaseOrderResponse(po), At: now,
		})
	})
	if err != nil {
		return nil, err
	}
	return ToPurchaseOrderResponse(po), nil
}

// CreateFromReplenishment arma un borrador con las cantidades sugeridas y el costo promedio de cada producto.
func (uc *PurchaseOrderUseCase) CreateFromReplenishment(ctx context.Context, companyID, userID string, req dto.POFromReplenishmentRequest) (*dto.PurchaseOrderResponse, error) {
	suggestions, err := uc.replenishment.GenerateReplenishmentList(ctx, companyID, req.WarehouseID)
	if err != nil {
		return nil, err
	}
	wanted := make(map[string]bool, len(req.ProductIDs))
	for _, id := range req.ProductIDs {
		wanted[id] = true
	}
	create := dto.CreatePurchaseOrderRequest{
		SupplierID:  req.SupplierID,
		WarehouseID: req.WarehouseID,
		Notes:       "Generada desde la lista de reposición",
	}
	for _, sg := range suggestions {
		if len(wanted) > 0 && !wanted[sg.ProductID] {
			continue
		}
		if !sg.SuggestedOrderQty.GreaterThan(decimal.Zero) {
			continue
		}
		create.Lines = append(create.Lines, dto.POLineRequest{
			ProductID: sg.ProductID,
			Quantity:  sg.SuggestedOrderQty.Ceil(),
			UnitCost:  sg.UnitCost,
		})
	}
	if len(create.Lines) == 0 {
		return nil, fmt.Errorf("%w: no hay productos por reponer", domain.ErrInvalidInput)
	}
	return uc.Create(ctx, companyID, userID, create)
}

// Confirm DRAFT → CONFIRMED.
func (uc *PurchaseOrderUseCase) Confirm(ctx context.Context, companyID, userID, id string) (*dto.PurchaseOrderResponse, error) {
	return uc.transition(ctx, companyID, userID, id, func(po *entity.PurchaseOrder) error {
		if po.Status != entity.POStatusDraft {
			return fmt.Errorf("%w: la orden está en %s", domain.ErrInvalidState, po.Status)
		}
		po.Status = entity.POStatusConfirmed
		return nil
	})
}

// Cancel DRAFT|CONFIRMED → CANCELLED, solo sin recepciones.
func (uc *PurchaseOrderUseCase) Cancel(ctx context.Context, companyID, userID, id string) (*dto.PurchaseOrderResponse, error) {
	return uc.transition(ctx, companyID, userID, id, func(po *entity.PurchaseOrder) error {
		if !po.CanCancel() {
			return fmt.Errorf("%w: la orden %s no se puede anular", domain.ErrInvalidState, po.Number)
		}
		po.Status = entity.POStatusCancelled
		return nil
	})
}

func (uc *PurchaseOrderUseCase) transition(ctx context.Context, companyID, userID, id string, apply func(po *entity.PurchaseOrder) error) (*dto.PurchaseOrderResponse, error) {
	var out *dto.PurchaseOrderResponse
	err := uc.tx.Run(ctx, func(s repository.Store) error {
		po, err := s.PurchaseOrders().GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if po == nil || po.CompanyID != companyID {
			return domain.ErrNotFound
		}
		before := po.Status
		if err := apply(po); err != nil {
			return err
		}
		po.UpdatedAt = uc.now()
		if err := s.PurchaseOrders().UpdateStatus(ctx, po); err != nil {
			return err
		}
		out = ToPurchaseOrderResponse(po)
		return shared.Record(ctx, s, shared.AuditEntry{
			CompanyID: companyID, UserID: userID, EntityType: "purchase_order", EntityID: po.ID,
			Action: entity.AuditStatus, Before: map[string]string{"status": before}, After: map[string]string{"status": po.Status},
			At: po.UpdatedAt,
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetByID OC con líneas y acumulados; nil si no existe o es de otra empresa.
func (uc *PurchaseOrderUseCase) GetByID(ctx context.Context, companyID, id string) (*dto.PurchaseOrderResponse, error) {
	po, err := uc.store.PurchaseOrders().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if po == nil || po.CompanyID != companyID {
		return nil, nil
	}
	return ToPurchaseOrderResponse(po), nil
}

// List órdenes por estado (vacío = todas).
func (uc *PurchaseOrderUseCase) List(ctx context.Context, companyID, status string, page dto.PageRequest) (*dto.PurchaseOrderListResponse, error) {
	page.DefaultPage()
	list, err := uc.store.PurchaseOrders().List(ctx, companyID, strings.ToUpper(status), page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.PurchaseOrderResponse, 0, len(list))
	for _, po := range list {
		items = append(items, *ToPurchaseOrderResponse(po))
	}
	return &dto.PurchaseOrderListResponse{Items: items, Page: dto.PageResponse{Limit: page.Limit, Offset: page.Offset}}, nil
}

// Reconcile informe de conciliación OC vs recepciones.
func (uc *PurchaseOrderUseCase) Reconcile(ctx context.Context, companyID, id string) (*procurement.Reconciliation, error) {
	po, err := uc.store.PurchaseOrders().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if po == nil || po.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	receipts, err := uc.store.Receipts().ListByPurchaseOrder(ctx, po.ID)
	if err != nil {
		return nil, err
	}
	return procurement.Reconcile(po, receipts), nil
}

func (uc *PurchaseOrderUseCase) checkParties(ctx context.Context, companyID, supplierID, warehouseID string) error {
	sup, err := uc.store.Suppliers().GetByID(ctx, supplierID)
	if err != nil {
		return err
	}
	if sup == nil || sup.CompanyID != companyID {
		return domain.NewValidationError(domain.Issue{Code: "SUPPLIER_NOT_FOUND", Field: "supplier_id", Message: "proveedor no encontrado o inactivo"})
	}
	wh, err := uc.store.Warehouses().GetByID(ctx, warehouseID)
	if err != nil {
		return err
	}
	if wh == nil || wh.CompanyID != companyID {
		return domain.NewValidationError(domain.Issue{Code: "WAREHOUSE_NOT_FOUND", Field: "warehouse_id", Message: "bodega no encontrada"})
	}
	return nil
}

func computeTotals(po *entity.PurchaseOrder) {
	hundred := decimal.NewFromInt(100)
	po.Subtotal, po.TaxTotal = decimal.Zero, decimal.Zero
	for _, l := range po.Lines {
		base := l.Quantity.Mul(l.UnitCost).Round(2)
		rate := l.TaxRate
		if rate.GreaterThan(decimal.NewFromInt(1)) {
			rate = rate.Div(hundred)
		}
		po.Subtotal = po.Subtotal.Add(base)
		po.TaxTotal = po.TaxTotal.Add(base.Mul(rate).Round(2))
	}
	po.Total = po.Subtotal.Add(po.TaxTotal)
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// ToPurchaseOrderResponse mapea la OC.
func ToPurchaseOrderResponse(po *entity.PurchaseOrder) *dto.PurchaseOrderResponse {
	r := &dto.PurchaseOrderResponse{
		ID:           po.ID,
		CompanyID:    po.CompanyID,
		SupplierID:   po.SupplierID,
		WarehouseID:  po.WarehouseID,
		Number:       po.Number,
		Status:       po.Status,
		OrderDate:    po.OrderDate,
		ExpectedDate: po.ExpectedDate,
		Notes:        po.Notes,
		Subtotal:     po.Subtotal,
		TaxTotal:     po.TaxTotal,
		Total:        po.Total,
		Lines:        make([]dto.POLineResponse, 0, len(po.Lines)),
		CreatedAt:    po.CreatedAt,
		UpdatedAt:    po.UpdatedAt,
	}
	for _, l := range po.Lines {
		r.Lines = append(r.Lines, dto.POLineResponse{
			ID:          l.ID,
			LineNo:      l.LineNo,
			ProductID:   l.ProductID,
			Quantity:    l.Quantity,
			UnitCost:    l.UnitCost,
			TaxRate:     l.TaxRate,
			ReceivedQty: l.ReceivedQty,
			AcceptedQty: l.AcceptedQty,
			RejectedQty: l.RejectedQty,
		})
	}
	return r
}
