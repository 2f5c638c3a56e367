package procurement

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/erp-api/internal/application/dto"
	appinventory "github.com/jhoicas/erp-api/internal/application/inventory"
	"github.com/jhoicas/erp-api/internal/application/ports"
	"github.com/jhoicas/erp-api/internal/application/shared"
	"github.com/jhoicas/erp-api/internal/domain"
	"github.com/jhoicas/erp-api/internal/domain/entity"
	"github.com/jhoicas/erp-api/internal/domain/procurement"
	"github.com/jhoicas/erp-api/internal/domain/repository"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const tracerName = "github.com/jhoicas/erp-api/internal/application/procurement"

// Resultados de una recepción para métricas.
const (
	OutcomePosted   = "posted"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// ReceiptUseCase recepciones de mercancía (GRN) contra órdenes de compra.
type ReceiptUseCase struct {
	store   repository.Store
	tx      repository.TxRunner
	engine  *appinventory.Engine
	policy  procurement.Policy
	metrics ports.Recorder
	pdf     ports.PDFGenerator
	now     func() time.Time
}

// NewReceiptUseCase construye el caso de uso. metrics y pdf pueden ser nil.
func NewReceiptUseCase(store repository.Store, tx repository.TxRunner, engine *appinventory.Engine,
	policy procurement.Policy, metrics ports.Recorder, pdf ports.PDFGenerator,
) *ReceiptUseCase {
	if metrics == nil {
		metrics = ports.NopRecorder{}
	}
	return &ReceiptUseCase{store: store, tx: tx, engine: engine, policy: policy, metrics: metrics, pdf: pdf, now: time.Now}
}

// Validate dry run: valida contra la OC y calcula el costo de internación sin escribir nada.
func (uc *ReceiptUseCase) Validate(ctx context.Context, companyID string, req dto.CreateGRNRequest) (*dto.GRNValidationResponse, error) {
	po, err := uc.store.PurchaseOrders().GetByID(ctx, req.PurchaseOrderID)
	if err != nil {
		return nil, err
	}
	if po == nil || po.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	products, err := loadProducts(ctx, uc.store, po)
	if err != nil {
		return nil, err
	}
	res := procurement.ValidateReceipt(po, products, toReceiptInput(req), uc.policy, uc.now())
	out := &dto.GRNValidationResponse{
		Valid:       res.Valid(),
		Errors:      nonNilIssues(res.Errors),
		Warnings:    nonNilIssues(res.Warnings),
		LandedCosts: []procurement.LandedCost{},
	}
	if res.Valid() {
		out.LandedCosts = landedCosts(res)
	}
	return out, nil
}

// Post registra la recepción en una sola transacción: bloquea la OC, valida contra los acumulados,
// prorratea cargos, crea un lote por línea aceptada, actualiza stock, kardex, costo promedio,
// acumulados y estado de la OC.
func (uc *ReceiptUseCase) Post(ctx context.Context, companyID, userID string, req dto.CreateGRNRequest) (*dto.GRNResponse, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "procurement.PostReceipt")
	defer span.End()
	span.SetAttributes(attribute.String("purchase_order_id", req.PurchaseOrderID), attribute.Int("lines", len(req.Lines)))

	var out *dto.GRNResponse
	err := uc.tx.Run(ctx, func(s repository.Store) error {
		po, err := s.PurchaseOrders().GetForUpdate(ctx, req.PurchaseOrderID)
		if err != nil {
			return err
		}
		if po == nil || po.CompanyID != companyID {
			return domain.ErrNotFound
		}
		products, err := loadProducts(ctx, s, po)
		if err != nil {
			return err
		}
		now := uc.now()
		input := toReceiptInput(req)
		res := procurement.ValidateReceipt(po, products, input, uc.policy, now)
		if !res.Valid() {
			return res.Err()
		}
		receivedAt := input.ReceivedAt
		if receivedAt.IsZero() {
			receivedAt = now
		}

		number, err := shared.NextNumber(ctx, s, companyID, shared.DocGoodsReceipt)
		if err != nil {
			return err
		}
		grn := &entity.GoodsReceipt{
			ID:              uuid.New().String(),
			CompanyID:       companyID,
			PurchaseOrderID: po.ID,
			WarehouseID:     po.WarehouseID,
			Number:          number,
			SupplierRef:     strings.TrimSpace(req.SupplierRef),
			ReceivedAt:      receivedAt,
			Notes:           strings.TrimSpace(req.Notes),
			Warnings:        res.WarningCodes(),
			TotalValue:      decimal.Zero,
			TotalCharges:    procurement.TotalCharges(res.Charges),
			CreatedBy:       userID,
			CreatedAt:       now,
		}

		landed := landedCosts(res)
		for i, vl := range res.Lines {
			lc := landed[i]
			line := entity.GoodsReceiptLine{
				ID:              uuid.New().String(),
				ReceiptID:       grn.ID,
				POLineID:        vl.POLine.ID,
				ProductID:       vl.POLine.ProductID,
				ReceivedQty:     vl.Input.ReceivedQty,
				AcceptedQty:     vl.Input.AcceptedQty,
				RejectedQty:     vl.Input.RejectedQty,
				UnitCost:        vl.UnitCost,
				AllocatedCharge: lc.AllocatedCharge,
				LandedUnitCost:  lc.LandedUnitCost,
				BatchNumber:     strings.TrimSpace(vl.Input.BatchNumber),
				ManufacturedAt:  vl.Input.ManufacturedAt,
				ExpiresAt:       vl.ExpiresAt,
			}
			if vl.Input.AcceptedQty.GreaterThan(decimal.Zero) {
				status := entity.BatchStatusReleased
				if vl.Product.RequiresInspection {
					status = entity.BatchStatusQuarantine
				}
				batch, err := uc.engine.Receive(ctx, s, appinventory.ReceiveInput{
					CompanyID:     companyID,
					UserID:        userID,
					TransactionID: grn.ID,
					Product:       vl.Product,
					WarehouseID:   po.WarehouseID,
					Quantity:      vl.Input.AcceptedQty,
					UnitCost:      lc.LandedUnitCost,
					MovementType:  entity.MovementReceipt,
					Batch: &entity.Batch{
						BatchNumber:    line.BatchNumber,
						ManufacturedAt: vl.Input.ManufacturedAt,
						ExpiresAt:      vl.ExpiresAt,
						ReceivedAt:     receivedAt,
						Status:         status,
						SourceType:     "GRN",
						SourceID:       grn.ID,
					},
					Now: now,
				})
				if err != nil {
					return err
				}
				line.BatchID = &batch.ID
				line.BatchNumber = batch.BatchNumber
				line.ExpiresAt = batch.ExpiresAt
			}
			grn.TotalValue = grn.TotalValue.Add(vl.Input.AcceptedQty.Mul(vl.UnitCost)).Round(2)
			grn.Lines = append(grn.Lines, line)

			vl.POLine.ReceivedQty = vl.POLine.ReceivedQty.Add(vl.Input.ReceivedQty)
			vl.POLine.AcceptedQty = vl.POLine.AcceptedQty.Add(vl.Input.AcceptedQty)
			vl.POLine.RejectedQty = vl.POLine.RejectedQty.Add(vl.Input.RejectedQty)
			if err := s.PurchaseOrders().UpdateLineReceipt(ctx, vl.POLine); err != nil {
				return err
			}
		}
		for _, c := range res.Charges {
			grn.Charges = append(grn.Charges, entity.ReceiptCharge{
				ID:          uuid.New().String(),
				ReceiptID:   grn.ID,
				Type:        c.Type,
				Basis:       c.Basis,
				Amount:      c.Amount,
				Description: c.Description,
			})
		}
		if err := s.Receipts().Create(ctx, grn); err != nil {
			return err
		}

		before := po.Status
		if po.FullyReceived() {
			po.Status = entity.POStatusReceived
		} else {
			po.Status = entity.POStatusPartiallyReceived
		}
		po.UpdatedAt = now
		if err := s.PurchaseOrders().UpdateStatus(ctx, po); err != nil {
			return err
		}

		out = ToGRNResponse(grn)
		out.POStatus = po.Status
		return shared.Record(ctx, s, shared.AuditEntry{
			CompanyID: companyID, UserID: userID, EntityType: "goods_receipt", EntityID: grn.ID,
			Action: entity.AuditCreate, Before: map[string]string{"po_status": before}, After: out, At: now,
		})
	})
	switch {
	case err == nil:
		uc.metrics.ReceiptPosted(OutcomePosted)
	case errors.Is(err, domain.ErrReceiptRejected):
		uc.metrics.ReceiptPosted(OutcomeRejected)
		span.SetStatus(codes.Error, "rejected")
	default:
		uc.metrics.ReceiptPosted(OutcomeError)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetByID recepción con líneas y cargos; nil si no existe o es de otra empresa.
func (uc *ReceiptUseCase) GetByID(ctx context.Context, companyID, id string) (*dto.GRNResponse, error) {
	g, err := uc.store.Receipts().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if g == nil || g.CompanyID != companyID {
		return nil, nil
	}
	return ToGRNResponse(g), nil
}

// ListByPurchaseOrder recepciones de una OC en orden de registro.
func (uc *ReceiptUseCase) ListByPurchaseOrder(ctx context.Context, companyID, poID string) (*dto.GRNListResponse, error) {
	po, err := uc.store.PurchaseOrders().GetByID(ctx, poID)
	if err != nil {
		return nil, err
	}
	if po == nil || po.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	list, err := uc.store.Receipts().ListByPurchaseOrder(ctx, poID)
	if err != nil {
		return nil, err
	}
	items := make([]dto.GRNResponse, 0, len(list))
	for _, g := range list {
		items = append(items, *ToGRNResponse(g))
	}
	return &dto.GRNListResponse{Items: items, Page: dto.PageResponse{Limit: len(items), Total: len(items)}}, nil
}

// List recepciones de la empresa, más recientes primero.
func (uc *ReceiptUseCase) List(ctx context.Context, companyID string, page dto.PageRequest) (*dto.GRNListResponse, error) {
	page.DefaultPage()
	list, err := uc.store.Receipts().List(ctx, companyID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.GRNResponse, 0, len(list))
	for _, g := range list {
		items = append(items, *ToGRNResponse(g))
	}
	return &dto.GRNListResponse{Items: items, Page: dto.PageResponse{Limit: page.Limit, Offset: page.Offset}}, nil
}

// PDF representación gráfica de la recepción.
func (uc *ReceiptUseCase) PDF(ctx context.Context, companyID, id string) ([]byte, string, error) {
	if uc.pdf == nil {
		return nil, "", errors.New("generador de PDF no configurado")
	}
	g, err := uc.store.Receipts().GetByID(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if g == nil || g.CompanyID != companyID {
		return nil, "", domain.ErrNotFound
	}
	po, err := uc.store.PurchaseOrders().GetByID(ctx, g.PurchaseOrderID)
	if err != nil {
		return nil, "", err
	}
	if po == nil {
		return nil, "", domain.ErrNotFound
	}
	company, err := uc.store.Companies().GetByID(ctx, companyID)
	if err != nil {
		return nil, "", err
	}
	supplier, err := uc.store.Suppliers().GetByID(ctx, po.SupplierID)
	if err != nil {
		return nil, "", err
	}
	if supplier == nil {
		// proveedor dado de baja después de la recepción
		supplier = &entity.Supplier{ID: po.SupplierID}
	}
	wh, err := uc.store.Warehouses().GetByID(ctx, g.WarehouseID)
	if err != nil {
		return nil, "", err
	}
	doc := ports.ReceiptDocument{Receipt: g, PurchaseOrder: po, Company: company, Supplier: supplier, Warehouse: wh}
	for _, l := range g.Lines {
		line := ports.ReceiptDocumentLine{GoodsReceiptLine: l}
		if p, err := uc.store.Products().GetByID(ctx, l.ProductID); err != nil {
			return nil, "", err
		} else if p != nil {
			line.SKU, line.ProductName = p.SKU, p.Name
		}
		doc.Lines = append(doc.Lines, line)
	}
	b, err := uc.pdf.ReceiptPDF(ctx, doc)
	if err != nil {
		return nil, "", err
	}
	return b, g.Number + ".pdf", nil
}

func loadProducts(ctx context.Context, s repository.Store, po *entity.PurchaseOrder) (map[string]*entity.Product, error) {
	out := make(map[string]*entity.Product, len(po.Lines))
	for _, l := range po.Lines {
		if _, ok := out[l.ProductID]; ok {
			continue
		}
		p, err := s.Products().GetByID(ctx, l.ProductID)
		if err != nil {
			return nil, err
		}
		if p != nil {
			out[p.ID] = p
		}
	}
	return out, nil
}

func landedCosts(res *procurement.ValidationResult) []procurement.LandedCost {
	lines := make([]procurement.CostLine, 0, len(res.Lines))
	for _, vl := range res.Lines {
		lines = append(lines, procurement.CostLine{
			Key:      vl.POLine.ID,
			Quantity: vl.Input.AcceptedQty,
			UnitCost: vl.UnitCost,
			WeightKg: vl.Product.WeightKg,
		})
	}
	return procurement.AllocateLandedCost(lines, res.Charges)
}

func toReceiptInput(req dto.CreateGRNRequest) procurement.ReceiptInput {
	in := procurement.ReceiptInput{WarehouseID: req.WarehouseID}
	if req.ReceivedAt != nil {
		in.ReceivedAt = *req.ReceivedAt
	}
	for _, l := range req.Lines {
		in.Lines = append(in.Lines, procurement.ReceiptLineInput{
			POLineID:       l.POLineID,
			ReceivedQty:    l.ReceivedQty,
			AcceptedQty:    l.AcceptedQty,
			RejectedQty:    l.RejectedQty,
			UnitCost:       l.UnitCost,
			BatchNumber:    l.BatchNumber,
			ManufacturedAt: l.ManufacturedAt,
			ExpiresAt:      l.ExpiresAt,
		})
	}
	for _, c := range req.Charges {
		in.Charges = append(in.Charges, procurement.ChargeInput{
			Type:        strings.ToUpper(strings.TrimSpace(c.Type)),
			Basis:       strings.ToUpper(strings.TrimSpace(c.Basis)),
			Amount:      c.Amount,
			Description: c.Description,
		})
	}
	return in
}

func nonNilIssues(in []domain.Issue) []domain.Issue {
	if in == nil {
		return []domain.Issue{}
	}
	return in
}

// ToGRNResponse mapea la recepción.
func ToGRNResponse(g *entity.GoodsReceipt) *dto.GRNResponse {
	r := &dto.GRNResponse{
		ID:              g.ID,
		PurchaseOrderID: g.PurchaseOrderID,
		WarehouseID:     g.WarehouseID,
		Number:          g.Number,
		SupplierRef:     g.SupplierRef,
		ReceivedAt:      g.ReceivedAt,
		Notes:           g.Notes,
		TotalValue:      g.TotalValue,
		TotalCharges:    g.TotalCharges,
		Warnings:        g.Warnings,
		Lines:           make([]dto.GRNLineResponse, 0, len(g.Lines)),
		Charges:         make([]dto.GRNChargeResponse, 0, len(g.Charges)),
		CreatedAt:       g.CreatedAt,
	}
	if r.Warnings == nil {
		r.Warnings = []string{}
	}
	for _, l := range g.Lines {
		r.Lines = append(r.Lines, dto.GRNLineResponse{
			ID:              l.ID,
			POLineID:        l.POLineID,
			ProductID:       l.ProductID,
			ReceivedQty:     l.ReceivedQty,
			AcceptedQty:     l.AcceptedQty,
			RejectedQty:     l.RejectedQty,
			UnitCost:        l.UnitCost,
			AllocatedCharge: l.AllocatedCharge,
			LandedUnitCost:  l.LandedUnitCost,
			BatchID:         l.BatchID,
			BatchNumber:     l.BatchNumber,
			ManufacturedAt:  l.ManufacturedAt,
			ExpiresAt:       l.ExpiresAt,
		})
	}
	for _, c := range g.Charges {
		r.Charges = append(r.Charges, dto.GRNChargeResponse{Type: c.Type, Basis: c.Basis, Amount: c.Amount, Description: c.Description})
	}
	return r
}
