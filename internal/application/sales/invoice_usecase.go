// Package sales cotizaciones y facturas de venta con salida de inventario por lotes.
package sales

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/erp-api/internal/application/dto"
	appinventory "github.com/jhoicas/erp-api/internal/application/inventory"
	"github.com/jhoicas/erp-api/internal/application/ports"
	"github.com/jhoicas/erp-api/internal/application/shared"
	"github.com/jhoicas/erp-api/internal/domain"
	"github.com/jhoicas/erp-api/internal/domain/entity"
	"github.com/jhoicas/erp-api/internal/domain/inventory"
	"github.com/jhoicas/erp-api/internal/domain/repository"
	"github.com/jhoicas/erp-api/internal/domain/sales"
	"github.com/shopspring/decimal"
)

// InvoiceUseCase emite facturas: asigna lotes por línea, descuenta stock y guarda costo y margen.
type InvoiceUseCase struct {
	store  repository.Store
	tx     repository.TxRunner
	engine *appinventory.Engine
	pdf    ports.PDFGenerator
	now    func() time.Time
}

// NewInvoiceUseCase construye el caso de uso. pdf puede ser nil.
func NewInvoiceUseCase(store repository.Store, tx repository.TxRunner, engine *appinventory.Engine, pdf ports.PDFGenerator) *InvoiceUseCase {
	return &InvoiceUseCase{store: store, tx: tx, engine: engine, pdf: pdf, now: time.Now}
}

// pricedLine línea ya validada con precio y tasa resueltos.
type pricedLine struct {
	Product   *entity.Product
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
	Discount  decimal.Decimal
	Specified []inventory.SpecifiedBatch
}

// invoiceDraft factura lista para emitir dentro de una transacción.
type invoiceDraft struct {
	CompanyID    string
	UserID       string
	ClientID     string
	WarehouseID  string
	EstimationID *string
	Strategy     inventory.Strategy
	Lines        []pricedLine
}

// Create valida cliente, bodega y productos fuera de la transacción y emite la factura.
// Sin stock suficiente en alguna línea no se registra nada (ErrInsufficientStock).
func (uc *InvoiceUseCase) Create(ctx context.Context, companyID, userID string, req dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error) {
	strategy, err := uc.engine.Strategy(req.Strategy)
	if err != nil {
		return nil, err
	}
	if err := checkClientAndWarehouse(ctx, uc.store, companyID, req.ClientID, req.WarehouseID); err != nil {
		return nil, err
	}
	lines, err := priceLines(ctx, uc.store, companyID, req.Lines)
	if err != nil {
		return nil, err
	}
	if strategy == inventory.StrategySpecified {
		for i, l := range lines {
			if len(l.Specified) == 0 {
				return nil, domain.NewValidationError(domain.Issue{Code: "BATCHES_REQUIRED", Field: fmt.Sprintf("lines[%d].batches", i), Message: "la estrategia SPECIFIED exige lotes por línea"})
			}
		}
	}

	draft := invoiceDraft{CompanyID: companyID, UserID: userID, ClientID: req.ClientID, WarehouseID: req.WarehouseID, Strategy: strategy, Lines: lines}
	var out *dto.InvoiceResponse
	err = uc.tx.Run(ctx, func(s repository.Store) error {
		var err error
		out, err = uc.issue(ctx, s, draft)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// issue emite la factura con los repositorios de la transacción del caller.
func (uc *InvoiceUseCase) issue(ctx context.Context, s repository.Store, draft invoiceDraft) (*dto.InvoiceResponse, error) {
	inputs := make([]sales.LineInput, 0, len(draft.Lines))
	for _, l := range draft.Lines {
		inputs = append(inputs, sales.LineInput{Quantity: l.Quantity, UnitPrice: l.UnitPrice, DiscountPct: l.Discount, TaxRate: l.Product.TaxRate})
	}
	totals, err := sales.ComputeTotals(inputs)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	number, err := shared.NextNumber(ctx, s, draft.CompanyID, shared.DocInvoice)
	if err != nil {
		return nil, err
	}
	inv := &entity.Invoice{
		ID:            uuid.New().String(),
		CompanyID:     draft.CompanyID,
		ClientID:      draft.ClientID,
		WarehouseID:   draft.WarehouseID,
		EstimationID:  draft.EstimationID,
		Number:        number,
		Date:          now,
		Status:        entity.InvoiceStatusIssued,
		NetTotal:      totals.NetTotal,
		DiscountTotal: totals.DiscountTotal,
		TaxTotal:      totals.TaxTotal,
		GrandTotal:    totals.GrandTotal,
		CostTotal:     decimal.Zero,
		CreatedBy:     draft.UserID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	resp := toInvoiceResponse(inv)
	details := make([]*entity.InvoiceDetail, 0, len(draft.Lines))
	for i, l := range draft.Lines {
		res, err := uc.engine.Issue(ctx, s, appinventory.IssueInput{
			CompanyID:     draft.CompanyID,
			UserID:        draft.UserID,
			TransactionID: inv.ID,
			ProductID:     l.Product.ID,
			WarehouseID:   draft.WarehouseID,
			Quantity:      l.Quantity,
			Strategy:      draft.Strategy,
			Specified:     l.Specified,
			MovementType:  entity.MovementSale,
			Now:           now,
		})
		if err != nil {
			if errors.Is(err, domain.ErrInsufficientStock) {
				return nil, fmt.Errorf("%w: producto %s", err, l.Product.SKU)
			}
			return nil, err
		}
		det := &entity.InvoiceDetail{
			ID:          uuid.New().String(),
			InvoiceID:   inv.ID,
			ProductID:   l.Product.ID,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			DiscountPct: l.Discount,
			TaxRate:     l.Product.TaxRate,
			Subtotal:    totals.Lines[i].Net,
			CostTotal:   res.TotalCost.Round(2),
		}
		details = append(details, det)
		inv.CostTotal = inv.CostTotal.Add(det.CostTotal)
		resp.Lines = append(resp.Lines, toLineResponse(det, res.Deductions))
	}
	inv.GrossMargin = inv.NetTotal.Sub(inv.CostTotal)
	resp.CostTotal, resp.GrossMargin = inv.CostTotal, inv.GrossMargin

	if err := s.Invoices().Create(ctx, inv); err != nil {
		return nil, err
	}
	for _, det := range details {
		if err := s.Invoices().CreateDetail(ctx, det); err != nil {
			return nil, err
		}
	}
	if err := shared.Record(ctx, s, shared.AuditEntry{
		CompanyID: draft.CompanyID, UserID: draft.UserID, EntityType: "invoice", EntityID: inv.ID,
		Action: entity.AuditCreate, After: resp, At: now,
	}); err != nil {
		return nil, err
	}
	return resp, nil
}

// GetByID factura con sus líneas y los lotes consumidos; nil si no existe o es de otra empresa.
func (uc *InvoiceUseCase) GetByID(ctx context.Context, companyID, id string) (*dto.InvoiceResponse, error) {
	inv, err := uc.store.Invoices().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv == nil || inv.CompanyID != companyID {
		return nil, nil
	}
	details, err := uc.store.Invoices().GetDetails(ctx, id)
	if err != nil {
		return nil, err
	}
	movs, err := uc.store.Movements().ListByTransaction(ctx, id)
	if err != nil {
		return nil, err
	}
	byProduct := map[string][]inventory.Deduction{}
	for _, m := range movs {
		if m.Type != entity.MovementSale || m.BatchID == nil {
			continue
		}
		d := inventory.Deduction{
			BatchID:   *m.BatchID,
			Quantity:  m.Quantity.Neg(),
			UnitCost:  m.UnitCost,
			TotalCost: m.TotalCost.Neg(),
		}
		if b, err := uc.store.Batches().GetByID(ctx, *m.BatchID); err != nil {
			return nil, err
		} else if b != nil {
			d.BatchNumber, d.ExpiresAt = b.BatchNumber, b.ExpiresAt
		}
		byProduct[m.ProductID] = append(byProduct[m.ProductID], d)
	}

	resp := toInvoiceResponse(inv)
	for _, det := range details {
		resp.Lines = append(resp.Lines, toLineResponse(det, takeAllocations(byProduct, det.ProductID, det.Quantity)))
	}
	return resp, nil
}

// List facturas de la empresa, más recientes primero.
func (uc *InvoiceUseCase) List(ctx context.Context, companyID string, page dto.PageRequest) (*dto.InvoiceListResponse, error) {
	page.DefaultPage()
	list, err := uc.store.Invoices().List(ctx, companyID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.InvoiceResponse, 0, len(list))
	for _, inv := range list {
		items = append(items, *toInvoiceResponse(inv))
	}
	return &dto.InvoiceListResponse{Items: items, Page: dto.PageResponse{Limit: page.Limit, Offset: page.Offset}}, nil
}

// PDF representación gráfica de la factura.
func (uc *InvoiceUseCase) PDF(ctx context.Context, companyID, id string) ([]byte, string, error) {
	if uc.pdf == nil {
		return nil, "", errors.New("generador de PDF no configurado")
	}
	inv, err := uc.store.Invoices().GetByID(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if inv == nil || inv.CompanyID != companyID {
		return nil, "", domain.ErrNotFound
	}
	company, err := uc.store.Companies().GetByID(ctx, companyID)
	if err != nil {
		return nil, "", err
	}
	client, err := uc.store.Clients().GetByID(ctx, inv.ClientID)
	if err != nil {
		return nil, "", err
	}
	if client == nil {
		client = &entity.Client{ID: inv.ClientID}
	}
	details, err := uc.store.Invoices().GetDetails(ctx, id)
	if err != nil {
		return nil, "", err
	}
	doc := ports.InvoiceDocument{Invoice: inv, Company: company, Client: client}
	for _, det := range details {
		line := ports.InvoiceDocumentLine{InvoiceDetail: *det}
		if p, err := uc.store.Products().GetByID(ctx, det.ProductID); err != nil {
			return nil, "", err
		} else if p != nil {
			line.SKU, line.ProductName = p.SKU, p.Name
		}
		doc.Lines = append(doc.Lines, line)
	}
	b, err := uc.pdf.InvoicePDF(ctx, doc)
	if err != nil {
		return nil, "", err
	}
	return b, inv.Number + ".pdf", nil
}

// takeAllocations reparte los lotes del producto entre sus líneas en orden, hasta cubrir qty.
func takeAllocations(byProduct map[string][]inventory.Deduction, productID string, qty decimal.Decimal) []inventory.Deduction {
	var out []inventory.Deduction
	pending := byProduct[productID]
	for len(pending) > 0 && qty.GreaterThan(decimal.Zero) {
		d := pending[0]
		if d.Quantity.GreaterThan(qty) {
			part := d
			part.Quantity = qty
			part.TotalCost = qty.Mul(d.UnitCost).Round(4)
			out = append(out, part)
			pending[0].Quantity = d.Quantity.Sub(qty)
			pending[0].TotalCost = pending[0].Quantity.Mul(d.UnitCost).Round(4)
			break
		}
		out = append(out, d)
		qty = qty.Sub(d.Quantity)
		pending = pending[1:]
	}
	byProduct[productID] = pending
	return out
}

func checkClientAndWarehouse(ctx context.Context, s repository.Store, companyID, clientID, warehouseID string) error {
	client, err := s.Clients().GetByID(ctx, clientID)
	if err != nil {
		return err
	}
	if client == nil || client.CompanyID != companyID {
		return domain.NewValidationError(domain.Issue{Code: "CLIENT_NOT_FOUND", Field: "client_id", Message: "cliente no encontrado o inactivo"})
	}
	wh, err := s.Warehouses().GetByID(ctx, warehouseID)
	if err != nil {
		return err
	}
	if wh == nil || wh.CompanyID != companyID {
		return domain.NewValidationError(domain.Issue{Code: "WAREHOUSE_NOT_FOUND", Field: "warehouse_id", Message: "bodega no encontrada"})
	}
	return nil
}

// priceLines resuelve producto, precio (por defecto el de lista) y lotes indicados de cada línea.
func priceLines(ctx context.Context, s repository.Store, companyID string, in []dto.SalesLineRequest) ([]pricedLine, error) {
	if len(in) == 0 {
		return nil, domain.NewValidationError(domain.Issue{Code: "EMPTY_LINES", Field: "lines", Message: "sin líneas"})
	}
	var issues []domain.Issue
	out := make([]pricedLine, 0, len(in))
	for i, l := range in {
		p, err := s.Products().GetByID(ctx, l.ProductID)
		if err != nil {
			return nil, err
		}
		if p == nil || p.CompanyID != companyID {
			issues = append(issues, domain.Issue{Code: "PRODUCT_NOT_FOUND", Field: fmt.Sprintf("lines[%d].product_id", i), Message: "producto no encontrado"})
			continue
		}
		price := p.Price
		if l.UnitPrice != nil {
			price = *l.UnitPrice
		}
		out = append(out, pricedLine{
			Product:   p,
			Quantity:  l.Quantity,
			UnitPrice: price,
			Discount:  l.DiscountPct,
			Specified: appinventory.SpecifiedBatches(l.Batches),
		})
	}
	if len(issues) > 0 {
		return nil, domain.NewValidationError(issues...)
	}
	return out, nil
}

func toInvoiceResponse(inv *entity.Invoice) *dto.InvoiceResponse {
	return &dto.InvoiceResponse{
		ID:            inv.ID,
		ClientID:      inv.ClientID,
		WarehouseID:   inv.WarehouseID,
		EstimationID:  inv.EstimationID,
		Number:        inv.Number,
		Date:          inv.Date,
		Status:        inv.Status,
		NetTotal:      inv.NetTotal,
		DiscountTotal: inv.DiscountTotal,
		TaxTotal:      inv.TaxTotal,
		GrandTotal:    inv.GrandTotal,
		CostTotal:     inv.CostTotal,
		GrossMargin:   inv.GrossMargin,
		Lines:         []dto.InvoiceLineResponse{},
		CreatedAt:     inv.CreatedAt,
	}
}

func toLineResponse(det *entity.InvoiceDetail, allocations []inventory.Deduction) dto.InvoiceLineResponse {
	if allocations == nil {
		allocations = []inventory.Deduction{}
	}
	return dto.InvoiceLineResponse{
		ProductID:   det.ProductID,
		Quantity:    det.Quantity,
		UnitPrice:   det.UnitPrice,
		DiscountPct: det.DiscountPct,
		TaxRate:     det.TaxRate,
		Subtotal:    det.Subtotal,
		CostTotal:   det.CostTotal,
		Allocations: allocations,
	}
}
