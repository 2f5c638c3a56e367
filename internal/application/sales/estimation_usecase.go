package sales

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/erp-api/internal/application/dto"
	"github.com/jhoicas/erp-api/internal/application/shared"
	"github.com/jhoicas/erp-api/internal/domain"
	"github.com/jhoicas/erp-api/internal/domain/entity"
	"github.com/jhoicas/erp-api/internal/domain/repository"
	"github.com/jhoicas/erp-api/internal/domain/sales"
)

// DefaultValidityDays vigencia de una cotización sin fecha explícita.
const DefaultValidityDays = 30

// EstimationUseCase cotizaciones: DRAFT → SENT → ACCEPTED | REJECTED; ACCEPTED se convierte en factura.
type EstimationUseCase struct {
	store    repository.Store
	tx       repository.TxRunner
	invoices *InvoiceUseCase
	now      func() time.Time
}

// NewEstimationUseCase construye el caso de uso.
func NewEstimationUseCase(store repository.Store, tx repository.TxRunner, invoices *InvoiceUseCase) *EstimationUseCase {
	return &EstimationUseCase{store: store, tx: tx, invoices: invoices, now: time.Now}
}

// Create registra la cotización en borrador con totales calculados.
func (uc *EstimationUseCase) Create(ctx context.Context, companyID, userID string, req dto.CreateEstimationRequest) (*dto.EstimationResponse, error) {
	if err := checkClientAndWarehouse(ctx, uc.store, companyID, req.ClientID, req.WarehouseID); err != nil {
		return nil, err
	}
	lines, err := priceLines(ctx, uc.store, companyID, req.Lines)
	if err != nil {
		return nil, err
	}
	inputs := make([]sales.LineInput, 0, len(lines))
	for _, l := range lines {
		inputs = append(inputs, sales.LineInput{Quantity: l.Quantity, UnitPrice: l.UnitPrice, DiscountPct: l.Discount, TaxRate: l.Product.TaxRate})
	}
	totals, err := sales.ComputeTotals(inputs)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	validUntil := now.AddDate(0, 0, DefaultValidityDays)
	if req.ValidUntil != nil {
		if !req.ValidUntil.After(now) {
			return nil, domain.NewValidationError(domain.Issue{Code: "INVALID_DATES", Field: "valid_until", Message: "la vigencia debe ser posterior a hoy"})
		}
		validUntil = *req.ValidUntil
	}
	e := &entity.Estimation{
		ID:            uuid.New().String(),
		CompanyID:     companyID,
		ClientID:      req.ClientID,
		WarehouseID:   req.WarehouseID,
		Status:        entity.EstimationStatusDraft,
		IssueDate:     now,
		ValidUntil:    validUntil,
		Notes:         strings.TrimSpace(req.Notes),
		Subtotal:      totals.Subtotal,
		DiscountTotal: totals.DiscountTotal,
		TaxTotal:      totals.TaxTotal,
		Total:         totals.GrandTotal,
		CreatedBy:     userID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	for i, l := range lines {
		e.Lines = append(e.Lines, entity.EstimationLine{
			ID:           uuid.New().String(),
			EstimationID: e.ID,
			ProductID:    l.Product.ID,
			Quantity:     l.Quantity,
			UnitPrice:    l.UnitPrice,
			DiscountPct:  l.Discount,
			TaxRate:      l.Product.TaxRate,
			LineTotal:    totals.Lines[i].Total,
		})
	}

	err = uc.tx.Run(ctx, func(s repository.Store) error {
		number, err := shared.NextNumber(ctx, s, companyID, shared.DocEstimation)
		if err != nil {
			return err
		}
		e.Number = number
		if err := s.Estimations().Create(ctx, e); err != nil {
			return err
		}
		return shared.Record(ctx, s, shared.AuditEntry{
			CompanyID: companyID, UserID: userID, EntityType: "estimation", EntityID: e.ID,
			Action: entity.AuditCreate, After: toEstimationResponse(e, now), At: now,
		})
	})
	if err != nil {
		return nil, err
	}
	return toEstimationResponse(e, now), nil
}

// GetByID cotización; nil si no existe o es de otra empresa.
func (uc *EstimationUseCase) GetByID(ctx context.Context, companyID, id string) (*dto.EstimationResponse, error) {
	e, err := uc.store.Estimations().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if e == nil || e.CompanyID != companyID {
		return nil, nil
	}
	return toEstimationResponse(e, uc.now()), nil
}

// List cotizaciones por estado (vacío = todas).
func (uc *EstimationUseCase) List(ctx context.Context, companyID, status string, page dto.PageRequest) (*dto.EstimationListResponse, error) {
	page.DefaultPage()
	list, err := uc.store.Estimations().List(ctx, companyID, strings.ToUpper(status), page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	now := uc.now()
	items := make([]dto.EstimationResponse, 0, len(list))
	for _, e := range list {
		items = append(items, *toEstimationResponse(e, now))
	}
	return &dto.EstimationListResponse{Items: items, Page: dto.PageResponse{Limit: page.Limit, Offset: page.Offset}}, nil
}

// ChangeStatus aplica una transición manual (SENT, ACCEPTED, REJECTED).
// Una cotización vencida no puede enviarse ni aceptarse.
func (uc *EstimationUseCase) ChangeStatus(ctx context.Context, companyID, userID, id, status string) (*dto.EstimationResponse, error) {
	to := strings.ToUpper(strings.TrimSpace(status))
	if to == entity.EstimationStatusInvoiced {
		return nil, fmt.Errorf("%w: use la conversión a factura", domain.ErrInvalidState)
	}
	var out *dto.EstimationResponse
	err := uc.tx.Run(ctx, func(s repository.Store) error {
		e, err := s.Estimations().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if e == nil || e.CompanyID != companyID {
			return domain.ErrNotFound
		}
		now := uc.now()
		if !e.CanTransition(to) {
			return fmt.Errorf("%w: %s → %s", domain.ErrInvalidState, e.Status, to)
		}
		if to != entity.EstimationStatusRejected && e.IsExpired(now) {
			return fmt.Errorf("%w: la cotización %s está vencida", domain.ErrInvalidState, e.Number)
		}
		before := e.Status
		e.Status, e.UpdatedAt = to, now
		if err := s.Estimations().UpdateStatus(ctx, e); err != nil {
			return err
		}
		out = toEstimationResponse(e, now)
		return shared.Record(ctx, s, shared.AuditEntry{
			CompanyID: companyID, UserID: userID, EntityType: "estimation", EntityID: e.ID,
			Action: entity.AuditStatus, Before: map[string]string{"status": before}, After: map[string]string{"status": to}, At: now,
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Convert factura una cotización ACCEPTED y vigente con sus precios y descuentos, en la misma
// transacción que la marca INVOICED.
func (uc *EstimationUseCase) Convert(ctx context.Context, companyID, userID, id string, req dto.ConvertEstimationRequest) (*dto.InvoiceResponse, error) {
	strategy, err := uc.invoices.engine.Strategy(req.Strategy)
	if err != nil {
		return nil, err
	}
	var out *dto.InvoiceResponse
	err = uc.tx.Run(ctx, func(s repository.Store) error {
		e, err := s.Estimations().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if e == nil || e.CompanyID != companyID {
			return domain.ErrNotFound
		}
		now := uc.now()
		if e.Status != entity.EstimationStatusAccepted {
			return fmt.Errorf("%w: solo se factura una cotización aceptada (está en %s)", domain.ErrInvalidState, e.Status)
		}
		if e.IsExpired(now) {
			return fmt.Errorf("%w: la cotización %s está vencida", domain.ErrInvalidState, e.Number)
		}
		if err := checkClientAndWarehouse(ctx, s, companyID, e.ClientID, e.WarehouseID); err != nil {
			return err
		}
		draft := invoiceDraft{
			CompanyID:    companyID,
			UserID:       userID,
			ClientID:     e.ClientID,
			WarehouseID:  e.WarehouseID,
			EstimationID: &e.ID,
			Strategy:     strategy,
		}
		for _, l := range e.Lines {
			p, err := s.Products().GetByID(ctx, l.ProductID)
			if err != nil {
				return err
			}
			if p == nil {
				return fmt.Errorf("%w: producto %s", domain.ErrNotFound, l.ProductID)
			}
			// se respeta la tasa cotizada
			p.TaxRate = l.TaxRate
			draft.Lines = append(draft.Lines, pricedLine{Product: p, Quantity: l.Quantity, UnitPrice: l.UnitPrice, Discount: l.DiscountPct})
		}
		out, err = uc.invoices.issue(ctx, s, draft)
		if err != nil {
			return err
		}
		e.Status, e.InvoiceID, e.UpdatedAt = entity.EstimationStatusInvoiced, &out.ID, now
		if err := s.Estimations().UpdateStatus(ctx, e); err != nil {
			return err
		}
		return shared.Record(ctx, s, shared.AuditEntry{
			CompanyID: companyID, UserID: userID, EntityType: "estimation", EntityID: e.ID,
			Action: entity.AuditStatus, Before: map[string]string{"status": entity.EstimationStatusAccepted},
			After: map[string]string{"status": e.Status, "invoice_id": out.ID}, At: now,
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func toEstimationResponse(e *entity.Estimation, now time.Time) *dto.EstimationResponse {
	r := &dto.EstimationResponse{
		ID:            e.ID,
		ClientID:      e.ClientID,
		WarehouseID:   e.WarehouseID,
		Number:        e.Number,
		Status:        e.Status,
		Expired:       e.IsExpired(now) && e.Status != entity.EstimationStatusInvoiced && e.Status != entity.EstimationStatusRejected,
		IssueDate:     e.IssueDate,
		ValidUntil:    e.ValidUntil,
		Notes:         e.Notes,
		Subtotal:      e.Subtotal,
		DiscountTotal: e.DiscountTotal,
		TaxTotal:      e.TaxTotal,
		Total:         e.Total,
		InvoiceID:     e.InvoiceID,
		Lines:         make([]dto.EstimationLineResponse, 0, len(e.Lines)),
		CreatedAt:     e.CreatedAt,
	}
	for _, l := range e.Lines {
		r.Lines = append(r.Lines, dto.EstimationLineResponse{
			ProductID:   l.ProductID,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			DiscountPct: l.DiscountPct,
			TaxRate:     l.TaxRate,
			LineTotal:   l.LineTotal,
		})
	}
	return r
}
