// Package quality inspección de lotes recibidos en cuarentena.
package quality

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
	"github.com/jhoicas/erp-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// InspectionUseCase libera o rechaza lotes en cuarentena.
type InspectionUseCase struct {
	store  repository.Store
	tx     repository.TxRunner
	engine *appinventory.Engine
	now    func() time.Time
}

// NewInspectionUseCase construye el caso de uso.
func NewInspectionUseCase(store repository.Store, tx repository.TxRunner, engine *appinventory.Engine) *InspectionUseCase {
	return &InspectionUseCase{store: store, tx: tx, engine: engine, now: time.Now}
}

// Inspect registra el resultado. passed + failed debe ser igual al saldo del lote.
// Lo aprobado queda RELEASED; lo rechazado sale del stock con un movimiento QUALITY_REJECT.
func (uc *InspectionUseCase) Inspect(ctx context.Context, companyID, userID string, req dto.InspectionRequest) (*dto.InspectionResponse, error) {
	if req.PassedQty.IsNegative() || req.FailedQty.IsNegative() {
		return nil, fmt.Errorf("%w: cantidades negativas", domain.ErrInvalidInput)
	}
	var out *dto.InspectionResponse
	err := uc.tx.Run(ctx, func(s repository.Store) error {
		b, err := s.Batches().GetForUpdate(ctx, req.BatchID)
		if err != nil {
			return err
		}
		if b == nil || b.CompanyID != companyID {
			return domain.ErrNotFound
		}
		if b.Status != entity.BatchStatusQuarantine {
			return fmt.Errorf("%w: el lote %s está en %s", domain.ErrInvalidState, b.BatchNumber, b.Status)
		}
		total := req.PassedQty.Add(req.FailedQty)
		if !total.Equal(b.QtyAvailable) {
			return domain.NewValidationError(domain.Issue{
				Code:    "QTY_SPLIT_MISMATCH",
				Field:   "passed_qty",
				Message: fmt.Sprintf("aprobado + rechazado (%s) debe ser igual al saldo del lote (%s)", total, b.QtyAvailable),
			})
		}

		now := uc.now()
		in := &entity.QualityInspection{
			ID:          uuid.New().String(),
			CompanyID:   companyID,
			BatchID:     b.ID,
			InspectorID: userID,
			PassedQty:   req.PassedQty,
			FailedQty:   req.FailedQty,
			Result:      result(req.PassedQty, req.FailedQty),
			Notes:       strings.TrimSpace(req.Notes),
			InspectedAt: now,
		}
		before := b.Status

		if req.FailedQty.GreaterThan(decimal.Zero) {
			err := uc.engine.WriteOff(ctx, s, b, req.FailedQty, appinventory.IssueInput{
				CompanyID:     companyID,
				UserID:        userID,
				TransactionID: in.ID,
				MovementType:  entity.MovementQualityReject,
				Now:           now,
			})
			if err != nil {
				return err
			}
		}
		if req.PassedQty.GreaterThan(decimal.Zero) {
			b.Status = entity.BatchStatusReleased
		} else {
			b.Status = entity.BatchStatusRejected
		}
		b.UpdatedAt = now
		if err := s.Batches().Update(ctx, b); err != nil {
			return err
		}
		if err := s.Inspections().Create(ctx, in); err != nil {
			return err
		}
		out = toResponse(in)
		out.BatchStatus = b.Status
		return shared.Record(ctx, s, shared.AuditEntry{
			CompanyID: companyID, UserID: userID, EntityType: "batch", EntityID: b.ID,
			Action: entity.AuditStatus, Before: map[string]string{"status": before}, After: out, At: now,
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListByBatch inspecciones de un lote.
func (uc *InspectionUseCase) ListByBatch(ctx context.Context, companyID, batchID string) ([]dto.InspectionResponse, error) {
	b, err := uc.store.Batches().GetByID(ctx, batchID)
	if err != nil {
		return nil, err
	}
	if b == nil || b.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	list, err := uc.store.Inspections().ListByBatch(ctx, batchID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.InspectionResponse, 0, len(list))
	for _, in := range list {
		out = append(out, *toResponse(in))
	}
	return out, nil
}

func result(passed, failed decimal.Decimal) string {
	switch {
	case failed.IsZero():
		return entity.InspectionPassed
	case passed.IsZero():
		return entity.InspectionFailed
	}
	return entity.InspectionPartial
}

func toResponse(in *entity.QualityInspection) *dto.InspectionResponse {
	return &dto.InspectionResponse{
		ID:          in.ID,
		BatchID:     in.BatchID,
		InspectorID: in.InspectorID,
		PassedQty:   in.PassedQty,
		FailedQty:   in.FailedQty,
		Result:      in.Result,
		Notes:       in.Notes,
		InspectedAt: in.InspectedAt,
	}
}
