package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/erp-api/internal/domain/entity"
	"github.com/jhoicas/erp-api/internal/domain/repository"
)

var _ repository.QualityInspectionRepository = (*QualityInspectionRepo)(nil)

// QualityInspectionRepo inspecciones de calidad sobre lotes.
type QualityInspectionRepo struct {
	q Querier
}

// NewQualityInspectionRepository construye el adaptador.
func NewQualityInspectionRepository(q Querier) *QualityInspectionRepo {
	return &QualityInspectionRepo{q: q}
}

// Create persiste una inspección.
func (r *QualityInspectionRepo) Create(ctx context.Context, in *entity.QualityInspection) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO quality_inspections (id, company_id, batch_id, inspector_id, passed_qty, failed_qty, result, notes, inspected_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		in.ID, in.CompanyID, in.BatchID, nullIfEmpty(in.InspectorID), in.PassedQty, in.FailedQty, in.Result, in.Notes, in.InspectedAt)
	return mapPostgresError("insert quality inspection", err)
}

// ListByBatch historial de inspecciones del lote.
func (r *QualityInspectionRepo) ListByBatch(ctx context.Context, batchID string) ([]*entity.QualityInspection, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, company_id, batch_id, inspector_id, passed_qty, failed_qty, result, notes, inspected_at
		FROM quality_inspections WHERE batch_id = $1 ORDER BY inspected_at`, batchID)
	if err != nil {
		return nil, fmt.Errorf("list inspections: %w", err)
	}
	defer rows.Close()
	var list []*entity.QualityInspection
	for rows.Next() {
		var in entity.QualityInspection
		var inspector *string
		if err := rows.Scan(&in.ID, &in.CompanyID, &in.BatchID, &inspector, &in.PassedQty, &in.FailedQty,
			&in.Result, &in.Notes, &in.InspectedAt); err != nil {
			return nil, fmt.Errorf("scan inspection: %w", err)
		}
		in.InspectorID = deref(inspector)
		list = append(list, &in)
	}
	return list, rows.Err()
}
