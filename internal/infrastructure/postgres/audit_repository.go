package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jhoicas/erp-api/internal/domain/entity"
	"github.com/jhoicas/erp-api/internal/domain/repository"
)

var (
	_ repository.AuditLogRepository = (*AuditLogRepo)(nil)
	_ repository.SequenceRepository = (*SequenceRepo)(nil)
)

// AuditLogRepo log de auditoría append-only.
type AuditLogRepo struct {
	q Querier
}

// NewAuditLogRepository construye el adaptador.
func NewAuditLogRepository(q Querier) *AuditLogRepo {
	return &AuditLogRepo{q: q}
}

// Create inserta un registro de auditoría.
func (r *AuditLogRepo) Create(ctx context.Context, l *entity.AuditLog) error {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	_, err := r.q.Exec(ctx, `
		INSERT INTO audit_logs (id, company_id, user_id, entity_type, entity_id, action, before, after, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		l.ID, l.CompanyID, nullIfEmpty(l.UserID), l.EntityType, l.EntityID, l.Action,
		nullJSON(l.Before), nullJSON(l.After), l.CreatedAt)
	return mapPostgresError("insert audit log", err)
}

// List consulta el log, más reciente primero.
func (r *AuditLogRepo) List(ctx context.Context, f repository.AuditFilter) ([]*entity.AuditLog, error) {
	conds := []string{"company_id = $1"}
	args := []any{f.CompanyID}
	if f.EntityType != "" {
		args = append(args, f.EntityType)
		conds = append(conds, fmt.Sprintf("entity_type = $%d", len(args)))
	}
	if f.EntityID != "" {
		args = append(args, f.EntityID)
		conds = append(conds, fmt.Sprintf("entity_id = $%d", len(args)))
	}
	if f.From != nil {
		args = append(args, *f.From)
		conds = append(conds, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if f.To != nil {
		args = append(args, *f.To)
		conds = append(conds, fmt.Sprintf("created_at < $%d", len(args)))
	}
	args = append(args, f.Limit, f.Offset)
	query := fmt.Sprintf(`
		SELECT id, company_id, user_id, entity_type, entity_id, action, before, after, created_at
		FROM audit_logs WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		strings.Join(conds, " AND "), len(args)-1, len(args))
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list audit logs: %w", err)
	}
	defer rows.Close()
	var list []*entity.AuditLog
	for rows.Next() {
		var l entity.AuditLog
		var userID *string
		var before, after []byte
		if err := rows.Scan(&l.ID, &l.CompanyID, &userID, &l.EntityType, &l.EntityID, &l.Action,
			&before, &after, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit log: %w", err)
		}
		l.UserID = deref(userID)
		l.Before, l.After = before, after
		list = append(list, &l)
	}
	return list, rows.Err()
}

// SequenceRepo consecutivos por empresa y tipo de documento.
type SequenceRepo struct {
	q Querier
}

// NewSequenceRepository construye el adaptador.
func NewSequenceRepository(q Querier) *SequenceRepo {
	return &SequenceRepo{q: q}
}

// Next incrementa y devuelve el consecutivo; la fila queda bloqueada hasta el fin de la transacción.
func (r *SequenceRepo) Next(ctx context.Context, companyID, docType string) (int64, error) {
	var n int64
	err := r.q.QueryRow(ctx, `
		INSERT INTO document_sequences (company_id, doc_type, last_value)
		VALUES ($1, $2, 1)
		ON CONFLICT (company_id, doc_type)
		DO UPDATE SET last_value = document_sequences.last_value + 1
		RETURNING last_value`, companyID, docType).Scan(&n)
	if err != nil {
		return 0, mapPostgresError("next sequence "+docType, err)
	}
	return n, nil
}
