package repository

import (
	"context"
	"time"

	"github.com/jhoicas/erp-api/internal/domain/entity"
)

// AuditFilter filtros de consulta del log de auditoría.
type AuditFilter struct {
	CompanyID  string
	EntityType string
	EntityID   string
	From       *time.Time
	To         *time.Time
	Limit      int
	Offset     int
}

// AuditLogRepository log de auditoría (solo inserción y consulta).
type AuditLogRepository interface {
	Create(ctx context.Context, log *entity.AuditLog) error
	List(ctx context.Context, f AuditFilter) ([]*entity.AuditLog, error)
}

// SequenceRepository consecutivos de documentos por empresa (OC, GRN, factura...).
type SequenceRepository interface {
	Next(ctx context.Context, companyID, docType string) (int64, error)
}
