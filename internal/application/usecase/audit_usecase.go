package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/erp-api/internal/application/dto"
	"github.com/jhoicas/erp-api/internal/domain"
	"github.com/jhoicas/erp-api/internal/domain/repository"
)

// AuditUseCase consulta del log de auditoría.
type AuditUseCase struct {
	repo repository.AuditLogRepository
}

// NewAuditUseCase construye el caso de uso.
func NewAuditUseCase(repo repository.AuditLogRepository) *AuditUseCase {
	return &AuditUseCase{repo: repo}
}

// List entradas de la empresa, de la más reciente a la más antigua.
func (uc *AuditUseCase) List(ctx context.Context, companyID string, q dto.AuditQuery) (*dto.AuditLogListResponse, error) {
	q.DefaultPage()
	f := repository.AuditFilter{
		CompanyID:  companyID,
		EntityType: q.EntityType,
		EntityID:   q.EntityID,
		Limit:      q.Limit,
		Offset:     q.Offset,
	}
	var err error
	if f.From, err = parseInstant(q.From, false); err != nil {
		return nil, err
	}
	if f.To, err = parseInstant(q.To, true); err != nil {
		return nil, err
	}
	logs, err := uc.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	items := make([]dto.AuditLogResponse, 0, len(logs))
	for _, l := range logs {
		items = append(items, dto.AuditLogResponse{
			ID:         l.ID,
			UserID:     l.UserID,
			EntityType: l.EntityType,
			EntityID:   l.EntityID,
			Action:     l.Action,
			Before:     l.Before,
			After:      l.After,
			CreatedAt:  l.CreatedAt,
		})
	}
	return &dto.AuditLogListResponse{Items: items, Page: dto.PageResponse{Limit: q.Limit, Offset: q.Offset}}, nil
}

// parseInstant acepta RFC3339 o YYYY-MM-DD; endOfDay lleva la fecha al último instante del día.
func parseInstant(s string, endOfDay bool) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, fmt.Errorf("%w: fecha %q inválida", domain.ErrInvalidInput, s)
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}
