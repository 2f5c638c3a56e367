package repository

import (
	"context"

	"github.com/jhoicas/erp-api/internal/domain/entity"
)

// BOMRepository listas de materiales.
type BOMRepository interface {
	Create(ctx context.Context, bom *entity.BOM) error
	GetByID(ctx context.Context, id string) (*entity.BOM, error)
	ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.BOM, error)
}

// WorkOrderRepository órdenes de producción.
type WorkOrderRepository interface {
	Create(ctx context.Context, wo *entity.WorkOrder) error
	GetByID(ctx context.Context, id string) (*entity.WorkOrder, error)
	GetForUpdate(ctx context.Context, id string) (*entity.WorkOrder, error)
	Update(ctx context.Context, wo *entity.WorkOrder) error
	List(ctx context.Context, companyID, status string, limit, offset int) ([]*entity.WorkOrder, error)
}
