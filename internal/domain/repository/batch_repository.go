package repository

import (
	"context"
	"time"

	"github.com/jhoicas/erp-api/internal/domain/entity"
)

// BatchFilter filtros de listado de lotes.
type BatchFilter struct {
	CompanyID   string
	ProductID   string
	WarehouseID string
	Status      string
	Limit       int
	Offset      int
}

// BatchRepository persistencia de lotes.
type BatchRepository interface {
	Create(ctx context.Context, batch *entity.Batch) error
	GetByID(ctx context.Context, id string) (*entity.Batch, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Batch, error)
	Update(ctx context.Context, batch *entity.Batch) error
	// ListCandidates lotes con cantidad > 0 del producto en la bodega; lock=true bloquea las filas.
	ListCandidates(ctx context.Context, productID, warehouseID string, lock bool) ([]*entity.Batch, error)
	List(ctx context.Context, f BatchFilter) ([]*entity.Batch, error)
	// Count lotes que cumplen el filtro; ignora Limit y Offset.
	Count(ctx context.Context, f BatchFilter) (int, error)
	// ListExpiring lotes liberados con saldo que vencen en (after, before); after cero no pone piso.
	ListExpiring(ctx context.Context, companyID string, after, before time.Time) ([]*entity.Batch, error)
}
