package repository

import (
	"context"

	"github.com/jhoicas/erp-api/internal/domain/entity"
)

// EstimationRepository cotizaciones.
type EstimationRepository interface {
	Create(ctx context.Context, e *entity.Estimation) error
	GetByID(ctx context.Context, id string) (*entity.Estimation, error)
	List(ctx context.Context, companyID, status string, limit, offset int) ([]*entity.Estimation, error)
	UpdateStatus(ctx context.Context, e *entity.Estimation) error
}

// InvoiceRepository facturas de venta.
type InvoiceRepository interface {
	Create(ctx context.Context, inv *entity.Invoice) error
	CreateDetail(ctx context.Context, d *entity.InvoiceDetail) error
	GetByID(ctx context.Context, id string) (*entity.Invoice, error)
	GetDetails(ctx context.Context, invoiceID string) ([]*entity.InvoiceDetail, error)
	List(ctx context.Context, companyID string, limit, offset int) ([]*entity.Invoice, error)
}
