package repository

import (
	"context"

	"github.com/jhoicas/erp-api/internal/domain/entity"
)

// PurchaseOrderRepository persistencia de órdenes de compra (cabecera + líneas).
type PurchaseOrderRepository interface {
	Create(ctx context.Context, po *entity.PurchaseOrder) error
	GetByID(ctx context.Context, id string) (*entity.PurchaseOrder, error)
	// GetForUpdate bloquea la cabecera para serializar recepciones concurrentes.
	GetForUpdate(ctx context.Context, id string) (*entity.PurchaseOrder, error)
	List(ctx context.Context, companyID, status string, limit, offset int) ([]*entity.PurchaseOrder, error)
	UpdateStatus(ctx context.Context, po *entity.PurchaseOrder) error
	UpdateLineReceipt(ctx context.Context, line *entity.PurchaseOrderLine) error
}

// GoodsReceiptRepository persistencia de recepciones (GRN).
type GoodsReceiptRepository interface {
	Create(ctx context.Context, grn *entity.GoodsReceipt) error
	GetByID(ctx context.Context, id string) (*entity.GoodsReceipt, error)
	ListByPurchaseOrder(ctx context.Context, purchaseOrderID string) ([]*entity.GoodsReceipt, error)
	List(ctx context.Context, companyID string, limit, offset int) ([]*entity.GoodsReceipt, error)
}

// QualityInspectionRepository inspecciones de calidad.
type QualityInspectionRepository interface {
	Create(ctx context.Context, in *entity.QualityInspection) error
	ListByBatch(ctx context.Context, batchID string) ([]*entity.QualityInspection, error)
}
