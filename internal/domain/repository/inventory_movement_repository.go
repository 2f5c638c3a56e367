package repository

import (
	"context"

	"github.com/jhoicas/erp-api/internal/domain/entity"
)

// InventoryMovementRepository kardex de movimientos de inventario.
type InventoryMovementRepository interface {
	Create(ctx context.Context, mov *entity.InventoryMovement) error
	ListByProduct(ctx context.Context, productID string, limit, offset int) ([]*entity.InventoryMovement, error)
	ListByTransaction(ctx context.Context, transactionID string) ([]*entity.InventoryMovement, error)
}
