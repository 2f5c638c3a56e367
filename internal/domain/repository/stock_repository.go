package repository

import (
	"context"

	"github.com/jhoicas/erp-api/internal/domain/entity"
)

// StockRepository stock agregado por producto y bodega.
// GetForUpdate bloquea la fila (SELECT FOR UPDATE) y devuelve cantidad cero si no existe.
type StockRepository interface {
	Get(ctx context.Context, productID, warehouseID string) (*entity.Stock, error)
	GetForUpdate(ctx context.Context, productID, warehouseID string) (*entity.Stock, error)
	Upsert(ctx context.Context, stock *entity.Stock) error
}
