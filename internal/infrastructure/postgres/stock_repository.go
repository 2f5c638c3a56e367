package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/erp-api/internal/domain/entity"
	"github.com/jhoicas/erp-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.StockRepository = (*StockRepo)(nil)

const selectStock = `
	SELECT product_id, warehouse_id, quantity, updated_at
	FROM stock
	WHERE product_id = $1 AND warehouse_id = $2`

// StockRepo saldo consolidado por producto y bodega. Sin fila el saldo es cero.
type StockRepo struct {
	q Querier
}

func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

func (r *StockRepo) Get(ctx context.Context, productID, warehouseID string) (*entity.Stock, error) {
	return r.scan(ctx, selectStock, productID, warehouseID)
}

// GetForUpdate bloquea la fila hasta el fin de la transacción; serializa entradas y salidas
// concurrentes del mismo producto en la bodega.
func (r *StockRepo) GetForUpdate(ctx context.Context, productID, warehouseID string) (*entity.Stock, error) {
	return r.scan(ctx, selectStock+" FOR UPDATE", productID, warehouseID)
}

func (r *StockRepo) scan(ctx context.Context, query, productID, warehouseID string) (*entity.Stock, error) {
	s := entity.Stock{ProductID: productID, WarehouseID: warehouseID, Quantity: decimal.Zero}
	err := r.q.QueryRow(ctx, query, productID, warehouseID).Scan(&s.ProductID, &s.WarehouseID, &s.Quantity, &s.UpdatedAt)
	switch {
	case isNoRows(err):
		return &s, nil
	case err != nil:
		return nil, fmt.Errorf("stock %s/%s: %w", productID, warehouseID, err)
	}
	return &s, nil
}

// Upsert guarda el saldo con la marca de tiempo del movimiento que lo produjo.
func (r *StockRepo) Upsert(ctx context.Context, stock *entity.Stock) error {
	at := stock.UpdatedAt
	if at.IsZero() {
		at = time.Now()
	}
	_, err := r.q.Exec(ctx, `
		INSERT INTO stock (product_id, warehouse_id, quantity, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (product_id, warehouse_id)
		DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = EXCLUDED.updated_at`,
		stock.ProductID, stock.WarehouseID, stock.Quantity, at)
	return mapPostgresError("upsert stock", err)
}
