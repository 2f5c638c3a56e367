package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/erp-api/internal/domain/entity"
	"github.com/jhoicas/erp-api/internal/domain/repository"
)

var _ repository.InventoryLevelRepository = (*InventoryLevelRepo)(nil)

// InventoryLevelRepo lecturas de stock consolidado sobre PostgreSQL.
type InventoryLevelRepo struct {
	q Querier
}

// NewInventoryLevelRepository construye el adaptador. Acepta pool o tx (Querier).
func NewInventoryLevelRepository(q Querier) *InventoryLevelRepo {
	return &InventoryLevelRepo{q: q}
}

// openPOStatuses estados cuyas líneas pendientes cuentan como "pedido".
var openPOStatuses = []string{entity.POStatusConfirmed, entity.POStatusPartiallyReceived}

// ListByWarehouse stock de la bodega con el saldo en cuarentena de sus lotes.
func (r *InventoryLevelRepo) ListByWarehouse(ctx context.Context, companyID, warehouseID string, limit, offset int) ([]*entity.InventoryLevel, error) {
	const q = `
		SELECT p.company_id, s.warehouse_id, s.product_id, p.sku, p.name, s.quantity,
		       COALESCE(qb.qty, 0), p.cost, s.updated_at
		FROM stock s
		JOIN products p ON p.id = s.product_id
		LEFT JOIN LATERAL (
			SELECT SUM(b.qty_available) AS qty
			FROM batches b
			WHERE b.product_id = s.product_id AND b.warehouse_id = s.warehouse_id AND b.status = $5
		) qb ON true
		WHERE p.company_id = $1 AND s.warehouse_id = $2
		ORDER BY p.sku LIMIT $3 OFFSET $4`
	rows, err := r.q.Query(ctx, q, companyID, warehouseID, limit, offset, entity.BatchStatusQuarantine)
	if err != nil {
		return nil, fmt.Errorf("list inventory levels: %w", err)
	}
	defer rows.Close()
	var list []*entity.InventoryLevel
	for rows.Next() {
		var l entity.InventoryLevel
		if err := rows.Scan(&l.CompanyID, &l.WarehouseID, &l.ProductID, &l.SKU, &l.ProductName,
			&l.Quantity, &l.QuarantineQty, &l.UnitCost, &l.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan inventory level: %w", err)
		}
		list = append(list, &l)
	}
	return list, rows.Err()
}

// BelowReorderPoint compara stock + pendiente de OCs abiertas contra el punto de reorden.
// Con warehouseID vacío suma todas las bodegas y todas las OCs de la empresa.
func (r *InventoryLevelRepo) BelowReorderPoint(ctx context.Context, companyID, warehouseID string) ([]repository.ReplenishmentItem, error) {
	const q = `
		WITH on_hand AS (
			SELECT s.product_id, SUM(s.quantity) AS qty
			FROM stock s
			WHERE $2::text = '' OR s.warehouse_id::text = $2::text
			GROUP BY s.product_id
		), on_order AS (
			SELECT l.product_id, SUM(GREATEST(l.quantity - l.accepted_qty, 0)) AS qty
			FROM purchase_order_lines l
			JOIN purchase_orders po ON po.id = l.purchase_order_id
			WHERE po.company_id = $1 AND po.status = ANY($3)
			  AND ($2::text = '' OR po.warehouse_id::text = $2::text)
			GROUP BY l.product_id
		)
		SELECT p.id, p.sku, p.name, COALESCE(h.qty, 0), COALESCE(o.qty, 0), p.reorder_point, p.cost, p.price
		FROM products p
		LEFT JOIN on_hand h ON h.product_id = p.id
		LEFT JOIN on_order o ON o.product_id = p.id
		WHERE p.company_id = $1
		  AND p.reorder_point > 0
		  AND COALESCE(h.qty, 0) + COALESCE(o.qty, 0) < p.reorder_point
		ORDER BY p.reorder_point - COALESCE(h.qty, 0) - COALESCE(o.qty, 0) DESC, p.sku`
	rows, err := r.q.Query(ctx, q, companyID, warehouseID, openPOStatuses)
	if err != nil {
		return nil, fmt.Errorf("below reorder point: %w", err)
	}
	defer rows.Close()

	var items []repository.ReplenishmentItem
	for rows.Next() {
		var it repository.ReplenishmentItem
		if err := rows.Scan(&it.ProductID, &it.SKU, &it.ProductName, &it.CurrentStock, &it.OnOrder,
			&it.ReorderPoint, &it.UnitCost, &it.Price); err != nil {
			return nil, fmt.Errorf("scan replenishment item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
