package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/erp-api/internal/domain/entity"
	"github.com/jhoicas/erp-api/internal/domain/repository"
)

var _ repository.PurchaseOrderRepository = (*PurchaseOrderRepo)(nil)

// PurchaseOrderRepo órdenes de compra con sus líneas.
type PurchaseOrderRepo struct {
	q Querier
}

// NewPurchaseOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPurchaseOrderRepository(q Querier) *PurchaseOrderRepo {
	return &PurchaseOrderRepo{q: q}
}

const poColumns = `id, company_id, supplier_id, warehouse_id, number, status, order_date, expected_date, notes,
	subtotal, tax_total, total, created_by, created_at, updated_at`

const poLineColumns = `id, purchase_order_id, line_no, product_id, quantity, unit_cost, tax_rate,
	received_qty, accepted_qty, rejected_qty`

func scanPO(row pgx.Row) (*entity.PurchaseOrder, error) {
	var po entity.PurchaseOrder
	var createdBy *string
	if err := row.Scan(&po.ID, &po.CompanyID, &po.SupplierID, &po.WarehouseID, &po.Number, &po.Status,
		&po.OrderDate, &po.ExpectedDate, &po.Notes, &po.Subtotal, &po.TaxTotal, &po.Total,
		&createdBy, &po.CreatedAt, &po.UpdatedAt); err != nil {
		return nil, err
	}
	po.CreatedBy = deref(createdBy)
	return &po, nil
}

// Create inserta cabecera y líneas. Debe ejecutarse dentro de una transacción.
func (r *PurchaseOrderRepo) Create(ctx context.Context, po *entity.PurchaseOrder) error {
	query := `INSERT INTO purchase_orders (` + poColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	if _, err := r.q.Exec(ctx, query, po.ID, po.CompanyID, po.SupplierID, po.WarehouseID, po.Number, po.Status,
		po.OrderDate, po.ExpectedDate, po.Notes, po.Subtotal, po.TaxTotal, po.Total,
		nullIfEmpty(po.CreatedBy), po.CreatedAt, po.UpdatedAt); err != nil {
		return mapPostgresError("insert purchase order", err)
	}
	lineQuery := `INSERT INTO purchase_order_lines (` + poLineColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	for _, l := range po.Lines {
		if _, err := r.q.Exec(ctx, lineQuery, l.ID, po.ID, l.LineNo, l.ProductID, l.Quantity, l.UnitCost, l.TaxRate,
			l.ReceivedQty, l.AcceptedQty, l.RejectedQty); err != nil {
			return mapPostgresError(fmt.Sprintf("insert purchase order line %d", l.LineNo), err)
		}
	}
	return nil
}

// GetByID obtiene la OC con sus líneas.
func (r *PurchaseOrderRepo) GetByID(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	return r.get(ctx, id, "")
}

// GetForUpdate bloquea cabecera y líneas: las recepciones concurrentes sobre la misma OC se serializan.
func (r *PurchaseOrderRepo) GetForUpdate(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	return r.get(ctx, id, " FOR UPDATE")
}

func (r *PurchaseOrderRepo) get(ctx context.Context, id, lock string) (*entity.PurchaseOrder, error) {
	po, err := scanPO(r.q.QueryRow(ctx, `SELECT `+poColumns+` FROM purchase_orders WHERE id = $1`+lock, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get purchase order: %w", err)
	}
	rows, err := r.q.Query(ctx,
		`SELECT `+poLineColumns+` FROM purchase_order_lines WHERE purchase_order_id = $1 ORDER BY line_no`+lock, id)
	if err != nil {
		return nil, fmt.Errorf("get purchase order lines: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var l entity.PurchaseOrderLine
		if err := rows.Scan(&l.ID, &l.PurchaseOrderID, &l.LineNo, &l.ProductID, &l.Quantity, &l.UnitCost, &l.TaxRate,
			&l.ReceivedQty, &l.AcceptedQty, &l.RejectedQty); err != nil {
			return nil, fmt.Errorf("scan purchase order line: %w", err)
		}
		po.Lines = append(po.Lines, l)
	}
	return po, rows.Err()
}

// List cabeceras de OC (sin líneas), filtrando por estado si se indica.
func (r *PurchaseOrderRepo) List(ctx context.Context, companyID, status string, limit, offset int) ([]*entity.PurchaseOrder, error) {
	query := `SELECT ` + poColumns + ` FROM purchase_orders
		WHERE company_id = $1 AND ($2 = '' OR status = $2)
		ORDER BY order_date DESC, number DESC LIMIT $3 OFFSET $4`
	rows, err := r.q.Query(ctx, query, companyID, status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list purchase orders: %w", err)
	}
	defer rows.Close()
	var list []*entity.PurchaseOrder
	for rows.Next() {
		po, err := scanPO(rows)
		if err != nil {
			return nil, fmt.Errorf("scan purchase order: %w", err)
		}
		list = append(list, po)
	}
	return list, rows.Err()
}

// UpdateStatus persiste el estado de la cabecera.
func (r *PurchaseOrderRepo) UpdateStatus(ctx context.Context, po *entity.PurchaseOrder) error {
	_, err := r.q.Exec(ctx, `UPDATE purchase_orders SET status = $2, updated_at = $3 WHERE id = $1`,
		po.ID, po.Status, po.UpdatedAt)
	return mapPostgresError("update purchase order status", err)
}

// UpdateLineReceipt persiste los acumulados recibidos de una línea.
func (r *PurchaseOrderRepo) UpdateLineReceipt(ctx context.Context, l *entity.PurchaseOrderLine) error {
	_, err := r.q.Exec(ctx, `
		UPDATE purchase_order_lines SET received_qty = $2, accepted_qty = $3, rejected_qty = $4
		WHERE id = $1`,
		l.ID, l.ReceivedQty, l.AcceptedQty, l.RejectedQty)
	return mapPostgresError("update purchase order line", err)
}
