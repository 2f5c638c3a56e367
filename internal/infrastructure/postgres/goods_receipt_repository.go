package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/erp-api/internal/domain/entity"
	"github.com/jhoicas/erp-api/internal/domain/repository"
)

var _ repository.GoodsReceiptRepository = (*GoodsReceiptRepo)(nil)

// GoodsReceiptRepo recepciones (GRN) con líneas y cargos.
type GoodsReceiptRepo struct {
	q Querier
}

// NewGoodsReceiptRepository construye el adaptador. Pasar pool o tx (Querier).
func NewGoodsReceiptRepository(q Querier) *GoodsReceiptRepo {
	return &GoodsReceiptRepo{q: q}
}

const grnColumns = `id, company_id, purchase_order_id, warehouse_id, number, supplier_ref, received_at, notes,
	warnings, total_value, total_charges, created_by, created_at`

const grnLineColumns = `id, receipt_id, po_line_id, product_id, received_qty, accepted_qty, rejected_qty, unit_cost,
	allocated_charge, landed_unit_cost, batch_id, batch_number, manufactured_at, expires_at`

func scanGRN(row pgx.Row) (*entity.GoodsReceipt, error) {
	var g entity.GoodsReceipt
	var createdBy *string
	if err := row.Scan(&g.ID, &g.CompanyID, &g.PurchaseOrderID, &g.WarehouseID, &g.Number, &g.SupplierRef,
		&g.ReceivedAt, &g.Notes, &g.Warnings, &g.TotalValue, &g.TotalCharges, &createdBy, &g.CreatedAt); err != nil {
		return nil, err
	}
	g.CreatedBy = deref(createdBy)
	return &g, nil
}

// Create inserta cabecera, líneas y cargos. Debe ejecutarse dentro de una transacción.
func (r *GoodsReceiptRepo) Create(ctx context.Context, g *entity.GoodsReceipt) error {
	warnings := g.Warnings
	if warnings == nil {
		warnings = []string{}
	}
	query := `INSERT INTO goods_receipts (` + grnColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	if _, err := r.q.Exec(ctx, query, g.ID, g.CompanyID, g.PurchaseOrderID, g.WarehouseID, g.Number, g.SupplierRef,
		g.ReceivedAt, g.Notes, warnings, g.TotalValue, g.TotalCharges, nullIfEmpty(g.CreatedBy), g.CreatedAt); err != nil {
		return mapPostgresError("insert goods receipt", err)
	}

	lineQuery := `INSERT INTO goods_receipt_lines (` + grnLineColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	for _, l := range g.Lines {
		if _, err := r.q.Exec(ctx, lineQuery, l.ID, g.ID, l.POLineID, l.ProductID, l.ReceivedQty, l.AcceptedQty,
			l.RejectedQty, l.UnitCost, l.AllocatedCharge, l.LandedUnitCost, l.BatchID, l.BatchNumber,
			l.ManufacturedAt, l.ExpiresAt); err != nil {
			return mapPostgresError("insert goods receipt line", err)
		}
	}

	chargeQuery := `INSERT INTO receipt_charges (id, receipt_id, type, basis, amount, description)
		VALUES ($1, $2, $3, $4, $5, $6)`
	for _, c := range g.Charges {
		if _, err := r.q.Exec(ctx, chargeQuery, c.ID, g.ID, c.Type, c.Basis, c.Amount, c.Description); err != nil {
			return mapPostgresError("insert receipt charge", err)
		}
	}
	return nil
}

// GetByID obtiene la recepción completa.
func (r *GoodsReceiptRepo) GetByID(ctx context.Context, id string) (*entity.GoodsReceipt, error) {
	g, err := scanGRN(r.q.QueryRow(ctx, `SELECT `+grnColumns+` FROM goods_receipts WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get goods receipt: %w", err)
	}
	if err := r.loadDetail(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

// ListByPurchaseOrder recepciones completas de una OC en orden cronológico (para conciliación).
func (r *GoodsReceiptRepo) ListByPurchaseOrder(ctx context.Context, purchaseOrderID string) ([]*entity.GoodsReceipt, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+grnColumns+` FROM goods_receipts WHERE purchase_order_id = $1 ORDER BY received_at, number`,
		purchaseOrderID)
	if err != nil {
		return nil, fmt.Errorf("list receipts by purchase order: %w", err)
	}
	list, err := collectGRNs(rows)
	if err != nil {
		return nil, err
	}
	for _, g := range list {
		if err := r.loadDetail(ctx, g); err != nil {
			return nil, err
		}
	}
	return list, nil
}

// List cabeceras de recepciones de la empresa.
func (r *GoodsReceiptRepo) List(ctx context.Context, companyID string, limit, offset int) ([]*entity.GoodsReceipt, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+grnColumns+` FROM goods_receipts WHERE company_id = $1 ORDER BY received_at DESC LIMIT $2 OFFSET $3`,
		companyID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list goods receipts: %w", err)
	}
	return collectGRNs(rows)
}

func collectGRNs(rows pgx.Rows) ([]*entity.GoodsReceipt, error) {
	defer rows.Close()
	var list []*entity.GoodsReceipt
	for rows.Next() {
		g, err := scanGRN(rows)
		if err != nil {
			return nil, fmt.Errorf("scan goods receipt: %w", err)
		}
		list = append(list, g)
	}
	return list, rows.Err()
}

func (r *GoodsReceiptRepo) loadDetail(ctx context.Context, g *entity.GoodsReceipt) error {
	rows, err := r.q.Query(ctx, `SELECT `+grnLineColumns+` FROM goods_receipt_lines WHERE receipt_id = $1`, g.ID)
	if err != nil {
		return fmt.Errorf("get goods receipt lines: %w", err)
	}
	for rows.Next() {
		var l entity.GoodsReceiptLine
		if err := rows.Scan(&l.ID, &l.ReceiptID, &l.POLineID, &l.ProductID, &l.ReceivedQty, &l.AcceptedQty,
			&l.RejectedQty, &l.UnitCost, &l.AllocatedCharge, &l.LandedUnitCost, &l.BatchID, &l.BatchNumber,
			&l.ManufacturedAt, &l.ExpiresAt); err != nil {
			rows.Close()
			return fmt.Errorf("scan goods receipt line: %w", err)
		}
		g.Lines = append(g.Lines, l)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("goods receipt lines: %w", err)
	}

	rows, err = r.q.Query(ctx,
		`SELECT id, receipt_id, type, basis, amount, description FROM receipt_charges WHERE receipt_id = $1`, g.ID)
	if err != nil {
		return fmt.Errorf("get receipt charges: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var c entity.ReceiptCharge
		if err := rows.Scan(&c.ID, &c.ReceiptID, &c.Type, &c.Basis, &c.Amount, &c.Description); err != nil {
			return fmt.Errorf("scan receipt charge: %w", err)
		}
		g.Charges = append(g.Charges, c)
	}
	return rows.Err()
}
