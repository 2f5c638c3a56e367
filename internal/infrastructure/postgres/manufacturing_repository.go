package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/erp-api/internal/domain/entity"
	"github.com/jhoicas/erp-api/internal/domain/repository"
)

var (
	_ repository.BOMRepository       = (*BOMRepo)(nil)
	_ repository.WorkOrderRepository = (*WorkOrderRepo)(nil)
)

// BOMRepo listas de materiales con componentes.
type BOMRepo struct {
	q Querier
}

// NewBOMRepository construye el adaptador.
func NewBOMRepository(q Querier) *BOMRepo {
	return &BOMRepo{q: q}
}

// Create inserta cabecera y componentes.
func (r *BOMRepo) Create(ctx context.Context, b *entity.BOM) error {
	if _, err := r.q.Exec(ctx, `
		INSERT INTO boms (id, company_id, product_id, name, output_qty, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		b.ID, b.CompanyID, b.ProductID, b.Name, b.OutputQty, b.CreatedAt, b.UpdatedAt); err != nil {
		return mapPostgresError("insert bom", err)
	}
	for _, c := range b.Components {
		if _, err := r.q.Exec(ctx, `
			INSERT INTO bom_components (id, bom_id, product_id, quantity, scrap_pct)
			VALUES ($1, $2, $3, $4, $5)`,
			c.ID, b.ID, c.ProductID, c.Quantity, c.ScrapPct); err != nil {
			return mapPostgresError("insert bom component", err)
		}
	}
	return nil
}

// GetByID obtiene la BOM con sus componentes.
func (r *BOMRepo) GetByID(ctx context.Context, id string) (*entity.BOM, error) {
	var b entity.BOM
	err := r.q.QueryRow(ctx, `
		SELECT id, company_id, product_id, name, output_qty, created_at, updated_at
		FROM boms WHERE id = $1`, id).Scan(
		&b.ID, &b.CompanyID, &b.ProductID, &b.Name, &b.OutputQty, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get bom: %w", err)
	}
	rows, err := r.q.Query(ctx, `
		SELECT id, bom_id, product_id, quantity, scrap_pct
		FROM bom_components WHERE bom_id = $1 ORDER BY id`, id)
	if err != nil {
		return nil, fmt.Errorf("get bom components: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var c entity.BOMComponent
		if err := rows.Scan(&c.ID, &c.BOMID, &c.ProductID, &c.Quantity, &c.ScrapPct); err != nil {
			return nil, fmt.Errorf("scan bom component: %w", err)
		}
		b.Components = append(b.Components, c)
	}
	return &b, rows.Err()
}

// ListByCompany cabeceras de BOM.
func (r *BOMRepo) ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.BOM, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, company_id, product_id, name, output_qty, created_at, updated_at
		FROM boms WHERE company_id = $1 ORDER BY name LIMIT $2 OFFSET $3`, companyID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list boms: %w", err)
	}
	defer rows.Close()
	var list []*entity.BOM
	for rows.Next() {
		var b entity.BOM
		if err := rows.Scan(&b.ID, &b.CompanyID, &b.ProductID, &b.Name, &b.OutputQty, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan bom: %w", err)
		}
		list = append(list, &b)
	}
	return list, rows.Err()
}

// WorkOrderRepo órdenes de producción.
type WorkOrderRepo struct {
	q Querier
}

// NewWorkOrderRepository construye el adaptador.
func NewWorkOrderRepository(q Querier) *WorkOrderRepo {
	return &WorkOrderRepo{q: q}
}

const workOrderColumns = `id, company_id, bom_id, product_id, warehouse_id, number, status, planned_qty, produced_qty,
	material_cost, labor_cost, overhead_cost, unit_cost, output_batch_id, planned_start, started_at, completed_at,
	created_by, created_at, updated_at`

func scanWorkOrder(row pgx.Row) (*entity.WorkOrder, error) {
	var w entity.WorkOrder
	var createdBy *string
	if err := row.Scan(&w.ID, &w.CompanyID, &w.BOMID, &w.ProductID, &w.WarehouseID, &w.Number, &w.Status,
		&w.PlannedQty, &w.ProducedQty, &w.MaterialCost, &w.LaborCost, &w.OverheadCost, &w.UnitCost,
		&w.OutputBatchID, &w.PlannedStart, &w.StartedAt, &w.CompletedAt, &createdBy, &w.CreatedAt, &w.UpdatedAt); err != nil {
		return nil, err
	}
	w.CreatedBy = deref(createdBy)
	return &w, nil
}

// Create persiste una orden de producción.
func (r *WorkOrderRepo) Create(ctx context.Context, w *entity.WorkOrder) error {
	query := `INSERT INTO work_orders (` + workOrderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`
	_, err := r.q.Exec(ctx, query, w.ID, w.CompanyID, w.BOMID, w.ProductID, w.WarehouseID, w.Number, w.Status,
		w.PlannedQty, w.ProducedQty, w.MaterialCost, w.LaborCost, w.OverheadCost, w.UnitCost,
		w.OutputBatchID, w.PlannedStart, w.StartedAt, w.CompletedAt, nullIfEmpty(w.CreatedBy), w.CreatedAt, w.UpdatedAt)
	return mapPostgresError("insert work order", err)
}

// GetByID obtiene una orden.
func (r *WorkOrderRepo) GetByID(ctx context.Context, id string) (*entity.WorkOrder, error) {
	return r.getOne(ctx, id, "")
}

// GetForUpdate obtiene y bloquea la orden.
func (r *WorkOrderRepo) GetForUpdate(ctx context.Context, id string) (*entity.WorkOrder, error) {
	return r.getOne(ctx, id, " FOR UPDATE")
}

func (r *WorkOrderRepo) getOne(ctx context.Context, id, lock string) (*entity.WorkOrder, error) {
	w, err := scanWorkOrder(r.q.QueryRow(ctx, `SELECT `+workOrderColumns+` FROM work_orders WHERE id = $1`+lock, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get work order: %w", err)
	}
	return w, nil
}

// Update persiste estado, cantidades y costos.
func (r *WorkOrderRepo) Update(ctx context.Context, w *entity.WorkOrder) error {
	_, err := r.q.Exec(ctx, `
		UPDATE work_orders SET status = $2, produced_qty = $3, material_cost = $4, labor_cost = $5,
			overhead_cost = $6, unit_cost = $7, output_batch_id = $8, started_at = $9, completed_at = $10,
			updated_at = $11
		WHERE id = $1`,
		w.ID, w.Status, w.ProducedQty, w.MaterialCost, w.LaborCost, w.OverheadCost, w.UnitCost,
		w.OutputBatchID, w.StartedAt, w.CompletedAt, w.UpdatedAt)
	return mapPostgresError("update work order", err)
}

// List órdenes de la empresa, filtrando por estado si se indica.
func (r *WorkOrderRepo) List(ctx context.Context, companyID, status string, limit, offset int) ([]*entity.WorkOrder, error) {
	rows, err := r.q.Query(ctx, `SELECT `+workOrderColumns+` FROM work_orders
		WHERE company_id = $1 AND ($2 = '' OR status = $2)
		ORDER BY created_at DESC LIMIT $3 OFFSET $4`, companyID, status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list work orders: %w", err)
	}
	defer rows.Close()
	var list []*entity.WorkOrder
	for rows.Next() {
		w, err := scanWorkOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan work order: %w", err)
		}
		list = append(list, w)
	}
	return list, rows.Err()
}
