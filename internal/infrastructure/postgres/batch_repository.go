package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/erp-api/internal/domain/entity"
	"github.com/jhoicas/erp-api/internal/domain/repository"
)

var _ repository.BatchRepository = (*BatchRepo)(nil)

// BatchRepo lotes por producto y bodega.
type BatchRepo struct {
	q Querier
}

// NewBatchRepository construye el adaptador de lotes. Pasar pool o tx (Querier).
func NewBatchRepository(q Querier) *BatchRepo {
	return &BatchRepo{q: q}
}

const batchColumns = `id, company_id, product_id, warehouse_id, batch_number, manufactured_at, expires_at, received_at,
	qty_received, qty_available, unit_cost, status, source_type, source_id, created_at, updated_at`

func scanBatch(row pgx.Row) (*entity.Batch, error) {
	var b entity.Batch
	if err := row.Scan(&b.ID, &b.CompanyID, &b.ProductID, &b.WarehouseID, &b.BatchNumber,
		&b.ManufacturedAt, &b.ExpiresAt, &b.ReceivedAt, &b.QtyReceived, &b.QtyAvailable, &b.UnitCost,
		&b.Status, &b.SourceType, &b.SourceID, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	return &b, nil
}

func collectBatches(rows pgx.Rows) ([]*entity.Batch, error) {
	defer rows.Close()
	var list []*entity.Batch
	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return nil, fmt.Errorf("scan batch: %w", err)
		}
		list = append(list, b)
	}
	return list, rows.Err()
}

// Create persiste un lote.
func (r *BatchRepo) Create(ctx context.Context, b *entity.Batch) error {
	query := `INSERT INTO batches (` + batchColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	_, err := r.q.Exec(ctx, query, b.ID, b.CompanyID, b.ProductID, b.WarehouseID, b.BatchNumber,
		b.ManufacturedAt, b.ExpiresAt, b.ReceivedAt, b.QtyReceived, b.QtyAvailable, b.UnitCost,
		b.Status, b.SourceType, b.SourceID, b.CreatedAt, b.UpdatedAt)
	return mapPostgresError("insert batch", err)
}

// GetByID obtiene un lote.
func (r *BatchRepo) GetByID(ctx context.Context, id string) (*entity.Batch, error) {
	return r.getOne(ctx, id, "")
}

// GetForUpdate obtiene y bloquea el lote.
func (r *BatchRepo) GetForUpdate(ctx context.Context, id string) (*entity.Batch, error) {
	return r.getOne(ctx, id, " FOR UPDATE")
}

func (r *BatchRepo) getOne(ctx context.Context, id, lock string) (*entity.Batch, error) {
	b, err := scanBatch(r.q.QueryRow(ctx, `SELECT `+batchColumns+` FROM batches WHERE id = $1`+lock, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get batch: %w", err)
	}
	return b, nil
}

// Update actualiza cantidad disponible, estado y costo.
func (r *BatchRepo) Update(ctx context.Context, b *entity.Batch) error {
	_, err := r.q.Exec(ctx, `
		UPDATE batches SET qty_available = $2, status = $3, unit_cost = $4, expires_at = $5, updated_at = $6
		WHERE id = $1`,
		b.ID, b.QtyAvailable, b.Status, b.UnitCost, b.ExpiresAt, b.UpdatedAt)
	return mapPostgresError("update batch", err)
}

// ListCandidates lotes con disponible > 0, en orden estable (vencimiento, recepción, id).
// lock=true bloquea las filas para la asignación dentro de la transacción.
func (r *BatchRepo) ListCandidates(ctx context.Context, productID, warehouseID string, lock bool) ([]*entity.Batch, error) {
	query := `SELECT ` + batchColumns + ` FROM batches
		WHERE product_id = $1 AND warehouse_id = $2 AND qty_available > 0
		ORDER BY expires_at NULLS LAST, received_at, id`
	if lock {
		query += ` FOR UPDATE`
	}
	rows, err := r.q.Query(ctx, query, productID, warehouseID)
	if err != nil {
		return nil, fmt.Errorf("list batch candidates: %w", err)
	}
	return collectBatches(rows)
}

// batchWhere condiciones del filtro con sus argumentos posicionales.
func batchWhere(f repository.BatchFilter) (string, []any) {
	conds := []string{"company_id = $1"}
	args := []any{f.CompanyID}
	add := func(col, val string) {
		if val == "" {
			return
		}
		args = append(args, val)
		conds = append(conds, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	add("product_id", f.ProductID)
	add("warehouse_id", f.WarehouseID)
	add("status", f.Status)
	return strings.Join(conds, " AND "), args
}

// List lotes filtrados.
func (r *BatchRepo) List(ctx context.Context, f repository.BatchFilter) ([]*entity.Batch, error) {
	where, args := batchWhere(f)
	args = append(args, f.Limit, f.Offset)
	query := fmt.Sprintf(`SELECT %s FROM batches WHERE %s ORDER BY received_at DESC, id LIMIT $%d OFFSET $%d`,
		batchColumns, where, len(args)-1, len(args))
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	return collectBatches(rows)
}

func (r *BatchRepo) Count(ctx context.Context, f repository.BatchFilter) (int, error) {
	where, args := batchWhere(f)
	var n int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM batches WHERE `+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count batches: %w", err)
	}
	return n, nil
}

// ListExpiring lotes liberados con existencia que vencen en (after, before).
func (r *BatchRepo) ListExpiring(ctx context.Context, companyID string, after, before time.Time) ([]*entity.Batch, error) {
	query := `SELECT ` + batchColumns + ` FROM batches
		WHERE company_id = $1 AND status = 'RELEASED' AND qty_available > 0
		  AND expires_at IS NOT NULL AND expires_at < $2`
	args := []any{companyID, before}
	if !after.IsZero() {
		query += ` AND expires_at > $3`
		args = append(args, after)
	}
	rows, err := r.q.Query(ctx, query+` ORDER BY expires_at, id`, args...)
	if err != nil {
		return nil, fmt.Errorf("list expiring batches: %w", err)
	}
	return collectBatches(rows)
}
