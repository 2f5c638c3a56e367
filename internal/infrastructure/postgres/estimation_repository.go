package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/erp-api/internal/domain/entity"
	"github.com/jhoicas/erp-api/internal/domain/repository"
)

var _ repository.EstimationRepository = (*EstimationRepo)(nil)

// EstimationRepo cotizaciones con sus líneas.
type EstimationRepo struct {
	q Querier
}

// NewEstimationRepository construye el adaptador.
func NewEstimationRepository(q Querier) *EstimationRepo {
	return &EstimationRepo{q: q}
}

const estimationColumns = `id, company_id, client_id, warehouse_id, number, status, issue_date, valid_until, notes,
	subtotal, discount_total, tax_total, total, invoice_id, created_by, created_at, updated_at`

func scanEstimation(row pgx.Row) (*entity.Estimation, error) {
	var e entity.Estimation
	var createdBy *string
	if err := row.Scan(&e.ID, &e.CompanyID, &e.ClientID, &e.WarehouseID, &e.Number, &e.Status, &e.IssueDate,
		&e.ValidUntil, &e.Notes, &e.Subtotal, &e.DiscountTotal, &e.TaxTotal, &e.Total, &e.InvoiceID,
		&createdBy, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	e.CreatedBy = deref(createdBy)
	return &e, nil
}

// Create inserta cabecera y líneas.
func (r *EstimationRepo) Create(ctx context.Context, e *entity.Estimation) error {
	query := `INSERT INTO estimations (` + estimationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`
	if _, err := r.q.Exec(ctx, query, e.ID, e.CompanyID, e.ClientID, e.WarehouseID, e.Number, e.Status,
		e.IssueDate, e.ValidUntil, e.Notes, e.Subtotal, e.DiscountTotal, e.TaxTotal, e.Total, e.InvoiceID,
		nullIfEmpty(e.CreatedBy), e.CreatedAt, e.UpdatedAt); err != nil {
		return mapPostgresError("insert estimation", err)
	}
	lineQuery := `
		INSERT INTO estimation_lines (id, estimation_id, product_id, quantity, unit_price, discount_pct, tax_rate, line_total)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	for _, l := range e.Lines {
		if _, err := r.q.Exec(ctx, lineQuery, l.ID, e.ID, l.ProductID, l.Quantity, l.UnitPrice,
			l.DiscountPct, l.TaxRate, l.LineTotal); err != nil {
			return mapPostgresError("insert estimation line", err)
		}
	}
	return nil
}

// GetByID obtiene la cotización con sus líneas.
func (r *EstimationRepo) GetByID(ctx context.Context, id string) (*entity.Estimation, error) {
	e, err := scanEstimation(r.q.QueryRow(ctx, `SELECT `+estimationColumns+` FROM estimations WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get estimation: %w", err)
	}
	rows, err := r.q.Query(ctx, `
		SELECT id, estimation_id, product_id, quantity, unit_price, discount_pct, tax_rate, line_total
		FROM estimation_lines WHERE estimation_id = $1 ORDER BY id`, id)
	if err != nil {
		return nil, fmt.Errorf("get estimation lines: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var l entity.EstimationLine
		if err := rows.Scan(&l.ID, &l.EstimationID, &l.ProductID, &l.Quantity, &l.UnitPrice,
			&l.DiscountPct, &l.TaxRate, &l.LineTotal); err != nil {
			return nil, fmt.Errorf("scan estimation line: %w", err)
		}
		e.Lines = append(e.Lines, l)
	}
	return e, rows.Err()
}

// List cabeceras de cotizaciones, filtrando por estado si se indica.
func (r *EstimationRepo) List(ctx context.Context, companyID, status string, limit, offset int) ([]*entity.Estimation, error) {
	rows, err := r.q.Query(ctx, `SELECT `+estimationColumns+` FROM estimations
		WHERE company_id = $1 AND ($2 = '' OR status = $2)
		ORDER BY issue_date DESC, number DESC LIMIT $3 OFFSET $4`, companyID, status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list estimations: %w", err)
	}
	defer rows.Close()
	var list []*entity.Estimation
	for rows.Next() {
		e, err := scanEstimation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan estimation: %w", err)
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

// UpdateStatus persiste estado y factura asociada.
func (r *EstimationRepo) UpdateStatus(ctx context.Context, e *entity.Estimation) error {
	_, err := r.q.Exec(ctx, `UPDATE estimations SET status = $2, invoice_id = $3, updated_at = $4 WHERE id = $1`,
		e.ID, e.Status, e.InvoiceID, e.UpdatedAt)
	return mapPostgresError("update estimation status", err)
}
