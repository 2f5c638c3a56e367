package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/erp-api/internal/domain"
	"github.com/jhoicas/erp-api/internal/domain/entity"
	"github.com/jhoicas/erp-api/internal/domain/repository"
)

var (
	_ repository.ClientRepository   = (*ClientRepo)(nil)
	_ repository.SupplierRepository = (*SupplierRepo)(nil)
)

// searchClause filtro por nombre o NIT (ILIKE) para listados de terceros.
func searchClause(search string, next int) (string, []any) {
	if search == "" {
		return "", nil
	}
	return fmt.Sprintf(" AND (name ILIKE $%d OR tax_id ILIKE $%d)", next, next), []any{"%" + search + "%"}
}

// ─────────────────────────────────────────────────────────────────────────────
// Clientes
// ─────────────────────────────────────────────────────────────────────────────

// ClientRepo clientes con borrado lógico (deleted_at).
type ClientRepo struct {
	q Querier
}

// NewClientRepository construye el adaptador de clientes.
func NewClientRepository(q Querier) *ClientRepo {
	return &ClientRepo{q: q}
}

const clientColumns = `id, company_id, name, tax_id, email, phone, address, created_at, updated_at, deleted_at`

func scanClient(row pgx.Row) (*entity.Client, error) {
	var c entity.Client
	if err := row.Scan(&c.ID, &c.CompanyID, &c.Name, &c.TaxID, &c.Email, &c.Phone, &c.Address,
		&c.CreatedAt, &c.UpdatedAt, &c.DeletedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// Create persiste un cliente. NIT repetido entre clientes activos -> ErrDuplicate.
func (r *ClientRepo) Create(ctx context.Context, c *entity.Client) error {
	query := `INSERT INTO clients (` + clientColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NULL)`
	_, err := r.q.Exec(ctx, query, c.ID, c.CompanyID, c.Name, c.TaxID, c.Email, c.Phone, c.Address, c.CreatedAt, c.UpdatedAt)
	return mapPostgresError("insert client", err)
}

// GetByID obtiene un cliente activo.
func (r *ClientRepo) GetByID(ctx context.Context, id string) (*entity.Client, error) {
	c, err := scanClient(r.q.QueryRow(ctx,
		`SELECT `+clientColumns+` FROM clients WHERE id = $1 AND deleted_at IS NULL`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get client: %w", err)
	}
	return c, nil
}

// GetByTaxID obtiene un cliente activo por NIT.
func (r *ClientRepo) GetByTaxID(ctx context.Context, companyID, taxID string) (*entity.Client, error) {
	c, err := scanClient(r.q.QueryRow(ctx,
		`SELECT `+clientColumns+` FROM clients WHERE company_id = $1 AND tax_id = $2 AND deleted_at IS NULL`, companyID, taxID))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get client by tax id: %w", err)
	}
	return c, nil
}

// List clientes activos con total para paginación.
func (r *ClientRepo) List(ctx context.Context, companyID, search string, limit, offset int) ([]*entity.Client, int, error) {
	where, extra := searchClause(search, 2)
	args := append([]any{companyID}, extra...)

	var total int
	if err := r.q.QueryRow(ctx,
		`SELECT COUNT(*) FROM clients WHERE company_id = $1 AND deleted_at IS NULL`+where, args...,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count clients: %w", err)
	}

	n := len(args)
	query := fmt.Sprintf(`SELECT %s FROM clients WHERE company_id = $1 AND deleted_at IS NULL%s
		ORDER BY name LIMIT $%d OFFSET $%d`, clientColumns, where, n+1, n+2)
	rows, err := r.q.Query(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()
	var list []*entity.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan client: %w", err)
		}
		list = append(list, c)
	}
	return list, total, rows.Err()
}

// Update actualiza un cliente activo.
func (r *ClientRepo) Update(ctx context.Context, c *entity.Client) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE clients SET name = $2, tax_id = $3, email = $4, phone = $5, address = $6, updated_at = $7
		WHERE id = $1 AND deleted_at IS NULL`,
		c.ID, c.Name, c.TaxID, c.Email, c.Phone, c.Address, c.UpdatedAt)
	if err != nil {
		return mapPostgresError("update client", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SoftDelete marca deleted_at; un segundo borrado devuelve ErrNotFound.
func (r *ClientRepo) SoftDelete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE clients SET deleted_at = $2, updated_at = $2 WHERE id = $1 AND deleted_at IS NULL`,
		id, time.Now().UTC())
	if err != nil {
		return mapPostgresError("delete client", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Proveedores
// ─────────────────────────────────────────────────────────────────────────────

// SupplierRepo proveedores con borrado lógico (deleted_at).
type SupplierRepo struct {
	q Querier
}

// NewSupplierRepository construye el adaptador de proveedores.
func NewSupplierRepository(q Querier) *SupplierRepo {
	return &SupplierRepo{q: q}
}

const supplierColumns = `id, company_id, name, tax_id, email, phone, address, payment_terms_days, lead_time_days,
	created_at, updated_at, deleted_at`

func scanSupplier(row pgx.Row) (*entity.Supplier, error) {
	var s entity.Supplier
	if err := row.Scan(&s.ID, &s.CompanyID, &s.Name, &s.TaxID, &s.Email, &s.Phone, &s.Address,
		&s.PaymentTermsDays, &s.LeadTimeDays, &s.CreatedAt, &s.UpdatedAt, &s.DeletedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

// Create persiste un proveedor.
func (r *SupplierRepo) Create(ctx context.Context, s *entity.Supplier) error {
	query := `INSERT INTO suppliers (` + supplierColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NULL)`
	_, err := r.q.Exec(ctx, query, s.ID, s.CompanyID, s.Name, s.TaxID, s.Email, s.Phone, s.Address,
		s.PaymentTermsDays, s.LeadTimeDays, s.CreatedAt, s.UpdatedAt)
	return mapPostgresError("insert supplier", err)
}

// GetByID obtiene un proveedor activo.
func (r *SupplierRepo) GetByID(ctx context.Context, id string) (*entity.Supplier, error) {
	s, err := scanSupplier(r.q.QueryRow(ctx,
		`SELECT `+supplierColumns+` FROM suppliers WHERE id = $1 AND deleted_at IS NULL`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get supplier: %w", err)
	}
	return s, nil
}

// GetByTaxID obtiene un proveedor activo por NIT.
func (r *SupplierRepo) GetByTaxID(ctx context.Context, companyID, taxID string) (*entity.Supplier, error) {
	s, err := scanSupplier(r.q.QueryRow(ctx,
		`SELECT `+supplierColumns+` FROM suppliers WHERE company_id = $1 AND tax_id = $2 AND deleted_at IS NULL`, companyID, taxID))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get supplier by tax id: %w", err)
	}
	return s, nil
}

// List proveedores activos con total para paginación.
func (r *SupplierRepo) List(ctx context.Context, companyID, search string, limit, offset int) ([]*entity.Supplier, int, error) {
	where, extra := searchClause(search, 2)
	args := append([]any{companyID}, extra...)

	var total int
	if err := r.q.QueryRow(ctx,
		`SELECT COUNT(*) FROM suppliers WHERE company_id = $1 AND deleted_at IS NULL`+where, args...,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count suppliers: %w", err)
	}

	n := len(args)
	query := fmt.Sprintf(`SELECT %s FROM suppliers WHERE company_id = $1 AND deleted_at IS NULL%s
		ORDER BY name LIMIT $%d OFFSET $%d`, supplierColumns, where, n+1, n+2)
	rows, err := r.q.Query(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list suppliers: %w", err)
	}
	defer rows.Close()
	var list []*entity.Supplier
	for rows.Next() {
		s, err := scanSupplier(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan supplier: %w", err)
		}
		list = append(list, s)
	}
	return list, total, rows.Err()
}

// Update actualiza un proveedor activo.
func (r *SupplierRepo) Update(ctx context.Context, s *entity.Supplier) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE suppliers SET name = $2, tax_id = $3, email = $4, phone = $5, address = $6,
			payment_terms_days = $7, lead_time_days = $8, updated_at = $9
		WHERE id = $1 AND deleted_at IS NULL`,
		s.ID, s.Name, s.TaxID, s.Email, s.Phone, s.Address, s.PaymentTermsDays, s.LeadTimeDays, s.UpdatedAt)
	if err != nil {
		return mapPostgresError("update supplier", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SoftDelete marca deleted_at.
func (r *SupplierRepo) SoftDelete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE suppliers SET deleted_at = $2, updated_at = $2 WHERE id = $1 AND deleted_at IS NULL`,
		id, time.Now().UTC())
	if err != nil {
		return mapPostgresError("delete supplier", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
