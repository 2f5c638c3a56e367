package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/erp-api/internal/domain"
	"github.com/jhoicas/erp-api/internal/domain/repository"
)

var _ repository.DumpRepository = (*DumpRepo)(nil)

// dumpTable tabla volcable y su filtro por empresa ($1 = company_id).
type dumpTable struct {
	name  string
	scope string
}

// dumpTables orden de inserción compatible con las FKs del esquema.
var dumpTables = []dumpTable{
	{"companies", "id = $1"},
	{"company_modules", "company_id = $1"},
	{"users", "company_id = $1"},
	{"document_sequences", "company_id = $1"},
	{"warehouses", "company_id = $1"},
	{"products", "company_id = $1"},
	{"stock", "product_id IN (SELECT id FROM products WHERE company_id = $1)"},
	{"clients", "company_id = $1"},
	{"suppliers", "company_id = $1"},
	{"batches", "company_id = $1"},
	{"inventory_movements", "company_id = $1"},
	{"purchase_orders", "company_id = $1"},
	{"purchase_order_lines", "purchase_order_id IN (SELECT id FROM purchase_orders WHERE company_id = $1)"},
	{"goods_receipts", "company_id = $1"},
	{"goods_receipt_lines", "receipt_id IN (SELECT id FROM goods_receipts WHERE company_id = $1)"},
	{"receipt_charges", "receipt_id IN (SELECT id FROM goods_receipts WHERE company_id = $1)"},
	{"quality_inspections", "company_id = $1"},
	{"estimations", "company_id = $1"},
	{"estimation_lines", "estimation_id IN (SELECT id FROM estimations WHERE company_id = $1)"},
	{"invoices", "company_id = $1"},
	{"invoice_details", "invoice_id IN (SELECT id FROM invoices WHERE company_id = $1)"},
	{"boms", "company_id = $1"},
	{"bom_components", "bom_id IN (SELECT id FROM boms WHERE company_id = $1)"},
	{"work_orders", "company_id = $1"},
	{"audit_logs", "company_id = $1"},
}

// DumpRepo exporta e importa filas como JSON usando row_to_json / json_populate_record.
type DumpRepo struct {
	q Querier
}

// NewDumpRepository construye el adaptador de volcado. Para importar, pasar una tx.
func NewDumpRepository(q Querier) *DumpRepo {
	return &DumpRepo{q: q}
}

// Tables nombres de tablas en orden de inserción.
func (r *DumpRepo) Tables() []string {
	out := make([]string, len(dumpTables))
	for i, t := range dumpTables {
		out[i] = t.name
	}
	return out
}

func lookupDumpTable(name string) (dumpTable, error) {
	for _, t := range dumpTables {
		if t.name == name {
			return t, nil
		}
	}
	return dumpTable{}, fmt.Errorf("%w: tabla %q no permitida en el volcado", domain.ErrInvalidInput, name)
}

// ExportTable entrega cada fila de la empresa como JSON. Devuelve cuántas filas exportó.
func (r *DumpRepo) ExportTable(ctx context.Context, table, companyID string, fn func(row []byte) error) (int, error) {
	t, err := lookupDumpTable(table)
	if err != nil {
		return 0, err
	}
	// t.name viene del allowlist; no es entrada del usuario.
	query := fmt.Sprintf(`SELECT row_to_json(t) FROM %s t WHERE %s`, t.name, t.scope)
	rows, err := r.q.Query(ctx, query, companyID)
	if err != nil {
		return 0, fmt.Errorf("export %s: %w", t.name, err)
	}
	defer rows.Close()
	n := 0
	for rows.Next() {
		var row []byte
		if err := rows.Scan(&row); err != nil {
			return n, fmt.Errorf("scan %s: %w", t.name, err)
		}
		if err := fn(row); err != nil {
			return n, err
		}
		n++
	}
	return n, rows.Err()
}

// ImportRow inserta la fila con json_populate_record; las filas existentes se conservan.
func (r *DumpRepo) ImportRow(ctx context.Context, table string, row []byte) (bool, error) {
	t, err := lookupDumpTable(table)
	if err != nil {
		return false, err
	}
	query := fmt.Sprintf(`INSERT INTO %[1]s SELECT * FROM json_populate_record(NULL::%[1]s, $1::json) ON CONFLICT DO NOTHING`, t.name)
	tag, err := r.q.Exec(ctx, query, string(row))
	if err != nil {
		return false, mapPostgresError("import "+t.name, err)
	}
	return tag.RowsAffected() == 1, nil
}
