package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/erp-api/internal/domain/repository"
)

var _ repository.AnalyticsRepository = (*AnalyticsRepo)(nil)

// AnalyticsRepo consultas de solo lectura para rentabilidad.
type AnalyticsRepo struct {
	q Querier
}

// NewAnalyticsRepository construye el adaptador de analítica.
func NewAnalyticsRepository(q Querier) *AnalyticsRepo {
	return &AnalyticsRepo{q: q}
}

// GetSKUMargins margen bruto por SKU usando el costo real de los lotes consumidos
// (invoice_details.cost_total), no el costo promedio actual. Excluye facturas anuladas.
// limit <= 0 devuelve todos los SKUs.
func (r *AnalyticsRepo) GetSKUMargins(
	ctx context.Context,
	companyID string,
	startDate, endDate time.Time,
	limit int,
) ([]repository.SKUMarginResult, error) {
	const query = `
	SELECT
	    p.id,
	    p.sku,
	    p.name,
	    SUM(d.quantity)                   AS units_sold,
	    SUM(d.subtotal)                   AS gross_revenue,
	    SUM(d.cost_total)                 AS total_cogs,
	    SUM(d.subtotal) - SUM(d.cost_total) AS gross_profit
	FROM invoices i
	JOIN invoice_details d ON d.invoice_id = i.id
	JOIN products        p ON p.id         = d.product_id
	WHERE i.company_id = $1
	  AND i.date BETWEEN $2 AND $3
	  AND i.status <> 'VOID'
	GROUP BY p.id, p.sku, p.name
	ORDER BY gross_profit DESC
	LIMIT NULLIF($4, 0)`

	if limit < 0 {
		limit = 0
	}
	rows, err := r.q.Query(ctx, query, companyID, startDate, endDate, limit)
	if err != nil {
		return nil, fmt.Errorf("analytics.GetSKUMargins: %w", err)
	}
	defer rows.Close()

	var results []repository.SKUMarginResult
	for rows.Next() {
		var row repository.SKUMarginResult
		if err := rows.Scan(
			&row.ProductID,
			&row.SKU,
			&row.ProductName,
			&row.UnitsSold,
			&row.GrossRevenue,
			&row.TotalCOGS,
			&row.GrossProfit,
		); err != nil {
			return nil, fmt.Errorf("analytics.GetSKUMargins scan: %w", err)
		}
		results = append(results, row)
	}
	return results, rows.Err()
}
