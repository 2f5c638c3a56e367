package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// SKUMarginResult resultado crudo de la consulta de márgenes por SKU.
type SKUMarginResult struct {
	ProductID    string
	SKU          string
	ProductName  string
	UnitsSold    decimal.Decimal
	GrossRevenue decimal.Decimal
	TotalCOGS    decimal.Decimal // costo real de los lotes vendidos
	GrossProfit  decimal.Decimal // GrossRevenue - TotalCOGS
}

// AnalyticsRepository consultas de solo lectura sobre ventas.
type AnalyticsRepository interface {
	// GetSKUMargins devuelve los SKUs ordenados por rentabilidad bruta descendente; limit <= 0 sin límite.
	GetSKUMargins(ctx context.Context, companyID string, startDate, endDate time.Time, limit int) ([]SKUMarginResult, error)
}
