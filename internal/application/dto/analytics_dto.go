package dto

import "github.com/shopspring/decimal"

// MarginsReportRequest parámetros para GET /api/analytics/margins.
type MarginsReportRequest struct {
	StartDate string `query:"start_date"` // YYYY-MM-DD; por defecto primer día del mes actual
	EndDate   string `query:"end_date"`   // YYYY-MM-DD; por defecto hoy
	TopN      int    `query:"top_n"`      // máx SKUs a devolver (default 20, max 200)
}

// SKURankingDTO margen y rentabilidad por SKU. El costo sale de los lotes realmente consumidos.
type SKURankingDTO struct {
	Rank             int             `json:"rank"`
	ProductID        string          `json:"product_id"`
	SKU              string          `json:"sku"`
	ProductName      string          `json:"product_name"`
	UnitsSold        decimal.Decimal `json:"units_sold"`
	GrossRevenue     decimal.Decimal `json:"gross_revenue"`
	TotalCOGS        decimal.Decimal `json:"total_cogs"`
	GrossProfit      decimal.Decimal `json:"gross_profit"`
	MarginPct        decimal.Decimal `json:"margin_pct"`
	RevenuePct       decimal.Decimal `json:"revenue_pct"`
	CumulativeRevPct decimal.Decimal `json:"cumulative_revenue_pct"`
	IsTopPareto      bool            `json:"is_top_pareto"` // dentro del 80% acumulado de ingresos
}

// PeriodDTO rango de fechas del reporte.
type PeriodDTO struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// MarginsReportDTO respuesta de GET /api/analytics/margins.
type MarginsReportDTO struct {
	Period       PeriodDTO       `json:"period"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	TotalCOGS    decimal.Decimal `json:"total_cogs"`
	TotalProfit  decimal.Decimal `json:"total_profit"`
	MarginPct    decimal.Decimal `json:"margin_pct"`
	SKURanking   []SKURankingDTO `json:"sku_ranking"`
	ParetoSKUs   []SKURankingDTO `json:"pareto_skus"`
}

// TopSKUDTO SKU del widget de dashboard.
type TopSKUDTO struct {
	SKU         string          `json:"sku"`
	ProductName string          `json:"product_name"`
	Revenue     decimal.Decimal `json:"revenue"`
	Margin      decimal.Decimal `json:"margin"`
}

// DashboardSummaryDTO respuesta de GET /api/dashboard/summary.
type DashboardSummaryDTO struct {
	TodaySales         decimal.Decimal `json:"today_sales"`
	TodayMargin        decimal.Decimal `json:"today_margin"`
	MonthlySales       decimal.Decimal `json:"monthly_sales"`
	MonthlyMargin      decimal.Decimal `json:"monthly_margin"`
	TopSKUs            []TopSKUDTO     `json:"top_skus"`
	ExpiringBatches    int             `json:"expiring_batches"` // liberados que vencen en la ventana
	ExpiringValue      decimal.Decimal `json:"expiring_value"`
	QuarantinedBatches int             `json:"quarantined_batches"`
	DateLabel          string          `json:"date_label"`
}
