package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/erp-api/internal/application/dto"
	"github.com/jhoicas/erp-api/internal/domain"
	"github.com/jhoicas/erp-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

const (
	defaultTopN     = 20
	maxTopN         = 200
	paretoThreshold = 80 // el top de SKUs que acumula el 80% de ingresos
)

var (
	hundred  = decimal.NewFromInt(100)
	pareto80 = decimal.NewFromInt(paretoThreshold)
)

// AnalyticsUseCase márgenes por SKU con el costo real de los lotes vendidos e identificación Pareto.
type AnalyticsUseCase struct {
	analyticsRepo repository.AnalyticsRepository
	now           func() time.Time
}

// NewAnalyticsUseCase construye el caso de uso.
func NewAnalyticsUseCase(analyticsRepo repository.AnalyticsRepository) *AnalyticsUseCase {
	return &AnalyticsUseCase{analyticsRepo: analyticsRepo, now: time.Now}
}

// GetMarginsReport genera el reporte de márgenes para un período.
func (uc *AnalyticsUseCase) GetMarginsReport(ctx context.Context, companyID string, req dto.MarginsReportRequest) (*dto.MarginsReportDTO, error) {
	startDate, endDate, err := parsePeriod(uc.now(), req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}
	topN := req.TopN
	if topN <= 0 {
		topN = defaultTopN
	}
	if topN > maxTopN {
		topN = maxTopN
	}

	rows, err := uc.analyticsRepo.GetSKUMargins(ctx, companyID, startDate, endDate, topN)
	if err != nil {
		return nil, fmt.Errorf("analytics: SKUs: %w", err)
	}
	ranking := buildSKURanking(rows)

	report := &dto.MarginsReportDTO{
		Period: dto.PeriodDTO{
			StartDate: startDate.Format("2006-01-02"),
			EndDate:   endDate.Format("2006-01-02"),
		},
		SKURanking: ranking,
		ParetoSKUs: []dto.SKURankingDTO{},
	}
	for _, r := range rows {
		report.TotalRevenue = report.TotalRevenue.Add(r.GrossRevenue)
		report.TotalCOGS = report.TotalCOGS.Add(r.TotalCOGS)
	}
	report.TotalProfit = report.TotalRevenue.Sub(report.TotalCOGS)
	if report.TotalRevenue.IsPositive() {
		report.MarginPct = report.TotalProfit.Div(report.TotalRevenue).Mul(hundred).Round(2)
	}
	report.TotalRevenue = report.TotalRevenue.Round(2)
	report.TotalCOGS = report.TotalCOGS.Round(2)
	report.TotalProfit = report.TotalProfit.Round(2)
	for _, sku := range ranking {
		if sku.IsTopPareto {
			report.ParetoSKUs = append(report.ParetoSKUs, sku)
		}
	}
	return report, nil
}

// buildSKURanking agrega posición, márgenes, participación y acumulado Pareto.
// IsTopPareto incluye al SKU que cruza el umbral del 80%.
func buildSKURanking(rows []repository.SKUMarginResult) []dto.SKURankingDTO {
	if len(rows) == 0 {
		return []dto.SKURankingDTO{}
	}
	var totalRevenue decimal.Decimal
	for _, r := range rows {
		totalRevenue = totalRevenue.Add(r.GrossRevenue)
	}

	ranking := make([]dto.SKURankingDTO, 0, len(rows))
	var cumulative decimal.Decimal
	for i, r := range rows {
		marginPct := decimal.Zero
		if r.GrossRevenue.IsPositive() {
			marginPct = r.GrossProfit.Div(r.GrossRevenue).Mul(hundred).Round(2)
		}
		revenuePct := decimal.Zero
		if totalRevenue.IsPositive() {
			revenuePct = r.GrossRevenue.Div(totalRevenue).Mul(hundred).Round(2)
		}
		prev := cumulative
		cumulative = cumulative.Add(revenuePct)

		ranking = append(ranking, dto.SKURankingDTO{
			Rank:             i + 1,
			ProductID:        r.ProductID,
			SKU:              r.SKU,
			ProductName:      r.ProductName,
			UnitsSold:        r.UnitsSold,
			GrossRevenue:     r.GrossRevenue.Round(2),
			TotalCOGS:        r.TotalCOGS.Round(2),
			GrossProfit:      r.GrossProfit.Round(2),
			MarginPct:        marginPct,
			RevenuePct:       revenuePct,
			CumulativeRevPct: cumulative.Round(2),
			IsTopPareto:      prev.LessThan(pareto80),
		})
	}
	return ranking
}

// parsePeriod convierte las fechas YYYY-MM-DD; por defecto desde el primer día del mes hasta hoy.
func parsePeriod(now time.Time, startStr, endStr string) (start, end time.Time, err error) {
	if endStr == "" {
		end = now
	} else {
		end, err = time.ParseInLocation("2006-01-02", endStr, now.Location())
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: end_date inválido", domain.ErrInvalidInput)
		}
		end = end.Add(24*time.Hour - time.Nanosecond)
	}

	if startStr == "" {
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	} else {
		start, err = time.ParseInLocation("2006-01-02", startStr, now.Location())
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: start_date inválido", domain.ErrInvalidInput)
		}
	}

	if start.After(end) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: start_date no puede ser posterior a end_date", domain.ErrInvalidInput)
	}
	return start, end, nil
}
