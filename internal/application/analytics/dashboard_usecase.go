// Package analytics contiene el resumen operativo del dashboard: ventas y margen
// del día y del mes, y alertas de lotes por vencer o en cuarentena.
package analytics

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/jhoicas/erp-api/internal/application/dto"
	"github.com/jhoicas/erp-api/internal/domain/entity"
	"github.com/jhoicas/erp-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

const (
	dashboardTopSKUs      = 5  // número de SKUs en el widget del dashboard
	dashboardExpiringDays = 30 // ventana de lotes por vencer
)

// DashboardUseCase genera el resumen del día y del mes en curso.
//
// Fuentes: AnalyticsRepository (ventas con costo real de lotes) y BatchRepository.
type DashboardUseCase struct {
	analyticsRepo repository.AnalyticsRepository
	batches       repository.BatchRepository
	now           func() time.Time
}

// NewDashboardUseCase construye el caso de uso.
func NewDashboardUseCase(analyticsRepo repository.AnalyticsRepository, batches repository.BatchRepository) *DashboardUseCase {
	return &DashboardUseCase{analyticsRepo: analyticsRepo, batches: batches, now: time.Now}
}

// GetSummary construye el DashboardSummaryDTO para la empresa indicada.
//
// Cuatro consultas en paralelo:
//  1. GetSKUMargins(hoy)  → TodaySales + TodayMargin
//  2. GetSKUMargins(mes)  → MonthlySales + MonthlyMargin + TopSKUs (por ingreso)
//  3. ListExpiring(30d)   → ExpiringBatches + ExpiringValue, sin los ya vencidos
//  4. Count(QUARANTINE)   → QuarantinedBatches
func (uc *DashboardUseCase) GetSummary(ctx context.Context, companyID string) (*dto.DashboardSummaryDTO, error) {
	now := uc.now()

	// Hoy: 00:00:00.000 – 23:59:59.999
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	todayEnd := todayStart.Add(24*time.Hour - time.Nanosecond)
	// Mes en curso: día 1 a las 00:00 – hoy a las 23:59:59
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	type marginsResult struct {
		rows []repository.SKUMarginResult
		err  error
	}
	type batchesResult struct {
		rows []*entity.Batch
		err  error
	}
	type countResult struct {
		n   int
		err error
	}

	todayCh := make(chan marginsResult, 1)
	monthCh := make(chan marginsResult, 1)
	expiringCh := make(chan batchesResult, 1)
	quarantineCh := make(chan countResult, 1)

	go func() {
		rows, err := uc.analyticsRepo.GetSKUMargins(ctx, companyID, todayStart, todayEnd, 0)
		todayCh <- marginsResult{rows, err}
	}()
	go func() {
		rows, err := uc.analyticsRepo.GetSKUMargins(ctx, companyID, monthStart, todayEnd, 0)
		monthCh <- marginsResult{rows, err}
	}()
	go func() {
		rows, err := uc.batches.ListExpiring(ctx, companyID, now, now.AddDate(0, 0, dashboardExpiringDays))
		expiringCh <- batchesResult{rows, err}
	}()
	go func() {
		n, err := uc.batches.Count(ctx, repository.BatchFilter{CompanyID: companyID, Status: entity.BatchStatusQuarantine})
		quarantineCh <- countResult{n, err}
	}()

	today, month, expiring, quarantine := <-todayCh, <-monthCh, <-expiringCh, <-quarantineCh

	if today.err != nil {
		return nil, fmt.Errorf("dashboard: métricas de hoy: %w", today.err)
	}
	if month.err != nil {
		return nil, fmt.Errorf("dashboard: métricas del mes: %w", month.err)
	}
	if expiring.err != nil {
		return nil, fmt.Errorf("dashboard: lotes por vencer: %w", expiring.err)
	}
	if quarantine.err != nil {
		return nil, fmt.Errorf("dashboard: lotes en cuarentena: %w", quarantine.err)
	}

	todaySales, todayCost := totals(today.rows)
	monthSales, monthCost := totals(month.rows)

	top := make([]dto.TopSKUDTO, 0, dashboardTopSKUs)
	for _, r := range topByRevenue(month.rows, dashboardTopSKUs) {
		top = append(top, dto.TopSKUDTO{
			SKU:         r.SKU,
			ProductName: r.ProductName,
			Revenue:     r.GrossRevenue.Round(2),
			Margin:      r.GrossProfit.Round(2),
		})
	}

	expiringValue := decimal.Zero
	for _, b := range expiring.rows {
		expiringValue = expiringValue.Add(b.QtyAvailable.Mul(b.UnitCost))
	}

	return &dto.DashboardSummaryDTO{
		TodaySales:         todaySales.Round(2),
		TodayMargin:        todaySales.Sub(todayCost).Round(2),
		MonthlySales:       monthSales.Round(2),
		MonthlyMargin:      monthSales.Sub(monthCost).Round(2),
		TopSKUs:            top,
		ExpiringBatches:    len(expiring.rows),
		ExpiringValue:      expiringValue.Round(2),
		QuarantinedBatches: quarantine.n,
		DateLabel:          monthLabel(now),
	}, nil
}

func totals(rows []repository.SKUMarginResult) (revenue, cost decimal.Decimal) {
	for _, r := range rows {
		revenue = revenue.Add(r.GrossRevenue)
		cost = cost.Add(r.TotalCOGS)
	}
	return revenue, cost
}

// topByRevenue los n SKUs de mayor ingreso; empate por SKU. No altera rows.
func topByRevenue(rows []repository.SKUMarginResult, n int) []repository.SKUMarginResult {
	sorted := slices.Clone(rows)
	slices.SortStableFunc(sorted, func(a, b repository.SKUMarginResult) int {
		if c := b.GrossRevenue.Cmp(a.GrossRevenue); c != 0 {
			return c
		}
		return strings.Compare(a.SKU, b.SKU)
	})
	return sorted[:min(n, len(sorted))]
}

// monthLabel devuelve una etiqueta legible del mes, ej: "Febrero 2026".
func monthLabel(t time.Time) string {
	months := [...]string{
		"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
		"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
	}
	return fmt.Sprintf("%s %d", months[t.Month()-1], t.Year())
}
