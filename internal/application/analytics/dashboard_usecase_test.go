package analytics

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jhoicas/erp-api/internal/domain/entity"
	"github.com/jhoicas/erp-api/internal/domain/repository"
	"github.com/jhoicas/erp-api/internal/testutil/memstore"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestGetSummary(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 7, 15, 14, 0, 0, 0, time.UTC)
	s := memstore.New()

	for _, p := range []*entity.Product{
		{ID: "p1", CompanyID: "c1", SKU: "LECHE", Name: "Leche"},
		{ID: "p2", CompanyID: "c1", SKU: "QUESO", Name: "Queso"},
	} {
		require.NoError(t, s.Products().Create(ctx, p))
	}
	invoice := func(id string, date time.Time, status string) {
		require.NoError(t, s.Invoices().Create(ctx, &entity.Invoice{ID: id, CompanyID: "c1", Date: date, Status: status}))
	}
	detail := func(id, invoiceID, productID, subtotal, cost string) {
		require.NoError(t, s.Invoices().CreateDetail(ctx, &entity.InvoiceDetail{
			ID: id, InvoiceID: invoiceID, ProductID: productID, Quantity: d("1"), Subtotal: d(subtotal), CostTotal: d(cost),
		}))
	}
	invoice("hoy", now.Add(-time.Hour), entity.InvoiceStatusIssued)
	detail("d1", "hoy", "p1", "100", "60")
	invoice("mes", time.Date(2025, 7, 2, 10, 0, 0, 0, time.UTC), entity.InvoiceStatusIssued)
	detail("d2", "mes", "p2", "500", "200")
	invoice("anulada", now.Add(-2*time.Hour), entity.InvoiceStatusVoid)
	detail("d3", "anulada", "p1", "999", "1")
	invoice("junio", time.Date(2025, 6, 30, 10, 0, 0, 0, time.UTC), entity.InvoiceStatusIssued)
	detail("d4", "junio", "p1", "700", "100")

	soon := now.AddDate(0, 0, 10)
	later := now.AddDate(0, 0, 90)
	expired := now.AddDate(0, 0, -3)
	for _, b := range []*entity.Batch{
		{ID: "b1", CompanyID: "c1", ProductID: "p1", Status: entity.BatchStatusReleased, QtyAvailable: d("4"), UnitCost: d("2.5"), ExpiresAt: &soon},
		{ID: "b2", CompanyID: "c1", ProductID: "p1", Status: entity.BatchStatusReleased, QtyAvailable: d("4"), UnitCost: d("2.5"), ExpiresAt: &later},
		{ID: "b3", CompanyID: "c1", ProductID: "p2", Status: entity.BatchStatusQuarantine, QtyAvailable: d("8"), UnitCost: d("10")},
		{ID: "b4", CompanyID: "c1", ProductID: "p2", Status: entity.BatchStatusReleased, QtyAvailable: d("6"), UnitCost: d("7"), ExpiresAt: &expired},
	} {
		require.NoError(t, s.Batches().Create(ctx, b))
	}

	uc := NewDashboardUseCase(s.Analytics(), s.Batches())
	uc.now = func() time.Time { return now }

	out, err := uc.GetSummary(ctx, "c1")
	require.NoError(t, err)
	assert.True(t, out.TodaySales.Equal(d("100")))
	assert.True(t, out.TodayMargin.Equal(d("40")))
	assert.True(t, out.MonthlySales.Equal(d("600")))
	assert.True(t, out.MonthlyMargin.Equal(d("340")))
	require.Len(t, out.TopSKUs, 2)
	assert.Equal(t, "QUESO", out.TopSKUs[0].SKU)
	assert.Equal(t, 1, out.ExpiringBatches)
	assert.True(t, out.ExpiringValue.Equal(d("10")))
	assert.Equal(t, 1, out.QuarantinedBatches)
	assert.Equal(t, "Julio 2025", out.DateLabel)
}

func TestGetSummary_TopPorIngreso(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 7, 15, 14, 0, 0, 0, time.UTC)
	s := memstore.New()
	require.NoError(t, s.Products().Create(ctx, &entity.Product{ID: "pa", CompanyID: "c1", SKU: "ALTO_INGRESO", Name: "A"}))
	require.NoError(t, s.Products().Create(ctx, &entity.Product{ID: "pb", CompanyID: "c1", SKU: "ALTO_MARGEN", Name: "B"}))
	require.NoError(t, s.Invoices().Create(ctx, &entity.Invoice{ID: "f1", CompanyID: "c1", Date: now.Add(-time.Hour), Status: entity.InvoiceStatusIssued}))
	require.NoError(t, s.Invoices().CreateDetail(ctx, &entity.InvoiceDetail{
		ID: "d1", InvoiceID: "f1", ProductID: "pa", Quantity: d("1"), Subtotal: d("1000"), CostTotal: d("990"),
	}))
	require.NoError(t, s.Invoices().CreateDetail(ctx, &entity.InvoiceDetail{
		ID: "d2", InvoiceID: "f1", ProductID: "pb", Quantity: d("1"), Subtotal: d("500"), CostTotal: d("100"),
	}))
	for i := range 3 {
		require.NoError(t, s.Batches().Create(ctx, &entity.Batch{
			ID: fmt.Sprintf("q%d", i), CompanyID: "c1", ProductID: "pa", Status: entity.BatchStatusQuarantine, QtyAvailable: d("1"),
		}))
	}

	uc := NewDashboardUseCase(s.Analytics(), s.Batches())
	uc.now = func() time.Time { return now }
	out, err := uc.GetSummary(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, out.TopSKUs, 2)
	assert.Equal(t, "ALTO_INGRESO", out.TopSKUs[0].SKU)
	assert.True(t, out.TopSKUs[0].Revenue.Equal(d("1000")))
	assert.Equal(t, "ALTO_MARGEN", out.TopSKUs[1].SKU)
	assert.Equal(t, 3, out.QuarantinedBatches)
}

func TestTopByRevenue_LimitaYNoAlteraOrigen(t *testing.T) {
	rows := []repository.SKUMarginResult{
		{SKU: "C", GrossRevenue: d("10"), GrossProfit: d("9")},
		{SKU: "B", GrossRevenue: d("30")},
		{SKU: "A", GrossRevenue: d("30")},
	}
	got := topByRevenue(rows, 2)
	require.Len(t, got, 2)
	assert.Equal(t, "A", got[0].SKU)
	assert.Equal(t, "B", got[1].SKU)
	assert.Equal(t, "C", rows[0].SKU)
	assert.Len(t, topByRevenue(rows, 5), 3)
}

func TestGetSummary_SinDatos(t *testing.T) {
	s := memstore.New()
	out, err := NewDashboardUseCase(s.Analytics(), s.Batches()).GetSummary(context.Background(), "c1")
	require.NoError(t, err)
	assert.True(t, out.MonthlySales.IsZero())
	assert.Empty(t, out.TopSKUs)
	assert.Zero(t, out.ExpiringBatches)
}
