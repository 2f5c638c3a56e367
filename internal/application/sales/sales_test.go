package sales

import (
	"context"
	"testing"
	"time"

	"github.com/jhoicas/erp-api/internal/application/dto"
	appinventory "github.com/jhoicas/erp-api/internal/application/inventory"
	"github.com/jhoicas/erp-api/internal/domain"
	"github.com/jhoicas/erp-api/internal/domain/entity"
	"github.com/jhoicas/erp-api/internal/testutil/memstore"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 7, 15, 10, 0, 0, 0, time.UTC)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func ptr[T any](v T) *T { return &v }

func setup(t *testing.T) (*memstore.Store, *InvoiceUseCase, *EstimationUseCase) {
	t.Helper()
	s := memstore.New()
	ctx := context.Background()
	require.NoError(t, s.Clients().Create(ctx, &entity.Client{ID: "cl1", CompanyID: "c1", Name: "Tienda Uno", TaxID: "123"}))
	require.NoError(t, s.Warehouses().Create(ctx, &entity.Warehouse{ID: "w1", CompanyID: "c1", Code: "PPAL", Name: "Principal"}))
	require.NoError(t, s.Products().Create(ctx, &entity.Product{ID: "p1", CompanyID: "c1", SKU: "ARROZ", Name: "Arroz", Price: d("1000"), TaxRate: d("19")}))
	require.NoError(t, s.Batches().Create(ctx, &entity.Batch{ID: "b1", CompanyID: "c1", ProductID: "p1", WarehouseID: "w1", BatchNumber: "A-1",
		ExpiresAt: ptr(fixedNow.AddDate(0, 0, 10)), ReceivedAt: fixedNow.AddDate(0, 0, -3), QtyReceived: d("5"), QtyAvailable: d("5"),
		UnitCost: d("400"), Status: entity.BatchStatusReleased}))
	require.NoError(t, s.Batches().Create(ctx, &entity.Batch{ID: "b2", CompanyID: "c1", ProductID: "p1", WarehouseID: "w1", BatchNumber: "A-2",
		ExpiresAt: ptr(fixedNow.AddDate(0, 0, 60)), ReceivedAt: fixedNow.AddDate(0, 0, -30), QtyReceived: d("10"), QtyAvailable: d("10"),
		UnitCost: d("500"), Status: entity.BatchStatusReleased}))
	require.NoError(t, s.Stock().Upsert(ctx, &entity.Stock{ProductID: "p1", WarehouseID: "w1", Quantity: d("15")}))

	eng := appinventory.NewEngine(appinventory.DefaultAllocationSettings(), nil)
	inv := NewInvoiceUseCase(s, s, eng, nil)
	inv.now = func() time.Time { return fixedNow }
	est := NewEstimationUseCase(s, s, inv)
	est.now = func() time.Time { return fixedNow }
	return s, inv, est
}

func TestInvoice_CreateFEFOConCostoYMargen(t *testing.T) {
	s, uc, _ := setup(t)
	ctx := context.Background()

	inv, err := uc.Create(ctx, "c1", "u1", dto.CreateInvoiceRequest{
		ClientID: "cl1", WarehouseID: "w1", Strategy: "fefo",
		Lines: []dto.SalesLineRequest{{ProductID: "p1", Quantity: d("8"), DiscountPct: d("10")}},
	})
	require.NoError(t, err)
	assert.Equal(t, "INV-000001", inv.Number)
	assert.True(t, inv.NetTotal.Equal(d("7200")))
	assert.True(t, inv.TaxTotal.Equal(d("1368")))
	assert.True(t, inv.GrandTotal.Equal(d("8568")))
	assert.True(t, inv.CostTotal.Equal(d("3500")))
	assert.True(t, inv.GrossMargin.Equal(d("3700")))
	require.Len(t, inv.Lines, 1)
	require.Len(t, inv.Lines[0].Allocations, 2)
	assert.Equal(t, "A-1", inv.Lines[0].Allocations[0].BatchNumber)

	st, _ := s.Stock().Get(ctx, "p1", "w1")
	assert.True(t, st.Quantity.Equal(d("7")))

	got, err := uc.GetByID(ctx, "c1", inv.ID)
	require.NoError(t, err)
	require.Len(t, got.Lines[0].Allocations, 2)
	assert.Equal(t, "b1", got.Lines[0].Allocations[0].BatchID)
	assert.True(t, got.Lines[0].Allocations[0].Quantity.Equal(d("5")))
	assert.True(t, got.Lines[0].Allocations[1].Quantity.Equal(d("3")))
	assert.True(t, got.Lines[0].Allocations[1].TotalCost.Equal(d("1500")))

	other, err := uc.GetByID(ctx, "c2", inv.ID)
	require.NoError(t, err)
	assert.Nil(t, other)
}

func TestInvoice_SinStockNoRegistraNada(t *testing.T) {
	s, uc, _ := setup(t)
	ctx := context.Background()

	_, err := uc.Create(ctx, "c1", "u1", dto.CreateInvoiceRequest{
		ClientID: "cl1", WarehouseID: "w1",
		Lines: []dto.SalesLineRequest{{ProductID: "p1", Quantity: d("16")}},
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	list, err := uc.List(ctx, "c1", dto.PageRequest{})
	require.NoError(t, err)
	assert.Empty(t, list.Items)
	assert.Empty(t, s.AllMovements())
	b1, _ := s.Batches().GetByID(ctx, "b1")
	assert.True(t, b1.QtyAvailable.Equal(d("5")))
}

func TestInvoice_SpecifiedExigeLotes(t *testing.T) {
	_, uc, _ := setup(t)
	ctx := context.Background()

	_, err := uc.Create(ctx, "c1", "u1", dto.CreateInvoiceRequest{
		ClientID: "cl1", WarehouseID: "w1", Strategy: "SPECIFIED",
		Lines: []dto.SalesLineRequest{{ProductID: "p1", Quantity: d("2")}},
	})
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	inv, err := uc.Create(ctx, "c1", "u1", dto.CreateInvoiceRequest{
		ClientID: "cl1", WarehouseID: "w1", Strategy: "SPECIFIED",
		Lines: []dto.SalesLineRequest{{ProductID: "p1", Quantity: d("2"),
			Batches: []dto.SpecifiedBatchRequest{{BatchID: "b2", Quantity: d("2")}}}},
	})
	require.NoError(t, err)
	assert.True(t, inv.CostTotal.Equal(d("1000")))
}

func TestInvoice_ClienteBorrado(t *testing.T) {
	s, uc, _ := setup(t)
	ctx := context.Background()
	require.NoError(t, s.Clients().SoftDelete(ctx, "cl1"))

	_, err := uc.Create(ctx, "c1", "u1", dto.CreateInvoiceRequest{
		ClientID: "cl1", WarehouseID: "w1",
		Lines: []dto.SalesLineRequest{{ProductID: "p1", Quantity: d("1")}},
	})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "CLIENT_NOT_FOUND", verr.Issues[0].Code)
}

func TestEstimation_CicloYConversion(t *testing.T) {
	s, _, uc := setup(t)
	ctx := context.Background()

	est, err := uc.Create(ctx, "c1", "u1", dto.CreateEstimationRequest{
		ClientID: "cl1", WarehouseID: "w1",
		Lines: []dto.SalesLineRequest{{ProductID: "p1", Quantity: d("3"), UnitPrice: ptr(d("900"))}},
	})
	require.NoError(t, err)
	assert.Equal(t, "EST-000001", est.Number)
	assert.True(t, est.Total.Equal(d("3213")))
	assert.Equal(t, fixedNow.AddDate(0, 0, DefaultValidityDays), est.ValidUntil)

	_, err = uc.Convert(ctx, "c1", "u1", est.ID, dto.ConvertEstimationRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	_, err = uc.ChangeStatus(ctx, "c1", "u1", est.ID, "sent")
	require.NoError(t, err)
	_, err = uc.ChangeStatus(ctx, "c1", "u1", est.ID, entity.EstimationStatusAccepted)
	require.NoError(t, err)

	inv, err := uc.Convert(ctx, "c1", "u1", est.ID, dto.ConvertEstimationRequest{Strategy: "FEFO"})
	require.NoError(t, err)
	require.NotNil(t, inv.EstimationID)
	assert.Equal(t, est.ID, *inv.EstimationID)
	assert.True(t, inv.NetTotal.Equal(d("2700")))

	got, err := uc.GetByID(ctx, "c1", est.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.EstimationStatusInvoiced, got.Status)
	require.NotNil(t, got.InvoiceID)
	assert.Equal(t, inv.ID, *got.InvoiceID)

	_, err = uc.Convert(ctx, "c1", "u1", est.ID, dto.ConvertEstimationRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	st, _ := s.Stock().Get(ctx, "p1", "w1")
	assert.True(t, st.Quantity.Equal(d("12")))
}

func TestEstimation_VencidaNoSeAcepta(t *testing.T) {
	_, _, uc := setup(t)
	ctx := context.Background()

	est, err := uc.Create(ctx, "c1", "u1", dto.CreateEstimationRequest{
		ClientID: "cl1", WarehouseID: "w1", ValidUntil: ptr(fixedNow.AddDate(0, 0, 2)),
		Lines: []dto.SalesLineRequest{{ProductID: "p1", Quantity: d("1")}},
	})
	require.NoError(t, err)
	_, err = uc.ChangeStatus(ctx, "c1", "u1", est.ID, entity.EstimationStatusSent)
	require.NoError(t, err)

	uc.now = func() time.Time { return fixedNow.AddDate(0, 0, 3) }
	_, err = uc.ChangeStatus(ctx, "c1", "u1", est.ID, entity.EstimationStatusAccepted)
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	got, err := uc.GetByID(ctx, "c1", est.ID)
	require.NoError(t, err)
	assert.True(t, got.Expired)

	rejected, err := uc.ChangeStatus(ctx, "c1", "u1", est.ID, entity.EstimationStatusRejected)
	require.NoError(t, err)
	assert.False(t, rejected.Expired)
}
