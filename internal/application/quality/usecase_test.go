package quality

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

var fixedNow = time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func setup(t *testing.T) (*memstore.Store, *InspectionUseCase) {
	t.Helper()
	s := memstore.New()
	ctx := context.Background()
	require.NoError(t, s.Products().Create(ctx, &entity.Product{ID: "p1", CompanyID: "c1", SKU: "YOG", Name: "Yogur", RequiresInspection: true}))
	eng := appinventory.NewEngine(appinventory.DefaultAllocationSettings(), nil)
	p, _ := s.Products().GetByID(ctx, "p1")
	_, err := eng.Receive(ctx, s, appinventory.ReceiveInput{
		CompanyID: "c1", TransactionID: "grn-1", Product: p, WarehouseID: "w1", Quantity: d("10"), UnitCost: d("30"),
		MovementType: entity.MovementReceipt, Now: fixedNow,
		Batch: &entity.Batch{ID: "b1", BatchNumber: "Y-1", Status: entity.BatchStatusQuarantine, SourceType: "GRN"},
	})
	require.NoError(t, err)
	uc := NewInspectionUseCase(s, s, eng)
	uc.now = func() time.Time { return fixedNow.Add(time.Hour) }
	return s, uc
}

func TestInspect_Parcial(t *testing.T) {
	s, uc := setup(t)
	ctx := context.Background()

	res, err := uc.Inspect(ctx, "c1", "qa", dto.InspectionRequest{BatchID: "b1", PassedQty: d("7"), FailedQty: d("3")})
	require.NoError(t, err)
	assert.Equal(t, entity.InspectionPartial, res.Result)
	assert.Equal(t, entity.BatchStatusReleased, res.BatchStatus)

	b, _ := s.Batches().GetByID(ctx, "b1")
	assert.True(t, b.QtyAvailable.Equal(d("7")))
	st, _ := s.Stock().Get(ctx, "p1", "w1")
	assert.True(t, st.Quantity.Equal(d("7")))

	movs, _ := s.Movements().ListByTransaction(ctx, res.ID)
	require.Len(t, movs, 1)
	assert.Equal(t, entity.MovementQualityReject, movs[0].Type)
	assert.True(t, movs[0].Quantity.Equal(d("-3")))

	_, err = uc.Inspect(ctx, "c1", "qa", dto.InspectionRequest{BatchID: "b1", PassedQty: d("7")})
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	list, err := uc.ListByBatch(ctx, "c1", "b1")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestInspect_RechazoTotal(t *testing.T) {
	s, uc := setup(t)
	ctx := context.Background()

	res, err := uc.Inspect(ctx, "c1", "qa", dto.InspectionRequest{BatchID: "b1", FailedQty: d("10")})
	require.NoError(t, err)
	assert.Equal(t, entity.InspectionFailed, res.Result)

	b, _ := s.Batches().GetByID(ctx, "b1")
	assert.Equal(t, entity.BatchStatusRejected, b.Status)
	assert.True(t, b.QtyAvailable.IsZero())
}

func TestInspect_CantidadesNoCuadran(t *testing.T) {
	s, uc := setup(t)

	_, err := uc.Inspect(context.Background(), "c1", "qa", dto.InspectionRequest{BatchID: "b1", PassedQty: d("5"), FailedQty: d("1")})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Empty(t, s.AuditLogs())

	_, err = uc.Inspect(context.Background(), "c2", "qa", dto.InspectionRequest{BatchID: "b1", PassedQty: d("10")})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
