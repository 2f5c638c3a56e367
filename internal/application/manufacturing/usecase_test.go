package manufacturing

import (
	"context"
	"errors"
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

func setup(t *testing.T) (*memstore.Store, *UseCase) {
	t.Helper()
	s := memstore.New()
	ctx := context.Background()
	require.NoError(t, s.Warehouses().Create(ctx, &entity.Warehouse{ID: "w1", CompanyID: "c1", Code: "PLANTA", Name: "Planta"}))
	require.NoError(t, s.Products().Create(ctx, &entity.Product{ID: "fg", CompanyID: "c1", SKU: "PAN", Name: "Pan tajado"}))
	require.NoError(t, s.Products().Create(ctx, &entity.Product{ID: "m1", CompanyID: "c1", SKU: "HARINA", Name: "Harina", Cost: d("100")}))
	require.NoError(t, s.Products().Create(ctx, &entity.Product{ID: "m2", CompanyID: "c1", SKU: "AGUA", Name: "Agua", Cost: d("20")}))
	require.NoError(t, s.Products().Create(ctx, &entity.Product{ID: "px", CompanyID: "c2", SKU: "AJENO", Name: "Ajeno"}))
	require.NoError(t, s.Batches().Create(ctx, &entity.Batch{ID: "bm1", CompanyID: "c1", ProductID: "m1", WarehouseID: "w1", BatchNumber: "H-1",
		ReceivedAt: fixedNow.AddDate(0, 0, -5), QtyReceived: d("10"), QtyAvailable: d("10"), UnitCost: d("100"), Status: entity.BatchStatusReleased}))
	require.NoError(t, s.Batches().Create(ctx, &entity.Batch{ID: "bm2", CompanyID: "c1", ProductID: "m2", WarehouseID: "w1", BatchNumber: "AG-1",
		ReceivedAt: fixedNow.AddDate(0, 0, -5), QtyReceived: d("20"), QtyAvailable: d("20"), UnitCost: d("20"), Status: entity.BatchStatusReleased}))
	require.NoError(t, s.Stock().Upsert(ctx, &entity.Stock{ProductID: "m1", WarehouseID: "w1", Quantity: d("10")}))
	require.NoError(t, s.Stock().Upsert(ctx, &entity.Stock{ProductID: "m2", WarehouseID: "w1", Quantity: d("20")}))

	uc := NewUseCase(s, s, appinventory.NewEngine(appinventory.DefaultAllocationSettings(), nil))
	uc.now = func() time.Time { return fixedNow }
	return s, uc
}

func createBOM(t *testing.T, uc *UseCase) *dto.BOMResponse {
	t.Helper()
	bom, err := uc.CreateBOM(context.Background(), "c1", "u1", dto.CreateBOMRequest{
		ProductID: "fg", Name: "Pan x10", OutputQty: d("10"),
		Components: []dto.BOMComponentRequest{
			{ProductID: "m1", Quantity: d("2")},
			{ProductID: "m2", Quantity: d("5"), ScrapPct: d("10")},
		},
	})
	require.NoError(t, err)
	return bom
}

func issueCodes(t *testing.T, err error) []string {
	t.Helper()
	var ve *domain.ValidationError
	require.True(t, errors.As(err, &ve), "se esperaba ValidationError: %v", err)
	codes := make([]string, 0, len(ve.Issues))
	for _, is := range ve.Issues {
		codes = append(codes, is.Code)
	}
	return codes
}

func TestCreateBOM_Validaciones(t *testing.T) {
	_, uc := setup(t)
	ctx := context.Background()

	_, err := uc.CreateBOM(ctx, "c1", "u1", dto.CreateBOMRequest{
		ProductID: "fg", Name: "Circular", OutputQty: d("1"),
		Components: []dto.BOMComponentRequest{{ProductID: "fg", Quantity: d("1")}},
	})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, issueCodes(t, err), "CIRCULAR_COMPONENT")

	_, err = uc.CreateBOM(ctx, "c1", "u1", dto.CreateBOMRequest{
		ProductID: "fg", Name: "Ajeno", OutputQty: d("1"),
		Components: []dto.BOMComponentRequest{{ProductID: "px", Quantity: d("1")}},
	})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, []string{"PRODUCT_NOT_FOUND"}, issueCodes(t, err))

	bom := createBOM(t, uc)
	got, err := uc.GetBOM(ctx, "c1", bom.ID)
	require.NoError(t, err)
	require.Len(t, got.Components, 2)
	other, err := uc.GetBOM(ctx, "c2", bom.ID)
	require.NoError(t, err)
	assert.Nil(t, other)
}

func TestWorkOrder_CicloCompleto(t *testing.T) {
	s, uc := setup(t)
	ctx := context.Background()
	bom := createBOM(t, uc)

	wo, err := uc.CreateWorkOrder(ctx, "c1", "u1", dto.CreateWorkOrderRequest{BOMID: bom.ID, WarehouseID: "w1", PlannedQty: d("20")})
	require.NoError(t, err)
	assert.Equal(t, "WO-000001", wo.Number)
	assert.Equal(t, entity.WorkOrderPlanned, wo.Status)

	started, err := uc.Start(ctx, "c1", "u1", wo.ID, dto.StartWorkOrderRequest{Strategy: "fefo"})
	require.NoError(t, err)
	assert.Equal(t, entity.WorkOrderInProgress, started.Status)
	// 4 de harina a 100 y 11 de agua (10% de merma) a 20
	assert.True(t, started.MaterialCost.Equal(d("620")), started.MaterialCost.String())
	require.Len(t, started.Materials, 2)
	assert.True(t, started.Materials[1].Quantity.Equal(d("11")))

	st, _ := s.Stock().Get(ctx, "m1", "w1")
	assert.True(t, st.Quantity.Equal(d("6")))
	st, _ = s.Stock().Get(ctx, "m2", "w1")
	assert.True(t, st.Quantity.Equal(d("9")))

	_, err = uc.Cancel(ctx, "c1", "u1", wo.ID)
	require.ErrorIs(t, err, domain.ErrInvalidState)

	_, err = uc.Complete(ctx, "c1", "u1", wo.ID, dto.CompleteWorkOrderRequest{ProducedQty: d("23")})
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	done, err := uc.Complete(ctx, "c1", "u1", wo.ID, dto.CompleteWorkOrderRequest{
		ProducedQty: d("20"), LaborCost: d("100"), OverheadCost: d("80"), BatchNumber: "PAN-0715",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.WorkOrderCompleted, done.Status)
	assert.True(t, done.UnitCost.Equal(d("40")), done.UnitCost.String())
	require.NotNil(t, done.OutputBatchID)

	b, err := s.Batches().GetByID(ctx, *done.OutputBatchID)
	require.NoError(t, err)
	assert.Equal(t, "PAN-0715", b.BatchNumber)
	assert.Equal(t, entity.BatchStatusReleased, b.Status)
	assert.True(t, b.QtyAvailable.Equal(d("20")))
	assert.Equal(t, wo.ID, b.SourceID)

	fg, _ := s.Products().GetByID(ctx, "fg")
	assert.True(t, fg.Cost.Equal(d("40")))
	st, _ = s.Stock().Get(ctx, "fg", "w1")
	assert.True(t, st.Quantity.Equal(d("20")))

	got, err := uc.GetWorkOrder(ctx, "c1", wo.ID)
	require.NoError(t, err)
	require.Len(t, got.Materials, 2)
	assert.True(t, got.Materials[0].Cost.Equal(d("400")))

	var types []string
	for _, m := range s.AllMovements() {
		types = append(types, m.Type)
	}
	assert.Contains(t, types, entity.MovementProductionIssue)
	assert.Contains(t, types, entity.MovementProductionOutput)
}

func TestWorkOrder_StartSinMaterialesNoConsume(t *testing.T) {
	s, uc := setup(t)
	ctx := context.Background()
	bom := createBOM(t, uc)

	wo, err := uc.CreateWorkOrder(ctx, "c1", "u1", dto.CreateWorkOrderRequest{BOMID: bom.ID, WarehouseID: "w1", PlannedQty: d("60")})
	require.NoError(t, err)

	_, err = uc.Start(ctx, "c1", "u1", wo.ID, dto.StartWorkOrderRequest{})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	st, _ := s.Stock().Get(ctx, "m1", "w1")
	assert.True(t, st.Quantity.Equal(d("10")))
	got, err := uc.GetWorkOrder(ctx, "c1", wo.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.WorkOrderPlanned, got.Status)

	cancelled, err := uc.Cancel(ctx, "c1", "u1", wo.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.WorkOrderCancelled, cancelled.Status)

	list, err := uc.ListWorkOrders(ctx, "c1", entity.WorkOrderCancelled, dto.PageRequest{})
	require.NoError(t, err)
	assert.Len(t, list.Items, 1)
}

func TestWorkOrder_Validaciones(t *testing.T) {
	_, uc := setup(t)
	ctx := context.Background()
	bom := createBOM(t, uc)

	_, err := uc.CreateWorkOrder(ctx, "c1", "u1", dto.CreateWorkOrderRequest{BOMID: "nope", WarehouseID: "w1", PlannedQty: d("0")})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.ElementsMatch(t, []string{"INVALID_QUANTITY", "BOM_NOT_FOUND"}, issueCodes(t, err))

	wo, err := uc.CreateWorkOrder(ctx, "c1", "u1", dto.CreateWorkOrderRequest{BOMID: bom.ID, WarehouseID: "w1", PlannedQty: d("5")})
	require.NoError(t, err)
	_, err = uc.Start(ctx, "c2", "u9", wo.ID, dto.StartWorkOrderRequest{})
	require.ErrorIs(t, err, domain.ErrNotFound)
	_, err = uc.Complete(ctx, "c1", "u1", wo.ID, dto.CompleteWorkOrderRequest{ProducedQty: d("5")})
	require.ErrorIs(t, err, domain.ErrInvalidState)
}
