package inventory

import (
	"context"
	"testing"
	"time"

	"github.com/jhoicas/erp-api/internal/application/dto"
	"github.com/jhoicas/erp-api/internal/domain"
	"github.com/jhoicas/erp-api/internal/domain/entity"
	"github.com/jhoicas/erp-api/internal/domain/inventory"
	"github.com/jhoicas/erp-api/internal/domain/repository"
	"github.com/jhoicas/erp-api/internal/testutil/memstore"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func ptr[T any](v T) *T { return &v }

type recorder struct {
	allocations []string
	shortages   int
}

func (r *recorder) ReceiptPosted(string) {}

func (r *recorder) AllocationDone(strategy string, shortage bool) {
	r.allocations = append(r.allocations, strategy)
	if shortage {
		r.shortages++
	}
}

func seed(t *testing.T, s *memstore.Store) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, s.Products().Create(ctx, &entity.Product{ID: "p1", CompanyID: "c1", SKU: "LECHE", Name: "Leche", Price: d("4000"), ShelfLifeDays: 30}))
	require.NoError(t, s.Warehouses().Create(ctx, &entity.Warehouse{ID: "w1", CompanyID: "c1", Code: "PPAL", Name: "Principal"}))
	require.NoError(t, s.Warehouses().Create(ctx, &entity.Warehouse{ID: "w2", CompanyID: "c1", Code: "SUR", Name: "Sur"}))
	require.NoError(t, s.Warehouses().Create(ctx, &entity.Warehouse{ID: "wx", CompanyID: "c2", Code: "X", Name: "Ajena"}))
}

func newMovementUC(s *memstore.Store) *RegisterMovementUseCase {
	uc := NewRegisterMovementUseCase(s, s, NewEngine(DefaultAllocationSettings(), nil))
	uc.now = func() time.Time { return fixedNow }
	return uc
}

func stockOf(t *testing.T, s *memstore.Store, product, warehouse string) decimal.Decimal {
	t.Helper()
	st, err := s.Stock().Get(context.Background(), product, warehouse)
	require.NoError(t, err)
	return st.Quantity
}

func TestRegisterMovement_EntradaCreaLoteYPromedia(t *testing.T) {
	s := memstore.New()
	seed(t, s)
	uc := newMovementUC(s)
	ctx := context.Background()

	_, err := uc.RegisterMovement(ctx, MovementInputDTO{CompanyID: "c1", UserID: "u1", ProductID: "p1", WarehouseID: "w1",
		Type: entity.MovementIn, Quantity: d("10"), UnitCost: ptr(d("100"))})
	require.NoError(t, err)
	txID, err := uc.RegisterMovement(ctx, MovementInputDTO{CompanyID: "c1", UserID: "u1", ProductID: "p1", WarehouseID: "w1",
		Type: entity.MovementIn, Quantity: d("10"), UnitCost: ptr(d("200"))})
	require.NoError(t, err)
	assert.NotEmpty(t, txID)

	p, _ := s.Products().GetByID(ctx, "p1")
	assert.True(t, p.Cost.Equal(d("150")), p.Cost.String())
	assert.True(t, stockOf(t, s, "p1", "w1").Equal(d("20")))

	batches, err := s.Batches().List(ctx, repository.BatchFilter{CompanyID: "c1", ProductID: "p1"})
	require.NoError(t, err)
	require.Len(t, batches, 2)
	for _, b := range batches {
		assert.Equal(t, entity.BatchStatusReleased, b.Status)
		require.NotNil(t, b.ExpiresAt)
		assert.Equal(t, fixedNow.AddDate(0, 0, 30), *b.ExpiresAt)
	}
	assert.Len(t, s.AuditLogs(), 2)
}

func TestRegisterMovement_SalidaSinStock(t *testing.T) {
	s := memstore.New()
	seed(t, s)
	uc := newMovementUC(s)
	ctx := context.Background()

	_, err := uc.RegisterMovement(ctx, MovementInputDTO{CompanyID: "c1", ProductID: "p1", WarehouseID: "w1",
		Type: entity.MovementIn, Quantity: d("5"), UnitCost: ptr(d("100"))})
	require.NoError(t, err)

	_, err = uc.RegisterMovement(ctx, MovementInputDTO{CompanyID: "c1", ProductID: "p1", WarehouseID: "w1",
		Type: entity.MovementOut, Quantity: d("6")})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.True(t, stockOf(t, s, "p1", "w1").Equal(d("5")))
	assert.Equal(t, 1, s.Rollbacks)
}

func TestRegisterMovement_AjusteNegativoConsumeFEFO(t *testing.T) {
	s := memstore.New()
	seed(t, s)
	uc := newMovementUC(s)
	ctx := context.Background()

	// el segundo lote vence antes
	require.NoError(t, s.Batches().Create(ctx, &entity.Batch{ID: "b1", CompanyID: "c1", ProductID: "p1", WarehouseID: "w1", BatchNumber: "L1",
		ExpiresAt: ptr(fixedNow.AddDate(0, 0, 40)), ReceivedAt: fixedNow.AddDate(0, 0, -5), QtyReceived: d("5"), QtyAvailable: d("5"),
		UnitCost: d("100"), Status: entity.BatchStatusReleased}))
	require.NoError(t, s.Batches().Create(ctx, &entity.Batch{ID: "b2", CompanyID: "c1", ProductID: "p1", WarehouseID: "w1", BatchNumber: "L2",
		ExpiresAt: ptr(fixedNow.AddDate(0, 0, 10)), ReceivedAt: fixedNow.AddDate(0, 0, -1), QtyReceived: d("5"), QtyAvailable: d("5"),
		UnitCost: d("120"), Status: entity.BatchStatusReleased}))
	require.NoError(t, s.Stock().Upsert(ctx, &entity.Stock{ProductID: "p1", WarehouseID: "w1", Quantity: d("10")}))

	txID, err := uc.RegisterMovement(ctx, MovementInputDTO{CompanyID: "c1", ProductID: "p1", WarehouseID: "w1",
		Type: entity.MovementAdjustment, Quantity: d("-6")})
	require.NoError(t, err)

	movs, _ := s.Movements().ListByTransaction(ctx, txID)
	require.Len(t, movs, 2)
	assert.Equal(t, "b2", *movs[0].BatchID)
	assert.True(t, movs[0].Quantity.Equal(d("-5")))
	assert.Equal(t, "b1", *movs[1].BatchID)
	assert.True(t, movs[1].Quantity.Equal(d("-1")))

	b2, _ := s.Batches().GetByID(ctx, "b2")
	assert.Equal(t, entity.BatchStatusDepleted, b2.Status)
	assert.True(t, stockOf(t, s, "p1", "w1").Equal(d("4")))
}

func TestRegisterMovement_TransferenciaConservaLote(t *testing.T) {
	s := memstore.New()
	seed(t, s)
	uc := newMovementUC(s)
	ctx := context.Background()

	_, err := uc.RegisterMovement(ctx, MovementInputDTO{CompanyID: "c1", ProductID: "p1", WarehouseID: "w1",
		Type: entity.MovementIn, Quantity: d("8"), UnitCost: ptr(d("100"))})
	require.NoError(t, err)

	_, err = uc.RegisterMovement(ctx, MovementInputDTO{CompanyID: "c1", ProductID: "p1", FromWarehouseID: "w1", ToWarehouseID: "w2",
		Type: entity.MovementTransfer, Quantity: d("3")})
	require.NoError(t, err)

	assert.True(t, stockOf(t, s, "p1", "w1").Equal(d("5")))
	assert.True(t, stockOf(t, s, "p1", "w2").Equal(d("3")))

	src, _ := s.Batches().List(ctx, repository.BatchFilter{CompanyID: "c1", WarehouseID: "w1"})
	dst, _ := s.Batches().List(ctx, repository.BatchFilter{CompanyID: "c1", WarehouseID: "w2"})
	require.Len(t, src, 1)
	require.Len(t, dst, 1)
	assert.Equal(t, src[0].BatchNumber, dst[0].BatchNumber)
	assert.Equal(t, src[0].ExpiresAt, dst[0].ExpiresAt)
	assert.Equal(t, "TRANSFER", dst[0].SourceType)

	p, _ := s.Products().GetByID(ctx, "p1")
	assert.True(t, p.Cost.Equal(d("100")))
}

func TestRegisterMovement_Validaciones(t *testing.T) {
	s := memstore.New()
	seed(t, s)
	uc := newMovementUC(s)
	ctx := context.Background()

	cases := []struct {
		name string
		in   MovementInputDTO
		want error
	}{
		{"tipo desconocido", MovementInputDTO{CompanyID: "c1", ProductID: "p1", WarehouseID: "w1", Type: "GIFT", Quantity: d("1")}, domain.ErrInvalidInput},
		{"entrada sin costo", MovementInputDTO{CompanyID: "c1", ProductID: "p1", WarehouseID: "w1", Type: "IN", Quantity: d("1")}, domain.ErrInvalidInput},
		{"salida negativa", MovementInputDTO{CompanyID: "c1", ProductID: "p1", WarehouseID: "w1", Type: "OUT", Quantity: d("-1")}, domain.ErrInvalidInput},
		{"misma bodega", MovementInputDTO{CompanyID: "c1", ProductID: "p1", FromWarehouseID: "w1", ToWarehouseID: "w1", Type: "TRANSFER", Quantity: d("1")}, domain.ErrInvalidInput},
		{"producto de otra empresa", MovementInputDTO{CompanyID: "c2", ProductID: "p1", WarehouseID: "wx", Type: "OUT", Quantity: d("1")}, domain.ErrForbidden},
		{"bodega de otra empresa", MovementInputDTO{CompanyID: "c1", ProductID: "p1", WarehouseID: "wx", Type: "OUT", Quantity: d("1")}, domain.ErrNotFound},
		{"producto inexistente", MovementInputDTO{CompanyID: "c1", ProductID: "nope", WarehouseID: "w1", Type: "OUT", Quantity: d("1")}, domain.ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := uc.RegisterMovement(ctx, tc.in)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestEngine_IssueRegistraMetricas(t *testing.T) {
	s := memstore.New()
	seed(t, s)
	rec := &recorder{}
	eng := NewEngine(DefaultAllocationSettings(), rec)
	ctx := context.Background()

	p, _ := s.Products().GetByID(ctx, "p1")
	_, err := eng.Receive(ctx, s, ReceiveInput{CompanyID: "c1", TransactionID: "t1", Product: p, WarehouseID: "w1",
		Quantity: d("4"), UnitCost: d("50"), MovementType: entity.MovementIn, Now: fixedNow})
	require.NoError(t, err)

	res, err := eng.Issue(ctx, s, IssueInput{CompanyID: "c1", TransactionID: "t2", ProductID: "p1", WarehouseID: "w1",
		Quantity: d("3"), MovementType: entity.MovementSale, Now: fixedNow})
	require.NoError(t, err)
	assert.Equal(t, inventory.StrategySmart, res.Strategy)
	assert.True(t, res.TotalCost.Equal(d("150")))

	_, err = eng.Issue(ctx, s, IssueInput{CompanyID: "c1", TransactionID: "t3", ProductID: "p1", WarehouseID: "w1",
		Quantity: d("3"), Strategy: inventory.StrategyFIFO, MovementType: entity.MovementSale, Now: fixedNow})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, []string{"SMART", "FIFO"}, rec.allocations)
	assert.Equal(t, 1, rec.shortages)
}

func TestEngine_ReceiveEnCuarentena(t *testing.T) {
	s := memstore.New()
	seed(t, s)
	eng := NewEngine(DefaultAllocationSettings(), nil)
	ctx := context.Background()

	p, _ := s.Products().GetByID(ctx, "p1")
	mfg := fixedNow.AddDate(0, 0, -10)
	b, err := eng.Receive(ctx, s, ReceiveInput{CompanyID: "c1", TransactionID: "t1", Product: p, WarehouseID: "w1",
		Quantity: d("4"), UnitCost: d("50"), MovementType: entity.MovementReceipt, Now: fixedNow,
		Batch: &entity.Batch{BatchNumber: "Q-1", ManufacturedAt: &mfg, Status: entity.BatchStatusQuarantine, SourceType: "GRN"}})
	require.NoError(t, err)
	assert.Equal(t, mfg.AddDate(0, 0, 30), *b.ExpiresAt)

	// en cuarentena cuenta en stock pero no es asignable
	assert.True(t, stockOf(t, s, "p1", "w1").Equal(d("4")))
	_, err = eng.Issue(ctx, s, IssueInput{CompanyID: "c1", ProductID: "p1", WarehouseID: "w1", Quantity: d("1"),
		MovementType: entity.MovementSale, Now: fixedNow})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
}

func TestQuery_PreviewYLotesPorVencer(t *testing.T) {
	s := memstore.New()
	seed(t, s)
	eng := NewEngine(DefaultAllocationSettings(), nil)
	q := NewQueryUseCase(s, eng)
	q.now = func() time.Time { return fixedNow }
	ctx := context.Background()

	require.NoError(t, s.Batches().Create(ctx, &entity.Batch{ID: "b1", CompanyID: "c1", ProductID: "p1", WarehouseID: "w1", BatchNumber: "L1",
		ExpiresAt: ptr(fixedNow.AddDate(0, 0, 5)), ReceivedAt: fixedNow.AddDate(0, 0, -20), QtyReceived: d("5"), QtyAvailable: d("5"),
		UnitCost: d("100"), Status: entity.BatchStatusReleased}))
	require.NoError(t, s.Batches().Create(ctx, &entity.Batch{ID: "b2", CompanyID: "c1", ProductID: "p1", WarehouseID: "w1", BatchNumber: "L2",
		ExpiresAt: ptr(fixedNow.AddDate(0, 0, 60)), ReceivedAt: fixedNow.AddDate(0, 0, -2), QtyReceived: d("5"), QtyAvailable: d("5"),
		UnitCost: d("110"), Status: entity.BatchStatusReleased}))

	res, err := q.PreviewAllocation(ctx, "c1", dto.AllocationPreviewRequest{ProductID: "p1", WarehouseID: "w1", Quantity: d("12"),
		Strategy: "fefo", AllowPartial: true})
	require.NoError(t, err)
	assert.True(t, res.TotalAllocated.Equal(d("10")))
	assert.True(t, res.Shortage.Equal(d("2")))
	assert.False(t, res.FullyFulfilled)

	b1, _ := s.Batches().GetByID(ctx, "b1")
	assert.True(t, b1.QtyAvailable.Equal(d("5")), "la simulación no descuenta")

	_, err = q.PreviewAllocation(ctx, "c2", dto.AllocationPreviewRequest{ProductID: "p1", WarehouseID: "w1", Quantity: d("1")})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	exp, err := q.ExpiringBatches(ctx, "c1", 7)
	require.NoError(t, err)
	require.Len(t, exp, 1)
	assert.Equal(t, "L1", exp[0].BatchNumber)
	require.NotNil(t, exp[0].DaysToExpiry)
	assert.Equal(t, 5, *exp[0].DaysToExpiry)
}

func TestReplenishment_OrdenaPorMargen(t *testing.T) {
	s := memstore.New()
	ctx := context.Background()
	require.NoError(t, s.Products().Create(ctx, &entity.Product{ID: "a", CompanyID: "c1", SKU: "A", Name: "A", Price: d("100"), Cost: d("90"), ReorderPoint: d("10")}))
	require.NoError(t, s.Products().Create(ctx, &entity.Product{ID: "b", CompanyID: "c1", SKU: "B", Name: "B", Price: d("100"), Cost: d("50"), ReorderPoint: d("10")}))
	require.NoError(t, s.Products().Create(ctx, &entity.Product{ID: "c", CompanyID: "c1", SKU: "C", Name: "C", Price: d("100"), Cost: d("50"), ReorderPoint: d("1")}))
	require.NoError(t, s.Stock().Upsert(ctx, &entity.Stock{ProductID: "a", WarehouseID: "w1", Quantity: d("2")}))
	require.NoError(t, s.Stock().Upsert(ctx, &entity.Stock{ProductID: "b", WarehouseID: "w1", Quantity: d("4")}))
	require.NoError(t, s.Stock().Upsert(ctx, &entity.Stock{ProductID: "c", WarehouseID: "w1", Quantity: d("5")}))

	uc := NewReplenishmentUseCase(s)
	uc.now = func() time.Time { return fixedNow }
	list, err := uc.GenerateReplenishmentList(ctx, "c1", "")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "B", list[0].SKU)
	assert.Equal(t, 1, list[0].Priority)
	assert.True(t, list[0].SuggestedOrderQty.Equal(d("11")))
	assert.True(t, list[1].GrossMarginPct.Equal(d("10")))
}

func TestReplenishment_DescuentaPedidoAbierto(t *testing.T) {
	s := memstore.New()
	ctx := context.Background()
	require.NoError(t, s.Products().Create(ctx, &entity.Product{ID: "a", CompanyID: "c1", SKU: "A", Name: "A", Price: d("100"), Cost: d("60"), ReorderPoint: d("10")}))
	require.NoError(t, s.Products().Create(ctx, &entity.Product{ID: "b", CompanyID: "c1", SKU: "B", Name: "B", Price: d("100"), Cost: d("50"), ReorderPoint: d("10")}))
	require.NoError(t, s.Stock().Upsert(ctx, &entity.Stock{ProductID: "a", WarehouseID: "w1", Quantity: d("2")}))
	require.NoError(t, s.Stock().Upsert(ctx, &entity.Stock{ProductID: "b", WarehouseID: "w1", Quantity: d("4")}))

	require.NoError(t, s.PurchaseOrders().Create(ctx, &entity.PurchaseOrder{
		ID: "po1", CompanyID: "c1", WarehouseID: "w1", Number: "OC-1", Status: entity.POStatusPartiallyReceived,
		Lines: []entity.PurchaseOrderLine{
			{ID: "l1", PurchaseOrderID: "po1", LineNo: 1, ProductID: "a", Quantity: d("5"), AcceptedQty: d("2")},
			{ID: "l2", PurchaseOrderID: "po1", LineNo: 2, ProductID: "b", Quantity: d("8"), AcceptedQty: d("2")},
		},
	}))
	// borrador: aún no cuenta como pedido
	require.NoError(t, s.PurchaseOrders().Create(ctx, &entity.PurchaseOrder{
		ID: "po2", CompanyID: "c1", WarehouseID: "w1", Number: "OC-2", Status: entity.POStatusDraft,
		Lines: []entity.PurchaseOrderLine{{ID: "l3", PurchaseOrderID: "po2", LineNo: 1, ProductID: "a", Quantity: d("100")}},
	}))

	uc := NewReplenishmentUseCase(s)
	uc.now = func() time.Time { return fixedNow }
	list, err := uc.GenerateReplenishmentList(ctx, "c1", "w1")
	require.NoError(t, err)
	require.Len(t, list, 1, "B queda cubierto por lo pendiente de la OC")
	assert.Equal(t, "A", list[0].SKU)
	assert.True(t, list[0].OnOrderQty.Equal(d("3")))
	assert.True(t, list[0].SuggestedOrderQty.Equal(d("10")))
	assert.True(t, list[0].EstimatedOrderCost.Equal(d("600")))
}
