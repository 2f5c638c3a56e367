package procurement

import (
	"testing"

	"github.com/jhoicas/erp-api/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconcile(t *testing.T) {
	po := &entity.PurchaseOrder{
		ID:     "po-1",
		Number: "PO-000007",
		Status: entity.POStatusPartiallyReceived,
		Lines: []entity.PurchaseOrderLine{
			{ID: "l1", LineNo: 1, ProductID: "p1", Quantity: d("100"), UnitCost: d("10")},
			{ID: "l2", LineNo: 2, ProductID: "p2", Quantity: d("50"), UnitCost: d("4")},
			{ID: "l3", LineNo: 3, ProductID: "p3", Quantity: d("20"), UnitCost: d("1")},
		},
	}
	receipts := []*entity.GoodsReceipt{
		{ID: "r1", Lines: []entity.GoodsReceiptLine{
			{POLineID: "l1", ReceivedQty: d("60"), AcceptedQty: d("58"), RejectedQty: d("2"), UnitCost: d("10")},
			{POLineID: "l2", ReceivedQty: d("30"), AcceptedQty: d("30"), RejectedQty: d("0"), UnitCost: d("4.4")},
		}},
		{ID: "r2", Lines: []entity.GoodsReceiptLine{
			{POLineID: "l1", ReceivedQty: d("42"), AcceptedQty: d("42"), RejectedQty: d("0"), UnitCost: d("11")},
			{POLineID: "l2", ReceivedQty: d("25"), AcceptedQty: d("25"), RejectedQty: d("0"), UnitCost: d("4.4")},
			{POLineID: "ajena", ReceivedQty: d("1"), AcceptedQty: d("1"), UnitCost: d("1")},
		}},
	}

	rep := Reconcile(po, receipts)
	require.Len(t, rep.Lines, 3)
	assert.Equal(t, 2, rep.ReceiptCount)

	l1, l2, l3 := rep.Lines[0], rep.Lines[1], rep.Lines[2]

	// l1: (58*10 + 42*11) / 100 = 10.42 ; variación 0.42*100 = 42
	assert.Equal(t, LineComplete, l1.Status)
	assert.True(t, l1.Received.Equal(d("102")))
	assert.True(t, l1.Rejected.Equal(d("2")))
	assert.True(t, l1.AvgReceivedCost.Equal(d("10.42")), "avg %s", l1.AvgReceivedCost)
	assert.True(t, l1.PriceVariance.Equal(d("42")), "var %s", l1.PriceVariance)

	// l2: 55 aceptado de 50 ; 0.4*55 = 22
	assert.Equal(t, LineOver, l2.Status)
	assert.True(t, l2.Over.Equal(d("5")))
	assert.True(t, l2.Pending.IsZero())
	assert.True(t, l2.PriceVariance.Equal(d("22")))

	assert.Equal(t, LinePending, l3.Status)
	assert.True(t, l3.Pending.Equal(d("20")))
	assert.True(t, l3.AvgReceivedCost.IsZero())

	assert.True(t, rep.OrderedValue.Equal(d("1220")))
	assert.True(t, rep.ReceivedValue.Equal(d("1284")))
	assert.True(t, rep.VarianceTotal.Equal(d("64")))
	// (100 + 50 + 0) / 170
	assert.True(t, rep.CompletionPct.Equal(d("88.24")), "pct %s", rep.CompletionPct)

	types := []string{}
	for _, ds := range rep.Discrepancies {
		types = append(types, ds.Type)
	}
	assert.Equal(t, []string{CodePriceVariance, "REJECTED", CodeOverReceipt, CodePriceVariance}, types)
}

func TestReconcile_SinRecepciones(t *testing.T) {
	po := &entity.PurchaseOrder{
		ID:    "po-2",
		Lines: []entity.PurchaseOrderLine{{ID: "l1", Quantity: d("5"), UnitCost: d("2")}},
	}
	rep := Reconcile(po, nil)
	assert.Equal(t, LinePending, rep.Lines[0].Status)
	assert.True(t, rep.CompletionPct.IsZero())
	assert.Empty(t, rep.Discrepancies)
}
