package procurement

import (
	"fmt"

	"github.com/jhoicas/erp-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// Estados de conciliación por línea.
const (
	LinePending  = "PENDING"
	LinePartial  = "PARTIAL"
	LineComplete = "COMPLETE"
	LineOver     = "OVER"
)

// ReconciliationLine ordenado vs recibido para una línea de OC.
type ReconciliationLine struct {
	POLineID        string          `json:"po_line_id"`
	LineNo          int             `json:"line_no"`
	ProductID       string          `json:"product_id"`
	Ordered         decimal.Decimal `json:"ordered"`
	Received        decimal.Decimal `json:"received"`
	Accepted        decimal.Decimal `json:"accepted"`
	Rejected        decimal.Decimal `json:"rejected"`
	Pending         decimal.Decimal `json:"pending"`
	Over            decimal.Decimal `json:"over"`
	POUnitCost      decimal.Decimal `json:"po_unit_cost"`
	AvgReceivedCost decimal.Decimal `json:"avg_received_cost"`
	PriceVariance   decimal.Decimal `json:"price_variance"`
	Status          string          `json:"status"`
}

// Discrepancy diferencia relevante entre la OC y sus recepciones.
type Discrepancy struct {
	Type      string          `json:"type"`
	POLineID  string          `json:"po_line_id"`
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	Amount    decimal.Decimal `json:"amount"`
	Message   string          `json:"message"`
}

// Reconciliation informe de conciliación de una OC.
type Reconciliation struct {
	PurchaseOrderID string               `json:"purchase_order_id"`
	Number          string               `json:"number"`
	Status          string               `json:"status"`
	ReceiptCount    int                  `json:"receipt_count"`
	Lines           []ReconciliationLine `json:"lines"`
	OrderedValue    decimal.Decimal      `json:"ordered_value"`
	ReceivedValue   decimal.Decimal      `json:"received_value"`
	VarianceTotal   decimal.Decimal      `json:"variance_total"`
	CompletionPct   decimal.Decimal      `json:"completion_pct"`
	Discrepancies   []Discrepancy        `json:"discrepancies"`
}

type lineAcc struct {
	received, accepted, rejected, value decimal.Decimal
}

// Reconcile compara las líneas de la OC con lo registrado en sus recepciones.
func Reconcile(po *entity.PurchaseOrder, receipts []*entity.GoodsReceipt) *Reconciliation {
	acc := make(map[string]*lineAcc, len(po.Lines))
	for _, l := range po.Lines {
		acc[l.ID] = &lineAcc{}
	}
	for _, r := range receipts {
		for _, rl := range r.Lines {
			a, ok := acc[rl.POLineID]
			if !ok {
				continue
			}
			a.received = a.received.Add(rl.ReceivedQty)
			a.accepted = a.accepted.Add(rl.AcceptedQty)
			a.rejected = a.rejected.Add(rl.RejectedQty)
			a.value = a.value.Add(rl.AcceptedQty.Mul(rl.UnitCost))
		}
	}

	rep := &Reconciliation{
		PurchaseOrderID: po.ID,
		Number:          po.Number,
		Status:          po.Status,
		ReceiptCount:    len(receipts),
		Lines:           make([]ReconciliationLine, 0, len(po.Lines)),
		Discrepancies:   []Discrepancy{},
	}
	orderedQty, coveredQty := decimal.Zero, decimal.Zero
	for _, l := range po.Lines {
		a := acc[l.ID]
		rl := ReconciliationLine{
			POLineID:   l.ID,
			LineNo:     l.LineNo,
			ProductID:  l.ProductID,
			Ordered:    l.Quantity,
			Received:   a.received,
			Accepted:   a.accepted,
			Rejected:   a.rejected,
			Pending:    decimal.Max(l.Quantity.Sub(a.accepted), decimal.Zero),
			Over:       decimal.Max(a.accepted.Sub(l.Quantity), decimal.Zero),
			POUnitCost: l.UnitCost,
		}
		if a.accepted.GreaterThan(decimal.Zero) {
			rl.AvgReceivedCost = a.value.Div(a.accepted).Round(4)
			rl.PriceVariance = rl.AvgReceivedCost.Sub(l.UnitCost).Mul(a.accepted).Round(2)
		}
		switch {
		case a.accepted.IsZero():
			rl.Status = LinePending
		case a.accepted.LessThan(l.Quantity):
			rl.Status = LinePartial
		case a.accepted.Equal(l.Quantity):
			rl.Status = LineComplete
		default:
			rl.Status = LineOver
		}
		rep.Lines = append(rep.Lines, rl)

		rep.OrderedValue = rep.OrderedValue.Add(l.Quantity.Mul(l.UnitCost))
		rep.ReceivedValue = rep.ReceivedValue.Add(a.value)
		rep.VarianceTotal = rep.VarianceTotal.Add(rl.PriceVariance)
		orderedQty = orderedQty.Add(l.Quantity)
		coveredQty = coveredQty.Add(decimal.Min(a.accepted, l.Quantity))

		if rl.Over.GreaterThan(decimal.Zero) {
			rep.Discrepancies = append(rep.Discrepancies, Discrepancy{
				Type: CodeOverReceipt, POLineID: l.ID, ProductID: l.ProductID, Quantity: rl.Over,
				Amount:  rl.Over.Mul(l.UnitCost).Round(2),
				Message: fmt.Sprintf("línea %d: aceptado %s sobre %s ordenado", l.LineNo, a.accepted, l.Quantity),
			})
		}
		if !rl.PriceVariance.IsZero() {
			rep.Discrepancies = append(rep.Discrepancies, Discrepancy{
				Type: CodePriceVariance, POLineID: l.ID, ProductID: l.ProductID, Quantity: a.accepted,
				Amount:  rl.PriceVariance,
				Message: fmt.Sprintf("línea %d: costo promedio %s vs %s de la orden", l.LineNo, rl.AvgReceivedCost, l.UnitCost),
			})
		}
		if a.rejected.GreaterThan(decimal.Zero) {
			rep.Discrepancies = append(rep.Discrepancies, Discrepancy{
				Type: "REJECTED", POLineID: l.ID, ProductID: l.ProductID, Quantity: a.rejected,
				Amount:  a.rejected.Mul(l.UnitCost).Round(2),
				Message: fmt.Sprintf("línea %d: %s unidades rechazadas", l.LineNo, a.rejected),
			})
		}
	}
	rep.OrderedValue = rep.OrderedValue.Round(2)
	rep.ReceivedValue = rep.ReceivedValue.Round(2)
	if orderedQty.GreaterThan(decimal.Zero) {
		rep.CompletionPct = coveredQty.Div(orderedQty).Mul(hundred).Round(2)
	}
	return rep
}
