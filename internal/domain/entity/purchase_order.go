package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una orden de compra.
const (
	POStatusDraft             = "DRAFT"
	POStatusConfirmed         = "CONFIRMED"
	POStatusPartiallyReceived = "PARTIALLY_RECEIVED"
	POStatusReceived          = "RECEIVED"
	POStatusCancelled         = "CANCELLED"
)

// PurchaseOrder cabecera de orden de compra.
type PurchaseOrder struct {
	ID           string
	CompanyID    string
	SupplierID   string
	WarehouseID  string
	Number       string
	Status       string
	OrderDate    time.Time
	ExpectedDate *time.Time
	Notes        string
	Subtotal     decimal.Decimal
	TaxTotal     decimal.Decimal
	Total        decimal.Decimal
	Lines        []PurchaseOrderLine
	CreatedBy    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PurchaseOrderLine línea de OC. Received* son acumulados de todas las recepciones.
type PurchaseOrderLine struct {
	ID              string
	PurchaseOrderID string
	LineNo          int
	ProductID       string
	Quantity        decimal.Decimal
	UnitCost        decimal.Decimal
	TaxRate         decimal.Decimal
	ReceivedQty     decimal.Decimal
	AcceptedQty     decimal.Decimal
	RejectedQty     decimal.Decimal
}

// CanReceive informa si la OC admite recepciones.
func (po *PurchaseOrder) CanReceive() bool {
	return po.Status == POStatusConfirmed || po.Status == POStatusPartiallyReceived
}

// CanCancel solo antes de cualquier recepción.
func (po *PurchaseOrder) CanCancel() bool {
	if po.Status != POStatusDraft && po.Status != POStatusConfirmed {
		return false
	}
	for _, l := range po.Lines {
		if l.ReceivedQty.GreaterThan(decimal.Zero) {
			return false
		}
	}
	return true
}

// Line busca una línea por ID.
func (po *PurchaseOrder) Line(id string) *PurchaseOrderLine {
	for i := range po.Lines {
		if po.Lines[i].ID == id {
			return &po.Lines[i]
		}
	}
	return nil
}

// FullyReceived: todas las líneas con aceptado >= ordenado.
func (po *PurchaseOrder) FullyReceived() bool {
	if len(po.Lines) == 0 {
		return false
	}
	for _, l := range po.Lines {
		if l.AcceptedQty.LessThan(l.Quantity) {
			return false
		}
	}
	return true
}

// PendingQty cantidad aún por recibir (aceptada) de la línea; nunca negativa.
func (l PurchaseOrderLine) PendingQty() decimal.Decimal {
	p := l.Quantity.Sub(l.AcceptedQty)
	if p.IsNegative() {
		return decimal.Zero
	}
	return p
}
