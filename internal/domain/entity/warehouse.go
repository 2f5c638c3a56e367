package entity

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Warehouse bodega de la empresa. Code es único por empresa y se guarda en mayúsculas.
type Warehouse struct {
	ID        string
	CompanyID string
	Code      string
	Name      string
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Normalize limpia espacios y deja el código en mayúsculas.
func (w *Warehouse) Normalize() {
	w.Code = strings.ToUpper(strings.TrimSpace(w.Code))
	w.Name = strings.TrimSpace(w.Name)
	w.Address = strings.TrimSpace(w.Address)
}

// WarehouseTotals acumulado de existencias de una bodega valorizado a costo promedio.
type WarehouseTotals struct {
	SKUs       int
	OnHand     decimal.Decimal
	Quarantine decimal.Decimal
	Valuation  decimal.Decimal
}

// Add suma un nivel; los SKUs sin saldo no cuentan.
func (t *WarehouseTotals) Add(l InventoryLevel) {
	if !l.Quantity.IsPositive() {
		return
	}
	t.SKUs++
	t.OnHand = t.OnHand.Add(l.Quantity)
	t.Quarantine = t.Quarantine.Add(l.QuarantineQty)
	t.Valuation = t.Valuation.Add(l.Quantity.Mul(l.UnitCost))
}

// Available existencia asignable.
func (t WarehouseTotals) Available() decimal.Decimal { return t.OnHand.Sub(t.Quarantine) }
