package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// InventoryLevel existencia de un producto en una bodega, con la parte retenida en cuarentena.
type InventoryLevel struct {
	CompanyID     string
	WarehouseID   string
	ProductID     string
	SKU           string
	ProductName   string
	Quantity      decimal.Decimal // incluye cuarentena
	QuarantineQty decimal.Decimal
	UnitCost      decimal.Decimal
	UpdatedAt     time.Time
}

// AvailableQty lo que se puede asignar a ventas y producción.
func (l InventoryLevel) AvailableQty() decimal.Decimal {
	a := l.Quantity.Sub(l.QuarantineQty)
	if a.IsNegative() {
		return decimal.Zero
	}
	return a
}
