package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Stock saldo consolidado de un producto en una bodega; suma de qty_available de sus lotes,
// incluidos los que están en cuarentena.
type Stock struct {
	ProductID   string
	WarehouseID string
	Quantity    decimal.Decimal
	UpdatedAt   time.Time
}

// Add suma una entrada al saldo.
func (s *Stock) Add(qty decimal.Decimal, at time.Time) {
	s.Quantity = s.Quantity.Add(qty)
	s.UpdatedAt = at
}

// Withdraw descuenta qty; false sin tocar el saldo si no alcanza.
func (s *Stock) Withdraw(qty decimal.Decimal, at time.Time) bool {
	if s.Quantity.LessThan(qty) {
		return false
	}
	s.Quantity = s.Quantity.Sub(qty)
	s.UpdatedAt = at
	return true
}
