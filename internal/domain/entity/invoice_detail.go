package entity

import "github.com/shopspring/decimal"

// InvoiceDetail línea de factura con el costo de los lotes consumidos.
type InvoiceDetail struct {
	ID          string
	InvoiceID   string
	ProductID   string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	DiscountPct decimal.Decimal
	TaxRate     decimal.Decimal
	Subtotal    decimal.Decimal
	CostTotal   decimal.Decimal
}
