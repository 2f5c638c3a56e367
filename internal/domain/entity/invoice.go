package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de factura.
const (
	InvoiceStatusIssued = "ISSUED"
	InvoiceStatusVoid   = "VOID"
)

// Invoice cabecera de factura de venta. CostTotal sale de los lotes asignados.
type Invoice struct {
	ID            string
	CompanyID     string
	ClientID      string
	WarehouseID   string
	EstimationID  *string
	Number        string
	Date          time.Time
	Status        string
	NetTotal      decimal.Decimal
	DiscountTotal decimal.Decimal
	TaxTotal      decimal.Decimal
	GrandTotal    decimal.Decimal
	CostTotal     decimal.Decimal
	GrossMargin   decimal.Decimal
	CreatedBy     string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
