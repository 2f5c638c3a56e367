package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de cargo adicional de una recepción (costo de internación).
const (
	ChargeFreight   = "FREIGHT"
	ChargeDuty      = "DUTY"
	ChargeInsurance = "INSURANCE"
	ChargeHandling  = "HANDLING"
	ChargeOther     = "OTHER"
)

// Bases de prorrateo de cargos.
const (
	BasisValue    = "VALUE"
	BasisQuantity = "QUANTITY"
	BasisWeight   = "WEIGHT"
)

// GoodsReceipt nota de recepción (GRN) contra una orden de compra.
type GoodsReceipt struct {
	ID              string
	CompanyID       string
	PurchaseOrderID string
	WarehouseID     string
	Number          string
	SupplierRef     string
	ReceivedAt      time.Time
	Notes           string
	Lines           []GoodsReceiptLine
	Charges         []ReceiptCharge
	Warnings        []string // códigos de advertencia aceptados al registrar
	TotalValue      decimal.Decimal
	TotalCharges    decimal.Decimal
	CreatedBy       string
	CreatedAt       time.Time
}

// GoodsReceiptLine línea recibida. LandedUnitCost incluye cargos prorrateados.
type GoodsReceiptLine struct {
	ID              string
	ReceiptID       string
	POLineID        string
	ProductID       string
	ReceivedQty     decimal.Decimal
	AcceptedQty     decimal.Decimal
	RejectedQty     decimal.Decimal
	UnitCost        decimal.Decimal
	AllocatedCharge decimal.Decimal
	LandedUnitCost  decimal.Decimal
	BatchID         *string
	BatchNumber     string
	ManufacturedAt  *time.Time
	ExpiresAt       *time.Time
}

// ReceiptCharge cargo adicional (flete, arancel, seguro...).
type ReceiptCharge struct {
	ID          string
	ReceiptID   string
	Type        string
	Basis       string
	Amount      decimal.Decimal
	Description string
}
