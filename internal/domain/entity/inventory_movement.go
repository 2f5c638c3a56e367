package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	MovementIn               = "IN"
	MovementOut              = "OUT"
	MovementAdjustment       = "ADJUSTMENT"
	MovementTransfer         = "TRANSFER"
	MovementReceipt          = "RECEIPT"
	MovementSale             = "SALE"
	MovementProductionIssue  = "PRODUCTION_ISSUE"
	MovementProductionOutput = "PRODUCTION_OUTPUT"
	MovementQualityReject    = "QUALITY_REJECT"
)

// InventoryMovement línea del kardex por lote. Quantity con signo: positiva entra, negativa sale.
// TransactionID agrupa los movimientos de un mismo documento (GRN, factura, orden de producción).
type InventoryMovement struct {
	ID            string
	CompanyID     string
	TransactionID string
	ProductID     string
	WarehouseID   string
	BatchID       *string
	Type          string
	Quantity      decimal.Decimal
	UnitCost      decimal.Decimal
	TotalCost     decimal.Decimal
	Date          time.Time
	CreatedAt     time.Time
	CreatedBy     string
}

// MovementRef dónde y por qué se mueve el stock; común a entradas y salidas.
type MovementRef struct {
	CompanyID     string
	TransactionID string
	ProductID     string
	WarehouseID   string
	Type          string
	UserID        string
}

// NewMovement arma el movimiento de un lote; TotalCost a 4 decimales conserva el signo de qty.
func NewMovement(ref MovementRef, batchID string, qty, unitCost decimal.Decimal, at time.Time) *InventoryMovement {
	return &InventoryMovement{
		ID:            uuid.New().String(),
		CompanyID:     ref.CompanyID,
		TransactionID: ref.TransactionID,
		ProductID:     ref.ProductID,
		WarehouseID:   ref.WarehouseID,
		BatchID:       &batchID,
		Type:          ref.Type,
		Quantity:      qty,
		UnitCost:      unitCost,
		TotalCost:     qty.Mul(unitCost).Round(4),
		Date:          at,
		CreatedAt:     at,
		CreatedBy:     ref.UserID,
	}
}

