package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de un lote.
const (
	BatchStatusQuarantine = "QUARANTINE" // pendiente de inspección
	BatchStatusReleased   = "RELEASED"   // disponible para asignación
	BatchStatusRejected   = "REJECTED"   // rechazado por calidad
	BatchStatusDepleted   = "DEPLETED"   // sin cantidad disponible
)

// Batch lote de un producto en una bodega. Origen: recepción de OC o producción.
type Batch struct {
	ID             string
	CompanyID      string
	ProductID      string
	WarehouseID    string
	BatchNumber    string
	ManufacturedAt *time.Time
	ExpiresAt      *time.Time
	ReceivedAt     time.Time
	QtyReceived    decimal.Decimal
	QtyAvailable   decimal.Decimal
	UnitCost       decimal.Decimal
	Status         string
	SourceType     string // GRN, WORK_ORDER, ADJUSTMENT
	SourceID       string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// IsExpired informa si el lote está vencido a la fecha indicada.
func (b *Batch) IsExpired(now time.Time) bool {
	return b.ExpiresAt != nil && !b.ExpiresAt.After(now)
}

// DaysToExpiry días hasta el vencimiento; ok=false si no vence.
func (b *Batch) DaysToExpiry(now time.Time) (days float64, ok bool) {
	if b.ExpiresAt == nil {
		return 0, false
	}
	return b.ExpiresAt.Sub(now).Hours() / 24, true
}

// IsAllocatable: liberado, con cantidad y sin vencer.
func (b *Batch) IsAllocatable(now time.Time) bool {
	return b.Status == BatchStatusReleased && b.QtyAvailable.GreaterThan(decimal.Zero) && !b.IsExpired(now)
}

// Deduct descuenta cantidad; marca DEPLETED al llegar a cero.
func (b *Batch) Deduct(qty decimal.Decimal, now time.Time) {
	b.QtyAvailable = b.QtyAvailable.Sub(qty)
	if !b.QtyAvailable.GreaterThan(decimal.Zero) {
		b.QtyAvailable = decimal.Zero
		if b.Status == BatchStatusReleased {
			b.Status = BatchStatusDepleted
		}
	}
	b.UpdatedAt = now
}
