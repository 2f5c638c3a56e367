package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// BOM lista de materiales para fabricar OutputQty unidades de ProductID.
type BOM struct {
	ID         string
	CompanyID  string
	ProductID  string
	Name       string
	OutputQty  decimal.Decimal
	Components []BOMComponent
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// BOMComponent material requerido para OutputQty unidades del producto terminado.
type BOMComponent struct {
	ID        string
	BOMID     string
	ProductID string
	Quantity  decimal.Decimal
	ScrapPct  decimal.Decimal
}

// Estados de una orden de producción.
const (
	WorkOrderPlanned    = "PLANNED"
	WorkOrderInProgress = "IN_PROGRESS"
	WorkOrderCompleted  = "COMPLETED"
	WorkOrderCancelled  = "CANCELLED"
)

// WorkOrder orden de producción sobre una BOM.
type WorkOrder struct {
	ID            string
	CompanyID     string
	BOMID         string
	ProductID     string
	WarehouseID   string
	Number        string
	Status        string
	PlannedQty    decimal.Decimal
	ProducedQty   decimal.Decimal
	MaterialCost  decimal.Decimal
	LaborCost     decimal.Decimal
	OverheadCost  decimal.Decimal
	UnitCost      decimal.Decimal
	OutputBatchID *string
	PlannedStart  *time.Time
	StartedAt     *time.Time
	CompletedAt   *time.Time
	CreatedBy     string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// CanTransition valida PLANNED -> IN_PROGRESS -> COMPLETED y PLANNED -> CANCELLED.
func (w *WorkOrder) CanTransition(to string) bool {
	switch w.Status {
	case WorkOrderPlanned:
		return to == WorkOrderInProgress || to == WorkOrderCancelled
	case WorkOrderInProgress:
		return to == WorkOrderCompleted
	}
	return false
}
