package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// BOMComponentRequest componente por OutputQty unidades del producto terminado.
type BOMComponentRequest struct {
	ProductID string          `json:"product_id" validate:"required"`
	Quantity  decimal.Decimal `json:"quantity"`
	ScrapPct  decimal.Decimal `json:"scrap_pct"`
}

// CreateBOMRequest body de POST /api/boms.
type CreateBOMRequest struct {
	ProductID  string                `json:"product_id" validate:"required"`
	Name       string                `json:"name" validate:"required,max=200"`
	OutputQty  decimal.Decimal       `json:"output_qty"`
	Components []BOMComponentRequest `json:"components" validate:"required,min=1,dive"`
}

// BOMResponse lista de materiales.
type BOMResponse struct {
	ID         string                `json:"id"`
	ProductID  string                `json:"product_id"`
	Name       string                `json:"name"`
	OutputQty  decimal.Decimal       `json:"output_qty"`
	Components []BOMComponentRequest `json:"components"`
	CreatedAt  time.Time             `json:"created_at"`
}

// BOMListResponse listas de materiales.
type BOMListResponse struct {
	Items []BOMResponse `json:"items"`
	Page  PageResponse  `json:"page"`
}

// CreateWorkOrderRequest body de POST /api/work-orders.
type CreateWorkOrderRequest struct {
	BOMID        string          `json:"bom_id" validate:"required"`
	WarehouseID  string          `json:"warehouse_id" validate:"required"`
	PlannedQty   decimal.Decimal `json:"planned_qty"`
	PlannedStart *time.Time      `json:"planned_start,omitempty"`
}

// StartWorkOrderRequest estrategia de consumo de materiales.
type StartWorkOrderRequest struct {
	Strategy string `json:"strategy" validate:"omitempty,oneof=FIFO FEFO SMART fifo fefo smart"`
}

// CompleteWorkOrderRequest cierre de producción.
type CompleteWorkOrderRequest struct {
	ProducedQty  decimal.Decimal `json:"produced_qty"`
	LaborCost    decimal.Decimal `json:"labor_cost"`
	OverheadCost decimal.Decimal `json:"overhead_cost"`
	BatchNumber  string          `json:"batch_number"`
	ExpiresAt    *time.Time      `json:"expires_at,omitempty"`
}

// MaterialIssueResponse consumo de un componente al iniciar la orden.
type MaterialIssueResponse struct {
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	Cost      decimal.Decimal `json:"cost"`
}

// WorkOrderResponse orden de producción.
type WorkOrderResponse struct {
	ID            string                  `json:"id"`
	BOMID         string                  `json:"bom_id"`
	ProductID     string                  `json:"product_id"`
	WarehouseID   string                  `json:"warehouse_id"`
	Number        string                  `json:"number"`
	Status        string                  `json:"status"`
	PlannedQty    decimal.Decimal         `json:"planned_qty"`
	ProducedQty   decimal.Decimal         `json:"produced_qty"`
	MaterialCost  decimal.Decimal         `json:"material_cost"`
	LaborCost     decimal.Decimal         `json:"labor_cost"`
	OverheadCost  decimal.Decimal         `json:"overhead_cost"`
	UnitCost      decimal.Decimal         `json:"unit_cost"`
	OutputBatchID *string                 `json:"output_batch_id,omitempty"`
	PlannedStart  *time.Time              `json:"planned_start,omitempty"`
	StartedAt     *time.Time              `json:"started_at,omitempty"`
	CompletedAt   *time.Time              `json:"completed_at,omitempty"`
	Materials     []MaterialIssueResponse `json:"materials,omitempty"`
	CreatedAt     time.Time               `json:"created_at"`
}

// WorkOrderListResponse órdenes de producción.
type WorkOrderListResponse struct {
	Items []WorkOrderResponse `json:"items"`
	Page  PageResponse        `json:"page"`
}
