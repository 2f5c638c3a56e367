package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RegisterMovementRequest body para POST /api/inventory/movements.
type RegisterMovementRequest struct {
	ProductID       string           `json:"product_id" validate:"required"`
	WarehouseID     string           `json:"warehouse_id,omitempty"`
	FromWarehouseID string           `json:"from_warehouse_id,omitempty"`
	ToWarehouseID   string           `json:"to_warehouse_id,omitempty"`
	Type            string           `json:"type" validate:"required,oneof=IN OUT ADJUSTMENT TRANSFER"`
	Quantity        decimal.Decimal  `json:"quantity"`
	UnitCost        *decimal.Decimal `json:"unit_cost,omitempty"`
}

// MovementResponse línea del kardex.
type MovementResponse struct {
	ID            string          `json:"id"`
	TransactionID string          `json:"transaction_id"`
	ProductID     string          `json:"product_id"`
	WarehouseID   string          `json:"warehouse_id"`
	BatchID       *string         `json:"batch_id,omitempty"`
	Type          string          `json:"type"`
	Quantity      decimal.Decimal `json:"quantity"`
	UnitCost      decimal.Decimal `json:"unit_cost"`
	TotalCost     decimal.Decimal `json:"total_cost"`
	Date          time.Time       `json:"date"`
	CreatedBy     string          `json:"created_by,omitempty"`
}

// MovementListResponse movimientos de un producto.
type MovementListResponse struct {
	Items []MovementResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// StockLevelResponse existencia de un producto en una bodega.
type StockLevelResponse struct {
	WarehouseID   string          `json:"warehouse_id"`
	ProductID     string          `json:"product_id"`
	SKU           string          `json:"sku"`
	ProductName   string          `json:"product_name"`
	Quantity      decimal.Decimal `json:"quantity"`
	QuarantineQty decimal.Decimal `json:"quarantine_qty"`
	AvailableQty  decimal.Decimal `json:"available_qty"`
	UnitCost      decimal.Decimal `json:"unit_cost"`
	TotalValue    decimal.Decimal `json:"total_value"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// BatchResponse lote con su estado y días al vencimiento.
type BatchResponse struct {
	ID             string          `json:"id"`
	ProductID      string          `json:"product_id"`
	WarehouseID    string          `json:"warehouse_id"`
	BatchNumber    string          `json:"batch_number"`
	ManufacturedAt *time.Time      `json:"manufactured_at,omitempty"`
	ExpiresAt      *time.Time      `json:"expires_at,omitempty"`
	DaysToExpiry   *int            `json:"days_to_expiry,omitempty"`
	ReceivedAt     time.Time       `json:"received_at"`
	QtyReceived    decimal.Decimal `json:"qty_received"`
	QtyAvailable   decimal.Decimal `json:"qty_available"`
	UnitCost       decimal.Decimal `json:"unit_cost"`
	Status         string          `json:"status"`
	SourceType     string          `json:"source_type"`
	SourceID       string          `json:"source_id"`
}

// BatchQuery filtros de GET /api/inventory/batches.
type BatchQuery struct {
	ProductID   string `query:"product_id"`
	WarehouseID string `query:"warehouse_id"`
	Status      string `query:"status" validate:"omitempty,oneof=QUARANTINE RELEASED REJECTED DEPLETED"`
	PageRequest
}

// BatchListResponse lista de lotes.
type BatchListResponse struct {
	Items []BatchResponse `json:"items"`
	Page  PageResponse    `json:"page"`
}

// SpecifiedBatchRequest lote y cantidad elegidos manualmente.
type SpecifiedBatchRequest struct {
	BatchID  string          `json:"batch_id" validate:"required"`
	Quantity decimal.Decimal `json:"quantity"`
}

// AllocationPreviewRequest simulación de asignación de lotes (no descuenta nada).
type AllocationPreviewRequest struct {
	ProductID             string                  `json:"product_id" validate:"required"`
	WarehouseID           string                  `json:"warehouse_id" validate:"required"`
	Quantity              decimal.Decimal         `json:"quantity"`
	Strategy              string                  `json:"strategy" validate:"omitempty,oneof=FIFO FEFO SPECIFIED SMART fifo fefo specified smart"`
	Batches               []SpecifiedBatchRequest `json:"batches,omitempty" validate:"dive"`
	AllowPartial          bool                    `json:"allow_partial"`
	MinRemainingShelfDays int                     `json:"min_remaining_shelf_days" validate:"min=0"`
}

// ReplenishmentSuggestionDTO SKU cuya posición (stock + pedido) quedó bajo el punto de reorden.
type ReplenishmentSuggestionDTO struct {
	ProductID           string          `json:"product_id"`
	SKU                 string          `json:"sku"`
	ProductName         string          `json:"product_name"`
	CurrentStock        decimal.Decimal `json:"current_stock"`
	OnOrderQty          decimal.Decimal `json:"on_order_qty"`
	ReorderPoint        decimal.Decimal `json:"reorder_point"`
	IdealStock          decimal.Decimal `json:"ideal_stock"`         // 1.5 × punto de reorden
	SuggestedOrderQty   decimal.Decimal `json:"suggested_order_qty"` // ideal − stock − pedido
	UnitCost            decimal.Decimal `json:"unit_cost"`
	EstimatedOrderCost  decimal.Decimal `json:"estimated_order_cost"`
	GrossMarginPct      decimal.Decimal `json:"gross_margin_pct"`
	UnitsSoldLast90Days decimal.Decimal `json:"units_sold_last_90d"`
	Priority            int             `json:"priority"` // 1 = más urgente
}
