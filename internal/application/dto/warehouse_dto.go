package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateWarehouseRequest alta de bodega; el código se normaliza a mayúsculas.
type CreateWarehouseRequest struct {
	Code    string `json:"code" validate:"required,min=1,max=20"`
	Name    string `json:"name" validate:"required,min=1,max=200"`
	Address string `json:"address" validate:"max=300"`
}

type WarehouseResponse struct {
	ID        string    `json:"id"`
	CompanyID string    `json:"company_id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Address   string    `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type WarehouseListResponse struct {
	Items []WarehouseResponse `json:"items"`
	Page  PageResponse        `json:"page"`
}

// WarehouseSummaryResponse existencias de la bodega valorizadas a costo promedio ponderado.
type WarehouseSummaryResponse struct {
	Warehouse     WarehouseResponse `json:"warehouse"`
	SKUCount      int               `json:"sku_count"`
	OnHandQty     decimal.Decimal   `json:"on_hand_qty"`
	QuarantineQty decimal.Decimal   `json:"quarantine_qty"`
	AvailableQty  decimal.Decimal   `json:"available_qty"`
	Valuation     decimal.Decimal   `json:"valuation"`
}
