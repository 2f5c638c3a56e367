package dto

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto. Cost inicia en cero y lo mueve el inventario.
type CreateProductRequest struct {
	SKU                string          `json:"sku" validate:"required,min=1,max=100"`
	Name               string          `json:"name" validate:"required,min=1,max=200"`
	Description        string          `json:"description"`
	Price              decimal.Decimal `json:"price"`
	TaxRate            decimal.Decimal `json:"tax_rate"`
	UnitMeasure        string          `json:"unit_measure"`
	ReorderPoint       decimal.Decimal `json:"reorder_point"`
	TrackBatches       bool            `json:"track_batches"`
	RequiresInspection bool            `json:"requires_inspection"`
	ShelfLifeDays      int             `json:"shelf_life_days" validate:"min=0"`
	WeightKg           decimal.Decimal `json:"weight_kg"`
	Attributes         json.RawMessage `json:"attributes" swaggertype:"object"`
}

// UpdateProductRequest entrada para actualizar un producto (sin Cost).
type UpdateProductRequest struct {
	Name               *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Description        *string          `json:"description"`
	Price              *decimal.Decimal `json:"price"`
	TaxRate            *decimal.Decimal `json:"tax_rate"`
	UnitMeasure        *string          `json:"unit_measure"`
	ReorderPoint       *decimal.Decimal `json:"reorder_point"`
	TrackBatches       *bool            `json:"track_batches"`
	RequiresInspection *bool            `json:"requires_inspection"`
	ShelfLifeDays      *int             `json:"shelf_life_days" validate:"omitempty,min=0"`
	WeightKg           *decimal.Decimal `json:"weight_kg"`
	Attributes         json.RawMessage  `json:"attributes" swaggertype:"object"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID                 string          `json:"id"`
	CompanyID          string          `json:"company_id"`
	SKU                string          `json:"sku"`
	Name               string          `json:"name"`
	Description        string          `json:"description"`
	Price              decimal.Decimal `json:"price"`
	Cost               decimal.Decimal `json:"cost"`
	TaxRate            decimal.Decimal `json:"tax_rate"`
	UnitMeasure        string          `json:"unit_measure"`
	ReorderPoint       decimal.Decimal `json:"reorder_point"`
	TrackBatches       bool            `json:"track_batches"`
	RequiresInspection bool            `json:"requires_inspection"`
	ShelfLifeDays      int             `json:"shelf_life_days"`
	WeightKg           decimal.Decimal `json:"weight_kg"`
	Attributes         json.RawMessage `json:"attributes,omitempty" swaggertype:"object"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
