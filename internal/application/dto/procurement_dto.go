package dto

import (
	"time"

	"github.com/jhoicas/erp-api/internal/domain"
	"github.com/jhoicas/erp-api/internal/domain/procurement"
	"github.com/shopspring/decimal"
)

// POLineRequest línea de orden de compra.
type POLineRequest struct {
	ProductID string          `json:"product_id" validate:"required"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
}

// CreatePurchaseOrderRequest body de POST /api/purchase-orders.
type CreatePurchaseOrderRequest struct {
	SupplierID   string          `json:"supplier_id" validate:"required"`
	WarehouseID  string          `json:"warehouse_id" validate:"required"`
	OrderDate    *time.Time      `json:"order_date,omitempty"`
	ExpectedDate *time.Time      `json:"expected_date,omitempty"`
	Notes        string          `json:"notes"`
	Lines        []POLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// POFromReplenishmentRequest borrador de OC a partir de la lista de reposición.
type POFromReplenishmentRequest struct {
	SupplierID  string   `json:"supplier_id" validate:"required"`
	WarehouseID string   `json:"warehouse_id" validate:"required"`
	ProductIDs  []string `json:"product_ids,omitempty"` // vacío = todas las sugerencias
}

// POLineResponse línea con acumulados recibidos.
type POLineResponse struct {
	ID          string          `json:"id"`
	LineNo      int             `json:"line_no"`
	ProductID   string          `json:"product_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
	ReceivedQty decimal.Decimal `json:"received_qty"`
	AcceptedQty decimal.Decimal `json:"accepted_qty"`
	RejectedQty decimal.Decimal `json:"rejected_qty"`
}

// PurchaseOrderResponse cabecera y líneas.
type PurchaseOrderResponse struct {
	ID           string           `json:"id"`
	CompanyID    string           `json:"company_id"`
	SupplierID   string           `json:"supplier_id"`
	WarehouseID  string           `json:"warehouse_id"`
	Number       string           `json:"number"`
	Status       string           `json:"status"`
	OrderDate    time.Time        `json:"order_date"`
	ExpectedDate *time.Time       `json:"expected_date,omitempty"`
	Notes        string           `json:"notes"`
	Subtotal     decimal.Decimal  `json:"subtotal"`
	TaxTotal     decimal.Decimal  `json:"tax_total"`
	Total        decimal.Decimal  `json:"total"`
	Lines        []POLineResponse `json:"lines"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// PurchaseOrderListResponse lista de órdenes.
type PurchaseOrderListResponse struct {
	Items []PurchaseOrderResponse `json:"items"`
	Page  PageResponse            `json:"page"`
}

// GRNLineRequest línea recibida. UnitCost nil toma el costo de la OC.
type GRNLineRequest struct {
	POLineID       string           `json:"po_line_id" validate:"required"`
	ReceivedQty    decimal.Decimal  `json:"received_qty"`
	AcceptedQty    decimal.Decimal  `json:"accepted_qty"`
	RejectedQty    decimal.Decimal  `json:"rejected_qty"`
	UnitCost       *decimal.Decimal `json:"unit_cost,omitempty"`
	BatchNumber    string           `json:"batch_number"`
	ManufacturedAt *time.Time       `json:"manufactured_at,omitempty"`
	ExpiresAt      *time.Time       `json:"expires_at,omitempty"`
}

// GRNChargeRequest cargo adicional (flete, arancel...).
type GRNChargeRequest struct {
	Type        string          `json:"type" validate:"required"`
	Basis       string          `json:"basis"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

// CreateGRNRequest body de POST /api/grns y /api/grns/validate.
type CreateGRNRequest struct {
	PurchaseOrderID string             `json:"purchase_order_id" validate:"required"`
	WarehouseID     string             `json:"warehouse_id,omitempty"`
	ReceivedAt      *time.Time         `json:"received_at,omitempty"`
	SupplierRef     string             `json:"supplier_ref"`
	Notes           string             `json:"notes"`
	Lines           []GRNLineRequest   `json:"lines" validate:"dive"`
	Charges         []GRNChargeRequest `json:"charges,omitempty" validate:"dive"`
}

// GRNValidationResponse resultado del dry run.
type GRNValidationResponse struct {
	Valid       bool                     `json:"valid"`
	Errors      []domain.Issue           `json:"errors"`
	Warnings    []domain.Issue           `json:"warnings"`
	LandedCosts []procurement.LandedCost `json:"landed_costs"`
}

// GRNLineResponse línea registrada con su costo de internación.
type GRNLineResponse struct {
	ID              string          `json:"id"`
	POLineID        string          `json:"po_line_id"`
	ProductID       string          `json:"product_id"`
	ReceivedQty     decimal.Decimal `json:"received_qty"`
	AcceptedQty     decimal.Decimal `json:"accepted_qty"`
	RejectedQty     decimal.Decimal `json:"rejected_qty"`
	UnitCost        decimal.Decimal `json:"unit_cost"`
	AllocatedCharge decimal.Decimal `json:"allocated_charge"`
	LandedUnitCost  decimal.Decimal `json:"landed_unit_cost"`
	BatchID         *string         `json:"batch_id,omitempty"`
	BatchNumber     string          `json:"batch_number"`
	ManufacturedAt  *time.Time      `json:"manufactured_at,omitempty"`
	ExpiresAt       *time.Time      `json:"expires_at,omitempty"`
}

// GRNChargeResponse cargo registrado.
type GRNChargeResponse struct {
	Type        string          `json:"type"`
	Basis       string          `json:"basis"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

// GRNResponse recepción registrada.
type GRNResponse struct {
	ID              string              `json:"id"`
	PurchaseOrderID string              `json:"purchase_order_id"`
	WarehouseID     string              `json:"warehouse_id"`
	Number          string              `json:"number"`
	SupplierRef     string              `json:"supplier_ref"`
	ReceivedAt      time.Time           `json:"received_at"`
	Notes           string              `json:"notes"`
	TotalValue      decimal.Decimal     `json:"total_value"`
	TotalCharges    decimal.Decimal     `json:"total_charges"`
	Warnings        []string            `json:"warnings"`
	Lines           []GRNLineResponse   `json:"lines"`
	Charges         []GRNChargeResponse `json:"charges"`
	POStatus        string              `json:"po_status,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
}

// GRNListResponse recepciones.
type GRNListResponse struct {
	Items []GRNResponse `json:"items"`
	Page  PageResponse  `json:"page"`
}
