package dto

import (
	"time"

	"github.com/jhoicas/erp-api/internal/domain/inventory"
	"github.com/shopspring/decimal"
)

// SalesLineRequest línea de cotización o factura. UnitPrice nil toma el precio del producto.
type SalesLineRequest struct {
	ProductID   string                  `json:"product_id" validate:"required"`
	Quantity    decimal.Decimal         `json:"quantity"`
	UnitPrice   *decimal.Decimal        `json:"unit_price,omitempty"`
	DiscountPct decimal.Decimal         `json:"discount_pct"`
	Batches     []SpecifiedBatchRequest `json:"batches,omitempty" validate:"dive"` // estrategia SPECIFIED
}

// CreateEstimationRequest body de POST /api/estimations.
type CreateEstimationRequest struct {
	ClientID    string             `json:"client_id" validate:"required"`
	WarehouseID string             `json:"warehouse_id" validate:"required"`
	ValidUntil  *time.Time         `json:"valid_until,omitempty"`
	Notes       string             `json:"notes"`
	Lines       []SalesLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// EstimationLineResponse línea de cotización.
type EstimationLineResponse struct {
	ProductID   string          `json:"product_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	DiscountPct decimal.Decimal `json:"discount_pct"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// EstimationResponse cotización.
type EstimationResponse struct {
	ID            string                   `json:"id"`
	ClientID      string                   `json:"client_id"`
	WarehouseID   string                   `json:"warehouse_id"`
	Number        string                   `json:"number"`
	Status        string                   `json:"status"`
	Expired       bool                     `json:"expired"`
	IssueDate     time.Time                `json:"issue_date"`
	ValidUntil    time.Time                `json:"valid_until"`
	Notes         string                   `json:"notes"`
	Subtotal      decimal.Decimal          `json:"subtotal"`
	DiscountTotal decimal.Decimal          `json:"discount_total"`
	TaxTotal      decimal.Decimal          `json:"tax_total"`
	Total         decimal.Decimal          `json:"total"`
	InvoiceID     *string                  `json:"invoice_id,omitempty"`
	Lines         []EstimationLineResponse `json:"lines"`
	CreatedAt     time.Time                `json:"created_at"`
}

// EstimationListResponse cotizaciones.
type EstimationListResponse struct {
	Items []EstimationResponse `json:"items"`
	Page  PageResponse         `json:"page"`
}

// ConvertEstimationRequest opciones de asignación al facturar una cotización.
type ConvertEstimationRequest struct {
	Strategy string `json:"strategy" validate:"omitempty,oneof=FIFO FEFO SMART fifo fefo smart"`
}

// CreateInvoiceRequest body de POST /api/invoices.
type CreateInvoiceRequest struct {
	ClientID    string             `json:"client_id" validate:"required"`
	WarehouseID string             `json:"warehouse_id" validate:"required"`
	Strategy    string             `json:"strategy" validate:"omitempty,oneof=FIFO FEFO SPECIFIED SMART fifo fefo specified smart"`
	Lines       []SalesLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// InvoiceLineResponse línea facturada con lotes consumidos.
type InvoiceLineResponse struct {
	ProductID   string                `json:"product_id"`
	Quantity    decimal.Decimal       `json:"quantity"`
	UnitPrice   decimal.Decimal       `json:"unit_price"`
	DiscountPct decimal.Decimal       `json:"discount_pct"`
	TaxRate     decimal.Decimal       `json:"tax_rate"`
	Subtotal    decimal.Decimal       `json:"subtotal"`
	CostTotal   decimal.Decimal       `json:"cost_total"`
	Allocations []inventory.Deduction `json:"allocations"`
}

// InvoiceResponse factura con costo y margen.
type InvoiceResponse struct {
	ID            string                `json:"id"`
	ClientID      string                `json:"client_id"`
	WarehouseID   string                `json:"warehouse_id"`
	EstimationID  *string               `json:"estimation_id,omitempty"`
	Number        string                `json:"number"`
	Date          time.Time             `json:"date"`
	Status        string                `json:"status"`
	NetTotal      decimal.Decimal       `json:"net_total"`
	DiscountTotal decimal.Decimal       `json:"discount_total"`
	TaxTotal      decimal.Decimal       `json:"tax_total"`
	GrandTotal    decimal.Decimal       `json:"grand_total"`
	CostTotal     decimal.Decimal       `json:"cost_total"`
	GrossMargin   decimal.Decimal       `json:"gross_margin"`
	Lines         []InvoiceLineResponse `json:"lines"`
	CreatedAt     time.Time             `json:"created_at"`
}

// InvoiceListResponse facturas.
type InvoiceListResponse struct {
	Items []InvoiceResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
