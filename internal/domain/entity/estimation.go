package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una cotización.
const (
	EstimationStatusDraft    = "DRAFT"
	EstimationStatusSent     = "SENT"
	EstimationStatusAccepted = "ACCEPTED"
	EstimationStatusRejected = "REJECTED"
	EstimationStatusInvoiced = "INVOICED"
)

// Estimation cotización a un cliente; al aceptarse puede convertirse en factura.
type Estimation struct {
	ID            string
	CompanyID     string
	ClientID      string
	WarehouseID   string
	Number        string
	Status        string
	IssueDate     time.Time
	ValidUntil    time.Time
	Notes         string
	Subtotal      decimal.Decimal
	DiscountTotal decimal.Decimal
	TaxTotal      decimal.Decimal
	Total         decimal.Decimal
	InvoiceID     *string
	Lines         []EstimationLine
	CreatedBy     string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// EstimationLine línea de cotización.
type EstimationLine struct {
	ID           string
	EstimationID string
	ProductID    string
	Quantity     decimal.Decimal
	UnitPrice    decimal.Decimal
	DiscountPct  decimal.Decimal
	TaxRate      decimal.Decimal
	LineTotal    decimal.Decimal
}

// IsExpired la cotización ya no es válida a la fecha indicada.
func (e *Estimation) IsExpired(now time.Time) bool {
	return now.After(e.ValidUntil)
}

// CanTransition valida la máquina de estados DRAFT -> SENT -> ACCEPTED|REJECTED -> (INVOICED).
func (e *Estimation) CanTransition(to string) bool {
	switch e.Status {
	case EstimationStatusDraft:
		return to == EstimationStatusSent || to == EstimationStatusRejected
	case EstimationStatusSent:
		return to == EstimationStatusAccepted || to == EstimationStatusRejected
	case EstimationStatusAccepted:
		return to == EstimationStatusInvoiced
	}
	return false
}
