package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Resultados de inspección.
const (
	InspectionPassed  = "PASSED"
	InspectionFailed  = "FAILED"
	InspectionPartial = "PARTIAL"
)

// QualityInspection inspección sobre un lote en cuarentena.
type QualityInspection struct {
	ID          string
	CompanyID   string
	BatchID     string
	InspectorID string
	PassedQty   decimal.Decimal
	FailedQty   decimal.Decimal
	Result      string
	Notes       string
	InspectedAt time.Time
}
