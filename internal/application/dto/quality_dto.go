package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// InspectionRequest resultado de inspección de un lote en cuarentena.
type InspectionRequest struct {
	BatchID   string          `json:"batch_id" validate:"required"`
	PassedQty decimal.Decimal `json:"passed_qty"`
	FailedQty decimal.Decimal `json:"failed_qty"`
	Notes     string          `json:"notes"`
}

// InspectionResponse inspección registrada y estado final del lote.
type InspectionResponse struct {
	ID          string          `json:"id"`
	BatchID     string          `json:"batch_id"`
	InspectorID string          `json:"inspector_id"`
	PassedQty   decimal.Decimal `json:"passed_qty"`
	FailedQty   decimal.Decimal `json:"failed_qty"`
	Result      string          `json:"result"`
	Notes       string          `json:"notes"`
	InspectedAt time.Time       `json:"inspected_at"`
	BatchStatus string          `json:"batch_status,omitempty"`
}
