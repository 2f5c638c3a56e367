package shared

import (
	"context"
	"fmt"

	"github.com/jhoicas/erp-api/internal/domain/repository"
)

// Prefijos de consecutivos por tipo de documento.
const (
	DocPurchaseOrder = "PO"
	DocGoodsReceipt  = "GRN"
	DocEstimation    = "EST"
	DocInvoice       = "INV"
	DocWorkOrder     = "WO"
)

// NextNumber toma el siguiente consecutivo y lo formatea como PO-000001.
func NextNumber(ctx context.Context, s repository.Store, companyID, docType string) (string, error) {
	n, err := s.Sequences().Next(ctx, companyID, docType)
	if err != nil {
		return "", fmt.Errorf("consecutivo %s: %w", docType, err)
	}
	return fmt.Sprintf("%s-%06d", docType, n), nil
}
