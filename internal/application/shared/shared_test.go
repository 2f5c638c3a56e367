package shared

import (
	"context"
	"testing"

	"github.com/jhoicas/erp-api/internal/domain/entity"
	"github.com/jhoicas/erp-api/internal/testutil/memstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextNumber(t *testing.T) {
	s := memstore.New()
	ctx := context.Background()

	n1, err := NextNumber(ctx, s, "c1", DocPurchaseOrder)
	require.NoError(t, err)
	n2, err := NextNumber(ctx, s, "c1", DocPurchaseOrder)
	require.NoError(t, err)
	other, err := NextNumber(ctx, s, "c2", DocPurchaseOrder)
	require.NoError(t, err)

	assert.Equal(t, "PO-000001", n1)
	assert.Equal(t, "PO-000002", n2)
	assert.Equal(t, "PO-000001", other)
}

func TestRecord(t *testing.T) {
	s := memstore.New()
	type estado struct {
		Status string `json:"status"`
	}
	var nilPtr *estado
	err := Record(context.Background(), s, AuditEntry{
		CompanyID:  "c1",
		UserID:     "u1",
		EntityType: "purchase_order",
		EntityID:   "po1",
		Action:     entity.AuditStatus,
		Before:     nilPtr,
		After:      estado{Status: "CONFIRMED"},
	})
	require.NoError(t, err)

	logs := s.AuditLogs()
	require.Len(t, logs, 1)
	assert.Nil(t, logs[0].Before)
	assert.JSONEq(t, `{"status":"CONFIRMED"}`, string(logs[0].After))
	assert.NotEmpty(t, logs[0].ID)
	assert.False(t, logs[0].CreatedAt.IsZero())
}
