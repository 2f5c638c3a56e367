package procurement

import (
	"errors"
	"testing"
	"time"

	"github.com/jhoicas/erp-api/internal/domain"
	"github.com/jhoicas/erp-api/internal/domain/entity"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fixtures
// ──────────────────────────────────────────────────────────────────────────────

var now = time.Date(2026, 5, 20, 10, 0, 0, 0, time.UTC)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func ptr[T any](v T) *T { return &v }

func testPO() *entity.PurchaseOrder {
	return &entity.PurchaseOrder{
		ID:          "po-1",
		Number:      "PO-000001",
		Status:      entity.POStatusConfirmed,
		WarehouseID: "wh-1",
		OrderDate:   now.AddDate(0, 0, -10),
		Lines: []entity.PurchaseOrderLine{
			{ID: "l1", LineNo: 1, ProductID: "p1", Quantity: d("100"), UnitCost: d("10")},
			{ID: "l2", LineNo: 2, ProductID: "p2", Quantity: d("50"), UnitCost: d("4")},
		},
	}
}

func testProducts() map[string]*entity.Product {
	return map[string]*entity.Product{
		"p1": {ID: "p1", SKU: "TORN-01"},
		"p2": {ID: "p2", SKU: "LECHE-1L", TrackBatches: true, ShelfLifeDays: 30},
	}
}

func line(id, received, accepted, rejected string) ReceiptLineInput {
	return ReceiptLineInput{POLineID: id, ReceivedQty: d(received), AcceptedQty: d(accepted), RejectedQty: d(rejected)}
}

func codes(issues []domain.Issue) []string {
	out := []string{}
	for _, is := range issues {
		out = append(out, is.Code)
	}
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// Casos válidos
// ──────────────────────────────────────────────────────────────────────────────

func TestValidateReceipt_Valida(t *testing.T) {
	l2 := line("l2", "50", "50", "0")
	l2.BatchNumber = "B-001"
	in := ReceiptInput{
		WarehouseID: "wh-1",
		ReceivedAt:  now,
		Lines:       []ReceiptLineInput{line("l1", "60", "58", "2"), l2},
		Charges:     []ChargeInput{{Type: "freight", Basis: "value", Amount: d("100")}},
	}

	res := ValidateReceipt(testPO(), testProducts(), in, DefaultPolicy(), now)

	require.True(t, res.Valid(), "errores: %v", res.Errors)
	assert.Empty(t, res.Warnings)
	require.Len(t, res.Lines, 2)
	assert.True(t, res.Lines[0].UnitCost.Equal(d("10")))
	assert.Nil(t, res.Lines[0].ExpiresAt)
	require.NotNil(t, res.Lines[1].ExpiresAt)
	assert.Equal(t, now.AddDate(0, 0, 30), *res.Lines[1].ExpiresAt)
	require.Len(t, res.Charges, 1)
	assert.Equal(t, entity.ChargeFreight, res.Charges[0].Type)
	assert.Equal(t, entity.BasisValue, res.Charges[0].Basis)
	assert.NoError(t, res.Err())
}

func TestValidateReceipt_VencimientoDesdeFabricacion(t *testing.T) {
	l2 := line("l2", "10", "10", "0")
	l2.BatchNumber = "B-002"
	l2.ManufacturedAt = ptr(now.AddDate(0, 0, -5))

	res := ValidateReceipt(testPO(), testProducts(), ReceiptInput{ReceivedAt: now, Lines: []ReceiptLineInput{l2}}, DefaultPolicy(), now)
	require.True(t, res.Valid(), "errores: %v", res.Errors)
	assert.Equal(t, now.AddDate(0, 0, 25), *res.Lines[0].ExpiresAt)
}

// ──────────────────────────────────────────────────────────────────────────────
// Errores de cabecera y estructura
// ──────────────────────────────────────────────────────────────────────────────

func TestValidateReceipt_OCNoRecibible(t *testing.T) {
	po := testPO()
	po.Status = entity.POStatusDraft
	res := ValidateReceipt(po, testProducts(), ReceiptInput{Lines: []ReceiptLineInput{line("l1", "1", "1", "0")}}, DefaultPolicy(), now)
	assert.Equal(t, []string{CodePONotReceivable}, codes(res.Errors))

	err := res.Err()
	assert.True(t, errors.Is(err, domain.ErrReceiptRejected))
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestValidateReceipt_SinLineas(t *testing.T) {
	res := ValidateReceipt(testPO(), testProducts(), ReceiptInput{}, DefaultPolicy(), now)
	assert.Equal(t, []string{CodeEmptyReceipt}, codes(res.Errors))
}

func TestValidateReceipt_LineaDuplicadaYAjena(t *testing.T) {
	in := ReceiptInput{Lines: []ReceiptLineInput{
		line("l1", "1", "1", "0"),
		line("l1", "1", "1", "0"),
		line("otra", "1", "1", "0"),
	}}
	res := ValidateReceipt(testPO(), testProducts(), in, DefaultPolicy(), now)
	assert.Equal(t, []string{CodeDuplicateLine, CodeLineNotInPO}, codes(res.Errors))
	assert.Len(t, res.Lines, 1)
}

func TestValidateReceipt_BodegaDistinta(t *testing.T) {
	in := ReceiptInput{WarehouseID: "wh-2", Lines: []ReceiptLineInput{line("l1", "1", "1", "0")}}
	res := ValidateReceipt(testPO(), testProducts(), in, DefaultPolicy(), now)
	assert.Equal(t, []string{CodeWarehouseMismatch}, codes(res.Errors))
}

// ──────────────────────────────────────────────────────────────────────────────
// Cantidades y tolerancias
// ──────────────────────────────────────────────────────────────────────────────

func TestValidateReceipt_Cantidades(t *testing.T) {
	tests := []struct {
		name string
		in   ReceiptLineInput
		code string
	}{
		{"recibido cero", line("l1", "0", "0", "0"), CodeInvalidQuantity},
		{"rechazado negativo", line("l1", "5", "6", "-1"), CodeInvalidQuantity},
		{"no cuadra", line("l1", "10", "8", "1"), CodeQtySplitMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ValidateReceipt(testPO(), testProducts(), ReceiptInput{Lines: []ReceiptLineInput{tt.in}}, DefaultPolicy(), now)
			assert.Equal(t, []string{tt.code}, codes(res.Errors))
			assert.Empty(t, res.Lines)
		})
	}
}

func TestValidateReceipt_SobreRecepcionAcumulada(t *testing.T) {
	po := testPO()
	po.Lines[0].ReceivedQty = d("90")
	po.Lines[0].AcceptedQty = d("90")

	// 90 + 14 = 104 <= 105: advertencia
	res := ValidateReceipt(po, testProducts(), ReceiptInput{Lines: []ReceiptLineInput{line("l1", "14", "14", "0")}}, DefaultPolicy(), now)
	assert.True(t, res.Valid())
	assert.Equal(t, []string{CodeOverReceiptTolerated}, codes(res.Warnings))

	// 90 + 16 = 106 > 105: error
	res = ValidateReceipt(po, testProducts(), ReceiptInput{Lines: []ReceiptLineInput{line("l1", "16", "16", "0")}}, DefaultPolicy(), now)
	assert.Equal(t, []string{CodeOverReceipt}, codes(res.Errors))

	// lo rechazado no cuenta contra lo ordenado
	res = ValidateReceipt(po, testProducts(), ReceiptInput{Lines: []ReceiptLineInput{line("l1", "30", "10", "20")}}, DefaultPolicy(), now)
	assert.True(t, res.Valid())
}

func TestValidateReceipt_VariacionDePrecio(t *testing.T) {
	l := line("l1", "10", "10", "0")
	l.UnitCost = ptr(d("11.5"))
	in := ReceiptInput{Lines: []ReceiptLineInput{l}}

	res := ValidateReceipt(testPO(), testProducts(), in, DefaultPolicy(), now)
	assert.True(t, res.Valid())
	assert.Equal(t, []string{CodePriceVariance}, codes(res.Warnings))
	assert.True(t, res.Lines[0].UnitCost.Equal(d("11.5")))

	strict := DefaultPolicy()
	strict.StrictPrice = true
	res = ValidateReceipt(testPO(), testProducts(), in, strict, now)
	assert.Equal(t, []string{CodePriceVariance}, codes(res.Errors))

	l.UnitCost = ptr(d("10.5"))
	res = ValidateReceipt(testPO(), testProducts(), ReceiptInput{Lines: []ReceiptLineInput{l}}, strict, now)
	assert.True(t, res.Valid())
	assert.Empty(t, res.Warnings)
}

// ──────────────────────────────────────────────────────────────────────────────
// Lotes y fechas
// ──────────────────────────────────────────────────────────────────────────────

func TestValidateReceipt_LoteYFechas(t *testing.T) {
	sinLote := line("l2", "5", "5", "0")

	fechasInvertidas := line("l2", "5", "5", "0")
	fechasInvertidas.BatchNumber = "B"
	fechasInvertidas.ManufacturedAt = ptr(now.AddDate(0, 0, -5))
	fechasInvertidas.ExpiresAt = ptr(now.AddDate(0, 0, -10))

	vencido := line("l2", "5", "5", "0")
	vencido.BatchNumber = "B"
	vencido.ExpiresAt = ptr(now.AddDate(0, 0, -1))

	todoRechazado := line("l2", "5", "0", "5")

	vencidoHoy := line("l2", "5", "5", "0")
	vencidoHoy.BatchNumber = "B"
	vencidoHoy.ExpiresAt = ptr(now.AddDate(0, 0, -10))

	vigenteHoy := line("l2", "5", "5", "0")
	vigenteHoy.BatchNumber = "B"
	vigenteHoy.ExpiresAt = ptr(now.AddDate(0, 0, 10))

	tests := []struct {
		name       string
		in         ReceiptLineInput
		receivedAt time.Time
		want       []string
	}{
		{"lote obligatorio", sinLote, now, []string{CodeBatchRequired}},
		{"vencimiento antes de fabricación", fechasInvertidas, now, []string{CodeInvalidDates}},
		{"llega vencido", vencido, now, []string{CodeExpiredOnReceipt}},
		{"rechazo total no exige lote", todoRechazado, now, []string{}},
		{"recepción con fecha pasada y lote ya vencido", vencidoHoy, now.AddDate(0, -2, 0), []string{CodeExpiredOnReceipt}},
		{"recepción con fecha pasada y lote vigente", vigenteHoy, now.AddDate(0, -2, 0), []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			po := testPO()
			po.OrderDate = tt.receivedAt.AddDate(0, 0, -10)
			in := ReceiptInput{ReceivedAt: tt.receivedAt, Lines: []ReceiptLineInput{tt.in}}
			res := ValidateReceipt(po, testProducts(), in, DefaultPolicy(), now)
			assert.Equal(t, tt.want, codes(res.Errors))
		})
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Cargos
// ──────────────────────────────────────────────────────────────────────────────

func TestValidateReceipt_Cargos(t *testing.T) {
	in := ReceiptInput{
		Lines: []ReceiptLineInput{line("l1", "10", "10", "0")},
		Charges: []ChargeInput{
			{Type: "FREIGHT", Basis: "WEIGHT", Amount: d("10")},
			{Type: "BRIBE", Amount: d("1")},
			{Type: "DUTY", Amount: d("-1")},
			{Type: "DUTY", Basis: "VOLUME", Amount: d("1")},
		},
	}
	res := ValidateReceipt(testPO(), testProducts(), in, DefaultPolicy(), now)
	assert.Equal(t, []string{CodeInvalidCharge, CodeInvalidCharge, CodeInvalidCharge}, codes(res.Errors))
	require.Len(t, res.Charges, 1)
	assert.Equal(t, entity.BasisWeight, res.Charges[0].Basis)
}

func TestValidateReceipt_CargoSinCantidadAceptada(t *testing.T) {
	in := ReceiptInput{
		Lines:   []ReceiptLineInput{line("l1", "10", "0", "10")},
		Charges: []ChargeInput{{Type: "FREIGHT", Amount: d("50")}},
	}
	res := ValidateReceipt(testPO(), testProducts(), in, DefaultPolicy(), now)
	assert.Equal(t, []string{CodeInvalidCharge}, codes(res.Errors))
}
