package pdf

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/jhoicas/erp-api/internal/application/ports"
	"github.com/jhoicas/erp-api/internal/domain/entity"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "0", formatMoney(decimal.Zero, 0))
	assert.Equal(t, "999", formatMoney(d("999"), 0))
	assert.Equal(t, "25.000", formatMoney(d("25000"), 0))
	assert.Equal(t, "1.000.000", formatMoney(d("1000000"), 0))
	assert.Equal(t, "-250.000", formatMoney(d("-250000"), 0))
	assert.Equal(t, "1.234.567,50", formatMoney(d("1234567.5"), 2))
	assert.Equal(t, "0", formatMoney(d("-0.2"), 0))
}

func company() *entity.Company {
	return &entity.Company{Name: "Panadería Central", NIT: "900123456-7", Address: "Cra 1 # 2-3"}
}

func TestInvoicePDF(t *testing.T) {
	inv := &entity.Invoice{
		Number: "FV-000001", Date: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		NetTotal: d("27000"), TaxTotal: d("5130"), GrandTotal: d("32130"),
	}
	out, err := NewMarotoPDFGenerator().InvoicePDF(context.Background(), ports.InvoiceDocument{
		Invoice: inv,
		Company: company(),
		Client:  &entity.Client{Name: "Tienda La 14", TaxID: "800111222"},
		Lines: []ports.InvoiceDocumentLine{{
			InvoiceDetail: entity.InvoiceDetail{Quantity: d("3"), UnitPrice: d("10000"), DiscountPct: d("10"), TaxRate: d("19"), Subtotal: d("27000")},
			SKU:           "PAN-1",
			ProductName:   "Pan tajado",
		}},
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestReceiptPDF(t *testing.T) {
	grn := &entity.GoodsReceipt{
		Number: "GRN-000001", ReceivedAt: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		TotalValue: d("1000"), TotalCharges: d("50"),
		Charges:  []entity.ReceiptCharge{{Type: entity.ChargeFreight, Basis: entity.BasisValue, Amount: d("50")}},
		Warnings: []string{"PRICE_VARIANCE"},
	}
	out, err := NewMarotoPDFGenerator().ReceiptPDF(context.Background(), ports.ReceiptDocument{
		Receipt:       grn,
		PurchaseOrder: &entity.PurchaseOrder{Number: "PO-000001"},
		Company:       company(),
		Supplier:      &entity.Supplier{Name: "Molinos SA"},
		Lines: []ports.ReceiptDocumentLine{{
			GoodsReceiptLine: entity.GoodsReceiptLine{ReceivedQty: d("10"), AcceptedQty: d("10"), UnitCost: d("100"), LandedUnitCost: d("105"), BatchNumber: "L-1"},
			ProductName:      "Harina",
		}},
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}
