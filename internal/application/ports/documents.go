package ports

import (
	"context"

	"github.com/jhoicas/erp-api/internal/domain/entity"
)

// InvoiceDocumentLine detalle de factura con los datos del producto para impresión.
type InvoiceDocumentLine struct {
	entity.InvoiceDetail
	SKU         string
	ProductName string
}

// InvoiceDocument todo lo que necesita la representación gráfica de una factura.
type InvoiceDocument struct {
	Invoice *entity.Invoice
	Company *entity.Company
	Client  *entity.Client
	Lines   []InvoiceDocumentLine
}

// ReceiptDocumentLine línea de recepción con los datos del producto.
type ReceiptDocumentLine struct {
	entity.GoodsReceiptLine
	SKU         string
	ProductName string
}

// ReceiptDocument nota de recepción (GRN) para imprimir.
type ReceiptDocument struct {
	Receipt       *entity.GoodsReceipt
	PurchaseOrder *entity.PurchaseOrder
	Company       *entity.Company
	Supplier      *entity.Supplier
	Warehouse     *entity.Warehouse
	Lines         []ReceiptDocumentLine
}

// PDFGenerator genera los PDF de documentos comerciales.
type PDFGenerator interface {
	InvoicePDF(ctx context.Context, doc InvoiceDocument) ([]byte, error)
	ReceiptPDF(ctx context.Context, doc ReceiptDocument) ([]byte, error)
}
