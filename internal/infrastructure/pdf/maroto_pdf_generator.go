// Package pdf genera los documentos imprimibles (factura de venta y nota de recepción).
//
// Layout común de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Razón Social + NIT  │  Documento + N° + Fecha       │
//	│  ─────────────────────────────────────────────────────────  │
//	│  EMISOR: Dirección / Tel / Email                             │
//	│  TERCERO: cliente o proveedor                                │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA de líneas                                             │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES                                                     │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/erp-api/internal/application/ports"
	"github.com/jhoicas/erp-api/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
	colorWarn    = &props.Color{Red: 170, Green: 90, Blue: 0}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoPDFGenerator implementa ports.PDFGenerator usando Maroto v2.
type MarotoPDFGenerator struct{}

var _ ports.PDFGenerator = (*MarotoPDFGenerator)(nil)

// NewMarotoPDFGenerator construye el generador.
func NewMarotoPDFGenerator() *MarotoPDFGenerator { return &MarotoPDFGenerator{} }

func newDocument(title, author string) core.Maroto {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(title, true).
		WithAuthor(author, true).
		Build()
	return maroto.New(cfg)
}

// InvoicePDF genera la factura de venta.
func (g *MarotoPDFGenerator) InvoicePDF(_ context.Context, doc ports.InvoiceDocument) ([]byte, error) {
	inv, company := doc.Invoice, doc.Company
	m := newDocument("Factura de venta "+inv.Number, company.Name)

	m.AddRows(headerRow(company, "FACTURA DE VENTA", inv.Number, inv.Date.Format("02/01/2006")))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(emisorRow(company))
	if doc.Client != nil {
		m.AddRows(partyRow("CLIENTE", doc.Client.Name, doc.Client.TaxID, doc.Client.Email, doc.Client.Phone))
	}
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow([]column{
		{"Cant.", 1, align.Center},
		{"Descripción", 5, align.Left},
		{"Precio Unit.", 2, align.Right},
		{"Desc%", 1, align.Center},
		{"IVA%", 1, align.Center},
		{"Subtotal", 2, align.Right},
	}))
	for _, l := range doc.Lines {
		m.AddRows(detailRow([]cell{
			{formatQty(l.Quantity), 1, align.Center},
			{describe(l.SKU, l.ProductName), 5, align.Left},
			{"$" + formatMoney(l.UnitPrice, 0), 2, align.Right},
			{l.DiscountPct.String(), 1, align.Center},
			{l.TaxRate.String() + "%", 1, align.Center},
			{"$" + formatMoney(l.Subtotal, 0), 2, align.Right},
		}))
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow([]total{
		{"Subtotal neto:", inv.NetTotal},
		{"Descuentos:", inv.DiscountTotal},
		{"Impuestos:", inv.TaxTotal},
	}, total{"TOTAL A PAGAR:", inv.GrandTotal}))

	return generate(m)
}

// ReceiptPDF genera la nota de recepción con costos de internación y advertencias aceptadas.
func (g *MarotoPDFGenerator) ReceiptPDF(_ context.Context, doc ports.ReceiptDocument) ([]byte, error) {
	grn, company := doc.Receipt, doc.Company
	m := newDocument("Recepción "+grn.Number, company.Name)

	m.AddRows(headerRow(company, "NOTA DE RECEPCIÓN", grn.Number, grn.ReceivedAt.Format("02/01/2006")))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	if doc.Supplier != nil {
		m.AddRows(partyRow("PROVEEDOR", doc.Supplier.Name, doc.Supplier.TaxID, doc.Supplier.Email, doc.Supplier.Phone))
	}
	m.AddRows(referenceRow(doc))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow([]column{
		{"Producto", 3, align.Left},
		{"Lote", 2, align.Left},
		{"Recib.", 1, align.Center},
		{"Acept.", 1, align.Center},
		{"Rech.", 1, align.Center},
		{"Costo", 2, align.Right},
		{"Costo int.", 2, align.Right},
	}))
	for _, l := range doc.Lines {
		m.AddRows(detailRow([]cell{
			{describe(l.SKU, l.ProductName), 3, align.Left},
			{nonEmpty(l.BatchNumber, "—"), 2, align.Left},
			{formatQty(l.ReceivedQty), 1, align.Center},
			{formatQty(l.AcceptedQty), 1, align.Center},
			{formatQty(l.RejectedQty), 1, align.Center},
			{"$" + formatMoney(l.UnitCost, 2), 2, align.Right},
			{"$" + formatMoney(l.LandedUnitCost, 2), 2, align.Right},
		}))
	}

	if len(grn.Charges) > 0 {
		m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
		m.AddRows(sectionTitle("CARGOS ADICIONALES"))
		for _, c := range grn.Charges {
			m.AddRows(detailRow([]cell{
				{c.Type, 3, align.Left},
				{"Base: " + c.Basis, 3, align.Left},
				{nonEmpty(c.Description, ""), 4, align.Left},
				{"$" + formatMoney(c.Amount, 2), 2, align.Right},
			}))
		}
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow([]total{
		{"Valor mercancía:", grn.TotalValue},
		{"Cargos:", grn.TotalCharges},
	}, total{"COSTO TOTAL:", grn.TotalValue.Add(grn.TotalCharges)}))

	if len(grn.Warnings) > 0 {
		m.AddRows(line.NewRow(3))
		m.AddRows(row.New(8).Add(col.New(12).Add(
			text.New("Advertencias aceptadas: "+strings.Join(grn.Warnings, ", "), props.Text{
				Size: 8, Color: colorWarn, Top: 2,
			}),
		)))
	}

	return generate(m)
}

func generate(m core.Maroto) ([]byte, error) {
	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: Razón social + NIT (izq) y tipo de documento + número + fecha (der).
func headerRow(company *entity.Company, title, number, date string) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New(company.Name, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("NIT: "+company.NIT, props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New(title, props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New(number, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Fecha: "+date, props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

// emisorRow: datos de la empresa.
func emisorRow(company *entity.Company) core.Row {
	return row.New(12).Add(
		col.New(12).Add(
			text.New("DATOS DEL EMISOR", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("Dirección: %s   |   Tel: %s   |   Email: %s",
				nonEmpty(company.Address, "—"),
				nonEmpty(company.Phone, "—"),
				nonEmpty(company.Email, "—"),
			), props.Text{Size: 8, Top: 7, Color: colorGray}),
		),
	)
}

// partyRow: cliente o proveedor.
func partyRow(label, name, taxID, email, phone string) core.Row {
	return row.New(14).Add(
		col.New(12).Add(
			text.New(label, props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(name, props.Text{
				Style: fontstyle.Bold, Size: 10, Top: 6,
			}),
			text.New(fmt.Sprintf("NIT/CC: %s   |   Email: %s   |   Tel: %s",
				nonEmpty(taxID, "—"),
				nonEmpty(email, "—"),
				nonEmpty(phone, "—"),
			), props.Text{Size: 8, Top: 12, Color: colorGray}),
		),
	)
}

// referenceRow: OC, bodega y remisión del proveedor.
func referenceRow(doc ports.ReceiptDocument) core.Row {
	po, wh := "—", "—"
	if doc.PurchaseOrder != nil {
		po = doc.PurchaseOrder.Number
	}
	if doc.Warehouse != nil {
		wh = doc.Warehouse.Code + " " + doc.Warehouse.Name
	}
	return row.New(8).Add(col.New(12).Add(
		text.New(fmt.Sprintf("Orden de compra: %s   |   Bodega: %s   |   Remisión: %s",
			po, wh, nonEmpty(doc.Receipt.SupplierRef, "—"),
		), props.Text{Size: 8, Top: 2, Color: colorGray}),
	))
}

func sectionTitle(s string) core.Row {
	return row.New(6).Add(col.New(12).Add(
		text.New(s, props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
	))
}

type column struct {
	label string
	size  int
	align align.Type
}

type cell struct {
	value string
	size  int
	align align.Type
}

// tableHeaderRow: cabecera de la tabla de detalles.
func tableHeaderRow(cols []column) core.Row {
	out := make([]core.Col, 0, len(cols))
	for _, c := range cols {
		out = append(out, col.New(c.size).Add(text.New(c.label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: c.align,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		})))
	}
	return row.New(8).Add(out...).WithStyle(&props.Cell{BackgroundColor: colorPrimary})
}

func detailRow(cells []cell) core.Row {
	out := make([]core.Col, 0, len(cells))
	for _, c := range cells {
		out = append(out, col.New(c.size).Add(text.New(c.value, props.Text{
			Size: 8, Align: c.align, Top: 1, Left: 1, Right: 1,
		})))
	}
	return row.New(7).Add(out...)
}

type total struct {
	label string
	value decimal.Decimal
}

// totalsRow: bloque de totales alineado a la derecha; grand va resaltado al final.
func totalsRow(items []total, grand total) core.Row {
	labels := make([]core.Component, 0, len(items)+1)
	values := make([]core.Component, 0, len(items)+1)
	for _, it := range items {
		labels = append(labels, text.New(it.label, props.Text{
			Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2, Top: float64(len(labels) * 5),
		}))
		values = append(values, text.New("$"+formatMoney(it.value, 0), props.Text{
			Size: 9, Align: align.Right, Right: 1, Top: float64(len(values) * 5),
		}))
	}
	top := float64(len(items) * 5)
	labels = append(labels, text.New(grand.label, props.Text{
		Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 2, Top: top,
	}))
	values = append(values, text.New("$"+formatMoney(grand.value, 0), props.Text{
		Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 1, Top: top,
	}))

	return row.New(top+8).Add(
		col.New(3),
		col.New(3).Add(labels...),
		col.New(3).Add(values...),
		col.New(3),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

func describe(sku, name string) string {
	if sku == "" {
		return name
	}
	return sku + " · " + name
}

// formatQty cantidad sin ceros decimales sobrantes.
func formatQty(d decimal.Decimal) string {
	return d.String()
}

// formatMoney redondea a places decimales con puntos de miles y coma decimal.
// Ej: 1234567.5 (2) → "1.234.567,50"; -25000 (0) → "-25.000"
func formatMoney(d decimal.Decimal, places int32) string {
	s := d.Abs().StringFixed(places)
	intPart, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, frac = s[:i], s[i+1:]
	}
	n := len(intPart)
	buf := make([]byte, 0, n+n/3+len(frac)+2)
	if d.IsNegative() && !d.Round(places).IsZero() {
		buf = append(buf, '-')
	}
	for i, c := range []byte(intPart) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	if frac != "" {
		buf = append(buf, ',')
		buf = append(buf, frac...)
	}
	return string(buf)
}
