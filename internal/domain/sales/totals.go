// Package sales calcula totales de cotizaciones y facturas.
package sales

import (
	"fmt"

	"github.com/jhoicas/erp-api/internal/domain"
	"github.com/shopspring/decimal"
)

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
)

// LineInput cantidad, precio, descuento (%) y tasa de impuesto (19 o 0.19).
type LineInput struct {
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	DiscountPct decimal.Decimal
	TaxRate     decimal.Decimal
}

// LineTotals importes de una línea, redondeados a 2 decimales.
type LineTotals struct {
	Gross    decimal.Decimal `json:"gross"`
	Discount decimal.Decimal `json:"discount"`
	Net      decimal.Decimal `json:"net"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

// Totals suma de las líneas.
type Totals struct {
	Subtotal      decimal.Decimal `json:"subtotal"`
	DiscountTotal decimal.Decimal `json:"discount_total"`
	NetTotal      decimal.Decimal `json:"net_total"`
	TaxTotal      decimal.Decimal `json:"tax_total"`
	GrandTotal    decimal.Decimal `json:"grand_total"`
	Lines         []LineTotals    `json:"lines"`
}

// ComputeTotals bruto = cantidad·precio; descuento = bruto·%; neto = bruto − descuento;
// impuesto = neto·tasa; cada importe a 2 decimales.
func ComputeTotals(lines []LineInput) (Totals, error) {
	var issues []domain.Issue
	t := Totals{Lines: make([]LineTotals, 0, len(lines))}
	for i, l := range lines {
		field := fmt.Sprintf("lines[%d]", i)
		switch {
		case !l.Quantity.GreaterThan(decimal.Zero):
			issues = append(issues, domain.Issue{Code: "INVALID_QUANTITY", Field: field + ".quantity", Message: "debe ser mayor a cero"})
			continue
		case l.UnitPrice.IsNegative():
			issues = append(issues, domain.Issue{Code: "INVALID_PRICE", Field: field + ".unit_price", Message: "no puede ser negativo"})
			continue
		case l.DiscountPct.IsNegative() || l.DiscountPct.GreaterThan(hundred):
			issues = append(issues, domain.Issue{Code: "INVALID_DISCOUNT", Field: field + ".discount_pct", Message: "debe estar entre 0 y 100"})
			continue
		}
		lt := LineTotals{Gross: l.Quantity.Mul(l.UnitPrice).Round(2)}
		lt.Discount = lt.Gross.Mul(l.DiscountPct).Div(hundred).Round(2)
		lt.Net = lt.Gross.Sub(lt.Discount)
		lt.Tax = lt.Net.Mul(TaxFraction(l.TaxRate)).Round(2)
		lt.Total = lt.Net.Add(lt.Tax)
		t.Lines = append(t.Lines, lt)

		t.Subtotal = t.Subtotal.Add(lt.Gross)
		t.DiscountTotal = t.DiscountTotal.Add(lt.Discount)
		t.NetTotal = t.NetTotal.Add(lt.Net)
		t.TaxTotal = t.TaxTotal.Add(lt.Tax)
		t.GrandTotal = t.GrandTotal.Add(lt.Total)
	}
	if len(issues) > 0 {
		return Totals{}, domain.NewValidationError(issues...)
	}
	return t, nil
}

// TaxFraction 19 -> 0.19; valores ≤ 1 se toman como fracción.
func TaxFraction(rate decimal.Decimal) decimal.Decimal {
	if rate.GreaterThan(one) {
		return rate.Div(hundred)
	}
	return rate
}
