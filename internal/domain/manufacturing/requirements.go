// Package manufacturing calcula requerimientos de materiales y costos de producción.
package manufacturing

import (
	"fmt"

	"github.com/jhoicas/erp-api/internal/domain"
	"github.com/jhoicas/erp-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// MaxOverProductionPct tope de producción sobre lo planeado.
var MaxOverProductionPct = decimal.NewFromInt(10)

var hundred = decimal.NewFromInt(100)

// Requirement cantidad de un componente a consumir.
type Requirement struct {
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// MaterialRequirements planned/OutputQty · cantidad · (1 + merma%) por componente, a 4 decimales.
func MaterialRequirements(bom *entity.BOM, planned decimal.Decimal) ([]Requirement, error) {
	if !bom.OutputQty.GreaterThan(decimal.Zero) {
		return nil, fmt.Errorf("%w: la lista de materiales debe producir una cantidad mayor a cero", domain.ErrInvalidInput)
	}
	if !planned.GreaterThan(decimal.Zero) {
		return nil, fmt.Errorf("%w: cantidad planeada debe ser mayor a cero", domain.ErrInvalidInput)
	}
	if len(bom.Components) == 0 {
		return nil, fmt.Errorf("%w: la lista de materiales no tiene componentes", domain.ErrInvalidInput)
	}
	factor := planned.Div(bom.OutputQty)
	out := make([]Requirement, 0, len(bom.Components))
	for _, c := range bom.Components {
		scrap := decimal.NewFromInt(1).Add(c.ScrapPct.Div(hundred))
		out = append(out, Requirement{
			ProductID: c.ProductID,
			Quantity:  factor.Mul(c.Quantity).Mul(scrap).Round(4),
		})
	}
	return out, nil
}

// ValidateBOM componentes con cantidad > 0, merma en [0,100) y sin repetir ni incluir el producto terminado.
func ValidateBOM(bom *entity.BOM) error {
	var issues []domain.Issue
	if !bom.OutputQty.GreaterThan(decimal.Zero) {
		issues = append(issues, domain.Issue{Code: "INVALID_QUANTITY", Field: "output_qty", Message: "debe ser mayor a cero"})
	}
	if len(bom.Components) == 0 {
		issues = append(issues, domain.Issue{Code: "EMPTY_BOM", Field: "components", Message: "se requiere al menos un componente"})
	}
	seen := map[string]bool{}
	for i, c := range bom.Components {
		field := fmt.Sprintf("components[%d]", i)
		switch {
		case c.ProductID == bom.ProductID:
			issues = append(issues, domain.Issue{Code: "CIRCULAR_COMPONENT", Field: field, Message: "el producto terminado no puede ser componente"})
		case seen[c.ProductID]:
			issues = append(issues, domain.Issue{Code: "DUPLICATE_COMPONENT", Field: field, Message: "componente repetido"})
		case !c.Quantity.GreaterThan(decimal.Zero):
			issues = append(issues, domain.Issue{Code: "INVALID_QUANTITY", Field: field + ".quantity", Message: "debe ser mayor a cero"})
		case c.ScrapPct.IsNegative() || !c.ScrapPct.LessThan(hundred):
			issues = append(issues, domain.Issue{Code: "INVALID_SCRAP", Field: field + ".scrap_pct", Message: "merma fuera de rango"})
		}
		seen[c.ProductID] = true
	}
	if len(issues) > 0 {
		return domain.NewValidationError(issues...)
	}
	return nil
}

// ValidateProducedQty cantidad producida > 0 y ≤ planeado · (1 + MaxOverProductionPct%).
func ValidateProducedQty(planned, produced decimal.Decimal) error {
	if !produced.GreaterThan(decimal.Zero) {
		return fmt.Errorf("%w: cantidad producida debe ser mayor a cero", domain.ErrInvalidInput)
	}
	limit := planned.Mul(decimal.NewFromInt(1).Add(MaxOverProductionPct.Div(hundred)))
	if produced.GreaterThan(limit) {
		return fmt.Errorf("%w: producido %s supera el máximo permitido %s", domain.ErrInvalidInput, produced, limit)
	}
	return nil
}

// UnitCost (materiales + mano de obra + indirectos) / producido, a 4 decimales.
func UnitCost(material, labor, overhead, produced decimal.Decimal) decimal.Decimal {
	if !produced.GreaterThan(decimal.Zero) {
		return decimal.Zero
	}
	return material.Add(labor).Add(overhead).Div(produced).Round(4)
}
