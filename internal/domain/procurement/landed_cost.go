package procurement

import (
	"github.com/jhoicas/erp-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// CostLine línea sobre la que se prorratean cargos. WeightKg es por unidad.
type CostLine struct {
	Key      string
	Quantity decimal.Decimal
	UnitCost decimal.Decimal
	WeightKg decimal.Decimal
}

// LandedCost resultado por línea.
type LandedCost struct {
	Key             string          `json:"key"`
	Quantity        decimal.Decimal `json:"quantity"`
	UnitCost        decimal.Decimal `json:"unit_cost"`
	AllocatedCharge decimal.Decimal `json:"allocated_charge"`
	LandedUnitCost  decimal.Decimal `json:"landed_unit_cost"`
	LandedTotal     decimal.Decimal `json:"landed_total"`
}

// AllocateLandedCost reparte cada cargo entre las líneas con cantidad > 0 según su base
// (VALUE, QUANTITY, WEIGHT). Si la base suma cero se usa QUANTITY. Cada parte se redondea a
// 2 decimales y el residuo va a la línea de mayor base, de modo que la suma coincide con el cargo.
func AllocateLandedCost(lines []CostLine, charges []ChargeInput) []LandedCost {
	out := make([]LandedCost, len(lines))
	for i, l := range lines {
		out[i] = LandedCost{Key: l.Key, Quantity: l.Quantity, UnitCost: l.UnitCost, AllocatedCharge: decimal.Zero}
	}

	for _, c := range charges {
		if !c.Amount.GreaterThan(decimal.Zero) {
			continue
		}
		basis, total := chargeBasis(lines, c.Basis)
		if !total.GreaterThan(decimal.Zero) {
			basis, total = chargeBasis(lines, entity.BasisQuantity)
		}
		if !total.GreaterThan(decimal.Zero) {
			continue
		}
		allocated := decimal.Zero
		largest := -1
		for i, b := range basis {
			if !b.GreaterThan(decimal.Zero) {
				continue
			}
			share := c.Amount.Mul(b).Div(total).Round(2)
			out[i].AllocatedCharge = out[i].AllocatedCharge.Add(share)
			allocated = allocated.Add(share)
			if largest == -1 || b.GreaterThan(basis[largest]) {
				largest = i
			}
		}
		if residual := c.Amount.Sub(allocated); !residual.IsZero() && largest >= 0 {
			out[largest].AllocatedCharge = out[largest].AllocatedCharge.Add(residual)
		}
	}

	for i := range out {
		base := out[i].Quantity.Mul(out[i].UnitCost)
		out[i].LandedTotal = base.Add(out[i].AllocatedCharge).Round(2)
		if out[i].Quantity.GreaterThan(decimal.Zero) {
			out[i].LandedUnitCost = base.Add(out[i].AllocatedCharge).Div(out[i].Quantity).Round(4)
		} else {
			out[i].LandedUnitCost = out[i].UnitCost
		}
	}
	return out
}

func chargeBasis(lines []CostLine, basis string) ([]decimal.Decimal, decimal.Decimal) {
	values := make([]decimal.Decimal, len(lines))
	total := decimal.Zero
	for i, l := range lines {
		if !l.Quantity.GreaterThan(decimal.Zero) {
			values[i] = decimal.Zero
			continue
		}
		switch basis {
		case entity.BasisQuantity:
			values[i] = l.Quantity
		case entity.BasisWeight:
			values[i] = l.Quantity.Mul(l.WeightKg)
		default:
			values[i] = l.Quantity.Mul(l.UnitCost)
		}
		total = total.Add(values[i])
	}
	return values, total
}

// TotalCharges suma los montos de los cargos.
func TotalCharges(charges []ChargeInput) decimal.Decimal {
	total := decimal.Zero
	for _, c := range charges {
		total = total.Add(c.Amount)
	}
	return total
}
