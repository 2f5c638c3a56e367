package inventory

import "github.com/shopspring/decimal"

// costScale decimales del costo unitario promedio.
const costScale = 4

// MovingAverage costo promedio ponderado tras una entrada de inQty unidades a inCost.
//
//	(onHand·cost + inQty·inCost) / (onHand + inQty)
//
// Con saldo cero o negativo el promedio anterior no aporta y manda el costo de la entrada;
// una entrada sin cantidad no cambia el costo.
func MovingAverage(onHand, cost, inQty, inCost decimal.Decimal) decimal.Decimal {
	if !inQty.IsPositive() {
		return cost
	}
	if !onHand.IsPositive() {
		return inCost.Round(costScale)
	}
	value := onHand.Mul(cost).Add(inQty.Mul(inCost))
	return value.Div(onHand.Add(inQty)).Round(costScale)
}
