package procurement

import (
	"testing"

	"github.com/jhoicas/erp-api/internal/domain/entity"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func costLines() []CostLine {
	return []CostLine{
		{Key: "A", Quantity: d("10"), UnitCost: d("5"), WeightKg: d("2")},
		{Key: "B", Quantity: d("20"), UnitCost: d("2.5"), WeightKg: d("0.5")},
		{Key: "C", Quantity: d("0"), UnitCost: d("7")},
	}
}

func sumAllocated(lc []LandedCost) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lc {
		total = total.Add(l.AllocatedCharge)
	}
	return total
}

func TestAllocateLandedCost_PorValor(t *testing.T) {
	got := AllocateLandedCost(costLines(), []ChargeInput{{Type: entity.ChargeFreight, Basis: entity.BasisValue, Amount: d("100")}})
	require.Len(t, got, 3)

	// valores 50 y 50
	assert.True(t, got[0].AllocatedCharge.Equal(d("50")))
	assert.True(t, got[1].AllocatedCharge.Equal(d("50")))
	assert.True(t, got[2].AllocatedCharge.IsZero())

	// (10*5 + 50) / 10 = 10 ; (20*2.5 + 50) / 20 = 5
	assert.True(t, got[0].LandedUnitCost.Equal(d("10")), "A %s", got[0].LandedUnitCost)
	assert.True(t, got[1].LandedUnitCost.Equal(d("5")), "B %s", got[1].LandedUnitCost)
	assert.True(t, got[2].LandedUnitCost.Equal(d("7")))
	assert.True(t, got[0].LandedTotal.Equal(d("100")))
}

func TestAllocateLandedCost_PorCantidadYPeso(t *testing.T) {
	got := AllocateLandedCost(costLines(), []ChargeInput{
		{Type: entity.ChargeDuty, Basis: entity.BasisQuantity, Amount: d("30")},
		{Type: entity.ChargeHandling, Basis: entity.BasisWeight, Amount: d("30")},
	})
	// cantidad 10/20 -> 10 y 20 ; peso 20/10 -> 20 y 10
	assert.True(t, got[0].AllocatedCharge.Equal(d("30")), "A %s", got[0].AllocatedCharge)
	assert.True(t, got[1].AllocatedCharge.Equal(d("30")), "B %s", got[1].AllocatedCharge)
}

func TestAllocateLandedCost_PesoCeroUsaCantidad(t *testing.T) {
	lines := []CostLine{
		{Key: "A", Quantity: d("1"), UnitCost: d("1")},
		{Key: "B", Quantity: d("3"), UnitCost: d("1")},
	}
	got := AllocateLandedCost(lines, []ChargeInput{{Type: entity.ChargeFreight, Basis: entity.BasisWeight, Amount: d("8")}})
	assert.True(t, got[0].AllocatedCharge.Equal(d("2")))
	assert.True(t, got[1].AllocatedCharge.Equal(d("6")))
}

func TestAllocateLandedCost_ResiduoALaMayorBase(t *testing.T) {
	lines := []CostLine{
		{Key: "A", Quantity: d("1"), UnitCost: d("1")},
		{Key: "B", Quantity: d("1"), UnitCost: d("1")},
		{Key: "C", Quantity: d("1"), UnitCost: d("1")},
	}
	got := AllocateLandedCost(lines, []ChargeInput{{Type: entity.ChargeInsurance, Basis: entity.BasisValue, Amount: d("10")}})

	assert.True(t, sumAllocated(got).Equal(d("10")), "suma %s", sumAllocated(got))
	assert.True(t, got[0].AllocatedCharge.Equal(d("3.34")))
	assert.True(t, got[1].AllocatedCharge.Equal(d("3.33")))
	assert.True(t, got[2].AllocatedCharge.Equal(d("3.33")))
}

func TestAllocateLandedCost_SinCantidadesNoAsigna(t *testing.T) {
	lines := []CostLine{{Key: "A", Quantity: decimal.Zero, UnitCost: d("4")}}
	got := AllocateLandedCost(lines, []ChargeInput{{Type: entity.ChargeFreight, Amount: d("10")}})
	assert.True(t, got[0].AllocatedCharge.IsZero())
	assert.True(t, got[0].LandedUnitCost.Equal(d("4")))
}

func TestTotalCharges(t *testing.T) {
	assert.True(t, TotalCharges([]ChargeInput{{Amount: d("1.5")}, {Amount: d("2.25")}}).Equal(d("3.75")))
}
