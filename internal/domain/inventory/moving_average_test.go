package inventory

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestMovingAverage(t *testing.T) {
	tests := []struct {
		name                        string
		onHand, cost, inQty, inCost string
		want                        string
	}{
		{"pondera por cantidad", "10", "100", "30", "120", "115"},
		{"sin saldo toma el costo de entrada", "0", "80", "5", "12.34567", "12.3457"},
		{"saldo negativo no arrastra costo", "-3", "50", "10", "20", "20"},
		{"entrada vacía conserva el costo", "4", "7.5", "0", "99", "7.5"},
		{"redondea a cuatro decimales", "2", "0", "1", "1", "0.3333"},
		{"fracción exacta", "3", "10", "1", "11", "10.25"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MovingAverage(d(tt.onHand), d(tt.cost), d(tt.inQty), d(tt.inCost))
			assert.True(t, got.Equal(d(tt.want)), "got %s", got)
		})
	}
}
