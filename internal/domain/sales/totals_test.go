package sales

import (
	"errors"
	"testing"

	"github.com/jhoicas/erp-api/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestComputeTotals(t *testing.T) {
	got, err := ComputeTotals([]LineInput{
		{Quantity: d("3"), UnitPrice: d("10000"), DiscountPct: d("10"), TaxRate: d("19")},
		{Quantity: d("2"), UnitPrice: d("2500.555"), TaxRate: d("0.05")},
	})
	require.NoError(t, err)
	require.Len(t, got.Lines, 2)

	// línea 1: 30000 - 3000 = 27000 ; iva 5130
	assert.True(t, got.Lines[0].Net.Equal(d("27000")))
	assert.True(t, got.Lines[0].Tax.Equal(d("5130")))
	// línea 2: 5001.11 ; iva 250.06
	assert.True(t, got.Lines[1].Gross.Equal(d("5001.11")), "gross %s", got.Lines[1].Gross)
	assert.True(t, got.Lines[1].Tax.Equal(d("250.06")), "tax %s", got.Lines[1].Tax)

	assert.True(t, got.Subtotal.Equal(d("35001.11")))
	assert.True(t, got.DiscountTotal.Equal(d("3000")))
	assert.True(t, got.NetTotal.Equal(d("32001.11")))
	assert.True(t, got.TaxTotal.Equal(d("5380.06")))
	assert.True(t, got.GrandTotal.Equal(d("37381.17")))
}

func TestComputeTotals_Invalido(t *testing.T) {
	_, err := ComputeTotals([]LineInput{
		{Quantity: d("0"), UnitPrice: d("1")},
		{Quantity: d("1"), UnitPrice: d("-1")},
		{Quantity: d("1"), UnitPrice: d("1"), DiscountPct: d("101")},
	})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Issues, 3)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestTaxFraction(t *testing.T) {
	assert.True(t, TaxFraction(d("19")).Equal(d("0.19")))
	assert.True(t, TaxFraction(d("0.19")).Equal(d("0.19")))
	assert.True(t, TaxFraction(decimal.Zero).IsZero())
}
