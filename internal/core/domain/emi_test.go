package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateEMI(t *testing.T) {
	t.Run("standard amortization", func(t *testing.T) {
		i := 8.5 / 100 / 12
		n := 20.0 * 12
		want := 1_000_000 * i * math.Pow(1+i, n) / (math.Pow(1+i, n) - 1)

		got := CalculateEMI(1_000_000, 8.5, 20)

		assert.InDelta(t, want, got, 0.5)
		assert.Equal(t, 8678.0, got)
	})

	t.Run("zero rate splits principal evenly", func(t *testing.T) {
		assert.Equal(t, 10_000.0, CalculateEMI(1_200_000, 0, 10))
	})

	t.Run("degenerate inputs", func(t *testing.T) {
		assert.Zero(t, CalculateEMI(0, 8.5, 20))
		assert.Zero(t, CalculateEMI(-5, 8.5, 20))
		assert.Zero(t, CalculateEMI(1_000_000, 8.5, 0))
		assert.Zero(t, CalculateEMI(1_000_000, -1, 20))
		assert.Zero(t, CalculateEMI(math.NaN(), 8.5, 20))
		assert.Zero(t, CalculateEMI(1_000_000, math.Inf(1), 20))
	})
}

func TestCalculateEMIBreakdown(t *testing.T) {
	b := CalculateEMIBreakdown(1_200_000, 0, 10)
	assert.Equal(t, 10_000.0, b.MonthlyPayment)
	assert.Equal(t, 120, b.Months)
	assert.Equal(t, 1_200_000.0, b.TotalPayment)
	assert.Zero(t, b.TotalInterest)

	b = CalculateEMIBreakdown(1_000_000, 8.5, 20)
	assert.Equal(t, 240, b.Months)
	assert.Greater(t, b.TotalInterest, 0.0)

	assert.Equal(t, EMIBreakdown{}, CalculateEMIBreakdown(0, 8.5, 20))
}

func TestCalculateEMI_TermShorterThanMonth(t *testing.T) {
	assert.Zero(t, CalculateEMI(1_000_000, 8.5, 0.01))
	assert.Equal(t, EMIBreakdown{}, CalculateEMIBreakdown(1_000_000, 8.5, 0.01))
}

func TestCalculateEMIBreakdown_FractionalTerm(t *testing.T) {
	// 1.2 месяца: итоги считаются от того же срока, что и платеж
	b := CalculateEMIBreakdown(120_000, 0, 0.1)
	assert.Equal(t, 100_000.0, b.MonthlyPayment)
	assert.Equal(t, 1, b.Months)
	assert.Equal(t, 120_000.0, b.TotalPayment)
	assert.Zero(t, b.TotalInterest)

	for _, years := range []float64{0.09, 0.5, 1.5, 7.25} {
		b := CalculateEMIBreakdown(500_000, 9, years)
		assert.Greater(t, b.MonthlyPayment, 0.0, "years=%v", years)
		assert.Greater(t, b.Months, 0, "years=%v", years)
		assert.GreaterOrEqual(t, b.TotalPayment, 500_000.0-b.MonthlyPayment, "years=%v", years)
	}
}
