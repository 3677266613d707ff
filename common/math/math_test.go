package math

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundFloat(t *testing.T) {
	t.Parallel()
	for _, tc := range []struct {
		in   float64
		prec int
		want float64
	}{
		{1.23456, 2, 1.23},
		{1.235, 1, 1.2},
		{2.5, 0, 3},
	} {
		assert.Equal(t, tc.want, RoundFloat(tc.in, tc.prec), "RoundFloat(%v, %v) should round correctly", tc.in, tc.prec)
	}
}

func TestStandardDeviations(t *testing.T) {
	t.Parallel()
	values := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	assert.Equal(t, 5.0, ArithmeticAverage(values))
	assert.Equal(t, 2.0, PopulationStandardDeviation(values))
	assert.InDelta(t, 2.138089935, SampleStandardDeviation(values), 1e-9)
	assert.Zero(t, SampleStandardDeviation([]float64{1}))
	assert.Zero(t, PopulationStandardDeviation(nil))
	assert.Zero(t, ArithmeticAverage(nil))
}

func TestDownsideDeviation(t *testing.T) {
	t.Parallel()
	assert.InDelta(t, math.Sqrt((0.01+0.04)/4), DownsideDeviation([]float64{0.1, -0.1, 0.2, -0.2}, 0), 1e-12)
	assert.Zero(t, DownsideDeviation([]float64{0.1, 0.2}, 0))
}

func TestCumulativeGrowth(t *testing.T) {
	t.Parallel()
	g, err := CumulativeGrowth([]float64{0.1, -0.5, 1})
	require.NoError(t, err, "CumulativeGrowth must not error")
	assert.InDelta(t, 1.1, g, 1e-12)

	_, err = CumulativeGrowth([]float64{0.1, -1})
	assert.ErrorIs(t, err, errTotalLossInInput)
}

func TestFinancialGeometricAverage(t *testing.T) {
	t.Parallel()
	avg, err := FinancialGeometricAverage([]float64{0.21, 0})
	require.NoError(t, err, "FinancialGeometricAverage must not error")
	assert.InDelta(t, 0.1, avg, 1e-12)

	_, err = FinancialGeometricAverage(nil)
	assert.ErrorIs(t, err, errZeroLengthInput)
}

func TestCompoundAnnualGrowthRate(t *testing.T) {
	t.Parallel()
	values := make([]float64, 365)
	for i := range values {
		values[i] = 0.001
	}
	cagr, err := CompoundAnnualGrowthRate(values, 365)
	require.NoError(t, err, "CompoundAnnualGrowthRate must not error")
	assert.InDelta(t, math.Pow(1.001, 365)-1, cagr, 1e-12)

	_, err = CompoundAnnualGrowthRate(values, 0)
	assert.ErrorIs(t, err, errInvalidPeriods)
}

func TestRatios(t *testing.T) {
	t.Parallel()
	values := []float64{0.01, -0.02, 0.03, 0.0, 0.01}
	sharpe := SharpeRatio(values, 0, 365)
	want := ArithmeticAverage(values) * 365 / (SampleStandardDeviation(values) * math.Sqrt(365))
	assert.InDelta(t, want, sharpe, 1e-12)
	assert.Zero(t, SharpeRatio([]float64{0.01, 0.01}, 0, 365), "zero deviation should give zero ratio")

	sortino := SortinoRatio(values, 0, 365)
	assert.Greater(t, sortino, sharpe, "sortino should exceed sharpe when losses are rare")

	assert.Equal(t, 2.0, CalmarRatio(0.4, -0.2))
	assert.Zero(t, CalmarRatio(0.4, 0))
}

func TestInformationRatio(t *testing.T) {
	t.Parallel()
	ir, err := InformationRatio([]float64{0.02, 0.01, 0.03}, []float64{0.02, 0.01, 0.03}, 365)
	require.NoError(t, err, "InformationRatio must not error")
	assert.Zero(t, ir, "identical series should have no information ratio")

	_, err = InformationRatio([]float64{1}, nil, 365)
	assert.ErrorIs(t, err, errLengthMismatch)

	ir, err = InformationRatio([]float64{0.03, 0.01, 0.04}, []float64{0.01, 0.0, 0.01}, 1)
	require.NoError(t, err, "InformationRatio must not error")
	assert.InDelta(t, 2.0, ir, 1e-12)
}

func TestFiniteOnly(t *testing.T) {
	t.Parallel()
	assert.Equal(t, []float64{1, 2}, FiniteOnly([]float64{1, math.NaN(), math.Inf(1), 2}))
	assert.True(t, IsFinite(0))
	assert.False(t, IsFinite(math.Inf(-1)))
}
