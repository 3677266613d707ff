package allocation

import (
	"math"
	"testing"

	"github.com/BaptisteZloch/Crypto-momentum-portfolios/backtester/common"
	"github.com/BaptisteZloch/Crypto-momentum-portfolios/backtester/universe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// zero mean, mutually orthogonal sign patterns
var walsh = [][]float64{
	{1, -1, 1, -1, 1, -1, 1, -1},
	{1, 1, -1, -1, 1, 1, -1, -1},
	{1, -1, -1, 1, 1, -1, -1, 1},
	{1, 1, 1, 1, -1, -1, -1, -1},
}

func returnsWindow(mean, scale []float64) [][]float64 {
	out := make([][]float64, len(scale))
	for a := range scale {
		out[a] = make([]float64, len(walsh[a]))
		for t, s := range walsh[a] {
			out[a][t] = mean[a] + scale[a]*s
		}
	}
	return out
}

func assertSimplex(t *testing.T, w []float64) {
	t.Helper()
	var sum float64
	for _, v := range w {
		assert.GreaterOrEqual(t, v, 0.0, "weights should not be negative")
		sum += v
	}
	assert.InDelta(t, 1.0, sum, 1e-6, "weights should sum to one")
}

func TestAllocateWeightsFormSimplex(t *testing.T) {
	t.Parallel()
	positive := [][]float64{{3, 1}, {2, 5}, {4, 0.5}}
	returns := returnsWindow([]float64{0.01, 0.002, -0.001}, []float64{0.02, 0.01, 0.03})
	tests := []struct {
		method Method
		mode   Mode
		window [][]float64
	}{
		{Equal, Classic, positive},
		{Capitalization, Classic, positive},
		{Capitalization, Inverse, positive},
		{Volume, Classic, positive},
		{Momentum, Classic, positive},
		{Volatility, Inverse, positive},
		{RiskParity, Classic, returns},
		{MeanVariance, Classic, returns},
	}
	covered := make(map[Method]bool)
	for i := range tests {
		covered[tests[i].method] = true
	}
	for _, m := range Methods() {
		assert.Truef(t, covered[m], "%s should be covered", m)
	}
	for x := range tests {
		tc := tests[x]
		t.Run(tc.method.String()+"/"+tc.mode.String(), func(t *testing.T) {
			t.Parallel()
			res, err := Allocate(tc.method, tc.mode, tc.window)
			require.NoError(t, err, "Allocate must not error")
			require.Len(t, res.Weights, len(tc.window))
			assertSimplex(t, res.Weights)
		})
	}
}

func TestEqualWeights(t *testing.T) {
	t.Parallel()
	for k := 1; k <= 7; k++ {
		res, err := Allocate(Equal, Classic, make([][]float64, k))
		require.NoError(t, err, "Allocate must not error")
		for _, w := range res.Weights {
			assert.Equal(t, 1/float64(k), w)
		}
		assert.True(t, res.Converged)
	}
	_, err := Allocate(Equal, Classic, nil)
	assert.ErrorIs(t, err, errNoAssets)
}

func TestProportional(t *testing.T) {
	t.Parallel()
	window := [][]float64{{0, 1}, {100, 3}}
	res, err := Allocate(Capitalization, Classic, window)
	require.NoError(t, err, "Allocate must not error")
	assert.InDeltaSlice(t, []float64{0.25, 0.75}, res.Weights, 1e-12, "only the last observation should count")

	res, err = Allocate(Volume, Inverse, window)
	require.NoError(t, err, "Allocate must not error")
	assert.InDeltaSlice(t, []float64{0.75, 0.25}, res.Weights, 1e-12)

	_, err = Allocate(Momentum, Classic, [][]float64{{0.2}, {-0.1}})
	assert.ErrorIs(t, err, common.ErrDegenerateWeights)
	assert.ErrorIs(t, err, errNonPositiveMom)

	_, err = Allocate(Capitalization, Classic, [][]float64{{0}, {0}})
	assert.ErrorIs(t, err, common.ErrDegenerateWeights, "a zero denominator should be fatal")

	_, err = Allocate(Volume, Classic, [][]float64{{math.NaN()}, {1}})
	assert.ErrorIs(t, err, common.ErrDegenerateWeights)

	_, err = Allocate(Volatility, Inverse, [][]float64{{0}, {1}})
	assert.ErrorIs(t, err, common.ErrDegenerateWeights)

	_, err = Allocate(Capitalization, Classic, [][]float64{{-1}, {2}})
	assert.ErrorIs(t, err, errNegativeValue)
}

func TestRiskParityEqualVariance(t *testing.T) {
	t.Parallel()
	window := returnsWindow([]float64{0, 0, 0, 0}, []float64{0.01, 0.01, 0.01, 0.01})
	res, err := Allocate(RiskParity, Classic, window)
	require.NoError(t, err, "Allocate must not error")
	assert.True(t, res.Converged, "equal risk should converge from the equal weight start")
	for _, w := range res.Weights {
		assert.InDelta(t, 0.25, w, 1e-4)
	}
}

func TestRiskParityInverseVolatility(t *testing.T) {
	t.Parallel()
	window := returnsWindow([]float64{0, 0}, []float64{0.01, 0.02})
	res, err := Allocate(RiskParity, Classic, window)
	require.NoError(t, err, "Allocate must not error")
	assert.InDelta(t, 2.0/3, res.Weights[0], 1e-3, "uncorrelated assets should be weighted by inverse volatility")
	assert.InDelta(t, 1.0/3, res.Weights[1], 1e-3)
}

func TestRiskParitySkipsIncompleteRows(t *testing.T) {
	t.Parallel()
	window := returnsWindow([]float64{0, 0, 0}, []float64{0.01, 0.01, 0.01})
	for a := range window {
		window[a] = append([]float64{math.NaN()}, window[a]...)
	}
	res, err := Allocate(RiskParity, Classic, window)
	require.NoError(t, err, "Allocate must not error")
	for _, w := range res.Weights {
		assert.InDelta(t, 1.0/3, w, 1e-4)
	}
}

func TestMeanVariance(t *testing.T) {
	t.Parallel()
	window := returnsWindow([]float64{0.01, 0.001}, []float64{0.01, 0.01})
	res, err := Allocate(MeanVariance, Classic, window)
	require.NoError(t, err, "Allocate must not error")
	assertSimplex(t, res.Weights)
	assert.Greater(t, res.Weights[0], res.Weights[1], "the higher sharpe asset should get more weight")
	assert.InDelta(t, 10.0/11, res.Weights[0], 1e-2)
}

func TestOptimiserFallback(t *testing.T) {
	t.Parallel()
	res, err := Allocate(RiskParity, Classic, [][]float64{{0.01}, {0.02}})
	require.NoError(t, err, "a single observation should not be fatal")
	assert.False(t, res.Converged)
	assert.Contains(t, res.Warning, "falling back to equal weights")
	assert.Equal(t, []float64{0.5, 0.5}, res.Weights)

	res, err = Allocate(MeanVariance, Classic, [][]float64{{0, 0, 0}, {0, 0, 0}})
	require.NoError(t, err, "zero variance should not be fatal")
	assert.False(t, res.Converged)
	assert.Contains(t, res.Warning, errDegenerateCovariance.Error())

	res, err = Allocate(RiskParity, Classic, [][]float64{{0.01, 0.02}, {0.01}})
	require.NoError(t, err, "a ragged window should fall back")
	assert.Contains(t, res.Warning, errRaggedWindow.Error())
}

func TestToWeights(t *testing.T) {
	t.Parallel()
	assert.InDeltaSlice(t, []float64{0.2, 0.8}, toWeights(nil, []float64{1, -2}), 1e-12)
	assert.Equal(t, []float64{0.5, 0.5}, toWeights(nil, []float64{0, 0}))
}

func TestMethodField(t *testing.T) {
	t.Parallel()
	for m, want := range map[Method]universe.Field{
		Equal:          universe.Returns,
		Capitalization: universe.MarketCap,
		Volume:         universe.Volume,
		Momentum:       universe.Momentum,
		Volatility:     universe.Volatility,
		RiskParity:     universe.Returns,
		MeanVariance:   universe.Returns,
	} {
		assert.Equalf(t, want, m.Field(), "%s field", m)
	}
}

func TestParseMethod(t *testing.T) {
	t.Parallel()
	for in, want := range map[string]Method{
		"equal":                   Equal,
		"equally_weighted":        Equal,
		"capi":                    Capitalization,
		"capitalization_weighted": Capitalization,
		"VOLUME":                  Volume,
		"momentum-weighted":       Momentum,
		"volatility":              Volatility,
		"risk_parity":             RiskParity,
		"rp":                      RiskParity,
		"mean variance":           MeanVariance,
	} {
		got, err := ParseMethod(in)
		require.NoErrorf(t, err, "ParseMethod(%q) must not error", in)
		assert.Equalf(t, want, got, "ParseMethod(%q)", in)
	}
	_, err := ParseMethod("kelly")
	assert.ErrorIs(t, err, errUnknownMethod)

	m, err := ParseMode("Inverse")
	require.NoError(t, err, "ParseMode must not error")
	assert.Equal(t, Inverse, m)
	_, err = ParseMode("sideways")
	assert.ErrorIs(t, err, common.ErrInvalidSetting)
}
