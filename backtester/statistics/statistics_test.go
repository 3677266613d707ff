package statistics

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func series(n int, f func(i int) float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = f(i)
	}
	return out
}

func testReturns(n int) []float64 {
	return series(n, func(i int) float64 {
		return 0.01*math.Sin(float64(i)) + 0.001
	})
}

func TestDrawdowns(t *testing.T) {
	t.Parallel()
	swings := Drawdowns([]float64{0.1, -0.5, 0.2, 1.0, -0.1})
	require.Len(t, swings, 2)
	assert.Equal(t, 0, swings[0].Highest.Offset)
	assert.Equal(t, 1, swings[0].Lowest.Offset)
	assert.InDelta(t, -0.5, swings[0].Drawdown, 1e-12)
	assert.Equal(t, 3, swings[0].Duration)
	assert.InDelta(t, -0.1, swings[1].Drawdown, 1e-12)
	assert.Equal(t, 1, swings[1].Duration)

	worst := Worst(swings)
	assert.InDelta(t, -0.5, worst.Drawdown, 1e-12)

	assert.Empty(t, Drawdowns([]float64{0.1, 0, 0.2}), "a rising series has no drawdown")
	assert.Zero(t, Worst(nil).Drawdown)

	swings = Drawdowns([]float64{-0.2})
	require.Len(t, swings, 1)
	assert.Equal(t, -1, swings[0].Highest.Offset, "a loss on the first period is measured from the initial value")
	assert.InDelta(t, -0.2, swings[0].Drawdown, 1e-12)
}

func TestComputeStandalone(t *testing.T) {
	t.Parallel()
	v, swing := Compute([]float64{0.01, -0.02, 0.03, 0.04}, nil, 365, 0)
	assert.InDelta(t, 0.015*365, v[ExpectedReturn], 1e-12)
	assert.InDelta(t, 4, v[ProfitFactor], 1e-12)
	assert.InDelta(t, 4.0/3, v[PayoffRatio], 1e-12)
	assert.InDelta(t, 0.5625, v[KellyCriterion], 1e-12)
	assert.InDelta(t, 0.015, v[Expectancy], 1e-12)
	assert.InDelta(t, -0.02, v[VaR], 1e-12)
	assert.InDelta(t, -0.02, v[CVaR], 1e-12)
	assert.InDelta(t, -0.02, v[MaxDrawdown], 1e-12)
	assert.InDelta(t, -0.02, swing.Drawdown, 1e-12)
	assert.Greater(t, v[SharpeRatio], 0.0)
	assert.Greater(t, v[SortinoRatio], v[SharpeRatio], "only one loss so downside deviation is small")
	for m := SpecificRisk; m < metricCount; m++ {
		assert.Truef(t, math.IsNaN(v[m]), "%s should be NaN without a benchmark", m)
	}

	v, _ = Compute([]float64{0.01, 0.02}, nil, 365, 0)
	assert.True(t, math.IsNaN(v[ProfitFactor]), "no losses")
	assert.True(t, math.IsNaN(v[KellyCriterion]), "no losses")
	assert.Zero(t, v[BurkeRatio], "no drawdowns")
}

func TestComputeRelative(t *testing.T) {
	t.Parallel()
	bench := testReturns(100)
	levered := series(100, func(i int) float64 { return 2 * bench[i] })
	v, _ := Compute(levered, bench, 365, 0)
	assert.InDelta(t, 2, v[Beta], 1e-9)
	assert.InDelta(t, 0, v[Alpha], 1e-9)
	assert.InDelta(t, 1, v[RSquared], 1e-9)
	assert.InDelta(t, 0, v[SpecificRisk], 1e-6)
	assert.InDelta(t, v[ExpectedVolatility], v[SystematicRisk], 1e-9)
	assert.InDelta(t, v[ExpectedVolatility]/2, v[TrackingError], 1e-9)
	assert.InDelta(t, v[ExpectedReturn]/2, v[TreynorRatio], 1e-9)
	assert.InDelta(t, 0, v[JensenAlpha], 1e-9)

	self, _ := Compute(bench, bench, 365, 0)
	assert.InDelta(t, 1, self[Beta], 1e-9)
	assert.Zero(t, self[TrackingError])
	assert.Zero(t, self[InformationRatio])
}

func TestEvaluateIdenticalSeries(t *testing.T) {
	t.Parallel()
	r := testReturns(300)
	for _, alpha := range []float64{0.001, 0.05, 0.5, 0.999} {
		s := DefaultSettings()
		s.Samples = 50
		s.SampleSize = 100
		s.Alpha = alpha
		rep, err := Evaluate(context.Background(), r, append([]float64(nil), r...), s)
		require.NoError(t, err, "Evaluate must not error")
		require.NotEmpty(t, rep.Tests)
		for i := range rep.Tests {
			assert.Falsef(t, rep.Tests[i].Different, "%s at alpha %v", rep.Tests[i].Metric, alpha)
			assert.Equal(t, "not statistically different from the benchmark", rep.Tests[i].Verdict())
		}
		assert.Equal(t, rep.Strategy, rep.Benchmark)
	}
}

func TestEvaluateBootstrap(t *testing.T) {
	t.Parallel()
	bench := testReturns(400)
	strategy := series(400, func(i int) float64 { return bench[i] + 0.002*math.Cos(float64(3*i)) + 0.003 })
	s := DefaultSettings()
	s.Samples = 200
	s.SampleSize = 150
	s.Seed = 7
	s.Workers = 4
	a, err := Evaluate(context.Background(), strategy, bench, s)
	require.NoError(t, err, "Evaluate must not error")
	s.Workers = 1
	b, err := Evaluate(context.Background(), strategy, bench, s)
	require.NoError(t, err, "Evaluate must not error")
	assert.Equal(t, a.Tests, b.Tests, "results must not depend on the number of workers")
	assert.Len(t, a.Tests, int(TailRatio)+1)
	assert.Equal(t, 400, a.Observations)

	er, err := a.Test(ExpectedReturn)
	require.NoError(t, err, "Test must not error")
	assert.True(t, er.Different, "a constant excess return should be detected")

	_, err = a.Test(Beta)
	assert.ErrorIs(t, err, errMetricNotTested)

	s.Bootstrap = false
	c, err := Evaluate(context.Background(), strategy, bench, s)
	require.NoError(t, err, "Evaluate must not error")
	assert.Empty(t, c.Tests)
	assert.Equal(t, a.Strategy, c.Strategy)
	st, bm, err := c.Value(ExpectedReturn)
	require.NoError(t, err, "Value must not error")
	assert.Greater(t, st, bm)
	_, _, err = c.Value(metricCount)
	assert.ErrorIs(t, err, errUnknownMetric)
}

func TestEvaluateErrors(t *testing.T) {
	t.Parallel()
	r := testReturns(50)
	ctx := context.Background()

	_, err := Evaluate(ctx, r, r[:10], DefaultSettings())
	assert.ErrorIs(t, err, errLengthMismatch)

	_, err = Evaluate(ctx, nil, nil, DefaultSettings())
	assert.ErrorIs(t, err, errNoReturns)

	bad := append([]float64(nil), r...)
	bad[3] = math.NaN()
	_, err = Evaluate(ctx, bad, r, DefaultSettings())
	assert.ErrorIs(t, err, errNonFinite)

	s := DefaultSettings()
	s.SampleSize = 50
	_, err = Evaluate(ctx, r, r, s)
	assert.ErrorIs(t, err, errSampleSize, "sample size equal to the series length must fail")

	s.SampleSize = 10
	s.Alpha = 1
	_, err = Evaluate(ctx, r, r, s)
	assert.ErrorIs(t, err, errInvalidAlpha)

	s.Alpha = 0.05
	s.Samples = 0
	_, err = Evaluate(ctx, r, r, s)
	assert.ErrorIs(t, err, errInvalidSamples)

	s = DefaultSettings()
	s.PeriodsPerYear = 0
	_, err = Evaluate(ctx, r, r, s)
	assert.ErrorIs(t, err, errInvalidPeriods)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	s = DefaultSettings()
	s.SampleSize = 10
	other := series(50, func(i int) float64 { return r[i] * 2 })
	_, err = Evaluate(cancelled, other, r, s)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTTest(t *testing.T) {
	t.Parallel()
	res := tTest(SharpeRatio, []float64{1, 2, 3}, 0, 0.1)
	assert.InDelta(t, math.Sqrt(12), res.T, 1e-12)
	assert.InDelta(t, 0.074180, res.P, 1e-5)
	assert.True(t, res.Different)
	assert.False(t, tTest(SharpeRatio, []float64{1, 2, 3}, 0, 0.05).Different)

	res = tTest(SharpeRatio, []float64{1, 2, 3, 4, 5}, 3, 0.05)
	assert.Zero(t, res.T)
	assert.InDelta(t, 1, res.P, 1e-12)

	res = tTest(SharpeRatio, []float64{2, 2, 2}, 2, 0.05)
	assert.Equal(t, 1.0, res.P)
	res = tTest(SharpeRatio, []float64{2, 2, 2}, 1, 0.05)
	assert.True(t, res.Different)
	assert.True(t, math.IsInf(res.T, 1))

	res = tTest(SharpeRatio, []float64{2}, 1, 0.05)
	assert.True(t, math.IsNaN(res.P))
	assert.Equal(t, "not tested", res.Verdict())
}

func TestMetric(t *testing.T) {
	t.Parallel()
	assert.Len(t, Metrics(), int(metricCount))
	assert.Equal(t, "Max drawdown", MaxDrawdown.String())
	m, err := ParseMetric("sharpe RATIO")
	require.NoError(t, err, "ParseMetric must not error")
	assert.Equal(t, SharpeRatio, m)
	_, err = ParseMetric("luck")
	assert.ErrorIs(t, err, errUnknownMetric)
	assert.True(t, CAGR.IsPercent())
	assert.False(t, SharpeRatio.IsPercent())
	assert.True(t, TailRatio.Standalone())
	assert.False(t, Beta.Standalone())

	var decoded Metric
	require.NoError(t, decoded.UnmarshalText([]byte("R2")), "UnmarshalText must not error")
	assert.Equal(t, RSquared, decoded)
	_, err = metricCount.MarshalText()
	assert.ErrorIs(t, err, errUnknownMetric)
}
