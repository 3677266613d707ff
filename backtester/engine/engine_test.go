package engine

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/BaptisteZloch/Crypto-momentum-portfolios/backtester/allocation"
	"github.com/BaptisteZloch/Crypto-momentum-portfolios/backtester/benchmark"
	"github.com/BaptisteZloch/Crypto-momentum-portfolios/backtester/common"
	"github.com/BaptisteZloch/Crypto-momentum-portfolios/backtester/rebalance"
	"github.com/BaptisteZloch/Crypto-momentum-portfolios/backtester/selection"
	"github.com/BaptisteZloch/Crypto-momentum-portfolios/backtester/statistics"
	"github.com/BaptisteZloch/Crypto-momentum-portfolios/backtester/universe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testAssets = []string{"BTC-USDT", "ETH-USDT", "SOL-USDT", "XRP-USDT"}

func testUniverse(t *testing.T, days int) *universe.Universe {
	t.Helper()
	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	in := &universe.Input{
		Assets: testAssets,
		Columns: map[universe.Field][][]float64{
			universe.Price:  make([][]float64, len(testAssets)),
			universe.Amount: make([][]float64, len(testAssets)),
		},
	}
	for d := 0; d < days; d++ {
		in.Dates = append(in.Dates, start.AddDate(0, 0, d))
	}
	for a := range testAssets {
		growth := 0.001 * float64(a+1)
		for d := 0; d < days; d++ {
			p := 100 * math.Pow(1+growth, float64(d)) * (1 + 0.03*math.Sin(float64(d)*(0.7+0.3*float64(a))))
			in.Columns[universe.Price][a] = append(in.Columns[universe.Price][a], p)
			in.Columns[universe.Amount][a] = append(in.Columns[universe.Amount][a], float64(1000*(a+1)))
		}
	}
	u, err := universe.New(in, universe.Settings{Lookback: 5, TSMomentumLookback: 3})
	require.NoError(t, err, "universe.New must not error")
	return u
}

func testSettings() Settings {
	s := DefaultSettings()
	s.RankingField = universe.Price
	s.TopK = 2
	s.Frequency = rebalance.Weekly()
	return s
}

func TestNew(t *testing.T) {
	t.Parallel()
	_, err := New(nil)
	assert.ErrorIs(t, err, common.ErrNilPointer)

	u := testUniverse(t, 10)
	_, err = New(u, WithScheduler(nil))
	assert.ErrorIs(t, err, common.ErrNilPointer)

	s := rebalance.NewScheduler(4)
	b, err := New(u, WithScheduler(s), WithBenchmarkSettings(benchmark.Settings{ReferenceAsset: "ETH-USDT", Frequency: rebalance.Daily()}))
	require.NoError(t, err, "New must not error")
	assert.Same(t, u, b.Universe())
	assert.Same(t, s, b.scheduler)
	assert.Same(t, s, b.benchmarkSettings.Scheduler)
}

func TestRunStrategyTopKExceedsAssets(t *testing.T) {
	t.Parallel()
	b, err := New(testUniverse(t, 20))
	require.NoError(t, err, "New must not error")
	s := testSettings()
	s.TopK = len(testAssets) + 1
	res, err := b.RunStrategy(s)
	assert.ErrorIs(t, err, errTopKExceedsAssets)
	assert.Nil(t, res)
	hits, misses := b.scheduler.CacheStats()
	assert.Zero(t, hits+misses, "no schedule should be computed before validation")

	s.TopK = 0
	_, err = b.RunStrategy(s)
	assert.ErrorIs(t, err, errInvalidTopK)
}

func TestRunStrategyUnknownField(t *testing.T) {
	t.Parallel()
	b, err := New(testUniverse(t, 20))
	require.NoError(t, err, "New must not error")
	s := testSettings()
	s.Allocation = allocation.Volume
	_, err = b.RunStrategy(s)
	assert.ErrorIs(t, err, common.ErrUnknownField, "volume was not supplied")
}

func TestRunStrategyBuyAndHold(t *testing.T) {
	t.Parallel()
	u := testUniverse(t, 40)
	b, err := New(u)
	require.NoError(t, err, "New must not error")
	s := testSettings()
	s.TransactionCost = 0
	s.Slippage = 0
	s.Frequency = rebalance.EveryNDays(1000)
	res, err := b.RunStrategy(s)
	require.NoError(t, err, "RunStrategy must not error")
	require.Len(t, res.Rebalances, 1)
	assert.Equal(t, u.Date(0), res.Rebalances[0])
	require.Len(t, res.Selections, 1)

	growth := 1.0
	for _, r := range res.Returns {
		growth *= 1 + r
	}
	var expected float64
	for _, name := range res.Selections[0] {
		a, err := u.AssetIndex(name)
		require.NoError(t, err, "AssetIndex must not error")
		expected += 0.5 * (u.Value(universe.Price, a, u.Len()-1)/u.Value(universe.Price, a, 0) - 1)
	}
	assert.InDelta(t, expected, growth-1, 1e-9)
}

func TestRunStrategy(t *testing.T) {
	t.Parallel()
	u := testUniverse(t, 60)
	b, err := New(u)
	require.NoError(t, err, "New must not error")
	for _, m := range []allocation.Method{allocation.Equal, allocation.Capitalization, allocation.RiskParity, allocation.MeanVariance} {
		s := testSettings()
		s.Allocation = m
		s.RankingMode = selection.Ascending
		res, err := b.RunStrategy(s)
		require.NoErrorf(t, err, "RunStrategy %s must not error", m)
		assert.Len(t, res.Returns, u.Len())
		assert.Len(t, res.Weights, u.Len())
		assert.Equal(t, u.Assets(), res.Assets)
		assert.Len(t, res.Selections, len(res.Rebalances))
		for d, row := range res.Weights {
			var sum float64
			held := 0
			for _, w := range row {
				assert.GreaterOrEqual(t, w, 0.0)
				sum += w
				if w > 0 {
					held++
				}
			}
			assert.InDeltaf(t, 1, sum, 1e-6, "%s weights on row %d", m, d)
			assert.LessOrEqual(t, held, 2)
		}
		if m == allocation.RiskParity || m == allocation.MeanVariance {
			assert.NotEmpty(t, res.Warnings, "the first rebalance has no return history to estimate from")
		}
	}
}

func TestRunStrategySide(t *testing.T) {
	t.Parallel()
	b, err := New(testUniverse(t, 30))
	require.NoError(t, err, "New must not error")
	long := testSettings()
	short := testSettings()
	short.Side = common.Short
	l, err := b.RunStrategy(long)
	require.NoError(t, err, "RunStrategy must not error")
	s, err := b.RunStrategy(short)
	require.NoError(t, err, "RunStrategy must not error")
	for i := range l.Returns {
		assert.InDelta(t, -l.Returns[i], s.Returns[i], 1e-15)
	}
	assert.Equal(t, l.Weights, s.Weights, "side never changes weights")
	hits, _ := b.scheduler.CacheStats()
	assert.Equal(t, uint64(1), hits, "the second run should reuse the cached schedule")
}

func TestEvaluate(t *testing.T) {
	t.Parallel()
	b, err := New(testUniverse(t, 60), WithBenchmarkSettings(benchmark.Settings{Frequency: rebalance.MonthStart()}))
	require.NoError(t, err, "New must not error")
	res, err := b.RunStrategy(testSettings())
	require.NoError(t, err, "RunStrategy must not error")

	st := statistics.DefaultSettings()
	st.Samples = 20
	st.SampleSize = 30
	report, err := b.Evaluate(res, "", st)
	require.NoError(t, err, "Evaluate must not error")
	assert.Equal(t, 60, report.Observations)
	assert.NotEmpty(t, report.Tests)

	set, err := b.Benchmarks()
	require.NoError(t, err, "Benchmarks must not error")
	again, err := b.Benchmarks()
	require.NoError(t, err, "Benchmarks must not error")
	assert.Same(t, set, again, "benchmarks are built once")

	_, err = b.Evaluate(res, benchmark.ReferenceName("BTC-USDT"), statistics.Settings{PeriodsPerYear: 365})
	assert.NoError(t, err, "Evaluate against the reference asset must not error")

	_, err = b.Evaluate(res, "moon_benchmark", st)
	assert.Error(t, err, "an unknown benchmark should error")

	_, err = b.Evaluate(nil, "", st)
	assert.ErrorIs(t, err, common.ErrNilPointer)

	short := *res
	short.Returns = res.Returns[:10]
	_, err = b.Evaluate(&short, "", st)
	assert.ErrorIs(t, err, errResultMismatch)

	st.SampleSize = 60
	_, err = b.EvaluateContext(context.Background(), res, "", st)
	assert.Error(t, err, "sample size must be below the number of observations")
}
