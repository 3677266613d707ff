// Package statistics measures the risk and return of a return series against
// a benchmark and tests whether resampled statistics differ from the
// benchmark's.
package statistics

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"runtime"

	cmpmath "github.com/BaptisteZloch/Crypto-momentum-portfolios/common/math"
	"github.com/BaptisteZloch/Crypto-momentum-portfolios/log"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// DefaultSettings returns daily periods, no risk free rate and a bootstrap
// of 1000 samples of 250 observations at a 5% risk level
func DefaultSettings() Settings {
	return Settings{
		PeriodsPerYear: DefaultPeriodsPerYear,
		Bootstrap:      true,
		Samples:        DefaultSamples,
		SampleSize:     DefaultSampleSize,
		Alpha:          DefaultAlpha,
	}
}

// Validate checks the settings against a series of n observations
func (s *Settings) Validate(n int) error {
	if s.PeriodsPerYear <= 0 || math.IsNaN(s.PeriodsPerYear) {
		return fmt.Errorf("%w, received %v", errInvalidPeriods, s.PeriodsPerYear)
	}
	if !s.Bootstrap {
		return nil
	}
	if s.Samples < 1 {
		return fmt.Errorf("%w, received %d", errInvalidSamples, s.Samples)
	}
	if s.SampleSize < 1 || s.SampleSize >= n {
		return fmt.Errorf("%w: sample size %d, %d observations", errSampleSize, s.SampleSize, n)
	}
	if !(s.Alpha > 0 && s.Alpha < 1) {
		return fmt.Errorf("%w, received %v", errInvalidAlpha, s.Alpha)
	}
	return nil
}

// Evaluate computes the report of strategy against benchmark, both of equal
// length, and runs the bootstrap test when enabled
func Evaluate(ctx context.Context, strategy, benchmark []float64, s Settings) (*Report, error) {
	if len(strategy) != len(benchmark) {
		return nil, fmt.Errorf("%w: %d and %d", errLengthMismatch, len(strategy), len(benchmark))
	}
	if len(strategy) == 0 {
		return nil, errNoReturns
	}
	for i := range strategy {
		if !cmpmath.IsFinite(strategy[i]) || !cmpmath.IsFinite(benchmark[i]) {
			return nil, fmt.Errorf("%w at offset %d", errNonFinite, i)
		}
	}
	if err := s.Validate(len(strategy)); err != nil {
		return nil, err
	}
	r := &Report{Observations: len(strategy), RiskLevel: s.Alpha}
	r.Strategy, r.StrategyDrawdown = Compute(strategy, benchmark, s.PeriodsPerYear, s.RiskFreeRate)
	r.Benchmark, r.BenchmarkDrawdown = Compute(benchmark, benchmark, s.PeriodsPerYear, s.RiskFreeRate)
	if !s.Bootstrap {
		return r, nil
	}
	if identical(strategy, benchmark) {
		log.Debugln(log.Statistics, "strategy and benchmark series are identical, skipping resampling")
		for m := Metric(0); m < metricCount; m++ {
			if m.Standalone() {
				r.Tests = append(r.Tests, Test{Metric: m, Samples: s.Samples, Mean: r.Benchmark[m], P: 1})
			}
		}
		return r, nil
	}
	sampled, err := bootstrap(ctx, strategy, s)
	if err != nil {
		return nil, err
	}
	for m := Metric(0); m < metricCount; m++ {
		if !m.Standalone() {
			continue
		}
		values := make([]float64, 0, len(sampled))
		for i := range sampled {
			if cmpmath.IsFinite(sampled[i][m]) {
				values = append(values, sampled[i][m])
			}
		}
		r.Tests = append(r.Tests, tTest(m, values, r.Benchmark[m], s.Alpha))
	}
	return r, nil
}

// bootstrap draws every index up front from one seeded source so the result
// does not depend on scheduling, then evaluates the samples in parallel
func bootstrap(ctx context.Context, returns []float64, s Settings) ([]Values, error) {
	src := rand.New(rand.NewSource(s.Seed)) //nolint:gosec // reproducible resampling, not security sensitive
	indices := make([][]int, s.Samples)
	for i := range indices {
		indices[i] = make([]int, s.SampleSize)
		for j := range indices[i] {
			indices[i][j] = src.Intn(len(returns))
		}
	}
	workers := s.Workers
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}
	out := make([]Values, s.Samples)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range indices {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			sample := make([]float64, len(indices[i]))
			for j, k := range indices[i] {
				sample[j] = returns[k]
			}
			out[i], _ = Compute(sample, nil, s.PeriodsPerYear, s.RiskFreeRate)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	log.Debugf(log.Statistics, "evaluated %d bootstrap samples of %d observations with %d workers", s.Samples, s.SampleSize, workers)
	return out, nil
}

// tTest is a two sided one sample t-test of values against mu
func tTest(m Metric, values []float64, mu, alpha float64) Test {
	t := Test{Metric: m, Samples: len(values), T: math.NaN(), P: math.NaN()}
	if len(values) < 2 || !cmpmath.IsFinite(mu) {
		return t
	}
	t.Mean, t.StdDev = stat.MeanStdDev(values, nil)
	switch {
	case t.StdDev == 0 && t.Mean == mu:
		t.T, t.P = 0, 1
	case t.StdDev == 0:
		t.T, t.P = math.Copysign(math.Inf(1), t.Mean-mu), 0
	default:
		t.T = (t.Mean - mu) / (t.StdDev / math.Sqrt(float64(len(values))))
		dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(len(values) - 1)}
		t.P = 2 * dist.Survival(math.Abs(t.T))
	}
	t.Different = t.P < alpha
	return t
}

// Verdict reads the test outcome
func (t *Test) Verdict() string {
	switch {
	case math.IsNaN(t.P):
		return "not tested"
	case t.Different:
		return "statistically different from the benchmark"
	}
	return "not statistically different from the benchmark"
}

// Value returns the strategy and benchmark values of m
func (r *Report) Value(m Metric) (strategy, benchmark float64, err error) {
	if m >= metricCount {
		return 0, 0, fmt.Errorf("%w %d", errUnknownMetric, uint8(m))
	}
	return r.Strategy[m], r.Benchmark[m], nil
}

// Test returns the bootstrap test of m
func (r *Report) Test(m Metric) (*Test, error) {
	for i := range r.Tests {
		if r.Tests[i].Metric == m {
			return &r.Tests[i], nil
		}
	}
	return nil, fmt.Errorf("%s %w", m, errMetricNotTested)
}

func identical(a, b []float64) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
