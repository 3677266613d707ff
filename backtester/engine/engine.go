// Package engine wires ranking, allocation and the portfolio simulation into
// strategy runs and evaluates them against benchmarks.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/BaptisteZloch/Crypto-momentum-portfolios/backtester/allocation"
	"github.com/BaptisteZloch/Crypto-momentum-portfolios/backtester/benchmark"
	"github.com/BaptisteZloch/Crypto-momentum-portfolios/backtester/common"
	"github.com/BaptisteZloch/Crypto-momentum-portfolios/backtester/portfolio"
	"github.com/BaptisteZloch/Crypto-momentum-portfolios/backtester/rebalance"
	"github.com/BaptisteZloch/Crypto-momentum-portfolios/backtester/selection"
	"github.com/BaptisteZloch/Crypto-momentum-portfolios/backtester/statistics"
	"github.com/BaptisteZloch/Crypto-momentum-portfolios/backtester/universe"
	"github.com/BaptisteZloch/Crypto-momentum-portfolios/log"
)

// DefaultSettings ranks on momentum, holds the top five equally weighted and
// rebalances at month end
func DefaultSettings() Settings {
	return Settings{
		RankingField:    universe.Momentum,
		RankingMode:     selection.Descending,
		TopK:            5,
		Allocation:      allocation.Equal,
		AllocationMode:  allocation.Classic,
		Frequency:       rebalance.Monthly(),
		Side:            common.Long,
		TransactionCost: 0.001,
		Slippage:        0.0005,
	}
}

// WithScheduler shares a schedule cache between backtesters
func WithScheduler(s *rebalance.Scheduler) Option {
	return func(b *Backtester) error {
		if s == nil {
			return fmt.Errorf("%w scheduler", common.ErrNilPointer)
		}
		b.scheduler = s
		return nil
	}
}

// WithBenchmarkSettings sets how the comparison benchmarks are built
func WithBenchmarkSettings(s benchmark.Settings) Option {
	return func(b *Backtester) error {
		b.benchmarkSettings = s
		return nil
	}
}

// New returns a Backtester over the universe
func New(u *universe.Universe, opts ...Option) (*Backtester, error) {
	if u == nil {
		return nil, fmt.Errorf("%w universe", common.ErrNilPointer)
	}
	b := &Backtester{
		universe:          u,
		benchmarkSettings: benchmark.DefaultSettings(),
	}
	for _, opt := range opts {
		if err := opt(b); err != nil {
			return nil, err
		}
	}
	if b.scheduler == nil {
		b.scheduler = rebalance.NewScheduler(rebalance.DefaultCacheSize)
	}
	b.benchmarkSettings.Scheduler = b.scheduler
	return b, nil
}

// Universe returns the universe runs are simulated on
func (b *Backtester) Universe() *universe.Universe {
	return b.universe
}

// Validate checks every setting against the universe before any date is
// processed
func (s *Settings) Validate(u *universe.Universe) error {
	if s.TopK < 1 {
		return fmt.Errorf("%w, received %d", errInvalidTopK, s.TopK)
	}
	if s.TopK > u.NumAssets() {
		return fmt.Errorf("%w: top k %d, %d assets", errTopKExceedsAssets, s.TopK, u.NumAssets())
	}
	if err := u.Require(universe.Returns, s.RankingField, s.Allocation.Field()); err != nil {
		return err
	}
	if err := s.Frequency.Validate(); err != nil {
		return err
	}
	ps := s.portfolio()
	return ps.Validate()
}

func (s *Settings) portfolio() portfolio.Settings {
	return portfolio.Settings{
		Side:            s.Side,
		TransactionCost: s.TransactionCost,
		Slippage:        s.Slippage,
	}
}

// RunStrategy simulates the strategy over every universe date
func (b *Backtester) RunStrategy(s Settings) (*Result, error) {
	if b == nil {
		return nil, fmt.Errorf("%w Backtester", common.ErrNilPointer)
	}
	if err := s.Validate(b.universe); err != nil {
		return nil, err
	}
	started := time.Now()
	u := b.universe
	schedule, err := b.scheduler.Schedule(u.Date(0), u.Date(u.Len()-1), s.Frequency)
	if err != nil {
		return nil, err
	}
	res := &Result{
		Settings: s,
		Dates:    u.Dates(),
		Assets:   u.Assets(),
	}
	sim, err := portfolio.Simulate(u, rebalance.Flags(res.Dates, schedule), s.portfolio(), &strategy{
		settings: &s,
		universe: u,
		result:   res,
	})
	if err != nil {
		return nil, err
	}
	res.Returns = sim.Returns
	res.Weights = sim.Weights
	res.Rebalances = make([]time.Time, len(sim.Rebalances))
	for i, t := range sim.Rebalances {
		res.Rebalances[i] = u.Date(t)
	}
	res.Duration = time.Since(started)
	log.Infof(log.Backtester, "%s ran over %d dates with %d rebalances in %s", s.String(), u.Len(), len(res.Rebalances), res.Duration)
	return res, nil
}

// String returns the run name, or a description of the settings when unnamed
func (s *Settings) String() string {
	if s.Name != "" {
		return s.Name
	}
	return fmt.Sprintf("%s %s top %d %s", s.RankingField, s.RankingMode, s.TopK, s.Allocation)
}

// Benchmarks returns the benchmark set of the universe, built on first use
func (b *Backtester) Benchmarks() (*benchmark.Set, error) {
	b.m.Lock()
	defer b.m.Unlock()
	if b.benchmarks != nil {
		return b.benchmarks, nil
	}
	set, err := benchmark.Build(b.universe, b.benchmarkSettings)
	if err != nil {
		return nil, err
	}
	b.benchmarks = set
	return set, nil
}

// Evaluate compares a result to the named benchmark
func (b *Backtester) Evaluate(res *Result, benchmarkName string, s statistics.Settings) (*statistics.Report, error) {
	return b.EvaluateContext(context.Background(), res, benchmarkName, s)
}

// EvaluateContext is Evaluate with a context cancelling the bootstrap
func (b *Backtester) EvaluateContext(ctx context.Context, res *Result, benchmarkName string, s statistics.Settings) (*statistics.Report, error) {
	if res == nil {
		return nil, fmt.Errorf("%w Result", common.ErrNilPointer)
	}
	set, err := b.Benchmarks()
	if err != nil {
		return nil, err
	}
	if len(res.Returns) != set.Len() {
		return nil, fmt.Errorf("%w: %d returns, %d dates", errResultMismatch, len(res.Returns), set.Len())
	}
	if benchmarkName == "" {
		benchmarkName = benchmark.EqualWeighted
	}
	series, err := set.Series(benchmarkName)
	if err != nil {
		return nil, err
	}
	return statistics.Evaluate(ctx, res.Returns, series, s)
}

// strategy ranks and allocates on every rebalance row
type strategy struct {
	settings *Settings
	universe *universe.Universe
	result   *Result
	row      []float64
}

func (st *strategy) Rebalance(t, previous int) (*portfolio.Weights, error) {
	var err error
	st.row, err = st.universe.Row(st.settings.RankingField, t, st.row)
	if err != nil {
		return nil, err
	}
	selected, err := selection.TopK(st.row, st.settings.RankingMode, st.settings.TopK)
	if err != nil {
		return nil, err
	}
	window, err := st.universe.Window(st.settings.Allocation.Field(), selected, previous, t)
	if err != nil {
		return nil, err
	}
	alloc, err := allocation.Allocate(st.settings.Allocation, st.settings.AllocationMode, window)
	if err != nil {
		return nil, err
	}
	day := st.universe.Date(t).Format(time.DateOnly)
	if !alloc.Converged {
		st.result.Warnings = append(st.result.Warnings, fmt.Sprintf("%s: %s", day, alloc.Warning))
	}
	names := make([]string, len(selected))
	for i, a := range selected {
		names[i] = st.universe.Asset(a)
	}
	st.result.Selections = append(st.result.Selections, names)
	log.Debugf(log.Backtester, "%s selected %v weights %v", day, names, alloc.Weights)
	return &portfolio.Weights{Assets: selected, Values: alloc.Weights}, nil
}
