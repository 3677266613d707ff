// Package benchmark builds the reference portfolios strategies are compared
// against: equal weighted and capitalization weighted over the whole
// universe, plus buy-and-hold of one reference asset.
package benchmark

import (
	"fmt"
	"math"
	"time"

	"github.com/BaptisteZloch/Crypto-momentum-portfolios/backtester/allocation"
	"github.com/BaptisteZloch/Crypto-momentum-portfolios/backtester/common"
	"github.com/BaptisteZloch/Crypto-momentum-portfolios/backtester/portfolio"
	"github.com/BaptisteZloch/Crypto-momentum-portfolios/backtester/rebalance"
	"github.com/BaptisteZloch/Crypto-momentum-portfolios/backtester/universe"
	"github.com/BaptisteZloch/Crypto-momentum-portfolios/log"
)

// DefaultSettings returns month-start rebalanced benchmarks with the default
// frictions, held against BTC-USDT
func DefaultSettings() Settings {
	return Settings{
		ReferenceAsset:  DefaultReferenceAsset,
		Frequency:       rebalance.MonthStart(),
		TransactionCost: 0.001,
		Slippage:        0.0005,
	}
}

// ReferenceName returns the series name of the buy-and-hold benchmark of asset
func ReferenceName(asset string) string {
	return asset + referenceSuffix
}

// Build runs every benchmark over the universe
func Build(u *universe.Universe, s Settings) (*Set, error) {
	if u == nil {
		return nil, fmt.Errorf("%w universe", common.ErrNilPointer)
	}
	if s.ReferenceAsset == "" {
		s.ReferenceAsset = DefaultReferenceAsset
	}
	ref, err := u.AssetIndex(s.ReferenceAsset)
	if err != nil {
		return nil, fmt.Errorf("reference asset: %w", err)
	}
	if err = u.Require(universe.Returns, universe.MarketCap); err != nil {
		return nil, err
	}
	flags, err := s.flags(u)
	if err != nil {
		return nil, err
	}
	ps := portfolio.Settings{Side: common.Long, TransactionCost: s.TransactionCost, Slippage: s.Slippage}

	set := &Set{dates: u.Dates(), series: make(map[string][]float64, 3)}
	equal, err := portfolio.Simulate(u, flags, ps, equalRebalancer(u.NumAssets()))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", EqualWeighted, err)
	}
	set.add(EqualWeighted, equal.Returns)

	capi, err := portfolio.Simulate(u, flags, ps, capitalizationRebalancer(u))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", CapitalizationWeighted, err)
	}
	set.add(CapitalizationWeighted, capi.Returns)

	held, err := u.Series(universe.Returns, ref)
	if err != nil {
		return nil, err
	}
	for t := range held {
		if math.IsNaN(held[t]) {
			held[t] = 0
		}
	}
	set.add(ReferenceName(s.ReferenceAsset), held)
	log.Infof(log.Benchmark, "built %d benchmarks over %d dates", len(set.names), len(set.dates))
	return set, nil
}

func (s *Settings) flags(u *universe.Universe) ([]bool, error) {
	start, end := u.Date(0), u.Date(u.Len()-1)
	var (
		schedule []time.Time
		err      error
	)
	if s.Scheduler != nil {
		schedule, err = s.Scheduler.Schedule(start, end, s.Frequency)
	} else {
		schedule, err = rebalance.Schedule(start, end, s.Frequency)
	}
	if err != nil {
		return nil, err
	}
	return rebalance.Flags(u.Dates(), schedule), nil
}

func equalRebalancer(assets int) portfolio.RebalancerFunc {
	all := make([]int, assets)
	for a := range all {
		all[a] = a
	}
	return func(int, int) (*portfolio.Weights, error) {
		res, err := allocation.Allocate(allocation.Equal, allocation.Classic, make([][]float64, assets))
		if err != nil {
			return nil, err
		}
		return &portfolio.Weights{Assets: all, Values: res.Weights}, nil
	}
}

// capitalizationRebalancer weights the assets with a positive market cap on
// the rebalance row, assets not yet listed are left out
func capitalizationRebalancer(u *universe.Universe) portfolio.RebalancerFunc {
	var row []float64
	return func(t, _ int) (*portfolio.Weights, error) {
		var err error
		row, err = u.Row(universe.MarketCap, t, row)
		if err != nil {
			return nil, err
		}
		var (
			held   []int
			window [][]float64
		)
		for a, v := range row {
			if v > 0 && !math.IsInf(v, 0) {
				held = append(held, a)
				window = append(window, []float64{v})
			}
		}
		if len(held) == 0 {
			return nil, fmt.Errorf("%w on %s", errNoCapitalizations, u.Date(t).Format(time.DateOnly))
		}
		res, err := allocation.Allocate(allocation.Capitalization, allocation.Classic, window)
		if err != nil {
			return nil, err
		}
		return &portfolio.Weights{Assets: held, Values: res.Weights}, nil
	}
}

func (s *Set) add(name string, returns []float64) {
	s.names = append(s.names, name)
	s.series[name] = returns
}

// Names returns the benchmark names in build order
func (s *Set) Names() []string {
	return append([]string(nil), s.names...)
}

// Len returns the number of dates
func (s *Set) Len() int {
	return len(s.dates)
}

// Dates returns a copy of the date index
func (s *Set) Dates() []time.Time {
	return append([]time.Time(nil), s.dates...)
}

// Series returns a copy of the named benchmark returns
func (s *Set) Series(name string) ([]float64, error) {
	r, ok := s.series[name]
	if !ok {
		return nil, fmt.Errorf("%w '%s', available: %v", errUnknownBenchmark, name, s.names)
	}
	return append([]float64(nil), r...), nil
}
