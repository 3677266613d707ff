// Package portfolio runs the rebalance and drift state machine shared by
// strategies and benchmarks.
package portfolio

import (
	"fmt"
	"math"
	"time"

	"github.com/BaptisteZloch/Crypto-momentum-portfolios/backtester/common"
	"github.com/BaptisteZloch/Crypto-momentum-portfolios/backtester/universe"
	"github.com/BaptisteZloch/Crypto-momentum-portfolios/log"
)

// Validate checks the settings before any row is processed
func (s *Settings) Validate() error {
	if s.Side != common.Long && s.Side != common.Short {
		return fmt.Errorf("%w, received %d", errInvalidSide, s.Side)
	}
	for _, v := range []float64{s.TransactionCost, s.Slippage} {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w, received %v", errInvalidCost, v)
		}
	}
	return nil
}

// RebalanceCost is charged on every rebalance row: both legs of every
// position plus slippage, whatever the turnover
func (s *Settings) RebalanceCost(positions int) float64 {
	return s.TransactionCost*float64(positions)*2 + s.Slippage
}

// Simulate walks every universe row in order. The first row and every row
// flagged in rebalance ask r for new target weights and pay the rebalance
// cost, other rows hold the drifted weights. Realised returns are scaled by
// the side. NaN asset returns count as zero.
func Simulate(u *universe.Universe, rebalance []bool, s Settings, r Rebalancer) (*Simulation, error) {
	if u == nil || r == nil {
		return nil, common.ErrNilArguments
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if len(rebalance) != u.Len() {
		return nil, fmt.Errorf("%w: %d flags, %d rows", errScheduleLength, len(rebalance), u.Len())
	}
	if err := u.Require(universe.Returns); err != nil {
		return nil, err
	}
	n, assets := u.Len(), u.NumAssets()
	sim := &Simulation{
		Returns: make([]float64, n),
		Weights: make([][]float64, n),
	}
	table := make([]float64, n*assets)
	var (
		st      = awaitingRebalance
		current Weights
		cost    float64
		prev    int
		row     []float64
		err     error
	)
	for t := 0; t < n; t++ {
		if t == 0 || rebalance[t] {
			st = awaitingRebalance
		}
		cost = 0
		if st == awaitingRebalance {
			if t == 0 {
				prev = 0
			}
			target, err := r.Rebalance(t, prev)
			if err != nil {
				return nil, fmt.Errorf("rebalance on %s: %w", u.Date(t).Format(time.DateOnly), err)
			}
			if err = target.validate(assets); err != nil {
				return nil, fmt.Errorf("rebalance on %s: %w", u.Date(t).Format(time.DateOnly), err)
			}
			current = Weights{
				Assets: append(current.Assets[:0], target.Assets...),
				Values: append(current.Values[:0], target.Values...),
			}
			cost = s.RebalanceCost(len(current.Assets))
			sim.Rebalances = append(sim.Rebalances, t)
			log.Debugf(log.Backtester, "rebalancing on %s into %d assets", u.Date(t).Format(time.DateOnly), len(current.Assets))
			prev = t
			st = holding
		}
		sim.Weights[t] = table[t*assets : (t+1)*assets : (t+1)*assets]
		for i, a := range current.Assets {
			sim.Weights[t][a] = current.Values[i]
		}
		row, err = u.Row(universe.Returns, t, row)
		if err != nil {
			return nil, err
		}
		held := make([]float64, len(current.Assets))
		for i, a := range current.Assets {
			held[i] = row[a]
		}
		sim.Returns[t] = (Dot(current.Values, held) - cost) * s.Side.Sign()
		if err = DriftInPlace(current.Values, held); err != nil {
			return nil, fmt.Errorf("drift on %s: %w", u.Date(t).Format(time.DateOnly), err)
		}
	}
	return sim, nil
}

func (w *Weights) validate(assets int) error {
	if w == nil || len(w.Assets) == 0 {
		return fmt.Errorf("%w: no assets", errInvalidWeights)
	}
	if len(w.Assets) != len(w.Values) {
		return fmt.Errorf("%w: %d assets, %d values", errInvalidWeights, len(w.Assets), len(w.Values))
	}
	seen := make(map[int]struct{}, len(w.Assets))
	var sum float64
	for i, a := range w.Assets {
		if a < 0 || a >= assets {
			return fmt.Errorf("%w: asset position %d out of range", errInvalidWeights, a)
		}
		if _, ok := seen[a]; ok {
			return fmt.Errorf("%w: asset position %d repeated", errInvalidWeights, a)
		}
		seen[a] = struct{}{}
		v := w.Values[i]
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: weight %v", errInvalidWeights, v)
		}
		sum += v
	}
	if math.Abs(sum-1) > weightTolerance {
		return fmt.Errorf("%w: weights sum to %v", errInvalidWeights, sum)
	}
	return nil
}

// Dot returns the weighted sum of returns, NaN returns count as zero
func Dot(weights, returns []float64) float64 {
	var sum float64
	for i, w := range weights {
		if r := returns[i]; !math.IsNaN(r) {
			sum += w * r
		}
	}
	return sum
}

// Drift returns the weights after one period of returns without trading,
// w_i(1+r_i) / Σ_j w_j(1+r_j). NaN returns count as zero.
func Drift(weights, returns []float64) ([]float64, error) {
	out := append([]float64(nil), weights...)
	if err := DriftInPlace(out, returns); err != nil {
		return nil, err
	}
	return out, nil
}

// DriftInPlace applies Drift to weights
func DriftInPlace(weights, returns []float64) error {
	var denominator float64
	for i, w := range weights {
		r := returns[i]
		if math.IsNaN(r) {
			r = 0
		}
		weights[i] = w * (1 + r)
		denominator += weights[i]
	}
	if denominator == 0 || math.IsNaN(denominator) || math.IsInf(denominator, 0) {
		return fmt.Errorf("%w: denominator %v", common.ErrDegenerateDrift, denominator)
	}
	for i := range weights {
		weights[i] /= denominator
	}
	return nil
}
