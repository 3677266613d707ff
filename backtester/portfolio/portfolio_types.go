package portfolio

import (
	"errors"

	"github.com/BaptisteZloch/Crypto-momentum-portfolios/backtester/common"
)

const weightTolerance = 1e-6

var (
	errScheduleLength = errors.New("rebalance flags must cover every universe row")
	errInvalidCost    = errors.New("transaction cost and slippage must be finite and non-negative")
	errInvalidSide    = errors.New("side must be long or short")
	errInvalidWeights = errors.New("invalid target weights")
)

type state uint8

const (
	awaitingRebalance state = iota
	holding
)

// Weights is a target allocation over universe asset positions. Values are
// non-negative and sum to one.
type Weights struct {
	Assets []int
	Values []float64
}

// Rebalancer supplies the target weights on a rebalance row. previous is the
// row of the prior rebalance, or t itself on the first one.
type Rebalancer interface {
	Rebalance(t, previous int) (*Weights, error)
}

// RebalancerFunc adapts a function to the Rebalancer interface
type RebalancerFunc func(t, previous int) (*Weights, error)

// Rebalance calls f(t, previous)
func (f RebalancerFunc) Rebalance(t, previous int) (*Weights, error) {
	return f(t, previous)
}

// Settings are the trading frictions and direction of a simulation
type Settings struct {
	Side            common.Side
	TransactionCost float64
	Slippage        float64
}

// Simulation is the outcome of one pass over the universe. Weights holds for
// every row the vector over all universe assets that produced that row's
// return, before drift.
type Simulation struct {
	Returns    []float64
	Weights    [][]float64
	Rebalances []int
}
