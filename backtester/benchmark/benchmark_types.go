package benchmark

import (
	"errors"
	"time"

	"github.com/BaptisteZloch/Crypto-momentum-portfolios/backtester/rebalance"
)

// Benchmark series names
const (
	EqualWeighted          = "equal_weighted_benchmark"
	CapitalizationWeighted = "capi_weighted_benchmark"
	referenceSuffix        = "_benchmark"
)

// DefaultReferenceAsset is held by the buy-and-hold benchmark when none is set
const DefaultReferenceAsset = "BTC-USDT"

var (
	errUnknownBenchmark  = errors.New("unknown benchmark")
	errNoCapitalizations = errors.New("no asset has a positive market cap")
)

// Settings configure the benchmark builder. Rebalanced benchmarks pay the
// same frictions as strategies.
type Settings struct {
	ReferenceAsset  string
	Frequency       rebalance.Frequency
	TransactionCost float64
	Slippage        float64
	Scheduler       *rebalance.Scheduler
}

// Set holds the benchmark return series aligned on the universe dates
type Set struct {
	dates  []time.Time
	names  []string
	series map[string][]float64
}
