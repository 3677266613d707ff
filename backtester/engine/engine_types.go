package engine

import (
	"errors"
	"sync"
	"time"

	"github.com/BaptisteZloch/Crypto-momentum-portfolios/backtester/allocation"
	"github.com/BaptisteZloch/Crypto-momentum-portfolios/backtester/benchmark"
	"github.com/BaptisteZloch/Crypto-momentum-portfolios/backtester/common"
	"github.com/BaptisteZloch/Crypto-momentum-portfolios/backtester/rebalance"
	"github.com/BaptisteZloch/Crypto-momentum-portfolios/backtester/selection"
	"github.com/BaptisteZloch/Crypto-momentum-portfolios/backtester/statistics"
	"github.com/BaptisteZloch/Crypto-momentum-portfolios/backtester/universe"
	"github.com/gofrs/uuid"
)

// ErrTaskNotFound is returned when no task has the requested ID
var ErrTaskNotFound = errors.New("task not found")

var (
	errTopKExceedsAssets = errors.New("top k exceeds the number of assets")
	errInvalidTopK       = errors.New("top k must be at least one")
	errResultMismatch    = errors.New("result does not match the universe dates")
	errTaskIsRunning     = errors.New("task is already running")
	errAlreadyRan        = errors.New("task already ran")
	errTaskHasNotRan     = errors.New("task hasn't ran yet")
	errCannotClear       = errors.New("cannot clear task")
)

// Settings describe one strategy run
type Settings struct {
	Name            string              `json:"name,omitempty"`
	RankingField    universe.Field      `json:"ranking-field"`
	RankingMode     selection.Mode      `json:"ranking-mode"`
	TopK            int                 `json:"top-k"`
	Allocation      allocation.Method   `json:"allocation"`
	AllocationMode  allocation.Mode     `json:"allocation-mode"`
	Frequency       rebalance.Frequency `json:"frequency"`
	Side            common.Side         `json:"side"`
	TransactionCost float64             `json:"transaction-cost"`
	Slippage        float64             `json:"slippage"`
}

// Result is the outcome of a strategy run. Weights holds one row per date
// over every universe asset, the vector that produced that date's return.
type Result struct {
	Settings   Settings      `json:"settings"`
	Dates      []time.Time   `json:"dates"`
	Assets     []string      `json:"assets"`
	Returns    []float64     `json:"returns"`
	Weights    [][]float64   `json:"weights"`
	Rebalances []time.Time   `json:"rebalances"`
	Selections [][]string    `json:"selections"`
	Warnings   []string      `json:"warnings,omitempty"`
	Duration   time.Duration `json:"duration"`
}

// Option configures a Backtester
type Option func(*Backtester) error

// Backtester runs strategies against one immutable universe. It is safe for
// concurrent use.
type Backtester struct {
	universe          *universe.Universe
	scheduler         *rebalance.Scheduler
	benchmarkSettings benchmark.Settings

	m          sync.Mutex
	benchmarks *benchmark.Set
}

// Task status values
const (
	StatusPending  = "pending"
	StatusRunning  = "running"
	StatusFinished = "finished"
	StatusFailed   = "failed"
)

// Task is a strategy run tracked by the TaskManager
type Task struct {
	ID            uuid.UUID
	Settings      Settings
	BenchmarkName string
	Statistics    statistics.Settings

	status       string
	dateCreated  time.Time
	dateStarted  time.Time
	dateFinished time.Time
	result       *Result
	report       *statistics.Report
	err          error
}

// TaskSummary describes a task without its result
type TaskSummary struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Benchmark    string    `json:"benchmark"`
	Status       string    `json:"status"`
	DateCreated  time.Time `json:"date-created"`
	DateStarted  time.Time `json:"date-started,omitempty"`
	DateFinished time.Time `json:"date-finished,omitempty"`
	Warnings     int       `json:"warnings"`
	Error        string    `json:"error,omitempty"`
	TotalReturn  float64   `json:"total-return"`
	Rebalances   int       `json:"rebalances"`
	Observations int       `json:"observations"`
}

// TaskManager tracks strategy runs against one Backtester
type TaskManager struct {
	m          sync.Mutex
	tasks      []*Task
	backtester *Backtester
}
