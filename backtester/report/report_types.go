package report

import (
	"errors"
	"time"

	"github.com/BaptisteZloch/Crypto-momentum-portfolios/backtester/engine"
	"github.com/BaptisteZloch/Crypto-momentum-portfolios/backtester/statistics"
	"github.com/shopspring/decimal"
)

// Format selects how a report is written
type Format uint8

// Report formats
const (
	Text Format = iota
	JSON
	HTML
)

const (
	precision        = 6
	chartWidth       = 1000
	chartHeight      = 500
	chartLabelSplits = 8
	missing          = "-"
)

var (
	errUnknownFormat = errors.New("unknown report format")
	errNoPlots       = errors.New("chart has no plots")
)

// Data is the printable outcome of a strategy run evaluated against a
// benchmark
type Data struct {
	Name              string          `json:"name"`
	Benchmark         string          `json:"benchmark"`
	Settings          engine.Settings `json:"settings"`
	Start             time.Time       `json:"start"`
	End               time.Time       `json:"end"`
	Observations      int             `json:"observations"`
	Rebalances        int             `json:"rebalances"`
	LastSelection     []string        `json:"last-selection"`
	Metrics           []MetricRow     `json:"metrics"`
	Tests             []TestRow       `json:"tests,omitempty"`
	RiskLevel         float64         `json:"risk-level"`
	StrategyDrawdown  DrawdownRow     `json:"strategy-drawdown"`
	BenchmarkDrawdown DrawdownRow     `json:"benchmark-drawdown"`
	Warnings          []string        `json:"warnings,omitempty"`

	equity   *Chart
	drawdown *Chart
}

// MetricRow holds one metric of the strategy and the benchmark. Values that
// cannot be computed are null.
type MetricRow struct {
	Metric    statistics.Metric   `json:"metric"`
	Percent   bool                `json:"percent"`
	Strategy  decimal.NullDecimal `json:"strategy"`
	Benchmark decimal.NullDecimal `json:"benchmark"`
}

// TestRow is the bootstrap t-test of one metric
type TestRow struct {
	Metric  statistics.Metric   `json:"metric"`
	Samples int                 `json:"samples"`
	Mean    decimal.NullDecimal `json:"mean"`
	StdDev  decimal.NullDecimal `json:"std-dev"`
	T       decimal.NullDecimal `json:"t-stat"`
	P       decimal.NullDecimal `json:"p-value"`
	Verdict string              `json:"verdict"`
}

// DrawdownRow is the worst drawdown episode of a series
type DrawdownRow struct {
	Peak     time.Time           `json:"peak"`
	Trough   time.Time           `json:"trough"`
	Drawdown decimal.NullDecimal `json:"drawdown"`
	Duration int                 `json:"duration"`
}

// Chart holds the lines of one report chart
type Chart struct {
	Title string
	Data  []ChartLine
}

// ChartLine is a single named series
type ChartLine struct {
	Name      string
	LinePlots []LinePlot
}

// LinePlot is one point of a chart line
type LinePlot struct {
	Value     float64
	UnixMilli int64
}
