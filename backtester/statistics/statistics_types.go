package statistics

import "errors"

// Metric identifies one statistic of the performance report
type Metric uint8

// Metrics up to and including TailRatio only depend on the evaluated series
// and are the ones the bootstrap test resamples. The rest are measured
// against the benchmark.
const (
	ExpectedReturn Metric = iota
	CAGR
	ExpectedVolatility
	Skewness
	Kurtosis
	VaR
	CVaR
	MaxDrawdown
	KellyCriterion
	ProfitFactor
	PayoffRatio
	Expectancy
	SharpeRatio
	SortinoRatio
	BurkeRatio
	CalmarRatio
	TailRatio
	SpecificRisk
	SystematicRisk
	Beta
	Alpha
	JensenAlpha
	RSquared
	TrackingError
	TreynorRatio
	InformationRatio
	metricCount
)

// Defaults used when a setting is left at zero
const (
	DefaultPeriodsPerYear = 365
	DefaultSamples        = 1000
	DefaultSampleSize     = 250
	DefaultAlpha          = 0.05
	tailQuantile          = 0.05
)

var (
	errLengthMismatch  = errors.New("strategy and benchmark lengths differ")
	errNoReturns       = errors.New("no returns to evaluate")
	errNonFinite       = errors.New("returns must be finite")
	errSampleSize      = errors.New("bootstrap sample size must be positive and smaller than the number of observations")
	errInvalidSamples  = errors.New("bootstrap sample count must be positive")
	errInvalidAlpha    = errors.New("risk level must be within (0, 1)")
	errInvalidPeriods  = errors.New("periods per year must be positive")
	errUnknownMetric   = errors.New("unknown metric")
	errMetricNotTested = errors.New("metric was not tested")
)

// Settings control the statistic set and the optional bootstrap test
type Settings struct {
	PeriodsPerYear float64 `json:"periods-per-year"`
	RiskFreeRate   float64 `json:"risk-free-rate"`
	Bootstrap      bool    `json:"bootstrap"`
	Samples        int     `json:"samples"`
	SampleSize     int     `json:"sample-size"`
	Alpha          float64 `json:"alpha"`
	Seed           int64   `json:"seed"`
	Workers        int     `json:"workers,omitempty"`
}

// Values holds one value per metric
type Values [metricCount]float64

// ValueAtOffset is a point of the compounded value curve
type ValueAtOffset struct {
	Offset int     `json:"offset"`
	Value  float64 `json:"value"`
}

// Swing holds one drawdown episode from a peak to its lowest point
type Swing struct {
	Highest  ValueAtOffset `json:"highest"`
	Lowest   ValueAtOffset `json:"lowest"`
	Drawdown float64       `json:"drawdown"`
	Duration int           `json:"duration"`
}

// Test is the outcome of the bootstrap t-test of one metric
type Test struct {
	Metric    Metric  `json:"metric"`
	Samples   int     `json:"samples"`
	Mean      float64 `json:"mean"`
	StdDev    float64 `json:"std-dev"`
	T         float64 `json:"t-stat"`
	P         float64 `json:"p-value"`
	Different bool    `json:"different"`
}

// Report compares a strategy and a benchmark return series
type Report struct {
	Strategy          Values  `json:"-"`
	Benchmark         Values  `json:"-"`
	StrategyDrawdown  Swing   `json:"strategy-drawdown"`
	BenchmarkDrawdown Swing   `json:"benchmark-drawdown"`
	Tests             []Test  `json:"tests,omitempty"`
	RiskLevel         float64 `json:"risk-level"`
	Observations      int     `json:"observations"`
}
