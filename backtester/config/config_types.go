package config

import (
	"errors"
	"time"

	"github.com/BaptisteZloch/Crypto-momentum-portfolios/backtester/allocation"
	"github.com/BaptisteZloch/Crypto-momentum-portfolios/backtester/common"
	"github.com/BaptisteZloch/Crypto-momentum-portfolios/backtester/indicators"
	"github.com/BaptisteZloch/Crypto-momentum-portfolios/backtester/rebalance"
	"github.com/BaptisteZloch/Crypto-momentum-portfolios/backtester/selection"
	"github.com/BaptisteZloch/Crypto-momentum-portfolios/backtester/universe"
	"github.com/shopspring/decimal"
)

// EnvPrefix prefixes environment variables overriding config values, for
// example CMP_STRATEGY_SETTINGS_TOP_K
const EnvPrefix = "CMP"

var (
	errNilConfig          = errors.New("nil config received")
	errNoDataPath         = errors.New("data path is required")
	errEndBeforeStart     = errors.New("end date is before start date")
	errNegativeFriction   = errors.New("transaction cost and slippage cannot be negative")
	errInvalidLookback    = errors.New("lookbacks must be positive")
	errInvalidRiskLevel   = errors.New("alpha must be within (0, 1)")
	errInvalidPeriods     = errors.New("periods per year must be positive")
	errNoReferenceAsset   = errors.New("reference asset is required")
	errInvalidSampleCount = errors.New("bootstrap samples and sample size must be positive")
)

// Config defines a full strategy run
type Config struct {
	Nickname          string            `json:"nickname" mapstructure:"nickname"`
	DataSettings      DataSettings      `json:"data-settings" mapstructure:"data-settings"`
	StrategySettings  StrategySettings  `json:"strategy-settings" mapstructure:"strategy-settings"`
	PortfolioSettings PortfolioSettings `json:"portfolio-settings" mapstructure:"portfolio-settings"`
	BenchmarkSettings BenchmarkSettings `json:"benchmark-settings" mapstructure:"benchmark-settings"`
	StatisticSettings StatisticSettings `json:"statistic-settings" mapstructure:"statistic-settings"`
}

// DataSettings locate the universe and control its derived fields
type DataSettings struct {
	Path               string               `json:"path" mapstructure:"path"`
	StartDate          time.Time            `json:"start-date" mapstructure:"start-date"`
	EndDate            time.Time            `json:"end-date" mapstructure:"end-date"`
	Lookback           int                  `json:"lookback" mapstructure:"lookback"`
	TSMomentumLookback int                  `json:"ts-momentum-lookback" mapstructure:"ts-momentum-lookback"`
	Overrides          indicators.Overrides `json:"indicator-overrides" mapstructure:"indicator-overrides"`
}

// StrategySettings select and weight the held assets
type StrategySettings struct {
	RankingField   universe.Field      `json:"ranking-field" mapstructure:"ranking-field"`
	RankingMode    selection.Mode      `json:"ranking-mode" mapstructure:"ranking-mode"`
	TopK           int                 `json:"top-k" mapstructure:"top-k"`
	Allocation     allocation.Method   `json:"allocation" mapstructure:"allocation"`
	AllocationMode allocation.Mode     `json:"allocation-mode" mapstructure:"allocation-mode"`
	Frequency      rebalance.Frequency `json:"rebalance-frequency" mapstructure:"rebalance-frequency"`
	Side           common.Side         `json:"side" mapstructure:"side"`
	Verbose        bool                `json:"verbose" mapstructure:"verbose"`
}

// PortfolioSettings are the trading frictions charged on every rebalance
type PortfolioSettings struct {
	TransactionCost decimal.Decimal `json:"transaction-cost" mapstructure:"transaction-cost"`
	Slippage        decimal.Decimal `json:"slippage" mapstructure:"slippage"`
}

// BenchmarkSettings choose the comparison series
type BenchmarkSettings struct {
	Name           string              `json:"name" mapstructure:"name"`
	ReferenceAsset string              `json:"reference-asset" mapstructure:"reference-asset"`
	Frequency      rebalance.Frequency `json:"rebalance-frequency" mapstructure:"rebalance-frequency"`
}

// StatisticSettings control the performance report and bootstrap test
type StatisticSettings struct {
	PeriodsPerYear int             `json:"periods-per-year" mapstructure:"periods-per-year"`
	RiskFreeRate   decimal.Decimal `json:"risk-free-rate" mapstructure:"risk-free-rate"`
	Bootstrap      bool            `json:"bootstrap" mapstructure:"bootstrap"`
	Samples        int             `json:"samples" mapstructure:"samples"`
	SampleSize     int             `json:"sample-size" mapstructure:"sample-size"`
	Alpha          decimal.Decimal `json:"alpha" mapstructure:"alpha"`
	Seed           int64           `json:"seed" mapstructure:"seed"`
	Workers        int             `json:"workers" mapstructure:"workers"`
}
