// Package config loads and validates strategy run configuration from JSON or
// YAML files with environment overrides.
package config

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/BaptisteZloch/Crypto-momentum-portfolios/backtester/benchmark"
	"github.com/BaptisteZloch/Crypto-momentum-portfolios/backtester/common"
	"github.com/BaptisteZloch/Crypto-momentum-portfolios/backtester/engine"
	"github.com/BaptisteZloch/Crypto-momentum-portfolios/backtester/statistics"
	"github.com/BaptisteZloch/Crypto-momentum-portfolios/backtester/universe"
	"github.com/BaptisteZloch/Crypto-momentum-portfolios/log"
	"github.com/mitchellh/mapstructure"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

var defaults = map[string]any{
	"nickname":                               "",
	"data-settings.path":                     "",
	"data-settings.start-date":               "",
	"data-settings.end-date":                 "",
	"data-settings.lookback":                 24,
	"data-settings.ts-momentum-lookback":     12,
	"strategy-settings.ranking-field":        "momentum",
	"strategy-settings.ranking-mode":         "descending",
	"strategy-settings.top-k":                5,
	"strategy-settings.allocation":           "equal",
	"strategy-settings.allocation-mode":      "classic",
	"strategy-settings.rebalance-frequency":  "monthly",
	"strategy-settings.side":                 "long",
	"strategy-settings.verbose":              false,
	"portfolio-settings.transaction-cost":    "0.001",
	"portfolio-settings.slippage":            "0.0005",
	"benchmark-settings.name":                benchmark.EqualWeighted,
	"benchmark-settings.reference-asset":     benchmark.DefaultReferenceAsset,
	"benchmark-settings.rebalance-frequency": "month-start",
	"statistic-settings.periods-per-year":    statistics.DefaultPeriodsPerYear,
	"statistic-settings.risk-free-rate":      "0",
	"statistic-settings.bootstrap":           true,
	"statistic-settings.samples":             statistics.DefaultSamples,
	"statistic-settings.sample-size":         statistics.DefaultSampleSize,
	"statistic-settings.alpha":               "0.05",
	"statistic-settings.seed":                0,
	"statistic-settings.workers":             0,
}

func newViper() *viper.Viper {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

// ReadConfigFromFile loads a JSON or YAML config, applying defaults and
// environment overrides, and validates it
func ReadConfigFromFile(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	log.Infof(log.ConfigMgr, "loaded config from %s", v.ConfigFileUsed())
	return decode(v)
}

// DefaultConfig returns the defaults with environment overrides applied
func DefaultConfig() (*Config, error) {
	return decode(newViper())
}

func decode(v *viper.Viper) (*Config, error) {
	var c Config
	err := v.Unmarshal(&c, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		decimalHook,
		timeHook,
		mapstructure.TextUnmarshallerHookFunc(),
	)))
	if err != nil {
		return nil, err
	}
	if err = c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

var (
	decimalType = reflect.TypeOf(decimal.Decimal{})
	timeType    = reflect.TypeOf(time.Time{})
)

func decimalHook(_, t reflect.Type, data any) (any, error) {
	if t != decimalType {
		return data, nil
	}
	switch d := data.(type) {
	case string:
		if d == "" {
			return decimal.Zero, nil
		}
		return decimal.NewFromString(d)
	case float64:
		return decimal.NewFromFloat(d), nil
	case float32:
		return decimal.NewFromFloat32(d), nil
	case int:
		return decimal.NewFromInt(int64(d)), nil
	case int64:
		return decimal.NewFromInt(d), nil
	}
	return data, nil
}

func timeHook(f, t reflect.Type, data any) (any, error) {
	if t != timeType || f.Kind() != reflect.String {
		return data, nil
	}
	s := strings.TrimSpace(data.(string))
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range []string{time.DateOnly, time.RFC3339, time.DateTime} {
		if tm, err := time.Parse(layout, s); err == nil {
			return tm, nil
		}
	}
	return nil, fmt.Errorf("%w: cannot parse date '%s'", common.ErrInvalidSetting, s)
}

// Validate checks all config settings
func (c *Config) Validate() error {
	if c == nil {
		return errNilConfig
	}
	if err := c.validateData(); err != nil {
		return err
	}
	if err := c.validateStrategy(); err != nil {
		return err
	}
	if err := c.validatePortfolio(); err != nil {
		return err
	}
	if err := c.validateBenchmark(); err != nil {
		return err
	}
	return c.validateStatistics()
}

func (c *Config) validateData() error {
	d := &c.DataSettings
	if d.Lookback < 1 || d.TSMomentumLookback < 1 {
		return fmt.Errorf("%w, received %d and %d", errInvalidLookback, d.Lookback, d.TSMomentumLookback)
	}
	if !d.StartDate.IsZero() && !d.EndDate.IsZero() && d.EndDate.Before(d.StartDate) {
		return fmt.Errorf("%w: %v before %v", errEndBeforeStart, d.EndDate.Format(time.DateOnly), d.StartDate.Format(time.DateOnly))
	}
	return d.Overrides.Validate()
}

func (c *Config) validateStrategy() error {
	s := &c.StrategySettings
	if s.TopK < 1 {
		return fmt.Errorf("%w: top k %d", common.ErrInvalidSetting, s.TopK)
	}
	if s.Side != common.Long && s.Side != common.Short {
		return fmt.Errorf("%w: side %d", common.ErrInvalidSetting, s.Side)
	}
	return s.Frequency.Validate()
}

func (c *Config) validatePortfolio() error {
	p := &c.PortfolioSettings
	if p.TransactionCost.IsNegative() || p.Slippage.IsNegative() {
		return fmt.Errorf("%w, received %v and %v", errNegativeFriction, p.TransactionCost, p.Slippage)
	}
	return nil
}

func (c *Config) validateBenchmark() error {
	b := &c.BenchmarkSettings
	if b.ReferenceAsset == "" {
		return errNoReferenceAsset
	}
	return b.Frequency.Validate()
}

func (c *Config) validateStatistics() error {
	s := &c.StatisticSettings
	if s.PeriodsPerYear < 1 {
		return fmt.Errorf("%w, received %d", errInvalidPeriods, s.PeriodsPerYear)
	}
	if !s.Bootstrap {
		return nil
	}
	if s.Samples < 1 || s.SampleSize < 1 {
		return fmt.Errorf("%w, received %d samples of %d", errInvalidSampleCount, s.Samples, s.SampleSize)
	}
	if !s.Alpha.IsPositive() || s.Alpha.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return fmt.Errorf("%w, received %v", errInvalidRiskLevel, s.Alpha)
	}
	return nil
}

// RequireDataPath errors when no universe file is configured
func (c *Config) RequireDataPath() error {
	if c.DataSettings.Path == "" {
		return errNoDataPath
	}
	return nil
}

// UniverseSettings returns the derived field settings
func (c *Config) UniverseSettings() universe.Settings {
	return universe.Settings{
		Lookback:           c.DataSettings.Lookback,
		TSMomentumLookback: c.DataSettings.TSMomentumLookback,
		Overrides:          c.DataSettings.Overrides,
	}
}

// EngineSettings returns the strategy run settings
func (c *Config) EngineSettings() engine.Settings {
	return engine.Settings{
		Name:            c.Nickname,
		RankingField:    c.StrategySettings.RankingField,
		RankingMode:     c.StrategySettings.RankingMode,
		TopK:            c.StrategySettings.TopK,
		Allocation:      c.StrategySettings.Allocation,
		AllocationMode:  c.StrategySettings.AllocationMode,
		Frequency:       c.StrategySettings.Frequency,
		Side:            c.StrategySettings.Side,
		TransactionCost: c.PortfolioSettings.TransactionCost.InexactFloat64(),
		Slippage:        c.PortfolioSettings.Slippage.InexactFloat64(),
	}
}

// Benchmark returns the benchmark builder settings, benchmarks pay the
// strategy's frictions
func (c *Config) Benchmark() benchmark.Settings {
	return benchmark.Settings{
		ReferenceAsset:  c.BenchmarkSettings.ReferenceAsset,
		Frequency:       c.BenchmarkSettings.Frequency,
		TransactionCost: c.PortfolioSettings.TransactionCost.InexactFloat64(),
		Slippage:        c.PortfolioSettings.Slippage.InexactFloat64(),
	}
}

// Statistics returns the performance evaluation settings
func (c *Config) Statistics() statistics.Settings {
	return statistics.Settings{
		PeriodsPerYear: float64(c.StatisticSettings.PeriodsPerYear),
		RiskFreeRate:   c.StatisticSettings.RiskFreeRate.InexactFloat64(),
		Bootstrap:      c.StatisticSettings.Bootstrap,
		Samples:        c.StatisticSettings.Samples,
		SampleSize:     c.StatisticSettings.SampleSize,
		Alpha:          c.StatisticSettings.Alpha.InexactFloat64(),
		Seed:           c.StatisticSettings.Seed,
		Workers:        c.StatisticSettings.Workers,
	}
}
