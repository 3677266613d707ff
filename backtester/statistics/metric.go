package statistics

import (
	"fmt"
	"strings"
)

var metricNames = [metricCount]string{
	ExpectedReturn:     "Expected return",
	CAGR:               "CAGR",
	ExpectedVolatility: "Expected volatility",
	Skewness:           "Skewness",
	Kurtosis:           "Kurtosis",
	VaR:                "VaR",
	CVaR:               "CVaR",
	MaxDrawdown:        "Max drawdown",
	KellyCriterion:     "Kelly criterion",
	ProfitFactor:       "Profit factor",
	PayoffRatio:        "Payoff ratio",
	Expectancy:         "Expectancy",
	SharpeRatio:        "Sharpe ratio",
	SortinoRatio:       "Sortino ratio",
	BurkeRatio:         "Burke ratio",
	CalmarRatio:        "Calmar ratio",
	TailRatio:          "Tail ratio",
	SpecificRisk:       "Specific risk",
	SystematicRisk:     "Systematic risk",
	Beta:               "Portfolio beta",
	Alpha:              "Portfolio alpha",
	JensenAlpha:        "Jensen alpha",
	RSquared:           "R2",
	TrackingError:      "Tracking error",
	TreynorRatio:       "Treynor ratio",
	InformationRatio:   "Information ratio",
}

// Metrics returns every metric in report order
func Metrics() []Metric {
	out := make([]Metric, metricCount)
	for i := range out {
		out[i] = Metric(i)
	}
	return out
}

// String implements fmt.Stringer
func (m Metric) String() string {
	if m >= metricCount {
		return fmt.Sprintf("metric(%d)", uint8(m))
	}
	return metricNames[m]
}

// ParseMetric matches a metric by display name, case insensitive
func ParseMetric(s string) (Metric, error) {
	for i := range metricNames {
		if strings.EqualFold(strings.TrimSpace(s), metricNames[i]) {
			return Metric(i), nil
		}
	}
	return 0, fmt.Errorf("%w '%s'", errUnknownMetric, s)
}

// MarshalText implements encoding.TextMarshaler
func (m Metric) MarshalText() ([]byte, error) {
	if m >= metricCount {
		return nil, fmt.Errorf("%w %d", errUnknownMetric, uint8(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (m *Metric) UnmarshalText(b []byte) error {
	v, err := ParseMetric(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// IsPercent reports whether the metric reads as a percentage
func (m Metric) IsPercent() bool {
	switch m {
	case ExpectedReturn, CAGR, ExpectedVolatility, VaR, CVaR, MaxDrawdown,
		KellyCriterion, Expectancy, SpecificRisk, SystematicRisk, TrackingError:
		return true
	}
	return false
}

// Standalone reports whether the metric only depends on the evaluated series
func (m Metric) Standalone() bool {
	return m <= TailRatio
}
