// Package indicators derives per asset time series from raw values. Every
// function returns a slice aligned with its input where entries without
// enough history are NaN.
package indicators

import (
	"fmt"
	"math"

	"github.com/thrasher-corp/gct-ta/indicators"
	"gonum.org/v1/gonum/stat"
)

// Validate checks that no override is negative and the target volatility,
// when set, is usable
func (o *Overrides) Validate() error {
	for name, v := range map[string]int{
		"momentum-lookback":     o.MomentumLookback,
		"volatility-lookback":   o.VolatilityLookback,
		"long-ma-lookback":      o.LongMALookback,
		"short-ma-lookback":     o.ShortMALookback,
		"long-ema-lookback":     o.LongEMALookback,
		"short-ema-lookback":    o.ShortEMALookback,
		"ema-momentum-lookback": o.EMAMomentumLookback,
		"ts-momentum-lookback":  o.TSMomentumLookback,
	} {
		if v < 0 {
			return fmt.Errorf("%w: %s %d", errNegativeOverride, name, v)
		}
	}
	if o.TargetVolatility < 0 || math.IsNaN(o.TargetVolatility) || math.IsInf(o.TargetVolatility, 0) {
		return fmt.Errorf("%w: %v", errInvalidTarget, o.TargetVolatility)
	}
	return nil
}

func (o *Overrides) targetVolatility() float64 {
	if o.TargetVolatility > 0 {
		return o.TargetVolatility
	}
	return DefaultTargetVolatility
}

func pick(override, lookback int) (int, error) {
	if override > 0 {
		return override, nil
	}
	if lookback < 1 {
		return 0, fmt.Errorf("%w, received %d", errInvalidLookback, lookback)
	}
	return lookback, nil
}

func filled(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

// Returns is the simple percentage change between consecutive observations
func Returns(values []float64) []float64 {
	out := filled(len(values))
	for t := 1; t < len(values); t++ {
		out[t] = values[t]/values[t-1] - 1
	}
	return out
}

// InstantaneousVolatility is the squared percentage change
func InstantaneousVolatility(values []float64) []float64 {
	out := Returns(values)
	for t := range out {
		out[t] *= out[t]
	}
	return out
}

// Momentum is value[t] / value[t-lookback] - 1
func Momentum(values []float64, lookback int, o Overrides) ([]float64, error) {
	lb, err := pick(o.MomentumLookback, lookback)
	if err != nil {
		return nil, err
	}
	out := filled(len(values))
	for t := lb; t < len(values); t++ {
		out[t] = values[t]/values[t-lb] - 1
	}
	return out, nil
}

// Volatility is the rolling sample standard deviation of the raw values
func Volatility(values []float64, lookback int, o Overrides) ([]float64, error) {
	lb, err := pick(o.VolatilityLookback, lookback)
	if err != nil {
		return nil, err
	}
	out := filled(len(values))
	if lb < 2 {
		return out, nil
	}
	for t := lb - 1; t < len(values); t++ {
		out[t] = stat.StdDev(values[t-lb+1:t+1], nil)
	}
	return out, nil
}

// ShortMA is the rolling arithmetic mean using the short moving average
// override
func ShortMA(values []float64, lookback int, o Overrides) ([]float64, error) {
	lb, err := pick(o.ShortMALookback, lookback)
	if err != nil {
		return nil, err
	}
	return bySegment(values, lb, indicators.SMA), nil
}

// LongMA is the rolling arithmetic mean using the long moving average
// override
func LongMA(values []float64, lookback int, o Overrides) ([]float64, error) {
	lb, err := pick(o.LongMALookback, lookback)
	if err != nil {
		return nil, err
	}
	return bySegment(values, lb, indicators.SMA), nil
}

// ShortEMA is the exponentially weighted mean with span = lookback using the
// short override
func ShortEMA(values []float64, lookback int, o Overrides) ([]float64, error) {
	lb, err := pick(o.ShortEMALookback, lookback)
	if err != nil {
		return nil, err
	}
	return bySegment(values, lb, indicators.EMA), nil
}

// LongEMA is the exponentially weighted mean with span = lookback using the
// long override
func LongEMA(values []float64, lookback int, o Overrides) ([]float64, error) {
	lb, err := pick(o.LongEMALookback, lookback)
	if err != nil {
		return nil, err
	}
	return bySegment(values, lb, indicators.EMA), nil
}

// EMAMomentum is value[t] / LongEMA(value)[t]
func EMAMomentum(values []float64, lookback int, o Overrides) ([]float64, error) {
	lb, err := pick(o.EMAMomentumLookback, lookback)
	if err != nil {
		return nil, err
	}
	ema, err := LongEMA(values, lb, o)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(values))
	for t := range values {
		out[t] = values[t] / ema[t]
	}
	return out, nil
}

// VolatilityNeutralizedMomentum is Momentum / Volatility over the same
// positional lookback
func VolatilityNeutralizedMomentum(values []float64, lookback int, o Overrides) ([]float64, error) {
	mom, err := Momentum(values, lookback, o)
	if err != nil {
		return nil, err
	}
	vol, err := Volatility(values, lookback, o)
	if err != nil {
		return nil, err
	}
	for t := range mom {
		mom[t] /= vol[t]
	}
	return mom, nil
}

// TSMomentum is (target / Volatility[t]) * sign(returns[t-lookback]) * returns[t],
// a volatility scaled trend signal using the lagged sign of past returns
func TSMomentum(values []float64, lookback int, o Overrides) ([]float64, error) {
	shift, err := pick(o.TSMomentumLookback, lookback)
	if err != nil {
		return nil, err
	}
	vol, err := Volatility(values, lookback, o)
	if err != nil {
		return nil, err
	}
	ret := Returns(values)
	target := o.targetVolatility()
	out := filled(len(values))
	for t := shift; t < len(values); t++ {
		out[t] = target / vol[t] * sign(ret[t-shift]) * ret[t]
	}
	return out, nil
}

func sign(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return v
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

// bySegment applies a moving average to every run of finite values so a
// missing observation only blanks the windows that contain it. Entries the
// average has not warmed up for are NaN.
func bySegment(values []float64, period int, ma func([]float64, int) []float64) []float64 {
	out := filled(len(values))
	start := -1
	for t := 0; t <= len(values); t++ {
		finite := t < len(values) && !math.IsNaN(values[t]) && !math.IsInf(values[t], 0)
		if finite {
			if start < 0 {
				start = t
			}
			continue
		}
		if start >= 0 && t-start >= period {
			res := ma(values[start:t], period)
			copy(out[start+period-1:t], res[period-1:])
		}
		start = -1
	}
	return out
}
