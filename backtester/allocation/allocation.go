// Package allocation turns a set of selected assets and a window of one of
// their fields into long only weights summing to one.
package allocation

import (
	"fmt"
	"math"
	"strings"

	"github.com/BaptisteZloch/Crypto-momentum-portfolios/backtester/common"
	"github.com/BaptisteZloch/Crypto-momentum-portfolios/backtester/universe"
)

var methodNames = [methodCount]string{
	Equal:          "equal",
	Capitalization: "capitalization",
	Volume:         "volume",
	Momentum:       "momentum",
	Volatility:     "volatility",
	RiskParity:     "risk-parity",
	MeanVariance:   "mean-variance",
}

// Methods returns every allocation method in declaration order
func Methods() []Method {
	out := make([]Method, methodCount)
	for i := range out {
		out[i] = Method(i)
	}
	return out
}

// String implements fmt.Stringer
func (m Method) String() string {
	if m < methodCount {
		return methodNames[m]
	}
	return fmt.Sprintf("method(%d)", uint8(m))
}

// ParseMethod converts a config value into a Method
func ParseMethod(s string) (Method, error) {
	n := strings.NewReplacer("_", "-", " ", "-").Replace(strings.ToLower(strings.TrimSpace(s)))
	n = strings.TrimSuffix(n, "-weighted")
	switch n {
	case "", "equally", "ew":
		return Equal, nil
	case "capi", "market-cap", "capitalisation":
		return Capitalization, nil
	case "rp":
		return RiskParity, nil
	case "mv":
		return MeanVariance, nil
	}
	for i, name := range methodNames {
		if name == n {
			return Method(i), nil
		}
	}
	return 0, fmt.Errorf("%w: '%v'", errUnknownMethod, s)
}

// MarshalText implements encoding.TextMarshaler
func (m Method) MarshalText() ([]byte, error) {
	if m >= methodCount {
		return nil, fmt.Errorf("%w: %d", errUnknownMethod, uint8(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (m *Method) UnmarshalText(b []byte) error {
	v, err := ParseMethod(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// Field returns the universe field whose window the method consumes
func (m Method) Field() universe.Field {
	switch m {
	case Capitalization:
		return universe.MarketCap
	case Volume:
		return universe.Volume
	case Momentum:
		return universe.Momentum
	case Volatility:
		return universe.Volatility
	case Equal, RiskParity, MeanVariance, methodCount:
	}
	return universe.Returns
}

// String implements fmt.Stringer
func (m Mode) String() string {
	switch m {
	case Classic:
		return "classic"
	case Inverse:
		return "inverse"
	}
	return fmt.Sprintf("mode(%d)", uint8(m))
}

// ParseMode converts a config value into a Mode, empty defaults to classic
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "classic":
		return Classic, nil
	case "inverse":
		return Inverse, nil
	}
	return 0, fmt.Errorf("%w: allocation mode '%v'", common.ErrInvalidSetting, s)
}

// MarshalText implements encoding.TextMarshaler
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (m *Mode) UnmarshalText(b []byte) error {
	v, err := ParseMode(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// Allocate computes weights for the assets of window, indexed [asset][row]
// over the rows from the previous rebalance to the current one inclusive
func Allocate(m Method, mode Mode, window [][]float64) (*Result, error) {
	if len(window) == 0 {
		return nil, errNoAssets
	}
	switch m {
	case Equal:
		return &Result{Weights: equalWeights(len(window)), Converged: true}, nil
	case Capitalization, Volume, Volatility:
		return proportional(latest(window), mode, false)
	case Momentum:
		return proportional(latest(window), mode, true)
	case RiskParity:
		return riskParity(window)
	case MeanVariance:
		return meanVariance(window)
	case methodCount:
	}
	return nil, fmt.Errorf("%w: %s", errUnknownMethod, m)
}

func equalWeights(k int) []float64 {
	w := make([]float64, k)
	for i := range w {
		w[i] = 1 / float64(k)
	}
	return w
}

func latest(window [][]float64) []float64 {
	out := make([]float64, len(window))
	for a := range window {
		if n := len(window[a]); n > 0 {
			out[a] = window[a][n-1]
		} else {
			out[a] = math.NaN()
		}
	}
	return out
}

func proportional(values []float64, mode Mode, strictlyPositive bool) (*Result, error) {
	w := make([]float64, len(values))
	var sum float64
	for i, v := range values {
		switch {
		case math.IsNaN(v) || math.IsInf(v, 0):
			return nil, fmt.Errorf("%w: value %v at position %d", common.ErrDegenerateWeights, v, i)
		case strictlyPositive && v <= 0:
			return nil, fmt.Errorf("%w: %w: %v at position %d", common.ErrDegenerateWeights, errNonPositiveMom, v, i)
		case v < 0:
			return nil, fmt.Errorf("%w: %w: %v at position %d", common.ErrDegenerateWeights, errNegativeValue, v, i)
		}
		if mode == Inverse {
			if v == 0 {
				return nil, fmt.Errorf("%w: inverse of zero at position %d", common.ErrDegenerateWeights, i)
			}
			v = 1 / v
		}
		w[i] = v
		sum += v
	}
	if sum == 0 || math.IsInf(sum, 0) {
		return nil, fmt.Errorf("%w: normalisation denominator %v", common.ErrDegenerateWeights, sum)
	}
	for i := range w {
		w[i] /= sum
	}
	return &Result{Weights: w, Converged: true}, nil
}
