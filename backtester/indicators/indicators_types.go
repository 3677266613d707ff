package indicators

import "errors"

const (
	// DefaultLookback is the positional lookback used by every windowed
	// indicator unless a caller supplies another
	DefaultLookback = 24
	// DefaultTSMomentumLookback is the positional lookback of TSMomentum
	DefaultTSMomentumLookback = 12
	// DefaultTargetVolatility scales the time series momentum signal
	DefaultTargetVolatility = 0.4
)

var (
	errInvalidLookback  = errors.New("lookback must be at least 1")
	errNegativeOverride = errors.New("override cannot be negative")
	errInvalidTarget    = errors.New("target volatility must be positive and finite")
)

// Overrides holds every recognised named lookback override. A zero value
// leaves the positional lookback in charge. Composed indicators forward the
// whole set to the indicators they are built from.
type Overrides struct {
	MomentumLookback    int     `json:"momentum-lookback,omitempty" mapstructure:"momentum-lookback"`
	VolatilityLookback  int     `json:"volatility-lookback,omitempty" mapstructure:"volatility-lookback"`
	LongMALookback      int     `json:"long-ma-lookback,omitempty" mapstructure:"long-ma-lookback"`
	ShortMALookback     int     `json:"short-ma-lookback,omitempty" mapstructure:"short-ma-lookback"`
	LongEMALookback     int     `json:"long-ema-lookback,omitempty" mapstructure:"long-ema-lookback"`
	ShortEMALookback    int     `json:"short-ema-lookback,omitempty" mapstructure:"short-ema-lookback"`
	EMAMomentumLookback int     `json:"ema-momentum-lookback,omitempty" mapstructure:"ema-momentum-lookback"`
	TSMomentumLookback  int     `json:"ts-momentum-lookback,omitempty" mapstructure:"ts-momentum-lookback"`
	TargetVolatility    float64 `json:"target-volatility,omitempty" mapstructure:"target-volatility"`
}
