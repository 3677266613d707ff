package universe

import (
	"fmt"
	"strings"

	"github.com/BaptisteZloch/Crypto-momentum-portfolios/backtester/common"
)

var fieldNames = [fieldCount]string{
	Price:                         "price",
	Returns:                       "returns",
	Volume:                        "volume",
	Amount:                        "amount",
	MarketCap:                     "market_cap",
	Momentum:                      "momentum",
	Volatility:                    "volatility",
	InstantaneousVolatility:       "instantaneous_volatility",
	ShortMA:                       "short_ma",
	LongMA:                        "long_ma",
	ShortEMA:                      "short_ema",
	LongEMA:                       "long_ema",
	EMAMomentum:                   "ema_momentum",
	VolatilityNeutralizedMomentum: "volatility_neutralized_momentum",
	TSMomentum:                    "ts_momentum",
}

// Fields returns every known field in declaration order
func Fields() []Field {
	out := make([]Field, fieldCount)
	for i := range out {
		out[i] = Field(i)
	}
	return out
}

// String implements fmt.Stringer
func (f Field) String() string {
	if f < fieldCount {
		return fieldNames[f]
	}
	return fmt.Sprintf("field(%d)", uint8(f))
}

// IsRaw reports whether the field may be supplied as input
func (f Field) IsRaw() bool {
	switch f {
	case Price, Returns, Volume, Amount, MarketCap:
		return true
	}
	return false
}

// ParseField converts a field name into a Field. Dashes and spaces are
// accepted in place of underscores.
func ParseField(s string) (Field, error) {
	n := strings.NewReplacer("-", "_", " ", "_").Replace(strings.ToLower(strings.TrimSpace(s)))
	switch n {
	case "capitalization", "market_capitalization", "marketcap":
		return MarketCap, nil
	}
	for i, name := range fieldNames {
		if name == n {
			return Field(i), nil
		}
	}
	return 0, fmt.Errorf("%w: '%v'", common.ErrUnknownField, s)
}

// MarshalText implements encoding.TextMarshaler
func (f Field) MarshalText() ([]byte, error) {
	if f >= fieldCount {
		return nil, fmt.Errorf("%w: %d", common.ErrUnknownField, uint8(f))
	}
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (f *Field) UnmarshalText(b []byte) error {
	v, err := ParseField(string(b))
	if err != nil {
		return err
	}
	*f = v
	return nil
}
