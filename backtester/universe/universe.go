// Package universe holds the date indexed field x asset table every
// component of a run reads from.
package universe

import (
	"fmt"
	"math"
	"time"

	"github.com/BaptisteZloch/Crypto-momentum-portfolios/backtester/common"
	"github.com/BaptisteZloch/Crypto-momentum-portfolios/backtester/indicators"
	"github.com/BaptisteZloch/Crypto-momentum-portfolios/log"
)

const secondsPerDay = 24 * 60 * 60

// DefaultSettings returns the lookbacks used when none are configured
func DefaultSettings() Settings {
	return Settings{
		Lookback:           indicators.DefaultLookback,
		TSMomentumLookback: indicators.DefaultTSMomentumLookback,
	}
}

// New validates the input and builds the universe, deriving returns, market
// capitalisation and every indicator field from price. The input slices are
// copied.
func New(in *Input, s Settings) (*Universe, error) {
	if in == nil {
		return nil, common.ErrNilArguments
	}
	if s.Lookback == 0 {
		s.Lookback = indicators.DefaultLookback
	}
	if s.TSMomentumLookback == 0 {
		s.TSMomentumLookback = indicators.DefaultTSMomentumLookback
	}
	if s.Lookback < 0 || s.TSMomentumLookback < 0 {
		return nil, fmt.Errorf("%w: lookback %d ts momentum lookback %d", common.ErrInvalidSetting, s.Lookback, s.TSMomentumLookback)
	}
	if err := s.Overrides.Validate(); err != nil {
		return nil, err
	}
	if len(in.Dates) == 0 {
		return nil, errNoDates
	}
	if len(in.Assets) == 0 {
		return nil, errNoAssets
	}
	u := &Universe{
		dates:    make([]time.Time, len(in.Dates)),
		assets:   make([]string, len(in.Assets)),
		assetIdx: make(map[string]int, len(in.Assets)),
		dayIdx:   make(map[int64]int, len(in.Dates)),
		settings: s,
	}
	for i, a := range in.Assets {
		if a == "" {
			return nil, fmt.Errorf("%w at position %d", errEmptyAsset, i)
		}
		if _, ok := u.assetIdx[a]; ok {
			return nil, fmt.Errorf("%w: %s", errDuplicateAsset, a)
		}
		u.assets[i] = a
		u.assetIdx[a] = i
	}
	prev := int64(math.MinInt64)
	for i, d := range in.Dates {
		k := dayKey(d)
		if k <= prev {
			return nil, fmt.Errorf("%w: %v follows %v", errDatesNotOrdered, d.Format(time.DateOnly), in.Dates[i-1].Format(time.DateOnly))
		}
		prev = k
		u.dates[i] = time.Unix(k*secondsPerDay, 0).UTC()
		u.dayIdx[k] = i
	}
	if _, ok := in.Columns[Price]; !ok {
		return nil, errMissingPrice
	}
	for f, cols := range in.Columns {
		if f >= fieldCount {
			return nil, fmt.Errorf("%w: %d", common.ErrUnknownField, uint8(f))
		}
		if !f.IsRaw() {
			return nil, fmt.Errorf("%w: %s", errDerivedFieldInput, f)
		}
		if len(cols) != len(u.assets) {
			return nil, fmt.Errorf("%s %w: %d assets, %d columns", f, errShapeMismatch, len(u.assets), len(cols))
		}
		u.columns[f] = make([][]float64, len(cols))
		for a := range cols {
			if len(cols[a]) != len(u.dates) {
				return nil, fmt.Errorf("%s %s %w: %d dates, %d values", f, u.assets[a], errShapeMismatch, len(u.dates), len(cols[a]))
			}
			u.columns[f][a] = append([]float64(nil), cols[a]...)
		}
	}
	if err := u.derive(); err != nil {
		return nil, err
	}
	log.Debugf(log.Indicators, "universe built with %d dates, %d assets, lookback %d", len(u.dates), len(u.assets), s.Lookback)
	return u, nil
}

func (u *Universe) derive() error {
	price := u.columns[Price]
	if u.columns[Returns] == nil {
		u.columns[Returns] = perAsset(price, indicators.Returns)
	}
	if u.columns[MarketCap] == nil && u.columns[Amount] != nil {
		mc := make([][]float64, len(price))
		for a := range price {
			mc[a] = make([]float64, len(price[a]))
			for t := range price[a] {
				mc[a][t] = price[a][t] * u.columns[Amount][a][t]
			}
		}
		u.columns[MarketCap] = mc
	}
	for f := Momentum; f < fieldCount; f++ {
		cols := make([][]float64, len(price))
		for a := range price {
			var err error
			cols[a], err = u.indicator(f, price[a])
			if err != nil {
				return fmt.Errorf("%s %s: %w", f, u.assets[a], err)
			}
		}
		u.columns[f] = cols
	}
	return nil
}

func (u *Universe) indicator(f Field, values []float64) ([]float64, error) {
	lb, o := u.settings.Lookback, u.settings.Overrides
	switch f {
	case Momentum:
		return indicators.Momentum(values, lb, o)
	case Volatility:
		return indicators.Volatility(values, lb, o)
	case InstantaneousVolatility:
		return indicators.InstantaneousVolatility(values), nil
	case ShortMA:
		return indicators.ShortMA(values, lb, o)
	case LongMA:
		return indicators.LongMA(values, lb, o)
	case ShortEMA:
		return indicators.ShortEMA(values, lb, o)
	case LongEMA:
		return indicators.LongEMA(values, lb, o)
	case EMAMomentum:
		return indicators.EMAMomentum(values, lb, o)
	case VolatilityNeutralizedMomentum:
		return indicators.VolatilityNeutralizedMomentum(values, lb, o)
	case TSMomentum:
		return indicators.TSMomentum(values, u.settings.TSMomentumLookback, o)
	case Price, Returns, Volume, Amount, MarketCap, fieldCount:
	}
	return nil, fmt.Errorf("%w: %s is not derived", common.ErrUnknownField, f)
}

func perAsset(cols [][]float64, fn func([]float64) []float64) [][]float64 {
	out := make([][]float64, len(cols))
	for a := range cols {
		out[a] = fn(cols[a])
	}
	return out
}

func dayKey(t time.Time) int64 {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / secondsPerDay
}

// Len returns the number of dates
func (u *Universe) Len() int {
	return len(u.dates)
}

// NumAssets returns the number of assets
func (u *Universe) NumAssets() int {
	return len(u.assets)
}

// Dates returns a copy of the date index, every date is midnight UTC
func (u *Universe) Dates() []time.Time {
	return append([]time.Time(nil), u.dates...)
}

// Date returns the date at position t
func (u *Universe) Date(t int) time.Time {
	return u.dates[t]
}

// Assets returns a copy of the asset identifiers in column order
func (u *Universe) Assets() []string {
	return append([]string(nil), u.assets...)
}

// Asset returns the identifier of asset a
func (u *Universe) Asset(a int) string {
	return u.assets[a]
}

// AssetIndex returns the column position of the asset
func (u *Universe) AssetIndex(asset string) (int, error) {
	a, ok := u.assetIdx[asset]
	if !ok {
		return 0, fmt.Errorf("%w: %s", errUnknownAsset, asset)
	}
	return a, nil
}

// DateIndex returns the row position of the calendar day of d
func (u *Universe) DateIndex(d time.Time) (int, bool) {
	t, ok := u.dayIdx[dayKey(d)]
	return t, ok
}

// Settings returns the lookbacks the derived fields were built with
func (u *Universe) Settings() Settings {
	return u.settings
}

// Has reports whether the field is available
func (u *Universe) Has(f Field) bool {
	return f < fieldCount && u.columns[f] != nil
}

// Require returns an error naming the first unavailable field
func (u *Universe) Require(fields ...Field) error {
	for _, f := range fields {
		if !u.Has(f) {
			return fmt.Errorf("%w: %s not present in universe", common.ErrUnknownField, f)
		}
	}
	return nil
}

// Value returns field f of asset a at row t, NaN if the field is absent
func (u *Universe) Value(f Field, a, t int) float64 {
	if !u.Has(f) {
		return math.NaN()
	}
	return u.columns[f][a][t]
}

// Row copies the cross section of field f at row t into dst, which is grown
// when too small, and returns it
func (u *Universe) Row(f Field, t int, dst []float64) ([]float64, error) {
	if err := u.Require(f); err != nil {
		return nil, err
	}
	if t < 0 || t >= len(u.dates) {
		return nil, fmt.Errorf("%w: row %d", errOutOfRange, t)
	}
	if cap(dst) < len(u.assets) {
		dst = make([]float64, len(u.assets))
	}
	dst = dst[:len(u.assets)]
	for a := range u.assets {
		dst[a] = u.columns[f][a][t]
	}
	return dst, nil
}

// Series returns a copy of field f for asset a
func (u *Universe) Series(f Field, a int) ([]float64, error) {
	if err := u.Require(f); err != nil {
		return nil, err
	}
	if a < 0 || a >= len(u.assets) {
		return nil, fmt.Errorf("%w: asset %d", errOutOfRange, a)
	}
	return append([]float64(nil), u.columns[f][a]...), nil
}

// Window returns field f for the given assets over rows [from, to] inclusive,
// indexed [asset][row]
func (u *Universe) Window(f Field, assets []int, from, to int) ([][]float64, error) {
	if err := u.Require(f); err != nil {
		return nil, err
	}
	if from < 0 || to >= len(u.dates) || from > to {
		return nil, fmt.Errorf("%w: window [%d, %d] over %d rows", errOutOfRange, from, to, len(u.dates))
	}
	out := make([][]float64, len(assets))
	for i, a := range assets {
		if a < 0 || a >= len(u.assets) {
			return nil, fmt.Errorf("%w: asset %d", errOutOfRange, a)
		}
		out[i] = append([]float64(nil), u.columns[f][a][from:to+1]...)
	}
	return out, nil
}

// Slice returns a universe restricted to the rows within [start, end]. A zero
// bound is open. Derived fields keep the history computed over the full
// table so indicators are warm at the first sliced row.
func (u *Universe) Slice(start, end time.Time) (*Universe, error) {
	from, to := 0, len(u.dates)-1
	if !start.IsZero() {
		k := dayKey(start)
		for from <= to && dayKey(u.dates[from]) < k {
			from++
		}
	}
	if !end.IsZero() {
		k := dayKey(end)
		for to >= from && dayKey(u.dates[to]) > k {
			to--
		}
	}
	if from > to {
		return nil, fmt.Errorf("%w: %v to %v", errEmptyRange, start.Format(time.DateOnly), end.Format(time.DateOnly))
	}
	s := &Universe{
		dates:    append([]time.Time(nil), u.dates[from:to+1]...),
		assets:   u.assets,
		assetIdx: u.assetIdx,
		dayIdx:   make(map[int64]int, to-from+1),
		settings: u.settings,
	}
	for i, d := range s.dates {
		s.dayIdx[dayKey(d)] = i
	}
	for f := range u.columns {
		if u.columns[f] == nil {
			continue
		}
		s.columns[f] = make([][]float64, len(u.assets))
		for a := range u.columns[f] {
			s.columns[f][a] = u.columns[f][a][from : to+1 : to+1]
		}
	}
	return s, nil
}
