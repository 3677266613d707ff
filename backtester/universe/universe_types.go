package universe

import (
	"errors"
	"time"

	"github.com/BaptisteZloch/Crypto-momentum-portfolios/backtester/indicators"
)

// Field identifies a column family of the universe
type Field uint8

// Raw fields can be supplied as input, every other field is derived from
// price when the universe is built
const (
	Price Field = iota
	Returns
	Volume
	Amount
	MarketCap
	Momentum
	Volatility
	InstantaneousVolatility
	ShortMA
	LongMA
	ShortEMA
	LongEMA
	EMAMomentum
	VolatilityNeutralizedMomentum
	TSMomentum
	fieldCount
)

var (
	errNoDates           = errors.New("universe has no dates")
	errNoAssets          = errors.New("universe has no assets")
	errDatesNotOrdered   = errors.New("dates must be strictly increasing by day")
	errDuplicateAsset    = errors.New("duplicate asset")
	errEmptyAsset        = errors.New("empty asset identifier")
	errMissingPrice      = errors.New("price field is required")
	errDerivedFieldInput = errors.New("derived fields cannot be supplied as input")
	errShapeMismatch     = errors.New("column shape does not match dates and assets")
	errUnknownAsset      = errors.New("unknown asset")
	errOutOfRange        = errors.New("index out of range")
	errEmptyRange        = errors.New("date range selects no rows")
)

// Input is the raw data a universe is built from. Columns holds one slice per
// asset, in Assets order, each aligned with Dates. NaN marks a missing
// observation.
type Input struct {
	Dates   []time.Time
	Assets  []string
	Columns map[Field][][]float64
}

// Settings control how derived fields are computed
type Settings struct {
	Lookback           int
	TSMomentumLookback int
	Overrides          indicators.Overrides
}

// Universe is the immutable field x asset table keyed by date. It is safe for
// concurrent readers.
type Universe struct {
	dates    []time.Time
	assets   []string
	assetIdx map[string]int
	dayIdx   map[int64]int
	columns  [fieldCount][][]float64
	settings Settings
}
