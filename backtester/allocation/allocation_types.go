package allocation

import "errors"

// Method is the closed set of weighting schemes
type Method uint8

// Allocation methods
const (
	Equal Method = iota
	Capitalization
	Volume
	Momentum
	Volatility
	RiskParity
	MeanVariance
	methodCount
)

// Mode selects classic or inverse proportional weighting
type Mode uint8

// Allocation modes. Inverse weights proportionally to 1/x and only applies to
// the proportional methods.
const (
	Classic Mode = iota
	Inverse
)

const (
	optimiserTolerance  = 1e-10
	optimiserIterations = 1000
	stationaryTolerance = 1e-6
)

var (
	errNoAssets        = errors.New("no assets to allocate")
	errRaggedWindow    = errors.New("window rows differ in length")
	errEmptyWindow     = errors.New("window has no observations")
	errUnknownMethod   = errors.New("unknown allocation method")
	errNonPositiveMom  = errors.New("momentum weighting requires strictly positive values")
	errNegativeValue   = errors.New("proportional weighting requires non-negative values")
	errNotEnoughReturn = errors.New("not enough complete return observations to estimate covariance")
)

// Result holds the weights over the requested assets in input order. Only
// the optimised methods can report Converged false, in which case Warning
// says why and Weights holds the point the optimiser stopped at.
type Result struct {
	Weights    []float64
	Converged  bool
	Iterations int
	Warning    string
}
