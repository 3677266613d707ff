package common

import "errors"

var (
	// ErrNilArguments is a common error response to highlight that nils were passed in
	// when they should not have been
	ErrNilArguments = errors.New("received nil argument(s)")
	// ErrNilPointer is returned when a method is called on a nil receiver
	ErrNilPointer = errors.New("nil pointer")
	// ErrInvalidSetting is returned when a run setting is outside its allowed range
	ErrInvalidSetting = errors.New("invalid setting")
	// ErrUnknownField is returned when a field name is not part of the universe
	ErrUnknownField = errors.New("unknown field")
	// ErrDegenerateWeights is returned when weights cannot be normalised
	// because their denominator is zero or not finite
	ErrDegenerateWeights = errors.New("weights cannot be normalised")
	// ErrDegenerateDrift is returned when drifted weights have a zero denominator,
	// eg every held asset returned -100%
	ErrDegenerateDrift = errors.New("weights cannot drift")
)

// Side is the sign applied to realised portfolio returns
type Side int8

// Side values
const (
	Long  Side = 1
	Short Side = -1
)

// ASCIILogo is optionally printed to the command line window
const ASCIILogo = `
   ______                 __           __  ___                           __
  / ____/______  ______  / /_____     /  |/  /___  ____ ___  ___  ____  / /___  ______ ___
 / /   / ___/ / / / __ \/ __/ __ \   / /|_/ / __ \/ __ '__ \/ _ \/ __ \/ __/ / / / __ '__ \
/ /___/ /  / /_/ / /_/ / /_/ /_/ /  / /  / / /_/ / / / / / /  __/ / / / /_/ /_/ / / / / / /
\____/_/   \__, / .___/\__/\____/  /_/  /_/\____/_/ /_/ /_/\___/_/ /_/\__/\__,_/_/ /_/ /_/
          /____/_/
                     cross-sectional portfolio backtester
`
