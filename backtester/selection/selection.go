// Package selection ranks assets cross sectionally by the value of a field.
package selection

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/BaptisteZloch/Crypto-momentum-portfolios/backtester/common"
)

// Mode is the ranking order
type Mode uint8

// Ranking modes, descending ranks the highest value first
const (
	Descending Mode = iota
	Ascending
)

var (
	errLengthMismatch = errors.New("assets and values lengths differ")
	errInvalidTopK    = errors.New("top k must be between 1 and the number of assets")
)

// String implements fmt.Stringer
func (m Mode) String() string {
	switch m {
	case Descending:
		return "descending"
	case Ascending:
		return "ascending"
	}
	return fmt.Sprintf("mode(%d)", uint8(m))
}

// ParseMode converts a config value into a Mode, empty defaults to
// descending
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "descending", "desc":
		return Descending, nil
	case "ascending", "asc":
		return Ascending, nil
	}
	return 0, fmt.Errorf("%w: ranking mode '%v'", common.ErrInvalidSetting, s)
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

// Rank returns the positions of values ordered by mode. Ties keep their
// original order and NaN values are ranked last whatever the mode.
func Rank(values []float64, mode Mode) []int {
	order := make([]int, len(values))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		a, b := values[order[i]], values[order[j]]
		switch {
		case math.IsNaN(a):
			return false
		case math.IsNaN(b):
			return true
		case mode == Ascending:
			return a < b
		}
		return a > b
	})
	return order
}

// RankAssets returns the asset identifiers ordered by their values
func RankAssets(assets []string, values []float64, mode Mode) ([]string, error) {
	if len(assets) != len(values) {
		return nil, fmt.Errorf("%w: %d assets, %d values", errLengthMismatch, len(assets), len(values))
	}
	order := Rank(values, mode)
	out := make([]string, len(order))
	for i, p := range order {
		out[i] = assets[p]
	}
	return out, nil
}

// RankLatest ranks assets by the last observation of each series of a
// window indexed [asset][row]
func RankLatest(window [][]float64, mode Mode) []int {
	last := make([]float64, len(window))
	for a := range window {
		if n := len(window[a]); n > 0 {
			last[a] = window[a][n-1]
		} else {
			last[a] = math.NaN()
		}
	}
	return Rank(last, mode)
}

// TopK returns the first k positions of the ranking of values
func TopK(values []float64, mode Mode, k int) ([]int, error) {
	if k < 1 || k > len(values) {
		return nil, fmt.Errorf("%w: k %d, %d assets", errInvalidTopK, k, len(values))
	}
	return Rank(values, mode)[:k], nil
}
