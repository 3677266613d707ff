// Package math holds the return series helpers shared by the statistics and
// allocation code. Inputs are periodic simple returns expressed as fractions.
package math

import (
	"errors"
	"math"
)

var (
	errZeroLengthInput  = errors.New("input has no values")
	errInvalidPeriods   = errors.New("periods per year must be positive")
	errLengthMismatch   = errors.New("input lengths differ")
	errTotalLossInInput = errors.New("return of -100% or lower makes the compounded value undefined")
)

// RoundFloat rounds your floating point number to the desired decimal place
func RoundFloat(x float64, prec int) float64 {
	pow := math.Pow(10, float64(prec))
	return math.Round(x*pow) / pow
}

// ArithmeticAverage divides the sum of all values by the number of values
func ArithmeticAverage(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// PopulationStandardDeviation uses n as the variance denominator
func PopulationStandardDeviation(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return math.Sqrt(sumSquaredDeviations(values) / float64(len(values)))
}

// SampleStandardDeviation uses n-1 as the variance denominator
func SampleStandardDeviation(values []float64) float64 {
	if len(values) <= 1 {
		return 0
	}
	return math.Sqrt(sumSquaredDeviations(values) / float64(len(values)-1))
}

func sumSquaredDeviations(values []float64) float64 {
	avg := ArithmeticAverage(values)
	var s float64
	for _, v := range values {
		d := v - avg
		s += d * d
	}
	return s
}

// DownsideDeviation is the root mean square of the returns that fall below
// the threshold, the denominator being every observation
func DownsideDeviation(values []float64, threshold float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var s float64
	for _, v := range values {
		if d := v - threshold; d < 0 {
			s += d * d
		}
	}
	return math.Sqrt(s / float64(len(values)))
}

// FinancialGeometricAverage is the per period compounded return of the
// series. Each return is shifted by one so losses remain positive factors.
func FinancialGeometricAverage(values []float64) (float64, error) {
	if len(values) == 0 {
		return 0, errZeroLengthInput
	}
	growth, err := CumulativeGrowth(values)
	if err != nil {
		return 0, err
	}
	return math.Pow(growth, 1/float64(len(values))) - 1, nil
}

// CumulativeGrowth returns the product of (1 + r) over the series
func CumulativeGrowth(values []float64) (float64, error) {
	product := 1.0
	for _, v := range values {
		if v <= -1 {
			return 0, errTotalLossInInput
		}
		product *= 1 + v
	}
	return product, nil
}

// CompoundAnnualGrowthRate annualises the compounded growth of the series.
// Using days, periods per year would be 365 and the number of intervals the
// number of days.
func CompoundAnnualGrowthRate(values []float64, periodsPerYear float64) (float64, error) {
	if len(values) == 0 {
		return 0, errZeroLengthInput
	}
	if periodsPerYear <= 0 {
		return 0, errInvalidPeriods
	}
	growth, err := CumulativeGrowth(values)
	if err != nil {
		return 0, err
	}
	return math.Pow(growth, periodsPerYear/float64(len(values))) - 1, nil
}

// SharpeRatio is the annualised excess return over the annualised sample
// standard deviation. The risk free rate is an annual rate.
func SharpeRatio(values []float64, riskFreeRate, periodsPerYear float64) float64 {
	sd := SampleStandardDeviation(values)
	if sd == 0 || periodsPerYear <= 0 {
		return 0
	}
	return (ArithmeticAverage(values)*periodsPerYear - riskFreeRate) / (sd * math.Sqrt(periodsPerYear))
}

// SortinoRatio is the annualised excess return over the annualised downside
// deviation measured against zero
func SortinoRatio(values []float64, riskFreeRate, periodsPerYear float64) float64 {
	dd := DownsideDeviation(values, 0)
	if dd == 0 || periodsPerYear <= 0 {
		return 0
	}
	return (ArithmeticAverage(values)*periodsPerYear - riskFreeRate) / (dd * math.Sqrt(periodsPerYear))
}

// CalmarRatio is the compound annual growth rate versus the maximum drawdown.
// The drawdown may be passed signed or unsigned.
func CalmarRatio(cagr, maxDrawdown float64) float64 {
	if maxDrawdown == 0 {
		return 0
	}
	return cagr / math.Abs(maxDrawdown)
}

// InformationRatio measures the annualised active return against the
// annualised tracking error of the active returns
func InformationRatio(values, benchmark []float64, periodsPerYear float64) (float64, error) {
	if len(values) != len(benchmark) {
		return 0, errLengthMismatch
	}
	if periodsPerYear <= 0 {
		return 0, errInvalidPeriods
	}
	active := ActiveReturns(values, benchmark)
	te := SampleStandardDeviation(active) * math.Sqrt(periodsPerYear)
	if te == 0 {
		return 0, nil
	}
	return ArithmeticAverage(active) * periodsPerYear / te, nil
}

// ActiveReturns returns values minus benchmark element wise, the shorter
// input bounds the output
func ActiveReturns(values, benchmark []float64) []float64 {
	n := min(len(values), len(benchmark))
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = values[i] - benchmark[i]
	}
	return out
}

// FiniteOnly returns the finite values of the input in order
func FiniteOnly(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out = append(out, v)
		}
	}
	return out
}

// IsFinite reports whether v is neither NaN nor infinite
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
