package statistics

import (
	"math"
	"sort"

	cmpmath "github.com/BaptisteZloch/Crypto-momentum-portfolios/common/math"
	"gonum.org/v1/gonum/stat"
)

// Compute returns every metric of returns. Relative metrics compare against
// benchmark and are NaN when benchmark is nil.
func Compute(returns, benchmark []float64, periodsPerYear, riskFreeRate float64) (Values, Swing) {
	var v Values
	swing := standalone(&v, returns, periodsPerYear, riskFreeRate)
	if benchmark == nil {
		for m := SpecificRisk; m < metricCount; m++ {
			v[m] = math.NaN()
		}
		return v, swing
	}
	relative(&v, returns, benchmark, periodsPerYear, riskFreeRate)
	return v, swing
}

func standalone(v *Values, r []float64, p, rf float64) Swing {
	mean, sd := stat.MeanStdDev(r, nil)
	v[ExpectedReturn] = mean * p
	cagr, err := cmpmath.CompoundAnnualGrowthRate(r, p)
	if err != nil {
		cagr = -1
	}
	v[CAGR] = cagr
	v[ExpectedVolatility] = sd * math.Sqrt(p)
	v[Skewness] = stat.Skew(r, nil)
	v[Kurtosis] = stat.ExKurtosis(r, nil)

	sorted := append([]float64(nil), r...)
	sort.Float64s(sorted)
	lower := stat.Quantile(tailQuantile, stat.Empirical, sorted, nil)
	upper := stat.Quantile(1-tailQuantile, stat.Empirical, sorted, nil)
	v[VaR] = lower
	v[CVaR] = tailMean(sorted, lower)
	if lower != 0 {
		v[TailRatio] = math.Abs(upper) / math.Abs(lower)
	}

	swings := Drawdowns(r)
	worst := Worst(swings)
	v[MaxDrawdown] = worst.Drawdown

	var gains, losses float64
	var wins, lost int
	for _, x := range r {
		switch {
		case x > 0:
			gains += x
			wins++
		case x < 0:
			losses += x
			lost++
		}
	}
	winRate := float64(wins) / float64(len(r))
	lossRate := float64(lost) / float64(len(r))
	var avgWin, avgLoss float64
	if wins > 0 {
		avgWin = gains / float64(wins)
	}
	if lost > 0 {
		avgLoss = losses / float64(lost)
	}
	v[Expectancy] = winRate*avgWin + lossRate*avgLoss
	if losses != 0 {
		v[ProfitFactor] = gains / -losses
		v[PayoffRatio] = avgWin / -avgLoss
	} else {
		v[ProfitFactor] = math.NaN()
		v[PayoffRatio] = math.NaN()
	}
	v[KellyCriterion] = math.NaN()
	if v[PayoffRatio] > 0 {
		v[KellyCriterion] = winRate - (1-winRate)/v[PayoffRatio]
	}

	v[SharpeRatio] = cmpmath.SharpeRatio(r, rf, p)
	v[SortinoRatio] = cmpmath.SortinoRatio(r, rf, p)
	v[CalmarRatio] = cmpmath.CalmarRatio(cagr, worst.Drawdown)
	var squares float64
	for i := range swings {
		squares += swings[i].Drawdown * swings[i].Drawdown
	}
	if squares > 0 {
		v[BurkeRatio] = (cagr - rf) / math.Sqrt(squares)
	}
	return worst
}

func relative(v *Values, r, b []float64, p, rf float64) {
	alpha, beta := stat.LinearRegression(b, r, nil, false)
	v[Beta] = beta
	v[Alpha] = alpha * p
	v[RSquared] = stat.RSquared(b, r, nil, alpha, beta)

	benchVol := stat.StdDev(b, nil) * math.Sqrt(p)
	v[SystematicRisk] = math.Abs(beta) * benchVol
	v[SpecificRisk] = math.Sqrt(math.Max(v[ExpectedVolatility]*v[ExpectedVolatility]-v[SystematicRisk]*v[SystematicRisk], 0))

	benchReturn := stat.Mean(b, nil) * p
	v[JensenAlpha] = v[ExpectedReturn] - (rf + beta*(benchReturn-rf))
	v[TreynorRatio] = math.NaN()
	if beta != 0 && !math.IsNaN(beta) {
		v[TreynorRatio] = (v[ExpectedReturn] - rf) / beta
	}
	v[TrackingError] = cmpmath.SampleStandardDeviation(cmpmath.ActiveReturns(r, b)) * math.Sqrt(p)
	ir, err := cmpmath.InformationRatio(r, b, p)
	if err != nil {
		ir = math.NaN()
	}
	v[InformationRatio] = ir
}

// tailMean averages the sorted values up to and including threshold
func tailMean(sorted []float64, threshold float64) float64 {
	var sum float64
	var n int
	for _, x := range sorted {
		if x > threshold {
			break
		}
		sum += x
		n++
	}
	if n == 0 {
		return threshold
	}
	return sum / float64(n)
}

// Drawdowns walks the compounded value of returns, starting from one, and
// returns every decline from a peak to the lowest point before the peak is
// recovered. Drawdowns are negative fractions.
func Drawdowns(returns []float64) []Swing {
	var (
		swings  []Swing
		current *Swing
		value   = 1.0
		peak    = ValueAtOffset{Offset: -1, Value: 1}
	)
	for i, r := range returns {
		value *= 1 + r
		if value >= peak.Value {
			if current != nil {
				current.Duration = i - current.Highest.Offset
				swings = append(swings, *current)
				current = nil
			}
			peak = ValueAtOffset{Offset: i, Value: value}
			continue
		}
		if current == nil {
			current = &Swing{Highest: peak, Lowest: ValueAtOffset{Offset: i, Value: value}}
		}
		if value <= current.Lowest.Value {
			current.Lowest = ValueAtOffset{Offset: i, Value: value}
		}
		if peak.Value > 0 {
			current.Drawdown = current.Lowest.Value/peak.Value - 1
		}
	}
	if current != nil {
		current.Duration = len(returns) - 1 - current.Highest.Offset
		swings = append(swings, *current)
	}
	return swings
}

// Worst returns the deepest drawdown, the zero Swing when there is none
func Worst(swings []Swing) Swing {
	var worst Swing
	for i := range swings {
		if swings[i].Drawdown < worst.Drawdown {
			worst = swings[i]
		}
	}
	return worst
}
