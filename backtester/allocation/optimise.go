package allocation

import (
	"errors"
	"fmt"
	"math"

	"github.com/BaptisteZloch/Crypto-momentum-portfolios/log"
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/stat"
)

var errDegenerateCovariance = errors.New("covariance matrix has no usable variance")

// riskParity minimises the squared distance between every asset's risk
// contribution (Σw)_i·w_i/σ_p and an equal budget σ_p/K
func riskParity(window [][]float64) (*Result, error) {
	k := len(window)
	obs, err := completeRows(window)
	if err != nil {
		return fallback(RiskParity, k, err), nil
	}
	cov, _, err := scaledCovariance(obs)
	if err != nil {
		return fallback(RiskParity, k, err), nil
	}
	budget := 1 / float64(k)
	sw := mat.NewVecDense(k, nil)
	objective := func(z []float64) float64 {
		w := mat.NewVecDense(k, toWeights(nil, z))
		sw.MulVec(cov, w)
		sigma := math.Sqrt(mat.Dot(w, sw))
		if sigma == 0 || math.IsNaN(sigma) {
			return math.Inf(1)
		}
		var residual float64
		for i := 0; i < k; i++ {
			d := sw.AtVec(i)*w.AtVec(i)/sigma - sigma*budget
			residual += d * d
		}
		return residual
	}
	return minimise(RiskParity, k, objective)
}

// meanVariance maximises μᵀw / sqrt(wᵀΣw)
func meanVariance(window [][]float64) (*Result, error) {
	k := len(window)
	obs, err := completeRows(window)
	if err != nil {
		return fallback(MeanVariance, k, err), nil
	}
	cov, scale, err := scaledCovariance(obs)
	if err != nil {
		return fallback(MeanVariance, k, err), nil
	}
	mu := mat.NewVecDense(k, nil)
	for a := 0; a < k; a++ {
		mu.SetVec(a, stat.Mean(mat.Col(nil, a, obs), nil)/math.Sqrt(scale))
	}
	sw := mat.NewVecDense(k, nil)
	objective := func(z []float64) float64 {
		w := mat.NewVecDense(k, toWeights(nil, z))
		sw.MulVec(cov, w)
		sigma := math.Sqrt(mat.Dot(w, sw))
		if sigma == 0 || math.IsNaN(sigma) {
			return math.Inf(1)
		}
		return -mat.Dot(mu, w) / sigma
	}
	return minimise(MeanVariance, k, objective)
}

// completeRows returns the [row][asset] observations of the window rows where
// every asset has a finite value
func completeRows(window [][]float64) (*mat.Dense, error) {
	k, n := len(window), len(window[0])
	for a := range window {
		if len(window[a]) != n {
			return nil, errRaggedWindow
		}
	}
	if n == 0 {
		return nil, errEmptyWindow
	}
	data := make([]float64, 0, n*k)
	var rows int
	for t := 0; t < n; t++ {
		complete := true
		for a := 0; a < k && complete; a++ {
			v := window[a][t]
			complete = !math.IsNaN(v) && !math.IsInf(v, 0)
		}
		if !complete {
			continue
		}
		for a := 0; a < k; a++ {
			data = append(data, window[a][t])
		}
		rows++
	}
	if rows < 2 {
		return nil, fmt.Errorf("%w: %d of %d rows usable", errNotEnoughReturn, rows, n)
	}
	return mat.NewDense(rows, k, data), nil
}

// scaledCovariance returns the sample covariance divided by its mean
// variance, which leaves both objectives' optimum unchanged, and the scale
// used
func scaledCovariance(obs *mat.Dense) (*mat.SymDense, float64, error) {
	var cov mat.SymDense
	stat.CovarianceMatrix(&cov, obs, nil)
	k := cov.SymmetricDim()
	var scale float64
	for i := 0; i < k; i++ {
		scale += cov.At(i, i)
	}
	scale /= float64(k)
	if scale <= 0 || math.IsNaN(scale) || math.IsInf(scale, 0) {
		return nil, 0, fmt.Errorf("%w: mean variance %v", errDegenerateCovariance, scale)
	}
	cov.ScaleSym(1/scale, &cov)
	return &cov, scale, nil
}

// toWeights maps unconstrained parameters onto the simplex w = z²/Σz², which
// enforces the long only and fully invested constraints
func toWeights(dst, z []float64) []float64 {
	if dst == nil {
		dst = make([]float64, len(z))
	}
	var sum float64
	for _, v := range z {
		sum += v * v
	}
	for i, v := range z {
		if sum == 0 {
			dst[i] = 1 / float64(len(z))
			continue
		}
		dst[i] = v * v / sum
	}
	return dst
}

func minimise(m Method, k int, objective func([]float64) float64) (*Result, error) {
	z0 := make([]float64, k)
	for i := range z0 {
		z0[i] = 1 / math.Sqrt(float64(k))
	}
	problem := optimize.Problem{
		Func: objective,
		Grad: func(grad, z []float64) {
			fd.Gradient(grad, objective, z, &fd.Settings{Formula: fd.Central})
		},
	}
	settings := &optimize.Settings{
		GradientThreshold: optimiserTolerance,
		MajorIterations:   optimiserIterations,
		Converger: &optimize.FunctionConverge{
			Absolute:   optimiserTolerance,
			Iterations: 50,
		},
	}
	res, err := optimize.Minimize(problem, z0, settings, &optimize.BFGS{})
	if res == nil {
		return fallback(m, k, err), nil
	}
	w := toWeights(nil, res.X)
	for _, v := range w {
		if math.IsNaN(v) {
			return fallback(m, k, fmt.Errorf("optimiser returned a non finite point, status %v", res.Status)), nil
		}
	}
	out := &Result{
		Weights:    w,
		Converged:  err == nil && converged(res.Status),
		Iterations: res.Stats.MajorIterations,
	}
	// a line search that cannot improve a stationary point is not a failure
	if !out.Converged && len(res.Gradient) == k && floats.Norm(res.Gradient, math.Inf(1)) <= stationaryTolerance {
		out.Converged = true
	}
	if !out.Converged {
		out.Warning = fmt.Sprintf("%s optimiser did not converge after %d iterations, status %v", m, out.Iterations, res.Status)
		if err != nil {
			out.Warning += ": " + err.Error()
		}
		log.Warnln(log.Allocation, out.Warning)
	}
	return out, nil
}

func converged(s optimize.Status) bool {
	switch s {
	case optimize.Success,
		optimize.FunctionThreshold,
		optimize.FunctionConvergence,
		optimize.GradientThreshold,
		optimize.StepConvergence,
		optimize.MethodConverge:
		return true
	}
	return false
}

// fallback returns equal weights when the window cannot support an estimate
func fallback(m Method, k int, reason error) *Result {
	r := &Result{
		Weights: equalWeights(k),
		Warning: fmt.Sprintf("%s falling back to equal weights: %v", m, reason),
	}
	log.Warnln(log.Allocation, r.Warning)
	return r
}
