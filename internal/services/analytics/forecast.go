package analytics

import (
	"math"
	"time"

	"GlucoPulse/internal/domain/models"
)

// Forecast fits a bounded-degree polynomial over normalized time and
// evaluates it one horizon ahead of now. The future point is normalized with
// the same min/max used for fitting, so it usually lands slightly above 1;
// that is extrapolation and expected.
//
// Low-data and zero-width-range states come back as sentinel errors
// (ErrInsufficientData, ErrDegenerateRange) for the caller to degrade to an
// "unavailable" card, never as a request failure.
func (a *Analyzer) Forecast(readings []models.Reading, now time.Time) (models.Forecast, error) {
	if len(readings) < a.cfg.MinDataPoints {
		return models.Forecast{}, ErrInsufficientData
	}

	minT := readings[0].Timestamp
	maxT := readings[0].Timestamp
	for i := range readings {
		ts := readings[i].Timestamp
		if ts.Before(minT) {
			minT = ts
		}
		if ts.After(maxT) {
			maxT = ts
		}
	}
	span := maxT.Sub(minT)
	if span <= 0 {
		return models.Forecast{}, ErrDegenerateRange
	}

	xs := make([]float64, len(readings))
	ys := make([]float64, len(readings))
	for i := range readings {
		xs[i] = float64(readings[i].Timestamp.Sub(minT)) / float64(span)
		ys[i] = readings[i].Value
	}

	// The normal equations need more samples than coefficients; cap the
	// degree so 3 readings still fit a quadratic instead of going singular.
	degree := a.cfg.Degree
	if degree > len(readings)-1 {
		degree = len(readings) - 1
	}

	coeffs, err := polyfit(xs, ys, degree)
	if err != nil {
		return models.Forecast{}, err
	}

	fx := float64(now.Add(a.cfg.Horizon).Sub(minT)) / float64(span)
	predicted := evalPoly(coeffs, fx)

	return models.Forecast{
		Coefficients:   coeffs,
		Horizon:        a.cfg.Horizon,
		PredictedValue: int(math.Round(predicted)),
	}, nil
}

// polyfit solves the least-squares normal equations for a polynomial of the
// given degree via Gaussian elimination with partial pivoting. Coefficients
// come back in ascending degree order.
func polyfit(xs, ys []float64, degree int) ([]float64, error) {
	n := degree + 1

	// Precompute sums of powers of x up to 2*degree.
	pow := make([]float64, 2*degree+1)
	for _, x := range xs {
		xp := 1.0
		for k := 0; k <= 2*degree; k++ {
			pow[k] += xp
			xp *= x
		}
	}

	// Augmented matrix [A|b] with A[i][j] = sum(x^(i+j)), b[i] = sum(x^i * y).
	m := make([][]float64, n)
	for i := 0; i < n; i++ {
		m[i] = make([]float64, n+1)
		for j := 0; j < n; j++ {
			m[i][j] = pow[i+j]
		}
	}
	for k, x := range xs {
		xp := 1.0
		for i := 0; i < n; i++ {
			m[i][n] += xp * ys[k]
			xp *= x
		}
	}

	const eps = 1e-12
	for col := 0; col < n; col++ {
		pivot := col
		for row := col + 1; row < n; row++ {
			if math.Abs(m[row][col]) > math.Abs(m[pivot][col]) {
				pivot = row
			}
		}
		if math.Abs(m[pivot][col]) < eps {
			// Rank-deficient system, e.g. heavily duplicated timestamps.
			return nil, ErrDegenerateRange
		}
		m[col], m[pivot] = m[pivot], m[col]
		for row := col + 1; row < n; row++ {
			f := m[row][col] / m[col][col]
			for j := col; j <= n; j++ {
				m[row][j] -= f * m[col][j]
			}
		}
	}

	coeffs := make([]float64, n)
	for i := n - 1; i >= 0; i-- {
		sum := m[i][n]
		for j := i + 1; j < n; j++ {
			sum -= m[i][j] * coeffs[j]
		}
		coeffs[i] = sum / m[i][i]
	}
	return coeffs, nil
}

// evalPoly evaluates coefficients (ascending degree) at x via Horner's rule.
func evalPoly(coeffs []float64, x float64) float64 {
	v := 0.0
	for i := len(coeffs) - 1; i >= 0; i-- {
		v = v*x + coeffs[i]
	}
	return v
}
