package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"GlucoPulse/internal/domain/models"
)

func TestForecast_RequiresThreeReadings(t *testing.T) {
	a := New(Config{})
	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)

	readings := []models.Reading{
		readingAt(100, now.Add(-2*time.Hour)),
		readingAt(110, now.Add(-1*time.Hour)),
	}

	_, err := a.Forecast(readings, now)
	require.ErrorIs(t, err, ErrInsufficientData)
}

func TestForecast_IdenticalTimestampsDegenerate(t *testing.T) {
	a := New(Config{})
	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
	ts := now.Add(-time.Hour)

	readings := []models.Reading{
		readingAt(100, ts),
		readingAt(110, ts),
		readingAt(120, ts),
	}

	_, err := a.Forecast(readings, now)
	require.ErrorIs(t, err, ErrDegenerateRange)
}

func TestForecast_LinearTrend(t *testing.T) {
	a := New(Config{})
	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)

	// 1 mg/dL per minute over the last two hours; one hour ahead of the last
	// reading the line sits at 100 + 180 = 280.
	readings := make([]models.Reading, 0, 9)
	for i := 0; i <= 8; i++ {
		ts := now.Add(time.Duration(i-8) * 15 * time.Minute)
		readings = append(readings, readingAt(100+float64(i*15), ts))
	}

	f, err := a.Forecast(readings, now)
	require.NoError(t, err)
	assert.InDelta(t, 280, f.PredictedValue, 2)
	assert.Len(t, f.Coefficients, 4)
	assert.Equal(t, time.Hour, f.Horizon)
}

func TestForecast_FlatSeries(t *testing.T) {
	a := New(Config{})
	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)

	readings := []models.Reading{
		readingAt(115, now.Add(-3*time.Hour)),
		readingAt(115, now.Add(-2*time.Hour)),
		readingAt(115, now.Add(-1*time.Hour)),
		readingAt(115, now.Add(-30*time.Minute)),
	}

	f, err := a.Forecast(readings, now)
	require.NoError(t, err)
	assert.InDelta(t, 115, f.PredictedValue, 1)
}

func TestForecast_DegreeCappedBySampleCount(t *testing.T) {
	a := New(Config{})
	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)

	// Exactly three readings: a cubic would be underdetermined, so the fit
	// falls back to a quadratic instead of failing.
	readings := []models.Reading{
		readingAt(80, now.Add(-2*time.Hour)),
		readingAt(100, now.Add(-1*time.Hour)),
		readingAt(120, now),
	}

	f, err := a.Forecast(readings, now)
	require.NoError(t, err)
	assert.Len(t, f.Coefficients, 3)
	assert.InDelta(t, 140, f.PredictedValue, 2)
}

func TestPolyfit_RecoversKnownCoefficients(t *testing.T) {
	// y = 5 + 2x - x^2 sampled on a grid.
	xs := make([]float64, 0, 21)
	ys := make([]float64, 0, 21)
	for i := 0; i <= 20; i++ {
		x := float64(i) / 20
		xs = append(xs, x)
		ys = append(ys, 5+2*x-x*x)
	}

	coeffs, err := polyfit(xs, ys, 2)
	require.NoError(t, err)
	assert.InDelta(t, 5, coeffs[0], 1e-6)
	assert.InDelta(t, 2, coeffs[1], 1e-6)
	assert.InDelta(t, -1, coeffs[2], 1e-6)
}

func TestEvalPoly(t *testing.T) {
	// 1 + 2x + 3x^2 at x=2 -> 17.
	assert.InDelta(t, 17, evalPoly([]float64{1, 2, 3}, 2), 1e-9)
}
