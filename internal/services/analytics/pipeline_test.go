package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"GlucoPulse/internal/domain/models"
)

// Exercises the full raw-to-dashboard path on one scenario: a spike six
// hours ago with no prior-week history.
func TestPipeline_EndToEndSpike(t *testing.T) {
	a := New(Config{})
	now := time.Date(2025, 3, 15, 18, 0, 0, 0, time.UTC)
	t0 := now.Add(-6 * time.Hour)

	raw := []models.RawReading{
		{Value: fptr(90), Timestamp: t0.Add(time.Hour).Format(time.RFC3339)},
		{Value: fptr(300), Timestamp: t0.Add(2 * time.Hour).Format(time.RFC3339)},
		{Value: fptr(80), Timestamp: t0.Format(time.RFC3339)},
	}

	readings := a.Normalize(raw)
	require.Len(t, readings, 3)
	assert.Equal(t, 80.0, readings[0].Value, "normalize reorders by timestamp")

	alert := a.EvaluateAlert(readings)
	require.NotNil(t, alert)
	assert.Equal(t, models.TriggerHighCurrent, alert.Trigger)
	assert.Contains(t, alert.Message, "300")

	s := a.AggregateWeekly(readings, now)
	assert.Equal(t, 0, s.PercentChange, "no prior-week data")
	assert.Equal(t, 157, s.CurrentMean) // round((80+90+300)/3)
	assert.Equal(t, 1, s.HighCount)
	require.NotNil(t, s.MaxReading)
	assert.Equal(t, 300.0, s.MaxReading.Value)

	f, err := a.Forecast(readings, now)
	require.NoError(t, err)
	assert.NotZero(t, f.PredictedValue)
}
