package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"GlucoPulse/internal/domain/models"
)

func series(values ...float64) []models.Reading {
	base := time.Date(2025, 3, 15, 8, 0, 0, 0, time.UTC)
	out := make([]models.Reading, 0, len(values))
	for i, v := range values {
		out = append(out, readingAt(v, base.Add(time.Duration(i)*30*time.Minute)))
	}
	return out
}

func TestEvaluateAlert_HighCurrent(t *testing.T) {
	a := New(Config{})
	alert := a.EvaluateAlert(series(120, 260))
	require.NotNil(t, alert)
	assert.Equal(t, models.TriggerHighCurrent, alert.Trigger)
	assert.Contains(t, alert.Message, "260")
}

func TestEvaluateAlert_LowCurrent(t *testing.T) {
	a := New(Config{})
	alert := a.EvaluateAlert(series(100, 65))
	require.NotNil(t, alert)
	assert.Equal(t, models.TriggerLowCurrent, alert.Trigger)
}

func TestEvaluateAlert_HighPredicted(t *testing.T) {
	a := New(Config{})
	// projected = 240 + (240-200)*0.5 = 260
	alert := a.EvaluateAlert(series(200, 240))
	require.NotNil(t, alert)
	assert.Equal(t, models.TriggerHighPredicted, alert.Trigger)
}

func TestEvaluateAlert_LowPredicted(t *testing.T) {
	a := New(Config{})
	// projected = 80 - (120-80)*0.5... latest 80, previous 120 -> 80 + (80-120)*0.5 = 60
	alert := a.EvaluateAlert(series(120, 80))
	require.NotNil(t, alert)
	assert.Equal(t, models.TriggerLowPredicted, alert.Trigger)
}

func TestEvaluateAlert_FirstMatchWins(t *testing.T) {
	a := New(Config{})
	// latest 260, previous 300: projected = 260 + (260-300)*0.5 = 240, which
	// breaches nothing, but even if it did, high-current fires first.
	alert := a.EvaluateAlert(series(300, 260))
	require.NotNil(t, alert)
	assert.Equal(t, models.TriggerHighCurrent, alert.Trigger)
}

func TestEvaluateAlert_ThresholdsAreStrict(t *testing.T) {
	a := New(Config{})

	assert.Nil(t, a.EvaluateAlert(series(250, 250)), "250 exactly is not a breach")

	alert := a.EvaluateAlert(series(250, 251))
	require.NotNil(t, alert)
	assert.Equal(t, models.TriggerHighCurrent, alert.Trigger)

	assert.Nil(t, a.EvaluateAlert(series(70, 70)), "70 exactly is not a breach")
}

func TestEvaluateAlert_SingleReadingNoProjection(t *testing.T) {
	a := New(Config{})
	// One in-range reading: no previous, so no projection, no alert.
	assert.Nil(t, a.EvaluateAlert(series(120)))
}

func TestEvaluateAlert_NoReadings(t *testing.T) {
	a := New(Config{})
	assert.Nil(t, a.EvaluateAlert(nil))
}

func TestEvaluateAlert_InRange(t *testing.T) {
	a := New(Config{})
	assert.Nil(t, a.EvaluateAlert(series(110, 118, 122)))
}
