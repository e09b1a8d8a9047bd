package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"GlucoPulse/internal/domain/models"
	"GlucoPulse/internal/domain/repository"
)

func readingAt(value float64, ts time.Time) models.Reading {
	return models.Reading{Value: value, Timestamp: ts}
}

func TestAggregateWeekly_PercentChangeSign(t *testing.T) {
	a := New(Config{})
	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)

	// Previous window mean 100, current window mean 120 -> +20%.
	readings := []models.Reading{
		readingAt(100, now.AddDate(0, 0, -10)),
		readingAt(100, now.AddDate(0, 0, -9)),
		readingAt(120, now.AddDate(0, 0, -3)),
		readingAt(120, now.AddDate(0, 0, -2)),
	}

	s := a.AggregateWeekly(readings, now)
	assert.Equal(t, 120, s.CurrentMean)
	assert.Equal(t, 100, s.PreviousMean)
	assert.Equal(t, 20, s.PercentChange)
}

func TestAggregateWeekly_EmptyPreviousWindow(t *testing.T) {
	a := New(Config{})
	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)

	readings := []models.Reading{
		readingAt(150, now.AddDate(0, 0, -1)),
	}

	s := a.AggregateWeekly(readings, now)
	assert.Equal(t, 150, s.CurrentMean)
	assert.Equal(t, 0, s.PreviousMean)
	assert.Equal(t, 0, s.PercentChange, "empty previous window reports 0, not a crash")
}

func TestAggregateWeekly_HighLowCountsAndMax(t *testing.T) {
	a := New(Config{})
	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)

	maxTS := now.Add(-30 * time.Hour)
	readings := []models.Reading{
		readingAt(65, now.Add(-2*time.Hour)),   // low
		readingAt(185, now.Add(-6*time.Hour)),  // high
		readingAt(240, maxTS),                  // high, max
		readingAt(110, now.Add(-50*time.Hour)), // in range
		readingAt(500, now.AddDate(0, 0, -8)),  // previous window, ignored for counts
	}

	s := a.AggregateWeekly(readings, now)
	assert.Equal(t, 2, s.HighCount)
	assert.Equal(t, 1, s.LowCount)
	require.NotNil(t, s.MaxReading)
	assert.Equal(t, 240.0, s.MaxReading.Value)
	assert.True(t, s.MaxReading.Timestamp.Equal(maxTS))
}

func TestAggregateWeekly_Empty(t *testing.T) {
	a := New(Config{})
	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)

	s := a.AggregateWeekly(nil, now)
	assert.Equal(t, 0, s.CurrentMean)
	assert.Equal(t, 0, s.PercentChange)
	assert.Nil(t, s.MaxReading)
}

func TestAggregateByTimeOfDay_PartitionsByHour(t *testing.T) {
	a := New(Config{})
	day := time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC)

	readings := []models.Reading{
		readingAt(100, day.Add(6*time.Hour)),  // morning
		readingAt(120, day.Add(11*time.Hour)), // morning
		readingAt(160, day.Add(13*time.Hour)), // evening
		readingAt(90, day.Add(22*time.Hour)),  // night
		readingAt(80, day.Add(2*time.Hour)),   // night (early hours)
	}

	rows := a.AggregateByTimeOfDay(readings, repository.GranMonth)
	require.Len(t, rows, 1)
	assert.Equal(t, "2025-04", rows[0].Label)
	assert.Equal(t, 110, rows[0].MorningMean)
	assert.Equal(t, 160, rows[0].EveningMean)
	assert.Equal(t, 85, rows[0].NightMean)
}

func TestAggregateByTimeOfDay_EmptyCellSentinel(t *testing.T) {
	a := New(Config{})
	ts := time.Date(2025, 4, 10, 7, 0, 0, 0, time.UTC)

	rows := a.AggregateByTimeOfDay([]models.Reading{readingAt(100, ts)}, repository.GranMonth)
	require.Len(t, rows, 1)
	assert.Equal(t, 100, rows[0].MorningMean)
	assert.Equal(t, 0, rows[0].EveningMean, "empty cell reports 0, never NaN")
	assert.Equal(t, 0, rows[0].NightMean)
}

func TestAggregateByTimeOfDay_LabelsSortChronologically(t *testing.T) {
	a := New(Config{})

	readings := []models.Reading{
		readingAt(100, time.Date(2025, 11, 2, 8, 0, 0, 0, time.UTC)),
		readingAt(100, time.Date(2025, 2, 2, 8, 0, 0, 0, time.UTC)),
		readingAt(100, time.Date(2024, 12, 2, 8, 0, 0, 0, time.UTC)),
	}

	rows := a.AggregateByTimeOfDay(readings, repository.GranMonth)
	require.Len(t, rows, 3)
	assert.Equal(t, "2024-12", rows[0].Label)
	assert.Equal(t, "2025-02", rows[1].Label)
	assert.Equal(t, "2025-11", rows[2].Label)
}

func TestAggregateByTimeOfDay_WeekGranularity(t *testing.T) {
	a := New(Config{})

	readings := []models.Reading{
		readingAt(100, time.Date(2025, 4, 3, 8, 0, 0, 0, time.UTC)),  // week 1
		readingAt(140, time.Date(2025, 4, 10, 8, 0, 0, 0, time.UTC)), // week 2
	}

	rows := a.AggregateByTimeOfDay(readings, repository.GranWeek)
	require.Len(t, rows, 2)
	assert.Equal(t, "2025-04 W1", rows[0].Label)
	assert.Equal(t, "2025-04 W2", rows[1].Label)
}
