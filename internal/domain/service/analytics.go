package service

import (
	"time"

	"GlucoPulse/internal/domain/models"
	"GlucoPulse/internal/domain/repository"
)

// Aggregator produces comparison statistics for summary cards and bar charts.
type Aggregator interface {
	AggregateWeekly(readings []models.Reading, now time.Time) models.WeeklySummary
	AggregateByTimeOfDay(readings []models.Reading, g repository.Granularity) []models.TimeOfDayRow
}

// Forecaster projects a near-future glucose value. Insufficient or degenerate
// data comes back as a sentinel error that callers degrade to "unavailable".
type Forecaster interface {
	Forecast(readings []models.Reading, now time.Time) (models.Forecast, error)
}

// AlertEvaluator decides whether fresh readings warrant a warning banner.
// A nil result means no threshold breach.
type AlertEvaluator interface {
	EvaluateAlert(readings []models.Reading) *models.Alert
}
