package usecase

import (
	"context"
	"errors"
	"time"

	"GlucoPulse/internal/domain/models"
	domrepo "GlucoPulse/internal/domain/repository"
	domsvc "GlucoPulse/internal/domain/service"
	"GlucoPulse/internal/services/analytics"
)

// Normalizer is the ingestion stage the aggregator runs on every fetch.
type Normalizer interface {
	Normalize(raw []models.RawReading) []models.Reading
}

// DashboardAggregator fetches one user's reading history and runs the
// analytics pipeline over the snapshot. Each call is independent; nothing is
// persisted and "now" is always passed down explicitly.
type DashboardAggregator struct {
	store      domrepo.ReadingStore
	normalizer Normalizer
	agg        domsvc.Aggregator
	forecaster domsvc.Forecaster
	alerter    domsvc.AlertEvaluator
}

func NewDashboardAggregator(
	store domrepo.ReadingStore,
	normalizer Normalizer,
	agg domsvc.Aggregator,
	forecaster domsvc.Forecaster,
	alerter domsvc.AlertEvaluator,
) *DashboardAggregator {
	return &DashboardAggregator{
		store:      store,
		normalizer: normalizer,
		agg:        agg,
		forecaster: forecaster,
		alerter:    alerter,
	}
}

func (a *DashboardAggregator) fetchRange(ctx context.Context, userID string, days int, now time.Time) ([]models.Reading, error) {
	raw, err := a.store.GetReadings(ctx, userID, now.AddDate(0, 0, -days), now)
	if err != nil {
		return nil, err
	}
	// An empty result is the normal "insufficient data" case, not an error.
	return a.normalizer.Normalize(raw), nil
}

// WeeklySummary computes the comparison card for the two most recent 7-day
// windows.
func (a *DashboardAggregator) WeeklySummary(ctx context.Context, userID string, days int, now time.Time) (models.WeeklySummary, error) {
	readings, err := a.fetchRange(ctx, userID, days, now)
	if err != nil {
		return models.WeeklySummary{}, err
	}
	return a.agg.AggregateWeekly(readings, now), nil
}

// TimeOfDay computes the grouped bar-chart rows.
func (a *DashboardAggregator) TimeOfDay(ctx context.Context, userID string, days int, g domrepo.Granularity, now time.Time) ([]models.TimeOfDayRow, error) {
	readings, err := a.fetchRange(ctx, userID, days, now)
	if err != nil {
		return nil, err
	}
	return a.agg.AggregateByTimeOfDay(readings, g), nil
}

// ForecastView projects one horizon ahead over the latest n readings.
// Sentinel pipeline errors degrade to an unavailable view.
func (a *DashboardAggregator) ForecastView(ctx context.Context, userID string, n int, now time.Time) (models.ForecastView, error) {
	raw, err := a.store.GetLatestNReadings(ctx, userID, n)
	if err != nil {
		return models.ForecastView{}, err
	}
	readings := a.normalizer.Normalize(raw)

	f, err := a.forecaster.Forecast(readings, now)
	if err != nil {
		if errors.Is(err, analytics.ErrInsufficientData) || errors.Is(err, analytics.ErrDegenerateRange) {
			return models.ForecastView{Available: false, Reason: unavailableReason(err)}, nil
		}
		return models.ForecastView{}, err
	}
	return models.ForecastView{Available: true, PredictedValue: f.PredictedValue}, nil
}

// Alert evaluates the warning banner over the latest readings. A nil alert
// is the normal no-breach state.
func (a *DashboardAggregator) Alert(ctx context.Context, userID string, n int) (*models.Alert, error) {
	raw, err := a.store.GetLatestNReadings(ctx, userID, n)
	if err != nil {
		return nil, err
	}
	readings := a.normalizer.Normalize(raw)
	return a.alerter.EvaluateAlert(readings), nil
}

func unavailableReason(err error) string {
	switch {
	case errors.Is(err, analytics.ErrInsufficientData):
		return "not enough readings"
	case errors.Is(err, analytics.ErrDegenerateRange):
		return "readings share a single timestamp"
	default:
		return "unavailable"
	}
}
