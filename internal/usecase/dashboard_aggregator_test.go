package usecase

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"GlucoPulse/internal/domain/models"
	"GlucoPulse/internal/services/analytics"
)

type fakeReadingStore struct {
	raw []models.RawReading
	err error
}

func (f *fakeReadingStore) GetReadings(_ context.Context, _ string, from, to time.Time) ([]models.RawReading, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.RawReading
	for _, rr := range f.raw {
		ts, perr := time.Parse(time.RFC3339, rr.Timestamp)
		if perr != nil {
			// invalid rows flow through; the normalizer drops them
			out = append(out, rr)
			continue
		}
		if !ts.Before(from) && ts.Before(to) {
			out = append(out, rr)
		}
	}
	return out, nil
}

func (f *fakeReadingStore) GetLatestNReadings(_ context.Context, _ string, n int) ([]models.RawReading, error) {
	if f.err != nil {
		return nil, f.err
	}
	if n > len(f.raw) {
		n = len(f.raw)
	}
	return f.raw[len(f.raw)-n:], nil
}

func ptr(v float64) *float64 { return &v }

func newAggregator(store *fakeReadingStore) *DashboardAggregator {
	an := analytics.New(analytics.DefaultConfig())
	return NewDashboardAggregator(store, an, an, an, an)
}

func TestDashboardAggregator_WeeklySummary(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	store := &fakeReadingStore{}
	for i := 0; i < 5; i++ {
		store.raw = append(store.raw, models.RawReading{
			ID:        fmt.Sprintf("c%d", i),
			UserID:    "u1",
			Value:     ptr(120),
			Timestamp: now.Add(-time.Duration(i+1) * 24 * time.Hour).Format(time.RFC3339),
		})
	}
	for i := 0; i < 5; i++ {
		store.raw = append(store.raw, models.RawReading{
			ID:        fmt.Sprintf("p%d", i),
			UserID:    "u1",
			Value:     ptr(100),
			Timestamp: now.Add(-time.Duration(i+8) * 24 * time.Hour).Format(time.RFC3339),
		})
	}

	sum, err := newAggregator(store).WeeklySummary(context.Background(), "u1", 30, now)
	require.NoError(t, err)
	assert.Equal(t, 120, sum.CurrentMean)
	assert.Equal(t, 100, sum.PreviousMean)
	assert.Equal(t, 20, sum.PercentChange)
}

func TestDashboardAggregator_ForecastDegradesWhenSparse(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	store := &fakeReadingStore{raw: []models.RawReading{
		{ID: "a", UserID: "u1", Value: ptr(110), Timestamp: now.Add(-time.Hour).Format(time.RFC3339)},
		{ID: "b", UserID: "u1", Value: ptr(115), Timestamp: now.Add(-30 * time.Minute).Format(time.RFC3339)},
	}}

	view, err := newAggregator(store).ForecastView(context.Background(), "u1", 48, now)
	require.NoError(t, err)
	assert.False(t, view.Available)
	assert.Equal(t, "not enough readings", view.Reason)
}

func TestDashboardAggregator_ForecastAvailable(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	store := &fakeReadingStore{}
	for i := 0; i < 8; i++ {
		store.raw = append(store.raw, models.RawReading{
			ID:        fmt.Sprintf("r%d", i),
			UserID:    "u1",
			Value:     ptr(120),
			Timestamp: now.Add(-time.Duration(8-i) * 15 * time.Minute).Format(time.RFC3339),
		})
	}

	view, err := newAggregator(store).ForecastView(context.Background(), "u1", 48, now)
	require.NoError(t, err)
	assert.True(t, view.Available)
	assert.InDelta(t, 120, view.PredictedValue, 2)
}

func TestDashboardAggregator_AlertOnHighLatest(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	store := &fakeReadingStore{raw: []models.RawReading{
		{ID: "a", UserID: "u1", Value: ptr(180), Timestamp: now.Add(-time.Hour).Format(time.RFC3339)},
		{ID: "b", UserID: "u1", Value: ptr(280), Timestamp: now.Add(-10 * time.Minute).Format(time.RFC3339)},
	}}

	alert, err := newAggregator(store).Alert(context.Background(), "u1", 2)
	require.NoError(t, err)
	require.NotNil(t, alert)
	assert.Equal(t, models.TriggerHighCurrent, alert.Trigger)
}

func TestDashboardAggregator_StoreErrorPropagates(t *testing.T) {
	store := &fakeReadingStore{err: fmt.Errorf("clickhouse down")}
	_, err := newAggregator(store).WeeklySummary(context.Background(), "u1", 30, time.Now())
	require.Error(t, err)
}
