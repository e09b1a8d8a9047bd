package repository

import (
	"context"
	"time"

	"GlucoPulse/internal/domain/models"
)

// Granularity selects the grouping label width for time-of-day comparisons.
type Granularity string

const (
	GranWeek  Granularity = "week"
	GranMonth Granularity = "month"
)

// ReadingStore provides read-only access to a user's reading history for
// analytics. Results come back as raw records; the ingestion stage owns
// validation and ordering.
type ReadingStore interface {
	GetReadings(ctx context.Context, userID string, from, to time.Time) ([]models.RawReading, error)
	GetLatestNReadings(ctx context.Context, userID string, n int) ([]models.RawReading, error)
}
