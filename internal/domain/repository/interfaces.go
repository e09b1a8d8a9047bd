package repository

import (
	"context"
	"time"

	"GlucoPulse/internal/domain/models"
)

type CGMStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context) error
	Read(ctx context.Context) (<-chan *models.Reading, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

type Publisher interface {
	Publish(ctx context.Context, r *models.Reading) error
	PublishBatch(ctx context.Context, readings []*models.Reading) error
	Close() error
}

type Storage interface {
	Init(ctx context.Context) error // ensure tables, health checks
	Store(ctx context.Context, r *models.Reading) error
	StoreBatch(ctx context.Context, readings []*models.Reading) error
	Update(ctx context.Context, r *models.Reading) error
	Delete(ctx context.Context, userID, id string) error
	Query(ctx context.Context, userID string, from, to time.Time, limit int) ([]*models.Reading, error)
	Health(ctx context.Context) error // ping
	Close() error
}

type Metrics interface {
	RecordReadingStored(backend, source string)
	RecordError(kind string)
	RecordLastGlucose(userID string, value float64)
	RecordLatency(op string, seconds float64)
	RecordAlert(trigger string)
}
