package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"GlucoPulse/internal/domain/models"
	"GlucoPulse/internal/domain/repository"
	pkgkafka "GlucoPulse/pkg/kafka"
)

// ClickHouseStorage implements Storage for ClickHouse. The readings table is
// a ReplacingMergeTree versioned by updated_at; edits and deletes insert new
// version rows, merges collapse them.
type ClickHouseStorage struct {
	db    *sql.DB
	table string
}

// NewClickHouseStorage creates ClickHouse storage.
func NewClickHouseStorage(db *sql.DB, table string) repository.Storage {
	return &ClickHouseStorage{db: db, table: table}
}

func (s *ClickHouseStorage) Init(ctx context.Context) error {
	return nil // Schema init in pkg
}

func (s *ClickHouseStorage) Store(ctx context.Context, r *models.Reading) error {
	q := fmt.Sprintf("INSERT INTO %s (id, user_id, ts, value, ctx, note, source, updated_at, deleted) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)", s.table)
	_, err := s.db.ExecContext(ctx, q,
		r.ID,
		r.UserID,
		r.Timestamp,
		r.Value,
		string(r.Context),
		r.Note,
		string(r.Source),
		time.Now().UTC(),
		uint8(0),
	)
	return err
}

func (s *ClickHouseStorage) StoreBatch(ctx context.Context, readings []*models.Reading) error {
	if len(readings) == 0 {
		return nil
	}
	// Batch insert using VALUES multi-row to reduce round-trips.
	// Chunk size tuned to 2000 rows per batch.
	const chunkSize = 2000
	now := time.Now().UTC()
	for start := 0; start < len(readings); start += chunkSize {
		end := start + chunkSize
		if end > len(readings) {
			end = len(readings)
		}

		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*9)
		for _, r := range readings[start:end] {
			if r == nil || r.UserID == "" || r.Timestamp.IsZero() {
				continue
			}
			values = append(values, "(?, ?, ?, ?, ?, ?, ?, ?, ?)")
			args = append(args,
				r.ID,
				r.UserID,
				r.Timestamp,
				r.Value,
				string(r.Context),
				r.Note,
				string(r.Source),
				now,
				uint8(0),
			)
		}
		if len(values) == 0 {
			continue
		}
		q := fmt.Sprintf("INSERT INTO %s (id, user_id, ts, value, ctx, note, source, updated_at, deleted) VALUES %s", s.table, strings.Join(values, ","))
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			return err
		}
	}
	return nil
}

// Update inserts a newer version row; ReplacingMergeTree keeps the latest
// updated_at per (user_id, id).
func (s *ClickHouseStorage) Update(ctx context.Context, r *models.Reading) error {
	if r == nil || r.ID == "" || r.UserID == "" {
		return fmt.Errorf("update reading: missing ids")
	}
	return s.Store(ctx, r)
}

// Delete inserts a tombstone version row for (user_id, id).
func (s *ClickHouseStorage) Delete(ctx context.Context, userID, id string) error {
	if userID == "" || id == "" {
		return fmt.Errorf("delete reading: missing ids")
	}
	q := fmt.Sprintf(`
        INSERT INTO %s (id, user_id, ts, value, ctx, note, source, updated_at, deleted)
        SELECT id, user_id, ts, value, ctx, note, source, ?, 1
        FROM %s FINAL
        WHERE user_id = ? AND id = ? AND deleted = 0
    `, s.table, s.table)
	_, err := s.db.ExecContext(ctx, q, time.Now().UTC(), userID, id)
	return err
}

func (s *ClickHouseStorage) Query(ctx context.Context, userID string, from, to time.Time, limit int) ([]*models.Reading, error) {
	q := fmt.Sprintf("SELECT id, user_id, ts, value, ctx, note, source FROM %s FINAL WHERE user_id = ? AND deleted = 0 AND ts >= ? AND ts <= ? ORDER BY ts DESC LIMIT ?", s.table)
	rows, err := s.db.QueryContext(ctx, q, userID, from, to, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var readings []*models.Reading
	for rows.Next() {
		var (
			r   models.Reading
			ts  time.Time
			cx  string
			src string
		)
		if err := rows.Scan(&r.ID, &r.UserID, &ts, &r.Value, &cx, &r.Note, &src); err != nil {
			return nil, err
		}
		r.Timestamp = ts.UTC()
		r.Context = models.MealContext(cx)
		r.Source = models.ReadingSource(src)
		readings = append(readings, &r)
	}
	return readings, rows.Err()
}

func (s *ClickHouseStorage) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *ClickHouseStorage) Close() error {
	return nil // Managed by pkg
}

// KafkaPublisher implements Publisher for Kafka.
type KafkaPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaPublisher creates Kafka publisher.
func NewKafkaPublisher(producer *pkgkafka.Producer, topic string) repository.Publisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

func (p *KafkaPublisher) Publish(ctx context.Context, r *models.Reading) error {
	return p.producer.Publish(ctx, p.topic, []byte(r.UserID), readingMessage(r))
}

func (p *KafkaPublisher) PublishBatch(ctx context.Context, readings []*models.Reading) error {
	if len(readings) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, len(readings))
	for i, r := range readings {
		msgs[i] = pkgkafka.Message{
			Key:   []byte(r.UserID),
			Value: readingMessage(r),
		}
	}
	return p.producer.PublishBatch(ctx, p.topic, msgs)
}

func (p *KafkaPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

func readingMessage(r *models.Reading) map[string]interface{} {
	return map[string]interface{}{
		"id":      r.ID,
		"user_id": r.UserID,
		"t":       r.Timestamp.Unix(),
		"v":       r.Value,
		"ctx":     string(r.Context),
		"note":    r.Note,
		"source":  string(r.Source),
	}
}
