package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"GlucoPulse/internal/domain/models"
	pkgch "GlucoPulse/pkg/clickhouse"
	applogger "GlucoPulse/pkg/logger"
)

// CHReadingStore implements ReadingStore backed by ClickHouse. It returns raw
// records; validation and ordering belong to the ingestion stage.
type CHReadingStore struct {
	db    *sql.DB
	table string
	l     *applogger.Logger
}

func NewCHReadingStore(ch *pkgch.Client, table string) *CHReadingStore {
	return &CHReadingStore{db: ch.DB(), table: table}
}

// SetLogger injects a structured logger.
func (s *CHReadingStore) SetLogger(l *applogger.Logger) { s.l = l }

func (s *CHReadingStore) GetReadings(ctx context.Context, userID string, from, to time.Time) ([]models.RawReading, error) {
	start := time.Now()
	const qtpl = `
        SELECT id, user_id, ts, value, ctx, note, source
        FROM %s FINAL
        WHERE user_id = ? AND deleted = 0 AND ts >= ? AND ts < ?
        ORDER BY ts ASC
    `
	q := fmt.Sprintf(qtpl, s.table)
	rows, err := s.db.QueryContext(ctx, q, userID, from, to)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse get_readings query error",
				applogger.String("table", s.table),
				applogger.String("user_id", userID),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("get readings: %w", err)
	}
	defer rows.Close()

	out := make([]models.RawReading, 0, 1024)
	for rows.Next() {
		rr, err := scanRaw(rows)
		if err != nil {
			if s.l != nil {
				s.l.Error("clickhouse get_readings scan error",
					applogger.String("table", s.table),
					applogger.String("user_id", userID),
					applogger.Error(err),
				)
			}
			return nil, fmt.Errorf("scan reading: %w", err)
		}
		out = append(out, rr)
	}
	if err := rows.Err(); err != nil {
		if s.l != nil {
			s.l.Error("clickhouse get_readings rows error",
				applogger.String("table", s.table),
				applogger.String("user_id", userID),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("rows: %w", err)
	}
	if s.l != nil {
		s.l.Info("clickhouse get_readings ok",
			applogger.String("table", s.table),
			applogger.String("user_id", userID),
			applogger.Int("rows", len(out)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return out, nil
}

func (s *CHReadingStore) GetLatestNReadings(ctx context.Context, userID string, n int) ([]models.RawReading, error) {
	start := time.Now()
	const qtpl = `
        SELECT id, user_id, ts, value, ctx, note, source
        FROM %s FINAL
        WHERE user_id = ? AND deleted = 0
        ORDER BY ts DESC
        LIMIT ?
    `
	q := fmt.Sprintf(qtpl, s.table)
	rows, err := s.db.QueryContext(ctx, q, userID, n)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse latest_readings query error",
				applogger.String("table", s.table),
				applogger.String("user_id", userID),
				applogger.Int("limit", n),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("get latest readings: %w", err)
	}
	defer rows.Close()

	tmp := make([]models.RawReading, 0, n)
	for rows.Next() {
		rr, err := scanRaw(rows)
		if err != nil {
			if s.l != nil {
				s.l.Error("clickhouse latest_readings scan error",
					applogger.String("table", s.table),
					applogger.String("user_id", userID),
					applogger.Int("limit", n),
					applogger.Error(err),
				)
			}
			return nil, fmt.Errorf("scan reading: %w", err)
		}
		tmp = append(tmp, rr)
	}
	if err := rows.Err(); err != nil {
		if s.l != nil {
			s.l.Error("clickhouse latest_readings rows error",
				applogger.String("table", s.table),
				applogger.String("user_id", userID),
				applogger.Int("limit", n),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("rows: %w", err)
	}
	// reverse to ASC
	for i, j := 0, len(tmp)-1; i < j; i, j = i+1, j-1 {
		tmp[i], tmp[j] = tmp[j], tmp[i]
	}
	if s.l != nil {
		s.l.Info("clickhouse latest_readings ok",
			applogger.String("table", s.table),
			applogger.String("user_id", userID),
			applogger.Int("limit", n),
			applogger.Int("rows", len(tmp)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return tmp, nil
}

func scanRaw(rows *sql.Rows) (models.RawReading, error) {
	var (
		rr models.RawReading
		ts time.Time
		v  float64
	)
	if err := rows.Scan(&rr.ID, &rr.UserID, &ts, &v, &rr.Context, &rr.Note, &rr.Source); err != nil {
		return models.RawReading{}, err
	}
	rr.Timestamp = ts.UTC().Format(time.RFC3339)
	rr.Value = &v
	return rr, nil
}
