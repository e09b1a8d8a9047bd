package usecase

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	domrepo "GlucoPulse/internal/domain/repository"
	icache "GlucoPulse/internal/service/cache"
	pkgcache "GlucoPulse/pkg/cache"
	"GlucoPulse/pkg/queue"
	"GlucoPulse/pkg/util"
)

const (
	// ExportJobType is the queue message type for report exports.
	ExportJobType = "report.export"

	exportTTL       = 30 * time.Minute
	exportKeyPrefix = "export"
)

// ExportPayload is the queued description of one export request.
type ExportPayload struct {
	ExportID string `json:"export_id"`
	UserID   string `json:"user_id"`
	Days     int    `json:"days"`
}

// ExportKey returns the cache key holding a finished export.
func ExportKey(exportID string) string { return pkgcache.GenerateKey(exportKeyPrefix, exportID) }

// ExportReportJob builds CSV exports of a user's readings off the request
// path and stages the result in the cache for download.
type ExportReportJob struct {
	store domrepo.Storage
	cache icache.BytesCache
}

func NewExportReportJob(store domrepo.Storage, cache icache.BytesCache) *ExportReportJob {
	return &ExportReportJob{store: store, cache: cache}
}

func (j *ExportReportJob) Name() string { return "export_report" }

func (j *ExportReportJob) Type() string { return ExportJobType }

func (j *ExportReportJob) Handle(ctx context.Context, payload interface{}) error {
	p, err := queue.ParsePayload[ExportPayload](payload)
	if err != nil {
		return fmt.Errorf("export payload: %w", err)
	}
	if p.ExportID == "" || p.UserID == "" {
		return fmt.Errorf("export payload missing ids")
	}
	days := p.Days
	if days <= 0 {
		days = 90
	}

	now := time.Now().UTC()
	from := util.DayStart(now.AddDate(0, 0, -days))
	readings, err := j.store.Query(ctx, p.UserID, from, now, 100000)
	if err != nil {
		return fmt.Errorf("export query: %w", err)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"timestamp", "value_mg_dl", "context", "note", "source"}); err != nil {
		return err
	}
	for _, r := range readings {
		rec := []string{
			r.Timestamp.UTC().Format(time.RFC3339),
			strconv.FormatFloat(r.Value, 'f', -1, 64),
			string(r.Context),
			r.Note,
			string(r.Source),
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("export csv: %w", err)
	}

	if err := j.cache.SetBytes(ExportKey(p.ExportID), buf.Bytes(), exportTTL); err != nil {
		return fmt.Errorf("export stage: %w", err)
	}
	return nil
}

var _ queue.Job = (*ExportReportJob)(nil)
