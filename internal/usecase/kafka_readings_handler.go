package usecase

import (
	"context"
	"encoding/json"
	"time"

	"GlucoPulse/internal/domain/models"
	domrepo "GlucoPulse/internal/domain/repository"
	pkgkafka "GlucoPulse/pkg/kafka"
)

// KafkaReadingsHandler consumes reading messages and writes them to storage.
type KafkaReadingsHandler struct {
	topic   string
	storage domrepo.Storage
	metrics domrepo.Metrics
}

func NewKafkaReadingsHandler(topic string, storage domrepo.Storage, metrics domrepo.Metrics) *KafkaReadingsHandler {
	return &KafkaReadingsHandler{topic: topic, storage: storage, metrics: metrics}
}

func (h *KafkaReadingsHandler) Topic() string { return h.topic }

// incoming message schema: {id, user_id, t, v, ctx, note, source}
func (h *KafkaReadingsHandler) Handle(ctx context.Context, b []byte) error {
	var m struct {
		ID     string  `json:"id"`
		UserID string  `json:"user_id"`
		T      int64   `json:"t"`
		V      float64 `json:"v"`
		Ctx    string  `json:"ctx"`
		Note   string  `json:"note"`
		Source string  `json:"source"`
	}
	if err := json.Unmarshal(b, &m); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return err
	}
	if m.T > 1e11 { // ms
		m.T = m.T / 1000
	}
	// E2E latency from event time to now (approx)
	h.metrics.RecordLatency("ingest_e2e_seconds", time.Since(time.Unix(m.T, 0)).Seconds())

	start := time.Now()
	err := h.storage.Store(ctx, &models.Reading{
		ID:        m.ID,
		UserID:    m.UserID,
		Value:     m.V,
		Timestamp: time.Unix(m.T, 0).UTC(),
		Context:   models.MealContext(m.Ctx),
		Note:      m.Note,
		Source:    models.ReadingSource(m.Source),
	})
	h.metrics.RecordLatency("ch_insert_seconds", time.Since(start).Seconds())
	if err != nil {
		h.metrics.RecordError("consumer_store")
		return err
	}
	h.metrics.RecordReadingStored("clickhouse", m.Source)
	return nil
}

var _ pkgkafka.MessageHandler = (*KafkaReadingsHandler)(nil)
