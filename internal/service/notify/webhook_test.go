package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"GlucoPulse/internal/domain/models"
)

func reading(userID string, value float64) *models.Reading {
	return &models.Reading{
		ID:        "r1",
		UserID:    userID,
		Value:     value,
		Timestamp: time.Date(2024, 10, 10, 12, 0, 0, 0, time.UTC),
		Source:    models.SourceCGM,
	}
}

func TestWebhookNotifier_SendPostsEvent(t *testing.T) {
	var got alertEvent
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewWebhookNotifier(srv.URL, 250, 70)
	err := n.Send(context.Background(), alertEvent{
		UserID:    "alice",
		Value:     260,
		Trigger:   models.TriggerHighCurrent,
		Timestamp: "2024-10-10T12:00:00Z",
	})
	require.NoError(t, err)

	assert.Equal(t, "alice", got.UserID)
	assert.Equal(t, models.TriggerHighCurrent, got.Trigger)
	assert.InDelta(t, 260, got.Value, 0.001)
}

func TestWebhookNotifier_SendRejectsErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	n := NewWebhookNotifier(srv.URL, 250, 70)
	err := n.Send(context.Background(), alertEvent{UserID: "alice", Value: 260})
	assert.Error(t, err)
}

func TestWebhookNotifier_ObserveFiresOnThresholds(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewWebhookNotifier(srv.URL, 250, 70)

	n.Observe(reading("alice", 120)) // in range, no call
	n.Observe(reading("bob", 260))   // high
	n.Observe(reading("carol", 55))  // low

	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&calls) == 2
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWebhookNotifier_CooldownSuppressesRepeats(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewWebhookNotifier(srv.URL, 250, 70, WithCooldown(time.Hour))

	n.Observe(reading("alice", 260))
	n.Observe(reading("alice", 270))
	n.Observe(reading("alice", 280))

	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&calls) == 1
	}, 2*time.Second, 10*time.Millisecond)

	// a different user is not suppressed
	n.Observe(reading("bob", 260))
	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&calls) == 2
	}, 2*time.Second, 10*time.Millisecond)
}
