package notify

import (
	"context"
	"sync"
	"time"

	"GlucoPulse/internal/domain/models"
	xhttp "GlucoPulse/pkg/http"
	applogger "GlucoPulse/pkg/logger"
)

// alertEvent is the payload posted to the webhook endpoint.
type alertEvent struct {
	UserID    string              `json:"user_id"`
	Value     float64             `json:"value_mg_dl"`
	Trigger   models.AlertTrigger `json:"trigger"`
	Timestamp string              `json:"timestamp"`
}

// WebhookNotifier posts threshold alerts for incoming readings to an
// external HTTP endpoint. Repeated alerts for the same user are
// suppressed within a cooldown window.
type WebhookNotifier struct {
	url      string
	high     float64
	low      float64
	cooldown time.Duration
	client   *xhttp.Client
	l        *applogger.Logger

	mu       sync.Mutex
	lastSent map[string]time.Time
}

type Option func(*WebhookNotifier)

// WithCooldown sets the per-user suppression window.
func WithCooldown(d time.Duration) Option {
	return func(n *WebhookNotifier) {
		if d > 0 {
			n.cooldown = d
		}
	}
}

// WithLogger sets the logger for delivery failures.
func WithLogger(l *applogger.Logger) Option {
	return func(n *WebhookNotifier) { n.l = l }
}

// NewWebhookNotifier creates a notifier posting to url when a reading
// crosses the high or low threshold.
func NewWebhookNotifier(url string, high, low float64, opts ...Option) *WebhookNotifier {
	n := &WebhookNotifier{
		url:      url,
		high:     high,
		low:      low,
		cooldown: 15 * time.Minute,
		client:   xhttp.NewClient(xhttp.WithTimeout(10 * time.Second)),
		lastSent: make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Observe inspects a reading and fires the webhook asynchronously when
// a threshold is crossed. Safe for concurrent use.
func (n *WebhookNotifier) Observe(r *models.Reading) {
	if r == nil || n.url == "" {
		return
	}

	var trigger models.AlertTrigger
	switch {
	case r.Value >= n.high:
		trigger = models.TriggerHighCurrent
	case r.Value <= n.low:
		trigger = models.TriggerLowCurrent
	default:
		return
	}

	if !n.shouldSend(r.UserID, time.Now()) {
		return
	}

	ev := alertEvent{
		UserID:    r.UserID,
		Value:     r.Value,
		Trigger:   trigger,
		Timestamp: r.Timestamp.UTC().Format(time.RFC3339),
	}
	go func() {
		if err := n.Send(context.Background(), ev); err != nil && n.l != nil {
			n.l.Warn("alert webhook delivery failed",
				applogger.String("user_id", ev.UserID),
				applogger.Error(err),
			)
		}
	}()
}

// Send posts a single alert event and waits for the response.
func (n *WebhookNotifier) Send(ctx context.Context, ev alertEvent) error {
	return n.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodPost,
		URL:    n.url,
		Body:   ev,
	}, nil)
}

func (n *WebhookNotifier) shouldSend(userID string, now time.Time) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	if last, ok := n.lastSent[userID]; ok && now.Sub(last) < n.cooldown {
		return false
	}
	n.lastSent[userID] = now
	return true
}
