package cgm

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"GlucoPulse/internal/domain/models"
	drepo "GlucoPulse/internal/domain/repository"

	"github.com/gorilla/websocket"
)

// Client implements a CGMStream backed by the CGM bridge WebSocket.
type Client struct {
	apiKey         string
	websocketURL   string
	userIDs        []string
	reconnectDelay time.Duration
	pingInterval   time.Duration

	conn      *websocket.Conn
	connected bool
}

// New creates a new CGM bridge stream.
func New(apiKey, websocketURL string, userIDs []string, reconnectDelay, pingInterval time.Duration) drepo.CGMStream {
	return &Client{
		apiKey:         apiKey,
		websocketURL:   websocketURL,
		userIDs:        userIDs,
		reconnectDelay: reconnectDelay,
		pingInterval:   pingInterval,
	}
}

// Connect establishes the WebSocket connection.
func (c *Client) Connect(ctx context.Context) error {
	u := fmt.Sprintf("%s?token=%s", c.websocketURL, c.apiKey)
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u, nil)
	if err != nil {
		return fmt.Errorf("cgm connect: %w", err)
	}
	c.conn = conn
	c.connected = true
	log.Printf("cgm: connected")
	return nil
}

// Subscribe subscribes to configured user feeds.
func (c *Client) Subscribe(ctx context.Context) error {
	if c.conn == nil || !c.connected {
		return fmt.Errorf("cgm not connected")
	}
	for _, id := range c.userIDs {
		msg := map[string]string{"type": "subscribe", "user_id": id}
		if err := c.conn.WriteJSON(msg); err != nil {
			return fmt.Errorf("subscribe %s: %w", id, err)
		}
		log.Printf("cgm: subscribed %s", id)
	}
	return nil
}

type cgmSample struct {
	ID string  `json:"id"`
	U  string  `json:"u"`
	G  float64 `json:"g"` // mg/dL
	T  int64   `json:"t"` // ms
}

type cgmMessage struct {
	Type string      `json:"type"`
	Data []cgmSample `json:"data"`
}

// Read streams Reading events and errors.
func (c *Client) Read(ctx context.Context) (<-chan *models.Reading, <-chan error) {
	readings := make(chan *models.Reading, 1024)
	errs := make(chan error, 1)

	// ping loop
	go func() {
		ticker := time.NewTicker(c.pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if c.conn != nil {
					_ = c.conn.WriteMessage(websocket.PingMessage, nil)
				}
			}
		}
	}()

	// read loop
	go func() {
		defer close(readings)
		defer close(errs)
		for {
			select {
			case <-ctx.Done():
				return
			default:
				if c.conn == nil {
					errs <- fmt.Errorf("cgm conn nil")
					return
				}
				_, b, err := c.conn.ReadMessage()
				if err != nil {
					errs <- fmt.Errorf("cgm read: %w", err)
					return
				}
				var m cgmMessage
				if err := json.Unmarshal(b, &m); err != nil {
					// ignore non-sample frames
					continue
				}
				if m.Type != "glucose" {
					continue
				}
				for _, d := range m.Data {
					r := &models.Reading{
						ID:        d.ID,
						UserID:    d.U,
						Value:     d.G,
						Timestamp: time.Unix(d.T/1000, (d.T%1000)*int64(time.Millisecond)).UTC(),
						Context:   models.ContextRandom,
						Source:    models.SourceCGM,
					}
					select {
					case readings <- r:
					default:
						// drop on backpressure
					}
				}
			}
		}
	}()

	return readings, errs
}

// Reconnect closes and reconnects.
func (c *Client) Reconnect(ctx context.Context) error {
	_ = c.Close()
	time.Sleep(c.reconnectDelay)
	if err := c.Connect(ctx); err != nil {
		return err
	}
	return c.Subscribe(ctx)
}

// Close closes the WS connection.
func (c *Client) Close() error {
	c.connected = false
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// IsConnected indicates status.
func (c *Client) IsConnected() bool { return c.connected }
