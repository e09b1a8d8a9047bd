package usecase

import (
	"context"

	"GlucoPulse/internal/domain/models"
	domrepo "GlucoPulse/internal/domain/repository"
	mid "GlucoPulse/internal/middleware"
)

// CGMCollector consumes readings from the CGM bridge stream and feeds them
// through the realtime pipeline into the backend.
type CGMCollector struct {
	stream  domrepo.CGMStream
	proc    *ReadingProcessor
	metrics domrepo.Metrics
	pipe    *mid.RealtimePipeline
}

// NewCGMCollector creates a new CGMCollector instance.
func NewCGMCollector(stream domrepo.CGMStream, proc *ReadingProcessor, metrics domrepo.Metrics, pipe *mid.RealtimePipeline) *CGMCollector {
	return &CGMCollector{stream: stream, proc: proc, metrics: metrics, pipe: pipe}
}

// IsConnected returns true if the CGM stream is connected.
func (c *CGMCollector) IsConnected() bool {
	return c.stream.IsConnected()
}

func (c *CGMCollector) Start(ctx context.Context) error {
	if err := c.stream.Connect(ctx); err != nil {
		return err
	}
	if err := c.stream.Subscribe(ctx); err != nil {
		return err
	}
	if c.pipe != nil {
		c.pipe.Start(ctx)
	}
	rdCh, errCh := c.stream.Read(ctx)
	go c.consume(ctx, rdCh, errCh)
	return nil
}

func (c *CGMCollector) consume(ctx context.Context, rdCh <-chan *models.Reading, errCh <-chan error) {
	for {
		select {
		case <-ctx.Done():
			return
		case err := <-errCh:
			if err != nil {
				c.metrics.RecordError("stream")
				_ = c.stream.Reconnect(ctx)
			}
		case r := <-rdCh:
			if r == nil {
				continue
			}
			if c.pipe != nil {
				_ = c.pipe.Process(ctx, r)
			} else {
				_ = c.proc.Process(ctx, r)
			}
			c.metrics.RecordLastGlucose(r.UserID, r.Value)
		}
	}
}

func (c *CGMCollector) Stop() error { return c.stream.Close() }

// Processor returns the underlying ReadingProcessor for lifecycle management.
func (c *CGMCollector) Processor() *ReadingProcessor { return c.proc }

// Shutdown stops the pipeline and closes the stream.
func (c *CGMCollector) Shutdown(ctx context.Context) error {
	if c.pipe != nil {
		c.pipe.Stop()
	}
	return c.stream.Close()
}
