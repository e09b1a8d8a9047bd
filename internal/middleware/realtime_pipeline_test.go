package middleware

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"GlucoPulse/internal/domain/models"
)

type fakeProc struct {
	mu   sync.Mutex
	err  error
	seen []*models.Reading
}

func (f *fakeProc) Process(_ context.Context, r *models.Reading) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.seen = append(f.seen, r)
	return nil
}

func (f *fakeProc) setErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func (f *fakeProc) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.seen)
}

type nopMetrics struct{}

func (nopMetrics) RecordReadingStored(string, string) {}
func (nopMetrics) RecordError(string)                 {}
func (nopMetrics) RecordLastGlucose(string, float64)  {}
func (nopMetrics) RecordLatency(string, float64)      {}
func (nopMetrics) RecordAlert(string)                 {}

func validCGMReading(userID string, ts time.Time) *models.Reading {
	return &models.Reading{
		ID:        "r1",
		UserID:    userID,
		Value:     120,
		Timestamp: ts,
		Source:    models.SourceCGM,
	}
}

func TestPipeline_ForwardsValidReading(t *testing.T) {
	proc := &fakeProc{}
	p := NewRealtimePipeline(proc, nopMetrics{})

	err := p.Process(context.Background(), validCGMReading("alice", time.Now()))
	require.NoError(t, err)
	require.Len(t, proc.seen, 1)
	assert.Equal(t, "alice", proc.seen[0].UserID)
}

func TestPipeline_RejectsInvalidReadings(t *testing.T) {
	proc := &fakeProc{}
	p := NewRealtimePipeline(proc, nopMetrics{})
	ctx := context.Background()

	assert.Error(t, p.Process(ctx, nil))
	assert.Error(t, p.Process(ctx, &models.Reading{UserID: "", Value: 120, Timestamp: time.Now()}))
	assert.Error(t, p.Process(ctx, &models.Reading{UserID: "alice", Value: 120}))
	assert.Error(t, p.Process(ctx, &models.Reading{UserID: "alice", Value: -5, Timestamp: time.Now()}))
	assert.Empty(t, proc.seen)
}

func TestPipeline_ThrottlesPerUser(t *testing.T) {
	proc := &fakeProc{}
	p := NewRealtimePipeline(proc, nopMetrics{}, WithMaxRPS(1))
	ctx := context.Background()

	now := time.Now()
	require.NoError(t, p.Process(ctx, validCGMReading("alice", now)))
	// second reading within the same second is dropped without error
	require.NoError(t, p.Process(ctx, validCGMReading("alice", now)))
	// a different user is unaffected
	require.NoError(t, p.Process(ctx, validCGMReading("bob", now)))

	assert.Len(t, proc.seen, 2)
}

func TestPipeline_ObserverSeesAcceptedReadings(t *testing.T) {
	proc := &fakeProc{}
	var observed []string
	p := NewRealtimePipeline(proc, nopMetrics{},
		WithObserver(func(r *models.Reading) { observed = append(observed, r.UserID) }),
	)
	ctx := context.Background()

	require.NoError(t, p.Process(ctx, validCGMReading("alice", time.Now())))
	assert.Error(t, p.Process(ctx, &models.Reading{UserID: "bob", Value: -1, Timestamp: time.Now()}))

	assert.Equal(t, []string{"alice"}, observed)
}

func TestPipeline_BuffersOnDownstreamError(t *testing.T) {
	proc := &fakeProc{err: errors.New("backend down")}
	p := NewRealtimePipeline(proc, nopMetrics{}, WithBufferSize(10))
	ctx := context.Background()

	err := p.Process(ctx, validCGMReading("alice", time.Now()))
	require.Error(t, err)

	// backend recovers; the flush loop drains the buffer
	proc.setErr(nil)
	p.Start(ctx)
	defer p.Stop()

	assert.Eventually(t, func() bool {
		return proc.count() == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestPipeline_TransformApplied(t *testing.T) {
	proc := &fakeProc{}
	p := NewRealtimePipeline(proc, nopMetrics{},
		WithTransform(func(r *models.Reading) *models.Reading {
			r.Source = models.SourceCGM
			return r
		}),
	)

	r := validCGMReading("alice", time.Now())
	r.Source = ""
	require.NoError(t, p.Process(context.Background(), r))
	require.Len(t, proc.seen, 1)
	assert.Equal(t, models.SourceCGM, proc.seen[0].Source)
}
