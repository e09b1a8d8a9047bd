package analytics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"GlucoPulse/internal/domain/models"
)

func fptr(v float64) *float64 { return &v }

func rawAt(value float64, ts string, note string) models.RawReading {
	return models.RawReading{Value: fptr(value), Timestamp: ts, Context: "fasting", Note: note}
}

func TestNormalize_SortsAscending(t *testing.T) {
	a := New(Config{})
	raw := []models.RawReading{
		rawAt(120, "2025-03-03T10:00:00Z", ""),
		rawAt(95, "2025-03-01T08:00:00Z", ""),
		rawAt(140, "2025-03-02T19:30:00Z", ""),
	}

	got := a.Normalize(raw)
	require.Len(t, got, 3)
	for i := 1; i < len(got); i++ {
		assert.False(t, got[i].Timestamp.Before(got[i-1].Timestamp),
			"expected ascending order at index %d", i)
	}
	assert.Equal(t, 95.0, got[0].Value)
	assert.Equal(t, 120.0, got[2].Value)
}

func TestNormalize_StableForEqualTimestamps(t *testing.T) {
	a := New(Config{})
	ts := "2025-03-01T08:00:00Z"
	raw := []models.RawReading{
		rawAt(100, ts, "first"),
		rawAt(110, ts, "second"),
		rawAt(120, ts, "third"),
	}

	got := a.Normalize(raw)
	require.Len(t, got, 3)
	assert.Equal(t, "first", got[0].Note)
	assert.Equal(t, "second", got[1].Note)
	assert.Equal(t, "third", got[2].Note)
}

func TestNormalize_DropsInvalidRecords(t *testing.T) {
	a := New(Config{})
	raw := []models.RawReading{
		rawAt(95, "2025-03-01T08:00:00Z", ""),
		{Value: nil, Timestamp: "2025-03-01T09:00:00Z"},                 // missing value
		{Value: fptr(math.NaN()), Timestamp: "2025-03-01T10:00:00Z"},   // non-finite
		{Value: fptr(math.Inf(1)), Timestamp: "2025-03-01T11:00:00Z"},  // non-finite
		{Value: fptr(130), Timestamp: "not-a-time"},                    // bad timestamp
		rawAt(140, "2025-03-01T12:00:00Z", ""),
	}

	got := a.Normalize(raw)
	require.Len(t, got, 2)
	assert.Equal(t, 95.0, got[0].Value)
	assert.Equal(t, 140.0, got[1].Value)
}

func TestNormalize_AcceptsUnixSeconds(t *testing.T) {
	a := New(Config{})
	raw := []models.RawReading{{Value: fptr(105), Timestamp: "1740816000"}}

	got := a.Normalize(raw)
	require.Len(t, got, 1)
	assert.Equal(t, int64(1740816000), got[0].Timestamp.Unix())
}

func TestValidateRaw_Reasons(t *testing.T) {
	_, err := ValidateRaw(models.RawReading{Timestamp: "2025-03-01T08:00:00Z"})
	var ire *InvalidReadingError
	require.ErrorAs(t, err, &ire)
	assert.Contains(t, ire.Reason, "missing value")

	_, err = ValidateRaw(models.RawReading{Value: fptr(100), Timestamp: ""})
	require.ErrorAs(t, err, &ire)
	assert.Contains(t, ire.Reason, "timestamp")
}
