package analytics

import (
	"fmt"
	"math"
	"sort"

	"GlucoPulse/internal/domain/models"
	"GlucoPulse/pkg/util"
)

// InvalidReadingError describes a single malformed input record. Recovery is
// local: the record is dropped from the batch.
type InvalidReadingError struct {
	Reason string
}

func (e *InvalidReadingError) Error() string {
	return fmt.Sprintf("invalid reading: %s", e.Reason)
}

// ValidateRaw converts one raw record into a Reading, or explains why it
// cannot be one.
func ValidateRaw(rr models.RawReading) (models.Reading, error) {
	if rr.Value == nil {
		return models.Reading{}, &InvalidReadingError{Reason: "missing value"}
	}
	v := *rr.Value
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return models.Reading{}, &InvalidReadingError{Reason: "non-finite value"}
	}
	ts, ok := util.ParseTime(rr.Timestamp)
	if !ok {
		return models.Reading{}, &InvalidReadingError{Reason: "unparseable timestamp"}
	}
	return models.Reading{
		ID:        rr.ID,
		UserID:    rr.UserID,
		Value:     v,
		Timestamp: ts,
		Context:   models.MealContext(rr.Context),
		Note:      rr.Note,
		Source:    models.ReadingSource(rr.Source),
	}, nil
}

// Normalize turns a raw, possibly unsorted batch into a validated sequence
// sorted ascending by timestamp. The sort is stable, so records sharing a
// timestamp keep their input order. Invalid records are dropped rather than
// failing the batch; a single corrupt entry must not blank the dashboard.
func (a *Analyzer) Normalize(raw []models.RawReading) []models.Reading {
	out := make([]models.Reading, 0, len(raw))
	for _, rr := range raw {
		r, err := ValidateRaw(rr)
		if err != nil {
			continue
		}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out
}
