package models

import "time"

// MealContext describes the circumstance of a measurement. Informational
// only; aggregation never branches on it.
type MealContext string

const (
	ContextFasting    MealContext = "fasting"
	ContextBeforeMeal MealContext = "before_meal"
	ContextAfterMeal  MealContext = "after_meal"
	ContextRandom     MealContext = "random"
)

// ReadingSource identifies where a reading came from.
type ReadingSource string

const (
	SourceManual ReadingSource = "manual"
	SourceCGM    ReadingSource = "cgm"
)

// Reading is one validated glucose measurement. Immutable once handed to
// the analytics pipeline; edits happen at the storage layer before ingestion.
type Reading struct {
	ID        string
	UserID    string
	Value     float64 // mg/dL
	Timestamp time.Time
	Context   MealContext
	Note      string
	Source    ReadingSource
}

// RawReading is the untyped JSON shape arriving from storage or transport.
// The ingestion stage turns it into a Reading or drops it.
type RawReading struct {
	ID        string   `json:"id,omitempty"`
	UserID    string   `json:"user_id,omitempty"`
	Value     *float64 `json:"value"`
	Timestamp string   `json:"timestamp"`
	Context   string   `json:"context,omitempty"`
	Note      string   `json:"note,omitempty"`
	Source    string   `json:"source,omitempty"`
}
