package models

import "time"

// WeeklySummary compares the 7-day window ending at "now" against the 7 days
// before it. Means are rounded to whole mg/dL for display.
type WeeklySummary struct {
	CurrentMean   int      `json:"current_mean"`
	PreviousMean  int      `json:"previous_mean"`
	PercentChange int      `json:"percent_change"`
	HighCount     int      `json:"high_count"`
	LowCount      int      `json:"low_count"`
	MaxReading    *Reading `json:"max_reading,omitempty"`
}

// TimeOfDayRow is one label row of the time-of-day comparison chart.
// A mean of 0 marks an empty cell, never a division by zero.
type TimeOfDayRow struct {
	Label       string `json:"label"`
	MorningMean int    `json:"morning_mean"`
	EveningMean int    `json:"evening_mean"`
	NightMean   int    `json:"night_mean"`
}

// Forecast is the fitted short-horizon projection. Coefficients are in
// ascending degree order over normalized time.
type Forecast struct {
	Coefficients   []float64     `json:"coefficients"`
	Horizon        time.Duration `json:"-"`
	PredictedValue int           `json:"predicted_value"`
}

// AlertTrigger identifies which threshold condition fired.
type AlertTrigger string

const (
	TriggerHighCurrent   AlertTrigger = "high_current"
	TriggerLowCurrent    AlertTrigger = "low_current"
	TriggerHighPredicted AlertTrigger = "high_predicted"
	TriggerLowPredicted  AlertTrigger = "low_predicted"
)

// Alert is a threshold breach surfaced to the dashboard. Dismissal is view
// state on the client; nothing is persisted server-side.
type Alert struct {
	Trigger AlertTrigger `json:"trigger"`
	Message string       `json:"message"`
}

// DashboardOverview is the consolidated dashboard payload.
// Note: no transport (json/http) error concerns here beyond field tags.
type DashboardOverview struct {
	UserID    string            `json:"user_id"`
	Timestamp time.Time         `json:"timestamp"`
	Summary   *WeeklySummary    `json:"summary,omitempty"`
	TimeOfDay []TimeOfDayRow    `json:"time_of_day,omitempty"`
	Forecast  *ForecastView     `json:"forecast,omitempty"`
	Alert     *Alert            `json:"alert,omitempty"`
	Errors    map[string]string `json:"errors,omitempty"`
}

// ForecastView is the transport shape of a forecast: unavailable states are
// normal low-data conditions, not errors.
type ForecastView struct {
	Available      bool   `json:"available"`
	PredictedValue int    `json:"predicted_value,omitempty"`
	Reason         string `json:"reason,omitempty"`
}
