package analytics

import (
	"errors"
	"time"
)

// Clinical defaults in mg/dL. Band thresholds feed the weekly high/low
// counters; alert thresholds drive the warning banner.
const (
	defaultHighAlert = 250.0
	defaultLowAlert  = 70.0
	defaultHighBand  = 180.0
	defaultLowBand   = 70.0
)

var (
	// ErrInsufficientData marks a normal low-data state (fewer readings than
	// the model needs). Callers degrade it to "unavailable", never a failure.
	ErrInsufficientData = errors.New("analytics: insufficient data")

	// ErrDegenerateRange marks a zero-width or rank-deficient time range.
	ErrDegenerateRange = errors.New("analytics: degenerate time range")
)

// Config tunes the pipeline. Zero values fall back to clinical defaults so
// an empty Config is usable.
type Config struct {
	HighAlert     float64       // banner threshold, strict >
	LowAlert      float64       // banner threshold, strict <
	HighBand      float64       // weekly "high readings" counter, strict >
	LowBand       float64       // weekly "low readings" counter, strict <
	Horizon       time.Duration // forecast offset from now
	MinDataPoints int           // minimum readings for forecasting
	Degree        int           // polynomial degree cap
}

// DefaultConfig returns the reference pipeline configuration.
func DefaultConfig() Config {
	return Config{
		HighAlert:     defaultHighAlert,
		LowAlert:      defaultLowAlert,
		HighBand:      defaultHighBand,
		LowBand:       defaultLowBand,
		Horizon:       time.Hour,
		MinDataPoints: 3,
		Degree:        3,
	}
}

// Analyzer runs the dashboard analytics pipeline: normalization, aggregation,
// forecasting and alerting. It holds no mutable state; every method is a pure
// function of its inputs, with "now" always an explicit parameter.
type Analyzer struct {
	cfg Config
}

// New creates an Analyzer, filling missing Config fields with defaults.
func New(cfg Config) *Analyzer {
	def := DefaultConfig()
	if cfg.HighAlert <= 0 {
		cfg.HighAlert = def.HighAlert
	}
	if cfg.LowAlert <= 0 {
		cfg.LowAlert = def.LowAlert
	}
	if cfg.HighBand <= 0 {
		cfg.HighBand = def.HighBand
	}
	if cfg.LowBand <= 0 {
		cfg.LowBand = def.LowBand
	}
	if cfg.Horizon <= 0 {
		cfg.Horizon = def.Horizon
	}
	if cfg.MinDataPoints < 3 {
		cfg.MinDataPoints = def.MinDataPoints
	}
	if cfg.Degree <= 0 {
		cfg.Degree = def.Degree
	}
	return &Analyzer{cfg: cfg}
}
