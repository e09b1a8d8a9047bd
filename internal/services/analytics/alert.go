package analytics

import (
	"fmt"
	"math"

	"GlucoPulse/internal/domain/models"
)

// EvaluateAlert checks the most recent readings against the clinical
// thresholds. Readings must be in ascending time order (the Normalize
// output). Conditions are evaluated in priority order and the first match
// wins; alerts never stack:
//
//	1. latest > high   (strict)
//	2. latest < low    (strict)
//	3. projected > high
//	4. projected < low
//
// where projected = latest + (latest - previous) * 0.5, a simple linear
// extrapolation distinct from the polynomial forecast.
func (a *Analyzer) EvaluateAlert(readings []models.Reading) *models.Alert {
	n := len(readings)
	if n == 0 {
		return nil
	}
	latest := readings[n-1]

	if latest.Value > a.cfg.HighAlert {
		return &models.Alert{
			Trigger: models.TriggerHighCurrent,
			Message: fmt.Sprintf("High glucose: latest reading is %d mg/dL (above %d)",
				round(latest.Value), round(a.cfg.HighAlert)),
		}
	}
	if latest.Value < a.cfg.LowAlert {
		return &models.Alert{
			Trigger: models.TriggerLowCurrent,
			Message: fmt.Sprintf("Low glucose: latest reading is %d mg/dL (below %d)",
				round(latest.Value), round(a.cfg.LowAlert)),
		}
	}

	if n < 2 {
		return nil
	}
	previous := readings[n-2]
	projected := latest.Value + (latest.Value-previous.Value)*0.5

	if projected > a.cfg.HighAlert {
		return &models.Alert{
			Trigger: models.TriggerHighPredicted,
			Message: fmt.Sprintf("Glucose trending high: projected %d mg/dL (above %d)",
				round(projected), round(a.cfg.HighAlert)),
		}
	}
	if projected < a.cfg.LowAlert {
		return &models.Alert{
			Trigger: models.TriggerLowPredicted,
			Message: fmt.Sprintf("Glucose trending low: projected %d mg/dL (below %d)",
				round(projected), round(a.cfg.LowAlert)),
		}
	}
	return nil
}

func round(v float64) int { return int(math.Round(v)) }
