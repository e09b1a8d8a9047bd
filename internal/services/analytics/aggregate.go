package analytics

import (
	"fmt"
	"math"
	"sort"
	"time"

	"GlucoPulse/internal/domain/models"
	"GlucoPulse/internal/domain/repository"
)

// AggregateWeekly compares the 7-day window ending at now against the 7 days
// before it. Window w covers [now-7d*(w+1), now-7d*w). High/low counts and
// the max reading are taken from the current window only.
func (a *Analyzer) AggregateWeekly(readings []models.Reading, now time.Time) models.WeeklySummary {
	current := windowOf(readings, now, 0)
	previous := windowOf(readings, now, 1)

	curMean := roundedMean(current)
	prevMean := roundedMean(previous)

	// Percent change is 0 when the previous window is empty; an empty card
	// beats a division by zero.
	pct := 0
	if prevMean != 0 {
		pct = int(math.Round(float64(curMean-prevMean) / float64(prevMean) * 100))
	}

	s := models.WeeklySummary{
		CurrentMean:   curMean,
		PreviousMean:  prevMean,
		PercentChange: pct,
	}
	for i := range current {
		if current[i].Value > a.cfg.HighBand {
			s.HighCount++
		}
		if current[i].Value < a.cfg.LowBand {
			s.LowCount++
		}
		if s.MaxReading == nil || current[i].Value > s.MaxReading.Value {
			r := current[i]
			s.MaxReading = &r
		}
	}
	return s
}

// AggregateByTimeOfDay groups readings by a chronological label and splits
// each group into morning [05,12), evening [12,20) and night buckets, then
// averages per cell. Labels are zero-padded (2006-01, 2006-01 W2) so that
// lexicographic order equals chronological order.
func (a *Analyzer) AggregateByTimeOfDay(readings []models.Reading, g repository.Granularity) []models.TimeOfDayRow {
	type cells struct {
		morning []float64
		evening []float64
		night   []float64
	}
	groups := make(map[string]*cells)

	for i := range readings {
		ts := readings[i].Timestamp
		label := ts.Format("2006-01")
		if g == repository.GranWeek {
			week := (ts.Day()-1)/7 + 1
			label = fmt.Sprintf("%s W%d", label, week)
		}
		c, ok := groups[label]
		if !ok {
			c = &cells{}
			groups[label] = c
		}
		switch hour := ts.Hour(); {
		case hour >= 5 && hour < 12:
			c.morning = append(c.morning, readings[i].Value)
		case hour >= 12 && hour < 20:
			c.evening = append(c.evening, readings[i].Value)
		default:
			c.night = append(c.night, readings[i].Value)
		}
	}

	rows := make([]models.TimeOfDayRow, 0, len(groups))
	for label, c := range groups {
		rows = append(rows, models.TimeOfDayRow{
			Label:       label,
			MorningMean: roundedMeanOf(c.morning),
			EveningMean: roundedMeanOf(c.evening),
			NightMean:   roundedMeanOf(c.night),
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Label < rows[j].Label })
	return rows
}

func windowOf(readings []models.Reading, now time.Time, weeksAgo int) []models.Reading {
	start := now.AddDate(0, 0, -7*(weeksAgo+1))
	end := now.AddDate(0, 0, -7*weeksAgo)
	out := make([]models.Reading, 0, len(readings))
	for i := range readings {
		ts := readings[i].Timestamp
		if !ts.Before(start) && ts.Before(end) {
			out = append(out, readings[i])
		}
	}
	return out
}

// roundedMean reports 0 for an empty set; the sentinel for "no data".
func roundedMean(readings []models.Reading) int {
	if len(readings) == 0 {
		return 0
	}
	sum := 0.0
	for i := range readings {
		sum += readings[i].Value
	}
	return int(math.Round(sum / float64(len(readings))))
}

func roundedMeanOf(values []float64) int {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return int(math.Round(sum / float64(len(values))))
}
