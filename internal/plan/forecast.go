package plan

import (
	"strings"
	"time"
)

// ForecastEntry is the projected schedule of one step.
type ForecastEntry struct {
	StepTitle   string    `json:"step_title"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	Effort      Effort    `json:"effort"`
	IsMilestone bool      `json:"is_milestone"`
}

// Forecast lays the steps out back to back from start. Each step lasts the
// midpoint of its estimate and the next one begins a day after it ends.
func Forecast(p *Plan, start time.Time) []ForecastEntry {
	entries := make([]ForecastEntry, 0, len(p.Steps))
	current := start
	for _, s := range p.Steps {
		end := current.Add(estimateDuration(s.TimeEstimate))
		effort := s.Effort
		if effort == "" {
			effort = EffortMedium
		}
		entries = append(entries, ForecastEntry{
			StepTitle:   s.Title,
			StartDate:   current,
			EndDate:     end,
			Effort:      effort,
			IsMilestone: s.IsMilestone,
		})
		current = end.Add(24 * time.Hour)
	}
	return entries
}

// estimateDuration reads estimates as the model supplied them: a missing
// bound takes the other one, no usable bound means one unit, and an unknown
// unit counts as days.
func estimateDuration(te TimeEstimate) time.Duration {
	lo, hi := max(te.Min, 0), max(te.Max, 0)
	switch {
	case lo == 0 && hi == 0:
		lo, hi = 1, 1
	case lo == 0:
		lo = hi
	case hi == 0:
		hi = lo
	}
	avg := (lo + hi) / 2

	unit := 24 * time.Hour
	switch TimeUnit(strings.ToLower(strings.TrimSpace(string(te.Unit)))) {
	case UnitHours:
		unit = time.Hour
	case UnitWeeks:
		unit = 7 * 24 * time.Hour
	}
	return time.Duration(avg * float64(unit))
}
