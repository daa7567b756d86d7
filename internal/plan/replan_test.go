package plan

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func threeStepPlan() *Plan {
	return &Plan{
		ID:   "p1",
		Mode: ModeEveryday,
		Steps: []Step{
			{ID: "A", Title: "Alpha", IsComplete: true},
			{ID: "B", Title: "Beta"},
			{ID: "C", Title: "Gamma"},
		},
	}
}

func TestExtractReplanSteps(t *testing.T) {
	steps := []any{map[string]any{"id": "D"}}

	got, err := ExtractReplanSteps(steps)
	require.NoError(t, err)
	assert.Equal(t, steps, got)

	got, err = ExtractReplanSteps(map[string]any{"steps": steps})
	require.NoError(t, err)
	assert.Equal(t, steps, got)

	for name, raw := range map[string]any{
		"string":           "here are your steps",
		"object no steps":  map[string]any{"title": "x"},
		"steps not a list": map[string]any{"steps": map[string]any{"steps": steps}},
		"nil":              nil,
		"number":           3.0,
		"scalars only":     []any{2.0},
		"strings only":     []any{"Delta", "Echo"},
		"steps of scalars": map[string]any{"steps": []any{nil, true}},
	} {
		_, err := ExtractReplanSteps(raw)
		assert.ErrorIs(t, err, ErrInvalidReplanFormat, name)
	}
}

func TestExtractReplanSteps_EmptyAndMixed(t *testing.T) {
	got, err := ExtractReplanSteps([]any{})
	require.NoError(t, err)
	assert.Empty(t, got)

	mixed := []any{"noise", map[string]any{"id": "D"}}
	got, err = ExtractReplanSteps(mixed)
	require.NoError(t, err)
	assert.Equal(t, mixed, got)
}

func TestApplyReplan_PreservesCompletedHistory(t *testing.T) {
	p := threeStepPlan()

	err := ApplyReplan(p, "B", []any{
		map[string]any{"id": "D", "title": "Delta"},
		map[string]any{"id": "E", "title": "Epsilon"},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B", "D", "E"}, stepIDs(p.Steps))
	assert.True(t, p.Steps[0].IsComplete)
	assert.True(t, p.Steps[1].IsComplete, "the replanned step is forced complete")
	assert.False(t, p.Steps[2].IsComplete)
	assert.False(t, p.Steps[3].IsComplete)
}

func TestApplyReplan_KeepsOriginalOrderOfRetainedSteps(t *testing.T) {
	p := &Plan{Steps: []Step{
		{ID: "1"},
		{ID: "2", IsComplete: true},
		{ID: "3"},
		{ID: "4", IsComplete: true},
	}}

	require.NoError(t, ApplyReplan(p, "3", nil))

	assert.Equal(t, []string{"2", "3", "4"}, stepIDs(p.Steps))
}

func TestApplyReplan_RenamesCollidingIDs(t *testing.T) {
	p := threeStepPlan()

	err := ApplyReplan(p, "B", []any{
		map[string]any{"id": "A", "title": "Reuses completed id"},
		map[string]any{"id": "C", "title": "Reuses dropped id"},
		map[string]any{"id": "C", "title": "Duplicate within response"},
	})
	require.NoError(t, err)

	require.Len(t, p.Steps, 5)
	assert.Equal(t, "A", p.Steps[0].ID)
	assert.Equal(t, "Alpha", p.Steps[0].Title, "retained step keeps its id and content")
	assert.NotEqual(t, "A", p.Steps[2].ID)
	assert.Equal(t, "C", p.Steps[3].ID, "an id freed by the replan may be reused")
	assert.NotEqual(t, "C", p.Steps[4].ID)

	seen := map[string]bool{}
	for _, s := range p.Steps {
		assert.False(t, seen[s.ID], "duplicate id %s", s.ID)
		seen[s.ID] = true
	}
}

func TestApplyReplan_UnknownStep(t *testing.T) {
	p := threeStepPlan()

	err := ApplyReplan(p, "Z", []any{map[string]any{"id": "D"}})

	assert.ErrorIs(t, err, ErrStepNotFound)
	assert.Equal(t, []string{"A", "B", "C"}, stepIDs(p.Steps))
}

func TestForecast(t *testing.T) {
	start := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	p := &Plan{Steps: []Step{
		{Title: "hours", TimeEstimate: TimeEstimate{Min: 2, Max: 4, Unit: UnitHours}, Effort: EffortLow},
		{Title: "days", TimeEstimate: TimeEstimate{Min: 1, Max: 3, Unit: UnitDays}, IsMilestone: true},
		{Title: "weeks", TimeEstimate: TimeEstimate{Min: 1, Max: 1, Unit: UnitWeeks}},
		{Title: "unset"},
	}}

	entries := Forecast(p, start)

	require.Len(t, entries, 4)

	assert.Equal(t, start, entries[0].StartDate)
	assert.Equal(t, start.Add(3*time.Hour), entries[0].EndDate)
	assert.Equal(t, EffortLow, entries[0].Effort)

	assert.Equal(t, entries[0].EndDate.Add(24*time.Hour), entries[1].StartDate)
	assert.Equal(t, entries[1].StartDate.Add(48*time.Hour), entries[1].EndDate)
	assert.True(t, entries[1].IsMilestone)
	assert.Equal(t, EffortMedium, entries[1].Effort)

	assert.Equal(t, entries[2].StartDate.Add(7*24*time.Hour), entries[2].EndDate)
	assert.Equal(t, entries[3].StartDate.Add(24*time.Hour), entries[3].EndDate)
}

func TestForecast_IrregularEstimates(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	p := &Plan{Steps: []Step{
		{Title: "zero", TimeEstimate: TimeEstimate{Unit: UnitHours}},
		{Title: "only max", TimeEstimate: TimeEstimate{Max: 4, Unit: UnitHours}},
		{Title: "inverted", TimeEstimate: TimeEstimate{Min: 3, Max: 1, Unit: UnitHours}},
		{Title: "odd unit", TimeEstimate: TimeEstimate{Min: 2, Max: 2, Unit: "Months"}},
		{Title: "upper unit", TimeEstimate: TimeEstimate{Min: 1, Max: 1, Unit: "WEEKS"}},
	}}

	entries := Forecast(p, start)

	require.Len(t, entries, 5)
	durations := make([]time.Duration, len(entries))
	for i, e := range entries {
		durations[i] = e.EndDate.Sub(e.StartDate)
	}
	assert.Equal(t, []time.Duration{
		time.Hour,
		4 * time.Hour,
		2 * time.Hour,
		48 * time.Hour,
		7 * 24 * time.Hour,
	}, durations)
	assert.Equal(t, TimeEstimate{Min: 3, Max: 1, Unit: UnitHours}, p.Steps[2].TimeEstimate, "forecast does not rewrite estimates")
}

func TestForecast_EmptyPlan(t *testing.T) {
	assert.Empty(t, Forecast(&Plan{}, time.Now()))
}
