package plan

import (
	"fmt"
	"slices"
)

// ExtractReplanSteps validates a replan payload. It accepts a bare array
// of steps or an object whose "steps" field is an array; anything else is
// ErrInvalidReplanFormat. A non-empty array holding no step objects is
// rejected too. An empty array is a valid "nothing left to do".
func ExtractReplanSteps(raw any) ([]any, error) {
	var steps []any
	switch v := raw.(type) {
	case []any:
		steps = v
	case map[string]any:
		s, ok := v["steps"].([]any)
		if !ok {
			return nil, fmt.Errorf("%w: object without a steps array", ErrInvalidReplanFormat)
		}
		steps = s
	default:
		return nil, fmt.Errorf("%w: got %T", ErrInvalidReplanFormat, raw)
	}

	if len(steps) > 0 && !slices.ContainsFunc(steps, isObject) {
		return nil, fmt.Errorf("%w: %d entries and none is a step object", ErrInvalidReplanFormat, len(steps))
	}
	return steps, nil
}

func isObject(v any) bool {
	_, ok := v.(map[string]any)
	return ok
}

// ApplyReplan rebuilds the step sequence after a replan from stepID.
// The original order is kept for retained steps: stepID is forced complete,
// other complete steps are kept unchanged and incomplete ones are dropped.
// The normalized new steps follow in the order given; any id colliding
// with a retained step is renamed.
func ApplyReplan(p *Plan, stepID string, newSteps []any) error {
	if p.FindStep(stepID) < 0 {
		return fmt.Errorf("%w: %s", ErrStepNotFound, stepID)
	}

	retained := make([]Step, 0, len(p.Steps))
	taken := make(map[string]struct{}, len(p.Steps))
	for _, s := range p.Steps {
		switch {
		case s.ID == stepID:
			s.IsComplete = true
		case s.IsComplete:
		default:
			continue
		}
		retained = append(retained, s)
		taken[s.ID] = struct{}{}
	}

	p.Steps = append(retained, NormalizeSteps(newSteps, p.Mode, taken)...)
	return nil
}
