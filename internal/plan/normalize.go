package plan

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/google/uuid"
)

// payloadShape names the plan payload layouts models are known to produce.
type payloadShape int

const (
	// shapeUnknown: the payload is not an object at all.
	shapeUnknown payloadShape = iota
	// shapeTopLevel: metadata and a steps array at the top level.
	shapeTopLevel
	// shapeNestedSteps: "steps" is an object carrying the metadata and its own steps array.
	shapeNestedSteps
	// shapeMissingSteps: top-level object whose "steps" is absent, null or a scalar.
	shapeMissingSteps
)

func (s payloadShape) String() string {
	switch s {
	case shapeTopLevel:
		return "top_level"
	case shapeNestedSteps:
		return "nested_steps"
	case shapeMissingSteps:
		return "missing_steps"
	default:
		return "unknown"
	}
}

// classifyPayload picks the metadata source and raw step list for a payload.
func classifyPayload(raw any) (payloadShape, map[string]any, []any) {
	top, ok := raw.(map[string]any)
	if !ok {
		return shapeUnknown, map[string]any{}, nil
	}

	switch steps := top["steps"].(type) {
	case []any:
		return shapeTopLevel, top, steps
	case map[string]any:
		inner, _ := steps["steps"].([]any)
		return shapeNestedSteps, steps, inner
	default:
		return shapeMissingSteps, top, nil
	}
}

// Normalize coerces an untrusted model payload into a well-formed Plan.
// OwnerID and Mode always come from the caller, never from the payload.
// Timestamps are left for the caller to stamp.
func Normalize(raw any, fallbackTitle string, mode Mode, ownerID string) *Plan {
	shape, meta, rawSteps := classifyPayload(raw)
	if shape != shapeTopLevel {
		slog.Debug("normalizing irregular plan payload", "shape", shape.String())
	}

	p := &Plan{
		ID:                planIDFrom(raw),
		OwnerID:           ownerID,
		Mode:              mode,
		Title:             stringField(meta, "title"),
		EstimatedDuration: optionalString(meta, "estimated_duration"),
		BudgetLevel:       optionalString(meta, "budget_level"),
		Tags:              stringSlice(meta["tags"]),
	}
	if p.Title == "" {
		p.Title = fallbackTitle
	}
	p.Steps = NormalizeSteps(rawSteps, mode, nil)
	return p
}

// NormalizeSteps normalizes each raw step and guarantees id uniqueness
// against taken (which is not modified). Non-object entries are dropped.
func NormalizeSteps(raw []any, mode Mode, taken map[string]struct{}) []Step {
	seen := make(map[string]struct{}, len(taken)+len(raw))
	for id := range taken {
		seen[id] = struct{}{}
	}

	steps := make([]Step, 0, len(raw))
	for i, item := range raw {
		obj, ok := item.(map[string]any)
		if !ok {
			slog.Warn("dropping non-object step from model output", "index", i, "type", fmt.Sprintf("%T", item))
			continue
		}
		step := normalizeStep(obj, mode)
		if _, dup := seen[step.ID]; step.ID == "" || dup {
			old := step.ID
			step.ID = newStepID(seen)
			if old != "" {
				slog.Warn("renamed colliding step id", "old_id", old, "new_id", step.ID)
			}
		}
		seen[step.ID] = struct{}{}
		steps = append(steps, step)
	}
	return steps
}

func normalizeStep(obj map[string]any, mode Mode) Step {
	// Fields that cannot be coerced are removed so their defaults apply
	// instead of failing the whole step.
	obj = sanitizeStepFields(obj)

	var step Step
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &step,
		TagName:          "json",
		WeaklyTypedInput: true,
	})
	if err == nil {
		err = dec.Decode(obj)
	}
	if err != nil {
		slog.Warn("partially undecodable step, keeping id and title", "error", err)
		step = Step{ID: scalarString(obj["id"]), Title: scalarString(obj["title"])}
	}

	step.ID = strings.TrimSpace(step.ID)
	if _, ok := obj["time_estimate"]; !ok {
		step.TimeEstimate = DefaultTimeEstimate()
	}
	step.Effort = Effort(strings.ToLower(string(step.Effort)))
	if !step.Effort.valid() {
		step.Effort = EffortMedium
	}
	if step.Subtasks == nil {
		step.Subtasks = []string{}
	}
	if !mode.IsStrategist() {
		step.PowerTools = nil
		step.PotentialPitfall = ""
	}
	return step
}

var (
	stepStringFields = []string{"id", "title", "category", "effort", "potential_pitfall"}
	stepBoolFields   = []string{"is_milestone", "is_complete"}
	toolStringFields = []string{"name", "description", "link", "cost"}
)

// sanitizeStepFields returns a copy of obj holding only values the step
// decoder can take. The model's values are otherwise passed through as is.
func sanitizeStepFields(obj map[string]any) map[string]any {
	out := copyMap(obj)

	keepStrings(out, stepStringFields)
	for _, key := range stepBoolFields {
		v, ok := out[key]
		if !ok {
			continue
		}
		if b, ok := coerceBool(v); ok {
			out[key] = b
		} else {
			delete(out, key)
		}
	}

	if v, ok := out["time_estimate"]; ok {
		if te, isMap := v.(map[string]any); isMap {
			out["time_estimate"] = sanitizeTimeEstimate(te)
		} else {
			delete(out, "time_estimate")
		}
	}

	if v, ok := out["power_tools"]; ok {
		list, isList := v.([]any)
		if !isList {
			delete(out, "power_tools")
		} else {
			tools := make([]any, 0, len(list))
			for _, t := range list {
				if tool, isMap := t.(map[string]any); isMap {
					tool = copyMap(tool)
					keepStrings(tool, toolStringFields)
					tools = append(tools, tool)
				}
			}
			out["power_tools"] = tools
		}
	}

	if v, ok := out["subtasks"]; ok {
		list, isList := v.([]any)
		if !isList {
			delete(out, "subtasks")
		} else {
			subtasks := make([]any, 0, len(list))
			for _, s := range list {
				if str, isStr := s.(string); isStr {
					subtasks = append(subtasks, str)
				}
			}
			out["subtasks"] = subtasks
		}
	}
	return out
}

func sanitizeTimeEstimate(te map[string]any) map[string]any {
	out := copyMap(te)
	for _, key := range []string{"min", "max"} {
		v, ok := out[key]
		if !ok {
			continue
		}
		if f, ok := coerceFloat(v); ok {
			out[key] = f
		} else {
			delete(out, key)
		}
	}
	keepStrings(out, []string{"unit"})
	return out
}

// keepStrings deletes keys whose values cannot become a string.
func keepStrings(m map[string]any, keys []string) {
	for _, key := range keys {
		switch m[key].(type) {
		case string, float64, int, int64, bool, nil:
		default:
			delete(m, key)
		}
	}
}

func coerceBool(v any) (bool, bool) {
	switch b := v.(type) {
	case bool:
		return b, true
	case float64:
		return b != 0, true
	case string:
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "true", "t", "1", "yes", "y", "done", "complete", "completed":
			return true, true
		case "false", "f", "0", "no", "n", "", "pending", "incomplete":
			return false, true
		}
	}
	return false, false
}

func coerceFloat(v any) (float64, bool) {
	switch f := v.(type) {
	case float64:
		return f, true
	case int:
		return float64(f), true
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		return n, err == nil
	}
	return 0, false
}

func copyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func scalarString(v any) string {
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	}
	return ""
}

func planIDFrom(raw any) string {
	if top, ok := raw.(map[string]any); ok {
		if id := stringField(top, "id"); id != "" {
			return id
		}
	}
	return NewPlanID()
}

// NewPlanID returns a fresh plan identifier.
func NewPlanID() string {
	return uuid.NewString()
}

func newStepID(taken map[string]struct{}) string {
	for {
		id := "step_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
		if _, ok := taken[id]; !ok {
			return id
		}
	}
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return strings.TrimSpace(s)
}

func optionalString(m map[string]any, key string) *string {
	s := stringField(m, key)
	if s == "" {
		return nil
	}
	return &s
}

func stringSlice(v any) []string {
	list, _ := v.([]any)
	out := make([]string, 0, len(list))
	for _, item := range list {
		if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
			out = append(out, strings.TrimSpace(s))
		}
	}
	return out
}
