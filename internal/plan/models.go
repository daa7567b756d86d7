/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package plan

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"
)

// Mode selects the plan-generation tier the caller requested.
type Mode string

const (
	ModeEveryday   Mode = "free" // Everyday tier
	ModeStrategist Mode = "paid" // Strategist tier: power tools and pitfalls
)

// ParseMode maps request input onto a canonical Mode.
// "everyday" and "strategist" are accepted as aliases.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "free", "everyday":
		return ModeEveryday, nil
	case "paid", "strategist":
		return ModeStrategist, nil
	default:
		return "", fmt.Errorf("%w: unknown mode %q (expected free or paid)", ErrInvalidRequest, s)
	}
}

// IsStrategist reports whether the mode carries strategist-only step fields.
func (m Mode) IsStrategist() bool { return m == ModeStrategist }

// Effort is a coarse step effort rating.
type Effort string

const (
	EffortLow    Effort = "low"
	EffortMedium Effort = "medium"
	EffortHigh   Effort = "high"
)

func (e Effort) valid() bool {
	switch e {
	case EffortLow, EffortMedium, EffortHigh:
		return true
	}
	return false
}

// TimeUnit is the unit of a step time estimate.
type TimeUnit string

const (
	UnitHours TimeUnit = "hours"
	UnitDays  TimeUnit = "days"
	UnitWeeks TimeUnit = "weeks"
)

func (u TimeUnit) valid() bool {
	switch u {
	case UnitHours, UnitDays, UnitWeeks:
		return true
	}
	return false
}

// TimeEstimate is a min/max duration range for a step.
type TimeEstimate struct {
	Min  float64  `json:"min"`
	Max  float64  `json:"max"`
	Unit TimeUnit `json:"unit"`
}

// DefaultTimeEstimate is applied to steps the model left unestimated.
func DefaultTimeEstimate() TimeEstimate {
	return TimeEstimate{Min: 1, Max: 1, Unit: UnitDays}
}

// PowerTool is a strategist-tier tool recommendation attached to a step.
type PowerTool struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Link        string `json:"link"`
	Cost        string `json:"cost"`
}

// Step is one ordered unit of work within a Plan.
type Step struct {
	ID               string       `json:"id"`
	Title            string       `json:"title"`
	Subtasks         []string     `json:"subtasks"`
	Category         string       `json:"category,omitempty"`
	TimeEstimate     TimeEstimate `json:"time_estimate"`
	Effort           Effort       `json:"effort"`
	IsMilestone      bool         `json:"is_milestone"`
	IsComplete       bool         `json:"is_complete"`
	PowerTools       []PowerTool  `json:"power_tools,omitempty"`
	PotentialPitfall string       `json:"potential_pitfall,omitempty"`
}

// Plan is a user-owned goal decomposition.
type Plan struct {
	ID                string    `json:"id"`
	OwnerID           string    `json:"user_id"`
	Title             string    `json:"title"`
	Mode              Mode      `json:"mode"`
	EstimatedDuration *string   `json:"estimated_duration"`
	BudgetLevel       *string   `json:"budget_level"`
	Tags              []string  `json:"tags"`
	Steps             []Step    `json:"steps"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Clone returns a deep copy so callers can mutate without touching stored state.
func (p *Plan) Clone() *Plan {
	if p == nil {
		return nil
	}
	c := *p
	if p.EstimatedDuration != nil {
		v := *p.EstimatedDuration
		c.EstimatedDuration = &v
	}
	if p.BudgetLevel != nil {
		v := *p.BudgetLevel
		c.BudgetLevel = &v
	}
	c.Tags = slices.Clone(p.Tags)
	if p.Steps != nil {
		c.Steps = make([]Step, len(p.Steps))
		for i, s := range p.Steps {
			c.Steps[i] = s.clone()
		}
	}
	return &c
}

func (s Step) clone() Step {
	s.Subtasks = slices.Clone(s.Subtasks)
	s.PowerTools = slices.Clone(s.PowerTools)
	return s
}

// FindStep returns the index of the first step with the given id, or -1.
func (p *Plan) FindStep(stepID string) int {
	for i := range p.Steps {
		if p.Steps[i].ID == stepID {
			return i
		}
	}
	return -1
}

// MarshalIndent renders the plan the way it is embedded into model prompts.
func (p *Plan) MarshalIndent() (string, error) {
	b, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal plan: %w", err)
	}
	return string(b), nil
}

// Outcome is the reported result of a step that triggers replanning.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

// ParseOutcome validates a replan outcome.
func ParseOutcome(s string) (Outcome, error) {
	switch Outcome(strings.ToLower(strings.TrimSpace(s))) {
	case OutcomeSuccess:
		return OutcomeSuccess, nil
	case OutcomeFailure:
		return OutcomeFailure, nil
	default:
		return "", fmt.Errorf("%w: outcome must be success or failure, got %q", ErrInvalidRequest, s)
	}
}

// Constraints are user-defined limits forwarded into plan generation.
type Constraints struct {
	TimePerDay    float64  `json:"time_per_day,omitempty"`
	BudgetMonthly float64  `json:"budget_monthly,omitempty"`
	Negative      []string `json:"negative,omitempty"`
}

// Extras are optional generation hints. They are opaque to the lifecycle
// engine and only shape prompt construction.
type Extras struct {
	Constraints     *Constraints `json:"constraints,omitempty"`
	Experience      string       `json:"experience,omitempty"`
	ExpectedOutcome string       `json:"expected_outcome,omitempty"`
}
