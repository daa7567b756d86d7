/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/

// Package planning implements the plan lifecycle: creation from a goal,
// step toggling and adaptive replanning, over an injected Store and model
// gateway.
package planning

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/schematiq/schematiq/internal/plan"
	"github.com/schematiq/schematiq/internal/prompts"
	"github.com/schematiq/schematiq/internal/telemetry"
)

// Store persists plans. Implementations must keep and return copies and be
// safe for concurrent use.
type Store interface {
	Get(ctx context.Context, id string) (*plan.Plan, error)
	Put(ctx context.Context, p *plan.Plan) error
	ListByOwner(ctx context.Context, ownerID string) ([]*plan.Plan, error)
}

// Gateway produces structured model output.
type Gateway interface {
	GenerateStructured(ctx context.Context, prompt string) (any, error)
}

// Engine runs plan lifecycle operations. It is safe for concurrent use;
// operations on the same plan id are serialized.
type Engine struct {
	store    Store
	gateway  Gateway
	events   telemetry.Client
	validate *validator.Validate
	now      func() time.Time
	locks    *planLocks
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the time source used for plan timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithTelemetry reports lifecycle events to c.
func WithTelemetry(c telemetry.Client) Option {
	return func(e *Engine) { e.events = c }
}

// NewEngine creates an Engine over store and gateway.
func NewEngine(store Store, gateway Gateway, opts ...Option) *Engine {
	e := &Engine{
		store:    store,
		gateway:  gateway,
		events:   telemetry.NewNoopClient(),
		validate: validator.New(validator.WithRequiredStructEnabled()),
		now:      time.Now,
		locks:    newPlanLocks(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

type createInput struct {
	OwnerID string    `validate:"required"`
	Goal    string    `validate:"required,max=4000"`
	Mode    plan.Mode `validate:"oneof=free paid"`
}

// CreatePlan generates, normalizes and stores a new plan for ownerID.
// Extras only shape the prompt. Nothing is stored on a generation failure.
func (e *Engine) CreatePlan(ctx context.Context, ownerID, goal string, mode plan.Mode, extras *plan.Extras) (*plan.Plan, error) {
	goal = strings.TrimSpace(goal)
	if err := e.validate.Struct(createInput{OwnerID: ownerID, Goal: goal, Mode: mode}); err != nil {
		return nil, fmt.Errorf("%w: %v", plan.ErrInvalidRequest, err)
	}

	prompt, err := prompts.BasePlan(goal, mode, extras)
	if err != nil {
		return nil, err
	}
	raw, err := e.gateway.GenerateStructured(ctx, prompt)
	if err != nil {
		return nil, plan.NewGenerationError("create_plan", err)
	}

	p := plan.Normalize(raw, goal, mode, ownerID)

	release, err := e.locks.acquire(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	defer release()

	switch _, err := e.store.Get(ctx, p.ID); {
	case err == nil:
		fresh := plan.NewPlanID()
		slog.Warn("model-supplied plan id already exists, assigning a new one",
			"plan_id", p.ID, "new_id", fresh)
		p.ID = fresh
	case !errors.Is(err, plan.ErrPlanNotFound):
		return nil, fmt.Errorf("check plan id: %w", err)
	}

	now := e.now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	if err := e.store.Put(ctx, p); err != nil {
		return nil, fmt.Errorf("store plan: %w", err)
	}

	slog.Info("plan created", "plan_id", p.ID, "mode", p.Mode, "steps", len(p.Steps))
	e.events.Track(telemetry.EventPlanCreated, telemetry.Properties{
		"mode":  string(p.Mode),
		"steps": len(p.Steps),
	})
	return p, nil
}

// ListPlans returns ownerID's plans ordered by creation time.
func (e *Engine) ListPlans(ctx context.Context, ownerID string) ([]*plan.Plan, error) {
	plans, err := e.store.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	return plans, nil
}

// GetPlan returns one plan owned by ownerID.
func (e *Engine) GetPlan(ctx context.Context, ownerID, planID string) (*plan.Plan, error) {
	return e.load(ctx, ownerID, planID)
}

// ToggleStep flips is_complete on the first step matching stepID.
func (e *Engine) ToggleStep(ctx context.Context, ownerID, planID, stepID string) (*plan.Plan, error) {
	release, err := e.locks.acquire(ctx, planID)
	if err != nil {
		return nil, err
	}
	defer release()

	p, err := e.load(ctx, ownerID, planID)
	if err != nil {
		return nil, err
	}
	idx := p.FindStep(stepID)
	if idx < 0 {
		return nil, fmt.Errorf("toggle %s: %w", stepID, plan.ErrStepNotFound)
	}

	p.Steps[idx].IsComplete = !p.Steps[idx].IsComplete
	p.UpdatedAt = e.now().UTC()
	if err := e.store.Put(ctx, p); err != nil {
		return nil, fmt.Errorf("store plan: %w", err)
	}

	slog.Debug("step toggled", "plan_id", planID, "step_id", stepID, "complete", p.Steps[idx].IsComplete)
	e.events.Track(telemetry.EventStepToggled, telemetry.Properties{
		"complete": p.Steps[idx].IsComplete,
	})
	return p, nil
}

// ReplanFromStep marks stepID complete and asks the model for the
// remaining steps given outcome. Completed history is always retained.
// The plan lock is held across the model call so concurrent toggles
// cannot be lost.
func (e *Engine) ReplanFromStep(ctx context.Context, ownerID, planID, stepID string, outcome plan.Outcome, reason string) (*plan.Plan, error) {
	if outcome != plan.OutcomeSuccess && outcome != plan.OutcomeFailure {
		return nil, fmt.Errorf("%w: outcome must be success or failure", plan.ErrInvalidRequest)
	}

	release, err := e.locks.acquire(ctx, planID)
	if err != nil {
		return nil, err
	}
	defer release()

	p, err := e.load(ctx, ownerID, planID)
	if err != nil {
		return nil, err
	}
	idx := p.FindStep(stepID)
	if idx < 0 {
		return nil, fmt.Errorf("replan from %s: %w", stepID, plan.ErrStepNotFound)
	}

	planJSON, err := p.MarshalIndent()
	if err != nil {
		return nil, err
	}
	prompt, err := prompts.Replan(planJSON, p.Steps[idx].Title, outcome, reason)
	if err != nil {
		return nil, err
	}

	raw, err := e.gateway.GenerateStructured(ctx, prompt)
	if err != nil {
		return nil, plan.NewGenerationError("replan", err)
	}
	newSteps, err := plan.ExtractReplanSteps(raw)
	if err != nil {
		slog.Warn("rejecting replan output", "plan_id", planID, "error", err)
		return nil, err
	}
	if err := plan.ApplyReplan(p, stepID, newSteps); err != nil {
		return nil, err
	}

	p.UpdatedAt = e.now().UTC()
	if err := e.store.Put(ctx, p); err != nil {
		return nil, fmt.Errorf("store plan: %w", err)
	}

	slog.Info("plan replanned", "plan_id", planID, "from_step", stepID, "outcome", outcome, "steps", len(p.Steps))
	e.events.Track(telemetry.EventPlanReplanned, telemetry.Properties{
		"outcome":    string(outcome),
		"has_reason": reason != "",
		"steps":      len(p.Steps),
	})
	return p, nil
}

// Forecast projects a timeline for the plan starting today.
func (e *Engine) Forecast(ctx context.Context, ownerID, planID string) ([]plan.ForecastEntry, error) {
	p, err := e.load(ctx, ownerID, planID)
	if err != nil {
		return nil, err
	}
	return plan.Forecast(p, e.now()), nil
}

func (e *Engine) load(ctx context.Context, ownerID, planID string) (*plan.Plan, error) {
	p, err := e.store.Get(ctx, planID)
	if err != nil {
		return nil, err
	}
	if p.OwnerID != ownerID {
		slog.Warn("plan access denied", "plan_id", planID)
		return nil, fmt.Errorf("plan %s: %w", planID, plan.ErrUnauthorized)
	}
	return p, nil
}
