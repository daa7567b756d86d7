// Package assist serves the single-shot model helpers around a plan:
// research, step decomposition, persona simulation, idea discovery,
// step Q&A and next-move coaching.
package assist

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-viper/mapstructure/v2"

	"github.com/schematiq/schematiq/internal/plan"
	"github.com/schematiq/schematiq/internal/prompts"
)

// ErrInvalidFormat reports model output with an unusable shape.
var ErrInvalidFormat = errors.New("invalid model output format")

// Gateway is the model boundary the helpers call through.
type Gateway interface {
	GenerateStructured(ctx context.Context, prompt string) (any, error)
	GenerateText(ctx context.Context, prompt string, useLookup bool) (string, error)
}

// MicroStep is one element of a step decomposition.
type MicroStep struct {
	Title       string `json:"title" mapstructure:"title"`
	Explanation string `json:"explanation" mapstructure:"explanation"`
	Example     string `json:"example" mapstructure:"example"`
}

// Service runs the helpers. It holds no state beyond the gateway.
type Service struct {
	gateway Gateway
}

// NewService creates a Service.
func NewService(gw Gateway) *Service {
	return &Service{gateway: gw}
}

// Research answers query with an external lookup.
func (s *Service) Research(ctx context.Context, query string) (string, error) {
	if err := requireText("query", query); err != nil {
		return "", err
	}
	prompt, err := prompts.Researcher(query)
	if err != nil {
		return "", err
	}
	return s.text(ctx, "research", prompt, true)
}

// DecomposeStep breaks a step title into micro-steps.
func (s *Service) DecomposeStep(ctx context.Context, parentTitle string) ([]MicroStep, error) {
	if err := requireText("parent_step_title", parentTitle); err != nil {
		return nil, err
	}
	prompt, err := prompts.DecomposeStep(parentTitle)
	if err != nil {
		return nil, err
	}
	raw, err := s.gateway.GenerateStructured(ctx, prompt)
	if err != nil {
		return nil, plan.NewGenerationError("decompose_step", err)
	}

	items, ok := raw.([]any)
	if !ok {
		if obj, isObj := raw.(map[string]any); isObj {
			items, ok = obj["steps"].([]any)
		}
	}
	if !ok {
		return nil, fmt.Errorf("%w: decomposition is %T, want a list", ErrInvalidFormat, raw)
	}

	steps := make([]MicroStep, 0, len(items))
	for i, item := range items {
		obj, isObj := item.(map[string]any)
		if !isObj {
			slog.Warn("dropping non-object micro-step", "index", i)
			continue
		}
		var ms MicroStep
		if err := decodeWeak(obj, &ms); err != nil {
			slog.Warn("dropping undecodable micro-step", "index", i, "error", err)
			continue
		}
		steps = append(steps, ms)
	}
	return steps, nil
}

// SimulateAgent lets a persona critique the plan in reply to argument.
func (s *Service) SimulateAgent(ctx context.Context, p *plan.Plan, persona, argument string) (string, error) {
	if err := requireText("argument", argument); err != nil {
		return "", err
	}
	planJSON, err := p.MarshalIndent()
	if err != nil {
		return "", err
	}
	prompt, err := prompts.AgentSimulation(planJSON, strings.ToLower(strings.TrimSpace(persona)), argument)
	if err != nil {
		return "", err
	}
	return s.text(ctx, "simulate_agent", prompt, false)
}

// DiscoverIdea returns a one-sentence project idea for niche.
func (s *Service) DiscoverIdea(ctx context.Context, niche string) (string, error) {
	if err := requireText("niche", niche); err != nil {
		return "", err
	}
	prompt, err := prompts.DiscoverIdea(niche)
	if err != nil {
		return "", err
	}
	return s.text(ctx, "discover_idea", prompt, false)
}

// AskOnStep answers a question about one step.
func (s *Service) AskOnStep(ctx context.Context, stepDescription, question string) (string, error) {
	if err := requireText("step_description", stepDescription); err != nil {
		return "", err
	}
	if err := requireText("question", question); err != nil {
		return "", err
	}
	prompt, err := prompts.AskOnStep(stepDescription, question)
	if err != nil {
		return "", err
	}
	return s.text(ctx, "ask_step", prompt, false)
}

// NextBestMove suggests the next action on the plan.
func (s *Service) NextBestMove(ctx context.Context, p *plan.Plan) (string, error) {
	planJSON, err := p.MarshalIndent()
	if err != nil {
		return "", err
	}
	prompt, err := prompts.NextBestMove(planJSON)
	if err != nil {
		return "", err
	}
	raw, err := s.gateway.GenerateStructured(ctx, prompt)
	if err != nil {
		return "", plan.NewGenerationError("next_move", err)
	}

	obj, _ := raw.(map[string]any)
	suggestion, _ := obj["suggestion"].(string)
	suggestion = strings.TrimSpace(suggestion)
	if suggestion == "" {
		return "", fmt.Errorf("%w: missing suggestion", ErrInvalidFormat)
	}
	return suggestion, nil
}

func (s *Service) text(ctx context.Context, op, prompt string, lookup bool) (string, error) {
	out, err := s.gateway.GenerateText(ctx, prompt, lookup)
	if err != nil {
		return "", plan.NewGenerationError(op, err)
	}
	return out, nil
}

func requireText(field, v string) error {
	if strings.TrimSpace(v) == "" {
		return fmt.Errorf("%w: %s is required", plan.ErrInvalidRequest, field)
	}
	return nil
}

func decodeWeak(in map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(in)
}
