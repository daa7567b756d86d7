/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/

// Package server exposes the planning backend over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/schematiq/schematiq/internal/assist"
	"github.com/schematiq/schematiq/internal/auth"
	"github.com/schematiq/schematiq/internal/plan"
)

// PlanService is the lifecycle engine as seen by the handlers.
type PlanService interface {
	CreatePlan(ctx context.Context, ownerID, goal string, mode plan.Mode, extras *plan.Extras) (*plan.Plan, error)
	ListPlans(ctx context.Context, ownerID string) ([]*plan.Plan, error)
	GetPlan(ctx context.Context, ownerID, planID string) (*plan.Plan, error)
	ToggleStep(ctx context.Context, ownerID, planID, stepID string) (*plan.Plan, error)
	ReplanFromStep(ctx context.Context, ownerID, planID, stepID string, outcome plan.Outcome, reason string) (*plan.Plan, error)
	Forecast(ctx context.Context, ownerID, planID string) ([]plan.ForecastEntry, error)
}

// AssistService runs the single-shot model helpers.
type AssistService interface {
	Research(ctx context.Context, query string) (string, error)
	DecomposeStep(ctx context.Context, parentTitle string) ([]assist.MicroStep, error)
	SimulateAgent(ctx context.Context, p *plan.Plan, persona, argument string) (string, error)
	DiscoverIdea(ctx context.Context, niche string) (string, error)
	AskOnStep(ctx context.Context, stepDescription, question string) (string, error)
	NextBestMove(ctx context.Context, p *plan.Plan) (string, error)
}

// TokenService issues and verifies bearer tokens.
type TokenService interface {
	Issue(c auth.Claims) (string, error)
	Verify(raw string) (auth.Claims, error)
}

// Options configure the HTTP surface.
type Options struct {
	Port           int
	AllowedOrigins []string
	// DevTokens enables the unauthenticated token endpoint.
	DevTokens bool
	// DevUser receives tokens minted by the token endpoint.
	DevUser string
}

type Server struct {
	plans   PlanService
	assist  AssistService
	tokens  TokenService
	origins map[string]struct{}
	opts    Options
	server  *http.Server
}

// New builds a Server. Call Start to begin serving.
func New(opts Options, plans PlanService, helpers AssistService, tokens TokenService) *Server {
	s := &Server{
		plans:   plans,
		assist:  helpers,
		tokens:  tokens,
		origins: make(map[string]struct{}, len(opts.AllowedOrigins)),
		opts:    opts,
	}
	for _, o := range opts.AllowedOrigins {
		s.origins[o] = struct{}{}
	}

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", opts.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Start serves in a goroutine tracked by wg; fatal errors go to errChan.
func (s *Server) Start(wg *sync.WaitGroup, errChan chan<- error) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("API server error: %w", err)
		}
	}()
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Addr is the listen address.
func (s *Server) Addr() string {
	return s.server.Addr
}
