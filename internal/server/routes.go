package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Handler returns the routed API.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(s.corsMiddleware)

	r.Get("/healthz", s.handleHealthz)

	r.Route("/api", func(api chi.Router) {
		if s.opts.DevTokens {
			api.Get("/auth/token", s.handleIssueToken)
		}

		api.Group(func(r chi.Router) {
			r.Use(s.requireToken)

			r.Get("/plans", s.handleListPlans)
			r.Post("/generate_plan", s.handleGeneratePlan)

			r.Route("/plan/{plan_id}", func(r chi.Router) {
				r.Get("/", s.handleGetPlan)
				r.Get("/forecast", s.handleForecast)
				r.Post("/simulate_agent", s.handleSimulateAgent)
				r.Post("/next_move", s.handleNextMove)
				r.Patch("/step/{step_id}", s.handleToggleStep)
				r.Post("/step/{step_id}/replan", s.handleReplan)
			})

			r.Post("/discover_idea", s.handleDiscoverIdea)
			r.Post("/research", s.handleResearch)
			r.Post("/decompose_step", s.handleDecomposeStep)
			r.Post("/ask_step", s.handleAskStep)
		})
	})

	return r
}
