package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/schematiq/schematiq/internal/assist"
	"github.com/schematiq/schematiq/internal/auth"
	"github.com/schematiq/schematiq/internal/plan"
)

const maxBodyBytes = 1 << 20

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeAPIJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleIssueToken mints a development token for the dev user.
func (s *Server) handleIssueToken(w http.ResponseWriter, r *http.Request) {
	tier := r.URL.Query().Get("tier")
	if tier == "" {
		tier = string(plan.ModeStrategist)
	}
	mode, err := plan.ParseMode(tier)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}

	tok, err := s.tokens.Issue(auth.Claims{UserID: s.opts.DevUser, Tier: mode})
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeAPIJSON(w, http.StatusOK, TokenResponse{Token: tok, Tier: string(mode)})
}

func (s *Server) handleListPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := s.plans.ListPlans(r.Context(), claimsFrom(r.Context()).UserID)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeAPIJSON(w, http.StatusOK, plans)
}

func (s *Server) handleGeneratePlan(w http.ResponseWriter, r *http.Request) {
	var req GeneratePlanRequest
	if !s.decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.UserInput) == "" || req.Mode == "" {
		writeError(w, http.StatusBadRequest, "missing user_input or mode")
		return
	}
	mode, err := plan.ParseMode(req.Mode)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}

	p, err := s.plans.CreatePlan(r.Context(), claimsFrom(r.Context()).UserID, req.UserInput, mode, req.Extras)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeAPIJSON(w, http.StatusCreated, p)
}

func (s *Server) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	p, err := s.plans.GetPlan(r.Context(), claimsFrom(r.Context()).UserID, chi.URLParam(r, "plan_id"))
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeAPIJSON(w, http.StatusOK, p)
}

func (s *Server) handleToggleStep(w http.ResponseWriter, r *http.Request) {
	p, err := s.plans.ToggleStep(r.Context(), claimsFrom(r.Context()).UserID,
		chi.URLParam(r, "plan_id"), chi.URLParam(r, "step_id"))
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeAPIJSON(w, http.StatusOK, p)
}

func (s *Server) handleReplan(w http.ResponseWriter, r *http.Request) {
	var req ReplanRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Outcome == "" {
		writeError(w, http.StatusBadRequest, "missing 'outcome' (success/failure) in request")
		return
	}
	outcome, err := plan.ParseOutcome(req.Outcome)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}

	p, err := s.plans.ReplanFromStep(r.Context(), claimsFrom(r.Context()).UserID,
		chi.URLParam(r, "plan_id"), chi.URLParam(r, "step_id"), outcome, req.Reason)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeAPIJSON(w, http.StatusOK, p)
}

func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	entries, err := s.plans.Forecast(r.Context(), claimsFrom(r.Context()).UserID, chi.URLParam(r, "plan_id"))
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeAPIJSON(w, http.StatusOK, entries)
}

func (s *Server) handleSimulateAgent(w http.ResponseWriter, r *http.Request) {
	var req SimulateAgentRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Persona == "" || req.Argument == "" {
		writeError(w, http.StatusBadRequest, "missing 'persona' or 'argument' in request")
		return
	}

	p, err := s.plans.GetPlan(r.Context(), claimsFrom(r.Context()).UserID, chi.URLParam(r, "plan_id"))
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	out, err := s.assist.SimulateAgent(r.Context(), p, req.Persona, req.Argument)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeAPIJSON(w, http.StatusOK, map[string]string{"agent_response": out})
}

func (s *Server) handleNextMove(w http.ResponseWriter, r *http.Request) {
	p, err := s.plans.GetPlan(r.Context(), claimsFrom(r.Context()).UserID, chi.URLParam(r, "plan_id"))
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	suggestion, err := s.assist.NextBestMove(r.Context(), p)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeAPIJSON(w, http.StatusOK, map[string]string{"suggestion": suggestion})
}

func (s *Server) handleDiscoverIdea(w http.ResponseWriter, r *http.Request) {
	var req DiscoverIdeaRequest
	if !s.decode(w, r, &req) {
		return
	}
	idea, err := s.assist.DiscoverIdea(r.Context(), req.Niche)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeAPIJSON(w, http.StatusOK, map[string]string{"idea": idea})
}

func (s *Server) handleResearch(w http.ResponseWriter, r *http.Request) {
	var req ResearchRequest
	if !s.decode(w, r, &req) {
		return
	}
	summary, err := s.assist.Research(r.Context(), req.Query)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeAPIJSON(w, http.StatusOK, map[string]string{"research_summary": summary})
}

func (s *Server) handleDecomposeStep(w http.ResponseWriter, r *http.Request) {
	var req DecomposeStepRequest
	if !s.decode(w, r, &req) {
		return
	}
	steps, err := s.assist.DecomposeStep(r.Context(), req.ParentStepTitle)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeAPIJSON(w, http.StatusOK, map[string][]assist.MicroStep{"micro_steps": steps})
}

func (s *Server) handleAskStep(w http.ResponseWriter, r *http.Request) {
	var req AskStepRequest
	if !s.decode(w, r, &req) {
		return
	}
	answer, err := s.assist.AskOnStep(r.Context(), req.StepDescription, req.Question)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeAPIJSON(w, http.StatusOK, map[string]string{"answer": answer})
}

// decode reads a JSON body into dst, answering 400 on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// errorStatus maps domain errors onto a status code and public message.
// Missing and foreign plans are indistinguishable to callers.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, plan.ErrPlanNotFound), errors.Is(err, plan.ErrUnauthorized):
		return http.StatusForbidden, "plan not found or unauthorized"
	case errors.Is(err, plan.ErrStepNotFound):
		return http.StatusNotFound, "step not found"
	case errors.Is(err, plan.ErrInvalidReplanFormat):
		return http.StatusBadGateway, "AI returned an invalid format for replanning"
	case errors.Is(err, assist.ErrInvalidFormat):
		return http.StatusBadGateway, "AI returned an invalid format"
	case plan.IsGenerationError(err):
		if errors.Is(err, context.DeadlineExceeded) {
			return http.StatusGatewayTimeout, "AI request timed out"
		}
		return http.StatusBadGateway, "AI generation failed"
	case errors.Is(err, plan.ErrInvalidRequest):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "request timed out"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

func (s *Server) writeErr(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := errorStatus(err)
	attrs := []any{"path", r.URL.Path, "status", status, "error", err}
	switch {
	case errors.Is(err, context.Canceled):
		slog.Debug("request cancelled", attrs...)
	case status >= 500:
		slog.Error("request failed", attrs...)
	case errors.Is(err, plan.ErrUnauthorized):
		slog.Warn("unauthorized plan access", attrs...)
	default:
		slog.Debug("request rejected", attrs...)
	}
	writeError(w, status, msg)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeAPIJSON(w, status, ErrorResponse{Error: msg})
}

func writeAPIJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Debug("write response", "error", err)
	}
}
