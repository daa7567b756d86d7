package server

import "github.com/schematiq/schematiq/internal/plan"

// GeneratePlanRequest is the payload for /api/generate_plan.
type GeneratePlanRequest struct {
	UserInput string       `json:"user_input"`
	Mode      string       `json:"mode"`
	Extras    *plan.Extras `json:"extras,omitempty"`
}

// ReplanRequest is the payload for /api/plan/{plan_id}/step/{step_id}/replan.
type ReplanRequest struct {
	Outcome string `json:"outcome"`
	Reason  string `json:"reason,omitempty"`
}

type SimulateAgentRequest struct {
	Persona  string `json:"persona"`
	Argument string `json:"argument"`
}

type DiscoverIdeaRequest struct {
	Niche string `json:"niche"`
}

type ResearchRequest struct {
	Query string `json:"query"`
}

type DecomposeStepRequest struct {
	ParentStepTitle string `json:"parent_step_title"`
}

type AskStepRequest struct {
	StepDescription string `json:"step_description"`
	Question        string `json:"question"`
}

type TokenResponse struct {
	Token string `json:"token"`
	Tier  string `json:"tier"`
}

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error string `json:"error"`
}
