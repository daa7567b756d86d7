// Package prompts renders the model requests used by the planning backend.
package prompts

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/schematiq/schematiq/internal/plan"
)

var templates = template.Must(template.New("prompts").Funcs(template.FuncMap{
	"quoteList": quoteList,
}).Parse(allTemplates))

func render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s prompt: %w", name, err)
	}
	return strings.TrimSpace(buf.String()), nil
}

func quoteList(items []string) string {
	quoted := make([]string, len(items))
	for i, item := range items {
		quoted[i] = fmt.Sprintf("%q", item)
	}
	return strings.Join(quoted, ", ")
}

// BasePlan renders the request for a complete plan object.
func BasePlan(goal string, mode plan.Mode, extras *plan.Extras) (string, error) {
	data := map[string]any{
		"Goal":       goal,
		"Strategist": mode.IsStrategist(),
	}
	if extras != nil {
		data["Experience"] = strings.TrimSpace(extras.Experience)
		data["ExpectedOutcome"] = strings.TrimSpace(extras.ExpectedOutcome)
		if c := extras.Constraints; c != nil && (c.TimePerDay > 0 || c.BudgetMonthly > 0 || len(c.Negative) > 0) {
			data["Constraints"] = c
		}
	}
	return render("base_plan", data)
}

// Replan renders the request for the remaining steps after an outcome.
// A failure reason is forwarded verbatim.
func Replan(planJSON, stepTitle string, outcome plan.Outcome, reason string) (string, error) {
	data := map[string]any{
		"PlanJSON":  planJSON,
		"StepTitle": stepTitle,
		"Success":   outcome == plan.OutcomeSuccess,
	}
	if outcome == plan.OutcomeFailure && reason != "" {
		data["Reason"] = reason
	}
	return render("replan", data)
}

// DecomposeStep renders the request for micro-steps of a plan step.
func DecomposeStep(parentTitle string) (string, error) {
	return render("decompose_step", map[string]any{"Parent": parentTitle})
}

// NextBestMove renders the momentum-coach request for a plan.
func NextBestMove(planJSON string) (string, error) {
	return render("next_best_move", map[string]any{"PlanJSON": planJSON})
}

// DiscoverIdea renders the single-sentence idea request for a niche.
func DiscoverIdea(niche string) (string, error) {
	return render("discover_idea", map[string]any{"Niche": niche})
}

// Personas maps simulation persona keys to their briefing.
var Personas = map[string]string{
	"marketer":   "You are a data-driven Marketing Director. You distrust any plan without a clear customer acquisition and branding strategy.",
	"investor":   "You are a cautious venture investor. You care about the bottom line, scalability and defensible moats.",
	"power_user": "You are a demanding power user of the product or service. You care about features, ease of use and whether the plan solves your problem.",
}

const genericPersona = "You are a generic critical thinker."

// AgentSimulation renders a persona stress test of a plan.
func AgentSimulation(planJSON, persona, argument string) (string, error) {
	briefing, ok := Personas[persona]
	if !ok {
		briefing = genericPersona
	}
	return render("agent_simulation", map[string]any{
		"PlanJSON": planJSON,
		"Persona":  briefing,
		"Argument": argument,
	})
}

// Researcher renders a search-grounded research request.
func Researcher(query string) (string, error) {
	return render("researcher", map[string]any{"Query": query})
}

// AskOnStep renders a question about a single step.
func AskOnStep(stepDescription, question string) (string, error) {
	return render("ask_on_step", map[string]any{
		"Step":     stepDescription,
		"Question": question,
	})
}

const allTemplates = `
{{define "base_plan"}}
You are SchematIQ, an AI planning assistant.
The user wants to: "{{.Goal}}"
{{- if .ExpectedOutcome}}

USER'S GOAL: the desired final outcome is "{{.ExpectedOutcome}}". Align every step with it.
{{- end}}
{{- if .Experience}}

USER CONTEXT: self-assessed experience level is **{{.Experience}}**. Adjust time estimates to match.
{{- end}}
{{- with .Constraints}}

CRITICAL CONSTRAINTS: every step must respect these user-defined limits:
{{- if .TimePerDay}}
- At most {{.TimePerDay}} hours per day can go into this plan.
{{- end}}
{{- if .BudgetMonthly}}
- Suggested tools or services must stay within ${{.BudgetMonthly}} per month combined.
{{- end}}
{{- if .Negative}}
- Explicitly AVOID these platforms, tools or strategies: {{quoteList .Negative}}.
{{- end}}
{{- end}}

The root of the response MUST be a single JSON object with, at the top level:
- "title": a short plan title.
- "estimated_duration": total expected time, e.g. "2-3 Weeks" or "3 Months".
- "budget_level": one of "Low", "Medium", "High", "Variable".
- "tags": 2-4 tags chosen from "Business", "Tech", "Creative", "Marketing", "Health", "Lifestyle", "Productivity", "Finance".
- "steps": an ARRAY of step objects. Never an object.

Selected mode: **{{if .Strategist}}Strategist Mode{{else}}Everyday Mode{{end}}**.
{{if .Strategist}}
Strategist Mode instructions:
- Make each step highly detailed.
- Add "power_tools": a list of objects with "name", "description" (one sentence), "link" (homepage URL) and "cost" (e.g. "Free", "Freemium", "$20/month").
- Add "potential_pitfall": a brief warning for the step.
- Use professional categories such as "Market Research", "Logistics", "Execution".
{{else}}
Everyday Mode instructions:
- Keep steps actionable and clear.
- Subtasks are small, concrete actions.
- Use simple categories such as "Planning", "Action", "Review".
{{end}}
Every step object MUST contain:
1. "id": a unique string id.
2. "title" and "subtasks" (array of short strings) and "category".
3. "time_estimate": {"min": number, "max": number, "unit": "hours" | "days" | "weeks"}.
4. "effort": "low", "medium" or "high".
5. "is_milestone": true or false.
6. "is_complete": false.

Example:
{
  "id": "plan_launch_saas",
  "title": "Launch a new SaaS product",
  "estimated_duration": "3-4 Months",
  "budget_level": "Medium",
  "tags": ["Business", "Tech"],
  "steps": [
    {
      "id": "step_market_research",
      "title": "Market Research",
      "subtasks": ["Define target audience", "Analyze 5 competitors"],
      "time_estimate": {"min": 1, "max": 2, "unit": "weeks"},
      "effort": "high",
      "is_milestone": true,
      "category": "Research",
      "is_complete": false{{if .Strategist}},
      "power_tools": [],
      "potential_pitfall": "Skipping validation and building something nobody needs."{{end}}
    }
  ]
}

Output ONLY the JSON object, with no other text.
{{end}}

{{define "replan"}}
You are SchematIQ, an AI strategist that adapts plans as they are executed.
The current plan is:
` + "```json" + `
{{.PlanJSON}}
` + "```" + `
The step just finished is: "{{.StepTitle}}"
Outcome: **this step {{if .Success}}succeeded and went well{{else}}failed or produced a negative result{{end}}.**
{{- if .Reason}}

The user gave this reason for the failure: "{{.Reason}}". Adapt the plan around this specific cause.
{{- end}}

Produce a revised list of ONLY the remaining, incomplete steps.
1. Consider how this outcome affects the steps that follow.
2. Keep the overall goal. Modify, reorder, add or remove future steps only.
3. Any step kept from the original plan MUST keep its original "id".
4. Any new step MUST get a new unique "id" that does not appear in the plan above.
5. Use exactly the same step object format as the plan above.
6. Return a JSON ARRAY of step objects and nothing else.
{{end}}

{{define "decompose_step"}}
You are SchematIQ, an expert at breaking complex tasks into simple micro-steps.
Decompose this plan step: "{{.Parent}}"

Return ONLY a JSON array. Each element is an object with:
- "title": short, actionable micro-step name.
- "explanation": one sentence on why it matters or what it involves.
- "example": a brief concrete example.
{{end}}

{{define "next_best_move"}}
You are SchematIQ, a project strategist acting as a momentum coach.
The user's plan is:
` + "```json" + `
{{.PlanJSON}}
` + "```" + `
Find the very next incomplete step (right after the last completed one, or the first step if none are complete).
Give ONE short, encouraging and actionable suggestion for it: a nudge, a tip, a provoking question or a tool recommendation.
Keep it to one or two sentences.

Return ONLY a JSON object: {"suggestion": "..."}
{{end}}

{{define "discover_idea"}}
You are SchematIQ, a project and business idea generator.
Give one compelling, actionable idea in the "{{.Niche}}" niche, described in a single sentence.
Output only that sentence.
{{end}}

{{define "agent_simulation"}}
You are an AI agent playing a persona to stress-test a user's plan.
**Persona:** {{.Persona}}
**Plan:**
` + "```json" + `
{{.PlanJSON}}
` + "```" + `
**User's argument or question:**
---
"{{.Argument}}"
---
Stay fully in character. Challenge the argument from your persona's point of view, expose weak spots and ask tough questions.
Open with a short in-character statement. Be concise and answer in Markdown.
{{end}}

{{define "researcher"}}
You are a research analyst for SchematIQ. Use your search tool to answer with current information.
Research query:
---
"{{.Query}}"
---
Search for recent data, trends, statistics or competitor information, then write a concise Markdown report.
Cite the source URL for every fact or statistic. Finish with a "Key Takeaway".
{{end}}

{{define "ask_on_step"}}
You are SchematIQ, a helpful planning assistant.
Plan step:
---
{{.Step}}
---
User question:
---
"{{.Question}}"
---
Give a concise, direct answer.
{{end}}
`
