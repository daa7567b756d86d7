package prompts

import (
	"strings"
	"testing"

	"github.com/schematiq/schematiq/internal/plan"
)

func TestBasePlan_Modes(t *testing.T) {
	everyday, err := BasePlan("Apartment Deep Clean", plan.ModeEveryday, nil)
	if err != nil {
		t.Fatalf("BasePlan() error = %v", err)
	}
	if !strings.Contains(everyday, "Everyday Mode") || strings.Contains(everyday, "power_tools") {
		t.Errorf("everyday prompt should not ask for power tools:\n%s", everyday)
	}

	strategist, err := BasePlan("Launch a SaaS", plan.ModeStrategist, nil)
	if err != nil {
		t.Fatalf("BasePlan() error = %v", err)
	}
	for _, want := range []string{"Strategist Mode", `"power_tools"`, `"potential_pitfall"`} {
		if !strings.Contains(strategist, want) {
			t.Errorf("strategist prompt missing %q", want)
		}
	}
}

func TestBasePlan_Extras(t *testing.T) {
	extras := &plan.Extras{
		Constraints: &plan.Constraints{
			TimePerDay:    2,
			BudgetMonthly: 50,
			Negative:      []string{"TikTok", "Paid ads"},
		},
		Experience:      "beginner",
		ExpectedOutcome: "1000 subscribers",
	}

	got, err := BasePlan("Grow a YouTube channel", plan.ModeEveryday, extras)
	if err != nil {
		t.Fatalf("BasePlan() error = %v", err)
	}
	for _, want := range []string{
		"CRITICAL CONSTRAINTS",
		"At most 2 hours per day",
		"$50 per month",
		`"TikTok", "Paid ads"`,
		"**beginner**",
		`"1000 subscribers"`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("prompt missing %q:\n%s", want, got)
		}
	}
}

func TestBasePlan_EmptyConstraintsOmitted(t *testing.T) {
	got, err := BasePlan("x", plan.ModeEveryday, &plan.Extras{Constraints: &plan.Constraints{}})
	if err != nil {
		t.Fatalf("BasePlan() error = %v", err)
	}
	if strings.Contains(got, "CRITICAL CONSTRAINTS") {
		t.Errorf("empty constraints should not render a section:\n%s", got)
	}
}

func TestReplan_ReasonForwardedOnFailureOnly(t *testing.T) {
	reason := `the venue cancelled "last minute"`

	failed, err := Replan(`{"id":"p"}`, "Book venue", plan.OutcomeFailure, reason)
	if err != nil {
		t.Fatalf("Replan() error = %v", err)
	}
	if !strings.Contains(failed, reason) {
		t.Errorf("failure prompt should carry the reason verbatim:\n%s", failed)
	}
	if !strings.Contains(failed, "failed or produced a negative result") {
		t.Errorf("failure prompt should describe the outcome")
	}

	ok, err := Replan(`{"id":"p"}`, "Book venue", plan.OutcomeSuccess, reason)
	if err != nil {
		t.Fatalf("Replan() error = %v", err)
	}
	if strings.Contains(ok, reason) {
		t.Errorf("success prompt should not carry a failure reason")
	}
}

func TestAgentSimulation_UnknownPersona(t *testing.T) {
	got, err := AgentSimulation("{}", "pirate", "Is this viable?")
	if err != nil {
		t.Fatalf("AgentSimulation() error = %v", err)
	}
	if !strings.Contains(got, genericPersona) {
		t.Errorf("unknown persona should fall back to the generic critic")
	}
}
