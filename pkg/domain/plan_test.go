package domain

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

var testRoles = DebateRoles{RoleA: "A", RoleB: "B", ProviderA: "ChatGPT", ProviderB: "Claude", JudgeProvider: "Gemini"}

func TestNewDebatePlan_Names(t *testing.T) {
	tests := []struct {
		rounds int
		want   string
	}{
		{1, "starting,A_initial,B_initial,judging,completed"},
		{2, "starting,A_initial,B_initial,A_round_2,B_round_2,judging,completed"},
		{3, "starting,A_initial,B_initial,A_round_2,B_round_2,A_round_3,B_round_3,judging,completed"},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("rounds=%d", tt.rounds), func(t *testing.T) {
			plan, err := NewDebatePlan(testRoles, tt.rounds)
			if err != nil {
				t.Fatalf("NewDebatePlan failed: %v", err)
			}
			if got := strings.Join(plan.Names(), ","); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
			if plan.Len() != 5+2*(tt.rounds-1) {
				t.Errorf("expected %d steps, got %d", 5+2*(tt.rounds-1), plan.Len())
			}
			for i, step := range plan.Steps() {
				if step.Index != i {
					t.Errorf("step %s has index %d, want %d", step.Name, step.Index, i)
				}
			}
		})
	}
}

func TestNewDebatePlan_Providers(t *testing.T) {
	plan, err := NewDebatePlan(testRoles, 2)
	if err != nil {
		t.Fatal(err)
	}

	if p := plan.Step(plan.IndexOf("B_round_2")).Provider; p != "Claude" {
		t.Errorf("expected Claude for B_round_2, got %s", p)
	}
	if p := plan.Step(plan.IndexOf("judging")).Provider; p != "Gemini" {
		t.Errorf("expected Gemini for judging, got %s", p)
	}
	if !plan.Step(0).IsMarker() || !plan.Step(plan.Len()-1).IsMarker() || plan.Step(1).IsMarker() {
		t.Error("only starting and completed are marker steps")
	}
}

func TestNewDebatePlan_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		roles  DebateRoles
		rounds int
	}{
		{"zero rounds", testRoles, 0},
		{"missing role", DebateRoles{RoleA: "A"}, 1},
		{"same roles", DebateRoles{RoleA: "side", RoleB: " side "}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewDebatePlan(tt.roles, tt.rounds); !errors.Is(err, ErrInvalidRequest) {
				t.Errorf("expected ErrInvalidRequest, got %v", err)
			}
		})
	}
}

func TestNewDebatePlan_RoleNamesWithSpaces(t *testing.T) {
	plan, err := NewDebatePlan(DebateRoles{RoleA: "team one", RoleB: "team two"}, 1)
	if err != nil {
		t.Fatal(err)
	}
	if plan.IndexOf("team_one_initial") != 1 || plan.IndexOf("team_two_initial") != 2 {
		t.Errorf("unexpected names %v", plan.Names())
	}
}

func TestNewBusinessPlan(t *testing.T) {
	plan, err := NewBusinessPlan(BusinessRoles{Generator: "ChatGPT", Critic: "Claude", Refiner: "ChatGPT", Judge: "Gemini"}, 3)
	if err != nil {
		t.Fatal(err)
	}
	if plan.Len() != 4+2*3 {
		t.Errorf("expected 10 steps, got %d", plan.Len())
	}
	if _, err := NewBusinessPlan(BusinessRoles{}, 0); !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestStepPlan_PercentIsMonotonicAndEndsAt100(t *testing.T) {
	for rounds := 1; rounds <= 5; rounds++ {
		plan, err := NewDebatePlan(testRoles, rounds)
		if err != nil {
			t.Fatal(err)
		}

		prev := plan.Percent(-1)
		if prev != 0 {
			t.Errorf("rounds=%d: expected 0 before the first step, got %d", rounds, prev)
		}
		for i := 0; i < plan.Len(); i++ {
			p := plan.Percent(i)
			if p < prev {
				t.Errorf("rounds=%d: percent regressed at %d: %d < %d", rounds, i, p, prev)
			}
			if p == 100 && i != plan.Len()-1 {
				t.Errorf("rounds=%d: reached 100 before the last step (index %d)", rounds, i)
			}
			prev = p
		}
		if prev != 100 {
			t.Errorf("rounds=%d: expected 100 at the last step, got %d", rounds, prev)
		}
	}
}

func TestStepError(t *testing.T) {
	cause := errors.New("boom")
	err := fmt.Errorf("failed to run: %w", &StepError{Kind: FailureProviderError, Step: "judging", Provider: "Gemini", Err: cause})

	se, ok := AsStepError(err)
	if !ok {
		t.Fatal("expected a StepError in the chain")
	}
	if se.Kind != FailureProviderError || !errors.Is(err, cause) {
		t.Errorf("unexpected step error %+v", se)
	}
	if !strings.Contains(se.Error(), "judging") || !strings.Contains(se.Error(), "Gemini") {
		t.Errorf("error text misses step or provider: %s", se.Error())
	}

	if _, ok := AsStepError(cause); ok {
		t.Error("plain errors are not step errors")
	}
}

func TestProgressEvent_Terminal(t *testing.T) {
	msg := "failed"
	tests := []struct {
		name     string
		event    ProgressEvent
		terminal bool
		failed   bool
	}{
		{"running", ProgressEvent{StepIndex: 2}, false, false},
		{"completed", ProgressEvent{Completed: true}, true, false},
		{"failed", ProgressEvent{Completed: true, Error: &msg}, true, true},
		{"initial", InitialEvent("s"), false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.event.Terminal() != tt.terminal || tt.event.Failed() != tt.failed {
				t.Errorf("expected terminal=%v failed=%v, got %v/%v",
					tt.terminal, tt.failed, tt.event.Terminal(), tt.event.Failed())
			}
		})
	}
}
