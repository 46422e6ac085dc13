package main

import (
	"errors"
	"strings"
	"testing"

	"github.com/aescanero/debatehub/pkg/domain"
	"github.com/aescanero/debatehub/pkg/frontdoor"
)

func TestProgressBar_Clamps(t *testing.T) {
	tests := []struct {
		percent int
		filled  int
	}{
		{-5, 0},
		{0, 0},
		{50, 10},
		{100, 20},
		{140, 20},
	}
	for _, tt := range tests {
		bar := progressBar(tt.percent)
		if got := strings.Count(bar, "█"); got != tt.filled {
			t.Errorf("progressBar(%d): expected %d filled cells, got %d", tt.percent, tt.filled, got)
		}
		if got := strings.Count(bar, "█") + strings.Count(bar, "░"); got != 20 {
			t.Errorf("progressBar(%d): expected width 20, got %d", tt.percent, got)
		}
	}
}

func TestRenderEvent_Failure(t *testing.T) {
	msg := "provider_timeout: call exceeded 1s"
	line := renderEvent(domain.ProgressEvent{
		SessionID: "s1",
		StepIndex: 2,
		Status:    "con_1",
		Progress:  40,
		Completed: true,
		Error:     &msg,
	})
	if !strings.Contains(line, "con_1") || !strings.Contains(line, msg) {
		t.Errorf("failure line misses status or error: %q", line)
	}
}

func TestRenderMode_HidesTerminal(t *testing.T) {
	if got := renderMode(frontdoor.ModeTerminal, nil); got != "" {
		t.Errorf("expected no line for terminal mode, got %q", got)
	}
	line := renderMode(frontdoor.ModeDegraded, errors.New("5 poll failures"))
	if !strings.Contains(line, "5 poll failures") {
		t.Errorf("degraded line misses cause: %q", line)
	}
}

func TestRenderResult(t *testing.T) {
	debate := renderResult(&domain.Result{
		SessionID: "s1",
		Kind:      domain.WorkflowDebate,
		Topic:     "Cats vs dogs",
		Outcome:   domain.OutcomeSucceeded,
		Debate: &domain.DebateResult{
			RoleA:   "Pro",
			RoleB:   "Con",
			Rounds:  []domain.DebateRound{{RoundNumber: 1, ProArgument: "cats purr", ConArgument: "dogs fetch"}},
			Summary: "cats win",
		},
	})
	for _, want := range []string{"Cats vs dogs", "Round 1", "cats purr", "dogs fetch", "cats win"} {
		if !strings.Contains(debate, want) {
			t.Errorf("debate rendering misses %q", want)
		}
	}

	failed := renderResult(&domain.Result{
		SessionID:  "s2",
		Topic:      "x",
		Outcome:    domain.OutcomeFailed,
		Error:      "provider_rejected: bad key",
		FailedStep: "judging",
	})
	if !strings.Contains(failed, "judging") || !strings.Contains(failed, "bad key") {
		t.Errorf("failed rendering misses step or error: %q", failed)
	}
}
