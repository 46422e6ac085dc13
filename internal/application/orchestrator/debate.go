package orchestrator

import (
	"fmt"
	"strings"

	"github.com/aescanero/debatehub/pkg/domain"
)

// debateWorkflow runs two roles against each other for a number of rounds and
// lets a judge summarize. Role A argues for the topic, role B against it.
type debateWorkflow struct {
	topic  string
	roles  domain.DebateRoles
	plan   domain.StepPlan
	latest map[string]string
	rounds []domain.DebateRound
	judged string
	log    transcript
}

func newDebateWorkflow(req domain.DebateRequest) (*debateWorkflow, error) {
	roles := domain.DebateRoles{
		RoleA:         req.RoleA,
		RoleB:         req.RoleB,
		ProviderA:     req.ProLLM,
		ProviderB:     req.ConLLM,
		JudgeProvider: req.JudgeLLM,
	}
	plan, err := domain.NewDebatePlan(roles, req.Rounds)
	if err != nil {
		return nil, err
	}
	// Step names carry the normalized role keys.
	roles.RoleA = plan.Step(1).Role
	roles.RoleB = plan.Step(2).Role

	return &debateWorkflow{
		topic:  req.Topic,
		roles:  roles,
		plan:   plan,
		latest: make(map[string]string, 2),
		rounds: make([]domain.DebateRound, 0, req.Rounds),
	}, nil
}

func (w *debateWorkflow) Kind() domain.WorkflowKind { return domain.WorkflowDebate }
func (w *debateWorkflow) Topic() string             { return w.topic }
func (w *debateWorkflow) Plan() domain.StepPlan     { return w.plan }

func (w *debateWorkflow) Prompt(step domain.StepDescriptor) (string, bool) {
	switch step.Kind {
	case domain.StepKindInitial:
		if w.isRoleA(step) {
			return fmt.Sprintf("Argue in favor of: %s", w.topic), true
		}
		return fmt.Sprintf("Argue against: %s", w.topic), true

	case domain.StepKindRound:
		if w.isRoleA(step) {
			return fmt.Sprintf("Your opponent argued: %s\n\nCounter their argument while supporting: %s.",
				w.latest[w.roles.RoleB], w.topic), true
		}
		return fmt.Sprintf("Your opponent argued: %s\n\nCounter their argument while opposing: %s.",
			w.latest[w.roles.RoleA], w.topic), true

	case domain.StepKindJudging:
		var b strings.Builder
		fmt.Fprintf(&b, "Summarize the key points of the debate on '%s', ", w.topic)
		b.WriteString("highlighting the strongest arguments for and against. ")
		b.WriteString("Provide a balanced conclusion.\n\nDEBATE TRANSCRIPT:\n")
		for _, r := range w.rounds {
			fmt.Fprintf(&b, "\n=== Round %d ===\n", r.RoundNumber)
			fmt.Fprintf(&b, "[%s - for]\n%s\n\n", w.roles.RoleA, r.ProArgument)
			fmt.Fprintf(&b, "[%s - against]\n%s\n", w.roles.RoleB, r.ConArgument)
		}
		return b.String(), true
	}
	return "", false
}

func (w *debateWorkflow) Record(step domain.StepDescriptor, output string) {
	switch step.Kind {
	case domain.StepKindInitial, domain.StepKindRound:
		w.latest[step.Role] = output
		round := w.round(step.Round)
		if w.isRoleA(step) {
			round.ProArgument = output
		} else {
			round.ConArgument = output
		}
	case domain.StepKindJudging:
		w.judged = output
	default:
		return
	}
	w.log.add(step, output)
}

// round returns the round with the given number, appending it when missing
func (w *debateWorkflow) round(n int) *domain.DebateRound {
	for i := range w.rounds {
		if w.rounds[i].RoundNumber == n {
			return &w.rounds[i]
		}
	}
	w.rounds = append(w.rounds, domain.DebateRound{RoundNumber: n})
	return &w.rounds[len(w.rounds)-1]
}

func (w *debateWorkflow) Message(step domain.StepDescriptor) string {
	switch step.Kind {
	case domain.StepKindStarting:
		return fmt.Sprintf("Starting debate on: %s", w.topic)
	case domain.StepKindInitial:
		return fmt.Sprintf("Received initial argument from %s (%s)", step.Provider, step.Role)
	case domain.StepKindRound:
		return fmt.Sprintf("Round %d: received response from %s (%s)", step.Round, step.Provider, step.Role)
	case domain.StepKindJudging:
		return fmt.Sprintf("Received final summary from %s", step.Provider)
	case domain.StepKindCompleted:
		return "Debate completed successfully!"
	}
	return ""
}

func (w *debateWorkflow) Transcript() []domain.TranscriptEntry {
	return w.log.snapshot()
}

func (w *debateWorkflow) Result() *domain.Result {
	rounds := make([]domain.DebateRound, len(w.rounds))
	copy(rounds, w.rounds)

	return &domain.Result{
		Kind:       domain.WorkflowDebate,
		Topic:      w.topic,
		Transcript: w.log.snapshot(),
		Debate: &domain.DebateResult{
			RoleA:   w.roles.RoleA,
			RoleB:   w.roles.RoleB,
			Rounds:  rounds,
			Summary: w.judged,
		},
	}
}

func (w *debateWorkflow) isRoleA(step domain.StepDescriptor) bool {
	return step.Role == w.roles.RoleA
}
