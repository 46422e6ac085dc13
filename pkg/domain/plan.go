package domain

import (
	"fmt"
	"strings"
)

// StepKind identifies what a planned step does
type StepKind string

const (
	StepKindStarting   StepKind = "starting"
	StepKindInitial    StepKind = "initial"
	StepKindRound      StepKind = "round"
	StepKindJudging    StepKind = "judging"
	StepKindGenerating StepKind = "generating"
	StepKindCritiquing StepKind = "critiquing"
	StepKindRefining   StepKind = "refining"
	StepKindRanking    StepKind = "ranking"
	StepKindCompleted  StepKind = "completed"
)

// Step names shared by every workflow
const (
	StepNameStarting  = "starting"
	StepNameJudging   = "judging"
	StepNameCompleted = "completed"
)

// StepDescriptor describes a single planned step
type StepDescriptor struct {
	Index    int      `json:"index"`
	Name     string   `json:"name"`
	Kind     StepKind `json:"kind"`
	Role     string   `json:"role,omitempty"`
	Provider string   `json:"provider,omitempty"`
	// Round is the debate round (1-based) or the idea number (1-based).
	Round int `json:"round,omitempty"`
}

// IsMarker reports whether the step carries no external call
func (d StepDescriptor) IsMarker() bool {
	return d.Kind == StepKindStarting || d.Kind == StepKindCompleted
}

// StepPlan is the ordered, immutable step sequence of one session
type StepPlan struct {
	steps []StepDescriptor
}

// Len returns the number of planned steps
func (p StepPlan) Len() int {
	return len(p.steps)
}

// Step returns the descriptor at index i
func (p StepPlan) Step(i int) StepDescriptor {
	return p.steps[i]
}

// Steps returns a copy of the planned steps
func (p StepPlan) Steps() []StepDescriptor {
	out := make([]StepDescriptor, len(p.steps))
	copy(out, p.steps)
	return out
}

// Names returns the status vocabulary of the plan in order
func (p StepPlan) Names() []string {
	names := make([]string, len(p.steps))
	for i, s := range p.steps {
		names[i] = s.Name
	}
	return names
}

// IndexOf returns the index of the named step or -1
func (p StepPlan) IndexOf(name string) int {
	for i, s := range p.steps {
		if s.Name == name {
			return i
		}
	}
	return -1
}

// Percent returns the progress percentage once the step at index has
// completed. Index -1 means nothing has run yet.
func (p StepPlan) Percent(index int) int {
	if len(p.steps) == 0 || index < 0 {
		return 0
	}
	if index >= len(p.steps)-1 {
		return 100
	}
	return (index + 1) * 100 / len(p.steps)
}

// DebateRoles names the two arguing roles and the providers backing each role
type DebateRoles struct {
	RoleA         string
	RoleB         string
	ProviderA     string
	ProviderB     string
	JudgeProvider string
}

// NewDebatePlan builds the plan for a debate of the given number of rounds:
// starting, {a}_initial, {b}_initial, {a}_round_n, {b}_round_n (n>=2),
// judging, completed.
func NewDebatePlan(roles DebateRoles, rounds int) (StepPlan, error) {
	if rounds < 1 {
		return StepPlan{}, fmt.Errorf("%w: rounds must be at least 1", ErrInvalidRequest)
	}
	a, b := roleKey(roles.RoleA), roleKey(roles.RoleB)
	if a == "" || b == "" {
		return StepPlan{}, fmt.Errorf("%w: role names are required", ErrInvalidRequest)
	}
	if a == b {
		return StepPlan{}, fmt.Errorf("%w: role names must differ", ErrInvalidRequest)
	}

	steps := make([]StepDescriptor, 0, 5+2*(rounds-1))
	steps = append(steps,
		StepDescriptor{Name: StepNameStarting, Kind: StepKindStarting},
		StepDescriptor{Name: a + "_initial", Kind: StepKindInitial, Role: a, Provider: roles.ProviderA, Round: 1},
		StepDescriptor{Name: b + "_initial", Kind: StepKindInitial, Role: b, Provider: roles.ProviderB, Round: 1},
	)
	for n := 2; n <= rounds; n++ {
		steps = append(steps,
			StepDescriptor{Name: fmt.Sprintf("%s_round_%d", a, n), Kind: StepKindRound, Role: a, Provider: roles.ProviderA, Round: n},
			StepDescriptor{Name: fmt.Sprintf("%s_round_%d", b, n), Kind: StepKindRound, Role: b, Provider: roles.ProviderB, Round: n},
		)
	}
	steps = append(steps,
		StepDescriptor{Name: StepNameJudging, Kind: StepKindJudging, Role: "judge", Provider: roles.JudgeProvider},
		StepDescriptor{Name: StepNameCompleted, Kind: StepKindCompleted},
	)
	return newPlan(steps), nil
}

// BusinessRoles names the providers backing each business idea stage
type BusinessRoles struct {
	Generator string
	Critic    string
	Refiner   string
	Judge     string
}

// NewBusinessPlan builds the plan for a business idea session: starting,
// generating, critiquing_i, refining_i, ranking, completed.
func NewBusinessPlan(roles BusinessRoles, ideas int) (StepPlan, error) {
	if ideas < 1 {
		return StepPlan{}, fmt.Errorf("%w: number of ideas must be at least 1", ErrInvalidRequest)
	}

	steps := make([]StepDescriptor, 0, 4+2*ideas)
	steps = append(steps,
		StepDescriptor{Name: StepNameStarting, Kind: StepKindStarting},
		StepDescriptor{Name: "generating", Kind: StepKindGenerating, Role: "generator", Provider: roles.Generator},
	)
	for i := 1; i <= ideas; i++ {
		steps = append(steps, StepDescriptor{
			Name: fmt.Sprintf("critiquing_%d", i), Kind: StepKindCritiquing, Role: "critic", Provider: roles.Critic, Round: i,
		})
	}
	for i := 1; i <= ideas; i++ {
		steps = append(steps, StepDescriptor{
			Name: fmt.Sprintf("refining_%d", i), Kind: StepKindRefining, Role: "refiner", Provider: roles.Refiner, Round: i,
		})
	}
	steps = append(steps,
		StepDescriptor{Name: "ranking", Kind: StepKindRanking, Role: "judge", Provider: roles.Judge},
		StepDescriptor{Name: StepNameCompleted, Kind: StepKindCompleted},
	)
	return newPlan(steps), nil
}

func newPlan(steps []StepDescriptor) StepPlan {
	for i := range steps {
		steps[i].Index = i
	}
	return StepPlan{steps: steps}
}

// roleKey normalizes a role label into the step name vocabulary
func roleKey(role string) string {
	return strings.ReplaceAll(strings.TrimSpace(role), " ", "_")
}
