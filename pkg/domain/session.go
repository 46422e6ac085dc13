package domain

import "time"

// WorkflowKind identifies the workflow a session runs
type WorkflowKind string

const (
	WorkflowDebate   WorkflowKind = "debate"
	WorkflowBusiness WorkflowKind = "business"
)

// Outcome is the terminal outcome of a session
type Outcome string

const (
	OutcomeUnset     Outcome = ""
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeFailed    Outcome = "failed"
)

// SessionSnapshot is an immutable view of one session. A new snapshot is
// published for every transition; published snapshots are never mutated.
type SessionSnapshot struct {
	ID               string           `json:"session_id"`
	Kind             WorkflowKind     `json:"kind"`
	Topic            string           `json:"topic"`
	Plan             []StepDescriptor `json:"plan"`
	CurrentStepIndex int              `json:"current_step_index"`
	Progress         int              `json:"progress"`
	Status           string           `json:"status"`
	Message          string           `json:"message"`
	Outcome          Outcome          `json:"outcome,omitempty"`
	Error            string           `json:"error,omitempty"`
	FailedStep       string           `json:"failed_step,omitempty"`
	FailedStepIndex  int              `json:"failed_step_index,omitempty"`
	Result           *Result          `json:"result,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
	CompletedAt      *time.Time       `json:"completed_at,omitempty"`
}

// Terminal reports whether the session reached a terminal outcome
func (s *SessionSnapshot) Terminal() bool {
	return s.Outcome != OutcomeUnset
}

// Event renders the snapshot as the equivalent progress event
func (s *SessionSnapshot) Event() ProgressEvent {
	ev := ProgressEvent{
		SessionID: s.ID,
		StepIndex: s.CurrentStepIndex,
		Status:    s.Status,
		Progress:  s.Progress,
		Message:   s.Message,
		Completed: s.Terminal(),
	}
	if s.Outcome == OutcomeFailed {
		// The failure event is attributed to the step that failed.
		if s.FailedStep != "" {
			ev.StepIndex = s.FailedStepIndex
			ev.Status = s.FailedStep
		}
		msg := s.Error
		ev.Error = &msg
	}
	return ev
}

// DebateRequest holds the parameters of a debate session
type DebateRequest struct {
	Topic    string `json:"topic"`
	ProLLM   string `json:"pro_llm"`
	ConLLM   string `json:"con_llm"`
	JudgeLLM string `json:"judge_llm"`
	Rounds   int    `json:"rounds"`
	RoleA    string `json:"role_a"`
	RoleB    string `json:"role_b"`
}

// BusinessRequest holds the parameters of a business idea session
type BusinessRequest struct {
	Topic        string `json:"topic"`
	GeneratorLLM string `json:"generator_llm"`
	CriticLLM    string `json:"critic_llm"`
	RefinerLLM   string `json:"refiner_llm"`
	JudgeLLM     string `json:"judge_llm"`
	NumIdeas     int    `json:"num_ideas"`
}
