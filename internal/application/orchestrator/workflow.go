package orchestrator

import (
	"github.com/aescanero/debatehub/pkg/domain"
)

// workflow supplies the plan, prompts and result assembly of one session.
// A workflow instance belongs to a single session runner and is only ever
// touched from that runner's goroutine.
type workflow interface {
	Kind() domain.WorkflowKind
	Topic() string
	Plan() domain.StepPlan
	// Prompt builds the prompt for step from the accumulated transcript.
	// It returns false when the step needs no provider call.
	Prompt(step domain.StepDescriptor) (string, bool)
	// Record stores the output of step. Skipped steps record an empty output.
	Record(step domain.StepDescriptor, output string)
	// Message is the status message published once step has completed.
	Message(step domain.StepDescriptor) string
	// Transcript returns the outputs recorded so far, in step order.
	Transcript() []domain.TranscriptEntry
	// Result assembles the final result after the last step.
	Result() *domain.Result
}

// transcript accumulates step outputs
type transcript struct {
	entries []domain.TranscriptEntry
}

func (t *transcript) add(step domain.StepDescriptor, content string) {
	t.entries = append(t.entries, domain.TranscriptEntry{
		Step:     step.Name,
		Role:     step.Role,
		Provider: step.Provider,
		Content:  content,
	})
}

func (t *transcript) snapshot() []domain.TranscriptEntry {
	out := make([]domain.TranscriptEntry, len(t.entries))
	copy(out, t.entries)
	return out
}
