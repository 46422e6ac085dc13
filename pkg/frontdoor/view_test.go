package frontdoor

import (
	"testing"

	"github.com/aescanero/debatehub/pkg/domain"
	"go.uber.org/zap"
)

func ev(index, progress int) domain.ProgressEvent {
	return domain.ProgressEvent{SessionID: "s1", StepIndex: index, Progress: progress, Status: "step"}
}

func terminal(index int) domain.ProgressEvent {
	return domain.ProgressEvent{SessionID: "s1", StepIndex: index, Progress: 100, Status: domain.StepNameCompleted, Completed: true}
}

func failed(index, progress int, msg string) domain.ProgressEvent {
	return domain.ProgressEvent{SessionID: "s1", StepIndex: index, Progress: progress, Status: "pro_round_2", Completed: true, Error: &msg}
}

func TestView_Apply(t *testing.T) {
	v := NewView(zap.NewNop())
	if v.LastStepIndex() != -1 {
		t.Fatalf("expected empty view at -1, got %d", v.LastStepIndex())
	}

	steps := []struct {
		event domain.ProgressEvent
		want  bool
	}{
		{ev(0, 14), true},
		{ev(2, 42), true},
		{ev(1, 28), false}, // regressed
		{ev(2, 42), false}, // duplicate
		{ev(3, 57), true},
		{terminal(6), true},
		{ev(5, 85), false}, // after terminal
		{terminal(6), false},
	}

	for i, s := range steps {
		if got := v.Apply(s.event); got != s.want {
			t.Errorf("step %d: Apply(%d) = %v, want %v", i, s.event.StepIndex, got, s.want)
		}
	}

	if !v.Terminal() || v.LastStepIndex() != 6 {
		t.Errorf("expected terminal view at 6, got %d", v.LastStepIndex())
	}
	if v.Dropped() != 1 {
		t.Errorf("expected 1 dropped event, got %d", v.Dropped())
	}
}

func TestView_DuplicateWithCopiedError(t *testing.T) {
	v := NewView(zap.NewNop())
	v.Apply(ev(2, 42))

	first := failed(3, 42, "boom")
	second := failed(3, 42, "boom")
	if !v.Apply(first) {
		t.Fatal("expected failure event applied")
	}
	if v.Apply(second) {
		t.Error("expected equal failure event to be a no-op")
	}
	last, _ := v.Last()
	if last.ErrorMessage() != "boom" {
		t.Errorf("unexpected last event %+v", last)
	}
}
