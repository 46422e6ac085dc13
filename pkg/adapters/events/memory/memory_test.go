package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/aescanero/debatehub/pkg/domain"
)

func TestInMemoryEventSink_History(t *testing.T) {
	ctx := context.Background()
	sink := NewInMemoryEventSink(4)

	for i := 0; i < 3; i++ {
		if err := sink.Publish(ctx, domain.ProgressEvent{SessionID: "s1", StepIndex: i}); err != nil {
			t.Fatalf("Publish failed: %v", err)
		}
	}

	events, err := sink.History(ctx, "s1")
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	for i, ev := range events {
		if ev.StepIndex != i {
			t.Errorf("event %d has step index %d", i, ev.StepIndex)
		}
	}

	if _, err := sink.History(ctx, "missing"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestInMemoryEventSink_DropsOldestSession(t *testing.T) {
	ctx := context.Background()
	sink := NewInMemoryEventSink(2)

	for _, id := range []string{"a", "b", "c"} {
		_ = sink.Publish(ctx, domain.ProgressEvent{SessionID: id})
	}

	if _, err := sink.History(ctx, "a"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("expected oldest session to be dropped, got %v", err)
	}
	if _, err := sink.History(ctx, "c"); err != nil {
		t.Errorf("expected newest session to be kept, got %v", err)
	}
}
