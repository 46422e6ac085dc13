// Package ports declares the interfaces between the orchestration core and
// its adapters (LLM providers, storage, event sinks, metrics).
package ports

import (
	"context"
	"time"

	"github.com/aescanero/debatehub/pkg/domain"
)

// StepRequest is one external call for one workflow step
type StepRequest struct {
	SessionID string
	Step      domain.StepDescriptor
	Prompt    string
}

// StepExecutor invokes the external collaborator for one step. It returns the
// produced content or a *domain.StepError, and must return promptly with a
// cancelled failure once ctx is done.
type StepExecutor interface {
	Execute(ctx context.Context, req StepRequest) (string, error)
}

// LLMClient generates text for a prompt
type LLMClient interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}

// ResultStore retains terminal results beyond the in-memory retention window
type ResultStore interface {
	SaveResult(ctx context.Context, result *domain.Result) error
	LoadResult(ctx context.Context, sessionID string) (*domain.Result, error)
	DeleteResult(ctx context.Context, sessionID string) error
}

// EventSink receives a copy of every published progress event
type EventSink interface {
	Publish(ctx context.Context, event domain.ProgressEvent) error
	Close() error
}

// EventHistory returns the events recorded for a session, oldest first
type EventHistory interface {
	History(ctx context.Context, sessionID string) ([]domain.ProgressEvent, error)
}

// MetricsCollector records orchestration metrics
type MetricsCollector interface {
	RecordSessionCreated(kind string)
	RecordSessionFinished(kind, outcome string, duration time.Duration)
	RecordStep(provider, status string, duration time.Duration)
	RecordProviderRetry(provider string)
	SetActiveSessions(count int)
	SetSubscribers(count int)
	RecordEventDropped()
	RecordPoll()
	RecordWorkerPoolStatus(idle, busy, stopped int)
}
