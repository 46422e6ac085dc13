package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aescanero/debatehub/pkg/domain"
	"github.com/aescanero/debatehub/pkg/ports"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const resultSaveTimeout = 5 * time.Second

// run drives one session through its plan. Steps execute strictly in order
// and a progress event is published after each one completes. The first
// failing step ends the session.
func (m *Manager) run(ctx context.Context, s *session) {
	defer close(s.done)
	defer s.cancel(nil)

	if m.cfg.WorkflowTimeout > 0 {
		var stop context.CancelFunc
		ctx, stop = context.WithTimeoutCause(ctx, m.cfg.WorkflowTimeout, ErrWorkflowTimeout)
		defer stop()
	}

	ctx, span := m.tracer.Start(ctx, "session.run", trace.WithAttributes(
		attribute.String("session.id", s.id),
		attribute.String("session.kind", string(s.kind)),
		attribute.Int("session.steps", s.plan.Len()),
	))
	defer span.End()

	m.advance(s, 0)

	last := s.plan.Len() - 1
	for i := 1; i < last; i++ {
		step := s.plan.Step(i)

		if ctx.Err() != nil {
			m.fail(span, s, step, interruption(ctx, step))
			return
		}

		output, err := m.executeStep(ctx, s, step)
		if err != nil {
			m.fail(span, s, step, err)
			return
		}

		s.wf.Record(step, output)
		m.advance(s, i)
	}

	m.complete(span, s)
}

// executeStep runs the external call of step, if it has one
func (m *Manager) executeStep(ctx context.Context, s *session, step domain.StepDescriptor) (string, error) {
	prompt, call := s.wf.Prompt(step)
	if !call {
		m.logger.Debug("step needs no provider call",
			zap.String("session_id", s.id),
			zap.String("step", step.Name))
		return "", nil
	}

	ctx, span := m.tracer.Start(ctx, "session.step", trace.WithAttributes(
		attribute.String("step.name", step.Name),
		attribute.Int("step.index", step.Index),
		attribute.String("step.provider", step.Provider),
	))
	defer span.End()

	m.logger.Debug("executing step",
		zap.String("session_id", s.id),
		zap.String("step", step.Name),
		zap.String("provider", step.Provider))

	start := time.Now()
	output, err := m.executor.Execute(ctx, ports.StepRequest{
		SessionID: s.id,
		Step:      step,
		Prompt:    prompt,
	})
	duration := time.Since(start)

	if err != nil {
		err = classify(ctx, step, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		m.metrics.RecordStep(step.Provider, "failed", duration)
		return "", err
	}

	m.metrics.RecordStep(step.Provider, "succeeded", duration)
	return output, nil
}

// advance publishes the snapshot for the completed step at index
func (m *Manager) advance(s *session, index int) {
	step := s.plan.Step(index)
	next := *s.snapshot.Load()
	next.CurrentStepIndex = index
	next.Progress = s.plan.Percent(index)
	next.Status = step.Name
	next.Message = s.wf.Message(step)
	m.publish(s, &next)
}

// fail publishes the terminal failure of step. Progress stays at the last
// completed step.
func (m *Manager) fail(span trace.Span, s *session, step domain.StepDescriptor, err error) {
	now := time.Now()
	next := *s.snapshot.Load()
	next.Status = step.Name
	next.Message = fmt.Sprintf("Step %s failed", step.Name)
	next.Outcome = domain.OutcomeFailed
	next.Error = err.Error()
	next.FailedStep = step.Name
	next.FailedStepIndex = step.Index
	next.CompletedAt = &now
	next.Result = &domain.Result{
		SessionID:       s.id,
		Kind:            s.kind,
		Topic:           next.Topic,
		Outcome:         domain.OutcomeFailed,
		Error:           err.Error(),
		FailedStep:      step.Name,
		FailedStepIndex: step.Index,
		Transcript:      s.wf.Transcript(),
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	m.logger.Error("session failed",
		zap.String("session_id", s.id),
		zap.String("step", step.Name),
		zap.Int("step_index", step.Index),
		zap.Error(err))

	m.publish(s, &next)
	m.finish(s, &next)
}

// complete publishes the terminal success of the session
func (m *Manager) complete(span trace.Span, s *session) {
	last := s.plan.Step(s.plan.Len() - 1)
	result := s.wf.Result()
	result.SessionID = s.id
	result.Outcome = domain.OutcomeSucceeded

	now := time.Now()
	next := *s.snapshot.Load()
	next.CurrentStepIndex = last.Index
	next.Progress = 100
	next.Status = last.Name
	next.Message = s.wf.Message(last)
	next.Outcome = domain.OutcomeSucceeded
	next.Result = result
	next.CompletedAt = &now

	span.SetStatus(codes.Ok, "")
	m.logger.Info("session completed",
		zap.String("session_id", s.id),
		zap.Duration("duration", now.Sub(s.createdAt)))

	m.publish(s, &next)
	m.finish(s, &next)
}

func (m *Manager) publish(s *session, snap *domain.SessionSnapshot) {
	s.snapshot.Store(snap)
	m.hub.Publish(snap.Event())
}

func (m *Manager) finish(s *session, snap *domain.SessionSnapshot) {
	m.metrics.SetActiveSessions(int(m.active.Add(-1)))
	m.metrics.RecordSessionFinished(string(s.kind), string(snap.Outcome), time.Since(s.createdAt))

	if m.store == nil || snap.Result == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), resultSaveTimeout)
	defer cancel()
	if err := m.store.SaveResult(ctx, snap.Result); err != nil {
		m.logger.Error("failed to save result",
			zap.String("session_id", s.id),
			zap.Error(err))
	}
}

// classify turns an executor error into a step error. Once the session
// context is done, the cancellation cause wins over whatever the provider
// reported.
func classify(ctx context.Context, step domain.StepDescriptor, err error) error {
	if ctx.Err() != nil {
		return interruption(ctx, step)
	}
	if se, ok := domain.AsStepError(err); ok {
		if se.Step == "" {
			se.Step = step.Name
		}
		if se.Provider == "" {
			se.Provider = step.Provider
		}
		return se
	}
	return &domain.StepError{
		Kind:     domain.FailureProviderError,
		Step:     step.Name,
		Provider: step.Provider,
		Err:      err,
	}
}

// interruption builds the step error for a session whose context is done
func interruption(ctx context.Context, step domain.StepDescriptor) error {
	cause := context.Cause(ctx)
	kind := domain.FailureCancelled
	if errors.Is(cause, ErrWorkflowTimeout) {
		kind = domain.FailureProviderTimeout
	}
	return &domain.StepError{
		Kind:     kind,
		Step:     step.Name,
		Provider: step.Provider,
		Err:      cause,
	}
}
