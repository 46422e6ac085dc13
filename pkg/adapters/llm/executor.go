package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/aescanero/debatehub/pkg/domain"
	"github.com/aescanero/debatehub/pkg/ports"
	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// ExecutorConfig holds the call policy of the executor
type ExecutorConfig struct {
	CallTimeout time.Duration
	MaxRetries  int
	RetryDelay  time.Duration
}

// Executor runs workflow steps against the provider registry
type Executor struct {
	registry *Registry
	cfg      ExecutorConfig
	metrics  ports.MetricsCollector
	logger   *zap.Logger
}

// NewExecutor creates a new step executor
func NewExecutor(registry *Registry, cfg ExecutorConfig, metrics ports.MetricsCollector, logger *zap.Logger) *Executor {
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}
	return &Executor{
		registry: registry,
		cfg:      cfg,
		metrics:  metrics,
		logger:   logger,
	}
}

// Execute calls the step's provider, retrying retryable failures. Every
// failure is returned as a *domain.StepError.
func (e *Executor) Execute(ctx context.Context, req ports.StepRequest) (string, error) {
	stepErr := func(err error) error {
		kind := Classify(err)
		if ctx.Err() != nil {
			kind = domain.FailureCancelled
			err = context.Cause(ctx)
		}
		return &domain.StepError{Kind: kind, Step: req.Step.Name, Provider: req.Step.Provider, Err: err}
	}

	client, err := e.registry.Client(req.Step.Provider)
	if err != nil {
		return "", stepErr(err)
	}

	var output string
	operation := func() error {
		out, err := e.call(ctx, client, req.Prompt)
		if err != nil {
			if !IsRetryable(err) {
				return backoff.Permanent(err)
			}
			return err
		}
		output = out
		return nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = e.cfg.RetryDelay
	policy.MaxElapsedTime = 0

	notify := func(err error, wait time.Duration) {
		e.metrics.RecordProviderRetry(req.Step.Provider)
		e.logger.Warn("provider call failed, retrying",
			zap.String("session_id", req.SessionID),
			zap.String("step", req.Step.Name),
			zap.String("provider", req.Step.Provider),
			zap.Duration("wait", wait),
			zap.Error(err))
	}

	b := backoff.WithContext(backoff.WithMaxRetries(policy, uint64(max(e.cfg.MaxRetries, 0))), ctx)
	if err := backoff.RetryNotify(operation, b, notify); err != nil {
		return "", stepErr(err)
	}
	return output, nil
}

func (e *Executor) call(ctx context.Context, client ports.LLMClient, prompt string) (string, error) {
	if e.cfg.CallTimeout <= 0 {
		return client.Generate(ctx, prompt)
	}

	callCtx, cancel := context.WithTimeout(ctx, e.cfg.CallTimeout)
	defer cancel()

	out, err := client.Generate(callCtx, prompt)
	if err != nil && ctx.Err() == nil && callCtx.Err() != nil {
		return "", fmt.Errorf("call exceeded %s (%v): %w", e.cfg.CallTimeout, err, context.DeadlineExceeded)
	}
	return out, err
}
