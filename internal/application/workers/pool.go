package workers

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aescanero/debatehub/pkg/domain"
	"github.com/aescanero/debatehub/pkg/ports"
	"go.uber.org/zap"
)

// ErrPoolStopped is returned for steps submitted after shutdown
var ErrPoolStopped = errors.New("worker pool stopped")

// WorkerStatus represents worker status
type WorkerStatus string

const (
	WorkerStatusIdle    WorkerStatus = "idle"
	WorkerStatusBusy    WorkerStatus = "busy"
	WorkerStatusStopped WorkerStatus = "stopped"
)

// Pool bounds the number of concurrent provider calls across all sessions.
// It implements ports.StepExecutor by handing each step to one of a fixed
// number of worker goroutines.
type Pool struct {
	size     int
	executor ports.StepExecutor
	metrics  ports.MetricsCollector
	logger   *zap.Logger
	health   *HealthMonitor

	steps   chan *stepJob
	queued  atomic.Int32
	workers []*worker
	wg      sync.WaitGroup
	stopCtx context.Context
	stop    context.CancelFunc
}

// stepJob carries one step from Execute to a worker and its output back
type stepJob struct {
	ctx    context.Context
	req    ports.StepRequest
	output string
	err    error
	done   chan struct{}
}

type worker struct {
	id      string
	status  atomic.Value // WorkerStatus
	handled atomic.Int64
}

func (w *worker) setStatus(s WorkerStatus) { w.status.Store(s) }

func (w *worker) getStatus() WorkerStatus { return w.status.Load().(WorkerStatus) }

// NewPool creates a pool of size workers around executor
func NewPool(
	size int,
	executor ports.StepExecutor,
	metrics ports.MetricsCollector,
	logger *zap.Logger,
	healthCheckInterval time.Duration,
) *Pool {
	if size < 1 {
		size = 1
	}
	stopCtx, stop := context.WithCancel(context.Background())

	p := &Pool{
		size:     size,
		executor: executor,
		metrics:  metrics,
		logger:   logger,
		steps:    make(chan *stepJob),
		stopCtx:  stopCtx,
		stop:     stop,
	}
	p.health = NewHealthMonitor(p, healthCheckInterval, logger)
	return p
}

// Health returns the pool health monitor
func (p *Pool) Health() *HealthMonitor {
	return p.health
}

// Start launches the workers and the health monitor
func (p *Pool) Start() error {
	if p.workers != nil {
		return fmt.Errorf("worker pool already started")
	}

	p.workers = make([]*worker, p.size)
	for i := range p.workers {
		w := &worker{id: fmt.Sprintf("worker-%d", i)}
		w.setStatus(WorkerStatusIdle)
		p.workers[i] = w

		p.wg.Add(1)
		go p.work(w)
	}
	p.health.Start()

	p.logger.Info("worker pool started", zap.Int("workers", p.size))
	return nil
}

// Execute runs one step on the next free worker. It returns a cancelled
// step error as soon as ctx is done, whether the step is still queued or
// already running.
func (p *Pool) Execute(ctx context.Context, req ports.StepRequest) (string, error) {
	job := &stepJob{ctx: ctx, req: req, done: make(chan struct{})}

	p.queued.Add(1)
	select {
	case p.steps <- job:
		p.queued.Add(-1)
	case <-ctx.Done():
		p.queued.Add(-1)
		return "", cancelled(ctx, req)
	case <-p.stopCtx.Done():
		p.queued.Add(-1)
		return "", &domain.StepError{
			Kind:     domain.FailureCancelled,
			Step:     req.Step.Name,
			Provider: req.Step.Provider,
			Err:      ErrPoolStopped,
		}
	}

	select {
	case <-job.done:
		return job.output, job.err
	case <-ctx.Done():
		return "", cancelled(ctx, req)
	}
}

// Shutdown stops the workers. Steps already running see their own contexts
// and are not interrupted here.
func (p *Pool) Shutdown(ctx context.Context) error {
	p.logger.Info("shutting down worker pool")

	p.health.Stop()
	p.stop()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("worker pool shut down complete")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("failed to stop worker pool: %w", ctx.Err())
	}
}

// GetStatus returns the status of every worker keyed by worker id
func (p *Pool) GetStatus() map[string]WorkerStatus {
	status := make(map[string]WorkerStatus, len(p.workers))
	for _, w := range p.workers {
		status[w.id] = w.getStatus()
	}
	return status
}

func (p *Pool) work(w *worker) {
	defer p.wg.Done()
	defer w.setStatus(WorkerStatusStopped)

	for {
		select {
		case <-p.stopCtx.Done():
			p.logger.Debug("worker stopped",
				zap.String("worker_id", w.id),
				zap.Int64("steps_handled", w.handled.Load()))
			return
		case job := <-p.steps:
			p.run(w, job)
		}
	}
}

func (p *Pool) run(w *worker, job *stepJob) {
	defer close(job.done)

	if job.ctx.Err() != nil {
		job.err = cancelled(job.ctx, job.req)
		return
	}

	w.setStatus(WorkerStatusBusy)
	defer w.setStatus(WorkerStatusIdle)
	w.handled.Add(1)

	p.logger.Debug("executing step",
		zap.String("worker_id", w.id),
		zap.String("session_id", job.req.SessionID),
		zap.String("step", job.req.Step.Name),
		zap.String("provider", job.req.Step.Provider))

	job.output, job.err = p.executor.Execute(job.ctx, job.req)
}

func cancelled(ctx context.Context, req ports.StepRequest) error {
	return &domain.StepError{
		Kind:     domain.FailureCancelled,
		Step:     req.Step.Name,
		Provider: req.Step.Provider,
		Err:      context.Cause(ctx),
	}
}
