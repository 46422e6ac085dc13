package workers

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const defaultHealthInterval = 30 * time.Second

// HealthStatus is a point-in-time view of the pool
type HealthStatus struct {
	TotalWorkers   int `json:"total_workers"`
	IdleWorkers    int `json:"idle_workers"`
	BusyWorkers    int `json:"busy_workers"`
	StoppedWorkers int `json:"stopped_workers"`
	// QueuedSteps counts steps waiting for a free worker
	QueuedSteps int       `json:"queued_steps"`
	Healthy     bool      `json:"healthy"`
	Saturated   bool      `json:"saturated"`
	Timestamp   time.Time `json:"timestamp"`
}

// HealthMonitor samples the pool periodically, exports the counts as
// metrics and hands every sample to its listeners
type HealthMonitor struct {
	pool     *Pool
	interval time.Duration
	logger   *zap.Logger

	mu        sync.Mutex
	listeners []func(*HealthStatus)
	stop      context.CancelFunc
	stopped   chan struct{}
	// wasSaturated limits the saturation warning to transitions
	wasSaturated bool
}

// NewHealthMonitor creates a monitor sampling pool every interval
func NewHealthMonitor(pool *Pool, interval time.Duration, logger *zap.Logger) *HealthMonitor {
	if interval <= 0 {
		interval = defaultHealthInterval
	}
	return &HealthMonitor{
		pool:     pool,
		interval: interval,
		logger:   logger,
	}
}

// OnCheck registers fn to receive every sample. Listeners run on the
// monitor goroutine and must not block.
func (h *HealthMonitor) OnCheck(fn func(*HealthStatus)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.listeners = append(h.listeners, fn)
}

// Start begins sampling. A first sample is taken immediately.
func (h *HealthMonitor) Start() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stop != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	h.stop = cancel
	h.stopped = make(chan struct{})
	go h.loop(ctx, h.stopped)
}

// Stop ends sampling and waits for the loop to exit
func (h *HealthMonitor) Stop() {
	h.mu.Lock()
	stop, stopped := h.stop, h.stopped
	h.stop, h.stopped = nil, nil
	h.mu.Unlock()

	if stop == nil {
		return
	}
	stop()
	<-stopped
}

func (h *HealthMonitor) loop(ctx context.Context, stopped chan struct{}) {
	defer close(stopped)

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		h.sample()
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (h *HealthMonitor) sample() {
	status := h.GetStatus()

	h.pool.metrics.RecordWorkerPoolStatus(status.IdleWorkers, status.BusyWorkers, status.StoppedWorkers)

	h.logger.Debug("worker pool health check",
		zap.Int("idle", status.IdleWorkers),
		zap.Int("busy", status.BusyWorkers),
		zap.Int("stopped", status.StoppedWorkers),
		zap.Int("queued_steps", status.QueuedSteps))

	if !status.Healthy {
		h.logger.Warn("worker pool is unhealthy",
			zap.Int("stopped", status.StoppedWorkers),
			zap.Int("total", status.TotalWorkers))
	}

	h.mu.Lock()
	if status.Saturated && !h.wasSaturated {
		h.logger.Warn("all workers are busy, steps are queueing",
			zap.Int("total", status.TotalWorkers),
			zap.Int("queued_steps", status.QueuedSteps))
	}
	h.wasSaturated = status.Saturated
	listeners := h.listeners
	h.mu.Unlock()

	for _, fn := range listeners {
		fn(status)
	}
}

// GetStatus counts workers by state
func (h *HealthMonitor) GetStatus() *HealthStatus {
	status := &HealthStatus{
		QueuedSteps: int(h.pool.queued.Load()),
		Timestamp:   time.Now(),
	}
	for _, s := range h.pool.GetStatus() {
		status.TotalWorkers++
		switch s {
		case WorkerStatusIdle:
			status.IdleWorkers++
		case WorkerStatusBusy:
			status.BusyWorkers++
		case WorkerStatusStopped:
			status.StoppedWorkers++
		}
	}
	status.Healthy = status.TotalWorkers > 0 && status.StoppedWorkers == 0
	status.Saturated = status.TotalWorkers > 0 && status.BusyWorkers == status.TotalWorkers
	return status
}

// IsHealthy reports whether every worker is running
func (h *HealthMonitor) IsHealthy() bool {
	return h.GetStatus().Healthy
}
